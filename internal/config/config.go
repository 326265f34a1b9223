package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/fscqa/fsc-qa/internal/entity"
	pkgRetry "github.com/fscqa/fsc-qa/internal/pkg/retry"
	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	// Server configuration
	ServerAddr string `env:"SERVER_ADDR" envDefault:":8501"`

	// Optional audit log database. Empty disables it.
	DatabaseURL         string        `env:"DATABASE_URL"`
	DBMaxConns          int           `env:"DB_MAX_CONNS" envDefault:"10"`
	DBMinConns          int           `env:"DB_MIN_CONNS" envDefault:"1"`
	DBMaxConnLifetime   time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
	DBMaxConnIdleTime   time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"30m"`
	DBHealthCheckPeriod time.Duration `env:"DB_HEALTH_CHECK_PERIOD" envDefault:"1m"`

	// External service configuration
	GeminiCfg GeminiConfig `envPrefix:"GEMINI_"`

	QueryCfg     QueryConfig     `envPrefix:"QUERY_"`
	WebCfg       WebConfig       `envPrefix:"WEB_"`
	RateLimitCfg RateLimitConfig `envPrefix:"RATE_LIMIT_"`
	ExportCfg    ExportConfig    `envPrefix:"EXPORT_"`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Corpus catalog and example questions (loaded from JSON file, defaults otherwise)
	CorporaFile      string `env:"CORPORA_FILE" envDefault:"internal/config/corpora.json"`
	Corpora          entity.Catalog
	ExampleQuestions []string

	// Mock configuration
	EnableMocks bool `env:"ENABLE_MOCKS" envDefault:"false"`

	// Telegram bot configuration (only read by the bot binary)
	TelegramCfg TelegramConfig `envPrefix:"TELEGRAM_"`

	// Environment (set from flag, not from env var)
	Environment string
}

type GeminiConfig struct {
	HTTPClientConfig
	APIKey          string               `env:"API_KEY"`
	Model           string               `env:"MODEL" envDefault:"gemini-2.5-flash"`
	Temperature     float64              `env:"TEMPERATURE" envDefault:"0.1"`
	MaxOutputTokens int                  `env:"MAX_OUTPUT_TOKENS" envDefault:"2000"`
	Retry           pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

type HTTPClientConfig struct {
	RequestTimeout        time.Duration `env:"TIMEOUT" envDefault:"60s"`
	ConnTimeout           time.Duration `env:"CONN_TIMEOUT" envDefault:"10s"`
	KeepAlive             time.Duration `env:"KEEP_ALIVE" envDefault:"90s"`
	IdleConnTimeout       time.Duration `env:"IDLE_CONN_TIMEOUT" envDefault:"90s"`
	ResponseHeaderTimeout time.Duration `env:"RESPONSE_HEADER_TIMEOUT" envDefault:"60s"`
	Url                   string        `env:"SERVICE_URL" envDefault:"https://generativelanguage.googleapis.com"`
}

// QueryConfig tunes the relay itself.
type QueryConfig struct {
	MaxQuestionRunes    int           `env:"MAX_QUESTION_RUNES" envDefault:"2000"`
	RetryOnEmptySources bool          `env:"RETRY_ON_EMPTY_SOURCES" envDefault:"false"`
	ResultCacheTTL      time.Duration `env:"RESULT_CACHE_TTL" envDefault:"30m"`
	ResultCacheCleanup  time.Duration `env:"RESULT_CACHE_CLEANUP" envDefault:"10m"`
	AuditTimeout        time.Duration `env:"AUDIT_TIMEOUT" envDefault:"3s"`
}

// WebConfig holds the browser front-end settings.
type WebConfig struct {
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"2h"`
	SessionCookie string        `env:"SESSION_COOKIE" envDefault:"fscqa_session"`
	SecureCookie  bool          `env:"SECURE_COOKIE" envDefault:"false"`
}

// RateLimitConfig is applied per client IP on the HTTP surface.
type RateLimitConfig struct {
	PerMinute int `env:"PER_MINUTE" envDefault:"30"`
	Burst     int `env:"BURST" envDefault:"5"`
}

// ExportConfig controls answer downloads.
type ExportConfig struct {
	// PDFFontPath points to a UTF-8 TTF with CJK glyphs (e.g. NotoSansTC).
	PDFFontPath string `env:"PDF_FONT_PATH"`
	// UniofficeLicenseKey enables Word export.
	UniofficeLicenseKey string `env:"UNIOFFICE_LICENSE_KEY"`
}

// TelegramConfig holds Telegram bot configuration
type TelegramConfig struct {
	BotToken           string        `env:"BOT_TOKEN"`
	UpdateTimeout      int           `env:"UPDATE_TIMEOUT" envDefault:"60"`
	RateLimitPerMinute int           `env:"RATE_LIMIT_PER_MINUTE" envDefault:"10"`
	RateLimitBurst     int           `env:"RATE_LIMIT_BURST" envDefault:"3"`
	ShutdownTimeout    int           `env:"SHUTDOWN_TIMEOUT" envDefault:"30"` // seconds
	SelectionTTL       time.Duration `env:"SELECTION_TTL" envDefault:"24h"`
}

// catalogFile represents the structure of corpora.json
type catalogFile struct {
	Corpora  []entity.Corpus `json:"corpora"`
	Examples []string        `json:"examples"`
}

// LoadConfig reads the -env flag and loads the matching configuration.
func LoadConfig() (*Config, error) {
	envFlag := flag.String("env", "local", "Environment to run (local, prod, or custom)")
	flag.Parse()

	return Load(*envFlag)
}

// Load loads `.env.<environment>` (if present), parses the environment and validates it.
func Load(environment string) (*Config, error) {
	envFile := getEnvFile(environment)
	// Try to load env file, but don't fail if it's missing.
	// In containerized/prod environments variables are usually set externally.
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	cfg.Environment = environment

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if err := loadCatalog(cfg); err != nil {
		return nil, fmt.Errorf("load corpus catalog: %w", err)
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	var errs []string

	if !cfg.EnableMocks && strings.TrimSpace(cfg.GeminiCfg.APIKey) == "" {
		errs = append(errs, "請設定 GEMINI_API_KEY (GEMINI_API_KEY is required unless ENABLE_MOCKS=true)")
	}

	if cfg.GeminiCfg.Model == "" {
		errs = append(errs, "GEMINI_MODEL must not be empty")
	}

	if cfg.GeminiCfg.Temperature < 0 || cfg.GeminiCfg.Temperature > 2 {
		errs = append(errs, fmt.Sprintf("GEMINI_TEMPERATURE must be between 0 and 2, got %g", cfg.GeminiCfg.Temperature))
	}

	if cfg.GeminiCfg.MaxOutputTokens < 1 || cfg.GeminiCfg.MaxOutputTokens > 65536 {
		errs = append(errs, fmt.Sprintf("GEMINI_MAX_OUTPUT_TOKENS must be between 1 and 65536, got %d", cfg.GeminiCfg.MaxOutputTokens))
	}

	if cfg.GeminiCfg.Retry.Attempts < 1 || cfg.GeminiCfg.Retry.Attempts > 5 {
		errs = append(errs, fmt.Sprintf("GEMINI_RETRY_ATTEMPTS must be between 1 and 5, got %d", cfg.GeminiCfg.Retry.Attempts))
	}

	if cfg.QueryCfg.MaxQuestionRunes < 1 || cfg.QueryCfg.MaxQuestionRunes > 20000 {
		errs = append(errs, fmt.Sprintf("QUERY_MAX_QUESTION_RUNES must be between 1 and 20000, got %d", cfg.QueryCfg.MaxQuestionRunes))
	}

	// go-cache never expires entries with a zero TTL.
	if cfg.QueryCfg.ResultCacheTTL < time.Minute || cfg.QueryCfg.ResultCacheTTL > 24*time.Hour {
		errs = append(errs, fmt.Sprintf("QUERY_RESULT_CACHE_TTL must be between 1m and 24h, got %s", cfg.QueryCfg.ResultCacheTTL))
	}

	if cfg.WebCfg.SessionTTL < time.Minute || cfg.WebCfg.SessionTTL > 7*24*time.Hour {
		errs = append(errs, fmt.Sprintf("WEB_SESSION_TTL must be between 1m and 168h, got %s", cfg.WebCfg.SessionTTL))
	}

	if cfg.TelegramCfg.SelectionTTL < time.Minute || cfg.TelegramCfg.SelectionTTL > 30*24*time.Hour {
		errs = append(errs, fmt.Sprintf("TELEGRAM_SELECTION_TTL must be between 1m and 720h, got %s", cfg.TelegramCfg.SelectionTTL))
	}

	if cfg.RateLimitCfg.PerMinute < 1 || cfg.RateLimitCfg.PerMinute > 600 {
		errs = append(errs, fmt.Sprintf("RATE_LIMIT_PER_MINUTE must be between 1 and 600, got %d", cfg.RateLimitCfg.PerMinute))
	}

	if cfg.RateLimitCfg.Burst < 1 || cfg.RateLimitCfg.Burst > 100 {
		errs = append(errs, fmt.Sprintf("RATE_LIMIT_BURST must be between 1 and 100, got %d", cfg.RateLimitCfg.Burst))
	}

	if cfg.DatabaseURL != "" {
		if cfg.DBMaxConns < 1 || cfg.DBMaxConns > 200 {
			errs = append(errs, fmt.Sprintf("DB_MAX_CONNS must be between 1 and 200, got %d", cfg.DBMaxConns))
		}

		if cfg.DBMinConns < 0 || cfg.DBMinConns > cfg.DBMaxConns {
			errs = append(errs, fmt.Sprintf("DB_MIN_CONNS must be between 0 and DB_MAX_CONNS(%d), got %d", cfg.DBMaxConns, cfg.DBMinConns))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// Validate checks the settings only the bot binary needs.
func (c *TelegramConfig) Validate() error {
	var errs []string

	if c.BotToken == "" {
		errs = append(errs, "TELEGRAM_BOT_TOKEN must not be empty")
	}

	if c.RateLimitPerMinute < 1 || c.RateLimitPerMinute > 60 {
		errs = append(errs, fmt.Sprintf("TELEGRAM_RATE_LIMIT_PER_MINUTE must be between 1 and 60, got %d", c.RateLimitPerMinute))
	}

	if c.RateLimitBurst < 1 || c.RateLimitBurst > 20 {
		errs = append(errs, fmt.Sprintf("TELEGRAM_RATE_LIMIT_BURST must be between 1 and 20, got %d", c.RateLimitBurst))
	}

	if c.ShutdownTimeout < 1 || c.ShutdownTimeout > 300 {
		errs = append(errs, fmt.Sprintf("TELEGRAM_SHUTDOWN_TIMEOUT must be between 1 and 300 seconds, got %d", c.ShutdownTimeout))
	}

	if len(errs) > 0 {
		return fmt.Errorf("telegram configuration errors:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

func loadCatalog(cfg *Config) error {
	cfg.Corpora = DefaultCatalog()
	cfg.ExampleQuestions = DefaultExampleQuestions()

	if cfg.CorporaFile == "" {
		return nil
	}

	data, err := os.ReadFile(cfg.CorporaFile)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read corpora file: %w", err)
	}

	if len(data) == 0 {
		return fmt.Errorf("corpora file is empty: %s", cfg.CorporaFile)
	}

	var file catalogFile
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse corpora JSON: %w", err)
	}

	if len(file.Corpora) > 0 {
		if err := validateCatalog(file.Corpora); err != nil {
			return fmt.Errorf("%s: %w", cfg.CorporaFile, err)
		}
		cfg.Corpora = file.Corpora
	}

	if len(file.Examples) > 0 {
		cfg.ExampleQuestions = file.Examples
	}

	return nil
}

func validateCatalog(corpora []entity.Corpus) error {
	seen := make(map[string]struct{}, len(corpora))
	for i, c := range corpora {
		if c.Key == "" {
			return fmt.Errorf("corpus #%d has no key", i)
		}
		if !strings.HasPrefix(c.StoreName, "fileSearchStores/") {
			return fmt.Errorf("corpus %q: store_name must start with fileSearchStores/, got %q", c.Key, c.StoreName)
		}
		if _, dup := seen[c.Key]; dup {
			return fmt.Errorf("corpus %q is listed twice", c.Key)
		}
		seen[c.Key] = struct{}{}
		if c.DisplayName == "" {
			corpora[i].DisplayName = c.Key
		}
	}
	return nil
}

func getEnvFile(environment string) string {
	switch environment {
	case "prod", "production":
		return ".env.prod"
	case "local", "dev", "development":
		return ".env.local"
	default:
		return fmt.Sprintf(".env.%s", environment)
	}
}
