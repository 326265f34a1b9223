package builder

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/fscqa/fsc-qa/internal/api"
	queryapi "github.com/fscqa/fsc-qa/internal/api/query"
	webapi "github.com/fscqa/fsc-qa/internal/api/web"
	"github.com/fscqa/fsc-qa/internal/config"
	"github.com/fscqa/fsc-qa/internal/entity"
	"github.com/fscqa/fsc-qa/internal/integration/gemini"
	"github.com/fscqa/fsc-qa/internal/pkg/formatter"
	"github.com/fscqa/fsc-qa/internal/pkg/ratelimit"
	"github.com/fscqa/fsc-qa/internal/repository"
	"github.com/fscqa/fsc-qa/internal/telegram"
	"github.com/fscqa/fsc-qa/internal/usecase/query"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// relay is the core every front-end is wired to.
type relay struct {
	usecase *query.QueryUsecase
	db      *pgxpool.Pool
}

func (r *relay) close() {
	if r.db != nil {
		r.db.Close()
	}
}

func Build() (*App, error) {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := setupLogger(cfg.LogLevel, cfg.Environment)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	logger.Info("Building application",
		zap.String("environment", cfg.Environment),
		zap.String("server_addr", cfg.ServerAddr),
	)

	r, err := buildRelay(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	queryHandler := queryapi.NewHandler(r.usecase)
	sessions := webapi.NewSessionStore(cfg.WebCfg.SessionTTL, defaultSelection(cfg.Corpora))
	webHandler, err := webapi.NewHandler(r.usecase, sessions, cfg.WebCfg)
	if err != nil {
		r.close()
		return nil, fmt.Errorf("create web handler: %w", err)
	}
	logger.Info("API handlers initialized")

	limiter := ratelimit.NewKeyedLimiter(cfg.RateLimitCfg.PerMinute, cfg.RateLimitCfg.Burst)
	timeout := requestTimeout(cfg)

	router := api.SetupRouter(queryHandler, webHandler, limiter, timeout, logger)
	logger.Info("HTTP router configured", zap.Duration("request_timeout", timeout))

	server := &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      timeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	logger.Info("Application built successfully",
		zap.String("environment", cfg.Environment),
	)

	return &App{
		server: server,
		db:     r.db,
		logger: logger,
	}, nil
}

// BuildTelegramBot creates and initializes the Telegram bot.
// The returned cleanup releases the audit database, if any.
func BuildTelegramBot() (telegram.Bot, *zap.Logger, func(), error) {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := cfg.TelegramCfg.Validate(); err != nil {
		return nil, nil, nil, err
	}

	logger, err := setupLogger(cfg.LogLevel, cfg.Environment)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("setup logger: %w", err)
	}

	logger.Info("Building Telegram bot",
		zap.String("environment", cfg.Environment),
	)

	r, err := buildRelay(ctx, cfg, logger)
	if err != nil {
		return nil, nil, nil, err
	}

	bot, err := telegram.NewBot(&cfg.TelegramCfg, r.usecase, defaultSelection(cfg.Corpora), logger)
	if err != nil {
		r.close()
		return nil, nil, nil, fmt.Errorf("initialize telegram bot: %w", err)
	}

	logger.Info("Telegram bot built successfully",
		zap.String("environment", cfg.Environment),
	)

	return bot, logger, r.close, nil
}

// BuildCLIRelay wires the relay for the terminal client. The caller owns the
// returned cleanup.
func BuildCLIRelay(environment string) (*query.QueryUsecase, func(), error) {
	cfg, err := config.Load(environment)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := setupLogger(cfg.LogLevel, cfg.Environment)
	if err != nil {
		return nil, nil, fmt.Errorf("setup logger: %w", err)
	}

	r, err := buildRelay(context.Background(), cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	return r.usecase, func() {
		r.close()
		_ = logger.Sync()
	}, nil
}

func buildRelay(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*relay, error) {
	db, err := setupDatabase(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("setup database: %w", err)
	}

	// A nil *QueryLogPostgres inside the interface would not compare equal to nil.
	var queryLog query.QueryLogRepository
	if db != nil {
		queryLog = repository.NewQueryLogPostgres(db)
	}

	var connector query.FileSearchConnector
	if cfg.EnableMocks {
		logger.Info("Using mock connector for Gemini File Search")
		connector = gemini.NewMockConnector(logger)
	} else {
		logger.Info("Using Gemini File Search connector",
			zap.String("model", cfg.GeminiCfg.Model),
			zap.String("url", cfg.GeminiCfg.Url),
		)
		connector = gemini.NewConnector(cfg.GeminiCfg, logger)
	}

	results := repository.NewResultCache(cfg.QueryCfg.ResultCacheTTL, cfg.QueryCfg.ResultCacheCleanup)
	if err := formatter.SetDOCXLicense(cfg.ExportCfg.UniofficeLicenseKey); err != nil {
		logger.Warn("Word export disabled", zap.Error(err))
	}
	formatters := formatter.NewFactory(cfg.ExportCfg.PDFFontPath)

	uc := query.NewUsecase(
		cfg.Corpora,
		cfg.ExampleQuestions,
		cfg.QueryCfg,
		connector,
		results,
		queryLog,
		formatters,
		logger,
	)
	logger.Info("Query relay initialized",
		zap.Strings("corpora", cfg.Corpora.Keys()),
		zap.Bool("audit_log", queryLog != nil),
		zap.Any("export_formats", formatters.Formats()),
	)

	return &relay{usecase: uc, db: db}, nil
}

// defaultSelection keeps the built-in default when the catalog still has it,
// otherwise it falls back to the first corpus.
func defaultSelection(catalog entity.Catalog) []string {
	var selected []string
	for _, key := range config.DefaultSelection() {
		if _, ok := catalog.Get(key); ok {
			selected = append(selected, key)
		}
	}
	if len(selected) == 0 && len(catalog) > 0 {
		selected = []string{catalog[0].Key}
	}
	return selected
}

// requestTimeout bounds one HTTP request: every transport attempt, a possible
// second search when retrying on empty sources, plus headroom for rendering.
func requestTimeout(cfg *config.Config) time.Duration {
	searches := 1
	if cfg.QueryCfg.RetryOnEmptySources {
		searches = 2
	}
	attempts := max(int(cfg.GeminiCfg.Retry.Attempts), 1)
	perAttempt := cfg.GeminiCfg.RequestTimeout + cfg.GeminiCfg.Retry.MaxDelay

	return time.Duration(searches*attempts)*perAttempt + 10*time.Second
}

