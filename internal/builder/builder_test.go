package builder

import (
	"testing"
	"time"

	"github.com/fscqa/fsc-qa/internal/config"
	"github.com/fscqa/fsc-qa/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSelection(t *testing.T) {
	assert.Equal(t, []string{entity.CorpusEnforcementCases}, defaultSelection(config.DefaultCatalog()))

	custom := entity.Catalog{{Key: "circulars", StoreName: "fileSearchStores/circulars"}}
	assert.Equal(t, []string{"circulars"}, defaultSelection(custom))

	assert.Empty(t, defaultSelection(nil))
}

func TestRequestTimeout(t *testing.T) {
	cfg := &config.Config{}
	cfg.GeminiCfg.RequestTimeout = 60 * time.Second
	cfg.GeminiCfg.Retry.Attempts = 1
	cfg.GeminiCfg.Retry.MaxDelay = 4 * time.Second

	assert.Equal(t, 74*time.Second, requestTimeout(cfg))

	cfg.QueryCfg.RetryOnEmptySources = true
	cfg.GeminiCfg.Retry.Attempts = 2
	assert.Equal(t, 266*time.Second, requestTimeout(cfg))
}

func TestSetupLogger(t *testing.T) {
	logger, err := setupLogger("debug", "prod")
	require.NoError(t, err)
	assert.NotNil(t, logger)

	_, err = setupLogger("loud", "local")
	assert.Error(t, err)
}
