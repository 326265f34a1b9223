package common

import (
	"github.com/fscqa/fsc-qa/internal/config"
	pkgHTTP "github.com/fscqa/fsc-qa/pkg/http"
	"go.uber.org/zap"
)

// NewBaseConnector builds the shared JSON connector for an external service.
// extra options are applied after the config-derived ones.
func NewBaseConnector(cfg config.HTTPClientConfig, apiKey string, logger *zap.Logger, extra ...pkgHTTP.HttpOpts) *pkgHTTP.Connector {
	connCfg := &pkgHTTP.ConnectorConfig{
		Logger:  logger,
		BaseURL: cfg.Url,
	}

	opts := []pkgHTTP.HttpOpts{
		pkgHTTP.WithRequestTimeout(cfg.RequestTimeout),
		pkgHTTP.WithConnClientTimeout(cfg.ConnTimeout),
		pkgHTTP.WithClientKeepAlive(cfg.KeepAlive),
		pkgHTTP.WithIdleConnTimeout(cfg.IdleConnTimeout),
		pkgHTTP.WithResponseHeaderTimeout(cfg.ResponseHeaderTimeout),
	}
	opts = append(opts, extra...)
	opts = append(opts,
		pkgHTTP.WithRequestLogging(),
		pkgHTTP.WithAPIKey("", apiKey),
	)

	return pkgHTTP.NewConnector(connCfg, opts...)
}
