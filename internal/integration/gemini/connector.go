package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/fscqa/fsc-qa/internal/config"
	"github.com/fscqa/fsc-qa/internal/entity"
	"github.com/fscqa/fsc-qa/internal/integration/common"
	pkgRetry "github.com/fscqa/fsc-qa/internal/pkg/retry"
	pkghttp "github.com/fscqa/fsc-qa/pkg/http"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type Connector struct {
	config    config.GeminiConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewConnector(
	cfg config.GeminiConfig,
	logger *zap.Logger,
	opts ...pkghttp.HttpOpts,
) *Connector {
	return &Connector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, cfg.APIKey, logger, opts...),
		config:    cfg,
		logger:    logger,
	}
}

// Search runs one File Search grounded generation.
// POST /v1beta/models/{model}:generateContent
func (c *Connector) Search(ctx context.Context, query *entity.FileSearchQuery) (*entity.FileSearchAnswer, error) {
	req := c.buildRequest(query)

	ctxzap.Info(ctx, "querying Gemini File Search",
		zap.String("model", c.config.Model),
		zap.Strings("stores", query.StoreNames),
	)

	var resp *entity.GeminiGenerateContentResponse
	err := pkgRetry.Do(ctx, &c.config.Retry, func() error {
		resp = &entity.GeminiGenerateContentResponse{}
		return c.connector.DoRequest(ctx, http.MethodPost, c.endpoint(), req, resp)
	}, isRetryable)
	if err != nil {
		ctxzap.Error(ctx, "Gemini request failed", zap.Error(err))
		return nil, classifyError(err)
	}

	answer, err := parseResponse(resp)
	if err != nil {
		ctxzap.Error(ctx, "unusable Gemini response", zap.Error(err))
		return nil, err
	}

	ctxzap.Info(ctx, "Gemini answer received",
		zap.Int("answer_length", len(answer.Text)),
		zap.Int("citation_count", len(answer.Citations)),
		zap.String("model_version", resp.ModelVersion),
	)

	return answer, nil
}

func (c *Connector) endpoint() string {
	model := strings.TrimPrefix(c.config.Model, "models/")
	return fmt.Sprintf("/v1beta/models/%s:generateContent", url.PathEscape(model))
}

func (c *Connector) buildRequest(query *entity.FileSearchQuery) *entity.GeminiGenerateContentRequest {
	req := &entity.GeminiGenerateContentRequest{
		Contents: []entity.GeminiContent{
			{Role: "user", Parts: []entity.GeminiPart{{Text: query.Question}}},
		},
		Tools: []entity.GeminiTool{
			{FileSearch: &entity.GeminiFileSearch{FileSearchStoreNames: query.StoreNames}},
		},
		GenerationConfig: entity.GeminiGenerationConfig{
			Temperature:     c.config.Temperature,
			MaxOutputTokens: c.config.MaxOutputTokens,
		},
	}

	if query.SystemInstruction != "" {
		req.SystemInstruction = &entity.GeminiContent{
			Parts: []entity.GeminiPart{{Text: query.SystemInstruction}},
		}
	}

	return req
}

func parseResponse(resp *entity.GeminiGenerateContentResponse) (*entity.FileSearchAnswer, error) {
	if len(resp.Candidates) == 0 {
		if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			return nil, fmt.Errorf("%w: prompt blocked (%s)", entity.ErrMalformedResponse, resp.PromptFeedback.BlockReason)
		}
		return nil, fmt.Errorf("%w: no candidates", entity.ErrMalformedResponse)
	}

	candidate := resp.Candidates[0]
	text := answerText(candidate.Content)
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: empty answer (finish reason %q)", entity.ErrMalformedResponse, candidate.FinishReason)
	}

	return &entity.FileSearchAnswer{
		Text:      text,
		Citations: extractCitations(candidate.GroundingMetadata),
	}, nil
}

func answerText(content *entity.GeminiContent) string {
	if content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range content.Parts {
		if part.Thought {
			continue
		}
		sb.WriteString(part.Text)
	}
	return sb.String()
}

func isRetryable(err error) bool {
	var netErr *pkghttp.NetworkError
	if errors.As(err, &netErr) {
		return !errors.Is(err, context.Canceled)
	}

	var httpErr *pkghttp.HTTPError
	if errors.As(err, &httpErr) {
		switch httpErr.StatusCode {
		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return true
		}
	}

	return false
}

// classifyError maps transport failures onto domain errors.
func classifyError(err error) error {
	var (
		netErr    *pkghttp.NetworkError
		decodeErr *pkghttp.DecodeError
		httpErr   *pkghttp.HTTPError
	)

	switch {
	case errors.As(err, &netErr):
		return fmt.Errorf("%w: %v", entity.ErrProviderUnavailable, err)
	case errors.As(err, &decodeErr):
		return fmt.Errorf("%w: %v", entity.ErrMalformedResponse, err)
	case errors.As(err, &httpErr):
		return fmt.Errorf("%w: %v", classifyStatus(httpErr), err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", entity.ErrProviderUnavailable, err)
	default:
		return fmt.Errorf("%w: %v", entity.ErrProviderFailure, err)
	}
}

func classifyStatus(httpErr *pkghttp.HTTPError) error {
	switch {
	case httpErr.StatusCode == http.StatusUnauthorized, httpErr.StatusCode == http.StatusForbidden:
		return entity.ErrProviderAuth
	// Gemini reports a bad key as 400 INVALID_ARGUMENT.
	case httpErr.StatusCode == http.StatusBadRequest && strings.Contains(httpErr.Message, "API key"):
		return entity.ErrProviderAuth
	case httpErr.StatusCode == http.StatusTooManyRequests, httpErr.Status == "RESOURCE_EXHAUSTED":
		return entity.ErrProviderQuota
	case httpErr.StatusCode == http.StatusServiceUnavailable, httpErr.StatusCode == http.StatusGatewayTimeout:
		return entity.ErrProviderUnavailable
	default:
		return entity.ErrProviderFailure
	}
}
