package query

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fscqa/fsc-qa/internal/config"
	"github.com/fscqa/fsc-qa/internal/entity"
	"github.com/fscqa/fsc-qa/internal/pkg/logger"
	"github.com/fscqa/fsc-qa/internal/pkg/metrics"
	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// QueryUsecase relays questions to File Search and keeps the results for export.
type QueryUsecase struct {
	catalog    entity.Catalog
	examples   []string
	cfg        config.QueryConfig
	connector  FileSearchConnector
	results    ResultStore
	queryLog   QueryLogRepository
	formatters FormatterFactory
	logger     *zap.Logger
	now        func() time.Time
}

// NewUsecase creates the relay. queryLog may be nil when auditing is disabled.
func NewUsecase(
	catalog entity.Catalog,
	examples []string,
	cfg config.QueryConfig,
	connector FileSearchConnector,
	results ResultStore,
	queryLog QueryLogRepository,
	formatters FormatterFactory,
	logger *zap.Logger,
) *QueryUsecase {
	return &QueryUsecase{
		catalog:    catalog,
		examples:   examples,
		cfg:        cfg,
		connector:  connector,
		results:    results,
		queryLog:   queryLog,
		formatters: formatters,
		logger:     logger,
		now:        time.Now,
	}
}

// Corpora returns the selectable corpora in catalog order.
func (uc *QueryUsecase) Corpora() []entity.Corpus {
	return append([]entity.Corpus(nil), uc.catalog...)
}

// Examples returns the example questions.
func (uc *QueryUsecase) Examples() []string {
	return append([]string(nil), uc.examples...)
}

// Ask validates the question and selection, then issues one File Search request
// scoped to the selected stores. Invalid input never reaches the provider.
func (uc *QueryUsecase) Ask(ctx context.Context, req entity.QueryRequest) (*entity.QueryResult, error) {
	ctx = logger.WithAction(ctx, "ask")

	question, err := uc.validateQuestion(req.Question)
	if err != nil {
		uc.reject(ctx, err)
		return nil, err
	}

	corpora, err := uc.catalog.Resolve(req.Corpora)
	if err != nil {
		uc.reject(ctx, err)
		return nil, err
	}

	keys := make([]string, 0, len(corpora))
	scope := make([]string, 0, len(corpora))
	stores := make([]string, 0, len(corpora))
	for _, c := range corpora {
		keys = append(keys, c.Key)
		scope = append(scope, c.Label())
		stores = append(stores, c.StoreName)
		metrics.CorpusSelections.WithLabelValues(c.Key).Inc()
	}

	ctx = logger.AddFields(ctx, zap.Strings("corpora", keys))

	fsq := &entity.FileSearchQuery{
		Question:          question,
		SystemInstruction: BuildSystemInstruction(corpora),
		StoreNames:        stores,
	}

	metrics.QueriesActive.Inc()
	defer metrics.QueriesActive.Dec()

	start := uc.now()
	answer, retried, err := uc.search(ctx, fsq)
	latency := uc.now().Sub(start)

	result := &entity.QueryResult{
		ID:        uuid.New().String(),
		Question:  question,
		Corpora:   keys,
		Scope:     scope,
		Latency:   latency,
		LatencyMS: latency.Milliseconds(),
		Retried:   retried,
		CreatedAt: start,
	}

	if err != nil {
		metrics.QueriesTotal.WithLabelValues(string(entity.QueryStatusFailed)).Inc()
		metrics.QueryErrors.WithLabelValues(entity.ErrorCode(err)).Inc()
		uc.audit(ctx, result, entity.QueryStatusFailed, err)
		return nil, fmt.Errorf("ask: %w", err)
	}

	result.Answer = answer.Text
	result.Citations = answer.Citations
	if result.Citations == nil {
		result.Citations = []entity.Citation{}
	}

	uc.results.Save(result)

	metrics.QueriesTotal.WithLabelValues(string(entity.QueryStatusAnswered)).Inc()
	metrics.QueryDuration.WithLabelValues(string(entity.QueryStatusAnswered)).Observe(latency.Seconds())
	metrics.CitationsReturned.Observe(float64(len(result.Citations)))
	uc.audit(ctx, result, entity.QueryStatusAnswered, nil)

	ctxzap.Info(ctx, "question answered",
		zap.String("result_id", result.ID),
		zap.Int("citation_count", len(result.Citations)),
		zap.Duration("latency", latency),
		zap.Bool("retried", retried),
	)

	return result, nil
}

// search issues the request and, when enabled, asks once more if the first
// answer cited nothing. The first answer is kept unless the second one cites sources.
func (uc *QueryUsecase) search(ctx context.Context, fsq *entity.FileSearchQuery) (*entity.FileSearchAnswer, bool, error) {
	answer, err := uc.connector.Search(ctx, fsq)
	if err != nil {
		return nil, false, err
	}

	if !uc.cfg.RetryOnEmptySources || len(answer.Citations) > 0 {
		return answer, false, nil
	}

	ctxzap.Warn(ctx, "answer has no sources, asking again")

	second, err := uc.connector.Search(ctx, fsq)
	if err != nil {
		ctxzap.Warn(ctx, "second attempt failed, keeping first answer", zap.Error(err))
		return answer, false, nil
	}
	if len(second.Citations) == 0 {
		return answer, false, nil
	}

	return second, true, nil
}

func (uc *QueryUsecase) validateQuestion(raw string) (string, error) {
	question := strings.TrimSpace(raw)
	if question == "" {
		return "", entity.ErrEmptyQuestion
	}
	if limit := uc.cfg.MaxQuestionRunes; limit > 0 && utf8.RuneCountInString(question) > limit {
		return "", fmt.Errorf("%w: more than %d characters", entity.ErrQuestionTooLong, limit)
	}
	return question, nil
}

func (uc *QueryUsecase) reject(ctx context.Context, err error) {
	metrics.QueryErrors.WithLabelValues(entity.ErrorCode(err)).Inc()
	ctxzap.Debug(ctx, "question rejected", zap.Error(err))
}

// audit writes the query log record. Failures are logged and swallowed.
func (uc *QueryUsecase) audit(ctx context.Context, result *entity.QueryResult, status entity.QueryStatus, queryErr error) {
	if uc.queryLog == nil {
		return
	}

	record := entity.QueryLogRecord{
		ID:            result.ID,
		Question:      result.Question,
		Corpora:       result.Corpora,
		AnswerChars:   utf8.RuneCountInString(result.Answer),
		CitationCount: len(result.Citations),
		Latency:       result.Latency,
		Status:        status,
		CreatedAt:     result.CreatedAt,
	}
	if queryErr != nil {
		record.Error = queryErr.Error()
	}

	timeout := uc.cfg.AuditTimeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	auditCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	if err := uc.queryLog.Insert(auditCtx, record); err != nil {
		ctxzap.Warn(ctx, "failed to write query log", zap.Error(err))
	}
}

// Result returns a previously delivered result.
func (uc *QueryUsecase) Result(id string) (*entity.QueryResult, error) {
	result, ok := uc.results.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", entity.ErrResultNotFound, id)
	}
	return result, nil
}

// Export renders a previously delivered result in the requested format.
func (uc *QueryUsecase) Export(ctx context.Context, id string, format entity.ExportFormat) (*entity.ExportFile, error) {
	ctx = logger.WithAction(ctx, "export")

	if format == "" {
		format = entity.FormatMarkdown
	}

	result, err := uc.Result(id)
	if err != nil {
		return nil, err
	}

	f, err := uc.formatters.Create(format)
	if err != nil {
		return nil, err
	}

	content, err := f.Format(result)
	if err != nil {
		ctxzap.Error(ctx, "failed to render export", zap.String("format", string(format)), zap.Error(err))
		return nil, fmt.Errorf("format %s: %w", format, err)
	}

	metrics.ExportsTotal.WithLabelValues(string(format)).Inc()

	return &entity.ExportFile{
		Filename:    exportFilename(result, f.FileExtension()),
		ContentType: f.ContentType(),
		Content:     content,
	}, nil
}

// ExportFormats lists the formats Export can render with this deployment.
func (uc *QueryUsecase) ExportFormats() []entity.ExportFormat {
	return uc.formatters.Formats()
}

const (
	defaultRecentLimit = 20
	maxRecentLimit     = 200
)

// RecentQueries lists the newest audit records. It fails with ErrAuditDisabled
// when no database is configured.
func (uc *QueryUsecase) RecentQueries(ctx context.Context, limit int) ([]entity.QueryLogRecord, error) {
	if uc.queryLog == nil {
		return nil, entity.ErrAuditDisabled
	}

	switch {
	case limit <= 0:
		limit = defaultRecentLimit
	case limit > maxRecentLimit:
		limit = maxRecentLimit
	}

	records, err := uc.queryLog.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent queries: %w", err)
	}
	return records, nil
}

func exportFilename(result *entity.QueryResult, ext string) string {
	id := result.ID
	if len(id) > 8 {
		id = id[:8]
	}
	return fmt.Sprintf("fsc-qa-%s-%s%s", result.CreatedAt.Format("20060102-150405"), id, ext)
}

// IsProviderError reports whether err came from the answer provider rather than input validation.
func IsProviderError(err error) bool {
	return errors.Is(err, entity.ErrProviderUnavailable) ||
		errors.Is(err, entity.ErrProviderAuth) ||
		errors.Is(err, entity.ErrProviderQuota) ||
		errors.Is(err, entity.ErrMalformedResponse) ||
		errors.Is(err, entity.ErrProviderFailure)
}
