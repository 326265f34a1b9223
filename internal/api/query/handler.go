package query

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/fscqa/fsc-qa/internal/entity"
	"github.com/fscqa/fsc-qa/internal/pkg/logger"
	"github.com/fscqa/fsc-qa/internal/pkg/response"
	"github.com/go-chi/chi/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const maxRequestBody = 64 << 10

type Handler struct {
	usecase QueryUsecase
}

func NewHandler(usecase QueryUsecase) *Handler {
	return &Handler{
		usecase: usecase,
	}
}

// ListCorpora handles GET /api/v1/corpora
func (h *Handler) ListCorpora(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, &entity.CatalogResponse{
		Corpora: h.usecase.Corpora(),
	})
}

// ListExamples handles GET /api/v1/examples
func (h *Handler) ListExamples(w http.ResponseWriter, r *http.Request) {
	examples := h.usecase.Examples()
	if examples == nil {
		examples = []string{}
	}
	response.JSON(w, http.StatusOK, &entity.ExamplesResponse{
		Examples: examples,
	})
}

// Ask handles POST /api/v1/query
func (h *Handler) Ask(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "Ask")

	var req entity.QueryRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err := dec.Decode(&req); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid_request", "request body must be a JSON object with question and corpora", err)
		return
	}

	result, err := h.usecase.Ask(ctx, req)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.JSON(w, http.StatusOK, result)
}

// ListRecentQueries handles GET /api/v1/queries
func (h *Handler) ListRecentQueries(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "ListRecentQueries")

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	records, err := h.usecase.RecentQueries(ctx, limit)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	entries := make([]entity.QueryLogEntry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, toQueryLogEntry(rec))
	}

	response.JSON(w, http.StatusOK, &entity.QueryLogResponse{Queries: entries})
}

// ExportResult handles GET /api/v1/results/{result_id}/export
func (h *Handler) ExportResult(w http.ResponseWriter, r *http.Request) {
	resultID := chi.URLParam(r, "result_id")
	format := entity.ExportFormat(r.URL.Query().Get("format"))

	ctx := logger.AddFields(r.Context(),
		zap.String("result_id", resultID),
		zap.String("format", string(format)),
		zap.String("action", "ExportResult"),
	)

	file, err := h.usecase.Export(ctx, resultID, format)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "result exported", zap.Int("bytes", len(file.Content)))
	response.Attachment(w, file)
}

func (h *Handler) respondError(ctx context.Context, w http.ResponseWriter, status int, code, message string, err error) {
	if status >= http.StatusInternalServerError {
		ctxzap.Error(ctx, message, zap.Error(err))
	} else {
		ctxzap.Warn(ctx, message, zap.Error(err))
	}
	response.Error(w, status, code, message)
}

func (h *Handler) handleUsecaseError(ctx context.Context, w http.ResponseWriter, err error) {
	code := entity.ErrorCode(err)

	switch {
	case entity.IsValidationError(err), errors.Is(err, entity.ErrUnsupportedFormat):
		h.respondError(ctx, w, http.StatusBadRequest, code, err.Error(), err)
	case errors.Is(err, entity.ErrResultNotFound):
		h.respondError(ctx, w, http.StatusNotFound, code, "result not found or expired", err)
	case errors.Is(err, entity.ErrProviderQuota):
		h.respondError(ctx, w, http.StatusTooManyRequests, code, "answer provider quota exceeded, try again later", err)
	case errors.Is(err, entity.ErrProviderUnavailable):
		h.respondError(ctx, w, http.StatusServiceUnavailable, code, "answer provider unavailable", err)
	case errors.Is(err, entity.ErrProviderAuth),
		errors.Is(err, entity.ErrMalformedResponse),
		errors.Is(err, entity.ErrProviderFailure):
		h.respondError(ctx, w, http.StatusBadGateway, code, err.Error(), err)
	case errors.Is(err, entity.ErrAuditDisabled):
		h.respondError(ctx, w, http.StatusNotImplemented, code, "query log is not configured", err)
	default:
		h.respondError(ctx, w, http.StatusInternalServerError, "internal", "internal server error", err)
	}
}
