package entity

import "errors"

// Domain errors
var (
	// Question validation errors
	ErrEmptyQuestion    = errors.New("question is empty")
	ErrQuestionTooLong  = errors.New("question is too long")
	ErrNoCorpusSelected = errors.New("no corpus selected")
	ErrUnknownCorpus    = errors.New("unknown corpus")
	ErrQueryInFlight    = errors.New("a query is already in progress")

	// Provider errors
	ErrProviderUnavailable = errors.New("answer provider unavailable")
	ErrProviderAuth        = errors.New("answer provider rejected credentials")
	ErrProviderQuota       = errors.New("answer provider quota exceeded")
	ErrMalformedResponse   = errors.New("malformed answer provider response")
	ErrProviderFailure     = errors.New("answer provider failure")

	// Result errors
	ErrResultNotFound    = errors.New("result not found")
	ErrUnsupportedFormat = errors.New("unsupported export format")
	ErrAuditDisabled     = errors.New("query log is disabled")
)

// IsValidationError reports whether err was caused by user input rather than the provider.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrEmptyQuestion) ||
		errors.Is(err, ErrQuestionTooLong) ||
		errors.Is(err, ErrNoCorpusSelected) ||
		errors.Is(err, ErrUnknownCorpus)
}

// ErrorCode is a stable machine-readable name for err, used in API bodies and metric labels.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEmptyQuestion):
		return "empty_question"
	case errors.Is(err, ErrQuestionTooLong):
		return "question_too_long"
	case errors.Is(err, ErrNoCorpusSelected):
		return "no_corpus_selected"
	case errors.Is(err, ErrUnknownCorpus):
		return "unknown_corpus"
	case errors.Is(err, ErrQueryInFlight):
		return "query_in_flight"
	case errors.Is(err, ErrProviderUnavailable):
		return "provider_unavailable"
	case errors.Is(err, ErrProviderAuth):
		return "provider_auth"
	case errors.Is(err, ErrProviderQuota):
		return "provider_quota"
	case errors.Is(err, ErrMalformedResponse):
		return "malformed_response"
	case errors.Is(err, ErrProviderFailure):
		return "provider_failure"
	case errors.Is(err, ErrResultNotFound):
		return "result_not_found"
	case errors.Is(err, ErrUnsupportedFormat):
		return "unsupported_format"
	case errors.Is(err, ErrAuditDisabled):
		return "audit_disabled"
	default:
		return "internal"
	}
}
