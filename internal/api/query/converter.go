package query

import "github.com/fscqa/fsc-qa/internal/entity"

func toQueryLogEntry(r entity.QueryLogRecord) entity.QueryLogEntry {
	corpora := r.Corpora
	if corpora == nil {
		corpora = []string{}
	}
	return entity.QueryLogEntry{
		ID:            r.ID,
		Question:      r.Question,
		Corpora:       corpora,
		AnswerChars:   r.AnswerChars,
		CitationCount: r.CitationCount,
		LatencyMS:     r.Latency.Milliseconds(),
		Status:        string(r.Status),
		Error:         r.Error,
		CreatedAt:     r.CreatedAt,
	}
}
