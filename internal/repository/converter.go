package repository

import (
	"time"

	"github.com/fscqa/fsc-qa/internal/entity"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// queryLogRow mirrors one query_log row as scanned by pgx.
type queryLogRow struct {
	ID            pgtype.UUID
	Question      string
	Corpora       []string
	AnswerChars   int32
	CitationCount int32
	LatencyMS     int64
	Status        string
	Error         pgtype.Text
	CreatedAt     pgtype.Timestamptz
}

func toEntityQueryLog(row *queryLogRow) entity.QueryLogRecord {
	return entity.QueryLogRecord{
		ID:            uuid.UUID(row.ID.Bytes).String(),
		Question:      row.Question,
		Corpora:       row.Corpora,
		AnswerChars:   int(row.AnswerChars),
		CitationCount: int(row.CitationCount),
		Latency:       time.Duration(row.LatencyMS) * time.Millisecond,
		Status:        entity.QueryStatus(row.Status),
		Error:         row.Error.String,
		CreatedAt:     row.CreatedAt.Time,
	}
}
