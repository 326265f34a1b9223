package repository

import (
	"context"
	"fmt"

	"github.com/fscqa/fsc-qa/internal/entity"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

// QueryLogRepository defines the interface for the query audit log
type QueryLogRepository interface {
	Insert(ctx context.Context, record entity.QueryLogRecord) error
	ListRecent(ctx context.Context, limit int) ([]entity.QueryLogRecord, error)
}

var _ QueryLogRepository = &QueryLogPostgres{}

// DBTX is satisfied by *pgxpool.Pool, pgx.Tx and *pgx.Conn.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// QueryLogPostgres implements QueryLogRepository using PostgreSQL
type QueryLogPostgres struct {
	db DBTX
}

func NewQueryLogPostgres(db DBTX) *QueryLogPostgres {
	return &QueryLogPostgres{
		db: db,
	}
}

const insertQueryLog = `
INSERT INTO query_log (id, question, corpora, answer_chars, citation_count, latency_ms, status, error, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

func (r *QueryLogPostgres) Insert(ctx context.Context, record entity.QueryLogRecord) error {
	id, err := uuid.Parse(record.ID)
	if err != nil {
		return fmt.Errorf("parse query log ID: %w", err)
	}

	corpora := record.Corpora
	if corpora == nil {
		corpora = []string{}
	}

	_, err = r.db.Exec(ctx, insertQueryLog,
		pgtype.UUID{Bytes: id, Valid: true},
		record.Question,
		corpora,
		record.AnswerChars,
		record.CitationCount,
		record.Latency.Milliseconds(),
		string(record.Status),
		pgtype.Text{String: record.Error, Valid: record.Error != ""},
		pgtype.Timestamptz{Time: record.CreatedAt, Valid: !record.CreatedAt.IsZero()},
	)
	if err != nil {
		return fmt.Errorf("insert query log: %w", err)
	}

	return nil
}

const listRecentQueryLog = `
SELECT id, question, corpora, answer_chars, citation_count, latency_ms, status, error, created_at
FROM query_log
ORDER BY created_at DESC
LIMIT $1`

func (r *QueryLogPostgres) ListRecent(ctx context.Context, limit int) ([]entity.QueryLogRecord, error) {
	rows, err := r.db.Query(ctx, listRecentQueryLog, limit)
	if err != nil {
		return nil, fmt.Errorf("list query log: %w", err)
	}
	defer rows.Close()

	var records []entity.QueryLogRecord
	for rows.Next() {
		var row queryLogRow
		if err := rows.Scan(
			&row.ID,
			&row.Question,
			&row.Corpora,
			&row.AnswerChars,
			&row.CitationCount,
			&row.LatencyMS,
			&row.Status,
			&row.Error,
			&row.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan query log: %w", err)
		}
		records = append(records, toEntityQueryLog(&row))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate query log: %w", err)
	}

	return records, nil
}
