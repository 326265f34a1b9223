package query

import (
	"context"

	"github.com/fscqa/fsc-qa/internal/entity"
)

type QueryUsecase interface {
	Ask(ctx context.Context, req entity.QueryRequest) (*entity.QueryResult, error)
	Corpora() []entity.Corpus
	Examples() []string
	Export(ctx context.Context, id string, format entity.ExportFormat) (*entity.ExportFile, error)
	RecentQueries(ctx context.Context, limit int) ([]entity.QueryLogRecord, error)
}
