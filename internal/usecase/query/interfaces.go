package query

import (
	"context"

	"github.com/fscqa/fsc-qa/internal/entity"
	"github.com/fscqa/fsc-qa/internal/pkg/formatter"
)

type FileSearchConnector interface {
	Search(ctx context.Context, query *entity.FileSearchQuery) (*entity.FileSearchAnswer, error)
}

// ResultStore keeps delivered results around for export downloads.
type ResultStore interface {
	Save(result *entity.QueryResult)
	Get(id string) (*entity.QueryResult, bool)
}

type QueryLogRepository interface {
	Insert(ctx context.Context, record entity.QueryLogRecord) error
	ListRecent(ctx context.Context, limit int) ([]entity.QueryLogRecord, error)
}

type FormatterFactory interface {
	Create(format entity.ExportFormat) (formatter.Formatter, error)
	Formats() []entity.ExportFormat
}
