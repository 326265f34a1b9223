package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/fscqa/fsc-qa/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// MockConnector answers without calling Gemini, for local runs and demos.
type MockConnector struct {
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{
		logger: logger,
	}
}

func (m *MockConnector) Search(ctx context.Context, query *entity.FileSearchQuery) (*entity.FileSearchAnswer, error) {
	ctxzap.Info(ctx, "[MOCK] querying File Search",
		zap.Strings("stores", query.StoreNames),
		zap.Int("question_length", len(query.Question)),
	)

	citations := make([]entity.Citation, 0, len(query.StoreNames))
	for i, store := range query.StoreNames {
		name := store[strings.LastIndex(store, "/")+1:]
		citations = append(citations, entity.Citation{
			Title:   fmt.Sprintf("mock-%s-%03d.txt", name, i+1),
			Snippet: "（模擬資料）金融監督管理委員會裁處書摘要。",
			Score:   defaultScore,
			Store:   store,
		})
	}

	answer := fmt.Sprintf(`**模擬回答**

您詢問的問題：%s

本回答由模擬連接器產生，未呼叫 Gemini File Search。查詢範圍共 %d 個資料庫。`, query.Question, len(query.StoreNames))

	return &entity.FileSearchAnswer{
		Text:      answer,
		Citations: citations,
	}, nil
}
