package render

import (
	"fmt"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/fscqa/fsc-qa/internal/config"
	"github.com/fscqa/fsc-qa/internal/entity"
	"github.com/fscqa/fsc-qa/internal/pkg/messages"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderAnswer(t *testing.T) {
	result := &entity.QueryResult{
		Scope:  []string{"裁罰案件", "法令函釋"},
		Answer: "  回答內容  ",
		Citations: []entity.Citation{
			{Title: "A.txt", Snippet: "第一段\n內容", Score: 1},
			{Title: "B.txt", Snippet: "", Score: 0.5},
		},
		Latency: 2346 * time.Millisecond,
		Retried: true,
	}

	text := RenderAnswer(result)

	assert.True(t, strings.HasPrefix(text, messages.QueryDone))
	assert.Contains(t, text, "⏱ 回應時間: 2.35 秒 | 📚 參考來源: 2 筆")
	assert.Contains(t, text, "🔎 查詢範圍: 裁罰案件、法令函釋")
	assert.Contains(t, text, messages.RetriedNote)
	assert.Contains(t, text, "\n回答內容\n")
	assert.Contains(t, text, "1. A.txt\n   第一段 內容")
	assert.Contains(t, text, "2. B.txt (相似度: 50.00%)")
	assert.NotContains(t, text, "1. A.txt (相似度")
}

func TestRenderAnswer_NoSources(t *testing.T) {
	text := RenderAnswer(&entity.QueryResult{Answer: "無"})

	assert.Contains(t, text, messages.NoSources)
	assert.NotContains(t, text, "📄 參考來源")
}

func TestRenderSelection(t *testing.T) {
	catalog := config.DefaultCatalog()

	assert.Equal(t, "目前查詢範圍：裁罰案件（共 490 份文件）",
		RenderSelection(catalog, []string{entity.CorpusEnforcementCases}))
	assert.Equal(t, "⚠️ "+messages.NoCorpusSelected, RenderSelection(catalog, nil))
}

func TestRenderError(t *testing.T) {
	err := fmt.Errorf("search: %w", entity.ErrProviderQuota)
	assert.True(t, strings.HasPrefix(RenderError(err), "❌ 查詢失敗: "))
}

func TestSplitMessage(t *testing.T) {
	assert.Equal(t, []string{"短訊息"}, SplitMessage("短訊息", 10))

	text := strings.Repeat("一二三四\n", 5)
	chunks := SplitMessage(text, 10)
	require.Len(t, chunks, 3)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(chunk), 10)
	}
	assert.Equal(t, "一二三四\n一二三四", chunks[0])

	long := strings.Repeat("字", 25)
	chunks = SplitMessage(long, 10)
	require.Len(t, chunks, 3)
	assert.Equal(t, strings.Repeat("字", 10), chunks[0])
	assert.Equal(t, strings.Repeat("字", 5), chunks[2])
}
