package render

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/fscqa/fsc-qa/internal/entity"
	"github.com/fscqa/fsc-qa/internal/pkg/messages"
	"github.com/fscqa/fsc-qa/internal/pkg/textutil"
)

// Telegram rejects messages longer than 4096 characters.
const MaxMessageRunes = 4000

const (
	citationTitleRunes   = 60
	citationSnippetRunes = 200
)

// Message templates
const (
	MsgWelcome = `👋 歡迎使用` + messages.AppTitle + `

直接輸入問題，我會在選取的資料來源中查詢金管會公開資料並附上參考來源。

請先選擇要查詢的資料來源：`

	MsgHelp = `🤖 指令說明

/start - 開始使用並選擇資料來源
/corpora - 調整查詢範圍
/examples - 範例問題
/help - 顯示此說明

選好資料來源後，直接傳送問題即可。

` + messages.Disclaimer

	MsgCorpora         = "📚 選擇資料來源（可複選）："
	MsgExamples        = "💡 點選範例問題直接查詢："
	MsgNoExamples      = "目前沒有範例問題"
	MsgSearching       = "🔍 查詢中，請稍候..."
	MsgUnknownCommand  = "❌ 未知的指令，請使用 /help 查看說明"
	MsgUnsupportedType = "目前僅支援文字問題"
)

// Error messages
const (
	ErrGeneric         = "❌ 發生錯誤，請再試一次或輸入 /start"
	ErrInvalidCallback = "❌ 無效的操作"
	ErrUnknownExample  = "❌ 找不到此範例問題"
)

// RenderSelection describes the current corpus selection.
func RenderSelection(catalog entity.Catalog, selected []string) string {
	if len(selected) == 0 {
		return "⚠️ " + messages.NoCorpusSelected
	}

	corpora, err := catalog.Resolve(selected)
	if err != nil {
		return "⚠️ " + messages.ErrorText(err)
	}

	names := make([]string, 0, len(corpora))
	for _, c := range corpora {
		names = append(names, c.DisplayName)
	}
	return fmt.Sprintf("目前查詢範圍：%s（共 %d 份文件）",
		strings.Join(names, "、"), entity.TotalDocuments(corpora))
}

// RenderAnswer formats a result as plain text with a numbered source list.
func RenderAnswer(result *entity.QueryResult) string {
	var sb strings.Builder

	sb.WriteString(messages.QueryDone)
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "⏱ 回應時間: %.2f 秒 | 📚 參考來源: %d 筆\n", result.Latency.Seconds(), len(result.Citations))
	if len(result.Scope) > 0 {
		fmt.Fprintf(&sb, "🔎 查詢範圍: %s\n", strings.Join(result.Scope, "、"))
	}
	if result.Retried {
		sb.WriteString(messages.RetriedNote)
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(strings.TrimSpace(result.Answer))
	sb.WriteString("\n\n")

	if !result.HasCitations() {
		sb.WriteString(messages.NoSources)
		return sb.String()
	}

	sb.WriteString("📄 參考來源\n")
	for i, c := range result.Citations {
		fmt.Fprintf(&sb, "%d. %s", i+1, textutil.Ellipsize(c.Title, citationTitleRunes))
		if c.Score < 1 {
			fmt.Fprintf(&sb, " (相似度: %.2f%%)", c.Score*100)
		}
		sb.WriteString("\n")
		if snippet := strings.TrimSpace(c.Snippet); snippet != "" {
			sb.WriteString("   ")
			sb.WriteString(textutil.Ellipsize(strings.Join(strings.Fields(snippet), " "), citationSnippetRunes))
			sb.WriteString("\n")
		}
	}

	return strings.TrimRight(sb.String(), "\n")
}

// RenderError maps a relay error to the text shown in the chat.
func RenderError(err error) string {
	return "❌ " + messages.ErrorText(err)
}

// SplitMessage cuts text into chunks Telegram accepts, preferring line breaks.
func SplitMessage(text string, limit int) []string {
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}

	var chunks []string
	var current strings.Builder
	currentRunes := 0

	flush := func() {
		if currentRunes > 0 {
			chunks = append(chunks, strings.TrimRight(current.String(), "\n"))
			current.Reset()
			currentRunes = 0
		}
	}

	for _, line := range strings.SplitAfter(text, "\n") {
		lineRunes := utf8.RuneCountInString(line)
		if currentRunes+lineRunes > limit {
			flush()
		}
		// A single line longer than the limit is hard-cut.
		for lineRunes > limit {
			head := textutil.Truncate(line, limit)
			chunks = append(chunks, head)
			line = line[len(head):]
			lineRunes -= limit
		}
		current.WriteString(line)
		currentRunes += lineRunes
	}
	flush()

	return chunks
}
