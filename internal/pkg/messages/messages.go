package messages

import (
	"errors"

	"github.com/fscqa/fsc-qa/internal/entity"
)

// User-facing texts shared by the web page, the Telegram bot and the CLI.
const (
	AppTitle         = "金管會智能問答"
	QueryDone        = "✅ 查詢完成"
	NoCorpusSelected = "請至少選擇一個資料來源"
	MissingAPIKey    = "請設定 GEMINI_API_KEY"
	NoSources        = "你查詢的問題在目前的文件庫中沒有合適的結果，請嘗試換個方式描述您的問題。"
	RetriedNote      = "⚠️ 第一次查詢未找到參考來源，已自動重試。"
	Disclaimer       = "⚠️ 本系統僅供參考，回答內容以主管機關公告為準。"
	QuestionHint     = "例如：哪些銀行因為理專挪用客戶款項被裁罰？"
	RateLimited      = "請求過於頻繁，請稍後再試"
	failurePrefix    = "查詢失敗: "
)

// ErrorText turns a relay error into the message shown to the user.
func ErrorText(err error) string {
	switch {
	case errors.Is(err, entity.ErrEmptyQuestion):
		return "請輸入您的問題"
	case errors.Is(err, entity.ErrQuestionTooLong):
		return "問題過長，請精簡後再試"
	case errors.Is(err, entity.ErrNoCorpusSelected):
		return NoCorpusSelected
	case errors.Is(err, entity.ErrUnknownCorpus):
		return "選取的資料來源不存在"
	case errors.Is(err, entity.ErrQueryInFlight):
		return "查詢進行中，請稍候"
	case errors.Is(err, entity.ErrProviderUnavailable):
		return failurePrefix + "無法連線至 Gemini 服務，請稍後再試"
	case errors.Is(err, entity.ErrProviderAuth):
		return failurePrefix + "Gemini API 金鑰無效或權限不足"
	case errors.Is(err, entity.ErrProviderQuota):
		return failurePrefix + "Gemini API 使用量已達上限，請稍後再試"
	case errors.Is(err, entity.ErrMalformedResponse):
		return failurePrefix + "Gemini 回應格式異常"
	default:
		return failurePrefix + err.Error()
	}
}
