package query

import (
	"strings"

	"github.com/fscqa/fsc-qa/internal/entity"
)

const basePrompt = `你是專業的金融法規顧問。請根據參考資料回答問題。

回答時必須：
1. 明確引用來源文件（檔案名稱、日期）
2. 如果資料中沒有相關資訊，請誠實說明
3. 使用繁體中文回答
4. 保持專業、客觀的態度
`

// BuildSystemInstruction appends the guideline of every selected corpus, in
// catalog order, to the base prompt. Each block is preceded by a blank line.
func BuildSystemInstruction(corpora []entity.Corpus) string {
	guidelines := make([]string, 0, len(corpora))
	for _, c := range corpora {
		if g := strings.TrimSpace(c.Guideline); g != "" {
			guidelines = append(guidelines, g)
		}
	}

	if len(guidelines) == 0 {
		return basePrompt
	}
	return basePrompt + "\n\n" + strings.Join(guidelines, "\n\n")
}
