package config

import "github.com/fscqa/fsc-qa/internal/entity"

// DefaultCatalog is the production set of File Search stores.
func DefaultCatalog() entity.Catalog {
	return entity.Catalog{
		{
			Key:         entity.CorpusEnforcementCases,
			StoreName:   "fileSearchStores/fscpenaltiesplaintext-4f87t5uexgui",
			DisplayName: "裁罰案件",
			Icon:        "⚖️",
			Description: "490 筆金融機構裁罰案件 (2012-2025)",
			Documents:   490,
			Guideline: `【裁罰案件指引】
- 列舉具體案例與裁罰內容
- 說明受罰機構、罰款金額、違規行為
- 引用相關法律依據`,
		},
		{
			Key:         entity.CorpusRegulatoryInterpretations,
			StoreName:   "fileSearchStores/fsclawinterpretations-zz5pwrly06hz",
			DisplayName: "法令函釋",
			Icon:        "📜",
			Description: "法規解釋、修正說明、條文對照",
			Documents:   2872,
			Guideline: `【法令函釋指引】
- 解釋法規的具體含義
- 列出修正前後的差異（如有）
- 引用發文字號`,
		},
		{
			Key:         entity.CorpusAnnouncements,
			StoreName:   "fileSearchStores/fscannouncements-o94q0kmo2zxb",
			DisplayName: "重要公告",
			Icon:        "📢",
			Description: "政策公告、法規修正公告",
			Documents:   1642,
			Guideline: `【重要公告指引】
- 說明公告的主要內容
- 列出生效日期（如有）
- 引用公告文號`,
		},
	}
}

// DefaultExampleQuestions are offered as shortcuts while the question box is empty.
func DefaultExampleQuestions() []string {
	return []string{
		"違反金控法利害關係人規定會受到什麼處罰？",
		"請問在證券因為專業投資人資格審核的裁罰有哪些？",
		"辦理共同行銷被裁罰的案例有哪些？",
		"金管會對創投公司的裁罰有哪些？",
		"證券商遭主管機關裁罰「警告」處分，有哪些業務會受限制？",
		"內線交易有罪判決所認定重大訊息成立的時點",
	}
}

// DefaultSelection is the corpus pre-selected for a new session.
func DefaultSelection() []string {
	return []string{entity.CorpusEnforcementCases}
}
