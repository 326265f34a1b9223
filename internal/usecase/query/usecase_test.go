package query

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/fscqa/fsc-qa/internal/config"
	"github.com/fscqa/fsc-qa/internal/entity"
	"github.com/fscqa/fsc-qa/internal/pkg/formatter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeConnector struct {
	mu      sync.Mutex
	queries []*entity.FileSearchQuery
	answers []*entity.FileSearchAnswer
	errs    []error
}

func (f *fakeConnector) Search(_ context.Context, q *entity.FileSearchQuery) (*entity.FileSearchAnswer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	i := len(f.queries)
	f.queries = append(f.queries, q)

	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	if i < len(f.answers) {
		return f.answers[i], nil
	}
	return &entity.FileSearchAnswer{Text: "預設回答"}, nil
}

type memoryResults struct {
	items map[string]*entity.QueryResult
}

func (m *memoryResults) Save(r *entity.QueryResult) { m.items[r.ID] = r }

func (m *memoryResults) Get(id string) (*entity.QueryResult, bool) {
	r, ok := m.items[id]
	return r, ok
}

type fakeQueryLog struct {
	records   []entity.QueryLogRecord
	err       error
	lastLimit int
}

func (f *fakeQueryLog) Insert(_ context.Context, r entity.QueryLogRecord) error {
	f.records = append(f.records, r)
	return f.err
}

func (f *fakeQueryLog) ListRecent(_ context.Context, limit int) ([]entity.QueryLogRecord, error) {
	f.lastLimit = limit
	if len(f.records) > limit {
		return f.records[:limit], nil
	}
	return f.records, nil
}

type fixture struct {
	uc        *QueryUsecase
	connector *fakeConnector
	results   *memoryResults
	queryLog  *fakeQueryLog
}

func newFixture(cfg config.QueryConfig) *fixture {
	f := &fixture{
		connector: &fakeConnector{},
		results:   &memoryResults{items: map[string]*entity.QueryResult{}},
		queryLog:  &fakeQueryLog{},
	}
	f.uc = NewUsecase(
		config.DefaultCatalog(),
		config.DefaultExampleQuestions(),
		cfg,
		f.connector,
		f.results,
		f.queryLog,
		formatter.NewFactory(""),
		zap.NewNop(),
	)
	return f
}

func defaultQueryConfig() config.QueryConfig {
	return config.QueryConfig{MaxQuestionRunes: 2000}
}

func TestAsk_EnforcementCasesScopedToOneStore(t *testing.T) {
	f := newFixture(defaultQueryConfig())
	f.connector.answers = []*entity.FileSearchAnswer{{
		Text:      "XX銀行遭罰鍰600萬元",
		Citations: []entity.Citation{{Title: "裁處書-1130101.txt", Score: 1}},
	}}

	result, err := f.uc.Ask(context.Background(), entity.QueryRequest{
		Question: "  請問XX銀行遭罰案件  ",
		Corpora:  []string{entity.CorpusEnforcementCases},
	})
	require.NoError(t, err)

	require.Len(t, f.connector.queries, 1)
	sent := f.connector.queries[0]
	assert.Equal(t, "請問XX銀行遭罰案件", sent.Question)
	assert.Equal(t, []string{"fileSearchStores/fscpenaltiesplaintext-4f87t5uexgui"}, sent.StoreNames)
	assert.Contains(t, sent.SystemInstruction, "【裁罰案件指引】")
	assert.NotContains(t, sent.SystemInstruction, "【法令函釋指引】")

	assert.NotEmpty(t, result.ID)
	assert.Equal(t, "XX銀行遭罰鍰600萬元", result.Answer)
	assert.Equal(t, []string{entity.CorpusEnforcementCases}, result.Corpora)
	assert.Equal(t, []string{"⚖️ 裁罰案件"}, result.Scope)
	require.Len(t, result.Citations, 1)
	assert.Equal(t, "裁處書-1130101.txt", result.Citations[0].Title)

	cached, err := f.uc.Result(result.ID)
	require.NoError(t, err)
	assert.Same(t, result, cached)

	require.Len(t, f.queryLog.records, 1)
	assert.Equal(t, entity.QueryStatusAnswered, f.queryLog.records[0].Status)
	assert.Equal(t, 1, f.queryLog.records[0].CitationCount)
}

func TestAsk_InvalidInputIssuesNoRequest(t *testing.T) {
	tests := []struct {
		name    string
		req     entity.QueryRequest
		wantErr error
	}{
		{"empty question", entity.QueryRequest{Question: "", Corpora: []string{entity.CorpusAnnouncements}}, entity.ErrEmptyQuestion},
		{"whitespace question", entity.QueryRequest{Question: " \n\t", Corpora: []string{entity.CorpusAnnouncements}}, entity.ErrEmptyQuestion},
		{"too long", entity.QueryRequest{Question: strings.Repeat("罰", 2001), Corpora: []string{entity.CorpusAnnouncements}}, entity.ErrQuestionTooLong},
		{"no corpus", entity.QueryRequest{Question: "問題"}, entity.ErrNoCorpusSelected},
		{"unknown corpus", entity.QueryRequest{Question: "問題", Corpora: []string{"court-rulings"}}, entity.ErrUnknownCorpus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(defaultQueryConfig())

			_, err := f.uc.Ask(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, f.connector.queries)
			assert.Empty(t, f.queryLog.records)
		})
	}
}

func TestAsk_AllCorporaInCatalogOrder(t *testing.T) {
	f := newFixture(defaultQueryConfig())

	result, err := f.uc.Ask(context.Background(), entity.QueryRequest{
		Question: "共同行銷",
		Corpora: []string{
			entity.CorpusAnnouncements,
			entity.CorpusEnforcementCases,
			entity.CorpusRegulatoryInterpretations,
			entity.CorpusAnnouncements,
		},
	})
	require.NoError(t, err)

	require.Len(t, f.connector.queries, 1)
	assert.Equal(t, []string{
		"fileSearchStores/fscpenaltiesplaintext-4f87t5uexgui",
		"fileSearchStores/fsclawinterpretations-zz5pwrly06hz",
		"fileSearchStores/fscannouncements-o94q0kmo2zxb",
	}, f.connector.queries[0].StoreNames)
	assert.Equal(t, []string{
		entity.CorpusEnforcementCases,
		entity.CorpusRegulatoryInterpretations,
		entity.CorpusAnnouncements,
	}, result.Corpora)
	assert.NotNil(t, result.Citations)
}

func TestAsk_ProviderErrorIsSurfaced(t *testing.T) {
	f := newFixture(defaultQueryConfig())
	f.connector.errs = []error{fmt.Errorf("%w: HTTP 429", entity.ErrProviderQuota)}

	result, err := f.uc.Ask(context.Background(), entity.QueryRequest{
		Question: "問題",
		Corpora:  []string{entity.CorpusEnforcementCases},
	})
	assert.Nil(t, result)
	assert.ErrorIs(t, err, entity.ErrProviderQuota)
	assert.True(t, IsProviderError(err))
	assert.Len(t, f.connector.queries, 1)

	require.Len(t, f.queryLog.records, 1)
	assert.Equal(t, entity.QueryStatusFailed, f.queryLog.records[0].Status)
	assert.Contains(t, f.queryLog.records[0].Error, "HTTP 429")
	assert.Empty(t, f.results.items)
}

func TestAsk_AuditFailureIsNotSurfaced(t *testing.T) {
	f := newFixture(defaultQueryConfig())
	f.queryLog.err = errors.New("connection refused")

	_, err := f.uc.Ask(context.Background(), entity.QueryRequest{
		Question: "問題",
		Corpora:  []string{entity.CorpusEnforcementCases},
	})
	assert.NoError(t, err)
}

func TestAsk_NilQueryLog(t *testing.T) {
	connector := &fakeConnector{}
	uc := NewUsecase(config.DefaultCatalog(), nil, defaultQueryConfig(), connector,
		&memoryResults{items: map[string]*entity.QueryResult{}}, nil, formatter.NewFactory(""), zap.NewNop())

	_, err := uc.Ask(context.Background(), entity.QueryRequest{
		Question: "問題",
		Corpora:  []string{entity.CorpusEnforcementCases},
	})
	assert.NoError(t, err)
}

func TestAsk_NoSourcesIsNotRetriedByDefault(t *testing.T) {
	f := newFixture(defaultQueryConfig())
	f.connector.answers = []*entity.FileSearchAnswer{{Text: "查無資料"}}

	result, err := f.uc.Ask(context.Background(), entity.QueryRequest{
		Question: "問題",
		Corpora:  []string{entity.CorpusEnforcementCases},
	})
	require.NoError(t, err)
	assert.Len(t, f.connector.queries, 1)
	assert.False(t, result.HasCitations())
	assert.False(t, result.Retried)
}

func TestAsk_RetryOnEmptySources(t *testing.T) {
	cfg := defaultQueryConfig()
	cfg.RetryOnEmptySources = true

	t.Run("second answer cites sources", func(t *testing.T) {
		f := newFixture(cfg)
		f.connector.answers = []*entity.FileSearchAnswer{
			{Text: "第一次"},
			{Text: "第二次", Citations: []entity.Citation{{Title: "a.txt", Score: 1}}},
		}

		result, err := f.uc.Ask(context.Background(), entity.QueryRequest{
			Question: "問題",
			Corpora:  []string{entity.CorpusEnforcementCases},
		})
		require.NoError(t, err)
		assert.Len(t, f.connector.queries, 2)
		assert.Equal(t, "第二次", result.Answer)
		assert.True(t, result.Retried)
	})

	t.Run("second answer still empty keeps first", func(t *testing.T) {
		f := newFixture(cfg)
		f.connector.answers = []*entity.FileSearchAnswer{{Text: "第一次"}, {Text: "第二次"}}

		result, err := f.uc.Ask(context.Background(), entity.QueryRequest{
			Question: "問題",
			Corpora:  []string{entity.CorpusEnforcementCases},
		})
		require.NoError(t, err)
		assert.Len(t, f.connector.queries, 2)
		assert.Equal(t, "第一次", result.Answer)
		assert.False(t, result.Retried)
	})

	t.Run("second attempt failing keeps first", func(t *testing.T) {
		f := newFixture(cfg)
		f.connector.answers = []*entity.FileSearchAnswer{{Text: "第一次"}}
		f.connector.errs = []error{nil, entity.ErrProviderUnavailable}

		result, err := f.uc.Ask(context.Background(), entity.QueryRequest{
			Question: "問題",
			Corpora:  []string{entity.CorpusEnforcementCases},
		})
		require.NoError(t, err)
		assert.Equal(t, "第一次", result.Answer)
	})
}

func TestExport(t *testing.T) {
	f := newFixture(defaultQueryConfig())
	result, err := f.uc.Ask(context.Background(), entity.QueryRequest{
		Question: "問題",
		Corpora:  []string{entity.CorpusEnforcementCases},
	})
	require.NoError(t, err)

	file, err := f.uc.Export(context.Background(), result.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "text/markdown; charset=utf-8", file.ContentType)
	assert.True(t, strings.HasPrefix(file.Filename, "fsc-qa-"))
	assert.True(t, strings.HasSuffix(file.Filename, ".md"))
	assert.Contains(t, string(file.Content), "預設回答")

	_, err = f.uc.Export(context.Background(), result.ID, "xlsx")
	assert.ErrorIs(t, err, entity.ErrUnsupportedFormat)

	// Without a CJK font or a unioffice license only Markdown renders.
	assert.Equal(t, []entity.ExportFormat{entity.FormatMarkdown}, f.uc.ExportFormats())
	_, err = f.uc.Export(context.Background(), result.ID, entity.FormatPDF)
	assert.ErrorIs(t, err, entity.ErrUnsupportedFormat)

	_, err = f.uc.Export(context.Background(), "missing", entity.FormatMarkdown)
	assert.ErrorIs(t, err, entity.ErrResultNotFound)
}

func TestCorporaAndExamplesAreCopies(t *testing.T) {
	f := newFixture(defaultQueryConfig())

	corpora := f.uc.Corpora()
	require.Len(t, corpora, 3)
	corpora[0].DisplayName = "changed"
	assert.Equal(t, "裁罰案件", f.uc.Corpora()[0].DisplayName)

	assert.Len(t, f.uc.Examples(), 6)
}

func TestRecentQueries(t *testing.T) {
	f := newFixture(defaultQueryConfig())
	_, err := f.uc.Ask(context.Background(), entity.QueryRequest{
		Question: "問題",
		Corpora:  []string{entity.CorpusEnforcementCases},
	})
	require.NoError(t, err)

	records, err := f.uc.RecentQueries(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, defaultRecentLimit, f.queryLog.lastLimit)

	_, err = f.uc.RecentQueries(context.Background(), 10000)
	require.NoError(t, err)
	assert.Equal(t, maxRecentLimit, f.queryLog.lastLimit)

	noAudit := NewUsecase(config.DefaultCatalog(), nil, defaultQueryConfig(), &fakeConnector{},
		&memoryResults{items: map[string]*entity.QueryResult{}}, nil, formatter.NewFactory(""), zap.NewNop())
	_, err = noAudit.RecentQueries(context.Background(), 5)
	assert.ErrorIs(t, err, entity.ErrAuditDisabled)
}

func TestBuildSystemInstruction(t *testing.T) {
	catalog := config.DefaultCatalog()

	assert.Equal(t, basePrompt, BuildSystemInstruction(nil))

	prompt := BuildSystemInstruction(catalog)
	penalties := strings.Index(prompt, "【裁罰案件指引】")
	interpretations := strings.Index(prompt, "【法令函釋指引】")
	announcements := strings.Index(prompt, "【重要公告指引】")
	assert.True(t, strings.HasPrefix(prompt, basePrompt))
	assert.True(t, penalties > 0 && penalties < interpretations && interpretations < announcements)

	single := BuildSystemInstruction(catalog[:1])
	assert.Equal(t, basePrompt+"\n\n"+catalog[0].Guideline, single)
	assert.Contains(t, single, "保持專業、客觀的態度\n\n【裁罰案件指引】")
	assert.Contains(t, prompt, "引用相關法律依據\n\n【法令函釋指引】")
}
