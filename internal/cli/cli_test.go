package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/fscqa/fsc-qa/internal/config"
	"github.com/fscqa/fsc-qa/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

type fakeRelay struct {
	mu       sync.Mutex
	requests []entity.QueryRequest
	result   *entity.QueryResult
	err      error
}

func (f *fakeRelay) Ask(_ context.Context, req entity.QueryRequest) (*entity.QueryResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeRelay) Corpora() []entity.Corpus { return config.DefaultCatalog() }

func (f *fakeRelay) Examples() []string { return config.DefaultExampleQuestions() }

func sampleResult() *entity.QueryResult {
	return &entity.QueryResult{
		ID:       "result-1",
		Question: "請問XX銀行遭罰案件",
		Corpora:  []string{entity.CorpusEnforcementCases},
		Scope:    []string{"裁罰案件"},
		Answer:   "XX銀行因內控缺失遭核處罰鍰。",
		Citations: []entity.Citation{
			{Title: "XX銀行裁罰案.txt", Snippet: "核處新臺幣\n600 萬元罰鍰", Score: 0.75},
			{Title: "未知文件", Score: 1},
		},
		Latency:   1200 * time.Millisecond,
		LatencyMS: 1200,
	}
}

// run executes the root command with a fake relay and returns stdout.
func run(t *testing.T, r Relay, args ...string) (string, error) {
	t.Helper()

	previous := relay
	relay = r
	out := new(bytes.Buffer)
	rootCmd.SetOut(out)
	rootCmd.SetErr(new(bytes.Buffer))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		relay = previous
		rootCmd.SetArgs(nil)
		askJSON = false
		corporaJSON = false
		examplesJSON = false
		askCorpora = []string{entity.CorpusEnforcementCases}
	})

	err := rootCmd.Execute()
	return out.String(), err
}

func TestAskCmd_Use(t *testing.T) {
	assert.Equal(t, "ask [question]", askCmd.Use)

	flag := askCmd.Flags().Lookup("corpus")
	require.NotNil(t, flag)
	assert.Equal(t, "c", flag.Shorthand)
	assert.Equal(t, "[enforcement-cases]", flag.DefValue)
}

func TestAskCmd_RequiresQuestion(t *testing.T) {
	_, err := run(t, &fakeRelay{}, "ask")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 1 arg(s)")
}

func TestAskCmd_PrintsAnswerAndSources(t *testing.T) {
	fake := &fakeRelay{result: sampleResult()}

	out, err := run(t, fake, "ask", "請問XX銀行遭罰案件")
	require.NoError(t, err)

	require.Len(t, fake.requests, 1)
	assert.Equal(t, "請問XX銀行遭罰案件", fake.requests[0].Question)
	assert.Equal(t, []string{entity.CorpusEnforcementCases}, fake.requests[0].Corpora)

	assert.Contains(t, out, "✅ 查詢完成")
	assert.Contains(t, out, "回應時間: 1.20 秒 | 參考來源: 2 筆 | 查詢範圍: 裁罰案件")
	assert.Contains(t, out, "XX銀行因內控缺失遭核處罰鍰。")
	assert.Contains(t, out, "[1] XX銀行裁罰案.txt (相似度: 75.00%)")
	assert.Contains(t, out, "      核處新臺幣 600 萬元罰鍰")
	assert.Contains(t, out, "[2] 未知文件\n")
}

func TestAskCmd_JoinsArgsAndPassesCorpora(t *testing.T) {
	fake := &fakeRelay{result: sampleResult()}

	_, err := run(t, fake, "ask", "-c", entity.CorpusAnnouncements, "-c", entity.CorpusRegulatoryInterpretations, "內線交易", "時點")
	require.NoError(t, err)

	require.Len(t, fake.requests, 1)
	assert.Equal(t, "內線交易 時點", fake.requests[0].Question)
	assert.Equal(t, []string{entity.CorpusAnnouncements, entity.CorpusRegulatoryInterpretations}, fake.requests[0].Corpora)
}

func TestAskCmd_JSONOutput(t *testing.T) {
	out, err := run(t, &fakeRelay{result: sampleResult()}, "ask", "--json", "問題")
	require.NoError(t, err)

	var decoded entity.QueryResult
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "result-1", decoded.ID)
	assert.Equal(t, int64(1200), decoded.LatencyMS)
	assert.Len(t, decoded.Citations, 2)
}

func TestAskCmd_NoSources(t *testing.T) {
	result := sampleResult()
	result.Citations = nil

	out, err := run(t, &fakeRelay{result: result}, "ask", "問題")
	require.NoError(t, err)
	assert.Contains(t, out, "沒有合適的結果")
	assert.NotContains(t, out, "參考來源\n")
}

func TestAskCmd_ProviderError(t *testing.T) {
	fake := &fakeRelay{err: fmt.Errorf("search: %w", entity.ErrProviderUnavailable)}

	_, err := run(t, fake, "ask", "問題")
	require.Error(t, err)
	assert.True(t, errors.Is(err, entity.ErrProviderUnavailable))

	buf := new(bytes.Buffer)
	printError(buf, err)
	assert.Contains(t, buf.String(), "✗ 查詢失敗: ")
}

func TestCorporaCmd(t *testing.T) {
	out, err := run(t, &fakeRelay{}, "corpora")
	require.NoError(t, err)

	assert.Contains(t, out, "⚖️ 裁罰案件  enforcement-cases  (490 份文件)")
	assert.Contains(t, out, "regulatory-interpretations")
	assert.Contains(t, out, "announcements")
}

func TestCorporaCmd_JSON(t *testing.T) {
	out, err := run(t, &fakeRelay{}, "corpora", "--json")
	require.NoError(t, err)

	var corpora []entity.Corpus
	require.NoError(t, json.Unmarshal([]byte(out), &corpora))
	assert.Len(t, corpora, 3)
}

func TestExamplesCmd(t *testing.T) {
	out, err := run(t, &fakeRelay{}, "examples")
	require.NoError(t, err)

	assert.Contains(t, out, " 1. 違反金控法利害關係人規定會受到什麼處罰？")
	assert.Contains(t, out, " 6. 內線交易有罪判決所認定重大訊息成立的時點")
}

func TestConnectRelay_UsesFactoryAndCleansUp(t *testing.T) {
	fake := &fakeRelay{}
	cleaned := false

	previousFactory := newRelay
	newRelay = func(env string) (Relay, func(), error) {
		assert.Equal(t, "staging", env)
		return fake, func() { cleaned = true }, nil
	}
	t.Cleanup(func() {
		newRelay = previousFactory
		environment = "local"
	})

	_, err := run(t, nil, "--env", "staging", "examples")
	require.NoError(t, err)
	assert.True(t, cleaned)
}

func TestConnectRelay_FactoryError(t *testing.T) {
	previousFactory := newRelay
	newRelay = func(string) (Relay, func(), error) {
		return nil, nil, errors.New("config validation failed: 請設定 GEMINI_API_KEY")
	}
	t.Cleanup(func() { newRelay = previousFactory })

	_, err := run(t, nil, "corpora")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")
}
