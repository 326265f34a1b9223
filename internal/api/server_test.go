package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	queryapi "github.com/fscqa/fsc-qa/internal/api/query"
	webapi "github.com/fscqa/fsc-qa/internal/api/web"
	"github.com/fscqa/fsc-qa/internal/config"
	"github.com/fscqa/fsc-qa/internal/entity"
	"github.com/fscqa/fsc-qa/internal/integration/gemini"
	"github.com/fscqa/fsc-qa/internal/pkg/formatter"
	"github.com/fscqa/fsc-qa/internal/pkg/ratelimit"
	pkgRetry "github.com/fscqa/fsc-qa/internal/pkg/retry"
	"github.com/fscqa/fsc-qa/internal/repository"
	"github.com/fscqa/fsc-qa/internal/usecase/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const fakeGeminiAnswer = `{
  "candidates": [{
    "content": {"parts": [{"text": "XX銀行因內控缺失遭罰鍰。"}]},
    "groundingMetadata": {"groundingChunks": [
      {"retrievedContext": {"title": "裁處書-1130101.txt", "text": "內控缺失"}}
    ]}
  }]
}`

type fakeGemini struct {
	calls  atomic.Int32
	stores atomic.Value
	status int
}

func (f *fakeGemini) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.calls.Add(1)

	var req entity.GeminiGenerateContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err == nil && len(req.Tools) > 0 && req.Tools[0].FileSearch != nil {
		f.stores.Store(req.Tools[0].FileSearch.FileSearchStoreNames)
	}

	if f.status != 0 {
		w.WriteHeader(f.status)
		_, _ = io.WriteString(w, `{"error":{"code":503,"message":"overloaded","status":"UNAVAILABLE"}}`)
		return
	}
	_, _ = io.WriteString(w, fakeGeminiAnswer)
}

func newTestServer(t *testing.T, provider http.Handler) http.Handler {
	t.Helper()

	providerSrv := httptest.NewServer(provider)
	t.Cleanup(providerSrv.Close)

	geminiCfg := config.GeminiConfig{
		HTTPClientConfig: config.HTTPClientConfig{
			RequestTimeout:        5 * time.Second,
			ConnTimeout:           time.Second,
			KeepAlive:             time.Second,
			IdleConnTimeout:       time.Second,
			ResponseHeaderTimeout: 5 * time.Second,
			Url:                   providerSrv.URL,
		},
		APIKey:          "test-key",
		Model:           "gemini-2.5-flash",
		Temperature:     0.1,
		MaxOutputTokens: 2000,
		Retry:           *pkgRetry.DefaultRetryConfig(),
	}

	uc := query.NewUsecase(
		config.DefaultCatalog(),
		config.DefaultExampleQuestions(),
		config.QueryConfig{MaxQuestionRunes: 2000},
		gemini.NewConnector(geminiCfg, zap.NewNop()),
		repository.NewResultCache(time.Minute, time.Minute),
		nil,
		formatter.NewFactory(""),
		zap.NewNop(),
	)

	webCfg := config.WebConfig{SessionTTL: time.Hour, SessionCookie: "fscqa_session"}
	webHandler, err := webapi.NewHandler(uc, webapi.NewSessionStore(webCfg.SessionTTL, config.DefaultSelection()), webCfg)
	require.NoError(t, err)

	return SetupRouter(queryapi.NewHandler(uc), webHandler, ratelimit.NewKeyedLimiter(1, 2), 10*time.Second, zap.NewNop())
}

func postQuery(h http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/query", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestQuery_EndToEndScopedToSelectedStore(t *testing.T) {
	provider := &fakeGemini{}
	h := newTestServer(t, provider)

	rec := postQuery(h, `{"question":"請問XX銀行遭罰案件","corpora":["enforcement-cases"]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Equal(t, int32(1), provider.calls.Load())
	assert.Equal(t, []string{"fileSearchStores/fscpenaltiesplaintext-4f87t5uexgui"}, provider.stores.Load())

	var result entity.QueryResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "XX銀行因內控缺失遭罰鍰。", result.Answer)
	require.Len(t, result.Citations, 1)
	assert.Equal(t, "裁處書-1130101.txt", result.Citations[0].Title)

	exportReq := httptest.NewRequest(http.MethodGet, "/api/v1/results/"+result.ID+"/export?format=markdown", nil)
	exportRec := httptest.NewRecorder()
	h.ServeHTTP(exportRec, exportReq)
	require.Equal(t, http.StatusOK, exportRec.Code)
	assert.Contains(t, exportRec.Body.String(), "裁處書-1130101.txt")

	// No CJK font is configured in tests, so a PDF download is refused
	// instead of producing a document full of dots.
	pdfReq := httptest.NewRequest(http.MethodGet, "/api/v1/results/"+result.ID+"/export?format=pdf", nil)
	pdfRec := httptest.NewRecorder()
	h.ServeHTTP(pdfRec, pdfReq)
	assert.Equal(t, http.StatusBadRequest, pdfRec.Code)
}

func TestQuery_EmptyQuestionNeverReachesProvider(t *testing.T) {
	provider := &fakeGemini{}
	h := newTestServer(t, provider)

	rec := postQuery(h, `{"question":"   ","corpora":["enforcement-cases"]}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, int32(0), provider.calls.Load())
}

func TestQuery_ProviderOutageIs503(t *testing.T) {
	provider := &fakeGemini{status: http.StatusServiceUnavailable}
	h := newTestServer(t, provider)

	rec := postQuery(h, `{"question":"問題","corpora":["announcements"]}`)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, int32(1), provider.calls.Load())
}

func TestQuery_RateLimited(t *testing.T) {
	h := newTestServer(t, &fakeGemini{})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		codes = append(codes, postQuery(h, `{"question":"問題","corpora":["announcements"]}`).Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestWebAsk_RateLimitedShowsPageError(t *testing.T) {
	provider := &fakeGemini{}
	srv := httptest.NewServer(newTestServer(t, provider))
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{Jar: jar}

	form := url.Values{"question": {"請問XX銀行遭罰案件"}, "corpus": {entity.CorpusEnforcementCases}}
	var page string
	for i := 0; i < 3; i++ {
		resp, err := client.PostForm(srv.URL+"/ask", form)
		require.NoError(t, err)
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		require.NoError(t, err)

		// Redirects are followed back to the page.
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, "/", resp.Request.URL.Path)
		page = string(body)
	}

	assert.Equal(t, int32(2), provider.calls.Load())
	assert.Contains(t, page, `id="error"`)
	assert.Contains(t, page, "請求過於頻繁，請稍後再試")
	assert.NotContains(t, page, `"rate_limited"`)
	assert.Contains(t, page, "請問XX銀行遭罰案件")
}

func TestHealthMetricsAndDocs(t *testing.T) {
	h := newTestServer(t, &fakeGemini{})

	for path, want := range map[string]int{
		"/health":            http.StatusOK,
		"/metrics":           http.StatusOK,
		"/docs":              http.StatusFound,
		"/docs/swagger.yaml": http.StatusOK,
		"/":                  http.StatusOK,
	} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, want, rec.Code, path)
	}
}
