package web

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/fscqa/fsc-qa/internal/config"
	"github.com/fscqa/fsc-qa/internal/entity"
	"github.com/fscqa/fsc-qa/internal/pkg/logger"
	"github.com/fscqa/fsc-qa/internal/pkg/messages"
	"github.com/go-chi/chi/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templatesFS embed.FS

const maxFormBytes = 64 << 10

type QueryUsecase interface {
	Ask(ctx context.Context, req entity.QueryRequest) (*entity.QueryResult, error)
	Corpora() []entity.Corpus
	Examples() []string
	ExportFormats() []entity.ExportFormat
}

type Handler struct {
	usecase  QueryUsecase
	sessions *SessionStore
	cfg      config.WebConfig
	tmpl     *template.Template
	md       goldmark.Markdown
}

func NewHandler(usecase QueryUsecase, sessions *SessionStore, cfg config.WebConfig) (*Handler, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	return &Handler{
		usecase:  usecase,
		sessions: sessions,
		cfg:      cfg,
		tmpl:     tmpl,
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithHardWraps()),
		),
	}, nil
}

// Index handles GET /
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "Index")
	session := h.session(w, r)

	page, err := buildPage(entity.Catalog(h.usecase.Corpora()), h.usecase.Examples(), h.usecase.ExportFormats(), session.snapshot(), h.md)
	if err != nil {
		ctxzap.Error(ctx, "failed to build page", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := h.tmpl.ExecuteTemplate(w, "index.html", page); err != nil {
		ctxzap.Error(ctx, "failed to render page", zap.Error(err))
	}
}

// Ask handles POST /ask
func (h *Handler) Ask(w http.ResponseWriter, r *http.Request) {
	session := h.session(w, r)
	ctx := logger.WithSession(logger.WithAction(r.Context(), "WebAsk"), session.ID)

	question, corpora, ok := h.readForm(w, r)
	if !ok {
		return
	}

	session.update(func(s *Session) {
		s.question = question
		s.corpora = corpora
		s.errText = ""
	})

	// Empty question: nothing is sent, the page is shown again.
	if strings.TrimSpace(question) == "" {
		h.redirectHome(w, r)
		return
	}

	if len(corpora) == 0 {
		session.update(func(s *Session) {
			s.result = nil
			s.errText = messages.NoCorpusSelected
		})
		h.redirectHome(w, r)
		return
	}

	if !session.inFlight.TryLock() {
		ctxzap.Warn(ctx, "query already in flight for session")
		session.update(func(s *Session) { s.errText = messages.ErrorText(entity.ErrQueryInFlight) })
		h.redirectHome(w, r)
		return
	}
	defer session.inFlight.Unlock()

	result, err := h.usecase.Ask(ctx, entity.QueryRequest{Question: question, Corpora: corpora})
	if err != nil {
		ctxzap.Warn(ctx, "web query failed", zap.Error(err))
		session.update(func(s *Session) {
			s.result = nil
			s.errText = messages.ErrorText(err)
		})
		h.redirectHome(w, r)
		return
	}

	session.update(func(s *Session) {
		s.result = result
		s.errText = ""
	})
	h.redirectHome(w, r)
}

// RateLimited answers a throttled POST /ask with the page's error state.
// The typed question is kept.
func (h *Handler) RateLimited(w http.ResponseWriter, r *http.Request) {
	session := h.session(w, r)

	question, corpora, ok := h.readForm(w, r)
	if !ok {
		return
	}

	session.update(func(s *Session) {
		s.question = question
		s.corpora = corpora
		s.errText = messages.RateLimited
	})
	h.redirectHome(w, r)
}

// Clear handles POST /clear. The corpus selection is kept.
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	session := h.session(w, r)

	_, corpora, ok := h.readForm(w, r)
	if !ok {
		return
	}

	session.update(func(s *Session) {
		s.question = ""
		s.corpora = corpora
		s.result = nil
		s.errText = ""
	})
	h.redirectHome(w, r)
}

// UseExample handles POST /example/{idx}
func (h *Handler) UseExample(w http.ResponseWriter, r *http.Request) {
	session := h.session(w, r)

	_, corpora, ok := h.readForm(w, r)
	if !ok {
		return
	}

	examples := h.usecase.Examples()
	idx, err := strconv.Atoi(chi.URLParam(r, "idx"))
	if err != nil || idx < 0 || idx >= len(examples) {
		http.Error(w, "unknown example", http.StatusNotFound)
		return
	}

	session.update(func(s *Session) {
		s.question = examples[idx]
		s.corpora = corpora
		s.result = nil
		s.errText = ""
	})
	h.redirectHome(w, r)
}

// readForm returns the question and the checked corpora. Unknown keys are dropped.
func (h *Handler) readForm(w http.ResponseWriter, r *http.Request) (string, []string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return "", nil, false
	}

	catalog := entity.Catalog(h.usecase.Corpora())
	checked := r.PostForm["corpus"]
	corpora := make([]string, 0, len(checked))
	for _, key := range catalog.Keys() {
		for _, c := range checked {
			if c == key {
				corpora = append(corpora, key)
				break
			}
		}
	}

	return r.PostForm.Get("question"), corpora, true
}

// session returns the caller's session, starting one and setting the cookie if needed.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) *Session {
	if c, err := r.Cookie(h.cfg.SessionCookie); err == nil {
		if s, ok := h.sessions.Get(c.Value); ok {
			return s
		}
	} else if !errors.Is(err, http.ErrNoCookie) {
		ctxzap.Debug(r.Context(), "unreadable session cookie", zap.Error(err))
	}

	s := h.sessions.New()
	http.SetCookie(w, &http.Cookie{
		Name:     h.cfg.SessionCookie,
		Value:    s.ID,
		Path:     "/",
		MaxAge:   int(h.cfg.SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.cfg.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	return s
}

func (h *Handler) redirectHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
