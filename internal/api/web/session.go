package web

import (
	"sync"
	"time"

	"github.com/fscqa/fsc-qa/internal/entity"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// Session is the per-browser page state.
type Session struct {
	ID string

	mu       sync.Mutex
	question string
	corpora  []string
	result   *entity.QueryResult
	errText  string

	// inFlight is held for the duration of a provider round trip.
	inFlight sync.Mutex
}

type sessionState struct {
	Question string
	Corpora  []string
	Result   *entity.QueryResult
	Error    string
}

func (s *Session) snapshot() sessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sessionState{
		Question: s.question,
		Corpora:  append([]string(nil), s.corpora...),
		Result:   s.result,
		Error:    s.errText,
	}
}

func (s *Session) update(fn func(s *Session)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s)
}

// SessionStore keeps sessions in memory until they have been idle for the TTL.
type SessionStore struct {
	sessions       *cache.Cache
	ttl            time.Duration
	defaultCorpora []string
}

func NewSessionStore(ttl time.Duration, defaultCorpora []string) *SessionStore {
	return &SessionStore{
		sessions:       cache.New(ttl, ttl/2),
		ttl:            ttl,
		defaultCorpora: defaultCorpora,
	}
}

// Get returns the session for id and refreshes its expiry.
func (st *SessionStore) Get(id string) (*Session, bool) {
	if id == "" {
		return nil, false
	}
	v, ok := st.sessions.Get(id)
	if !ok {
		return nil, false
	}
	s := v.(*Session)
	st.sessions.Set(id, s, cache.DefaultExpiration)
	return s, true
}

// New starts a session with the default corpus selection.
func (st *SessionStore) New() *Session {
	s := &Session{
		ID:      uuid.New().String(),
		corpora: append([]string(nil), st.defaultCorpora...),
	}
	st.sessions.Set(s.ID, s, cache.DefaultExpiration)
	return s
}
