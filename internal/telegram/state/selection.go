package state

import (
	"strconv"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// Chat is the per-chat bot state: the corpus selection and the in-flight guard.
type Chat struct {
	mu      sync.Mutex
	corpora []string

	// inFlight is held while a question from this chat is being answered.
	inFlight sync.Mutex
}

// Corpora returns a copy of the selected corpus keys.
func (c *Chat) Corpora() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.corpora...)
}

// Toggle adds key to the selection or removes it when already selected.
// The selection keeps the order given by catalogKeys.
func (c *Chat) Toggle(key string, catalogKeys []string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	selected := make(map[string]bool, len(c.corpora)+1)
	for _, k := range c.corpora {
		selected[k] = true
	}
	selected[key] = !selected[key]

	next := make([]string, 0, len(selected))
	for _, k := range catalogKeys {
		if selected[k] {
			next = append(next, k)
		}
	}
	c.corpora = next
	return append([]string(nil), next...)
}

// TryBegin marks the chat busy. It returns false when a question is already running.
func (c *Chat) TryBegin() bool {
	return c.inFlight.TryLock()
}

// Done releases the guard taken by TryBegin.
func (c *Chat) Done() {
	c.inFlight.Unlock()
}

// Store keeps chat state in memory until the chat has been idle for the TTL.
type Store struct {
	mu             sync.Mutex
	chats          *cache.Cache
	defaultCorpora []string
}

// NewStore creates a store that starts every chat with defaultCorpora selected.
func NewStore(ttl time.Duration, defaultCorpora []string) *Store {
	return &Store{
		chats:          cache.New(ttl, ttl/2),
		defaultCorpora: append([]string(nil), defaultCorpora...),
	}
}

// Chat returns the state for chatID, creating it on first use, and refreshes its expiry.
func (s *Store) Chat(chatID int64) *Chat {
	key := strconv.FormatInt(chatID, 10)

	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := s.chats.Get(key); ok {
		chat := v.(*Chat)
		s.chats.Set(key, chat, cache.DefaultExpiration)
		return chat
	}

	chat := &Chat{corpora: append([]string(nil), s.defaultCorpora...)}
	s.chats.Set(key, chat, cache.DefaultExpiration)
	return chat
}
