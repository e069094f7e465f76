package services

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// ChatSession is the cached conversation state of one user.
type ChatSession struct {
	UserID  string
	History []ChatTurn
}

type SessionStore interface {
	Get(userID string) (*ChatSession, bool)
	Put(session *ChatSession)
	Delete(userID string)
	Len() int
}

type memorySessionStore struct {
	cache *expirable.LRU[string, *ChatSession]
}

// NewMemorySessionStore keeps at most maxEntries sessions, evicting the least
// recently used one, and expires a session ttl after its last update.
func NewMemorySessionStore(maxEntries int, ttl time.Duration) SessionStore {
	if maxEntries < 1 {
		maxEntries = 1
	}
	return &memorySessionStore{
		cache: expirable.NewLRU[string, *ChatSession](maxEntries, nil, ttl),
	}
}

func (s *memorySessionStore) Get(userID string) (*ChatSession, bool) {
	session, ok := s.cache.Get(userID)
	if !ok {
		return nil, false
	}
	return cloneSession(session), true
}

func (s *memorySessionStore) Put(session *ChatSession) {
	s.cache.Add(session.UserID, cloneSession(session))
}

func (s *memorySessionStore) Delete(userID string) {
	s.cache.Remove(userID)
}

func (s *memorySessionStore) Len() int {
	return s.cache.Len()
}

func cloneSession(s *ChatSession) *ChatSession {
	return &ChatSession{
		UserID:  s.UserID,
		History: append([]ChatTurn(nil), s.History...),
	}
}
