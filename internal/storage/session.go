package storage

import (
	"sync"
	"time"

	"github.com/aliskhannn/ai-quiz-bot/internal/service"
)

// SessionFactory builds a fresh quiz session for a Telegram user.
type SessionFactory func(userID int64) *service.QuizSession

type sessionEntry struct {
	session  *service.QuizSession
	lastUsed time.Time
}

// SessionStorage provides in-memory storage for quiz sessions by Telegram user ID.
type SessionStorage struct {
	mu       sync.RWMutex
	sessions map[int64]*sessionEntry
	factory  SessionFactory
	now      func() time.Time
}

// NewSessionStorage creates a new SessionStorage.
func NewSessionStorage(factory SessionFactory) *SessionStorage {
	return &SessionStorage{
		sessions: make(map[int64]*sessionEntry),
		factory:  factory,
		now:      time.Now,
	}
}

// Get returns the user's session, creating one on first use, and marks it as used.
func (s *SessionStorage) Get(userID int64) *service.QuizSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.sessions[userID]
	if !ok {
		entry = &sessionEntry{session: s.factory(userID)}
		s.sessions[userID] = entry
	}
	entry.lastUsed = s.now()

	return entry.session
}

// Peek returns the user's session without creating or touching it.
func (s *SessionStorage) Peek(userID int64) (*service.QuizSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.sessions[userID]
	if !ok {
		return nil, false
	}
	return entry.session, true
}

// Delete removes the user's session.
func (s *SessionStorage) Delete(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
}

// EvictIdle resets and removes sessions last used before the given time.
// Sessions with a request in flight are kept.
func (s *SessionStorage) EvictIdle(before time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for userID, entry := range s.sessions {
		if !entry.lastUsed.Before(before) || entry.session.Busy() {
			continue
		}
		entry.session.ResetQuiz()
		delete(s.sessions, userID)
		evicted++
	}

	return evicted
}

// Len returns the number of stored sessions.
func (s *SessionStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
