package storage

import (
	"sync"
	"time"

	"github.com/aliskhannn/ai-quiz-bot/internal/domain/entities"
)

// IdentityStorage keeps the identities of logged-in Telegram users.
type IdentityStorage struct {
	mu    sync.RWMutex
	users map[int64]entities.User
	now   func() time.Time
}

func NewIdentityStorage() *IdentityStorage {
	return &IdentityStorage{
		users: make(map[int64]entities.User),
		now:   time.Now,
	}
}

func (s *IdentityStorage) Put(userID int64, user entities.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[userID] = user
}

// Get returns the user's identity. Expired identities are dropped.
func (s *IdentityStorage) Get(userID int64) (entities.User, bool) {
	s.mu.RLock()
	user, ok := s.users[userID]
	s.mu.RUnlock()

	if !ok {
		return entities.User{}, false
	}

	if user.Expired(s.now()) {
		s.Delete(userID)
		return entities.User{}, false
	}

	return user, true
}

func (s *IdentityStorage) Delete(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, userID)
}

// For returns an identity provider bound to one Telegram user.
func (s *IdentityStorage) For(userID int64) ChatIdentity {
	return IdentityFor(s, userID)
}

// IdentityLookup is the read side of an identity store.
type IdentityLookup interface {
	Get(userID int64) (entities.User, bool)
}

// IdentityFor binds any identity store to one Telegram user.
func IdentityFor(store IdentityLookup, userID int64) ChatIdentity {
	return ChatIdentity{store: store, userID: userID}
}

// ChatIdentity resolves the current identity of a single Telegram user on every call,
// so logins and logouts are seen by an existing quiz session.
type ChatIdentity struct {
	store  IdentityLookup
	userID int64
}

func (c ChatIdentity) CurrentUser() (entities.User, bool) {
	return c.store.Get(c.userID)
}
