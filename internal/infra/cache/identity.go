package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/aliskhannn/ai-quiz-bot/internal/domain/entities"
	"github.com/aliskhannn/ai-quiz-bot/internal/storage"
)

const (
	identityPrefix = "quizbot:identity:"
	opTimeout      = 2 * time.Second
)

type identityRecord struct {
	UID         string    `json:"uid"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	Username    string    `json:"username"`
	Token       string    `json:"token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// IdentityStore keeps logged-in Telegram users in Redis so logins survive a restart.
// Keys expire together with the user's token.
type IdentityStore struct {
	client redis.Cmdable
	logger *zap.Logger
	now    func() time.Time
}

func NewIdentityStore(client redis.Cmdable, logger *zap.Logger) *IdentityStore {
	return &IdentityStore{
		client: client,
		logger: logger,
		now:    time.Now,
	}
}

func identityKey(userID int64) string {
	return identityPrefix + strconv.FormatInt(userID, 10)
}

func (s *IdentityStore) Put(userID int64, user entities.User) {
	var ttl time.Duration
	if !user.ExpiresAt.IsZero() {
		ttl = user.ExpiresAt.Sub(s.now())
		if ttl <= 0 {
			return
		}
	}

	data, err := json.Marshal(identityRecord(user))
	if err != nil {
		s.logger.Error("failed to encode identity", zap.Int64("user_id", userID), zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if err := s.client.Set(ctx, identityKey(userID), data, ttl).Err(); err != nil {
		s.logger.Error("failed to store identity", zap.Int64("user_id", userID), zap.Error(err))
	}
}

// Get returns the stored identity. Redis failures are logged and reported as logged out.
func (s *IdentityStore) Get(userID int64) (entities.User, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	data, err := s.client.Get(ctx, identityKey(userID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Error("failed to load identity", zap.Int64("user_id", userID), zap.Error(err))
		}
		return entities.User{}, false
	}

	var rec identityRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		s.logger.Warn("dropping unreadable identity", zap.Int64("user_id", userID), zap.Error(err))
		s.Delete(userID)
		return entities.User{}, false
	}

	user := entities.User(rec)
	if user.Expired(s.now()) {
		s.Delete(userID)
		return entities.User{}, false
	}

	return user, true
}

func (s *IdentityStore) Delete(userID int64) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if err := s.client.Del(ctx, identityKey(userID)).Err(); err != nil {
		s.logger.Error("failed to delete identity", zap.Int64("user_id", userID), zap.Error(err))
	}
}

// For returns an identity provider bound to one Telegram user.
func (s *IdentityStore) For(userID int64) storage.ChatIdentity {
	return storage.IdentityFor(s, userID)
}
