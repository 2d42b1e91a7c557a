package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"go.uber.org/zap"

	"github.com/aliskhannn/ai-quiz-bot/internal/domain/entities"
)

var (
	ErrInvalidEmail     = errors.New("invalid email address")
	ErrEmptyPassword    = errors.New("password is empty")
	ErrEmptyName        = errors.New("name is empty")
	ErrPasswordMismatch = errors.New("passwords do not match")
)

// AuthService logs chat users in against the quiz backend and remembers their identity.
type AuthService struct {
	auth       Authenticator
	identities IdentityStore
	logger     *zap.Logger
}

func NewAuthService(auth Authenticator, identities IdentityStore, logger *zap.Logger) *AuthService {
	return &AuthService{auth: auth, identities: identities, logger: logger}
}

func (s *AuthService) Login(ctx context.Context, chatUserID int64, email, password string) (*entities.User, error) {
	email = strings.TrimSpace(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidEmail
	}
	if password == "" {
		return nil, ErrEmptyPassword
	}

	user, err := s.auth.Login(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	s.identities.Put(chatUserID, *user)
	s.logger.Info("user logged in", zap.Int64("user_id", chatUserID), zap.String("uid", user.UID))

	return user, nil
}

// Register creates an account and logs the chat user in with it.
// The password doubles as its confirmation since chat users type it once.
func (s *AuthService) Register(ctx context.Context, chatUserID int64, name, email, password string) (*entities.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	email = strings.TrimSpace(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidEmail
	}
	if password == "" {
		return nil, ErrEmptyPassword
	}

	user, err := s.auth.Register(ctx, name, email, password, password)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	s.identities.Put(chatUserID, *user)
	s.logger.Info("user registered", zap.Int64("user_id", chatUserID), zap.String("uid", user.UID))

	return user, nil
}

func (s *AuthService) Logout(chatUserID int64) {
	s.identities.Delete(chatUserID)
	s.logger.Info("user logged out", zap.Int64("user_id", chatUserID))
}

// CurrentUser returns the identity of a chat user, if logged in.
func (s *AuthService) CurrentUser(chatUserID int64) (entities.User, bool) {
	return s.identities.Get(chatUserID)
}
