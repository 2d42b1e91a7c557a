package service

import (
	"context"
	"time"

	"github.com/aliskhannn/ai-quiz-bot/internal/domain/entities"
)

// QuestionGenerator produces raw questions for a topic.
type QuestionGenerator interface {
	GenerateQuestions(ctx context.Context, topic string, count int) (*entities.RawQuiz, error)
}

// ResultSaver persists finished quizzes.
type ResultSaver interface {
	SaveResult(ctx context.Context, result *entities.QuizResult) error
}

// HistoryRepository lists a user's finished quizzes, newest first.
type HistoryRepository interface {
	History(ctx context.Context, userID string) ([]entities.HistoryEntry, error)
}

// ProfileProvider fetches the backend profile of a user.
type ProfileProvider interface {
	Profile(ctx context.Context, userID string) (*entities.Profile, error)
}

// Authenticator exchanges credentials for an identity.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*entities.User, error)
	Register(ctx context.Context, name, email, password, confirmPassword string) (*entities.User, error)
}

// IdentityProvider supplies the user a session belongs to, if anyone is logged in.
type IdentityProvider interface {
	CurrentUser() (entities.User, bool)
}

// IdentityStore keeps identities of logged-in chat users.
type IdentityStore interface {
	Put(chatUserID int64, user entities.User)
	Get(chatUserID int64) (entities.User, bool)
	Delete(chatUserID int64)
}

// IdleSessionStore evicts quiz sessions that have not been used for a while.
type IdleSessionStore interface {
	EvictIdle(before time.Time) int
}
