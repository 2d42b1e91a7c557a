package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/aliskhannn/ai-quiz-bot/internal/domain/entities"
	"github.com/aliskhannn/ai-quiz-bot/internal/service"
)

// Bot is the part of *tgbotapi.BotAPI the handler uses.
type Bot interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type SessionStore interface {
	Get(userID int64) *service.QuizSession
}

type AuthService interface {
	Login(ctx context.Context, chatUserID int64, email, password string) (*entities.User, error)
	Register(ctx context.Context, chatUserID int64, name, email, password string) (*entities.User, error)
	Logout(chatUserID int64)
	CurrentUser(chatUserID int64) (entities.User, bool)
}

type HistoryService interface {
	History(ctx context.Context, user entities.User) ([]entities.HistoryEntry, error)
	Profile(ctx context.Context, user entities.User) (*service.ProfileSummary, error)
}
