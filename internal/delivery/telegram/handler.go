package telegram

import (
	"context"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/aliskhannn/ai-quiz-bot/internal/client/quizapi"
)

type Config struct {
	DefaultQuestions int
	MaxQuestions     int
	HistoryLimit     int
	RequestTimeout   time.Duration
}

type Handler struct {
	bot      Bot
	logger   *zap.Logger
	sessions SessionStore
	auth     AuthService
	history  HistoryService
	cfg      Config
}

func NewHandler(
	bot Bot,
	logger *zap.Logger,
	sessions SessionStore,
	auth AuthService,
	history HistoryService,
	cfg Config,
) *Handler {
	return &Handler{
		bot:      bot,
		logger:   logger,
		sessions: sessions,
		auth:     auth,
		history:  history,
		cfg:      cfg,
	}
}

// Run receives updates until ctx is done. Every update is handled on its own goroutine;
// Run waits for in-flight updates before returning.
func (h *Handler) Run(ctx context.Context) error {
	h.logger.Info("telegram handler started")
	defer h.logger.Info("telegram handler stopped")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := h.bot.GetUpdatesChan(u)

	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		select {
		case <-ctx.Done():
			h.bot.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				h.handleUpdate(ctx, update)
			}()
		}
	}
}

func (h *Handler) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("panic while handling update",
				zap.Int("update_id", update.UpdateID),
				zap.Any("panic", r),
			)
		}
	}()

	if update.CallbackQuery != nil {
		h.logger.Debug("callback received",
			zap.Int64("user_id", update.CallbackQuery.From.ID),
			zap.String("data", update.CallbackQuery.Data),
		)
		h.handleCallback(ctx, update.CallbackQuery)
		return
	}

	if update.Message == nil || update.Message.From == nil {
		h.logger.Debug("update without message and callback")
		return
	}

	h.logger.Debug("update received",
		zap.Int64("chat_id", update.Message.Chat.ID),
		zap.Int64("user_id", update.Message.From.ID),
	)

	msg := update.Message
	userID := msg.From.ID
	chatID := msg.Chat.ID

	if !msg.IsCommand() {
		h.send(newPlainMessage(chatID, msgUnknownCommand))
		return
	}

	args := msg.CommandArguments()

	switch msg.Command() {
	case "start":
		h.send(newMessage(chatID, welcomeMessage(msg.From.FirstName)))

	case "help":
		h.send(newPlainMessage(chatID, msgHelp))

	case "quiz":
		_ = h.withErrorHandling(h.quizHandler(userID, args))(ctx, chatID)

	case "reset":
		_ = h.withErrorHandling(h.resetHandler(userID))(ctx, chatID)

	case "history":
		_ = h.withErrorHandling(h.historyHandler(userID))(ctx, chatID)

	case "profile":
		_ = h.withErrorHandling(h.profileHandler(userID))(ctx, chatID)

	case "login":
		h.deleteMessage(chatID, msg.MessageID)
		_ = h.withErrorHandling(h.loginHandler(userID, args))(ctx, chatID)

	case "register":
		h.deleteMessage(chatID, msg.MessageID)
		_ = h.withErrorHandling(h.registerHandler(userID, args))(ctx, chatID)

	case "logout":
		h.auth.Logout(userID)
		h.send(newPlainMessage(chatID, msgLoggedOut))

	default:
		h.send(newPlainMessage(chatID, msgUnknownCommand))
	}
}

// userContext bounds ctx by the request timeout and attaches the user's API token.
func (h *Handler) userContext(ctx context.Context, userID int64) (context.Context, context.CancelFunc) {
	if user, ok := h.auth.CurrentUser(userID); ok {
		ctx = quizapi.WithToken(ctx, user.Token)
	}
	if h.cfg.RequestTimeout > 0 {
		return context.WithTimeout(ctx, h.cfg.RequestTimeout)
	}
	return context.WithCancel(ctx)
}

func (h *Handler) sendError(chatID int64, text string) {
	h.send(newPlainMessage(chatID, text))
}

func (h *Handler) send(c tgbotapi.Chattable) tgbotapi.Message {
	sent, err := h.bot.Send(c)
	if err != nil {
		h.logger.Error("failed to send telegram message",
			zap.Error(err),
		)
	}
	return sent
}

// deleteMessage removes messages that carry credentials.
func (h *Handler) deleteMessage(chatID int64, messageID int) {
	if _, err := h.bot.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		h.logger.Warn("failed to delete message",
			zap.Int64("chat_id", chatID),
			zap.Error(err),
		)
	}
}

// answerCallback removes the loading indicator, optionally showing text.
func (h *Handler) answerCallback(cb *tgbotapi.CallbackQuery, text string) {
	if _, err := h.bot.Request(tgbotapi.NewCallback(cb.ID, text)); err != nil {
		h.logger.Warn("failed to answer callback",
			zap.String("callback_id", cb.ID),
			zap.Error(err),
		)
	}
}
