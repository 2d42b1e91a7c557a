package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/aliskhannn/ai-quiz-bot/internal/service"
)

// quizHandler starts a quiz from "/quiz <topic> [count]" or offers the topic picker.
func (h *Handler) quizHandler(userID int64, args string) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		topic, count := parseQuizArgs(args, h.cfg.DefaultQuestions)
		if topic == "" {
			h.sendTopicPicker(chatID)
			return nil
		}

		status := h.send(newPlainMessage(chatID, msgGenerating))
		return h.startQuiz(ctx, userID, chatID, status.MessageID, topic, count)
	}
}

// startQuiz generates the quiz and turns the status message into the first question.
func (h *Handler) startQuiz(ctx context.Context, userID, chatID int64, messageID int, topic string, count int) error {
	session := h.sessions.Get(userID)

	if _, err := h.bot.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)); err != nil {
		h.logger.Debug("failed to send chat action", zap.Error(err))
	}

	reqCtx, cancel := h.userContext(ctx, userID)
	defer cancel()

	if err := session.StartQuiz(reqCtx, topic, count); err != nil {
		if messageID != 0 {
			h.deleteMessage(chatID, messageID)
		}
		return fmt.Errorf("start quiz: %w", err)
	}

	h.logger.Info("quiz started",
		zap.Int64("user_id", userID),
		zap.String("topic", topic),
		zap.Int("count", count),
	)

	h.showQuestion(chatID, messageID, session.Snapshot())
	return nil
}

// showQuestion edits messageID into the current question, or sends a new message when messageID is 0.
func (h *Handler) showQuestion(chatID int64, messageID int, st service.SessionState) {
	text := renderQuestion(st)
	kb := buildQuestionKeyboard(st)

	if messageID == 0 {
		msg := newMessage(chatID, text)
		msg.ReplyMarkup = kb
		h.send(msg)
		return
	}

	edit := newEdit(chatID, messageID, text)
	edit.ReplyMarkup = &kb
	h.send(edit)
}

func (h *Handler) sendTopicPicker(chatID int64) {
	msg := newPlainMessage(chatID, msgChooseTopic)
	msg.ReplyMarkup = buildTopicKeyboard()
	h.send(msg)
}

func (h *Handler) resetHandler(userID int64) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		h.sessions.Get(userID).ResetQuiz()
		h.logger.Info("quiz reset", zap.Int64("user_id", userID))

		msg := newPlainMessage(chatID, msgQuizReset+" "+msgChooseTopic)
		msg.ReplyMarkup = buildTopicKeyboard()
		h.send(msg)
		return nil
	}
}

func (h *Handler) historyHandler(userID int64) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		user, ok := h.auth.CurrentUser(userID)
		if !ok {
			return service.ErrNotLoggedIn
		}

		reqCtx, cancel := h.userContext(ctx, userID)
		defer cancel()

		entries, err := h.history.History(reqCtx, user)
		if err != nil {
			return err
		}
		if h.cfg.HistoryLimit > 0 && len(entries) > h.cfg.HistoryLimit {
			entries = entries[:h.cfg.HistoryLimit]
		}

		for _, chunk := range splitMessage(renderHistory(entries), maxMessageLength) {
			h.send(newMessage(chatID, chunk))
		}
		return nil
	}
}

func (h *Handler) profileHandler(userID int64) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		user, ok := h.auth.CurrentUser(userID)
		if !ok {
			return service.ErrNotLoggedIn
		}

		reqCtx, cancel := h.userContext(ctx, userID)
		defer cancel()

		summary, err := h.history.Profile(reqCtx, user)
		if err != nil {
			return err
		}

		h.send(newMessage(chatID, renderProfile(summary)))
		return nil
	}
}

func (h *Handler) loginHandler(userID int64, args string) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		email, password, ok := parseLoginArgs(args)
		if !ok {
			h.send(newPlainMessage(chatID, msgLoginUsage))
			return nil
		}

		reqCtx, cancel := h.userContext(ctx, userID)
		defer cancel()

		user, err := h.auth.Login(reqCtx, userID, email, password)
		if err != nil {
			return err
		}

		h.send(newPlainMessage(chatID, fmt.Sprintf("Welcome back, %s!", user.Name())))
		return nil
	}
}

func (h *Handler) registerHandler(userID int64, args string) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		name, email, password, ok := parseRegisterArgs(args)
		if !ok {
			h.send(newPlainMessage(chatID, msgRegisterUsage))
			return nil
		}

		reqCtx, cancel := h.userContext(ctx, userID)
		defer cancel()

		user, err := h.auth.Register(reqCtx, userID, name, email, password)
		if err != nil {
			return err
		}

		h.send(newPlainMessage(chatID, fmt.Sprintf("Account created. Welcome, %s!", user.Name())))
		return nil
	}
}
