package telegram

import (
	"context"
	"errors"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/aliskhannn/ai-quiz-bot/internal/domain/entities"
	"github.com/aliskhannn/ai-quiz-bot/internal/service"
)

func (h *Handler) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if cb.Message == nil {
		h.answerCallback(cb, "")
		return
	}

	data := decodeCallback(cb.Data)
	userID := cb.From.ID
	chatID := cb.Message.Chat.ID
	messageID := cb.Message.MessageID

	var err error
	switch data.Action {
	case actionTopics:
		h.answerCallback(cb, "")
		edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, msgChooseTopic, buildTopicKeyboard())
		h.send(edit)
		return

	case actionTopic:
		idx, ok := data.intParam(0)
		if !ok || idx >= len(popularTopics) {
			h.answerCallback(cb, "")
			return
		}
		// Generation can take a while, so release the button first.
		h.answerCallback(cb, "")
		h.send(tgbotapi.NewEditMessageText(chatID, messageID, msgGenerating))
		err = h.startQuiz(ctx, userID, chatID, messageID, popularTopics[idx], h.cfg.DefaultQuestions)
		if err != nil {
			h.failCallback(nil, chatID, err)
		}
		return

	case actionQuiz:
		err = h.handleQuizCallback(ctx, cb, data)

	default:
		h.logger.Warn("unknown callback action", zap.String("data", cb.Data))
		h.answerCallback(cb, "")
		return
	}

	if err != nil {
		h.failCallback(cb, chatID, err)
	}
}

// failCallback reports a callback error. Expected errors are shown as an alert on the
// button; failures are logged and sent as a message.
func (h *Handler) failCallback(cb *tgbotapi.CallbackQuery, chatID int64, err error) {
	text, expected := h.userMessage(err)

	if expected {
		h.logger.Debug("callback rejected", zap.Int64("chat_id", chatID), zap.Error(err))
		if cb != nil {
			h.answerCallback(cb, text)
			return
		}
		h.sendError(chatID, text)
		return
	}

	h.logger.Error("handle callback", zap.Int64("chat_id", chatID), zap.Error(err))
	if cb != nil {
		h.answerCallback(cb, "")
	}
	h.sendError(chatID, text)
}

func (h *Handler) handleQuizCallback(ctx context.Context, cb *tgbotapi.CallbackQuery, data callbackData) error {
	userID := cb.From.ID
	chatID := cb.Message.Chat.ID
	messageID := cb.Message.MessageID
	session := h.sessions.Get(userID)

	// Buttons of a quiz that was reset or evicted stay on screen.
	if data.sub() != quizReset && session.Status() == entities.StatusNotStarted {
		return service.ErrNotInProgress
	}

	switch data.sub() {
	case quizAnswer:
		qIdx, ok1 := data.intParam(1)
		oIdx, ok2 := data.intParam(2)
		if !ok1 || !ok2 {
			return service.ErrStaleQuestion
		}

		before := session.Snapshot()
		q, ok := before.Current()
		if !ok || oIdx >= len(q.Options) {
			return service.ErrStaleQuestion
		}
		option := q.Options[oIdx]

		if err := session.AnswerAt(qIdx, option); err != nil {
			return err
		}
		h.answerCallback(cb, "")

		if before.CurrentAnswer() == option {
			return nil
		}
		h.showQuestion(chatID, messageID, session.Snapshot())
		return nil

	case quizNext:
		if err := session.NextQuestion(); err != nil {
			return err
		}
		st := session.Snapshot()
		if st.Status == entities.StatusCompleted && !st.Finalized {
			return h.finishQuiz(ctx, cb, session)
		}
		h.answerCallback(cb, "")
		h.showQuestion(chatID, messageID, st)
		return nil

	case quizPrev:
		if err := session.PreviousQuestion(); err != nil {
			return err
		}
		h.answerCallback(cb, "")
		h.showQuestion(chatID, messageID, session.Snapshot())
		return nil

	case quizFinish:
		return h.finishQuiz(ctx, cb, session)

	case quizReset:
		session.ResetQuiz()
		h.answerCallback(cb, msgQuizReset)
		edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, msgQuizReset+" "+msgChooseTopic, buildTopicKeyboard())
		h.send(edit)
		h.logger.Info("quiz reset", zap.Int64("user_id", userID))
		return nil

	case quizReview:
		st := session.Snapshot()
		if st.Status != entities.StatusCompleted || len(st.Questions) == 0 {
			return service.ErrNotInProgress
		}
		h.answerCallback(cb, "")
		for _, chunk := range splitMessage(renderReview(st), maxMessageLength) {
			h.send(newMessage(chatID, chunk))
		}
		return nil
	}

	h.logger.Warn("unknown quiz callback", zap.String("data", data.Raw))
	h.answerCallback(cb, "")
	return nil
}

// finishQuiz scores the attempt and edits the question message into the result screen.
func (h *Handler) finishQuiz(ctx context.Context, cb *tgbotapi.CallbackQuery, session *service.QuizSession) error {
	userID := cb.From.ID
	chatID := cb.Message.Chat.ID

	reqCtx, cancel := h.userContext(ctx, userID)
	defer cancel()

	result, err := session.FinishQuiz(reqCtx)
	if err != nil && !errors.Is(err, service.ErrPersistFailed) {
		return err
	}
	h.answerCallback(cb, "")

	h.logger.Info("quiz finished",
		zap.Int64("user_id", userID),
		zap.String("topic", result.Topic),
		zap.Int("score", result.Score),
		zap.Bool("persisted", result.Persisted),
	)

	kb := buildResultKeyboard()
	edit := newEdit(chatID, cb.Message.MessageID, renderResult(result, result.Persisted, result.UserID != ""))
	edit.ReplyMarkup = &kb
	h.send(edit)
	return nil
}
