package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/aliskhannn/ai-quiz-bot/internal/client/quizapi"
	"github.com/aliskhannn/ai-quiz-bot/internal/service"
)

type HandlerFunc func(ctx context.Context, chatID int64) error

// withErrorHandling logs the error and tells the user what went wrong.
func (h *Handler) withErrorHandling(fn HandlerFunc) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		if err := fn(ctx, chatID); err != nil {
			text, expected := h.userMessage(err)
			if expected {
				h.logger.Debug("request rejected",
					zap.Int64("chat_id", chatID),
					zap.Error(err),
				)
			} else {
				h.logger.Error("handle error",
					zap.Int64("chat_id", chatID),
					zap.Error(err),
				)
			}
			h.sendError(chatID, text)
			return nil
		}
		return nil
	}
}

// userMessage maps an error to a user-facing message. expected is false for errors
// that point at a failure rather than at the user's input.
func (h *Handler) userMessage(err error) (text string, expected bool) {
	switch {
	case errors.Is(err, service.ErrBusy):
		return msgBusy, true
	case errors.Is(err, service.ErrQuizInProgress):
		return msgQuizInProgress, true
	case errors.Is(err, service.ErrEmptyTopic):
		return msgEmptyTopic, true
	case errors.Is(err, service.ErrInvalidQuestionCount):
		return fmt.Sprintf("The number of questions must be between 1 and %d.", h.cfg.MaxQuestions), true
	case errors.Is(err, service.ErrSessionReset):
		return msgSessionReset, true
	case errors.Is(err, service.ErrNotInProgress):
		return msgNoActiveQuiz, true
	case errors.Is(err, service.ErrStaleQuestion), errors.Is(err, service.ErrInvalidIndex):
		return msgStaleQuestion, true
	case errors.Is(err, service.ErrNoQuestions):
		return msgGenerationFailed, false
	case errors.Is(err, service.ErrUnansweredQuestions):
		return msgAnswerAll, true
	case errors.Is(err, service.ErrNotLoggedIn):
		return msgLoginRequired, true
	case errors.Is(err, service.ErrInvalidEmail):
		return msgInvalidEmail, true
	case errors.Is(err, service.ErrEmptyPassword):
		return msgEmptyPassword, true
	case errors.Is(err, service.ErrEmptyName):
		return msgEmptyName, true
	case errors.Is(err, service.ErrGenerationFailed):
		return msgGenerationFailed, false
	}

	var apiErr *quizapi.APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" && apiErr.StatusCode < http.StatusInternalServerError {
		return apiErr.Detail, true
	}

	return msgInternalError, false
}
