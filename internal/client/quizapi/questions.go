package quizapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/aliskhannn/ai-quiz-bot/internal/domain/entities"
)

type askRequest struct {
	Topic             string `json:"topic"`
	NumberOfQuestions int    `json:"number_of_questions"`
}

// GenerateQuestions asks the backend for count questions on topic.
func (c *Client) GenerateQuestions(ctx context.Context, topic string, count int) (*entities.RawQuiz, error) {
	data, err := c.do(ctx, http.MethodPost, "api/ask", nil, askRequest{
		Topic:             topic,
		NumberOfQuestions: count,
	})
	if err != nil {
		return nil, fmt.Errorf("generate questions: %w", err)
	}

	quiz, err := decodeQuiz(data)
	if err != nil {
		return nil, fmt.Errorf("generate questions: %w", err)
	}

	return quiz, nil
}

// decodeQuiz accepts every envelope the backend is known to send:
//
//	[ {question...}, ... ]
//	{"quiz": {"title": "...", "questions": [...]}}
//	{"quiz": [...]}
//	{"questions": [...]}
func decodeQuiz(data []byte) (*entities.RawQuiz, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrMalformedResponse)
	}

	switch data[0] {
	case '[':
		questions, err := decodeQuestions(data)
		if err != nil {
			return nil, err
		}
		return &entities.RawQuiz{Questions: questions}, nil

	case '{':
		var envelope struct {
			Quiz      json.RawMessage `json:"quiz"`
			Questions json.RawMessage `json:"questions"`
		}
		if err := json.Unmarshal(data, &envelope); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
		}

		switch {
		case present(envelope.Quiz):
			return decodeQuizField(envelope.Quiz)
		case present(envelope.Questions):
			questions, err := decodeQuestions(envelope.Questions)
			if err != nil {
				return nil, err
			}
			return &entities.RawQuiz{Questions: questions}, nil
		default:
			return nil, fmt.Errorf("%w: no quiz or questions field", ErrMalformedResponse)
		}

	default:
		return nil, fmt.Errorf("%w: unexpected body", ErrMalformedResponse)
	}
}

func decodeQuizField(raw json.RawMessage) (*entities.RawQuiz, error) {
	raw = bytes.TrimSpace(raw)

	switch raw[0] {
	case '[':
		questions, err := decodeQuestions(raw)
		if err != nil {
			return nil, err
		}
		return &entities.RawQuiz{Questions: questions}, nil

	case '{':
		var quiz struct {
			Title     string          `json:"title"`
			Questions json.RawMessage `json:"questions"`
		}
		if err := json.Unmarshal(raw, &quiz); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
		}
		if !present(quiz.Questions) {
			return nil, fmt.Errorf("%w: quiz without questions", ErrMalformedResponse)
		}
		questions, err := decodeQuestions(quiz.Questions)
		if err != nil {
			return nil, err
		}
		return &entities.RawQuiz{Title: quiz.Title, Questions: questions}, nil

	default:
		return nil, fmt.Errorf("%w: unexpected quiz field", ErrMalformedResponse)
	}
}

func decodeQuestions(raw json.RawMessage) ([]entities.RawQuestion, error) {
	var questions []entities.RawQuestion
	if err := json.Unmarshal(raw, &questions); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	return questions, nil
}
