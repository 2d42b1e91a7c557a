package quizapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/aliskhannn/ai-quiz-bot/internal/domain/entities"
)

type resultPayload struct {
	UserID          string                    `json:"userId"`
	Topic           string                    `json:"topic"`
	Score           int                       `json:"score"`
	TotalQuestions  int                       `json:"totalQuestions"`
	Percentage      int                       `json:"percentage"`
	CompletedAt     string                    `json:"completedAt"`
	QuestionDetails []entities.QuestionDetail `json:"questionDetails"`
}

// SaveResult stores a finished quiz. Only the status of the response is checked.
func (c *Client) SaveResult(ctx context.Context, result *entities.QuizResult) error {
	_, err := c.do(ctx, http.MethodPost, "api/quiz-results", nil, resultPayload{
		UserID:          result.UserID,
		Topic:           result.Topic,
		Score:           result.Score,
		TotalQuestions:  result.TotalQuestions,
		Percentage:      result.Percentage,
		CompletedAt:     result.CompletedAt.UTC().Format(time.RFC3339Nano),
		QuestionDetails: result.QuestionDetails,
	})
	if err != nil {
		return fmt.Errorf("save quiz result: %w", err)
	}
	return nil
}

type historyItem struct {
	ID              json.RawMessage           `json:"id"`
	Topic           string                    `json:"topic"`
	Score           json.RawMessage           `json:"score"`
	TotalQuestions  int                       `json:"totalQuestions"`
	Percentage      *int                      `json:"percentage"`
	CompletedAt     string                    `json:"completedAt"`
	QuestionDetails []entities.QuestionDetail `json:"questionDetails"`
}

// History returns the user's finished quizzes as stored by the backend.
func (c *Client) History(ctx context.Context, userID string) ([]entities.HistoryEntry, error) {
	data, err := c.do(ctx, http.MethodGet, "api/quiz-history", url.Values{"user_id": {userID}}, nil)
	if err != nil {
		return nil, fmt.Errorf("get quiz history: %w", err)
	}

	items, err := decodeHistory(data)
	if err != nil {
		return nil, fmt.Errorf("get quiz history: %w", err)
	}

	entries := make([]entities.HistoryEntry, 0, len(items))
	for _, item := range items {
		entry, err := item.entry()
		if err != nil {
			return nil, fmt.Errorf("get quiz history: %w", err)
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

func decodeHistory(data []byte) ([]historyItem, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrMalformedResponse)
	}

	var items []historyItem
	switch data[0] {
	case '[':
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
		}
	case '{':
		var envelope struct {
			History *[]historyItem `json:"history"`
		}
		if err := json.Unmarshal(data, &envelope); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
		}
		if envelope.History == nil {
			return nil, fmt.Errorf("%w: no history field", ErrMalformedResponse)
		}
		items = *envelope.History
	default:
		return nil, fmt.Errorf("%w: unexpected body", ErrMalformedResponse)
	}

	return items, nil
}

func (h historyItem) entry() (entities.HistoryEntry, error) {
	score, total, err := parseScore(h.Score)
	if err != nil {
		return entities.HistoryEntry{}, err
	}
	if h.TotalQuestions > 0 {
		total = h.TotalQuestions
	}

	percentage := entities.Percentage(score, total)
	if h.Percentage != nil {
		percentage = *h.Percentage
	}

	var completedAt time.Time
	if h.CompletedAt != "" {
		// unparsable timestamps are shown without a date
		completedAt, _ = time.Parse(time.RFC3339, h.CompletedAt)
	}

	return entities.HistoryEntry{
		ID:              rawString(h.ID),
		Topic:           h.Topic,
		Score:           score,
		TotalQuestions:  total,
		Percentage:      percentage,
		CompletedAt:     completedAt,
		QuestionDetails: h.QuestionDetails,
	}, nil
}

// parseScore accepts a number or a "score/total" string.
func parseScore(raw json.RawMessage) (score, total int, err error) {
	if !present(raw) {
		return 0, 0, nil
	}

	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, 0, nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, 0, fmt.Errorf("%w: score %s", ErrMalformedResponse, raw)
	}

	left, right, found := strings.Cut(s, "/")
	score, err = strconv.Atoi(strings.TrimSpace(left))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: score %q", ErrMalformedResponse, s)
	}
	if found {
		total, err = strconv.Atoi(strings.TrimSpace(right))
		if err != nil {
			return 0, 0, fmt.Errorf("%w: score %q", ErrMalformedResponse, s)
		}
	}

	return score, total, nil
}

// rawString renders a JSON string or number as plain text.
func rawString(raw json.RawMessage) string {
	if !present(raw) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(bytes.TrimSpace(raw))
}
