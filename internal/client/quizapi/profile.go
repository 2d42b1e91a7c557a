package quizapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/aliskhannn/ai-quiz-bot/internal/domain/entities"
)

type profileResponse struct {
	Success bool `json:"success"`
	Profile *struct {
		UID         string `json:"uid"`
		DisplayName string `json:"display_name"`
		Email       string `json:"email"`
		Username    string `json:"username"`
		PhotoURL    string `json:"photo_url"`
		CreatedAt   string `json:"created_at"`
	} `json:"profile"`
}

// Profile fetches the backend profile of a user.
func (c *Client) Profile(ctx context.Context, userID string) (*entities.Profile, error) {
	data, err := c.do(ctx, http.MethodGet, "api/user-profile", url.Values{"user_id": {userID}}, nil)
	if err != nil {
		return nil, fmt.Errorf("get user profile: %w", err)
	}

	var resp profileResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("get user profile: %w: %w", ErrMalformedResponse, err)
	}
	if !resp.Success || resp.Profile == nil {
		return nil, ErrProfileUnavailable
	}

	p := resp.Profile
	createdAt, _ := time.Parse(time.RFC3339, p.CreatedAt)

	return &entities.Profile{
		UID:         p.UID,
		DisplayName: p.DisplayName,
		Email:       p.Email,
		Username:    p.Username,
		PhotoURL:    p.PhotoURL,
		CreatedAt:   createdAt,
	}, nil
}
