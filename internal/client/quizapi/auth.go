package quizapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/aliskhannn/ai-quiz-bot/internal/domain/entities"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

type authResponse struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Username    string `json:"username"`
	Token       string `json:"token"`
	ExpiresIn   int64  `json:"expires_in"` // seconds
	Message     string `json:"message"`
	Success     *bool  `json:"success"`
}

func (c *Client) Login(ctx context.Context, email, password string) (*entities.User, error) {
	data, err := c.do(ctx, http.MethodPost, "auth/login", nil, loginRequest{Email: email, Password: password})
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	user, err := decodeAuth(data)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return user, nil
}

func (c *Client) Register(ctx context.Context, name, email, password, confirmPassword string) (*entities.User, error) {
	data, err := c.do(ctx, http.MethodPost, "auth/register", nil, registerRequest{
		Name:            name,
		Email:           email,
		Password:        password,
		ConfirmPassword: confirmPassword,
	})
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	user, err := decodeAuth(data)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	return user, nil
}

func decodeAuth(data []byte) (*entities.User, error) {
	var resp authResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}

	if resp.Success != nil && !*resp.Success {
		return nil, &APIError{StatusCode: http.StatusOK, Detail: resp.Message}
	}
	if resp.UID == "" {
		return nil, fmt.Errorf("%w: missing uid", ErrMalformedResponse)
	}

	user := &entities.User{
		UID:         resp.UID,
		Email:       resp.Email,
		DisplayName: resp.DisplayName,
		Username:    resp.Username,
		Token:       resp.Token,
	}
	if resp.ExpiresIn > 0 {
		user.ExpiresAt = time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second)
	} else {
		user.ExpiresAt = tokenExpiry(resp.Token)
	}

	return user, nil
}

// tokenExpiry reads the exp claim of a JWT without verifying the signature.
// Zero when the claim is absent or token is not a JWT.
func tokenExpiry(token string) time.Time {
	if token == "" {
		return time.Time{}
	}

	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}
	}
	if claims.ExpiresAt == nil {
		return time.Time{}
	}

	return claims.ExpiresAt.Time
}
