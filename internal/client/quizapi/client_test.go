package quizapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/aliskhannn/ai-quiz-bot/internal/domain/entities"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	// no trailing slash on purpose
	return New(srv.URL, 5*time.Second, zap.NewNop())
}

func TestGenerateQuestionsEnvelopes(t *testing.T) {
	question := `{"question":"Q1","options":["a","b"],"answer":"B","explanation":"e"}`

	tests := []struct {
		name      string
		body      string
		wantTitle string
		wantErr   error
	}{
		{"bare array", `[` + question + `]`, "", nil},
		{"quiz object", `{"quiz":{"title":"Go Quiz","questions":[` + question + `]}}`, "Go Quiz", nil},
		{"quiz array", `{"quiz":[` + question + `]}`, "", nil},
		{"questions field", `{"questions":[` + question + `]}`, "", nil},
		{"unknown object", `{"data":[]}`, "", ErrMalformedResponse},
		{"quiz without questions", `{"quiz":{"title":"x"}}`, "", ErrMalformedResponse},
		{"null quiz", `{"quiz":null}`, "", ErrMalformedResponse},
		{"string body", `"nope"`, "", ErrMalformedResponse},
		{"empty body", ``, "", ErrMalformedResponse},
		{"questions not a list", `{"questions":{"a":1}}`, "", ErrMalformedResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, tt.body)
			})

			quiz, err := c.GenerateQuestions(context.Background(), "Go", 1)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("GenerateQuestions: %v", err)
			}
			if quiz.Title != tt.wantTitle {
				t.Errorf("Title = %q, want %q", quiz.Title, tt.wantTitle)
			}
			want := entities.RawQuestion{Question: "Q1", Options: []string{"a", "b"}, Answer: "B", Explanation: "e"}
			if len(quiz.Questions) != 1 || quiz.Questions[0].Question != want.Question ||
				quiz.Questions[0].Answer != want.Answer || len(quiz.Questions[0].Options) != 2 {
				t.Errorf("Questions = %+v", quiz.Questions)
			}
		})
	}
}

func TestGenerateQuestionsRequest(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/ask" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("Content-Type = %q", got)
		}
		var req askRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		if req.Topic != "Python" || req.NumberOfQuestions != 7 {
			t.Errorf("body = %+v", req)
		}
		_, _ = io.WriteString(w, `[]`)
	})

	if _, err := c.GenerateQuestions(context.Background(), "Python", 7); err != nil {
		t.Fatalf("GenerateQuestions: %v", err)
	}
}

func TestAPIError(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantDetail string
	}{
		{"string detail", http.StatusUnauthorized, `{"detail":"Login failed: Invalid email or password"}`, "Login failed: Invalid email or password"},
		{"no body", http.StatusInternalServerError, ``, ""},
		{"list detail", http.StatusUnprocessableEntity, `{"detail":[{"msg":"bad"}]}`, `[{"msg":"bad"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			_, err := c.Login(context.Background(), "a@b.c", "pw")

			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("err = %v, want *APIError", err)
			}
			if apiErr.StatusCode != tt.status || apiErr.Detail != tt.wantDetail {
				t.Errorf("APIError = %+v", apiErr)
			}
		})
	}
}

func TestSaveResult(t *testing.T) {
	completed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/quiz-results" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Authorization = %q", got)
		}

		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode: %v", err)
			return
		}
		for _, key := range []string{"userId", "topic", "score", "totalQuestions", "percentage", "completedAt", "questionDetails"} {
			if _, ok := body[key]; !ok {
				t.Errorf("payload missing %q", key)
			}
		}
		if body["completedAt"] != "2024-05-01T12:00:00Z" {
			t.Errorf("completedAt = %v", body["completedAt"])
		}
		w.WriteHeader(http.StatusCreated)
	})

	ctx := WithToken(context.Background(), "tok")
	err := c.SaveResult(ctx, &entities.QuizResult{
		UserID:         "u1",
		Topic:          "Go",
		Score:          1,
		TotalQuestions: 2,
		Percentage:     50,
		CompletedAt:    completed,
		QuestionDetails: []entities.QuestionDetail{
			{Question: "q", Options: []string{"a"}, CorrectAnswer: "a", UserAnswer: "a", IsCorrect: true},
		},
	})
	if err != nil {
		t.Fatalf("SaveResult: %v", err)
	}
}

func TestHistory(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    []entities.HistoryEntry
		wantErr error
	}{
		{
			name: "wrapped with string score",
			body: `{"history":[{"id":"h1","topic":"Go","score":"8/10","completedAt":"2024-05-01T12:00:00Z"}]}`,
			want: []entities.HistoryEntry{{
				ID: "h1", Topic: "Go", Score: 8, TotalQuestions: 10, Percentage: 80,
				CompletedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
			}},
		},
		{
			name: "bare array with numeric score",
			body: `[{"id":2,"topic":"JS","score":3,"totalQuestions":4,"percentage":75}]`,
			want: []entities.HistoryEntry{{ID: "2", Topic: "JS", Score: 3, TotalQuestions: 4, Percentage: 75}},
		},
		{name: "empty", body: `{"history":[]}`, want: []entities.HistoryEntry{}},
		{name: "bad score", body: `[{"score":"lots"}]`, wantErr: ErrMalformedResponse},
		{name: "no history field", body: `{"items":[]}`, wantErr: ErrMalformedResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/api/quiz-history" || r.URL.Query().Get("user_id") != "u1" {
					t.Errorf("request = %s", r.URL)
				}
				_, _ = io.WriteString(w, tt.body)
			})

			got, err := c.History(context.Background(), "u1")
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("History: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("entries = %+v", got)
			}
			for i := range got {
				g, w := got[i], tt.want[i]
				if g.ID != w.ID || g.Topic != w.Topic || g.Score != w.Score ||
					g.TotalQuestions != w.TotalQuestions || g.Percentage != w.Percentage ||
					!g.CompletedAt.Equal(w.CompletedAt) {
					t.Errorf("entry %d = %+v, want %+v", i, g, w)
				}
			}
		})
	}
}

func TestProfile(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `{"success":true,"profile":{"uid":"u1","display_name":"Ada","email":"ada@example.com","created_at":"2024-01-02T03:04:05Z"}}`)
		})

		p, err := c.Profile(context.Background(), "u1")
		if err != nil {
			t.Fatalf("Profile: %v", err)
		}
		if p.UID != "u1" || p.DisplayName != "Ada" || p.CreatedAt.Year() != 2024 {
			t.Errorf("profile = %+v", p)
		}
	})

	t.Run("unsuccessful", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `{"success":false}`)
		})

		if _, err := c.Profile(context.Background(), "u1"); !errors.Is(err, ErrProfileUnavailable) {
			t.Fatalf("err = %v, want ErrProfileUnavailable", err)
		}
	})
}

func TestLoginAndRegister(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			var req loginRequest
			_ = json.NewDecoder(r.Body).Decode(&req)
			if req.Email != "ada@example.com" || req.Password != "pw" {
				t.Errorf("login body = %+v", req)
			}
		case "/auth/register":
			var req registerRequest
			_ = json.NewDecoder(r.Body).Decode(&req)
			if req.Name != "Ada" || req.ConfirmPassword != "pw" {
				t.Errorf("register body = %+v", req)
			}
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = io.WriteString(w, `{"uid":"u1","email":"ada@example.com","display_name":"Ada","token":"tok","expires_in":3600,"success":true}`)
	})

	user, err := c.Login(context.Background(), "ada@example.com", "pw")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if user.UID != "u1" || user.Token != "tok" || user.ExpiresAt.IsZero() {
		t.Errorf("user = %+v", user)
	}

	if _, err := c.Register(context.Background(), "Ada", "ada@example.com", "pw", "pw"); err != nil {
		t.Fatalf("Register: %v", err)
	}
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "u1",
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if got := tokenExpiry(signed); !got.Equal(exp) {
		t.Errorf("tokenExpiry = %v, want %v", got, exp)
	}
	if got := tokenExpiry("opaque-token"); !got.IsZero() {
		t.Errorf("tokenExpiry(opaque) = %v, want zero", got)
	}

	user, err := decodeAuth([]byte(`{"uid":"u1","token":"` + signed + `"}`))
	if err != nil {
		t.Fatalf("decodeAuth: %v", err)
	}
	if !user.ExpiresAt.Equal(exp) {
		t.Errorf("ExpiresAt = %v, want token expiry %v", user.ExpiresAt, exp)
	}
}
