package entities

import (
	"math"
	"time"
)

// SessionStatus is the lifecycle state of a quiz session.
type SessionStatus string

const (
	StatusNotStarted SessionStatus = "not_started"
	StatusInProgress SessionStatus = "in_progress"
	StatusCompleted  SessionStatus = "completed"
)

// QuestionDetail is the per-question breakdown of a finished quiz.
type QuestionDetail struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
	UserAnswer    string   `json:"userAnswer"`
	IsCorrect     bool     `json:"isCorrect"`
}

// QuizResult is the outcome of a finished quiz session.
type QuizResult struct {
	ID              string           // unique result ID
	UserID          string           // owner of the result, empty when nobody is logged in
	Topic           string           // quiz topic as entered by the user
	Title           string           // display title of the quiz
	Score           int              // number of correct answers
	TotalQuestions  int              // number of questions in the quiz
	Percentage      int              // rounded score percentage
	CompletedAt     time.Time        // time the quiz was finished
	QuestionDetails []QuestionDetail // per-question breakdown
	Persisted       bool             // whether the result reached the result store
}

// Percentage returns round(score/total*100), or 0 for an empty quiz.
func Percentage(score, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(score) / float64(total) * 100))
}
