package entities

import "time"

// HistoryEntry is a stored quiz result as shown in the user's history.
type HistoryEntry struct {
	ID              string
	Topic           string
	Score           int
	TotalQuestions  int
	Percentage      int
	CompletedAt     time.Time
	QuestionDetails []QuestionDetail
}

// Profile is the user profile kept by the backend.
type Profile struct {
	UID         string
	DisplayName string
	Email       string
	Username    string
	PhotoURL    string
	CreatedAt   time.Time
}

// QuizStats aggregates a user's quiz history.
type QuizStats struct {
	TotalQuizzes   int
	TotalQuestions int
	TotalCorrect   int
	AverageScore   int // percentage of correct answers over all questions
}

// Rank is a badge derived from the average score.
type Rank struct {
	Label       string
	Description string
}
