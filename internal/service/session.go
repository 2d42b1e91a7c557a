package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aliskhannn/ai-quiz-bot/internal/domain/entities"
)

var (
	ErrBusy                 = errors.New("another quiz operation is still running")
	ErrQuizInProgress       = errors.New("quiz already in progress")
	ErrNotInProgress        = errors.New("quiz is not in progress")
	ErrNoQuestions          = errors.New("no questions available")
	ErrInvalidIndex         = errors.New("current question index out of range")
	ErrEmptyAnswer          = errors.New("answer is empty")
	ErrEmptyTopic           = errors.New("topic is empty")
	ErrInvalidQuestionCount = errors.New("invalid number of questions")
	ErrGenerationFailed     = errors.New("question generation failed")
	ErrUnansweredQuestions  = errors.New("not all questions are answered")
	ErrPersistFailed        = errors.New("failed to save quiz result")
	ErrSessionReset         = errors.New("quiz session was reset")
	ErrStaleQuestion        = errors.New("question is no longer current")
)

// SessionState is a read-only copy of a quiz session.
type SessionState struct {
	Status       entities.SessionStatus
	Topic        string
	Title        string
	CurrentIndex int
	Questions    []entities.QuizQuestion
	UserAnswers  []string // "" marks an unanswered question
	Score        int
	Busy         bool // a start or finish call is waiting on the network
	Finalized    bool // FinishQuiz has run for this attempt
}

// Current returns the question at CurrentIndex.
func (st SessionState) Current() (entities.QuizQuestion, bool) {
	if st.CurrentIndex < 0 || st.CurrentIndex >= len(st.Questions) {
		return entities.QuizQuestion{}, false
	}
	return st.Questions[st.CurrentIndex], true
}

// CurrentAnswer returns the recorded answer for the current question.
func (st SessionState) CurrentAnswer() string {
	if st.CurrentIndex < 0 || st.CurrentIndex >= len(st.UserAnswers) {
		return ""
	}
	return st.UserAnswers[st.CurrentIndex]
}

// AnsweredCount returns the number of recorded answers.
func (st SessionState) AnsweredCount() int {
	return len(st.UserAnswers) - countUnanswered(st.UserAnswers)
}

// IsLast reports whether the current question is the last one.
func (st SessionState) IsLast() bool {
	return len(st.Questions) > 0 && st.CurrentIndex == len(st.Questions)-1
}

// QuizSession is the state machine of a single quiz attempt:
// NotStarted -> InProgress -> Completed, with ResetQuiz returning to NotStarted from anywhere.
// Methods are safe for concurrent use. StartQuiz and FinishQuiz release the lock while they
// wait on the network and reject overlapping calls with ErrBusy.
type QuizSession struct {
	generator    QuestionGenerator
	saver        ResultSaver
	identity     IdentityProvider
	logger       *zap.Logger
	maxQuestions int
	now          func() time.Time

	mu           sync.Mutex
	status       entities.SessionStatus
	topic        string
	title        string
	questions    []entities.QuizQuestion
	userAnswers  []string
	currentIndex int
	busy         bool
	finalized    bool
	epoch        uint64 // bumped by ResetQuiz so in-flight starts can detect it
}

// NewQuizSession creates an empty session. saver and identity may be nil, in which case
// results are never persisted.
func NewQuizSession(
	generator QuestionGenerator,
	saver ResultSaver,
	identity IdentityProvider,
	logger *zap.Logger,
	maxQuestions int,
) *QuizSession {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &QuizSession{
		generator:    generator,
		saver:        saver,
		identity:     identity,
		logger:       logger,
		maxQuestions: maxQuestions,
		now:          time.Now,
		status:       entities.StatusNotStarted,
	}
}

// StartQuiz requests count questions for topic, normalizes them and starts the attempt.
// On any failure the session is left as it was.
func (s *QuizSession) StartQuiz(ctx context.Context, topic string, count int) error {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return ErrEmptyTopic
	}
	if count < 1 || count > s.maxQuestions {
		return fmt.Errorf("%w: %d (allowed 1..%d)", ErrInvalidQuestionCount, count, s.maxQuestions)
	}

	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return ErrBusy
	}
	if s.status == entities.StatusInProgress {
		s.mu.Unlock()
		return ErrQuizInProgress
	}
	s.busy = true
	epoch := s.epoch
	s.mu.Unlock()

	raw, err := s.generator.GenerateQuestions(ctx, topic, count)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false

	if epoch != s.epoch {
		s.logger.Info("quiz reset while questions were loading", zap.String("topic", topic))
		return ErrSessionReset
	}

	if err != nil {
		s.logger.Error("failed to generate questions",
			zap.String("topic", topic),
			zap.Int("count", count),
			zap.Error(err),
		)
		return fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	if raw == nil || len(raw.Questions) == 0 {
		s.logger.Warn("generator returned no questions", zap.String("topic", topic))
		return ErrNoQuestions
	}

	raws := raw.Questions
	if len(raws) > count {
		raws = raws[:count]
	}

	title := strings.TrimSpace(raw.Title)
	if title == "" {
		title = GenerateTitle(topic)
	}

	s.questions = NormalizeAll(raws)
	s.userAnswers = make([]string, len(s.questions))
	s.currentIndex = 0
	s.topic = topic
	s.title = title
	s.status = entities.StatusInProgress
	s.finalized = false

	s.logger.Info("quiz started",
		zap.String("topic", topic),
		zap.String("title", title),
		zap.Int("questions", len(s.questions)),
	)

	return nil
}

// AnswerQuestion records answer for the current question, replacing any earlier answer.
func (s *QuizSession) AnswerQuestion(answer string) error {
	return s.answerAt(-1, answer)
}

// answerAt records answer for the current question. A non-negative index must match it.
func (s *QuizSession) answerAt(index int, answer string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != entities.StatusInProgress {
		return ErrNotInProgress
	}
	if s.currentIndex < 0 || s.currentIndex >= len(s.questions) {
		s.logger.Error("answer with invalid question state",
			zap.Int("index", s.currentIndex),
			zap.Int("questions", len(s.questions)),
		)
		return ErrInvalidIndex
	}
	if index >= 0 && index != s.currentIndex {
		return ErrStaleQuestion
	}
	if strings.TrimSpace(answer) == "" {
		return ErrEmptyAnswer
	}

	s.userAnswers[s.currentIndex] = answer
	return nil
}

// AnswerAt records answer only while index is the current question, so a caller holding
// an older view of the session cannot answer a question the user has navigated away from.
func (s *QuizSession) AnswerAt(index int, answer string) error {
	if index < 0 {
		return ErrStaleQuestion
	}
	return s.answerAt(index, answer)
}

// NextQuestion moves forward. Moving past the last question completes the quiz once every
// question is answered; it does not persist the result, FinishQuiz does.
func (s *QuizSession) NextQuestion() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.questions) == 0 {
		return ErrNoQuestions
	}

	if s.currentIndex < len(s.questions)-1 {
		s.currentIndex++
		return nil
	}

	if s.status == entities.StatusInProgress && countUnanswered(s.userAnswers) == 0 {
		s.status = entities.StatusCompleted
		s.logger.Debug("quiz completed by navigation", zap.String("topic", s.topic))
	}

	return nil
}

// PreviousQuestion moves back one question; it is a no-op on the first question.
func (s *QuizSession) PreviousQuestion() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.questions) == 0 {
		return ErrNoQuestions
	}

	if s.currentIndex > 0 {
		s.currentIndex--
	}

	return nil
}

// FinishQuiz completes the attempt, scores it and saves the result when a user is logged in.
// It fails without touching state while questions are unanswered. A failed save still
// leaves the quiz completed: the returned result is valid and the error wraps ErrPersistFailed.
func (s *QuizSession) FinishQuiz(ctx context.Context) (*entities.QuizResult, error) {
	s.mu.Lock()

	if s.busy {
		s.mu.Unlock()
		return nil, ErrBusy
	}

	finishable := s.status == entities.StatusInProgress ||
		(s.status == entities.StatusCompleted && !s.finalized)
	if !finishable || len(s.questions) == 0 {
		s.mu.Unlock()
		return nil, ErrNotInProgress
	}

	if n := countUnanswered(s.userAnswers); n > 0 {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %d left", ErrUnansweredQuestions, n)
	}

	s.status = entities.StatusCompleted
	s.finalized = true
	result := s.buildResult()

	var (
		user     entities.User
		loggedIn bool
	)
	if s.identity != nil {
		user, loggedIn = s.identity.CurrentUser()
	}

	if !loggedIn || s.saver == nil {
		s.mu.Unlock()
		s.logger.Debug("quiz finished without saving",
			zap.String("topic", result.Topic),
			zap.Int("score", result.Score),
			zap.Bool("logged_in", loggedIn),
		)
		return result, nil
	}

	result.UserID = user.UID
	s.busy = true
	s.mu.Unlock()

	err := s.saver.SaveResult(ctx, result)

	s.mu.Lock()
	s.busy = false
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("failed to save quiz result",
			zap.String("user_id", user.UID),
			zap.String("topic", result.Topic),
			zap.Error(err),
		)
		return result, fmt.Errorf("%w: %w", ErrPersistFailed, err)
	}

	result.Persisted = true
	s.logger.Info("quiz result saved",
		zap.String("user_id", user.UID),
		zap.String("topic", result.Topic),
		zap.Int("score", result.Score),
		zap.Int("total", result.TotalQuestions),
	)

	return result, nil
}

// ResetQuiz discards the attempt and returns the session to NotStarted.
func (s *QuizSession) ResetQuiz() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.questions = nil
	s.userAnswers = nil
	s.currentIndex = 0
	s.topic = ""
	s.title = ""
	s.status = entities.StatusNotStarted
	s.finalized = false
	s.epoch++
}

// Score counts the answers equal to the correct answer.
func (s *QuizSession) Score() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.score()
}

// Status returns the current lifecycle state.
func (s *QuizSession) Status() entities.SessionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Busy reports whether a start or finish call is in flight.
func (s *QuizSession) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// Snapshot returns a deep copy of the session state.
func (s *QuizSession) Snapshot() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	questions := make([]entities.QuizQuestion, len(s.questions))
	for i, q := range s.questions {
		questions[i] = q.Clone()
	}

	return SessionState{
		Status:       s.status,
		Topic:        s.topic,
		Title:        s.title,
		CurrentIndex: s.currentIndex,
		Questions:    questions,
		UserAnswers:  append([]string(nil), s.userAnswers...),
		Score:        s.score(),
		Busy:         s.busy,
		Finalized:    s.finalized,
	}
}

func (s *QuizSession) score() int {
	score := 0
	for i, answer := range s.userAnswers {
		if i < len(s.questions) && answer != "" && answer == s.questions[i].CorrectAnswer {
			score++
		}
	}
	return score
}

func (s *QuizSession) buildResult() *entities.QuizResult {
	details := make([]entities.QuestionDetail, len(s.questions))
	for i, q := range s.questions {
		details[i] = entities.QuestionDetail{
			Question:      q.Question,
			Options:       append([]string(nil), q.Options...),
			CorrectAnswer: q.CorrectAnswer,
			UserAnswer:    s.userAnswers[i],
			IsCorrect:     s.userAnswers[i] == q.CorrectAnswer,
		}
	}

	score := s.score()
	total := len(s.questions)

	return &entities.QuizResult{
		ID:              uuid.NewString(),
		Topic:           s.topic,
		Title:           s.title,
		Score:           score,
		TotalQuestions:  total,
		Percentage:      entities.Percentage(score, total),
		CompletedAt:     s.now().UTC(),
		QuestionDetails: details,
	}
}

func countUnanswered(answers []string) int {
	n := 0
	for _, a := range answers {
		if a == "" {
			n++
		}
	}
	return n
}
