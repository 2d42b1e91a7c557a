package service

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/aliskhannn/ai-quiz-bot/internal/domain/entities"
)

type fakeGenerator struct {
	quiz  *entities.RawQuiz
	err   error
	calls int

	// when set, GenerateQuestions signals started and waits for release
	started chan struct{}
	release chan struct{}
}

func (f *fakeGenerator) GenerateQuestions(ctx context.Context, topic string, count int) (*entities.RawQuiz, error) {
	f.calls++
	if f.started != nil {
		close(f.started)
		<-f.release
	}
	return f.quiz, f.err
}

type fakeSaver struct {
	mu    sync.Mutex
	saved []*entities.QuizResult
	err   error
}

func (f *fakeSaver) SaveResult(ctx context.Context, result *entities.QuizResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, result)
	return f.err
}

type fakeIdentity struct {
	user entities.User
	ok   bool
}

func (f fakeIdentity) CurrentUser() (entities.User, bool) {
	return f.user, f.ok
}

func rawQuiz(n int) *entities.RawQuiz {
	letters := []string{"A", "B", "C", "D"}
	q := &entities.RawQuiz{}
	for i := 0; i < n; i++ {
		q.Questions = append(q.Questions, entities.RawQuestion{
			Question: "question",
			Options:  []string{"a", "b", "c", "d"},
			Answer:   letters[i%len(letters)],
		})
	}
	return q
}

func newTestSession(gen QuestionGenerator, saver ResultSaver, identity IdentityProvider) *QuizSession {
	s := NewQuizSession(gen, saver, identity, nil, 20)
	s.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	return s
}

func loggedIn() fakeIdentity {
	return fakeIdentity{user: entities.User{UID: "u1", Token: "t"}, ok: true}
}

// answerAll answers every question, correctly when correct is true.
func answerAll(t *testing.T, s *QuizSession, correct bool) {
	t.Helper()
	st := s.Snapshot()
	for i, q := range st.Questions {
		answer := q.CorrectAnswer
		if !correct {
			answer = "wrong"
		}
		if err := s.AnswerQuestion(answer); err != nil {
			t.Fatalf("AnswerQuestion(%d): %v", i, err)
		}
		if i < len(st.Questions)-1 {
			if err := s.NextQuestion(); err != nil {
				t.Fatalf("NextQuestion(%d): %v", i, err)
			}
		}
	}
}

func TestStartQuiz(t *testing.T) {
	gen := &fakeGenerator{quiz: rawQuiz(5)}
	s := newTestSession(gen, nil, nil)

	if err := s.StartQuiz(context.Background(), " React Native ", 3); err != nil {
		t.Fatalf("StartQuiz: %v", err)
	}

	st := s.Snapshot()
	if st.Status != entities.StatusInProgress {
		t.Errorf("Status = %q, want in_progress", st.Status)
	}
	if len(st.Questions) != 3 {
		t.Fatalf("questions = %d, want 3 (truncated)", len(st.Questions))
	}
	if st.Topic != "React Native" || st.Title != "React Native Fundamentals Quiz" {
		t.Errorf("Topic/Title = %q/%q", st.Topic, st.Title)
	}
	if st.CurrentIndex != 0 {
		t.Errorf("CurrentIndex = %d, want 0", st.CurrentIndex)
	}
	for i, q := range st.Questions {
		if q.ID != i+1 {
			t.Errorf("question %d ID = %d", i, q.ID)
		}
		if st.UserAnswers[i] != "" {
			t.Errorf("answer %d = %q, want unanswered", i, st.UserAnswers[i])
		}
	}
}

func TestStartQuizUsesGeneratorTitle(t *testing.T) {
	raw := rawQuiz(1)
	raw.Title = "Hooks Deep Dive"
	s := newTestSession(&fakeGenerator{quiz: raw}, nil, nil)

	if err := s.StartQuiz(context.Background(), "React", 1); err != nil {
		t.Fatalf("StartQuiz: %v", err)
	}
	if got := s.Snapshot().Title; got != "Hooks Deep Dive" {
		t.Errorf("Title = %q", got)
	}
}

func TestStartQuizErrors(t *testing.T) {
	tests := []struct {
		name    string
		gen     *fakeGenerator
		topic   string
		count   int
		wantErr error
		calls   int
	}{
		{"empty topic", &fakeGenerator{quiz: rawQuiz(1)}, "  ", 1, ErrEmptyTopic, 0},
		{"zero count", &fakeGenerator{quiz: rawQuiz(1)}, "Go", 0, ErrInvalidQuestionCount, 0},
		{"count above max", &fakeGenerator{quiz: rawQuiz(1)}, "Go", 21, ErrInvalidQuestionCount, 0},
		{"generator error", &fakeGenerator{err: errors.New("boom")}, "Go", 2, ErrGenerationFailed, 1},
		{"empty result", &fakeGenerator{quiz: &entities.RawQuiz{}}, "Go", 2, ErrNoQuestions, 1},
		{"nil result", &fakeGenerator{}, "Go", 2, ErrNoQuestions, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSession(tt.gen, nil, nil)
			before := s.Snapshot()

			err := s.StartQuiz(context.Background(), tt.topic, tt.count)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if tt.gen.calls != tt.calls {
				t.Errorf("generator calls = %d, want %d", tt.gen.calls, tt.calls)
			}
			if after := s.Snapshot(); !reflect.DeepEqual(before, after) {
				t.Errorf("state changed on failure: %+v", after)
			}
		})
	}
}

func TestStartQuizWhileInProgress(t *testing.T) {
	s := newTestSession(&fakeGenerator{quiz: rawQuiz(2)}, nil, nil)
	if err := s.StartQuiz(context.Background(), "Go", 2); err != nil {
		t.Fatalf("StartQuiz: %v", err)
	}
	if err := s.AnswerQuestion("a"); err != nil {
		t.Fatalf("AnswerQuestion: %v", err)
	}

	err := s.StartQuiz(context.Background(), "Python", 2)
	if !errors.Is(err, ErrQuizInProgress) {
		t.Fatalf("err = %v, want ErrQuizInProgress", err)
	}
	if st := s.Snapshot(); st.Topic != "Go" || st.UserAnswers[0] != "a" {
		t.Errorf("state changed: %+v", st)
	}
}

func TestAnswerQuestion(t *testing.T) {
	s := newTestSession(&fakeGenerator{quiz: rawQuiz(2)}, nil, nil)

	if err := s.AnswerQuestion("a"); !errors.Is(err, ErrNotInProgress) {
		t.Fatalf("before start: err = %v, want ErrNotInProgress", err)
	}

	if err := s.StartQuiz(context.Background(), "Go", 2); err != nil {
		t.Fatalf("StartQuiz: %v", err)
	}

	if err := s.AnswerQuestion("   "); !errors.Is(err, ErrEmptyAnswer) {
		t.Fatalf("empty: err = %v, want ErrEmptyAnswer", err)
	}

	if err := s.AnswerQuestion("b"); err != nil {
		t.Fatalf("AnswerQuestion: %v", err)
	}
	once := s.Snapshot().UserAnswers

	if err := s.AnswerQuestion("b"); err != nil {
		t.Fatalf("AnswerQuestion again: %v", err)
	}
	twice := s.Snapshot().UserAnswers
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("repeated answer changed answers: %q vs %q", once, twice)
	}

	if err := s.AnswerQuestion("c"); err != nil {
		t.Fatalf("AnswerQuestion overwrite: %v", err)
	}
	if got := s.Snapshot().UserAnswers[0]; got != "c" {
		t.Errorf("answer = %q, want overwritten %q", got, "c")
	}
}

func TestNavigation(t *testing.T) {
	s := newTestSession(&fakeGenerator{quiz: rawQuiz(3)}, nil, nil)

	if err := s.NextQuestion(); !errors.Is(err, ErrNoQuestions) {
		t.Errorf("Next with no questions: err = %v", err)
	}
	if err := s.PreviousQuestion(); !errors.Is(err, ErrNoQuestions) {
		t.Errorf("Previous with no questions: err = %v", err)
	}

	if err := s.StartQuiz(context.Background(), "Go", 3); err != nil {
		t.Fatalf("StartQuiz: %v", err)
	}

	if err := s.PreviousQuestion(); err != nil {
		t.Fatalf("PreviousQuestion: %v", err)
	}
	if got := s.Snapshot().CurrentIndex; got != 0 {
		t.Errorf("CurrentIndex = %d, want 0", got)
	}

	_ = s.NextQuestion()
	_ = s.NextQuestion()
	_ = s.NextQuestion() // past the end with unanswered questions
	st := s.Snapshot()
	if st.CurrentIndex != 2 {
		t.Errorf("CurrentIndex = %d, want 2", st.CurrentIndex)
	}
	if st.Status != entities.StatusInProgress {
		t.Errorf("Status = %q, want in_progress", st.Status)
	}

	_ = s.PreviousQuestion()
	if got := s.Snapshot().CurrentIndex; got != 1 {
		t.Errorf("CurrentIndex = %d, want 1", got)
	}
}

func TestNextQuestionCompletesWithoutSaving(t *testing.T) {
	saver := &fakeSaver{}
	s := newTestSession(&fakeGenerator{quiz: rawQuiz(2)}, saver, loggedIn())
	if err := s.StartQuiz(context.Background(), "Go", 2); err != nil {
		t.Fatalf("StartQuiz: %v", err)
	}
	answerAll(t, s, true)

	if err := s.NextQuestion(); err != nil {
		t.Fatalf("NextQuestion: %v", err)
	}
	st := s.Snapshot()
	if st.Status != entities.StatusCompleted || st.Finalized {
		t.Fatalf("Status/Finalized = %q/%v, want completed/false", st.Status, st.Finalized)
	}
	if len(saver.saved) != 0 {
		t.Fatalf("saved %d results on navigation", len(saver.saved))
	}

	result, err := s.FinishQuiz(context.Background())
	if err != nil {
		t.Fatalf("FinishQuiz: %v", err)
	}
	if !result.Persisted || len(saver.saved) != 1 {
		t.Errorf("result not persisted after FinishQuiz")
	}

	if _, err := s.FinishQuiz(context.Background()); !errors.Is(err, ErrNotInProgress) {
		t.Errorf("second FinishQuiz: err = %v, want ErrNotInProgress", err)
	}
}

func TestFinishQuizAllCorrect(t *testing.T) {
	saver := &fakeSaver{}
	s := newTestSession(&fakeGenerator{quiz: rawQuiz(3)}, saver, loggedIn())
	if err := s.StartQuiz(context.Background(), "JavaScript", 3); err != nil {
		t.Fatalf("StartQuiz: %v", err)
	}
	answerAll(t, s, true)

	result, err := s.FinishQuiz(context.Background())
	if err != nil {
		t.Fatalf("FinishQuiz: %v", err)
	}

	if result.Score != 3 || s.Score() != 3 {
		t.Errorf("score = %d/%d, want 3", result.Score, s.Score())
	}
	if result.Percentage != 100 || result.TotalQuestions != 3 {
		t.Errorf("Percentage/Total = %d/%d", result.Percentage, result.TotalQuestions)
	}
	if result.UserID != "u1" || result.ID == "" || !result.Persisted {
		t.Errorf("UserID/ID/Persisted = %q/%q/%v", result.UserID, result.ID, result.Persisted)
	}
	if want := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC); !result.CompletedAt.Equal(want) {
		t.Errorf("CompletedAt = %v", result.CompletedAt)
	}
	if len(result.QuestionDetails) != 3 {
		t.Fatalf("details = %d", len(result.QuestionDetails))
	}
	for i, d := range result.QuestionDetails {
		if !d.IsCorrect || d.UserAnswer != d.CorrectAnswer {
			t.Errorf("detail %d = %+v", i, d)
		}
	}
	if s.Status() != entities.StatusCompleted {
		t.Errorf("Status = %q", s.Status())
	}
}

func TestFinishQuizUnanswered(t *testing.T) {
	saver := &fakeSaver{}
	s := newTestSession(&fakeGenerator{quiz: rawQuiz(2)}, saver, loggedIn())
	if err := s.StartQuiz(context.Background(), "Go", 2); err != nil {
		t.Fatalf("StartQuiz: %v", err)
	}
	if err := s.AnswerQuestion("a"); err != nil {
		t.Fatalf("AnswerQuestion: %v", err)
	}
	before := s.Snapshot()

	result, err := s.FinishQuiz(context.Background())
	if !errors.Is(err, ErrUnansweredQuestions) {
		t.Fatalf("err = %v, want ErrUnansweredQuestions", err)
	}
	if result != nil {
		t.Errorf("result = %+v, want nil", result)
	}
	if after := s.Snapshot(); !reflect.DeepEqual(before, after) {
		t.Errorf("state changed: %+v", after)
	}
	if s.Status() != entities.StatusInProgress {
		t.Errorf("Status = %q, want in_progress", s.Status())
	}
	if len(saver.saved) != 0 {
		t.Errorf("saver called")
	}
}

func TestFinishQuizNotStarted(t *testing.T) {
	s := newTestSession(&fakeGenerator{}, nil, nil)
	if _, err := s.FinishQuiz(context.Background()); !errors.Is(err, ErrNotInProgress) {
		t.Fatalf("err = %v, want ErrNotInProgress", err)
	}
}

func TestFinishQuizPersistence(t *testing.T) {
	tests := []struct {
		name          string
		saver         *fakeSaver
		identity      IdentityProvider
		wantErr       error
		wantSaved     int
		wantPersisted bool
	}{
		{"logged in", &fakeSaver{}, loggedIn(), nil, 1, true},
		{"anonymous", &fakeSaver{}, fakeIdentity{}, nil, 0, false},
		{"no identity provider", &fakeSaver{}, nil, nil, 0, false},
		{"save fails", &fakeSaver{err: errors.New("down")}, loggedIn(), ErrPersistFailed, 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSession(&fakeGenerator{quiz: rawQuiz(2)}, tt.saver, tt.identity)
			if err := s.StartQuiz(context.Background(), "Go", 2); err != nil {
				t.Fatalf("StartQuiz: %v", err)
			}
			answerAll(t, s, false)

			result, err := s.FinishQuiz(context.Background())
			if tt.wantErr == nil && err != nil {
				t.Fatalf("FinishQuiz: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if result == nil {
				t.Fatal("result is nil")
			}
			if result.Score != 0 || result.Percentage != 0 {
				t.Errorf("Score/Percentage = %d/%d, want 0", result.Score, result.Percentage)
			}
			if result.Persisted != tt.wantPersisted {
				t.Errorf("Persisted = %v, want %v", result.Persisted, tt.wantPersisted)
			}
			if len(tt.saver.saved) != tt.wantSaved {
				t.Errorf("saved = %d, want %d", len(tt.saver.saved), tt.wantSaved)
			}
			if st := s.Snapshot(); st.Status != entities.StatusCompleted || !st.Finalized {
				t.Errorf("Status/Finalized = %q/%v", st.Status, st.Finalized)
			}
		})
	}
}

func TestScoreBounds(t *testing.T) {
	s := newTestSession(&fakeGenerator{quiz: rawQuiz(4)}, nil, nil)
	if s.Score() != 0 {
		t.Fatalf("Score before start = %d", s.Score())
	}
	if err := s.StartQuiz(context.Background(), "Go", 4); err != nil {
		t.Fatalf("StartQuiz: %v", err)
	}

	answers := []string{"a", "x", "c", "d"}
	for i, a := range answers {
		if err := s.AnswerQuestion(a); err != nil {
			t.Fatalf("AnswerQuestion: %v", err)
		}

		st := s.Snapshot()
		recount := 0
		for j, q := range st.Questions {
			if st.UserAnswers[j] == q.CorrectAnswer {
				recount++
			}
		}
		if st.Score != recount || st.Score < 0 || st.Score > len(st.Questions) {
			t.Errorf("step %d: score = %d, recount = %d", i, st.Score, recount)
		}

		_ = s.NextQuestion()
	}

	// rawQuiz uses A, B, C, D so answers a, x, c, d score 3.
	if got := s.Score(); got != 3 {
		t.Errorf("Score = %d, want 3", got)
	}
}

func TestResetThenStartMatchesFresh(t *testing.T) {
	fresh := newTestSession(&fakeGenerator{quiz: rawQuiz(3)}, nil, nil)
	if err := fresh.StartQuiz(context.Background(), "Python", 3); err != nil {
		t.Fatalf("StartQuiz: %v", err)
	}

	reused := newTestSession(&fakeGenerator{quiz: rawQuiz(3)}, nil, nil)
	if err := reused.StartQuiz(context.Background(), "Go", 3); err != nil {
		t.Fatalf("StartQuiz: %v", err)
	}
	answerAll(t, reused, true)
	if _, err := reused.FinishQuiz(context.Background()); err != nil {
		t.Fatalf("FinishQuiz: %v", err)
	}

	reused.ResetQuiz()
	if st := reused.Snapshot(); st.Status != entities.StatusNotStarted || len(st.Questions) != 0 {
		t.Fatalf("after reset: %+v", st)
	}

	if err := reused.StartQuiz(context.Background(), "Python", 3); err != nil {
		t.Fatalf("StartQuiz after reset: %v", err)
	}

	if a, b := fresh.Snapshot(), reused.Snapshot(); !reflect.DeepEqual(a, b) {
		t.Errorf("sessions differ:\nfresh:  %+v\nreused: %+v", a, b)
	}
}

func TestStartQuizAfterCompletion(t *testing.T) {
	s := newTestSession(&fakeGenerator{quiz: rawQuiz(1)}, nil, nil)
	if err := s.StartQuiz(context.Background(), "Go", 1); err != nil {
		t.Fatalf("StartQuiz: %v", err)
	}
	answerAll(t, s, true)
	if _, err := s.FinishQuiz(context.Background()); err != nil {
		t.Fatalf("FinishQuiz: %v", err)
	}

	if err := s.StartQuiz(context.Background(), "Rust", 1); err != nil {
		t.Fatalf("StartQuiz after completion: %v", err)
	}
	if st := s.Snapshot(); st.Topic != "Rust" || st.Finalized || st.UserAnswers[0] != "" {
		t.Errorf("state = %+v", st)
	}
}

func TestStartQuizBusy(t *testing.T) {
	gen := &fakeGenerator{
		quiz:    rawQuiz(2),
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	s := newTestSession(gen, nil, nil)

	errc := make(chan error, 1)
	go func() { errc <- s.StartQuiz(context.Background(), "Go", 2) }()
	<-gen.started

	if !s.Busy() {
		t.Error("Busy = false while generating")
	}
	if err := s.StartQuiz(context.Background(), "Go", 2); !errors.Is(err, ErrBusy) {
		t.Errorf("overlapping start: err = %v, want ErrBusy", err)
	}
	if _, err := s.FinishQuiz(context.Background()); !errors.Is(err, ErrBusy) {
		t.Errorf("finish while busy: err = %v, want ErrBusy", err)
	}

	close(gen.release)
	if err := <-errc; err != nil {
		t.Fatalf("StartQuiz: %v", err)
	}
	if s.Busy() || s.Status() != entities.StatusInProgress {
		t.Errorf("Busy/Status = %v/%q", s.Busy(), s.Status())
	}
}

func TestResetDuringStart(t *testing.T) {
	gen := &fakeGenerator{
		quiz:    rawQuiz(2),
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	s := newTestSession(gen, nil, nil)

	errc := make(chan error, 1)
	go func() { errc <- s.StartQuiz(context.Background(), "Go", 2) }()
	<-gen.started

	s.ResetQuiz()
	close(gen.release)

	if err := <-errc; !errors.Is(err, ErrSessionReset) {
		t.Fatalf("err = %v, want ErrSessionReset", err)
	}
	st := s.Snapshot()
	if st.Status != entities.StatusNotStarted || len(st.Questions) != 0 || st.Busy {
		t.Errorf("state after discarded start: %+v", st)
	}
}

func TestSnapshotIsCopy(t *testing.T) {
	s := newTestSession(&fakeGenerator{quiz: rawQuiz(1)}, nil, nil)
	if err := s.StartQuiz(context.Background(), "Go", 1); err != nil {
		t.Fatalf("StartQuiz: %v", err)
	}

	st := s.Snapshot()
	st.Questions[0].Options[0] = "mutated"
	st.UserAnswers[0] = "mutated"

	again := s.Snapshot()
	if again.Questions[0].Options[0] == "mutated" || again.UserAnswers[0] == "mutated" {
		t.Error("snapshot shares memory with the session")
	}
}

func TestAnswerAt(t *testing.T) {
	s := newTestSession(&fakeGenerator{quiz: rawQuiz(2)}, nil, nil)
	if err := s.StartQuiz(context.Background(), "Go", 2); err != nil {
		t.Fatalf("StartQuiz: %v", err)
	}

	if err := s.AnswerAt(0, "a"); err != nil {
		t.Fatalf("AnswerAt(0): %v", err)
	}
	if err := s.NextQuestion(); err != nil {
		t.Fatalf("NextQuestion: %v", err)
	}

	if err := s.AnswerAt(0, "b"); !errors.Is(err, ErrStaleQuestion) {
		t.Fatalf("stale answer: err = %v, want ErrStaleQuestion", err)
	}
	if err := s.AnswerAt(-1, "b"); !errors.Is(err, ErrStaleQuestion) {
		t.Fatalf("negative index: err = %v, want ErrStaleQuestion", err)
	}
	if got := s.Snapshot().UserAnswers; got[0] != "a" || got[1] != "" {
		t.Errorf("answers = %q", got)
	}
}
