package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"quizforge/internal/models"
)

func makeQuiz(n int, cfg models.QuizConfig) *models.Quiz {
	questions := make([]models.Question, n)
	for i := range questions {
		options := make([]models.Option, 4)
		for j := range options {
			options[j] = models.Option{Position: j, Text: "option"}
		}
		questions[i] = models.Question{Position: i, Text: "q", Options: options, CorrectAnswer: 0}
	}
	return &models.Quiz{ID: "quiz-1", Config: cfg, Questions: questions}
}

type fakeSubmitter struct {
	mu     sync.Mutex
	err    error
	result SubmitResult
	calls  []models.AnswerVector
}

func (f *fakeSubmitter) Submit(_ context.Context, _ string, answers models.AnswerVector) (SubmitResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, answers)
	return f.result, f.err
}

func (f *fakeSubmitter) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *fakeSubmitter) lastCall() models.AnswerVector {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return nil
	}
	return f.calls[len(f.calls)-1]
}

type captureListener struct {
	shown     chan int
	completed chan SubmitResult
	failed    chan error
}

func newCaptureListener() *captureListener {
	return &captureListener{
		shown:     make(chan int, 16),
		completed: make(chan SubmitResult, 1),
		failed:    make(chan error, 1),
	}
}

func (l *captureListener) QuestionShown(index, _ int) { l.shown <- index }
func (l *captureListener) Tick(int)                   {}
func (l *captureListener) Completed(r SubmitResult)   { l.completed <- r }
func (l *captureListener) SubmitFailed(err error)     { l.failed <- err }

func waitShown(t *testing.T, l *captureListener, want int) {
	t.Helper()
	select {
	case got := <-l.shown:
		if got != want {
			t.Fatalf("question shown = %d, want %d", got, want)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for question %d", want)
	}
}

func waitCompleted(t *testing.T, l *captureListener) SubmitResult {
	t.Helper()
	select {
	case r := <-l.completed:
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for completion")
		return SubmitResult{}
	}
}

func waitFailed(t *testing.T, l *captureListener) {
	t.Helper()
	select {
	case <-l.failed:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for submit failure")
	}
}

func TestStartShowsFirstQuestion(t *testing.T) {
	listener := newCaptureListener()
	s := New(makeQuiz(3, models.QuizConfig{}), &fakeSubmitter{}, WithListener(listener))
	s.Start(context.Background())

	waitShown(t, listener, 0)
	if s.State() != StateActive {
		t.Errorf("state = %q, want active", s.State())
	}
	statuses := s.Statuses()
	if statuses[0] != StatusSeen || statuses[1] != StatusUnseen {
		t.Errorf("statuses = %v", statuses)
	}
}

func TestSelectValidation(t *testing.T) {
	s := New(makeQuiz(2, models.QuizConfig{}), &fakeSubmitter{})
	s.Start(context.Background())

	if err := s.Select(4); !errors.Is(err, ErrOptionOutOfRange) {
		t.Errorf("Select(4) = %v, want ErrOptionOutOfRange", err)
	}
	if err := s.Select(-1); !errors.Is(err, ErrOptionOutOfRange) {
		t.Errorf("Select(-1) = %v, want ErrOptionOutOfRange", err)
	}
	if err := s.Select(1); err != nil {
		t.Fatalf("Select(1) = %v", err)
	}
	if s.Statuses()[0] != StatusAnswered {
		t.Errorf("status = %q, want answered", s.Statuses()[0])
	}

	// Changing the selection is allowed before feedback.
	if err := s.Select(2); err != nil {
		t.Fatalf("re-select = %v", err)
	}
	if got := s.Answers()[0]; got == nil || *got != 2 {
		t.Errorf("answer = %v, want 2", got)
	}
}

func TestAdvanceMarksSkippedInEndMode(t *testing.T) {
	cfg := models.QuizConfig{FeedbackStyle: models.FeedbackEnd}
	s := New(makeQuiz(3, cfg), &fakeSubmitter{})
	s.Start(context.Background())

	if err := s.Advance(); err != nil {
		t.Fatalf("advance = %v", err)
	}
	if s.Statuses()[0] != StatusSkipped {
		t.Errorf("status = %q, want skipped", s.Statuses()[0])
	}
	if s.CurrentIndex() != 1 {
		t.Errorf("current = %d, want 1", s.CurrentIndex())
	}
}

func TestImmediateModeFeedbackGate(t *testing.T) {
	cfg := models.QuizConfig{
		FeedbackStyle:    models.FeedbackImmediate,
		MarksPerQuestion: 2,
	}
	s := New(makeQuiz(2, cfg), &fakeSubmitter{})
	s.Start(context.Background())

	if err := s.Advance(); !errors.Is(err, ErrFeedbackPending) {
		t.Fatalf("advance before feedback = %v, want ErrFeedbackPending", err)
	}
	if _, err := s.CheckAnswer(); !errors.Is(err, ErrNoSelection) {
		t.Fatalf("check without selection = %v, want ErrNoSelection", err)
	}

	if err := s.Select(0); err != nil {
		t.Fatal(err)
	}
	feedback, err := s.CheckAnswer()
	if err != nil {
		t.Fatalf("check = %v", err)
	}
	if !feedback.Correct || feedback.Points != 2 || feedback.RunningTotal != 2 {
		t.Errorf("feedback = %+v", feedback)
	}

	// Scoring is once per question, and the selection is frozen after it.
	if _, err := s.CheckAnswer(); !errors.Is(err, ErrAlreadyScored) {
		t.Errorf("second check = %v, want ErrAlreadyScored", err)
	}
	if err := s.Select(1); !errors.Is(err, ErrAlreadyScored) {
		t.Errorf("select after scoring = %v, want ErrAlreadyScored", err)
	}
	if err := s.Advance(); err != nil {
		t.Errorf("advance after feedback = %v", err)
	}
}

func TestCompletionSubmitsAnswers(t *testing.T) {
	listener := newCaptureListener()
	submitter := &fakeSubmitter{result: SubmitResult{AttemptID: "a1", Score: 1, MaxScore: 2, Percentage: 50}}
	s := New(makeQuiz(2, models.QuizConfig{}), submitter, WithListener(listener))
	s.Start(context.Background())

	if err := s.Select(0); err != nil {
		t.Fatal(err)
	}
	if err := s.Advance(); err != nil {
		t.Fatal(err)
	}
	if err := s.Select(1); err != nil {
		t.Fatal(err)
	}
	if err := s.Advance(); err != nil {
		t.Fatal(err)
	}

	result := waitCompleted(t, listener)
	if result.AttemptID != "a1" {
		t.Errorf("attemptId = %q", result.AttemptID)
	}
	if s.State() != StateCompleted {
		t.Errorf("state = %q, want completed", s.State())
	}

	answers := submitter.lastCall()
	if len(answers) != 2 || *answers[0] != 0 || *answers[1] != 1 {
		t.Errorf("submitted answers = %v", answers)
	}
}

func TestForceSubmitLeavesRestUnanswered(t *testing.T) {
	listener := newCaptureListener()
	submitter := &fakeSubmitter{}
	s := New(makeQuiz(3, models.QuizConfig{}), submitter, WithListener(listener))
	s.Start(context.Background())

	if err := s.Select(2); err != nil {
		t.Fatal(err)
	}
	if err := s.ForceSubmit(); err != nil {
		t.Fatal(err)
	}

	waitCompleted(t, listener)
	answers := submitter.lastCall()
	if *answers[0] != 2 || answers[1] != nil || answers[2] != nil {
		t.Errorf("submitted answers = %v", answers)
	}

	if err := s.Select(0); !errors.Is(err, ErrSessionInactive) {
		t.Errorf("select after completion = %v, want ErrSessionInactive", err)
	}
}

func TestRetryAfterSubmitFailure(t *testing.T) {
	listener := newCaptureListener()
	submitter := &fakeSubmitter{}
	submitter.setErr(errors.New("db down"))
	s := New(makeQuiz(1, models.QuizConfig{}), submitter, WithListener(listener))
	s.Start(context.Background())

	if err := s.Select(0); err != nil {
		t.Fatal(err)
	}
	if err := s.Advance(); err != nil {
		t.Fatal(err)
	}
	waitFailed(t, listener)
	if s.State() != StateSubmitFailed {
		t.Fatalf("state = %q, want submit_failed", s.State())
	}

	// The same vector goes out again once the backend recovers.
	submitter.setErr(nil)
	if err := s.RetrySubmit(); err != nil {
		t.Fatal(err)
	}
	waitCompleted(t, listener)
	if got := submitter.lastCall(); *got[0] != 0 {
		t.Errorf("retried answers = %v", got)
	}
}

func TestRetryRequiresFailedState(t *testing.T) {
	s := New(makeQuiz(1, models.QuizConfig{}), &fakeSubmitter{})
	s.Start(context.Background())

	if err := s.RetrySubmit(); !errors.Is(err, ErrNotFailed) {
		t.Errorf("retry while active = %v, want ErrNotFailed", err)
	}
}

func TestPerQuestionTimerAdvances(t *testing.T) {
	listener := newCaptureListener()
	cfg := models.QuizConfig{
		TimerEnabled: true,
		TimerType:    models.TimerTypePerQuestion,
		TimeLimit:    2,
	}
	s := New(makeQuiz(2, cfg), &fakeSubmitter{},
		WithListener(listener), WithTickInterval(time.Millisecond))
	s.Start(context.Background())

	waitShown(t, listener, 0)
	// No input at all; the timer walks through both questions and the
	// session completes on its own.
	waitShown(t, listener, 1)
	waitCompleted(t, listener)
}

func TestTotalTimerCompletesSession(t *testing.T) {
	listener := newCaptureListener()
	cfg := models.QuizConfig{
		TimerEnabled: true,
		TimerType:    models.TimerTypeTotal,
		TimeLimit:    1,
	}
	submitter := &fakeSubmitter{}
	s := New(makeQuiz(3, cfg), submitter,
		WithListener(listener), WithTickInterval(time.Millisecond))
	s.Start(context.Background())

	waitCompleted(t, listener)
	answers := submitter.lastCall()
	if len(answers) != 3 {
		t.Fatalf("submitted %d answers, want 3", len(answers))
	}
	for i, a := range answers {
		if a != nil {
			t.Errorf("answer %d = %v, want unanswered", i, *a)
		}
	}
}

func TestCloseStopsSession(t *testing.T) {
	cfg := models.QuizConfig{
		TimerEnabled: true,
		TimerType:    models.TimerTypePerQuestion,
		TimeLimit:    60,
	}
	s := New(makeQuiz(2, cfg), &fakeSubmitter{}, WithTickInterval(time.Millisecond))
	s.Start(context.Background())

	s.Close()
	s.Close() // idempotent

	if s.State() != StateClosed {
		t.Errorf("state = %q, want closed", s.State())
	}
	if err := s.Select(0); !errors.Is(err, ErrSessionInactive) {
		t.Errorf("select after close = %v, want ErrSessionInactive", err)
	}
	if err := s.Advance(); !errors.Is(err, ErrSessionInactive) {
		t.Errorf("advance after close = %v, want ErrSessionInactive", err)
	}
}

func TestManualAdvanceRestartsPerQuestionTimer(t *testing.T) {
	listener := newCaptureListener()
	cfg := models.QuizConfig{
		FeedbackStyle: models.FeedbackEnd,
		TimerEnabled:  true,
		TimerType:     models.TimerTypePerQuestion,
		TimeLimit:     3600,
	}
	s := New(makeQuiz(2, cfg), &fakeSubmitter{},
		WithListener(listener), WithTickInterval(time.Millisecond))
	s.Start(context.Background())
	waitShown(t, listener, 0)

	if err := s.Select(0); err != nil {
		t.Fatal(err)
	}
	if err := s.Advance(); err != nil {
		t.Fatal(err)
	}
	waitShown(t, listener, 1)
	if s.State() != StateActive {
		t.Errorf("state = %q, want active after manual advance", s.State())
	}
}
