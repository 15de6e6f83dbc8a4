// Package session implements the quiz-taking state machine: per-question
// status tracking, the countdown timer, feedback-style branching and the
// handoff to the attempt recorder on completion. The running total it keeps
// in immediate-feedback mode is presentational only; the authoritative score
// is recomputed server-side from the submitted answer vector.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"quizforge/internal/models"
	"quizforge/internal/scoring"
)

var (
	ErrSessionInactive  = errors.New("session no longer accepts input")
	ErrNoSelection      = errors.New("no option selected for the current question")
	ErrAlreadyScored    = errors.New("current question was already scored")
	ErrFeedbackPending  = errors.New("submit the current answer for feedback before advancing")
	ErrNotFailed        = errors.New("session has no failed submission to retry")
	ErrOptionOutOfRange = errors.New("selected option is out of range")
)

// SubmitResult is what the attempt recorder returns on completion.
type SubmitResult struct {
	AttemptID  string  `json:"attemptId"`
	Score      float64 `json:"score"`
	MaxScore   float64 `json:"maxScore"`
	Percentage float64 `json:"percentage"`
}

// Submitter records the finished attempt server-side.
type Submitter interface {
	Submit(ctx context.Context, quizID string, answers models.AnswerVector) (SubmitResult, error)
}

// Feedback is the per-question scoring result in immediate mode.
type Feedback struct {
	Index         int     `json:"index"`
	Correct       bool    `json:"correct"`
	CorrectAnswer int     `json:"correctAnswer"`
	Explanation   string  `json:"explanation"`
	Points        float64 `json:"points"`
	RunningTotal  float64 `json:"runningTotal"`
}

// Listener receives session events. Callbacks run on the goroutine that
// triggered the transition and must not call back into the session.
type Listener interface {
	QuestionShown(index, total int)
	Tick(remaining int)
	Completed(result SubmitResult)
	SubmitFailed(err error)
}

// NopListener is the default listener.
type NopListener struct{}

func (NopListener) QuestionShown(int, int) {}
func (NopListener) Tick(int)               {}
func (NopListener) Completed(SubmitResult) {}
func (NopListener) SubmitFailed(error)     {}

// Session drives one user's pass through one quiz. All methods are safe for
// concurrent use; in practice the only contenders are the caller and the
// timer goroutine.
type Session struct {
	mu sync.Mutex

	quiz      *models.Quiz
	submitter Submitter
	listener  Listener
	logger    *zap.SugaredLogger

	tickInterval time.Duration
	ctx          context.Context

	state        State
	current      int
	statuses     []Status
	answers      models.AnswerVector
	scored       []bool
	runningTotal float64
	timer        *countdown
}

type OptionFunc func(*Session)

func WithListener(l Listener) OptionFunc {
	return func(s *Session) { s.listener = l }
}

// WithTickInterval overrides the one-second cadence; tests use it to speed
// the countdown up.
func WithTickInterval(d time.Duration) OptionFunc {
	return func(s *Session) { s.tickInterval = d }
}

func WithLogger(logger *zap.SugaredLogger) OptionFunc {
	return func(s *Session) { s.logger = logger }
}

func New(quiz *models.Quiz, submitter Submitter, opts ...OptionFunc) *Session {
	n := len(quiz.Questions)
	s := &Session{
		quiz:         quiz,
		submitter:    submitter,
		listener:     NopListener{},
		logger:       zap.NewNop().Sugar(),
		tickInterval: time.Second,
		ctx:          context.Background(),
		statuses:     make([]Status, n),
		answers:      make(models.AnswerVector, n),
		scored:       make([]bool, n),
	}
	for i := range s.statuses {
		s.statuses[i] = StatusUnseen
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start activates the session, shows the first question and starts the
// countdown if the quiz is timed.
func (s *Session) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != "" {
		return
	}
	s.state = StateActive
	s.ctx = ctx
	s.markSeenLocked(0)
	s.listener.QuestionShown(0, len(s.quiz.Questions))

	cfg := s.quiz.Config
	if !cfg.TimerEnabled {
		return
	}
	switch cfg.TimerType {
	case models.TimerTypeTotal:
		s.startTimerLocked(cfg.TimeLimit*60, false)
	case models.TimerTypePerQuestion:
		s.startTimerLocked(cfg.TimeLimit, true)
	}
}

// Select records an option for the current question. Re-selecting is
// idempotent: the question stays answered with the new choice.
func (s *Session) Select(option int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateActive {
		return ErrSessionInactive
	}
	if option < 0 || option >= len(s.quiz.Questions[s.current].Options) {
		return ErrOptionOutOfRange
	}
	if s.quiz.Config.FeedbackStyle == models.FeedbackImmediate && s.scored[s.current] {
		return ErrAlreadyScored
	}

	choice := option
	s.answers[s.current] = &choice
	s.statuses[s.current] = StatusAnswered
	return nil
}

// CheckAnswer scores the current question exactly once, for immediate
// feedback mode. The contribution is accumulated into the running total
// purely for display.
func (s *Session) CheckAnswer() (Feedback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateActive {
		return Feedback{}, ErrSessionInactive
	}
	if s.quiz.Config.FeedbackStyle != models.FeedbackImmediate {
		return Feedback{}, errors.New("feedback is only available in immediate mode")
	}
	answer := s.answers[s.current]
	if answer == nil {
		return Feedback{}, ErrNoSelection
	}
	if s.scored[s.current] {
		return Feedback{}, ErrAlreadyScored
	}

	q := s.quiz.Questions[s.current]
	points := scoring.ScoreOne(q, s.quiz.Config, answer)
	s.scored[s.current] = true
	s.runningTotal += points

	return Feedback{
		Index:         s.current,
		Correct:       *answer == q.CorrectAnswer,
		CorrectAnswer: q.CorrectAnswer,
		Explanation:   q.Explanation,
		Points:        points,
		RunningTotal:  s.runningTotal,
	}, nil
}

// Advance moves to the next question, or completes the quiz when the
// current question is the last one. In end mode a question left without a
// selection is marked skipped. In immediate mode advancing requires the
// current answer to have been scored first.
func (s *Session) Advance() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.advanceLocked(false)
}

// ForceSubmit completes the quiz from the current position, leaving any
// remaining questions unanswered.
func (s *Session) ForceSubmit() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateActive {
		return ErrSessionInactive
	}
	s.completeLocked()
	return nil
}

// RetrySubmit re-sends the same answer vector after a failed submission.
func (s *Session) RetrySubmit() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateSubmitFailed {
		return ErrNotFailed
	}
	s.state = StateSubmitting
	go s.submit(append(models.AnswerVector(nil), s.answers...))
	return nil
}

// Close tears the session down and releases the timer. In-memory answers
// are discarded; closing is idempotent.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopTimerLocked()
	if s.state == StateActive || s.state == StateSubmitFailed {
		s.state = StateClosed
	}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) CurrentIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *Session) Statuses() []Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Status(nil), s.statuses...)
}

func (s *Session) Answers() models.AnswerVector {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append(models.AnswerVector(nil), s.answers...)
}

func (s *Session) RunningTotal() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runningTotal
}

func (s *Session) advanceLocked(timerExpired bool) error {
	if s.state != StateActive {
		return ErrSessionInactive
	}

	cfg := s.quiz.Config
	if !timerExpired && cfg.FeedbackStyle == models.FeedbackImmediate && !s.scored[s.current] {
		return ErrFeedbackPending
	}
	if cfg.FeedbackStyle == models.FeedbackEnd && s.answers[s.current] == nil && s.statuses[s.current] != StatusAnswered {
		s.statuses[s.current] = StatusSkipped
	}

	if s.current >= len(s.quiz.Questions)-1 {
		s.completeLocked()
		return nil
	}

	s.current++
	s.markSeenLocked(s.current)
	s.listener.QuestionShown(s.current, len(s.quiz.Questions))

	if cfg.TimerEnabled && cfg.TimerType == models.TimerTypePerQuestion {
		s.stopTimerLocked()
		s.startTimerLocked(cfg.TimeLimit, true)
	}
	return nil
}

func (s *Session) markSeenLocked(index int) {
	if s.statuses[index] == StatusUnseen {
		s.statuses[index] = StatusSeen
	}
}

// startTimerLocked retires any previous countdown before starting a new one
// so two timers never tick for the same session.
func (s *Session) startTimerLocked(seconds int, perQuestion bool) {
	s.stopTimerLocked()

	c := newCountdown()
	s.timer = c
	expire := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		// A stale expiry can race a transition that already retired this
		// countdown; only the current timer may act.
		if s.timer != c || s.state != StateActive {
			return
		}
		if perQuestion {
			_ = s.advanceLocked(true)
		} else {
			s.completeLocked()
		}
	}
	c.run(seconds, s.tickInterval, s.listener.Tick, expire)
}

func (s *Session) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Session) completeLocked() {
	s.stopTimerLocked()
	s.state = StateSubmitting
	s.logger.Infow("session complete, submitting attempt", "quizId", s.quiz.ID)
	go s.submit(append(models.AnswerVector(nil), s.answers...))
}

func (s *Session) submit(answers models.AnswerVector) {
	result, err := s.submitter.Submit(s.ctx, s.quiz.ID, answers)

	s.mu.Lock()
	if s.state != StateSubmitting {
		// Torn down while the submission was in flight.
		s.mu.Unlock()
		return
	}
	if err != nil {
		s.state = StateSubmitFailed
		s.mu.Unlock()
		s.logger.Errorw("attempt submission failed", "quizId", s.quiz.ID, "error", err)
		s.listener.SubmitFailed(err)
		return
	}
	s.state = StateCompleted
	s.mu.Unlock()
	s.listener.Completed(result)
}
