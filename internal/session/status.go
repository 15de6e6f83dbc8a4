package session

// Status tracks one question's progress within a session. Statuses are
// session-local and never persisted.
type Status string

const (
	StatusUnseen   Status = "unseen"
	StatusSeen     Status = "seen"
	StatusAnswered Status = "answered"
	StatusSkipped  Status = "skipped"
)

// State is the session lifecycle. Once a session leaves StateActive no
// further input is accepted, except RetrySubmit from StateSubmitFailed.
type State string

const (
	StateActive       State = "active"
	StateSubmitting   State = "submitting"
	StateSubmitFailed State = "submit_failed"
	StateCompleted    State = "completed"
	StateClosed       State = "closed"
)
