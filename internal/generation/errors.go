package generation

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is returned before any upstream call is made.
var ErrInvalidConfig = errors.New("missing required fields: topic and numberOfQuestions")

// UpstreamError reports a failed or malformed response from the generation
// service. Status carries the upstream HTTP status code, or zero when the
// request never completed.
type UpstreamError struct {
	Status int
	Msg    string
	Err    error
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("generation service returned status %d: %s", e.Status, e.Msg)
	}
	return fmt.Sprintf("generation service unreachable: %s", e.Msg)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// ParseError means the sanitized model output was not valid JSON.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("model response is not valid JSON: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// SchemaViolationError names the first question that failed structural
// validation. The whole set is rejected; there is no partial acceptance.
type SchemaViolationError struct {
	Index  int
	Reason string
}

func (e *SchemaViolationError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("invalid question set: %s", e.Reason)
	}
	return fmt.Sprintf("invalid question at index %d: %s", e.Index, e.Reason)
}
