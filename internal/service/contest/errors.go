package contest

import (
	"errors"
	"fmt"
)

// Sentinel errors mapped to HTTP statuses by the API layer.
var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized access.")
)

// BadRequestError is a validation or policy failure with a user-facing message.
type BadRequestError struct {
	Msg string
}

func (e *BadRequestError) Error() string {
	return e.Msg
}

func badRequest(format string, args ...interface{}) error {
	return &BadRequestError{Msg: fmt.Sprintf(format, args...)}
}

// Gate messages.
const (
	msgSubmissionExists    = "submission already exists."
	msgSubmissionsClosed   = "submissions are not currently open"
	msgAlreadyVoted        = "you have already voted on this submission"
	msgVotingClosed        = "voting is not currently open"
	msgScoreOutOfRange     = "%s must be between %d and %d, got %d"
	msgInvalidTimingPeriod = "period must be positive, got %s"
)
