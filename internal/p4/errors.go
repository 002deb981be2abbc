package p4

import (
	"errors"
	"fmt"
)

var (
	// ErrCommandFailed is returned when p4 exits with a non-zero status.
	ErrCommandFailed = errors.New("p4 command failed")

	// ErrMalformedOutput is returned when tagged output lacks the fields a
	// caller needs.
	ErrMalformedOutput = errors.New("malformed p4 output")

	// ErrPathUnresolved is returned when a depot path cannot be mapped to a
	// local path. Callers cannot tell a tool failure from an unmapped path.
	ErrPathUnresolved = errors.New("depot path could not be resolved to a local path")

	// ErrSubmissionRejected marks a submit the server refused, typically
	// because a change-submit trigger failed.
	ErrSubmissionRejected = errors.New("submission rejected by server")
)

// QueryError is returned when a change description cannot be obtained.
type QueryError struct {
	// Change is the changelist that was queried
	Change string

	// Detail is the server diagnostic, if any
	Detail string

	Err error
}

func (e *QueryError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("failed to describe change %s: %v: %s", e.Change, e.Err, e.Detail)
	}
	return fmt.Sprintf("failed to describe change %s: %v", e.Change, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// ChangelistCreationError is returned when a new changelist number cannot be
// read back from the server's response.
type ChangelistCreationError struct {
	Description string
	Output      string
	Err         error
}

func (e *ChangelistCreationError) Error() string {
	msg := fmt.Sprintf("failed to create changelist %q", e.Description)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Output != "" {
		msg += ": " + e.Output
	}
	return msg
}

func (e *ChangelistCreationError) Unwrap() error {
	return e.Err
}
