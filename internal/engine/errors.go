package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrUseNumberedChange is wrapped by GuidanceError.
	ErrUseNumberedChange = errors.New("files must be moved to a numbered changelist")

	// ErrNoChange indicates an empty change argument.
	ErrNoChange = errors.New("change number required")
)

// GuidanceError tells the user what to do instead. It is raised for the
// default changelist, which cannot be validated or submitted by number.
type GuidanceError struct {
	Change string
}

func (e *GuidanceError) Error() string {
	return fmt.Sprintf("change %q cannot be validated: %v", e.Change, ErrUseNumberedChange)
}

func (e *GuidanceError) Unwrap() error {
	return ErrUseNumberedChange
}
