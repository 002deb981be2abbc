// Package changelist sequences gateway primitives into the remedial
// actions applied to an inconsistent changelist.
//
// Every temporary changelist is tracked in a Scope that lives for a single
// validation run; nothing is shared between runs or processes.
package changelist

import (
	"errors"
	"fmt"
)

// Purpose says why a temporary changelist exists.
type Purpose string

const (
	PurposeRevert Purpose = "revert"
	PurposeDelete Purpose = "delete"
)

// Descriptions given to temporary changelists on the server.
const (
	RevertDescription = "(Auto Generated) Revert Missing Files"
	DeleteDescription = "(Auto Generated) Files to be deleted, please submit this changelist"
)

// ErrPurposeUsed is returned when a run asks for a second changelist of a
// purpose whose first changelist is already closed.
var ErrPurposeUsed = errors.New("temporary changelist already used in this run")

// Description returns the server-side description for p.
func (p Purpose) Description() string {
	if p == PurposeDelete {
		return DeleteDescription
	}
	return RevertDescription
}

// Temporary is a changelist created by p4gate during a run.
type Temporary struct {
	ID      string
	Purpose Purpose
	Members []string

	// Closed is set once the changelist was deleted or submitted
	Closed bool
}

// Scope holds the temporary changelists of one run, at most one per purpose.
type Scope struct {
	// RunID is the journal id of the run (empty when not journaled)
	RunID string

	created map[Purpose]*Temporary
	order   []Purpose
}

// NewScope creates an empty scope for runID.
func NewScope(runID string) *Scope {
	return &Scope{RunID: runID, created: make(map[Purpose]*Temporary)}
}

// Get returns the changelist created for p, if any.
func (s *Scope) Get(p Purpose) (*Temporary, bool) {
	t, ok := s.created[p]
	return t, ok
}

// Changelists returns the changelists in creation order.
func (s *Scope) Changelists() []*Temporary {
	out := make([]*Temporary, 0, len(s.order))
	for _, p := range s.order {
		out = append(out, s.created[p])
	}
	return out
}

func (s *Scope) add(t *Temporary) error {
	if _, ok := s.created[t.Purpose]; ok {
		return fmt.Errorf("%w: %s", ErrPurposeUsed, t.Purpose)
	}
	s.created[t.Purpose] = t
	s.order = append(s.order, t.Purpose)
	return nil
}
