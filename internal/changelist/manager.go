package changelist

import (
	"context"
	"errors"
	"fmt"

	"github.com/danieljhkim/p4gate/internal/journal"
	"github.com/danieljhkim/p4gate/internal/logging"
	"github.com/danieljhkim/p4gate/internal/p4"
)

// DeleteOutcome reports the best-effort delete sub-step.
type DeleteOutcome struct {
	// ChangeID is the delete changelist
	ChangeID string

	// Submitted is true when the server accepted the delete changelist
	Submitted bool

	// Abandoned is true when the changelist was cleaned up before the
	// submit; the files were not opened for delete
	Abandoned bool

	// Err is set when a step of the delete failed. After a rejected or
	// failed submit the changelist is left pending for the operator
	Err error
}

// Manager runs the remedial changelist sequences.
type Manager struct {
	gw      p4.Gateway
	journal journal.Recorder
	log     logging.Logger
}

// NewManager creates a Manager.
func NewManager(gw p4.Gateway, rec journal.Recorder, log logging.Logger) *Manager {
	if rec == nil {
		rec = journal.Nop{}
	}
	if log == nil {
		log = logging.Nop()
	}
	return &Manager{gw: gw, journal: rec, log: log}
}

// obtain returns the open changelist for purpose, creating it on first use.
func (m *Manager) obtain(ctx context.Context, scope *Scope, purpose Purpose) (*Temporary, error) {
	if t, ok := scope.Get(purpose); ok {
		if t.Closed {
			return nil, fmt.Errorf("%w: %s changelist %s", ErrPurposeUsed, purpose, t.ID)
		}
		return t, nil
	}

	id, err := m.gw.CreateChangelist(ctx, purpose.Description())
	if err != nil {
		return nil, err
	}
	t := &Temporary{ID: id, Purpose: purpose}
	if err := scope.add(t); err != nil {
		return nil, err
	}
	m.log.Info("created temporary changelist", "change", id, "purpose", purpose)
	m.note(ctx, scope, t, journal.StateCreated)
	return t, nil
}

// note journals a state change; failures are logged only.
func (m *Manager) note(ctx context.Context, scope *Scope, t *Temporary, state string) {
	if err := m.journal.RecordChangelist(ctx, scope.RunID, t.ID, string(t.Purpose), state); err != nil {
		m.log.Warn("failed to journal changelist", "change", t.ID, "state", state, "error", err)
	}
}

// revertAndDelete reverts everything in t and deletes it, attempting both
// steps even if the first fails.
func (m *Manager) revertAndDelete(ctx context.Context, scope *Scope, t *Temporary) error {
	var errs []error
	if err := m.gw.Revert(ctx, t.ID); err != nil {
		errs = append(errs, err)
	} else {
		m.note(ctx, scope, t, journal.StateReverted)
	}
	if err := m.gw.DeleteChangelist(ctx, t.ID); err != nil {
		errs = append(errs, err)
	} else {
		t.Closed = true
		m.note(ctx, scope, t, journal.StateDeleted)
	}
	return errors.Join(errs...)
}

// RevertMissingAdds moves paths into a revert changelist, reverts it and
// deletes it. The returned id names the (now deleted) changelist. When a
// step fails, the remaining cleanup still runs before the error is returned.
func (m *Manager) RevertMissingAdds(ctx context.Context, scope *Scope, paths []string) (string, error) {
	if len(paths) == 0 {
		return "", nil
	}

	t, err := m.obtain(ctx, scope, PurposeRevert)
	if err != nil {
		return "", err
	}

	var errs []error
	if err := m.gw.ReopenFiles(ctx, t.ID, paths); err != nil {
		errs = append(errs, err)
	} else {
		t.Members = append(t.Members, paths...)
	}
	if err := m.revertAndDelete(ctx, scope, t); err != nil {
		errs = append(errs, err)
	}

	if err := errors.Join(errs...); err != nil {
		return t.ID, fmt.Errorf("failed to revert missing files via change %s: %w", t.ID, err)
	}
	m.log.Info("reverted missing files", "change", t.ID, "files", len(paths))
	return t.ID, nil
}

// DeleteMissingMoves opens paths for delete in a delete changelist and
// submits it quietly. Only a failure to create the changelist is returned.
// A failed mark or reopen cleans the changelist up; that failure, like a
// rejected or failed submit, is reported in the outcome.
func (m *Manager) DeleteMissingMoves(ctx context.Context, scope *Scope, paths []string) (*DeleteOutcome, error) {
	if len(paths) == 0 {
		return nil, nil
	}

	t, err := m.obtain(ctx, scope, PurposeDelete)
	if err != nil {
		return nil, err
	}
	outcome := &DeleteOutcome{ChangeID: t.ID}

	if err := m.gw.MarkForDelete(ctx, paths); err != nil {
		outcome.Abandoned = true
		outcome.Err = m.abandon(ctx, scope, t, fmt.Errorf("failed to mark moved files for delete: %w", err))
		m.log.Warn("delete step abandoned", "change", t.ID, "error", outcome.Err)
		return outcome, nil
	}
	if err := m.gw.ReopenFiles(ctx, t.ID, paths); err != nil {
		outcome.Abandoned = true
		outcome.Err = m.abandon(ctx, scope, t, err)
		m.log.Warn("delete step abandoned", "change", t.ID, "error", outcome.Err)
		return outcome, nil
	}
	t.Members = append(t.Members, paths...)

	res, err := m.gw.Submit(ctx, t.ID)
	switch {
	case err != nil:
		outcome.Err = err
		m.log.Warn("delete changelist submit failed; left pending", "change", t.ID, "error", err)
	case !res.Accepted:
		outcome.Err = fmt.Errorf("%w: %s", p4.ErrSubmissionRejected, res.Output)
		m.log.Warn("delete changelist rejected; left pending", "change", t.ID, "output", res.Output)
		m.note(ctx, scope, t, journal.StateRejected)
	default:
		outcome.Submitted = true
		t.Closed = true
		m.log.Info("submitted delete changelist", "change", t.ID, "files", len(paths))
		m.note(ctx, scope, t, journal.StateSubmitted)
	}
	return outcome, nil
}

// abandon cleans up t after a failed step and returns cause, annotated
// with any cleanup failure.
func (m *Manager) abandon(ctx context.Context, scope *Scope, t *Temporary, cause error) error {
	if err := m.revertAndDelete(ctx, scope, t); err != nil {
		m.log.Warn("cleanup of temporary changelist failed", "change", t.ID, "error", err)
		return fmt.Errorf("%w (cleanup of change %s also failed: %v)", cause, t.ID, err)
	}
	return cause
}
