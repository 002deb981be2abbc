package engine

import (
	"github.com/danieljhkim/p4gate/internal/changelist"
	"github.com/danieljhkim/p4gate/internal/naming"
	"github.com/danieljhkim/p4gate/internal/p4"
	"github.com/danieljhkim/p4gate/internal/planner"
)

// Outcome is the terminal state of a validation run.
type Outcome string

const (
	// OutcomeSubmitted means the change was consistent and the server accepted it
	OutcomeSubmitted Outcome = "submitted"

	// OutcomeRejected means the change was consistent but the server refused it
	OutcomeRejected Outcome = "rejected"

	// OutcomeRemediated means missing files were taken out of the change;
	// the user must submit again
	OutcomeRemediated Outcome = "remediated"

	// OutcomeFailed is journaled for runs that ended in an error
	OutcomeFailed Outcome = "failed"
)

// ValidateRequest represents a request to validate and submit a change.
type ValidateRequest struct {
	// Change is the pending changelist number
	Change string
}

// ValidateResult represents the result of a validation run.
type ValidateResult struct {
	// Change is the validated changelist number
	Change string `json:"change"`

	// RunID is the journal id of the run (empty when not journaled)
	RunID string `json:"runId,omitempty"`

	Outcome Outcome `json:"outcome"`

	// Plan is the classification of missing files
	Plan *planner.RemediationPlan `json:"plan"`

	// Removed lists every depot path taken out of the change
	Removed []string `json:"removed,omitempty"`

	// SubmitOutput is the server output of the main submit, if any
	SubmitOutput string `json:"submitOutput,omitempty"`

	// RevertChange is the temporary changelist used for the revert
	RevertChange string `json:"revertChange,omitempty"`

	// Delete is the outcome of the delete sub-step, if it ran
	Delete *changelist.DeleteOutcome `json:"delete,omitempty"`

	// Changelists are the temporary changelists created by the run
	Changelists []*changelist.Temporary `json:"changelists,omitempty"`

	// Warnings are parser warnings for the change description
	Warnings []string `json:"warnings,omitempty"`
}

// BatchItem is the result for one change of ValidateAll.
type BatchItem struct {
	Change string
	Result *ValidateResult
	Err    error
}

// CheckResult represents the result of a naming check.
type CheckResult struct {
	Change      string
	Description *p4.ChangeDescription
	Violations  []naming.Violation
}

// Passed returns true when no file breaks a rule.
func (r *CheckResult) Passed() bool {
	return len(r.Violations) == 0
}
