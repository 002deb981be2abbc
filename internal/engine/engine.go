// Package engine provides the core business logic for p4gate operations.
//
// The engine sits between CLI commands and the lower-level packages. It
// fetches a change, classifies its missing files, and either submits the
// change or takes the missing files out of it.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/danieljhkim/p4gate/internal/changelist"
	"github.com/danieljhkim/p4gate/internal/checkout"
	"github.com/danieljhkim/p4gate/internal/journal"
	"github.com/danieljhkim/p4gate/internal/logging"
	"github.com/danieljhkim/p4gate/internal/naming"
	"github.com/danieljhkim/p4gate/internal/p4"
	"github.com/danieljhkim/p4gate/internal/planner"
)

// DefaultChange is the name of the unnumbered pending changelist.
const DefaultChange = "default"

// Engine orchestrates all p4gate operations.
// It is the main API surface called by the CLI.
type Engine struct {
	gw       p4.Gateway
	presence planner.PresenceChecker
	manager  *changelist.Manager
	checkout *checkout.Helper
	journal  journal.Recorder
	log      logging.Logger
}

// New creates a new Engine with the given dependencies. A nil recorder
// disables journaling.
func New(gw p4.Gateway, presence planner.PresenceChecker, rec journal.Recorder, log logging.Logger) *Engine {
	if rec == nil {
		rec = journal.Nop{}
	}
	if log == nil {
		log = logging.Nop()
	}
	return &Engine{
		gw:       gw,
		presence: presence,
		manager:  changelist.NewManager(gw, rec, log),
		checkout: checkout.NewHelper(gw, presence, log),
		journal:  rec,
		log:      log,
	}
}

func checkChange(change string) (string, error) {
	change = strings.TrimSpace(change)
	if change == "" {
		return "", ErrNoChange
	}
	if strings.EqualFold(change, DefaultChange) {
		return "", &GuidanceError{Change: change}
	}
	return change, nil
}

// Validate runs one change through fetch, classification and then either
// submit or remediation. A remediated change is never resubmitted in the
// same run.
func (e *Engine) Validate(ctx context.Context, req *ValidateRequest) (*ValidateResult, error) {
	change, err := checkChange(req.Change)
	if err != nil {
		return nil, err
	}
	log := e.log.With("change", change)

	runID, err := e.journal.StartRun(ctx, change)
	if err != nil {
		log.Warn("failed to journal run", "error", err)
	}
	scope := changelist.NewScope(runID)

	result, err := e.validate(ctx, change, scope, log)
	if result != nil {
		result.RunID = runID
		result.Changelists = scope.Changelists()
	}

	outcome, detail := OutcomeFailed, ""
	switch {
	case err != nil:
		detail = err.Error()
	case result.Outcome == OutcomeRejected:
		outcome, detail = result.Outcome, result.SubmitOutput
	default:
		outcome, detail = result.Outcome, strings.Join(result.Removed, "\n")
	}
	if jerr := e.journal.FinishRun(ctx, runID, string(outcome), detail); jerr != nil {
		log.Warn("failed to journal run outcome", "error", jerr)
	}

	return result, err
}

func (e *Engine) validate(ctx context.Context, change string, scope *changelist.Scope, log logging.Logger) (*ValidateResult, error) {
	desc, err := e.gw.FetchDescription(ctx, change)
	if err != nil {
		return nil, err
	}
	plan := planner.Classify(ctx, desc, e.gw, e.presence)
	result := &ValidateResult{Change: change, Plan: plan, Warnings: desc.Warnings}
	if len(plan.Unresolved) > 0 {
		log.Warn("files without a workspace mapping treated as missing", "files", plan.Unresolved)
	}

	if plan.IsEmpty() {
		res, err := e.gw.Submit(ctx, change)
		if err != nil {
			return result, fmt.Errorf("failed to submit change %s: %w", change, err)
		}
		result.SubmitOutput = res.Output
		if res.Accepted {
			result.Outcome = OutcomeSubmitted
			log.Info("change submitted")
		} else {
			result.Outcome = OutcomeRejected
			log.Warn("change rejected by server", "error", p4.ErrSubmissionRejected)
		}
		return result, nil
	}

	result.Removed = plan.Removed()
	revertID, err := e.manager.RevertMissingAdds(ctx, scope, result.Removed)
	result.RevertChange = revertID
	if err != nil {
		return result, err
	}
	// the files are out of the change from here on, whatever the delete step does
	result.Outcome = OutcomeRemediated

	if len(plan.ToRevertAndDelete) > 0 {
		outcome, err := e.manager.DeleteMissingMoves(ctx, scope, plan.ToRevertAndDelete)
		result.Delete = outcome
		if err != nil {
			return result, err
		}
	}

	log.Info("missing files removed from change", "files", len(result.Removed))
	return result, nil
}

// ValidateAll validates each change in order. Every change gets its own
// run; a failure does not stop the others. The returned error joins the
// failures.
func (e *Engine) ValidateAll(ctx context.Context, changes []string) ([]BatchItem, error) {
	items := make([]BatchItem, 0, len(changes))
	var errs []error
	for _, change := range changes {
		res, err := e.Validate(ctx, &ValidateRequest{Change: change})
		items = append(items, BatchItem{Change: change, Result: res, Err: err})
		if err != nil {
			errs = append(errs, fmt.Errorf("change %s: %w", change, err))
		}
	}
	return items, errors.Join(errs...)
}

// CheckNames fetches change and checks its files against rules.
func (e *Engine) CheckNames(ctx context.Context, change string, rules *naming.Rules) (*CheckResult, error) {
	change, err := checkChange(change)
	if err != nil {
		return nil, err
	}

	desc, err := e.gw.FetchDescription(ctx, change)
	if err != nil {
		return nil, err
	}

	violations := naming.NewChecker(rules).Check(desc.Entries)
	e.log.Debug("naming check done", "change", change, "files", len(desc.Entries), "violations", len(violations))
	return &CheckResult{Change: change, Description: desc, Violations: violations}, nil
}

// Checkout opens local paths and their companion .meta files for edit.
func (e *Engine) Checkout(ctx context.Context, paths []string) (*checkout.Result, error) {
	return e.checkout.Checkout(ctx, paths)
}
