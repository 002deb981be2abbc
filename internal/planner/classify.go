package planner

import (
	"context"

	"github.com/danieljhkim/p4gate/internal/p4"
)

// PathResolver maps depot paths to local paths.
type PathResolver interface {
	ResolveLocalPath(ctx context.Context, depotPath string) (string, error)
}

// PresenceChecker answers whether a local path exists.
type PresenceChecker interface {
	ExistsLocally(path string) bool
}

// Classify builds the remediation plan for desc.
//
// Only add and move/add entries are inspected. Each is resolved and checked
// once, so the plan reflects the workspace at the moment of the call; a
// resolution failure counts as a missing file.
func Classify(ctx context.Context, desc *p4.ChangeDescription, resolver PathResolver, presence PresenceChecker) *RemediationPlan {
	plan := NewRemediationPlan()
	if desc == nil {
		return plan
	}

	checked := make(map[string]bool)
	for _, entry := range desc.Entries {
		if entry.Action != p4.ActionAdd && entry.Action != p4.ActionMoveAdd {
			continue
		}

		missing, seen := checked[entry.DepotPath]
		if !seen {
			local, err := resolver.ResolveLocalPath(ctx, entry.DepotPath)
			if err != nil {
				plan.MarkUnresolved(entry.DepotPath)
				missing = true
			} else {
				missing = !presence.ExistsLocally(local)
			}
			checked[entry.DepotPath] = missing
		}
		if !missing {
			continue
		}

		if entry.Action == p4.ActionAdd {
			plan.AddRevert(entry.DepotPath)
		} else {
			plan.AddRevertAndDelete(entry.DepotPath)
		}
	}
	return plan
}
