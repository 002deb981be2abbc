package planner

import "sort"

// RemediationPlan lists the opened files that must be taken out of a
// changelist before it can be submitted.
type RemediationPlan struct {
	// ToRevert holds add entries whose local file is missing
	ToRevert []string `json:"toRevert"`

	// ToRevertAndDelete holds move/add entries whose local file is missing;
	// after the revert they are opened for delete and submitted separately
	ToRevertAndDelete []string `json:"toRevertAndDelete"`

	// Unresolved lists paths from either set the server could not map to a
	// local path (they are treated as missing)
	Unresolved []string `json:"unresolved,omitempty"`

	revert    map[string]bool
	delete    map[string]bool
	unresolve map[string]bool
}

// NewRemediationPlan creates an empty plan.
func NewRemediationPlan() *RemediationPlan {
	return &RemediationPlan{
		ToRevert:          []string{},
		ToRevertAndDelete: []string{},
		revert:            make(map[string]bool),
		delete:            make(map[string]bool),
		unresolve:         make(map[string]bool),
	}
}

// IsEmpty returns true if nothing needs remediation.
func (p *RemediationPlan) IsEmpty() bool {
	return len(p.ToRevert) == 0 && len(p.ToRevertAndDelete) == 0
}

// AddRevert records a missing add. A path already scheduled for
// revert-and-delete stays there.
func (p *RemediationPlan) AddRevert(depotPath string) {
	if p.delete[depotPath] || p.revert[depotPath] {
		return
	}
	p.revert[depotPath] = true
	p.ToRevert = insertSorted(p.ToRevert, depotPath)
}

// AddRevertAndDelete records a missing move/add. It takes precedence over a
// revert-only entry for the same path, keeping the sets disjoint.
func (p *RemediationPlan) AddRevertAndDelete(depotPath string) {
	if p.delete[depotPath] {
		return
	}
	if p.revert[depotPath] {
		delete(p.revert, depotPath)
		p.ToRevert = removeSorted(p.ToRevert, depotPath)
	}
	p.delete[depotPath] = true
	p.ToRevertAndDelete = insertSorted(p.ToRevertAndDelete, depotPath)
}

// MarkUnresolved notes that depotPath could not be resolved.
func (p *RemediationPlan) MarkUnresolved(depotPath string) {
	if p.unresolve[depotPath] {
		return
	}
	p.unresolve[depotPath] = true
	p.Unresolved = insertSorted(p.Unresolved, depotPath)
}

// Removed returns the sorted union of both sets: every path the
// remediation takes out of the changelist.
func (p *RemediationPlan) Removed() []string {
	all := make([]string, 0, len(p.ToRevert)+len(p.ToRevertAndDelete))
	all = append(all, p.ToRevert...)
	all = append(all, p.ToRevertAndDelete...)
	sort.Strings(all)
	return all
}

func insertSorted(list []string, s string) []string {
	i := sort.SearchStrings(list, s)
	list = append(list, "")
	copy(list[i+1:], list[i:])
	list[i] = s
	return list
}

func removeSorted(list []string, s string) []string {
	i := sort.SearchStrings(list, s)
	if i < len(list) && list[i] == s {
		return append(list[:i], list[i+1:]...)
	}
	return list
}
