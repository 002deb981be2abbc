package p4

// FileAction is the pending action recorded for an opened file.
type FileAction string

const (
	ActionAdd        FileAction = "add"
	ActionEdit       FileAction = "edit"
	ActionDelete     FileAction = "delete"
	ActionMoveAdd    FileAction = "move/add"
	ActionMoveDelete FileAction = "move/delete"
	ActionPurge      FileAction = "purge"
	ActionIntegrate  FileAction = "integrate"
	ActionBranch     FileAction = "branch"
	ActionArchive    FileAction = "archive"
	ActionImport     FileAction = "import"
)

// IsRemoval reports whether the action takes the file out of the depot head.
func (a FileAction) IsRemoval() bool {
	return a == ActionDelete || a == ActionMoveDelete || a == ActionPurge
}

// PendingEntry is one opened file in a changelist.
type PendingEntry struct {
	// DepotPath is the depot syntax path without revision
	DepotPath string `json:"depotPath"`

	// Action is the pending action
	Action FileAction `json:"action"`

	// Rev is the have revision reported by the server (may be empty)
	Rev string `json:"rev,omitempty"`

	// Type is the Perforce file type (may be empty)
	Type string `json:"type,omitempty"`
}

// ChangeDescription is a point-in-time snapshot of a changelist.
type ChangeDescription struct {
	ID          string         `json:"change"`
	Status      string         `json:"status,omitempty"`
	User        string         `json:"user,omitempty"`
	Client      string         `json:"client,omitempty"`
	Description string         `json:"desc,omitempty"`
	Entries     []PendingEntry `json:"entries"`

	// Warnings lists tolerated anomalies from the tagged output
	Warnings []string `json:"warnings,omitempty"`
}

// SubmitResult is the outcome of a submit attempt.
type SubmitResult struct {
	// Accepted is true when the server committed the changelist
	Accepted bool

	// Output is the combined server response
	Output string
}
