package p4

import (
	"context"
	"fmt"
	"sort"
	"strconv"
)

// Gateway operation names recorded by FakeGateway.
const (
	OpDescribe         = "describe"
	OpWhere            = "where"
	OpCreateChangelist = "create"
	OpReopen           = "reopen"
	OpRevert           = "revert"
	OpDeleteChangelist = "delete-change"
	OpMarkForDelete    = "mark-delete"
	OpSubmit           = "submit"
	OpEdit             = "edit"
)

// GatewayCall is one call recorded by FakeGateway.
type GatewayCall struct {
	Op    string
	ID    string
	Paths []string
}

// FakeGateway is an in-memory Gateway that records calls and keeps a small
// model of which changelist each file is opened in.
type FakeGateway struct {
	Calls []GatewayCall

	// Descriptions returned by FetchDescription, keyed by change number
	Descriptions map[string]*ChangeDescription

	// LocalPaths maps depot paths to workspace paths; unmapped paths fail
	// with ErrPathUnresolved
	LocalPaths map[string]string

	// Rejected lists changes whose submit the server refuses
	Rejected map[string]bool

	// Opened maps depot path to the change it is opened in
	Opened map[string]string

	// Created records descriptions of changelists created, keyed by number
	Created map[string]string

	// Configurable failures
	FetchErr  error
	CreateErr error
	ReopenErr error
	RevertErr error
	DeleteErr error
	MarkErr   error
	SubmitErr error
	EditErr   error

	nextChange int
}

// NewFakeGateway creates a FakeGateway whose created changelists start at 9001.
func NewFakeGateway() *FakeGateway {
	return &FakeGateway{
		Descriptions: make(map[string]*ChangeDescription),
		LocalPaths:   make(map[string]string),
		Rejected:     make(map[string]bool),
		Opened:       make(map[string]string),
		Created:      make(map[string]string),
		nextChange:   9001,
	}
}

// AddDescription registers desc and marks its entries as opened in it.
func (f *FakeGateway) AddDescription(desc *ChangeDescription) {
	f.Descriptions[desc.ID] = desc
	for _, e := range desc.Entries {
		f.Opened[e.DepotPath] = desc.ID
	}
}

func (f *FakeGateway) record(op, id string, paths []string) {
	f.Calls = append(f.Calls, GatewayCall{Op: op, ID: id, Paths: append([]string(nil), paths...)})
}

// Ops returns the sequence of recorded operation names.
func (f *FakeGateway) Ops() []string {
	ops := make([]string, len(f.Calls))
	for i, c := range f.Calls {
		ops[i] = c.Op
	}
	return ops
}

// CallsFor returns the recorded calls for op.
func (f *FakeGateway) CallsFor(op string) []GatewayCall {
	var calls []GatewayCall
	for _, c := range f.Calls {
		if c.Op == op {
			calls = append(calls, c)
		}
	}
	return calls
}

// OpenedIn returns the sorted depot paths opened in id.
func (f *FakeGateway) OpenedIn(id string) []string {
	var paths []string
	for p, cl := range f.Opened {
		if cl == id {
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)
	return paths
}

func (f *FakeGateway) FetchDescription(ctx context.Context, changeID string) (*ChangeDescription, error) {
	f.record(OpDescribe, changeID, nil)
	if f.FetchErr != nil {
		return nil, &QueryError{Change: changeID, Err: f.FetchErr}
	}
	desc, ok := f.Descriptions[changeID]
	if !ok {
		return nil, &QueryError{Change: changeID, Detail: "Change " + changeID + " unknown.", Err: ErrCommandFailed}
	}
	return desc, nil
}

func (f *FakeGateway) ResolveLocalPath(ctx context.Context, depotPath string) (string, error) {
	f.record(OpWhere, "", []string{depotPath})
	local, ok := f.LocalPaths[depotPath]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrPathUnresolved, depotPath)
	}
	return local, nil
}

func (f *FakeGateway) CreateChangelist(ctx context.Context, description string) (string, error) {
	if f.CreateErr != nil {
		f.record(OpCreateChangelist, "", nil)
		return "", &ChangelistCreationError{Description: description, Err: f.CreateErr}
	}
	id := strconv.Itoa(f.nextChange)
	f.nextChange++
	f.Created[id] = description
	f.record(OpCreateChangelist, id, nil)
	return id, nil
}

func (f *FakeGateway) ReopenFiles(ctx context.Context, targetID string, paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	f.record(OpReopen, targetID, paths)
	if f.ReopenErr != nil {
		return f.ReopenErr
	}
	for _, p := range paths {
		if _, ok := f.Opened[p]; ok {
			f.Opened[p] = targetID
		}
	}
	return nil
}

func (f *FakeGateway) Revert(ctx context.Context, id string) error {
	f.record(OpRevert, id, nil)
	if f.RevertErr != nil {
		return f.RevertErr
	}
	for p, cl := range f.Opened {
		if cl == id {
			delete(f.Opened, p)
		}
	}
	return nil
}

func (f *FakeGateway) DeleteChangelist(ctx context.Context, id string) error {
	f.record(OpDeleteChangelist, id, nil)
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	if open := f.OpenedIn(id); len(open) > 0 {
		return fmt.Errorf("%w: change %s has %d open file(s) associated with it and can't be deleted", ErrCommandFailed, id, len(open))
	}
	delete(f.Created, id)
	return nil
}

func (f *FakeGateway) MarkForDelete(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	f.record(OpMarkForDelete, "", paths)
	if f.MarkErr != nil {
		return f.MarkErr
	}
	for _, p := range paths {
		f.Opened[p] = "default"
	}
	return nil
}

func (f *FakeGateway) Submit(ctx context.Context, id string) (*SubmitResult, error) {
	f.record(OpSubmit, id, nil)
	if f.SubmitErr != nil {
		return nil, f.SubmitErr
	}
	if f.Rejected[id] {
		return &SubmitResult{Accepted: false, Output: "Submit validation failed -- fix problems then use 'p4 submit -c " + id + "'."}, nil
	}
	for p, cl := range f.Opened {
		if cl == id {
			delete(f.Opened, p)
		}
	}
	return &SubmitResult{Accepted: true, Output: "Change " + id + " submitted."}, nil
}

func (f *FakeGateway) Edit(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	f.record(OpEdit, "", paths)
	if f.EditErr != nil {
		return f.EditErr
	}
	for _, p := range paths {
		f.Opened[p] = "default"
	}
	return nil
}
