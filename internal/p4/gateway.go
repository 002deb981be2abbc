package p4

import (
	"context"
	"fmt"
	"strings"

	"github.com/danieljhkim/p4gate/internal/logging"
	"github.com/danieljhkim/p4gate/internal/pathclass"
)

// Gateway is every server interaction p4gate needs.
type Gateway interface {
	// FetchDescription returns the opened files of a changelist.
	FetchDescription(ctx context.Context, changeID string) (*ChangeDescription, error)

	// ResolveLocalPath maps a depot path to its workspace path. Returns an
	// error wrapping ErrPathUnresolved when the mapping cannot be obtained.
	ResolveLocalPath(ctx context.Context, depotPath string) (string, error)

	// CreateChangelist creates an empty pending changelist and returns its number.
	CreateChangelist(ctx context.Context, description string) (string, error)

	// ReopenFiles moves paths into targetID. No-op for an empty batch.
	ReopenFiles(ctx context.Context, targetID string, paths []string) error

	// Revert reverts every file opened in id.
	Revert(ctx context.Context, id string) error

	// DeleteChangelist deletes an empty pending changelist.
	DeleteChangelist(ctx context.Context, id string) error

	// MarkForDelete opens paths for delete. No-op for an empty batch.
	MarkForDelete(ctx context.Context, paths []string) error

	// Submit submits id. A server rejection is reported through the result.
	Submit(ctx context.Context, id string) (*SubmitResult, error)

	// Edit opens paths for edit. No-op for an empty batch.
	Edit(ctx context.Context, paths []string) error
}

// Options carries the connection settings passed as p4 global options.
type Options struct {
	Port    string
	User    string
	Client  string
	Charset string

	// AlternateCharset is the -Q value used for paths containing CJK
	// characters (default cp936)
	AlternateCharset string
}

// P4Gateway implements Gateway with the p4 command line client.
type P4Gateway struct {
	runner Runner
	opts   Options
	log    logging.Logger
}

// NewP4Gateway creates a P4Gateway.
func NewP4Gateway(runner Runner, opts Options, log logging.Logger) *P4Gateway {
	if opts.AlternateCharset == "" {
		opts.AlternateCharset = "cp936"
	}
	if log == nil {
		log = logging.Nop()
	}
	return &P4Gateway{runner: runner, opts: opts, log: log}
}

// globalArgs builds the options placed before the command name.
func (g *P4Gateway) globalArgs(alternate bool) []string {
	var args []string
	if g.opts.Port != "" {
		args = append(args, "-p", g.opts.Port)
	}
	if g.opts.User != "" {
		args = append(args, "-u", g.opts.User)
	}
	if g.opts.Client != "" {
		args = append(args, "-c", g.opts.Client)
	}
	if g.opts.Charset != "" {
		args = append(args, "-C", g.opts.Charset)
	}
	if alternate {
		args = append(args, "-Q", g.opts.AlternateCharset)
	}
	return args
}

// run executes one p4 command. alternate selects the -Q variant for the
// whole invocation.
func (g *P4Gateway) run(ctx context.Context, stdin []byte, alternate bool, args ...string) (*Result, error) {
	full := append(g.globalArgs(alternate), args...)
	res, err := g.runner.Run(ctx, stdin, full...)
	if err != nil {
		g.log.Debug("p4 call failed to run", "cmd", Subcommand(args), "error", err)
		return nil, err
	}
	g.log.Debug("p4 call", "cmd", Subcommand(args), "exit", res.ExitCode, "alternate_encoding", alternate)
	return res, nil
}

// runBatch runs a command over a path batch and turns a non-zero exit into
// an error.
func (g *P4Gateway) runBatch(ctx context.Context, what string, args []string, paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	res, err := g.run(ctx, nil, pathclass.AnyNeedsAlternateEncoding(paths), append(args, paths...)...)
	if err != nil {
		return fmt.Errorf("failed to %s: %w", what, err)
	}
	if res.Failed() {
		return fmt.Errorf("failed to %s: %w: %s", what, ErrCommandFailed, res.Diagnostic())
	}
	return nil
}

// FetchDescription runs describe -s in tagged mode.
func (g *P4Gateway) FetchDescription(ctx context.Context, changeID string) (*ChangeDescription, error) {
	res, err := g.run(ctx, nil, false, "-ztag", "describe", "-s", changeID)
	if err != nil {
		return nil, &QueryError{Change: changeID, Err: err}
	}
	// p4 can exit 0 and still report an unknown change on stderr
	if res.Failed() || strings.TrimSpace(res.Stderr) != "" {
		return nil, &QueryError{Change: changeID, Detail: res.Diagnostic(), Err: ErrCommandFailed}
	}

	desc, err := ParseDescription(res.Stdout)
	if err != nil {
		return nil, &QueryError{Change: changeID, Detail: res.Diagnostic(), Err: err}
	}
	if desc.ID != changeID {
		g.log.Warn("describe returned a different change number", "requested", changeID, "got", desc.ID)
	}
	for _, w := range desc.Warnings {
		g.log.Warn("describe output anomaly", "change", changeID, "detail", w)
	}
	return desc, nil
}

// ResolveLocalPath runs where for a single depot path.
func (g *P4Gateway) ResolveLocalPath(ctx context.Context, depotPath string) (string, error) {
	res, err := g.run(ctx, nil, pathclass.NeedsAlternateEncoding(depotPath), "-ztag", "where", depotPath)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrPathUnresolved, depotPath, err)
	}
	if res.Failed() {
		return "", fmt.Errorf("%w: %s: %s", ErrPathUnresolved, depotPath, res.Diagnostic())
	}
	local, ok := ParseWherePath(res.Stdout)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrPathUnresolved, depotPath)
	}
	return local, nil
}

// CreateChangelist fills a change spec with change -o and feeds it to
// change -i, the same pipeline an operator would type.
func (g *P4Gateway) CreateChangelist(ctx context.Context, description string) (string, error) {
	alternate := pathclass.NeedsAlternateEncoding(description)

	spec, err := g.run(ctx, nil, alternate,
		"--field", "Description="+description,
		"--field", "Files=",
		"change", "-o")
	if err != nil {
		return "", &ChangelistCreationError{Description: description, Err: err}
	}
	if spec.Failed() {
		return "", &ChangelistCreationError{Description: description, Output: spec.Diagnostic(), Err: ErrCommandFailed}
	}

	created, err := g.run(ctx, []byte(spec.Stdout), alternate, "change", "-i")
	if err != nil {
		return "", &ChangelistCreationError{Description: description, Err: err}
	}
	if created.Failed() {
		return "", &ChangelistCreationError{Description: description, Output: created.Diagnostic(), Err: ErrCommandFailed}
	}

	id, ok := ParseCreatedChange(created.Stdout)
	if !ok {
		return "", &ChangelistCreationError{Description: description, Output: created.Diagnostic(), Err: ErrMalformedOutput}
	}
	return id, nil
}

// ReopenFiles runs reopen -c.
func (g *P4Gateway) ReopenFiles(ctx context.Context, targetID string, paths []string) error {
	return g.runBatch(ctx, "reopen files into change "+targetID, []string{"reopen", "-c", targetID}, paths)
}

// Revert runs revert -c id //...
func (g *P4Gateway) Revert(ctx context.Context, id string) error {
	res, err := g.run(ctx, nil, false, "revert", "-c", id, "//...")
	if err != nil {
		return fmt.Errorf("failed to revert change %s: %w", id, err)
	}
	if res.Failed() {
		return fmt.Errorf("failed to revert change %s: %w: %s", id, ErrCommandFailed, res.Diagnostic())
	}
	return nil
}

// DeleteChangelist runs change -d.
func (g *P4Gateway) DeleteChangelist(ctx context.Context, id string) error {
	res, err := g.run(ctx, nil, false, "change", "-d", id)
	if err != nil {
		return fmt.Errorf("failed to delete change %s: %w", id, err)
	}
	if res.Failed() {
		return fmt.Errorf("failed to delete change %s: %w: %s", id, ErrCommandFailed, res.Diagnostic())
	}
	return nil
}

// MarkForDelete runs delete over paths.
func (g *P4Gateway) MarkForDelete(ctx context.Context, paths []string) error {
	return g.runBatch(ctx, "mark files for delete", []string{"delete"}, paths)
}

// Submit runs submit -c. Only a failure to run p4 is an error.
func (g *P4Gateway) Submit(ctx context.Context, id string) (*SubmitResult, error) {
	res, err := g.run(ctx, nil, false, "submit", "-c", id)
	if err != nil {
		return nil, fmt.Errorf("failed to submit change %s: %w", id, err)
	}
	out := res.Stdout
	if res.Stderr != "" {
		out += res.Stderr
	}
	return &SubmitResult{Accepted: !res.Failed(), Output: out}, nil
}

// Edit runs edit over paths.
func (g *P4Gateway) Edit(ctx context.Context, paths []string) error {
	return g.runBatch(ctx, "open files for edit", []string{"edit"}, paths)
}

var (
	_ Gateway = (*P4Gateway)(nil)
	_ Gateway = (*FakeGateway)(nil)
)
