package p4

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Result is the raw outcome of one p4 invocation.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Failed reports whether p4 exited with a non-zero status.
func (r *Result) Failed() bool {
	return r.ExitCode != 0
}

// Diagnostic returns the most useful message p4 produced.
func (r *Result) Diagnostic() string {
	if msg := strings.TrimSpace(r.Stderr); msg != "" {
		return msg
	}
	return strings.TrimSpace(r.Stdout)
}

// Runner executes the p4 client.
type Runner interface {
	// Run executes p4 with args, feeding stdin when non-nil. A non-zero exit
	// is reported through Result; the error is reserved for failures to run.
	Run(ctx context.Context, stdin []byte, args ...string) (*Result, error)
}

// ExecRunner runs the configured p4 binary.
type ExecRunner struct {
	Bin string
	Env []string
}

// NewExecRunner creates an ExecRunner. env entries are KEY=VALUE pairs added
// on top of the inherited environment.
func NewExecRunner(bin string, env []string) *ExecRunner {
	if strings.TrimSpace(bin) == "" {
		bin = "p4"
	}
	return &ExecRunner{Bin: bin, Env: env}
}

// Run executes p4 and captures its output.
func (e *ExecRunner) Run(ctx context.Context, stdin []byte, args ...string) (*Result, error) {
	cmd := exec.CommandContext(ctx, e.Bin, args...)
	cmd.Env = append(os.Environ(), e.Env...)
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := &Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}
		return nil, fmt.Errorf("failed to run %s %s: %w", e.Bin, Subcommand(args), err)
	}
	return res, nil
}

// globals that consume the following argument
var valueFlags = map[string]bool{
	"-p": true, "-u": true, "-c": true, "-C": true, "-Q": true,
	"-P": true, "-H": true, "-d": true, "-x": true, "--field": true,
}

// Subcommand returns the p4 command name in args, skipping global options.
// Used for log lines so that paths and credentials never reach the log.
func Subcommand(args []string) string {
	for i := 0; i < len(args); i++ {
		a := args[i]
		if valueFlags[a] {
			i++
			continue
		}
		if strings.HasPrefix(a, "-") {
			continue
		}
		return a
	}
	return "<none>"
}

// RunCall records one invocation seen by FakeRunner.
type RunCall struct {
	Args  []string
	Stdin string
}

// FakeRunner is a scripted Runner for tests.
//
// Responses are keyed by subcommand and consumed in order; the last response
// for a subcommand repeats once the queue is drained. Unscripted subcommands
// succeed with empty output.
type FakeRunner struct {
	Calls     []RunCall
	Responses map[string][]*Result

	// Errs makes a subcommand fail to run at all.
	Errs map[string]error
}

// NewFakeRunner creates an empty FakeRunner.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{
		Responses: make(map[string][]*Result),
		Errs:      make(map[string]error),
	}
}

// On queues a response for subcommand.
func (f *FakeRunner) On(subcommand string, res *Result) *FakeRunner {
	f.Responses[subcommand] = append(f.Responses[subcommand], res)
	return f
}

// Run records the call and returns the scripted response.
func (f *FakeRunner) Run(ctx context.Context, stdin []byte, args ...string) (*Result, error) {
	f.Calls = append(f.Calls, RunCall{Args: append([]string(nil), args...), Stdin: string(stdin)})

	sub := Subcommand(args)
	if err := f.Errs[sub]; err != nil {
		return nil, err
	}

	queue := f.Responses[sub]
	if len(queue) == 0 {
		return &Result{}, nil
	}
	res := queue[0]
	if len(queue) > 1 {
		f.Responses[sub] = queue[1:]
	}
	copied := *res
	return &copied, nil
}

// CallsFor returns the recorded calls for subcommand.
func (f *FakeRunner) CallsFor(subcommand string) []RunCall {
	var calls []RunCall
	for _, c := range f.Calls {
		if Subcommand(c.Args) == subcommand {
			calls = append(calls, c)
		}
	}
	return calls
}
