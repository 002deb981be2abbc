package integration

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/danieljhkim/p4gate/internal/clock"
	"github.com/danieljhkim/p4gate/internal/engine"
	"github.com/danieljhkim/p4gate/internal/fsops"
	"github.com/danieljhkim/p4gate/internal/journal"
	"github.com/danieljhkim/p4gate/internal/p4"
	"github.com/danieljhkim/p4gate/internal/pathclass"
)

// testEnv wires the engine to the real P4Gateway over a scripted runner.
type testEnv struct {
	runner  *p4.FakeRunner
	fs      *fsops.MemFS
	journal *journal.SQLiteJournal
	engine  *engine.Engine
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	j, err := journal.Open(filepath.Join(t.TempDir(), "journal.db"),
		clock.NewFakeClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)))
	if err != nil {
		t.Fatalf("failed to open journal: %v", err)
	}
	t.Cleanup(func() { _ = j.Close() })

	runner := p4.NewFakeRunner()
	fs := fsops.NewMemFS()
	gw := p4.NewP4Gateway(runner, p4.Options{Port: "perforce:1666", User: "artist", Client: "artist-ws"}, nil)

	return &testEnv{
		runner:  runner,
		fs:      fs,
		journal: j,
		engine:  engine.New(gw, pathclass.NewClassifier(fs), j, nil),
	}
}

type entry struct {
	depot  string
	action p4.FileAction
}

// describeOutput renders tagged describe -s output for change.
func describeOutput(change string, entries ...entry) *p4.Result {
	var b strings.Builder
	fmt.Fprintf(&b, "... change %s\n... user artist\n... client artist-ws\n... status pending\n... desc Asset update\n\n", change)
	for i, e := range entries {
		fmt.Fprintf(&b, "... depotFile%d %s\n... action%d %s\n... type%d binary\n... rev%d 1\n", i, e.depot, i, e.action, i, i)
	}
	return &p4.Result{Stdout: b.String()}
}

// whereOutput renders tagged where output mapping depot to local.
func whereOutput(depot, local string) *p4.Result {
	return &p4.Result{Stdout: fmt.Sprintf("... depotFile %s\n... clientFile //artist-ws/%s\n... path %s\n",
		depot, strings.TrimPrefix(depot, "//depot/"), local)}
}

func changeSpec() *p4.Result {
	return &p4.Result{Stdout: "Change:\tnew\n\nClient:\tartist-ws\n\nUser:\tartist\n\nStatus:\tnew\n\nDescription:\n\t(Auto Generated)\n"}
}

func changeCreated(id string) *p4.Result {
	return &p4.Result{Stdout: "Change " + id + " created."}
}

func changeDeleted(id string) *p4.Result {
	return &p4.Result{Stdout: "Change " + id + " deleted."}
}

// subcommands lists the p4 subcommands run, in order.
func (e *testEnv) subcommands() []string {
	subs := make([]string, 0, len(e.runner.Calls))
	for _, c := range e.runner.Calls {
		subs = append(subs, p4.Subcommand(c.Args))
	}
	return subs
}

func hasArgs(args []string, want ...string) bool {
	joined := " " + strings.Join(args, " ") + " "
	return strings.Contains(joined, " "+strings.Join(want, " ")+" ")
}
