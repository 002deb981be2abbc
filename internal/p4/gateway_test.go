package p4

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func newTestGateway(runner *FakeRunner) *P4Gateway {
	return NewP4Gateway(runner, Options{}, nil)
}

func hasFlag(args []string, flag, value string) bool {
	for i := 0; i+1 < len(args); i++ {
		if args[i] == flag && args[i+1] == value {
			return true
		}
	}
	return false
}

func TestP4Gateway_GlobalOptions(t *testing.T) {
	runner := NewFakeRunner()
	gw := NewP4Gateway(runner, Options{
		Port:             "ssl:perforce:1666",
		User:             "builder",
		Client:           "builder-ws",
		Charset:          "utf8",
		AlternateCharset: "shiftjis",
	}, nil)

	_ = gw.Edit(context.Background(), []string{"//depot/ロック.png"})

	want := []string{"-p", "ssl:perforce:1666", "-u", "builder", "-c", "builder-ws", "-C", "utf8", "-Q", "shiftjis", "edit", "//depot/ロック.png"}
	if got := runner.Calls[0].Args; !reflect.DeepEqual(got, want) {
		t.Errorf("args = %q, want %q", got, want)
	}
}

func TestP4Gateway_FetchDescription(t *testing.T) {
	runner := NewFakeRunner().On("describe", &Result{Stdout: pendingDescribe})
	gw := newTestGateway(runner)

	desc, err := gw.FetchDescription(context.Background(), "1234")
	if err != nil {
		t.Fatalf("FetchDescription error = %v", err)
	}
	if len(desc.Entries) != 3 {
		t.Errorf("entries = %d, want 3", len(desc.Entries))
	}

	want := []string{"-ztag", "describe", "-s", "1234"}
	if got := runner.Calls[0].Args; !reflect.DeepEqual(got, want) {
		t.Errorf("args = %q, want %q", got, want)
	}
}

func TestP4Gateway_FetchDescription_Errors(t *testing.T) {
	tests := []struct {
		name    string
		runner  *FakeRunner
		wantErr error
	}{
		{
			name:    "non-zero exit",
			runner:  NewFakeRunner().On("describe", &Result{Stderr: "Change 99 unknown.", ExitCode: 1}),
			wantErr: ErrCommandFailed,
		},
		{
			name:    "error on stderr with zero exit",
			runner:  NewFakeRunner().On("describe", &Result{Stderr: "Change 99 unknown.\n"}),
			wantErr: ErrCommandFailed,
		},
		{
			name:    "unparseable output",
			runner:  NewFakeRunner().On("describe", &Result{Stdout: "garbage\n"}),
			wantErr: ErrMalformedOutput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestGateway(tt.runner).FetchDescription(context.Background(), "99")
			var qe *QueryError
			if !errors.As(err, &qe) {
				t.Fatalf("error = %v, want *QueryError", err)
			}
			if qe.Change != "99" {
				t.Errorf("QueryError.Change = %q", qe.Change)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	t.Run("binary missing", func(t *testing.T) {
		runner := NewFakeRunner()
		runner.Errs["describe"] = errors.New("executable file not found")
		_, err := newTestGateway(runner).FetchDescription(context.Background(), "99")
		var qe *QueryError
		if !errors.As(err, &qe) {
			t.Fatalf("error = %v, want *QueryError", err)
		}
	})
}

func TestP4Gateway_ResolveLocalPath_Encoding(t *testing.T) {
	tests := []struct {
		name          string
		depotPath     string
		wantAlternate bool
	}{
		{name: "ascii path", depotPath: "//depot/Game/Rock.mat", wantAlternate: false},
		{name: "chinese path", depotPath: "//depot/Game/场景/Rock.mat", wantAlternate: true},
		{name: "japanese path", depotPath: "//depot/Game/いわ/Rock.mat", wantAlternate: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := NewFakeRunner().On("where", &Result{Stdout: "... depotFile x\n... path D:\\ws\\Rock.mat\n"})
			gw := newTestGateway(runner)

			local, err := gw.ResolveLocalPath(context.Background(), tt.depotPath)
			if err != nil {
				t.Fatalf("ResolveLocalPath error = %v", err)
			}
			if local != `D:\ws\Rock.mat` {
				t.Errorf("local = %q", local)
			}

			args := runner.Calls[0].Args
			if got := hasFlag(args, "-Q", "cp936"); got != tt.wantAlternate {
				t.Errorf("alternate encoding = %v, want %v (args %q)", got, tt.wantAlternate, args)
			}
			if args[len(args)-1] != tt.depotPath {
				t.Errorf("last arg = %q, want depot path", args[len(args)-1])
			}
		})
	}
}

func TestP4Gateway_ResolveLocalPath_Unresolved(t *testing.T) {
	tests := []struct {
		name   string
		runner *FakeRunner
	}{
		{name: "not in client view", runner: NewFakeRunner().On("where", &Result{Stderr: "//depot/x - file(s) not in client view.", ExitCode: 1})},
		{name: "no path tag", runner: NewFakeRunner().On("where", &Result{Stdout: "... depotFile //depot/x\n"})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestGateway(tt.runner).ResolveLocalPath(context.Background(), "//depot/x")
			if !errors.Is(err, ErrPathUnresolved) {
				t.Errorf("error = %v, want ErrPathUnresolved", err)
			}
		})
	}
}

func TestP4Gateway_CreateChangelist(t *testing.T) {
	spec := "Change: new\n\nDescription:\n\t(Auto Generated) Revert Missing Files\n"
	runner := NewFakeRunner().
		On("change", &Result{Stdout: spec}).
		On("change", &Result{Stdout: "Change 4242 created.\n"})
	gw := newTestGateway(runner)

	id, err := gw.CreateChangelist(context.Background(), "(Auto Generated) Revert Missing Files")
	if err != nil {
		t.Fatalf("CreateChangelist error = %v", err)
	}
	if id != "4242" {
		t.Errorf("id = %q, want 4242", id)
	}

	if len(runner.Calls) != 2 {
		t.Fatalf("calls = %d, want 2", len(runner.Calls))
	}
	wantSpec := []string{"--field", "Description=(Auto Generated) Revert Missing Files", "--field", "Files=", "change", "-o"}
	if !reflect.DeepEqual(runner.Calls[0].Args, wantSpec) {
		t.Errorf("spec args = %q, want %q", runner.Calls[0].Args, wantSpec)
	}
	if !reflect.DeepEqual(runner.Calls[1].Args, []string{"change", "-i"}) {
		t.Errorf("create args = %q", runner.Calls[1].Args)
	}
	if runner.Calls[1].Stdin != spec {
		t.Errorf("change -i stdin = %q, want spec from change -o", runner.Calls[1].Stdin)
	}
}

func TestP4Gateway_CreateChangelist_Errors(t *testing.T) {
	tests := []struct {
		name    string
		runner  *FakeRunner
		wantErr error
	}{
		{
			name: "no change number",
			runner: NewFakeRunner().
				On("change", &Result{Stdout: "Change: new\n"}).
				On("change", &Result{Stdout: "something unexpected\n"}),
			wantErr: ErrMalformedOutput,
		},
		{
			name:    "spec fails",
			runner:  NewFakeRunner().On("change", &Result{Stderr: "Perforce password (P4PASSWD) invalid or unset.", ExitCode: 1}),
			wantErr: ErrCommandFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestGateway(tt.runner).CreateChangelist(context.Background(), "desc")
			var ce *ChangelistCreationError
			if !errors.As(err, &ce) {
				t.Fatalf("error = %v, want *ChangelistCreationError", err)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestP4Gateway_BatchEncodingIsPerCall(t *testing.T) {
	runner := NewFakeRunner()
	gw := newTestGateway(runner)
	ctx := context.Background()

	ascii := []string{"//depot/a.mat", "//depot/b.mat"}
	mixed := []string{"//depot/a.mat", "//depot/场景/b.mat"}

	if err := gw.ReopenFiles(ctx, "77", ascii); err != nil {
		t.Fatalf("ReopenFiles error = %v", err)
	}
	if err := gw.ReopenFiles(ctx, "77", mixed); err != nil {
		t.Fatalf("ReopenFiles error = %v", err)
	}
	if err := gw.MarkForDelete(ctx, mixed); err != nil {
		t.Fatalf("MarkForDelete error = %v", err)
	}

	if hasFlag(runner.Calls[0].Args, "-Q", "cp936") {
		t.Errorf("ascii batch should not use alternate encoding: %q", runner.Calls[0].Args)
	}
	wantMixed := []string{"-Q", "cp936", "reopen", "-c", "77", "//depot/a.mat", "//depot/场景/b.mat"}
	if !reflect.DeepEqual(runner.Calls[1].Args, wantMixed) {
		t.Errorf("mixed reopen args = %q, want %q", runner.Calls[1].Args, wantMixed)
	}
	wantDelete := []string{"-Q", "cp936", "delete", "//depot/a.mat", "//depot/场景/b.mat"}
	if !reflect.DeepEqual(runner.Calls[2].Args, wantDelete) {
		t.Errorf("delete args = %q, want %q", runner.Calls[2].Args, wantDelete)
	}
}

func TestP4Gateway_EmptyBatchesAreNoOps(t *testing.T) {
	runner := NewFakeRunner()
	gw := newTestGateway(runner)
	ctx := context.Background()

	if err := gw.ReopenFiles(ctx, "77", nil); err != nil {
		t.Errorf("ReopenFiles error = %v", err)
	}
	if err := gw.MarkForDelete(ctx, []string{}); err != nil {
		t.Errorf("MarkForDelete error = %v", err)
	}
	if err := gw.Edit(ctx, nil); err != nil {
		t.Errorf("Edit error = %v", err)
	}
	if len(runner.Calls) != 0 {
		t.Errorf("expected no p4 calls, got %d", len(runner.Calls))
	}
}

func TestP4Gateway_ChangelistPrimitives(t *testing.T) {
	runner := NewFakeRunner()
	gw := newTestGateway(runner)
	ctx := context.Background()

	if err := gw.Revert(ctx, "88"); err != nil {
		t.Fatalf("Revert error = %v", err)
	}
	if err := gw.DeleteChangelist(ctx, "88"); err != nil {
		t.Fatalf("DeleteChangelist error = %v", err)
	}

	if want := []string{"revert", "-c", "88", "//..."}; !reflect.DeepEqual(runner.Calls[0].Args, want) {
		t.Errorf("revert args = %q, want %q", runner.Calls[0].Args, want)
	}
	if want := []string{"change", "-d", "88"}; !reflect.DeepEqual(runner.Calls[1].Args, want) {
		t.Errorf("delete args = %q, want %q", runner.Calls[1].Args, want)
	}

	failing := NewFakeRunner().On("revert", &Result{Stderr: "boom", ExitCode: 1})
	if err := newTestGateway(failing).Revert(ctx, "88"); !errors.Is(err, ErrCommandFailed) {
		t.Errorf("Revert error = %v, want ErrCommandFailed", err)
	}
}

func TestP4Gateway_Submit(t *testing.T) {
	ctx := context.Background()

	accepted := NewFakeRunner().On("submit", &Result{Stdout: "Change 12 submitted.\n"})
	res, err := newTestGateway(accepted).Submit(ctx, "12")
	if err != nil {
		t.Fatalf("Submit error = %v", err)
	}
	if !res.Accepted {
		t.Error("expected accepted submit")
	}

	rejected := NewFakeRunner().On("submit", &Result{Stderr: "'name-check' validation failed", ExitCode: 1})
	res, err = newTestGateway(rejected).Submit(ctx, "12")
	if err != nil {
		t.Fatalf("rejection must not be an error, got %v", err)
	}
	if res.Accepted {
		t.Error("expected rejected submit")
	}
	if res.Output == "" {
		t.Error("expected rejection output to be kept")
	}

	broken := NewFakeRunner()
	broken.Errs["submit"] = errors.New("p4: not found")
	if _, err := newTestGateway(broken).Submit(ctx, "12"); err == nil {
		t.Error("expected error when p4 cannot run")
	}
}
