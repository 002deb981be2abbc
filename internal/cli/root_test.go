package cli

import (
	"errors"
	"strings"
	"testing"
)

func TestRootCommand_Help(t *testing.T) {
	out, _, err := execute(t, "--help")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	for _, s := range []string{"p4gate", "Submission:", "validate", "checkout"} {
		if !strings.Contains(out, s) {
			t.Errorf("expected help to contain %q", s)
		}
	}
}

func TestRootCommand_Version(t *testing.T) {
	SetVersion("1.2.3")
	out, _, err := execute(t, "--version")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(out, "1.2.3") {
		t.Errorf("expected version output to contain version, got %q", out)
	}

	out, _, err = execute(t, "version")
	if err != nil {
		t.Fatalf("version error = %v", err)
	}
	if strings.TrimSpace(out) != "1.2.3" {
		t.Errorf("version = %q", out)
	}
}

func TestRootCommand_InvalidCommand(t *testing.T) {
	if _, _, err := execute(t, "invalid-command"); err == nil {
		t.Error("expected error for invalid command")
	}
}

func TestSetVersion(t *testing.T) {
	tests := []struct {
		name    string
		version string
		want    string
	}{
		{name: "sets version", version: "2.0.0", want: "2.0.0"},
		{name: "empty keeps previous", version: "", want: "2.0.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			SetVersion(tt.version)
			if rootCmd.Version != tt.want {
				t.Errorf("Version = %q, want %q", rootCmd.Version, tt.want)
			}
		})
	}
}

func TestIsReported(t *testing.T) {
	base := errors.New("boom")
	if IsReported(base) {
		t.Error("plain error reported")
	}
	wrapped := &errReported{err: base}
	if !IsReported(wrapped) || !errors.Is(wrapped, base) {
		t.Error("errReported should be detected and unwrap")
	}
}

func TestCompletionCommand(t *testing.T) {
	out, _, err := execute(t, "completion", "bash")
	if err != nil {
		t.Fatalf("completion: %v", err)
	}
	if !strings.Contains(out, "p4gate") {
		t.Error("expected completion script")
	}
}
