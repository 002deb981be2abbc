package report

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/danieljhkim/p4gate/internal/changelist"
	"github.com/danieljhkim/p4gate/internal/checkout"
	"github.com/danieljhkim/p4gate/internal/engine"
	"github.com/danieljhkim/p4gate/internal/naming"
	"github.com/danieljhkim/p4gate/internal/planner"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func TestWriteValidation(t *testing.T) {
	tests := []struct {
		name    string
		res     *engine.ValidateResult
		want    []string
		notWant []string
	}{
		{
			name: "submitted",
			res:  &engine.ValidateResult{Change: "100", Outcome: engine.OutcomeSubmitted},
			want: []string{"RESULT", "Successfully submitted changelist 100.", "成功提交"},
		},
		{
			name: "rejected",
			res:  &engine.ValidateResult{Change: "100", Outcome: engine.OutcomeRejected, SubmitOutput: "Submit validation failed"},
			want: []string{"rejected", "Submit validation failed", "Please fix the problems and try again.", "请修复问题后再提交"},
		},
		{
			name: "remediated",
			res: &engine.ValidateResult{
				Change:  "100",
				Outcome: engine.OutcomeRemediated,
				Removed: []string{"//depot/a.mat", "//depot/b.mat"},
			},
			want:    []string{"已自动从 Changelist 中移除", "  //depot/a.mat\n", "  //depot/b.mat\n", "请检查并重新提交"},
			notWant: []string{"Deleted moved away files"},
		},
		{
			name: "remediated with delete",
			res: &engine.ValidateResult{
				Change:  "100",
				Outcome: engine.OutcomeRemediated,
				Removed: []string{"//depot/b.mat"},
				Delete:  &changelist.DeleteOutcome{ChangeID: "9002", Submitted: true},
			},
			want: []string{"Deleted moved away files that can't be tracked (changelist 9002)."},
		},
		{
			name: "remediated with pending delete",
			res: &engine.ValidateResult{
				Change:  "100",
				Outcome: engine.OutcomeRemediated,
				Removed: []string{"//depot/b.mat"},
				Delete:  &changelist.DeleteOutcome{ChangeID: "9002", Err: errors.New("rejected")},
			},
			want: []string{"Changelist 9002 with the files to delete could not be submitted", "提交失败", "rejected"},
		},
		{
			name: "remediated with abandoned delete",
			res: &engine.ValidateResult{
				Change:  "100",
				Outcome: engine.OutcomeRemediated,
				Plan:    &planner.RemediationPlan{ToRevertAndDelete: []string{"//depot/moved.mat"}},
				Removed: []string{"//depot/gone.mat", "//depot/moved.mat"},
				Delete:  &changelist.DeleteOutcome{ChangeID: "9002", Abandoned: true, Err: errors.New("delete refused")},
			},
			want:    []string{"  //depot/gone.mat\n", "please delete them manually", "请手动删除", "delete refused", "请检查并重新提交"},
			notWant: []string{"please submit it manually"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			WriteValidation(&buf, tt.res)
			out := buf.String()
			for _, s := range tt.want {
				if !strings.Contains(out, s) {
					t.Errorf("output missing %q:\n%s", s, out)
				}
			}
			for _, s := range tt.notWant {
				if strings.Contains(out, s) {
					t.Errorf("output unexpectedly contains %q:\n%s", s, out)
				}
			}
		})
	}
}

func TestWriteInterrupted(t *testing.T) {
	var buf bytes.Buffer
	WriteInterrupted(&buf, &engine.ValidateResult{Change: "100", Removed: []string{"//depot/a.mat", "//depot/b.mat"}})
	out := buf.String()
	for _, s := range []string{"interrupted", "  //depot/a.mat\n", "  //depot/b.mat\n", "提交前请在 P4V 中检查 Changelist"} {
		if !strings.Contains(out, s) {
			t.Errorf("output missing %q:\n%s", s, out)
		}
	}
}

func TestWriteGuidance(t *testing.T) {
	var buf bytes.Buffer
	WriteGuidance(&buf)
	if !strings.Contains(buf.String(), "请保存 Default Changelist 后再试") {
		t.Errorf("unexpected guidance:\n%s", buf.String())
	}
}

func TestWriteViolations(t *testing.T) {
	var buf bytes.Buffer
	WriteViolations(&buf, []naming.Violation{
		{FileName: "Rock_v01.mat", Prefix: "Mat_", Kind: naming.KindPrefix, Suggested: "Mat_Rock_v01.mat"},
		{FileName: "Mat_Rock.mat", Prefix: "Mat_", Kind: naming.KindSuffix, Suggested: "Mat_Rock_v01.mat"},
		{FileName: "Rock.mat", Prefix: "Mat_", Kind: naming.KindBoth, Suggested: "Mat_Rock_v01.mat"},
	})
	out := buf.String()

	for _, s := range []string{
		"Rock_v01.mat  → Missing prefix: 'Mat_'",
		"Mat_Rock.mat  → Missing version suffix",
		"Rock.mat  → Missing both prefix 'Mat_'",
		"缺少前缀",
		"EXTN_",
	} {
		if !strings.Contains(out, s) {
			t.Errorf("output missing %q:\n%s", s, out)
		}
	}

	buf.Reset()
	WriteViolations(&buf, nil)
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

func TestWriteCheckout(t *testing.T) {
	var buf bytes.Buffer
	WriteCheckout(&buf, &checkout.Result{Opened: []string{"a.mat", "a.mat.meta"}, Skipped: []string{"gone.mat"}})
	out := buf.String()
	if !strings.Contains(out, "✓ a.mat.meta") || !strings.Contains(out, "gone.mat") {
		t.Errorf("unexpected output:\n%s", out)
	}
}
