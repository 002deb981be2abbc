// Package report renders user-facing results in English and Chinese.
//
// The output is read by artists in the P4V custom tool log window, so every
// instruction is given in both languages.
package report

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/danieljhkim/p4gate/internal/checkout"
	"github.com/danieljhkim/p4gate/internal/engine"
	"github.com/danieljhkim/p4gate/internal/naming"
)

var (
	bannerColor  = color.New(color.FgBlue, color.Bold)
	successColor = color.New(color.FgGreen, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	pathColor    = color.New(color.FgCyan)
	dimColor     = color.New(color.FgHiBlack)
)

const banner = "==================== RESULT ===================="

func writeBanner(w io.Writer) {
	_, _ = fmt.Fprintln(w)
	_, _ = bannerColor.Fprintln(w, banner)
}

// WriteGuidance explains how to move files out of the default changelist.
func WriteGuidance(w io.Writer) {
	writeBanner(w)
	_, _ = warningColor.Fprintln(w, "Please save the default changelist, and try again. 请保存 Default Changelist 后再试。")
	_, _ = fmt.Fprintln(w, "Right-click the Default changelist in P4V and select 'Submit', fill in a description and SAVE")
	_, _ = fmt.Fprintln(w, "右键点击 P4V 中的 Default Changelist，选择 'Submit'，填写描述并保存")
}

// WriteValidation renders the result of one validation run.
func WriteValidation(w io.Writer, res *engine.ValidateResult) {
	writeBanner(w)
	switch res.Outcome {
	case engine.OutcomeSubmitted:
		_, _ = successColor.Fprintf(w, "Successfully submitted changelist %s.\n", res.Change)
		_, _ = fmt.Fprintln(w, "成功提交")

	case engine.OutcomeRejected:
		_, _ = errorColor.Fprintf(w, "Changelist %s was rejected by the server.\n", res.Change)
		if res.SubmitOutput != "" {
			_, _ = dimColor.Fprintln(w, res.SubmitOutput)
		}
		_, _ = fmt.Fprintln(w, "Please fix the problems and try again.")
		_, _ = fmt.Fprintln(w, "请修复问题后再提交")

	case engine.OutcomeRemediated:
		_, _ = warningColor.Fprintln(w, "There were files missing, the issue has been automatically dealt with. 有以下文件在本地不存在，已自动从 Changelist 中移除：")
		for _, p := range res.Removed {
			_, _ = pathColor.Fprintf(w, "  %s\n", p)
		}
		if res.Delete != nil {
			writeDeleteOutcome(w, res)
		}
		_, _ = fmt.Fprintln(w, "Please check the changelist and submit again. Changelist 已更新，请检查并重新提交。")
	}
}

func writeDeleteOutcome(w io.Writer, res *engine.ValidateResult) {
	d := res.Delete
	if d.Abandoned {
		_, _ = errorColor.Fprintln(w, "The moved away files could not be opened for delete; please delete them manually:")
		_, _ = fmt.Fprintln(w, "无法将以下移动文件标记为删除，请手动删除：")
		if res.Plan != nil {
			for _, p := range res.Plan.ToRevertAndDelete {
				_, _ = pathColor.Fprintf(w, "  %s\n", p)
			}
		}
		if d.Err != nil {
			_, _ = dimColor.Fprintln(w, d.Err.Error())
		}
		return
	}
	if d.Submitted {
		_, _ = fmt.Fprintf(w, "Deleted moved away files that can't be tracked (changelist %s).\n", d.ChangeID)
		_, _ = fmt.Fprintln(w, "已删除无法追踪的移动文件。")
		return
	}
	_, _ = errorColor.Fprintf(w, "Changelist %s with the files to delete could not be submitted; please submit it manually.\n", d.ChangeID)
	_, _ = fmt.Fprintf(w, "待删除文件的 Changelist %s 提交失败，请手动提交。\n", d.ChangeID)
	if d.Err != nil {
		_, _ = dimColor.Fprintln(w, d.Err.Error())
	}
}

// WriteInterrupted lists the files a failed remediation may already have
// taken out of the change.
func WriteInterrupted(w io.Writer, res *engine.ValidateResult) {
	writeBanner(w)
	_, _ = errorColor.Fprintln(w, "Removing missing files was interrupted. These files may already be out of the changelist: 移除缺失文件时中断，以下文件可能已从 Changelist 中移除：")
	for _, p := range res.Removed {
		_, _ = pathColor.Fprintf(w, "  %s\n", p)
	}
	_, _ = fmt.Fprintln(w, "Please check the changelist in P4V before submitting. 提交前请在 P4V 中检查 Changelist。")
}

// WriteViolations renders naming violations with a rename suggestion each.
// Nothing is written when there are none.
func WriteViolations(w io.Writer, violations []naming.Violation) {
	if len(violations) == 0 {
		return
	}

	_, _ = errorColor.Fprintln(w, "Please rename the following files：")
	_, _ = fmt.Fprintln(w)
	for _, v := range violations {
		switch v.Kind {
		case naming.KindPrefix:
			_, _ = fmt.Fprintf(w, "  - %s  → Missing prefix: '%s'  |  Suggested: %s\n", v.FileName, v.Prefix, v.Suggested)
			_, _ = fmt.Fprintf(w, "  - %s  → 缺少前缀: '%s'  |  请改为: %s\n", v.FileName, v.Prefix, v.Suggested)
		case naming.KindSuffix:
			_, _ = fmt.Fprintf(w, "  - %s  → Missing version suffix like '_v01'  |  Suggested: %s\n", v.FileName, v.Suggested)
			_, _ = fmt.Fprintf(w, "  - %s  → 缺少版本后缀，如 '_v01'  |  推荐改为: %s\n", v.FileName, v.Suggested)
		case naming.KindBoth:
			_, _ = fmt.Fprintf(w, "  - %s  → Missing both prefix '%s' and version suffix like '_v01'  |  Suggested: %s\n", v.FileName, v.Prefix, v.Suggested)
			_, _ = fmt.Fprintf(w, "  - %s  → 同时缺少前缀： '%s'，以及版本后缀，如 '_v01'  |  推荐改为: %s\n", v.FileName, v.Prefix, v.Suggested)
		}
	}

	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "Please rename the files before submitting again.")
	_, _ = fmt.Fprintf(w, "If you have external imported resources, please add the %s prefix in the root folder of the resources.\n", naming.ExemptPrefixMarker)
	_, _ = fmt.Fprintln(w, "请务必在 P4V软件内 重命名文件后再提交")
	_, _ = fmt.Fprintf(w, "若有外部导入资源，请在资源的根文件夹中添加 %s 前缀\n", naming.ExemptPrefixMarker)
}

// WriteCheckout lists the files opened for edit and those skipped.
func WriteCheckout(w io.Writer, res *checkout.Result) {
	for _, p := range res.Opened {
		_, _ = successColor.Fprintf(w, "✓ %s\n", p)
	}
	for _, p := range res.Skipped {
		_, _ = dimColor.Fprintf(w, "  skipped, not found locally 本地不存在: %s\n", p)
	}
}
