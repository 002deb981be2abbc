package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/p4gate/internal/engine"
	"github.com/danieljhkim/p4gate/internal/report"
)

var validateCopy bool

var validateCmd = &cobra.Command{
	Use:   "validate <change>...",
	Short: "Validate and submit pending changelists",
	Long: `Validate each pending changelist and submit it if it is consistent.

Files opened for add or move/add whose local copy no longer exists are
reverted out of the changelist instead; the changelist is then left for
you to check and submit again. Missing move/add files are also opened for
delete and submitted in a separate changelist.

Use it as a P4V custom tool with the argument %C (selected changelists).`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().BoolVar(&validateCopy, "copy", false,
		"Copy the removed depot paths to the clipboard")
}

func runValidate(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	out := cmd.OutOrStdout()
	items, err := a.engine.ValidateAll(context.Background(), args)

	var removed []string
	for _, item := range items {
		var ge *engine.GuidanceError
		switch {
		case errors.As(item.Err, &ge):
			report.WriteGuidance(out)
		case item.Err != nil:
			if res := item.Result; res != nil && len(res.Removed) > 0 {
				if res.Outcome == engine.OutcomeRemediated {
					report.WriteValidation(out, res)
				} else {
					report.WriteInterrupted(out, res)
				}
				removed = append(removed, res.Removed...)
			}
			PrintError(cmd.ErrOrStderr(), fmt.Sprintf("change %s: %v", item.Change, item.Err))
		default:
			report.WriteValidation(out, item.Result)
			removed = append(removed, item.Result.Removed...)
		}
	}

	if validateCopy && len(removed) > 0 {
		if cerr := clip.WriteAll(strings.Join(removed, "\n")); cerr != nil {
			PrintWarning(cmd.ErrOrStderr(), fmt.Sprintf("failed to copy to clipboard: %v", cerr))
		} else {
			PrintInfo(out, fmt.Sprintf("Copied %s to the clipboard.", PrintCount(len(removed), "path", "paths")))
		}
	}

	if err != nil {
		return &errReported{err: err}
	}
	return nil
}
