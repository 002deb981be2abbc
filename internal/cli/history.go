package cli

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/p4gate/internal/journal"
)

// errNoJournal is returned when history is asked for but journaling is off.
var errNoJournal = errors.New("journal is disabled or unavailable")

var (
	historyLimit int
	historyOpen  bool
	historyJSON  bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent validation runs",
	Long: `Show recent validation runs and the temporary changelists they created.

With --open, list only temporary changelists that may still exist on the
server, for example after a run was interrupted.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of runs to show")
	historyCmd.Flags().BoolVar(&historyOpen, "open", false, "List temporary changelists still open")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "Output in JSON format")
}

func runHistory(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	if a.journal == nil {
		return errNoJournal
	}

	ctx := context.Background()
	out := cmd.OutOrStdout()

	if historyOpen {
		cls, err := a.journal.OpenChangelists(ctx)
		if err != nil {
			return err
		}
		if historyJSON {
			return outputJSON(out, cls)
		}
		if len(cls) == 0 {
			PrintEmptyState(out, "No open temporary changelists")
			return nil
		}
		rows := make([][]string, 0, len(cls))
		for _, cl := range cls {
			rows = append(rows, []string{cl.ChangeID, cl.Purpose, cl.State, cl.RunID, formatTime(cl.UpdatedAt)})
		}
		PrintTable(out, []string{"CHANGE", "PURPOSE", "STATE", "RUN", "UPDATED"}, rows)
		return nil
	}

	runs, err := a.journal.RecentRuns(ctx, historyLimit)
	if err != nil {
		return err
	}
	if historyJSON {
		return outputJSON(out, runs)
	}
	if len(runs) == 0 {
		PrintEmptyState(out, "No validation runs recorded")
		return nil
	}

	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, []string{r.Change, r.Outcome, formatTime(r.StartedAt), changelistSummary(r.Changelists)})
	}
	PrintTable(out, []string{"CHANGE", "OUTCOME", "STARTED", "TEMPORARY CHANGELISTS"}, rows)
	return nil
}

func changelistSummary(cls []journal.Changelist) string {
	if len(cls) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(cls))
	for _, cl := range cls {
		parts = append(parts, cl.ChangeID+" ("+cl.Purpose+", "+cl.State+")")
	}
	return strings.Join(parts, ", ")
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}
