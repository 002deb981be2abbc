package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/p4gate/internal/report"
)

var checkoutCmd = &cobra.Command{
	Use:   "checkout <path>...",
	Short: "Open files for edit together with their .meta files",
	Long: `Open local files for edit. When a companion file named <path>.meta
exists it is opened too. Paths that do not exist locally are skipped.

Use it as a P4V custom tool with the argument %F (selected files).`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = a.Close() }()

		res, err := a.engine.Checkout(context.Background(), args)
		if res != nil {
			report.WriteCheckout(cmd.OutOrStdout(), res)
		}
		return err
	},
}
