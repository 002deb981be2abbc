package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/p4gate/internal/naming"
	"github.com/danieljhkim/p4gate/internal/report"
)

// errViolations is returned when a change breaks the naming rules.
var errViolations = errors.New("naming rules violated")

var (
	checkRules string
	checkJSON  bool
)

var checkCmd = &cobra.Command{
	Use:   "check <change>",
	Short: "Check file names in a changelist against the naming rules",
	Long: `Check every file in a changelist against the prefix and version rules.

Each rule maps an extension to a required prefix; files must also end with
a version marker such as _v01. Deleted files and paths containing EXTN_ or
_EXTN are exempt. The exit status is non-zero when a file breaks a rule, so
the command can run as a change-submit trigger:

  naming change-submit //depot/... "p4gate check %change%"`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringVar(&checkRules, "rules", "",
		"Rule table (JSON or YAML; default: rules_file from config)")
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "Output violations in JSON format")
}

func runCheck(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	path := checkRules
	if path == "" {
		path = a.cfg.RulesPath(a.paths)
	}
	rules, err := naming.LoadRules(a.fs, path)
	if err != nil {
		return err
	}

	res, err := a.engine.CheckNames(context.Background(), args[0], rules)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if checkJSON {
		if err := outputJSON(out, res.Violations); err != nil {
			return err
		}
	} else {
		report.WriteViolations(out, res.Violations)
	}

	if !res.Passed() {
		return &errReported{err: fmt.Errorf("%w: %s in change %s",
			errViolations, PrintCount(len(res.Violations), "file", "files"), res.Change)}
	}
	if !checkJSON {
		PrintSuccess(out, "All file names follow the rules. 文件命名检查通过。")
	}
	return nil
}
