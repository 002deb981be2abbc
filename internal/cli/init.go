package cli

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/p4gate/internal/config"
	"github.com/danieljhkim/p4gate/internal/fsops"
)

var initForce bool

// sampleRules seeds a new rule table.
var sampleRules = map[string]string{
	".mat":    "Mat_",
	".fbx":    "SM_",
	".png":    "T_",
	".prefab": "PF_",
	".anim":   "Anim_",
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config and sample naming rules",
	Long: `Write config.yaml and prefix_rules.json under $P4GATE_ROOT (default
~/.p4gate). The config goes to --config instead when that flag is set.
Existing files are kept unless --force is given.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false,
		"Overwrite existing files")
}

func runInit(cmd *cobra.Command, args []string) error {
	paths, err := config.DefaultPaths()
	if err != nil {
		return fmt.Errorf("failed to get config paths: %w", err)
	}
	return initAt(cmd, fsops.NewRealFS(), paths)
}

func initAt(cmd *cobra.Command, fs fsops.FS, paths *config.Paths) error {
	if err := fs.MkdirAll(paths.Root, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", paths.Root, err)
	}

	cfgPath := paths.Config
	if configFile != "" {
		cfgPath = configFile
		dir := filepath.Dir(cfgPath)
		if err := fs.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	cfgData, err := config.Default().Marshal()
	if err != nil {
		return fmt.Errorf("failed to render config: %w", err)
	}
	rulesData, err := json.MarshalIndent(sampleRules, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to render rules: %w", err)
	}

	out := cmd.OutOrStdout()
	files := []struct {
		path string
		data []byte
	}{
		{cfgPath, cfgData},
		{paths.Rules, append(rulesData, '\n')},
	}
	for _, f := range files {
		exists, err := fs.Exists(f.path)
		if err != nil {
			return fmt.Errorf("failed to check %s: %w", f.path, err)
		}
		if exists && !initForce {
			PrintWarning(out, fmt.Sprintf("%s already exists (use --force to overwrite)", f.path))
			continue
		}
		if err := fs.AtomicWrite(f.path, f.data, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", f.path, err)
		}
		PrintSuccess(out, fmt.Sprintf("Wrote %s", f.path))
	}

	PrintInfo(out, "")
	PrintInfo(out, "Next steps:")
	PrintInfo(out, "  1. Set p4.port, p4.user and p4.client in config.yaml (or rely on P4CONFIG)")
	PrintInfo(out, "  2. Add a P4V custom tool running: p4gate validate %C")
	return nil
}
