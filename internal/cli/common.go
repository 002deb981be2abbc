package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/p4gate/internal/clock"
	"github.com/danieljhkim/p4gate/internal/config"
	"github.com/danieljhkim/p4gate/internal/engine"
	"github.com/danieljhkim/p4gate/internal/fsops"
	"github.com/danieljhkim/p4gate/internal/journal"
	"github.com/danieljhkim/p4gate/internal/logging"
	"github.com/danieljhkim/p4gate/internal/p4"
	"github.com/danieljhkim/p4gate/internal/pathclass"
)

// app bundles everything a command needs.
type app struct {
	paths   *config.Paths
	cfg     *config.Config
	fs      fsops.FS
	log     logging.Logger
	engine  *engine.Engine
	journal *journal.SQLiteJournal // nil when disabled or unavailable
}

// Close releases the journal.
func (a *app) Close() error {
	if a.journal == nil {
		return nil
	}
	return a.journal.Close()
}

// newApp is replaced in tests.
var newApp = newRealApp

// loadSettings resolves paths and reads the config file.
func loadSettings(fs fsops.FS) (*config.Paths, *config.Config, error) {
	paths, err := config.DefaultPaths()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get config paths: %w", err)
	}
	path := configFile
	if path == "" {
		path = paths.Config
	}
	cfg, err := config.Load(fs, path)
	if err != nil {
		return nil, nil, err
	}
	return paths, cfg, nil
}

// newRealApp creates an app with real implementations of all dependencies.
func newRealApp(cmd *cobra.Command) (*app, error) {
	fs := fsops.NewRealFS()
	log := logging.ForCLI(verbose)

	paths, cfg, err := loadSettings(fs)
	if err != nil {
		return nil, err
	}

	runner := p4.NewExecRunner(cfg.P4.Bin, cfg.Environ())
	gw := p4.NewP4Gateway(runner, p4.Options{
		Port:             cfg.P4.Port,
		User:             cfg.P4.User,
		Client:           cfg.P4.Client,
		Charset:          cfg.P4.Charset,
		AlternateCharset: cfg.P4.AlternateCharset,
	}, log)

	a := &app{paths: paths, cfg: cfg, fs: fs, log: log}

	// the journal is an audit aid; p4gate still works without it
	var rec journal.Recorder
	if cfg.Journal.Enabled {
		j, err := journal.Open(cfg.JournalPath(paths), &clock.RealClock{})
		if err != nil {
			log.Warn("journal unavailable", "error", err)
		} else {
			a.journal = j
			rec = j
		}
	}

	a.engine = engine.New(gw, pathclass.NewClassifier(fs), rec, log)
	return a, nil
}

// outputJSON outputs a value as JSON to w.
func outputJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
