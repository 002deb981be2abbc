// Package config manages p4gate configuration and filesystem paths.
//
// The default root is ~/.p4gate/, holding config.yaml, the journal database
// and the naming rule table. The root can be moved with P4GATE_ROOT.
package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// RootEnv overrides the data root.
const RootEnv = "P4GATE_ROOT"

// Paths contains all the filesystem paths used by p4gate.
type Paths struct {
	// Root is the base directory for all p4gate data (default: ~/.p4gate)
	Root string

	// Config is the path to the config file
	Config string

	// Journal is the default journal database
	Journal string

	// Rules is the default naming rule table
	Rules string
}

// DefaultPaths returns the default paths for p4gate.
// Paths can be overridden with environment variables:
// - P4GATE_ROOT: Override the root directory
func DefaultPaths() (*Paths, error) {
	root := os.Getenv(RootEnv)
	if root == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		root = filepath.Join(home, ".p4gate")
	}
	return PathsAt(root), nil
}

// PathsAt returns the layout under root.
func PathsAt(root string) *Paths {
	return &Paths{
		Root:    root,
		Config:  filepath.Join(root, "config.yaml"),
		Journal: filepath.Join(root, "journal.db"),
		Rules:   filepath.Join(root, "prefix_rules.json"),
	}
}

// EnsureDirectories creates the root directory if it doesn't exist.
func (p *Paths) EnsureDirectories() error {
	if err := os.MkdirAll(p.Root, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", p.Root, err)
	}
	return nil
}
