// Package pathclass classifies depot and local paths.
//
// Perforce hosts running a non-Unicode codepage corrupt paths containing
// Japanese or Chinese characters unless the command is told to encode its
// arguments differently (p4 -Q). NeedsAlternateEncoding decides when that is
// required; Classifier answers whether a resolved local path is present.
package pathclass

import (
	"github.com/danieljhkim/p4gate/internal/fsops"
)

// NeedsAlternateEncoding reports whether path contains a codepoint in the
// Hiragana/Katakana (U+3040–U+30FF), Katakana phonetic extension
// (U+31F0–U+31FF) or CJK Unified Ideographs (U+4E00–U+9FFF) ranges.
func NeedsAlternateEncoding(path string) bool {
	for _, r := range path {
		switch {
		case r >= 0x3040 && r <= 0x30FF:
			return true
		case r >= 0x31F0 && r <= 0x31FF:
			return true
		case r >= 0x4E00 && r <= 0x9FFF:
			return true
		}
	}
	return false
}

// AnyNeedsAlternateEncoding reports whether any path in the batch needs the
// alternate encoding. The flag applies to a whole command invocation.
func AnyNeedsAlternateEncoding(paths []string) bool {
	for _, p := range paths {
		if NeedsAlternateEncoding(p) {
			return true
		}
	}
	return false
}

// Classifier checks local presence of paths already resolved by the gateway.
type Classifier struct {
	fs fsops.FS
}

// NewClassifier creates a Classifier backed by fs.
func NewClassifier(fs fsops.FS) *Classifier {
	return &Classifier{fs: fs}
}

// ExistsLocally reports whether path exists on the local filesystem.
// Stat errors other than "not exist" count as absent.
func (c *Classifier) ExistsLocally(path string) bool {
	if path == "" {
		return false
	}
	exists, err := c.fs.Exists(path)
	if err != nil {
		return false
	}
	return exists
}
