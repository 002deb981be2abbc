// Package checkout opens workspace files for edit together with their
// companion .meta files.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/danieljhkim/p4gate/internal/logging"
	"github.com/danieljhkim/p4gate/internal/p4"
)

// MetaExt is the extension of companion metadata files.
const MetaExt = ".meta"

// PresenceChecker reports whether a workspace path exists locally.
type PresenceChecker interface {
	ExistsLocally(path string) bool
}

// Result lists what a checkout did.
type Result struct {
	// Opened holds every path passed to p4 edit, companions included
	Opened []string `json:"opened"`
	// Skipped holds requested paths that do not exist locally
	Skipped []string `json:"skipped,omitempty"`
}

// Helper opens files and their companions for edit.
type Helper struct {
	gw       p4.Gateway
	presence PresenceChecker
	log      logging.Logger
}

// NewHelper creates a Helper.
func NewHelper(gw p4.Gateway, presence PresenceChecker, log logging.Logger) *Helper {
	if log == nil {
		log = logging.Nop()
	}
	return &Helper{gw: gw, presence: presence, log: log}
}

// Checkout opens each existing path for edit, plus path.meta when it exists.
// A folder wildcard (trailing \... or /...) is checked against the folder
// itself and its companion is folder.meta. Failures on one path do not stop
// the others; they are joined in the returned error.
func (h *Helper) Checkout(ctx context.Context, paths []string) (*Result, error) {
	result := &Result{}
	var errs []error

	for _, path := range paths {
		base := stripWildcard(path)
		if !h.presence.ExistsLocally(base) {
			h.log.Debug("skipping missing path", "path", path)
			result.Skipped = append(result.Skipped, path)
			continue
		}

		batch := []string{path}
		if meta := base + MetaExt; h.presence.ExistsLocally(meta) {
			batch = append(batch, meta)
		}

		if err := h.gw.Edit(ctx, batch); err != nil {
			errs = append(errs, fmt.Errorf("failed to open %s for edit: %w", path, err))
			continue
		}
		result.Opened = append(result.Opened, batch...)
	}

	return result, errors.Join(errs...)
}

func stripWildcard(path string) string {
	for _, suffix := range []string{`\...`, "/..."} {
		if strings.HasSuffix(path, suffix) {
			return strings.TrimSuffix(path, suffix)
		}
	}
	return path
}
