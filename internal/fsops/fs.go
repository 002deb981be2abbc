// Package fsops provides the filesystem operations p4gate relies on.
//
// Local presence checks, rule and config reads and config writes all go
// through the FS interface so the planner and the CLI can be exercised
// against an in-memory filesystem.
package fsops

import (
	"fmt"
	"os"
	"path/filepath"
)

// FS provides an abstraction for filesystem operations.
type FS interface {
	// Exists reports whether path exists, following symlinks.
	Exists(path string) (bool, error)

	// ReadFile reads the entire contents of a file.
	ReadFile(path string) ([]byte, error)

	// MkdirAll creates a directory and all parent directories.
	MkdirAll(path string, perm os.FileMode) error

	// AtomicWrite writes data to path atomically using temp file + rename.
	AtomicWrite(path string, data []byte, perm os.FileMode) error
}

// RealFS implements FS using actual OS operations.
type RealFS struct{}

// NewRealFS creates a new RealFS.
func NewRealFS() *RealFS {
	return &RealFS{}
}

// Exists checks if a path exists. A dangling symlink counts as absent, the
// same way the workspace looks to the user.
func (fs *RealFS) Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// ReadFile reads the entire contents of a file.
func (fs *RealFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// MkdirAll creates a directory and all parent directories.
func (fs *RealFS) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

// AtomicWrite writes data to path atomically using temp file + rename.
func (fs *RealFS) AtomicWrite(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create parent directory: %w", err)
	}

	// Temp file lives next to the target so the rename stays on one volume
	tmpFile, err := os.CreateTemp(dir, ".p4gate-tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	defer func() {
		if tmpFile != nil {
			_ = tmpFile.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	tmpFile = nil
	return nil
}

// MemFS is an in-memory FS for tests. Paths are compared verbatim, so
// Windows-style workspace paths work on any host.
type MemFS struct {
	files map[string][]byte
	dirs  map[string]bool

	// ExistsErr, when set, is returned by every Exists call.
	ExistsErr error
}

// NewMemFS creates an empty MemFS.
func NewMemFS() *MemFS {
	return &MemFS{
		files: make(map[string][]byte),
		dirs:  make(map[string]bool),
	}
}

// AddFile stores a file at path.
func (m *MemFS) AddFile(path string, data []byte) {
	m.files[path] = data
}

// RemoveFile deletes a file at path.
func (m *MemFS) RemoveFile(path string) {
	delete(m.files, path)
}

// Exists reports whether a file or directory was recorded at path.
func (m *MemFS) Exists(path string) (bool, error) {
	if m.ExistsErr != nil {
		return false, m.ExistsErr
	}
	_, isFile := m.files[path]
	return isFile || m.dirs[path], nil
}

// ReadFile returns the recorded contents of path.
func (m *MemFS) ReadFile(path string) ([]byte, error) {
	data, ok := m.files[path]
	if !ok {
		return nil, &os.PathError{Op: "open", Path: path, Err: os.ErrNotExist}
	}
	return data, nil
}

// MkdirAll records path as a directory.
func (m *MemFS) MkdirAll(path string, perm os.FileMode) error {
	m.dirs[path] = true
	return nil
}

// AtomicWrite records data at path.
func (m *MemFS) AtomicWrite(path string, data []byte, perm os.FileMode) error {
	buf := make([]byte, len(data))
	copy(buf, data)
	m.files[path] = buf
	return nil
}
