// Package localfs implements driven.Workspace on the local filesystem.
package localfs

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/custodia-labs/stopprep/internal/core/ports/driven"
)

// Ensure Workspace implements the interface.
var _ driven.Workspace = (*Workspace)(nil)

// Workspace answers directory questions against the local disk.
type Workspace struct{}

// NewWorkspace creates a local workspace.
func NewWorkspace() *Workspace {
	return &Workspace{}
}

// IsDir reports whether path exists and is a directory.
func (w *Workspace) IsDir(_ context.Context, path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return info.IsDir(), nil
}

// FileExists reports whether path exists and is a regular file.
func (w *Workspace) FileExists(_ context.Context, path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

// EnsureDir creates path and any missing parents.
func (w *Workspace) EnsureDir(_ context.Context, path string) error {
	return os.MkdirAll(path, 0o755)
}

// Abs returns an absolute, cleaned form of path.
func (w *Workspace) Abs(path string) (string, error) {
	return filepath.Abs(path)
}
