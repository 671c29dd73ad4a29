package memory

import (
	"context"
	"path"
	"sync"

	"github.com/custodia-labs/stopprep/internal/core/ports/driven"
)

// Ensure Workspace implements the interface.
var _ driven.Workspace = (*Workspace)(nil)

// Workspace is an in-memory implementation of driven.Workspace.
// Relative paths resolve against Root.
type Workspace struct {
	Root string

	mu    sync.RWMutex
	dirs  map[string]bool
	files map[string]bool
}

// NewWorkspace creates an empty in-memory workspace rooted at "/work".
func NewWorkspace() *Workspace {
	return &Workspace{
		Root:  "/work",
		dirs:  make(map[string]bool),
		files: make(map[string]bool),
	}
}

// AddDir marks p as an existing directory.
func (w *Workspace) AddDir(p string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.dirs[path.Clean(p)] = true
}

// AddFile marks p as an existing file.
func (w *Workspace) AddFile(p string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.files[path.Clean(p)] = true
}

// IsDir reports whether p was added or created as a directory.
func (w *Workspace) IsDir(_ context.Context, p string) (bool, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.dirs[path.Clean(p)], nil
}

// FileExists reports whether p was added as a file.
func (w *Workspace) FileExists(_ context.Context, p string) (bool, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.files[path.Clean(p)], nil
}

// EnsureDir records p and its parents as directories.
func (w *Workspace) EnsureDir(_ context.Context, p string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	for p = path.Clean(p); p != "/" && p != "."; p = path.Dir(p) {
		w.dirs[p] = true
	}
	return nil
}

// Abs resolves p against Root.
func (w *Workspace) Abs(p string) (string, error) {
	if path.IsAbs(p) {
		return path.Clean(p), nil
	}
	return path.Join(w.Root, p), nil
}

// Dirs returns the number of known directories.
func (w *Workspace) Dirs() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.dirs)
}
