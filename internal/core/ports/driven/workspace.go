package driven

import "context"

// Workspace performs the directory bookkeeping around preparation.
type Workspace interface {
	// IsDir reports whether path exists and is a directory.
	IsDir(ctx context.Context, path string) (bool, error)

	// FileExists reports whether path exists and is a regular file.
	FileExists(ctx context.Context, path string) (bool, error)

	// EnsureDir creates path and any missing parents.
	EnsureDir(ctx context.Context, path string) error

	// Abs returns an absolute, cleaned form of path.
	Abs(path string) (string, error)
}
