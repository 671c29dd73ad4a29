package driven

import (
	"context"

	"github.com/custodia-labs/stopprep/internal/core/domain"
)

// WriteOptions tunes how a manifest is serialised.
type WriteOptions struct {
	// OmitDomain drops the domain column.
	OmitDomain bool
}

// WriteResult describes a written manifest.
type WriteResult struct {
	// Path is where the manifest was written.
	Path string

	// Digest is the hex SHA-256 of the written bytes.
	Digest string
}

// ManifestStore persists manifest tables under a directory.
// The path a store names is owned by it; writes are atomic so an interrupted
// write never leaves a file that looks complete.
type ManifestStore interface {
	// Path returns the file path for key under dir.
	Path(dir string, key domain.ManifestKey) string

	// Exists reports whether a file exists at path.
	Exists(ctx context.Context, path string) (bool, error)

	// Read parses the manifest at path. The returned manifest carries key.
	Read(ctx context.Context, path string, key domain.ManifestKey) (*domain.Manifest, error)

	// Write serialises m to path.
	Write(ctx context.Context, path string, m *domain.Manifest, opts WriteOptions) (*WriteResult, error)

	// Digest returns the hex SHA-256 of the file at path.
	Digest(ctx context.Context, path string) (string, error)

	// Copy copies src to dst atomically.
	Copy(ctx context.Context, src, dst string) error

	// Remove deletes the file at path. Missing files are not an error.
	Remove(ctx context.Context, path string) error
}
