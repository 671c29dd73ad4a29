package driven

import (
	"context"

	"github.com/custodia-labs/stopprep/internal/core/domain"
)

// ManifestLedger persists stamps for written manifests.
type ManifestLedger interface {
	// Save stores or replaces the stamp for stamp.Path.
	Save(ctx context.Context, stamp domain.ManifestStamp) error

	// Get retrieves the stamp for path.
	// Returns domain.ErrNotFound if the path was never stamped.
	Get(ctx context.Context, path string) (*domain.ManifestStamp, error)

	// List returns all stamps ordered by path.
	List(ctx context.Context) ([]domain.ManifestStamp, error)

	// Delete removes the stamp for path.
	Delete(ctx context.Context, path string) error
}
