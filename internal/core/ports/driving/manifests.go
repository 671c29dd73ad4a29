package driving

import (
	"context"

	"github.com/custodia-labs/stopprep/internal/core/domain"
)

// ManifestState classifies a stamped manifest against its file on disk.
type ManifestState string

// Manifest states reported by Verify.
const (
	// ManifestFresh means the file digest matches its stamp.
	ManifestFresh ManifestState = "fresh"

	// ManifestStale means the file changed since it was stamped.
	ManifestStale ManifestState = "stale"

	// ManifestMissing means the stamped file no longer exists.
	ManifestMissing ManifestState = "missing"
)

// ManifestCheck is the verification result for one stamp.
type ManifestCheck struct {
	Stamp domain.ManifestStamp
	State ManifestState
}

// ManifestService inspects the manifest ledger.
type ManifestService interface {
	// List returns all stamped manifests.
	List(ctx context.Context) ([]domain.ManifestStamp, error)

	// Verify re-hashes every stamped manifest and classifies it.
	Verify(ctx context.Context) ([]ManifestCheck, error)

	// Forget drops stamps whose files are missing. Returns how many were dropped.
	Forget(ctx context.Context) (int, error)
}
