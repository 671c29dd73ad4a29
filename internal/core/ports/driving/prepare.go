package driving

import (
	"context"

	"github.com/custodia-labs/stopprep/internal/core/domain"
)

// PrepareService runs corpus preparation end to end.
type PrepareService interface {
	// Prepare acquires the corpus, builds and partitions the split manifests,
	// and publishes the merged train/eval/test manifests.
	// With cfg.SkipPrep set it returns a skipped report without touching disk.
	Prepare(ctx context.Context, cfg domain.PrepareConfig) (*domain.PrepareReport, error)
}
