package driven

import (
	"context"

	"github.com/custodia-labs/stopprep/internal/core/domain"
)

// RawTableReader reads a split's source metadata table.
type RawTableReader interface {
	// ReadRaw parses the tab-separated table at path, in file order.
	ReadRaw(ctx context.Context, path string) ([]domain.RawRecord, error)
}
