package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/stopprep/internal/core/domain"
	"github.com/custodia-labs/stopprep/internal/core/ports/driven"
)

// Ensure ManifestLedger implements the interface.
var _ driven.ManifestLedger = (*ManifestLedger)(nil)

// ManifestLedger is an in-memory implementation of driven.ManifestLedger.
type ManifestLedger struct {
	mu     sync.RWMutex
	stamps map[string]domain.ManifestStamp
}

// NewManifestLedger creates a new in-memory manifest ledger.
func NewManifestLedger() *ManifestLedger {
	return &ManifestLedger{
		stamps: make(map[string]domain.ManifestStamp),
	}
}

// Save stores or replaces the stamp for stamp.Path.
func (l *ManifestLedger) Save(_ context.Context, stamp domain.ManifestStamp) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stamps[stamp.Path] = stamp
	return nil
}

// Get retrieves the stamp for a manifest path.
func (l *ManifestLedger) Get(_ context.Context, path string) (*domain.ManifestStamp, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	stamp, ok := l.stamps[path]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &stamp, nil
}

// List returns all stamps ordered by path.
func (l *ManifestLedger) List(_ context.Context) ([]domain.ManifestStamp, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	result := make([]domain.ManifestStamp, 0, len(l.stamps))
	for _, stamp := range l.stamps {
		result = append(result, stamp)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Path < result[j].Path
	})
	return result, nil
}

// Delete removes the stamp for a manifest path.
func (l *ManifestLedger) Delete(_ context.Context, path string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.stamps, path)
	return nil
}
