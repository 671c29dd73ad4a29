package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/stopprep/internal/core/domain"
	"github.com/custodia-labs/stopprep/internal/core/ports/driven"
	"github.com/custodia-labs/stopprep/internal/logger"
)

// Outcome records what a stage did for one manifest.
type Outcome struct {
	// Key identifies the manifest.
	Key domain.ManifestKey

	// Path is the manifest file.
	Path string

	// Cached is true when an existing file was reused.
	Cached bool
}

// ManifestCache decides whether a manifest on disk can be reused.
//
// A file is fresh when it exists and, if a ledger is configured, its content
// digest matches the recorded stamp. Unstamped files are fresh unless the
// cache is strict. A nil ledger degrades to existence-only caching.
type ManifestCache struct {
	store  driven.ManifestStore
	ledger driven.ManifestLedger
	strict bool
	runID  string
	now    func() time.Time
}

// NewManifestCache creates a cache for one preparation run.
func NewManifestCache(store driven.ManifestStore, ledger driven.ManifestLedger, strict bool, runID string) *ManifestCache {
	return &ManifestCache{
		store:  store,
		ledger: ledger,
		strict: strict,
		runID:  runID,
		now:    time.Now,
	}
}

// Fresh reports whether the manifest at path can be reused.
func (c *ManifestCache) Fresh(ctx context.Context, path string) (bool, error) {
	exists, err := c.store.Exists(ctx, path)
	if err != nil {
		return false, fmt.Errorf("check %s: %w", path, err)
	}
	if !exists {
		return false, nil
	}
	if c.ledger == nil {
		return true, nil
	}

	stamp, err := c.ledger.Get(ctx, path)
	if errors.Is(err, domain.ErrNotFound) {
		if c.strict {
			logger.Warn("%s has no ledger stamp, rebuilding", path)
			return false, nil
		}
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("get stamp for %s: %w", path, err)
	}

	digest, err := c.store.Digest(ctx, path)
	if err != nil {
		return false, fmt.Errorf("digest %s: %w", path, err)
	}
	if !stamp.Matches(digest) {
		logger.Warn("%s changed since run %s wrote it, rebuilding", path, stamp.RunID)
		return false, nil
	}
	return true, nil
}

// Record stamps a freshly written manifest.
func (c *ManifestCache) Record(ctx context.Context, key domain.ManifestKey, res *driven.WriteResult, rows int) error {
	if c.ledger == nil {
		return nil
	}
	stamp := domain.ManifestStamp{
		Path:      res.Path,
		Key:       key,
		Rows:      rows,
		Digest:    res.Digest,
		RunID:     c.runID,
		CreatedAt: c.now().UTC(),
	}
	if err := c.ledger.Save(ctx, stamp); err != nil {
		return fmt.Errorf("stamp %s: %w", res.Path, err)
	}
	return nil
}

// write serialises m to path and stamps it.
func (c *ManifestCache) write(
	ctx context.Context,
	path string,
	m *domain.Manifest,
	opts driven.WriteOptions,
) (*driven.WriteResult, error) {
	res, err := c.store.Write(ctx, path, m, opts)
	if err != nil {
		return nil, fmt.Errorf("write %s: %w", path, err)
	}
	if err := c.Record(ctx, m.Key, res, m.Len()); err != nil {
		return nil, err
	}
	return res, nil
}
