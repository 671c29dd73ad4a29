package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/stopprep/internal/core/domain"
	"github.com/custodia-labs/stopprep/internal/core/ports/driven"
	"github.com/custodia-labs/stopprep/internal/logger"
)

// MergeParams locates the inputs and output of one split merge.
type MergeParams struct {
	Split     domain.Split
	Policy    domain.MergePolicy
	SourceDir string
	DestDir   string
	Type      string
}

// ManifestMerger concatenates partition manifests into a published manifest.
type ManifestMerger struct {
	store driven.ManifestStore
	cache *ManifestCache
}

// NewManifestMerger creates a merger.
func NewManifestMerger(store driven.ManifestStore, cache *ManifestCache) *ManifestMerger {
	return &ManifestMerger{
		store: store,
		cache: cache,
	}
}

// Merge publishes <DestDir>/<split>-type=<type>.csv and returns its path.
//
// Inputs are the policy's partitions in request order. The merged table is
// written beside its inputs, copied to DestDir and the intermediate removed.
// Rows are never deduplicated; without Policy.Renumber IDs from different
// domain partitions may collide.
func (mg *ManifestMerger) Merge(ctx context.Context, p MergeParams) (string, error) {
	inputs := p.Policy.Inputs(p.Split, p.Type)
	parts := make([]*domain.Manifest, 0, len(inputs))
	for _, key := range inputs {
		path := mg.store.Path(p.SourceDir, key)
		m, err := mg.store.Read(ctx, path, key)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", path, err)
		}
		parts = append(parts, m)
	}

	outKey := p.Policy.Output(p.Split, p.Type)
	merged := domain.Concat(outKey, parts...)
	if p.Policy.Renumber {
		merged.Renumber(0)
	}

	intermediate := mg.store.Path(p.SourceDir, outKey)
	opts := driven.WriteOptions{OmitDomain: !p.Policy.KeepDomain}
	if _, err := mg.store.Write(ctx, intermediate, merged, opts); err != nil {
		return "", fmt.Errorf("write %s: %w", intermediate, err)
	}

	final := mg.store.Path(p.DestDir, outKey)
	if final != intermediate {
		if err := mg.store.Copy(ctx, intermediate, final); err != nil {
			return "", fmt.Errorf("publish %s: %w", final, err)
		}
		if err := mg.store.Remove(ctx, intermediate); err != nil {
			return "", fmt.Errorf("remove %s: %w", intermediate, err)
		}
	}

	digest, err := mg.store.Digest(ctx, final)
	if err != nil {
		return "", fmt.Errorf("digest %s: %w", final, err)
	}
	res := &driven.WriteResult{Path: final, Digest: digest}
	if err := mg.cache.Record(ctx, outKey, res, merged.Len()); err != nil {
		return "", err
	}

	logger.Info("Published %s (%d rows from %d inputs)", final, merged.Len(), len(inputs))
	return final, nil
}
