package services

import (
	"context"
	"slices"

	"github.com/custodia-labs/stopprep/internal/core/domain"
	"github.com/custodia-labs/stopprep/internal/core/ports/driven"
	"github.com/custodia-labs/stopprep/internal/logger"
)

// PartitionIndexer derives the flat, per-domain and per-domain-flat subsets
// of a split manifest. Existing partition files are never recomputed.
type PartitionIndexer struct {
	store     driven.ManifestStore
	cache     *ManifestCache
	domains   []domain.Domain
	perDomain bool
}

// NewPartitionIndexer creates an indexer over the full domain vocabulary.
// With perDomain false only the flat subset is produced.
func NewPartitionIndexer(store driven.ManifestStore, cache *ManifestCache, perDomain bool) *PartitionIndexer {
	return &PartitionIndexer{
		store:     store,
		cache:     cache,
		domains:   domain.AllDomains(),
		perDomain: perDomain,
	}
}

// Scopes returns the partition scopes in the order they are written.
func (x *PartitionIndexer) Scopes() []domain.Scope {
	scopes := []domain.Scope{domain.FlatScope()}
	if !x.perDomain {
		return scopes
	}
	for _, d := range x.domains {
		scopes = append(scopes, domain.DomainScope(d, false), domain.DomainScope(d, true))
	}
	return scopes
}

// Partition writes every missing partition of m into outputDir.
func (x *PartitionIndexer) Partition(ctx context.Context, m *domain.Manifest, outputDir string) ([]Outcome, error) {
	scopes := x.Scopes()
	outcomes := make([]Outcome, 0, len(scopes))

	if x.perDomain {
		if n := x.unpartitioned(m); n > 0 {
			logger.Warn("%d %s row(s) have a domain outside %v and appear in no domain partition",
				n, m.Key.Split, x.domains)
		}
	}

	for _, scope := range scopes {
		if err := ctx.Err(); err != nil {
			return outcomes, err
		}

		key := domain.ManifestKey{Split: m.Key.Split, Scope: scope, Type: m.Key.Type}
		path := x.store.Path(outputDir, key)

		fresh, err := x.cache.Fresh(ctx, path)
		if err != nil {
			return outcomes, err
		}
		if fresh {
			outcomes = append(outcomes, Outcome{Key: key, Path: path, Cached: true})
			continue
		}

		logger.Info("Preparing %s...", path)
		subset := m.Subset(scope)
		if _, err := x.cache.write(ctx, path, subset, driven.WriteOptions{}); err != nil {
			return outcomes, err
		}
		outcomes = append(outcomes, Outcome{Key: key, Path: path})
	}

	return outcomes, nil
}

// unpartitioned counts rows whose domain label matches none of x.domains.
func (x *PartitionIndexer) unpartitioned(m *domain.Manifest) int {
	n := 0
	for _, r := range m.Rows {
		if !slices.Contains(x.domains, domain.Domain(r.Domain)) {
			n++
		}
	}
	return n
}
