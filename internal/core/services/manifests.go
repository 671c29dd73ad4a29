package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/stopprep/internal/core/domain"
	"github.com/custodia-labs/stopprep/internal/core/ports/driven"
	"github.com/custodia-labs/stopprep/internal/core/ports/driving"
)

// Ensure ManifestService implements the interface.
var _ driving.ManifestService = (*ManifestService)(nil)

// ManifestService inspects stamped manifests.
type ManifestService struct {
	ledger driven.ManifestLedger
	store  driven.ManifestStore
}

// NewManifestService creates a new manifest service.
func NewManifestService(ledger driven.ManifestLedger, store driven.ManifestStore) *ManifestService {
	return &ManifestService{
		ledger: ledger,
		store:  store,
	}
}

// List returns all stamped manifests.
func (s *ManifestService) List(ctx context.Context) ([]domain.ManifestStamp, error) {
	stamps, err := s.ledger.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list stamps: %w", err)
	}
	return stamps, nil
}

// Verify re-hashes every stamped manifest.
func (s *ManifestService) Verify(ctx context.Context) ([]driving.ManifestCheck, error) {
	stamps, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	checks := make([]driving.ManifestCheck, 0, len(stamps))
	for _, stamp := range stamps {
		state, err := s.check(ctx, stamp)
		if err != nil {
			return nil, err
		}
		checks = append(checks, driving.ManifestCheck{Stamp: stamp, State: state})
	}
	return checks, nil
}

// Forget drops stamps whose files are missing.
func (s *ManifestService) Forget(ctx context.Context) (int, error) {
	checks, err := s.Verify(ctx)
	if err != nil {
		return 0, err
	}

	dropped := 0
	for _, c := range checks {
		if c.State != driving.ManifestMissing {
			continue
		}
		if err := s.ledger.Delete(ctx, c.Stamp.Path); err != nil {
			return dropped, fmt.Errorf("delete stamp %s: %w", c.Stamp.Path, err)
		}
		dropped++
	}
	return dropped, nil
}

func (s *ManifestService) check(ctx context.Context, stamp domain.ManifestStamp) (driving.ManifestState, error) {
	exists, err := s.store.Exists(ctx, stamp.Path)
	if err != nil {
		return "", fmt.Errorf("check %s: %w", stamp.Path, err)
	}
	if !exists {
		return driving.ManifestMissing, nil
	}

	digest, err := s.store.Digest(ctx, stamp.Path)
	if err != nil {
		return "", fmt.Errorf("digest %s: %w", stamp.Path, err)
	}
	if !stamp.Matches(digest) {
		return driving.ManifestStale, nil
	}
	return driving.ManifestFresh, nil
}
