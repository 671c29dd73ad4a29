package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/stopprep/internal/core/domain"
	"github.com/custodia-labs/stopprep/internal/core/ports/driven"
	"github.com/custodia-labs/stopprep/internal/core/ports/driving"
	"github.com/custodia-labs/stopprep/internal/logger"
)

// Ensure PrepareService implements the interface.
var _ driving.PrepareService = (*PrepareService)(nil)

// LedgerOpener opens the manifest ledger kept in dir.
// The returned close function releases it.
type LedgerOpener func(dir string) (driven.ManifestLedger, func() error, error)

// PrepareService runs the preparation stages in order:
// fetch, build, partition, merge.
type PrepareService struct {
	workspace  driven.Workspace
	downloader driven.CorpusDownloader
	extractor  driven.ArchiveExtractor
	raw        driven.RawTableReader
	audio      driven.AudioReader
	store      driven.ManifestStore
	openLedger LedgerOpener
	newRunID   func() string
	now        func() time.Time
}

// NewPrepareService creates a preparation service.
// openLedger is optional; without it caching is existence-only.
func NewPrepareService(
	workspace driven.Workspace,
	downloader driven.CorpusDownloader,
	extractor driven.ArchiveExtractor,
	raw driven.RawTableReader,
	audio driven.AudioReader,
	store driven.ManifestStore,
	openLedger LedgerOpener,
	newRunID func() string,
) *PrepareService {
	return &PrepareService{
		workspace:  workspace,
		downloader: downloader,
		extractor:  extractor,
		raw:        raw,
		audio:      audio,
		store:      store,
		openLedger: openLedger,
		newRunID:   newRunID,
		now:        time.Now,
	}
}

// Prepare runs preparation for cfg.
//
//nolint:gocyclo // Orchestration function with necessary sequential steps
func (s *PrepareService) Prepare(ctx context.Context, cfg domain.PrepareConfig) (_ *domain.PrepareReport, err error) {
	report := &domain.PrepareReport{
		RunID:     s.newRunID(),
		Published: make(map[domain.Split]string),
		StartedAt: s.now(),
	}

	// 1. Skip flag: no filesystem access at all
	if cfg.SkipPrep {
		logger.Info("Skipping data preparation")
		report.Skipped = true
		report.FinishedAt = s.now()
		return report, nil
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := s.resolvePaths(&cfg); err != nil {
		return nil, err
	}

	// 2. Acquire the corpus
	logger.Section("Corpus")
	if t, ok := s.downloader.(driven.ThrottledDownloader); ok {
		t.SetRateLimit(cfg.Corpus.RateLimitKBps)
	}
	fetcher := NewCorpusFetcher(s.workspace, s.downloader, s.extractor, cfg.Corpus.URL)
	if err := fetcher.Ensure(ctx, cfg.DataFolder); err != nil {
		return nil, err
	}

	manifestDir := cfg.ManifestPath()
	for _, dir := range []string{cfg.SaveFolder, manifestDir} {
		if err := s.workspace.EnsureDir(ctx, dir); err != nil {
			return nil, fmt.Errorf("create %s: %w", dir, err)
		}
	}

	// 3. Open the ledger beside the cached manifests
	var ledger driven.ManifestLedger
	if s.openLedger != nil {
		l, closeLedger, openErr := s.openLedger(manifestDir)
		if openErr != nil {
			return nil, fmt.Errorf("open ledger: %w", openErr)
		}
		defer func() {
			if cerr := closeLedger(); cerr != nil {
				err = errors.Join(err, fmt.Errorf("close ledger: %w", cerr))
			}
		}()
		ledger = l
	}

	cache := NewManifestCache(s.store, ledger, cfg.StrictCache, report.RunID)
	builder := NewSplitManifestBuilder(s.raw, s.audio, s.store, cache)
	indexer := NewPartitionIndexer(s.store, cache, cfg.DomainPartitions)
	merger := NewManifestMerger(s.store, cache)

	// 4. Build and partition every split, threading the ID offset
	logger.Section("Split Manifests")
	offset := 0
	for _, split := range domain.AllSplits() {
		built, err := builder.Build(ctx, BuildParams{
			Split:      split,
			CorpusRoot: cfg.CorpusRoot(),
			OutputDir:  manifestDir,
			Type:       cfg.Type,
		}, offset)
		if err != nil {
			return nil, fmt.Errorf("build %s: %w", split, err)
		}
		offset = built.NextOffset
		report.Record(built.Key, built.Cached)

		partitions, err := indexer.Partition(ctx, built.Manifest, manifestDir)
		if err != nil {
			return nil, fmt.Errorf("partition %s: %w", split, err)
		}
		for _, o := range partitions {
			report.Record(o.Key, o.Cached)
		}
	}

	// 5. Merge and publish
	logger.Section("Merge")
	policy := cfg.Policy()
	for _, split := range domain.AllSplits() {
		path, err := merger.Merge(ctx, MergeParams{
			Split:     split,
			Policy:    policy,
			SourceDir: manifestDir,
			DestDir:   cfg.SaveFolder,
			Type:      cfg.Type,
		})
		if err != nil {
			return nil, fmt.Errorf("merge %s: %w", split, err)
		}
		report.Published[split] = path
	}

	report.FinishedAt = s.now()
	logger.Info("Preparation complete: %d built, %d reused", len(report.Built), len(report.Cached))
	return report, nil
}

// resolvePaths makes every configured directory absolute.
func (s *PrepareService) resolvePaths(cfg *domain.PrepareConfig) error {
	for _, p := range []*string{&cfg.DataFolder, &cfg.SaveFolder, &cfg.ManifestDir} {
		if *p == "" {
			continue
		}
		abs, err := s.workspace.Abs(*p)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", *p, err)
		}
		*p = abs
	}
	return nil
}
