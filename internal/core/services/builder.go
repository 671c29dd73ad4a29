package services

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/stopprep/internal/core/domain"
	"github.com/custodia-labs/stopprep/internal/core/ports/driven"
	"github.com/custodia-labs/stopprep/internal/logger"
)

// BuildParams locates the inputs and output of one split build.
type BuildParams struct {
	// Split selects the source table.
	Split domain.Split

	// CorpusRoot is the extracted corpus directory.
	CorpusRoot string

	// OutputDir receives the split manifest.
	OutputDir string

	// Type is the manifest type tag.
	Type string
}

// BuildResult is a built or reused split manifest.
type BuildResult struct {
	Outcome

	// Manifest holds the rows, so callers need not re-read the file.
	Manifest *domain.Manifest

	// NextOffset is the ID offset for the next split in the same run.
	NextOffset int
}

// SplitManifestBuilder turns a split's source table into its "all" manifest.
type SplitManifestBuilder struct {
	raw   driven.RawTableReader
	audio driven.AudioReader
	store driven.ManifestStore
	cache *ManifestCache
}

// NewSplitManifestBuilder creates a split manifest builder.
func NewSplitManifestBuilder(
	raw driven.RawTableReader,
	audio driven.AudioReader,
	store driven.ManifestStore,
	cache *ManifestCache,
) *SplitManifestBuilder {
	return &SplitManifestBuilder{
		raw:   raw,
		audio: audio,
		store: store,
		cache: cache,
	}
}

// Build produces the whole-split manifest for p.Split.
//
// Row i receives ID idOffset+i. The returned NextOffset is idOffset plus the
// row count, whether the manifest was built or reused, so the caller can
// thread it into the next split. A fresh manifest on disk is read back
// without touching the source table or any audio.
func (b *SplitManifestBuilder) Build(ctx context.Context, p BuildParams, idOffset int) (*BuildResult, error) {
	key := domain.ManifestKey{Split: p.Split, Scope: domain.AllScope(), Type: p.Type}
	path := b.store.Path(p.OutputDir, key)

	fresh, err := b.cache.Fresh(ctx, path)
	if err != nil {
		return nil, err
	}
	if fresh {
		logger.Debug("Reusing %s", path)
		m, err := b.store.Read(ctx, path, key)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		return &BuildResult{
			Outcome:    Outcome{Key: key, Path: path, Cached: true},
			Manifest:   m,
			NextOffset: idOffset + m.Len(),
		}, nil
	}

	logger.Info("Preparing %s...", path)

	tablePath := filepath.Join(p.CorpusRoot, domain.RawTableRelPath(p.Split))
	records, err := b.raw.ReadRaw(ctx, tablePath)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", tablePath, err)
	}

	m := &domain.Manifest{Key: key, Rows: make([]domain.ManifestRow, 0, len(records))}
	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		wav := filepath.Join(p.CorpusRoot, rec.AudioRelPath(p.Split))
		samples, err := b.audio.SampleCount(ctx, wav)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		if samples <= 0 {
			return nil, fmt.Errorf("row %d: %w: %s", i, domain.ErrEmptyAudio, wav)
		}

		m.Rows = append(m.Rows, domain.ManifestRow{
			ID:         idOffset + i,
			Duration:   domain.DurationFromSamples(samples),
			Wav:        wav,
			Domain:     rec.Domain,
			Semantics:  rec.Semantics,
			Transcript: rec.Transcript,
		})
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	if _, err := b.cache.write(ctx, path, m, driven.WriteOptions{}); err != nil {
		return nil, err
	}
	logger.Debug("Wrote %d rows to %s", m.Len(), path)

	return &BuildResult{
		Outcome:    Outcome{Key: key, Path: path},
		Manifest:   m,
		NextOffset: idOffset + m.Len(),
	}, nil
}
