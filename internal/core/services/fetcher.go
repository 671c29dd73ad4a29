package services

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/stopprep/internal/core/domain"
	"github.com/custodia-labs/stopprep/internal/core/ports/driven"
	"github.com/custodia-labs/stopprep/internal/logger"
)

// CorpusFetcher ensures the raw corpus exists locally.
type CorpusFetcher struct {
	workspace  driven.Workspace
	downloader driven.CorpusDownloader
	extractor  driven.ArchiveExtractor
	url        string
}

// NewCorpusFetcher creates a fetcher that downloads from url when needed.
func NewCorpusFetcher(
	workspace driven.Workspace,
	downloader driven.CorpusDownloader,
	extractor driven.ArchiveExtractor,
	url string,
) *CorpusFetcher {
	if url == "" {
		url = domain.DefaultCorpusURL
	}
	return &CorpusFetcher{
		workspace:  workspace,
		downloader: downloader,
		extractor:  extractor,
		url:        url,
	}
}

// Ensure makes <dataFolder>/stop available.
// If the extracted root is missing, the archive is downloaded (only when it
// is also missing) and extracted into dataFolder. Errors are not retried.
func (f *CorpusFetcher) Ensure(ctx context.Context, dataFolder string) error {
	root := filepath.Join(dataFolder, domain.CorpusRootName)
	present, err := f.workspace.IsDir(ctx, root)
	if err != nil {
		return fmt.Errorf("check corpus root: %w", err)
	}
	if present {
		logger.Debug("Corpus found at %s", root)
		return nil
	}

	archive := filepath.Join(dataFolder, domain.CorpusArchiveName)
	haveArchive, err := f.workspace.FileExists(ctx, archive)
	if err != nil {
		return fmt.Errorf("check corpus archive: %w", err)
	}

	if !haveArchive {
		if err := f.workspace.EnsureDir(ctx, dataFolder); err != nil {
			return fmt.Errorf("create data folder: %w", err)
		}
		logger.Info("Downloading %s to %s...", f.url, archive)
		if err := f.downloader.Download(ctx, f.url, archive); err != nil {
			return fmt.Errorf("%w: download %s: %w", domain.ErrCorpusUnavailable, f.url, err)
		}
	}

	logger.Info("Extracting %s...", domain.CorpusArchiveName)
	if err := f.extractor.Extract(ctx, archive, dataFolder); err != nil {
		return fmt.Errorf("%w: extract %s: %w", domain.ErrCorpusUnavailable, archive, err)
	}
	return nil
}
