package driven

import "context"

// CorpusDownloader fetches a remote archive to a local path.
// Retry policy is the caller's concern; implementations make one attempt.
type CorpusDownloader interface {
	// Download writes the content at url to dest.
	// A failed download must not leave a file at dest.
	Download(ctx context.Context, url, dest string) error
}

// ThrottledDownloader is a CorpusDownloader whose bandwidth can be capped
// per run.
type ThrottledDownloader interface {
	CorpusDownloader

	// SetRateLimit caps throughput in KiB/s. Zero removes the cap.
	SetRateLimit(kbps int)
}

// ArchiveExtractor unpacks a compressed archive.
type ArchiveExtractor interface {
	// Extract unpacks archive into destDir.
	Extract(ctx context.Context, archive, destDir string) error
}
