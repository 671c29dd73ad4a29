package domain

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Corpus layout constants.
const (
	// CorpusRootName is the directory the archive extracts to.
	CorpusRootName = "stop"

	// CorpusArchiveName is the compressed corpus file name.
	CorpusArchiveName = "stop.tar.gz"

	// DefaultCorpusURL is the public location of the corpus archive.
	DefaultCorpusURL = "https://dl.fbaipublicfiles.com/stop/stop.tar.gz"

	// DefaultType is the manifest type tag for audio-to-semantics training.
	DefaultType = "direct"
)

// CorpusSettings configures corpus acquisition.
type CorpusSettings struct {
	// URL is the archive download location.
	URL string

	// RateLimitKBps caps download bandwidth in KiB/s. Zero means unlimited.
	RateLimitKBps int
}

// PrepareConfig is the configuration surface consumed by preparation.
type PrepareConfig struct {
	// DataFolder holds the corpus archive and its extracted root.
	DataFolder string

	// SaveFolder receives the published train/eval/test manifests.
	SaveFolder string

	// ManifestDir holds the cached per-split and partition manifests.
	// Empty means <DataFolder>/stop/manifests/speechbrain.
	ManifestDir string

	// Type tags manifest variants built for different task framings.
	Type string

	// TrainDomains restricts the published manifests. Empty means all domains.
	TrainDomains []Domain

	// FlatIntents publishes flat intents only.
	FlatIntents bool

	// SkipPrep turns preparation into a no-op.
	SkipPrep bool

	// DomainPartitions produces per-domain partition manifests.
	DomainPartitions bool

	// KeepDomain retains the domain column in the published manifests.
	KeepDomain bool

	// Renumber assigns fresh sequential IDs to published rows.
	Renumber bool

	// StrictCache treats manifests without a ledger stamp as stale.
	StrictCache bool

	// Corpus configures acquisition.
	Corpus CorpusSettings
}

// DefaultPrepareConfig returns the default configuration.
func DefaultPrepareConfig() PrepareConfig {
	return PrepareConfig{
		Type:             DefaultType,
		DomainPartitions: true,
		KeepDomain:       true,
		Renumber:         true,
		Corpus: CorpusSettings{
			URL: DefaultCorpusURL,
		},
	}
}

// CorpusRoot returns the extracted corpus directory.
func (c *PrepareConfig) CorpusRoot() string {
	return filepath.Join(c.DataFolder, CorpusRootName)
}

// ArchivePath returns the local corpus archive path.
func (c *PrepareConfig) ArchivePath() string {
	return filepath.Join(c.DataFolder, CorpusArchiveName)
}

// RawTablePath returns the source TSV for split.
func (c *PrepareConfig) RawTablePath(split Split) string {
	return filepath.Join(c.CorpusRoot(), RawTableRelPath(split))
}

// RawTableRelPath returns the source TSV location relative to the corpus root.
func RawTableRelPath(split Split) string {
	return filepath.Join("manifests", split.String()+".tsv")
}

// ManifestPath returns the cache directory for built manifests.
func (c *PrepareConfig) ManifestPath() string {
	if c.ManifestDir != "" {
		return c.ManifestDir
	}
	return filepath.Join(c.CorpusRoot(), "manifests", "speechbrain")
}

// Policy derives the merge policy.
func (c *PrepareConfig) Policy() MergePolicy {
	domains := make([]Domain, len(c.TrainDomains))
	copy(domains, c.TrainDomains)
	return MergePolicy{
		Flatten:    c.FlatIntents,
		Domains:    domains,
		Renumber:   c.Renumber,
		KeepDomain: c.KeepDomain,
	}
}

// Validate checks the configuration. A skipped run needs no paths.
func (c *PrepareConfig) Validate() error {
	if c.SkipPrep {
		return nil
	}
	if strings.TrimSpace(c.DataFolder) == "" {
		return fmt.Errorf("%w: data folder is required", ErrInvalidInput)
	}
	if strings.TrimSpace(c.SaveFolder) == "" {
		return fmt.Errorf("%w: save folder is required", ErrInvalidInput)
	}
	if strings.TrimSpace(c.Type) == "" {
		return fmt.Errorf("%w: type tag is required", ErrInvalidInput)
	}
	if strings.ContainsAny(c.Type, `/\`) {
		return fmt.Errorf("%w: type tag %q must not contain path separators", ErrInvalidInput, c.Type)
	}
	for _, d := range c.TrainDomains {
		if !d.IsValid() {
			return fmt.Errorf("%w: %q", ErrUnknownDomain, d)
		}
	}
	if len(c.TrainDomains) > 0 && !c.DomainPartitions {
		return fmt.Errorf("%w: train domains require domain partitions", ErrInvalidInput)
	}
	if c.Corpus.RateLimitKBps < 0 {
		return fmt.Errorf("%w: rate limit must not be negative", ErrInvalidInput)
	}
	return nil
}
