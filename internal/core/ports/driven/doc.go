// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and adapters implement them.
//
// # Required Interfaces
//
//   - AudioReader: counts samples in an audio file (go-audio/wav)
//   - CorpusDownloader: fetches the corpus archive (net/http)
//   - ArchiveExtractor: unpacks the corpus archive (tar + gzip)
//   - RawTableReader: parses per-split source tables (TSV)
//   - ManifestStore: reads and atomically writes manifest tables (CSV)
//   - Workspace: directory checks and creation (os)
//   - ConfigStore: persisted configuration (TOML)
//
// # Optional Interfaces
//
// These can be nil - preparation degrades to existence-only caching:
//
//   - ManifestLedger: stamps written manifests with content digests (SQLite)
//   - ThrottledDownloader: a CorpusDownloader whose bandwidth is set per run
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
