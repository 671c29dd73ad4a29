// Package domain defines the core entities of STOP manifest preparation.
//
// This package is the innermost layer of the hexagon. It has NO external
// dependencies and defines the fundamental types:
//
//   - Split, Domain: the closed corpus vocabularies
//   - RawRecord: one row of a source metadata table
//   - ManifestRow, Manifest: the typed manifest table and its operations
//   - Scope, ManifestKey: which rows a manifest holds and where it lives
//   - MergePolicy: how partitions combine into published manifests
//   - ManifestStamp: ledger record of a written manifest
//   - PrepareConfig: the configuration surface
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
