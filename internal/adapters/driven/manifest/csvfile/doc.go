// Package csvfile provides file-based implementations of the manifest ports.
//
// Adapters:
//   - Store: comma-separated manifest tables with atomic writes
//   - RawReader: tab-separated source metadata tables
//
// Manifests use the columns ID, duration, wav, domain, semantics and
// transcript. The domain column is optional on read and may be omitted on
// write. Durations are written in shortest round-trip form with at least one
// decimal place ("1.0", "2.345").
package csvfile
