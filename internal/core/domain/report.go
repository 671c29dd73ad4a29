package domain

import "time"

// PrepareReport summarises one preparation run.
type PrepareReport struct {
	// RunID identifies the run.
	RunID string

	// Skipped is true when the skip flag short-circuited the run.
	Skipped bool

	// Built lists manifests written during this run.
	Built []ManifestKey

	// Cached lists manifests reused from an earlier run.
	Cached []ManifestKey

	// Published maps each split to its final manifest path.
	Published map[Split]string

	// StartedAt and FinishedAt bound the run.
	StartedAt  time.Time
	FinishedAt time.Time
}

// Elapsed returns the run duration.
func (r *PrepareReport) Elapsed() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Record adds a manifest to the built or cached list.
func (r *PrepareReport) Record(key ManifestKey, cached bool) {
	if cached {
		r.Cached = append(r.Cached, key)
		return
	}
	r.Built = append(r.Built, key)
}
