package domain

import (
	"fmt"
	"strings"
)

// SampleRate is the fixed sample rate of the corpus audio, in Hz.
// It is a property of the source corpus and is not auto-detected.
const SampleRate = 16000

// IntentMarker prefixes every intent node in a semantics logical form.
const IntentMarker = "IN:"

// ManifestRow is the canonical normalised unit: one utterance.
type ManifestRow struct {
	// ID is unique within a manifest file.
	ID int

	// Duration is the audio length in seconds. Always positive.
	Duration float64

	// Wav is the path to the audio file.
	Wav string

	// Domain is the topical label.
	Domain string

	// Semantics is the bracketed logical form.
	Semantics string

	// Transcript is the normalised utterance text.
	Transcript string
}

// IsFlat returns true if the row carries a flat (non-nested) intent.
func (r ManifestRow) IsFlat() bool {
	return IsFlatIntent(r.Semantics)
}

// IsFlatIntent reports whether a logical form has exactly one intent marker.
// Nested intents contain the marker more than once by construction.
func IsFlatIntent(semantics string) bool {
	return strings.Count(semantics, IntentMarker) == 1
}

// DurationFromSamples converts a sample count to seconds at SampleRate.
func DurationFromSamples(samples int) float64 {
	return float64(samples) / SampleRate
}

// ScopeKind is the filtering dimension of a manifest.
type ScopeKind string

// Scope kinds.
const (
	ScopeAll        ScopeKind = "all"
	ScopeFlat       ScopeKind = "flat"
	ScopeDomain     ScopeKind = "domain"
	ScopeDomainFlat ScopeKind = "domain+flat"
	ScopeMerged     ScopeKind = "merged"
)

// Scope identifies which rows of a split a manifest holds.
type Scope struct {
	Kind   ScopeKind
	Domain Domain
}

// AllScope is the whole-split scope.
func AllScope() Scope { return Scope{Kind: ScopeAll} }

// FlatScope is the flat-intent-only scope.
func FlatScope() Scope { return Scope{Kind: ScopeFlat} }

// DomainScope restricts to one domain, optionally flat intents only.
func DomainScope(d Domain, flat bool) Scope {
	if flat {
		return Scope{Kind: ScopeDomainFlat, Domain: d}
	}
	return Scope{Kind: ScopeDomain, Domain: d}
}

// MergedScope is the published training manifest scope.
func MergedScope() Scope { return Scope{Kind: ScopeMerged} }

// String returns a short label such as "all", "flat", "timer" or "timer+flat".
func (s Scope) String() string {
	switch s.Kind {
	case ScopeDomain:
		return s.Domain.String()
	case ScopeDomainFlat:
		return s.Domain.String() + "+flat"
	default:
		return string(s.Kind)
	}
}

// Matches reports whether a row belongs to this scope.
func (s Scope) Matches(row ManifestRow) bool {
	switch s.Kind {
	case ScopeFlat:
		return row.IsFlat()
	case ScopeDomain:
		return row.Domain == s.Domain.String()
	case ScopeDomainFlat:
		return row.Domain == s.Domain.String() && row.IsFlat()
	default:
		return true
	}
}

// ManifestKey identifies a manifest file by split, scope and type tag.
type ManifestKey struct {
	Split Split
	Scope Scope
	Type  string
}

// FileName returns the on-disk file name for the key.
//
//	all:         train---type=direct.csv
//	flat:        train---flat-type=direct.csv
//	domain:      train-timer-type=direct.csv
//	domain+flat: train-timer-flat-type=direct.csv
//	merged:      train-type=direct.csv
func (k ManifestKey) FileName() string {
	switch k.Scope.Kind {
	case ScopeFlat:
		return fmt.Sprintf("%s---flat-type=%s.csv", k.Split, k.Type)
	case ScopeDomain:
		return fmt.Sprintf("%s-%s-type=%s.csv", k.Split, k.Scope.Domain, k.Type)
	case ScopeDomainFlat:
		return fmt.Sprintf("%s-%s-flat-type=%s.csv", k.Split, k.Scope.Domain, k.Type)
	case ScopeMerged:
		return fmt.Sprintf("%s-type=%s.csv", k.Split, k.Type)
	default:
		return fmt.Sprintf("%s---type=%s.csv", k.Split, k.Type)
	}
}

// String returns a human-readable form of the key.
func (k ManifestKey) String() string {
	return fmt.Sprintf("%s/%s/%s", k.Split, k.Scope, k.Type)
}

// Manifest is an ordered table of ManifestRows.
type Manifest struct {
	Key  ManifestKey
	Rows []ManifestRow
}

// Len returns the number of rows.
func (m *Manifest) Len() int {
	if m == nil {
		return 0
	}
	return len(m.Rows)
}

// Filter returns a new manifest under key holding the rows matching pred.
// Row order and IDs are preserved.
func (m *Manifest) Filter(key ManifestKey, pred func(ManifestRow) bool) *Manifest {
	out := &Manifest{Key: key, Rows: make([]ManifestRow, 0, len(m.Rows))}
	for _, row := range m.Rows {
		if pred(row) {
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}

// Subset returns the rows of m that belong to scope.
func (m *Manifest) Subset(scope Scope) *Manifest {
	key := ManifestKey{Split: m.Key.Split, Scope: scope, Type: m.Key.Type}
	return m.Filter(key, scope.Matches)
}

// Concat joins manifests row-wise in the given order under key.
// Rows are neither deduplicated nor re-indexed.
func Concat(key ManifestKey, parts ...*Manifest) *Manifest {
	total := 0
	for _, p := range parts {
		total += p.Len()
	}
	out := &Manifest{Key: key, Rows: make([]ManifestRow, 0, total)}
	for _, p := range parts {
		if p == nil {
			continue
		}
		out.Rows = append(out.Rows, p.Rows...)
	}
	return out
}

// Renumber assigns sequential IDs starting at start, in row order.
func (m *Manifest) Renumber(start int) {
	for i := range m.Rows {
		m.Rows[i].ID = start + i
	}
}

// Validate checks the row invariants: unique IDs and positive durations.
func (m *Manifest) Validate() error {
	seen := make(map[int]struct{}, len(m.Rows))
	for _, row := range m.Rows {
		if row.Duration <= 0 {
			return fmt.Errorf("%w: row %d of %s has non-positive duration", ErrInvalidInput, row.ID, m.Key)
		}
		if _, dup := seen[row.ID]; dup {
			return fmt.Errorf("%w: duplicate ID %d in %s", ErrInvalidInput, row.ID, m.Key)
		}
		seen[row.ID] = struct{}{}
	}
	return nil
}
