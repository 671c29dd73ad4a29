package domain

import "time"

// ManifestStamp records a manifest written by a preparation run.
// The digest lets a later run tell a complete file from a stale or partial one.
type ManifestStamp struct {
	// Path is the absolute manifest path. It is the record's identity.
	Path string

	// Key describes the manifest's split, scope and type tag.
	Key ManifestKey

	// Rows is the number of data rows written.
	Rows int

	// Digest is the hex SHA-256 of the file content.
	Digest string

	// RunID identifies the preparation run that wrote the file.
	RunID string

	// CreatedAt is when the file was written.
	CreatedAt time.Time
}

// Matches reports whether digest equals the recorded digest.
func (s *ManifestStamp) Matches(digest string) bool {
	return s != nil && s.Digest != "" && s.Digest == digest
}
