package memory

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path"
	"sync"

	"github.com/custodia-labs/stopprep/internal/core/domain"
	"github.com/custodia-labs/stopprep/internal/core/ports/driven"
)

// Ensure ManifestStore implements the interface.
var _ driven.ManifestStore = (*ManifestStore)(nil)

type storedManifest struct {
	rows       []domain.ManifestRow
	omitDomain bool
}

// ManifestStore is an in-memory implementation of driven.ManifestStore.
// It counts reads and writes per path so callers can assert caching.
type ManifestStore struct {
	mu     sync.RWMutex
	files  map[string]storedManifest
	reads  map[string]int
	writes map[string]int
}

// NewManifestStore creates a new in-memory manifest store.
func NewManifestStore() *ManifestStore {
	return &ManifestStore{
		files:  make(map[string]storedManifest),
		reads:  make(map[string]int),
		writes: make(map[string]int),
	}
}

// Path returns dir joined with the key's file name.
func (s *ManifestStore) Path(dir string, key domain.ManifestKey) string {
	return path.Join(dir, key.FileName())
}

// Exists reports whether a manifest is stored at p.
func (s *ManifestStore) Exists(_ context.Context, p string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.files[p]
	return ok, nil
}

// Read returns a copy of the manifest stored at p.
func (s *ManifestStore) Read(_ context.Context, p string, key domain.ManifestKey) (*domain.Manifest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.files[p]
	if !ok {
		return nil, fmt.Errorf("%s: %w", p, os.ErrNotExist)
	}
	s.reads[p]++
	return &domain.Manifest{Key: key, Rows: cloneRows(f.rows, f.omitDomain)}, nil
}

// Write stores a copy of m at p.
func (s *ManifestStore) Write(
	ctx context.Context,
	p string,
	m *domain.Manifest,
	opts driven.WriteOptions,
) (*driven.WriteResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	f := storedManifest{rows: cloneRows(m.Rows, opts.OmitDomain), omitDomain: opts.OmitDomain}
	s.files[p] = f
	s.writes[p]++
	return &driven.WriteResult{Path: p, Digest: digestOf(f)}, nil
}

// Digest returns a content hash of the manifest stored at p.
func (s *ManifestStore) Digest(_ context.Context, p string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.files[p]
	if !ok {
		return "", fmt.Errorf("%s: %w", p, os.ErrNotExist)
	}
	return digestOf(f), nil
}

// Copy duplicates the manifest at src to dst.
func (s *ManifestStore) Copy(_ context.Context, src, dst string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.files[src]
	if !ok {
		return fmt.Errorf("%s: %w", src, os.ErrNotExist)
	}
	s.files[dst] = storedManifest{rows: cloneRows(f.rows, f.omitDomain), omitDomain: f.omitDomain}
	s.writes[dst]++
	return nil
}

// Remove deletes the manifest at p, if any.
func (s *ManifestStore) Remove(_ context.Context, p string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, p)
	return nil
}

// Reads returns how many times p was read.
func (s *ManifestStore) Reads(p string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reads[p]
}

// Writes returns how many times p was written or copied to.
func (s *ManifestStore) Writes(p string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes[p]
}

// Paths returns every stored path.
func (s *ManifestStore) Paths() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.files))
	for p := range s.files {
		out = append(out, p)
	}
	return out
}

func cloneRows(rows []domain.ManifestRow, omitDomain bool) []domain.ManifestRow {
	out := make([]domain.ManifestRow, len(rows))
	copy(out, rows)
	if omitDomain {
		for i := range out {
			out[i].Domain = ""
		}
	}
	return out
}

func digestOf(f storedManifest) string {
	h := sha256.New()
	fmt.Fprintf(h, "%t\n", f.omitDomain)
	for _, r := range f.rows {
		fmt.Fprintf(h, "%d\x1f%g\x1f%s\x1f%s\x1f%s\x1f%s\n", r.ID, r.Duration, r.Wav, r.Domain, r.Semantics, r.Transcript)
	}
	return hex.EncodeToString(h.Sum(nil))
}
