package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/custodia-labs/stopprep/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/stopprep/internal/core/domain"
	"github.com/custodia-labs/stopprep/internal/core/ports/driven"
)

// --- Test doubles for the preparation stages ---

// fakeRawReader serves canned raw tables keyed by path.
type fakeRawReader struct {
	mu     sync.Mutex
	tables map[string][]domain.RawRecord
	calls  map[string]int
	err    error
}

func newFakeRawReader() *fakeRawReader {
	return &fakeRawReader{
		tables: make(map[string][]domain.RawRecord),
		calls:  make(map[string]int),
	}
}

func (r *fakeRawReader) add(path string, records ...domain.RawRecord) {
	r.tables[path] = records
}

func (r *fakeRawReader) ReadRaw(_ context.Context, path string) ([]domain.RawRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls[path]++
	if r.err != nil {
		return nil, r.err
	}
	records, ok := r.tables[path]
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, os.ErrNotExist)
	}
	return records, nil
}

func (r *fakeRawReader) total() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		n += c
	}
	return n
}

// mockAudioReader implements driven.AudioReader with testify/mock.
type mockAudioReader struct {
	mock.Mock
}

func (m *mockAudioReader) SampleCount(ctx context.Context, path string) (int, error) {
	args := m.Called(ctx, path)
	return args.Int(0), args.Error(1)
}

func audioReturning(samples int) *mockAudioReader {
	a := &mockAudioReader{}
	a.On("SampleCount", mock.Anything, mock.Anything).Return(samples, nil)
	return a
}

// fakeDownloader records downloads and materialises the archive in a workspace.
type fakeDownloader struct {
	ws     *memory.Workspace
	urls   []string
	dests  []string
	limits []int
	err    error
}

func (d *fakeDownloader) SetRateLimit(kbps int) {
	d.limits = append(d.limits, kbps)
}

func (d *fakeDownloader) Download(_ context.Context, url, dest string) error {
	d.urls = append(d.urls, url)
	d.dests = append(d.dests, dest)
	if d.err != nil {
		return d.err
	}
	d.ws.AddFile(dest)
	return nil
}

// fakeExtractor records extractions and materialises the corpus root.
type fakeExtractor struct {
	ws       *memory.Workspace
	archives []string
	err      error
}

func (e *fakeExtractor) Extract(_ context.Context, archive, destDir string) error {
	e.archives = append(e.archives, archive)
	if e.err != nil {
		return e.err
	}
	e.ws.AddDir(filepath.Join(destDir, domain.CorpusRootName))
	return nil
}

var errBoom = errors.New("boom")

// staticLedger opens the same in-memory ledger on every run.
func staticLedger(l driven.ManifestLedger) LedgerOpener {
	return func(string) (driven.ManifestLedger, func() error, error) {
		return l, func() error { return nil }, nil
	}
}

func fixedRunID(id string) func() string {
	return func() string { return id }
}

func raw(fileID, dom, semantics, transcript string) domain.RawRecord {
	return domain.RawRecord{FileID: fileID, Domain: dom, Semantics: semantics, Transcript: transcript}
}

func trainKey(scope domain.Scope) domain.ManifestKey {
	return domain.ManifestKey{Split: domain.SplitTrain, Scope: scope, Type: "direct"}
}

func transcripts(m *domain.Manifest) []string {
	out := make([]string, 0, m.Len())
	for _, r := range m.Rows {
		out = append(out, r.Transcript)
	}
	return out
}

func ids(m *domain.Manifest) []int {
	out := make([]int, 0, m.Len())
	for _, r := range m.Rows {
		out = append(out, r.ID)
	}
	return out
}
