package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/custodia-labs/stopprep/internal/core/domain"
	"github.com/custodia-labs/stopprep/internal/core/ports/driven"
)

// Manifest column names.
const (
	colID         = "ID"
	colDuration   = "duration"
	colWav        = "wav"
	colDomain     = "domain"
	colSemantics  = "semantics"
	colTranscript = "transcript"
)

// Ensure Store implements the interface.
var _ driven.ManifestStore = (*Store)(nil)

// Store reads and writes manifest CSV files.
type Store struct{}

// NewStore creates a manifest store.
func NewStore() *Store {
	return &Store{}
}

// Path returns <dir>/<key file name>.
func (s *Store) Path(dir string, key domain.ManifestKey) string {
	return filepath.Join(dir, key.FileName())
}

// Exists reports whether a file exists at path.
func (s *Store) Exists(_ context.Context, path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return !info.IsDir(), nil
}

// Read parses the manifest at path.
func (s *Store) Read(ctx context.Context, path string, key domain.ManifestKey) (*domain.Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := decodeRows(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &domain.Manifest{Key: key, Rows: rows}, nil
}

// Write serialises m to path atomically.
func (s *Store) Write(
	ctx context.Context,
	path string,
	m *domain.Manifest,
	opts driven.WriteOptions,
) (*driven.WriteResult, error) {
	digest, err := writeAtomic(path, func(w io.Writer) error {
		return encodeRows(ctx, w, m.Rows, !opts.OmitDomain)
	})
	if err != nil {
		return nil, err
	}
	return &driven.WriteResult{Path: path, Digest: digest}, nil
}

// Digest returns the hex SHA-256 of the file at path.
func (s *Store) Digest(_ context.Context, path string) (string, error) {
	return fileDigest(path)
}

// Copy copies src to dst atomically.
func (s *Store) Copy(_ context.Context, src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	_, err = writeAtomic(dst, func(w io.Writer) error {
		_, err := io.Copy(w, in)
		return err
	})
	return err
}

// Remove deletes the file at path.
func (s *Store) Remove(_ context.Context, path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func encodeRows(ctx context.Context, w io.Writer, rows []domain.ManifestRow, withDomain bool) error {
	cw := csv.NewWriter(w)

	header := []string{colID, colDuration, colWav}
	if withDomain {
		header = append(header, colDomain)
	}
	header = append(header, colSemantics, colTranscript)
	if err := cw.Write(header); err != nil {
		return err
	}

	record := make([]string, 0, len(header))
	for i, row := range rows {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		record = append(record[:0], strconv.Itoa(row.ID), formatDuration(row.Duration), row.Wav)
		if withDomain {
			record = append(record, row.Domain)
		}
		record = append(record, row.Semantics, row.Transcript)
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func decodeRows(ctx context.Context, r io.Reader) ([]domain.ManifestRow, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: missing header", domain.ErrMalformedTable)
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrMalformedTable, err)
	}

	idx, err := columnIndex(header, []string{colID, colDuration, colWav, colSemantics, colTranscript})
	if err != nil {
		return nil, err
	}
	domainIdx := indexOf(header, colDomain)

	var rows []domain.ManifestRow
	for line := 2; ; line++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrMalformedTable, err)
		}
		if line%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		id, err := strconv.Atoi(record[idx[colID]])
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: bad ID %q", domain.ErrMalformedTable, line, record[idx[colID]])
		}
		dur, err := strconv.ParseFloat(record[idx[colDuration]], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: bad duration %q", domain.ErrMalformedTable, line, record[idx[colDuration]])
		}

		row := domain.ManifestRow{
			ID:         id,
			Duration:   dur,
			Wav:        record[idx[colWav]],
			Semantics:  record[idx[colSemantics]],
			Transcript: record[idx[colTranscript]],
		}
		if domainIdx >= 0 {
			row.Domain = record[domainIdx]
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// columnIndex maps each required column to its position in header.
func columnIndex(header, required []string) (map[string]int, error) {
	idx := make(map[string]int, len(required))
	var missing []string
	for _, name := range required {
		i := indexOf(header, name)
		if i < 0 {
			missing = append(missing, name)
			continue
		}
		idx[name] = i
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing columns %s", domain.ErrMalformedTable, strings.Join(missing, ", "))
	}
	return idx, nil
}

func indexOf(header []string, name string) int {
	for i, h := range header {
		if strings.TrimSpace(h) == name {
			return i
		}
	}
	return -1
}

// formatDuration renders seconds in shortest round-trip form, keeping a
// decimal point so whole seconds read as floats ("1.0").
func formatDuration(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
