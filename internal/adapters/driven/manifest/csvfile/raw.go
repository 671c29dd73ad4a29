package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/custodia-labs/stopprep/internal/core/domain"
	"github.com/custodia-labs/stopprep/internal/core/ports/driven"
)

// Ensure RawReader implements the interface.
var _ driven.RawTableReader = (*RawReader)(nil)

// RawReader parses the corpus' tab-separated metadata tables.
type RawReader struct{}

// NewRawReader creates a raw table reader.
func NewRawReader() *RawReader {
	return &RawReader{}
}

// ReadRaw parses the table at path. Extra columns are ignored; the four
// required columns must be present and every row must have the header's width.
func (r *RawReader) ReadRaw(ctx context.Context, path string) ([]domain.RawRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := decodeRaw(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

func decodeRaw(ctx context.Context, r io.Reader) ([]domain.RawRecord, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: missing header", domain.ErrMalformedTable)
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrMalformedTable, err)
	}

	idx, err := columnIndex(header, []string{
		domain.ColumnFileID,
		domain.ColumnDomain,
		domain.ColumnSemantics,
		domain.ColumnTranscript,
	})
	if err != nil {
		return nil, err
	}

	var out []domain.RawRecord
	for n := 0; ; n++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrMalformedTable, err)
		}
		if n%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		out = append(out, domain.RawRecord{
			FileID:     record[idx[domain.ColumnFileID]],
			Domain:     record[idx[domain.ColumnDomain]],
			Semantics:  record[idx[domain.ColumnSemantics]],
			Transcript: record[idx[domain.ColumnTranscript]],
		})
	}

	return out, nil
}
