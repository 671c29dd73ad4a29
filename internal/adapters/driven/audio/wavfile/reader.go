// Package wavfile reads sample counts from RIFF/WAVE files.
package wavfile

import (
	"context"
	"fmt"
	"os"

	"github.com/go-audio/wav"

	"github.com/custodia-labs/stopprep/internal/core/domain"
	"github.com/custodia-labs/stopprep/internal/core/ports/driven"
)

// Ensure Reader implements the interface.
var _ driven.AudioReader = (*Reader)(nil)

// Reader decodes WAV headers to count samples per channel.
type Reader struct{}

// NewReader creates a WAV reader.
func NewReader() *Reader {
	return &Reader{}
}

// SampleCount returns the number of samples per channel in the file at path.
// Decoding errors wrap domain.ErrAudioUnreadable.
func (r *Reader) SampleCount(ctx context.Context, path string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", domain.ErrAudioUnreadable, path, err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	dec.ReadInfo()
	if err := dec.Err(); err != nil {
		return 0, fmt.Errorf("%w: %s: %w", domain.ErrAudioUnreadable, path, err)
	}
	if dec.NumChans < 1 || dec.BitDepth < 8 {
		return 0, fmt.Errorf("%w: %s: bad format (%d channels, %d bits)",
			domain.ErrAudioUnreadable, path, dec.NumChans, dec.BitDepth)
	}
	if err := dec.FwdToPCM(); err != nil {
		return 0, fmt.Errorf("%w: %s: no PCM data: %w", domain.ErrAudioUnreadable, path, err)
	}

	// One frame holds a sample for every channel.
	frameBytes := int(dec.NumChans) * int(dec.BitDepth) / 8
	return int(dec.PCMLen()) / frameBytes, nil
}
