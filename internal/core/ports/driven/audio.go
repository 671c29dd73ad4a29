package driven

import "context"

// AudioReader decodes audio files just far enough to count samples.
// Feature extraction is out of scope; only the sample count is needed
// to derive durations.
type AudioReader interface {
	// SampleCount returns the number of samples per channel in the file.
	SampleCount(ctx context.Context, path string) (int, error)
}
