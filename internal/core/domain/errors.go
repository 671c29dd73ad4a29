package domain

import "errors"

// Domain errors represent preparation failures.
// Infrastructure errors are wrapped around these with %w.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnknownSplit indicates a split outside train/eval/test.
	ErrUnknownSplit = errors.New("unknown split")

	// ErrUnknownDomain indicates a domain outside the corpus vocabulary.
	ErrUnknownDomain = errors.New("unknown domain")

	// Acquisition Errors.

	// ErrCorpusUnavailable indicates the corpus could not be downloaded or extracted.
	ErrCorpusUnavailable = errors.New("corpus unavailable")

	// Table Errors.

	// ErrMalformedTable indicates a source or manifest table could not be parsed.
	ErrMalformedTable = errors.New("malformed table")

	// Audio Errors.

	// ErrAudioUnreadable indicates an audio file could not be decoded.
	ErrAudioUnreadable = errors.New("audio unreadable")

	// ErrEmptyAudio indicates an audio file decoded to zero samples.
	ErrEmptyAudio = errors.New("audio has no samples")

	// Coordination Errors.

	// ErrBarrierTimeout indicates a waiting rank gave up on the main rank.
	ErrBarrierTimeout = errors.New("barrier timeout")
)
