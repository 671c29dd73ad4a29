package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrUnknownSplit", ErrUnknownSplit},
		{"ErrUnknownDomain", ErrUnknownDomain},
		{"ErrCorpusUnavailable", ErrCorpusUnavailable},
		{"ErrMalformedTable", ErrMalformedTable},
		{"ErrAudioUnreadable", ErrAudioUnreadable},
		{"ErrEmptyAudio", ErrEmptyAudio},
		{"ErrBarrierTimeout", ErrBarrierTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

// TestErrors_Uniqueness tests that all errors are distinct
func TestErrors_Uniqueness(t *testing.T) {
	allErrors := []error{
		ErrNotFound,
		ErrInvalidInput,
		ErrUnknownSplit,
		ErrUnknownDomain,
		ErrCorpusUnavailable,
		ErrMalformedTable,
		ErrAudioUnreadable,
		ErrEmptyAudio,
		ErrBarrierTimeout,
	}

	for i, err1 := range allErrors {
		for j, err2 := range allErrors {
			if i != j {
				assert.False(t, errors.Is(err1, err2),
					"Error %v should not match error %v", err1, err2)
			}
		}
	}
}

// TestErrors_WithWrapping tests error wrapping behavior
func TestErrors_WithWrapping(t *testing.T) {
	wrapped := fmt.Errorf("read /data/stop/manifests/train.tsv: %w", ErrMalformedTable)

	assert.True(t, errors.Is(wrapped, ErrMalformedTable))
	assert.Contains(t, wrapped.Error(), "train.tsv")
	assert.Contains(t, wrapped.Error(), "malformed table")
}

func TestErrors_AudioMessages(t *testing.T) {
	assert.Equal(t, "audio unreadable", ErrAudioUnreadable.Error())
	assert.Contains(t, ErrEmptyAudio.Error(), "no samples")
}
