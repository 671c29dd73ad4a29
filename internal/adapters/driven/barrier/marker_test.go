package barrier

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/stopprep/internal/core/domain"
)

func TestNew_RequiresToken(t *testing.T) {
	_, err := New(t.TempDir(), "  ", time.Second)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = New(t.TempDir(), "a\nb", time.Second)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestNew_DefaultTimeout(t *testing.T) {
	b, err := New(t.TempDir(), "job-1", 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultTimeout, b.timeout)
}

func TestSignal_WritesMarker(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "save")
	b, err := New(dir, "job-1", time.Second)
	require.NoError(t, err)

	require.NoError(t, b.Signal("run-42", nil))

	data, err := os.ReadFile(filepath.Join(dir, MarkerName))
	require.NoError(t, err)
	assert.Equal(t, "job-1\nok\nrun-42\n", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp marker left behind")
}

func TestWait_MarkerAlreadyPresent(t *testing.T) {
	dir := t.TempDir()
	b, err := New(dir, "job-1", time.Second)
	require.NoError(t, err)
	require.NoError(t, b.Signal("run-1", nil))

	res, err := b.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "run-1", res.RunID)
	assert.False(t, res.Failed)
}

func TestWait_ReleasedBySignal(t *testing.T) {
	dir := t.TempDir()
	primary, err := New(dir, "job-1", 5*time.Second)
	require.NoError(t, err)
	waiter, err := New(dir, "job-1", 5*time.Second)
	require.NoError(t, err)

	done := make(chan *Result, 1)
	errs := make(chan error, 1)
	go func() {
		res, werr := waiter.Wait(context.Background())
		errs <- werr
		done <- res
	}()

	time.Sleep(100 * time.Millisecond)
	require.NoError(t, primary.Signal("run-7", nil))

	select {
	case werr := <-errs:
		require.NoError(t, werr)
		assert.Equal(t, "run-7", (<-done).RunID)
	case <-time.After(5 * time.Second):
		t.Fatal("waiter was not released")
	}
}

func TestWait_IgnoresMarkerFromOtherJob(t *testing.T) {
	dir := t.TempDir()
	old, err := New(dir, "job-old", time.Second)
	require.NoError(t, err)
	require.NoError(t, old.Signal("run-old", nil))

	b, err := New(dir, "job-new", 200*time.Millisecond)
	require.NoError(t, err)

	_, err = b.Wait(context.Background())
	assert.ErrorIs(t, err, domain.ErrBarrierTimeout)
}

func TestWait_MainFailure(t *testing.T) {
	dir := t.TempDir()
	b, err := New(dir, "job-1", time.Second)
	require.NoError(t, err)
	require.NoError(t, b.Signal("", errors.New("corpus unavailable:\nno network")))

	res, err := b.Wait(context.Background())
	require.Error(t, err)
	assert.True(t, res.Failed)
	assert.Contains(t, err.Error(), "corpus unavailable: no network")
}

func TestWait_ContextCancelled(t *testing.T) {
	b, err := New(t.TempDir(), "job-1", time.Minute)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err = b.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestReset(t *testing.T) {
	dir := t.TempDir()
	b, err := New(dir, "job-1", time.Second)
	require.NoError(t, err)

	// nothing to remove
	require.NoError(t, b.Reset())

	require.NoError(t, b.Signal("run-1", nil))
	require.NoError(t, b.Reset())
	assert.NoFileExists(t, b.Path())
}

func TestParseMarker(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    *Result
		wantErr bool
	}{
		{name: "ok", data: "tok\nok\nrun\n", want: &Result{Token: "tok", RunID: "run"}},
		{name: "failed", data: "tok\nfailed\nboom\n", want: &Result{Token: "tok", RunID: "boom", Failed: true}},
		{name: "no trailing newline", data: "tok\nok\nrun", want: &Result{Token: "tok", RunID: "run"}},
		{name: "truncated", data: "tok\nok", wantErr: true},
		{name: "empty", data: "", wantErr: true},
		{name: "bad status", data: "tok\nmaybe\nrun\n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseMarker([]byte(tt.data))
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrMalformedTable)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
