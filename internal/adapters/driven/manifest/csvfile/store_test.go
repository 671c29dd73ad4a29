package csvfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/stopprep/internal/core/domain"
	"github.com/custodia-labs/stopprep/internal/core/ports/driven"
)

func sampleManifest(key domain.ManifestKey) *domain.Manifest {
	return &domain.Manifest{
		Key: key,
		Rows: []domain.ManifestRow{
			{ID: 0, Duration: 1, Wav: "/d/stop/a.wav", Domain: "timer", Semantics: "[IN:CREATE_TIMER ]", Transcript: "set a timer"},
			{ID: 1, Duration: 2.345, Wav: "/d/stop/b.wav", Domain: "music", Semantics: "[IN:PLAY_MUSIC [SL:X, y ] ]", Transcript: "play \"songs\", loud"},
		},
	}
}

func TestStore_WriteRead(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	key := domain.ManifestKey{Split: domain.SplitTrain, Scope: domain.AllScope(), Type: "direct"}
	path := s.Path(t.TempDir(), key)
	m := sampleManifest(key)

	res, err := s.Write(ctx, path, m, driven.WriteOptions{})
	require.NoError(t, err)
	assert.Equal(t, path, res.Path)
	assert.Len(t, res.Digest, 64)

	got, err := s.Read(ctx, path, key)
	require.NoError(t, err)
	assert.Equal(t, m.Rows, got.Rows)
	assert.Equal(t, key, got.Key)
}

func TestStore_WriteFormat(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	key := domain.ManifestKey{Split: domain.SplitTrain, Scope: domain.AllScope(), Type: "direct"}
	path := filepath.Join(t.TempDir(), "out.csv")

	_, err := s.Write(ctx, path, sampleManifest(key), driven.WriteOptions{})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	want := "ID,duration,wav,domain,semantics,transcript\n" +
		"0,1.0,/d/stop/a.wav,timer,[IN:CREATE_TIMER ],set a timer\n" +
		"1,2.345,/d/stop/b.wav,music,\"[IN:PLAY_MUSIC [SL:X, y ] ]\",\"play \"\"songs\"\", loud\"\n"
	assert.Equal(t, want, string(data))
}

func TestStore_WriteOmitDomain(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	key := domain.ManifestKey{Split: domain.SplitTest, Scope: domain.MergedScope(), Type: "direct"}
	path := filepath.Join(t.TempDir(), "merged.csv")

	_, err := s.Write(ctx, path, sampleManifest(key), driven.WriteOptions{OmitDomain: true})
	require.NoError(t, err)

	got, err := s.Read(ctx, path, key)
	require.NoError(t, err)
	require.Len(t, got.Rows, 2)
	assert.Empty(t, got.Rows[0].Domain)
	assert.Equal(t, "set a timer", got.Rows[0].Transcript)
}

func TestStore_DigestMatchesWrite(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	key := domain.ManifestKey{Split: domain.SplitEval, Scope: domain.FlatScope(), Type: "direct"}
	path := filepath.Join(t.TempDir(), "m.csv")

	res, err := s.Write(ctx, path, sampleManifest(key), driven.WriteOptions{})
	require.NoError(t, err)

	digest, err := s.Digest(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, res.Digest, digest)

	// Rewriting identical rows gives identical bytes.
	again, err := s.Write(ctx, path, sampleManifest(key), driven.WriteOptions{})
	require.NoError(t, err)
	assert.Equal(t, res.Digest, again.Digest)
}

func TestStore_WriteLeavesNoTempFiles(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	dir := t.TempDir()
	key := domain.ManifestKey{Split: domain.SplitTrain, Scope: domain.AllScope(), Type: "direct"}

	_, err := s.Write(ctx, s.Path(dir, key), sampleManifest(key), driven.WriteOptions{})
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "train---type=direct.csv", entries[0].Name())
}

func TestStore_WriteCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := NewStore()
	dir := t.TempDir()
	path := filepath.Join(dir, "m.csv")
	key := domain.ManifestKey{Split: domain.SplitTrain, Scope: domain.AllScope(), Type: "direct"}

	_, err := s.Write(ctx, path, sampleManifest(key), driven.WriteOptions{})
	require.ErrorIs(t, err, context.Canceled)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStore_ExistsCopyRemove(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	dir := t.TempDir()
	src := filepath.Join(dir, "src.csv")
	dst := filepath.Join(dir, "out", "dst.csv")

	ok, err := s.Exists(ctx, src)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, os.WriteFile(src, []byte("ID,duration,wav,semantics,transcript\n"), 0o644))
	ok, err = s.Exists(ctx, src)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, s.Copy(ctx, src, dst))
	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "ID,duration,wav,semantics,transcript\n", string(data))

	require.NoError(t, s.Remove(ctx, src))
	ok, err = s.Exists(ctx, src)
	require.NoError(t, err)
	assert.False(t, ok)

	// Removing twice is fine.
	assert.NoError(t, s.Remove(ctx, src))
}

func TestStore_ExistsDirectory(t *testing.T) {
	ok, err := NewStore().Exists(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_ReadMalformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"empty", ""},
		{"missing columns", "ID,duration\n0,1.0\n"},
		{"bad id", "ID,duration,wav,semantics,transcript\nx,1.0,a,b,c\n"},
		{"bad duration", "ID,duration,wav,semantics,transcript\n0,long,a,b,c\n"},
		{"ragged row", "ID,duration,wav,semantics,transcript\n0,1.0,a\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "m.csv")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			_, err := NewStore().Read(context.Background(), path, domain.ManifestKey{})
			assert.ErrorIs(t, err, domain.ErrMalformedTable)
		})
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{1, "1.0"},
		{0.5, "0.5"},
		{2.345, "2.345"},
		{3.0000625, "3.0000625"},
		{12, "12.0"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, formatDuration(tt.in))
	}
}
