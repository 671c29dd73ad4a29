package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/stopprep/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/stopprep/internal/core/domain"
)

const (
	corpusRoot = "/data/stop"
	trainTable = "/data/stop/manifests/train.tsv"
	outDir     = "/data/stop/manifests/speechbrain"
)

type builderFixture struct {
	raw     *fakeRawReader
	audio   *mockAudioReader
	store   *memory.ManifestStore
	ledger  *memory.ManifestLedger
	builder *SplitManifestBuilder
}

func newBuilderFixture(audio *mockAudioReader) *builderFixture {
	f := &builderFixture{
		raw:    newFakeRawReader(),
		audio:  audio,
		store:  memory.NewManifestStore(),
		ledger: memory.NewManifestLedger(),
	}
	cache := NewManifestCache(f.store, f.ledger, false, "run")
	f.builder = NewSplitManifestBuilder(f.raw, f.audio, f.store, cache)
	return f
}

func trainParams() BuildParams {
	return BuildParams{Split: domain.SplitTrain, CorpusRoot: corpusRoot, OutputDir: outDir, Type: "direct"}
}

func TestSplitManifestBuilder_Build(t *testing.T) {
	audio := &mockAudioReader{}
	audio.On("SampleCount", mock.Anything, "/data/stop/train/timer_train/00001.wav").Return(16000, nil)
	audio.On("SampleCount", mock.Anything, "/data/stop/train/alarm_train/00002.wav").Return(40000, nil)
	f := newBuilderFixture(audio)
	f.raw.add(trainTable,
		raw("train/timer_train_0/00001.wav", "timer", "[IN:CREATE_TIMER ]", "set a timer"),
		raw("train/alarm_train_0/00002.wav", "alarm", "[IN:CREATE_ALARM [SL:DATE_TIME [IN:GET_TIME ] ] ]", "wake me at six"),
	)

	res, err := f.builder.Build(context.Background(), trainParams(), 10)

	require.NoError(t, err)
	assert.False(t, res.Cached)
	assert.Equal(t, outDir+"/train---type=direct.csv", res.Path)
	assert.Equal(t, 12, res.NextOffset)
	require.Equal(t, 2, res.Manifest.Len())

	assert.Equal(t, domain.ManifestRow{
		ID:         10,
		Duration:   1.0,
		Wav:        "/data/stop/train/timer_train/00001.wav",
		Domain:     "timer",
		Semantics:  "[IN:CREATE_TIMER ]",
		Transcript: "set a timer",
	}, res.Manifest.Rows[0])
	assert.Equal(t, 11, res.Manifest.Rows[1].ID)
	assert.InDelta(t, 2.5, res.Manifest.Rows[1].Duration, 1e-9)

	// Written and stamped.
	stored, err := f.store.Read(context.Background(), res.Path, res.Key)
	require.NoError(t, err)
	assert.Equal(t, res.Manifest.Rows, stored.Rows)
	_, err = f.ledger.Get(context.Background(), res.Path)
	assert.NoError(t, err)
	audio.AssertExpectations(t)
}

func TestSplitManifestBuilder_RowCountMatchesTable(t *testing.T) {
	f := newBuilderFixture(audioReturning(8000))
	records := make([]domain.RawRecord, 25)
	for i := range records {
		records[i] = raw("train/music_train_0/x.wav", "music", "[IN:PLAY_MUSIC ]", "play")
	}
	f.raw.add(trainTable, records...)

	res, err := f.builder.Build(context.Background(), trainParams(), 0)

	require.NoError(t, err)
	assert.Equal(t, 25, res.Manifest.Len())
	assert.Equal(t, 25, res.NextOffset)
	assert.InDelta(t, 0.5, res.Manifest.Rows[0].Duration, 1e-9)
}

func TestSplitManifestBuilder_CacheHitSkipsSources(t *testing.T) {
	audio := audioReturning(16000)
	f := newBuilderFixture(audio)
	f.raw.add(trainTable,
		raw("train/timer_train_0/1.wav", "timer", "[IN:A ]", "a"),
		raw("train/timer_train_0/2.wav", "timer", "[IN:B ]", "b"),
	)

	first, err := f.builder.Build(context.Background(), trainParams(), 0)
	require.NoError(t, err)
	digest, err := f.store.Digest(context.Background(), first.Path)
	require.NoError(t, err)

	second, err := f.builder.Build(context.Background(), trainParams(), 5)
	require.NoError(t, err)

	assert.True(t, second.Cached)
	assert.Equal(t, 1, f.raw.total())
	audio.AssertNumberOfCalls(t, "SampleCount", 2)
	assert.Equal(t, 1, f.store.Writes(first.Path))
	assert.Equal(t, 7, second.NextOffset)
	assert.Equal(t, first.Manifest.Rows, second.Manifest.Rows)

	again, err := f.store.Digest(context.Background(), first.Path)
	require.NoError(t, err)
	assert.Equal(t, digest, again)
}

func TestSplitManifestBuilder_Errors(t *testing.T) {
	t.Run("missing table", func(t *testing.T) {
		f := newBuilderFixture(audioReturning(1))

		_, err := f.builder.Build(context.Background(), trainParams(), 0)

		require.Error(t, err)
		assert.Contains(t, err.Error(), trainTable)
	})

	t.Run("malformed table", func(t *testing.T) {
		f := newBuilderFixture(audioReturning(1))
		f.raw.err = domain.ErrMalformedTable

		_, err := f.builder.Build(context.Background(), trainParams(), 0)

		assert.ErrorIs(t, err, domain.ErrMalformedTable)
	})

	t.Run("unreadable audio", func(t *testing.T) {
		audio := &mockAudioReader{}
		audio.On("SampleCount", mock.Anything, mock.Anything).Return(0, domain.ErrAudioUnreadable)
		f := newBuilderFixture(audio)
		f.raw.add(trainTable, raw("train/a_train_0/x.wav", "timer", "[IN:A ]", "a"))

		_, err := f.builder.Build(context.Background(), trainParams(), 0)

		assert.ErrorIs(t, err, domain.ErrAudioUnreadable)
		assert.Empty(t, f.store.Paths())
	})

	t.Run("empty audio", func(t *testing.T) {
		f := newBuilderFixture(audioReturning(0))
		f.raw.add(trainTable, raw("train/a_train_0/x.wav", "timer", "[IN:A ]", "a"))

		_, err := f.builder.Build(context.Background(), trainParams(), 0)

		require.ErrorIs(t, err, domain.ErrEmptyAudio)
		assert.Contains(t, err.Error(), "/data/stop/train/a_train/x.wav")
		assert.Empty(t, f.store.Paths())
	})

	t.Run("cancelled", func(t *testing.T) {
		f := newBuilderFixture(audioReturning(1))
		f.raw.add(trainTable, raw("train/a_train_0/x.wav", "timer", "[IN:A ]", "a"))
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := f.builder.Build(ctx, trainParams(), 0)

		assert.ErrorIs(t, err, context.Canceled)
	})
}
