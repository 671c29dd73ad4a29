package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testManifest() *Manifest {
	return &Manifest{
		Key: ManifestKey{Split: SplitTrain, Scope: AllScope(), Type: "direct"},
		Rows: []ManifestRow{
			{ID: 0, Duration: 1.0, Wav: "a.wav", Domain: "timer", Semantics: "[IN:CREATE_TIMER [SL:DATE_TIME for 5 minutes ] ]"},
			{ID: 1, Duration: 2.0, Wav: "b.wav", Domain: "weather", Semantics: "[IN:GET_WEATHER [SL:LOCATION [IN:GET_LOCATION home ] ] ]"},
			{ID: 2, Duration: 1.5, Wav: "c.wav", Domain: "timer", Semantics: "[IN:PAUSE_TIMER [SL:DATE_TIME [IN:GET_TIME now ] ] ]"},
		},
	}
}

func TestIsFlatIntent(t *testing.T) {
	assert.True(t, IsFlatIntent("[IN:GET_WEATHER ]"))
	assert.False(t, IsFlatIntent("[IN:A [SL:B [IN:C ] ] ]"))
	assert.False(t, IsFlatIntent("[SL:B x ]"))
	assert.False(t, IsFlatIntent(""))
}

func TestDurationFromSamples(t *testing.T) {
	assert.Equal(t, 1.0, DurationFromSamples(16000))
	assert.Equal(t, 0.5, DurationFromSamples(8000))
	assert.InDelta(t, 2.345, DurationFromSamples(37520), 1e-9)
}

func TestManifestKey_FileName(t *testing.T) {
	tests := []struct {
		scope Scope
		want  string
	}{
		{AllScope(), "train---type=direct.csv"},
		{FlatScope(), "train---flat-type=direct.csv"},
		{DomainScope(DomainTimer, false), "train-timer-type=direct.csv"},
		{DomainScope(DomainTimer, true), "train-timer-flat-type=direct.csv"},
		{MergedScope(), "train-type=direct.csv"},
	}

	for _, tt := range tests {
		t.Run(tt.scope.String(), func(t *testing.T) {
			key := ManifestKey{Split: SplitTrain, Scope: tt.scope, Type: "direct"}
			assert.Equal(t, tt.want, key.FileName())
		})
	}
}

func TestScope_String(t *testing.T) {
	assert.Equal(t, "all", AllScope().String())
	assert.Equal(t, "flat", FlatScope().String())
	assert.Equal(t, "weather", DomainScope(DomainWeather, false).String())
	assert.Equal(t, "weather+flat", DomainScope(DomainWeather, true).String())
}

func TestManifest_Subset(t *testing.T) {
	m := testManifest()

	flat := m.Subset(FlatScope())
	require.Equal(t, 1, flat.Len())
	assert.Equal(t, 0, flat.Rows[0].ID)
	assert.Equal(t, FlatScope(), flat.Key.Scope)

	timer := m.Subset(DomainScope(DomainTimer, false))
	require.Equal(t, 2, timer.Len())
	assert.Equal(t, []int{0, 2}, []int{timer.Rows[0].ID, timer.Rows[1].ID})

	timerFlat := m.Subset(DomainScope(DomainTimer, true))
	assert.Equal(t, 1, timerFlat.Len())

	assert.Equal(t, 0, m.Subset(DomainScope(DomainMusic, false)).Len())
}

func TestManifest_SubsetDoesNotMutateParent(t *testing.T) {
	m := testManifest()
	sub := m.Subset(DomainScope(DomainTimer, false))
	sub.Renumber(10)

	assert.Equal(t, 0, m.Rows[0].ID)
	assert.Equal(t, 2, m.Rows[2].ID)
}

func TestConcat_PreservesOrderAndDuplicates(t *testing.T) {
	m := testManifest()
	weather := m.Subset(DomainScope(DomainWeather, false))
	timer := m.Subset(DomainScope(DomainTimer, false))

	key := ManifestKey{Split: SplitTrain, Scope: MergedScope(), Type: "direct"}
	merged := Concat(key, weather, timer, nil, weather)

	require.Equal(t, 4, merged.Len())
	assert.Equal(t, []string{"b.wav", "a.wav", "c.wav", "b.wav"},
		[]string{merged.Rows[0].Wav, merged.Rows[1].Wav, merged.Rows[2].Wav, merged.Rows[3].Wav})
	assert.Error(t, merged.Validate())
}

func TestManifest_Renumber(t *testing.T) {
	m := testManifest()
	m.Renumber(5)
	assert.Equal(t, 5, m.Rows[0].ID)
	assert.Equal(t, 7, m.Rows[2].ID)
}

func TestManifest_Validate(t *testing.T) {
	m := testManifest()
	require.NoError(t, m.Validate())

	m.Rows[1].Duration = 0
	assert.ErrorIs(t, m.Validate(), ErrInvalidInput)
}

func TestManifest_LenNil(t *testing.T) {
	var m *Manifest
	assert.Equal(t, 0, m.Len())
}

func TestMergePolicy_Inputs(t *testing.T) {
	p := MergePolicy{}
	keys := p.Inputs(SplitEval, "direct")
	require.Len(t, keys, 1)
	assert.Equal(t, "eval---type=direct.csv", keys[0].FileName())

	p.Flatten = true
	keys = p.Inputs(SplitTest, "direct")
	require.Len(t, keys, 1)
	assert.Equal(t, "test---flat-type=direct.csv", keys[0].FileName())

	p = MergePolicy{Domains: []Domain{DomainWeather, DomainTimer}}
	keys = p.Inputs(SplitTrain, "direct")
	require.Len(t, keys, 2)
	assert.Equal(t, "train-weather-type=direct.csv", keys[0].FileName())
	assert.Equal(t, "train-timer-type=direct.csv", keys[1].FileName())

	p.Flatten = true
	keys = p.Inputs(SplitTrain, "direct")
	assert.Equal(t, "train-weather-flat-type=direct.csv", keys[0].FileName())

	assert.Equal(t, "train-type=direct.csv", p.Output(SplitTrain, "direct").FileName())
}

func TestManifestStamp_Matches(t *testing.T) {
	var nilStamp *ManifestStamp
	assert.False(t, nilStamp.Matches("abc"))

	s := &ManifestStamp{Digest: "abc"}
	assert.True(t, s.Matches("abc"))
	assert.False(t, s.Matches("abd"))
	assert.False(t, (&ManifestStamp{}).Matches(""))
}
