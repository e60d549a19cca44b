package trace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTrace() *Trace {
	tr := New("orbit")
	tr.Append(1, map[string]any{"x": 0.5, "on": true, "frame": "one"})
	tr.Append(2, map[string]any{"x": 0.75, "on": false, "frame": "two"})
	return tr
}

func TestTrace_Canonical(t *testing.T) {
	tr := New("tiny")
	tr.Append(1, map[string]any{"b": 2, "a": 1.5})

	data, err := tr.Canonical()
	require.NoError(t, err)
	assert.Equal(t,
		`{"samples":[{"tick":1,"values":{"a":1.500000,"b":2}}],"scenario":"tiny"}`,
		string(data))
}

func TestTrace_AppendCopiesValues(t *testing.T) {
	tr := New("copy")
	values := map[string]any{"x": 1}
	tr.Append(1, values)
	values["x"] = 2

	assert.Equal(t, 1, tr.Samples[0].Values["x"])
}

func TestTrace_At(t *testing.T) {
	tr := sampleTrace()

	s, ok := tr.At(2)
	require.True(t, ok)
	assert.Equal(t, "two", s.Values["frame"])

	_, ok = tr.At(3)
	assert.False(t, ok)
	assert.Equal(t, 2, tr.Len())
}

func TestEncodeDecodeValues(t *testing.T) {
	values := map[string]any{
		"wave":   0.123456789,
		"count":  3,
		"on":     true,
		"frame":  "one",
		"colors": []any{255, 0, 0},
	}

	data, err := EncodeValues(values)
	require.NoError(t, err)

	decoded, err := DecodeValues(data)
	require.NoError(t, err)
	assert.Equal(t, int64(3), decoded["count"])
	assert.Equal(t, []any{int64(255), int64(0), int64(0)}, decoded["colors"])

	again, err := EncodeValues(decoded)
	require.NoError(t, err)
	assert.Equal(t, string(data), string(again), "decoded values re-encode identically")
}

func TestDiff_Equal(t *testing.T) {
	diff, err := Diff(sampleTrace(), sampleTrace())
	require.NoError(t, err)
	assert.Empty(t, diff)
}

func TestDiff_WithinPrecisionIsEqual(t *testing.T) {
	a := New("p")
	a.Append(1, map[string]any{"x": 0.1 + 0.2})
	b := New("p")
	b.Append(1, map[string]any{"x": 0.3})

	diff, err := Diff(a, b)
	require.NoError(t, err)
	assert.Empty(t, diff)
}

func TestDiff_ValueMismatch(t *testing.T) {
	got := sampleTrace()
	got.Samples[1].Values["x"] = 0.8

	diff, err := Diff(sampleTrace(), got)
	require.NoError(t, err)
	assert.Equal(t, `tick 2: probe "x": 0.750000 != 0.800000`, diff)
}

func TestDiff_Structure(t *testing.T) {
	short := sampleTrace()
	short.Samples = short.Samples[:1]
	diff, err := Diff(sampleTrace(), short)
	require.NoError(t, err)
	assert.Equal(t, "sample count: 2 != 1", diff)

	renamed := sampleTrace()
	renamed.Scenario = "other"
	diff, err = Diff(sampleTrace(), renamed)
	require.NoError(t, err)
	assert.Contains(t, diff, "scenario")

	extra := sampleTrace()
	extra.Samples[0].Values["y"] = 1
	diff, err = Diff(sampleTrace(), extra)
	require.NoError(t, err)
	assert.Equal(t, `tick 1: probe "y" present in only one trace`, diff)
}
