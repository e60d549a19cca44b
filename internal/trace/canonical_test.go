package trace

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonicalBasic(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{"string", "hello", `"hello"`},
		{"empty string", "", `""`},
		{"int", 42, "42"},
		{"int64", int64(-100), "-100"},
		{"bool true", true, "true"},
		{"bool false", false, "false"},
		{"float", 0.5, "0.500000"},
		{"float rounds", 2.0 / 3.0, "0.666667"},
		{"float32", float32(1.5), "1.500000"},
		{"whole float", 10.0, "10.000000"},
		{"tiny negative is zero", -1e-12, "0.000000"},
		{"json int", json.Number("7"), "7"},
		{"json float", json.Number("0.25"), "0.250000"},
		{"empty array", []any{}, "[]"},
		{"empty object", map[string]any{}, "{}"},
		{"array", []any{1, "a", true}, `[1,"a",true]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := MarshalCanonical(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
		})
	}
}

func TestMarshalCanonicalSortedKeys(t *testing.T) {
	obj := map[string]any{
		"zebra": 1,
		"alpha": map[string]any{"b": 1, "a": 2},
		"beta":  3,
	}

	result, err := MarshalCanonical(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"alpha":{"a":2,"b":1},"beta":3,"zebra":1}`, string(result))
}

func TestMarshalCanonicalNoHTMLEscape(t *testing.T) {
	result, err := MarshalCanonical("<a & b>")
	require.NoError(t, err)
	assert.Equal(t, `"<a & b>"`, string(result))
}

func TestMarshalCanonicalNFC(t *testing.T) {
	// "e" + combining acute accent normalizes to the precomposed form.
	result, err := MarshalCanonical("e\u0301")
	require.NoError(t, err)
	assert.Equal(t, "\"\u00e9\"", string(result))
}

func TestMarshalCanonicalRejects(t *testing.T) {
	inputs := map[string]any{
		"nil":         nil,
		"nan":         math.NaN(),
		"inf":         math.Inf(1),
		"struct":      struct{}{},
		"nested nil":  []any{1, nil},
		"typed slice": []int{1, 2},
	}

	for name, in := range inputs {
		t.Run(name, func(t *testing.T) {
			_, err := MarshalCanonical(in)
			assert.Error(t, err)
		})
	}
}
