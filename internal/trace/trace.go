package trace

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
)

// Sample holds every probe's output for one tick.
type Sample struct {
	Tick   int64          `json:"tick"`
	Values map[string]any `json:"values"`
}

// Trace is the ordered list of samples for one scenario run.
type Trace struct {
	Scenario string   `json:"scenario"`
	Samples  []Sample `json:"samples"`
}

// New creates an empty trace for the named scenario.
func New(scenario string) *Trace {
	return &Trace{
		Scenario: scenario,
		Samples:  []Sample{},
	}
}

// Append adds a sample. The values map is copied.
func (t *Trace) Append(tick int64, values map[string]any) {
	t.Samples = append(t.Samples, Sample{Tick: tick, Values: maps.Clone(values)})
}

// Len returns the number of samples.
func (t *Trace) Len() int {
	return len(t.Samples)
}

// At returns the sample for tick, if present.
func (t *Trace) At(tick int64) (Sample, bool) {
	for _, s := range t.Samples {
		if s.Tick == tick {
			return s, true
		}
	}
	return Sample{}, false
}

// Canonical returns the canonical JSON encoding of the whole trace.
func (t *Trace) Canonical() ([]byte, error) {
	samples := make([]any, len(t.Samples))
	for i, s := range t.Samples {
		samples[i] = s.canonicalMap()
	}
	return MarshalCanonical(map[string]any{
		"scenario": t.Scenario,
		"samples":  samples,
	})
}

func (s Sample) canonicalMap() map[string]any {
	values := s.Values
	if values == nil {
		values = map[string]any{}
	}
	return map[string]any{
		"tick":   s.Tick,
		"values": values,
	}
}

// EncodeValues returns the canonical encoding of one sample's values.
// Used by the store to persist samples row by row.
func EncodeValues(values map[string]any) ([]byte, error) {
	if values == nil {
		values = map[string]any{}
	}
	return MarshalCanonical(values)
}

// DecodeValues parses a canonical values object. Integral numbers decode to
// int64 and all others to float64, so a decoded value re-encodes to the same
// bytes.
func DecodeValues(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode values: %w", err)
	}

	out := make(map[string]any, len(raw))
	for k, v := range raw {
		converted, err := fromJSON(v)
		if err != nil {
			return nil, fmt.Errorf("decode values[%q]: %w", k, err)
		}
		out[k] = converted
	}
	return out, nil
}

func fromJSON(v any) (any, error) {
	switch val := v.(type) {
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return i, nil
		}
		f, err := val.Float64()
		if err != nil {
			return nil, err
		}
		return f, nil
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			converted, err := fromJSON(elem)
			if err != nil {
				return nil, err
			}
			out[i] = converted
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			converted, err := fromJSON(elem)
			if err != nil {
				return nil, err
			}
			out[k] = converted
		}
		return out, nil
	default:
		return val, nil
	}
}

// Diff describes the first difference between two traces, or returns ""
// when their canonical encodings match.
func Diff(want, got *Trace) (string, error) {
	if want.Scenario != got.Scenario {
		return fmt.Sprintf("scenario: %q != %q", want.Scenario, got.Scenario), nil
	}

	n := min(len(want.Samples), len(got.Samples))
	for i := 0; i < n; i++ {
		w, g := want.Samples[i], got.Samples[i]
		if w.Tick != g.Tick {
			return fmt.Sprintf("sample %d: tick %d != %d", i, w.Tick, g.Tick), nil
		}

		keys := slices.Sorted(maps.Keys(w.Values))
		for k := range g.Values {
			if _, ok := w.Values[k]; !ok {
				keys = append(keys, k)
			}
		}
		for _, k := range keys {
			wv, wok := w.Values[k]
			gv, gok := g.Values[k]
			if !wok || !gok {
				return fmt.Sprintf("tick %d: probe %q present in only one trace", w.Tick, k), nil
			}
			wb, err := MarshalCanonical(wv)
			if err != nil {
				return "", fmt.Errorf("tick %d probe %q: %w", w.Tick, k, err)
			}
			gb, err := MarshalCanonical(gv)
			if err != nil {
				return "", fmt.Errorf("tick %d probe %q: %w", w.Tick, k, err)
			}
			if !bytes.Equal(wb, gb) {
				return fmt.Sprintf("tick %d: probe %q: %s != %s", w.Tick, k, wb, gb), nil
			}
		}
	}

	if len(want.Samples) != len(got.Samples) {
		return fmt.Sprintf("sample count: %d != %d", len(want.Samples), len(got.Samples)), nil
	}
	return "", nil
}
