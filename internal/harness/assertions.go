package harness

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"github.com/roach88/ebb/internal/trace"
)

// DefaultTolerance is the numeric tolerance used when an assertion sets none.
const DefaultTolerance = 1e-6

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Probe    string
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s (probe %s)\n", e.Type, e.Probe)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	return buf.String()
}

// EvaluateAssertions checks every assertion against the trace and returns
// one message per failure.
func EvaluateAssertions(tr *trace.Trace, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluateAssertion(tr, a); err != nil {
			errs = append(errs, fmt.Sprintf("assertion %d: %s", i, err))
		}
	}
	return errs
}

func evaluateAssertion(tr *trace.Trace, a Assertion) error {
	switch a.Type {
	case AssertValue:
		return assertValue(tr, a)
	case AssertRange:
		return assertRange(tr, a)
	case AssertCount:
		return assertCount(tr, a)
	}
	return fmt.Errorf("unknown assertion type %q", a.Type)
}

// assertValue checks the probe's output at a single tick.
func assertValue(tr *trace.Trace, a Assertion) error {
	sample, ok := tr.At(a.Tick)
	if !ok {
		return &AssertionError{
			Type:     AssertValue,
			Probe:    a.Probe,
			Expected: fmt.Sprintf("%v at tick %d", a.Value, a.Tick),
			Actual:   fmt.Sprintf("tick %d not in trace (%d samples)", a.Tick, tr.Len()),
		}
	}

	got := sample.Values[a.Probe]
	if !matches(a.Value, got, tolerance(a)) {
		return &AssertionError{
			Type:     AssertValue,
			Probe:    a.Probe,
			Expected: fmt.Sprintf("%v at tick %d", a.Value, a.Tick),
			Actual:   fmt.Sprintf("%v", got),
		}
	}
	return nil
}

// assertRange checks that every output lies within [Min, Max].
func assertRange(tr *trace.Trace, a Assertion) error {
	tol := tolerance(a)
	for _, s := range tr.Samples {
		got := s.Values[a.Probe]
		f, ok := toFloat(got)
		if !ok || f < *a.Min-tol || f > *a.Max+tol {
			return &AssertionError{
				Type:     AssertRange,
				Probe:    a.Probe,
				Expected: fmt.Sprintf("every value within [%v, %v]", *a.Min, *a.Max),
				Actual:   fmt.Sprintf("%v at tick %d", got, s.Tick),
			}
		}
	}
	return nil
}

// assertCount checks how many ticks produced the expected value.
func assertCount(tr *trace.Trace, a Assertion) error {
	tol := tolerance(a)
	count := 0
	for _, s := range tr.Samples {
		if matches(a.Value, s.Values[a.Probe], tol) {
			count++
		}
	}

	if count != a.Count {
		return &AssertionError{
			Type:     AssertCount,
			Probe:    a.Probe,
			Expected: fmt.Sprintf("%v exactly %d times", a.Value, a.Count),
			Actual:   fmt.Sprintf("%d times", count),
		}
	}
	return nil
}

func tolerance(a Assertion) float64 {
	if a.Tolerance > 0 {
		return a.Tolerance
	}
	return DefaultTolerance
}

// matches compares numbers within tol and lists element by element. Anything
// else is compared by canonical encoding.
func matches(want, got any, tol float64) bool {
	wf, wok := toFloat(want)
	gf, gok := toFloat(got)
	if wok && gok {
		return math.Abs(wf-gf) <= tol
	}
	if wok != gok {
		return false
	}

	wl, wok := want.([]any)
	gl, gok := got.([]any)
	if wok && gok {
		if len(wl) != len(gl) {
			return false
		}
		for i := range wl {
			if !matches(wl[i], gl[i], tol) {
				return false
			}
		}
		return true
	}

	wb, err := trace.MarshalCanonical(want)
	if err != nil {
		return false
	}
	gb, err := trace.MarshalCanonical(got)
	if err != nil {
		return false
	}
	return bytes.Equal(wb, gb)
}
