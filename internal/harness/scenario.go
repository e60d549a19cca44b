package harness

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/roach88/ebb/internal/engine"
)

//go:embed schema.cue
var schemaCUE string

// Scenario defines a deterministic probe run.
// It stands in for the host loop: Ticks steps, each advancing the engine once
// and then evaluating every probe in order.
type Scenario struct {
	// Name uniquely identifies this scenario. Golden files are keyed by it.
	Name string `yaml:"name" json:"name"`

	// Description explains what this scenario demonstrates.
	Description string `yaml:"description" json:"description"`

	// Ticks is the number of steps to run. Must be positive.
	Ticks int `yaml:"ticks" json:"ticks"`

	// Probes are evaluated in declaration order every step.
	Probes []Probe `yaml:"probes" json:"probes"`

	// Resets lists ticks at which every transition probe is re-anchored.
	Resets []int64 `yaml:"resets,omitempty" json:"resets,omitempty"`

	// Assertions validate the resulting trace.
	Assertions []Assertion `yaml:"assertions,omitempty" json:"assertions,omitempty"`
}

// Probe is one primitive call made every step.
// Pointer fields are optional; nil means "use the primitive's default".
type Probe struct {
	// Name labels the probe's output in the trace.
	Name string `yaml:"name" json:"name"`

	// Primitive is one of frames, delay, throttle, transition, blink, wave, bounce.
	Primitive string `yaml:"primitive" json:"primitive"`

	// ID is the engine identifier for stateful primitives. Defaults to Name.
	ID string `yaml:"id,omitempty" json:"id,omitempty"`

	// Values is the frames sequence, or the live-value script for delay and
	// throttle (cycled by step) when no input is given.
	Values []any `yaml:"values,omitempty" json:"values,omitempty"`

	// Input names an earlier probe whose current output is the live value.
	Input string `yaml:"input,omitempty" json:"input,omitempty"`

	// Inputs names several earlier probes; the live value is the list of
	// their current outputs, in order. Mutually exclusive with Input.
	Inputs []string `yaml:"inputs,omitempty" json:"inputs,omitempty"`

	// FromInput, ToInput, MinInput and MaxInput name earlier probes whose
	// current numeric output replaces the matching setting every step.
	FromInput string `yaml:"from_input,omitempty" json:"from_input,omitempty"`
	ToInput   string `yaml:"to_input,omitempty" json:"to_input,omitempty"`
	MinInput  string `yaml:"min_input,omitempty" json:"min_input,omitempty"`
	MaxInput  string `yaml:"max_input,omitempty" json:"max_input,omitempty"`

	FPS       *int     `yaml:"fps,omitempty" json:"fps,omitempty"`
	Time      *int     `yaml:"time,omitempty" json:"time,omitempty"`
	From      *float64 `yaml:"from,omitempty" json:"from,omitempty"`
	To        *float64 `yaml:"to,omitempty" json:"to,omitempty"`
	Min       *float64 `yaml:"min,omitempty" json:"min,omitempty"`
	Max       *float64 `yaml:"max,omitempty" json:"max,omitempty"`
	Rate      *int     `yaml:"rate,omitempty" json:"rate,omitempty"`
	On        *int     `yaml:"on,omitempty" json:"on,omitempty"`
	Off       *int     `yaml:"off,omitempty" json:"off,omitempty"`
	Wave      string   `yaml:"wave,omitempty" json:"wave,omitempty"`
	Transform string   `yaml:"transform,omitempty" json:"transform,omitempty"`
}

// Assertion validates the trace.
type Assertion struct {
	// Type specifies the assertion type:
	// - "value": output at Tick equals Value
	// - "range": every output within [Min, Max]
	// - "count": output equals Value on exactly Count ticks
	Type string `yaml:"type" json:"type"`

	// Probe is the probe name the assertion reads.
	Probe string `yaml:"probe" json:"probe"`

	// Tick is the tick to inspect (used by value).
	Tick int64 `yaml:"tick,omitempty" json:"tick,omitempty"`

	// Value is the expected output (used by value and count).
	Value any `yaml:"value,omitempty" json:"value,omitempty"`

	// Tolerance is the allowed numeric difference. Default: DefaultTolerance.
	Tolerance float64 `yaml:"tolerance,omitempty" json:"tolerance,omitempty"`

	// Min and Max bound the output (used by range).
	Min *float64 `yaml:"min,omitempty" json:"min,omitempty"`
	Max *float64 `yaml:"max,omitempty" json:"max,omitempty"`

	// Count is the expected number of matching ticks (used by count).
	Count int `yaml:"count,omitempty" json:"count,omitempty"`
}

// Primitive names accepted in probes.
const (
	PrimitiveFrames     = "frames"
	PrimitiveDelay      = "delay"
	PrimitiveThrottle   = "throttle"
	PrimitiveTransition = "transition"
	PrimitiveBlink      = "blink"
	PrimitiveWave       = "wave"
	PrimitiveBounce     = "bounce"
)

// Primitives lists every primitive name in a stable order.
var Primitives = []string{
	PrimitiveFrames,
	PrimitiveDelay,
	PrimitiveThrottle,
	PrimitiveTransition,
	PrimitiveBlink,
	PrimitiveWave,
	PrimitiveBounce,
}

// Assertion type constants.
const (
	AssertValue = "value"
	AssertRange = "range"
	AssertCount = "count"
)

// IsScenarioFile reports whether path has a scenario extension
// (.yaml, .yml or .cue).
func IsScenarioFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".cue":
		return true
	}
	return false
}

// LoadScenario reads and parses a scenario file. The format is chosen by
// extension: .cue files are compiled and checked against the scenario
// schema, anything else is parsed as strict YAML.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	if strings.ToLower(filepath.Ext(path)) == ".cue" {
		return ParseCUE(path, data)
	}
	return ParseYAML(data)
}

// ParseYAML parses and validates a YAML scenario.
// Unknown fields are rejected to catch typos like "probe:" vs "probes:".
func ParseYAML(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := Validate(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// ParseCUE compiles a CUE scenario, unifies it with the #Scenario schema and
// decodes the concrete result. A top-level "scenario" field is used when
// present, otherwise the whole file is the scenario.
func ParseCUE(filename string, data []byte) (*Scenario, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("failed to compile scenario schema: %w", err)
	}

	value := ctx.CompileBytes(data, cue.Filename(filename))
	if err := value.Err(); err != nil {
		return nil, fmt.Errorf("failed to compile CUE: %w", err)
	}
	if nested := value.LookupPath(cue.ParsePath("scenario")); nested.Exists() {
		value = nested
	}

	value = schema.LookupPath(cue.ParsePath("#Scenario")).Unify(value)
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("scenario does not match schema: %w", err)
	}

	var scenario Scenario
	if err := value.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to decode CUE: %w", err)
	}

	if err := Validate(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// Validate checks that required fields are present and that every probe can
// be compiled. It does not run the scenario.
func Validate(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Ticks <= 0 {
		return fmt.Errorf("ticks must be positive, got %d", s.Ticks)
	}

	if len(s.Probes) == 0 {
		return fmt.Errorf("probes list is required and must be non-empty")
	}

	if _, err := compileProbes(s.Probes); err != nil {
		return err
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a, s.Probes); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion, probes []Probe) error {
	if a.Probe == "" {
		return fmt.Errorf("assertions[%d]: probe is required", index)
	}
	if !slices.ContainsFunc(probes, func(p Probe) bool { return p.Name == a.Probe }) {
		return fmt.Errorf("assertions[%d]: unknown probe %q", index, a.Probe)
	}
	if a.Tolerance < 0 {
		return fmt.Errorf("assertions[%d]: tolerance must be non-negative", index)
	}

	switch a.Type {
	case AssertValue:
		if a.Value == nil {
			return fmt.Errorf("assertions[%d]: value is required for value", index)
		}
		if a.Tick <= 0 {
			return fmt.Errorf("assertions[%d]: tick must be positive for value", index)
		}
	case AssertRange:
		if a.Min == nil || a.Max == nil {
			return fmt.Errorf("assertions[%d]: min and max are required for range", index)
		}
		if *a.Min > *a.Max {
			return fmt.Errorf("assertions[%d]: min must not exceed max", index)
		}
	case AssertCount:
		if a.Value == nil {
			return fmt.Errorf("assertions[%d]: value is required for count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative", index)
		}
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}

// probeOptions converts the optional knobs of a probe to engine options.
func probeOptions(p Probe) ([]engine.Option, error) {
	var opts []engine.Option

	if p.FPS != nil {
		opts = append(opts, engine.WithFPS(*p.FPS))
	}
	if p.Time != nil {
		opts = append(opts, engine.WithTime(*p.Time))
	}
	if p.From != nil || p.To != nil {
		from, to := 0.0, 1.0
		if p.From != nil {
			from = *p.From
		}
		if p.To != nil {
			to = *p.To
		}
		opts = append(opts, engine.WithEndpoints(from, to))
	}
	if p.Min != nil || p.Max != nil {
		lo, hi := -1.0, 1.0
		if p.Min != nil {
			lo = *p.Min
		}
		if p.Max != nil {
			hi = *p.Max
		}
		opts = append(opts, engine.WithRange(lo, hi))
	}
	if p.Rate != nil {
		opts = append(opts, engine.WithRate(*p.Rate))
	}
	switch {
	case p.On != nil && p.Off != nil:
		opts = append(opts, engine.WithOnOff(*p.On, *p.Off))
	case p.On != nil:
		opts = append(opts, engine.WithOn(*p.On))
	case p.Off != nil:
		opts = append(opts, engine.WithOnOff(engine.BaseRate, *p.Off))
	}
	if p.Wave != "" {
		fn, err := engine.ParseWaveFunc(p.Wave)
		if err != nil {
			return nil, err
		}
		opts = append(opts, engine.WithWave(fn))
	}

	return opts, nil
}
