package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/ebb/internal/engine"
	"github.com/roach88/ebb/internal/harness"
	"github.com/roach88/ebb/internal/trace"
)

// SampleOptions holds flags for the sample command.
type SampleOptions struct {
	*RootOptions
	Ticks     int
	FPS       int
	Time      int
	From, To  float64
	Min, Max  float64
	Rate      int
	On, Off   int
	Wave      string
	Values    []string
	Transform string
	ResetAt   []int64
}

// SampleResult is the JSON payload of the sample command.
type SampleResult struct {
	Primitive string        `json:"primitive"`
	Samples   []SamplePoint `json:"samples"`
	Probe     harness.Probe `json:"probe"`
}

// SamplePoint is one tick's output.
type SamplePoint struct {
	Tick  int64 `json:"tick"`
	Value any   `json:"value"`
}

// NewSampleCommand creates the sample command.
func NewSampleCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SampleOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sample <primitive>",
		Short: "Print a primitive's output tick by tick",
		Long: `Step a fresh engine and print one primitive's output for every tick.

Only flags that are set are passed to the primitive; everything else uses the
primitive's defaults. Values are parsed as YAML scalars, so "3" is a number
and "true" a bool.

Examples:
  ebb sample blink --on 10 --off 5 --ticks 30
  ebb sample wave --min 0 --max 100 --rate 240 --wave cos
  ebb sample frames --fps 5 --values one,two,three
  ebb sample delay --time 3 --values 10,20,30,40
  ebb sample transition --to 100 --time 50 --reset-at 30 --format json`,
		Args:          cobra.ExactArgs(1),
		ValidArgs:     harness.Primitives,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSample(opts, args[0], cmd)
		},
	}

	f := cmd.Flags()
	f.IntVar(&opts.Ticks, "ticks", engine.BaseRate, "number of ticks to sample")
	f.IntVar(&opts.FPS, "fps", engine.BaseRate, "rate in calls-per-second (frames, throttle)")
	f.IntVar(&opts.Time, "time", engine.BaseRate, "duration in ticks (delay, transition)")
	f.Float64Var(&opts.From, "from", 0, "start value (transition)")
	f.Float64Var(&opts.To, "to", 1, "end value (transition)")
	f.Float64Var(&opts.Min, "min", -1, "lower bound (wave, bounce)")
	f.Float64Var(&opts.Max, "max", 1, "upper bound (wave, bounce)")
	f.IntVar(&opts.Rate, "rate", 2*engine.BaseRate, "ticks per cycle (wave, bounce)")
	f.IntVar(&opts.On, "on", engine.BaseRate, "on-phase ticks (blink)")
	f.IntVar(&opts.Off, "off", engine.BaseRate, "off-phase ticks (blink, defaults to --on)")
	f.StringVar(&opts.Wave, "wave", "sin", "wave function: sin, cos or tan (wave)")
	f.StringSliceVar(&opts.Values, "values", nil, "sequence (frames) or live values cycled per tick (delay, throttle)")
	f.StringVar(&opts.Transform, "transform", "", "output transform: round, negate, abs, not, upper")
	f.Int64SliceVar(&opts.ResetAt, "reset-at", nil, "ticks at which the transition restarts")

	return cmd
}

func runSample(opts *SampleOptions, primitive string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	probe, err := sampleProbe(opts, primitive, cmd)
	if err != nil {
		_ = formatter.Error(ErrCodeInvalidOption, err.Error(), nil)
		return WrapExitError(ExitCommandError, "invalid sample options", err)
	}

	scenario := &harness.Scenario{
		Name:   "sample_" + primitive,
		Ticks:  opts.Ticks,
		Probes: []harness.Probe{probe},
		Resets: opts.ResetAt,
	}

	logger := newLogger(cmd.ErrOrStderr(), opts.Verbose)
	result, err := harness.RunWithOptions(scenario, engine.WithLogger(logger))
	if err != nil {
		_ = formatter.Error(ErrCodeRunFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "sample failed", err)
	}

	points := samplePoints(result.Trace, probe.Name)
	if formatter.IsJSON() {
		return formatter.Success(SampleResult{Primitive: primitive, Samples: points, Probe: probe})
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%-6s %s\n", "TICK", strings.ToUpper(primitive))
	for _, p := range points {
		fmt.Fprintf(w, "%-6d %s\n", p.Tick, formatValue(p.Value))
	}
	return nil
}

// sampleProbe builds a single probe from the flags the user actually set.
func sampleProbe(opts *SampleOptions, primitive string, cmd *cobra.Command) (harness.Probe, error) {
	if !slices.Contains(harness.Primitives, primitive) {
		return harness.Probe{}, fmt.Errorf("unknown primitive %q (want one of %s)",
			primitive, strings.Join(harness.Primitives, ", "))
	}

	p := harness.Probe{Name: primitive, Primitive: primitive, Transform: opts.Transform}
	changed := cmd.Flags().Changed

	for _, raw := range opts.Values {
		v, err := parseLiteral(raw)
		if err != nil {
			return harness.Probe{}, err
		}
		p.Values = append(p.Values, v)
	}

	// Delay has no default time, so the flag default applies even when unset.
	if changed("time") || primitive == harness.PrimitiveDelay {
		p.Time = &opts.Time
	}
	if changed("fps") {
		p.FPS = &opts.FPS
	}
	if changed("from") {
		p.From = &opts.From
	}
	if changed("to") {
		p.To = &opts.To
	}
	if changed("min") {
		p.Min = &opts.Min
	}
	if changed("max") {
		p.Max = &opts.Max
	}
	if changed("rate") {
		p.Rate = &opts.Rate
	}
	if changed("on") {
		p.On = &opts.On
	}
	if changed("off") {
		p.Off = &opts.Off
	}
	if changed("wave") {
		p.Wave = opts.Wave
	}

	return p, nil
}

// parseLiteral decodes one YAML scalar so numbers and bools keep their type.
func parseLiteral(raw string) (any, error) {
	var v any
	if err := yaml.Unmarshal([]byte(raw), &v); err != nil {
		return nil, fmt.Errorf("invalid value %q: %w", raw, err)
	}
	if v == nil {
		return raw, nil
	}
	return v, nil
}

func samplePoints(tr *trace.Trace, probe string) []SamplePoint {
	points := make([]SamplePoint, 0, tr.Len())
	for _, s := range tr.Samples {
		points = append(points, SamplePoint{Tick: s.Tick, Value: s.Values[probe]})
	}
	return points
}

// formatValue renders a probe output the way canonical traces do.
func formatValue(v any) string {
	b, err := trace.MarshalCanonical(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}
