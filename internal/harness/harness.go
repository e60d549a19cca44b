package harness

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/ebb/internal/engine"
	"github.com/roach88/ebb/internal/trace"
)

// Run executes a scenario and returns the result.
//
// Each run uses a fresh engine with logs discarded, so the trace depends only
// on the scenario.
//
// Execution flow:
// 1. Compile the probes
// 2. Step the engine Ticks times, appending one sample per step
// 3. Evaluate assertions against the trace
func Run(scenario *Scenario) (*Result, error) {
	return RunWithOptions(scenario, engine.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
}

// RunWithOptions is Run with explicit engine options, e.g. a logger.
func RunWithOptions(scenario *Scenario, opts ...engine.EngineOption) (*Result, error) {
	if err := Validate(scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	runner, err := NewRunner(scenario, opts...)
	if err != nil {
		return nil, err
	}

	result := NewResult(scenario.Name)
	for i := 0; i < scenario.Ticks; i++ {
		sample, err := runner.Step(false)
		if err != nil {
			return nil, fmt.Errorf("failed to run scenario %q: %w", scenario.Name, err)
		}
		result.Trace.Append(sample.Tick, sample.Values)
	}

	for _, msg := range EvaluateAssertions(result.Trace, scenario.Assertions) {
		result.AddError(msg)
	}

	return result, nil
}

// Runner steps one engine through a scenario's probes.
//
// Runner is the host collaborator: each Step advances the engine exactly once
// and then evaluates every probe in declaration order. Runner is not safe for
// concurrent use.
type Runner struct {
	scenario *Scenario
	engine   *engine.Engine
	probes   []*probe
	resets   map[int64]bool
	step     int
}

// NewRunner compiles the scenario's probes against a fresh engine.
func NewRunner(s *Scenario, opts ...engine.EngineOption) (*Runner, error) {
	probes, err := compileProbes(s.Probes)
	if err != nil {
		return nil, err
	}

	resets := make(map[int64]bool, len(s.Resets))
	for _, tick := range s.Resets {
		resets[tick] = true
	}

	return &Runner{
		scenario: s,
		engine:   engine.New(opts...),
		probes:   probes,
		resets:   resets,
	}, nil
}

// Scenario returns the scenario being run.
func (r *Runner) Scenario() *Scenario {
	return r.scenario
}

// Engine returns the runner's engine.
func (r *Runner) Engine() *engine.Engine {
	return r.engine
}

// Step advances the engine one tick and samples every probe.
// forceReset re-anchors all transition probes this tick in addition to any
// ticks listed in the scenario's resets.
func (r *Runner) Step(forceReset bool) (trace.Sample, error) {
	r.engine.Advance()
	tick := r.engine.Tick()
	reset := forceReset || r.resets[tick]

	outputs := make(map[string]any, len(r.probes))
	for _, p := range r.probes {
		out, err := p.eval(r.engine, r.step, outputs, reset)
		if err != nil {
			return trace.Sample{}, fmt.Errorf("tick %d probe %q: %w", tick, p.name, err)
		}
		outputs[p.name] = out
	}
	r.step++

	return trace.Sample{Tick: tick, Values: outputs}, nil
}
