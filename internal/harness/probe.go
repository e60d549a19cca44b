package harness

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/roach88/ebb/internal/engine"
)

// probe is a compiled Probe, ready to be evaluated every step.
type probe struct {
	name      string
	primitive string
	id        string
	values    []any
	input     string
	inputs    []string
	time      int
	opts      []engine.Option
	endpoints binding
	bounds    binding
	transform func(any) (any, error)
}

// binding is a pair of numeric settings, each either fixed or read from an
// earlier probe's output every step.
type binding struct {
	lo, hi     float64
	loIn, hiIn string
}

func (b binding) dynamic() bool {
	return b.loIn != "" || b.hiIn != ""
}

func (b binding) resolve(outputs map[string]any) (float64, float64, error) {
	lo, hi := b.lo, b.hi
	if b.loIn != "" {
		v, err := numericInput(b.loIn, outputs)
		if err != nil {
			return 0, 0, err
		}
		lo = v
	}
	if b.hiIn != "" {
		v, err := numericInput(b.hiIn, outputs)
		if err != nil {
			return 0, 0, err
		}
		hi = v
	}
	return lo, hi, nil
}

func numericInput(name string, outputs map[string]any) (float64, error) {
	v := outputs[name]
	f, ok := toFloat(v)
	if !ok {
		return 0, fmt.Errorf("input %q is not a number, got %T", name, v)
	}
	return f, nil
}

// compileProbes validates probe definitions and resolves their options.
// Inputs must reference an earlier probe so evaluation order is well defined.
func compileProbes(defs []Probe) ([]*probe, error) {
	probes := make([]*probe, 0, len(defs))
	seen := make(map[string]bool, len(defs))

	for i, def := range defs {
		p, err := compileProbe(def, seen)
		if err != nil {
			return nil, fmt.Errorf("probes[%d]: %w", i, err)
		}
		seen[p.name] = true
		probes = append(probes, p)
	}

	return probes, nil
}

func compileProbe(def Probe, earlier map[string]bool) (*probe, error) {
	if def.Name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if earlier[def.Name] {
		return nil, fmt.Errorf("duplicate probe name %q", def.Name)
	}
	if !slices.Contains(Primitives, def.Primitive) {
		return nil, fmt.Errorf("probe %q: unknown primitive %q (want one of %s)",
			def.Name, def.Primitive, strings.Join(Primitives, ", "))
	}
	if err := checkReferences(def, earlier); err != nil {
		return nil, fmt.Errorf("probe %q: %w", def.Name, err)
	}
	if err := checkSettings(def); err != nil {
		return nil, fmt.Errorf("probe %q: %w", def.Name, err)
	}

	opts, err := probeOptions(def)
	if err != nil {
		return nil, fmt.Errorf("probe %q: %w", def.Name, err)
	}

	p := &probe{
		name:      def.Name,
		primitive: def.Primitive,
		id:        def.ID,
		values:    def.Values,
		input:     def.Input,
		inputs:    def.Inputs,
		opts:      opts,
		endpoints: binding{lo: deref(def.From, 0), hi: deref(def.To, 1), loIn: def.FromInput, hiIn: def.ToInput},
		bounds:    binding{lo: deref(def.Min, -1), hi: deref(def.Max, 1), loIn: def.MinInput, hiIn: def.MaxInput},
	}
	if p.id == "" {
		p.id = def.Name
	}

	switch def.Primitive {
	case PrimitiveFrames:
		if len(def.Values) == 0 {
			return nil, fmt.Errorf("probe %q: frames requires a non-empty values list", def.Name)
		}
	case PrimitiveDelay:
		if def.Time == nil {
			return nil, fmt.Errorf("probe %q: delay requires time", def.Name)
		}
		p.time = *def.Time
		fallthrough
	case PrimitiveThrottle:
		if def.Input == "" && len(def.Inputs) == 0 && len(def.Values) == 0 {
			return nil, fmt.Errorf("probe %q: %s requires an input or a values list", def.Name, def.Primitive)
		}
	}

	if def.Transform != "" {
		fn, ok := transforms[def.Transform]
		if !ok {
			return nil, fmt.Errorf("probe %q: unknown transform %q", def.Name, def.Transform)
		}
		p.transform = fn
	}

	return p, nil
}

// checkReferences checks that every probe a definition reads from is
// declared before it and that bound settings belong to the primitive.
func checkReferences(def Probe, earlier map[string]bool) error {
	if def.Input != "" && len(def.Inputs) > 0 {
		return fmt.Errorf("input and inputs are mutually exclusive")
	}

	refs := []struct{ field, name string }{
		{"input", def.Input},
		{"from_input", def.FromInput},
		{"to_input", def.ToInput},
		{"min_input", def.MinInput},
		{"max_input", def.MaxInput},
	}
	for _, name := range def.Inputs {
		refs = append(refs, struct{ field, name string }{"inputs", name})
	}
	for _, ref := range refs {
		if ref.name != "" && !earlier[ref.name] {
			return fmt.Errorf("%s %q must name an earlier probe", ref.field, ref.name)
		}
	}

	if (def.FromInput != "" || def.ToInput != "") && def.Primitive != PrimitiveTransition {
		return fmt.Errorf("from_input and to_input apply only to transition, not %s", def.Primitive)
	}
	if (def.MinInput != "" || def.MaxInput != "") && def.Primitive != PrimitiveWave && def.Primitive != PrimitiveBounce {
		return fmt.Errorf("min_input and max_input apply only to wave and bounce, not %s", def.Primitive)
	}
	return nil
}

// checkSettings rejects settings the engine refuses, so a scenario fails when
// it is loaded rather than partway through a run.
func checkSettings(def Probe) error {
	if def.FPS != nil && *def.FPS <= 0 {
		return fmt.Errorf("fps must be positive, got %d", *def.FPS)
	}
	if def.Time != nil && *def.Time < 1 {
		return fmt.Errorf("time must be at least 1, got %d", *def.Time)
	}
	if def.Rate != nil && *def.Rate <= 0 {
		return fmt.Errorf("rate must be positive, got %d", *def.Rate)
	}
	if def.On != nil && *def.On < 0 {
		return fmt.Errorf("on must be non-negative, got %d", *def.On)
	}
	if def.Off != nil && *def.Off < 0 {
		return fmt.Errorf("off must be non-negative, got %d", *def.Off)
	}

	on := engine.BaseRate
	if def.On != nil {
		on = *def.On
	}
	off := on
	if def.Off != nil {
		off = *def.Off
	}
	if def.Primitive == PrimitiveBlink && on+off == 0 {
		return fmt.Errorf("on + off must be positive")
	}
	return nil
}

func deref(v *float64, fallback float64) float64 {
	if v == nil {
		return fallback
	}
	return *v
}

// live returns the value fed to delay and throttle this step.
func (p *probe) live(step int, outputs map[string]any) any {
	if len(p.inputs) > 0 {
		vals := make([]any, len(p.inputs))
		for i, name := range p.inputs {
			vals[i] = outputs[name]
		}
		return vals
	}
	if p.input != "" {
		return outputs[p.input]
	}
	if len(p.values) == 0 {
		return nil
	}
	return p.values[step%len(p.values)]
}

// options returns the probe's engine options for this step, with bound
// settings read from earlier outputs.
func (p *probe) options(outputs map[string]any, reset bool) ([]engine.Option, error) {
	opts := p.opts
	if p.endpoints.dynamic() {
		from, to, err := p.endpoints.resolve(outputs)
		if err != nil {
			return nil, err
		}
		opts = append(slices.Clip(opts), engine.WithEndpoints(from, to))
	}
	if p.bounds.dynamic() {
		lo, hi, err := p.bounds.resolve(outputs)
		if err != nil {
			return nil, err
		}
		opts = append(slices.Clip(opts), engine.WithRange(lo, hi))
	}
	if reset && p.primitive == PrimitiveTransition {
		opts = append(slices.Clip(opts), engine.WithReset(true))
	}
	return opts, nil
}

// eval calls the probe's primitive once.
func (p *probe) eval(e *engine.Engine, step int, outputs map[string]any, reset bool) (any, error) {
	opts, err := p.options(outputs, reset)
	if err != nil {
		return nil, err
	}

	var out any
	switch p.primitive {
	case PrimitiveFrames:
		out, err = engine.Frames(e, p.values, opts...)
	case PrimitiveDelay:
		out, err = engine.Delay(e, p.id, p.live(step, outputs), p.time)
	case PrimitiveThrottle:
		out, err = engine.Throttle(e, p.id, p.live(step, outputs), opts...)
	case PrimitiveTransition:
		out, err = e.Transition(p.id, opts...)
	case PrimitiveBlink:
		out, err = e.Blink(opts...)
	case PrimitiveWave:
		out, err = e.Wave(opts...)
	case PrimitiveBounce:
		out, err = e.Bounce(opts...)
	default:
		return nil, fmt.Errorf("unknown primitive %q", p.primitive)
	}
	if err != nil {
		return nil, err
	}

	if p.transform != nil {
		return p.transform(out)
	}
	return out, nil
}

// transforms are the named output transforms a probe may apply.
var transforms = map[string]func(any) (any, error){
	"round":  numeric(math.Round),
	"negate": numeric(func(f float64) float64 { return -f }),
	"abs":    numeric(math.Abs),
	"not": func(v any) (any, error) {
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("transform not expects a bool, got %T", v)
		}
		return !b, nil
	},
	"upper": func(v any) (any, error) {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("transform upper expects a string, got %T", v)
		}
		return strings.ToUpper(s), nil
	},
}

func numeric(fn func(float64) float64) func(any) (any, error) {
	return func(v any) (any, error) {
		f, ok := toFloat(v)
		if !ok {
			return nil, fmt.Errorf("numeric transform expects a number, got %T", v)
		}
		return fn(f), nil
	}
}

// toFloat widens any numeric value decoded from YAML, CUE or the engine.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
