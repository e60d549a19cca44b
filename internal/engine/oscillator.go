package engine

import (
	"fmt"
	"math"
	"strings"
)

// WaveFunc selects the unary trig function that shapes Wave.
type WaveFunc int

const (
	Sine WaveFunc = iota
	Cosine
	Tangent
)

var waveFuncs = map[WaveFunc]struct {
	name string
	fn   func(float64) float64
}{
	Sine:    {"sin", math.Sin},
	Cosine:  {"cos", math.Cos},
	Tangent: {"tan", math.Tan},
}

// String returns the short name ("sin", "cos", "tan").
func (w WaveFunc) String() string {
	if f, ok := waveFuncs[w]; ok {
		return f.name
	}
	return fmt.Sprintf("WaveFunc(%d)", int(w))
}

// ParseWaveFunc resolves a wave function by name. Both short and long forms
// are accepted ("sin" or "sine"), case-insensitively.
func ParseWaveFunc(name string) (WaveFunc, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "sin", "sine":
		return Sine, nil
	case "cos", "cosine":
		return Cosine, nil
	case "tan", "tangent":
		return Tangent, nil
	}
	return 0, invalidArgument("wave", "wave function", fmt.Sprintf("%q", name), "is not one of sin, cos, tan")
}

// Blink reports whether the current tick falls in the on-phase of a square
// wave: tick mod (on+off) < on.
//
// Recognized options: WithOn / WithOnOff (default on = off = BaseRate).
func (e *Engine) Blink(opts ...Option) (bool, error) {
	p := resolve(opts)
	if p.on < 0 {
		return false, invalidArgument("blink", "on", p.on, "must not be negative")
	}
	if p.off < 0 {
		return false, invalidArgument("blink", "off", p.off, "must not be negative")
	}
	period := int64(p.on + p.off)
	if period == 0 {
		return false, invalidArgument("blink", "period", period, "must be positive")
	}
	return e.Tick()%period < int64(p.on), nil
}

// Wave alternates smoothly between min and max, one full cycle every rate
// ticks: min + (1 + fn(angle))/2 * (max - min).
//
// With Sine the result starts at the midpoint and peaks at rate/4. Tangent is
// unbounded and may leave [min, max].
//
// Recognized options: WithRange (default -1, 1), WithRate (default
// 2*BaseRate), WithWave (default Sine).
func (e *Engine) Wave(opts ...Option) (float64, error) {
	p := resolve(opts)
	f, ok := waveFuncs[p.wave]
	if !ok {
		return 0, invalidArgument("wave", "wave function", p.wave, "is not one of sin, cos, tan")
	}
	angle, err := e.angle("wave", p.rate)
	if err != nil {
		return 0, err
	}
	return between(p.min, p.max, (1+f.fn(angle))/2), nil
}

// Bounce alternates between min and max by rectifying a sine: it touches min
// at the start of every half-cycle and peaks at max in between.
//
// Recognized options: WithRange (default -1, 1), WithRate (default
// 2*BaseRate).
func (e *Engine) Bounce(opts ...Option) (float64, error) {
	p := resolve(opts)
	angle, err := e.angle("bounce", p.rate)
	if err != nil {
		return 0, err
	}
	return between(p.min, p.max, math.Abs(math.Sin(angle))), nil
}

// angle maps the tick onto one revolution every rate ticks.
func (e *Engine) angle(op string, rate int) (float64, error) {
	if rate <= 0 {
		return 0, invalidArgument(op, "rate", rate, "must be positive")
	}
	r := int64(rate)
	return float64(e.Tick()%r) / float64(r) * 2 * math.Pi, nil
}

func between(min, max, coefficient float64) float64 {
	return min + coefficient*(max-min)
}
