package engine

// Option adjusts a recognized knob for a primitive call.
//
// All primitives share one option set. A primitive reads only the knobs it
// understands and ignores the rest, so a host can keep a single option slice
// per call site.
type Option func(*params)

// params holds the resolved knobs for one primitive call.
type params struct {
	fps      int
	duration int
	reset    bool
	min, max float64
	from, to float64
	wave     WaveFunc
	on, off  int
	offSet   bool
	rate     int
}

// defaultParams returns the documented defaults:
// fps = BaseRate, time = BaseRate, min/max = -1/1, from/to = 0/1,
// wave = Sine, on = off = BaseRate, rate = 2*BaseRate.
func defaultParams() params {
	return params{
		fps:      BaseRate,
		duration: BaseRate,
		min:      -1,
		max:      1,
		from:     0,
		to:       1,
		wave:     Sine,
		on:       BaseRate,
		rate:     2 * BaseRate,
	}
}

func resolve(opts []Option) params {
	p := defaultParams()
	for _, opt := range opts {
		opt(&p)
	}
	if !p.offSet {
		p.off = p.on
	}
	return p
}

// WithFPS sets the rate in calls-per-second for Frames and Throttle.
func WithFPS(fps int) Option {
	return func(p *params) {
		p.fps = fps
	}
}

// WithTime sets the duration in ticks for Transition.
func WithTime(ticks int) Option {
	return func(p *params) {
		p.duration = ticks
	}
}

// WithReset forces Transition to discard its table and re-anchor at the
// current tick.
func WithReset(reset bool) Option {
	return func(p *params) {
		p.reset = reset
	}
}

// WithRange sets the output bounds for Wave and Bounce.
func WithRange(min, max float64) Option {
	return func(p *params) {
		p.min = min
		p.max = max
	}
}

// WithEndpoints sets the start and end values for Transition.
func WithEndpoints(from, to float64) Option {
	return func(p *params) {
		p.from = from
		p.to = to
	}
}

// WithWave selects the shaping function for Wave.
func WithWave(fn WaveFunc) Option {
	return func(p *params) {
		p.wave = fn
	}
}

// WithRate sets the period in ticks of one full Wave or Bounce cycle.
func WithRate(ticks int) Option {
	return func(p *params) {
		p.rate = ticks
	}
}

// WithOn sets the on-phase length of Blink. The off-phase follows it unless
// set separately with WithOnOff.
func WithOn(ticks int) Option {
	return func(p *params) {
		p.on = ticks
	}
}

// WithOnOff sets both phase lengths of Blink.
func WithOnOff(on, off int) Option {
	return func(p *params) {
		p.on = on
		p.off = off
		p.offSet = true
	}
}
