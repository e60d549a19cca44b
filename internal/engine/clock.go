package engine

// BaseRate is the assumed number of ticks per second of host time.
// Rates given in calls-per-second are converted to tick divisors against it.
const BaseRate = 60

// Clock is the engine's logical tick counter.
//
// The tick starts at 0 and only ever moves forward by one per Advance.
// It is never reset during the engine's lifetime.
//
// Thread-safety: Clock is NOT safe for concurrent use. The engine's
// single-writer model means only the host loop touches it.
type Clock struct {
	tick int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// Advance moves the clock forward by exactly one tick.
func (c *Clock) Advance() {
	c.tick++
}

// Current returns the current tick without advancing.
func (c *Clock) Current() int64 {
	return c.tick
}
