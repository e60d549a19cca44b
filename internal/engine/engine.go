package engine

import (
	"io"
	"log/slog"
)

// Engine owns the clock and every per-identifier state store.
//
// The host owns exactly one Engine and passes it to every call site; there is
// no process-wide instance.
//
// INVARIANTS:
//   - tick never decreases and advances by exactly one per Advance
//   - each stateful primitive reads and writes only its own registry
//   - a primitive call mutates at most one entry
type Engine struct {
	clock     *Clock
	delays    *registry[any]
	throttles *registry[any]
	tweens    *registry[*tween]
	logger    *slog.Logger
}

// EngineOption allows configuration of engine parameters.
type EngineOption func(*Engine)

// WithLogger sets the logger used for entry lifecycle events.
// Events are logged at Debug level. Default: logs are discarded.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New creates an Engine with the clock at 0 and empty stores.
func New(opts ...EngineOption) *Engine {
	e := &Engine{
		clock:     NewClock(),
		delays:    newRegistry[any](),
		throttles: newRegistry[any](),
		tweens:    newRegistry[*tween](),
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Advance moves the engine forward one tick.
// Call it exactly once per host frame, before querying any primitive.
func (e *Engine) Advance() {
	e.clock.Advance()
}

// Tick returns the current tick.
func (e *Engine) Tick() int64 {
	return e.clock.Current()
}

// Entries returns how many identifiers the given primitive currently tracks.
// Unknown primitives report 0.
func (e *Engine) Entries(p Primitive) int {
	switch p {
	case PrimitiveDelay:
		return e.delays.len()
	case PrimitiveThrottle:
		return e.throttles.len()
	case PrimitiveTransition:
		return e.tweens.len()
	}
	return 0
}

// Evict drops the state held for id by the given primitive.
// The next call with that id starts from scratch, as if it were new.
// Returns false if there was nothing to evict.
func (e *Engine) Evict(p Primitive, id any) bool {
	if checkID("evict", id) != nil {
		return false
	}
	var evicted bool
	switch p {
	case PrimitiveDelay:
		evicted = e.delays.evict(id)
	case PrimitiveThrottle:
		evicted = e.throttles.evict(id)
	case PrimitiveTransition:
		evicted = e.tweens.evict(id)
	}
	if evicted {
		e.logger.Debug("entry evicted", "primitive", p, "id", id, "tick", e.Tick())
	}
	return evicted
}

// divisor converts a calls-per-second rate into a tick divisor.
// Rates above BaseRate clamp to a divisor of 1.
func divisor(op string, fps int) (int64, error) {
	if fps <= 0 {
		return 0, invalidArgument(op, "fps", fps, "must be positive")
	}
	d := BaseRate / fps
	if d < 1 {
		d = 1
	}
	return int64(d), nil
}
