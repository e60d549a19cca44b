package engine

// heldValue is the sample-and-hold slot for one throttled id.
type heldValue[T any] struct {
	value T
}

// Throttle limits how often the value returned for id may change.
//
// The held value is seeded with the first value passed for id and is
// overwritten only on ticks where tick mod step == 0, with
// step = floor(BaseRate / fps). On every other tick the input is dropped and
// the previously held value is returned.
//
// Recognized options: WithFPS (default BaseRate).
func Throttle[T any](e *Engine, id any, value T, opts ...Option) (T, error) {
	var zero T
	p := resolve(opts)
	step, err := divisor("throttle", p.fps)
	if err != nil {
		return zero, err
	}
	if err := checkID("throttle", id); err != nil {
		return zero, err
	}

	var held *heldValue[T]
	entry, ok := e.throttles.lookup(id)
	if !ok {
		held = &heldValue[T]{value: value}
		e.throttles.store(id, held)
		e.logger.Debug("throttle created", "id", id, "step", step, "tick", e.Tick())
	} else if held, ok = entry.(*heldValue[T]); !ok {
		return zero, NewInvalidArgumentError("throttle", typeMismatch(id, entry, value))
	}

	if e.Tick()%step == 0 {
		held.value = value
	}
	return held.value, nil
}
