package engine

// delayLine is a fixed-length FIFO of the last values pushed for one id.
// head points at the oldest slot, which is the next value to come out.
type delayLine[T any] struct {
	slots []T
	head  int
}

// newDelayLine seeds a line of ticks-1 slots with the first value seen.
func newDelayLine[T any](seed T, ticks int) *delayLine[T] {
	slots := make([]T, ticks-1)
	for i := range slots {
		slots[i] = seed
	}
	return &delayLine[T]{slots: slots}
}

// shift pushes v and returns the value it displaced.
// A zero-length line passes v straight through.
func (d *delayLine[T]) shift(v T) T {
	if len(d.slots) == 0 {
		return v
	}
	out := d.slots[d.head]
	d.slots[d.head] = v
	d.head = (d.head + 1) % len(d.slots)
	return out
}

// Delay returns the value passed for id ticks-1 calls ago.
//
// The first call for id creates a line of ticks-1 copies of value, so for the
// first ticks-1 calls the result is the first value ever passed for id. After
// that it is the live value supplied ticks-1 calls earlier. With ticks == 1
// the value passes through unchanged.
//
// The line length is fixed at creation; later calls with a different ticks
// keep the original length. Reusing id with a different value type is
// rejected.
func Delay[T any](e *Engine, id any, value T, ticks int) (T, error) {
	var zero T
	if ticks < 1 {
		return zero, invalidArgument("delay", "time", ticks, "must be at least 1")
	}
	if err := checkID("delay", id); err != nil {
		return zero, err
	}

	entry, ok := e.delays.lookup(id)
	if !ok {
		line := newDelayLine(value, ticks)
		e.delays.store(id, line)
		e.logger.Debug("delay line created", "id", id, "time", ticks, "tick", e.Tick())
		return line.shift(value), nil
	}

	line, ok := entry.(*delayLine[T])
	if !ok {
		return zero, NewInvalidArgumentError("delay", typeMismatch(id, entry, value))
	}
	return line.shift(value), nil
}
