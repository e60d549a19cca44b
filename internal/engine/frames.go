package engine

// Frames cycles through seq, holding each element for BaseRate/fps ticks.
//
// The index is (tick / divisor) mod len(seq), where divisor is
// floor(BaseRate / fps) clamped to at least 1. Frames keeps no state.
//
// Recognized options: WithFPS (default BaseRate).
func Frames[T any](e *Engine, seq []T, opts ...Option) (T, error) {
	var zero T
	if len(seq) == 0 {
		return zero, NewInvalidArgumentError("frames", "sequence must not be empty")
	}

	p := resolve(opts)
	div, err := divisor("frames", p.fps)
	if err != nil {
		return zero, err
	}

	i := (e.Tick() / div) % int64(len(seq))
	return seq[i], nil
}
