package engine

// tween is a precomputed linear interpolation anchored at a tick.
// table holds duration+1 samples; table[0] == from and table[duration] == to
// exactly.
type tween struct {
	anchor int64
	table  []float64
}

func newTween(anchor int64, from, to float64, duration int) *tween {
	table := make([]float64, duration+1)
	for i := range table {
		table[i] = lerp(from, to, float64(i)/float64(duration))
	}
	table[0] = from
	table[duration] = to
	return &tween{anchor: anchor, table: table}
}

// at returns the sample for tick. The position is tick-anchor clamped into
// the table, so ticks before the anchor read from and ticks past the end
// read to.
func (t *tween) at(tick int64) float64 {
	i := tick - t.anchor
	if i < 0 {
		i = 0
	}
	if last := int64(len(t.table) - 1); i > last {
		i = last
	}
	return t.table[i]
}

// Transition moves linearly from one value to another over a number of ticks.
//
// The first call for id, or any call with WithReset(true), builds a fresh
// table anchored at the current tick. Without a reset, an existing transition
// keeps the endpoints and duration it was built with.
//
// Recognized options: WithEndpoints (default 0, 1), WithTime (default
// BaseRate), WithReset (default false).
func (e *Engine) Transition(id any, opts ...Option) (float64, error) {
	p := resolve(opts)
	if p.duration < 1 {
		return 0, invalidArgument("transition", "time", p.duration, "must be at least 1")
	}
	if err := checkID("transition", id); err != nil {
		return 0, err
	}

	t, ok := e.tweens.lookup(id)
	if !ok || p.reset {
		t = newTween(e.Tick(), p.from, p.to, p.duration)
		e.tweens.store(id, t)
		e.logger.Debug("transition anchored",
			"id", id,
			"from", p.from,
			"to", p.to,
			"time", p.duration,
			"tick", e.Tick(),
			"reset", p.reset,
		)
	}
	return t.at(e.Tick()), nil
}

// lerp interpolates between a and b by c.
func lerp(a, b, c float64) float64 {
	return a + c*(b-a)
}
