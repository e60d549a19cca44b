package engine

// Then adapts fn so it can consume a primitive's (value, error) result
// directly. When the call succeeded, fn's return value replaces the raw
// value; errors pass through untouched and fn is not called.
//
//	height, err := engine.Then(math.Round)(e.Wave(engine.WithRange(0, 100)))
//	label, err := engine.Then(strings.ToUpper)(engine.Frames(e, names))
func Then[T, U any](fn func(T) U) func(T, error) (U, error) {
	return func(v T, err error) (U, error) {
		if err != nil {
			var zero U
			return zero, err
		}
		return fn(v), nil
	}
}
