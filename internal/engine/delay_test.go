package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDelay_StartupTransient(t *testing.T) {
	e := New()

	var got []int
	for _, v := range []int{10, 20, 30, 40, 50} {
		out, err := Delay(e, "x", v, 3)
		require.NoError(t, err)
		got = append(got, out)
		e.Advance()
	}

	// Two slots seeded with 10; live values emerge after the seed drains.
	assert.Equal(t, []int{10, 10, 10, 20, 30}, got)
}

func TestDelay_SteadyState(t *testing.T) {
	e := New()
	const ticks = 5

	for k := 1; k <= 40; k++ {
		out, err := Delay(e, "line", k, ticks)
		require.NoError(t, err)

		want := 1
		if k > ticks-1 {
			want = k - (ticks - 1)
		}
		assert.Equal(t, want, out, "call %d", k)
		e.Advance()
	}
}

func TestDelay_TimeOnePassesThrough(t *testing.T) {
	e := New()

	for _, v := range []string{"a", "b", "c"} {
		out, err := Delay(e, "now", v, 1)
		require.NoError(t, err)
		assert.Equal(t, v, out)
		e.Advance()
	}
}

func TestDelay_LengthFixedAtCreation(t *testing.T) {
	e := New()

	_, err := Delay(e, "x", 1, 2)
	require.NoError(t, err)

	// A later, longer time does not grow the line.
	out, err := Delay(e, "x", 2, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, out)
	out, err = Delay(e, "x", 3, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, out)
}

func TestDelay_CompositeValues(t *testing.T) {
	e := New()
	type point struct{ X, Y float64 }

	_, err := Delay(e, "orbit_follower", point{1, 1}, 3)
	require.NoError(t, err)
	_, err = Delay(e, "orbit_follower", point{2, 2}, 3)
	require.NoError(t, err)
	_, err = Delay(e, "orbit_follower", point{3, 3}, 3)
	require.NoError(t, err)
	out, err := Delay(e, "orbit_follower", point{4, 4}, 3)
	require.NoError(t, err)
	assert.Equal(t, point{2, 2}, out)
}

func TestDelay_IndependentIdentifiers(t *testing.T) {
	e := New()

	a, err := Delay(e, "a", 1, 2)
	require.NoError(t, err)
	b, err := Delay(e, "b", 100, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, a)
	assert.Equal(t, 100, b)

	a, err = Delay(e, "a", 2, 2)
	require.NoError(t, err)
	b, err = Delay(e, "b", 200, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, a)
	assert.Equal(t, 100, b)
}

func TestDelay_InvalidArguments(t *testing.T) {
	e := New()

	_, err := Delay(e, "x", 1, 0)
	require.Error(t, err)
	assert.True(t, IsInvalidArgument(err))

	_, err = Delay(e, "x", 1, -3)
	assert.True(t, IsInvalidArgument(err))

	_, err = Delay(e, nil, 1, 3)
	assert.True(t, IsInvalidArgument(err))

	_, err = Delay(e, []string{"x"}, 1, 3)
	assert.True(t, IsInvalidArgument(err))

	assert.Equal(t, 0, e.Entries(PrimitiveDelay), "rejected calls must not create entries")
}

func TestDelay_TypeMismatch(t *testing.T) {
	e := New()

	_, err := Delay(e, "x", 1, 3)
	require.NoError(t, err)

	_, err = Delay(e, "x", "one", 3)
	require.Error(t, err)
	assert.True(t, IsInvalidArgument(err))
	assert.Contains(t, err.Error(), "identifier x already holds")
}
