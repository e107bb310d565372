package voting

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTally_SetSemantics(t *testing.T) {
	tally := New()
	tally.Reset(1)

	count, changed := tally.Cast("a", "target")
	require.True(t, changed)
	require.Equal(t, 1, count)

	count, changed = tally.Cast("a", "target")
	require.False(t, changed, "repeat vote must not count twice")
	require.Equal(t, 1, count)

	tally.Cast("b", "target")
	tally.Cast("c", "target")
	count, _ = tally.Cast("d", "target")
	require.Equal(t, DefaultThreshold, count)
}

func TestTally_SelfVoteIgnored(t *testing.T) {
	tally := New()
	count, changed := tally.Cast("a", "a")
	require.False(t, changed)
	require.Zero(t, count)
}

func TestTally_ResetStartsFresh(t *testing.T) {
	tally := New()
	tally.Reset(1)
	tally.Cast("a", "target")

	tally.Reset(2)
	require.Equal(t, 2, tally.Round())
	require.Zero(t, tally.Count("target"))
}

func TestTally_ClearKeepsTargetsBallots(t *testing.T) {
	tally := New()
	tally.Reset(1)
	tally.Cast("a", "x")
	tally.Cast("a", "y")
	tally.Cast("b", "a")

	tally.Clear("a")

	require.Zero(t, tally.Count("a"))
	require.Equal(t, 1, tally.Count("x"))
	require.Equal(t, 1, tally.Count("y"))
}

func TestTally_Clear(t *testing.T) {
	tally := New()
	tally.Cast("a", "x")
	tally.Clear("x")
	require.Zero(t, tally.Count("x"))
}
