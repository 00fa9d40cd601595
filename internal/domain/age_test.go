package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAgeInterval_ClosedRange(t *testing.T) {
	interval, ok := ParseAgeInterval("20-30")
	require.True(t, ok)
	assert.Equal(t, 20, interval.Lo)
	assert.Equal(t, 30, interval.Hi)
	assert.False(t, interval.Open)

	// Midpoint densifies the slider scale.
	assert.Equal(t, []int{20, 30, 25}, interval.OptionPoints())
}

func TestParseAgeInterval_OpenEnded(t *testing.T) {
	interval, ok := ParseAgeInterval("40+")
	require.True(t, ok)
	assert.Equal(t, 40, interval.Lo)
	assert.True(t, interval.Open)

	// Open intervals contribute the base age and a representative upper bound.
	assert.Equal(t, []int{40, 50}, interval.OptionPoints())
}

func TestParseAgeInterval_SingleAge(t *testing.T) {
	interval, ok := ParseAgeInterval("25")
	require.True(t, ok)
	assert.Equal(t, 25, interval.Lo)
	assert.Equal(t, 25, interval.Hi)
	assert.False(t, interval.Open)
	assert.Equal(t, []int{25}, interval.OptionPoints())
}

func TestParseAgeInterval_TrimsWhitespace(t *testing.T) {
	interval, ok := ParseAgeInterval(" 20 - 30 ")
	require.True(t, ok)
	assert.Equal(t, 20, interval.Lo)
	assert.Equal(t, 30, interval.Hi)
}

func TestParseAgeInterval_Unparsable(t *testing.T) {
	for _, input := range []string{"", "разные", "старше 40", "младше 20", "abc-def", "x+"} {
		_, ok := ParseAgeInterval(input)
		assert.False(t, ok, "input %q should not parse", input)
	}
}

func TestAgeInterval_Intersects(t *testing.T) {
	interval, ok := ParseAgeInterval("35-45")
	require.True(t, ok)

	assert.True(t, interval.Intersects(30, 40), "overlapping ranges intersect")
	assert.False(t, interval.Intersects(50, 60), "disjoint ranges do not intersect")
	assert.True(t, interval.Intersects(45, 50), "shared endpoint counts as intersection")
}

func TestAgeInterval_Intersects_Open(t *testing.T) {
	interval, ok := ParseAgeInterval("40+")
	require.True(t, ok)

	assert.True(t, interval.Intersects(45, 60))
	assert.True(t, interval.Intersects(30, 40))
	assert.False(t, interval.Intersects(20, 39))
}
