package id

import (
	"math/rand"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratorPinnedByClockAndSeed(t *testing.T) {
	mint := func() []string {
		clock := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
		g := NewGenerator(rand.New(rand.NewSource(7)), func() time.Time {
			clock = clock.Add(time.Millisecond)
			return clock
		})
		out := make([]string, 10)
		for i := range out {
			out[i] = g.New()
		}
		return out
	}

	a, b := mint(), mint()
	assert.Equal(t, a, b, "same seed and clock must mint the same IDs")
}

func TestGeneratorIDsSortInMintOrder(t *testing.T) {
	g := NewGenerator(nil, nil)
	ids := make([]string, 100)
	for i := range ids {
		ids[i] = g.New()
	}
	assert.True(t, sort.StringsAreSorted(ids))
}

func TestDefaultGenerator(t *testing.T) {
	a, b := New(), New()
	require.Len(t, a, 26)
	assert.NotEqual(t, a, b)
	assert.Less(t, a, b)
}
