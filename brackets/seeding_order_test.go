package brackets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedingOrderLiteralTables(t *testing.T) {
	testCases := []struct {
		name     string
		n        int
		expected []int
	}{
		{name: "1 slot", n: 1, expected: []int{1}},
		{name: "2 slots", n: 2, expected: []int{1, 2}},
		{name: "4 slots", n: 4, expected: []int{1, 4, 3, 2}},
		{name: "8 slots", n: 8, expected: []int{1, 8, 4, 5, 3, 6, 7, 2}},
		{name: "16 slots", n: 16, expected: []int{1, 16, 8, 9, 4, 13, 5, 12, 3, 14, 6, 11, 7, 10, 2, 15}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			order, err := SeedingOrder(tc.n)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, order)
		})
	}
}

func TestSeedingOrderRejectsNonPowerOfTwo(t *testing.T) {
	for _, n := range []int{0, -1, 3, 6, 12, 100} {
		_, err := SeedingOrder(n)
		assert.ErrorIs(t, err, ErrNotPowerOfTwo, "n=%d", n)
	}
}

func TestSeedingOrderIsPermutation(t *testing.T) {
	for n := 1; n <= 256; n *= 2 {
		order, err := SeedingOrder(n)
		require.NoError(t, err)
		require.Len(t, order, n)

		seen := make(map[int]bool, n)
		for _, s := range order {
			assert.GreaterOrEqual(t, s, 1)
			assert.LessOrEqual(t, s, n)
			assert.False(t, seen[s], "seed %d appears twice for n=%d", s, n)
			seen[s] = true
		}
	}
}

func TestSeedingOrderDoublingExpansion(t *testing.T) {
	half, err := SeedingOrder(16)
	require.NoError(t, err)
	full, err := SeedingOrder(32)
	require.NoError(t, err)

	for i, s := range half {
		assert.Equal(t, s, full[2*i])
		assert.Equal(t, 33-s, full[2*i+1])
	}
}

func TestSeedingOrderTopSeedsInOppositeHalves(t *testing.T) {
	for n := 4; n <= 128; n *= 2 {
		order, err := SeedingOrder(n)
		require.NoError(t, err)
		slots := slotOfSeed(order)

		// Seeds 1 and 2 can only meet in the final.
		assert.Less(t, slots[1], n/2, "seed 1 must sit in the top half for n=%d", n)
		assert.GreaterOrEqual(t, slots[2], n/2, "seed 2 must sit in the bottom half for n=%d", n)
	}
}
