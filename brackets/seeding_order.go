package brackets

import "fmt"

// Literal tables for the small draws. Everything above 16 expands from
// order(n/2) by emitting s then n+1-s for each seed s, which keeps
// seeds 1 and 2 maximally separated so they can only meet in the final.
var seedingTables = map[int][]int{
	1:  {1},
	2:  {1, 2},
	4:  {1, 4, 3, 2},
	8:  {1, 8, 4, 5, 3, 6, 7, 2},
	16: {1, 16, 8, 9, 4, 13, 5, 12, 3, 14, 6, 11, 7, 10, 2, 15},
}

// SeedingOrder returns the canonical slot assignment for a power-of-two
// draw: index i holds the seed number that belongs in slot i. The same
// function must back any seeding preview; drift between preview and
// persisted structure is a correctness bug.
func SeedingOrder(n int) ([]int, error) {
	if n < 1 || n&(n-1) != 0 {
		return nil, fmt.Errorf("%w: got %d", ErrNotPowerOfTwo, n)
	}
	if table, ok := seedingTables[n]; ok {
		out := make([]int, n)
		copy(out, table)
		return out, nil
	}
	half, err := SeedingOrder(n / 2)
	if err != nil {
		return nil, err
	}
	out := make([]int, 0, n)
	for _, s := range half {
		out = append(out, s, n+1-s)
	}
	return out, nil
}

// slotOfSeed inverts a seeding order: result[s] is the slot index that
// seed s occupies (1-based seeds).
func slotOfSeed(order []int) map[int]int {
	slots := make(map[int]int, len(order))
	for i, s := range order {
		slots[s] = i
	}
	return slots
}
