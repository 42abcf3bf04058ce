package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeedMapResolveOverrideWins(t *testing.T) {
	m := SeedMap{
		Global: map[string]int{"a": 1, "b": 2},
		Rounds: map[string]map[string]int{
			"Final": {"a": 2, "b": 1},
		},
	}

	rank, ok := m.Resolve("a", "Semifinal")
	assert.True(t, ok)
	assert.Equal(t, 1, rank)

	rank, ok = m.Resolve("a", "Final")
	assert.True(t, ok)
	assert.Equal(t, 2, rank)

	// An override present for the round still falls back to the global
	// map for ids it does not mention.
	m.Rounds["Final"] = map[string]int{"b": 1}
	rank, ok = m.Resolve("a", "Final")
	assert.True(t, ok)
	assert.Equal(t, 1, rank)

	_, ok = m.Resolve("ghost", "Final")
	assert.False(t, ok)
}

func TestSeedMapValidate(t *testing.T) {
	assert.NoError(t, SeedMap{}.Validate())
	// Ranks need not be contiguous.
	assert.NoError(t, SeedMap{Global: map[string]int{"a": 1, "b": 7}}.Validate())

	err := SeedMap{Global: map[string]int{"a": 1, "b": 1}}.Validate()
	assert.ErrorIs(t, err, ErrSeedMapDuplicateRank)

	err = SeedMap{Global: map[string]int{"a": 0}}.Validate()
	assert.ErrorIs(t, err, ErrSeedMapInvalidRank)

	err = SeedMap{Rounds: map[string]map[string]int{
		"Final": {"a": 3, "b": 3},
	}}.Validate()
	assert.ErrorIs(t, err, ErrSeedMapDuplicateRank)
}

func TestSeedMapUnknownIDs(t *testing.T) {
	roster := []Participant{{ID: "a"}, {ID: "b"}}
	m := SeedMap{
		Global: map[string]int{"a": 1, "withdrawn": 2},
		Rounds: map[string]map[string]int{
			"Final": {"b": 1, "ghost": 2},
		},
	}

	unknown := m.UnknownIDs(roster)
	assert.ElementsMatch(t, []string{"withdrawn", "ghost"}, unknown)
	assert.Empty(t, SeedMap{Global: map[string]int{"a": 1}}.UnknownIDs(roster))
}
