package brackets

import (
	"fmt"
	"testing"

	"github.com/opendraw/draw-engine/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRoster(count int) []models.Participant {
	roster := make([]models.Participant, 0, count)
	for i := 1; i <= count; i++ {
		roster = append(roster, models.Participant{
			ID:          fmt.Sprintf("p%02d", i),
			DisplayName: fmt.Sprintf("Player %d", i),
			Kind:        models.ParticipantIndividual,
		})
	}
	return roster
}

func builtBracket(t *testing.T, participantCount int, seedMap models.SeedMap) *models.Bracket {
	t.Helper()
	rounds, drawSize, err := BuildStructure(participantCount, nil)
	require.NoError(t, err)
	return &models.Bracket{
		ID:         "b1",
		EventID:    "ev1",
		CategoryID: "cat1",
		Mode:       models.ModeElimination,
		DrawSize:   drawSize,
		Rounds:     rounds,
		SeedMap:    seedMap,
	}
}

func TestSeedThirteenParticipantsGivesTopSeedsByes(t *testing.T) {
	roster := testRoster(13)
	seedMap := models.SeedMap{Global: map[string]int{
		"p01": 1, "p02": 2, "p03": 3,
	}}
	b := builtBracket(t, 13, seedMap)

	engine := NewSeedingEngine(nil, false)
	require.NoError(t, engine.Seed(b, roster, 42))

	assert.Equal(t, 16, b.DrawSize)
	round1 := b.Rounds[0]

	// Canonical 16-slot positions: seed 1 at slot 0, seed 2 at slot 14,
	// seed 3 at slot 8; their opponents stay empty as reserved byes.
	assert.Equal(t, "p01", round1.Matches[0].Player1.ID)
	assert.Equal(t, "p02", round1.Matches[7].Player1.ID)
	assert.Equal(t, "p03", round1.Matches[4].Player1.ID)

	for _, mi := range []int{0, 4, 7} {
		m := round1.Matches[mi]
		assert.True(t, m.IsBye(), "match %s should be a bye", m.ID)
		assert.Equal(t, models.SlotPlayer1, m.Winner, "bye %s should auto-advance", m.ID)
	}

	// Auto-advanced occupants land in their downstream slots.
	sf1, _, _, ok := b.FindMatch("R2-M1")
	require.True(t, ok)
	assert.Equal(t, "p01", sf1.Player1.ID)
	q4, _, _, ok := b.FindMatch("R2-M4")
	require.True(t, ok)
	assert.Equal(t, "p02", q4.Player2.ID)

	// Everyone is seated exactly once.
	seated := make(map[string]int)
	for _, m := range round1.Matches {
		for _, s := range []models.Slot{m.Player1, m.Player2} {
			if s.IsOccupied() {
				seated[s.ID]++
			}
		}
	}
	assert.Len(t, seated, 13)
	for id, n := range seated {
		assert.Equal(t, 1, n, "participant %s seated %d times", id, n)
	}
}

func TestSeedFullDrawHasNoByes(t *testing.T) {
	roster := testRoster(8)
	b := builtBracket(t, 8, models.SeedMap{Global: map[string]int{"p01": 1, "p02": 2}})

	engine := NewSeedingEngine(nil, false)
	require.NoError(t, engine.Seed(b, roster, 7))

	for _, m := range b.Rounds[0].Matches {
		assert.True(t, m.Player1.IsOccupied())
		assert.True(t, m.Player2.IsOccupied())
		assert.Empty(t, m.Winner)
	}
}

func TestSeedIsDeterministicForSameShuffleSeed(t *testing.T) {
	roster := testRoster(13)
	seedMap := models.SeedMap{Global: map[string]int{"p01": 1, "p02": 2}}

	engine := NewSeedingEngine(nil, false)
	first := builtBracket(t, 13, seedMap)
	require.NoError(t, engine.Seed(first, roster, 99))
	second := builtBracket(t, 13, seedMap)
	require.NoError(t, engine.Seed(second, roster, 99))

	assert.Equal(t, first.Rounds[0], second.Rounds[0])
}

func TestSeedRejectsDuplicateRanks(t *testing.T) {
	roster := testRoster(4)
	b := builtBracket(t, 4, models.SeedMap{Global: map[string]int{"p01": 1, "p02": 1}})

	engine := NewSeedingEngine(nil, false)
	err := engine.Seed(b, roster, 1)
	assert.ErrorIs(t, err, ErrInvalidSeedMap)
}

func TestSeedStaleSeedMapEntries(t *testing.T) {
	roster := testRoster(4)
	seedMap := models.SeedMap{Global: map[string]int{"p01": 1, "withdrawn": 2}}

	t.Run("lenient proceeds with the physical roster", func(t *testing.T) {
		b := builtBracket(t, 4, seedMap)
		engine := NewSeedingEngine(nil, false)
		require.NoError(t, engine.Seed(b, roster, 5))
		assert.Equal(t, "p01", b.Rounds[0].Matches[0].Player1.ID)
	})

	t.Run("strict rejects", func(t *testing.T) {
		b := builtBracket(t, 4, seedMap)
		engine := NewSeedingEngine(nil, true)
		err := engine.Seed(b, roster, 5)
		assert.ErrorIs(t, err, ErrUnknownSeededIDs)
	})
}

func TestSeedRoundOverrideWinsOverGlobal(t *testing.T) {
	roster := testRoster(4)
	b := builtBracket(t, 4, models.SeedMap{
		Global: map[string]int{"p01": 1, "p02": 2},
		Rounds: map[string]map[string]int{
			"Semifinal": {"p02": 1, "p01": 2},
		},
	})

	engine := NewSeedingEngine(nil, false)
	require.NoError(t, engine.Seed(b, roster, 11))
	// 4-participant draw: round 1 is the Semifinal, so the override
	// applies and p02 takes the top slot.
	assert.Equal(t, "p02", b.Rounds[0].Matches[0].Player1.ID)
}
