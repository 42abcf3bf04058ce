package brackets

import (
	"testing"

	"github.com/opendraw/draw-engine/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seededBracket builds a 16-draw with 13 participants: seeds 1-3 hold
// ranked byes in R1-M1, R1-M5 and R1-M8.
func seededBracket(t *testing.T) *models.Bracket {
	t.Helper()
	roster := testRoster(13)
	b := builtBracket(t, 13, models.SeedMap{Global: map[string]int{
		"p01": 1, "p02": 2, "p03": 3,
	}})
	engine := NewSeedingEngine(nil, false)
	require.NoError(t, engine.Seed(b, roster, 42))
	return b
}

func TestAssignByeToPlayerRejectsRankedParticipant(t *testing.T) {
	b := seededBracket(t)
	bm := NewByeManager(nil)

	err := bm.AssignByeToPlayer(b, "R1-M1", "p02", "")
	assert.ErrorIs(t, err, ErrParticipantRanked)
}

func TestAssignByeToPlayerRejectsSeatedParticipant(t *testing.T) {
	b := seededBracket(t)
	bm := NewByeManager(nil)

	// Every unranked roster member is already seated in a 13-draw.
	err := bm.AssignByeToPlayer(b, "R1-M1", "p07", "")
	assert.ErrorIs(t, err, ErrParticipantSeated)
}

func TestAssignByeToPlayerRejectsUnknownAndNonBye(t *testing.T) {
	b := seededBracket(t)
	bm := NewByeManager(nil)

	assert.ErrorIs(t, bm.AssignByeToPlayer(b, "R1-M1", "ghost", ""), ErrParticipantUnknown)
	assert.ErrorIs(t, bm.AssignByeToPlayer(b, "R9-M9", "p07", ""), ErrMatchNotFound)

	// Find a full round-1 match.
	var fullMatch string
	for _, m := range b.Rounds[0].Matches {
		if m.Player1.IsOccupied() && m.Player2.IsOccupied() {
			fullMatch = m.ID
			break
		}
	}
	require.NotEmpty(t, fullMatch)
	assert.ErrorIs(t, bm.AssignByeToPlayer(b, fullMatch, "p07", ""), ErrNotABye)
}

func TestAssignByeToPlayerSeatsStandby(t *testing.T) {
	b := seededBracket(t)
	standby := models.Participant{ID: "p99", DisplayName: "Standby", Kind: models.ParticipantIndividual}
	b.Players = append(b.Players, standby)

	bm := NewByeManager(nil)
	require.NoError(t, bm.AssignByeToPlayer(b, "R1-M1", "p99", ""))

	m, _, _, ok := b.FindMatch("R1-M1")
	require.True(t, ok)
	assert.True(t, m.IsManualBye)
	assert.Equal(t, "p01", m.Player1.ID)
	assert.Equal(t, "p99", m.Player2.ID)
	assert.Empty(t, m.Winner, "a filled bye is a real match again")

	// The auto-advanced seed was pulled back out of the semifinal slot.
	down, _, _, ok := b.FindMatch("R2-M1")
	require.True(t, ok)
	assert.False(t, down.Player1.IsOccupied())

	// The lock is revoked: the match no longer counts as a ranked bye.
	assert.False(t, b.IsRankedBye(m, b.Rounds[0].Name))
}

func TestAssignByeToPlayerRejectsReplacingRankedSide(t *testing.T) {
	b := seededBracket(t)
	standby := models.Participant{ID: "p99", DisplayName: "Standby", Kind: models.ParticipantIndividual}
	b.Players = append(b.Players, standby)

	bm := NewByeManager(nil)

	// R1-M1 is seed 1's reserved bye: its occupied side is locked.
	err := bm.AssignByeToPlayer(b, "R1-M1", "p99", models.SlotPlayer1)
	assert.ErrorIs(t, err, ErrRankedByeLocked)

	m, _, _, ok := b.FindMatch("R1-M1")
	require.True(t, ok)
	assert.Equal(t, "p01", m.Player1.ID)
	assert.False(t, m.IsManualBye)
}

func TestAssignByeToPlayerReplacesUnrankedOccupant(t *testing.T) {
	// No seed map: every bye is unranked and therefore unlocked.
	roster := testRoster(13)
	b := builtBracket(t, 13, models.SeedMap{})
	engine := NewSeedingEngine(nil, false)
	require.NoError(t, engine.Seed(b, roster, 42))

	var bye *models.Match
	for i := range b.Rounds[0].Matches {
		if b.Rounds[0].Matches[i].IsBye() {
			bye = &b.Rounds[0].Matches[i]
			break
		}
	}
	require.NotNil(t, bye, "a 13-of-16 draw always has at least one bye")
	occupiedName, occupant, ok := bye.OccupiedSlot()
	require.True(t, ok)

	standby := models.Participant{ID: "p99", DisplayName: "Standby", Kind: models.ParticipantIndividual}
	b.Players = append(b.Players, standby)

	bm := NewByeManager(nil)
	require.NoError(t, bm.AssignByeToPlayer(b, bye.ID, "p99", occupiedName))

	assert.Equal(t, "p99", bye.Slot(occupiedName).ID)
	assert.True(t, bye.IsManualBye)
	assert.Equal(t, occupiedName, bye.Winner, "the match stays a bye and the replacement advances")
	assert.False(t, b.IsSeated(occupant.ID), "the replaced occupant returns to the unseated pool")

	require.NotNil(t, bye.WinnerTo)
	down, _, _, ok := b.FindMatch(*bye.WinnerTo)
	require.True(t, ok)
	assert.Equal(t, "p99", down.Slot(bye.WinnerToSlot).ID)
}

func TestReshufflePreservesRankedAndManualByes(t *testing.T) {
	b := seededBracket(t)
	bm := NewByeManager(nil)

	require.NoError(t, bm.Reshuffle(b, nil, 7))

	round1 := b.Rounds[0]
	assert.Equal(t, "p01", round1.Matches[0].Player1.ID)
	assert.Equal(t, "p03", round1.Matches[4].Player1.ID)
	assert.Equal(t, "p02", round1.Matches[7].Player1.ID)
	for _, mi := range []int{0, 4, 7} {
		assert.True(t, round1.Matches[mi].IsBye(), "ranked bye %s must survive a reshuffle", round1.Matches[mi].ID)
	}

	// Everyone is still seated exactly once.
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

func TestReshuffleKeepsManualAssignment(t *testing.T) {
	b := seededBracket(t)
	standby := models.Participant{ID: "p99", DisplayName: "Standby", Kind: models.ParticipantIndividual}
	b.Players = append(b.Players, standby)

	bm := NewByeManager(nil)
	require.NoError(t, bm.AssignByeToPlayer(b, "R1-M1", "p99", ""))
	require.NoError(t, bm.Reshuffle(b, nil, 3))

	m, _, _, ok := b.FindMatch("R1-M1")
	require.True(t, ok)
	assert.Equal(t, "p01", m.Player1.ID)
	assert.Equal(t, "p99", m.Player2.ID)
	assert.True(t, m.IsManualBye)
}

func TestFinalizeIsIdempotent(t *testing.T) {
	b := seededBracket(t)
	bm := NewByeManager(nil)

	bm.Finalize(b)
	require.True(t, b.ByesFinalized)
	require.NotNil(t, b.ByesFinalizedAt)
	first := *b.ByesFinalizedAt

	bm.Finalize(b)
	assert.Equal(t, first, *b.ByesFinalizedAt)
}
