package brackets

import (
	"testing"

	"github.com/opendraw/draw-engine/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextPowerOfTwo(t *testing.T) {
	testCases := []struct {
		count    int
		expected int
	}{
		{0, 1},
		{1, 1},
		{2, 2},
		{3, 4},
		{5, 8},
		{8, 8},
		{9, 16},
		{13, 16},
		{17, 32},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.expected, NextPowerOfTwo(tc.count), "count=%d", tc.count)
	}
}

func TestRoundDisplayName(t *testing.T) {
	assert.Equal(t, "Final", RoundDisplayName(1, 2))
	assert.Equal(t, "Semifinal", RoundDisplayName(2, 1))
	assert.Equal(t, "Quarterfinal", RoundDisplayName(4, 0))
	assert.Equal(t, "Round 1", RoundDisplayName(8, 0))
	assert.Equal(t, "Round 2", RoundDisplayName(16, 1))
}

func TestBuildStructureRejectsTooFewParticipants(t *testing.T) {
	for _, count := range []int{-1, 0, 1} {
		_, _, err := BuildStructure(count, nil)
		assert.ErrorIs(t, err, ErrInsufficientParticipants, "count=%d", count)
	}
}

func TestBuildStructureEightParticipants(t *testing.T) {
	rounds, drawSize, err := BuildStructure(8, nil)
	require.NoError(t, err)
	assert.Equal(t, 8, drawSize)
	require.Len(t, rounds, 3)

	assert.Equal(t, "Quarterfinal", rounds[0].Name)
	assert.Equal(t, "Semifinal", rounds[1].Name)
	assert.Equal(t, "Final", rounds[2].Name)
	assert.Len(t, rounds[0].Matches, 4)
	assert.Len(t, rounds[1].Matches, 2)
	assert.Len(t, rounds[2].Matches, 1)

	// Round 1 has no feeders, and advances pairwise into round 2.
	m1 := rounds[0].Matches[0]
	assert.Equal(t, "R1-M1", m1.ID)
	assert.Nil(t, m1.FeederMatch1)
	assert.Nil(t, m1.FeederMatch2)
	require.NotNil(t, m1.WinnerTo)
	assert.Equal(t, "R2-M1", *m1.WinnerTo)
	assert.Equal(t, models.SlotPlayer1, m1.WinnerToSlot)

	m2 := rounds[0].Matches[1]
	require.NotNil(t, m2.WinnerTo)
	assert.Equal(t, "R2-M1", *m2.WinnerTo)
	assert.Equal(t, models.SlotPlayer2, m2.WinnerToSlot)

	// Round 2 carries explicit upstream links.
	sf := rounds[1].Matches[0]
	assert.Equal(t, "R2-M1", sf.ID)
	require.NotNil(t, sf.FeederMatch1)
	require.NotNil(t, sf.FeederMatch2)
	assert.Equal(t, "R1-M1", *sf.FeederMatch1)
	assert.Equal(t, "R1-M2", *sf.FeederMatch2)

	// The final has nowhere to advance to.
	final := rounds[2].Matches[0]
	assert.Equal(t, "R3-M1", final.ID)
	assert.Nil(t, final.WinnerTo)
	require.NotNil(t, final.FeederMatch1)
	assert.Equal(t, "R2-M1", *final.FeederMatch1)
}

func TestBuildStructureRoundsFromOddCount(t *testing.T) {
	rounds, drawSize, err := BuildStructure(13, nil)
	require.NoError(t, err)
	assert.Equal(t, 16, drawSize)
	require.Len(t, rounds, 4)
	assert.Len(t, rounds[0].Matches, 8)
}

func TestBuildStructureAppliesRoundConfigs(t *testing.T) {
	configs := []RoundConfig{
		{Name: "Opening Round", SetsConfig: 5},
		{SetsConfig: 7},
	}
	rounds, _, err := BuildStructure(8, configs)
	require.NoError(t, err)

	assert.Equal(t, "Opening Round", rounds[0].Name)
	assert.Equal(t, 5, rounds[0].SetsConfig)
	assert.Equal(t, "Semifinal", rounds[1].Name)
	assert.Equal(t, 7, rounds[1].SetsConfig)
	assert.Equal(t, defaultSetsConfig, rounds[2].SetsConfig)
}

func singleRoundBracket(t *testing.T, participantCount int) *models.Bracket {
	t.Helper()
	rounds, drawSize, err := BuildStructure(participantCount, nil)
	require.NoError(t, err)
	b := &models.Bracket{
		EventID:    "ev1",
		CategoryID: "cat1",
		Mode:       models.ModeElimination,
		DrawSize:   drawSize,
		Rounds:     rounds[:1],
	}
	for i := range b.Rounds[0].Matches {
		m := &b.Rounds[0].Matches[i]
		m.WinnerTo = nil
		m.WinnerToSlot = ""
	}
	return b
}

func TestAppendRoundGatedOnCompletion(t *testing.T) {
	b := singleRoundBracket(t, 4)
	r1 := &b.Rounds[0]
	r1.Matches[0].Player1 = models.SlotFor(models.Participant{ID: "a", DisplayName: "A"})
	r1.Matches[0].Player2 = models.SlotFor(models.Participant{ID: "b", DisplayName: "B"})
	r1.Matches[1].Player1 = models.SlotFor(models.Participant{ID: "c", DisplayName: "C"})
	r1.Matches[1].Player2 = models.SlotFor(models.Participant{ID: "d", DisplayName: "D"})

	_, err := AppendRound(b, nil)
	assert.ErrorIs(t, err, ErrPrevRoundIncomplete)

	r1.Matches[0].Winner = models.SlotPlayer1
	r1.Matches[1].Winner = models.SlotPlayer2

	round, err := AppendRound(b, nil)
	require.NoError(t, err)
	require.Len(t, b.Rounds, 2)
	assert.Equal(t, "Final", round.Name)
	require.Len(t, round.Matches, 1)

	// Advancement links were backfilled and decided winners pulled in.
	appended := round.Matches[0]
	assert.Equal(t, "R2-M1", appended.ID)
	require.NotNil(t, b.Rounds[0].Matches[0].WinnerTo)
	assert.Equal(t, "R2-M1", *b.Rounds[0].Matches[0].WinnerTo)
	assert.Equal(t, "a", appended.Player1.ID)
	assert.Equal(t, "d", appended.Player2.ID)
}

func TestAppendRoundAfterFinal(t *testing.T) {
	b := singleRoundBracket(t, 2)
	b.Rounds[0].Matches[0].Player1 = models.SlotFor(models.Participant{ID: "a", DisplayName: "A"})
	b.Rounds[0].Matches[0].Player2 = models.SlotFor(models.Participant{ID: "b", DisplayName: "B"})
	b.Rounds[0].Matches[0].Winner = models.SlotPlayer1

	_, err := AppendRound(b, nil)
	assert.ErrorIs(t, err, ErrChampionDecided)
}

func TestAppendRoundIgnoresByesInGate(t *testing.T) {
	b := singleRoundBracket(t, 4)
	r1 := &b.Rounds[0]
	// One real match, one bye: the bye must not block the gate.
	r1.Matches[0].Player1 = models.SlotFor(models.Participant{ID: "a", DisplayName: "A"})
	r1.Matches[0].Player2 = models.SlotFor(models.Participant{ID: "b", DisplayName: "B"})
	r1.Matches[0].Winner = models.SlotPlayer2
	r1.Matches[1].Player1 = models.SlotFor(models.Participant{ID: "c", DisplayName: "C"})

	_, err := AppendRound(b, &RoundConfig{Name: "Decider"})
	require.NoError(t, err)
	assert.Equal(t, "Decider", b.LastRound().Name)
}
