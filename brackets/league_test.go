package brackets

import (
	"fmt"
	"testing"

	"github.com/opendraw/draw-engine/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func leagueRoster(count int, group string) []models.LeagueParticipant {
	out := make([]models.LeagueParticipant, 0, count)
	for i := 1; i <= count; i++ {
		out = append(out, models.LeagueParticipant{
			Participant: models.Participant{
				ID:          fmt.Sprintf("%s%02d", group, i),
				DisplayName: fmt.Sprintf("%s Player %d", group, i),
			},
			Group: group,
		})
	}
	return out
}

func TestGenerateFixturesAllPairs(t *testing.T) {
	fixtures := GenerateFixtures(leagueRoster(5, ""), nil)
	// n(n-1)/2 for n=5.
	require.Len(t, fixtures, 10)

	seen := make(map[string]bool)
	for _, f := range fixtures {
		assert.NotEqual(t, f.HomeID, f.AwayID)
		key := pairKey(f.Group, f.HomeID, f.AwayID)
		assert.False(t, seen[key], "duplicate pair %s", key)
		seen[key] = true
	}
}

func TestGenerateFixturesIsIdempotent(t *testing.T) {
	participants := leagueRoster(4, "")
	first := GenerateFixtures(participants, nil)
	require.Len(t, first, 6)

	second := GenerateFixtures(participants, first)
	assert.Empty(t, second, "a complete schedule must not grow on re-run")
}

func TestGenerateFixturesFillsOnlyMissingPairs(t *testing.T) {
	participants := leagueRoster(4, "")
	existing := []Pairing{
		{HomeID: "01", AwayID: "02"},
		// Reversed order must still count as the same fixture.
		{HomeID: "04", AwayID: "03"},
	}

	missing := GenerateFixtures(participants, existing)
	require.Len(t, missing, 4)
	for _, f := range missing {
		key := pairKey(f.Group, f.HomeID, f.AwayID)
		assert.NotEqual(t, pairKey("", "01", "02"), key)
		assert.NotEqual(t, pairKey("", "03", "04"), key)
	}
}

func TestGenerateFixturesKeepsGroupsApart(t *testing.T) {
	participants := append(leagueRoster(3, "A"), leagueRoster(4, "B")...)
	fixtures := GenerateFixtures(participants, nil)

	// 3 pairs in group A plus 6 in group B, no cross-group fixtures.
	require.Len(t, fixtures, 9)
	countByGroup := make(map[string]int)
	for _, f := range fixtures {
		countByGroup[f.Group]++
		assert.Equal(t, f.Group, f.HomeID[:1])
		assert.Equal(t, f.Group, f.AwayID[:1])
	}
	assert.Equal(t, 3, countByGroup["A"])
	assert.Equal(t, 6, countByGroup["B"])
}
