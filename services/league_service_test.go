package services

import (
	"context"
	"testing"

	"github.com/opendraw/draw-engine/brackets"
	"github.com/opendraw/draw-engine/models"
	"github.com/opendraw/draw-engine/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLeagueRepository struct {
	leagues map[string]*models.League
}

func newFakeLeagueRepository() *fakeLeagueRepository {
	return &fakeLeagueRepository{leagues: make(map[string]*models.League)}
}

func (f *fakeLeagueRepository) Get(_ context.Context, eventID, categoryID string) (*models.League, error) {
	league, ok := f.leagues[eventID+"|"+categoryID]
	if !ok {
		return nil, repositories.ErrLeagueNotFound
	}
	clone := *league
	return &clone, nil
}

func (f *fakeLeagueRepository) Upsert(_ context.Context, _ repositories.SQLExecutor, league *models.League) error {
	clone := *league
	f.leagues[league.EventID+"|"+league.CategoryID] = &clone
	return nil
}

func (f *fakeLeagueRepository) Delete(_ context.Context, eventID, categoryID string) error {
	key := eventID + "|" + categoryID
	if _, ok := f.leagues[key]; !ok {
		return repositories.ErrLeagueNotFound
	}
	delete(f.leagues, key)
	return nil
}

func leagueFixture(t *testing.T, participantCount int) (LeagueService, *fakeLedgerRepository) {
	t.Helper()
	leagueRepo := newFakeLeagueRepository()
	ledgerRepo := newFakeLedgerRepository()
	svc := NewLeagueService(nil, leagueRepo, ledgerRepo, brackets.NewHub(nil), nil)

	participants := make([]models.LeagueParticipant, 0, participantCount)
	names := []string{"", "Alice", "Bob", "Carol", "Dave", "Eve"}
	for i := 1; i <= participantCount; i++ {
		participants = append(participants, models.LeagueParticipant{
			Participant: models.Participant{ID: names[i], DisplayName: names[i]},
		})
	}
	_, err := svc.Upsert(context.Background(), &models.League{
		EventID:      "ev1",
		CategoryID:   "cat1",
		Participants: participants,
	})
	require.NoError(t, err)
	return svc, ledgerRepo
}

func TestLeagueGenerateFixturesIdempotent(t *testing.T) {
	svc, _ := leagueFixture(t, 5)

	created, err := svc.GenerateFixtures(context.Background(), "ev1", "cat1")
	require.NoError(t, err)
	assert.Equal(t, 10, created)

	created, err = svc.GenerateFixtures(context.Background(), "ev1", "cat1")
	require.NoError(t, err)
	assert.Zero(t, created)

	fixtures, err := svc.ListFixtures(context.Background(), "ev1", "cat1")
	require.NoError(t, err)
	assert.Len(t, fixtures, 10)
}

func TestLeagueRecordResultValidatesWinner(t *testing.T) {
	svc, _ := leagueFixture(t, 3)
	_, err := svc.GenerateFixtures(context.Background(), "ev1", "cat1")
	require.NoError(t, err)
	fixtures, err := svc.ListFixtures(context.Background(), "ev1", "cat1")
	require.NoError(t, err)
	require.NotEmpty(t, fixtures)

	outsider := "Mallory"
	err = svc.RecordResult(context.Background(), "ev1", "cat1", fixtures[0].ID, &outsider, nil)
	assert.ErrorIs(t, err, ErrLeagueWinnerUnknown)

	err = svc.RecordResult(context.Background(), "ev1", "cat1", 9999, nil, nil)
	assert.ErrorIs(t, err, ErrMatchNotFound)
}

func TestLeagueStandingsWithDraw(t *testing.T) {
	svc, _ := leagueFixture(t, 3)
	_, err := svc.GenerateFixtures(context.Background(), "ev1", "cat1")
	require.NoError(t, err)
	fixtures, err := svc.ListFixtures(context.Background(), "ev1", "cat1")
	require.NoError(t, err)
	require.Len(t, fixtures, 3)

	byPair := make(map[string]*models.LedgerMatch)
	for _, f := range fixtures {
		a, b := *f.PlayerAID, *f.PlayerBID
		if b < a {
			a, b = b, a
		}
		byPair[a+"|"+b] = f
	}

	// Alice beats Bob, Alice draws Carol, Bob beats Carol.
	alice := "Alice"
	bob := "Bob"
	require.NoError(t, svc.RecordResult(context.Background(), "ev1", "cat1", byPair["Alice|Bob"].ID, &alice, nil))
	require.NoError(t, svc.RecordResult(context.Background(), "ev1", "cat1", byPair["Alice|Carol"].ID, nil, nil))
	require.NoError(t, svc.RecordResult(context.Background(), "ev1", "cat1", byPair["Bob|Carol"].ID, &bob, nil))

	standings, err := svc.Standings(context.Background(), "ev1", "cat1")
	require.NoError(t, err)
	require.Len(t, standings, 3)

	// Default 3/1/0 points: Alice 4, Bob 3, Carol 1.
	assert.Equal(t, "Alice", standings[0].ParticipantID)
	assert.Equal(t, 4, standings[0].Points)
	assert.Equal(t, 1, standings[0].Draws)
	assert.Equal(t, "Bob", standings[1].ParticipantID)
	assert.Equal(t, 3, standings[1].Points)
	assert.Equal(t, "Carol", standings[2].ParticipantID)
	assert.Equal(t, 1, standings[2].Points)
	assert.Equal(t, 2, standings[2].Played)
}
