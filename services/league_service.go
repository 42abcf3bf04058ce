package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/opendraw/draw-engine/brackets"
	"github.com/opendraw/draw-engine/models"
	"github.com/opendraw/draw-engine/repositories"
)

var ErrLeagueWinnerUnknown = errors.New("winner is not part of the fixture")

// implicitGroupName labels fixtures of the single implicit group in the
// ledger's round-name column.
const implicitGroupName = "League"

type LeagueService interface {
	Upsert(ctx context.Context, league *models.League) (*models.League, error)
	Get(ctx context.Context, eventID, categoryID string) (*models.League, error)
	Delete(ctx context.Context, eventID, categoryID string) error

	GenerateFixtures(ctx context.Context, eventID, categoryID string) (int, error)
	ListFixtures(ctx context.Context, eventID, categoryID string) ([]*models.LedgerMatch, error)
	RecordResult(ctx context.Context, eventID, categoryID string, fixtureID int, winnerID *string, score *string) error
	Standings(ctx context.Context, eventID, categoryID string) ([]models.Standing, error)
}

type leagueService struct {
	db         *sql.DB
	leagueRepo repositories.LeagueRepository
	ledgerRepo repositories.LedgerRepository
	hub        *brackets.Hub
	logger     *slog.Logger
}

func NewLeagueService(
	db *sql.DB,
	leagueRepo repositories.LeagueRepository,
	ledgerRepo repositories.LedgerRepository,
	hub *brackets.Hub,
	logger *slog.Logger,
) LeagueService {
	if logger == nil {
		logger = slog.Default()
	}
	return &leagueService{
		db:         db,
		leagueRepo: leagueRepo,
		ledgerRepo: ledgerRepo,
		hub:        hub,
		logger:     logger,
	}
}

func (s *leagueService) Upsert(ctx context.Context, league *models.League) (*models.League, error) {
	if err := validateScope(league.EventID, league.CategoryID); err != nil {
		return nil, err
	}
	if league.Rules == (models.LeagueRules{}) {
		league.Rules = models.DefaultLeagueRules()
	}
	seen := make(map[string]bool, len(league.Participants))
	deduped := league.Participants[:0]
	for _, p := range league.Participants {
		if p.ID == "" {
			return nil, fmt.Errorf("%w: participant without id", ErrRosterMalformed)
		}
		if seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		deduped = append(deduped, p)
	}
	league.Participants = deduped
	if league.CreatedAt.IsZero() {
		league.CreatedAt = time.Now().UTC()
	}
	if err := s.leagueRepo.Upsert(ctx, s.db, league); err != nil {
		return nil, err
	}
	return league, nil
}

func (s *leagueService) Get(ctx context.Context, eventID, categoryID string) (*models.League, error) {
	if err := validateScope(eventID, categoryID); err != nil {
		return nil, err
	}
	league, err := s.leagueRepo.Get(ctx, eventID, categoryID)
	if err != nil {
		if errors.Is(err, repositories.ErrLeagueNotFound) {
			return nil, ErrLeagueNotFound
		}
		return nil, err
	}
	return league, nil
}

func (s *leagueService) Delete(ctx context.Context, eventID, categoryID string) error {
	if err := validateScope(eventID, categoryID); err != nil {
		return err
	}
	if err := s.leagueRepo.Delete(ctx, eventID, categoryID); err != nil {
		if errors.Is(err, repositories.ErrLeagueNotFound) {
			return ErrLeagueNotFound
		}
		return err
	}
	_, err := s.ledgerRepo.DeleteByCategory(ctx, s.db, eventID, categoryID)
	return err
}

// GenerateFixtures inserts the round-robin pairs that do not exist yet,
// directly into the ledger. Idempotent: a re-run after partial
// generation adds only the missing pairs.
func (s *leagueService) GenerateFixtures(ctx context.Context, eventID, categoryID string) (int, error) {
	league, err := s.Get(ctx, eventID, categoryID)
	if err != nil {
		return 0, err
	}

	existingRows, err := s.ledgerRepo.ListByCategory(ctx, eventID, categoryID)
	if err != nil {
		return 0, err
	}
	existing := make([]brackets.Pairing, 0, len(existingRows))
	indexByGroup := make(map[string]int)
	for _, row := range existingRows {
		if row.PlayerAID == nil || row.PlayerBID == nil {
			continue
		}
		group := groupFromRoundName(row.RoundName)
		existing = append(existing, brackets.Pairing{
			Group:  group,
			HomeID: *row.PlayerAID,
			AwayID: *row.PlayerBID,
		})
		if row.MatchIndex > indexByGroup[group] {
			indexByGroup[group] = row.MatchIndex
		}
	}

	missing := brackets.GenerateFixtures(league.Participants, existing)
	created := 0
	for _, pairing := range missing {
		indexByGroup[pairing.Group]++
		homeID, awayID := pairing.HomeID, pairing.AwayID
		row := &models.LedgerMatch{
			PublicID:          uuid.NewString(),
			EventID:           eventID,
			CategoryID:        categoryID,
			RoundName:         roundNameForGroup(pairing.Group),
			MatchIndex:        indexByGroup[pairing.Group],
			StructuralMatchID: fmt.Sprintf("%s-%s", homeID, awayID),
			PlayerAID:         &homeID,
			PlayerBID:         &awayID,
			Status:            models.LedgerScheduled,
		}
		inserted, err := s.ledgerRepo.Insert(ctx, s.db, row)
		if err != nil {
			return created, fmt.Errorf("failed to insert fixture %s vs %s: %w", homeID, awayID, err)
		}
		if inserted {
			created++
		}
	}

	s.logger.Info("league fixtures generated",
		slog.String("event_id", eventID),
		slog.String("category_id", categoryID),
		slog.Int("created", created))
	if created > 0 {
		s.hub.BroadcastToRoom(brackets.RoomKey(eventID, categoryID), brackets.MessageLeagueUpdated, map[string]interface{}{
			"fixtures_created": created,
		})
	}
	return created, nil
}

func (s *leagueService) ListFixtures(ctx context.Context, eventID, categoryID string) ([]*models.LedgerMatch, error) {
	if err := validateScope(eventID, categoryID); err != nil {
		return nil, err
	}
	return s.ledgerRepo.ListByCategory(ctx, eventID, categoryID)
}

// RecordResult stores a league outcome. A nil winner with a recorded
// score is a draw, a legitimate terminal result here.
func (s *leagueService) RecordResult(ctx context.Context, eventID, categoryID string, fixtureID int, winnerID *string, score *string) error {
	if err := validateScope(eventID, categoryID); err != nil {
		return err
	}
	rows, err := s.ledgerRepo.ListByCategory(ctx, eventID, categoryID)
	if err != nil {
		return err
	}
	var fixture *models.LedgerMatch
	for _, row := range rows {
		if row.ID == fixtureID {
			fixture = row
			break
		}
	}
	if fixture == nil {
		return ErrMatchNotFound
	}
	if winnerID != nil {
		if !sameID(winnerID, fixture.PlayerAID) && !sameID(winnerID, fixture.PlayerBID) {
			return fmt.Errorf("%w: %s", ErrLeagueWinnerUnknown, *winnerID)
		}
	}
	if err := s.ledgerRepo.UpdateScoreStatusWinner(ctx, fixtureID, score, models.LedgerCompleted, winnerID); err != nil {
		return err
	}
	s.hub.BroadcastToRoom(brackets.RoomKey(eventID, categoryID), brackets.MessageLeagueUpdated, map[string]interface{}{
		"fixture_id": fixtureID,
		"winner_id":  winnerID,
		"score":      score,
	})
	return nil
}

// Standings derives the table from completed ledger rows and the
// league's points rules. Never persisted.
func (s *leagueService) Standings(ctx context.Context, eventID, categoryID string) ([]models.Standing, error) {
	league, err := s.Get(ctx, eventID, categoryID)
	if err != nil {
		return nil, err
	}
	rows, err := s.ledgerRepo.ListByCategory(ctx, eventID, categoryID)
	if err != nil {
		return nil, err
	}

	table := make(map[string]*models.Standing, len(league.Participants))
	for _, p := range league.Participants {
		table[p.ID] = &models.Standing{
			ParticipantID: p.ID,
			DisplayName:   p.DisplayName,
			Group:         p.Group,
		}
	}

	for _, row := range rows {
		if row.Status != models.LedgerCompleted || row.PlayerAID == nil || row.PlayerBID == nil {
			continue
		}
		home, homeOK := table[*row.PlayerAID]
		away, awayOK := table[*row.PlayerBID]
		if !homeOK || !awayOK {
			continue
		}
		home.Played++
		away.Played++
		switch {
		case row.WinnerID == nil:
			home.Draws++
			away.Draws++
			home.Points += league.Rules.DrawPoints
			away.Points += league.Rules.DrawPoints
		case *row.WinnerID == *row.PlayerAID:
			home.Wins++
			away.Losses++
			home.Points += league.Rules.WinPoints
			away.Points += league.Rules.LossPoints
		default:
			away.Wins++
			home.Losses++
			away.Points += league.Rules.WinPoints
			home.Points += league.Rules.LossPoints
		}
	}

	standings := make([]models.Standing, 0, len(table))
	for _, row := range table {
		standings = append(standings, *row)
	}
	sort.Slice(standings, func(i, j int) bool {
		if standings[i].Group != standings[j].Group {
			return standings[i].Group < standings[j].Group
		}
		if standings[i].Points != standings[j].Points {
			return standings[i].Points > standings[j].Points
		}
		if standings[i].Wins != standings[j].Wins {
			return standings[i].Wins > standings[j].Wins
		}
		return standings[i].DisplayName < standings[j].DisplayName
	})
	return standings, nil
}

func roundNameForGroup(group string) string {
	if group == "" {
		return implicitGroupName
	}
	return group
}

func groupFromRoundName(name string) string {
	if name == implicitGroupName {
		return ""
	}
	return name
}
