package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/opendraw/draw-engine/brackets"
	"github.com/opendraw/draw-engine/models"
	"github.com/opendraw/draw-engine/repositories"
)

// MatchService records elimination results: the ledger row is updated
// as the system of record and the winner is propagated through the
// nested structure. Propagation failures never block the result write.
type MatchService interface {
	RecordResult(ctx context.Context, eventID, categoryID, matchID string, winner models.SlotName, score *string) (*models.Bracket, error)
	ClearResult(ctx context.Context, eventID, categoryID, matchID string) (*models.Bracket, error)
}

type matchService struct {
	db           *sql.DB
	bracketRepo  repositories.BracketRepository
	ledgerRepo   repositories.LedgerRepository
	materializer *Materializer
	propagation  *brackets.PropagationEngine
	hub          *brackets.Hub
	logger       *slog.Logger
}

func NewMatchService(
	db *sql.DB,
	bracketRepo repositories.BracketRepository,
	ledgerRepo repositories.LedgerRepository,
	materializer *Materializer,
	propagation *brackets.PropagationEngine,
	hub *brackets.Hub,
	logger *slog.Logger,
) MatchService {
	if logger == nil {
		logger = slog.Default()
	}
	return &matchService{
		db:           db,
		bracketRepo:  bracketRepo,
		ledgerRepo:   ledgerRepo,
		materializer: materializer,
		propagation:  propagation,
		hub:          hub,
		logger:       logger,
	}
}

func (s *matchService) RecordResult(ctx context.Context, eventID, categoryID, matchID string, winner models.SlotName, score *string) (*models.Bracket, error) {
	if err := validateScope(eventID, categoryID); err != nil {
		return nil, err
	}
	// An equal score with no winner is a data-entry error in an
	// elimination round; draws only exist in league play.
	if winner != models.SlotPlayer1 && winner != models.SlotPlayer2 {
		return nil, ErrDrawNotAllowed
	}

	bracket, err := s.bracketRepo.Get(ctx, eventID, categoryID)
	if err != nil {
		if errors.Is(err, repositories.ErrBracketNotFound) {
			return nil, ErrBracketNotFound
		}
		return nil, err
	}

	if err := s.propagation.ApplyWinner(bracket, matchID, winner); err != nil {
		return nil, err
	}
	match, _, _, _ := bracket.FindMatch(matchID)
	match.Score = score

	if err := s.bracketRepo.Upsert(ctx, s.db, bracket); err != nil {
		return nil, fmt.Errorf("failed to save bracket after result: %w", err)
	}

	winnerID := match.Slot(winner).ID
	if err := s.updateLedger(ctx, bracket, matchID, score, models.LedgerCompleted, &winnerID); err != nil {
		// The structural result stands; the ledger catches up on the
		// next materialization/sync pass.
		s.logger.Error("ledger update failed after result",
			slog.String("event_id", eventID),
			slog.String("category_id", categoryID),
			slog.String("match_id", matchID),
			slog.Any("error", err))
	}

	s.hub.BroadcastToRoom(brackets.RoomKey(eventID, categoryID), brackets.MessageMatchUpdated, map[string]interface{}{
		"match_id":  matchID,
		"winner_id": winnerID,
		"score":     score,
	})
	return bracket, nil
}

func (s *matchService) ClearResult(ctx context.Context, eventID, categoryID, matchID string) (*models.Bracket, error) {
	if err := validateScope(eventID, categoryID); err != nil {
		return nil, err
	}
	bracket, err := s.bracketRepo.Get(ctx, eventID, categoryID)
	if err != nil {
		if errors.Is(err, repositories.ErrBracketNotFound) {
			return nil, ErrBracketNotFound
		}
		return nil, err
	}

	if err := s.propagation.ClearWinner(bracket, matchID); err != nil {
		return nil, err
	}
	if err := s.bracketRepo.Upsert(ctx, s.db, bracket); err != nil {
		return nil, fmt.Errorf("failed to save bracket after clearing result: %w", err)
	}
	if err := s.updateLedger(ctx, bracket, matchID, nil, models.LedgerScheduled, nil); err != nil {
		s.logger.Error("ledger update failed after clearing result",
			slog.String("event_id", eventID),
			slog.String("category_id", categoryID),
			slog.String("match_id", matchID),
			slog.Any("error", err))
	}

	s.hub.BroadcastToRoom(brackets.RoomKey(eventID, categoryID), brackets.MessageMatchUpdated, map[string]interface{}{
		"match_id": matchID,
		"cleared":  true,
	})
	return bracket, nil
}

func (s *matchService) updateLedger(ctx context.Context, bracket *models.Bracket, matchID string, score *string, status models.LedgerStatus, winnerID *string) error {
	row, err := s.ledgerRepo.GetByStructuralID(ctx, bracket.EventID, bracket.CategoryID, matchID)
	if errors.Is(err, repositories.ErrLedgerMatchNotFound) {
		// Structure got ahead of the ledger; materialize and retry once.
		if _, mErr := s.materializer.Materialize(ctx, s.db, bracket); mErr != nil {
			return mErr
		}
		row, err = s.ledgerRepo.GetByStructuralID(ctx, bracket.EventID, bracket.CategoryID, matchID)
	}
	if err != nil {
		return err
	}
	return s.ledgerRepo.UpdateScoreStatusWinner(ctx, row.ID, score, status, winnerID)
}
