package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/opendraw/draw-engine/brackets"
	"github.com/opendraw/draw-engine/models"
	"github.com/opendraw/draw-engine/repositories"
)

// Materializer reconciles the nested bracket structure with the flat
// match ledger. Creation is idempotent (conflict-tolerant inserts) and
// the sync passes are explicitly directional: the ledger is
// authoritative for score and winner, the structure for participant
// identity and topology. Conflicts are logged for operator review,
// never silently resolved.
type Materializer struct {
	ledgerRepo  repositories.LedgerRepository
	propagation *brackets.PropagationEngine
	logger      *slog.Logger
}

func NewMaterializer(ledgerRepo repositories.LedgerRepository, propagation *brackets.PropagationEngine, logger *slog.Logger) *Materializer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Materializer{ledgerRepo: ledgerRepo, propagation: propagation, logger: logger}
}

// Materialize upserts one ledger row per structural match. Round-1 byes
// are skipped (no opponent will ever arrive) and existing rows are left
// untouched, so re-running after structural edits only adds the
// newly-created matches.
func (m *Materializer) Materialize(ctx context.Context, exec repositories.SQLExecutor, b *models.Bracket) (int, error) {
	created := 0
	for ri := range b.Rounds {
		round := &b.Rounds[ri]
		for mi := range round.Matches {
			match := &round.Matches[mi]
			if ri == 0 && match.IsBye() {
				continue
			}
			row := &models.LedgerMatch{
				PublicID:          uuid.NewString(),
				EventID:           b.EventID,
				CategoryID:        b.CategoryID,
				BracketID:         b.ID,
				RoundName:         round.Name,
				MatchIndex:        mi + 1,
				StructuralMatchID: match.ID,
				PlayerAID:         slotID(match.Player1),
				PlayerBID:         slotID(match.Player2),
				Score:             match.Score,
				Status:            models.LedgerScheduled,
			}
			if match.IsBye() {
				row.Status = models.LedgerBye
			}
			if winner, ok := match.WinnerSlot(); ok {
				id := winner.ID
				row.WinnerID = &id
				if row.Status == models.LedgerScheduled {
					row.Status = models.LedgerCompleted
				}
			}
			inserted, err := m.ledgerRepo.Insert(ctx, exec, row)
			if err != nil {
				return created, fmt.Errorf("failed to materialize match %s: %w", match.ID, err)
			}
			if inserted {
				created++
			}
		}
	}
	return created, nil
}

// SyncStructureToLedger pushes participant identity (structure is
// authoritative for it) onto existing ledger rows and reports winner
// disagreements without touching the ledger's results.
func (m *Materializer) SyncStructureToLedger(ctx context.Context, b *models.Bracket) error {
	rows, err := m.ledgerRepo.ListByCategory(ctx, b.EventID, b.CategoryID)
	if err != nil {
		return err
	}
	for _, row := range rows {
		match, _, _, ok := b.FindMatch(row.StructuralMatchID)
		if !ok {
			m.logger.Warn("ledger row references unknown structural match",
				slog.String("event_id", b.EventID),
				slog.String("category_id", b.CategoryID),
				slog.String("structural_match_id", row.StructuralMatchID))
			continue
		}

		wantA, wantB := slotID(match.Player1), slotID(match.Player2)
		if !sameID(wantA, row.PlayerAID) || !sameID(wantB, row.PlayerBID) {
			if err := m.ledgerRepo.UpdateParticipants(ctx, row.ID, wantA, wantB); err != nil {
				return fmt.Errorf("failed to sync participants for %s: %w", row.StructuralMatchID, err)
			}
		}

		if winner, ok := match.WinnerSlot(); ok && row.WinnerID != nil && *row.WinnerID != winner.ID {
			m.logger.Warn("structure and ledger disagree on winner",
				slog.String("structural_match_id", row.StructuralMatchID),
				slog.String("structure_winner", winner.ID),
				slog.String("ledger_winner", *row.WinnerID))
		}
	}
	return nil
}

// SyncLedgerToStructure pulls authoritative scores and winners from the
// ledger back into the structure, re-propagating winners through the
// explicit links. Winner conflicts are logged and the structure's value
// kept, surfacing the disagreement instead of guessing.
func (m *Materializer) SyncLedgerToStructure(ctx context.Context, b *models.Bracket) error {
	rows, err := m.ledgerRepo.ListByCategory(ctx, b.EventID, b.CategoryID)
	if err != nil {
		return err
	}
	for _, row := range rows {
		match, _, _, ok := b.FindMatch(row.StructuralMatchID)
		if !ok {
			continue
		}
		if row.Score != nil {
			match.Score = row.Score
		}
		if row.WinnerID == nil || row.Status != models.LedgerCompleted {
			continue
		}

		slot, found := slotNameFor(match, *row.WinnerID)
		if !found {
			m.logger.Warn("ledger winner is not seated in structural match",
				slog.String("structural_match_id", row.StructuralMatchID),
				slog.String("winner_id", *row.WinnerID))
			continue
		}
		if match.Winner == "" {
			if err := m.propagation.ApplyWinner(b, match.ID, slot); err != nil {
				if errors.Is(err, brackets.ErrMatchNotFound) {
					continue
				}
				return err
			}
		} else if match.Winner != slot {
			m.logger.Warn("structure and ledger disagree on winner",
				slog.String("structural_match_id", row.StructuralMatchID),
				slog.String("structure_winner", string(match.Winner)),
				slog.String("ledger_winner", *row.WinnerID))
		}
	}
	return nil
}

func slotID(s models.Slot) *string {
	if !s.IsOccupied() {
		return nil
	}
	id := s.ID
	return &id
}

func sameID(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func slotNameFor(match *models.Match, participantID string) (models.SlotName, bool) {
	if match.Player1.IsOccupied() && match.Player1.ID == participantID {
		return models.SlotPlayer1, true
	}
	if match.Player2.IsOccupied() && match.Player2.ID == participantID {
		return models.SlotPlayer2, true
	}
	return "", false
}
