package brackets

import (
	"fmt"
	"log/slog"

	"github.com/opendraw/draw-engine/models"
)

// PropagationEngine advances declared winners into their downstream
// slots. Steady-state it only follows the explicit winnerTo links;
// legacy matches without links get positional inference exactly once,
// and the inferred link is persisted.
type PropagationEngine struct {
	logger *slog.Logger
}

func NewPropagationEngine(logger *slog.Logger) *PropagationEngine {
	if logger == nil {
		logger = slog.Default()
	}
	return &PropagationEngine{logger: logger}
}

// ApplyWinner records the winner of a structural match and pushes the
// participant downstream. A failed propagation is non-fatal: the
// completion itself stands and a re-sync can retry the advancement.
func (e *PropagationEngine) ApplyWinner(b *models.Bracket, matchID string, winner models.SlotName) error {
	m, ri, mi, ok := b.FindMatch(matchID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrMatchNotFound, matchID)
	}
	if winner != models.SlotPlayer1 && winner != models.SlotPlayer2 {
		return fmt.Errorf("%w: %q", ErrWinnerSlotEmpty, winner)
	}
	// A bye sentinel or an empty slot is never a winner.
	if !m.Slot(winner).IsOccupied() {
		return fmt.Errorf("%w: %s/%s", ErrWinnerSlotEmpty, matchID, winner)
	}

	m.Winner = winner
	e.propagate(b, m, ri, mi)
	return nil
}

// ClearWinner undoes a recorded result. The edit clears the downstream
// propagated value as well, recursively if the downstream match has
// itself been decided off the now-removed participant.
func (e *PropagationEngine) ClearWinner(b *models.Bracket, matchID string) error {
	m, _, _, ok := b.FindMatch(matchID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrMatchNotFound, matchID)
	}
	winner, hadWinner := m.WinnerSlot()
	m.Winner = ""
	m.Score = nil
	if !hadWinner || m.WinnerTo == nil {
		return nil
	}

	down, _, _, found := b.FindMatch(*m.WinnerTo)
	if !found {
		return nil
	}
	existing := down.Slot(m.WinnerToSlot)
	if !existing.IsOccupied() || existing.ID != winner.ID {
		return nil
	}
	if down.Winner == m.WinnerToSlot {
		if err := e.ClearWinner(b, down.ID); err != nil {
			return err
		}
	}
	down.SetSlot(m.WinnerToSlot, models.EmptySlot())
	return nil
}

func (e *PropagationEngine) propagate(b *models.Bracket, m *models.Match, roundIdx, matchIdx int) {
	winner, ok := m.WinnerSlot()
	if !ok {
		return
	}

	if m.WinnerTo == nil {
		if roundIdx == len(b.Rounds)-1 && len(b.Rounds[roundIdx].Matches) == 1 {
			return // final, nowhere to go
		}
		// Untagged legacy data: infer the link positionally once and
		// persist it so steady-state code never branches here again.
		if roundIdx+1 >= len(b.Rounds) {
			e.logger.Error("propagation skipped: no downstream round",
				slog.String("match_id", m.ID))
			return
		}
		inferred := MatchID(roundIdx+2, matchIdx/2+1)
		slot := models.SlotPlayer1
		if matchIdx%2 == 1 {
			slot = models.SlotPlayer2
		}
		e.logger.Warn("winner link missing, falling back to positional inference",
			slog.String("match_id", m.ID),
			slog.String("inferred_match", inferred),
			slog.String("inferred_slot", string(slot)))
		m.WinnerTo = &inferred
		m.WinnerToSlot = slot
	}

	down, _, _, found := b.FindMatch(*m.WinnerTo)
	if !found {
		e.logger.Error("propagation skipped: downstream match not found",
			slog.String("match_id", m.ID),
			slog.String("winner_to", *m.WinnerTo))
		return
	}

	existing := down.Slot(m.WinnerToSlot)
	if existing.IsOccupied() && existing.ID != winner.ID {
		// Occupation before the feeder resolves means re-entry or a
		// structural inconsistency; surfaced, never silent.
		e.logger.Warn("overwriting occupied downstream slot",
			slog.String("match_id", down.ID),
			slog.String("slot", string(m.WinnerToSlot)),
			slog.String("previous_id", existing.ID),
			slog.String("winner_id", winner.ID))
	}
	down.SetSlot(m.WinnerToSlot, winner)
}
