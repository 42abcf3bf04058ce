package brackets

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/opendraw/draw-engine/models"
)

// ByeManager reserves, reshuffles and manually fills bye slots. Ranked
// byes are locked: reshuffles never touch them and their occupied side
// cannot be replaced.
type ByeManager struct {
	logger *slog.Logger
}

func NewByeManager(logger *slog.Logger) *ByeManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &ByeManager{logger: logger}
}

// Reshuffle recomputes the bye count from the current draw and expected
// participant count (override it to handle late dropouts) and re-seats
// every unranked participant that is not part of a locked ranked bye or
// a manual assignment. Locked byes are a no-op.
func (bm *ByeManager) Reshuffle(b *models.Bracket, expectedCount *int, shuffleSeed int64) error {
	if len(b.Rounds) == 0 {
		return fmt.Errorf("bracket has no rounds to reshuffle")
	}
	round1 := &b.Rounds[0]
	drawSize := len(round1.Matches) * 2

	expected := len(b.Players)
	if expectedCount != nil {
		expected = *expectedCount
	}
	byeCount := drawSize - expected
	if byeCount < 0 {
		byeCount = 0
	}

	frozen := make(map[string]bool, len(round1.Matches))
	for i := range round1.Matches {
		m := &round1.Matches[i]
		if m.IsManualBye || b.IsRankedBye(m, round1.Name) {
			frozen[m.ID] = true
		}
	}

	// Pull every movable unranked participant back into the pool and
	// undo what their byes propagated downstream.
	var pool []models.Participant
	for i := range round1.Matches {
		m := &round1.Matches[i]
		if frozen[m.ID] {
			continue
		}
		for _, name := range []models.SlotName{models.SlotPlayer1, models.SlotPlayer2} {
			s := m.Slot(name)
			if !s.IsOccupied() {
				continue
			}
			if _, ranked := b.SeedMap.Resolve(s.ID, round1.Name); ranked {
				continue
			}
			if p, ok := b.ParticipantByID(s.ID); ok {
				pool = append(pool, p)
			}
			m.SetSlot(name, models.EmptySlot())
		}
		if m.Winner != "" && m.WinnerTo != nil {
			if down, _, _, ok := b.FindMatch(*m.WinnerTo); ok {
				down.SetSlot(m.WinnerToSlot, models.EmptySlot())
			}
		}
		m.Winner = ""
	}

	// Top-seed bye slots are re-preferred first, then whatever remains
	// is assigned uniformly at random among the unlocked slots.
	order, err := SeedingOrder(drawSize)
	if err != nil {
		return err
	}
	slots := slotOfSeed(order)
	reserved := make(map[int]bool, byeCount)
	for s := 1; s <= byeCount; s++ {
		idx, ok := slots[s]
		if !ok {
			break
		}
		seedSlot := slotAt(round1, idx)
		if !seedSlot.IsOccupied() {
			continue
		}
		if _, ranked := b.SeedMap.Resolve(seedSlot.ID, round1.Name); !ranked {
			continue
		}
		if frozen[round1.Matches[idx/2].ID] {
			continue
		}
		reserved[idx^1] = true
	}

	rng := rand.New(rand.NewSource(shuffleSeed))
	var free []int
	for idx := 0; idx < drawSize; idx++ {
		if frozen[round1.Matches[idx/2].ID] {
			continue
		}
		if reserved[idx] || slotAt(round1, idx).IsOccupied() {
			continue
		}
		free = append(free, idx)
	}
	rng.Shuffle(len(free), func(i, j int) { free[i], free[j] = free[j], free[i] })
	rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

	for i, p := range pool {
		if i >= len(free) {
			bm.logger.Warn("reshuffle ran out of free slots",
				slog.String("event_id", b.EventID),
				slog.Int("unplaced", len(pool)-i))
			break
		}
		placeAt(round1, free[i], p)
	}

	resolveByes(b, round1)
	return nil
}

// AssignByeToPlayer seats an unranked participant into an existing bye
// and revokes the lock by marking the match as a manual bye. An empty
// target means the vacant side; naming the occupied side of a locked
// ranked bye is rejected, while on an unlocked bye it replaces the
// occupant, who returns to the unseated pool. Ranked participants
// receive byes exclusively through automatic seeding.
func (bm *ByeManager) AssignByeToPlayer(b *models.Bracket, matchID, participantID string, target models.SlotName) error {
	m, ri, _, ok := b.FindMatch(matchID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrMatchNotFound, matchID)
	}
	if !m.IsBye() {
		return fmt.Errorf("%w: %s", ErrNotABye, matchID)
	}
	roundName := b.Rounds[ri].Name

	occupiedName, occupant, _ := m.OccupiedSlot()
	emptyName := models.SlotPlayer2
	if occupiedName == models.SlotPlayer2 {
		emptyName = models.SlotPlayer1
	}
	if target == "" {
		target = emptyName
	}
	if target != models.SlotPlayer1 && target != models.SlotPlayer2 {
		return fmt.Errorf("unknown slot %q for match %s", target, matchID)
	}
	if target == occupiedName && b.IsRankedBye(m, roundName) {
		return fmt.Errorf("%w: %s/%s", ErrRankedByeLocked, matchID, occupiedName)
	}

	p, ok := b.ParticipantByID(participantID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrParticipantUnknown, participantID)
	}
	if _, ranked := b.SeedMap.Resolve(participantID, roundName); ranked {
		return fmt.Errorf("%w: %s", ErrParticipantRanked, participantID)
	}
	if b.IsSeated(participantID) {
		return fmt.Errorf("%w: %s", ErrParticipantSeated, participantID)
	}

	// Undo what the bye propagated downstream before reseating.
	if m.Winner != "" && m.WinnerTo != nil {
		if down, _, _, found := b.FindMatch(*m.WinnerTo); found {
			existing := down.Slot(m.WinnerToSlot)
			if existing.IsOccupied() && existing.ID == occupant.ID {
				down.SetSlot(m.WinnerToSlot, models.EmptySlot())
			}
		}
	}
	m.Winner = ""
	m.SetSlot(target, models.SlotFor(p))
	m.IsManualBye = true

	if target == occupiedName {
		// Still a bye: the replacement advances in the old occupant's
		// place.
		m.Winner = occupiedName
		if m.WinnerTo != nil {
			if down, _, _, found := b.FindMatch(*m.WinnerTo); found {
				down.SetSlot(m.WinnerToSlot, models.SlotFor(p))
			}
		}
	}
	return nil
}

// Finalize marks byes immutable for the bracket. Purely advisory
// metadata: it does not alter placements, and calling it twice is a
// no-op.
func (bm *ByeManager) Finalize(b *models.Bracket) {
	if b.ByesFinalized {
		return
	}
	now := time.Now().UTC()
	b.ByesFinalized = true
	b.ByesFinalizedAt = &now
}
