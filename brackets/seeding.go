package brackets

import (
	"fmt"
	"log/slog"
	"math/rand"
	"sort"

	"github.com/opendraw/draw-engine/models"
)

// SeedingEngine places a roster into the first round: ranked
// participants land on their canonical seeding slots, top seeds earn
// the reserved byes, and unranked participants fill whatever is left in
// a deterministically shuffled order.
type SeedingEngine struct {
	logger *slog.Logger
	// strict turns stale seed map entries into a validation error
	// instead of the default log-and-proceed behaviour.
	strict bool
}

func NewSeedingEngine(logger *slog.Logger, strict bool) *SeedingEngine {
	if logger == nil {
		logger = slog.Default()
	}
	return &SeedingEngine{logger: logger, strict: strict}
}

// Seed fills round 1 of an already-built bracket structure. The shuffle
// seed makes unranked placement reproducible; the same inputs always
// produce the same draw.
func (e *SeedingEngine) Seed(b *models.Bracket, roster []models.Participant, shuffleSeed int64) error {
	if len(b.Rounds) == 0 {
		return fmt.Errorf("bracket structure must be built before seeding")
	}
	if err := b.SeedMap.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSeedMap, err)
	}

	roster = dedupeByID(roster)

	// The roster is authoritative: a rank map referencing absent
	// participants is reported, then seeding proceeds with whoever is
	// physically present.
	if unknown := b.SeedMap.UnknownIDs(roster); len(unknown) > 0 {
		if e.strict {
			return fmt.Errorf("%w: %v", ErrUnknownSeededIDs, unknown)
		}
		e.logger.Warn("seed map references participants absent from roster",
			slog.String("event_id", b.EventID),
			slog.String("category_id", b.CategoryID),
			slog.Any("participant_ids", unknown))
	}

	round1 := &b.Rounds[0]
	drawSize := len(round1.Matches) * 2
	byeCount := drawSize - len(roster)
	if byeCount < 0 {
		return fmt.Errorf("roster of %d does not fit draw size %d", len(roster), drawSize)
	}

	ranked, unranked := partitionBySeed(roster, b.SeedMap, round1.Name)

	order, err := SeedingOrder(drawSize)
	if err != nil {
		return err
	}
	slots := slotOfSeed(order)

	// Clear round 1 so re-generation starts from a clean draw.
	for i := range round1.Matches {
		m := &round1.Matches[i]
		m.Player1 = models.EmptySlot()
		m.Player2 = models.EmptySlot()
		m.Winner = ""
		m.IsManualBye = false
	}

	// Top seeds earn byes first: for each seed 1..byeCount, the
	// opponent slot of that seed's position stays empty by design.
	reserved := make(map[int]bool, byeCount)
	for s := 1; s <= byeCount && s <= len(ranked); s++ {
		reserved[slots[s]^1] = true
	}

	for k, p := range ranked {
		placeAt(round1, slots[k+1], p)
	}

	rng := rand.New(rand.NewSource(shuffleSeed))
	rng.Shuffle(len(unranked), func(i, j int) {
		unranked[i], unranked[j] = unranked[j], unranked[i]
	})
	next := 0
	for idx := 0; idx < drawSize && next < len(unranked); idx++ {
		if reserved[idx] || slotAt(round1, idx).IsOccupied() {
			continue
		}
		placeAt(round1, idx, unranked[next])
		next++
	}

	b.Players = roster
	b.DrawSize = drawSize
	resolveByes(b, round1)
	return nil
}

// resolveByes sets the winner of every single-occupant match to the
// occupied slot and pushes the occupant into its downstream slot. A
// match with two occupied or two empty slots keeps the winner unset.
func resolveByes(b *models.Bracket, round *models.Round) {
	for i := range round.Matches {
		m := &round.Matches[i]
		name, occupant, ok := m.OccupiedSlot()
		if !ok {
			continue
		}
		m.Winner = name
		if m.WinnerTo != nil {
			if down, _, _, found := b.FindMatch(*m.WinnerTo); found {
				down.SetSlot(m.WinnerToSlot, occupant)
			}
		}
	}
}

func partitionBySeed(roster []models.Participant, seedMap models.SeedMap, roundName string) (ranked, unranked []models.Participant) {
	type seeded struct {
		p    models.Participant
		rank int
	}
	var withRank []seeded
	for _, p := range roster {
		if rank, ok := seedMap.Resolve(p.ID, roundName); ok {
			withRank = append(withRank, seeded{p: p, rank: rank})
		} else {
			unranked = append(unranked, p)
		}
	}
	sort.SliceStable(withRank, func(i, j int) bool {
		if withRank[i].rank != withRank[j].rank {
			return withRank[i].rank < withRank[j].rank
		}
		return withRank[i].p.ID < withRank[j].p.ID
	})
	for _, s := range withRank {
		ranked = append(ranked, s.p)
	}
	return ranked, unranked
}

func dedupeByID(roster []models.Participant) []models.Participant {
	seen := make(map[string]bool, len(roster))
	out := make([]models.Participant, 0, len(roster))
	for _, p := range roster {
		if seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		out = append(out, p)
	}
	return out
}

func placeAt(round *models.Round, slotIndex int, p models.Participant) {
	m := &round.Matches[slotIndex/2]
	if slotIndex%2 == 0 {
		m.Player1 = models.SlotFor(p)
	} else {
		m.Player2 = models.SlotFor(p)
	}
}

func slotAt(round *models.Round, slotIndex int) models.Slot {
	m := &round.Matches[slotIndex/2]
	if slotIndex%2 == 0 {
		return m.Player1
	}
	return m.Player2
}
