package brackets

import (
	"fmt"

	"github.com/opendraw/draw-engine/models"
)

const defaultSetsConfig = 3

// RoundConfig optionally overrides the inferred name and the best-of-N
// sets configuration for one round.
type RoundConfig struct {
	Name       string `json:"name,omitempty"`
	SetsConfig int    `json:"setsConfig,omitempty"`
}

// NextPowerOfTwo returns the smallest power of two >= count (1 for
// count <= 1).
func NextPowerOfTwo(count int) int {
	size := 1
	for size < count {
		size <<= 1
	}
	return size
}

// RoundDisplayName infers a round name from its match count: 1 match is
// the Final, 2 the Semifinal, 4 the Quarterfinal, anything larger gets a
// positional name.
func RoundDisplayName(matchCount, roundIndex int) string {
	switch matchCount {
	case 1:
		return "Final"
	case 2:
		return "Semifinal"
	case 4:
		return "Quarterfinal"
	}
	return fmt.Sprintf("Round %d", roundIndex+1)
}

// MatchID builds the stable structural id for a match (1-based round
// and order).
func MatchID(round, match int) string {
	return fmt.Sprintf("R%d-M%d", round, match)
}

// BuildStructure constructs the full round/match skeleton for the given
// participant count. Feeder and winner-to links are assigned here, once,
// and everything downstream follows them instead of recomputing
// positions.
func BuildStructure(participantCount int, configs []RoundConfig) ([]models.Round, int, error) {
	if participantCount < 2 {
		return nil, 0, fmt.Errorf("%w: got %d", ErrInsufficientParticipants, participantCount)
	}

	drawSize := NextPowerOfTwo(participantCount)
	roundCount := 0
	for size := drawSize; size > 1; size >>= 1 {
		roundCount++
	}

	rounds := make([]models.Round, 0, roundCount)
	for r := 0; r < roundCount; r++ {
		matchCount := drawSize >> uint(r+1)
		round := models.Round{
			Name:       RoundDisplayName(matchCount, r),
			SetsConfig: defaultSetsConfig,
			Matches:    make([]models.Match, matchCount),
		}
		if r < len(configs) {
			if configs[r].Name != "" {
				round.Name = configs[r].Name
			}
			if configs[r].SetsConfig > 0 {
				round.SetsConfig = configs[r].SetsConfig
			}
		}

		for m := 1; m <= matchCount; m++ {
			match := models.Match{
				ID:      MatchID(r+1, m),
				Player1: models.EmptySlot(),
				Player2: models.EmptySlot(),
			}
			if r > 0 {
				f1 := MatchID(r, 2*m-1)
				f2 := MatchID(r, 2*m)
				match.FeederMatch1 = &f1
				match.FeederMatch2 = &f2
			}
			if r < roundCount-1 {
				to := MatchID(r+2, (m+1)/2)
				match.WinnerTo = &to
				if m%2 == 1 {
					match.WinnerToSlot = models.SlotPlayer1
				} else {
					match.WinnerToSlot = models.SlotPlayer2
				}
			}
			round.Matches[m-1] = match
		}
		rounds = append(rounds, round)
	}

	return rounds, drawSize, nil
}

// AppendRound adds the next round to a bracket built incrementally. The
// completion gate is a hard precondition: appending while the last
// round has unresolved non-bye matches would produce a round with no
// valid feeder linkage.
func AppendRound(b *models.Bracket, config *RoundConfig) (*models.Round, error) {
	last := b.LastRound()
	if last == nil {
		return nil, fmt.Errorf("bracket has no rounds to append to")
	}
	if len(last.Matches) <= 1 {
		return nil, ErrChampionDecided
	}
	if !last.Complete() {
		return nil, ErrPrevRoundIncomplete
	}

	prevIndex := len(b.Rounds)
	matchCount := len(last.Matches) / 2
	round := models.Round{
		Name:       RoundDisplayName(matchCount, prevIndex),
		SetsConfig: last.SetsConfig,
		Matches:    make([]models.Match, matchCount),
	}
	if config != nil {
		if config.Name != "" {
			round.Name = config.Name
		}
		if config.SetsConfig > 0 {
			round.SetsConfig = config.SetsConfig
		}
	}

	for m := 1; m <= matchCount; m++ {
		f1 := MatchID(prevIndex, 2*m-1)
		f2 := MatchID(prevIndex, 2*m)
		match := models.Match{
			ID:           MatchID(prevIndex+1, m),
			Player1:      models.EmptySlot(),
			Player2:      models.EmptySlot(),
			FeederMatch1: &f1,
			FeederMatch2: &f2,
		}
		round.Matches[m-1] = match
	}

	// Backfill advancement links on the previous round and pull the
	// already-decided winners forward.
	for i := range last.Matches {
		src := &last.Matches[i]
		to := round.Matches[i/2].ID
		src.WinnerTo = &to
		if i%2 == 0 {
			src.WinnerToSlot = models.SlotPlayer1
		} else {
			src.WinnerToSlot = models.SlotPlayer2
		}
		if winner, ok := src.WinnerSlot(); ok {
			round.Matches[i/2].SetSlot(src.WinnerToSlot, winner)
		}
	}

	b.Rounds = append(b.Rounds, round)
	return b.LastRound(), nil
}
