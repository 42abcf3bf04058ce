package models

import "time"

type SlotName string

const (
	SlotPlayer1 SlotName = "player1"
	SlotPlayer2 SlotName = "player2"
)

type BracketMode string

const (
	ModeElimination BracketMode = "elimination"
	ModeMedia       BracketMode = "media"
)

// Match is a structural match inside the bracket document. Feeder and
// advancement links are assigned at construction time and never
// recomputed positionally afterwards.
type Match struct {
	ID      string   `json:"id"`
	Player1 Slot     `json:"player1"`
	Player2 Slot     `json:"player2"`
	Winner  SlotName `json:"winner,omitempty"`
	Score   *string  `json:"score,omitempty"` // display only, ledger is authoritative

	FeederMatch1 *string  `json:"feederMatch1,omitempty"`
	FeederMatch2 *string  `json:"feederMatch2,omitempty"`
	WinnerTo     *string  `json:"winnerTo,omitempty"`
	WinnerToSlot SlotName `json:"winnerToSlot,omitempty"`

	IsManualBye bool `json:"isManualBye,omitempty"`
}

func (m *Match) Slot(name SlotName) Slot {
	if name == SlotPlayer2 {
		return m.Player2
	}
	return m.Player1
}

func (m *Match) SetSlot(name SlotName, s Slot) {
	if name == SlotPlayer2 {
		m.Player2 = s
		return
	}
	m.Player1 = s
}

// OccupiedSlot returns the slot name and participant when exactly one
// side is occupied, which is the bye configuration.
func (m *Match) OccupiedSlot() (SlotName, Slot, bool) {
	p1, p2 := m.Player1.IsOccupied(), m.Player2.IsOccupied()
	switch {
	case p1 && !p2:
		return SlotPlayer1, m.Player1, true
	case p2 && !p1:
		return SlotPlayer2, m.Player2, true
	}
	return "", Slot{}, false
}

// IsBye reports whether the match has exactly one occupant and no
// opponent arriving later (the empty side has no feeder match).
func (m *Match) IsBye() bool {
	name, _, ok := m.OccupiedSlot()
	if !ok {
		return false
	}
	if name == SlotPlayer1 {
		return m.FeederMatch2 == nil
	}
	return m.FeederMatch1 == nil
}

func (m *Match) WinnerSlot() (Slot, bool) {
	if m.Winner == "" {
		return Slot{}, false
	}
	s := m.Slot(m.Winner)
	return s, s.IsOccupied()
}

func (m *Match) FeederFor(name SlotName) *string {
	if name == SlotPlayer2 {
		return m.FeederMatch2
	}
	return m.FeederMatch1
}

// Round is an ordered sequence of matches. The display name is inferred
// from the match count at build time (Final, Semifinal, ...).
type Round struct {
	Name       string  `json:"name"`
	Matches    []Match `json:"matches"`
	SetsConfig int     `json:"setsConfig"`
}

// Complete reports whether every non-bye match in the round has a
// declared winner. Byes resolve automatically and do not gate rounds.
func (r *Round) Complete() bool {
	for i := range r.Matches {
		m := &r.Matches[i]
		if m.IsBye() {
			continue
		}
		if m.Winner == "" {
			return false
		}
	}
	return true
}

// Bracket is the nested draw document for one (event, category) pair.
// It is a denormalized view for traversal and propagation; the flat
// ledger remains the system of record for results.
type Bracket struct {
	ID         string      `json:"id"`
	EventID    string      `json:"eventId"`
	CategoryID string      `json:"categoryId"`
	Mode       BracketMode `json:"mode"`
	DrawSize   int         `json:"drawSize"`
	Published  bool        `json:"published"`

	Rounds  []Round       `json:"rounds"`
	Players []Participant `json:"players"`
	SeedMap SeedMap       `json:"seedMap"`

	ByesFinalized   bool       `json:"byesFinalized,omitempty"`
	ByesFinalizedAt *time.Time `json:"byesFinalizedAt,omitempty"`

	// Set only in media mode: a static draw image replaces the
	// generated structure. The two are mutually exclusive per category.
	MediaKey *string `json:"mediaKey,omitempty"`
	MediaURL *string `json:"mediaUrl,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// FindMatch locates a structural match by id. Matches are addressed by
// id, never by round-name plus positional index, so manual edits cannot
// cause linkage drift.
func (b *Bracket) FindMatch(id string) (*Match, int, int, bool) {
	for ri := range b.Rounds {
		for mi := range b.Rounds[ri].Matches {
			if b.Rounds[ri].Matches[mi].ID == id {
				return &b.Rounds[ri].Matches[mi], ri, mi, true
			}
		}
	}
	return nil, 0, 0, false
}

func (b *Bracket) LastRound() *Round {
	if len(b.Rounds) == 0 {
		return nil
	}
	return &b.Rounds[len(b.Rounds)-1]
}

func (b *Bracket) ParticipantByID(id string) (Participant, bool) {
	for _, p := range b.Players {
		if p.ID == id {
			return p, true
		}
	}
	return Participant{}, false
}

// IsSeated reports whether the participant already occupies any slot.
func (b *Bracket) IsSeated(participantID string) bool {
	for ri := range b.Rounds {
		for mi := range b.Rounds[ri].Matches {
			m := &b.Rounds[ri].Matches[mi]
			if m.Player1.IsOccupied() && m.Player1.ID == participantID {
				return true
			}
			if m.Player2.IsOccupied() && m.Player2.ID == participantID {
				return true
			}
		}
	}
	return false
}

// IsRankedBye reports whether the match is a bye held by a seeded
// participant under the reserved-bye policy. Such byes are locked: the
// occupied side cannot be replaced and the match cannot be deleted.
// Filling the empty side through the manual path revokes the lock.
func (b *Bracket) IsRankedBye(m *Match, roundName string) bool {
	if m.IsManualBye || !m.IsBye() {
		return false
	}
	_, occupant, ok := m.OccupiedSlot()
	if !ok {
		return false
	}
	_, ranked := b.SeedMap.Resolve(occupant.ID, roundName)
	return ranked
}
