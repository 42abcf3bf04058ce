package models

import "time"

type LedgerStatus string

const (
	LedgerScheduled LedgerStatus = "scheduled"
	LedgerCompleted LedgerStatus = "completed"
	LedgerBye       LedgerStatus = "bye"
)

// LedgerMatch is one flat, queryable row per structural match. The
// ledger is authoritative for score and winner; the nested structure is
// authoritative for participant identity and topology.
type LedgerMatch struct {
	ID         int    `json:"id"`
	PublicID   string `json:"public_id"`
	EventID    string `json:"event_id"`
	CategoryID string `json:"category_id"`
	BracketID  string `json:"bracket_id"`

	RoundName         string `json:"round_name"`
	MatchIndex        int    `json:"match_index"`
	StructuralMatchID string `json:"structural_match_id"`

	PlayerAID *string `json:"player_a_id,omitempty"`
	PlayerBID *string `json:"player_b_id,omitempty"`

	Score    *string      `json:"score,omitempty"`
	WinnerID *string      `json:"winner_id,omitempty"`
	Status   LedgerStatus `json:"status"`

	CreatedAt time.Time `json:"created_at"`
}
