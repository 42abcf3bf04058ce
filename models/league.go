package models

import "time"

// LeagueRules configure standings points. Draws are a legitimate
// terminal result in league play, unlike elimination rounds.
type LeagueRules struct {
	WinPoints  int `json:"winPoints"`
	DrawPoints int `json:"drawPoints"`
	LossPoints int `json:"lossPoints"`
}

func DefaultLeagueRules() LeagueRules {
	return LeagueRules{WinPoints: 3, DrawPoints: 1, LossPoints: 0}
}

type LeagueParticipant struct {
	Participant
	Group string `json:"group,omitempty"`
}

// League is a flat per-(event, category) participant list with optional
// group labels. Fixtures are generated directly into the ledger; there
// is no round/match nesting.
type League struct {
	EventID      string              `json:"eventId"`
	CategoryID   string              `json:"categoryId"`
	Participants []LeagueParticipant `json:"participants"`
	Rules        LeagueRules         `json:"rules"`
	CreatedAt    time.Time           `json:"createdAt"`
	UpdatedAt    time.Time           `json:"updatedAt"`
}

// Standing is one computed table row; never persisted, always derived
// from the ledger.
type Standing struct {
	ParticipantID string `json:"participant_id"`
	DisplayName   string `json:"display_name"`
	Group         string `json:"group,omitempty"`
	Played        int    `json:"played"`
	Wins          int    `json:"wins"`
	Draws         int    `json:"draws"`
	Losses        int    `json:"losses"`
	Points        int    `json:"points"`
}
