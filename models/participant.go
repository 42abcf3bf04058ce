package models

type ParticipantKind string

const (
	ParticipantIndividual ParticipantKind = "individual"
	ParticipantTeam       ParticipantKind = "team"
)

// Participant is an entry supplied by the roster source. Immutable once
// placed except through explicit replacement operations.
type Participant struct {
	ID          string          `json:"id"`
	DisplayName string          `json:"displayName"`
	Kind        ParticipantKind `json:"kind"`
	RosterRef   *string         `json:"rosterRef,omitempty"`
}

type SlotKind string

const (
	SlotEmpty      SlotKind = "empty"
	SlotBye        SlotKind = "bye"
	SlotIndividual SlotKind = "individual"
	SlotTeam       SlotKind = "team"
)

// Slot is one side of a match. Historically this was a bare id, a rich
// object or a bye sentinel string depending on the caller; the tagged
// union replaces that shape-sniffing with a single IsOccupied check.
type Slot struct {
	Kind SlotKind `json:"kind"`
	ID   string   `json:"id,omitempty"`
	Name string   `json:"name,omitempty"`
}

func EmptySlot() Slot {
	return Slot{Kind: SlotEmpty}
}

func ByeSlot() Slot {
	return Slot{Kind: SlotBye}
}

func SlotFor(p Participant) Slot {
	kind := SlotIndividual
	if p.Kind == ParticipantTeam {
		kind = SlotTeam
	}
	return Slot{Kind: kind, ID: p.ID, Name: p.DisplayName}
}

// IsOccupied reports whether a real participant holds the slot. A bye
// sentinel is not an occupant and must never propagate downstream.
func (s Slot) IsOccupied() bool {
	return s.Kind == SlotIndividual || s.Kind == SlotTeam
}

func (s Slot) IsEmpty() bool {
	return s.Kind == SlotEmpty || s.Kind == ""
}
