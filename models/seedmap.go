package models

import (
	"errors"
	"fmt"
)

var (
	ErrSeedMapDuplicateRank = errors.New("seed map contains duplicate ranks")
	ErrSeedMapInvalidRank   = errors.New("seed map ranks must be positive")
)

// SeedMap maps participant ids to integer ranks (lower is stronger).
// A round-scoped override takes precedence over the global map; the
// resolution lives here instead of being optional-chained at call sites.
type SeedMap struct {
	Global map[string]int            `json:"global,omitempty"`
	Rounds map[string]map[string]int `json:"rounds,omitempty"`
}

// Resolve returns the rank for a participant in the given round, with
// the round override winning over the global entry.
func (m SeedMap) Resolve(participantID, roundName string) (int, bool) {
	if roundName != "" {
		if override, ok := m.Rounds[roundName]; ok {
			if rank, ok := override[participantID]; ok {
				return rank, true
			}
		}
	}
	rank, ok := m.Global[participantID]
	return rank, ok
}

// Validate checks the data-error invariants: ranks need not be
// contiguous, but duplicates and ranks < 1 are rejected.
func (m SeedMap) Validate() error {
	if err := validateRanks(m.Global); err != nil {
		return err
	}
	for roundName, override := range m.Rounds {
		if err := validateRanks(override); err != nil {
			return fmt.Errorf("round %q: %w", roundName, err)
		}
	}
	return nil
}

func validateRanks(ranks map[string]int) error {
	seen := make(map[int]string, len(ranks))
	for id, rank := range ranks {
		if rank < 1 {
			return fmt.Errorf("%w: participant %s has rank %d", ErrSeedMapInvalidRank, id, rank)
		}
		if other, ok := seen[rank]; ok {
			return fmt.Errorf("%w: rank %d held by %s and %s", ErrSeedMapDuplicateRank, rank, other, id)
		}
		seen[rank] = id
	}
	return nil
}

// UnknownIDs returns the ids referenced by the map that are absent from
// the roster. The roster is authoritative; stale entries are reported,
// not fatal, unless strict seeding is configured.
func (m SeedMap) UnknownIDs(roster []Participant) []string {
	present := make(map[string]bool, len(roster))
	for _, p := range roster {
		present[p.ID] = true
	}
	var unknown []string
	for id := range m.Global {
		if !present[id] {
			unknown = append(unknown, id)
		}
	}
	for _, override := range m.Rounds {
		for id := range override {
			if !present[id] {
				unknown = append(unknown, id)
			}
		}
	}
	return unknown
}
