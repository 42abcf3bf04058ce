package brackets

import (
	"sort"

	"github.com/opendraw/draw-engine/models"
)

// Pairing is one unordered league fixture within a group.
type Pairing struct {
	Group  string
	HomeID string
	AwayID string
}

func pairKey(group, a, b string) string {
	if b < a {
		a, b = b, a
	}
	return group + "|" + a + "|" + b
}

// GenerateFixtures emits, per group, every unordered pair of
// participants that does not already have a fixture. Repeated
// invocation after partial generation only inserts the missing pairs:
// it never duplicates and never removes. A group of size n yields
// exactly n(n-1)/2 fixtures in total.
func GenerateFixtures(participants []models.LeagueParticipant, existing []Pairing) []Pairing {
	seen := make(map[string]bool, len(existing))
	for _, p := range existing {
		seen[pairKey(p.Group, p.HomeID, p.AwayID)] = true
	}

	groups := make(map[string][]models.LeagueParticipant)
	var groupOrder []string
	for _, p := range participants {
		// Ungrouped participants share a single implicit group.
		if _, ok := groups[p.Group]; !ok {
			groupOrder = append(groupOrder, p.Group)
		}
		groups[p.Group] = append(groups[p.Group], p)
	}
	sort.Strings(groupOrder)

	var out []Pairing
	for _, group := range groupOrder {
		members := groups[group]
		for i := 0; i < len(members); i++ {
			for j := i + 1; j < len(members); j++ {
				key := pairKey(group, members[i].ID, members[j].ID)
				if seen[key] {
					continue
				}
				seen[key] = true
				out = append(out, Pairing{
					Group:  group,
					HomeID: members[i].ID,
					AwayID: members[j].ID,
				})
			}
		}
	}
	return out
}
