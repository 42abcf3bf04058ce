package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/opendraw/draw-engine/models"
)

var ErrRosterEmpty = errors.New("no eligible participants for category")

// RosterRepository is the boundary to the registration source: a
// deduplicated list of eligible participants per (event, category),
// each with an optional rank. Eligibility filtering happens upstream.
type RosterRepository interface {
	ListByCategory(ctx context.Context, eventID, categoryID string) ([]models.Participant, map[string]int, error)
}

type postgresRosterRepository struct {
	db *sql.DB
}

func NewPostgresRosterRepository(db *sql.DB) RosterRepository {
	return &postgresRosterRepository{db: db}
}

func (r *postgresRosterRepository) ListByCategory(ctx context.Context, eventID, categoryID string) ([]models.Participant, map[string]int, error) {
	query := `
		SELECT participant_id, display_name, kind, roster_ref, seed
		FROM roster_entries
		WHERE event_id = $1 AND category_id = $2
		ORDER BY participant_id ASC`

	rows, err := r.db.QueryContext(ctx, query, eventID, categoryID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query roster (%s/%s): %w", eventID, categoryID, err)
	}
	defer rows.Close()

	participants := make([]models.Participant, 0)
	seeds := make(map[string]int)
	seen := make(map[string]bool)
	for rows.Next() {
		var p models.Participant
		var seed sql.NullInt64
		if err := rows.Scan(&p.ID, &p.DisplayName, &p.Kind, &p.RosterRef, &seed); err != nil {
			return nil, nil, fmt.Errorf("failed to scan roster row: %w", err)
		}
		// Dedup by id is this boundary's only filtering responsibility.
		if seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		participants = append(participants, p)
		if seed.Valid {
			seeds[p.ID] = int(seed.Int64)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error during roster rows iteration: %w", err)
	}
	return participants, seeds, nil
}
