package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/opendraw/draw-engine/models"
)

var ErrLeagueNotFound = errors.New("league document not found")

// LeagueRepository persists the flat league document (participants,
// groups, points rules) per (event, category). Fixtures themselves live
// in the ledger, not here.
type LeagueRepository interface {
	Get(ctx context.Context, eventID, categoryID string) (*models.League, error)
	Upsert(ctx context.Context, exec SQLExecutor, league *models.League) error
	Delete(ctx context.Context, eventID, categoryID string) error
}

type postgresLeagueRepository struct {
	db *sql.DB
}

func NewPostgresLeagueRepository(db *sql.DB) LeagueRepository {
	return &postgresLeagueRepository{db: db}
}

func (r *postgresLeagueRepository) Get(ctx context.Context, eventID, categoryID string) (*models.League, error) {
	query := `
		SELECT document
		FROM leagues
		WHERE event_id = $1 AND category_id = $2`

	var raw []byte
	err := r.db.QueryRowContext(ctx, query, eventID, categoryID).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLeagueNotFound
		}
		return nil, fmt.Errorf("failed to scan league document (%s/%s): %w", eventID, categoryID, err)
	}

	league := &models.League{}
	if err := json.Unmarshal(raw, league); err != nil {
		return nil, fmt.Errorf("failed to decode league document (%s/%s): %w", eventID, categoryID, err)
	}
	return league, nil
}

func (r *postgresLeagueRepository) Upsert(ctx context.Context, exec SQLExecutor, league *models.League) error {
	league.UpdatedAt = time.Now().UTC()
	raw, err := json.Marshal(league)
	if err != nil {
		return fmt.Errorf("failed to encode league document: %w", err)
	}

	query := `
		INSERT INTO leagues (event_id, category_id, document, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (event_id, category_id) DO UPDATE
		SET document = EXCLUDED.document, updated_at = EXCLUDED.updated_at`

	_, err = exec.ExecContext(ctx, query, league.EventID, league.CategoryID, raw, league.UpdatedAt)
	return err
}

func (r *postgresLeagueRepository) Delete(ctx context.Context, eventID, categoryID string) error {
	query := `DELETE FROM leagues WHERE event_id = $1 AND category_id = $2`
	result, err := r.db.ExecContext(ctx, query, eventID, categoryID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrLeagueNotFound)
}
