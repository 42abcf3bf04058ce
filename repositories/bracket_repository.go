package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/opendraw/draw-engine/models"
)

var (
	ErrBracketNotFound = errors.New("bracket document not found")
	ErrBracketConflict = errors.New("bracket document conflict")
)

// BracketRepository persists the nested draw document, one jsonb row per
// (event, category). The published and mode flags are mirrored into
// columns so they stay queryable without unpacking the document.
type BracketRepository interface {
	Get(ctx context.Context, eventID, categoryID string) (*models.Bracket, error)
	Upsert(ctx context.Context, exec SQLExecutor, bracket *models.Bracket) error
	Delete(ctx context.Context, eventID, categoryID string) error
}

type postgresBracketRepository struct {
	db *sql.DB
}

func NewPostgresBracketRepository(db *sql.DB) BracketRepository {
	return &postgresBracketRepository{db: db}
}

func (r *postgresBracketRepository) Get(ctx context.Context, eventID, categoryID string) (*models.Bracket, error) {
	query := `
		SELECT document
		FROM brackets
		WHERE event_id = $1 AND category_id = $2`

	var raw []byte
	err := r.db.QueryRowContext(ctx, query, eventID, categoryID).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBracketNotFound
		}
		return nil, fmt.Errorf("failed to scan bracket document (%s/%s): %w", eventID, categoryID, err)
	}

	bracket := &models.Bracket{}
	if err := json.Unmarshal(raw, bracket); err != nil {
		return nil, fmt.Errorf("failed to decode bracket document (%s/%s): %w", eventID, categoryID, err)
	}
	return bracket, nil
}

func (r *postgresBracketRepository) Upsert(ctx context.Context, exec SQLExecutor, bracket *models.Bracket) error {
	bracket.UpdatedAt = time.Now().UTC()
	raw, err := json.Marshal(bracket)
	if err != nil {
		return fmt.Errorf("failed to encode bracket document: %w", err)
	}

	query := `
		INSERT INTO brackets (event_id, category_id, bracket_id, mode, published, document, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (event_id, category_id) DO UPDATE
		SET bracket_id = EXCLUDED.bracket_id,
		    mode       = EXCLUDED.mode,
		    published  = EXCLUDED.published,
		    document   = EXCLUDED.document,
		    updated_at = EXCLUDED.updated_at`

	_, err = exec.ExecContext(ctx, query,
		bracket.EventID,
		bracket.CategoryID,
		bracket.ID,
		bracket.Mode,
		bracket.Published,
		raw,
		bracket.UpdatedAt,
	)
	return r.handleBracketError(err)
}

func (r *postgresBracketRepository) Delete(ctx context.Context, eventID, categoryID string) error {
	query := `DELETE FROM brackets WHERE event_id = $1 AND category_id = $2`
	result, err := r.db.ExecContext(ctx, query, eventID, categoryID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrBracketNotFound)
}

func (r *postgresBracketRepository) handleBracketError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return fmt.Errorf("%w: %v", ErrBracketConflict, err)
	}
	return err
}
