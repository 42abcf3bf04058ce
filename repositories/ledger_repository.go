package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/opendraw/draw-engine/models"
)

var (
	ErrLedgerMatchNotFound = errors.New("ledger match not found")
	ErrLedgerMatchInvalid  = errors.New("ledger match conflict or invalid")
)

// LedgerRepository owns the flat, authoritative match rows. Inserts are
// conflict-tolerant: the unique (event, category, round, match index)
// key plus ON CONFLICT DO NOTHING makes materialization idempotent and
// safe to re-run without multi-row transactions.
type LedgerRepository interface {
	Insert(ctx context.Context, exec SQLExecutor, match *models.LedgerMatch) (bool, error)
	GetByStructuralID(ctx context.Context, eventID, categoryID, structuralMatchID string) (*models.LedgerMatch, error)
	ListByCategory(ctx context.Context, eventID, categoryID string) ([]*models.LedgerMatch, error)
	UpdateScoreStatusWinner(ctx context.Context, id int, score *string, status models.LedgerStatus, winnerID *string) error
	UpdateParticipants(ctx context.Context, id int, playerAID, playerBID *string) error
	DeleteByCategory(ctx context.Context, exec SQLExecutor, eventID, categoryID string) (int64, error)
}

type postgresLedgerRepository struct {
	db *sql.DB
}

func NewPostgresLedgerRepository(db *sql.DB) LedgerRepository {
	return &postgresLedgerRepository{db: db}
}

const ledgerColumns = `
	id, public_id, event_id, category_id, bracket_id, round_name, match_index,
	structural_match_id, player_a_id, player_b_id, score, winner_id, status, created_at`

func (r *postgresLedgerRepository) Insert(ctx context.Context, exec SQLExecutor, match *models.LedgerMatch) (bool, error) {
	query := `
		INSERT INTO ledger_matches
			(public_id, event_id, category_id, bracket_id, round_name, match_index,
			 structural_match_id, player_a_id, player_b_id, score, winner_id, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (event_id, category_id, round_name, match_index) DO NOTHING`

	result, err := exec.ExecContext(ctx, query,
		match.PublicID,
		match.EventID,
		match.CategoryID,
		match.BracketID,
		match.RoundName,
		match.MatchIndex,
		match.StructuralMatchID,
		match.PlayerAID,
		match.PlayerBID,
		match.Score,
		match.WinnerID,
		match.Status,
	)
	if err != nil {
		return false, r.handleLedgerError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check affected rows: %w", err)
	}
	return affected > 0, nil
}

func (r *postgresLedgerRepository) GetByStructuralID(ctx context.Context, eventID, categoryID, structuralMatchID string) (*models.LedgerMatch, error) {
	query := `SELECT` + ledgerColumns + `
		FROM ledger_matches
		WHERE event_id = $1 AND category_id = $2 AND structural_match_id = $3`

	match := &models.LedgerMatch{}
	err := scanLedgerMatch(r.db.QueryRowContext(ctx, query, eventID, categoryID, structuralMatchID), match)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLedgerMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan ledger match %s: %w", structuralMatchID, err)
	}
	return match, nil
}

func (r *postgresLedgerRepository) ListByCategory(ctx context.Context, eventID, categoryID string) ([]*models.LedgerMatch, error) {
	query := `SELECT` + ledgerColumns + `
		FROM ledger_matches
		WHERE event_id = $1 AND category_id = $2
		ORDER BY round_name ASC, match_index ASC`

	rows, err := r.db.QueryContext(ctx, query, eventID, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger matches (%s/%s): %w", eventID, categoryID, err)
	}
	defer rows.Close()

	matches := make([]*models.LedgerMatch, 0)
	for rows.Next() {
		match := &models.LedgerMatch{}
		if err := scanLedgerMatch(rows, match); err != nil {
			return nil, fmt.Errorf("failed to scan ledger match row: %w", err)
		}
		matches = append(matches, match)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during ledger rows iteration: %w", err)
	}
	return matches, nil
}

func (r *postgresLedgerRepository) UpdateScoreStatusWinner(ctx context.Context, id int, score *string, status models.LedgerStatus, winnerID *string) error {
	query := `
		UPDATE ledger_matches
		SET score = $1, status = $2, winner_id = $3
		WHERE id = $4`

	result, err := r.db.ExecContext(ctx, query, score, status, winnerID, id)
	if err != nil {
		return r.handleLedgerError(err)
	}
	return checkAffectedRows(result, ErrLedgerMatchNotFound)
}

func (r *postgresLedgerRepository) UpdateParticipants(ctx context.Context, id int, playerAID, playerBID *string) error {
	query := `UPDATE ledger_matches SET player_a_id = $1, player_b_id = $2 WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, playerAID, playerBID, id)
	if err != nil {
		return fmt.Errorf("UpdateParticipants: failed to execute query for ledger match %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrLedgerMatchNotFound)
}

func (r *postgresLedgerRepository) DeleteByCategory(ctx context.Context, exec SQLExecutor, eventID, categoryID string) (int64, error) {
	query := `DELETE FROM ledger_matches WHERE event_id = $1 AND category_id = $2`
	result, err := exec.ExecContext(ctx, query, eventID, categoryID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanLedgerMatch(row rowScanner, match *models.LedgerMatch) error {
	return row.Scan(
		&match.ID,
		&match.PublicID,
		&match.EventID,
		&match.CategoryID,
		&match.BracketID,
		&match.RoundName,
		&match.MatchIndex,
		&match.StructuralMatchID,
		&match.PlayerAID,
		&match.PlayerBID,
		&match.Score,
		&match.WinnerID,
		&match.Status,
		&match.CreatedAt,
	)
}

func (r *postgresLedgerRepository) handleLedgerError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		// 23503 foreign_key_violation, 23505 unique_violation
		switch pqErr.Code {
		case "23503", "23505":
			return fmt.Errorf("%w: %v", ErrLedgerMatchInvalid, err)
		}
	}
	return err
}
