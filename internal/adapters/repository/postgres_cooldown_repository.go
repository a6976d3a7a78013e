package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/comitanigiacomo/kanso-recurrence-engine/internal/core/domain"
)

var _ domain.CooldownRepository = (*PostgresCooldownRepository)(nil)

type cooldownRow struct {
	ID               string         `db:"id"`
	UserID           string         `db:"user_id"`
	ItemID           string         `db:"item_id"`
	Mode             string         `db:"mode"`
	Score            float64        `db:"score"`
	CooldownUntil    sql.NullString `db:"cooldown_until"`
	CooldownSessions sql.NullInt64  `db:"cooldown_sessions"`
	UpdatedAt        time.Time      `db:"updated_at"`
}

func (row cooldownRow) toDomain() *domain.CooldownState {
	s := &domain.CooldownState{
		UserID:    row.UserID,
		ItemID:    row.ItemID,
		Mode:      domain.Mode(row.Mode),
		Score:     row.Score,
		UpdatedAt: row.UpdatedAt,
	}
	if row.CooldownUntil.Valid {
		until := row.CooldownUntil.String
		s.CooldownUntil = &until
	}
	if row.CooldownSessions.Valid {
		sessions := int(row.CooldownSessions.Int64)
		s.CooldownSessions = &sessions
	}
	return s
}

// PostgresCooldownRepository stores one row per (user, item, mode). Writes
// read the current row under lock, merge with CooldownPatch.ApplyTo and
// upsert, all in one transaction.
type PostgresCooldownRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewPostgresCooldownRepository(db *sqlx.DB) *PostgresCooldownRepository {
	return &PostgresCooldownRepository{db: db, now: time.Now}
}

const cooldownColumns = `id, user_id, item_id, mode, score, cooldown_until, cooldown_sessions, updated_at`

func (r *PostgresCooldownRepository) Get(ctx context.Context, userID, itemID string, mode domain.Mode) (*domain.CooldownState, error) {
	var row cooldownRow
	query := `SELECT ` + cooldownColumns + ` FROM cooldown_states
        WHERE user_id = $1 AND item_id = $2 AND mode = $3`

	if err := r.db.GetContext(ctx, &row, query, userID, itemID, mode); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get cooldown state: %w", err)
	}
	return row.toDomain(), nil
}

func (r *PostgresCooldownRepository) ListByMode(ctx context.Context, userID string, mode domain.Mode) (map[string]*domain.CooldownState, error) {
	var rows []cooldownRow
	query := `SELECT ` + cooldownColumns + ` FROM cooldown_states
        WHERE user_id = $1 AND mode = $2`

	if err := r.db.SelectContext(ctx, &rows, query, userID, mode); err != nil {
		return nil, fmt.Errorf("failed to list cooldown states: %w", err)
	}

	out := make(map[string]*domain.CooldownState, len(rows))
	for _, row := range rows {
		out[row.ItemID] = row.toDomain()
	}
	return out, nil
}

func (r *PostgresCooldownRepository) Write(ctx context.Context, userID, itemID string, mode domain.Mode, patch domain.CooldownPatch) (*domain.CooldownState, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var existing *domain.CooldownState
	var row cooldownRow
	query := `SELECT ` + cooldownColumns + ` FROM cooldown_states
        WHERE user_id = $1 AND item_id = $2 AND mode = $3
        FOR UPDATE`

	switch err := tx.GetContext(ctx, &row, query, userID, itemID, mode); {
	case err == nil:
		existing = row.toDomain()
	case errors.Is(err, sql.ErrNoRows):
	default:
		return nil, fmt.Errorf("failed to lock cooldown state: %w", err)
	}

	merged := patch.ApplyTo(existing, userID, itemID, mode, r.now())

	var sessions sql.NullInt64
	if merged.CooldownSessions != nil {
		sessions = sql.NullInt64{Int64: int64(*merged.CooldownSessions), Valid: true}
	}
	var until sql.NullString
	if merged.CooldownUntil != nil {
		until = sql.NullString{String: *merged.CooldownUntil, Valid: true}
	}

	upsert := `
        INSERT INTO cooldown_states (` + cooldownColumns + `)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        ON CONFLICT (user_id, item_id, mode) DO UPDATE SET
            score = EXCLUDED.score,
            cooldown_until = EXCLUDED.cooldown_until,
            cooldown_sessions = EXCLUDED.cooldown_sessions,
            updated_at = EXCLUDED.updated_at`

	_, err = tx.ExecContext(ctx, upsert,
		uuid.NewString(), userID, itemID, mode, merged.Score, until, sessions, merged.UpdatedAt,
	)
	if err != nil {
		if pgCode(err) == pgForeignKeyViolation {
			return nil, domain.ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to upsert cooldown state: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit cooldown state: %w", err)
	}
	return &merged, nil
}
