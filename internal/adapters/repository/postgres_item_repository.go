package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/comitanigiacomo/kanso-recurrence-engine/internal/core/domain"
)

var _ domain.ItemRepository = (*PostgresItemRepository)(nil)

const itemColumns = `id, user_id, title, mode, recurrence_enabled, days_of_week,
    answer_kind, priority, created_at, updated_at`

type PostgresItemRepository struct {
	db *sqlx.DB
}

func NewPostgresItemRepository(db *sqlx.DB) *PostgresItemRepository {
	return &PostgresItemRepository{db: db}
}

type scannable interface {
	Scan(dest ...interface{}) error
}

func (r *PostgresItemRepository) scanRow(row scannable) (*domain.Item, error) {
	var it domain.Item
	var daysJSON []byte

	err := row.Scan(
		&it.ID, &it.UserID, &it.Title, &it.Mode, &it.RecurrenceEnabled, &daysJSON,
		&it.AnswerKind, &it.Priority, &it.CreatedAt, &it.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(daysJSON) > 0 {
		var days []int
		if err := json.Unmarshal(daysJSON, &days); err != nil {
			return nil, fmt.Errorf("failed to unmarshal days_of_week: %w", err)
		}
		if it.DaysOfWeek, err = domain.NormalizeWeekdays(days); err != nil {
			return nil, fmt.Errorf("item %s: %w", it.ID, err)
		}
	}

	return &it, nil
}

// Save inserts or replaces an item. Items are authored elsewhere; this is used
// by fixtures and imports.
func (r *PostgresItemRepository) Save(ctx context.Context, it *domain.Item) error {
	days := make([]int, 0, len(it.DaysOfWeek))
	for _, d := range it.DaysOfWeek {
		days = append(days, int(d))
	}
	daysJSON, err := json.Marshal(days)
	if err != nil {
		return fmt.Errorf("failed to marshal days_of_week: %w", err)
	}

	query := `
        INSERT INTO items (` + itemColumns + `)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        ON CONFLICT (id) DO UPDATE SET
            title = EXCLUDED.title,
            mode = EXCLUDED.mode,
            recurrence_enabled = EXCLUDED.recurrence_enabled,
            days_of_week = EXCLUDED.days_of_week,
            answer_kind = EXCLUDED.answer_kind,
            priority = EXCLUDED.priority,
            updated_at = EXCLUDED.updated_at`

	_, err = r.db.ExecContext(ctx, query,
		it.ID, it.UserID, it.Title, it.Mode, it.RecurrenceEnabled, daysJSON,
		it.AnswerKind, it.Priority, it.CreatedAt, it.UpdatedAt,
	)
	if err != nil {
		if pgCode(err) == pgForeignKeyViolation {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("failed to upsert item: %w", err)
	}
	return nil
}

func (r *PostgresItemRepository) GetByID(ctx context.Context, id string) (*domain.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = $1`

	it, err := r.scanRow(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrItemNotFound
		}
		return nil, fmt.Errorf("database scan error: %w", err)
	}
	return it, nil
}

func (r *PostgresItemRepository) ListByMode(ctx context.Context, userID string, mode domain.Mode) ([]*domain.Item, error) {
	query := `
        SELECT ` + itemColumns + ` FROM items
        WHERE user_id = $1 AND mode = $2
        ORDER BY created_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, userID, mode)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	items := []*domain.Item{}
	for rows.Next() {
		it, err := r.scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("row scan error: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
