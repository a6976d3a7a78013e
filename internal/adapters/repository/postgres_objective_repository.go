package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/comitanigiacomo/kanso-recurrence-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-recurrence-engine/internal/core/due"
)

var (
	_ domain.ObjectiveRepository    = (*PostgresObjectiveRepository)(nil)
	_ domain.ObjectiveReminderIndex = (*PostgresObjectiveRepository)(nil)
)

type objectiveRow struct {
	ID               string         `db:"id"`
	UserID           string         `db:"user_id"`
	Title            string         `db:"title"`
	Type             string         `db:"type"`
	MonthKey         string         `db:"month_key"`
	WeekOfMonth      int            `db:"week_of_month"`
	StartDate        sql.NullTime   `db:"start_date"`
	EndDate          sql.NullTime   `db:"end_date"`
	NotifyAt         sql.NullString `db:"notify_at"`
	NotifyDate       sql.NullString `db:"notify_date"`
	NotificationDate sql.NullString `db:"notification_date"`
	NotifyChannel    string         `db:"notify_channel"`
	NotifyOnTarget   sql.NullBool   `db:"notify_on_target"`
	CreatedAt        time.Time      `db:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at"`
}

func (row objectiveRow) toDomain() *domain.Objective {
	o := &domain.Objective{
		ID:               row.ID,
		UserID:           row.UserID,
		Title:            row.Title,
		Type:             domain.ObjectiveType(row.Type),
		MonthKey:         row.MonthKey,
		WeekOfMonth:      row.WeekOfMonth,
		NotifyAt:         nullableText(row.NotifyAt),
		NotifyDate:       nullableText(row.NotifyDate),
		NotificationDate: nullableText(row.NotificationDate),
		NotifyChannel:    domain.NotifyChannel(row.NotifyChannel),
		CreatedAt:        row.CreatedAt,
		UpdatedAt:        row.UpdatedAt,
	}
	if row.StartDate.Valid {
		t := row.StartDate.Time
		o.StartDate = &t
	}
	if row.EndDate.Valid {
		t := row.EndDate.Time
		o.EndDate = &t
	}
	if row.NotifyOnTarget.Valid {
		b := row.NotifyOnTarget.Bool
		o.NotifyOnTarget = &b
	}
	return o
}

func nullableText(s sql.NullString) any {
	if !s.Valid {
		return nil
	}
	return s.String
}

// PostgresObjectiveRepository keeps reminder overrides as text: strings are
// stored verbatim, other shapes as RFC 3339. Start and end dates are DATE
// columns holding the calendar day in loc. reminder_day caches
// due.IndexedReminderDay, which backs ListByReminderDate.
type PostgresObjectiveRepository struct {
	db  *sqlx.DB
	loc *time.Location
}

func NewPostgresObjectiveRepository(db *sqlx.DB, loc *time.Location) *PostgresObjectiveRepository {
	if loc == nil {
		loc = time.UTC
	}
	return &PostgresObjectiveRepository{db: db, loc: loc}
}

const objectiveColumns = `id, user_id, title, type, month_key, week_of_month, start_date, end_date,
    notify_at, notify_date, notification_date, notify_channel, notify_on_target, created_at, updated_at`

func (r *PostgresObjectiveRepository) encodeOverride(v any) sql.NullString {
	switch x := v.(type) {
	case nil:
		return sql.NullString{}
	case string:
		return sql.NullString{String: x, Valid: x != ""}
	case *string:
		if x == nil {
			return sql.NullString{}
		}
		return sql.NullString{String: *x, Valid: *x != ""}
	}
	if t, ok := due.CoerceToInstant(v, r.loc); ok {
		return sql.NullString{String: t.Format(time.RFC3339Nano), Valid: true}
	}
	return sql.NullString{}
}

func (r *PostgresObjectiveRepository) reminderDay(o *domain.Objective) sql.NullString {
	day, ok := due.IndexedReminderDay(o, r.loc)
	return sql.NullString{String: day, Valid: ok}
}

// encodeDate stores the calendar day of t in the repository zone. DATE
// values scan back as UTC midnight, which due.CivilDate reads as a plain date.
func (r *PostgresObjectiveRepository) encodeDate(t *time.Time) sql.NullTime {
	if t == nil || t.IsZero() {
		return sql.NullTime{}
	}
	d := due.CivilDate(*t, r.loc)
	return sql.NullTime{Time: time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC), Valid: true}
}

// Save inserts or replaces an objective and refreshes its reminder_day.
func (r *PostgresObjectiveRepository) Save(ctx context.Context, o *domain.Objective) error {
	var notifyOnTarget sql.NullBool
	if o.NotifyOnTarget != nil {
		notifyOnTarget = sql.NullBool{Bool: *o.NotifyOnTarget, Valid: true}
	}

	query := `
        INSERT INTO objectives (` + objectiveColumns + `, reminder_day)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
        ON CONFLICT (id) DO UPDATE SET
            title = EXCLUDED.title,
            type = EXCLUDED.type,
            month_key = EXCLUDED.month_key,
            week_of_month = EXCLUDED.week_of_month,
            start_date = EXCLUDED.start_date,
            end_date = EXCLUDED.end_date,
            notify_at = EXCLUDED.notify_at,
            notify_date = EXCLUDED.notify_date,
            notification_date = EXCLUDED.notification_date,
            notify_channel = EXCLUDED.notify_channel,
            notify_on_target = EXCLUDED.notify_on_target,
            updated_at = EXCLUDED.updated_at,
            reminder_day = EXCLUDED.reminder_day`

	_, err := r.db.ExecContext(ctx, query,
		o.ID, o.UserID, o.Title, o.Type, o.MonthKey, o.WeekOfMonth, r.encodeDate(o.StartDate), r.encodeDate(o.EndDate),
		r.encodeOverride(o.NotifyAt), r.encodeOverride(o.NotifyDate), r.encodeOverride(o.NotificationDate),
		o.NotifyChannel, notifyOnTarget, o.CreatedAt, o.UpdatedAt,
		r.reminderDay(o),
	)
	if err != nil {
		if pgCode(err) == pgForeignKeyViolation {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("failed to upsert objective: %w", err)
	}
	return nil
}

func (r *PostgresObjectiveRepository) ListByMonth(ctx context.Context, userID, monthKey string) ([]*domain.Objective, error) {
	query := `SELECT ` + objectiveColumns + ` FROM objectives
        WHERE user_id = $1 AND month_key = $2
        ORDER BY id ASC`
	return r.list(ctx, query, userID, monthKey)
}

func (r *PostgresObjectiveRepository) ListByReminderDate(ctx context.Context, userID, dayKey string) ([]*domain.Objective, error) {
	query := `SELECT ` + objectiveColumns + ` FROM objectives
        WHERE user_id = $1 AND reminder_day = $2
        ORDER BY id ASC`
	return r.list(ctx, query, userID, dayKey)
}

func (r *PostgresObjectiveRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Objective, error) {
	var rows []objectiveRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list objectives: %w", err)
	}

	out := make([]*domain.Objective, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}
