package repository

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-recurrence-engine/internal/core/clock"
	"github.com/comitanigiacomo/kanso-recurrence-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-recurrence-engine/internal/core/due"
	"github.com/comitanigiacomo/kanso-recurrence-engine/migrations"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func setupTestDB(t *testing.T) *sqlx.DB {
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		envOr("DB_USER", "kanso_user"), envOr("DB_PASSWORD", "secret"),
		envOr("DB_HOST", "localhost"), envOr("DB_PORT", "5432"), envOr("DB_NAME", "kanso_db"))

	db, err := sqlx.Connect("pgx", dsn)
	if err != nil {
		t.Skipf("Skipping integration tests: database connection failed: %v", err)
	}

	_, err = migrations.Up(db.DB)
	require.NoError(t, err, "Failed to apply migrations")
	return db
}

func cleanup(t *testing.T, db *sqlx.DB) {
	_, err := db.Exec("TRUNCATE TABLE cooldown_states, objectives, items, users CASCADE")
	require.NoError(t, err, "Failed to clean up database")
}

func seedUser(t *testing.T, repo *PostgresUserRepository, weekEndsOn int) *domain.User {
	id := uuid.NewString()
	u, err := domain.NewUser(id, fmt.Sprintf("%s@kanso.app", id), weekEndsOn)
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), u))
	return u
}

func TestPostgresUserRepository_Integration(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	cleanup(t, db)
	defer cleanup(t, db)

	repo := NewPostgresUserRepository(db)
	ctx := context.Background()

	t.Run("Success: save and read back settings", func(t *testing.T) {
		u := seedUser(t, repo, int(time.Saturday))

		got, err := repo.GetByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, u.Email, got.Email)
		assert.Equal(t, time.Saturday, got.WeekEndsOn)
	})

	t.Run("Success: save is an upsert", func(t *testing.T) {
		u := seedUser(t, repo, 0)
		u.WeekEndsOn = time.Monday
		require.NoError(t, repo.Save(ctx, u))

		got, err := repo.GetByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, time.Monday, got.WeekEndsOn)
	})

	t.Run("Error: duplicate email", func(t *testing.T) {
		u := seedUser(t, repo, 0)
		other, err := domain.NewUser(uuid.NewString(), u.Email, 0)
		require.NoError(t, err)

		assert.ErrorIs(t, repo.Save(ctx, other), domain.ErrEmailAlreadyExists)
	})

	t.Run("Error: unknown id", func(t *testing.T) {
		_, err := repo.GetByID(ctx, uuid.NewString())
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})

	t.Run("Success: list ids", func(t *testing.T) {
		ids, err := repo.ListIDs(ctx)
		require.NoError(t, err)
		assert.Len(t, ids, 3)
		assert.IsIncreasing(t, ids)
	})
}

func TestPostgresItemAndCooldownRepository_Integration(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	cleanup(t, db)
	defer cleanup(t, db)

	ctx := context.Background()
	users := NewPostgresUserRepository(db)
	items := NewPostgresItemRepository(db)
	states := NewPostgresCooldownRepository(db)

	u := seedUser(t, users, 0)
	now := time.Now().UTC().Truncate(time.Second)

	daily := &domain.Item{
		ID: uuid.NewString(), UserID: u.ID, Title: "Did I walk?", Mode: domain.ModeDaily,
		RecurrenceEnabled: true, DaysOfWeek: []time.Weekday{time.Monday, time.Friday},
		AnswerKind: domain.KindLikert, Priority: domain.PriorityHigh, CreatedAt: now, UpdatedAt: now,
	}
	practice := &domain.Item{
		ID: uuid.NewString(), UserID: u.ID, Title: "Scales", Mode: domain.ModePractice,
		RecurrenceEnabled: true, AnswerKind: domain.KindNumeric, CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, items.Save(ctx, daily))
	require.NoError(t, items.Save(ctx, practice))

	t.Run("Success: items round trip with weekday set", func(t *testing.T) {
		got, err := items.GetByID(ctx, daily.ID)
		require.NoError(t, err)
		assert.Equal(t, []time.Weekday{time.Monday, time.Friday}, got.DaysOfWeek)
		assert.Equal(t, domain.PriorityHigh, got.Priority)

		list, err := items.ListByMode(ctx, u.ID, domain.ModePractice)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, practice.ID, list[0].ID)
		assert.Empty(t, list[0].DaysOfWeek)
	})

	t.Run("Error: unknown item", func(t *testing.T) {
		_, err := items.GetByID(ctx, uuid.NewString())
		assert.ErrorIs(t, err, domain.ErrItemNotFound)
	})

	t.Run("Success: missing state reads as nil", func(t *testing.T) {
		s, err := states.Get(ctx, u.ID, daily.ID, domain.ModeDaily)
		assert.NoError(t, err)
		assert.Nil(t, s)
	})

	t.Run("Success: write merges and preserves absent fields", func(t *testing.T) {
		score, until := 0.5, "2024-05-07"
		_, err := states.Write(ctx, u.ID, daily.ID, domain.ModeDaily, domain.CooldownPatch{Score: &score, CooldownUntil: &until})
		require.NoError(t, err)

		score = 1
		merged, err := states.Write(ctx, u.ID, daily.ID, domain.ModeDaily, domain.CooldownPatch{Score: &score})
		require.NoError(t, err)
		require.NotNil(t, merged.CooldownUntil)
		assert.Equal(t, "2024-05-07", *merged.CooldownUntil)

		stored, err := states.Get(ctx, u.ID, daily.ID, domain.ModeDaily)
		require.NoError(t, err)
		assert.Equal(t, 1.0, stored.Score)
		assert.Equal(t, "2024-05-07", *stored.CooldownUntil)
		assert.Nil(t, stored.CooldownSessions)
	})

	t.Run("Success: clearing the day key", func(t *testing.T) {
		zero := 0.0
		cleared, err := states.Write(ctx, u.ID, daily.ID, domain.ModeDaily, domain.CooldownPatch{Score: &zero, ClearCooldownUntil: true})
		require.NoError(t, err)
		assert.Nil(t, cleared.CooldownUntil)
	})

	t.Run("Success: list by mode keyed by item", func(t *testing.T) {
		sessions := 2
		_, err := states.Write(ctx, u.ID, practice.ID, domain.ModePractice, domain.CooldownPatch{CooldownSessions: &sessions})
		require.NoError(t, err)

		m, err := states.ListByMode(ctx, u.ID, domain.ModePractice)
		require.NoError(t, err)
		require.Contains(t, m, practice.ID)
		assert.Equal(t, 2, *m[practice.ID].CooldownSessions)
		assert.NotContains(t, m, daily.ID)
	})

	t.Run("Error: write for unknown item", func(t *testing.T) {
		score := 1.0
		_, err := states.Write(ctx, u.ID, uuid.NewString(), domain.ModeDaily, domain.CooldownPatch{Score: &score})
		assert.ErrorIs(t, err, domain.ErrItemNotFound)
	})
}

func TestPostgresObjectiveRepository_Integration(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	cleanup(t, db)
	defer cleanup(t, db)

	ctx := context.Background()
	paris, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)

	users := NewPostgresUserRepository(db)
	repo := NewPostgresObjectiveRepository(db, paris)
	u := seedUser(t, users, 0)

	onTarget := false
	instant := time.Date(2024, 7, 31, 22, 30, 0, 0, time.UTC)
	yearEnd := time.Date(2024, 12, 31, 0, 0, 0, 0, paris)
	objs := []*domain.Objective{
		{ID: "o1", UserID: u.ID, Title: "Weekly", Type: domain.ObjectiveWeekly, MonthKey: "2024-07", WeekOfMonth: 3},
		{ID: "o2", UserID: u.ID, Title: "Instant override", Type: domain.ObjectiveMonthly, MonthKey: "2024-07", NotifyAt: instant},
		{ID: "o3", UserID: u.ID, Title: "Date override", Type: domain.ObjectiveYearly, MonthKey: "2024-08", NotifyDate: "2024-08-01", NotifyOnTarget: &onTarget, NotifyChannel: domain.ChannelEmail},
		{ID: "o4", UserID: u.ID, Title: "Year end", Type: domain.ObjectiveYearly, MonthKey: "2024-01", EndDate: &yearEnd},
	}
	for _, o := range objs {
		require.NoError(t, repo.Save(ctx, o))
	}

	t.Run("Success: list by month", func(t *testing.T) {
		list, err := repo.ListByMonth(ctx, u.ID, "2024-07")
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "o1", list[0].ID)
		assert.Equal(t, 3, list[0].WeekOfMonth)
		assert.Nil(t, list[0].NotifyAt)
	})

	t.Run("Success: reminder index keys overrides in the repository zone", func(t *testing.T) {
		list, err := repo.ListByReminderDate(ctx, u.ID, "2024-08-01")
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "o2", list[0].ID)
		assert.Equal(t, "o3", list[1].ID)

		assert.Equal(t, "2024-08-01", list[1].NotifyDate)
		require.NotNil(t, list[1].NotifyOnTarget)
		assert.False(t, *list[1].NotifyOnTarget)
		assert.Equal(t, domain.ChannelEmail, list[1].NotifyChannel)
	})

	t.Run("Success: yearly end date keeps its local day after a round trip", func(t *testing.T) {
		list, err := repo.ListByReminderDate(ctx, u.ID, "2024-12-31")
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "o4", list[0].ID)
		require.NotNil(t, list[0].EndDate)

		at, ok := due.EffectiveDueDate(list[0], time.Sunday, paris)
		require.True(t, ok)
		assert.Equal(t, "2024-12-31", clock.DayKey(at))

		now := time.Date(2024, 12, 31, 9, 0, 0, 0, paris)
		assert.Len(t, due.DueObjectives(list, now, time.Sunday, due.Filter{}), 1)
	})

	t.Run("Success: unknown day yields empty list", func(t *testing.T) {
		list, err := repo.ListByReminderDate(ctx, u.ID, "2024-07-31")
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("Error: objective for unknown user", func(t *testing.T) {
		err := repo.Save(ctx, &domain.Objective{ID: "ghost", UserID: uuid.NewString(), Type: domain.ObjectiveMonthly, MonthKey: "2024-07"})
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})
}
