package due_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-recurrence-engine/internal/core/clock"
	"github.com/comitanigiacomo/kanso-recurrence-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-recurrence-engine/internal/core/due"
)

func strp(s string) *string { return &s }
func intp(i int) *int       { return &i }
func boolp(b bool) *bool    { return &b }

func ids(objs []*domain.Objective) []string {
	out := make([]string, 0, len(objs))
	for _, o := range objs {
		out = append(out, o.ID)
	}
	return out
}

func TestVisibleItems(t *testing.T) {
	monday := time.Date(2024, time.May, 6, 9, 0, 0, 0, time.UTC)

	low := &domain.Item{ID: "low", Mode: domain.ModeDaily, RecurrenceEnabled: true, Priority: domain.PriorityLow}
	unset := &domain.Item{ID: "unset", Mode: domain.ModeDaily, RecurrenceEnabled: true}
	high := &domain.Item{ID: "high", Mode: domain.ModeDaily, RecurrenceEnabled: true, Priority: domain.PriorityHigh}
	cooling := &domain.Item{ID: "cooling", Mode: domain.ModeDaily, RecurrenceEnabled: true, Priority: domain.PriorityHigh}
	offDay := &domain.Item{ID: "off", Mode: domain.ModeDaily, RecurrenceEnabled: true, DaysOfWeek: []time.Weekday{time.Friday}}
	practice := &domain.Item{ID: "practice", Mode: domain.ModePractice, RecurrenceEnabled: true}

	states := map[string]*domain.CooldownState{
		"cooling":  {Score: 3, CooldownUntil: strp("2024-05-09")},
		"practice": {Score: 2, CooldownSessions: intp(2)},
		"low":      {Score: 0.5},
	}

	v := due.VisibleItems([]*domain.Item{low, nil, unset, cooling, high, offDay, practice}, states, monday)

	require.Len(t, v.Visible, 3)
	assert.Equal(t, []string{"high", "low", "unset"}, []string{v.Visible[0].ID, v.Visible[1].ID, v.Visible[2].ID})

	require.Len(t, v.Hidden, 3)
	byID := make(map[string]due.HiddenItem)
	for _, h := range v.Hidden {
		byID[h.Item.ID] = h
	}

	assert.Equal(t, due.ReasonCooldown, byID["cooling"].Reason)
	assert.Equal(t, 3, byID["cooling"].Remaining)
	assert.Equal(t, due.ReasonOffDay, byID["off"].Reason)
	assert.Equal(t, 0, byID["off"].Remaining)
	assert.Equal(t, due.ReasonCooldown, byID["practice"].Reason)
	assert.Equal(t, 2, byID["practice"].Remaining)
}

func TestVisibleItems_Empty(t *testing.T) {
	v := due.VisibleItems(nil, nil, time.Now())
	assert.NotNil(t, v.Visible)
	assert.NotNil(t, v.Hidden)
	assert.Empty(t, v.Visible)
	assert.Empty(t, v.Hidden)
}

func TestDueObjectives_WeeklyRoundTrip(t *testing.T) {
	obj := &domain.Objective{ID: "w3", Type: domain.ObjectiveWeekly, MonthKey: "2024-07", WeekOfMonth: 3}

	start := time.Date(2024, time.June, 1, 10, 0, 0, 0, time.UTC)
	var dueDays []string
	for d := 0; d < 120; d++ {
		now := clock.AddDays(start, d).Add(10 * time.Hour)
		if len(due.DueObjectives([]*domain.Objective{obj}, now, time.Sunday, due.Filter{})) == 1 {
			dueDays = append(dueDays, clock.DayKey(now))
		}
	}

	assert.Equal(t, []string{"2024-07-21"}, dueDays)
}

func TestDueObjectives_TimezoneAnchoredToday(t *testing.T) {
	paris, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)

	obj := &domain.Objective{ID: "aug", Type: domain.ObjectiveMonthly, MonthKey: "2024-08", NotifyDate: "2024-08-01"}
	instant := time.Date(2024, time.July, 31, 22, 30, 0, 0, time.UTC)

	got := due.DueObjectives([]*domain.Objective{obj}, instant.In(paris), time.Sunday, due.Filter{})
	assert.Equal(t, []string{"aug"}, ids(got), "already August 1st in Paris")

	got = due.DueObjectives([]*domain.Objective{obj}, instant, time.Sunday, due.Filter{})
	assert.Empty(t, got, "still July 31st in UTC")
}

func TestDueObjectives_Filtering(t *testing.T) {
	now := time.Date(2024, time.August, 31, 20, 0, 0, 0, time.UTC)

	monthly := &domain.Objective{ID: "monthly", Type: domain.ObjectiveMonthly, MonthKey: "2024-08"}
	emailOnly := &domain.Objective{ID: "email", Type: domain.ObjectiveMonthly, MonthKey: "2024-08", NotifyChannel: domain.ChannelEmail}
	push := &domain.Objective{ID: "push", Type: domain.ObjectiveMonthly, MonthKey: "2024-08", NotifyChannel: domain.ChannelPush}
	muted := &domain.Objective{ID: "muted", Type: domain.ObjectiveMonthly, MonthKey: "2024-08", NotifyOnTarget: boolp(false)}
	enabled := &domain.Objective{ID: "enabled", Type: domain.ObjectiveMonthly, MonthKey: "2024-08", NotifyOnTarget: boolp(true)}
	notToday := &domain.Objective{ID: "july", Type: domain.ObjectiveMonthly, MonthKey: "2024-07"}
	broken := &domain.Objective{ID: "broken", Type: domain.ObjectiveWeekly, MonthKey: "2024-08", WeekOfMonth: 9}

	all := []*domain.Objective{monthly, emailOnly, push, muted, enabled, notToday, broken, monthly, nil}

	t.Run("Success: every channel", func(t *testing.T) {
		got := due.DueObjectives(all, now, time.Sunday, due.Filter{})
		assert.Equal(t, []string{"monthly", "email", "push", "enabled"}, ids(got))
	})

	t.Run("Success: push count drops email-only objectives", func(t *testing.T) {
		got := due.DueObjectives(all, now, time.Sunday, due.Filter{PushOnly: true})
		assert.Equal(t, []string{"monthly", "push", "enabled"}, ids(got))
	})
}

func TestDueObjectives_PreviousMonthBucket(t *testing.T) {
	// January 2025 week 5 runs Jan 27 - Feb 2, so it is reminded in February.
	obj := &domain.Objective{ID: "jan-w5", Type: domain.ObjectiveWeekly, MonthKey: "2025-01", WeekOfMonth: 5}
	now := time.Date(2025, time.February, 2, 8, 0, 0, 0, time.UTC)

	got := due.DueObjectives([]*domain.Objective{obj}, now, time.Sunday, due.Filter{})
	assert.Equal(t, []string{"jan-w5"}, ids(got))
}

func TestEffectiveDueDate(t *testing.T) {
	start := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.December, 15, 0, 0, 0, 0, time.UTC)
	newYork, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	paris, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)
	// a Paris midnight as read back from a timestamptz column
	parisEnd := time.Date(2024, time.December, 31, 0, 0, 0, 0, paris).UTC()

	tests := []struct {
		name   string
		obj    *domain.Objective
		loc    *time.Location
		want   string
		wantOK bool
	}{
		{"Weekly segment end", &domain.Objective{Type: domain.ObjectiveWeekly, MonthKey: "2020-08", WeekOfMonth: 1}, nil, "2020-08-09", true},
		{"Monthly last day", &domain.Objective{Type: domain.ObjectiveMonthly, MonthKey: "2024-02"}, nil, "2024-02-29", true},
		{"Yearly end date", &domain.Objective{Type: domain.ObjectiveYearly, StartDate: &start, EndDate: &end}, nil, "2024-12-15", true},
		{"Yearly falls back to start", &domain.Objective{Type: domain.ObjectiveYearly, StartDate: &start}, nil, "2024-03-01", true},
		{"Yearly date keeps its civil day west of UTC", &domain.Objective{Type: domain.ObjectiveYearly, EndDate: &end}, newYork, "2024-12-15", true},
		{"Yearly instant is read in the caller's zone", &domain.Objective{Type: domain.ObjectiveYearly, EndDate: &parisEnd}, paris, "2024-12-31", true},
		{"Override beats type", &domain.Objective{Type: domain.ObjectiveMonthly, MonthKey: "2024-02", NotifyAt: "2023-11-05"}, nil, "2023-11-05", true},
		{"First usable override wins", &domain.Objective{Type: domain.ObjectiveMonthly, MonthKey: "2024-02", NotifyAt: "garbage", NotificationDate: "2024-02-10"}, nil, "2024-02-10", true},
		{"Yearly without dates", &domain.Objective{Type: domain.ObjectiveYearly}, nil, "", false},
		{"Bad month key", &domain.Objective{Type: domain.ObjectiveMonthly, MonthKey: "2024/02"}, nil, "", false},
		{"Unknown type", &domain.Objective{Type: domain.ObjectiveType("daily"), MonthKey: "2024-02"}, nil, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := due.EffectiveDueDate(tt.obj, time.Sunday, tt.loc)
			require.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, tt.want, clock.DayKey(got))
			}
		})
	}

	_, ok := due.EffectiveDueDate(nil, time.Sunday, nil)
	assert.False(t, ok)
}

func TestDueObjectives_YearlyEndDateEastOfUTC(t *testing.T) {
	paris, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)

	end := time.Date(2024, time.December, 31, 0, 0, 0, 0, paris).UTC()
	obj := &domain.Objective{ID: "year", Type: domain.ObjectiveYearly, MonthKey: "2024-01", EndDate: &end}

	t.Run("Success: due on the local end date", func(t *testing.T) {
		now := time.Date(2024, time.December, 31, 9, 0, 0, 0, paris)
		got := due.DueObjectives([]*domain.Objective{obj}, now, time.Sunday, due.Filter{})
		assert.Equal(t, []string{"year"}, ids(got))
	})

	t.Run("Success: not due the day before", func(t *testing.T) {
		now := time.Date(2024, time.December, 30, 9, 0, 0, 0, paris)
		got := due.DueObjectives([]*domain.Objective{obj}, now, time.Sunday, due.Filter{})
		assert.Empty(t, got)
	})
}

func TestCivilDate(t *testing.T) {
	paris, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)
	newYork, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	plain := time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC)
	instant := time.Date(2024, time.December, 30, 23, 0, 0, 0, time.UTC)

	assert.Equal(t, "2024-12-31", clock.DayKey(due.CivilDate(plain, paris)))
	assert.Equal(t, "2024-12-31", clock.DayKey(due.CivilDate(plain, newYork)))
	assert.Equal(t, "2024-12-31", clock.DayKey(due.CivilDate(instant, paris)))
	assert.Equal(t, "2024-12-30", clock.DayKey(due.CivilDate(instant, newYork)))
	assert.Equal(t, paris, due.CivilDate(instant, paris).Location())
}

func TestIndexedReminderDay(t *testing.T) {
	paris, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)
	end := time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		obj    *domain.Objective
		want   string
		wantOK bool
	}{
		{"Override", &domain.Objective{Type: domain.ObjectiveMonthly, MonthKey: "2024-02", NotifyDate: "2024-03-05"}, "2024-03-05", true},
		{"Yearly end date", &domain.Objective{Type: domain.ObjectiveYearly, MonthKey: "2024-01", EndDate: &end}, "2024-12-31", true},
		{"Monthly without override", &domain.Objective{Type: domain.ObjectiveMonthly, MonthKey: "2024-02"}, "", false},
		{"Weekly without override", &domain.Objective{Type: domain.ObjectiveWeekly, MonthKey: "2024-02", WeekOfMonth: 2}, "", false},
		{"Yearly without dates", &domain.Objective{Type: domain.ObjectiveYearly}, "", false},
		{"Nil", nil, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := due.IndexedReminderDay(tt.obj, paris)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
