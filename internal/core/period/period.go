// Package period resolves calendar windows (day, week, month, year) and splits
// months into numbered weeks. Results are plain values recomputed on demand;
// only Period.Key is ever persisted.
package period

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/comitanigiacomo/kanso-recurrence-engine/internal/core/clock"
)

type Scope string

const (
	ScopeDay   Scope = "day"
	ScopeWeek  Scope = "week"
	ScopeMonth Scope = "month"
	ScopeYear  Scope = "year"
	ScopeAdhoc Scope = "adhoc"
)

// DefaultWeekEndsOn is used when a user never configured a week end.
const DefaultWeekEndsOn = time.Sunday

func ParseScope(s string) (Scope, bool) {
	switch sc := Scope(strings.ToLower(strings.TrimSpace(s))); sc {
	case ScopeDay, ScopeWeek, ScopeMonth, ScopeYear, ScopeAdhoc:
		return sc, true
	}
	return "", false
}

type Period struct {
	Scope      Scope        `json:"scope"`
	Start      time.Time    `json:"start"`
	End        time.Time    `json:"end"`
	Key        string       `json:"key"`
	WeekEndsOn time.Weekday `json:"week_ends_on"`
	Label      string       `json:"label"`
}

// Contains reports whether t falls inside the inclusive window.
func (p *Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && !t.After(p.End)
}

func ValidWeekday(w time.Weekday) bool {
	return w >= time.Sunday && w <= time.Saturday
}

// Resolve returns the window of the given scope containing anchor. It returns
// nil for a zero anchor, an unknown scope or a weekday outside 0-6; callers
// must skip the period rather than guess.
func Resolve(scope Scope, anchor time.Time, weekEndsOn time.Weekday) *Period {
	if anchor.IsZero() || !ValidWeekday(weekEndsOn) {
		return nil
	}

	switch scope {
	case ScopeWeek:
		offset := (int(weekEndsOn) - int(anchor.Weekday()) + 7) % 7
		return ResolveWeekEnding(clock.AddDays(anchor, offset), weekEndsOn)

	case ScopeMonth:
		start := clock.StartOfMonth(anchor)
		return &Period{
			Scope:      ScopeMonth,
			Start:      start,
			End:        clock.EndOfMonth(anchor),
			Key:        clock.MonthKey(anchor),
			WeekEndsOn: weekEndsOn,
			Label:      start.Format("January 2006"),
		}

	case ScopeYear:
		loc := anchor.Location()
		return &Period{
			Scope:      ScopeYear,
			Start:      time.Date(anchor.Year(), time.January, 1, 0, 0, 0, 0, loc),
			End:        clock.EndOfDay(time.Date(anchor.Year(), time.December, 31, 0, 0, 0, 0, loc)),
			Key:        clock.YearKey(anchor),
			WeekEndsOn: weekEndsOn,
			Label:      clock.YearKey(anchor),
		}

	case ScopeDay, ScopeAdhoc:
		return &Period{
			Scope:      scope,
			Start:      clock.StartOfDay(anchor),
			End:        clock.EndOfDay(anchor),
			Key:        clock.DayKey(anchor),
			WeekEndsOn: weekEndsOn,
			Label:      anchor.Format("Mon Jan 02, 2006"),
		}
	}

	return nil
}

// ResolveWeekEnding returns the seven days ending on end. The key is derived
// from end and weekEndsOn only, so re-resolving a stored week is stable.
func ResolveWeekEnding(end time.Time, weekEndsOn time.Weekday) *Period {
	if end.IsZero() || !ValidWeekday(weekEndsOn) {
		return nil
	}

	last := clock.StartOfDay(end)
	start := clock.AddDays(last, -6)

	return &Period{
		Scope:      ScopeWeek,
		Start:      start,
		End:        clock.EndOfDay(last),
		Key:        WeekKey(last, weekEndsOn),
		WeekEndsOn: weekEndsOn,
		Label:      rangeLabel(start, last),
	}
}

// WeekKey identifies a week by its last day and the configured week end,
// e.g. "2024-07-21_w0".
func WeekKey(end time.Time, weekEndsOn time.Weekday) string {
	return fmt.Sprintf("%s_w%d", clock.DayKey(end), int(weekEndsOn))
}

// ResolveKey is Resolve for string anchors: a day key for any scope, a month
// key for month/year scopes, a year key for the year scope, or a week key for
// the week scope. Unparseable input yields nil.
func ResolveKey(scope Scope, key string, weekEndsOn time.Weekday, loc *time.Location) *Period {
	key = strings.TrimSpace(key)
	if loc == nil {
		loc = time.UTC
	}

	if scope == ScopeWeek {
		if end, wd, ok := parseWeekKey(key, loc); ok {
			return ResolveWeekEnding(end, wd)
		}
	}

	if d, ok := clock.ParseDayKey(key, loc); ok {
		return Resolve(scope, d, weekEndsOn)
	}

	switch scope {
	case ScopeMonth, ScopeYear:
		if m, ok := clock.ParseMonthKey(key, loc); ok {
			return Resolve(scope, m, weekEndsOn)
		}
		if scope == ScopeYear {
			if y, ok := clock.ParseYearKey(key, loc); ok {
				return Resolve(scope, y, weekEndsOn)
			}
		}
	}

	return nil
}

func parseWeekKey(key string, loc *time.Location) (time.Time, time.Weekday, bool) {
	day, suffix, found := strings.Cut(key, "_w")
	if !found {
		return time.Time{}, 0, false
	}
	end, ok := clock.ParseDayKey(day, loc)
	if !ok {
		return time.Time{}, 0, false
	}
	n, err := strconv.Atoi(suffix)
	if err != nil || !ValidWeekday(time.Weekday(n)) {
		return time.Time{}, 0, false
	}
	return end, time.Weekday(n), true
}

// rangeLabel renders "Week of Aug 01–09" or "Week of Jul 29–Aug 04".
func rangeLabel(start, end time.Time) string {
	if start.Month() == end.Month() && start.Year() == end.Year() {
		return fmt.Sprintf("Week of %s–%s", start.Format("Jan 02"), end.Format("02"))
	}
	return fmt.Sprintf("Week of %s–%s", start.Format("Jan 02"), end.Format("Jan 02"))
}
