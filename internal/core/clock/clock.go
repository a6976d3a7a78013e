// Package clock holds the calendar arithmetic shared by the recurrence engine.
// Every function works on the civil fields of the time it is given; callers
// decide the zone once (see Clock) and nothing here converts it again.
package clock

import (
	"time"
)

const (
	DayLayout   = "2006-01-02"
	MonthLayout = "2006-01"
	YearLayout  = "2006"
)

// Clock answers "what time is it" in a fixed civil zone.
type Clock interface {
	Now() time.Time
}

type SystemClock struct {
	loc *time.Location
}

func NewSystemClock(loc *time.Location) SystemClock {
	if loc == nil {
		loc = time.UTC
	}
	return SystemClock{loc: loc}
}

func (c SystemClock) Now() time.Time {
	return time.Now().In(c.loc)
}

func (c SystemClock) Location() *time.Location {
	return c.loc
}

// FixedClock always returns the same instant, converted to Loc when set.
type FixedClock struct {
	At  time.Time
	Loc *time.Location
}

func (c FixedClock) Now() time.Time {
	if c.Loc != nil {
		return c.At.In(c.Loc)
	}
	return c.At
}

func DayKey(t time.Time) string {
	return t.Format(DayLayout)
}

func MonthKey(t time.Time) string {
	return t.Format(MonthLayout)
}

func YearKey(t time.Time) string {
	return t.Format(YearLayout)
}

// TodayKey is the day key of c.Now().
func TodayKey(c Clock) string {
	return DayKey(c.Now())
}

func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns 23:59:59.999 of t's day, the inclusive bound used by periods.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), t.Location())
}

func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func EndOfMonth(t time.Time) time.Time {
	return EndOfDay(time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()))
}

func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// AddDays moves t by n civil days and normalizes to the start of that day,
// which keeps the result stable across DST transitions.
func AddDays(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+n, 0, 0, 0, 0, t.Location())
}

// DaysBetween counts civil days from a to b, ignoring the time of day.
func DaysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	from := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	to := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from).Hours() / 24)
}

func ParseDayKey(key string, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(DayLayout, key, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ParseMonthKey returns midnight of the first day of the month.
func ParseMonthKey(key string, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(MonthLayout, key, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func ParseYearKey(key string, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(YearLayout, key, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ShiftMonthKey returns the month key delta months away from key.
func ShiftMonthKey(key string, delta int) (string, bool) {
	t, ok := ParseMonthKey(key, time.UTC)
	if !ok {
		return "", false
	}
	return MonthKey(time.Date(t.Year(), t.Month()+time.Month(delta), 1, 0, 0, 0, 0, time.UTC)), true
}

// SameDay reports whether a and b fall on the same civil day.
func SameDay(a, b time.Time) bool {
	return DayKey(a) == DayKey(b)
}
