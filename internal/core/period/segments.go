package period

import (
	"time"

	"github.com/comitanigiacomo/kanso-recurrence-engine/internal/core/clock"
)

// MinDaysInMonth is how many of a block's seven days must fall inside the
// month for the block to count as one of its weeks.
const MinDaysInMonth = 4

// Segment is one numbered week of a month.
type Segment struct {
	Index    int       `json:"index"`
	MonthKey string    `json:"month_key"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Label    string    `json:"label"`
}

func (s Segment) Contains(t time.Time) bool {
	return !t.Before(s.Start) && !t.After(s.End)
}

// MonthWeekSegments splits a month into weeks.
//
// Blocks of seven days start the day after weekEndsOn, the first one on or
// before day 1. A block is kept when at least MinDaysInMonth of its days are
// in the month; kept blocks are numbered from 1. A leading or trailing sliver
// that was dropped is absorbed by the first or last kept week, so the kept
// weeks cover every day of the month. A kept block that starts in the previous
// month or ends in the next one keeps its full range.
//
// loc defaults to UTC. An invalid month key or weekday yields nil.
func MonthWeekSegments(monthKey string, weekEndsOn time.Weekday, loc *time.Location) []Segment {
	if !ValidWeekday(weekEndsOn) {
		return nil
	}
	first, ok := clock.ParseMonthKey(monthKey, loc)
	if !ok {
		return nil
	}
	last := clock.AddDays(first, clock.DaysInMonth(first.Year(), first.Month())-1)

	weekStarts := (weekEndsOn + 1) % 7
	offset := (int(first.Weekday()) - int(weekStarts) + 7) % 7

	var segments []Segment
	for blockStart := clock.AddDays(first, -offset); !blockStart.After(last); blockStart = clock.AddDays(blockStart, 7) {
		blockEnd := clock.AddDays(blockStart, 6)

		from, to := blockStart, blockEnd
		if from.Before(first) {
			from = first
		}
		if to.After(last) {
			to = last
		}
		if clock.DaysBetween(from, to)+1 < MinDaysInMonth {
			continue
		}

		segments = append(segments, Segment{
			Index:    len(segments) + 1,
			MonthKey: monthKey,
			Start:    blockStart,
			End:      blockEnd,
		})
	}

	if len(segments) == 0 {
		return nil
	}

	if head := &segments[0]; head.Start.After(first) {
		head.Start = first
	}
	if tail := &segments[len(segments)-1]; tail.End.Before(last) {
		tail.End = last
	}

	for i := range segments {
		segments[i].End = clock.EndOfDay(segments[i].End)
		segments[i].Label = rangeLabel(segments[i].Start, segments[i].End)
	}

	return segments
}

// WeekDateRange returns the weekIndex-th (1-based) week of the month, or nil
// when the month key is invalid or the index is out of range.
func WeekDateRange(monthKey string, weekIndex int, weekEndsOn time.Weekday, loc *time.Location) *Segment {
	segments := MonthWeekSegments(monthKey, weekEndsOn, loc)
	if weekIndex < 1 || weekIndex > len(segments) {
		return nil
	}
	seg := segments[weekIndex-1]
	return &seg
}

// WeekOfMonth finds the week of t's own month that contains t. Every day of a
// month belongs to exactly one of its weeks.
func WeekOfMonth(t time.Time, weekEndsOn time.Weekday) (string, int, bool) {
	if t.IsZero() {
		return "", 0, false
	}
	monthKey := clock.MonthKey(t)
	for _, seg := range MonthWeekSegments(monthKey, weekEndsOn, t.Location()) {
		if seg.Contains(t) {
			return monthKey, seg.Index, true
		}
	}
	return "", 0, false
}
