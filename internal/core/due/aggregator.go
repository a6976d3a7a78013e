// Package due answers "what is due for this user today": which items are
// visible and which objectives reach their reminder date. It performs no I/O;
// callers fetch the collections and pass an already zoned now.
package due

import (
	"sort"
	"time"

	"github.com/comitanigiacomo/kanso-recurrence-engine/internal/core/clock"
	"github.com/comitanigiacomo/kanso-recurrence-engine/internal/core/cooldown"
	"github.com/comitanigiacomo/kanso-recurrence-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-recurrence-engine/internal/core/period"
)

type HiddenReason string

const (
	ReasonCooldown HiddenReason = "cooldown"
	ReasonOffDay   HiddenReason = "off_day"
)

type HiddenItem struct {
	Item      *domain.Item `json:"item"`
	Remaining int          `json:"remaining"`
	Reason    HiddenReason `json:"reason"`
}

type Visibility struct {
	Visible []*domain.Item `json:"visible"`
	Hidden  []HiddenItem   `json:"hidden"`
}

// VisibleItems partitions items with cooldown.IsDue. states is keyed by item ID;
// a missing entry means the item was never answered. Visible items are ordered
// by priority, keeping input order within a priority.
func VisibleItems(items []*domain.Item, states map[string]*domain.CooldownState, now time.Time) Visibility {
	out := Visibility{
		Visible: make([]*domain.Item, 0, len(items)),
		Hidden:  make([]HiddenItem, 0),
	}

	for _, item := range items {
		if item == nil {
			continue
		}
		state := states[item.ID]

		if cooldown.IsDue(item, state, now) {
			out.Visible = append(out.Visible, item)
			continue
		}

		if !item.ScheduledOn(now) {
			out.Hidden = append(out.Hidden, HiddenItem{Item: item, Reason: ReasonOffDay})
			continue
		}
		out.Hidden = append(out.Hidden, HiddenItem{
			Item:      item,
			Remaining: cooldown.Remaining(item, state, now),
			Reason:    ReasonCooldown,
		})
	}

	sort.SliceStable(out.Visible, func(a, b int) bool {
		return out.Visible[a].Priority.Rank() < out.Visible[b].Priority.Rank()
	})

	return out
}

// Filter narrows DueObjectives.
type Filter struct {
	// PushOnly drops objectives that only notify by email.
	PushOnly bool
}

// EffectiveDueDate is the day an objective should be reminded on.
//
// The first reminder override that coerces to an instant wins. Otherwise the
// date comes from the type: the end of the weekOfMonth segment for weekly
// objectives, the last day of monthKey for monthly ones, and the end date
// (falling back to the start date) for yearly ones. It reports false when no
// date can be derived.
func EffectiveDueDate(obj *domain.Objective, weekEndsOn time.Weekday, loc *time.Location) (time.Time, bool) {
	if obj == nil {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.UTC
	}

	for _, override := range obj.ReminderOverrides() {
		if t, ok := CoerceToInstant(override, loc); ok {
			return t, true
		}
	}

	switch obj.Type {
	case domain.ObjectiveWeekly:
		seg := period.WeekDateRange(obj.MonthKey, obj.WeekOfMonth, weekEndsOn, loc)
		if seg == nil {
			return time.Time{}, false
		}
		return seg.End, true

	case domain.ObjectiveMonthly:
		first, ok := clock.ParseMonthKey(obj.MonthKey, loc)
		if !ok {
			return time.Time{}, false
		}
		return clock.EndOfMonth(first), true

	case domain.ObjectiveYearly:
		for _, d := range []*time.Time{obj.EndDate, obj.StartDate} {
			if d != nil && !d.IsZero() {
				return CivilDate(*d, loc), true
			}
		}
	}

	return time.Time{}, false
}

// DueObjectives keeps the objectives whose effective due date falls on now's
// civil day. Candidates usually span two month buckets plus a reminder index,
// so duplicates are dropped by ID, first occurrence wins.
func DueObjectives(objs []*domain.Objective, now time.Time, weekEndsOn time.Weekday, f Filter) []*domain.Objective {
	today := clock.DayKey(now)
	seen := make(map[string]bool, len(objs))
	out := make([]*domain.Objective, 0)

	for _, obj := range objs {
		if obj == nil {
			continue
		}
		if obj.ID != "" {
			if seen[obj.ID] {
				continue
			}
			seen[obj.ID] = true
		}

		if !obj.Notifies() {
			continue
		}
		if f.PushOnly && obj.Channel() == domain.ChannelEmail {
			continue
		}

		at, ok := EffectiveDueDate(obj, weekEndsOn, now.Location())
		if !ok || clock.DayKey(at) != today {
			continue
		}
		out = append(out, obj)
	}

	return out
}

// civilDay rebuilds the calendar date of t at midnight in loc.
func civilDay(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// CivilDate reads a start/end date field as a calendar day in loc. UTC
// midnight is a plain date (what a DATE column scans to) and keeps its fields;
// any other value is an instant and is moved into loc first.
func CivilDate(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	if !t.Equal(time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)) {
		t = t.In(loc)
	}
	return civilDay(t, loc)
}

// IndexedReminderDay is the day key a reminder-date index should file obj
// under. Only overrides and yearly dates need the index: weekly and monthly
// dates derive from monthKey, which the month bucket lookups already cover.
func IndexedReminderDay(obj *domain.Objective, loc *time.Location) (string, bool) {
	if obj == nil {
		return "", false
	}
	if loc == nil {
		loc = time.UTC
	}

	for _, override := range obj.ReminderOverrides() {
		if t, ok := CoerceToInstant(override, loc); ok {
			return clock.DayKey(t), true
		}
	}

	if obj.Type == domain.ObjectiveYearly {
		// yearly dates never depend on the week end
		if t, ok := EffectiveDueDate(obj, time.Sunday, loc); ok {
			return clock.DayKey(t), true
		}
	}
	return "", false
}
