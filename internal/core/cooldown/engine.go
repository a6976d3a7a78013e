// Package cooldown decides whether an item is due and how long a positive
// answer hides it. Everything here is a pure function of (item, state, now);
// persisting the returned state is the caller's job.
package cooldown

import (
	"math"
	"time"

	"github.com/comitanigiacomo/kanso-recurrence-engine/internal/core/clock"
	"github.com/comitanigiacomo/kanso-recurrence-engine/internal/core/domain"
)

// IsDue reports whether item should be shown at now. Broken or contradictory
// state never hides an item.
func IsDue(item *domain.Item, state *domain.CooldownState, now time.Time) bool {
	if !item.ScheduledOn(now) {
		return false
	}
	if !item.RecurrenceEnabled || state == nil || state.Inconsistent() {
		return true
	}

	switch item.Mode {
	case domain.ModeDaily:
		until, ok := cooldownDay(state, now.Location())
		if !ok {
			return true
		}
		// Hidden while today < until: an item hidden until today shows today.
		return !clock.StartOfDay(now).Before(until)

	case domain.ModePractice:
		return state.CooldownSessions == nil || *state.CooldownSessions <= 0
	}

	return true
}

// Remaining is the UI hint for a hidden item: civil days until it returns for
// daily items, sessions left for practice items. It is 0 when nothing is pending.
func Remaining(item *domain.Item, state *domain.CooldownState, now time.Time) int {
	if state == nil || state.Inconsistent() {
		return 0
	}

	switch item.Mode {
	case domain.ModeDaily:
		until, ok := cooldownDay(state, now.Location())
		if !ok {
			return 0
		}
		return max(0, clock.DaysBetween(now, until))

	case domain.ModePractice:
		if state.CooldownSessions == nil {
			return 0
		}
		return max(0, *state.CooldownSessions)
	}

	return 0
}

// NextState applies an answer to the previous state.
//
// A non-positive answer resets the score and clears the cooldown. Otherwise the
// points are added to the running score (kept whole, never reduced to its
// fractional part) and floor(score) becomes the number of days or sessions the
// item stays hidden.
func NextState(item *domain.Item, state *domain.CooldownState, answer domain.Answer, now time.Time) (domain.CooldownState, error) {
	if item.Mode != domain.ModeDaily && item.Mode != domain.ModePractice {
		return domain.CooldownState{}, domain.ErrUnknownMode
	}

	points, err := Points(item.AnswerKind, answer)
	if err != nil {
		return domain.CooldownState{}, err
	}

	next := Reset(item)
	next.UpdatedAt = now.UTC()
	if points <= 0 {
		return next, nil
	}

	prev := 0.0
	if state != nil && !math.IsNaN(state.Score) && state.Score > 0 {
		prev = state.Score
	}

	next.Score = round2(prev + points)
	hide := int(math.Floor(next.Score))
	if hide <= 0 {
		return next, nil
	}

	switch item.Mode {
	case domain.ModeDaily:
		until := clock.DayKey(clock.AddDays(now, hide))
		next.CooldownUntil = &until
	case domain.ModePractice:
		next.CooldownSessions = &hide
	}

	return next, nil
}

// Reset is the zeroed state of an item: no score, no pending cooldown.
func Reset(item *domain.Item) domain.CooldownState {
	s := domain.CooldownState{
		UserID: item.UserID,
		ItemID: item.ID,
		Mode:   item.Mode,
	}
	if item.Mode == domain.ModePractice {
		zero := 0
		s.CooldownSessions = &zero
	}
	return s
}

// Tick consumes one practice session from a hidden item. It reports false
// when there was nothing to consume.
func Tick(state *domain.CooldownState) (domain.CooldownState, bool) {
	if state == nil {
		return domain.CooldownState{}, false
	}
	out := *state
	if state.CooldownSessions == nil || *state.CooldownSessions <= 0 {
		return out, false
	}
	left := *state.CooldownSessions - 1
	out.CooldownSessions = &left
	return out, true
}

func cooldownDay(state *domain.CooldownState, loc *time.Location) (time.Time, bool) {
	if state.CooldownUntil == nil || *state.CooldownUntil == "" {
		return time.Time{}, false
	}
	return clock.ParseDayKey(*state.CooldownUntil, loc)
}
