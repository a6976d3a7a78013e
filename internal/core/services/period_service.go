package services

import (
	"context"
	"time"

	"github.com/comitanigiacomo/kanso-recurrence-engine/internal/core/clock"
	"github.com/comitanigiacomo/kanso-recurrence-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-recurrence-engine/internal/core/period"
)

type PeriodService struct {
	users domain.UserRepository
	clock clock.Clock
}

func NewPeriodService(users domain.UserRepository, clk clock.Clock) *PeriodService {
	return &PeriodService{
		users: users,
		clock: clk,
	}
}

type ResolvePeriodInput struct {
	UserID string
	Scope  string
	// Key is a day, week, month or year key; empty means today.
	Key string
	// WeekEndsOn overrides the user's setting when set.
	WeekEndsOn *int
}

type ResolvedPeriod struct {
	*period.Period
	// Set for day and week scopes: the month week containing the period end.
	MonthKey    string `json:"month_key,omitempty"`
	WeekOfMonth int    `json:"week_of_month,omitempty"`
}

func (s *PeriodService) Resolve(ctx context.Context, input ResolvePeriodInput) (*ResolvedPeriod, error) {
	scope, ok := period.ParseScope(input.Scope)
	if !ok {
		return nil, domain.ErrUnknownScope
	}

	weekEndsOn, err := s.weekEndsOn(ctx, input.UserID, input.WeekEndsOn)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	var p *period.Period
	if input.Key == "" {
		p = period.Resolve(scope, now, weekEndsOn)
	} else {
		p = period.ResolveKey(scope, input.Key, weekEndsOn, now.Location())
	}
	if p == nil {
		return nil, domain.ErrPeriodUnavailable
	}

	out := &ResolvedPeriod{Period: p}
	if scope == period.ScopeWeek || scope == period.ScopeDay || scope == period.ScopeAdhoc {
		if monthKey, idx, ok := period.WeekOfMonth(p.End, weekEndsOn); ok {
			out.MonthKey = monthKey
			out.WeekOfMonth = idx
		}
	}
	return out, nil
}

type MonthWeeksInput struct {
	UserID     string
	MonthKey   string
	WeekEndsOn *int
}

// MonthWeeks lists the numbered weeks of a month; an empty month key means the
// current month.
func (s *PeriodService) MonthWeeks(ctx context.Context, input MonthWeeksInput) ([]period.Segment, error) {
	weekEndsOn, err := s.weekEndsOn(ctx, input.UserID, input.WeekEndsOn)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	monthKey := input.MonthKey
	if monthKey == "" {
		monthKey = clock.MonthKey(now)
	}

	segments := period.MonthWeekSegments(monthKey, weekEndsOn, now.Location())
	if segments == nil {
		return nil, domain.ErrInvalidMonthKey
	}
	return segments, nil
}

func (s *PeriodService) weekEndsOn(ctx context.Context, userID string, override *int) (time.Weekday, error) {
	if override != nil {
		wd := time.Weekday(*override)
		if !period.ValidWeekday(wd) {
			return 0, domain.ErrInvalidWeekday
		}
		return wd, nil
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return 0, err
	}
	return user.WeekEndsOn, nil
}
