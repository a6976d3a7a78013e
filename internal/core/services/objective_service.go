package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/comitanigiacomo/kanso-recurrence-engine/internal/core/clock"
	"github.com/comitanigiacomo/kanso-recurrence-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-recurrence-engine/internal/core/due"
)

type ObjectiveService struct {
	repo  domain.ObjectiveRepository
	users domain.UserRepository
	clock clock.Clock
	log   logrus.FieldLogger
}

func NewObjectiveService(repo domain.ObjectiveRepository, users domain.UserRepository, clk clock.Clock, log logrus.FieldLogger) *ObjectiveService {
	return &ObjectiveService{
		repo:  repo,
		users: users,
		clock: clk,
		log:   log,
	}
}

// DueToday returns the objectives of userID due on day (a day key, empty for
// today in the configured zone).
func (s *ObjectiveService) DueToday(ctx context.Context, userID, day string, f due.Filter) ([]*domain.Objective, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	if day != "" {
		t, ok := clock.ParseDayKey(day, now.Location())
		if !ok {
			return nil, domain.ErrInvalidDayKey
		}
		now = t
	}

	return s.DueFor(ctx, user, now, f)
}

// DueFor gathers candidates from the month bucket of now, the previous month
// bucket (weekly objectives can end in the following month) and, when the
// store supports it, the reminder-date index. A failing lookup is logged and
// counts as empty; only cancellation is returned as an error.
func (s *ObjectiveService) DueFor(ctx context.Context, user *domain.User, now time.Time, f due.Filter) ([]*domain.Objective, error) {
	monthKey := clock.MonthKey(now)
	prevKey, _ := clock.ShiftMonthKey(monthKey, -1)

	var candidates []*domain.Objective
	for _, key := range []string{monthKey, prevKey} {
		objs, err := s.repo.ListByMonth(ctx, user.ID, key)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			s.log.WithFields(logrus.Fields{
				"user_id":   user.ID,
				"month_key": key,
			}).WithError(err).Warn("objective bucket lookup failed, treating as empty")
			continue
		}
		candidates = append(candidates, objs...)
	}

	if index, ok := s.repo.(domain.ObjectiveReminderIndex); ok {
		dayKey := clock.DayKey(now)
		objs, err := index.ListByReminderDate(ctx, user.ID, dayKey)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			s.log.WithFields(logrus.Fields{
				"user_id": user.ID,
				"day_key": dayKey,
			}).WithError(err).Warn("reminder index lookup failed, treating as empty")
		} else {
			candidates = append(candidates, objs...)
		}
	}

	return due.DueObjectives(candidates, now, user.WeekEndsOn, f), nil
}
