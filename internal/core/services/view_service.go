package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/comitanigiacomo/kanso-recurrence-engine/internal/core/clock"
	"github.com/comitanigiacomo/kanso-recurrence-engine/internal/core/cooldown"
	"github.com/comitanigiacomo/kanso-recurrence-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-recurrence-engine/internal/core/due"
)

// ViewService renders the daily and practice screens.
type ViewService struct {
	items  domain.ItemRepository
	states domain.CooldownRepository
	clock  clock.Clock
	log    logrus.FieldLogger
}

func NewViewService(items domain.ItemRepository, states domain.CooldownRepository, clk clock.Clock, log logrus.FieldLogger) *ViewService {
	return &ViewService{
		items:  items,
		states: states,
		clock:  clk,
		log:    log,
	}
}

// DailyView partitions the user's daily items for day (a day key). An empty day
// means today in the configured zone.
func (s *ViewService) DailyView(ctx context.Context, userID, day string) (due.Visibility, error) {
	now, err := s.at(day)
	if err != nil {
		return due.Visibility{}, err
	}
	return s.visibility(ctx, userID, domain.ModeDaily, now)
}

// StartPracticeSession renders a practice session, then consumes one session
// from every item it kept hidden. An item answered with N hide units therefore
// stays out of exactly the next N sessions.
func (s *ViewService) StartPracticeSession(ctx context.Context, userID string) (due.Visibility, error) {
	items, err := s.items.ListByMode(ctx, userID, domain.ModePractice)
	if err != nil {
		return due.Visibility{}, err
	}
	states, err := s.states.ListByMode(ctx, userID, domain.ModePractice)
	if err != nil {
		return due.Visibility{}, err
	}

	vis := due.VisibleItems(items, states, s.clock.Now())

	for _, h := range vis.Hidden {
		next, changed := cooldown.Tick(states[h.Item.ID])
		if !changed {
			continue
		}
		patch := domain.CooldownPatch{CooldownSessions: next.CooldownSessions}
		if _, err := s.states.Write(ctx, userID, h.Item.ID, domain.ModePractice, patch); err != nil {
			s.log.WithFields(logrus.Fields{
				"user_id": userID,
				"item_id": h.Item.ID,
			}).WithError(err).Warn("failed to consume practice session")
		}
	}

	return vis, nil
}

func (s *ViewService) visibility(ctx context.Context, userID string, mode domain.Mode, now time.Time) (due.Visibility, error) {
	items, err := s.items.ListByMode(ctx, userID, mode)
	if err != nil {
		return due.Visibility{}, err
	}
	states, err := s.states.ListByMode(ctx, userID, mode)
	if err != nil {
		return due.Visibility{}, err
	}
	return due.VisibleItems(items, states, now), nil
}

func (s *ViewService) at(day string) (time.Time, error) {
	now := s.clock.Now()
	if day == "" {
		return now, nil
	}
	t, ok := clock.ParseDayKey(day, now.Location())
	if !ok {
		return time.Time{}, domain.ErrInvalidDayKey
	}
	return t, nil
}
