package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/comitanigiacomo/kanso-recurrence-engine/internal/core/clock"
	"github.com/comitanigiacomo/kanso-recurrence-engine/internal/core/cooldown"
	"github.com/comitanigiacomo/kanso-recurrence-engine/internal/core/domain"
)

type AnswerService struct {
	items  domain.ItemRepository
	states domain.CooldownRepository
	clock  clock.Clock
	log    logrus.FieldLogger
}

func NewAnswerService(items domain.ItemRepository, states domain.CooldownRepository, clk clock.Clock, log logrus.FieldLogger) *AnswerService {
	return &AnswerService{
		items:  items,
		states: states,
		clock:  clk,
		log:    log,
	}
}

type SubmitAnswerInput struct {
	UserID string
	ItemID string
	// Mode is optional; when set it must match the item's mode.
	Mode   domain.Mode
	Answer domain.Answer
}

// Submit scores an answer and persists the resulting recurrence state. Items
// with recurrence disabled are never hidden, so their state is returned
// untouched.
func (s *AnswerService) Submit(ctx context.Context, input SubmitAnswerInput) (*domain.CooldownState, error) {
	item, err := s.ownedItem(ctx, input.UserID, input.ItemID, input.Mode)
	if err != nil {
		return nil, err
	}

	prev, err := s.states.Get(ctx, input.UserID, item.ID, item.Mode)
	if err != nil {
		return nil, fmt.Errorf("failed to read cooldown state: %w", err)
	}

	if !item.RecurrenceEnabled {
		if prev == nil {
			zero := cooldown.Reset(item)
			prev = &zero
		}
		return prev, nil
	}

	next, err := cooldown.NextState(item, prev, input.Answer, s.clock.Now())
	if err != nil {
		return nil, err
	}

	saved, err := s.states.Write(ctx, input.UserID, item.ID, item.Mode, domain.PatchFor(next))
	if err != nil {
		return nil, fmt.Errorf("failed to write cooldown state: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"user_id": input.UserID,
		"item_id": item.ID,
		"mode":    item.Mode,
		"score":   saved.Score,
	}).Debug("answer recorded")

	return saved, nil
}

// Reset zeroes the score and clears any pending cooldown.
func (s *AnswerService) Reset(ctx context.Context, userID, itemID string, mode domain.Mode) (*domain.CooldownState, error) {
	item, err := s.ownedItem(ctx, userID, itemID, mode)
	if err != nil {
		return nil, err
	}

	saved, err := s.states.Write(ctx, userID, item.ID, item.Mode, domain.PatchFor(cooldown.Reset(item)))
	if err != nil {
		return nil, fmt.Errorf("failed to reset cooldown state: %w", err)
	}
	return saved, nil
}

func (s *AnswerService) ownedItem(ctx context.Context, userID, itemID string, mode domain.Mode) (*domain.Item, error) {
	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.UserID != userID {
		return nil, domain.ErrItemNotFound
	}
	if mode != "" && mode != item.Mode {
		return nil, domain.ErrModeMismatch
	}
	return item, nil
}
