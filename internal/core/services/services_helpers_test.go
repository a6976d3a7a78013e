package services_test

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/mock"

	"github.com/comitanigiacomo/kanso-recurrence-engine/internal/core/clock"
	"github.com/comitanigiacomo/kanso-recurrence-engine/internal/core/domain"
)

func ptr[T any](v T) *T {
	return &v
}

func nullLogger() (*logrus.Logger, *logtest.Hook) {
	return logtest.NewNullLogger()
}

func fixedAt(t time.Time) clock.FixedClock {
	return clock.FixedClock{At: t, Loc: t.Location()}
}

type MockObjectiveRepo struct {
	mock.Mock
}

func (m *MockObjectiveRepo) ListByMonth(ctx context.Context, userID, monthKey string) ([]*domain.Objective, error) {
	args := m.Called(ctx, userID, monthKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Objective), args.Error(1)
}

// MockIndexedObjectiveRepo also serves the reminder-date index.
type MockIndexedObjectiveRepo struct {
	MockObjectiveRepo
}

func (m *MockIndexedObjectiveRepo) ListByReminderDate(ctx context.Context, userID, dayKey string) ([]*domain.Objective, error) {
	args := m.Called(ctx, userID, dayKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Objective), args.Error(1)
}

type MockCooldownRepo struct {
	mock.Mock
}

func (m *MockCooldownRepo) Get(ctx context.Context, userID, itemID string, mode domain.Mode) (*domain.CooldownState, error) {
	args := m.Called(ctx, userID, itemID, mode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CooldownState), args.Error(1)
}

func (m *MockCooldownRepo) ListByMode(ctx context.Context, userID string, mode domain.Mode) (map[string]*domain.CooldownState, error) {
	args := m.Called(ctx, userID, mode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]*domain.CooldownState), args.Error(1)
}

func (m *MockCooldownRepo) Write(ctx context.Context, userID, itemID string, mode domain.Mode, patch domain.CooldownPatch) (*domain.CooldownState, error) {
	args := m.Called(ctx, userID, itemID, mode, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CooldownState), args.Error(1)
}
