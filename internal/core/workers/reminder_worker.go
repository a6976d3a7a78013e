package workers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/comitanigiacomo/kanso-recurrence-engine/internal/core/clock"
	"github.com/comitanigiacomo/kanso-recurrence-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-recurrence-engine/internal/core/due"
)

type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	ListIDs(ctx context.Context) ([]string, error)
}

type ObjectiveFinder interface {
	DueFor(ctx context.Context, user *domain.User, now time.Time, f due.Filter) ([]*domain.Objective, error)
}

type DailyViewer interface {
	DailyView(ctx context.Context, userID, day string) (due.Visibility, error)
}

const (
	OutcomeNotified   = "notified"
	OutcomeNothingDue = "nothing_due"
	OutcomeFailed     = "failed"
)

// Metrics receives the job's measurements.
type Metrics interface {
	ObserveRun(d time.Duration)
	UserProcessed(outcome string)
}

type noopMetrics struct{}

func (noopMetrics) ObserveRun(time.Duration) {}
func (noopMetrics) UserProcessed(string)     {}

type RunStats struct {
	Users      int `json:"users"`
	Notified   int `json:"notified"`
	NothingDue int `json:"nothing_due"`
	Failed     int `json:"failed"`
}

// ReminderWorker computes, once per run, what is due for every user and hands
// a reminder to the Notifier for users with anything due. Users are processed
// in parallel up to the configured limit; one user's failure never stops the run.
type ReminderWorker struct {
	users       UserRepository
	objectives  ObjectiveFinder
	views       DailyViewer
	notifier    domain.Notifier
	clock       clock.Clock
	log         logrus.FieldLogger
	metrics     Metrics
	concurrency int

	running sync.Mutex
}

type Option func(*ReminderWorker)

func WithConcurrency(n int) Option {
	return func(w *ReminderWorker) {
		if n > 0 {
			w.concurrency = n
		}
	}
}

func WithMetrics(m Metrics) Option {
	return func(w *ReminderWorker) {
		if m != nil {
			w.metrics = m
		}
	}
}

func NewReminderWorker(users UserRepository, objectives ObjectiveFinder, views DailyViewer, notifier domain.Notifier, clk clock.Clock, log logrus.FieldLogger, opts ...Option) *ReminderWorker {
	w := &ReminderWorker{
		users:       users,
		objectives:  objectives,
		views:       views,
		notifier:    notifier,
		clock:       clk,
		log:         log.WithField("job", "reminders"),
		metrics:     noopMetrics{},
		concurrency: 8,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// RunOnce processes every user. Overlapping runs are serialized. The returned
// error is non-nil only when the user list cannot be read or ctx ends.
func (w *ReminderWorker) RunOnce(ctx context.Context) (RunStats, error) {
	w.running.Lock()
	defer w.running.Unlock()

	start := time.Now()
	defer func() { w.metrics.ObserveRun(time.Since(start)) }()

	ids, err := w.users.ListIDs(ctx)
	if err != nil {
		return RunStats{}, fmt.Errorf("failed to list users: %w", err)
	}

	now := w.clock.Now()
	w.log.WithFields(logrus.Fields{
		"users":   len(ids),
		"day_key": clock.DayKey(now),
	}).Info("reminder run started")

	var (
		mu    sync.Mutex
		stats = RunStats{Users: len(ids)}
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.concurrency)

	for _, id := range ids {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			outcome, err := w.remind(gctx, id, now)
			if err != nil {
				w.log.WithField("user_id", id).WithError(err).Error("reminder failed")
			}
			w.metrics.UserProcessed(outcome)

			mu.Lock()
			defer mu.Unlock()
			switch outcome {
			case OutcomeNotified:
				stats.Notified++
			case OutcomeNothingDue:
				stats.NothingDue++
			default:
				stats.Failed++
			}
			return nil
		})
	}
	_ = g.Wait()

	w.log.WithFields(logrus.Fields{
		"notified": stats.Notified,
		"failed":   stats.Failed,
		"took":     time.Since(start).String(),
	}).Info("reminder run finished")

	return stats, ctx.Err()
}

func (w *ReminderWorker) remind(ctx context.Context, userID string, now time.Time) (string, error) {
	user, err := w.users.GetByID(ctx, userID)
	if err != nil {
		return OutcomeFailed, err
	}

	objectives, err := w.objectives.DueFor(ctx, user, now, due.Filter{PushOnly: true})
	if err != nil {
		return OutcomeFailed, err
	}

	view, err := w.views.DailyView(ctx, userID, clock.DayKey(now))
	if err != nil {
		return OutcomeFailed, err
	}

	reminder := domain.Reminder{
		UserID:        userID,
		DayKey:        clock.DayKey(now),
		Objectives:    objectives,
		DueDailyItems: len(view.Visible),
		GeneratedAt:   now,
	}
	if reminder.Count() == 0 {
		return OutcomeNothingDue, nil
	}

	if err := w.notifier.Notify(ctx, reminder); err != nil {
		return OutcomeFailed, fmt.Errorf("notify: %w", err)
	}
	return OutcomeNotified, nil
}
