package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/comitanigiacomo/kanso-recurrence-engine/internal/core/workers"
)

// Job is the unit the scheduler triggers.
type Job interface {
	RunOnce(ctx context.Context) (workers.RunStats, error)
}

// ReminderScheduler fires the reminder job on a cron spec evaluated in the
// application timezone. Each run gets its own timeout.
type ReminderScheduler struct {
	cron    *cron.Cron
	job     Job
	timeout time.Duration
	log     logrus.FieldLogger
}

func NewReminderScheduler(spec string, loc *time.Location, timeout time.Duration, job Job, log logrus.FieldLogger) (*ReminderScheduler, error) {
	if loc == nil {
		loc = time.UTC
	}

	s := &ReminderScheduler{
		cron:    cron.New(cron.WithLocation(loc)),
		job:     job,
		timeout: timeout,
		log:     log.WithField("job", "reminders"),
	}

	if _, err := s.cron.AddFunc(spec, s.trigger); err != nil {
		return nil, fmt.Errorf("invalid reminder cron spec %q: %w", spec, err)
	}
	return s, nil
}

func (s *ReminderScheduler) trigger() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	s.log.Info("cron job triggered")
	stats, err := s.job.RunOnce(ctx)
	if err != nil {
		s.log.WithError(err).Error("reminder run failed")
		return
	}
	s.log.WithFields(logrus.Fields{
		"users":       stats.Users,
		"notified":    stats.Notified,
		"nothing_due": stats.NothingDue,
		"failed":      stats.Failed,
	}).Info("reminder run finished")
}

// Next reports when the job fires next; zero before Start.
func (s *ReminderScheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

func (s *ReminderScheduler) Start() {
	s.cron.Start()
	s.log.WithField("next_run", s.Next()).Info("reminder scheduler started")
}

// Stop halts the schedule and waits for a running job, bounded by ctx.
func (s *ReminderScheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.log.Warn("scheduler stop timed out with a run still in flight")
	}
}
