package notify

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/comitanigiacomo/kanso-recurrence-engine/internal/core/domain"
)

var _ domain.Notifier = (*LogNotifier)(nil)

// LogNotifier records reminders in the log. Push and email delivery belong to
// the messaging service that tails these entries.
type LogNotifier struct {
	log logrus.FieldLogger
}

func NewLogNotifier(log logrus.FieldLogger) *LogNotifier {
	return &LogNotifier{log: log.WithField("component", "notifier")}
}

func (n *LogNotifier) Notify(ctx context.Context, r domain.Reminder) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	ids := make([]string, 0, len(r.Objectives))
	for _, o := range r.Objectives {
		ids = append(ids, o.ID)
	}

	n.log.WithFields(logrus.Fields{
		"user_id":         r.UserID,
		"day_key":         r.DayKey,
		"objective_ids":   ids,
		"due_daily_items": r.DueDailyItems,
		"count":           r.Count(),
	}).Info("reminder due")
	return nil
}
