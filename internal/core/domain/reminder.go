package domain

import (
	"context"
	"time"
)

// Reminder is what the batch job hands to a Notifier for one user and day.
type Reminder struct {
	UserID        string       `json:"user_id"`
	DayKey        string       `json:"day_key"`
	Objectives    []*Objective `json:"objectives"`
	DueDailyItems int          `json:"due_daily_items"`
	GeneratedAt   time.Time    `json:"generated_at"`
}

func (r Reminder) Count() int {
	return len(r.Objectives) + r.DueDailyItems
}

// Notifier delivers reminders. Push and email transports live outside this service.
type Notifier interface {
	Notify(ctx context.Context, reminder Reminder) error
}
