package domain

import (
	"errors"
	"time"
)

var (
	ErrObjectiveNotFound = errors.New("objective not found")
	ErrInvalidMonthKey   = errors.New("invalid month key (must be YYYY-MM)")
	ErrInvalidDayKey     = errors.New("invalid day key (must be YYYY-MM-DD)")
	ErrUnknownScope      = errors.New("unknown period scope")
	ErrPeriodUnavailable = errors.New("period cannot be resolved for this input")
)

type ObjectiveType string

const (
	ObjectiveWeekly  ObjectiveType = "weekly"
	ObjectiveMonthly ObjectiveType = "monthly"
	ObjectiveYearly  ObjectiveType = "yearly"
)

type NotifyChannel string

const (
	ChannelPush  NotifyChannel = "push"
	ChannelEmail NotifyChannel = "email"
	ChannelBoth  NotifyChannel = "both"
)

// Objective is a periodic goal. Its effective due date comes either from one of
// the reminder overrides or from Type + MonthKey + WeekOfMonth.
//
// The reminder fields hold whatever shape the store produced: time.Time, an ISO
// string, or a store-native timestamp exposing ToDate(). They are resolved by
// due.CoerceToInstant and never interpreted anywhere else.
type Objective struct {
	ID               string        `json:"id"`
	UserID           string        `json:"user_id"`
	Title            string        `json:"title"`
	Type             ObjectiveType `json:"type"`
	MonthKey         string        `json:"month_key"`
	WeekOfMonth      int           `json:"week_of_month,omitempty"`
	StartDate        *time.Time    `json:"start_date,omitempty"`
	EndDate          *time.Time    `json:"end_date,omitempty"`
	NotifyAt         any           `json:"notify_at,omitempty"`
	NotifyDate       any           `json:"notify_date,omitempty"`
	NotificationDate any           `json:"notification_date,omitempty"`
	NotifyChannel    NotifyChannel `json:"notify_channel,omitempty"`
	NotifyOnTarget   *bool         `json:"notify_on_target,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// Channel returns the configured channel, defaulting to both.
func (o *Objective) Channel() NotifyChannel {
	switch o.NotifyChannel {
	case ChannelPush, ChannelEmail, ChannelBoth:
		return o.NotifyChannel
	}
	return ChannelBoth
}

// Notifies is false only when NotifyOnTarget was explicitly set to false.
func (o *Objective) Notifies() bool {
	return o.NotifyOnTarget == nil || *o.NotifyOnTarget
}

// ReminderOverrides lists the explicit reminder fields in precedence order.
func (o *Objective) ReminderOverrides() []any {
	return []any{o.NotifyAt, o.NotifyDate, o.NotificationDate}
}
