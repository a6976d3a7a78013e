package domain

import (
	"errors"
	"sort"
	"strings"
	"time"
)

var (
	ErrItemNotFound    = errors.New("item not found")
	ErrUnknownMode     = errors.New("unknown item mode (must be daily or practice)")
	ErrUnknownKind     = errors.New("unknown answer kind")
	ErrInvalidWeekday  = errors.New("invalid weekday (must be 0-6)")
	ErrMalformedAnswer = errors.New("malformed answer")
	ErrUnauthorized    = errors.New("unauthorized access to resource")
	ErrModeMismatch    = errors.New("item is not answered in this mode")
)

type Mode string

const (
	ModeDaily    Mode = "daily"
	ModePractice Mode = "practice"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeDaily:
		return ModeDaily, nil
	case ModePractice:
		return ModePractice, nil
	}
	return "", ErrUnknownMode
}

// AnswerKind selects the scoring table applied to an answer.
type AnswerKind string

const (
	KindLikert    AnswerKind = "likert6"
	KindNumeric   AnswerKind = "num10"
	KindText      AnswerKind = "text"
	KindChecklist AnswerKind = "checklist"
	KindAmount    AnswerKind = "amount"
)

func (k AnswerKind) Valid() bool {
	switch k {
	case KindLikert, KindNumeric, KindText, KindChecklist, KindAmount:
		return true
	}
	return false
}

// Six-point agreement scale, least to most positive.
const (
	LikertNoAnswer  = "no_answer"
	LikertNo        = "non"
	LikertRatherNo  = "plutot_non"
	LikertMedium    = "moyen"
	LikertRatherYes = "plutot_oui"
	LikertYes       = "oui"
)

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Rank orders priorities for display; unset or unknown values sort last.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	}
	return 3
}

type Item struct {
	ID                string         `json:"id"`
	UserID            string         `json:"user_id"`
	Title             string         `json:"title"`
	Mode              Mode           `json:"mode"`
	RecurrenceEnabled bool           `json:"recurrence_enabled"`
	DaysOfWeek        []time.Weekday `json:"days_of_week,omitempty"`
	AnswerKind        AnswerKind     `json:"answer_kind"`
	Priority          Priority       `json:"priority,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

// ScheduledOn reports whether the weekday filter allows t. An empty set means
// every day, and the filter only applies to daily items.
func (i *Item) ScheduledOn(t time.Time) bool {
	if i.Mode != ModeDaily || len(i.DaysOfWeek) == 0 {
		return true
	}
	wd := t.Weekday()
	for _, d := range i.DaysOfWeek {
		if d == wd {
			return true
		}
	}
	return false
}

// NormalizeWeekdays deduplicates and sorts the set, rejecting values outside 0-6.
func NormalizeWeekdays(days []int) ([]time.Weekday, error) {
	if len(days) == 0 {
		return nil, nil
	}

	seen := make(map[int]bool)
	var out []time.Weekday
	for _, d := range days {
		if d < 0 || d > 6 {
			return nil, ErrInvalidWeekday
		}
		if !seen[d] {
			seen[d] = true
			out = append(out, time.Weekday(d))
		}
	}

	sort.Slice(out, func(a, b int) bool { return out[a] < out[b] })
	return out, nil
}

// Answer carries the user's response; the item's AnswerKind says which field is read.
type Answer struct {
	Choice  string   `json:"choice,omitempty"`
	Number  *float64 `json:"number,omitempty"`
	Text    string   `json:"text,omitempty"`
	Checked []string `json:"checked,omitempty"`
}
