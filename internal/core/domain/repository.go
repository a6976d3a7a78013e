package domain

import (
	"context"
)

type ItemRepository interface {
	// GetByID retrieves a single item by its identifier.
	GetByID(ctx context.Context, id string) (*Item, error)

	// ListByMode retrieves all items of a user answered in the given mode.
	ListByMode(ctx context.Context, userID string, mode Mode) ([]*Item, error)
}

type CooldownRepository interface {
	// Get returns the recurrence state of an item, or (nil, nil) when the item
	// has never been answered in that mode.
	Get(ctx context.Context, userID, itemID string, mode Mode) (*CooldownState, error)

	// ListByMode returns every stored state of a user for one mode, keyed by item id.
	ListByMode(ctx context.Context, userID string, mode Mode) (map[string]*CooldownState, error)

	// Write merges the patch into the stored state (creating it if missing) and
	// returns the result. Fields absent from the patch are preserved.
	// Concurrent writers are last-writer-wins.
	Write(ctx context.Context, userID, itemID string, mode Mode, patch CooldownPatch) (*CooldownState, error)
}

type ObjectiveRepository interface {
	// ListByMonth retrieves the objectives stored under a month key (YYYY-MM).
	ListByMonth(ctx context.Context, userID, monthKey string) ([]*Objective, error)
}

// ObjectiveReminderIndex is an optional capability of an ObjectiveRepository:
// direct lookup by the day key of an explicit reminder override.
type ObjectiveReminderIndex interface {
	ListByReminderDate(ctx context.Context, userID, dayKey string) ([]*Objective, error)
}

type UserRepository interface {
	// GetByID retrieves a user and their engine settings.
	GetByID(ctx context.Context, id string) (*User, error)

	// ListIDs returns every user id, used by the reminder batch job.
	ListIDs(ctx context.Context) ([]string, error)
}
