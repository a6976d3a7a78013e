package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/comitanigiacomo/kanso-recurrence-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-recurrence-engine/internal/core/due"
)

type InMemoryItemRepository struct {
	store map[string]*domain.Item

	mu sync.RWMutex
}

func NewInMemoryItemRepository() *InMemoryItemRepository {
	return &InMemoryItemRepository{
		store: make(map[string]*domain.Item),
	}
}

func (r *InMemoryItemRepository) Save(ctx context.Context, item *domain.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *item
	r.store[item.ID] = &clone
	return nil
}

func (r *InMemoryItemRepository) GetByID(ctx context.Context, id string) (*domain.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.store[id]
	if !ok {
		return nil, domain.ErrItemNotFound
	}
	clone := *item
	return &clone, nil
}

func (r *InMemoryItemRepository) ListByMode(ctx context.Context, userID string, mode domain.Mode) ([]*domain.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]*domain.Item, 0)
	for _, it := range r.store {
		if it.UserID == userID && it.Mode == mode {
			clone := *it
			items = append(items, &clone)
		}
	}

	sort.Slice(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.Before(items[j].CreatedAt)
		}
		return items[i].ID < items[j].ID
	})

	return items, nil
}

type InMemoryCooldownRepository struct {
	store map[string]*domain.CooldownState

	mu sync.RWMutex
}

func NewInMemoryCooldownRepository() *InMemoryCooldownRepository {
	return &InMemoryCooldownRepository{
		store: make(map[string]*domain.CooldownState),
	}
}

func cooldownKey(userID, itemID string, mode domain.Mode) string {
	return userID + "/" + string(mode) + "/" + itemID
}

func (r *InMemoryCooldownRepository) Get(ctx context.Context, userID, itemID string, mode domain.Mode) (*domain.CooldownState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.store[cooldownKey(userID, itemID, mode)]
	if !ok {
		return nil, nil
	}
	clone := domain.CooldownPatch{}.ApplyTo(s, s.UserID, s.ItemID, s.Mode, s.UpdatedAt)
	return &clone, nil
}

func (r *InMemoryCooldownRepository) ListByMode(ctx context.Context, userID string, mode domain.Mode) (map[string]*domain.CooldownState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]*domain.CooldownState)
	for _, s := range r.store {
		if s.UserID == userID && s.Mode == mode {
			clone := domain.CooldownPatch{}.ApplyTo(s, s.UserID, s.ItemID, s.Mode, s.UpdatedAt)
			out[s.ItemID] = &clone
		}
	}
	return out, nil
}

func (r *InMemoryCooldownRepository) Write(ctx context.Context, userID, itemID string, mode domain.Mode, patch domain.CooldownPatch) (*domain.CooldownState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := cooldownKey(userID, itemID, mode)
	merged := patch.ApplyTo(r.store[key], userID, itemID, mode, time.Now())
	r.store[key] = &merged

	out := merged
	return &out, nil
}

// InMemoryObjectiveRepository also serves the reminder index, resolving
// overrides and yearly dates in the zone it was built with.
type InMemoryObjectiveRepository struct {
	store map[string]*domain.Objective
	loc   *time.Location

	mu sync.RWMutex
}

func NewInMemoryObjectiveRepository(loc *time.Location) *InMemoryObjectiveRepository {
	if loc == nil {
		loc = time.UTC
	}
	return &InMemoryObjectiveRepository{
		store: make(map[string]*domain.Objective),
		loc:   loc,
	}
}

func (r *InMemoryObjectiveRepository) Save(ctx context.Context, obj *domain.Objective) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *obj
	r.store[obj.ID] = &clone
	return nil
}

func (r *InMemoryObjectiveRepository) ListByMonth(ctx context.Context, userID, monthKey string) ([]*domain.Objective, error) {
	return r.list(func(o *domain.Objective) bool {
		return o.UserID == userID && o.MonthKey == monthKey
	}), nil
}

func (r *InMemoryObjectiveRepository) ListByReminderDate(ctx context.Context, userID, dayKey string) ([]*domain.Objective, error) {
	return r.list(func(o *domain.Objective) bool {
		if o.UserID != userID {
			return false
		}
		day, ok := due.IndexedReminderDay(o, r.loc)
		return ok && day == dayKey
	}), nil
}

func (r *InMemoryObjectiveRepository) list(keep func(*domain.Objective) bool) []*domain.Objective {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Objective, 0)
	for _, o := range r.store {
		if keep(o) {
			clone := *o
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type InMemoryUserRepository struct {
	store map[string]*domain.User

	mu sync.RWMutex
}

func NewInMemoryUserRepository() *InMemoryUserRepository {
	return &InMemoryUserRepository{
		store: make(map[string]*domain.User),
	}
}

func (r *InMemoryUserRepository) Save(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *user
	r.store[user.ID] = &clone
	return nil
}

func (r *InMemoryUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.store[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *InMemoryUserRepository) ListIDs(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.store))
	for id := range r.store {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
