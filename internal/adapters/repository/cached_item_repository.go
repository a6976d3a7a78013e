package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/comitanigiacomo/kanso-recurrence-engine/internal/adapters/cache"
	"github.com/comitanigiacomo/kanso-recurrence-engine/internal/core/domain"
)

var _ domain.ItemRepository = (*CachedItemRepository)(nil)

// CachedItemRepository keeps each user's item list per mode in Redis. Items
// are edited by another service, so entries simply expire after ttl. Any
// cache failure falls through to the wrapped repository.
type CachedItemRepository struct {
	next  domain.ItemRepository
	cache *redis.Client
	ttl   time.Duration
	log   logrus.FieldLogger
}

func NewCachedItemRepository(next domain.ItemRepository, rdb *redis.Client, ttl time.Duration, log logrus.FieldLogger) *CachedItemRepository {
	return &CachedItemRepository{
		next:  next,
		cache: rdb,
		ttl:   ttl,
		log:   log.WithField("component", "item_cache"),
	}
}

func itemsKey(userID string, mode domain.Mode) string {
	return cache.Key("items", userID, string(mode))
}

func (r *CachedItemRepository) ListByMode(ctx context.Context, userID string, mode domain.Mode) ([]*domain.Item, error) {
	key := itemsKey(userID, mode)

	val, err := r.cache.Get(ctx, key).Bytes()
	if err == nil {
		var items []*domain.Item
		if err := json.Unmarshal(val, &items); err == nil {
			return items, nil
		}
		r.log.WithField("key", key).Warn("corrupted cache entry, cleaning up")
		r.cache.Del(ctx, key)
	} else if !errors.Is(err, redis.Nil) {
		r.log.WithError(err).Warn("redis read error")
	}

	items, err := r.next.ListByMode(ctx, userID, mode)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(items); err == nil {
		if err := r.cache.Set(ctx, key, data, r.ttl).Err(); err != nil {
			r.log.WithError(err).Warn("redis set error")
		}
	}

	return items, nil
}

func (r *CachedItemRepository) GetByID(ctx context.Context, id string) (*domain.Item, error) {
	return r.next.GetByID(ctx, id)
}
