// Package cache holds the read-through cache for public reads and the
// invalidation fan-out that admin writes trigger.
package cache

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/consultorio-web/consultorio-backend/logger"
	"github.com/consultorio-web/consultorio-backend/types"
)

// Cache is a byte-value store with TTL and prefix deletion.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeletePrefix(ctx context.Context, prefix string) error
}

// Key builds a key inside a scope, e.g. Key(ScopeContenido, "hero") → "contenido:hero".
func Key(scope types.CacheScope, parts ...string) string {
	return string(scope) + ":" + strings.Join(parts, ":")
}

// GetJSON decodes a cached JSON value into target. A decode failure counts
// as a miss.
func GetJSON(ctx context.Context, c Cache, key string, target interface{}) bool {
	data, ok, err := c.Get(ctx, key)
	if err != nil {
		logger.GetLogger().Warnw("Cache read failed", "key", key, "error", err)
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(data, target); err != nil {
		logger.GetLogger().Warnw("Discarding undecodable cache entry", "key", key, "error", err)
		return false
	}
	return true
}

// SetJSON stores value as JSON. Errors are logged; the cache is never
// authoritative.
func SetJSON(ctx context.Context, c Cache, key string, value interface{}, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		logger.GetLogger().Warnw("Failed to encode cache entry", "key", key, "error", err)
		return
	}
	if err := c.Set(ctx, key, data, ttl); err != nil {
		logger.GetLogger().Warnw("Cache write failed", "key", key, "error", err)
	}
}

// Broadcaster receives change notices, typically the websocket hub.
type Broadcaster interface {
	Broadcast(event types.ChangeEvent)
}

// Invalidator drops a scope from the cache and announces the change. It also
// counts invalidations per scope so readers can tell whether a value they
// loaded was read before a write.
type Invalidator struct {
	cache       Cache
	broadcaster Broadcaster
	now         func() time.Time

	mu          sync.RWMutex
	generations map[types.CacheScope]uint64
}

func NewInvalidator(c Cache, b Broadcaster) *Invalidator {
	return &Invalidator{
		cache:       c,
		broadcaster: b,
		now:         time.Now,
		generations: make(map[types.CacheScope]uint64),
	}
}

// Generation returns the number of invalidations of scope so far.
func (i *Invalidator) Generation(scope types.CacheScope) uint64 {
	if i == nil {
		return 0
	}
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.generations[scope]
}

// StoreIfCurrent runs store only if scope is still at generation gen. An
// Invalidate that starts meanwhile waits for store to return, so whatever it
// wrote is removed by that invalidation.
func (i *Invalidator) StoreIfCurrent(scope types.CacheScope, gen uint64, store func()) bool {
	if i == nil {
		store()
		return true
	}
	i.mu.RLock()
	defer i.mu.RUnlock()
	if i.generations[scope] != gen {
		return false
	}
	store()
	return true
}

// Invalidate never fails the caller's write; a stale entry expires on its
// own TTL.
func (i *Invalidator) Invalidate(ctx context.Context, scope types.CacheScope, id string) {
	if i == nil {
		return
	}
	i.mu.Lock()
	i.generations[scope]++
	i.mu.Unlock()

	if err := i.cache.DeletePrefix(ctx, string(scope)+":"); err != nil {
		logger.GetLogger().Warnw("Cache invalidation failed", "scope", scope, "error", err)
	}
	if i.broadcaster != nil {
		i.broadcaster.Broadcast(types.ChangeEvent{
			Type:      types.ChangeEventInvalidated,
			Scope:     scope,
			ID:        id,
			Timestamp: i.now().UTC(),
		})
	}
}
