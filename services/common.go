// Package services implements the site's business rules on top of the
// stores, cache and file storage.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	apperrors "github.com/consultorio-web/consultorio-backend/errors"
	"github.com/consultorio-web/consultorio-backend/internal/cache"
	"github.com/consultorio-web/consultorio-backend/internal/store"
	"github.com/consultorio-web/consultorio-backend/logger"
	"github.com/consultorio-web/consultorio-backend/types"
	"github.com/google/uuid"
)

// Invalidator is satisfied by *cache.Invalidator.
type Invalidator interface {
	Invalidate(ctx context.Context, scope types.CacheScope, id string)
}

type noopInvalidator struct{}

func (noopInvalidator) Invalidate(context.Context, types.CacheScope, string) {}

func invalidatorOrNoop(inv Invalidator) Invalidator {
	if inv == nil {
		return noopInvalidator{}
	}
	return inv
}

// translateStoreError turns store sentinels into API errors.
func translateStoreError(err error, entity, id string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return apperrors.NotFound(entity, id)
	case errors.Is(err, store.ErrConflict):
		return apperrors.NewConflictError(entity+" already exists", "ID: "+id)
	case errors.Is(err, store.ErrInvalidReference):
		return apperrors.ValidationFailed("Invalid reference", err.Error())
	default:
		return apperrors.NewDatabaseError(err)
	}
}

// trimOptional trims s and returns nil for blank values.
func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func newID() string {
	return uuid.NewString()
}

type clock func() time.Time

func utcNow() time.Time {
	return time.Now().UTC()
}

// loadGuard is implemented by *cache.Invalidator.
type loadGuard interface {
	Generation(scope types.CacheScope) uint64
	StoreIfCurrent(scope types.CacheScope, gen uint64, store func()) bool
}

// readThrough serves key from c when present, otherwise loads and stores it.
// A nil cache disables caching. When inv tracks generations, a value loaded
// while the key's scope was invalidated is returned but not cached.
func readThrough[T any](ctx context.Context, c cache.Cache, inv Invalidator, key string, ttl time.Duration, load func() (T, error)) (T, error) {
	if c == nil {
		return load()
	}
	var cached T
	if cache.GetJSON(ctx, c, key, &cached) {
		return cached, nil
	}

	prefix, _, _ := strings.Cut(key, ":")
	scope := types.CacheScope(prefix)
	guard, guarded := inv.(loadGuard)
	var gen uint64
	if guarded {
		gen = guard.Generation(scope)
	}

	value, err := load()
	if err != nil {
		return value, err
	}
	store := func() { cache.SetJSON(ctx, c, key, value, ttl) }
	if !guarded {
		store()
	} else if !guard.StoreIfCurrent(scope, gen, store) {
		logger.GetLogger().Debugw("Skipping cache fill after concurrent invalidation", "key", key)
	}
	return value, nil
}
