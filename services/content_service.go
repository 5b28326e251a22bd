package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	apperrors "github.com/consultorio-web/consultorio-backend/errors"
	"github.com/consultorio-web/consultorio-backend/internal/cache"
	"github.com/consultorio-web/consultorio-backend/internal/store"
	"github.com/consultorio-web/consultorio-backend/logger"
	"github.com/consultorio-web/consultorio-backend/types"
)

type ContentService struct {
	store       store.ContentStore
	cache       cache.Cache
	ttl         time.Duration
	invalidator Invalidator
	now         clock
}

func NewContentService(s store.ContentStore, c cache.Cache, ttl time.Duration, inv Invalidator) *ContentService {
	return &ContentService{
		store:       s,
		cache:       c,
		ttl:         ttl,
		invalidator: invalidatorOrNoop(inv),
		now:         utcNow,
	}
}

// List returns all content, or one section ordered by orden when seccion is set.
func (s *ContentService) List(ctx context.Context, seccion string) ([]*types.ContentItem, error) {
	seccion = strings.TrimSpace(seccion)
	key := cache.Key(types.ScopeContenido, "list", seccion)
	items, err := readThrough(ctx, s.cache, s.invalidator, key, s.ttl, func() ([]*types.ContentItem, error) {
		return s.store.List(ctx, seccion)
	})
	if err != nil {
		return nil, translateStoreError(err, "Content", seccion)
	}
	if items == nil {
		items = []*types.ContentItem{}
	}
	return items, nil
}

func (s *ContentService) Get(ctx context.Context, id string) (*types.ContentItem, error) {
	item, err := readThrough(ctx, s.cache, s.invalidator, cache.Key(types.ScopeContenido, "id", id), s.ttl, func() (*types.ContentItem, error) {
		return s.store.Get(ctx, id)
	})
	if err != nil {
		return nil, translateStoreError(err, "Content", id)
	}
	return item, nil
}

func (s *ContentService) Create(ctx context.Context, in types.ContentCreate) (*types.ContentItem, error) {
	item := &types.ContentItem{
		ID:        strings.TrimSpace(in.ID),
		Seccion:   strings.TrimSpace(in.Seccion),
		Tipo:      types.ContentType(strings.TrimSpace(string(in.Tipo))),
		Contenido: in.Contenido,
		Orden:     in.Orden,
	}
	if err := validateContentItem(item); err != nil {
		return nil, err
	}

	now := s.now()
	item.CreatedAt, item.UpdatedAt = now, now
	if err := s.store.Create(ctx, item); err != nil {
		return nil, translateStoreError(err, "Content", item.ID)
	}

	s.invalidator.Invalidate(ctx, types.ScopeContenido, item.ID)
	logger.GetLogger().Infow("Content created", "id", item.ID, "seccion", item.Seccion)
	return item, nil
}

func validateContentItem(item *types.ContentItem) error {
	var missing []string
	if item.ID == "" {
		missing = append(missing, "id")
	}
	if item.Seccion == "" {
		missing = append(missing, "seccion")
	}
	if item.Tipo == "" {
		missing = append(missing, "tipo")
	}
	if strings.TrimSpace(item.Contenido) == "" {
		missing = append(missing, "contenido")
	}
	if len(missing) > 0 {
		return apperrors.ValidationFailed("Missing required fields", strings.Join(missing, ", "))
	}
	if !item.Tipo.IsValid() {
		return apperrors.ValidationFailed("Invalid content type", fmt.Sprintf("tipo %q is not one of titulo, subtitulo, texto, parrafo, boton, item-lista", item.Tipo))
	}
	return nil
}

// UpdateContenido replaces only the text of an item. Empty text is allowed.
func (s *ContentService) UpdateContenido(ctx context.Context, id, contenido string) (*types.ContentItem, error) {
	item, err := s.store.UpdateContenido(ctx, id, contenido, s.now())
	if err != nil {
		return nil, translateStoreError(err, "Content", id)
	}
	s.invalidator.Invalidate(ctx, types.ScopeContenido, id)
	return item, nil
}

// Delete removes the item; deleting a missing id succeeds.
func (s *ContentService) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return translateStoreError(err, "Content", id)
	}
	s.invalidator.Invalidate(ctx, types.ScopeContenido, id)
	return nil
}

// OrganizeByTipo groups items by their content type, keeping input order.
func OrganizeByTipo(items []*types.ContentItem) map[types.ContentType][]*types.ContentItem {
	grouped := make(map[types.ContentType][]*types.ContentItem)
	for _, item := range items {
		grouped[item.Tipo] = append(grouped[item.Tipo], item)
	}
	return grouped
}
