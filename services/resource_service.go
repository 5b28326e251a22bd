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
)

// FileRemover deletes uploaded files by public URL. *storage.Gateway
// satisfies it.
type FileRemover interface {
	IsHosted(url string) bool
	Delete(ctx context.Context, url string) error
}

// CleanupQueue records file deletions to retry later.
type CleanupQueue interface {
	Enqueue(ctx context.Context, url, reason string)
}

// ResourceService manages resources and their items. Rows are always
// removed before files, so a storage outage never blocks a delete; files
// that could not be removed are queued for retry.
type ResourceService struct {
	store       store.ResourceStore
	files       FileRemover
	cleanup     CleanupQueue
	cache       cache.Cache
	ttl         time.Duration
	invalidator Invalidator
	now         clock
}

func NewResourceService(s store.ResourceStore, files FileRemover, cleanup CleanupQueue, c cache.Cache, ttl time.Duration, inv Invalidator) *ResourceService {
	return &ResourceService{
		store:       s,
		files:       files,
		cleanup:     cleanup,
		cache:       c,
		ttl:         ttl,
		invalidator: invalidatorOrNoop(inv),
		now:         utcNow,
	}
}

func (s *ResourceService) ListWithItems(ctx context.Context) ([]*types.Resource, error) {
	resources, err := readThrough(ctx, s.cache, s.invalidator, cache.Key(types.ScopeRecursos, "list"), s.ttl, func() ([]*types.Resource, error) {
		return s.store.ListWithItems(ctx)
	})
	if err != nil {
		return nil, translateStoreError(err, "Resource", "")
	}
	if resources == nil {
		resources = []*types.Resource{}
	}
	return resources, nil
}

func (s *ResourceService) CreateResource(ctx context.Context, in types.ResourceCreate) (*types.Resource, error) {
	id := strings.TrimSpace(in.ID)
	title := strings.TrimSpace(in.Title)
	if id == "" || title == "" {
		return nil, apperrors.ValidationFailed("Missing required fields", "id and title are required")
	}
	now := s.now()
	r := &types.Resource{
		ID:          id,
		Title:       title,
		Description: trimOptional(in.Description),
		Icon:        trimOptional(in.Icon),
		Color:       trimOptional(in.Color),
		Orden:       in.Orden,
		Items:       []types.ResourceItem{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Create(ctx, r); err != nil {
		return nil, translateStoreError(err, "Resource", id)
	}
	s.invalidator.Invalidate(ctx, types.ScopeRecursos, id)
	return r, nil
}

func (s *ResourceService) UpdateResource(ctx context.Context, id string, in types.ResourceUpdate) (*types.Resource, error) {
	r, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, translateStoreError(err, "Resource", id)
	}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, apperrors.ValidationFailed("Invalid title", "title cannot be blank")
		}
		r.Title = title
	}
	if in.Description != nil {
		r.Description = trimOptional(in.Description)
	}
	if in.Icon != nil {
		r.Icon = trimOptional(in.Icon)
	}
	if in.Color != nil {
		r.Color = trimOptional(in.Color)
	}
	if in.Orden != nil {
		r.Orden = *in.Orden
	}
	r.UpdatedAt = s.now()

	if err := s.store.Update(ctx, r); err != nil {
		return nil, translateStoreError(err, "Resource", id)
	}
	s.invalidator.Invalidate(ctx, types.ScopeRecursos, id)
	return r, nil
}

// DeleteResource removes the resource with its items, then their files.
func (s *ResourceService) DeleteResource(ctx context.Context, id string) error {
	items, err := s.store.Delete(ctx, id)
	if err != nil {
		return translateStoreError(err, "Resource", id)
	}
	s.invalidator.Invalidate(ctx, types.ScopeRecursos, id)

	for _, item := range items {
		s.removeFile(ctx, item.Type, item.Link)
	}
	logger.GetLogger().Infow("Resource deleted", "id", id, "items", len(items))
	return nil
}

func (s *ResourceService) CreateItem(ctx context.Context, recursoID string, in types.ResourceItemCreate) (*types.ResourceItem, error) {
	if _, err := s.store.Get(ctx, recursoID); err != nil {
		return nil, translateStoreError(err, "Resource", recursoID)
	}

	now := s.now()
	item := &types.ResourceItem{
		ID:          newID(),
		RecursoID:   recursoID,
		Name:        strings.TrimSpace(in.Name),
		Description: trimOptional(in.Description),
		Link:        strings.TrimSpace(in.Link),
		Type:        in.Type,
		Orden:       in.Orden,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.validateItem(item); err != nil {
		return nil, err
	}
	if err := s.store.CreateItem(ctx, item); err != nil {
		if errors.Is(err, store.ErrInvalidReference) {
			return nil, apperrors.NotFound("Resource", recursoID)
		}
		return nil, translateStoreError(err, "Resource item", item.ID)
	}
	s.invalidator.Invalidate(ctx, types.ScopeRecursos, recursoID)
	return item, nil
}

// UpdateItem applies the non-nil fields. When a file item's link changes,
// the previous file is removed after the row is saved.
func (s *ResourceService) UpdateItem(ctx context.Context, id string, in types.ResourceItemUpdate) (*types.ResourceItem, error) {
	existing, err := s.store.GetItem(ctx, id)
	if err != nil {
		return nil, translateStoreError(err, "Resource item", id)
	}
	updated := *existing

	if in.Name != nil {
		updated.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		updated.Description = trimOptional(in.Description)
	}
	if in.Link != nil {
		updated.Link = strings.TrimSpace(*in.Link)
	}
	if in.Type != nil {
		updated.Type = *in.Type
	}
	if in.Orden != nil {
		updated.Orden = *in.Orden
	}
	if err := s.validateItem(&updated); err != nil {
		return nil, err
	}
	updated.UpdatedAt = s.now()

	if err := s.store.UpdateItem(ctx, &updated); err != nil {
		return nil, translateStoreError(err, "Resource item", id)
	}
	s.invalidator.Invalidate(ctx, types.ScopeRecursos, updated.RecursoID)

	if updated.Link != existing.Link {
		s.removeFile(ctx, existing.Type, existing.Link)
	}
	return &updated, nil
}

func (s *ResourceService) DeleteItem(ctx context.Context, id string) error {
	item, err := s.store.GetItem(ctx, id)
	if err != nil {
		return translateStoreError(err, "Resource item", id)
	}
	if err := s.store.DeleteItem(ctx, id); err != nil {
		return translateStoreError(err, "Resource item", id)
	}
	s.invalidator.Invalidate(ctx, types.ScopeRecursos, item.RecursoID)
	s.removeFile(ctx, item.Type, item.Link)
	return nil
}

func (s *ResourceService) validateItem(item *types.ResourceItem) error {
	var missing []string
	if item.Name == "" {
		missing = append(missing, "name")
	}
	if item.Type == "" {
		missing = append(missing, "type")
	}
	if item.Link == "" {
		missing = append(missing, "link")
	}
	if len(missing) > 0 {
		return apperrors.ValidationFailed("Missing required fields", strings.Join(missing, ", "))
	}
	if !item.Type.IsValid() {
		return apperrors.ValidationFailed("Invalid item type", "type must be url, pdf or image")
	}
	if item.Type.IsFile() {
		if s.files == nil {
			return apperrors.MissingConfiguration("File storage is not configured")
		}
		if !s.files.IsHosted(item.Link) {
			return apperrors.ValidationFailed("Invalid file link", "pdf and image items must link to an uploaded file")
		}
	}
	return nil
}

// removeFile deletes a stored file without failing the caller. The request
// context may already be done, so the deletion runs detached from it.
func (s *ResourceService) removeFile(ctx context.Context, itemType types.ItemType, link string) {
	if !itemType.IsFile() || s.files == nil || !s.files.IsHosted(link) {
		return
	}
	ctx = context.WithoutCancel(ctx)
	if err := s.files.Delete(ctx, link); err != nil {
		logger.GetLogger().Warnw("Failed to delete stored file, queueing for retry", "url", link, "error", err)
		if s.cleanup != nil {
			s.cleanup.Enqueue(ctx, link, err.Error())
		}
	}
}
