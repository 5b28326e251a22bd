package services

import (
	"context"
	"strings"
	"time"

	apperrors "github.com/consultorio-web/consultorio-backend/errors"
	"github.com/consultorio-web/consultorio-backend/internal/cache"
	"github.com/consultorio-web/consultorio-backend/internal/store"
	"github.com/consultorio-web/consultorio-backend/logger"
	"github.com/consultorio-web/consultorio-backend/types"
)

// CatalogService manages offered services.
type CatalogService struct {
	store       store.ServiceStore
	cache       cache.Cache
	ttl         time.Duration
	invalidator Invalidator
	now         clock
}

func NewCatalogService(s store.ServiceStore, c cache.Cache, ttl time.Duration, inv Invalidator) *CatalogService {
	return &CatalogService{
		store:       s,
		cache:       c,
		ttl:         ttl,
		invalidator: invalidatorOrNoop(inv),
		now:         utcNow,
	}
}

// List returns services with their forms, popular first then by title.
func (s *CatalogService) List(ctx context.Context) ([]*types.Service, error) {
	services, err := readThrough(ctx, s.cache, s.invalidator, cache.Key(types.ScopeServicios, "list"), s.ttl, func() ([]*types.Service, error) {
		return s.store.List(ctx)
	})
	if err != nil {
		return nil, translateStoreError(err, "Service", "")
	}
	if services == nil {
		services = []*types.Service{}
	}
	return services, nil
}

func (s *CatalogService) Get(ctx context.Context, id string) (*types.Service, error) {
	svc, err := readThrough(ctx, s.cache, s.invalidator, cache.Key(types.ScopeServicios, "id", id), s.ttl, func() (*types.Service, error) {
		return s.store.Get(ctx, id)
	})
	if err != nil {
		return nil, translateStoreError(err, "Service", id)
	}
	return svc, nil
}

func (s *CatalogService) Create(ctx context.Context, in types.ServiceCreate) (*types.Service, error) {
	id := strings.TrimSpace(in.ID)
	title := strings.TrimSpace(in.Title)
	if id == "" || title == "" {
		return nil, apperrors.ValidationFailed("Missing required fields", "id and title are required")
	}

	exists, err := s.store.Exists(ctx, id)
	if err != nil {
		return nil, translateStoreError(err, "Service", id)
	}
	if exists {
		return nil, apperrors.NewConflictError("Service already exists", "ID: "+id)
	}

	now := s.now()
	svc := &types.Service{
		ID:         id,
		Title:      title,
		Price:      trimOptional(in.Price),
		Duration:   trimOptional(in.Duration),
		Features:   cleanFeatures(in.Features),
		Popular:    in.Popular,
		Icon:       trimOptional(in.Icon),
		ButtonText: trimOptional(in.ButtonText),
		Horario:    trimOptional(in.Horario),
		FormID:     trimOptional(in.FormID),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	// The insert still maps a unique violation to Conflict if another
	// request created the id after the existence check.
	if err := s.store.Create(ctx, svc); err != nil {
		return nil, translateStoreError(err, "Service", id)
	}

	s.invalidator.Invalidate(ctx, types.ScopeServicios, id)
	logger.GetLogger().Infow("Service created", "id", id)
	return svc, nil
}

// Update applies the non-nil fields of in to an existing service.
func (s *CatalogService) Update(ctx context.Context, id string, in types.ServiceUpdate) (*types.Service, error) {
	svc, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, translateStoreError(err, "Service", id)
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, apperrors.ValidationFailed("Invalid title", "title cannot be blank")
		}
		svc.Title = title
	}
	if in.Price != nil {
		svc.Price = trimOptional(in.Price)
	}
	if in.Duration != nil {
		svc.Duration = trimOptional(in.Duration)
	}
	if in.Features != nil {
		svc.Features = cleanFeatures(*in.Features)
	}
	if in.Popular != nil {
		svc.Popular = *in.Popular
	}
	if in.Icon != nil {
		svc.Icon = trimOptional(in.Icon)
	}
	if in.ButtonText != nil {
		svc.ButtonText = trimOptional(in.ButtonText)
	}
	if in.Horario != nil {
		svc.Horario = trimOptional(in.Horario)
	}
	if in.FormID != nil {
		svc.FormID = trimOptional(in.FormID)
	}
	svc.UpdatedAt = s.now()

	if err := s.store.Update(ctx, svc); err != nil {
		return nil, translateStoreError(err, "Service", id)
	}
	s.invalidator.Invalidate(ctx, types.ScopeServicios, id)

	// Re-read so the joined form reflects a changed form_id.
	updated, err := s.store.Get(ctx, id)
	if err != nil {
		return svc, nil
	}
	return updated, nil
}

func (s *CatalogService) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return translateStoreError(err, "Service", id)
	}
	s.invalidator.Invalidate(ctx, types.ScopeServicios, id)
	logger.GetLogger().Infow("Service deleted", "id", id)
	return nil
}

func (s *CatalogService) Diagnose(ctx context.Context) (*types.TableDiagnostic, error) {
	diag, err := s.store.Diagnose(ctx)
	if err != nil {
		return nil, translateStoreError(err, "Service", "")
	}
	return diag, nil
}

// cleanFeatures trims entries and drops blank ones.
func cleanFeatures(features []string) []string {
	out := make([]string, 0, len(features))
	for _, f := range features {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
