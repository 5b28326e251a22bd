package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	apperrors "github.com/consultorio-web/consultorio-backend/errors"
	"github.com/consultorio-web/consultorio-backend/internal/cache"
	"github.com/consultorio-web/consultorio-backend/internal/store"
	"github.com/consultorio-web/consultorio-backend/types"
)

// FormService manages intake form definitions. Forms are embedded in
// service reads, so writes invalidate the servicios scope.
type FormService struct {
	store       store.FormStore
	cache       cache.Cache
	ttl         time.Duration
	invalidator Invalidator
	now         clock
}

func NewFormService(s store.FormStore, c cache.Cache, ttl time.Duration, inv Invalidator) *FormService {
	return &FormService{
		store:       s,
		cache:       c,
		ttl:         ttl,
		invalidator: invalidatorOrNoop(inv),
		now:         utcNow,
	}
}

func (s *FormService) List(ctx context.Context) ([]*types.FormDefinition, error) {
	forms, err := s.store.List(ctx)
	if err != nil {
		return nil, translateStoreError(err, "Form", "")
	}
	if forms == nil {
		forms = []*types.FormDefinition{}
	}
	return forms, nil
}

func (s *FormService) Get(ctx context.Context, id string) (*types.FormDefinition, error) {
	form, err := readThrough(ctx, s.cache, s.invalidator, cache.Key(types.ScopeServicios, "form", id), s.ttl, func() (*types.FormDefinition, error) {
		return s.store.Get(ctx, id)
	})
	if err != nil {
		return nil, translateStoreError(err, "Form", id)
	}
	return form, nil
}

func (s *FormService) Create(ctx context.Context, in types.FormDefinitionInput) (*types.FormDefinition, error) {
	form, err := buildForm(in)
	if err != nil {
		return nil, err
	}
	if form.ID == "" {
		form.ID = newID()
	}
	now := s.now()
	form.CreatedAt, form.UpdatedAt = now, now

	if err := s.store.Create(ctx, form); err != nil {
		return nil, translateStoreError(err, "Form", form.ID)
	}
	s.invalidator.Invalidate(ctx, types.ScopeServicios, form.ID)
	return form, nil
}

// Update replaces nombre, campos and button text of an existing form.
func (s *FormService) Update(ctx context.Context, id string, in types.FormDefinitionInput) (*types.FormDefinition, error) {
	existing, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, translateStoreError(err, "Form", id)
	}
	in.ID = id
	form, err := buildForm(in)
	if err != nil {
		return nil, err
	}
	form.CreatedAt = existing.CreatedAt
	form.UpdatedAt = s.now()

	if err := s.store.Update(ctx, form); err != nil {
		return nil, translateStoreError(err, "Form", id)
	}
	s.invalidator.Invalidate(ctx, types.ScopeServicios, id)
	return form, nil
}

// Delete removes the form; linked services keep existing with no form.
func (s *FormService) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return translateStoreError(err, "Form", id)
	}
	s.invalidator.Invalidate(ctx, types.ScopeServicios, id)
	return nil
}

func buildForm(in types.FormDefinitionInput) (*types.FormDefinition, error) {
	nombre := strings.TrimSpace(in.Nombre)
	if nombre == "" {
		return nil, apperrors.ValidationFailed("Missing required fields", "nombre")
	}
	campos := make([]types.FieldDescriptor, 0, len(in.Campos))
	seen := make(map[string]bool, len(in.Campos))
	for i, f := range in.Campos {
		f.Name = strings.TrimSpace(f.Name)
		if f.Name == "" {
			return nil, apperrors.ValidationFailed("Invalid field", fmt.Sprintf("campos[%d] has no name", i))
		}
		if seen[f.Name] {
			return nil, apperrors.ValidationFailed("Invalid field", fmt.Sprintf("field %q is defined twice", f.Name))
		}
		seen[f.Name] = true
		if !f.Type.IsValid() {
			return nil, apperrors.ValidationFailed("Invalid field", fmt.Sprintf("field %q has unknown type %q", f.Name, f.Type))
		}
		if f.Type == types.FieldTypeInfo {
			f.Required = false
		}
		campos = append(campos, f)
	}
	return &types.FormDefinition{
		ID:         strings.TrimSpace(in.ID),
		Nombre:     nombre,
		Campos:     campos,
		ButtonText: trimOptional(in.ButtonText),
	}, nil
}
