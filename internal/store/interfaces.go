package store

import (
	"context"
	"time"

	"github.com/consultorio-web/consultorio-backend/types"
)

// ContentStore persists page text fragments.
type ContentStore interface {
	// List returns every item ordered by seccion then orden, or only the
	// items of seccion ordered by orden when seccion is non-empty.
	List(ctx context.Context, seccion string) ([]*types.ContentItem, error)
	Get(ctx context.Context, id string) (*types.ContentItem, error)
	Create(ctx context.Context, item *types.ContentItem) error
	UpdateContenido(ctx context.Context, id, contenido string, updatedAt time.Time) (*types.ContentItem, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
	// SeedIfEmpty inserts items in one transaction when the table has no rows.
	// It reports whether anything was inserted.
	SeedIfEmpty(ctx context.Context, items []*types.ContentItem) (bool, error)
}

// ServiceStore persists the service catalog.
type ServiceStore interface {
	List(ctx context.Context) ([]*types.Service, error)
	Get(ctx context.Context, id string) (*types.Service, error)
	Exists(ctx context.Context, id string) (bool, error)
	Create(ctx context.Context, svc *types.Service) error
	Update(ctx context.Context, svc *types.Service) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
	Diagnose(ctx context.Context) (*types.TableDiagnostic, error)
}

// FormStore persists intake form definitions.
type FormStore interface {
	List(ctx context.Context) ([]*types.FormDefinition, error)
	Get(ctx context.Context, id string) (*types.FormDefinition, error)
	Create(ctx context.Context, form *types.FormDefinition) error
	Update(ctx context.Context, form *types.FormDefinition) error
	Delete(ctx context.Context, id string) error
}

// ResourceStore persists resources and their items.
type ResourceStore interface {
	ListWithItems(ctx context.Context) ([]*types.Resource, error)
	Get(ctx context.Context, id string) (*types.Resource, error)
	Create(ctx context.Context, r *types.Resource) error
	Update(ctx context.Context, r *types.Resource) error
	// Delete removes the resource and, by cascade, its items. The removed
	// items are returned so their files can be cleaned up.
	Delete(ctx context.Context, id string) ([]types.ResourceItem, error)
	Count(ctx context.Context) (int, error)

	GetItem(ctx context.Context, id string) (*types.ResourceItem, error)
	CreateItem(ctx context.Context, item *types.ResourceItem) error
	UpdateItem(ctx context.Context, item *types.ResourceItem) error
	DeleteItem(ctx context.Context, id string) error
	CountItems(ctx context.Context) (int, error)
}

// SubmissionStore persists visitor form submissions.
type SubmissionStore interface {
	Create(ctx context.Context, sub *types.FormSubmission) error
	// List returns submissions newest first, joined with service and form
	// names. Empty servicioID and zero since match everything.
	List(ctx context.Context, servicioID string, since time.Time) ([]*types.FormSubmission, error)
	Recent(ctx context.Context, limit int) ([]*types.FormSubmission, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

// OperatorStore persists admin accounts.
type OperatorStore interface {
	List(ctx context.Context) ([]*types.Operator, error)
	Get(ctx context.Context, username string) (*types.Operator, error)
	Create(ctx context.Context, op *types.Operator) error
	Delete(ctx context.Context, username string) error
}

// CleanupStore persists storage deletions awaiting retry.
type CleanupStore interface {
	Enqueue(ctx context.Context, url, lastError string) error
	ListPending(ctx context.Context, maxAttempts, limit int) ([]*types.CleanupRecord, error)
	MarkFailed(ctx context.Context, id, lastError string) error
	Delete(ctx context.Context, id string) error
}
