package handlers

import (
	"context"

	"github.com/consultorio-web/consultorio-backend/internal/auth"
	"github.com/consultorio-web/consultorio-backend/internal/storage"
	"github.com/consultorio-web/consultorio-backend/types"
)

// ContentServiceInterface defines the content methods needed by handlers
type ContentServiceInterface interface {
	List(ctx context.Context, seccion string) ([]*types.ContentItem, error)
	Get(ctx context.Context, id string) (*types.ContentItem, error)
	Create(ctx context.Context, in types.ContentCreate) (*types.ContentItem, error)
	UpdateContenido(ctx context.Context, id, contenido string) (*types.ContentItem, error)
	Delete(ctx context.Context, id string) error
}

// CatalogServiceInterface defines the service catalog methods needed by handlers
type CatalogServiceInterface interface {
	List(ctx context.Context) ([]*types.Service, error)
	Get(ctx context.Context, id string) (*types.Service, error)
	Create(ctx context.Context, in types.ServiceCreate) (*types.Service, error)
	Update(ctx context.Context, id string, in types.ServiceUpdate) (*types.Service, error)
	Delete(ctx context.Context, id string) error
	Diagnose(ctx context.Context) (*types.TableDiagnostic, error)
}

type FormServiceInterface interface {
	List(ctx context.Context) ([]*types.FormDefinition, error)
	Get(ctx context.Context, id string) (*types.FormDefinition, error)
	Create(ctx context.Context, in types.FormDefinitionInput) (*types.FormDefinition, error)
	Update(ctx context.Context, id string, in types.FormDefinitionInput) (*types.FormDefinition, error)
	Delete(ctx context.Context, id string) error
}

type ResourceServiceInterface interface {
	ListWithItems(ctx context.Context) ([]*types.Resource, error)
	CreateResource(ctx context.Context, in types.ResourceCreate) (*types.Resource, error)
	UpdateResource(ctx context.Context, id string, in types.ResourceUpdate) (*types.Resource, error)
	DeleteResource(ctx context.Context, id string) error
	CreateItem(ctx context.Context, recursoID string, in types.ResourceItemCreate) (*types.ResourceItem, error)
	UpdateItem(ctx context.Context, id string, in types.ResourceItemUpdate) (*types.ResourceItem, error)
	DeleteItem(ctx context.Context, id string) error
}

type SubmissionServiceInterface interface {
	Create(ctx context.Context, in types.SubmissionCreate) (*types.FormSubmission, error)
	List(ctx context.Context, filter types.SubmissionFilter) ([]*types.FormSubmission, error)
	Delete(ctx context.Context, id string) error
	ExportCSV(ctx context.Context, filter types.SubmissionFilter) ([]byte, string, error)
	RecentActivity(ctx context.Context, limit int) ([]types.Activity, error)
}

type DashboardServiceInterface interface {
	Stats(ctx context.Context) (*types.DashboardStats, error)
}

type OperatorServiceInterface interface {
	List(ctx context.Context) ([]*types.Operator, error)
	Create(ctx context.Context, in types.OperatorCreate) (*types.Operator, error)
	Delete(ctx context.Context, username string) error
}

type CleanupServiceInterface interface {
	List(ctx context.Context) ([]*types.CleanupRecord, error)
	ProcessPending(ctx context.Context) (*types.CleanupResult, error)
}

// FileGateway is satisfied by *storage.Gateway.
type FileGateway interface {
	Upload(ctx context.Context, kind storage.Kind, up storage.Upload) (string, error)
	Delete(ctx context.Context, publicURL string) error
}

// LoginService is satisfied by *auth.Authenticator.
type LoginService interface {
	Login(ctx context.Context, req types.LoginRequest) (*types.LoginResponse, error)
}

// SessionRevoker is satisfied by *auth.SessionManager.
type SessionRevoker interface {
	Revoke(ctx context.Context, claims *auth.SessionClaims) error
}
