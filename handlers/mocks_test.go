package handlers

import (
	"context"

	"github.com/consultorio-web/consultorio-backend/internal/auth"
	"github.com/consultorio-web/consultorio-backend/internal/storage"
	"github.com/consultorio-web/consultorio-backend/types"
	"github.com/stretchr/testify/mock"
)

type MockContentService struct{ mock.Mock }

func (m *MockContentService) List(ctx context.Context, seccion string) ([]*types.ContentItem, error) {
	args := m.Called(ctx, seccion)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*types.ContentItem), args.Error(1)
}

func (m *MockContentService) Get(ctx context.Context, id string) (*types.ContentItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.ContentItem), args.Error(1)
}

func (m *MockContentService) Create(ctx context.Context, in types.ContentCreate) (*types.ContentItem, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.ContentItem), args.Error(1)
}

func (m *MockContentService) UpdateContenido(ctx context.Context, id, contenido string) (*types.ContentItem, error) {
	args := m.Called(ctx, id, contenido)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.ContentItem), args.Error(1)
}

func (m *MockContentService) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type MockCatalogService struct{ mock.Mock }

func (m *MockCatalogService) List(ctx context.Context) ([]*types.Service, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*types.Service), args.Error(1)
}

func (m *MockCatalogService) Get(ctx context.Context, id string) (*types.Service, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Service), args.Error(1)
}

func (m *MockCatalogService) Create(ctx context.Context, in types.ServiceCreate) (*types.Service, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Service), args.Error(1)
}

func (m *MockCatalogService) Update(ctx context.Context, id string, in types.ServiceUpdate) (*types.Service, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Service), args.Error(1)
}

func (m *MockCatalogService) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockCatalogService) Diagnose(ctx context.Context) (*types.TableDiagnostic, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.TableDiagnostic), args.Error(1)
}

type MockFormService struct{ mock.Mock }

func (m *MockFormService) List(ctx context.Context) ([]*types.FormDefinition, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*types.FormDefinition), args.Error(1)
}

func (m *MockFormService) Get(ctx context.Context, id string) (*types.FormDefinition, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.FormDefinition), args.Error(1)
}

func (m *MockFormService) Create(ctx context.Context, in types.FormDefinitionInput) (*types.FormDefinition, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.FormDefinition), args.Error(1)
}

func (m *MockFormService) Update(ctx context.Context, id string, in types.FormDefinitionInput) (*types.FormDefinition, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.FormDefinition), args.Error(1)
}

func (m *MockFormService) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type MockResourceService struct{ mock.Mock }

func (m *MockResourceService) ListWithItems(ctx context.Context) ([]*types.Resource, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*types.Resource), args.Error(1)
}

func (m *MockResourceService) CreateResource(ctx context.Context, in types.ResourceCreate) (*types.Resource, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Resource), args.Error(1)
}

func (m *MockResourceService) UpdateResource(ctx context.Context, id string, in types.ResourceUpdate) (*types.Resource, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Resource), args.Error(1)
}

func (m *MockResourceService) DeleteResource(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockResourceService) CreateItem(ctx context.Context, recursoID string, in types.ResourceItemCreate) (*types.ResourceItem, error) {
	args := m.Called(ctx, recursoID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.ResourceItem), args.Error(1)
}

func (m *MockResourceService) UpdateItem(ctx context.Context, id string, in types.ResourceItemUpdate) (*types.ResourceItem, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.ResourceItem), args.Error(1)
}

func (m *MockResourceService) DeleteItem(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type MockSubmissionService struct{ mock.Mock }

func (m *MockSubmissionService) Create(ctx context.Context, in types.SubmissionCreate) (*types.FormSubmission, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.FormSubmission), args.Error(1)
}

func (m *MockSubmissionService) List(ctx context.Context, filter types.SubmissionFilter) ([]*types.FormSubmission, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*types.FormSubmission), args.Error(1)
}

func (m *MockSubmissionService) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockSubmissionService) ExportCSV(ctx context.Context, filter types.SubmissionFilter) ([]byte, string, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).([]byte), args.String(1), args.Error(2)
}

func (m *MockSubmissionService) RecentActivity(ctx context.Context, limit int) ([]types.Activity, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Activity), args.Error(1)
}

type MockDashboardService struct{ mock.Mock }

func (m *MockDashboardService) Stats(ctx context.Context) (*types.DashboardStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.DashboardStats), args.Error(1)
}

type MockOperatorService struct{ mock.Mock }

func (m *MockOperatorService) List(ctx context.Context) ([]*types.Operator, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*types.Operator), args.Error(1)
}

func (m *MockOperatorService) Create(ctx context.Context, in types.OperatorCreate) (*types.Operator, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Operator), args.Error(1)
}

func (m *MockOperatorService) Delete(ctx context.Context, username string) error {
	return m.Called(ctx, username).Error(0)
}

type MockCleanupService struct{ mock.Mock }

func (m *MockCleanupService) List(ctx context.Context) ([]*types.CleanupRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*types.CleanupRecord), args.Error(1)
}

func (m *MockCleanupService) ProcessPending(ctx context.Context) (*types.CleanupResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.CleanupResult), args.Error(1)
}

type MockFileGateway struct{ mock.Mock }

func (m *MockFileGateway) Upload(ctx context.Context, kind storage.Kind, up storage.Upload) (string, error) {
	args := m.Called(ctx, kind, up)
	return args.String(0), args.Error(1)
}

func (m *MockFileGateway) Delete(ctx context.Context, publicURL string) error {
	return m.Called(ctx, publicURL).Error(0)
}

type MockLoginService struct{ mock.Mock }

func (m *MockLoginService) Login(ctx context.Context, req types.LoginRequest) (*types.LoginResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.LoginResponse), args.Error(1)
}

type MockSessionRevoker struct{ mock.Mock }

func (m *MockSessionRevoker) Revoke(ctx context.Context, claims *auth.SessionClaims) error {
	return m.Called(ctx, claims).Error(0)
}
