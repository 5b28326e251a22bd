package services

import (
	"context"
	"time"

	"github.com/consultorio-web/consultorio-backend/types"
	"github.com/stretchr/testify/mock"
)

type MockContentStore struct{ mock.Mock }

func (m *MockContentStore) List(ctx context.Context, seccion string) ([]*types.ContentItem, error) {
	args := m.Called(ctx, seccion)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*types.ContentItem), args.Error(1)
}

func (m *MockContentStore) Get(ctx context.Context, id string) (*types.ContentItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.ContentItem), args.Error(1)
}

func (m *MockContentStore) Create(ctx context.Context, item *types.ContentItem) error {
	return m.Called(ctx, item).Error(0)
}

func (m *MockContentStore) UpdateContenido(ctx context.Context, id, contenido string, updatedAt time.Time) (*types.ContentItem, error) {
	args := m.Called(ctx, id, contenido, updatedAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.ContentItem), args.Error(1)
}

func (m *MockContentStore) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockContentStore) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockContentStore) SeedIfEmpty(ctx context.Context, items []*types.ContentItem) (bool, error) {
	args := m.Called(ctx, items)
	return args.Bool(0), args.Error(1)
}

type MockServiceStore struct{ mock.Mock }

func (m *MockServiceStore) List(ctx context.Context) ([]*types.Service, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*types.Service), args.Error(1)
}

func (m *MockServiceStore) Get(ctx context.Context, id string) (*types.Service, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Service), args.Error(1)
}

func (m *MockServiceStore) Exists(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockServiceStore) Create(ctx context.Context, svc *types.Service) error {
	return m.Called(ctx, svc).Error(0)
}

func (m *MockServiceStore) Update(ctx context.Context, svc *types.Service) error {
	return m.Called(ctx, svc).Error(0)
}

func (m *MockServiceStore) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockServiceStore) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockServiceStore) Diagnose(ctx context.Context) (*types.TableDiagnostic, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.TableDiagnostic), args.Error(1)
}

type MockFormStore struct{ mock.Mock }

func (m *MockFormStore) List(ctx context.Context) ([]*types.FormDefinition, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*types.FormDefinition), args.Error(1)
}

func (m *MockFormStore) Get(ctx context.Context, id string) (*types.FormDefinition, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.FormDefinition), args.Error(1)
}

func (m *MockFormStore) Create(ctx context.Context, form *types.FormDefinition) error {
	return m.Called(ctx, form).Error(0)
}

func (m *MockFormStore) Update(ctx context.Context, form *types.FormDefinition) error {
	return m.Called(ctx, form).Error(0)
}

func (m *MockFormStore) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type MockResourceStore struct{ mock.Mock }

func (m *MockResourceStore) ListWithItems(ctx context.Context) ([]*types.Resource, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*types.Resource), args.Error(1)
}

func (m *MockResourceStore) Get(ctx context.Context, id string) (*types.Resource, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Resource), args.Error(1)
}

func (m *MockResourceStore) Create(ctx context.Context, r *types.Resource) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockResourceStore) Update(ctx context.Context, r *types.Resource) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockResourceStore) Delete(ctx context.Context, id string) ([]types.ResourceItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.ResourceItem), args.Error(1)
}

func (m *MockResourceStore) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockResourceStore) GetItem(ctx context.Context, id string) (*types.ResourceItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.ResourceItem), args.Error(1)
}

func (m *MockResourceStore) CreateItem(ctx context.Context, item *types.ResourceItem) error {
	return m.Called(ctx, item).Error(0)
}

func (m *MockResourceStore) UpdateItem(ctx context.Context, item *types.ResourceItem) error {
	return m.Called(ctx, item).Error(0)
}

func (m *MockResourceStore) DeleteItem(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockResourceStore) CountItems(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type MockSubmissionStore struct{ mock.Mock }

func (m *MockSubmissionStore) Create(ctx context.Context, sub *types.FormSubmission) error {
	return m.Called(ctx, sub).Error(0)
}

func (m *MockSubmissionStore) List(ctx context.Context, servicioID string, since time.Time) ([]*types.FormSubmission, error) {
	args := m.Called(ctx, servicioID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*types.FormSubmission), args.Error(1)
}

func (m *MockSubmissionStore) Recent(ctx context.Context, limit int) ([]*types.FormSubmission, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*types.FormSubmission), args.Error(1)
}

func (m *MockSubmissionStore) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockSubmissionStore) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type MockOperatorStore struct{ mock.Mock }

func (m *MockOperatorStore) List(ctx context.Context) ([]*types.Operator, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*types.Operator), args.Error(1)
}

func (m *MockOperatorStore) Get(ctx context.Context, username string) (*types.Operator, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Operator), args.Error(1)
}

func (m *MockOperatorStore) Create(ctx context.Context, op *types.Operator) error {
	return m.Called(ctx, op).Error(0)
}

func (m *MockOperatorStore) Delete(ctx context.Context, username string) error {
	return m.Called(ctx, username).Error(0)
}

type MockCleanupStore struct{ mock.Mock }

func (m *MockCleanupStore) Enqueue(ctx context.Context, url, lastError string) error {
	return m.Called(ctx, url, lastError).Error(0)
}

func (m *MockCleanupStore) ListPending(ctx context.Context, maxAttempts, limit int) ([]*types.CleanupRecord, error) {
	args := m.Called(ctx, maxAttempts, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*types.CleanupRecord), args.Error(1)
}

func (m *MockCleanupStore) MarkFailed(ctx context.Context, id, lastError string) error {
	return m.Called(ctx, id, lastError).Error(0)
}

func (m *MockCleanupStore) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type MockFileRemover struct{ mock.Mock }

func (m *MockFileRemover) IsHosted(url string) bool {
	return m.Called(url).Bool(0)
}

func (m *MockFileRemover) Delete(ctx context.Context, url string) error {
	return m.Called(ctx, url).Error(0)
}

type MockCleanupQueue struct{ mock.Mock }

func (m *MockCleanupQueue) Enqueue(ctx context.Context, url, reason string) {
	m.Called(ctx, url, reason)
}

type MockNotifier struct{ mock.Mock }

func (m *MockNotifier) Notify(sub *types.FormSubmission, svc *types.Service, form *types.FormDefinition) {
	m.Called(sub, svc, form)
}

// recordingInvalidator remembers every invalidation in call order.
type recordingInvalidator struct {
	calls []string
}

func (r *recordingInvalidator) Invalidate(_ context.Context, scope types.CacheScope, id string) {
	r.calls = append(r.calls, string(scope)+":"+id)
}

func strPtr(s string) *string { return &s }

func fixedClock(t time.Time) clock {
	return func() time.Time { return t }
}

func fixedNow() time.Time {
	return time.Date(2024, 5, 10, 9, 30, 0, 0, time.UTC)
}
