package services

import (
	"context"
	"errors"
	"testing"

	apperrors "github.com/consultorio-web/consultorio-backend/errors"
	"github.com/consultorio-web/consultorio-backend/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestDashboardService_Stats(t *testing.T) {
	ctx := context.Background()
	content, services, resources, submissions := new(MockContentStore), new(MockServiceStore), new(MockResourceStore), new(MockSubmissionStore)
	content.On("Count", ctx).Return(12, nil)
	services.On("Count", ctx).Return(4, nil)
	resources.On("Count", ctx).Return(3, nil)
	resources.On("CountItems", ctx).Return(9, nil)
	submissions.On("Count", ctx).Return(27, nil)

	stats, err := NewDashboardService(content, services, resources, submissions).Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, types.DashboardStats{Contenido: 12, Servicios: 4, Recursos: 3, Items: 9, Respuestas: 27}, *stats)
}

func TestDashboardService_StatsStopsOnError(t *testing.T) {
	ctx := context.Background()
	content, services, resources, submissions := new(MockContentStore), new(MockServiceStore), new(MockResourceStore), new(MockSubmissionStore)
	content.On("Count", ctx).Return(1, nil)
	services.On("Count", ctx).Return(0, errors.New("connection reset"))

	_, err := NewDashboardService(content, services, resources, submissions).Stats(ctx)
	requireAppError(t, err, apperrors.DatabaseError)
	resources.AssertNotCalled(t, "Count", mock.Anything)
}
