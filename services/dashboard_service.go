package services

import (
	"context"

	"github.com/consultorio-web/consultorio-backend/internal/store"
	"github.com/consultorio-web/consultorio-backend/types"
)

// DashboardService gathers the admin home counters.
type DashboardService struct {
	content     store.ContentStore
	services    store.ServiceStore
	resources   store.ResourceStore
	submissions store.SubmissionStore
}

func NewDashboardService(content store.ContentStore, services store.ServiceStore, resources store.ResourceStore, submissions store.SubmissionStore) *DashboardService {
	return &DashboardService{
		content:     content,
		services:    services,
		resources:   resources,
		submissions: submissions,
	}
}

func (s *DashboardService) Stats(ctx context.Context) (*types.DashboardStats, error) {
	stats := &types.DashboardStats{}
	counters := []struct {
		entity string
		count  func(context.Context) (int, error)
		dst    *int
	}{
		{"Content", s.content.Count, &stats.Contenido},
		{"Service", s.services.Count, &stats.Servicios},
		{"Resource", s.resources.Count, &stats.Recursos},
		{"Resource item", s.resources.CountItems, &stats.Items},
		{"Submission", s.submissions.Count, &stats.Respuestas},
	}

	for _, c := range counters {
		n, err := c.count(ctx)
		if err != nil {
			return nil, translateStoreError(err, c.entity, "")
		}
		*c.dst = n
	}
	return stats, nil
}
