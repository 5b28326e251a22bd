package services

import (
	"context"
	"fmt"
	"time"

	"github.com/consultorio-web/consultorio-backend/logger"
	"github.com/consultorio-web/consultorio-backend/types"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const healthCheckTimeout = 3 * time.Second

// DatabasePinger is the part of the pgx pool used for health checks.
type DatabasePinger interface {
	Ping(ctx context.Context) error
}

type HealthService struct {
	db                DatabasePinger
	redisClient       redis.UniversalClient
	storageConfigured bool
	version           string
	startTime         time.Time
	activeConnections func() int
	log               *zap.SugaredLogger
}

// NewHealthService builds the checker. redisClient may be nil when the
// in-memory cache is used.
func NewHealthService(db DatabasePinger, redisClient redis.UniversalClient, storageConfigured bool, version string) *HealthService {
	return &HealthService{
		db:                db,
		redisClient:       redisClient,
		storageConfigured: storageConfigured,
		version:           version,
		startTime:         time.Now(),
		log:               logger.GetLogger(),
	}
}

// SetActiveConnectionsGetter reports live admin socket count in the check.
func (h *HealthService) SetActiveConnectionsGetter(getter func() int) {
	h.activeConnections = getter
}

func (h *HealthService) CheckHealth(ctx context.Context) types.HealthCheck {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	components := map[string]types.HealthComponent{
		"database": h.checkDatabase(ctx),
		"storage":  h.checkStorage(),
	}
	if h.redisClient != nil {
		components["redis"] = h.checkRedis(ctx)
	}
	if h.activeConnections != nil {
		components["websocket"] = types.HealthComponent{
			Status:  types.HealthStatusUp,
			Details: fmt.Sprintf("%d active connections", h.activeConnections()),
		}
	}

	overall := types.HealthStatusUp
	for name, c := range components {
		switch {
		case c.Status == types.HealthStatusDown && name == "database":
			overall = types.HealthStatusDown
		case c.Status != types.HealthStatusUp && overall == types.HealthStatusUp:
			overall = types.HealthStatusDegraded
		}
	}

	return types.HealthCheck{
		Status:     overall,
		Components: components,
		Version:    h.version,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Uptime:     time.Since(h.startTime).Round(time.Second).String(),
	}
}

func (h *HealthService) checkDatabase(ctx context.Context) types.HealthComponent {
	if err := h.db.Ping(ctx); err != nil {
		h.log.Errorw("Database health check failed", "error", err)
		return types.HealthComponent{
			Status:  types.HealthStatusDown,
			Details: "Database connection failed",
		}
	}
	return types.HealthComponent{Status: types.HealthStatusUp}
}

// Redis only backs the cache, so losing it degrades the service.
func (h *HealthService) checkRedis(ctx context.Context) types.HealthComponent {
	if err := h.redisClient.Ping(ctx).Err(); err != nil {
		h.log.Errorw("Redis health check failed", "error", err)
		return types.HealthComponent{
			Status:  types.HealthStatusDegraded,
			Details: "Redis connection failed",
		}
	}
	return types.HealthComponent{Status: types.HealthStatusUp}
}

func (h *HealthService) checkStorage() types.HealthComponent {
	if !h.storageConfigured {
		return types.HealthComponent{
			Status:  types.HealthStatusDegraded,
			Details: "File storage not configured",
		}
	}
	return types.HealthComponent{Status: types.HealthStatusUp}
}
