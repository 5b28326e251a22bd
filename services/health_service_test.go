package services

import (
	"context"
	"errors"
	"testing"

	"github.com/consultorio-web/consultorio-backend/types"
	"github.com/go-redis/redismock/v9"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthService_AllUp(t *testing.T) {
	mockDB, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockDB.Close()
	mockDB.ExpectPing()

	redisClient, redisMock := redismock.NewClientMock()
	redisMock.ExpectPing().SetVal("PONG")

	service := NewHealthService(mockDB, redisClient, true, "1.2.3")
	service.SetActiveConnectionsGetter(func() int { return 2 })

	health := service.CheckHealth(context.Background())

	assert.Equal(t, types.HealthStatusUp, health.Status)
	assert.Equal(t, "1.2.3", health.Version)
	assert.Equal(t, types.HealthStatusUp, health.Components["database"].Status)
	assert.Equal(t, types.HealthStatusUp, health.Components["redis"].Status)
	assert.Equal(t, "2 active connections", health.Components["websocket"].Details)
	assert.NotEmpty(t, health.Uptime)
	assert.NoError(t, mockDB.ExpectationsWereMet())
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestHealthService_DatabaseDown(t *testing.T) {
	mockDB, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockDB.Close()
	mockDB.ExpectPing().WillReturnError(errors.New("connection refused"))

	service := NewHealthService(mockDB, nil, true, "1.0.0")
	health := service.CheckHealth(context.Background())

	assert.Equal(t, types.HealthStatusDown, health.Status)
	assert.Equal(t, "Database connection failed", health.Components["database"].Details)
	_, hasRedis := health.Components["redis"]
	assert.False(t, hasRedis)
}

func TestHealthService_RedisDownDegrades(t *testing.T) {
	mockDB, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockDB.Close()
	mockDB.ExpectPing()

	redisClient, redisMock := redismock.NewClientMock()
	redisMock.ExpectPing().SetErr(errors.New("no route"))

	service := NewHealthService(mockDB, redisClient, true, "1.0.0")
	health := service.CheckHealth(context.Background())

	assert.Equal(t, types.HealthStatusDegraded, health.Status)
	assert.Equal(t, types.HealthStatusDegraded, health.Components["redis"].Status)
}

func TestHealthService_StorageNotConfigured(t *testing.T) {
	mockDB, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockDB.Close()
	mockDB.ExpectPing()

	service := NewHealthService(mockDB, nil, false, "1.0.0")
	health := service.CheckHealth(context.Background())

	assert.Equal(t, types.HealthStatusDegraded, health.Status)
	assert.Equal(t, "File storage not configured", health.Components["storage"].Details)
}
