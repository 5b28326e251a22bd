package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/consultorio-web/consultorio-backend/logger"
	"github.com/consultorio-web/consultorio-backend/types"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	logger.IsTest = true
}

func TestMemoryCache_SetGetExpire(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(ctx, 0)
	current := time.Unix(1000, 0)
	c.now = func() time.Time { return current }

	require.NoError(t, c.Set(ctx, "contenido:all", []byte(`[1]`), 30*time.Second))

	got, ok, err := c.Get(ctx, "contenido:all")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte(`[1]`), got)

	current = current.Add(31 * time.Second)
	_, ok, _ = c.Get(ctx, "contenido:all")
	assert.False(t, ok)

	c.removeExpired()
	assert.Zero(t, c.Size())
}

func TestMemoryCache_DeletePrefix(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(ctx, 0)

	_ = c.Set(ctx, "contenido:all", []byte("a"), time.Minute)
	_ = c.Set(ctx, "contenido:hero", []byte("b"), time.Minute)
	_ = c.Set(ctx, "servicios:all", []byte("c"), time.Minute)

	require.NoError(t, c.DeletePrefix(ctx, "contenido:"))

	_, ok, _ := c.Get(ctx, "contenido:hero")
	assert.False(t, ok)
	_, ok, _ = c.Get(ctx, "servicios:all")
	assert.True(t, ok)
}

func TestMemoryCache_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(ctx, 0)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = c.Set(ctx, "recursos:all", []byte("x"), time.Minute)
			_, _, _ = c.Get(ctx, "recursos:all")
			_ = c.DeletePrefix(ctx, "recursos:")
		}()
	}
	wg.Wait()
}

func TestRedisCache_GetMissAndHit(t *testing.T) {
	client, mock := redismock.NewClientMock()
	c := NewRedisCache(client, "consultorio")
	ctx := context.Background()

	mock.ExpectGet("consultorio:servicios:all").RedisNil()
	mock.ExpectGet("consultorio:servicios:all").SetVal(`[{"id":"terapia"}]`)

	_, ok, err := c.Get(ctx, "servicios:all")
	require.NoError(t, err)
	assert.False(t, ok)

	data, ok, err := c.Get(ctx, "servicios:all")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `[{"id":"terapia"}]`, string(data))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCache_GetError(t *testing.T) {
	client, mock := redismock.NewClientMock()
	c := NewRedisCache(client, "")

	mock.ExpectGet("k").SetErr(errors.New("connection refused"))

	_, _, err := c.Get(context.Background(), "k")
	assert.ErrorContains(t, err, "connection refused")
}

func TestRedisCache_Set(t *testing.T) {
	client, mock := redismock.NewClientMock()
	c := NewRedisCache(client, "consultorio")

	mock.ExpectSet("consultorio:recursos:all", []byte("[]"), 30*time.Second).SetVal("OK")

	require.NoError(t, c.Set(context.Background(), "recursos:all", []byte("[]"), 30*time.Second))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCache_DeletePrefixScansAllPages(t *testing.T) {
	client, mock := redismock.NewClientMock()
	c := NewRedisCache(client, "consultorio")

	mock.ExpectScan(0, "consultorio:contenido:*", scanBatch).
		SetVal([]string{"consultorio:contenido:all"}, 7)
	mock.ExpectDel("consultorio:contenido:all").SetVal(1)
	mock.ExpectScan(7, "consultorio:contenido:*", scanBatch).
		SetVal([]string{"consultorio:contenido:hero", "consultorio:contenido:about"}, 0)
	mock.ExpectDel("consultorio:contenido:hero", "consultorio:contenido:about").SetVal(2)

	require.NoError(t, c.DeletePrefix(context.Background(), "contenido:"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

type recordingBroadcaster struct {
	events []types.ChangeEvent
}

func (r *recordingBroadcaster) Broadcast(e types.ChangeEvent) {
	r.events = append(r.events, e)
}

func TestInvalidator_DropsScopeAndBroadcasts(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(ctx, 0)
	b := &recordingBroadcaster{}
	inv := NewInvalidator(c, b)

	SetJSON(ctx, c, Key(types.ScopeContenido, "hero"), []string{"x"}, time.Minute)
	SetJSON(ctx, c, Key(types.ScopeServicios, "all"), []string{"y"}, time.Minute)

	inv.Invalidate(ctx, types.ScopeContenido, "hero-titulo")

	var out []string
	assert.False(t, GetJSON(ctx, c, Key(types.ScopeContenido, "hero"), &out))
	assert.True(t, GetJSON(ctx, c, Key(types.ScopeServicios, "all"), &out))
	assert.Equal(t, []string{"y"}, out)

	require.Len(t, b.events, 1)
	assert.Equal(t, types.ChangeEventInvalidated, b.events[0].Type)
	assert.Equal(t, types.ScopeContenido, b.events[0].Scope)
	assert.Equal(t, "hero-titulo", b.events[0].ID)
}

func TestInvalidator_StoreIfCurrent(t *testing.T) {
	ctx := context.Background()
	inv := NewInvalidator(NewMemoryCache(ctx, 0), nil)

	gen := inv.Generation(types.ScopeRecursos)
	stored := 0
	assert.True(t, inv.StoreIfCurrent(types.ScopeRecursos, gen, func() { stored++ }))

	inv.Invalidate(ctx, types.ScopeRecursos, "guias")
	assert.Equal(t, gen+1, inv.Generation(types.ScopeRecursos))
	assert.False(t, inv.StoreIfCurrent(types.ScopeRecursos, gen, func() { stored++ }))
	assert.Equal(t, 1, stored)

	// Other scopes are unaffected.
	assert.True(t, inv.StoreIfCurrent(types.ScopeContenido, 0, func() { stored++ }))
	assert.Equal(t, 2, stored)
}

func TestInvalidator_WaitsForRunningStore(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(ctx, 0)
	inv := NewInvalidator(c, nil)
	key := Key(types.ScopeServicios, "list")

	entered := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		inv.StoreIfCurrent(types.ScopeServicios, 0, func() {
			close(entered)
			<-release
			SetJSON(ctx, c, key, []string{"viejo"}, time.Minute)
		})
	}()

	<-entered
	invalidated := make(chan struct{})
	go func() {
		inv.Invalidate(ctx, types.ScopeServicios, "terapia")
		close(invalidated)
	}()
	close(release)
	<-done
	<-invalidated

	var out []string
	assert.False(t, GetJSON(ctx, c, key, &out))
}

func TestInvalidator_NilIsNoop(t *testing.T) {
	var inv *Invalidator
	assert.NotPanics(t, func() { inv.Invalidate(context.Background(), types.ScopeRecursos, "") })
}

func TestGetJSON_UndecodableIsMiss(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(ctx, 0)
	_ = c.Set(ctx, "k", []byte("{broken"), time.Minute)

	var out map[string]string
	assert.False(t, GetJSON(ctx, c, "k", &out))
}

func TestKey(t *testing.T) {
	assert.Equal(t, "contenido:hero", Key(types.ScopeContenido, "hero"))
	assert.Equal(t, "servicios:id:terapia", Key(types.ScopeServicios, "id", "terapia"))
}
