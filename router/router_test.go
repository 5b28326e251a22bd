package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/consultorio-web/consultorio-backend/config"
	"github.com/consultorio-web/consultorio-backend/handlers"
	"github.com/consultorio-web/consultorio-backend/internal/auth"
	"github.com/consultorio-web/consultorio-backend/internal/cache"
	"github.com/consultorio-web/consultorio-backend/types"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type upHealth struct{}

func (upHealth) CheckHealth(context.Context) types.HealthCheck {
	return types.HealthCheck{Status: types.HealthStatusUp}
}

func testRouter(t *testing.T, cfg *config.Config) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	sessions := auth.NewSessionManager(strings.Repeat("k", 32), 24*time.Hour, auth.NewCacheRevoker(cache.NewMemoryCache(context.Background(), 0)))
	authenticator := auth.NewAuthenticator("secreto", nil, sessions)

	return SetupRouter(Dependencies{
		Config:            cfg,
		Sessions:          sessions,
		HealthHandler:     handlers.NewHealthHandler(upHealth{}),
		AuthHandler:       handlers.NewAuthHandler(authenticator, sessions),
		ContentHandler:    handlers.NewContentHandler(nil),
		CatalogHandler:    handlers.NewCatalogHandler(nil, nil),
		ResourceHandler:   handlers.NewResourceHandler(nil),
		FileHandler:       handlers.NewFileHandler(nil),
		SubmissionHandler: handlers.NewSubmissionHandler(nil, nil),
		AdminHandler:      handlers.NewAdminHandler(nil, nil),
	})
}

func serve(r http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func login(t *testing.T, r http.Handler) types.LoginResponse {
	t.Helper()
	w := serve(r, http.MethodPost, "/api/login", "", `{"password":"secreto"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var resp types.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	return resp
}

func TestSetupRouter_PublicEndpoints(t *testing.T) {
	r := testRouter(t, &config.Config{})

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/health/liveness", "", "").Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/health/readiness", "", "").Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/metrics", "", "").Code)
	assert.Equal(t, http.StatusNotFound, serve(r, http.MethodGet, "/v1/nada", "", "").Code)

	w := serve(r, http.MethodGet, "/health/liveness", "", "")
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
}

func TestSetupRouter_AdminRequiresSession(t *testing.T) {
	r := testRouter(t, &config.Config{})

	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/v1/admin/session"},
		{http.MethodPost, "/v1/admin/contenido"},
		{http.MethodDelete, "/v1/admin/recursos/guias"},
		{http.MethodPost, "/v1/admin/archivos"},
		{http.MethodGet, "/v1/admin/respuestas/export"},
		{http.MethodGet, "/v1/admin/limpieza"},
	} {
		w := serve(r, route.method, route.path, "", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", route.method, route.path)
	}
}

func TestSetupRouter_LoginSessionLogout(t *testing.T) {
	r := testRouter(t, &config.Config{})

	w := serve(r, http.MethodPost, "/api/login", "", `{"password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"success":false,"error":"Invalid password"}`, w.Body.String())

	before := time.Now()
	resp := login(t, r)
	assert.InDelta(t, before.Add(24*time.Hour).UnixMilli(), resp.ExpiresAt, float64(time.Minute.Milliseconds()))

	w = serve(r, http.MethodGet, "/v1/admin/session", resp.Token, "")
	require.Equal(t, http.StatusOK, w.Code)
	var session types.Session
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &session))
	assert.Equal(t, types.SessionLoggedIn, session.State(time.Now()))

	assert.Equal(t, http.StatusOK, serve(r, http.MethodPost, "/v1/admin/logout", resp.Token, "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/v1/admin/session", resp.Token, "").Code)
}

func TestSetupRouter_DataEndpointsNeedSecrets(t *testing.T) {
	r := testRouter(t, &config.Config{Database: config.DatabaseConfig{URL: "postgres://localhost/consultorio"}})
	token := login(t, r).Token

	for _, path := range []string{"/api/actividad", "/api/respuestas"} {
		for _, tok := range []string{token, ""} {
			w := serve(r, http.MethodGet, path, tok, "")
			assert.Equal(t, http.StatusInternalServerError, w.Code, "%s with token %q", path, tok)
			assert.JSONEq(t, `{"error":"Supabase env vars not set"}`, w.Body.String())
		}
	}
}

func TestSetupRouter_DataEndpointsRequireSession(t *testing.T) {
	r := testRouter(t, &config.Config{
		Database: config.DatabaseConfig{URL: "postgres://localhost/consultorio"},
		Supabase: config.SupabaseConfig{URL: "https://proyecto.supabase.co", ServiceKey: "service-key"},
	})

	for _, path := range []string{"/api/actividad", "/api/respuestas"} {
		w := serve(r, http.MethodGet, path, "", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestSetupRouter_CORS(t *testing.T) {
	cfg := &config.Config{Server: config.ServerConfig{AllowedOrigins: []string{"https://agustinagarcia.com"}}}
	r := testRouter(t, cfg)

	req := httptest.NewRequest(http.MethodGet, "/health/liveness", nil)
	req.Header.Set("Origin", "https://agustinagarcia.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "https://agustinagarcia.com", w.Header().Get("Access-Control-Allow-Origin"))

	req.Header.Set("Origin", "https://otro.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
