package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apperrors "github.com/consultorio-web/consultorio-backend/errors"
	"github.com/consultorio-web/consultorio-backend/middleware"
	"github.com/consultorio-web/consultorio-backend/types"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.ErrorHandler())
	return r
}

func doJSON(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) middleware.ErrorResponse {
	t.Helper()
	var body middleware.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func contentRouter(svc *MockContentService) *gin.Engine {
	h := NewContentHandler(svc)
	r := newTestRouter()
	r.GET("/v1/contenido", h.ListContentHandler)
	r.GET("/v1/contenido/:id", h.GetContentHandler)
	r.POST("/v1/admin/contenido", h.CreateContentHandler)
	r.PUT("/v1/admin/contenido/:id", h.UpdateContentHandler)
	r.DELETE("/v1/admin/contenido/:id", h.DeleteContentHandler)
	return r
}

func TestListContentHandler_SectionFilter(t *testing.T) {
	svc := new(MockContentService)
	items := []*types.ContentItem{
		{ID: "hero-title", Seccion: "hero", Tipo: types.ContentTypeTitulo, Contenido: "Hola", Orden: 1},
		{ID: "hero-subtitle", Seccion: "hero", Tipo: types.ContentTypeSubtitulo, Contenido: "Bienvenida", Orden: 2},
	}
	svc.On("List", mock.Anything, "hero").Return(items, nil)

	w := doJSON(contentRouter(svc), http.MethodGet, "/v1/contenido?seccion=hero", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var got []types.ContentItem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "hero-title", got[0].ID)
	svc.AssertExpectations(t)
}

func TestGetContentHandler_NotFound(t *testing.T) {
	svc := new(MockContentService)
	svc.On("Get", mock.Anything, "missing").Return(nil, apperrors.NotFound("Content", "missing"))

	w := doJSON(contentRouter(svc), http.MethodGet, "/v1/contenido/missing", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, string(apperrors.NotFoundError), decodeError(t, w).Type)
}

func TestCreateContentHandler(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		svc := new(MockContentService)
		req := types.ContentCreate{ID: "about-p1", Seccion: "about", Tipo: types.ContentTypeParrafo, Contenido: "Texto"}
		now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
		svc.On("Create", mock.Anything, req).Return(&types.ContentItem{
			ID: req.ID, Seccion: req.Seccion, Tipo: req.Tipo, Contenido: req.Contenido, CreatedAt: now, UpdatedAt: now,
		}, nil)

		w := doJSON(contentRouter(svc), http.MethodPost, "/v1/admin/contenido", req)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), `"contenido":"Texto"`)
		svc.AssertExpectations(t)
	})

	t.Run("missing fields rejected before the service", func(t *testing.T) {
		svc := new(MockContentService)
		w := doJSON(contentRouter(svc), http.MethodPost, "/v1/admin/contenido", map[string]string{"id": "x"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid request payload", decodeError(t, w).Message)
		svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("duplicate id", func(t *testing.T) {
		svc := new(MockContentService)
		svc.On("Create", mock.Anything, mock.Anything).Return(nil, apperrors.NewConflictError("Content already exists", "ID: hero-title"))

		w := doJSON(contentRouter(svc), http.MethodPost, "/v1/admin/contenido",
			types.ContentCreate{ID: "hero-title", Seccion: "hero", Tipo: types.ContentTypeTitulo, Contenido: "x"})

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestUpdateContentHandler(t *testing.T) {
	svc := new(MockContentService)
	svc.On("UpdateContenido", mock.Anything, "hero-title", "Nuevo").
		Return(&types.ContentItem{ID: "hero-title", Contenido: "Nuevo"}, nil)

	r := contentRouter(svc)
	w := doJSON(r, http.MethodPut, "/v1/admin/contenido/hero-title", map[string]string{"contenido": "Nuevo"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"contenido":"Nuevo"`)

	w = doJSON(r, http.MethodPut, "/v1/admin/contenido/hero-title", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNumberOfCalls(t, "UpdateContenido", 1)
}

func TestDeleteContentHandler(t *testing.T) {
	svc := new(MockContentService)
	svc.On("Delete", mock.Anything, "hero-title").Return(nil)

	w := doJSON(contentRouter(svc), http.MethodDelete, "/v1/admin/contenido/hero-title", nil)

	assert.Equal(t, http.StatusNoContent, w.Code)
	svc.AssertExpectations(t)
}
