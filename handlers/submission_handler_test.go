package handlers

import (
	"errors"
	"net/http"
	"testing"
	"time"

	apperrors "github.com/consultorio-web/consultorio-backend/errors"
	"github.com/consultorio-web/consultorio-backend/types"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func submissionRouter(subs *MockSubmissionService, dash *MockDashboardService) *gin.Engine {
	h := NewSubmissionHandler(subs, dash)
	r := newTestRouter()
	r.POST("/v1/respuestas", h.CreateSubmissionHandler)
	r.GET("/v1/admin/respuestas", h.ListSubmissionsHandler)
	r.GET("/v1/admin/respuestas/export", h.ExportSubmissionsHandler)
	r.DELETE("/v1/admin/respuestas/:id", h.DeleteSubmissionHandler)
	r.GET("/v1/admin/estadisticas", h.StatsHandler)
	r.GET("/api/actividad", h.RecentActivityHandler)
	r.GET("/api/respuestas", h.AllSubmissionsHandler)
	return r
}

func TestCreateSubmissionHandler(t *testing.T) {
	req := types.SubmissionCreate{
		ServicioID:   "terapia",
		FormularioID: "contacto",
		Respuestas:   map[string]string{"nombre": "Ana", "email": "ana@example.com"},
	}

	t.Run("created", func(t *testing.T) {
		subs := new(MockSubmissionService)
		subs.On("Create", mock.Anything, req).Return(&types.FormSubmission{
			ID: "s1", ServicioID: req.ServicioID, FormularioID: req.FormularioID, Respuestas: req.Respuestas,
		}, nil)

		w := doJSON(submissionRouter(subs, nil), http.MethodPost, "/v1/respuestas", req)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), `"id":"s1"`)
	})

	t.Run("invalid answers", func(t *testing.T) {
		subs := new(MockSubmissionService)
		subs.On("Create", mock.Anything, req).Return(nil, apperrors.ValidationFailed("Invalid answers", "email: invalid email"))

		w := doJSON(submissionRouter(subs, nil), http.MethodPost, "/v1/respuestas", req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "email: invalid email", decodeError(t, w).Details)
	})

	t.Run("missing answers", func(t *testing.T) {
		subs := new(MockSubmissionService)
		w := doJSON(submissionRouter(subs, nil), http.MethodPost, "/v1/respuestas",
			map[string]string{"servicio_id": "terapia", "formulario_id": "contacto"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		subs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestListSubmissionsHandler_Filters(t *testing.T) {
	subs := new(MockSubmissionService)
	filter := types.SubmissionFilter{ServicioID: "terapia", Fecha: types.DateRangeWeek, Busqueda: "ana"}
	subs.On("List", mock.Anything, filter).Return([]*types.FormSubmission{{ID: "s1"}}, nil)

	w := doJSON(submissionRouter(subs, nil), http.MethodGet, "/v1/admin/respuestas?servicio=terapia&fecha=week&busqueda=ana", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"s1"`)
	subs.AssertExpectations(t)
}

func TestExportSubmissionsHandler(t *testing.T) {
	subs := new(MockSubmissionService)
	csv := []byte("\"Fecha\",\"Servicio\",\"Formulario\",\"Respuestas\"\n")
	subs.On("ExportCSV", mock.Anything, types.SubmissionFilter{Fecha: types.DateRangeMonth}).
		Return(csv, "respuestas_formularios_2024-05-10.csv", nil)

	w := doJSON(submissionRouter(subs, nil), http.MethodGet, "/v1/admin/respuestas/export?fecha=month", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="respuestas_formularios_2024-05-10.csv"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, string(csv), w.Body.String())
}

func TestExportSubmissionsHandler_BadRange(t *testing.T) {
	subs := new(MockSubmissionService)
	subs.On("ExportCSV", mock.Anything, mock.Anything).
		Return(nil, "", apperrors.ValidationFailed("Invalid date range", "fecha must be one of all, today, week, month"))

	w := doJSON(submissionRouter(subs, nil), http.MethodGet, "/v1/admin/respuestas/export?fecha=year", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, w.Header().Get("Content-Disposition"))
}

func TestDashboardEndpoints(t *testing.T) {
	subs := new(MockSubmissionService)
	dash := new(MockDashboardService)
	at := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
	subs.On("RecentActivity", mock.Anything, 5).Return([]types.Activity{
		{ID: "s1", ServicioID: "terapia", CreatedAt: at, Nombre: "Ana", Email: "ana@example.com"},
	}, nil)
	subs.On("List", mock.Anything, types.SubmissionFilter{}).Return([]*types.FormSubmission{}, nil)
	dash.On("Stats", mock.Anything).Return(&types.DashboardStats{Contenido: 13, Servicios: 3, Recursos: 2, Items: 5, Respuestas: 8}, nil)

	r := submissionRouter(subs, dash)

	w := doJSON(r, http.MethodGet, "/api/actividad", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `{"actividad":[{"id":"s1"`)

	w = doJSON(r, http.MethodGet, "/api/respuestas", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"respuestas":[]}`, w.Body.String())

	w = doJSON(r, http.MethodGet, "/v1/admin/estadisticas", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"contenido":13,"servicios":3,"recursos":2,"items":5,"respuestas":8}`, w.Body.String())
}

func TestDeleteSubmissionHandler_DatabaseError(t *testing.T) {
	subs := new(MockSubmissionService)
	subs.On("Delete", mock.Anything, "s1").Return(apperrors.NewDatabaseError(errors.New("connection reset")))

	w := doJSON(submissionRouter(subs, nil), http.MethodDelete, "/v1/admin/respuestas/s1", nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection reset")
}
