package handlers

import (
	"fmt"
	"net/http"

	apperrors "github.com/consultorio-web/consultorio-backend/errors"
	"github.com/consultorio-web/consultorio-backend/types"
	"github.com/gin-gonic/gin"
)

const recentActivityLimit = 5

// SubmissionHandler accepts visitor intake forms and serves them to admins.
type SubmissionHandler struct {
	submissions SubmissionServiceInterface
	dashboard   DashboardServiceInterface
}

func NewSubmissionHandler(submissions SubmissionServiceInterface, dashboard DashboardServiceInterface) *SubmissionHandler {
	return &SubmissionHandler{submissions: submissions, dashboard: dashboard}
}

// CreateSubmissionHandler validates answers against the form and stores them.
// POST /v1/respuestas
func (h *SubmissionHandler) CreateSubmissionHandler(c *gin.Context) {
	var req types.SubmissionCreate
	if !bindJSONOrError(c, &req) {
		return
	}
	sub, err := h.submissions.Create(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, sub)
}

// ListSubmissionsHandler supports ?servicio=, ?fecha= and ?busqueda= filters.
// GET /v1/admin/respuestas
func (h *SubmissionHandler) ListSubmissionsHandler(c *gin.Context) {
	filter, ok := bindFilter(c)
	if !ok {
		return
	}
	subs, err := h.submissions.List(c.Request.Context(), filter)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, subs)
}

// ExportSubmissionsHandler streams the filtered submissions as a CSV download.
// GET /v1/admin/respuestas/export
func (h *SubmissionHandler) ExportSubmissionsHandler(c *gin.Context) {
	filter, ok := bindFilter(c)
	if !ok {
		return
	}
	data, filename, err := h.submissions.ExportCSV(c.Request.Context(), filter)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

// DELETE /v1/admin/respuestas/:id
func (h *SubmissionHandler) DeleteSubmissionHandler(c *gin.Context) {
	id, ok := pathParam(c, "id")
	if !ok {
		return
	}
	if err := h.submissions.Delete(c.Request.Context(), id); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RecentActivityHandler returns the last few submissions flattened for the
// dashboard feed.
// GET /api/actividad
func (h *SubmissionHandler) RecentActivityHandler(c *gin.Context) {
	activity, err := h.submissions.RecentActivity(c.Request.Context(), recentActivityLimit)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"actividad": activity})
}

// AllSubmissionsHandler is the unfiltered submission list used by the
// dashboard.
// GET /api/respuestas
func (h *SubmissionHandler) AllSubmissionsHandler(c *gin.Context) {
	subs, err := h.submissions.List(c.Request.Context(), types.SubmissionFilter{})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"respuestas": subs})
}

// GET /v1/admin/estadisticas
func (h *SubmissionHandler) StatsHandler(c *gin.Context) {
	stats, err := h.dashboard.Stats(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func bindFilter(c *gin.Context) (types.SubmissionFilter, bool) {
	var filter types.SubmissionFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		_ = c.Error(apperrors.ValidationFailed("Invalid filter", err.Error()))
		return filter, false
	}
	return filter, true
}
