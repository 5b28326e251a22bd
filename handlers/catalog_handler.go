package handlers

import (
	"net/http"

	"github.com/consultorio-web/consultorio-backend/types"
	"github.com/gin-gonic/gin"
)

// CatalogHandler serves services and the intake forms attached to them.
type CatalogHandler struct {
	services CatalogServiceInterface
	forms    FormServiceInterface
}

func NewCatalogHandler(services CatalogServiceInterface, forms FormServiceInterface) *CatalogHandler {
	return &CatalogHandler{services: services, forms: forms}
}

// ListServicesHandler returns the catalog with joined forms, popular first.
// GET /v1/servicios
func (h *CatalogHandler) ListServicesHandler(c *gin.Context) {
	services, err := h.services.List(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, services)
}

// GET /v1/servicios/:id
func (h *CatalogHandler) GetServiceHandler(c *gin.Context) {
	id, ok := pathParam(c, "id")
	if !ok {
		return
	}
	svc, err := h.services.Get(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, svc)
}

// POST /v1/admin/servicios
func (h *CatalogHandler) CreateServiceHandler(c *gin.Context) {
	var req types.ServiceCreate
	if !bindJSONOrError(c, &req) {
		return
	}
	svc, err := h.services.Create(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, svc)
}

// UpdateServiceHandler applies a partial update; omitted fields are kept.
// PUT /v1/admin/servicios/:id
func (h *CatalogHandler) UpdateServiceHandler(c *gin.Context) {
	id, ok := pathParam(c, "id")
	if !ok {
		return
	}
	var req types.ServiceUpdate
	if !bindJSONOrError(c, &req) {
		return
	}
	svc, err := h.services.Update(c.Request.Context(), id, req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, svc)
}

// DELETE /v1/admin/servicios/:id
func (h *CatalogHandler) DeleteServiceHandler(c *gin.Context) {
	id, ok := pathParam(c, "id")
	if !ok {
		return
	}
	if err := h.services.Delete(c.Request.Context(), id); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DiagnoseServicesHandler reports the row count, a sample row and the
// column names of the services table.
// GET /v1/admin/servicios/diagnostico
func (h *CatalogHandler) DiagnoseServicesHandler(c *gin.Context) {
	diag, err := h.services.Diagnose(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, diag)
}

// GET /v1/formularios/:id
func (h *CatalogHandler) GetFormHandler(c *gin.Context) {
	id, ok := pathParam(c, "id")
	if !ok {
		return
	}
	form, err := h.forms.Get(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, form)
}

// GET /v1/admin/formularios
func (h *CatalogHandler) ListFormsHandler(c *gin.Context) {
	forms, err := h.forms.List(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, forms)
}

// POST /v1/admin/formularios
func (h *CatalogHandler) CreateFormHandler(c *gin.Context) {
	var req types.FormDefinitionInput
	if !bindJSONOrError(c, &req) {
		return
	}
	form, err := h.forms.Create(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, form)
}

// PUT /v1/admin/formularios/:id
func (h *CatalogHandler) UpdateFormHandler(c *gin.Context) {
	id, ok := pathParam(c, "id")
	if !ok {
		return
	}
	var req types.FormDefinitionInput
	if !bindJSONOrError(c, &req) {
		return
	}
	form, err := h.forms.Update(c.Request.Context(), id, req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, form)
}

// DELETE /v1/admin/formularios/:id
func (h *CatalogHandler) DeleteFormHandler(c *gin.Context) {
	id, ok := pathParam(c, "id")
	if !ok {
		return
	}
	if err := h.forms.Delete(c.Request.Context(), id); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}
