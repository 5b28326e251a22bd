package handlers

import (
	"net/http"

	"github.com/consultorio-web/consultorio-backend/types"
	"github.com/gin-gonic/gin"
)

// ResourceHandler serves the resource library and its items.
type ResourceHandler struct {
	resources ResourceServiceInterface
}

func NewResourceHandler(resources ResourceServiceInterface) *ResourceHandler {
	return &ResourceHandler{resources: resources}
}

// GET /v1/recursos
func (h *ResourceHandler) ListResourcesHandler(c *gin.Context) {
	resources, err := h.resources.ListWithItems(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resources)
}

// POST /v1/admin/recursos
func (h *ResourceHandler) CreateResourceHandler(c *gin.Context) {
	var req types.ResourceCreate
	if !bindJSONOrError(c, &req) {
		return
	}
	res, err := h.resources.CreateResource(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// PUT /v1/admin/recursos/:id
func (h *ResourceHandler) UpdateResourceHandler(c *gin.Context) {
	id, ok := pathParam(c, "id")
	if !ok {
		return
	}
	var req types.ResourceUpdate
	if !bindJSONOrError(c, &req) {
		return
	}
	res, err := h.resources.UpdateResource(c.Request.Context(), id, req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// DeleteResourceHandler removes the resource, its items and their hosted files.
// DELETE /v1/admin/recursos/:id
func (h *ResourceHandler) DeleteResourceHandler(c *gin.Context) {
	id, ok := pathParam(c, "id")
	if !ok {
		return
	}
	if err := h.resources.DeleteResource(c.Request.Context(), id); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /v1/admin/recursos/:id/items
func (h *ResourceHandler) CreateItemHandler(c *gin.Context) {
	recursoID, ok := pathParam(c, "id")
	if !ok {
		return
	}
	var req types.ResourceItemCreate
	if !bindJSONOrError(c, &req) {
		return
	}
	item, err := h.resources.CreateItem(c.Request.Context(), recursoID, req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

// PUT /v1/admin/items/:itemId
func (h *ResourceHandler) UpdateItemHandler(c *gin.Context) {
	id, ok := pathParam(c, "itemId")
	if !ok {
		return
	}
	var req types.ResourceItemUpdate
	if !bindJSONOrError(c, &req) {
		return
	}
	item, err := h.resources.UpdateItem(c.Request.Context(), id, req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// DELETE /v1/admin/items/:itemId
func (h *ResourceHandler) DeleteItemHandler(c *gin.Context) {
	id, ok := pathParam(c, "itemId")
	if !ok {
		return
	}
	if err := h.resources.DeleteItem(c.Request.Context(), id); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}
