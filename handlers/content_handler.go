package handlers

import (
	"net/http"

	"github.com/consultorio-web/consultorio-backend/types"
	"github.com/gin-gonic/gin"
)

// ContentHandler serves the editable page text.
type ContentHandler struct {
	content ContentServiceInterface
}

func NewContentHandler(content ContentServiceInterface) *ContentHandler {
	return &ContentHandler{content: content}
}

// ListContentHandler returns every fragment, or one section's fragments when
// ?seccion= is given.
// GET /v1/contenido
func (h *ContentHandler) ListContentHandler(c *gin.Context) {
	items, err := h.content.List(c.Request.Context(), c.Query("seccion"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// GET /v1/contenido/:id
func (h *ContentHandler) GetContentHandler(c *gin.Context) {
	id, ok := pathParam(c, "id")
	if !ok {
		return
	}
	item, err := h.content.Get(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// POST /v1/admin/contenido
func (h *ContentHandler) CreateContentHandler(c *gin.Context) {
	var req types.ContentCreate
	if !bindJSONOrError(c, &req) {
		return
	}
	item, err := h.content.Create(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

// UpdateContentHandler replaces only the text of a fragment.
// PUT /v1/admin/contenido/:id
func (h *ContentHandler) UpdateContentHandler(c *gin.Context) {
	id, ok := pathParam(c, "id")
	if !ok {
		return
	}
	var req types.ContentUpdate
	if !bindJSONOrError(c, &req) {
		return
	}
	item, err := h.content.UpdateContenido(c.Request.Context(), id, *req.Contenido)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// DELETE /v1/admin/contenido/:id
func (h *ContentHandler) DeleteContentHandler(c *gin.Context) {
	id, ok := pathParam(c, "id")
	if !ok {
		return
	}
	if err := h.content.Delete(c.Request.Context(), id); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}
