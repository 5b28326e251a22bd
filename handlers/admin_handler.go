package handlers

import (
	"net/http"

	"github.com/consultorio-web/consultorio-backend/types"
	"github.com/gin-gonic/gin"
)

// AdminHandler covers operator accounts and the storage cleanup queue.
type AdminHandler struct {
	operators OperatorServiceInterface
	cleanup   CleanupServiceInterface
}

func NewAdminHandler(operators OperatorServiceInterface, cleanup CleanupServiceInterface) *AdminHandler {
	return &AdminHandler{operators: operators, cleanup: cleanup}
}

// GET /v1/admin/operadores
func (h *AdminHandler) ListOperatorsHandler(c *gin.Context) {
	ops, err := h.operators.List(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ops)
}

// POST /v1/admin/operadores
func (h *AdminHandler) CreateOperatorHandler(c *gin.Context) {
	var req types.OperatorCreate
	if !bindJSONOrError(c, &req) {
		return
	}
	op, err := h.operators.Create(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, op)
}

// DELETE /v1/admin/operadores/:username
func (h *AdminHandler) DeleteOperatorHandler(c *gin.Context) {
	username, ok := pathParam(c, "username")
	if !ok {
		return
	}
	if err := h.operators.Delete(c.Request.Context(), username); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListCleanupHandler returns files whose deletion is still pending.
// GET /v1/admin/limpieza
func (h *AdminHandler) ListCleanupHandler(c *gin.Context) {
	records, err := h.cleanup.List(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, records)
}

// ProcessCleanupHandler retries pending deletions now instead of waiting for
// the background loop.
// POST /v1/admin/limpieza/procesar
func (h *AdminHandler) ProcessCleanupHandler(c *gin.Context) {
	result, err := h.cleanup.ProcessPending(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, result)
}
