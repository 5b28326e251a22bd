package handlers

import (
	"strings"

	apperrors "github.com/consultorio-web/consultorio-backend/errors"
	"github.com/gin-gonic/gin"
)

// bindJSONOrError binds the JSON body and records a validation error when
// binding fails. Returns false if the caller should return.
func bindJSONOrError(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		_ = c.Error(apperrors.ValidationFailed("Invalid request payload", err.Error()))
		return false
	}
	return true
}

// pathParam returns the trimmed path parameter, recording a validation error
// when it is blank.
func pathParam(c *gin.Context, name string) (string, bool) {
	v := strings.TrimSpace(c.Param(name))
	if v == "" {
		_ = c.Error(apperrors.ValidationFailed("Missing identifier", name+" is required"))
		return "", false
	}
	return v, true
}
