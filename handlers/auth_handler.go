package handlers

import (
	"errors"
	"net/http"

	apperrors "github.com/consultorio-web/consultorio-backend/errors"
	"github.com/consultorio-web/consultorio-backend/internal/auth"
	"github.com/consultorio-web/consultorio-backend/logger"
	"github.com/consultorio-web/consultorio-backend/middleware"
	"github.com/consultorio-web/consultorio-backend/types"
	"github.com/gin-gonic/gin"
)

// AuthHandler handles admin login and session endpoints
type AuthHandler struct {
	login    LoginService
	sessions SessionRevoker
}

func NewAuthHandler(login LoginService, sessions SessionRevoker) *AuthHandler {
	return &AuthHandler{login: login, sessions: sessions}
}

// LoginHandler exchanges the admin password for a session token.
// POST /api/login
func (h *AuthHandler) LoginHandler(c *gin.Context) {
	log := logger.GetLogger()

	var req types.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.LoginResponse{Success: false, Error: "Invalid request"})
		return
	}

	resp, err := h.login.Login(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			log.Infow("Admin login rejected", "username", req.Username, "client_ip", c.ClientIP())
			c.JSON(http.StatusUnauthorized, types.LoginResponse{Success: false, Error: "Invalid password"})
			return
		}
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && appErr.Type == apperrors.ConfigurationError {
			log.Errorw("Admin login unavailable", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": appErr.Message})
			return
		}
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// SessionHandler reports the state of the caller's session.
// GET /v1/admin/session
func (h *AuthHandler) SessionHandler(c *gin.Context) {
	claims, ok := middleware.GetSessionClaims(c)
	if !ok {
		_ = c.Error(apperrors.AuthenticationFailed("Authorization required"))
		return
	}
	c.JSON(http.StatusOK, types.Session{
		Authenticated: true,
		Operator:      claims.Operator,
		ExpiresAt:     claims.ExpiresAtMillis(),
	})
}

// LogoutHandler revokes the caller's token until it would have expired.
// POST /v1/admin/logout
func (h *AuthHandler) LogoutHandler(c *gin.Context) {
	claims, ok := middleware.GetSessionClaims(c)
	if !ok {
		_ = c.Error(apperrors.AuthenticationFailed("Authorization required"))
		return
	}
	if err := h.sessions.Revoke(c.Request.Context(), claims); err != nil {
		_ = c.Error(apperrors.Wrap(err, apperrors.ServerError, "Failed to end session"))
		return
	}
	logger.GetLogger().Infow("Admin session closed", "operator", claims.Operator)
	c.JSON(http.StatusOK, types.Session{Authenticated: false})
}
