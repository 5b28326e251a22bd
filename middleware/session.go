package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/consultorio-web/consultorio-backend/config"
	apperrors "github.com/consultorio-web/consultorio-backend/errors"
	"github.com/consultorio-web/consultorio-backend/internal/auth"
	"github.com/consultorio-web/consultorio-backend/logger"
	"github.com/gin-gonic/gin"
)

// SessionClaimsKey holds the validated *auth.SessionClaims on the gin context.
const SessionClaimsKey = "session_claims"

// SessionValidator is satisfied by *auth.SessionManager.
type SessionValidator interface {
	Validate(ctx context.Context, token string) (*auth.SessionClaims, error)
}

// SessionAuth admits requests carrying a valid admin session token in the
// Authorization header.
func SessionAuth(sessions SessionValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			_ = c.Error(apperrors.AuthenticationFailed("Authorization required"))
			c.Abort()
			return
		}

		claims, err := sessions.Validate(c.Request.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrSessionExpired), errors.Is(err, auth.ErrSessionRevoked):
				_ = c.Error(apperrors.AuthenticationFailed("Your session has expired"))
			case errors.Is(err, auth.ErrInvalidSession):
				logger.GetLogger().Warnw("Rejected admin token",
					"error", err,
					"path", c.Request.URL.Path,
					"client_ip", c.ClientIP())
				_ = c.Error(apperrors.AuthenticationFailed("Invalid authentication token"))
			default:
				_ = c.Error(apperrors.Wrap(err, apperrors.ServerError, "Failed to check session"))
			}
			c.Abort()
			return
		}

		c.Set(SessionClaimsKey, claims)
		c.Set(logger.OperatorKey, claims.Operator)
		c.Next()
	}
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

// GetSessionClaims returns the claims set by SessionAuth.
func GetSessionClaims(c *gin.Context) (*auth.SessionClaims, bool) {
	v, ok := c.Get(SessionClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.SessionClaims)
	return claims, ok
}

// RequireSecrets rejects requests to data endpoints when the deployment is
// missing its database or project credentials.
func RequireSecrets(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cfg.DataSecretsConfigured() {
			logger.GetLogger().Errorw("Data endpoint called without credentials configured", "path", c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Supabase env vars not set"})
			return
		}
		c.Next()
	}
}
