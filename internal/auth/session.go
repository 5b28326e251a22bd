// Package auth issues and checks admin session tokens and operator
// passwords.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/consultorio-web/consultorio-backend/internal/cache"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const sessionIssuer = "consultorio-admin"

var (
	ErrInvalidSession = errors.New("invalid session token")
	ErrSessionExpired = errors.New("session expired")
	ErrSessionRevoked = errors.New("session revoked")
)

// SessionClaims are the claims carried by an admin session token.
// Operator is empty for sessions opened with the shared password.
type SessionClaims struct {
	Operator string `json:"operator,omitempty"`
	jwt.RegisteredClaims
}

// ExpiresAtMillis returns the expiry as epoch milliseconds.
func (c *SessionClaims) ExpiresAtMillis() int64 {
	if c.ExpiresAt == nil {
		return 0
	}
	return c.ExpiresAt.UnixMilli()
}

// Revoker remembers logged-out token ids until they would have expired.
type Revoker interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type SessionManager struct {
	secret  []byte
	ttl     time.Duration
	revoker Revoker
	now     func() time.Time
}

func NewSessionManager(secret string, ttl time.Duration, revoker Revoker) *SessionManager {
	return &SessionManager{
		secret:  []byte(secret),
		ttl:     ttl,
		revoker: revoker,
		now:     time.Now,
	}
}

// Issue signs a new HS256 session token that expires after the configured TTL.
func (m *SessionManager) Issue(operator string) (string, time.Time, error) {
	if len(m.secret) == 0 {
		return "", time.Time{}, errors.New("session secret is not configured")
	}
	now := m.now()
	expiresAt := now.Add(m.ttl)
	claims := SessionClaims{
		Operator: operator,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    sessionIssuer,
			Subject:   operator,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session token: %w", err)
	}
	return signed, expiresAt, nil
}

// Validate checks signature, issuer, expiry and revocation.
func (m *SessionManager) Validate(ctx context.Context, tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (interface{}, error) {
			return m.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(sessionIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrSessionExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	if !token.Valid {
		return nil, ErrInvalidSession
	}

	if m.revoker != nil && claims.ID != "" {
		revoked, err := m.revoker.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, fmt.Errorf("check session revocation: %w", err)
		}
		if revoked {
			return nil, ErrSessionRevoked
		}
	}
	return claims, nil
}

// Revoke ends a session before its expiry.
func (m *SessionManager) Revoke(ctx context.Context, claims *SessionClaims) error {
	if m.revoker == nil || claims == nil || claims.ID == "" || claims.ExpiresAt == nil {
		return nil
	}
	return m.revoker.Revoke(ctx, claims.ID, claims.ExpiresAt.Time)
}

// CacheRevoker stores revoked token ids in the shared cache with a TTL equal
// to the token's remaining lifetime.
type CacheRevoker struct {
	cache cache.Cache
	now   func() time.Time
}

func NewCacheRevoker(c cache.Cache) *CacheRevoker {
	return &CacheRevoker{cache: c, now: time.Now}
}

func revokedKey(tokenID string) string {
	return "sesion:revocada:" + tokenID
}

func (r *CacheRevoker) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	ttl := until.Sub(r.now())
	if ttl <= 0 {
		return nil
	}
	return r.cache.Set(ctx, revokedKey(tokenID), []byte("1"), ttl)
}

func (r *CacheRevoker) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	_, found, err := r.cache.Get(ctx, revokedKey(tokenID))
	return found, err
}
