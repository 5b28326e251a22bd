package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	apperrors "github.com/consultorio-web/consultorio-backend/errors"
	"github.com/consultorio-web/consultorio-backend/internal/store"
	"github.com/consultorio-web/consultorio-backend/logger"
	"github.com/consultorio-web/consultorio-backend/types"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for any password mismatch, including an
// unknown operator.
var ErrInvalidCredentials = errors.New("invalid password")

var dummyHash = sync.OnceValue(func() []byte {
	hash, _ := bcrypt.GenerateFromPassword([]byte("not-an-operator"), bcrypt.DefaultCost)
	return hash
})

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// OperatorLookup finds an operator account by username.
type OperatorLookup interface {
	Get(ctx context.Context, username string) (*types.Operator, error)
}

// Authenticator turns a login request into a signed session.
type Authenticator struct {
	sharedPassword string
	operators      OperatorLookup
	sessions       *SessionManager
}

func NewAuthenticator(sharedPassword string, operators OperatorLookup, sessions *SessionManager) *Authenticator {
	return &Authenticator{
		sharedPassword: sharedPassword,
		operators:      operators,
		sessions:       sessions,
	}
}

// Login checks the request against the operator's bcrypt hash when a
// username is given, otherwise against the shared admin password.
func (a *Authenticator) Login(ctx context.Context, req types.LoginRequest) (*types.LoginResponse, error) {
	username := strings.ToLower(strings.TrimSpace(req.Username))

	if username == "" {
		if a.sharedPassword == "" {
			return nil, apperrors.MissingConfiguration("Admin password not configured")
		}
		if subtle.ConstantTimeCompare([]byte(req.Password), []byte(a.sharedPassword)) != 1 {
			return nil, ErrInvalidCredentials
		}
	} else {
		if a.operators == nil {
			return nil, ErrInvalidCredentials
		}
		op, err := a.operators.Get(ctx, username)
		if errors.Is(err, store.ErrNotFound) {
			// Keep timing close to the found-operator path.
			_ = bcrypt.CompareHashAndPassword(dummyHash(), []byte(req.Password))
			return nil, ErrInvalidCredentials
		}
		if err != nil {
			return nil, apperrors.NewDatabaseError(err)
		}
		if !CheckPassword(op.PasswordHash, req.Password) {
			return nil, ErrInvalidCredentials
		}
	}

	token, expiresAt, err := a.sessions.Issue(username)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ServerError, "Failed to create session")
	}

	logger.GetLogger().Infow("Admin session opened", "operator", username, "expires_at", expiresAt.Format(time.RFC3339))
	return &types.LoginResponse{
		Success:   true,
		Token:     token,
		ExpiresAt: expiresAt.UnixMilli(),
	}, nil
}
