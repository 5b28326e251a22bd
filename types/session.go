package types

import "time"

type SessionState string

const (
	SessionLoggedOut SessionState = "logged_out"
	SessionLoggedIn  SessionState = "logged_in"
)

// Session is the client-held pair of authenticated flag and expiry.
type Session struct {
	Authenticated bool   `json:"authenticated"`
	Operator      string `json:"operator,omitempty"`
	// ExpiresAt is epoch milliseconds.
	ExpiresAt int64 `json:"expires_at"`
}

// State reports LoggedIn only while the flag is set and expiry is in the future.
func (s Session) State(now time.Time) SessionState {
	if s.Authenticated && s.ExpiresAt > now.UnixMilli() {
		return SessionLoggedIn
	}
	return SessionLoggedOut
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Success   bool   `json:"success"`
	Token     string `json:"token,omitempty"`
	ExpiresAt int64  `json:"expires_at,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Operator is an admin account with its own password.
type Operator struct {
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

type OperatorCreate struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}
