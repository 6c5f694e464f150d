package models

import "time"

// LoginState is the position of a login attempt in the MFA state machine.
type LoginState int

const (
	StateUnauthenticated LoginState = iota
	StatePasswordVerified
	StateAuthenticated
	StateRejected
)

func (s LoginState) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StatePasswordVerified:
		return "password_verified"
	case StateAuthenticated:
		return "authenticated"
	case StateRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Attempt is the caller-visible view of a pending login. It never carries
// the one-time code.
type Attempt struct {
	ID        string
	Username  string
	State     LoginState
	ExpiresAt time.Time
}

// Session is an authenticated login. Ledger calls are authorised by the
// token minted for it, never by the raw username.
type Session struct {
	ID        string
	Username  string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
