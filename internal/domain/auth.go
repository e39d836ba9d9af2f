package domain

import "time"

// LoginStatus is the outcome of a login attempt.
type LoginStatus string

const (
	LoginStatusSuccess                LoginStatus = "SUCCESS"
	LoginStatusRequiredPasswordChange LoginStatus = "REQUIRED_PASSWORD_CHANGE"
	LoginStatusEmailNotVerified       LoginStatus = "EMAIL_NOT_VERIFIED"
	LoginStatusInvalidCredentials     LoginStatus = "INVALID_CREDENTIALS"
)

// SessionKind distinguishes fully authenticated sessions from the
// restricted session issued while a first password change is pending.
type SessionKind string

const (
	SessionKindFull                  SessionKind = "FULL"
	SessionKindPendingPasswordChange SessionKind = "PENDING_PASSWORD_CHANGE"
)

// Session is a browser session holding the backend credential server-side.
type Session struct {
	ID         string
	KeyHash    string
	UserID     string
	Email      string
	Role       Role
	Kind       SessionKind
	BackendJWT string
	ExpiresAt  time.Time
	CreatedAt  time.Time
	LastSeenAt time.Time
}

// Expired reports whether the session is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}
