package dto

import (
	"time"

	"github.com/spec-kit/logistics-console/internal/domain"
)

// RegisterRequest payload for customer signup.
type RegisterRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	FullName        string `json:"full_name"`
}

// ConfirmEmailRequest payload.
type ConfirmEmailRequest struct {
	Token string `json:"token"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionUser describes the identity bound to the browser session.
type SessionUser struct {
	ID    string             `json:"id"`
	Email string             `json:"email"`
	Role  domain.Role        `json:"role"`
	Kind  domain.SessionKind `json:"session_kind"`
}

// LoginResponse is returned when a session was created.
type LoginResponse struct {
	Status    domain.LoginStatus `json:"status"`
	Message   string             `json:"message,omitempty"`
	User      SessionUser        `json:"user"`
	ExpiresAt time.Time          `json:"expires_at"`
}

// SetInitialPasswordRequest payload.
type SetInitialPasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

// ForgotPasswordRequest payload.
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ForgotPasswordResponse mirrors the backend answer.
type ForgotPasswordResponse struct {
	Message    string `json:"message"`
	UserExists bool   `json:"user_exists"`
}

// ResetPasswordRequest payload.
type ResetPasswordRequest struct {
	Token           string `json:"token"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// MessageResponse is a plain acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

// SessionUserFrom builds the session view.
func SessionUserFrom(session *domain.Session) SessionUser {
	return SessionUser{
		ID:    session.UserID,
		Email: session.Email,
		Role:  session.Role,
		Kind:  session.Kind,
	}
}
