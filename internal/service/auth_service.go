package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/logistics-console/internal/auth"
	"github.com/spec-kit/logistics-console/internal/backend"
	"github.com/spec-kit/logistics-console/internal/config"
	"github.com/spec-kit/logistics-console/internal/domain"
	"github.com/spec-kit/logistics-console/internal/repository"
	apperrors "github.com/spec-kit/logistics-console/pkg/util/errorutil"
)

// AuthService coordinates registration, login and session lifecycle.
type AuthService struct {
	backend  AuthBackend
	sessions repository.SessionRepository
	ttl      time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// AuthDependencies encapsulates collaborators for the auth service.
type AuthDependencies struct {
	Backend  AuthBackend
	Sessions repository.SessionRepository
	Logger   *zap.Logger
	Now      func() time.Time
}

// LoginOutcome is the result of a login attempt. SessionID is set only when
// a session was created.
type LoginOutcome struct {
	Status    domain.LoginStatus
	Message   string
	SessionID string
	ExpiresAt time.Time
	Session   *domain.Session
}

// RegisterInput describes a self-service signup.
type RegisterInput struct {
	Email           string
	Password        string
	ConfirmPassword string
	FullName        string
}

// SetInitialPasswordInput describes the first password change of a new account.
type SetInitialPasswordInput struct {
	CurrentPassword string
	NewPassword     string
	ConfirmPassword string
}

// NewAuthService builds the service.
func NewAuthService(cfg config.SessionConfig, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &AuthService{
		backend:  deps.Backend,
		sessions: deps.Sessions,
		ttl:      cfg.TTL(),
		logger:   logger,
		now:      now,
	}
}

// Register creates a customer account.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (string, error) {
	errs := fieldErrors{}
	errs.require("full_name", input.FullName)
	errs.email("email", input.Email)
	errs.require("password", input.Password)
	if input.ConfirmPassword != "" && input.ConfirmPassword != input.Password {
		errs.add("confirm_password", "passwords do not match")
	}
	if err := errs.err(); err != nil {
		return "", err
	}

	out, err := s.backend.Register(ctx, backend.RegisterRequest{
		Email:    strings.TrimSpace(input.Email),
		Password: input.Password,
		FullName: strings.TrimSpace(input.FullName),
	})
	if err != nil {
		return "", err
	}
	return out.Message, nil
}

// ConfirmEmail redeems an email confirmation token.
func (s *AuthService) ConfirmEmail(ctx context.Context, token string) (string, error) {
	errs := fieldErrors{}
	errs.require("token", token)
	if err := errs.err(); err != nil {
		return "", err
	}
	out, err := s.backend.ConfirmEmail(ctx, token)
	if err != nil {
		return "", err
	}
	return out.Message, nil
}

// Login authenticates against the backend. SUCCESS creates a full session,
// REQUIRED_PASSWORD_CHANGE a pending one; other statuses create none.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginOutcome, error) {
	errs := fieldErrors{}
	errs.require("email", email)
	errs.require("password", password)
	if err := errs.err(); err != nil {
		return nil, err
	}

	result, err := s.backend.Login(ctx, strings.TrimSpace(email), password)
	if err != nil {
		return nil, err
	}

	outcome := &LoginOutcome{Status: result.Status, Message: result.Message}
	var kind domain.SessionKind
	switch result.Status {
	case domain.LoginStatusSuccess:
		kind = domain.SessionKindFull
	case domain.LoginStatusRequiredPasswordChange:
		kind = domain.SessionKindPendingPasswordChange
	default:
		return outcome, nil
	}

	session, err := s.newSession(result, kind)
	if err != nil {
		return nil, err
	}
	sessionID := auth.NewSessionID()
	session.KeyHash = auth.HashSessionID(sessionID)
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, apperrors.NewServiceUnavailable("session store unavailable", err)
	}

	s.logger.Info("session created",
		zap.String("session_id", session.ID),
		zap.String("user_id", session.UserID),
		zap.String("kind", string(kind)))

	outcome.SessionID = sessionID
	outcome.ExpiresAt = session.ExpiresAt
	outcome.Session = session
	return outcome, nil
}

func (s *AuthService) newSession(result *backend.LoginResult, kind domain.SessionKind) (*domain.Session, error) {
	session := &domain.Session{
		Kind:       kind,
		BackendJWT: result.Token,
		ExpiresAt:  s.now().Add(s.ttl),
	}

	claims, err := auth.DecodeClaims(result.Token)
	switch {
	case err == nil:
		session.UserID = claims.AccountID()
		session.Email = claims.Email
		session.Role = claims.Role
		if exp := claims.Expiry(); !exp.IsZero() && exp.Before(session.ExpiresAt) {
			session.ExpiresAt = exp
		}
	case result.User != nil && result.User.ID != "" && result.User.Role.Valid():
		session.UserID = result.User.ID
		session.Email = result.User.Email
		session.Role = result.User.Role
	default:
		return nil, apperrors.NewUpstreamError("backend issued an unreadable token", err)
	}

	if result.User != nil && session.Email == "" {
		session.Email = result.User.Email
	}
	return session, nil
}

// SetInitialPassword replaces the temporary password of a pending session.
// On success the pending session is ended and the user signs in again with
// the new password.
func (s *AuthService) SetInitialPassword(ctx context.Context, session *domain.Session, input SetInitialPasswordInput) (string, error) {
	errs := fieldErrors{}
	errs.require("current_password", input.CurrentPassword)
	errs.require("new_password", input.NewPassword)
	errs.require("confirm_password", input.ConfirmPassword)
	if input.NewPassword != "" && len(input.NewPassword) < minPasswordLength {
		errs.add("new_password", "new_password must be at least 8 characters")
	}
	if input.ConfirmPassword != "" && input.ConfirmPassword != input.NewPassword {
		errs.add("confirm_password", "passwords do not match")
	}
	if input.NewPassword != "" && input.NewPassword == input.CurrentPassword {
		errs.add("new_password", "new_password must differ from the current password")
	}
	if err := errs.err(); err != nil {
		return "", err
	}

	out, err := s.backend.SetInitialPassword(ctx, session.BackendJWT, backend.SetInitialPasswordRequest{
		UserID:          session.UserID,
		CurrentPassword: input.CurrentPassword,
		NewPassword:     input.NewPassword,
		ConfirmPassword: input.ConfirmPassword,
	})
	if err != nil {
		return "", err
	}

	if err := s.sessions.Delete(ctx, session.KeyHash); err != nil {
		s.logger.Warn("failed to end pending session", zap.String("session_id", session.ID), zap.Error(err))
	}
	return out.Message, nil
}

// ForgotPassword requests a reset email.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) (*backend.ForgotPasswordResult, error) {
	errs := fieldErrors{}
	errs.email("email", email)
	if err := errs.err(); err != nil {
		return nil, err
	}
	return s.backend.ForgotPassword(ctx, strings.TrimSpace(email))
}

// ResetPassword redeems a reset token.
func (s *AuthService) ResetPassword(ctx context.Context, token, password, confirm string) (string, error) {
	errs := fieldErrors{}
	errs.require("token", token)
	errs.require("password", password)
	if password != "" && len(password) < minPasswordLength {
		errs.add("password", "password must be at least 8 characters")
	}
	if password != confirm {
		errs.add("confirm_password", "passwords do not match")
	}
	if err := errs.err(); err != nil {
		return "", err
	}

	out, err := s.backend.ResetPassword(ctx, backend.ResetPasswordRequest{
		Token:           token,
		Password:        password,
		ConfirmPassword: confirm,
	})
	if err != nil {
		return "", err
	}
	return out.Message, nil
}

// Me returns the account behind the session.
func (s *AuthService) Me(ctx context.Context, session *domain.Session) (*domain.User, error) {
	return s.backend.Me(ctx, session.BackendJWT)
}

// Logout deletes the session. Missing sessions are not an error.
func (s *AuthService) Logout(ctx context.Context, session *domain.Session) error {
	if session == nil {
		return nil
	}
	if err := s.sessions.Delete(ctx, session.KeyHash); err != nil {
		return apperrors.NewServiceUnavailable("session store unavailable", err)
	}
	s.logger.Info("session ended", zap.String("session_id", session.ID), zap.String("user_id", session.UserID))
	return nil
}
