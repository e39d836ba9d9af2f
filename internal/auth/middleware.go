package auth

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/logistics-console/internal/domain"
	"github.com/spec-kit/logistics-console/internal/repository"
	apperrors "github.com/spec-kit/logistics-console/pkg/util/errorutil"
)

const sessionKey = "console_session"

// CookieSettings describes the browser cookie carrying the session id.
type CookieSettings struct {
	Name   string
	Secure bool
}

// Set writes the session cookie.
func (s CookieSettings) Set(c *fiber.Ctx, sessionID string, expires time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     s.Name,
		Value:    sessionID,
		Path:     "/",
		Expires:  expires,
		Secure:   s.Secure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// Clear expires the session cookie in the browser.
func (s CookieSettings) Clear(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     s.Name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		Secure:   s.Secure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// SessionMiddleware resolves the session cookie into a stored session.
type SessionMiddleware struct {
	sessions repository.SessionRepository
	cookies  CookieSettings
	logger   *zap.Logger
	now      func() time.Time
}

// NewSessionMiddleware constructs middleware.
func NewSessionMiddleware(sessions repository.SessionRepository, cookies CookieSettings, logger *zap.Logger) *SessionMiddleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionMiddleware{sessions: sessions, cookies: cookies, logger: logger, now: time.Now}
}

// Cookies returns the cookie settings the middleware reads.
func (m *SessionMiddleware) Cookies() CookieSettings {
	return m.cookies
}

// Handle enforces a fully authenticated session.
func (m *SessionMiddleware) Handle(c *fiber.Ctx) error {
	return m.authenticate(c, false)
}

// HandlePending also admits sessions waiting on a first password change.
func (m *SessionMiddleware) HandlePending(c *fiber.Ctx) error {
	return m.authenticate(c, true)
}

func (m *SessionMiddleware) authenticate(c *fiber.Ctx, allowPending bool) error {
	raw := c.Cookies(m.cookies.Name)
	if raw == "" {
		return apperrors.NewUnauthorized("authentication required")
	}
	keyHash := HashSessionID(raw)

	ctx := c.UserContext()
	session, err := m.sessions.GetByKeyHash(ctx, keyHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			m.cookies.Clear(c)
			return apperrors.NewUnauthorized("session not found")
		}
		return apperrors.MapError(err)
	}

	now := m.now()
	if session.Expired(now) {
		if err := m.sessions.Delete(ctx, keyHash); err != nil {
			m.logger.Warn("failed to delete expired session", zap.Error(err))
		}
		m.cookies.Clear(c)
		return apperrors.NewUnauthorized("session expired")
	}
	if session.Kind == domain.SessionKindPendingPasswordChange && !allowPending {
		return apperrors.NewForbidden("password change required")
	}

	if err := m.sessions.Touch(ctx, session.ID, now); err != nil {
		m.logger.Debug("session touch failed", zap.String("session_id", session.ID), zap.Error(err))
	}

	c.Locals(sessionKey, session)
	err = c.Next()

	// The backend no longer accepts the stored credential.
	if apperrors.HasCode(err, apperrors.CodeUnauthorized) {
		if delErr := m.sessions.Delete(ctx, keyHash); delErr != nil {
			m.logger.Warn("failed to drop rejected session", zap.Error(delErr))
		}
		m.cookies.Clear(c)
	}
	return err
}

// SessionFromContext retrieves the authenticated session.
func SessionFromContext(c *fiber.Ctx) (*domain.Session, bool) {
	val := c.Locals(sessionKey)
	if val == nil {
		return nil, false
	}
	session, ok := val.(*domain.Session)
	return session, ok
}
