package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/logistics-console/internal/api/dto"
	"github.com/spec-kit/logistics-console/internal/auth"
	"github.com/spec-kit/logistics-console/internal/domain"
	"github.com/spec-kit/logistics-console/internal/service"
	apperrors "github.com/spec-kit/logistics-console/pkg/util/errorutil"
)

// AuthHandler exposes account and session endpoints.
type AuthHandler struct {
	auth    *service.AuthService
	cookies auth.CookieSettings
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, cookies auth.CookieSettings) *AuthHandler {
	return &AuthHandler{auth: authService, cookies: cookies}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	msg, err := h.auth.Register(c.UserContext(), service.RegisterInput{
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		FullName:        req.FullName,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.MessageResponse{Message: msg}})
}

// ConfirmEmail handles POST /api/auth/confirm-email.
func (h *AuthHandler) ConfirmEmail(c *fiber.Ctx) error {
	var req dto.ConfirmEmailRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	msg, err := h.auth.ConfirmEmail(c.UserContext(), req.Token)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.MessageResponse{Message: msg}})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	outcome, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	details := map[string]any{"status": outcome.Status}
	switch outcome.Status {
	case domain.LoginStatusInvalidCredentials:
		return apperrors.NewDomainError(apperrors.CodeUnauthorized, messageOr(outcome.Message, "invalid credentials"), http.StatusUnauthorized, details)
	case domain.LoginStatusEmailNotVerified:
		return apperrors.NewDomainError(apperrors.CodeForbidden, messageOr(outcome.Message, "email not verified"), http.StatusForbidden, details)
	}
	if outcome.Session == nil {
		return apperrors.NewUpstreamError("unexpected login status "+string(outcome.Status), nil)
	}

	h.cookies.Set(c, outcome.SessionID, outcome.ExpiresAt)
	return c.JSON(fiber.Map{"data": dto.LoginResponse{
		Status:    outcome.Status,
		Message:   outcome.Message,
		User:      dto.SessionUserFrom(outcome.Session),
		ExpiresAt: outcome.ExpiresAt,
	}})
}

// SetInitialPassword handles POST /api/auth/set-initial-password.
func (h *AuthHandler) SetInitialPassword(c *fiber.Ctx) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}
	var req dto.SetInitialPasswordRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	msg, err := h.auth.SetInitialPassword(c.UserContext(), session, service.SetInitialPasswordInput{
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		return err
	}
	h.cookies.Clear(c)
	return c.JSON(fiber.Map{"data": dto.MessageResponse{Message: msg}})
}

// ForgotPassword handles POST /api/auth/forgot-password.
func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req dto.ForgotPasswordRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	out, err := h.auth.ForgotPassword(c.UserContext(), req.Email)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.ForgotPasswordResponse{Message: out.Message, UserExists: out.UserExists}})
}

// ResetPassword handles POST /api/auth/reset-password.
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req dto.ResetPasswordRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	msg, err := h.auth.ResetPassword(c.UserContext(), req.Token, req.Password, req.ConfirmPassword)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.MessageResponse{Message: msg}})
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}
	user, err := h.auth.Me(c.UserContext(), session)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": user})
}

// Logout handles POST /api/auth/logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}
	if err := h.auth.Logout(c.UserContext(), session); err != nil {
		return err
	}
	h.cookies.Clear(c)
	return c.SendStatus(http.StatusNoContent)
}

func messageOr(msg, fallback string) string {
	if msg == "" {
		return fallback
	}
	return msg
}
