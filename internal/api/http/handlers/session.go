package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/logistics-console/internal/auth"
	"github.com/spec-kit/logistics-console/internal/domain"
	apperrors "github.com/spec-kit/logistics-console/pkg/util/errorutil"
)

func requireSession(c *fiber.Ctx) (*domain.Session, error) {
	session, ok := auth.SessionFromContext(c)
	if !ok {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	return session, nil
}

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	return nil
}
