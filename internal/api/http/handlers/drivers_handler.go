package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/logistics-console/internal/api/dto"
	"github.com/spec-kit/logistics-console/internal/service"
)

// DriversHandler exposes the admin driver roster.
type DriversHandler struct {
	service *service.DriverService
}

// NewDriversHandler constructs handler.
func NewDriversHandler(driverService *service.DriverService) *DriversHandler {
	return &DriversHandler{service: driverService}
}

// List GET /api/drivers.
func (h *DriversHandler) List(c *fiber.Ctx) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}
	drivers, err := h.service.List(c.UserContext(), session)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": drivers})
}

// Create POST /api/drivers.
func (h *DriversHandler) Create(c *fiber.Ctx) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}
	var req dto.CreateDriverRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	driver, err := h.service.Create(c.UserContext(), session, service.CreateDriverInput{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": driver})
}
