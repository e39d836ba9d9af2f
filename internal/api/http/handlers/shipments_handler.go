package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/logistics-console/internal/api/dto"
	"github.com/spec-kit/logistics-console/internal/auth"
	"github.com/spec-kit/logistics-console/internal/service"
)

// ShipmentsHandler manages order endpoints for every role.
type ShipmentsHandler struct {
	service *service.ShipmentService
}

// NewShipmentsHandler constructs handler.
func NewShipmentsHandler(shipmentService *service.ShipmentService) *ShipmentsHandler {
	return &ShipmentsHandler{service: shipmentService}
}

// List GET /api/shipments.
func (h *ShipmentsHandler) List(c *fiber.Ctx) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}
	shipments, err := h.service.List(c.UserContext(), session)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": shipments})
}

// Create POST /api/shipments.
func (h *ShipmentsHandler) Create(c *fiber.Ctx) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}
	var req dto.CreateShipmentRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	result, err := h.service.Create(c.UserContext(), session, service.CreateShipmentInput{
		Origin:              req.Origin,
		Destination:         req.Destination,
		DestinationZipcode:  req.DestinationZipcode,
		DestinationCity:     req.DestinationCity,
		Weight:              req.Weight,
		Width:               req.Width,
		Height:              req.Height,
		Length:              req.Length,
		ProductType:         req.ProductType,
		IsFragile:           req.IsFragile,
		SpecialInstructions: req.SpecialInstructions,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": result})
}

// Get GET /api/shipments/:id.
func (h *ShipmentsHandler) Get(c *fiber.Ctx) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}
	shipment, err := h.service.Get(c.UserContext(), session, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": shipment})
}

// UpdateStatus PATCH /api/shipments/:id/status.
func (h *ShipmentsHandler) UpdateStatus(c *fiber.Ctx) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}
	var req dto.UpdateStatusRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	shipment, err := h.service.UpdateStatus(c.UserContext(), session, c.Params("id"), req.Status, req.Note)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": shipment})
}

// Assign PATCH /api/shipments/:id/assign.
func (h *ShipmentsHandler) Assign(c *fiber.Ctx) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}
	var req dto.AssignDriverRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	shipment, err := h.service.AssignDriver(c.UserContext(), session, c.Params("id"), req.DriverID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": shipment})
}

// Statistics GET /api/shipments/statistics.
func (h *ShipmentsHandler) Statistics(c *fiber.Ctx) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}
	stats, err := h.service.Statistics(c.UserContext(), session)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": stats})
}

// Dashboard GET /api/dashboard. Admins also receive the statistics panel.
func (h *ShipmentsHandler) Dashboard(c *fiber.Ctx) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}
	resp := dto.DashboardResponse{
		Title: auth.PanelTitle(session.Role),
		User:  dto.SessionUserFrom(session),
		Menu:  auth.Menu(session.Role),
	}
	if auth.Allowed(session.Role, auth.PermShipmentsStatistics) {
		stats, err := h.service.Statistics(c.UserContext(), session)
		if err != nil {
			return err
		}
		resp.Statistics = stats
	}
	return c.JSON(fiber.Map{"data": resp})
}
