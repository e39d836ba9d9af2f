package dto

import (
	"github.com/spec-kit/logistics-console/internal/auth"
	"github.com/spec-kit/logistics-console/internal/domain"
)

// CreateShipmentRequest payload.
type CreateShipmentRequest struct {
	Origin              string             `json:"origin"`
	Destination         string             `json:"destination"`
	DestinationZipcode  string             `json:"destination_zipcode"`
	DestinationCity     string             `json:"destination_city"`
	Weight              float64            `json:"weight"`
	Width               float64            `json:"width"`
	Height              float64            `json:"height"`
	Length              float64            `json:"length"`
	ProductType         domain.ProductType `json:"product_type"`
	IsFragile           bool               `json:"is_fragile"`
	SpecialInstructions string             `json:"special_instructions"`
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	Status domain.ShipmentStatus `json:"status"`
	Note   string                `json:"note"`
}

// AssignDriverRequest payload.
type AssignDriverRequest struct {
	DriverID string `json:"driver_id"`
}

// CreateDriverRequest payload.
type CreateDriverRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// DashboardResponse is the landing view for a role.
type DashboardResponse struct {
	Title      string                     `json:"title"`
	User       SessionUser                `json:"user"`
	Menu       []auth.MenuItem            `json:"menu"`
	Statistics *domain.ShipmentStatistics `json:"statistics,omitempty"`
}

// HistorySnapshot is the first event of a history stream.
type HistorySnapshot struct {
	OrderID string                     `json:"order_id"`
	Entries []domain.OrderHistoryEntry `json:"entries"`
}

// HistoryState reports the live-update state of a history stream.
type HistoryState struct {
	State string `json:"state"`
	Error string `json:"error,omitempty"`
}
