package events

import (
	"time"

	"github.com/spec-kit/logistics-console/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventShipmentCreated    EventType = "shipment_created"
	EventOrderStatusChanged EventType = "order_status_changed"
	EventDriverAssigned     EventType = "driver_assigned"
)

// Actor identifies the console user behind an event.
type Actor struct {
	UserID string      `json:"user_id"`
	Role   domain.Role `json:"role"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	OrderID   string      `json:"order_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// ShipmentCreatedPayload payload.
type ShipmentCreatedPayload struct {
	Status          domain.ShipmentStatus `json:"status"`
	DestinationCity string                `json:"destination_city"`
}

// OrderStatusChangedPayload payload.
type OrderStatusChangedPayload struct {
	NewStatus domain.ShipmentStatus `json:"new_status"`
	Note      string                `json:"note,omitempty"`
}

// DriverAssignedPayload payload.
type DriverAssignedPayload struct {
	DriverID  string                `json:"driver_id"`
	NewStatus domain.ShipmentStatus `json:"new_status"`
}
