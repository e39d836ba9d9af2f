package domain

import "time"

// OrderHistoryEntry is one status transition in an order's timeline.
type OrderHistoryEntry struct {
	ID         string         `json:"id"`
	OrderID    string         `json:"orderId"`
	Status     ShipmentStatus `json:"status"`
	Note       string         `json:"note,omitempty"`
	OccurredAt time.Time      `json:"occurredAt"`
	// IsRecent marks entries that arrived over the live channel during the
	// current viewing session. Presentation only.
	IsRecent bool `json:"isRecent"`
}

// OrderStatusEvent is the inbound live event shape pushed by the transport.
type OrderStatusEvent struct {
	ID         string         `json:"id,omitempty"`
	OrderID    string         `json:"orderId"`
	NewStatus  ShipmentStatus `json:"newStatus"`
	Note       string         `json:"note,omitempty"`
	OccurredAt time.Time      `json:"occurredAt"`
}
