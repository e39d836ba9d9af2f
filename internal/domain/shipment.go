package domain

import "time"

// ShipmentStatus enumerates lifecycle states for shipment orders.
type ShipmentStatus string

const (
	ShipmentStatusPending   ShipmentStatus = "PENDING"
	ShipmentStatusAssigned  ShipmentStatus = "ASSIGNED"
	ShipmentStatusPickedUp  ShipmentStatus = "PICKED_UP"
	ShipmentStatusInTransit ShipmentStatus = "IN_TRANSIT"
	ShipmentStatusDelivered ShipmentStatus = "DELIVERED"
	ShipmentStatusCancelled ShipmentStatus = "CANCELLED"
)

var shipmentStatuses = map[ShipmentStatus]struct{}{
	ShipmentStatusPending:   {},
	ShipmentStatusAssigned:  {},
	ShipmentStatusPickedUp:  {},
	ShipmentStatusInTransit: {},
	ShipmentStatusDelivered: {},
	ShipmentStatusCancelled: {},
}

// Valid reports whether s is part of the status enumeration.
func (s ShipmentStatus) Valid() bool {
	_, ok := shipmentStatuses[s]
	return ok
}

// ProductType classifies shipment contents.
type ProductType string

const (
	ProductTypeElectronic ProductType = "electronic"
	ProductTypeFood       ProductType = "food"
	ProductTypeMedicine   ProductType = "medicine"
	ProductTypeOther      ProductType = "other"
)

// Valid reports whether p is a supported product type.
func (p ProductType) Valid() bool {
	switch p {
	case ProductTypeElectronic, ProductTypeFood, ProductTypeMedicine, ProductTypeOther:
		return true
	}
	return false
}

// Shipment is the order record as served by the backend.
type Shipment struct {
	ID                  string         `json:"id"`
	UserID              string         `json:"userId"`
	DriverID            *string        `json:"driverId,omitempty"`
	Status              ShipmentStatus `json:"status"`
	Origin              string         `json:"origin"`
	Destination         string         `json:"destination"`
	DestinationZipcode  string         `json:"destinationZipcode"`
	DestinationCity     string         `json:"destinationCity"`
	Weight              float64        `json:"weight"`
	Width               float64        `json:"width"`
	Height              float64        `json:"height"`
	Length              float64        `json:"length"`
	ProductType         ProductType    `json:"productType"`
	IsFragile           bool           `json:"isFragile"`
	SpecialInstructions string         `json:"specialInstructions,omitempty"`
	CreatedAt           time.Time      `json:"createdAt"`
	UpdatedAt           time.Time      `json:"updatedAt"`
}

// ShipmentStatistics aggregates the admin statistics panel.
type ShipmentStatistics struct {
	TotalShipments      int                 `json:"totalShipments"`
	AverageDeliveryTime float64             `json:"averageDeliveryTime"`
	TotalInTransit      int                 `json:"totalInTransit"`
	TotalDelivered      int                 `json:"totalDelivered"`
	StatusCounts        map[string]int      `json:"statusCounts"`
	ShipmentsByCity     []CityShipmentCount `json:"shipmentsByCity"`
	ShipmentsByDate     []DateShipmentCount `json:"shipmentsByDate"`
}

// CityShipmentCount is one row of the per-city breakdown.
type CityShipmentCount struct {
	City  string `json:"city"`
	Count int    `json:"count"`
}

// DateShipmentCount is one row of the per-day breakdown.
type DateShipmentCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}
