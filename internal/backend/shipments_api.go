package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/spec-kit/logistics-console/internal/domain"
)

// CreateShipmentRequest is the POST /shipments body.
type CreateShipmentRequest struct {
	Origin              string             `json:"origin"`
	Destination         string             `json:"destination"`
	DestinationZipcode  string             `json:"destinationZipcode"`
	DestinationCity     string             `json:"destinationCity"`
	Weight              float64            `json:"weight"`
	Width               float64            `json:"width"`
	Height              float64            `json:"height"`
	Length              float64            `json:"length"`
	ProductType         domain.ProductType `json:"productType"`
	IsFragile           bool               `json:"isFragile"`
	SpecialInstructions string             `json:"specialInstructions,omitempty"`
}

// CreateShipmentResult is the POST /shipments response.
type CreateShipmentResult struct {
	ID      string                `json:"id"`
	Status  domain.ShipmentStatus `json:"status"`
	Message string                `json:"message"`
}

type updateStatusRequest struct {
	Status domain.ShipmentStatus `json:"status"`
	Note   string                `json:"note,omitempty"`
}

type assignDriverRequest struct {
	DriverID string `json:"driverId"`
}

func shipmentPath(id string, rest ...string) string {
	path := "/shipments/" + url.PathEscape(id)
	for _, r := range rest {
		path += "/" + r
	}
	return path
}

// CreateShipment submits a new order.
func (c *Client) CreateShipment(ctx context.Context, token string, req CreateShipmentRequest) (*CreateShipmentResult, error) {
	var out CreateShipmentResult
	if err := c.do(ctx, http.MethodPost, "/shipments", token, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListShipments returns every order. Admin only.
func (c *Client) ListShipments(ctx context.Context, token string) ([]domain.Shipment, error) {
	var out []domain.Shipment
	if err := c.do(ctx, http.MethodGet, "/shipments", token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListAssignedShipments returns the caller's assigned orders. Driver only.
func (c *Client) ListAssignedShipments(ctx context.Context, token string) ([]domain.Shipment, error) {
	var out []domain.Shipment
	if err := c.do(ctx, http.MethodGet, "/shipments/driver/assigned", token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListUserShipments returns the orders created by userID.
func (c *Client) ListUserShipments(ctx context.Context, token, userID string) ([]domain.Shipment, error) {
	var out []domain.Shipment
	if err := c.do(ctx, http.MethodGet, "/shipments/user/"+url.PathEscape(userID), token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetShipment returns one order. Orders the caller cannot see are reported
// as not found.
func (c *Client) GetShipment(ctx context.Context, token, id string) (*domain.Shipment, error) {
	var out domain.Shipment
	if err := c.do(ctx, http.MethodGet, shipmentPath(id), token, nil, &out); err != nil {
		return nil, hideForbidden(err, "shipment")
	}
	return &out, nil
}

// UpdateShipmentStatus moves an order to status.
func (c *Client) UpdateShipmentStatus(ctx context.Context, token, id string, status domain.ShipmentStatus, note string) (*domain.Shipment, error) {
	var out domain.Shipment
	err := c.do(ctx, http.MethodPatch, shipmentPath(id, "status"), token, updateStatusRequest{Status: status, Note: note}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// AssignDriver assigns driverID to an order.
func (c *Client) AssignDriver(ctx context.Context, token, id, driverID string) (*domain.Shipment, error) {
	var out domain.Shipment
	err := c.do(ctx, http.MethodPatch, shipmentPath(id, "assign"), token, assignDriverRequest{DriverID: driverID}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ShipmentStatistics returns the admin dashboard aggregates.
func (c *Client) ShipmentStatistics(ctx context.Context, token string) (*domain.ShipmentStatistics, error) {
	var out domain.ShipmentStatistics
	if err := c.do(ctx, http.MethodGet, "/shipments/statistics", token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FetchOrderHistory returns the status timeline of an order in the order the
// backend lists it. Missing and inaccessible orders fail with NOT_FOUND.
func (c *Client) FetchOrderHistory(ctx context.Context, token, orderID string) ([]domain.OrderHistoryEntry, error) {
	var out []domain.OrderHistoryEntry
	if err := c.do(ctx, http.MethodGet, shipmentPath(orderID, "history"), token, nil, &out); err != nil {
		return nil, hideForbidden(err, "shipment")
	}
	return out, nil
}
