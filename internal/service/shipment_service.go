package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/logistics-console/internal/backend"
	"github.com/spec-kit/logistics-console/internal/domain"
	"github.com/spec-kit/logistics-console/internal/events"
	"github.com/spec-kit/logistics-console/internal/history"
	apperrors "github.com/spec-kit/logistics-console/pkg/util/errorutil"
)

const minZipcodeLength = 5

// ShipmentService coordinates order workflows against the backend.
type ShipmentService struct {
	backend    ShipmentBackend
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// ShipmentDependencies bundles collaborators for the shipment service.
type ShipmentDependencies struct {
	Backend    ShipmentBackend
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// CreateShipmentInput describes a new order.
type CreateShipmentInput struct {
	Origin              string
	Destination         string
	DestinationZipcode  string
	DestinationCity     string
	Weight              float64
	Width               float64
	Height              float64
	Length              float64
	ProductType         domain.ProductType
	IsFragile           bool
	SpecialInstructions string
}

// NewShipmentService constructs the service.
func NewShipmentService(deps ShipmentDependencies) *ShipmentService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ShipmentService{
		backend:    deps.Backend,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// Create submits a new order for the session's user.
func (s *ShipmentService) Create(ctx context.Context, session *domain.Session, input CreateShipmentInput) (*backend.CreateShipmentResult, error) {
	if err := validateCreateShipment(input); err != nil {
		return nil, err
	}

	result, err := s.backend.CreateShipment(ctx, session.BackendJWT, backend.CreateShipmentRequest{
		Origin:              strings.TrimSpace(input.Origin),
		Destination:         strings.TrimSpace(input.Destination),
		DestinationZipcode:  strings.TrimSpace(input.DestinationZipcode),
		DestinationCity:     strings.TrimSpace(input.DestinationCity),
		Weight:              input.Weight,
		Width:               input.Width,
		Height:              input.Height,
		Length:              input.Length,
		ProductType:         input.ProductType,
		IsFragile:           input.IsFragile,
		SpecialInstructions: strings.TrimSpace(input.SpecialInstructions),
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.Event{
		Type:    events.EventShipmentCreated,
		OrderID: result.ID,
		Actor:   actorOf(session),
		Payload: events.ShipmentCreatedPayload{
			Status:          result.Status,
			DestinationCity: strings.TrimSpace(input.DestinationCity),
		},
	})
	return result, nil
}

func validateCreateShipment(input CreateShipmentInput) error {
	errs := fieldErrors{}
	errs.require("origin", input.Origin)
	errs.require("destination", input.Destination)
	errs.require("destination_city", input.DestinationCity)
	if len(strings.TrimSpace(input.DestinationZipcode)) < minZipcodeLength {
		errs.add("destination_zipcode", "destination_zipcode must be at least 5 characters")
	}
	if input.Weight < 0.1 {
		errs.add("weight", "weight must be at least 0.1")
	}
	if input.Width < 1 {
		errs.add("width", "width must be at least 1")
	}
	if input.Height < 1 {
		errs.add("height", "height must be at least 1")
	}
	if input.Length < 1 {
		errs.add("length", "length must be at least 1")
	}
	if !input.ProductType.Valid() {
		errs.add("product_type", "product_type must be one of electronic, food, medicine, other")
	}
	return errs.err()
}

// List returns the orders visible to the session's role.
func (s *ShipmentService) List(ctx context.Context, session *domain.Session) ([]domain.Shipment, error) {
	var (
		shipments []domain.Shipment
		err       error
	)
	switch session.Role {
	case domain.RoleAdmin:
		shipments, err = s.backend.ListShipments(ctx, session.BackendJWT)
	case domain.RoleDriver:
		shipments, err = s.backend.ListAssignedShipments(ctx, session.BackendJWT)
	case domain.RoleUser:
		shipments, err = s.backend.ListUserShipments(ctx, session.BackendJWT, session.UserID)
	default:
		return nil, apperrors.NewForbidden("unknown role")
	}
	if err != nil {
		return nil, err
	}
	if shipments == nil {
		shipments = []domain.Shipment{}
	}
	return shipments, nil
}

// Get returns one order.
func (s *ShipmentService) Get(ctx context.Context, session *domain.Session, id string) (*domain.Shipment, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperrors.NewValidationError("shipment id required", nil)
	}
	return s.backend.GetShipment(ctx, session.BackendJWT, id)
}

// UpdateStatus moves an order to status and announces the transition.
func (s *ShipmentService) UpdateStatus(ctx context.Context, session *domain.Session, id string, status domain.ShipmentStatus, note string) (*domain.Shipment, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperrors.NewValidationError("shipment id required", nil)
	}
	if !status.Valid() {
		return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": status})
	}

	note = strings.TrimSpace(note)
	shipment, err := s.backend.UpdateShipmentStatus(ctx, session.BackendJWT, id, status, note)
	if err != nil {
		return nil, err
	}

	newStatus := shipment.Status
	if newStatus == "" {
		newStatus = status
	}
	s.publishEvent(ctx, events.Event{
		Type:    events.EventOrderStatusChanged,
		OrderID: id,
		Actor:   actorOf(session),
		Payload: events.OrderStatusChangedPayload{NewStatus: newStatus, Note: note},
	})
	return shipment, nil
}

// AssignDriver assigns driverID to an order.
func (s *ShipmentService) AssignDriver(ctx context.Context, session *domain.Session, id, driverID string) (*domain.Shipment, error) {
	errs := fieldErrors{}
	errs.require("id", id)
	errs.require("driver_id", driverID)
	if err := errs.err(); err != nil {
		return nil, err
	}

	id = strings.TrimSpace(id)
	driverID = strings.TrimSpace(driverID)
	shipment, err := s.backend.AssignDriver(ctx, session.BackendJWT, id, driverID)
	if err != nil {
		return nil, err
	}

	newStatus := shipment.Status
	if newStatus == "" {
		newStatus = domain.ShipmentStatusAssigned
	}
	s.publishEvent(ctx, events.Event{
		Type:    events.EventDriverAssigned,
		OrderID: id,
		Actor:   actorOf(session),
		Payload: events.DriverAssignedPayload{DriverID: driverID, NewStatus: newStatus},
	})
	return shipment, nil
}

// Statistics returns the admin dashboard aggregates.
func (s *ShipmentService) Statistics(ctx context.Context, session *domain.Session) (*domain.ShipmentStatistics, error) {
	return s.backend.ShipmentStatistics(ctx, session.BackendJWT)
}

// History returns the order's timeline newest first. Entries belonging to
// other orders are dropped.
func (s *ShipmentService) History(ctx context.Context, session *domain.Session, id string) ([]domain.OrderHistoryEntry, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperrors.NewValidationError("shipment id required", nil)
	}
	entries, err := s.backend.FetchOrderHistory(ctx, session.BackendJWT, id)
	if err != nil {
		return nil, err
	}

	out := make([]domain.OrderHistoryEntry, 0, len(entries))
	for _, entry := range entries {
		if entry.OrderID == "" {
			entry.OrderID = id
		}
		if entry.OrderID != id {
			continue
		}
		entry.IsRecent = false
		out = append(out, entry)
	}
	return history.SortNewestFirst(out), nil
}

func (s *ShipmentService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed",
			zap.String("event_type", string(event.Type)),
			zap.String("order_id", event.OrderID),
			zap.Error(err))
	}
}

func actorOf(session *domain.Session) events.Actor {
	return events.Actor{UserID: session.UserID, Role: session.Role}
}
