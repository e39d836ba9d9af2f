package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/logistics-console/internal/domain"
	"github.com/spec-kit/logistics-console/internal/events"
)

// StatusPublisher pushes an order status event onto the live channel.
type StatusPublisher interface {
	PublishEvent(ctx context.Context, event domain.OrderStatusEvent) error
}

// NotificationService logs domain events and relays status transitions to
// the live channel when the console itself feeds it.
type NotificationService struct {
	dispatcher events.Dispatcher
	publisher  StatusPublisher
	logger     *zap.Logger
}

// NewNotificationService creates the service. publisher may be nil.
func NewNotificationService(dispatcher events.Dispatcher, publisher StatusPublisher, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		publisher:  publisher,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventShipmentCreated, n.handleShipmentCreated)
	n.dispatcher.Subscribe(events.EventOrderStatusChanged, n.handleOrderStatusChanged)
	n.dispatcher.Subscribe(events.EventDriverAssigned, n.handleDriverAssigned)
}

func (n *NotificationService) handleShipmentCreated(_ context.Context, event events.Event) error {
	n.logger.Info("ShipmentCreated", zap.String("order_id", event.OrderID), zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleOrderStatusChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("OrderStatusChanged", zap.String("order_id", event.OrderID), zap.Any("payload", event.Payload))
	payload, ok := event.Payload.(events.OrderStatusChangedPayload)
	if !ok {
		return nil
	}
	return n.relay(ctx, event, payload.NewStatus, payload.Note)
}

func (n *NotificationService) handleDriverAssigned(ctx context.Context, event events.Event) error {
	n.logger.Info("DriverAssigned", zap.String("order_id", event.OrderID), zap.Any("payload", event.Payload))
	payload, ok := event.Payload.(events.DriverAssignedPayload)
	if !ok {
		return nil
	}
	return n.relay(ctx, event, payload.NewStatus, "")
}

func (n *NotificationService) relay(ctx context.Context, event events.Event, status domain.ShipmentStatus, note string) error {
	if n.publisher == nil {
		return nil
	}
	return n.publisher.PublishEvent(ctx, domain.OrderStatusEvent{
		ID:         event.ID,
		OrderID:    event.OrderID,
		NewStatus:  status,
		Note:       note,
		OccurredAt: event.Timestamp,
	})
}
