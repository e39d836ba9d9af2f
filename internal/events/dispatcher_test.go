package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDispatcherDeliversByType(t *testing.T) {
	d := NewInMemoryDispatcher()
	var got []string
	d.Subscribe(EventOrderStatusChanged, func(_ context.Context, e Event) error {
		got = append(got, "status:"+e.OrderID)
		return nil
	})
	d.Subscribe(EventShipmentCreated, func(_ context.Context, e Event) error {
		got = append(got, "created:"+e.OrderID)
		return nil
	})

	assert.NoError(t, d.Publish(context.Background(), Event{Type: EventOrderStatusChanged, OrderID: "42"}))
	assert.NoError(t, d.Publish(context.Background(), Event{Type: EventDriverAssigned, OrderID: "7"}))
	assert.Equal(t, []string{"status:42"}, got)
}

func TestDispatcherRunsAllHandlersAndJoinsErrors(t *testing.T) {
	d := NewInMemoryDispatcher()
	boom := errors.New("boom")
	calls := 0
	d.Subscribe(EventShipmentCreated, func(context.Context, Event) error {
		calls++
		return boom
	})
	d.Subscribe(EventShipmentCreated, func(context.Context, Event) error {
		calls++
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventShipmentCreated})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, calls)
}
