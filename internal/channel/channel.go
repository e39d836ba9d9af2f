// Package channel abstracts the push transport that delivers order status
// changes. A Factory opens one Handle per order; the handle joins a group
// scoped to that order and streams raw event payloads until disconnected.
package channel

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrAuth reports a missing or rejected credential.
	ErrAuth = errors.New("channel: authentication failed")
	// ErrTransport reports a connection failure or drop.
	ErrTransport = errors.New("channel: transport failure")
	// ErrHandlerRegistered is returned when OnEvent is called twice.
	ErrHandlerRegistered = errors.New("channel: event handler already registered")
)

// ConnState is a connection lifecycle signal.
type ConnState string

const (
	StateConnected    ConnState = "connected"
	StateDisconnected ConnState = "disconnected"
	StateError        ConnState = "error"
)

// RawEvent is an undecoded inbound payload.
type RawEvent struct {
	Payload    []byte
	ReceivedAt time.Time
}

// EventHandler receives inbound events in arrival order.
type EventHandler func(RawEvent)

// StateHandler receives lifecycle signals. err is nil for StateConnected.
type StateHandler func(state ConnState, err error)

// Handle is one live connection joined to an order's group.
type Handle interface {
	// OnEvent registers the single event handler. Events received before
	// registration are buffered and delivered once it is set.
	OnEvent(handler EventHandler) error
	// OnStateChange registers a lifecycle observer; the current state is
	// replayed immediately.
	OnStateChange(handler StateHandler)
	// Disconnect leaves the group and closes the connection. Idempotent.
	Disconnect() error
}

// Factory opens order-scoped handles.
type Factory interface {
	Connect(ctx context.Context, orderID, authToken string) (Handle, error)
}

// TokenCheck lets a factory reject credentials before dialing.
type TokenCheck func(ctx context.Context, token string) error
