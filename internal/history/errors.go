package history

import (
	"errors"
	"fmt"
)

// ErrSubscriptionActive is returned by Open while another subscription is
// active or still opening on the same manager.
var ErrSubscriptionActive = errors.New("history: a subscription is already active")

// HistoryLoadError reports a failed historical fetch. No channel is opened.
type HistoryLoadError struct {
	OrderID string
	Err     error
}

func (e *HistoryLoadError) Error() string {
	return fmt.Sprintf("load history for order %s: %v", e.OrderID, e.Err)
}

func (e *HistoryLoadError) Unwrap() error { return e.Err }

// ChannelAuthError reports a missing or rejected channel credential. The
// historical entries stay usable.
type ChannelAuthError struct {
	OrderID string
	Err     error
}

func (e *ChannelAuthError) Error() string {
	return fmt.Sprintf("live updates for order %s: authentication failed: %v", e.OrderID, e.Err)
}

func (e *ChannelAuthError) Unwrap() error { return e.Err }

// ChannelTransportError reports a connect failure or a dropped connection.
type ChannelTransportError struct {
	OrderID string
	Err     error
}

func (e *ChannelTransportError) Error() string {
	return fmt.Sprintf("live updates for order %s: transport failure: %v", e.OrderID, e.Err)
}

func (e *ChannelTransportError) Unwrap() error { return e.Err }

// MalformedEventError describes an inbound event that was dropped. It is
// logged and counted, never returned to callers.
type MalformedEventError struct {
	Reason string
	Err    error
}

func (e *MalformedEventError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed event: %s: %v", e.Reason, e.Err)
	}
	return "malformed event: " + e.Reason
}

func (e *MalformedEventError) Unwrap() error { return e.Err }
