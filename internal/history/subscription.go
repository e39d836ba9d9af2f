package history

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/logistics-console/internal/channel"
	"github.com/spec-kit/logistics-console/internal/domain"
	"github.com/spec-kit/logistics-console/internal/observability"
)

// State is the live-update status of a subscription.
type State string

const (
	StateConnecting  State = "connecting"
	StateLive        State = "live"
	StateUnavailable State = "unavailable"
	StateClosed      State = "closed"
)

const (
	outcomeApplied    = "applied"
	outcomeMismatched = "mismatched"
	outcomeMalformed  = "malformed"
	outcomeDuplicate  = "duplicate"
)

// Subscription is one order's open history view. It exclusively owns its
// store and channel handle.
type Subscription struct {
	orderID  string
	store    *Store
	initial  []domain.OrderHistoryEntry
	onUpdate UpdateFunc
	onState  StateFunc

	ids     *IDGenerator
	now     func() time.Time
	logger  *zap.Logger
	metrics *observability.Metrics
	release func(*Subscription)

	// deliverMu serializes event delivery, state notifications and Close.
	// Callbacks run while it is held.
	deliverMu sync.Mutex
	closed    bool
	handle    channel.Handle

	stateMu sync.Mutex
	state   State
	err     error
}

// OrderID returns the subscribed order.
func (s *Subscription) OrderID() string { return s.orderID }

// InitialEntries returns the sorted historical entries loaded by Open.
func (s *Subscription) InitialEntries() []domain.OrderHistoryEntry {
	out := make([]domain.OrderHistoryEntry, len(s.initial))
	copy(out, s.initial)
	return out
}

// Snapshot returns the current timeline, newest first.
func (s *Subscription) Snapshot() []domain.OrderHistoryEntry {
	return s.store.Snapshot()
}

// State returns the current live-update state.
func (s *Subscription) State() State {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	return s.state
}

// Err returns the reason live updates are unavailable, or nil.
func (s *Subscription) Err() error {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	return s.err
}

// Close stops live updates. It is idempotent, disconnects the channel at most
// once and no update callback runs after it returns. The callbacks passed to
// Open may read State, Err and Snapshot but must not call Close synchronously.
func (s *Subscription) Close() {
	s.deliverMu.Lock()
	if s.closed {
		s.deliverMu.Unlock()
		return
	}
	s.closed = true
	handle := s.handle
	s.handle = nil
	s.setState(StateClosed, nil)
	s.deliverMu.Unlock()

	if handle != nil {
		if err := handle.Disconnect(); err != nil {
			s.logger.Debug("channel disconnect failed", zap.Error(err))
		}
	}
	if s.release != nil {
		s.release(s)
	}
}

func (s *Subscription) connectFailed(err error) {
	classified := classifyChannelError(s.orderID, err)
	s.recordChannelFailure(classified)
	s.logger.Warn("live updates unavailable", zap.Error(classified))

	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()
	s.setState(StateUnavailable, classified)
}

func (s *Subscription) attach(handle channel.Handle) {
	s.deliverMu.Lock()
	s.handle = handle
	s.deliverMu.Unlock()

	handle.OnStateChange(s.handleState)
	if err := handle.OnEvent(s.handleEvent); err != nil {
		s.logger.Error("registering channel handler failed", zap.Error(err))
		s.handleState(channel.StateError, err)
	}
}

func (s *Subscription) handleState(state channel.ConnState, err error) {
	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()
	if s.closed {
		return
	}

	switch state {
	case channel.StateConnected:
		s.setState(StateLive, nil)
	case channel.StateDisconnected, channel.StateError:
		classified := classifyChannelError(s.orderID, err)
		s.recordChannelFailure(classified)
		s.logger.Warn("live updates lost", zap.String("signal", string(state)), zap.Error(classified))
		s.setState(StateUnavailable, classified)
	}
}

func (s *Subscription) handleEvent(ev channel.RawEvent) {
	entry, decodeErr := s.decode(ev)

	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()
	if s.closed {
		return
	}

	if decodeErr != nil {
		s.metrics.RecordHistoryEvent(outcomeMalformed)
		s.logger.Debug("dropping live event", zap.Error(decodeErr))
		return
	}
	if entry.OrderID != s.orderID {
		s.metrics.RecordHistoryEvent(outcomeMismatched)
		return
	}
	if !s.store.Prepend(entry) {
		s.metrics.RecordHistoryEvent(outcomeDuplicate)
		return
	}

	s.metrics.RecordHistoryEvent(outcomeApplied)
	if s.onUpdate != nil {
		s.onUpdate(entry)
	}
}

func (s *Subscription) decode(ev channel.RawEvent) (domain.OrderHistoryEntry, error) {
	var payload domain.OrderStatusEvent
	if err := json.Unmarshal(ev.Payload, &payload); err != nil {
		return domain.OrderHistoryEntry{}, &MalformedEventError{Reason: "undecodable payload", Err: err}
	}
	if payload.OrderID == "" {
		return domain.OrderHistoryEntry{}, &MalformedEventError{Reason: "missing orderId"}
	}
	if payload.NewStatus == "" {
		return domain.OrderHistoryEntry{}, &MalformedEventError{Reason: "missing newStatus"}
	}
	if !payload.NewStatus.Valid() {
		return domain.OrderHistoryEntry{}, &MalformedEventError{Reason: "unknown status " + string(payload.NewStatus)}
	}

	occurredAt := payload.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = ev.ReceivedAt
		if occurredAt.IsZero() {
			occurredAt = s.now()
		}
	}

	id := payload.ID
	if id == "" && s.ids != nil {
		id = s.ids.Next()
	}

	return domain.OrderHistoryEntry{
		ID:         id,
		OrderID:    payload.OrderID,
		Status:     payload.NewStatus,
		Note:       payload.Note,
		OccurredAt: occurredAt,
		IsRecent:   true,
	}, nil
}

// setState records the new state and notifies the listener outside stateMu.
// Callers hold deliverMu.
func (s *Subscription) setState(state State, err error) {
	s.stateMu.Lock()
	if s.state == state && errors.Is(s.err, err) {
		s.stateMu.Unlock()
		return
	}
	s.state = state
	s.err = err
	s.stateMu.Unlock()

	if s.onState != nil {
		s.onState(state, err)
	}
}

func (s *Subscription) recordChannelFailure(err error) {
	var authErr *ChannelAuthError
	if errors.As(err, &authErr) {
		s.metrics.RecordChannelFailure("auth")
		return
	}
	s.metrics.RecordChannelFailure("transport")
}
