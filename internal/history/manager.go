// Package history keeps an order's status timeline in sync: it loads the
// historical entries once, subscribes to the order's push channel and merges
// live status changes into the timeline until the subscription is closed.
package history

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/logistics-console/internal/channel"
	"github.com/spec-kit/logistics-console/internal/domain"
	"github.com/spec-kit/logistics-console/internal/observability"
	"github.com/spec-kit/logistics-console/pkg/util/errorutil"
)

// HistoryFetcher performs the one-shot historical read for an order.
type HistoryFetcher interface {
	FetchOrderHistory(ctx context.Context, authToken, orderID string) ([]domain.OrderHistoryEntry, error)
}

// Dependencies wires a Manager.
type Dependencies struct {
	Fetcher HistoryFetcher
	Factory channel.Factory
	IDs     *IDGenerator
	Logger  *zap.Logger
	Metrics *observability.Metrics
	Now     func() time.Time
}

// UpdateFunc is invoked once per applied live entry.
type UpdateFunc func(domain.OrderHistoryEntry)

// StateFunc observes subscription state transitions.
type StateFunc func(State, error)

// OpenOption customizes a single Open call.
type OpenOption func(*openOptions)

type openOptions struct {
	onState StateFunc
}

// WithStateListener registers an observer for state transitions. It is
// invoked with the state reached once the channel connect attempt resolves
// and on every later change, including Closed.
func WithStateListener(fn StateFunc) OpenOption {
	return func(o *openOptions) {
		o.onState = fn
	}
}

// Manager coordinates at most one order history subscription at a time.
type Manager struct {
	deps Dependencies

	mu      sync.Mutex
	active  *Subscription
	opening bool
}

// NewManager creates a Manager. Logger, Metrics and Now are optional.
func NewManager(deps Dependencies) *Manager {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Manager{deps: deps}
}

// Open loads orderID's history and subscribes to its live updates.
//
// A failed load returns a *HistoryLoadError and no channel is opened. A failed
// channel connect still returns the subscription with the historical entries;
// its state is Unavailable and Err reports the cause.
func (m *Manager) Open(ctx context.Context, orderID, authToken string, onUpdate UpdateFunc, opts ...OpenOption) (*Subscription, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return nil, errorutil.NewValidationError("order id is required", nil)
	}

	m.mu.Lock()
	if m.active != nil || m.opening {
		m.mu.Unlock()
		return nil, ErrSubscriptionActive
	}
	m.opening = true
	m.mu.Unlock()

	var options openOptions
	for _, opt := range opts {
		opt(&options)
	}

	sub, err := m.open(ctx, orderID, authToken, onUpdate, options)

	m.mu.Lock()
	m.opening = false
	if err == nil {
		m.active = sub
	}
	m.mu.Unlock()

	if err != nil {
		return nil, err
	}
	m.deps.Metrics.SubscriptionOpened()
	return sub, nil
}

func (m *Manager) open(ctx context.Context, orderID, authToken string, onUpdate UpdateFunc, options openOptions) (*Subscription, error) {
	logger := m.deps.Logger.With(zap.String("order_id", orderID))

	fetched, err := m.deps.Fetcher.FetchOrderHistory(ctx, authToken, orderID)
	if err != nil {
		logger.Warn("order history load failed", zap.Error(err))
		return nil, &HistoryLoadError{OrderID: orderID, Err: err}
	}

	initial := make([]domain.OrderHistoryEntry, 0, len(fetched))
	for _, e := range fetched {
		if e.OrderID == "" {
			e.OrderID = orderID
		}
		if e.OrderID != orderID {
			logger.Debug("skipping fetched entry for another order", zap.String("entry_order_id", e.OrderID))
			continue
		}
		e.IsRecent = false
		initial = append(initial, e)
	}
	initial = SortNewestFirst(initial)

	store := NewStore(orderID)
	store.Initialize(initial)

	sub := &Subscription{
		orderID:  orderID,
		store:    store,
		initial:  initial,
		onUpdate: onUpdate,
		onState:  options.onState,
		state:    StateConnecting,
		ids:      m.deps.IDs,
		now:      m.deps.Now,
		logger:   logger,
		metrics:  m.deps.Metrics,
		release:  m.release,
	}

	handle, err := m.deps.Factory.Connect(ctx, orderID, authToken)
	if err != nil {
		sub.connectFailed(err)
		return sub, nil
	}
	sub.attach(handle)
	return sub, nil
}

// Switch closes the active subscription, waiting for its disconnect, and
// opens orderID.
func (m *Manager) Switch(ctx context.Context, orderID, authToken string, onUpdate UpdateFunc, opts ...OpenOption) (*Subscription, error) {
	m.Close()
	return m.Open(ctx, orderID, authToken, onUpdate, opts...)
}

// Close closes the active subscription, if any.
func (m *Manager) Close() {
	if sub := m.Active(); sub != nil {
		sub.Close()
	}
}

// Active returns the current subscription or nil.
func (m *Manager) Active() *Subscription {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

func (m *Manager) release(sub *Subscription) {
	m.mu.Lock()
	released := m.active == sub
	if released {
		m.active = nil
	}
	m.mu.Unlock()
	if released {
		m.deps.Metrics.SubscriptionClosed()
	}
}

func classifyChannelError(orderID string, err error) error {
	if err == nil {
		err = channel.ErrTransport
	}
	if errors.Is(err, channel.ErrAuth) {
		return &ChannelAuthError{OrderID: orderID, Err: err}
	}
	return &ChannelTransportError{OrderID: orderID, Err: err}
}
