package history

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/logistics-console/internal/channel"
	"github.com/spec-kit/logistics-console/internal/domain"
)

type fakeFetcher struct {
	entries map[string][]domain.OrderHistoryEntry
	err     error

	mu     sync.Mutex
	tokens []string
}

func (f *fakeFetcher) FetchOrderHistory(_ context.Context, authToken, orderID string) ([]domain.OrderHistoryEntry, error) {
	f.mu.Lock()
	f.tokens = append(f.tokens, authToken)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.entries[orderID], nil
}

type fakeHandle struct {
	mu          sync.Mutex
	handler     channel.EventHandler
	state       channel.StateHandler
	disconnects int
}

func (h *fakeHandle) OnEvent(handler channel.EventHandler) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.handler != nil {
		return channel.ErrHandlerRegistered
	}
	h.handler = handler
	return nil
}

func (h *fakeHandle) OnStateChange(handler channel.StateHandler) {
	h.mu.Lock()
	h.state = handler
	h.mu.Unlock()
	handler(channel.StateConnected, nil)
}

func (h *fakeHandle) Disconnect() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.disconnects++
	return nil
}

func (h *fakeHandle) emit(t *testing.T, payload any) {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	h.emitRaw(data)
}

func (h *fakeHandle) emitRaw(data []byte) {
	h.mu.Lock()
	handler := h.handler
	h.mu.Unlock()
	handler(channel.RawEvent{Payload: data, ReceivedAt: time.Now()})
}

func (h *fakeHandle) signal(state channel.ConnState, err error) {
	h.mu.Lock()
	handler := h.state
	h.mu.Unlock()
	handler(state, err)
}

func (h *fakeHandle) disconnectCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.disconnects
}

type fakeFactory struct {
	err error

	mu       sync.Mutex
	connects []string
	tokens   []string
	handles  []*fakeHandle
}

func (f *fakeFactory) Connect(_ context.Context, orderID, authToken string) (channel.Handle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connects = append(f.connects, orderID)
	f.tokens = append(f.tokens, authToken)
	if f.err != nil {
		return nil, f.err
	}
	h := &fakeHandle{}
	f.handles = append(f.handles, h)
	return h, nil
}

func (f *fakeFactory) connectCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.connects)
}

func (f *fakeFactory) last() *fakeHandle {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.handles[len(f.handles)-1]
}

type updates struct {
	mu      sync.Mutex
	entries []domain.OrderHistoryEntry
}

func (u *updates) record(entry domain.OrderHistoryEntry) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.entries = append(u.entries, entry)
}

func (u *updates) all() []domain.OrderHistoryEntry {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]domain.OrderHistoryEntry(nil), u.entries...)
}

func statuses(entries []domain.OrderHistoryEntry) []domain.ShipmentStatus {
	out := make([]domain.ShipmentStatus, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Status)
	}
	return out
}

func newTestIDs(t *testing.T) *IDGenerator {
	t.Helper()
	ids, err := NewIDGenerator(1)
	require.NoError(t, err)
	return ids
}
