package channel

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/spec-kit/logistics-console/internal/domain"
)

// MemoryHub is an in-process Factory. Handles join a group per order id and
// Publish fans payloads out to every member of the group.
type MemoryHub struct {
	mu     sync.RWMutex
	groups map[string]map[*memoryHandle]struct{}
	check  TokenCheck
	buffer int
}

type memoryHandle struct {
	*baseHandle
	orderID string
}

// NewMemoryHub creates an empty hub. check may be nil.
func NewMemoryHub(check TokenCheck, buffer int) *MemoryHub {
	return &MemoryHub{
		groups: make(map[string]map[*memoryHandle]struct{}),
		check:  check,
		buffer: buffer,
	}
}

// Connect joins the group for orderID.
func (h *MemoryHub) Connect(ctx context.Context, orderID, authToken string) (Handle, error) {
	if authToken == "" {
		return nil, fmt.Errorf("%w: missing token", ErrAuth)
	}
	if h.check != nil {
		if err := h.check(ctx, authToken); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrAuth, err)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}

	handle := &memoryHandle{orderID: orderID}
	handle.baseHandle = newBaseHandle(h.buffer, func() error {
		h.leave(handle)
		return nil
	})

	h.mu.Lock()
	members, ok := h.groups[orderID]
	if !ok {
		members = make(map[*memoryHandle]struct{})
		h.groups[orderID] = members
	}
	members[handle] = struct{}{}
	h.mu.Unlock()

	return handle, nil
}

// Publish delivers payload to every handle joined to orderID's group.
func (h *MemoryHub) Publish(ctx context.Context, orderID string, payload []byte) error {
	h.mu.RLock()
	members := make([]*memoryHandle, 0, len(h.groups[orderID]))
	for m := range h.groups[orderID] {
		members = append(members, m)
	}
	h.mu.RUnlock()

	for _, m := range members {
		if err := ctx.Err(); err != nil {
			return err
		}
		m.push(payload)
	}
	return nil
}

// PublishEvent encodes event and publishes it to its order's group.
func (h *MemoryHub) PublishEvent(ctx context.Context, event domain.OrderStatusEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return h.Publish(ctx, event.OrderID, payload)
}

// Drop simulates a connection loss for every member of orderID's group.
func (h *MemoryHub) Drop(orderID string, cause error) {
	h.mu.Lock()
	members := h.groups[orderID]
	delete(h.groups, orderID)
	h.mu.Unlock()

	for m := range members {
		m.fail(StateError, fmt.Errorf("%w: %v", ErrTransport, cause))
	}
}

// Members reports how many handles are joined to orderID's group.
func (h *MemoryHub) Members(orderID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.groups[orderID])
}

func (h *MemoryHub) leave(handle *memoryHandle) {
	h.mu.Lock()
	defer h.mu.Unlock()
	members := h.groups[handle.orderID]
	delete(members, handle)
	if len(members) == 0 {
		delete(h.groups, handle.orderID)
	}
}
