package channel

import (
	"sync"
	"time"
)

const defaultEventBuffer = 64

// baseHandle implements buffering, ordered delivery and state replay for the
// transport adapters. Adapters feed it from their read loop via push and
// report failures via fail.
type baseHandle struct {
	events chan RawEvent
	ready  chan struct{}
	done   chan struct{}

	mu           sync.Mutex
	handler      EventHandler
	stateHandler StateHandler
	state        ConnState
	stateErr     error

	closeOnce sync.Once
	closeErr  error
	teardown  func() error
}

func newBaseHandle(buffer int, teardown func() error) *baseHandle {
	if buffer <= 0 {
		buffer = defaultEventBuffer
	}
	h := &baseHandle{
		events:   make(chan RawEvent, buffer),
		ready:    make(chan struct{}),
		done:     make(chan struct{}),
		state:    StateConnected,
		teardown: teardown,
	}
	go h.deliver()
	return h
}

func (h *baseHandle) OnEvent(handler EventHandler) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.handler != nil {
		return ErrHandlerRegistered
	}
	h.handler = handler
	close(h.ready)
	return nil
}

func (h *baseHandle) OnStateChange(handler StateHandler) {
	h.mu.Lock()
	h.stateHandler = handler
	state, err := h.state, h.stateErr
	h.mu.Unlock()
	if handler != nil {
		handler(state, err)
	}
}

func (h *baseHandle) Disconnect() error {
	h.closeOnce.Do(func() {
		close(h.done)
		h.mu.Lock()
		h.state = StateDisconnected
		h.mu.Unlock()
		if h.teardown != nil {
			h.closeErr = h.teardown()
		}
	})
	return h.closeErr
}

// push queues a payload; it blocks while the buffer is full and gives up once
// the handle is closed.
func (h *baseHandle) push(payload []byte) bool {
	ev := RawEvent{Payload: payload, ReceivedAt: time.Now()}
	select {
	case <-h.done:
		return false
	default:
	}
	select {
	case h.events <- ev:
		return true
	case <-h.done:
		return false
	}
}

// fail reports a transport-side loss. Ignored after Disconnect.
func (h *baseHandle) fail(state ConnState, err error) {
	if h.closed() {
		return
	}
	h.mu.Lock()
	h.state = state
	h.stateErr = err
	handler := h.stateHandler
	h.mu.Unlock()
	if handler != nil {
		handler(state, err)
	}
}

func (h *baseHandle) closed() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

func (h *baseHandle) deliver() {
	select {
	case <-h.ready:
	case <-h.done:
		return
	}
	for {
		select {
		case <-h.done:
			return
		case ev := <-h.events:
			if h.closed() {
				return
			}
			h.handler(ev)
		}
	}
}
