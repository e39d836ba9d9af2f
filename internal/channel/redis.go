package channel

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/logistics-console/internal/domain"
)

// RedisFactory subscribes to a per-order pub/sub channel.
type RedisFactory struct {
	Client *redis.Client
	Prefix string
	Check  TokenCheck
	Buffer int
}

type redisHandle struct {
	*baseHandle
	pubsub  *redis.PubSub
	topic   string
	readers sync.WaitGroup
}

// Topic returns the pub/sub channel name for orderID.
func (f *RedisFactory) Topic(orderID string) string {
	return f.Prefix + orderID
}

// Connect subscribes to the order's topic and waits for the confirmation.
func (f *RedisFactory) Connect(ctx context.Context, orderID, authToken string) (Handle, error) {
	if authToken == "" {
		return nil, fmt.Errorf("%w: missing token", ErrAuth)
	}
	if f.Check != nil {
		if err := f.Check(ctx, authToken); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrAuth, err)
		}
	}

	topic := f.Topic(orderID)
	pubsub := f.Client.Subscribe(ctx, topic)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("%w: subscribe %s: %v", ErrTransport, topic, err)
	}

	handle := &redisHandle{pubsub: pubsub, topic: topic}
	handle.baseHandle = newBaseHandle(f.Buffer, handle.teardown)
	handle.readers.Add(1)
	go handle.readLoop()
	return handle, nil
}

// Publish sends a raw payload to the order's topic.
func (f *RedisFactory) Publish(ctx context.Context, orderID string, payload []byte) error {
	return f.Client.Publish(ctx, f.Topic(orderID), payload).Err()
}

// PublishEvent encodes event and publishes it to its order's topic.
func (f *RedisFactory) PublishEvent(ctx context.Context, event domain.OrderStatusEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return f.Publish(ctx, event.OrderID, payload)
}

func (h *redisHandle) readLoop() {
	defer h.readers.Done()
	for msg := range h.pubsub.Channel() {
		if !h.push([]byte(msg.Payload)) {
			return
		}
	}
	h.fail(StateDisconnected, fmt.Errorf("%w: subscription to %s ended", ErrTransport, h.topic))
}

func (h *redisHandle) teardown() error {
	_ = h.pubsub.Unsubscribe(context.Background(), h.topic)
	err := h.pubsub.Close()
	h.readers.Wait()
	return err
}
