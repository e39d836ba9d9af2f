package channel

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// AMQPFactory consumes order status messages from a topic exchange. Each
// handle owns a temporary exclusive queue bound with "order.<id>". The
// caller's token is presented as the SASL PLAIN password.
type AMQPFactory struct {
	URL         string
	Exchange    string
	DialTimeout time.Duration
	Check       TokenCheck
	Buffer      int
}

type amqpHandle struct {
	*baseHandle
	conn    *amqp.Connection
	ch      *amqp.Channel
	readers sync.WaitGroup
}

// RoutingKey returns the binding key for orderID.
func RoutingKey(orderID string) string {
	return "order." + orderID
}

// Connect dials the broker, declares a private queue and binds it.
func (f *AMQPFactory) Connect(ctx context.Context, orderID, authToken string) (Handle, error) {
	if authToken == "" {
		return nil, fmt.Errorf("%w: missing token", ErrAuth)
	}
	if f.Check != nil {
		if err := f.Check(ctx, authToken); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrAuth, err)
		}
	}

	timeout := f.DialTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < timeout {
		timeout = time.Until(deadline)
	}

	conn, err := amqp.DialConfig(f.URL, amqp.Config{
		SASL: []amqp.Authentication{&amqp.PlainAuth{Username: "console", Password: authToken}},
		Dial: amqp.DefaultDial(timeout),
	})
	if err != nil {
		if isAMQPAuthError(err) {
			return nil, fmt.Errorf("%w: %v", ErrAuth, err)
		}
		return nil, fmt.Errorf("%w: dial broker: %v", ErrTransport, err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%w: open channel: %v", ErrTransport, err)
	}

	deliveries, err := f.bind(ch, orderID)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		if isAMQPAuthError(err) {
			return nil, fmt.Errorf("%w: %v", ErrAuth, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}

	handle := &amqpHandle{conn: conn, ch: ch}
	handle.baseHandle = newBaseHandle(f.Buffer, handle.teardown)
	closed := ch.NotifyClose(make(chan *amqp.Error, 1))
	handle.readers.Add(1)
	go handle.readLoop(deliveries, closed)
	return handle, nil
}

func (f *AMQPFactory) bind(ch *amqp.Channel, orderID string) (<-chan amqp.Delivery, error) {
	if err := ch.ExchangeDeclare(f.Exchange, "topic", true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		return nil, fmt.Errorf("declare queue: %w", err)
	}
	if err := ch.QueueBind(q.Name, RoutingKey(orderID), f.Exchange, false, nil); err != nil {
		return nil, fmt.Errorf("bind queue: %w", err)
	}
	deliveries, err := ch.Consume(q.Name, "", true, true, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("consume: %w", err)
	}
	return deliveries, nil
}

func (h *amqpHandle) readLoop(deliveries <-chan amqp.Delivery, closed <-chan *amqp.Error) {
	defer h.readers.Done()
	for {
		select {
		case amqpErr, ok := <-closed:
			if !ok || amqpErr == nil {
				h.fail(StateDisconnected, fmt.Errorf("%w: channel closed", ErrTransport))
				return
			}
			h.fail(StateError, fmt.Errorf("%w: %v", ErrTransport, amqpErr))
			return
		case d, ok := <-deliveries:
			if !ok {
				h.fail(StateDisconnected, fmt.Errorf("%w: delivery stream ended", ErrTransport))
				return
			}
			if !h.push(d.Body) {
				return
			}
		}
	}
}

func (h *amqpHandle) teardown() error {
	chErr := h.ch.Close()
	connErr := h.conn.Close()
	h.readers.Wait()
	if chErr != nil && !errors.Is(chErr, amqp.ErrClosed) {
		return chErr
	}
	if connErr != nil && !errors.Is(connErr, amqp.ErrClosed) {
		return connErr
	}
	return nil
}

func isAMQPAuthError(err error) bool {
	if errors.Is(err, amqp.ErrSASL) || errors.Is(err, amqp.ErrCredentials) {
		return true
	}
	var amqpErr *amqp.Error
	return errors.As(err, &amqpErr) && amqpErr.Code == amqp.AccessRefused
}
