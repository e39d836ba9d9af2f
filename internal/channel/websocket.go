package channel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	wsTypeJoin          = "join"
	wsTypeLeave         = "leave"
	wsTypeStatusChanged = "order_status_changed"

	wsWriteWait = 5 * time.Second
)

// wsEnvelope frames every message exchanged with the order hub.
type wsEnvelope struct {
	Type    string          `json:"type"`
	OrderID string          `json:"orderId,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// WebsocketFactory connects to the backend's order hub over a websocket.
type WebsocketFactory struct {
	URL              string
	HandshakeTimeout time.Duration
	Check            TokenCheck
	Buffer           int
	Logger           *zap.Logger
}

type websocketHandle struct {
	*baseHandle
	conn    *websocket.Conn
	orderID string
	writeMu sync.Mutex
	readers sync.WaitGroup
}

// Connect dials the hub with a bearer token and joins orderID's group.
func (f *WebsocketFactory) Connect(ctx context.Context, orderID, authToken string) (Handle, error) {
	if authToken == "" {
		return nil, fmt.Errorf("%w: missing token", ErrAuth)
	}
	if f.Check != nil {
		if err := f.Check(ctx, authToken); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrAuth, err)
		}
	}

	target, err := url.Parse(f.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid hub url: %v", ErrTransport, err)
	}
	q := target.Query()
	q.Set("orderId", orderID)
	target.RawQuery = q.Encode()

	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: f.HandshakeTimeout,
	}
	if dialer.HandshakeTimeout <= 0 {
		dialer.HandshakeTimeout = 10 * time.Second
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+authToken)

	conn, resp, err := dialer.DialContext(ctx, target.String(), header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		if resp != nil && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden) {
			return nil, fmt.Errorf("%w: hub returned %d", ErrAuth, resp.StatusCode)
		}
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}

	handle := &websocketHandle{conn: conn, orderID: orderID}
	handle.baseHandle = newBaseHandle(f.Buffer, handle.teardown)

	if err := handle.write(wsEnvelope{Type: wsTypeJoin, OrderID: orderID}); err != nil {
		_ = handle.Disconnect()
		return nil, fmt.Errorf("%w: join group: %v", ErrTransport, err)
	}

	handle.readers.Add(1)
	go handle.readLoop(f.logger())
	return handle, nil
}

func (f *WebsocketFactory) logger() *zap.Logger {
	if f.Logger == nil {
		return zap.NewNop()
	}
	return f.Logger
}

func (h *websocketHandle) write(msg wsEnvelope) error {
	h.writeMu.Lock()
	defer h.writeMu.Unlock()
	_ = h.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return h.conn.WriteJSON(msg)
}

func (h *websocketHandle) readLoop(logger *zap.Logger) {
	defer h.readers.Done()
	for {
		_, data, err := h.conn.ReadMessage()
		if err != nil {
			if h.closed() {
				return
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.fail(StateDisconnected, fmt.Errorf("%w: hub closed the connection", ErrTransport))
				return
			}
			var closeErr *websocket.CloseError
			if errors.As(err, &closeErr) && closeErr.Code == websocket.ClosePolicyViolation {
				h.fail(StateError, fmt.Errorf("%w: %s", ErrAuth, closeErr.Text))
				return
			}
			h.fail(StateError, fmt.Errorf("%w: %v", ErrTransport, err))
			return
		}

		var env wsEnvelope
		if err := json.Unmarshal(data, &env); err != nil {
			logger.Debug("ignoring non-envelope hub message", zap.String("order_id", h.orderID), zap.Error(err))
			continue
		}
		if env.Type != wsTypeStatusChanged || len(env.Payload) == 0 {
			continue
		}
		if !h.push([]byte(env.Payload)) {
			return
		}
	}
}

func (h *websocketHandle) teardown() error {
	_ = h.write(wsEnvelope{Type: wsTypeLeave, OrderID: h.orderID})
	h.writeMu.Lock()
	_ = h.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(wsWriteWait))
	h.writeMu.Unlock()
	err := h.conn.Close()
	h.readers.Wait()
	return err
}
