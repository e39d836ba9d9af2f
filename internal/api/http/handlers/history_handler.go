package handlers

import (
	"bufio"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/logistics-console/internal/api/dto"
	"github.com/spec-kit/logistics-console/internal/domain"
	"github.com/spec-kit/logistics-console/internal/history"
	"github.com/spec-kit/logistics-console/internal/service"
)

// HistoryHandler serves an order's status timeline, one-shot or as a live
// server-sent event stream.
type HistoryHandler struct {
	shipments *service.ShipmentService
	deps      history.Dependencies
	heartbeat time.Duration
	buffer    int
	logger    *zap.Logger
	// done ends every open stream on shutdown.
	done <-chan struct{}
}

// HistoryStreamConfig tunes the live stream.
type HistoryStreamConfig struct {
	Heartbeat time.Duration
	Buffer    int
	Done      <-chan struct{}
}

// NewHistoryHandler constructs handler. Every stream gets its own
// history.Manager built from deps.
func NewHistoryHandler(shipments *service.ShipmentService, deps history.Dependencies, cfg HistoryStreamConfig) *HistoryHandler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Heartbeat <= 0 {
		cfg.Heartbeat = 15 * time.Second
	}
	if cfg.Buffer <= 0 {
		cfg.Buffer = 32
	}
	return &HistoryHandler{
		shipments: shipments,
		deps:      deps,
		heartbeat: cfg.Heartbeat,
		buffer:    cfg.Buffer,
		logger:    logger,
		done:      cfg.Done,
	}
}

// Get GET /api/shipments/:id/history.
func (h *HistoryHandler) Get(c *fiber.Ctx) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}
	entries, err := h.shipments.History(c.UserContext(), session, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": entries})
}

type stateChange struct {
	state history.State
	err   error
}

// Stream GET /api/shipments/:id/history/stream.
//
// Events: "snapshot" with the historical entries, "entry" per live update in
// arrival order, "state" on every live-update state change.
func (h *HistoryHandler) Stream(c *fiber.Ctx) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}

	updates := make(chan domain.OrderHistoryEntry, h.buffer)
	states := make(chan stateChange, 8)
	orderID := c.Params("id")
	logger := h.logger.With(zap.String("order_id", orderID), zap.String("session_id", session.ID))

	manager := history.NewManager(h.deps)
	sub, err := manager.Open(c.UserContext(), orderID, session.BackendJWT,
		func(entry domain.OrderHistoryEntry) {
			select {
			case updates <- entry:
			default:
				logger.Warn("history stream lagging; live entry dropped", zap.String("entry_id", entry.ID))
			}
		},
		history.WithStateListener(func(state history.State, err error) {
			if dropped, ok := offerState(states, stateChange{state: state, err: err}); ok {
				logger.Warn("history stream lagging; stale state dropped", zap.String("state", string(dropped.state)))
			}
		}),
	)
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer manager.Close()
		h.pump(w, sub, updates, states, logger)
	})
	return nil
}

// offerState queues change without blocking. When the buffer is full the
// oldest queued change is discarded and returned so the latest state always
// reaches the client.
func offerState(states chan stateChange, change stateChange) (stateChange, bool) {
	select {
	case states <- change:
		return stateChange{}, false
	default:
	}

	var dropped stateChange
	var ok bool
	select {
	case dropped = <-states:
		ok = true
	default:
	}
	select {
	case states <- change:
	default:
	}
	return dropped, ok
}

func (h *HistoryHandler) pump(w *bufio.Writer, sub *history.Subscription, updates <-chan domain.OrderHistoryEntry, states <-chan stateChange, logger *zap.Logger) {
	if err := writeEvent(w, "snapshot", dto.HistorySnapshot{OrderID: sub.OrderID(), Entries: sub.InitialEntries()}); err != nil {
		return
	}
	last := stateChange{state: sub.State(), err: sub.Err()}
	if err := writeEvent(w, "state", historyState(last)); err != nil {
		return
	}

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-h.done:
			return
		case entry := <-updates:
			if err := writeEvent(w, "entry", entry); err != nil {
				logger.Debug("history stream closed by client", zap.Error(err))
				return
			}
		case change := <-states:
			if change.state == last.state && errorText(change.err) == errorText(last.err) {
				continue
			}
			last = change
			if err := writeEvent(w, "state", historyState(change)); err != nil {
				return
			}
		case <-ticker.C:
			if _, err := w.WriteString(": ping\n\n"); err != nil {
				return
			}
			if err := w.Flush(); err != nil {
				logger.Debug("history stream closed by client", zap.Error(err))
				return
			}
		}
	}
}

func writeEvent(w *bufio.Writer, event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	return w.Flush()
}

func historyState(change stateChange) dto.HistoryState {
	return dto.HistoryState{State: string(change.state), Error: errorText(change.err)}
}

func errorText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
