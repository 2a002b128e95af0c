package rpc

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"nhooyr.io/websocket"

	"creatorpay/core/events"
	"creatorpay/core/types"
)

const (
	wsWriteTimeout    = 10 * time.Second
	defaultHubBacklog = 64
)

type subscriber struct {
	ch     chan *types.Event
	filter map[string]bool
}

// Hub fans committed events out to websocket subscribers. Slow subscribers
// lose events rather than stall the state processor.
type Hub struct {
	mu      sync.RWMutex
	subs    map[uint64]*subscriber
	next    uint64
	backlog int
	closed  bool
}

func NewHub(backlog int) *Hub {
	if backlog <= 0 {
		backlog = defaultHubBacklog
	}
	return &Hub{subs: make(map[uint64]*subscriber), backlog: backlog}
}

// Emit implements events.Emitter.
func (h *Hub) Emit(evt events.Event) {
	wire := events.ToWire(evt)
	if wire == nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, sub := range h.subs {
		if len(sub.filter) > 0 && !sub.filter[wire.Type] {
			continue
		}
		select {
		case sub.ch <- wire.Clone():
		default:
			recordThrottle("ws_slow_consumer")
		}
	}
}

// Subscribe registers a listener for the given event types, or all types
// when none are listed.
func (h *Hub) Subscribe(eventTypes []string) (<-chan *types.Event, func()) {
	sub := &subscriber{ch: make(chan *types.Event, h.backlog)}
	if len(eventTypes) > 0 {
		sub.filter = make(map[string]bool, len(eventTypes))
		for _, t := range eventTypes {
			sub.filter[t] = true
		}
	}
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(sub.ch)
		return sub.ch, func() {}
	}
	id := h.next
	h.next++
	h.subs[id] = sub
	h.mu.Unlock()

	var once sync.Once
	return sub.ch, func() {
		once.Do(func() {
			h.mu.Lock()
			if _, ok := h.subs[id]; ok {
				delete(h.subs, id)
				close(sub.ch)
			}
			h.mu.Unlock()
		})
	}
}

// Close disconnects every subscriber.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for id, sub := range h.subs {
		close(sub.ch)
		delete(h.subs, id)
	}
}

func (s *Server) handleEventsWS(w http.ResponseWriter, r *http.Request) {
	if !s.limiter.Allow(clientID(r)) {
		recordThrottle("rate_limit")
		http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
		return
	}
	var filter []string
	if raw := strings.TrimSpace(r.URL.Query().Get("types")); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				filter = append(filter, t)
			}
		}
	}
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: []string{"*"}})
	if err != nil {
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "stream closed")

	updates, cancel := s.hub.Subscribe(filter)
	defer cancel()
	// Clients only listen; CloseRead cancels ctx once the peer goes away.
	ctx := conn.CloseRead(r.Context())
	if err := streamEvents(ctx, conn, updates); err != nil {
		if status := websocket.CloseStatus(err); status == -1 {
			_ = conn.Close(websocket.StatusInternalError, "stream error")
		}
	}
}

func streamEvents(ctx context.Context, conn *websocket.Conn, updates <-chan *types.Event) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case evt, ok := <-updates:
			if !ok {
				return nil
			}
			if err := writeEvent(ctx, conn, evt); err != nil {
				return err
			}
		}
	}
}

func writeEvent(ctx context.Context, conn *websocket.Conn, evt *types.Event) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	writeCtx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
	defer cancel()
	return conn.Write(writeCtx, websocket.MessageText, data)
}
