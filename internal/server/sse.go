package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const (
	clientBuffer      = 64
	heartbeatInterval = 30 * time.Second
)

// Event is a single server-sent event.
type Event struct {
	Name string `json:"event"`
	Data any    `json:"data"`
}

// Broadcaster fans frames out to every connected stream client. Each client
// has a buffered channel; a full channel drops the event for that client
// only, so a stalled browser never holds up the simulation.
type Broadcaster struct {
	mu      sync.RWMutex
	clients map[string]chan Event
	closed  bool
	log     *zap.Logger
	gauge   prometheus.Gauge
}

// NewBroadcaster creates a broadcaster. gauge may be nil.
func NewBroadcaster(log *zap.Logger, gauge prometheus.Gauge) *Broadcaster {
	if log == nil {
		log = zap.NewNop()
	}
	return &Broadcaster{
		clients: make(map[string]chan Event),
		log:     log,
		gauge:   gauge,
	}
}

// Subscribe registers a client. The returned channel is closed on
// Unsubscribe or Close. ok is false once the broadcaster is closed.
func (b *Broadcaster) Subscribe(clientID string) (ch chan Event, ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, false
	}
	ch = make(chan Event, clientBuffer)
	b.clients[clientID] = ch
	b.setGauge()
	b.log.Debug("client subscribed", zap.String("client", clientID), zap.Int("total", len(b.clients)))
	return ch, true
}

// Unsubscribe removes a client and closes its channel.
func (b *Broadcaster) Unsubscribe(clientID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch, ok := b.clients[clientID]; ok {
		close(ch)
		delete(b.clients, clientID)
		b.setGauge()
		b.log.Debug("client unsubscribed", zap.String("client", clientID), zap.Int("remaining", len(b.clients)))
	}
}

// Broadcast sends ev to every client without blocking.
func (b *Broadcaster) Broadcast(ev Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for id, ch := range b.clients {
		select {
		case ch <- ev:
		default:
			b.log.Debug("dropping event for slow client", zap.String("event", ev.Name), zap.String("client", id))
		}
	}
}

// Close disconnects every client and refuses new ones.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	for id, ch := range b.clients {
		close(ch)
		delete(b.clients, id)
	}
	b.setGauge()
}

// ClientCount returns the number of connected clients.
func (b *Broadcaster) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

// setGauge must be called with mu held.
func (b *Broadcaster) setGauge() {
	if b.gauge != nil {
		b.gauge.Set(float64(len(b.clients)))
	}
}

// handleEvents streams frames as server-sent events. The current frame is
// sent immediately so a fresh page can draw before the next tick.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "streaming unsupported"})
		return
	}

	clientID := uuid.NewString()
	ch, ok := s.sse.Subscribe(clientID)
	if !ok {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "server shutting down"})
		return
	}
	defer s.sse.Unsubscribe(clientID)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	if err := writeEvent(w, flusher, Event{Name: "frame", Data: s.engine.Frame()}); err != nil {
		return
	}

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-ch:
			if !ok {
				return
			}
			if err := writeEvent(w, flusher, ev); err != nil {
				return
			}

		case t := <-heartbeat.C:
			if err := writeEvent(w, flusher, Event{Name: "heartbeat", Data: map[string]any{"ts": t.UnixMilli()}}); err != nil {
				return
			}
		}
	}
}

func writeEvent(w http.ResponseWriter, flusher http.Flusher, ev Event) error {
	data, err := json.Marshal(ev.Data)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", ev.Name, err)
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Name, data); err != nil {
		return err
	}
	flusher.Flush()
	return nil
}
