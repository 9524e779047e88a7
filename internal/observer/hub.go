// Package observer manages the live observer channel of each exam session.
// At most one observer is attached per session; when it goes away the
// session's temporal state is dropped.
package observer

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"EXAM_PROCTOR/go-backend/internal/logging"
	"EXAM_PROCTOR/go-backend/internal/models"
	"EXAM_PROCTOR/go-backend/internal/services"
	"EXAM_PROCTOR/go-backend/internal/session"
)

// SessionStore drops a session's temporal state.
type SessionStore interface {
	Destroy(key session.Key) bool
}

type Hub struct {
	mu      sync.RWMutex
	clients map[session.Key]*client

	sessions SessionStore
	metrics  *services.Metrics
	upgrader websocket.Upgrader
	log      *slog.Logger
}

func NewHub(sessions SessionStore, metrics *services.Metrics) *Hub {
	if metrics == nil {
		metrics = services.GetMetrics()
	}
	return &Hub{
		clients:  make(map[session.Key]*client),
		sessions: sessions,
		metrics:  metrics,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		log: logging.With("component", "observer"),
	}
}

// ServeSession upgrades the request and attaches it as the session's
// observer. It blocks until the observer disconnects.
func (h *Hub) ServeSession(w http.ResponseWriter, r *http.Request, key session.Key) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("observer upgrade failed", "session", key.String(), "error", err)
		return
	}

	c := newClient(key, conn)
	h.attach(c)

	go h.writePump(c)
	h.readPump(c)
}

func (h *Hub) attach(c *client) {
	h.mu.Lock()
	prev, replaced := h.clients[c.key]
	h.clients[c.key] = c
	if replaced {
		prev.close()
	}
	h.mu.Unlock()

	h.metrics.IncrementObservers()
	if replaced {
		h.sessions.Destroy(c.key)
		h.log.Info("observer replaced, session state reset", "session", c.key.String())
		return
	}
	h.log.Info("observer attached", "session", c.key.String())
}

// detach removes c and, if it was still the session's observer, drops the
// session's temporal state.
func (h *Hub) detach(c *client) {
	h.mu.Lock()
	current := h.clients[c.key] == c
	if current {
		delete(h.clients, c.key)
	}
	c.close()
	h.mu.Unlock()

	h.metrics.DecrementObservers()
	if current {
		h.sessions.Destroy(c.key)
		h.log.Info("observer detached, session state dropped", "session", c.key.String())
	}
}

// Notify queues n for the session's observer. It reports false when no
// observer is attached or its queue is full.
func (h *Hub) Notify(key session.Key, n models.ObserverNotification) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	c, ok := h.clients[key]
	if !ok {
		return false
	}
	return h.trySend(c, n)
}

func (h *Hub) enqueue(c *client, msg any) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.clients[c.key] == c {
		h.trySend(c, msg)
	}
}

// trySend never blocks. Callers hold at least the read lock so the
// channel cannot be closed underneath.
func (h *Hub) trySend(c *client, msg any) bool {
	select {
	case c.send <- msg:
		return true
	default:
		h.metrics.IncrementObserverErrors()
		h.log.Warn("observer queue full, dropping message", "session", c.key.String())
		return false
	}
}

func (h *Hub) Attached(key session.Key) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[key]
	return ok
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// CloseAll disconnects every observer and drops their session state.
// Notifications sent afterwards find no observer.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	closed := make([]session.Key, 0, len(h.clients))
	for key, c := range h.clients {
		c.close()
		delete(h.clients, key)
		closed = append(closed, key)
	}
	h.mu.Unlock()

	for _, key := range closed {
		h.sessions.Destroy(key)
		h.log.Info("closed observer", "session", key.String())
	}
}
