package ws

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Message is the envelope pushed to every connected client.
type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Broadcaster is the write side of the hub. Controllers depend on this
// interface so tests can capture events without sockets.
type Broadcaster interface {
	Broadcast(event string, data interface{})
}

// Hub fans events out to connected websocket clients: settings changes,
// price refreshes and executed trades. Clients that fail a write are
// dropped; there is no per-client replay.
type Hub struct {
	mu        sync.Mutex
	clients   map[*websocket.Conn]bool
	broadcast chan Message
	logger    *logrus.Logger
	upgrader  websocket.Upgrader
}

func NewHub(logger *logrus.Logger) *Hub {
	return &Hub{
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan Message, 64),
		logger:    logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Run consumes the broadcast channel. Start it once, in its own goroutine.
func (h *Hub) Run() {
	for msg := range h.broadcast {
		h.mu.Lock()
		for client := range h.clients {
			if err := client.WriteJSON(msg); err != nil {
				client.Close()
				delete(h.clients, client)
			}
		}
		h.mu.Unlock()
	}
}

// Broadcast queues an event without blocking the caller. When the channel
// is full the event is dropped: every event is a refresh hint, not state.
func (h *Hub) Broadcast(event string, data interface{}) {
	select {
	case h.broadcast <- Message{Event: event, Data: data}:
	default:
		h.logger.Warn("ws broadcast channel full, dropping event ", event)
	}
}

// ServeWS upgrades the request and registers the connection. The read loop
// exists only to detect the client going away.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("websocket upgrade failed")
		return
	}

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	go func() {
		defer func() {
			h.mu.Lock()
			delete(h.clients, conn)
			h.mu.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
