package server

import (
	"context"

	"github.com/gorilla/websocket"

	"github.com/electr1fy0/bluenotes/logger"
	"github.com/electr1fy0/bluenotes/notes"
)

// Message is pushed to preview pages when the store changes.
// Type is "hello" on connect and "changed" afterwards; Kind carries the
// store event.
type Message struct {
	Type string `json:"type"`
	ID   string `json:"id,omitempty"`
	Kind string `json:"kind,omitempty"`
}

// Hub fans store events out to connected preview pages.
type Hub struct {
	clients    map[*websocket.Conn]bool
	broadcast  chan Message
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	done       chan struct{}
	log        *logger.Logger
}

func newHub(log *logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[*websocket.Conn]bool),
		broadcast:  make(chan Message, 64),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		done:       make(chan struct{}),
		log:        log,
	}
}

// publish queues ev without blocking the mutating goroutine. Events are
// dropped when the queue is full; pages simply miss a reload.
func (h *Hub) publish(ev notes.Event) {
	msg := Message{Type: "changed", ID: ev.NoteID, Kind: string(ev.Kind)}
	select {
	case h.broadcast <- msg:
	default:
		h.log.Warn().Str("kind", msg.Kind).Msg("preview event dropped")
	}
}

func (h *Hub) run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				c.Close()
				delete(h.clients, c)
			}
			return
		case conn := <-h.register:
			h.clients[conn] = true
			h.log.Debug().Int("clients", len(h.clients)).Msg("client registered")
			if err := conn.WriteJSON(Message{Type: "hello"}); err != nil {
				conn.Close()
				delete(h.clients, conn)
			}
		case conn := <-h.unregister:
			if _, ok := h.clients[conn]; ok {
				delete(h.clients, conn)
				conn.Close()
				h.log.Debug().Int("clients", len(h.clients)).Msg("client unregistered")
			}
		case msg := <-h.broadcast:
			for c := range h.clients {
				if err := c.WriteJSON(msg); err != nil {
					h.log.Err(err).Msg("broadcast failed")
					c.Close()
					delete(h.clients, c)
				}
			}
		}
	}
}

// add registers conn. It reports false once the hub has stopped.
func (h *Hub) add(conn *websocket.Conn) bool {
	select {
	case h.register <- conn:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) remove(conn *websocket.Conn) {
	select {
	case h.unregister <- conn:
	case <-h.done:
	}
}
