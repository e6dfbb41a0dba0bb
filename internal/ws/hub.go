package ws

import (
	"encoding/json"
	"log"
	"sync"

	"go-sheet-sales/internal/model"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
)

// Event is one broadcast frame. Every successful recordSale publishes a
// sale_recorded event so the sales form can live-update.
type Event struct {
	ID      string             `json:"id"`
	Type    string             `json:"type"`
	Mode    string             `json:"mode,omitempty"`
	Message string             `json:"message,omitempty"`
	Sale    *model.SalesRecord `json:"sale,omitempty"`
}

// Hub fans Events out to connected websocket clients.
type Hub struct {
	clients    map[*websocket.Conn]bool
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	events     chan Event
	mu         sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*websocket.Conn]bool),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		events:     make(chan Event, 16),
	}
}

// Add registers a connection with the hub.
func (h *Hub) Add(conn *websocket.Conn) { h.register <- conn }

// Remove unregisters and closes a connection.
func (h *Hub) Remove(conn *websocket.Conn) { h.unregister <- conn }

// Publish queues an event for broadcast, assigning an id when absent.
// It never blocks; when the buffer is full the event is dropped.
func (h *Hub) Publish(ev Event) {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	select {
	case h.events <- ev:
	default:
		log.Println("ws: event buffer full, dropping", ev.Type)
	}
}

func (h *Hub) Run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			h.clients[conn] = true
			h.mu.Unlock()
			log.Println("ws: client connected")

		case conn := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[conn]; ok {
				delete(h.clients, conn)
				conn.Close()
			}
			h.mu.Unlock()

		case ev := <-h.events:
			msg, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			h.mu.Lock()
			for conn := range h.clients {
				if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
					conn.Close()
					delete(h.clients, conn)
				}
			}
			h.mu.Unlock()
		}
	}
}
