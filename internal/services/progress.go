// services/progress.go
package services

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// ImportEvent is one progress update pushed to connected clients while a
// batch moves through parse -> validate -> aggregate.
type ImportEvent struct {
	Type        string    `json:"type"` // "batch_created", "parsed", "validated", "aggregated"
	BatchID     int       `json:"batch_id"`
	Source      string    `json:"source,omitempty"`
	RecordCount int       `json:"record_count,omitempty"`
	SkippedRows int       `json:"skipped_rows,omitempty"`
	IssueCount  int       `json:"issue_count,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// Client is one websocket subscriber of the hub.
type Client struct {
	Conn   *websocket.Conn
	Send   chan []byte
	UserID int
}

type ImportHub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

func NewImportHub() *ImportHub {
	hub := &ImportHub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
	go hub.Run()
	return hub
}

func (h *ImportHub) Register(client *Client) {
	h.register <- client
}

func (h *ImportHub) Unregister(client *Client) {
	h.unregister <- client
}

// Publish serializes the event and fans it out to every client.
func (h *ImportHub) Publish(event ImportEvent) {
	event.Timestamp = time.Now().UTC()
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to marshal import event: %v", err)
		return
	}
	h.broadcast <- data
}

func (h *ImportHub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
			h.mu.Unlock()
		case message := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				select {
				case client.Send <- message:
				default:
					close(client.Send)
					delete(h.clients, client)
				}
			}
			h.mu.RUnlock()
		}
	}
}

// ReadPump drains (and discards) client messages so pings and close
// frames are processed; the hub is broadcast-only.
func (h *ImportHub) ReadPump(client *Client) {
	defer func() {
		h.Unregister(client)
		client.Conn.Close()
	}()

	for {
		if _, _, err := client.Conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (h *ImportHub) WritePump(client *Client) {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		client.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-client.Send:
			if !ok {
				client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			client.Conn.WriteMessage(websocket.TextMessage, message)
		case <-ticker.C:
			client.Conn.WriteMessage(websocket.PingMessage, nil)
		}
	}
}
