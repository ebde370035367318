package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// MessageType represents the type of WebSocket message
type MessageType string

const (
	MessageTypeSeatsBooked MessageType = "seats_booked"
)

// SeatUpdate is one seat that changed state on a flight
type SeatUpdate struct {
	Row   int    `json:"row"`
	Seat  int    `json:"seat"`
	Label string `json:"label"`
}

// Message represents a WebSocket message
type Message struct {
	Type      MessageType  `json:"type"`
	FlightID  int64        `json:"flight_id"`
	OrderID   int64        `json:"order_id,omitempty"`
	Seats     []SeatUpdate `json:"seats,omitempty"`
	Timestamp int64        `json:"timestamp"`
}

// Hub fans seat updates out to the clients watching each flight.
// Only Run touches the client sets; mu guards them for ClientCount.
type Hub struct {
	clients    map[int64]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan *Message
	done       chan struct{}
	mu         sync.RWMutex
	log        *logrus.Logger
}

// NewHub creates a new Hub
func NewHub(log *logrus.Logger) *Hub {
	return &Hub{
		clients:    make(map[int64]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *Message, 256),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run starts the hub's main loop and returns when ctx is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			close(h.done)
			return

		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.flightID] == nil {
				h.clients[client.flightID] = make(map[*Client]bool)
			}
			h.clients[client.flightID][client] = true
			total := len(h.clients[client.flightID])
			h.mu.Unlock()
			h.log.WithFields(logrus.Fields{"flight_id": client.flightID, "clients": total}).
				Debug("websocket client registered")

		case client := <-h.unregister:
			h.remove(client)

		case message := <-h.broadcast:
			data, err := json.Marshal(message)
			if err != nil {
				h.log.WithError(err).Error("websocket: failed to marshal message")
				continue
			}

			h.mu.RLock()
			targets := make([]*Client, 0, len(h.clients[message.FlightID]))
			for client := range h.clients[message.FlightID] {
				targets = append(targets, client)
			}
			h.mu.RUnlock()

			h.log.WithFields(logrus.Fields{
				"type":      message.Type,
				"flight_id": message.FlightID,
				"clients":   len(targets),
			}).Debug("websocket broadcast")

			for _, client := range targets {
				select {
				case client.send <- data:
				default:
					// slow consumer
					h.remove(client)
				}
			}
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.clients[client.flightID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}
	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.clients, client.flightID)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for flightID, clients := range h.clients {
		for client := range clients {
			close(client.send)
		}
		delete(h.clients, flightID)
	}
}

// BroadcastSeatsBooked tells everyone watching flightID that seats were taken.
// It never blocks; a full queue drops the message.
func (h *Hub) BroadcastSeatsBooked(flightID, orderID int64, seats []SeatUpdate) {
	msg := &Message{
		Type:      MessageTypeSeatsBooked,
		FlightID:  flightID,
		OrderID:   orderID,
		Seats:     seats,
		Timestamp: time.Now().UnixMilli(),
	}

	select {
	case h.broadcast <- msg:
	default:
		h.log.WithField("flight_id", flightID).Warn("websocket: broadcast queue full, dropping update")
	}
}

// ClientCount returns the number of clients watching a flight
func (h *Hub) ClientCount(flightID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[flightID])
}
