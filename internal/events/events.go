package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const TypeOrderCreated = "order.created"

// Publisher emits domain events after their transaction has committed.
type Publisher interface {
	PublishOrderCreated(ctx context.Context, e OrderCreated) error
	Close() error
}

type TicketBooked struct {
	FlightID int64 `json:"flight_id"`
	Row      int   `json:"row"`
	Seat     int   `json:"seat"`
}

// OrderCreated is written once per committed order.
type OrderCreated struct {
	EventID uuid.UUID      `json:"event_id"`
	Type    string         `json:"type"`
	OrderID int64          `json:"order_id"`
	UserID  int64          `json:"user_id"`
	Created time.Time      `json:"created"`
	Tickets []TicketBooked `json:"tickets"`
}

// NewOrderCreated stamps a fresh event id and type.
func NewOrderCreated(orderID, userID int64, created time.Time, tickets []TicketBooked) OrderCreated {
	return OrderCreated{
		EventID: uuid.New(),
		Type:    TypeOrderCreated,
		OrderID: orderID,
		UserID:  userID,
		Created: created,
		Tickets: tickets,
	}
}

// Nop drops every event. Used when Kafka is disabled.
type Nop struct{}

func (Nop) PublishOrderCreated(context.Context, OrderCreated) error { return nil }
func (Nop) Close() error                                            { return nil }
