package booking

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyOrder = errors.New("order must contain at least one ticket")
	ErrSeatTaken  = errors.New("seat is already taken")
)

// TicketRequest is one requested seat on one flight.
type TicketRequest struct {
	Row      int   `json:"row"`
	Seat     int   `json:"seat"`
	FlightID int64 `json:"flight" validate:"required,gt=0"`
}

// Key identifies a ticket system-wide.
type Key struct {
	FlightID int64
	Row      int
	Seat     int
}

func (r TicketRequest) Key() Key {
	return Key{FlightID: r.FlightID, Row: r.Row, Seat: r.Seat}
}

// TicketError ties a failure to the position of the ticket in its order.
type TicketError struct {
	Index int
	Err   error
}

func (e *TicketError) Error() string {
	return fmt.Sprintf("ticket %d: %v", e.Index, e.Err)
}

func (e *TicketError) Unwrap() error {
	return e.Err
}

// Guard is the pre-insert check every ticket goes through before it is
// written. It validates seat bounds and rejects seats already claimed
// earlier in the same batch. A Guard is meant for a single order.
type Guard struct {
	claimed map[Key]int
}

func NewGuard() *Guard {
	return &Guard{claimed: make(map[Key]int)}
}

// Check validates the ticket at index i against the geometry of its flight
// and records the claim.
func (g *Guard) Check(i int, req TicketRequest, geometry Geometry) error {
	if err := ValidateSeat(req.Row, req.Seat, geometry.Rows, geometry.SeatsInRow); err != nil {
		return &TicketError{Index: i, Err: err}
	}
	if first, ok := g.claimed[req.Key()]; ok {
		return &TicketError{
			Index: i,
			Err:   fmt.Errorf("%w: row %d seat %d already requested by ticket %d", ErrSeatTaken, req.Row, req.Seat, first),
		}
	}
	g.claimed[req.Key()] = i
	return nil
}
