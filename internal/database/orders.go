package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/cx-tal-miterani/airport-booking/internal/booking"
)

// Orders is the only writer of tickets. Every ticket goes through
// booking.Guard before it is inserted.
type Orders struct {
	db DB
}

// CreateOrder books all requested tickets as one order of userID, or none.
// Tickets are returned in request order.
func (s *Orders) CreateOrder(ctx context.Context, userID int64, reqs []booking.TicketRequest) (*Order, error) {
	if len(reqs) == 0 {
		return nil, booking.ErrEmptyOrder
	}

	order := &Order{UserID: userID}
	err := inTx(ctx, s.db, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO orders (user_id) VALUES ($1) RETURNING id, created_at
		`, userID).Scan(&order.ID, &order.Created)
		if err != nil {
			return wrap("create order", err)
		}

		w := &ticketWriter{
			tx:         tx,
			orderID:    order.ID,
			guard:      booking.NewGuard(),
			geometries: make(map[int64]booking.Geometry),
		}
		order.Tickets = make([]Ticket, 0, len(reqs))
		for i, req := range reqs {
			t, err := w.insert(ctx, i, req)
			if err != nil {
				return err
			}
			order.Tickets = append(order.Tickets, t)
		}
		return nil
	})
	if err != nil {
		var ticketErr *booking.TicketError
		if errors.Is(err, ErrConflict) && !errors.As(err, &ticketErr) {
			// a unique violation surfacing at commit can only be a seat
			return nil, fmt.Errorf("%w: %w", booking.ErrSeatTaken, err)
		}
		return nil, err
	}
	return order, nil
}

// ticketWriter inserts the tickets of a single order inside its transaction.
type ticketWriter struct {
	tx         pgx.Tx
	orderID    int64
	guard      *booking.Guard
	geometries map[int64]booking.Geometry
}

func (w *ticketWriter) insert(ctx context.Context, i int, req booking.TicketRequest) (Ticket, error) {
	g, err := w.geometry(ctx, req.FlightID)
	if err != nil {
		return Ticket{}, &booking.TicketError{Index: i, Err: err}
	}
	if err := w.guard.Check(i, req, g); err != nil {
		return Ticket{}, err
	}

	t := Ticket{Row: req.Row, Seat: req.Seat, FlightID: req.FlightID}
	err = w.tx.QueryRow(ctx, `
		INSERT INTO tickets ("row", seat, flight_id, order_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, req.Row, req.Seat, req.FlightID, w.orderID).Scan(&t.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return Ticket{}, &booking.TicketError{
				Index: i,
				Err:   fmt.Errorf("%w: row %d seat %d on flight %d", booking.ErrSeatTaken, req.Row, req.Seat, req.FlightID),
			}
		}
		return Ticket{}, &booking.TicketError{Index: i, Err: wrap("create ticket", err)}
	}
	return t, nil
}

func (w *ticketWriter) geometry(ctx context.Context, flightID int64) (booking.Geometry, error) {
	if g, ok := w.geometries[flightID]; ok {
		return g, nil
	}

	var g booking.Geometry
	err := w.tx.QueryRow(ctx, `
		SELECT a.rows, a.seats_in_row
		FROM flights f
		JOIN airplanes a ON a.id = f.airplane_id
		WHERE f.id = $1
	`, flightID).Scan(&g.Rows, &g.SeatsInRow)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return g, fmt.Errorf("flight %d: %w", flightID, ErrNotFound)
		}
		return g, wrap("get flight geometry", err)
	}
	w.geometries[flightID] = g
	return g, nil
}

const orderQuery = `
	SELECT o.id, o.created_at, t.id, t."row", t.seat,
	       f.id, r.description, a.name, f.departure_time, f.arrival_time
	FROM orders o
	JOIN tickets t ON t.order_id = o.id
	JOIN flights f ON f.id = t.flight_id
	JOIN routes r ON r.id = f.route_id
	JOIN airplanes a ON a.id = f.airplane_id
	WHERE o.user_id = $1
`

// ListOrders returns the orders of userID, newest first.
func (s *Orders) ListOrders(ctx context.Context, userID int64) ([]Order, error) {
	rows, err := s.db.Query(ctx, orderQuery+` ORDER BY o.id DESC, t.id`, userID)
	if err != nil {
		return nil, wrap("query orders", err)
	}
	return collectOrders(rows, userID)
}

// GetOrder returns one order of userID. Orders of other users are not found.
func (s *Orders) GetOrder(ctx context.Context, userID, orderID int64) (*Order, error) {
	rows, err := s.db.Query(ctx, orderQuery+` AND o.id = $2 ORDER BY t.id`, userID, orderID)
	if err != nil {
		return nil, wrap("get order", err)
	}
	orders, err := collectOrders(rows, userID)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, ErrNotFound
	}
	return &orders[0], nil
}

// collectOrders folds ticket rows, already sorted by order, into orders.
func collectOrders(rows pgx.Rows, userID int64) ([]Order, error) {
	defer rows.Close()

	orders := []Order{}
	for rows.Next() {
		var (
			o Order
			t Ticket
			f FlightBrief
		)
		err := rows.Scan(&o.ID, &o.Created, &t.ID, &t.Row, &t.Seat,
			&f.ID, &f.Route, &f.Airplane, &f.DepartureTime, &f.ArrivalTime)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		t.FlightID = f.ID
		t.Flight = &f

		if n := len(orders); n == 0 || orders[n-1].ID != o.ID {
			o.UserID = userID
			orders = append(orders, o)
		}
		last := &orders[len(orders)-1]
		last.Tickets = append(last.Tickets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read orders: %w", err)
	}
	return orders, nil
}
