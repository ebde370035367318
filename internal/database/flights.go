package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/cx-tal-miterani/airport-booking/internal/booking"
)

type Flights struct {
	db   DB
	mode MatchMode
}

// Taken tickets are counted at read time; nothing is stored on the flight.
const flightListQuery = `
	SELECT f.id, r.description, a.name, f.departure_time, f.arrival_time,
	       a.rows, a.seats_in_row, COUNT(t.id)
	FROM flights f
	JOIN airplanes a ON a.id = f.airplane_id
	JOIN routes r ON r.id = f.route_id
` + routeJoins + `
	LEFT JOIN tickets t ON t.flight_id = f.id
`

const flightListGroup = ` GROUP BY f.id, r.description, a.name, a.rows, a.seats_in_row ORDER BY f.departure_time, f.id`

// List returns flights with ticket counters, narrowed by the route filter of q
func (s *Flights) List(ctx context.Context, q ListQuery) ([]FlightView, error) {
	where, args := q.Route.where(s.mode, nil)

	rows, err := s.db.Query(ctx, flightListQuery+where+flightListGroup, args...)
	if err != nil {
		return nil, wrap("query flights", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (FlightView, error) {
		var (
			f     FlightView
			g     booking.Geometry
			taken int
		)
		if err := row.Scan(&f.ID, &f.Route, &f.Airplane, &f.DepartureTime, &f.ArrivalTime,
			&g.Rows, &g.SeatsInRow, &taken); err != nil {
			return f, err
		}
		f.Tickets = booking.NewSummary(g, taken)
		return f, nil
	})
}

// Detail returns the flight with its crew and the taken and free seats.
func (s *Flights) Detail(ctx context.Context, id int64) (*FlightDetail, error) {
	var (
		d FlightDetail
		g booking.Geometry
	)
	err := s.db.QueryRow(ctx, `
		SELECT f.id, a.name, r.description, f.departure_time, f.arrival_time, a.rows, a.seats_in_row
		FROM flights f
		JOIN airplanes a ON a.id = f.airplane_id
		JOIN routes r ON r.id = f.route_id
		WHERE f.id = $1
	`, id).Scan(&d.ID, &d.Airplane, &d.Route, &d.DepartureTime, &d.ArrivalTime, &g.Rows, &g.SeatsInRow)
	if err != nil {
		return nil, wrap("get flight", err)
	}

	crew, err := s.crew(ctx, id)
	if err != nil {
		return nil, err
	}
	d.Crew = make([]string, 0, len(crew))
	for _, c := range crew {
		d.Crew = append(d.Crew, c.Label())
	}

	taken, err := s.TakenSeats(ctx, id)
	if err != nil {
		return nil, err
	}
	d.TakenTickets = make([]string, 0, len(taken))
	for _, seat := range taken {
		d.TakenTickets = append(d.TakenTickets, seat.Label())
	}
	d.AvailableTickets = booking.Labels(booking.AvailableSeats(g, taken))

	return &d, nil
}

// TakenSeats returns every booked seat of a flight in a single query.
func (s *Flights) TakenSeats(ctx context.Context, flightID int64) ([]booking.Seat, error) {
	rows, err := s.db.Query(ctx, `
		SELECT "row", seat FROM tickets WHERE flight_id = $1 ORDER BY "row", seat
	`, flightID)
	if err != nil {
		return nil, wrap("query taken seats", err)
	}
	seats, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (booking.Seat, error) {
		var seat booking.Seat
		err := row.Scan(&seat.Row, &seat.Seat)
		return seat, err
	})
	if err != nil {
		return nil, wrap("scan taken seats", err)
	}
	return seats, nil
}

func (s *Flights) crew(ctx context.Context, flightID int64) ([]Crew, error) {
	rows, err := s.db.Query(ctx, `
		SELECT c.id, c.first_name, c.last_name, c.position
		FROM crews c
		JOIN flight_crew fc ON fc.crew_id = c.id
		WHERE fc.flight_id = $1
		ORDER BY c.id
	`, flightID)
	if err != nil {
		return nil, wrap("query flight crew", err)
	}
	return pgx.CollectRows(rows, scanCrew)
}

// Get returns the writable fields of a flight, crew ids included
func (s *Flights) Get(ctx context.Context, id int64) (*Flight, error) {
	var f Flight
	err := s.db.QueryRow(ctx, `
		SELECT f.id, f.route_id, f.airplane_id, f.departure_time, f.arrival_time,
		       ARRAY(SELECT fc.crew_id FROM flight_crew fc WHERE fc.flight_id = f.id ORDER BY fc.crew_id)
		FROM flights f
		WHERE f.id = $1
	`, id).Scan(&f.ID, &f.RouteID, &f.AirplaneID, &f.DepartureTime, &f.ArrivalTime, &f.Crew)
	if err != nil {
		return nil, wrap("get flight", err)
	}
	return &f, nil
}

// Create stores a flight and its crew assignment atomically.
func (s *Flights) Create(ctx context.Context, f *Flight) error {
	if f.Crew == nil {
		f.Crew = []int64{}
	}
	return inTx(ctx, s.db, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO flights (route_id, airplane_id, departure_time, arrival_time)
			VALUES ($1, $2, $3, $4)
			RETURNING id
		`, f.RouteID, f.AirplaneID, f.DepartureTime, f.ArrivalTime).Scan(&f.ID)
		if err != nil {
			return wrap("create flight", err)
		}
		return assignCrew(ctx, tx, f.ID, f.Crew)
	})
}

// Update rewrites a flight and replaces its crew assignment.
func (s *Flights) Update(ctx context.Context, id int64, f *Flight) error {
	if f.Crew == nil {
		f.Crew = []int64{}
	}
	return inTx(ctx, s.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE flights
			SET route_id = $2, airplane_id = $3, departure_time = $4, arrival_time = $5
			WHERE id = $1
		`, id, f.RouteID, f.AirplaneID, f.DepartureTime, f.ArrivalTime)
		if err != nil {
			return wrap("update flight", err)
		}
		if err := affected(tag); err != nil {
			return err
		}
		f.ID = id

		if _, err := tx.Exec(ctx, `DELETE FROM flight_crew WHERE flight_id = $1`, id); err != nil {
			return wrap("clear flight crew", err)
		}
		return assignCrew(ctx, tx, id, f.Crew)
	})
}

func (s *Flights) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, s.db, "flights", id)
}

func assignCrew(ctx context.Context, tx pgx.Tx, flightID int64, crew []int64) error {
	if len(crew) == 0 {
		return nil
	}
	_, err := tx.Exec(ctx, `
		INSERT INTO flight_crew (flight_id, crew_id)
		SELECT $1, unnest($2::bigint[])
		ON CONFLICT DO NOTHING
	`, flightID, crew)
	if err != nil {
		return wrap(fmt.Sprintf("assign crew to flight %d", flightID), err)
	}
	return nil
}
