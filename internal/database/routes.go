package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// AirportLabel is what a route description needs to know about an airport.
type AirportLabel struct {
	Name    string
	City    string
	Country string
}

func (a AirportLabel) String() string {
	return fmt.Sprintf("%s (%s / %s)", a.Name, a.City, a.Country)
}

// DescribeRoute renders the human readable description stored with a route.
func DescribeRoute(source, destination AirportLabel) string {
	return fmt.Sprintf("From %s to %s", source, destination)
}

// routeJoins resolves both ends of a route alias r down to their countries.
const routeJoins = `
	JOIN airports sa ON sa.id = r.source_id
	JOIN cities sc ON sc.id = sa.closest_big_city_id
	JOIN countries sco ON sco.id = sc.country_id
	JOIN airports da ON da.id = r.destination_id
	JOIN cities dc ON dc.id = da.closest_big_city_id
	JOIN countries dco ON dco.id = dc.country_id
`

const routeViewQuery = `
	SELECT r.id,
	       sa.id, sa.name, sc.id, sc.name, sco.name,
	       da.id, da.name, dc.id, dc.name, dco.name,
	       r.distance, r.description
	FROM routes r
` + routeJoins

func scanRouteView(row pgx.Row) (RouteView, error) {
	var r RouteView
	err := row.Scan(
		&r.ID,
		&r.Source.ID, &r.Source.Name, &r.Source.ClosestBigCity.ID, &r.Source.ClosestBigCity.Name, &r.Source.ClosestBigCity.Country,
		&r.Destination.ID, &r.Destination.Name, &r.Destination.ClosestBigCity.ID, &r.Destination.ClosestBigCity.Name, &r.Destination.ClosestBigCity.Country,
		&r.Distance, &r.Description,
	)
	return r, err
}

type Routes struct {
	db   DB
	mode MatchMode
}

// List returns routes matching the filter of q
func (s *Routes) List(ctx context.Context, q ListQuery) ([]RouteView, error) {
	where, args := q.Route.where(s.mode, nil)

	rows, err := s.db.Query(ctx, routeViewQuery+where+` ORDER BY r.id`, args...)
	if err != nil {
		return nil, wrap("query routes", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (RouteView, error) {
		return scanRouteView(row)
	})
}

func (s *Routes) Detail(ctx context.Context, id int64) (*RouteView, error) {
	r, err := scanRouteView(s.db.QueryRow(ctx, routeViewQuery+` WHERE r.id = $1`, id))
	if err != nil {
		return nil, wrap("get route", err)
	}
	return &r, nil
}

func (s *Routes) Get(ctx context.Context, id int64) (*Route, error) {
	var r Route
	err := s.db.QueryRow(ctx, `
		SELECT id, source_id, destination_id, distance, description FROM routes WHERE id = $1
	`, id).Scan(&r.ID, &r.SourceID, &r.DestinationID, &r.Distance, &r.Description)
	if err != nil {
		return nil, wrap("get route", err)
	}
	return &r, nil
}

// Create stores a route together with its freshly computed description.
func (s *Routes) Create(ctx context.Context, r *Route) error {
	return inTx(ctx, s.db, func(tx pgx.Tx) error {
		desc, err := describe(ctx, tx, r.SourceID, r.DestinationID)
		if err != nil {
			return err
		}

		err = tx.QueryRow(ctx, `
			INSERT INTO routes (source_id, destination_id, distance, description)
			VALUES ($1, $2, $3, $4)
			RETURNING id
		`, r.SourceID, r.DestinationID, r.Distance, desc).Scan(&r.ID)
		if err != nil {
			return wrap("create route", err)
		}
		r.Description = desc
		return nil
	})
}

// Update rewrites a route and recomputes its description in the same transaction.
func (s *Routes) Update(ctx context.Context, id int64, r *Route) error {
	return inTx(ctx, s.db, func(tx pgx.Tx) error {
		desc, err := describe(ctx, tx, r.SourceID, r.DestinationID)
		if err != nil {
			return err
		}

		tag, err := tx.Exec(ctx, `
			UPDATE routes
			SET source_id = $2, destination_id = $3, distance = $4, description = $5
			WHERE id = $1
		`, id, r.SourceID, r.DestinationID, r.Distance, desc)
		if err != nil {
			return wrap("update route", err)
		}
		if err := affected(tag); err != nil {
			return err
		}
		r.ID = id
		r.Description = desc
		return nil
	})
}

func (s *Routes) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, s.db, "routes", id)
}

func describe(ctx context.Context, db DBTX, sourceID, destinationID int64) (string, error) {
	src, err := airportLabel(ctx, db, sourceID)
	if err != nil {
		return "", fmt.Errorf("source airport %d: %w", sourceID, err)
	}
	dst, err := airportLabel(ctx, db, destinationID)
	if err != nil {
		return "", fmt.Errorf("destination airport %d: %w", destinationID, err)
	}
	return DescribeRoute(src, dst), nil
}

func airportLabel(ctx context.Context, db DBTX, id int64) (AirportLabel, error) {
	var l AirportLabel
	err := db.QueryRow(ctx, `
		SELECT a.name, ci.name, co.name
		FROM airports a
		JOIN cities ci ON ci.id = a.closest_big_city_id
		JOIN countries co ON co.id = ci.country_id
		WHERE a.id = $1
	`, id).Scan(&l.Name, &l.City, &l.Country)
	if err != nil {
		return l, classify(err)
	}
	return l, nil
}
