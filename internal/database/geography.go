package database

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// --- Countries ---

type Countries struct {
	db DB
}

const countryViewQuery = `
	SELECT c.id, c.name,
	       COALESCE(array_agg(ci.name ORDER BY ci.id) FILTER (WHERE ci.id IS NOT NULL), '{}')
	FROM countries c
	LEFT JOIN cities ci ON ci.country_id = c.id
`

func scanCountryView(row pgx.Row) (CountryView, error) {
	var c CountryView
	err := row.Scan(&c.ID, &c.Name, &c.Cities)
	return c, err
}

// List returns all countries with the names of their cities
func (s *Countries) List(ctx context.Context, _ ListQuery) ([]CountryView, error) {
	rows, err := s.db.Query(ctx, countryViewQuery+` GROUP BY c.id ORDER BY c.id`)
	if err != nil {
		return nil, wrap("query countries", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (CountryView, error) {
		return scanCountryView(row)
	})
}

func (s *Countries) Detail(ctx context.Context, id int64) (*CountryView, error) {
	c, err := scanCountryView(s.db.QueryRow(ctx, countryViewQuery+` WHERE c.id = $1 GROUP BY c.id`, id))
	if err != nil {
		return nil, wrap("get country", err)
	}
	return &c, nil
}

func (s *Countries) Get(ctx context.Context, id int64) (*Country, error) {
	var c Country
	err := s.db.QueryRow(ctx, `SELECT id, name FROM countries WHERE id = $1`, id).Scan(&c.ID, &c.Name)
	if err != nil {
		return nil, wrap("get country", err)
	}
	return &c, nil
}

func (s *Countries) Create(ctx context.Context, c *Country) error {
	err := s.db.QueryRow(ctx, `INSERT INTO countries (name) VALUES ($1) RETURNING id`, c.Name).Scan(&c.ID)
	if err != nil {
		return wrap("create country", err)
	}
	return nil
}

func (s *Countries) Update(ctx context.Context, id int64, c *Country) error {
	tag, err := s.db.Exec(ctx, `UPDATE countries SET name = $2 WHERE id = $1`, id, c.Name)
	if err != nil {
		return wrap("update country", err)
	}
	c.ID = id
	return affected(tag)
}

func (s *Countries) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, s.db, "countries", id)
}

// --- Cities ---

type Cities struct {
	db DB
}

const cityViewQuery = `
	SELECT ci.id, ci.name, co.name
	FROM cities ci
	JOIN countries co ON co.id = ci.country_id
`

func scanCityView(row pgx.Row) (CityView, error) {
	var c CityView
	err := row.Scan(&c.ID, &c.Name, &c.Country)
	return c, err
}

// List returns all cities with their country name
func (s *Cities) List(ctx context.Context, _ ListQuery) ([]CityView, error) {
	rows, err := s.db.Query(ctx, cityViewQuery+` ORDER BY ci.id`)
	if err != nil {
		return nil, wrap("query cities", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (CityView, error) {
		return scanCityView(row)
	})
}

func (s *Cities) Detail(ctx context.Context, id int64) (*CityView, error) {
	c, err := scanCityView(s.db.QueryRow(ctx, cityViewQuery+` WHERE ci.id = $1`, id))
	if err != nil {
		return nil, wrap("get city", err)
	}
	return &c, nil
}

func (s *Cities) Get(ctx context.Context, id int64) (*City, error) {
	var c City
	err := s.db.QueryRow(ctx, `SELECT id, name, country_id FROM cities WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.CountryID)
	if err != nil {
		return nil, wrap("get city", err)
	}
	return &c, nil
}

func (s *Cities) Create(ctx context.Context, c *City) error {
	err := s.db.QueryRow(ctx, `INSERT INTO cities (name, country_id) VALUES ($1, $2) RETURNING id`,
		c.Name, c.CountryID).Scan(&c.ID)
	if err != nil {
		return wrap("create city", err)
	}
	return nil
}

func (s *Cities) Update(ctx context.Context, id int64, c *City) error {
	tag, err := s.db.Exec(ctx, `UPDATE cities SET name = $2, country_id = $3 WHERE id = $1`,
		id, c.Name, c.CountryID)
	if err != nil {
		return wrap("update city", err)
	}
	c.ID = id
	return affected(tag)
}

func (s *Cities) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, s.db, "cities", id)
}

// --- Airports ---

type Airports struct {
	db DB
}

const airportViewQuery = `
	SELECT a.id, a.name, ci.id, ci.name, co.name
	FROM airports a
	JOIN cities ci ON ci.id = a.closest_big_city_id
	JOIN countries co ON co.id = ci.country_id
`

func scanAirportView(row pgx.Row) (AirportView, error) {
	var a AirportView
	err := row.Scan(&a.ID, &a.Name, &a.ClosestBigCity.ID, &a.ClosestBigCity.Name, &a.ClosestBigCity.Country)
	return a, err
}

// List returns all airports with their closest big city
func (s *Airports) List(ctx context.Context, _ ListQuery) ([]AirportView, error) {
	rows, err := s.db.Query(ctx, airportViewQuery+` ORDER BY a.id`)
	if err != nil {
		return nil, wrap("query airports", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (AirportView, error) {
		return scanAirportView(row)
	})
}

func (s *Airports) Detail(ctx context.Context, id int64) (*AirportView, error) {
	a, err := scanAirportView(s.db.QueryRow(ctx, airportViewQuery+` WHERE a.id = $1`, id))
	if err != nil {
		return nil, wrap("get airport", err)
	}
	return &a, nil
}

func (s *Airports) Get(ctx context.Context, id int64) (*Airport, error) {
	var a Airport
	err := s.db.QueryRow(ctx, `SELECT id, name, closest_big_city_id FROM airports WHERE id = $1`, id).
		Scan(&a.ID, &a.Name, &a.ClosestBigCityID)
	if err != nil {
		return nil, wrap("get airport", err)
	}
	return &a, nil
}

func (s *Airports) Create(ctx context.Context, a *Airport) error {
	err := s.db.QueryRow(ctx, `
		INSERT INTO airports (name, closest_big_city_id) VALUES ($1, $2) RETURNING id
	`, a.Name, a.ClosestBigCityID).Scan(&a.ID)
	if err != nil {
		return wrap("create airport", err)
	}
	return nil
}

func (s *Airports) Update(ctx context.Context, id int64, a *Airport) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE airports SET name = $2, closest_big_city_id = $3 WHERE id = $1
	`, id, a.Name, a.ClosestBigCityID)
	if err != nil {
		return wrap("update airport", err)
	}
	a.ID = id
	return affected(tag)
}

func (s *Airports) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, s.db, "airports", id)
}
