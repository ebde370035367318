package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// deleteByID removes one row of a catalog table. table is never user input.
func deleteByID(ctx context.Context, db DBTX, table string, id int64) error {
	tag, err := db.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = $1", table), id)
	if err != nil {
		return wrap("delete from "+table, err)
	}
	return affected(tag)
}

// --- Airplane types ---

type AirplaneTypes struct {
	db DB
}

// List returns all airplane types
func (s *AirplaneTypes) List(ctx context.Context, _ ListQuery) ([]AirplaneType, error) {
	rows, err := s.db.Query(ctx, `SELECT id, name FROM airplane_types ORDER BY id`)
	if err != nil {
		return nil, wrap("query airplane types", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (AirplaneType, error) {
		var t AirplaneType
		err := row.Scan(&t.ID, &t.Name)
		return t, err
	})
}

func (s *AirplaneTypes) Detail(ctx context.Context, id int64) (*AirplaneType, error) {
	return s.Get(ctx, id)
}

// Get returns an airplane type by ID
func (s *AirplaneTypes) Get(ctx context.Context, id int64) (*AirplaneType, error) {
	var t AirplaneType
	err := s.db.QueryRow(ctx, `SELECT id, name FROM airplane_types WHERE id = $1`, id).Scan(&t.ID, &t.Name)
	if err != nil {
		return nil, wrap("get airplane type", err)
	}
	return &t, nil
}

func (s *AirplaneTypes) Create(ctx context.Context, t *AirplaneType) error {
	err := s.db.QueryRow(ctx, `INSERT INTO airplane_types (name) VALUES ($1) RETURNING id`, t.Name).Scan(&t.ID)
	if err != nil {
		return wrap("create airplane type", err)
	}
	return nil
}

func (s *AirplaneTypes) Update(ctx context.Context, id int64, t *AirplaneType) error {
	tag, err := s.db.Exec(ctx, `UPDATE airplane_types SET name = $2 WHERE id = $1`, id, t.Name)
	if err != nil {
		return wrap("update airplane type", err)
	}
	t.ID = id
	return affected(tag)
}

func (s *AirplaneTypes) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, s.db, "airplane_types", id)
}

// --- Airplanes ---

type Airplanes struct {
	db DB
}

const airplaneViewQuery = `
	SELECT a.id, a.name, a.rows, a.seats_in_row, t.name
	FROM airplanes a
	JOIN airplane_types t ON t.id = a.airplane_type_id
`

func scanAirplaneView(row pgx.Row) (AirplaneView, error) {
	var a AirplaneView
	err := row.Scan(&a.ID, &a.Name, &a.Rows, &a.SeatsInRow, &a.AirplaneType)
	return a, err
}

// List returns all airplanes with their type name
func (s *Airplanes) List(ctx context.Context, _ ListQuery) ([]AirplaneView, error) {
	rows, err := s.db.Query(ctx, airplaneViewQuery+` ORDER BY a.id`)
	if err != nil {
		return nil, wrap("query airplanes", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (AirplaneView, error) {
		return scanAirplaneView(row)
	})
}

func (s *Airplanes) Detail(ctx context.Context, id int64) (*AirplaneView, error) {
	a, err := scanAirplaneView(s.db.QueryRow(ctx, airplaneViewQuery+` WHERE a.id = $1`, id))
	if err != nil {
		return nil, wrap("get airplane", err)
	}
	return &a, nil
}

func (s *Airplanes) Get(ctx context.Context, id int64) (*Airplane, error) {
	var a Airplane
	err := s.db.QueryRow(ctx, `
		SELECT id, name, rows, seats_in_row, airplane_type_id
		FROM airplanes WHERE id = $1
	`, id).Scan(&a.ID, &a.Name, &a.Rows, &a.SeatsInRow, &a.AirplaneTypeID)
	if err != nil {
		return nil, wrap("get airplane", err)
	}
	return &a, nil
}

func (s *Airplanes) Create(ctx context.Context, a *Airplane) error {
	err := s.db.QueryRow(ctx, `
		INSERT INTO airplanes (name, rows, seats_in_row, airplane_type_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, a.Name, a.Rows, a.SeatsInRow, a.AirplaneTypeID).Scan(&a.ID)
	if err != nil {
		return wrap("create airplane", err)
	}
	return nil
}

func (s *Airplanes) Update(ctx context.Context, id int64, a *Airplane) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE airplanes
		SET name = $2, rows = $3, seats_in_row = $4, airplane_type_id = $5
		WHERE id = $1
	`, id, a.Name, a.Rows, a.SeatsInRow, a.AirplaneTypeID)
	if err != nil {
		return wrap("update airplane", err)
	}
	a.ID = id
	return affected(tag)
}

func (s *Airplanes) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, s.db, "airplanes", id)
}

// --- Crews ---

type Crews struct {
	db DB
}

// List returns all crew members
func (s *Crews) List(ctx context.Context, _ ListQuery) ([]Crew, error) {
	rows, err := s.db.Query(ctx, `SELECT id, first_name, last_name, position FROM crews ORDER BY id`)
	if err != nil {
		return nil, wrap("query crews", err)
	}
	return pgx.CollectRows(rows, scanCrew)
}

func scanCrew(row pgx.CollectableRow) (Crew, error) {
	var c Crew
	err := row.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Position)
	return c, err
}

func (s *Crews) Detail(ctx context.Context, id int64) (*Crew, error) {
	return s.Get(ctx, id)
}

func (s *Crews) Get(ctx context.Context, id int64) (*Crew, error) {
	var c Crew
	err := s.db.QueryRow(ctx, `
		SELECT id, first_name, last_name, position FROM crews WHERE id = $1
	`, id).Scan(&c.ID, &c.FirstName, &c.LastName, &c.Position)
	if err != nil {
		return nil, wrap("get crew", err)
	}
	return &c, nil
}

func (s *Crews) Create(ctx context.Context, c *Crew) error {
	err := s.db.QueryRow(ctx, `
		INSERT INTO crews (first_name, last_name, position) VALUES ($1, $2, $3) RETURNING id
	`, c.FirstName, c.LastName, c.Position).Scan(&c.ID)
	if err != nil {
		return wrap("create crew", err)
	}
	return nil
}

func (s *Crews) Update(ctx context.Context, id int64, c *Crew) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE crews SET first_name = $2, last_name = $3, position = $4 WHERE id = $1
	`, id, c.FirstName, c.LastName, c.Position)
	if err != nil {
		return wrap("update crew", err)
	}
	c.ID = id
	return affected(tag)
}

func (s *Crews) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, s.db, "crews", id)
}
