package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is the query surface shared by pools and transactions.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// DB is a DBTX that can open transactions. *pgxpool.Pool satisfies it.
type DB interface {
	DBTX
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Connect opens a pool and checks that the database answers.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return pool, nil
}

// inTx runs fn inside a transaction. The transaction is rolled back when fn
// or the commit fails.
func inTx(ctx context.Context, db DB, fn func(tx pgx.Tx) error) (err error) {
	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		return wrap("commit transaction", err)
	}
	return nil
}

// Store groups every table of the service over one connection.
type Store struct {
	AirplaneTypes *AirplaneTypes
	Airplanes     *Airplanes
	Countries     *Countries
	Cities        *Cities
	Airports      *Airports
	Routes        *Routes
	Crews         *Crews
	Flights       *Flights
	Orders        *Orders
	Users         *Users
}

// NewStore creates a new store
func NewStore(db DB, mode MatchMode) *Store {
	return &Store{
		AirplaneTypes: &AirplaneTypes{db: db},
		Airplanes:     &Airplanes{db: db},
		Countries:     &Countries{db: db},
		Cities:        &Cities{db: db},
		Airports:      &Airports{db: db},
		Routes:        &Routes{db: db, mode: mode},
		Crews:         &Crews{db: db},
		Flights:       &Flights{db: db, mode: mode},
		Orders:        &Orders{db: db},
		Users:         &Users{db: db},
	}
}
