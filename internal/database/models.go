package database

import (
	"time"

	"github.com/cx-tal-miterani/airport-booking/internal/booking"
)

// AirplaneType is a kind of airplane, e.g. "wide-body".
type AirplaneType struct {
	ID   int64  `json:"id"`
	Name string `json:"name" validate:"required,max=100"`
}

// Airplane defines the seat geometry of every flight that uses it.
type Airplane struct {
	ID             int64  `json:"id"`
	Name           string `json:"name" validate:"required,max=100"`
	Rows           int    `json:"rows" validate:"gt=0"`
	SeatsInRow     int    `json:"seats_in_row" validate:"gt=0"`
	AirplaneTypeID int64  `json:"airplane_type" validate:"gt=0"`
}

func (a Airplane) Geometry() booking.Geometry {
	return booking.Geometry{Rows: a.Rows, SeatsInRow: a.SeatsInRow}
}

// AirplaneView shows the airplane type by name.
type AirplaneView struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Rows         int    `json:"rows"`
	SeatsInRow   int    `json:"seats_in_row"`
	AirplaneType string `json:"airplane_type"`
}

type Country struct {
	ID   int64  `json:"id"`
	Name string `json:"name" validate:"required,max=100"`
}

// CountryView lists the names of the cities of a country.
type CountryView struct {
	ID     int64    `json:"id"`
	Name   string   `json:"name"`
	Cities []string `json:"cities"`
}

type City struct {
	ID        int64  `json:"id"`
	Name      string `json:"name" validate:"required,max=100"`
	CountryID int64  `json:"country" validate:"gt=0"`
}

type CityView struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Country string `json:"country"`
}

type Airport struct {
	ID               int64  `json:"id"`
	Name             string `json:"name" validate:"required,max=100"`
	ClosestBigCityID int64  `json:"closest_big_city" validate:"gt=0"`
}

type AirportView struct {
	ID             int64    `json:"id"`
	Name           string   `json:"name"`
	ClosestBigCity CityView `json:"closest_big_city"`
}

// Route connects two airports. Description is derived on every write.
type Route struct {
	ID            int64  `json:"id"`
	SourceID      int64  `json:"source" validate:"gt=0"`
	DestinationID int64  `json:"destination" validate:"gt=0"`
	Distance      int    `json:"distance" validate:"gt=0"`
	Description   string `json:"description"`
}

type RouteView struct {
	ID          int64       `json:"id"`
	Source      AirportView `json:"source"`
	Destination AirportView `json:"destination"`
	Distance    int         `json:"distance"`
	Description string      `json:"description"`
}

type Crew struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
	Position  string `json:"position" validate:"required,max=100"`
}

// Label renders a crew member as shown in flight details.
func (c Crew) Label() string {
	return c.Position + " - " + c.FirstName + " " + c.LastName
}

// Flight is a scheduled trip of an airplane along a route.
type Flight struct {
	ID            int64     `json:"id"`
	RouteID       int64     `json:"route" validate:"gt=0"`
	AirplaneID    int64     `json:"airplane" validate:"gt=0"`
	DepartureTime time.Time `json:"departure_time" validate:"required"`
	ArrivalTime   time.Time `json:"arrival_time" validate:"required,gtfield=DepartureTime"`
	Crew          []int64   `json:"crew" validate:"dive,gt=0"`
}

// FlightView is the list representation of a flight with its ticket counters.
type FlightView struct {
	ID            int64           `json:"id"`
	Route         string          `json:"route"`
	Airplane      string          `json:"airplane"`
	DepartureTime time.Time       `json:"departure_time"`
	ArrivalTime   time.Time       `json:"arrival_time"`
	Tickets       booking.Summary `json:"tickets"`
}

// FlightDetail enumerates taken and free seats of a flight.
type FlightDetail struct {
	ID               int64     `json:"id"`
	Airplane         string    `json:"airplane"`
	Route            string    `json:"route"`
	DepartureTime    time.Time `json:"departure_time"`
	ArrivalTime      time.Time `json:"arrival_time"`
	Crew             []string  `json:"crew"`
	TakenTickets     []string  `json:"taken_tickets"`
	AvailableTickets []string  `json:"available_tickets"`
}

// FlightBrief is the flight as embedded in an order ticket.
type FlightBrief struct {
	ID            int64     `json:"id"`
	Route         string    `json:"route"`
	Airplane      string    `json:"airplane"`
	DepartureTime time.Time `json:"departure_time"`
	ArrivalTime   time.Time `json:"arrival_time"`
}

type Ticket struct {
	ID       int64        `json:"id"`
	Row      int          `json:"row"`
	Seat     int          `json:"seat"`
	FlightID int64        `json:"flight_id"`
	Flight   *FlightBrief `json:"flight,omitempty"`
}

// Position returns the seat coordinate of the ticket.
func (t Ticket) Position() booking.Seat {
	return booking.Seat{Row: t.Row, Seat: t.Seat}
}

// Order is an immutable bundle of tickets owned by one user.
type Order struct {
	ID      int64     `json:"id"`
	Created time.Time `json:"created"`
	UserID  int64     `json:"-"`
	Tickets []Ticket  `json:"tickets"`
}

type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	IsStaff      bool      `json:"is_staff"`
	CreatedAt    time.Time `json:"-"`
}
