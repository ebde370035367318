package booking

import (
	"fmt"
	"iter"
)

// Seat is a single (row, seat) coordinate on a flight.
type Seat struct {
	Row  int `json:"row"`
	Seat int `json:"seat"`
}

// Label renders the seat the way it is shown in flight details.
func (s Seat) Label() string {
	return fmt.Sprintf("row: %d seat: %d", s.Row, s.Seat)
}

// Geometry is the seat grid defined by an airplane.
type Geometry struct {
	Rows       int `json:"rows"`
	SeatsInRow int `json:"seats_in_row"`
}

// Total returns the number of seats in the grid.
func (g Geometry) Total() int {
	return g.Rows * g.SeatsInRow
}

// Summary is the ticket counter shown in flight lists.
type Summary struct {
	All       int `json:"all_tickets"`
	Taken     int `json:"taken_tickets"`
	Available int `json:"available_tickets"`
}

// NewSummary builds a Summary from a geometry and the live count of tickets.
func NewSummary(g Geometry, taken int) Summary {
	total := g.Total()
	return Summary{
		All:       total,
		Taken:     taken,
		Available: total - taken,
	}
}

// AvailableSeats enumerates the free seats of g in row-major order.
//
// The taken set is built once up front; every iteration of the returned
// sequence walks the grid again against that snapshot.
func AvailableSeats(g Geometry, taken []Seat) iter.Seq[Seat] {
	occupied := make(map[Seat]struct{}, len(taken))
	for _, s := range taken {
		occupied[s] = struct{}{}
	}

	return func(yield func(Seat) bool) {
		for row := 1; row <= g.Rows; row++ {
			for seat := 1; seat <= g.SeatsInRow; seat++ {
				s := Seat{Row: row, Seat: seat}
				if _, ok := occupied[s]; ok {
					continue
				}
				if !yield(s) {
					return
				}
			}
		}
	}
}

// Labels collects the labels of every seat in seq.
func Labels(seq iter.Seq[Seat]) []string {
	labels := []string{}
	for s := range seq {
		labels = append(labels, s.Label())
	}
	return labels
}
