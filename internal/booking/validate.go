package booking

import "fmt"

// SeatError reports a seat coordinate outside the airplane geometry.
type SeatError struct {
	Field string // "row" or "seat"
	Value int
	Limit string // "rows" or "seats_in_row"
	Max   int
}

func (e *SeatError) Error() string {
	return fmt.Sprintf("%s number must be in available range: (1, %s): (1, %d)", e.Field, e.Limit, e.Max)
}

// ValidateSeat checks that 1 <= row <= rows and 1 <= seat <= seatsInRow.
// Row is checked first.
func ValidateSeat(row, seat, rows, seatsInRow int) error {
	if row < 1 || row > rows {
		return &SeatError{Field: "row", Value: row, Limit: "rows", Max: rows}
	}
	if seat < 1 || seat > seatsInRow {
		return &SeatError{Field: "seat", Value: seat, Limit: "seats_in_row", Max: seatsInRow}
	}
	return nil
}
