package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/cx-tal-miterani/airport-booking/internal/auth"
	"github.com/cx-tal-miterani/airport-booking/internal/booking"
	"github.com/cx-tal-miterani/airport-booking/internal/database"
)

var errNotFoundPath = fmt.Errorf("%w: invalid id", database.ErrNotFound)

// writeError maps an error from any layer onto an HTTP response.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		ticketErr *booking.TicketError
		seatErr   *booking.SeatError
		filterErr *database.FilterError
		bodyErr   *bodyError
		fieldErrs validator.ValidationErrors
	)

	switch {
	case errors.As(err, &ticketErr):
		h.writeTicketError(w, r, ticketErr)
	case errors.As(err, &seatErr):
		respondFieldErrors(w, map[string]string{seatErr.Field: seatErr.Error()})
	case errors.Is(err, booking.ErrEmptyOrder):
		respondFieldErrors(w, map[string]string{"tickets": err.Error()})
	case errors.As(err, &filterErr):
		respondFieldErrors(w, map[string]string{filterErr.Param: filterErr.Error()})
	case errors.As(err, &bodyErr):
		respondFieldErrors(w, map[string]string{"body": bodyErr.Error()})
	case errors.As(err, &fieldErrs):
		respondFieldErrors(w, validationMessages(fieldErrs))
	case errors.Is(err, auth.ErrPasswordTooLong):
		respondFieldErrors(w, map[string]string{"password": err.Error()})
	case errors.Is(err, booking.ErrSeatTaken), errors.Is(err, database.ErrConflict):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, auth.ErrUnauthenticated), errors.Is(err, auth.ErrBadCredentials):
		respondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, auth.ErrForbidden):
		respondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, database.ErrNotFound):
		respondError(w, http.StatusNotFound, "not found")
	default:
		h.log.WithError(err).WithField("path", r.URL.Path).Error("request failed")
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// writeTicketError reports a failure against the ticket that caused it,
// e.g. "tickets[1].row".
func (h *Handler) writeTicketError(w http.ResponseWriter, r *http.Request, err *booking.TicketError) {
	var seatErr *booking.SeatError
	prefix := fmt.Sprintf("tickets[%d]", err.Index)

	switch {
	case errors.As(err, &seatErr):
		respondFieldErrors(w, map[string]string{prefix + "." + seatErr.Field: seatErr.Error()})
	case errors.Is(err, booking.ErrSeatTaken):
		respondJSON(w, http.StatusConflict, map[string]any{
			"errors": map[string]string{prefix: err.Err.Error()},
		})
	case errors.Is(err, database.ErrNotFound):
		respondFieldErrors(w, map[string]string{prefix + ".flight": err.Err.Error()})
	default:
		h.log.WithError(err).WithField("path", r.URL.Path).Error("ticket write failed")
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}

func validationMessages(errs validator.ValidationErrors) map[string]string {
	fields := make(map[string]string, len(errs))
	for _, fe := range errs {
		fields[fieldPath(fe)] = fieldMessage(fe)
	}
	return fields
}

// fieldPath drops the root struct name from the namespace:
// "Order.tickets[0].flight" becomes "tickets[0].flight".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	for i := 0; i < len(ns); i++ {
		if ns[i] == '.' {
			return ns[i+1:]
		}
	}
	return fe.Field()
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "max":
		return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
	case "min":
		return fmt.Sprintf("Ensure this field has at least %s characters.", fe.Param())
	case "gt":
		return fmt.Sprintf("Ensure this value is greater than %s.", fe.Param())
	case "gtfield":
		return fmt.Sprintf("Must be later than %s.", fe.Param())
	default:
		return fmt.Sprintf("Failed on the %q rule.", fe.Tag())
	}
}
