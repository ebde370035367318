package handlers

import (
	"net/http"

	"github.com/cx-tal-miterani/airport-booking/internal/booking"
)

// CreateOrderRequest is the body of POST /api/airport/orders
type CreateOrderRequest struct {
	Tickets []booking.TicketRequest `json:"tickets" validate:"dive"`
}

// ListOrders handles GET /api/airport/orders
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.bookingService.ListOrders(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

// CreateOrder handles POST /api/airport/orders
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := h.decodeValid(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	order, err := h.bookingService.CreateOrder(r.Context(), req.Tickets)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, order)
}

// GetOrder handles GET /api/airport/orders/{id}
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	order, err := h.bookingService.GetOrder(r.Context(), orderID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}

// FlightSeats handles GET /api/airport/flights/{id}/ws
func (h *Handler) FlightSeats(w http.ResponseWriter, r *http.Request) {
	flightID, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if _, err := h.flights.Get(r.Context(), flightID); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.seats.Serve(w, r, flightID)
}
