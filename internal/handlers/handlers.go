package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/cx-tal-miterani/airport-booking/internal/database"
	"github.com/cx-tal-miterani/airport-booking/internal/service"
)

// SeatStreamer upgrades a request into a live seat feed for one flight.
type SeatStreamer interface {
	Serve(w http.ResponseWriter, r *http.Request, flightID int64)
}

// FlightLookup finds a flight by id.
type FlightLookup interface {
	Get(ctx context.Context, id int64) (*database.Flight, error)
}

// Handler contains HTTP handlers for the API
type Handler struct {
	bookingService service.BookingService
	userService    service.UserService
	flights        FlightLookup
	seats          SeatStreamer
	validate       *validator.Validate
	log            *logrus.Logger
}

// NewHandler creates a new Handler instance
func NewHandler(bookingService service.BookingService, userService service.UserService, flights FlightLookup, seats SeatStreamer, log *logrus.Logger) *Handler {
	return &Handler{
		bookingService: bookingService,
		userService:    userService,
		flights:        flights,
		seats:          seats,
		validate:       NewValidator(),
		log:            log,
	}
}

// NewValidator returns a validator that reports fields by their JSON name.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func respondFieldErrors(w http.ResponseWriter, fields map[string]string) {
	respondJSON(w, http.StatusBadRequest, map[string]any{"errors": fields})
}

// bodyError marks a request body that could not be decoded.
type bodyError struct {
	err error
}

func (e *bodyError) Error() string {
	return fmt.Sprintf("invalid request body: %v", e.err)
}

func (e *bodyError) Unwrap() error {
	return e.err
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return &bodyError{err: errors.New("empty body")}
		}
		return &bodyError{err: err}
	}
	return nil
}

// decodeValid decodes the body into v and validates the result.
func (h *Handler) decodeValid(r *http.Request, v any) error {
	if err := decodeJSON(r, v); err != nil {
		return err
	}
	return h.validate.Struct(v)
}

func pathID(r *http.Request) (int64, error) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, errNotFoundPath
	}
	return id, nil
}

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// MethodNotAllowed answers verbs a resource does not support.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	respondError(w, http.StatusMethodNotAllowed, fmt.Sprintf("method %q not allowed", r.Method))
}
