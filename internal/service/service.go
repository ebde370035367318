package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/cx-tal-miterani/airport-booking/internal/auth"
	"github.com/cx-tal-miterani/airport-booking/internal/booking"
	"github.com/cx-tal-miterani/airport-booking/internal/database"
	"github.com/cx-tal-miterani/airport-booking/internal/events"
	"github.com/cx-tal-miterani/airport-booking/internal/metrics"
	"github.com/cx-tal-miterani/airport-booking/internal/websocket"
)

// BookingService defines the booking service interface. Every call acts
// as the caller carried by ctx.
type BookingService interface {
	CreateOrder(ctx context.Context, tickets []booking.TicketRequest) (*database.Order, error)
	ListOrders(ctx context.Context) ([]database.Order, error)
	GetOrder(ctx context.Context, orderID int64) (*database.Order, error)
}

// OrderStore is the persistence the booking service needs.
type OrderStore interface {
	CreateOrder(ctx context.Context, userID int64, reqs []booking.TicketRequest) (*database.Order, error)
	ListOrders(ctx context.Context, userID int64) ([]database.Order, error)
	GetOrder(ctx context.Context, userID, orderID int64) (*database.Order, error)
}

// SeatBroadcaster pushes seat changes to live viewers of a flight.
type SeatBroadcaster interface {
	BroadcastSeatsBooked(flightID, orderID int64, seats []websocket.SeatUpdate)
}

// bookingServiceImpl implements BookingService
type bookingServiceImpl struct {
	orders    OrderStore
	hub       SeatBroadcaster
	publisher events.Publisher
	confirmer Confirmer
	log       *logrus.Logger
	tracer    trace.Tracer
}

// NewBookingService creates a new BookingService
func NewBookingService(orders OrderStore, hub SeatBroadcaster, publisher events.Publisher, confirmer Confirmer, log *logrus.Logger) BookingService {
	return &bookingServiceImpl{
		orders:    orders,
		hub:       hub,
		publisher: publisher,
		confirmer: confirmer,
		log:       log,
		tracer:    otel.Tracer("github.com/cx-tal-miterani/airport-booking/internal/service"),
	}
}

func (s *bookingServiceImpl) CreateOrder(ctx context.Context, tickets []booking.TicketRequest) (*database.Order, error) {
	caller, err := auth.CallerFrom(ctx)
	if err != nil {
		return nil, err
	}

	ctx, span := s.tracer.Start(ctx, "booking.CreateOrder", trace.WithAttributes(
		attribute.Int64("user.id", caller.UserID),
		attribute.Int("order.tickets", len(tickets)),
	))
	defer span.End()

	order, err := s.orders.CreateOrder(ctx, caller.UserID, tickets)
	if err != nil {
		reason := failureReason(err)
		metrics.BookingFailures.WithLabelValues(reason).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, reason)
		if reason == metrics.ReasonInternal {
			return nil, fmt.Errorf("failed to create order: %w", err)
		}
		return nil, err
	}
	span.SetAttributes(attribute.Int64("order.id", order.ID))

	metrics.OrdersCreated.Inc()
	metrics.TicketsBooked.Add(float64(len(order.Tickets)))

	s.log.WithFields(logrus.Fields{
		"order_id": order.ID,
		"user_id":  caller.UserID,
		"tickets":  len(order.Tickets),
	}).Info("order created")

	s.afterCommit(ctx, order)
	return order, nil
}

// afterCommitTimeout bounds the post-commit side effects so the response
// still fits in the server's write timeout.
const afterCommitTimeout = 5 * time.Second

// afterCommit runs the side effects of a committed order. The order is
// final at this point, so they outlive a cancelled request and failures are
// only logged.
func (s *bookingServiceImpl) afterCommit(ctx context.Context, order *database.Order) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), afterCommitTimeout)
	defer cancel()

	for flightID, seats := range seatsByFlight(order.Tickets) {
		s.hub.BroadcastSeatsBooked(flightID, order.ID, seats)
	}

	booked := make([]events.TicketBooked, 0, len(order.Tickets))
	for _, t := range order.Tickets {
		booked = append(booked, events.TicketBooked{FlightID: t.FlightID, Row: t.Row, Seat: t.Seat})
	}
	event := events.NewOrderCreated(order.ID, order.UserID, order.Created, booked)
	if err := s.publisher.PublishOrderCreated(ctx, event); err != nil {
		s.log.WithError(err).WithField("order_id", order.ID).Error("failed to publish order event")
	}

	if err := s.confirmer.StartConfirmation(ctx, order); err != nil {
		s.log.WithError(err).WithField("order_id", order.ID).Error("failed to start order confirmation")
	}
}

func seatsByFlight(tickets []database.Ticket) map[int64][]websocket.SeatUpdate {
	out := make(map[int64][]websocket.SeatUpdate)
	for _, t := range tickets {
		seat := t.Position()
		out[t.FlightID] = append(out[t.FlightID], websocket.SeatUpdate{
			Row:   seat.Row,
			Seat:  seat.Seat,
			Label: seat.Label(),
		})
	}
	return out
}

func failureReason(err error) string {
	var seatErr *booking.SeatError
	switch {
	case errors.As(err, &seatErr), errors.Is(err, booking.ErrEmptyOrder):
		return metrics.ReasonValidation
	case errors.Is(err, booking.ErrSeatTaken):
		return metrics.ReasonConflict
	case errors.Is(err, database.ErrNotFound):
		return metrics.ReasonNotFound
	}
	return metrics.ReasonInternal
}

func (s *bookingServiceImpl) ListOrders(ctx context.Context) ([]database.Order, error) {
	caller, err := auth.CallerFrom(ctx)
	if err != nil {
		return nil, err
	}
	return s.orders.ListOrders(ctx, caller.UserID)
}

func (s *bookingServiceImpl) GetOrder(ctx context.Context, orderID int64) (*database.Order, error) {
	caller, err := auth.CallerFrom(ctx)
	if err != nil {
		return nil, err
	}

	ctx, span := s.tracer.Start(ctx, "booking.GetOrder", trace.WithAttributes(
		attribute.Int64("order.id", orderID),
	))
	defer span.End()

	return s.orders.GetOrder(ctx, caller.UserID, orderID)
}
