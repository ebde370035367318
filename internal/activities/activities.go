package activities

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"github.com/cx-tal-miterani/airport-booking/internal/booking"
	"github.com/cx-tal-miterani/airport-booking/internal/database"
)

// OrderReader is the read side of the order store used by the worker.
type OrderReader interface {
	GetOrder(ctx context.Context, userID, orderID int64) (*database.Order, error)
}

type UserReader interface {
	ByID(ctx context.Context, id int64) (*database.User, error)
}

// Notifier delivers a confirmation to the customer.
type Notifier interface {
	Notify(ctx context.Context, summary OrderSummary) error
}

// LoadOrderSummaryInput is the input for the LoadOrderSummary activity
type LoadOrderSummaryInput struct {
	OrderID int64 `json:"order_id"`
	UserID  int64 `json:"user_id"`
}

// OrderSummary is what a confirmation says about an order.
type OrderSummary struct {
	OrderID   int64     `json:"order_id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	Created   time.Time `json:"created"`
	Tickets   []string  `json:"tickets"`
}

// SendConfirmationInput is the input for the SendConfirmation activity
type SendConfirmationInput struct {
	Summary OrderSummary `json:"summary"`
}

type Activities struct {
	orders   OrderReader
	users    UserReader
	notifier Notifier
}

func NewActivities(orders OrderReader, users UserReader, notifier Notifier) *Activities {
	return &Activities{orders: orders, users: users, notifier: notifier}
}

// LoadOrderSummary activity - reads the committed order and its owner
func (a *Activities) LoadOrderSummary(ctx context.Context, input LoadOrderSummaryInput) (*OrderSummary, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("Loading order summary", "orderID", input.OrderID)

	order, err := a.orders.GetOrder(ctx, input.UserID, input.OrderID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, temporal.NewNonRetryableApplicationError(
				fmt.Sprintf("order %d not found", input.OrderID), "OrderNotFound", err)
		}
		return nil, fmt.Errorf("failed to load order: %w", err)
	}

	user, err := a.users.ByID(ctx, input.UserID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, temporal.NewNonRetryableApplicationError(
				fmt.Sprintf("user %d not found", input.UserID), "UserNotFound", err)
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	summary := &OrderSummary{
		OrderID:   order.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		Created:   order.Created,
		Tickets:   make([]string, 0, len(order.Tickets)),
	}
	for _, t := range order.Tickets {
		summary.Tickets = append(summary.Tickets, ticketLine(t))
	}
	return summary, nil
}

func ticketLine(t database.Ticket) string {
	seat := booking.Seat{Row: t.Row, Seat: t.Seat}.Label()
	if t.Flight == nil {
		return fmt.Sprintf("flight %d, %s", t.FlightID, seat)
	}
	return fmt.Sprintf("flight %d %s, departs %s, %s",
		t.Flight.ID, t.Flight.Route, t.Flight.DepartureTime.Format(time.RFC3339), seat)
}

// SendConfirmation activity - hands the summary to the notifier
func (a *Activities) SendConfirmation(ctx context.Context, input SendConfirmationInput) error {
	logger := activity.GetLogger(ctx)
	logger.Info("Sending confirmation", "orderID", input.Summary.OrderID, "email", input.Summary.Email)

	if err := a.notifier.Notify(ctx, input.Summary); err != nil {
		return fmt.Errorf("failed to send confirmation: %w", err)
	}
	return nil
}

// LogNotifier writes confirmations to the structured log.
type LogNotifier struct {
	Log *logrus.Logger
}

func (n LogNotifier) Notify(_ context.Context, s OrderSummary) error {
	n.Log.WithFields(logrus.Fields{
		"order_id": s.OrderID,
		"email":    s.Email,
		"tickets":  s.Tickets,
	}).Info("order confirmation sent")
	return nil
}
