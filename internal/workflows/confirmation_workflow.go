package workflows

import (
	"fmt"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/cx-tal-miterani/airport-booking/internal/activities"
)

const (
	OrderConfirmationWorkflowName = "OrderConfirmationWorkflow"

	ActivityLoadOrderSummary = "LoadOrderSummary"
	ActivitySendConfirmation = "SendConfirmation"
)

// OrderConfirmationInput is the input for the confirmation workflow
type OrderConfirmationInput struct {
	OrderID int64 `json:"order_id"`
	UserID  int64 `json:"user_id"`
}

// OrderConfirmationResult is the result of the confirmation workflow
type OrderConfirmationResult struct {
	OrderID int64  `json:"order_id"`
	Email   string `json:"email"`
	Tickets int    `json:"tickets"`
}

// WorkflowID is the id the confirmation of an order runs under. Starting it
// twice for the same order is rejected by Temporal.
func WorkflowID(orderID int64) string {
	return fmt.Sprintf("order-confirmation-%d", orderID)
}

// OrderConfirmationWorkflow confirms a committed order to its owner.
// The order itself is final before the workflow starts.
func OrderConfirmationWorkflow(ctx workflow.Context, input OrderConfirmationInput) (*OrderConfirmationResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Order confirmation workflow started", "orderId", input.OrderID)

	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    time.Minute,
			MaximumAttempts:    5,
		},
	})

	var summary activities.OrderSummary
	err := workflow.ExecuteActivity(ctx, ActivityLoadOrderSummary, activities.LoadOrderSummaryInput{
		OrderID: input.OrderID,
		UserID:  input.UserID,
	}).Get(ctx, &summary)
	if err != nil {
		logger.Error("Failed to load order summary", "orderId", input.OrderID, "error", err)
		return nil, err
	}

	err = workflow.ExecuteActivity(ctx, ActivitySendConfirmation, activities.SendConfirmationInput{
		Summary: summary,
	}).Get(ctx, nil)
	if err != nil {
		logger.Error("Failed to send confirmation", "orderId", input.OrderID, "error", err)
		return nil, err
	}

	logger.Info("Order confirmed", "orderId", input.OrderID, "tickets", len(summary.Tickets))
	return &OrderConfirmationResult{
		OrderID: input.OrderID,
		Email:   summary.Email,
		Tickets: len(summary.Tickets),
	}, nil
}
