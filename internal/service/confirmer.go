package service

import (
	"context"
	"fmt"

	"go.temporal.io/sdk/client"

	"github.com/cx-tal-miterani/airport-booking/internal/database"
	"github.com/cx-tal-miterani/airport-booking/internal/workflows"
)

// Confirmer starts the confirmation of a committed order.
type Confirmer interface {
	StartConfirmation(ctx context.Context, order *database.Order) error
}

// TemporalConfirmer runs OrderConfirmationWorkflow for every order.
type TemporalConfirmer struct {
	client    client.Client
	taskQueue string
}

func NewTemporalConfirmer(c client.Client, taskQueue string) *TemporalConfirmer {
	return &TemporalConfirmer{client: c, taskQueue: taskQueue}
}

func (c *TemporalConfirmer) StartConfirmation(ctx context.Context, order *database.Order) error {
	workflowOptions := client.StartWorkflowOptions{
		ID:        workflows.WorkflowID(order.ID),
		TaskQueue: c.taskQueue,
	}
	input := workflows.OrderConfirmationInput{OrderID: order.ID, UserID: order.UserID}

	_, err := c.client.ExecuteWorkflow(ctx, workflowOptions, workflows.OrderConfirmationWorkflowName, input)
	if err != nil {
		return fmt.Errorf("failed to start workflow: %w", err)
	}
	return nil
}

// NopConfirmer is used when Temporal is disabled.
type NopConfirmer struct{}

func (NopConfirmer) StartConfirmation(context.Context, *database.Order) error { return nil }
