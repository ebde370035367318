package workflows

import (
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/cx-tal-miterani/airport-booking/internal/activities"
)

func activityOptions(name string) activity.RegisterOptions {
	return activity.RegisterOptions{Name: name}
}

func workflowOptions() workflow.RegisterOptions {
	return workflow.RegisterOptions{Name: OrderConfirmationWorkflowName}
}

// Register wires the confirmation workflow and its activities into w.
func Register(w worker.Registry, acts *activities.Activities) {
	w.RegisterWorkflowWithOptions(OrderConfirmationWorkflow, workflowOptions())
	w.RegisterActivityWithOptions(acts.LoadOrderSummary, activityOptions(ActivityLoadOrderSummary))
	w.RegisterActivityWithOptions(acts.SendConfirmation, activityOptions(ActivitySendConfirmation))
}
