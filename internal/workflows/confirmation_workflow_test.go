package workflows

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/testsuite"

	"github.com/cx-tal-miterani/airport-booking/internal/activities"
)

type ConfirmationWorkflowTestSuite struct {
	suite.Suite
	testsuite.WorkflowTestSuite
	env *testsuite.TestWorkflowEnvironment
}

func (s *ConfirmationWorkflowTestSuite) SetupTest() {
	s.env = s.NewTestWorkflowEnvironment()
	s.env.RegisterActivityWithOptions(
		func(activities.LoadOrderSummaryInput) (*activities.OrderSummary, error) { return nil, nil },
		activityOptions(ActivityLoadOrderSummary),
	)
	s.env.RegisterActivityWithOptions(
		func(activities.SendConfirmationInput) error { return nil },
		activityOptions(ActivitySendConfirmation),
	)
}

func (s *ConfirmationWorkflowTestSuite) AfterTest(suiteName, testName string) {
	s.env.AssertExpectations(s.T())
}

func TestConfirmationWorkflowTestSuite(t *testing.T) {
	suite.Run(t, new(ConfirmationWorkflowTestSuite))
}

func (s *ConfirmationWorkflowTestSuite) TestWorkflowID() {
	s.Equal("order-confirmation-42", WorkflowID(42))
}

func (s *ConfirmationWorkflowTestSuite) TestWorkflow_ConfirmsOrder() {
	summary := &activities.OrderSummary{
		OrderID: 7,
		Email:   "ann@example.com",
		Created: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		Tickets: []string{"flight 1, row: 1 seat: 1", "flight 1, row: 1 seat: 2"},
	}

	s.env.OnActivity(ActivityLoadOrderSummary, mock.Anything, activities.LoadOrderSummaryInput{OrderID: 7, UserID: 3}).
		Return(summary, nil)
	s.env.OnActivity(ActivitySendConfirmation, mock.Anything, mock.MatchedBy(func(in activities.SendConfirmationInput) bool {
		return in.Summary.OrderID == 7 && len(in.Summary.Tickets) == 2
	})).Return(nil)

	s.env.ExecuteWorkflow(OrderConfirmationWorkflow, OrderConfirmationInput{OrderID: 7, UserID: 3})

	s.True(s.env.IsWorkflowCompleted())
	s.NoError(s.env.GetWorkflowError())

	var result OrderConfirmationResult
	s.NoError(s.env.GetWorkflowResult(&result))
	s.Equal(int64(7), result.OrderID)
	s.Equal("ann@example.com", result.Email)
	s.Equal(2, result.Tickets)
}

func (s *ConfirmationWorkflowTestSuite) TestWorkflow_MissingOrderStops() {
	s.env.OnActivity(ActivityLoadOrderSummary, mock.Anything, mock.Anything).
		Return(nil, temporal.NewNonRetryableApplicationError("order 9 not found", "OrderNotFound", errors.New("not found")))

	s.env.ExecuteWorkflow(OrderConfirmationWorkflow, OrderConfirmationInput{OrderID: 9, UserID: 3})

	s.True(s.env.IsWorkflowCompleted())
	s.Error(s.env.GetWorkflowError())
}
