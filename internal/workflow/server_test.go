package workflow

import (
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.temporal.io/sdk/testsuite"

	"github.com/tarek/provision/internal/activity"
	"github.com/tarek/provision/internal/model"
)

type ServerWorkflowTestSuite struct {
	suite.Suite
	testsuite.WorkflowTestSuite
	env *testsuite.TestWorkflowEnvironment
}

func (s *ServerWorkflowTestSuite) SetupTest() {
	s.env = s.NewTestWorkflowEnvironment()
	registerActivities(s.env)
}

func (s *ServerWorkflowTestSuite) AfterTest(suiteName, testName string) {
	s.env.AssertExpectations(s.T())
}

func (s *ServerWorkflowTestSuite) TestPowerAction() {
	pid := int64(4242)
	projectID := "proj-1"
	srv := &model.Server{ID: "srv-1", ProviderID: &pid, ProjectID: &projectID}

	s.env.OnActivity("GetServer", mock.Anything, "srv-1").Return(srv, nil)
	s.env.OnActivity("PowerAction", mock.Anything, activity.PowerActionParams{
		ProjectID: &projectID, ProviderID: 4242, Action: model.PowerActionReboot,
	}).Return(nil)

	s.env.ExecuteWorkflow(PowerActionWorkflow, model.PowerActionInput{
		ServerID: "srv-1", Action: model.PowerActionReboot,
	})
	s.True(s.env.IsWorkflowCompleted())
	s.NoError(s.env.GetWorkflowError())
}

func (s *ServerWorkflowTestSuite) TestPowerAction_SelfHosted() {
	srv := &model.Server{ID: "srv-1"}

	s.env.OnActivity("GetServer", mock.Anything, "srv-1").Return(srv, nil)

	s.env.ExecuteWorkflow(PowerActionWorkflow, model.PowerActionInput{
		ServerID: "srv-1", Action: model.PowerActionReboot,
	})
	s.True(s.env.IsWorkflowCompleted())
	s.Error(s.env.GetWorkflowError())
	s.env.AssertNotCalled(s.T(), "PowerAction", mock.Anything, mock.Anything)
}

func (s *ServerWorkflowTestSuite) TestTestConnection() {
	s.env.OnActivity("TestConnection", mock.Anything, "srv-1").
		Return(model.ConnectionTestResult{Success: true, Message: "connection successful"}, nil)

	s.env.ExecuteWorkflow(TestConnectionWorkflow, "srv-1")
	s.True(s.env.IsWorkflowCompleted())
	s.NoError(s.env.GetWorkflowError())

	var result model.ConnectionTestResult
	s.NoError(s.env.GetWorkflowResult(&result))
	s.True(result.Success)
}

func TestServerWorkflowSuite(t *testing.T) {
	suite.Run(t, new(ServerWorkflowTestSuite))
}
