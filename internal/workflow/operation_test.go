package workflow

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.temporal.io/sdk/testsuite"

	"github.com/tarek/provision/internal/activity"
	"github.com/tarek/provision/internal/model"
	"github.com/tarek/provision/internal/remote"
)

type RunOperationWorkflowTestSuite struct {
	suite.Suite
	testsuite.WorkflowTestSuite
	env *testsuite.TestWorkflowEnvironment
}

func (s *RunOperationWorkflowTestSuite) SetupTest() {
	s.env = s.NewTestWorkflowEnvironment()
	registerActivities(s.env)
}

func (s *RunOperationWorkflowTestSuite) AfterTest(suiteName, testName string) {
	s.env.AssertExpectations(s.T())
}

func (s *RunOperationWorkflowTestSuite) TestBackupSuccess_AttachesArtifact() {
	input := model.OperationInput{OperationID: "op-1", ServerID: "srv-1", Kind: model.OperationKindBackup}

	s.env.OnActivity("RunScript", mock.Anything, activity.RunScriptParams{
		ServerID: "srv-1", Kind: model.OperationKindBackup,
	}).Return(remote.Result{Success: true, Stdout: "backup written to /var/backups/db_x.sql"}, nil)
	s.env.OnActivity("FetchBackupArtifact", mock.Anything, activity.FetchArtifactParams{
		ServerID: "srv-1", OperationID: "op-1",
	}).Return(activity.FetchArtifactResult{Path: "/var/lib/provision/artifacts/op-1_db_x.sql", Size: 4096}, nil)
	s.env.OnActivity("CompleteOperation", mock.Anything, mock.MatchedBy(func(p activity.CompleteOperationParams) bool {
		return p.ID == "op-1" && p.Status == model.OperationStatusCompleted &&
			p.ArtifactPath != nil && *p.ArtifactSize == int64(4096)
	})).Return(nil)

	s.env.ExecuteWorkflow(RunOperationWorkflow, input)
	s.True(s.env.IsWorkflowCompleted())
	s.NoError(s.env.GetWorkflowError())
}

func (s *RunOperationWorkflowTestSuite) TestUpdateSuccess_NoArtifactFetch() {
	input := model.OperationInput{OperationID: "op-2", ServerID: "srv-1", Kind: model.OperationKindUpdate}

	s.env.OnActivity("RunScript", mock.Anything, mock.Anything).
		Return(remote.Result{Success: true, Stdout: "system update complete"}, nil)
	s.env.OnActivity("CompleteOperation", mock.Anything, mock.MatchedBy(func(p activity.CompleteOperationParams) bool {
		return p.Status == model.OperationStatusCompleted && p.ArtifactPath == nil
	})).Return(nil)

	s.env.ExecuteWorkflow(RunOperationWorkflow, input)
	s.NoError(s.env.GetWorkflowError())
	s.env.AssertNotCalled(s.T(), "FetchBackupArtifact", mock.Anything, mock.Anything)
}

func (s *RunOperationWorkflowTestSuite) TestScriptFailure_RecordsExitCode() {
	input := model.OperationInput{OperationID: "op-3", ServerID: "srv-1", Kind: model.OperationKindUpdate}

	s.env.OnActivity("RunScript", mock.Anything, mock.Anything).
		Return(remote.Result{Success: false, ExitCode: 100, Stderr: "E: unable to lock"}, nil)
	s.env.OnActivity("CompleteOperation", mock.Anything, mock.MatchedBy(func(p activity.CompleteOperationParams) bool {
		return p.Status == model.OperationStatusFailed &&
			strings.Contains(p.ErrorLog, "exit code 100")
	})).Return(nil)

	s.env.ExecuteWorkflow(RunOperationWorkflow, input)
	s.NoError(s.env.GetWorkflowError())
}

func (s *RunOperationWorkflowTestSuite) TestTimeout_DistinctOutcome() {
	input := model.OperationInput{OperationID: "op-4", ServerID: "srv-1", Kind: model.OperationKindBackup}

	s.env.OnActivity("RunScript", mock.Anything, mock.Anything).
		Return(remote.Result{TimedOut: true, Stdout: "partial"}, nil)
	s.env.OnActivity("CompleteOperation", mock.Anything, mock.MatchedBy(func(p activity.CompleteOperationParams) bool {
		return p.Status == model.OperationStatusFailed &&
			strings.Contains(p.ErrorLog, "timed out")
	})).Return(nil)

	s.env.ExecuteWorkflow(RunOperationWorkflow, input)
	s.NoError(s.env.GetWorkflowError())
	s.env.AssertNotCalled(s.T(), "FetchBackupArtifact", mock.Anything, mock.Anything)
}

func (s *RunOperationWorkflowTestSuite) TestConfigurationError_FailsWithoutConnection() {
	input := model.OperationInput{OperationID: "op-5", ServerID: "srv-1", Kind: model.OperationKindDeploy}

	s.env.OnActivity("RunScript", mock.Anything, mock.Anything).
		Return(remote.Result{}, fmt.Errorf("configuration error: no ssh key configured"))
	s.env.OnActivity("CompleteOperation", mock.Anything, mock.MatchedBy(func(p activity.CompleteOperationParams) bool {
		return p.Status == model.OperationStatusFailed &&
			strings.Contains(p.ErrorLog, "configuration error")
	})).Return(nil)

	s.env.ExecuteWorkflow(RunOperationWorkflow, input)
	s.NoError(s.env.GetWorkflowError())
}

func (s *RunOperationWorkflowTestSuite) TestArtifactFetchFailure_FailsBackup() {
	input := model.OperationInput{OperationID: "op-6", ServerID: "srv-1", Kind: model.OperationKindBackup}

	s.env.OnActivity("RunScript", mock.Anything, mock.Anything).
		Return(remote.Result{Success: true, Stdout: "backup written"}, nil)
	s.env.OnActivity("FetchBackupArtifact", mock.Anything, mock.Anything).
		Return(activity.FetchArtifactResult{}, fmt.Errorf("artifact transfer failed: no backup file found"))
	s.env.OnActivity("CompleteOperation", mock.Anything, mock.MatchedBy(func(p activity.CompleteOperationParams) bool {
		return p.Status == model.OperationStatusFailed &&
			strings.Contains(p.ErrorLog, "artifact transfer failed")
	})).Return(nil)

	s.env.ExecuteWorkflow(RunOperationWorkflow, input)
	s.NoError(s.env.GetWorkflowError())
}

func TestRunOperationWorkflowSuite(t *testing.T) {
	suite.Run(t, new(RunOperationWorkflowTestSuite))
}
