package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	temporalmocks "go.temporal.io/sdk/mocks"
)

func TestSyncService_SyncProject(t *testing.T) {
	db := &mockDB{}
	tc := &temporalmocks.Client{}
	svc := NewSyncService(db, tc)
	ctx := context.Background()

	row := &mockRow{scanFunc: func(dest ...any) error {
		*(dest[0].(*bool)) = true
		return nil
	}}
	db.On("QueryRow", ctx, mock.AnythingOfType("string"), mock.Anything).Return(row)

	wfRun := &temporalmocks.WorkflowRun{}
	tc.On("ExecuteWorkflow", mock.Anything, mock.Anything, "SyncProjectWorkflow", mock.Anything).Return(wfRun, nil)

	require.NoError(t, svc.SyncProject(ctx, "proj-1"))
	tc.AssertExpectations(t)
}

func TestSyncService_SyncProject_NotFound(t *testing.T) {
	db := &mockDB{}
	tc := &temporalmocks.Client{}
	svc := NewSyncService(db, tc)
	ctx := context.Background()

	row := &mockRow{scanFunc: func(dest ...any) error {
		*(dest[0].(*bool)) = false
		return nil
	}}
	db.On("QueryRow", ctx, mock.AnythingOfType("string"), mock.Anything).Return(row)

	err := svc.SyncProject(ctx, "ghost")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
	tc.AssertNotCalled(t, "ExecuteWorkflow", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSyncService_SyncAll(t *testing.T) {
	db := &mockDB{}
	tc := &temporalmocks.Client{}
	svc := NewSyncService(db, tc)

	wfRun := &temporalmocks.WorkflowRun{}
	tc.On("ExecuteWorkflow", mock.Anything, mock.Anything, "SyncAllProjectsWorkflow", mock.Anything).Return(wfRun, nil)

	require.NoError(t, svc.SyncAll(context.Background()))
	tc.AssertExpectations(t)
}
