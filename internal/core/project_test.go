package core

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func countRow(n int) *mockRow {
	return &mockRow{scanFunc: func(dest ...any) error {
		*dest[0].(*int) = n
		return nil
	}}
}

func TestProjectDelete_Empty(t *testing.T) {
	db := new(mockDB)
	svc := NewProjectService(db)

	db.On("QueryRow", mock.Anything, mock.Anything, mock.Anything).Return(countRow(0))
	db.On("Exec", mock.Anything, mock.Anything, mock.Anything).
		Return(pgconn.NewCommandTag("DELETE 1"), nil)

	err := svc.Delete(context.Background(), "proj-1")
	require.NoError(t, err)
	db.AssertExpectations(t)
}

func TestProjectDelete_RefusesWithServers(t *testing.T) {
	db := new(mockDB)
	svc := NewProjectService(db)

	db.On("QueryRow", mock.Anything, mock.Anything, mock.Anything).Return(countRow(3))

	err := svc.Delete(context.Background(), "proj-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "still tracks 3 servers")
	db.AssertNotCalled(t, "Exec", mock.Anything, mock.Anything, mock.Anything)
}

func TestProjectDelete_NotFound(t *testing.T) {
	db := new(mockDB)
	svc := NewProjectService(db)

	db.On("QueryRow", mock.Anything, mock.Anything, mock.Anything).Return(countRow(0))
	db.On("Exec", mock.Anything, mock.Anything, mock.Anything).
		Return(pgconn.NewCommandTag("DELETE 0"), nil)

	err := svc.Delete(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}
