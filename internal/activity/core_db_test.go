package activity

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tarek/provision/internal/model"
)

// ---------- Mock DB ----------

type mockDB struct {
	mock.Mock
}

func (m *mockDB) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	args := m.Called(ctx, sql, arguments)
	return args.Get(0).(pgconn.CommandTag), args.Error(1)
}

func (m *mockDB) Query(ctx context.Context, sql string, arguments ...any) (pgx.Rows, error) {
	args := m.Called(ctx, sql, arguments)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Rows), args.Error(1)
}

func (m *mockDB) QueryRow(ctx context.Context, sql string, arguments ...any) pgx.Row {
	args := m.Called(ctx, sql, arguments)
	return args.Get(0).(pgx.Row)
}

// ---------- Mock Rows ----------

type mockRows struct {
	callIndex int
	scanFuncs []func(dest ...any) error
	err       error
}

func newMockRows(scanFuncs ...func(dest ...any) error) *mockRows {
	return &mockRows{scanFuncs: scanFuncs}
}

func (m *mockRows) Next() bool {
	return m.callIndex < len(m.scanFuncs)
}

func (m *mockRows) Scan(dest ...any) error {
	if m.callIndex < len(m.scanFuncs) {
		fn := m.scanFuncs[m.callIndex]
		m.callIndex++
		return fn(dest...)
	}
	return nil
}

func (m *mockRows) Err() error                                   { return m.err }
func (m *mockRows) Close()                                       {}
func (m *mockRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (m *mockRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (m *mockRows) RawValues() [][]byte                          { return nil }
func (m *mockRows) Values() ([]any, error)                       { return nil, nil }
func (m *mockRows) Conn() *pgx.Conn                              { return nil }

// ---------- Mock Row ----------

type mockRow struct {
	scanFunc func(dest ...any) error
}

func (m *mockRow) Scan(dest ...any) error {
	return m.scanFunc(dest...)
}

// ---------- Tests ----------

func TestSetRequestProgress_UsesGreatest(t *testing.T) {
	db := &mockDB{}
	a := NewCoreDB(db)
	ctx := context.Background()

	db.On("Exec", ctx, mock.MatchedBy(func(sql string) bool {
		return strings.Contains(sql, "GREATEST")
	}), []any{40, "req-1"}).Return(pgconn.CommandTag{}, nil)

	require.NoError(t, a.SetRequestProgress(ctx, SetRequestProgressParams{ID: "req-1", Progress: 40}))
	db.AssertExpectations(t)
}

func TestSetRequestStatus_GuardsTerminalStates(t *testing.T) {
	db := &mockDB{}
	a := NewCoreDB(db)
	ctx := context.Background()

	db.On("Exec", ctx, mock.MatchedBy(func(sql string) bool {
		return strings.Contains(sql, "status NOT IN")
	}), mock.Anything).Return(pgconn.CommandTag{}, nil)

	require.NoError(t, a.SetRequestStatus(ctx, SetRequestStatusParams{ID: "req-1", Status: model.RequestStatusDeploying}))
	db.AssertExpectations(t)
}

func TestCompleteOperation_OnlyRunningRows(t *testing.T) {
	db := &mockDB{}
	a := NewCoreDB(db)
	ctx := context.Background()

	db.On("Exec", ctx, mock.MatchedBy(func(sql string) bool {
		return strings.Contains(sql, "status = $7")
	}), mock.Anything).Return(pgconn.CommandTag{}, nil)

	path := "/var/lib/provision/artifacts/op-1_db.sql"
	size := int64(2048)
	require.NoError(t, a.CompleteOperation(ctx, CompleteOperationParams{
		ID:           "op-1",
		Status:       model.OperationStatusCompleted,
		StdoutLog:    "backup written",
		ArtifactPath: &path,
		ArtifactSize: &size,
	}))
	db.AssertExpectations(t)
}

func TestListActiveProjectIDs(t *testing.T) {
	db := &mockDB{}
	a := NewCoreDB(db)
	ctx := context.Background()

	rows := newMockRows(
		func(dest ...any) error { *(dest[0].(*string)) = "proj-1"; return nil },
		func(dest ...any) error { *(dest[0].(*string)) = "proj-2"; return nil },
	)
	db.On("Query", ctx, mock.AnythingOfType("string"), mock.Anything).Return(rows, nil)

	ids, err := a.ListActiveProjectIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"proj-1", "proj-2"}, ids)
}

func TestGetServerRequest_NotFound(t *testing.T) {
	db := &mockDB{}
	a := NewCoreDB(db)
	ctx := context.Background()

	row := &mockRow{scanFunc: func(dest ...any) error {
		return errors.New("no rows in result set")
	}}
	db.On("QueryRow", ctx, mock.AnythingOfType("string"), mock.Anything).Return(row)

	_, err := a.GetServerRequest(ctx, "ghost")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "get server request")
}
