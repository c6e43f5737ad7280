package creds

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDB struct {
	row pgx.Row
}

func (s *stubDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return s.row
}

type stubRow struct {
	scanFunc func(dest ...any) error
}

func (r *stubRow) Scan(dest ...any) error {
	return r.scanFunc(dest...)
}

func projectRow(token, sshUser string, sshPort int, sshKey, passphrase string, active bool) pgx.Row {
	return &stubRow{scanFunc: func(dest ...any) error {
		*(dest[0].(*string)) = token
		*(dest[1].(*string)) = sshUser
		*(dest[2].(*int)) = sshPort
		*(dest[3].(*string)) = sshKey
		*(dest[4].(*string)) = passphrase
		*(dest[5].(*bool)) = active
		return nil
	}}
}

var testDefaults = Defaults{CloudToken: "default-token", SSHUser: "root", SSHPort: 22}

func TestResolve_NilProjectUsesDefaults(t *testing.T) {
	r := NewResolver(&stubDB{}, testDefaults)

	creds, err := r.Resolve(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "default-token", creds.CloudToken)
	assert.Equal(t, "root", creds.SSHUser)
	assert.Equal(t, 22, creds.SSHPort)
	assert.Empty(t, creds.SSHPrivateKey)
}

func TestResolve_ProjectOverrides(t *testing.T) {
	db := &stubDB{row: projectRow("proj-token", "deploy", 2222, "KEY", "secret", true)}
	r := NewResolver(db, testDefaults)

	id := "proj-1"
	creds, err := r.Resolve(context.Background(), &id)
	require.NoError(t, err)
	assert.Equal(t, "proj-token", creds.CloudToken)
	assert.Equal(t, "deploy", creds.SSHUser)
	assert.Equal(t, 2222, creds.SSHPort)
	assert.Equal(t, []byte("KEY"), creds.SSHPrivateKey)
	assert.Equal(t, "secret", creds.SSHPassphrase)
}

func TestResolve_SentinelTokenFallsBack(t *testing.T) {
	db := &stubDB{row: projectRow("default", "", 0, "", "", true)}
	r := NewResolver(db, testDefaults)

	id := "proj-1"
	creds, err := r.Resolve(context.Background(), &id)
	require.NoError(t, err)
	assert.Equal(t, "default-token", creds.CloudToken)
	assert.Equal(t, "root", creds.SSHUser)
	assert.Equal(t, 22, creds.SSHPort)
}

func TestResolve_ProjectNotFound(t *testing.T) {
	db := &stubDB{row: &stubRow{scanFunc: func(dest ...any) error { return pgx.ErrNoRows }}}
	r := NewResolver(db, testDefaults)

	id := "missing"
	_, err := r.Resolve(context.Background(), &id)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfiguration))
	assert.Contains(t, err.Error(), "not found")
}

func TestResolve_InactiveProject(t *testing.T) {
	db := &stubDB{row: projectRow("tok", "root", 22, "KEY", "", false)}
	r := NewResolver(db, testDefaults)

	id := "proj-1"
	_, err := r.Resolve(context.Background(), &id)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfiguration))
	assert.Contains(t, err.Error(), "inactive")
}

func TestResolve_DBError(t *testing.T) {
	db := &stubDB{row: &stubRow{scanFunc: func(dest ...any) error { return errors.New("conn refused") }}}
	r := NewResolver(db, testDefaults)

	id := "proj-1"
	_, err := r.Resolve(context.Background(), &id)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrConfiguration))
}

func TestRequireCloudToken(t *testing.T) {
	c := &Credentials{CloudToken: "tok"}
	tok, err := c.RequireCloudToken()
	require.NoError(t, err)
	assert.Equal(t, "tok", tok)

	empty := &Credentials{}
	_, err = empty.RequireCloudToken()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfiguration))
}

func TestRequireSSHKey(t *testing.T) {
	c := &Credentials{SSHPrivateKey: []byte("KEY")}
	key, err := c.RequireSSHKey()
	require.NoError(t, err)
	assert.Equal(t, []byte("KEY"), key)

	empty := &Credentials{}
	_, err = empty.RequireSSHKey()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfiguration))
	assert.Contains(t, err.Error(), "SSH private key")
}
