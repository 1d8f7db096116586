package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"budget-calculator/internal/auth"
	"budget-calculator/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDBWithUser(t *testing.T, username, password string) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "budget.db")

	db, err := storage.NewDB(dbPath)
	require.NoError(t, err)
	defer db.Close()

	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	_, err = db.CreateUser(context.Background(), username, hash)
	require.NoError(t, err)
	return dbPath
}

func TestRun_PasswordMatches(t *testing.T) {
	dbPath := newDBWithUser(t, "test_user", "password")
	stdout := new(bytes.Buffer)

	err := run([]string{"-user", "test_user", "-password", "password", "-db", dbPath}, new(bytes.Buffer), stdout, new(bytes.Buffer))
	require.NoError(t, err)

	out := stdout.String()
	assert.Contains(t, out, "Found user: test_user")
	assert.Contains(t, out, "Password matches: yes")
	assert.Contains(t, out, "Users in database: 1")
	assert.Contains(t, out, "Username: test_user")
}

func TestRun_PasswordMismatch(t *testing.T) {
	dbPath := newDBWithUser(t, "test_user", "password")
	stdout := new(bytes.Buffer)

	err := run([]string{"-user", "test_user", "-db", dbPath}, bytes.NewBufferString("qwerty\n"), stdout, new(bytes.Buffer))
	require.ErrorIs(t, err, errMismatch)

	out := stdout.String()
	assert.Contains(t, out, "Password: ")
	assert.Contains(t, out, "Password matches: no")
	assert.Contains(t, out, "Users in database: 1", "users are listed even on mismatch")
}

func TestRun_UnknownUser(t *testing.T) {
	dbPath := newDBWithUser(t, "test_user", "password")

	err := run([]string{"-user", "ghost", "-password", "x", "-db", dbPath}, new(bytes.Buffer), new(bytes.Buffer), new(bytes.Buffer))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "user ghost not found")
}

func TestRun_ListOnly(t *testing.T) {
	dbPath := newDBWithUser(t, "test_user", "password")
	stdout := new(bytes.Buffer)

	require.NoError(t, run([]string{"-db", dbPath}, new(bytes.Buffer), stdout, new(bytes.Buffer)))
	assert.NotContains(t, stdout.String(), "Password matches")
	assert.Contains(t, stdout.String(), "ID: 1, Username: test_user")
}
