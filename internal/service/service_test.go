package service

import (
	"context"
	"testing"
	"time"

	"budget-calculator/internal/storage"

	"github.com/stretchr/testify/require"
)

const testSessionDuration = 24 * time.Hour

func newTestService(t *testing.T) (*Service, *storage.DB) {
	t.Helper()
	db, err := storage.NewDB(":memory:")
	require.NoError(t, err, "failed to create test database")
	t.Cleanup(func() { db.Close() })
	return NewService(db, testSessionDuration), db
}

func mustRegister(t *testing.T, svc *Service, username, password string) {
	t.Helper()
	_, err := svc.Accounts.Register(context.Background(), username, password)
	require.NoError(t, err)
}
