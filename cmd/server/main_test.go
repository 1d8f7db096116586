package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"budget-calculator/internal/handlers"
	"budget-calculator/internal/logger"
	"budget-calculator/internal/service"
	"budget-calculator/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupRouter(t *testing.T) {
	db, err := storage.NewDB(":memory:")
	require.NoError(t, err, "failed to create database")
	defer db.Close()

	svc := service.NewService(db, time.Hour)
	h := handlers.NewHandlers(svc, handlers.Options{Pinger: db})
	mux := setupRouter(h)

	tests := []struct {
		name         string
		method       string
		path         string
		wantStatus   int
		wantLocation string
	}{
		{
			name:       "Landing page is public",
			method:     http.MethodGet,
			path:       "/",
			wantStatus: http.StatusOK,
		},
		{
			name:       "Login form is public",
			method:     http.MethodGet,
			path:       "/login",
			wantStatus: http.StatusOK,
		},
		{
			name:       "Health check",
			method:     http.MethodGet,
			path:       "/healthz",
			wantStatus: http.StatusOK,
		},
		{
			name:         "List Expenses requires auth",
			method:       http.MethodGet,
			path:         "/expenses",
			wantStatus:   http.StatusFound,
			wantLocation: "/login",
		},
		{
			name:         "Delete requires auth",
			method:       http.MethodPost,
			path:         "/delete/1",
			wantStatus:   http.StatusFound,
			wantLocation: "/login",
		},
		{
			name:       "Metrics disabled without gatherer",
			method:     http.MethodGet,
			path:       "/metrics",
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, http.NoBody)
			w := httptest.NewRecorder()

			mux.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code, "%s %s returned unexpected status", tt.method, tt.path)
			if tt.wantLocation != "" {
				assert.Equal(t, tt.wantLocation, w.Header().Get("Location"))
			}
		})
	}
}

type countingPurger struct {
	calls atomic.Int32
	err   error
}

func (p *countingPurger) PurgeExpiredSessions(context.Context) (int64, error) {
	p.calls.Add(1)
	return 1, p.err
}

func TestPurgeSessions_StopsOnCancel(t *testing.T) {
	p := &countingPurger{err: errors.New("boom")}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		purgeSessions(ctx, p, 5*time.Millisecond, logger.Nop())
		close(done)
	}()

	require.Eventually(t, func() bool { return p.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("purgeSessions did not stop after cancel")
	}
}
