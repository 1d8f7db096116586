package service

import (
	"context"
	"time"

	"budget-calculator/internal/models"
	"budget-calculator/internal/storage"
)

// UserStore persists credentials.
type UserStore interface {
	CreateUser(ctx context.Context, username, passwordHash string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// SessionStore persists server-side sessions.
type SessionStore interface {
	CreateSession(ctx context.Context, token string, userID int64, expiresAt time.Time) error
	ValidateSessionWithInfo(ctx context.Context, token string) (*storage.SessionInfo, error)
	RenewSession(ctx context.Context, token string, newExpiresAt time.Time) error
	DeleteSession(ctx context.Context, token string) error
	CleanExpiredSessions(ctx context.Context) (int64, error)
}

// ExpenseStore persists ledger rows. Every method is scoped by owner.
type ExpenseStore interface {
	CreateExpense(ctx context.Context, e *models.Expense) (int64, error)
	ListExpenses(ctx context.Context, userID int64, q storage.ExpenseQuery) ([]models.Expense, error)
	DeleteExpense(ctx context.Context, id, userID int64) error
	SumExpenses(ctx context.Context, userID int64) (float64, error)
}

// Store is everything the services need from persistence.
type Store interface {
	UserStore
	SessionStore
	ExpenseStore
}

var _ Store = (*storage.DB)(nil)

// Service aggregates the account and ledger services.
type Service struct {
	Accounts *Accounts
	Ledger   *Ledger
}

// NewService wires the services on top of one store.
func NewService(store Store, sessionDuration time.Duration) *Service {
	return &Service{
		Accounts: NewAccounts(store, store, sessionDuration),
		Ledger:   NewLedger(store),
	}
}
