package service

import (
	"context"
	"fmt"

	"budget-calculator/internal/auth"
	"budget-calculator/internal/models"
	"budget-calculator/internal/storage"
)

// Seeder writes bootstrap data into an empty store.
type Seeder interface {
	UserCount(ctx context.Context) (int, error)
	Seed(ctx context.Context, data storage.SeedData) (bool, error)
}

// DefaultSeedExpenses are attached to the bootstrap identity.
var DefaultSeedExpenses = []models.Expense{
	{Description: "Покупка продуктов", Amount: 5000, Date: "2025-09-10", Category: "Еда"},
	{Description: "Такси", Amount: 1200, Date: "2025-09-10", Category: "Транспорт"},
}

// SeedStore creates the bootstrap identity and its two expenses when no
// user exists yet. It reports whether the store was seeded.
func SeedStore(ctx context.Context, s Seeder, username, password string) (bool, error) {
	// Skip the bcrypt work on a populated store. Seed re-checks inside its
	// transaction.
	count, err := s.UserCount(ctx)
	if err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return false, err
	}
	return s.Seed(ctx, storage.SeedData{
		Username:     username,
		PasswordHash: hash,
		Expenses:     DefaultSeedExpenses,
	})
}
