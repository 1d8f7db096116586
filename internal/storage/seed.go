package storage

import (
	"context"
	"database/sql"
	"fmt"

	"budget-calculator/internal/models"
)

// SeedData describes the bootstrap identity and its expenses.
type SeedData struct {
	Username     string
	PasswordHash string
	Expenses     []models.Expense
}

// Seed inserts data only when the user table is empty. It reports whether
// anything was written.
func (db *DB) Seed(ctx context.Context, data SeedData) (bool, error) {
	seeded := false
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		var count int
		if err := tx.QueryRowContext(ctx, countUsersSQL).Scan(&count); err != nil {
			return fmt.Errorf("count users: %w", err)
		}
		if count > 0 {
			return nil
		}

		res, err := tx.ExecContext(ctx, insertUserSQL, data.Username, data.PasswordHash)
		if err != nil {
			return fmt.Errorf("insert seed user: %w", err)
		}
		userID, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("get seed user id: %w", err)
		}

		for _, e := range data.Expenses {
			if _, err := tx.ExecContext(ctx, insertExpenseSQL, e.Description, e.Amount, e.Date, e.Category, userID); err != nil {
				return fmt.Errorf("insert seed expense %q: %w", e.Description, err)
			}
		}
		seeded = true
		return nil
	})
	return seeded, err
}
