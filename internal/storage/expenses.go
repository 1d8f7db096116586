package storage

import (
	"context"
	"fmt"
	"strings"

	"budget-calculator/internal/models"
)

const (
	insertExpenseSQL = `INSERT INTO expenses (description, amount, date, category, user_id) VALUES (?, ?, ?, ?, ?)`
	selectExpenseSQL = `SELECT id, description, amount, date, COALESCE(category, ''), user_id FROM expenses WHERE user_id = ?`
	deleteExpenseSQL = `DELETE FROM expenses WHERE id = ? AND user_id = ?`
	sumExpensesSQL   = `SELECT COALESCE(SUM(amount), 0) FROM expenses WHERE user_id = ?`
)

// Sort orders accepted by ListExpenses. Every order ends with id so the
// result is total and stable.
const (
	SortNewest   = ""
	SortByAmount = "amount"
	SortByDate   = "date"
)

var orderClauses = map[string]string{
	SortNewest:   "ORDER BY date DESC, id DESC",
	SortByAmount: "ORDER BY amount DESC, id DESC",
	SortByDate:   "ORDER BY date ASC, id ASC",
}

// ExpenseQuery narrows ListExpenses. The zero value lists everything, newest first.
type ExpenseQuery struct {
	Date string
	Sort string
}

// CreateExpense inserts a new expense and returns its ID.
func (db *DB) CreateExpense(ctx context.Context, e *models.Expense) (int64, error) {
	res, err := db.conn.ExecContext(ctx, insertExpenseSQL, e.Description, e.Amount, e.Date, e.Category, e.UserID)
	if err != nil {
		return 0, fmt.Errorf("insert expense for user %d: %w", e.UserID, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get last insert id for expense: %w", err)
	}
	return id, nil
}

// ListExpenses returns the expenses owned by userID.
func (db *DB) ListExpenses(ctx context.Context, userID int64, q ExpenseQuery) ([]models.Expense, error) {
	order, ok := orderClauses[q.Sort]
	if !ok {
		return nil, fmt.Errorf("unknown sort order %q", q.Sort)
	}

	var sb strings.Builder
	sb.WriteString(selectExpenseSQL)
	args := []any{userID}
	if q.Date != "" {
		sb.WriteString(" AND date = ?")
		args = append(args, q.Date)
	}
	sb.WriteString(" ")
	sb.WriteString(order)

	rows, err := db.conn.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("select expenses for user %d: %w", userID, err)
	}
	defer rows.Close()

	expenses := make([]models.Expense, 0)
	for rows.Next() {
		var e models.Expense
		if err := rows.Scan(&e.ID, &e.Description, &e.Amount, &e.Date, &e.Category, &e.UserID); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}
	return expenses, nil
}

// DeleteExpense removes the expense only when both id and owner match.
// ErrNotFound is returned when no row matched.
func (db *DB) DeleteExpense(ctx context.Context, id, userID int64) error {
	res, err := db.conn.ExecContext(ctx, deleteExpenseSQL, id, userID)
	if err != nil {
		return fmt.Errorf("delete expense %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// SumExpenses returns the total amount spent by userID.
func (db *DB) SumExpenses(ctx context.Context, userID int64) (float64, error) {
	var total float64
	if err := db.conn.QueryRowContext(ctx, sumExpensesSQL, userID).Scan(&total); err != nil {
		return 0, fmt.Errorf("sum expenses for user %d: %w", userID, err)
	}
	return total, nil
}
