package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"budget-calculator/internal/models"
	"budget-calculator/internal/storage"
)

// Ledger holds the expense operations. Every call is scoped to the identity
// it receives; no query ever reaches rows owned by anyone else.
type Ledger struct {
	expenses ExpenseStore
}

func NewLedger(expenses ExpenseStore) *Ledger {
	return &Ledger{expenses: expenses}
}

// ExpenseInput is the raw form data for a new expense.
type ExpenseInput struct {
	Description string `validate:"required,max=255"`
	Amount      string `validate:"required"`
	Date        string `validate:"required,datetime=2006-01-02"`
	Category    string `validate:"max=64"`
}

// ListFilter narrows List. Sort is "", "amount" or "date".
type ListFilter struct {
	Date string `validate:"omitempty,datetime=2006-01-02"`
	Sort string `validate:"omitempty,oneof=amount date"`
}

// List returns the identity's expenses.
func (l *Ledger) List(ctx context.Context, id models.Identity, f ListFilter) ([]models.Expense, error) {
	f.Date = strings.TrimSpace(f.Date)
	if err := validateStruct(f); err != nil {
		return nil, err
	}
	return l.expenses.ListExpenses(ctx, id.UserID, storage.ExpenseQuery{Date: f.Date, Sort: f.Sort})
}

// Add validates in and stores a new expense owned by the identity.
func (l *Ledger) Add(ctx context.Context, id models.Identity, in ExpenseInput) (int64, error) {
	in.Description = strings.TrimSpace(in.Description)
	in.Amount = strings.TrimSpace(in.Amount)
	in.Date = strings.TrimSpace(in.Date)
	in.Category = strings.TrimSpace(in.Category)
	if err := validateStruct(in); err != nil {
		return 0, err
	}

	amount, err := parseAmount(in.Amount)
	if err != nil {
		return 0, err
	}

	return l.expenses.CreateExpense(ctx, &models.Expense{
		Description: in.Description,
		Amount:      amount,
		Date:        in.Date,
		Category:    in.Category,
		UserID:      id.UserID,
	})
}

// Delete removes an expense owned by the identity. ErrExpenseNotFound is
// returned when the id does not exist or belongs to someone else.
func (l *Ledger) Delete(ctx context.Context, id models.Identity, expenseID int64) error {
	if err := l.expenses.DeleteExpense(ctx, expenseID, id.UserID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrExpenseNotFound
		}
		return err
	}
	return nil
}

// Total returns the sum of the identity's expenses.
func (l *Ledger) Total(ctx context.Context, id models.Identity) (float64, error) {
	return l.expenses.SumExpenses(ctx, id.UserID)
}

func parseAmount(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &ValidationError{Field: "Amount", Message: fmt.Sprintf("must be a number, got %q", s)}
	}
	return v, nil
}
