package storage

import (
	"context"
	"path/filepath"
	"testing"

	"budget-calculator/internal/auth"
	"budget-calculator/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// DBTestSuite provides a test suite for user and expense operations
type DBTestSuite struct {
	suite.Suite
	db  *DB
	ctx context.Context
}

// SetupTest runs before each test
func (suite *DBTestSuite) SetupTest() {
	db, err := NewDB(":memory:")
	require.NoError(suite.T(), err, "failed to create test database")
	suite.db = db
	suite.ctx = context.Background()
}

// TearDownTest runs after each test
func (suite *DBTestSuite) TearDownTest() {
	if suite.db != nil {
		suite.db.Close()
	}
}

func (suite *DBTestSuite) createUser(username string) *models.User {
	hash, err := auth.HashPassword("pw-" + username)
	require.NoError(suite.T(), err)
	u, err := suite.db.CreateUser(suite.ctx, username, hash)
	require.NoError(suite.T(), err, "failed to create user %s", username)
	return u
}

func (suite *DBTestSuite) addExpense(userID int64, description string, amount float64, date string) int64 {
	id, err := suite.db.CreateExpense(suite.ctx, &models.Expense{
		Description: description,
		Amount:      amount,
		Date:        date,
		UserID:      userID,
	})
	require.NoError(suite.T(), err, "failed to create expense %s", description)
	return id
}

func (suite *DBTestSuite) TestCreateUser() {
	u := suite.createUser("alice")

	assert.NotZero(suite.T(), u.ID)
	assert.Equal(suite.T(), "alice", u.Username)
	assert.False(suite.T(), u.CreatedAt.IsZero(), "created_at should be populated")

	byName, err := suite.db.GetUserByUsername(suite.ctx, "alice")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), u.ID, byName.ID)
}

func (suite *DBTestSuite) TestCreateUserDuplicate() {
	original := suite.createUser("alice")

	_, err := suite.db.CreateUser(suite.ctx, "alice", "other-hash")
	assert.ErrorIs(suite.T(), err, ErrDuplicate)

	stored, err := suite.db.GetUserByUsername(suite.ctx, "alice")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), original.PasswordHash, stored.PasswordHash, "existing row must be untouched")

	count, err := suite.db.UserCount(suite.ctx)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 1, count)
}

func (suite *DBTestSuite) TestGetUserNotFound() {
	_, err := suite.db.GetUserByUsername(suite.ctx, "nobody")
	assert.ErrorIs(suite.T(), err, ErrNotFound)

	_, err = suite.db.GetUserByID(suite.ctx, 42)
	assert.ErrorIs(suite.T(), err, ErrNotFound)
}

func (suite *DBTestSuite) TestListUsers() {
	suite.createUser("alice")
	suite.createUser("bob")

	users, err := suite.db.ListUsers(suite.ctx)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), users, 2)
	assert.Equal(suite.T(), "alice", users[0].Username)
	assert.Equal(suite.T(), "bob", users[1].Username)
}

func (suite *DBTestSuite) TestListExpensesEmpty() {
	u := suite.createUser("alice")

	expenses, err := suite.db.ListExpenses(suite.ctx, u.ID, ExpenseQuery{})
	require.NoError(suite.T(), err)
	assert.NotNil(suite.T(), expenses, "empty result must be a non-nil slice")
	assert.Empty(suite.T(), expenses)
}

func (suite *DBTestSuite) TestListExpensesScopedToOwner() {
	alice := suite.createUser("alice")
	bob := suite.createUser("bob")

	suite.addExpense(alice.ID, "Coffee", 3.5, "2025-01-02")
	suite.addExpense(bob.ID, "Bus", 2.0, "2025-01-02")

	expenses, err := suite.db.ListExpenses(suite.ctx, alice.ID, ExpenseQuery{})
	require.NoError(suite.T(), err)
	require.Len(suite.T(), expenses, 1)
	assert.Equal(suite.T(), "Coffee", expenses[0].Description)
	assert.Equal(suite.T(), 3.5, expenses[0].Amount)
	assert.Equal(suite.T(), "2025-01-02", expenses[0].Date)
	assert.Equal(suite.T(), alice.ID, expenses[0].UserID)
	assert.Equal(suite.T(), "", expenses[0].Category, "NULL category reads back empty")
}

func (suite *DBTestSuite) TestListExpensesOrdering() {
	u := suite.createUser("alice")

	suite.addExpense(u.ID, "Old", 50, "2025-01-01")
	suite.addExpense(u.ID, "Newest", 5, "2025-03-01")
	suite.addExpense(u.ID, "Middle A", 20, "2025-02-01")
	suite.addExpense(u.ID, "Middle B", 10, "2025-02-01")

	tests := []struct {
		name string
		sort string
		want []string
	}{
		{"default is newest first", SortNewest, []string{"Newest", "Middle B", "Middle A", "Old"}},
		{"by amount", SortByAmount, []string{"Old", "Middle A", "Middle B", "Newest"}},
		{"by date ascending", SortByDate, []string{"Old", "Middle A", "Middle B", "Newest"}},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			expenses, err := suite.db.ListExpenses(suite.ctx, u.ID, ExpenseQuery{Sort: tt.sort})
			require.NoError(suite.T(), err)

			got := make([]string, 0, len(expenses))
			for _, e := range expenses {
				got = append(got, e.Description)
			}
			assert.Equal(suite.T(), tt.want, got)
		})
	}
}

func (suite *DBTestSuite) TestListExpensesUnknownSort() {
	u := suite.createUser("alice")

	_, err := suite.db.ListExpenses(suite.ctx, u.ID, ExpenseQuery{Sort: "category; DROP TABLE user"})
	assert.Error(suite.T(), err)
}

func (suite *DBTestSuite) TestListExpensesDateFilter() {
	u := suite.createUser("alice")

	suite.addExpense(u.ID, "Lunch", 12, "2025-09-10")
	suite.addExpense(u.ID, "Dinner", 30, "2025-09-10")
	suite.addExpense(u.ID, "Taxi", 8, "2025-09-11")

	expenses, err := suite.db.ListExpenses(suite.ctx, u.ID, ExpenseQuery{Date: "2025-09-10"})
	require.NoError(suite.T(), err)
	assert.Len(suite.T(), expenses, 2)
	for _, e := range expenses {
		assert.Equal(suite.T(), "2025-09-10", e.Date)
	}
}

func (suite *DBTestSuite) TestDeleteExpense() {
	u := suite.createUser("alice")
	id := suite.addExpense(u.ID, "Coffee", 3.5, "2025-01-02")

	require.NoError(suite.T(), suite.db.DeleteExpense(suite.ctx, id, u.ID))

	expenses, err := suite.db.ListExpenses(suite.ctx, u.ID, ExpenseQuery{})
	require.NoError(suite.T(), err)
	assert.Empty(suite.T(), expenses)

	assert.ErrorIs(suite.T(), suite.db.DeleteExpense(suite.ctx, id, u.ID), ErrNotFound, "second delete finds nothing")
}

func (suite *DBTestSuite) TestDeleteExpenseOfAnotherUser() {
	alice := suite.createUser("alice")
	bob := suite.createUser("bob")
	id := suite.addExpense(alice.ID, "Coffee", 3.5, "2025-01-02")

	err := suite.db.DeleteExpense(suite.ctx, id, bob.ID)
	assert.ErrorIs(suite.T(), err, ErrNotFound)

	expenses, err := suite.db.ListExpenses(suite.ctx, alice.ID, ExpenseQuery{})
	require.NoError(suite.T(), err)
	assert.Len(suite.T(), expenses, 1, "foreign delete must leave the row intact")
}

func (suite *DBTestSuite) TestCreateExpenseUnknownUser() {
	_, err := suite.db.CreateExpense(suite.ctx, &models.Expense{
		Description: "Orphan",
		Amount:      1,
		Date:        "2025-01-01",
		UserID:      999,
	})
	assert.Error(suite.T(), err, "foreign key must reject unknown owners")
}

func (suite *DBTestSuite) TestSumExpenses() {
	alice := suite.createUser("alice")
	bob := suite.createUser("bob")

	total, err := suite.db.SumExpenses(suite.ctx, alice.ID)
	require.NoError(suite.T(), err)
	assert.Zero(suite.T(), total)

	suite.addExpense(alice.ID, "Coffee", 3.5, "2025-01-02")
	suite.addExpense(alice.ID, "Lunch", 12.25, "2025-01-02")
	suite.addExpense(bob.ID, "Bus", 100, "2025-01-02")

	total, err = suite.db.SumExpenses(suite.ctx, alice.ID)
	require.NoError(suite.T(), err)
	assert.InDelta(suite.T(), 15.75, total, 1e-9)
}

func (suite *DBTestSuite) TestSeed() {
	data := SeedData{
		Username:     "test_user",
		PasswordHash: "hash",
		Expenses: []models.Expense{
			{Description: "Groceries", Amount: 5000, Date: "2025-09-10", Category: "Food"},
			{Description: "Taxi", Amount: 1200, Date: "2025-09-10", Category: "Transport"},
		},
	}

	seeded, err := suite.db.Seed(suite.ctx, data)
	require.NoError(suite.T(), err)
	assert.True(suite.T(), seeded)

	u, err := suite.db.GetUserByUsername(suite.ctx, "test_user")
	require.NoError(suite.T(), err)
	expenses, err := suite.db.ListExpenses(suite.ctx, u.ID, ExpenseQuery{})
	require.NoError(suite.T(), err)
	assert.Len(suite.T(), expenses, 2)

	seeded, err = suite.db.Seed(suite.ctx, data)
	require.NoError(suite.T(), err)
	assert.False(suite.T(), seeded, "second seed must be a no-op")

	count, err := suite.db.UserCount(suite.ctx)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 1, count)
}

func (suite *DBTestSuite) TestSeedSkippedWhenUsersExist() {
	suite.createUser("alice")

	seeded, err := suite.db.Seed(suite.ctx, SeedData{Username: "test_user", PasswordHash: "hash"})
	require.NoError(suite.T(), err)
	assert.False(suite.T(), seeded)

	_, err = suite.db.GetUserByUsername(suite.ctx, "test_user")
	assert.ErrorIs(suite.T(), err, ErrNotFound)
}

func (suite *DBTestSuite) TestPing() {
	assert.NoError(suite.T(), suite.db.Ping(suite.ctx))
}

// Test suite runners
func TestDBSuite(t *testing.T) {
	suite.Run(t, new(DBTestSuite))
}

func TestNewDB_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "budget.db")
	ctx := context.Background()

	db, err := NewDB(path)
	require.NoError(t, err)
	_, err = db.CreateUser(ctx, "alice", "hash")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = NewDB(path)
	require.NoError(t, err, "migrations must be idempotent on reopen")
	defer db.Close()

	u, err := db.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
}

func TestNewDB_InvalidPath(t *testing.T) {
	_, err := NewDB(t.TempDir())
	assert.Error(t, err)
}
