package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"budget-calculator/internal/models"
)

const (
	insertUserSQL           = `INSERT INTO user (username, password_hash) VALUES (?, ?)`
	selectUserByIDSQL       = `SELECT id, username, password_hash, created_at FROM user WHERE id = ?`
	selectUserByUsernameSQL = `SELECT id, username, password_hash, created_at FROM user WHERE username = ?`
	selectUsersSQL          = `SELECT id, username, password_hash, created_at FROM user ORDER BY id`
	countUsersSQL           = `SELECT COUNT(*) FROM user`
)

// CreateUser creates a new user with the given username and password hash.
// A taken username yields ErrDuplicate.
func (db *DB) CreateUser(ctx context.Context, username, passwordHash string) (*models.User, error) {
	result, err := db.conn.ExecContext(ctx, insertUserSQL, username, passwordHash)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("insert user %q: %w", username, ErrDuplicate)
		}
		return nil, fmt.Errorf("insert user %q: %w", username, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last insert id for user %q: %w", username, err)
	}

	return db.GetUserByID(ctx, id)
}

// GetUserByID retrieves a user by ID.
func (db *DB) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return scanUser(db.conn.QueryRowContext(ctx, selectUserByIDSQL, id))
}

// GetUserByUsername retrieves a user by username.
func (db *DB) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return scanUser(db.conn.QueryRowContext(ctx, selectUserByUsernameSQL, username))
}

// ListUsers returns every user ordered by ID.
func (db *DB) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := db.conn.QueryContext(ctx, selectUsersSQL)
	if err != nil {
		return nil, fmt.Errorf("select users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// UserCount returns the number of users in the database.
func (db *DB) UserCount(ctx context.Context) (int, error) {
	var count int
	if err := db.conn.QueryRowContext(ctx, countUsersSQL).Scan(&count); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return count, nil
}

func scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select user: %w", err)
	}
	return &u, nil
}
