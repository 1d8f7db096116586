package models

import "time"

// Expense represents a single expense owned by one user.
type Expense struct {
	ID          int64   `json:"id"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Date        string  `json:"date"`
	Category    string  `json:"category"`
	UserID      int64   `json:"user_id"`
}

// User represents a user account.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Identity returns the identity of an authenticated user.
func (u *User) Identity() Identity {
	return Identity{UserID: u.ID, Username: u.Username}
}

// Identity is the authenticated user bound to the current session.
// Every ledger operation receives one explicitly.
type Identity struct {
	UserID   int64
	Username string
}

// Session represents a user session.
type Session struct {
	Token        string    `json:"token"`
	UserID       int64     `json:"user_id"`
	ExpiresAt    time.Time `json:"expires_at"`
	LastActivity time.Time `json:"last_activity"`
}
