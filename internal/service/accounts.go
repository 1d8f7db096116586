package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"budget-calculator/internal/auth"
	"budget-calculator/internal/models"
	"budget-calculator/internal/storage"
)

// Accounts registers users and manages their sessions.
type Accounts struct {
	users    UserStore
	sessions SessionStore
	duration time.Duration
	now      func() time.Time
}

// NewAccounts creates an account service issuing sessions that last duration.
func NewAccounts(users UserStore, sessions SessionStore, duration time.Duration) *Accounts {
	return &Accounts{users: users, sessions: sessions, duration: duration, now: time.Now}
}

// SessionDuration is the lifetime of a freshly issued or renewed session.
func (a *Accounts) SessionDuration() time.Duration {
	return a.duration
}

// maxPasswordBytes is the longest input bcrypt accepts.
const maxPasswordBytes = 72

type registration struct {
	Username string `validate:"required,max=64"`
	Password string `validate:"required"`
}

// Register creates a user with a bcrypt-hashed password.
func (a *Accounts) Register(ctx context.Context, username, password string) (*models.User, error) {
	in := registration{Username: strings.TrimSpace(username), Password: password}
	if strings.TrimSpace(in.Password) == "" {
		in.Password = ""
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	// validator's max counts runes; bcrypt limits bytes.
	if len(in.Password) > maxPasswordBytes {
		return nil, &ValidationError{Field: "Password", Message: fmt.Sprintf("must be at most %d bytes", maxPasswordBytes)}
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user, err := a.users.CreateUser(ctx, in.Username, hash)
	if err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("register %q: %w", in.Username, err)
	}
	return user, nil
}

// Login verifies credentials and opens a session. Every credential failure
// yields ErrInvalidCredentials.
func (a *Accounts) Login(ctx context.Context, username, password string) (*models.Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := a.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			// Spend the same bcrypt work as a real check.
			auth.CheckPassword(password, dummyHash())
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("look up user: %w", err)
	}
	if !auth.CheckPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	token, err := auth.GenerateSessionToken()
	if err != nil {
		return nil, err
	}
	now := a.now()
	sess := &models.Session{
		Token:        token,
		UserID:       user.ID,
		ExpiresAt:    now.Add(a.duration),
		LastActivity: now,
	}
	if err := a.sessions.CreateSession(ctx, sess.Token, sess.UserID, sess.ExpiresAt); err != nil {
		return nil, err
	}
	return sess, nil
}

// AuthResult is the outcome of resolving a session token.
type AuthResult struct {
	Identity models.Identity
	// Renewed is set when the session expiry was pushed out and the
	// client cookie should be refreshed.
	Renewed   bool
	ExpiresAt time.Time
}

// Authenticate resolves token to an identity. Sessions past the halfway
// point of their lifetime are renewed. Unknown or expired tokens yield
// ErrInvalidCredentials.
func (a *Accounts) Authenticate(ctx context.Context, token string) (*AuthResult, error) {
	if token == "" {
		return nil, ErrInvalidCredentials
	}
	info, err := a.sessions.ValidateSessionWithInfo(ctx, token)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	res := &AuthResult{Identity: info.User.Identity(), ExpiresAt: info.ExpiresAt}

	now := a.now()
	if info.ExpiresAt.Sub(now) < a.duration/2 {
		newExpiresAt := now.Add(a.duration)
		// A failed renewal leaves the current session usable.
		if err := a.sessions.RenewSession(ctx, token, newExpiresAt); err == nil {
			res.Renewed = true
			res.ExpiresAt = newExpiresAt
		}
	}
	return res, nil
}

// Logout deletes the session. Unknown tokens are ignored.
func (a *Accounts) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return a.sessions.DeleteSession(ctx, token)
}

// PurgeExpiredSessions removes sessions past their expiry.
func (a *Accounts) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	return a.sessions.CleanExpiredSessions(ctx)
}

var (
	dummyHashOnce  sync.Once
	dummyHashValue string
)

func dummyHash() string {
	dummyHashOnce.Do(func() {
		dummyHashValue, _ = auth.HashPassword("budget-calculator-timing-equaliser")
	})
	return dummyHashValue
}
