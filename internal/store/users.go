package store

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// User is one row of users. The password column holds a bcrypt hash
// and never leaves this package in API responses.
type User struct {
	ID            int64      `json:"user_id"`
	Email         string     `json:"email"`
	PasswordHash  string     `json:"-"`
	Username      string     `json:"username"`
	IsActive      bool       `json:"is_active"`
	EmailVerified bool       `json:"email_verified"`
	LastLoginAt   *time.Time `json:"last_login_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// CreateUser inserts a new active user and returns its id.
func (s *Store) CreateUser(ctx context.Context, email, passwordHash, username string) (int64, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO users (email, password, username, is_active, email_verified, created_at, updated_at)
		VALUES (?, ?, ?, 1, 1, ?, ?)
	`, email, passwordHash, username, now, now)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// GetUserByEmail fetches a user by email address.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return s.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
}

// GetUser fetches a user by id.
func (s *Store) GetUser(ctx context.Context, userID int64) (*User, error) {
	return s.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE user_id = ?`, userID)
}

const userColumns = `user_id, email, password, username, is_active, email_verified,
	last_login_at, created_at, updated_at`

func (s *Store) getUser(ctx context.Context, query string, arg any) (*User, error) {
	var u User
	var lastLogin sql.NullTime

	err := s.db.QueryRowContext(ctx, query, arg).Scan(&u.ID, &u.Email, &u.PasswordHash,
		&u.Username, &u.IsActive, &u.EmailVerified, &lastLogin, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if lastLogin.Valid {
		u.LastLoginAt = &lastLogin.Time
	}
	return &u, nil
}

// TouchLastLogin records a successful login.
func (s *Store) TouchLastLogin(ctx context.Context, userID int64) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE users SET last_login_at = ?, updated_at = ? WHERE user_id = ?
	`, time.Now().UTC(), time.Now().UTC(), userID)
	return err
}
