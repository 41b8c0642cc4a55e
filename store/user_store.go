package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/taskforge/todo-api/models"
)

const userColumns = "id, username, email, password_hash, is_active, created_at, updated_at"

// CreateUser persists a new user, assigning its id and timestamps.
// A duplicate email fails with ErrDuplicateEmail; the unique index on
// email is the schema-level backstop.
func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	var count int
	err := s.db.GetContext(ctx, &count,
		s.rebind("SELECT COUNT(*) FROM users WHERE email = ?"), u.Email)
	if err != nil {
		return fmt.Errorf("checking for existing email: %w", err)
	}
	if count > 0 {
		return ErrDuplicateEmail
	}

	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	id, err := s.insertReturningID(ctx, s.rebind(`
		INSERT INTO users (username, email, password_hash, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`),
		u.Username, u.Email, u.PasswordHash, u.IsActive, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting user: %w", err)
	}
	u.ID = id

	return nil
}

// GetUserByEmail retrieves a user by its unique email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.db.GetContext(ctx, &u,
		s.rebind("SELECT "+userColumns+" FROM users WHERE email = ?"), email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting user by email: %w", err)
	}
	return &u, nil
}

// GetUserByID retrieves a user by id.
func (s *Store) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	var u models.User
	err := s.db.GetContext(ctx, &u,
		s.rebind("SELECT "+userColumns+" FROM users WHERE id = ?"), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting user %d: %w", id, err)
	}
	return &u, nil
}

// IsAccountActive reports whether the account for email exists and is
// marked active.
func (s *Store) IsAccountActive(ctx context.Context, email string) (bool, error) {
	var active bool
	err := s.db.GetContext(ctx, &active,
		s.rebind("SELECT is_active FROM users WHERE email = ?"), email)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking account state: %w", err)
	}
	return active, nil
}
