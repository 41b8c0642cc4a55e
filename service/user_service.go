package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/taskforge/todo-api/auth"
	"github.com/taskforge/todo-api/models"
	"github.com/taskforge/todo-api/store"
)

// UserService handles registration, login, and profile retrieval.
type UserService struct {
	store  *store.Store
	tokens *auth.TokenManager
}

// NewUserService returns a UserService backed by st and issuing tokens
// through tokens.
func NewUserService(st *store.Store, tokens *auth.TokenManager) *UserService {
	return &UserService{store: st, tokens: tokens}
}

// Register creates a new active account with a bcrypt-hashed password.
// The returned user never carries the hash in its JSON form.
func (s *UserService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: username, email, and password are required", ErrInvalidInput)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		IsActive:     true,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}

	return user, nil
}

// Login verifies the credentials and issues a bearer token whose subject
// is the user's email. Unknown email and wrong password are not
// distinguished to the caller.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	user, err := s.store.GetUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, "", ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", fmt.Errorf("looking up user: %w", err)
	}

	if !auth.CheckPassword(password, user.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.Email)
	if err != nil {
		return nil, "", fmt.Errorf("issuing token: %w", err)
	}

	return user, token, nil
}

// CurrentUser returns the principal bound to the request context.
func (s *UserService) CurrentUser(ctx context.Context) (*models.User, error) {
	user, ok := auth.UserFromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}
	return user, nil
}

// Profile returns the public view of the account for email, or of the
// current principal when email is empty.
func (s *UserService) Profile(ctx context.Context, email string) (*models.User, error) {
	if email == "" {
		return s.CurrentUser(ctx)
	}

	user, err := s.store.GetUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("user %s: %w", email, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("looking up user: %w", err)
	}
	return user, nil
}

// IsAccountActive reports whether the account for email is active.
// Unknown emails count as inactive.
func (s *UserService) IsAccountActive(ctx context.Context, email string) (bool, error) {
	return s.store.IsAccountActive(ctx, email)
}
