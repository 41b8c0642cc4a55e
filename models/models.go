package models

import (
	"fmt"
	"time"
)

// TodoStatus is the lifecycle state of a todo item, stored as its string name.
type TodoStatus string

const (
	StatusNew        TodoStatus = "NEW"
	StatusInProgress TodoStatus = "IN_PROGRESS"
	StatusCompleted  TodoStatus = "COMPLETED"
)

// Valid reports whether s is one of the known status values.
func (s TodoStatus) Valid() bool {
	switch s {
	case StatusNew, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// ParseTodoStatus converts a raw string into a TodoStatus.
func ParseTodoStatus(raw string) (TodoStatus, error) {
	s := TodoStatus(raw)
	if !s.Valid() {
		return "", fmt.Errorf("invalid todo status %q", raw)
	}
	return s, nil
}

// User represents a registered account.
type User struct {
	ID           int64     `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"` // Omit from JSON output for security
	IsActive     bool      `json:"isActive" db:"is_active"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// Todo is a task item owned by exactly one user.
type Todo struct {
	ID          int64      `json:"id" db:"id"`
	Title       string     `json:"title" db:"title"`
	Description string     `json:"description" db:"description"`
	Icon        string     `json:"icon" db:"icon"`
	IsFavorite  bool       `json:"isFavorite" db:"is_favorite"`
	Status      TodoStatus `json:"status" db:"status"`
	UserID      int64      `json:"userId" db:"user_id"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt" db:"updated_at"`

	// Username of the owner, filled in by the service layer for responses.
	Username string `json:"username,omitempty" db:"-"`
}

// RegisterRequest is the body of POST /register.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the body of POST /login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TodoInput carries todo fields for create and partial update.
// Nil pointers mean "leave unchanged" on update and "use the default"
// on create.
type TodoInput struct {
	Title       *string     `json:"title"`
	Description *string     `json:"description"`
	Icon        *string     `json:"icon"`
	IsFavorite  *bool       `json:"isFavorite"`
	Status      *TodoStatus `json:"status"`
}

// StatusRequest is the body of PATCH /todos/{id}/status.
type StatusRequest struct {
	Status string `json:"status"`
}

// Statistics holds per-status counts over one user's todos.
type Statistics struct {
	New        int `json:"new"`
	InProgress int `json:"inProgress"`
	Completed  int `json:"completed"`
	Total      int `json:"total"`
	Favorites  int `json:"favorites"`
}
