package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/taskforge/todo-api/models"
)

const todoColumns = "id, title, description, icon, is_favorite, status, user_id, created_at, updated_at"

// CreateTodo persists a new todo, assigning its id and timestamps.
func (s *Store) CreateTodo(ctx context.Context, t *models.Todo) error {
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now

	id, err := s.insertReturningID(ctx, s.rebind(`
		INSERT INTO todos (title, description, icon, is_favorite, status, user_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		t.Title, t.Description, t.Icon, t.IsFavorite, t.Status, t.UserID, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting todo: %w", err)
	}
	t.ID = id

	return nil
}

// UpdateTodo overwrites all mutable fields of an existing todo and
// refreshes its updated_at timestamp.
func (s *Store) UpdateTodo(ctx context.Context, t *models.Todo) error {
	t.UpdatedAt = time.Now().UTC()

	res, err := s.db.ExecContext(ctx, s.rebind(`
		UPDATE todos
		SET title = ?, description = ?, icon = ?, is_favorite = ?, status = ?, updated_at = ?
		WHERE id = ?`),
		t.Title, t.Description, t.Icon, t.IsFavorite, t.Status, t.UpdatedAt, t.ID,
	)
	if err != nil {
		return fmt.Errorf("updating todo %d: %w", t.ID, err)
	}

	rows, _ := res.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteTodo removes a todo by id.
func (s *Store) DeleteTodo(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, s.rebind("DELETE FROM todos WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("deleting todo %d: %w", id, err)
	}

	rows, _ := res.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// GetTodoByID retrieves a single todo by id.
func (s *Store) GetTodoByID(ctx context.Context, id int64) (*models.Todo, error) {
	var t models.Todo
	err := s.db.GetContext(ctx, &t,
		s.rebind("SELECT "+todoColumns+" FROM todos WHERE id = ?"), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting todo %d: %w", id, err)
	}
	return &t, nil
}

// GetTodosByUser retrieves all todos owned by userID in insertion order.
func (s *Store) GetTodosByUser(ctx context.Context, userID int64) ([]models.Todo, error) {
	var todos []models.Todo
	err := s.db.SelectContext(ctx, &todos,
		s.rebind("SELECT "+todoColumns+" FROM todos WHERE user_id = ? ORDER BY id"), userID)
	if err != nil {
		return nil, fmt.Errorf("querying todos for user %d: %w", userID, err)
	}
	return todos, nil
}

// GetTodosByUserAndStatus retrieves the owner's todos with the given status.
func (s *Store) GetTodosByUserAndStatus(ctx context.Context, userID int64, status models.TodoStatus) ([]models.Todo, error) {
	var todos []models.Todo
	err := s.db.SelectContext(ctx, &todos,
		s.rebind("SELECT "+todoColumns+" FROM todos WHERE user_id = ? AND status = ? ORDER BY id"),
		userID, status)
	if err != nil {
		return nil, fmt.Errorf("querying todos for user %d by status: %w", userID, err)
	}
	return todos, nil
}

// GetFavoritesByUser retrieves the owner's favorite todos.
func (s *Store) GetFavoritesByUser(ctx context.Context, userID int64) ([]models.Todo, error) {
	var todos []models.Todo
	err := s.db.SelectContext(ctx, &todos,
		s.rebind("SELECT "+todoColumns+" FROM todos WHERE user_id = ? AND is_favorite ORDER BY id"),
		userID)
	if err != nil {
		return nil, fmt.Errorf("querying favorites for user %d: %w", userID, err)
	}
	return todos, nil
}
