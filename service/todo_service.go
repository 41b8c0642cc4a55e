package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/taskforge/todo-api/models"
	"github.com/taskforge/todo-api/store"
)

// TodoService implements owner-scoped todo operations. Every operation
// resolves the caller first; single-item operations check existence
// before ownership, so a missing id and a foreign todo stay
// distinguishable (404 vs 403).
type TodoService struct {
	store *store.Store
	users *UserService
}

// NewTodoService returns a TodoService backed by st, resolving callers
// through users.
func NewTodoService(st *store.Store, users *UserService) *TodoService {
	return &TodoService{store: st, users: users}
}

// ownedTodo fetches the todo by id and verifies the caller owns it.
func (s *TodoService) ownedTodo(ctx context.Context, id int64) (*models.Todo, *models.User, error) {
	caller, err := s.users.CurrentUser(ctx)
	if err != nil {
		return nil, nil, err
	}

	todo, err := s.store.GetTodoByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil, fmt.Errorf("todo %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, nil, err
	}

	if todo.UserID != caller.ID {
		return nil, nil, ErrForbidden
	}

	todo.Username = caller.Username
	return todo, caller, nil
}

// Create stores a new todo owned by the caller. Status defaults to NEW
// and favorite to false when unset.
func (s *TodoService) Create(ctx context.Context, input models.TodoInput) (*models.Todo, error) {
	caller, err := s.users.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}

	if input.Title == nil || strings.TrimSpace(*input.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}

	todo := &models.Todo{
		Title:  *input.Title,
		Status: models.StatusNew,
		UserID: caller.ID,
	}
	if input.Description != nil {
		todo.Description = *input.Description
	}
	if input.Icon != nil {
		todo.Icon = *input.Icon
	}
	if input.IsFavorite != nil {
		todo.IsFavorite = *input.IsFavorite
	}
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, fmt.Errorf("%w: invalid todo status %q", ErrInvalidInput, *input.Status)
		}
		todo.Status = *input.Status
	}

	if err := s.store.CreateTodo(ctx, todo); err != nil {
		return nil, err
	}

	todo.Username = caller.Username
	return todo, nil
}

// List returns all todos owned by the caller.
func (s *TodoService) List(ctx context.Context) ([]models.Todo, error) {
	caller, err := s.users.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}

	todos, err := s.store.GetTodosByUser(ctx, caller.ID)
	if err != nil {
		return nil, err
	}
	fillUsername(todos, caller.Username)
	return todos, nil
}

// ListByStatus returns the caller's todos with the given status.
func (s *TodoService) ListByStatus(ctx context.Context, status models.TodoStatus) ([]models.Todo, error) {
	caller, err := s.users.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: invalid todo status %q", ErrInvalidInput, status)
	}

	todos, err := s.store.GetTodosByUserAndStatus(ctx, caller.ID, status)
	if err != nil {
		return nil, err
	}
	fillUsername(todos, caller.Username)
	return todos, nil
}

// Get returns a single todo owned by the caller.
func (s *TodoService) Get(ctx context.Context, id int64) (*models.Todo, error) {
	todo, _, err := s.ownedTodo(ctx, id)
	return todo, err
}

// Update applies a partial patch: fields present in the patch overwrite
// the stored values, absent fields are left unchanged.
func (s *TodoService) Update(ctx context.Context, id int64, patch models.TodoInput) (*models.Todo, error) {
	todo, _, err := s.ownedTodo(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		todo.Title = *patch.Title
	}
	if patch.Description != nil {
		todo.Description = *patch.Description
	}
	if patch.Icon != nil {
		todo.Icon = *patch.Icon
	}
	if patch.Status != nil {
		if !patch.Status.Valid() {
			return nil, fmt.Errorf("%w: invalid todo status %q", ErrInvalidInput, *patch.Status)
		}
		todo.Status = *patch.Status
	}

	if err := s.store.UpdateTodo(ctx, todo); err != nil {
		return nil, err
	}
	return todo, nil
}

// SetStatus overwrites the todo's status. Any transition is allowed.
func (s *TodoService) SetStatus(ctx context.Context, id int64, status models.TodoStatus) (*models.Todo, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: invalid todo status %q", ErrInvalidInput, status)
	}

	todo, _, err := s.ownedTodo(ctx, id)
	if err != nil {
		return nil, err
	}

	todo.Status = status
	if err := s.store.UpdateTodo(ctx, todo); err != nil {
		return nil, err
	}
	return todo, nil
}

// Start marks a todo as in progress.
func (s *TodoService) Start(ctx context.Context, id int64) (*models.Todo, error) {
	return s.SetStatus(ctx, id, models.StatusInProgress)
}

// Complete marks a todo as completed.
func (s *TodoService) Complete(ctx context.Context, id int64) (*models.Todo, error) {
	return s.SetStatus(ctx, id, models.StatusCompleted)
}

// Reopen returns a todo to the NEW status.
func (s *TodoService) Reopen(ctx context.Context, id int64) (*models.Todo, error) {
	return s.SetStatus(ctx, id, models.StatusNew)
}

// Delete removes a todo owned by the caller.
func (s *TodoService) Delete(ctx context.Context, id int64) error {
	todo, _, err := s.ownedTodo(ctx, id)
	if err != nil {
		return err
	}
	return s.store.DeleteTodo(ctx, todo.ID)
}

// ToggleFavorite flips the todo's favorite flag.
func (s *TodoService) ToggleFavorite(ctx context.Context, id int64) (*models.Todo, error) {
	todo, _, err := s.ownedTodo(ctx, id)
	if err != nil {
		return nil, err
	}

	todo.IsFavorite = !todo.IsFavorite
	if err := s.store.UpdateTodo(ctx, todo); err != nil {
		return nil, err
	}
	return todo, nil
}

// ListFavorites returns the caller's favorite todos.
func (s *TodoService) ListFavorites(ctx context.Context) ([]models.Todo, error) {
	caller, err := s.users.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}

	todos, err := s.store.GetFavoritesByUser(ctx, caller.ID)
	if err != nil {
		return nil, err
	}
	fillUsername(todos, caller.Username)
	return todos, nil
}

// Search returns the caller's todos whose title or description contains
// keyword, case-insensitively. The match is a simple in-memory scan of
// the caller's set; an empty keyword matches nothing.
func (s *TodoService) Search(ctx context.Context, keyword string) ([]models.Todo, error) {
	caller, err := s.users.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}

	keyword = strings.ToLower(strings.TrimSpace(keyword))
	if keyword == "" {
		return []models.Todo{}, nil
	}

	todos, err := s.store.GetTodosByUser(ctx, caller.ID)
	if err != nil {
		return nil, err
	}

	matches := []models.Todo{}
	for _, t := range todos {
		if strings.Contains(strings.ToLower(t.Title), keyword) ||
			(t.Description != "" && strings.Contains(strings.ToLower(t.Description), keyword)) {
			t.Username = caller.Username
			matches = append(matches, t)
		}
	}
	return matches, nil
}

// Statistics counts the caller's todos per status plus favorites.
func (s *TodoService) Statistics(ctx context.Context) (*models.Statistics, error) {
	caller, err := s.users.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}

	todos, err := s.store.GetTodosByUser(ctx, caller.ID)
	if err != nil {
		return nil, err
	}

	stats := &models.Statistics{Total: len(todos)}
	for _, t := range todos {
		switch t.Status {
		case models.StatusNew:
			stats.New++
		case models.StatusInProgress:
			stats.InProgress++
		case models.StatusCompleted:
			stats.Completed++
		}
		if t.IsFavorite {
			stats.Favorites++
		}
	}
	return stats, nil
}

// fillUsername stamps the owner's username onto each todo for responses.
func fillUsername(todos []models.Todo, username string) {
	for i := range todos {
		todos[i].Username = username
	}
}
