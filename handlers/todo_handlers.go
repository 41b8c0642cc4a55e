package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/taskforge/todo-api/models"
)

// CreateTodo creates a new todo owned by the caller.
func (h *Handlers) CreateTodo(w http.ResponseWriter, r *http.Request) {
	var input models.TodoInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	todo, err := h.todos.Create(r.Context(), input)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, todo)
}

// ListTodos returns the caller's todos, optionally filtered by
// ?status=NEW|IN_PROGRESS|COMPLETED.
func (h *Handlers) ListTodos(w http.ResponseWriter, r *http.Request) {
	var todos []models.Todo
	var err error

	if raw := r.URL.Query().Get("status"); raw != "" {
		status, perr := models.ParseTodoStatus(raw)
		if perr != nil {
			respondWithError(w, http.StatusBadRequest, perr.Error())
			return
		}
		todos, err = h.todos.ListByStatus(r.Context(), status)
	} else {
		todos, err = h.todos.List(r.Context())
	}
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if todos == nil {
		todos = []models.Todo{}
	}
	respondWithJSON(w, http.StatusOK, todos)
}

// GetTodo returns a single todo by id.
func (h *Handlers) GetTodo(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid todo ID")
		return
	}

	todo, err := h.todos.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, todo)
}

// UpdateTodo applies a partial update to a todo.
func (h *Handlers) UpdateTodo(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid todo ID")
		return
	}

	var patch models.TodoInput
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	todo, err := h.todos.Update(r.Context(), id, patch)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, todo)
}

// UpdateStatus overwrites a todo's status from the request body.
func (h *Handlers) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid todo ID")
		return
	}

	var req models.StatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	status, err := models.ParseTodoStatus(req.Status)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	todo, err := h.todos.SetStatus(r.Context(), id, status)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, todo)
}

// StartTodo moves a todo to IN_PROGRESS.
func (h *Handlers) StartTodo(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.todos.Start)
}

// CompleteTodo moves a todo to COMPLETED.
func (h *Handlers) CompleteTodo(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.todos.Complete)
}

// ReopenTodo moves a todo back to NEW.
func (h *Handlers) ReopenTodo(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.todos.Reopen)
}

// DeleteTodo removes a todo.
func (h *Handlers) DeleteTodo(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid todo ID")
		return
	}

	if err := h.todos.Delete(r.Context(), id); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ToggleFavorite flips a todo's favorite flag.
func (h *Handlers) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.todos.ToggleFavorite)
}

// ListFavorites returns the caller's favorite todos.
func (h *Handlers) ListFavorites(w http.ResponseWriter, r *http.Request) {
	todos, err := h.todos.ListFavorites(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if todos == nil {
		todos = []models.Todo{}
	}
	respondWithJSON(w, http.StatusOK, todos)
}

// SearchTodos returns the caller's todos matching ?keyword=.
func (h *Handlers) SearchTodos(w http.ResponseWriter, r *http.Request) {
	todos, err := h.todos.Search(r.Context(), r.URL.Query().Get("keyword"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, todos)
}

// Statistics returns per-status counts for the caller's todos.
func (h *Handlers) Statistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.todos.Statistics(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, stats)
}

// transition runs an id-addressed todo mutation and writes the result.
func (h *Handlers) transition(w http.ResponseWriter, r *http.Request, op func(context.Context, int64) (*models.Todo, error)) {
	id, err := idParam(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid todo ID")
		return
	}

	todo, err := op(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, todo)
}
