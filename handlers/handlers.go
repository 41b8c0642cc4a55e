package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/taskforge/todo-api/middleware"
	"github.com/taskforge/todo-api/service"
)

// Handlers holds the services shared by all route handlers.
type Handlers struct {
	users *service.UserService
	todos *service.TodoService
}

// New is a constructor for the Handlers struct.
func New(users *service.UserService, todos *service.TodoService) *Handlers {
	return &Handlers{users: users, todos: todos}
}

// NewRouter wires all routes. Public routes are registered directly;
// everything else sits behind RequireAuth. The Authenticate middleware
// runs for every request so a valid token always resolves a principal.
func NewRouter(h *Handlers, authn *middleware.Authenticator) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.RequestLogger)
	r.Use(authn.Authenticate)

	r.HandleFunc("/status", h.Status).Methods(http.MethodGet)
	r.HandleFunc("/health", h.Status).Methods(http.MethodGet)
	r.HandleFunc("/register", h.Register).Methods(http.MethodPost)
	r.HandleFunc("/login", h.Login).Methods(http.MethodPost)

	protected := r.PathPrefix("/").Subrouter()
	protected.Use(middleware.RequireAuth)

	protected.HandleFunc("/profile", h.Profile).Methods(http.MethodGet)

	protected.HandleFunc("/todos", h.CreateTodo).Methods(http.MethodPost)
	protected.HandleFunc("/todos", h.ListTodos).Methods(http.MethodGet)
	protected.HandleFunc("/todos/favorites", h.ListFavorites).Methods(http.MethodGet)
	protected.HandleFunc("/todos/search", h.SearchTodos).Methods(http.MethodGet)
	protected.HandleFunc("/todos/statistics", h.Statistics).Methods(http.MethodGet)
	protected.HandleFunc("/todos/{id:[0-9]+}", h.GetTodo).Methods(http.MethodGet)
	protected.HandleFunc("/todos/{id:[0-9]+}", h.UpdateTodo).Methods(http.MethodPut)
	protected.HandleFunc("/todos/{id:[0-9]+}", h.DeleteTodo).Methods(http.MethodDelete)
	protected.HandleFunc("/todos/{id:[0-9]+}/status", h.UpdateStatus).Methods(http.MethodPatch)
	protected.HandleFunc("/todos/{id:[0-9]+}/start", h.StartTodo).Methods(http.MethodPatch)
	protected.HandleFunc("/todos/{id:[0-9]+}/complete", h.CompleteTodo).Methods(http.MethodPatch)
	protected.HandleFunc("/todos/{id:[0-9]+}/reopen", h.ReopenTodo).Methods(http.MethodPatch)
	protected.HandleFunc("/todos/{id:[0-9]+}/favorite", h.ToggleFavorite).Methods(http.MethodPatch)

	return r
}

// respondWithJSON is a helper function to format and send JSON responses.
func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// respondWithError sends a JSON error envelope.
func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

// respondServiceError maps service-layer sentinel errors onto HTTP
// status codes; anything unrecognized is a 500.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		respondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		respondWithError(w, http.StatusBadRequest, "Invalid email or password")
	case errors.Is(err, service.ErrUnauthenticated):
		respondWithError(w, http.StatusUnauthorized, "authentication required")
	case errors.Is(err, service.ErrForbidden):
		respondWithError(w, http.StatusForbidden, "access denied")
	case errors.Is(err, service.ErrNotFound):
		respondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrEmailTaken):
		respondWithError(w, http.StatusConflict, err.Error())
	default:
		log.Printf("internal error: %v", err)
		respondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}

// idParam extracts the numeric {id} route variable.
func idParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
}
