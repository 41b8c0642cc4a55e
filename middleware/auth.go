package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/taskforge/todo-api/auth"
	"github.com/taskforge/todo-api/store"
)

// Authenticator resolves bearer tokens into request principals.
type Authenticator struct {
	tokens *auth.TokenManager
	store  *store.Store
}

// NewAuthenticator returns an Authenticator verifying tokens with tokens
// and resolving subjects against st.
func NewAuthenticator(tokens *auth.TokenManager, st *store.Store) *Authenticator {
	return &Authenticator{tokens: tokens, store: st}
}

// Authenticate extracts the Authorization bearer token, verifies it, and
// binds the matching user to the request context. On any failure the
// request proceeds without a principal; rejection is left to RequireAuth
// so public routes stay reachable.
func (a *Authenticator) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if strings.HasPrefix(header, "Bearer ") {
			tokenString := strings.TrimPrefix(header, "Bearer ")

			if subject, err := a.tokens.Subject(tokenString); err == nil {
				user, err := a.store.GetUserByEmail(r.Context(), subject)
				if err == nil && a.tokens.Validate(tokenString, user.Email) {
					r = r.WithContext(auth.WithUser(r.Context(), user))
				}
			}
		}

		next.ServeHTTP(w, r)
	})
}

// RequireAuth rejects requests that carry no resolved principal.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.UserFromContext(r.Context()); !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "authentication required"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
