package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskforge/todo-api/auth"
	"github.com/taskforge/todo-api/handlers"
	"github.com/taskforge/todo-api/middleware"
	"github.com/taskforge/todo-api/models"
	"github.com/taskforge/todo-api/service"
	"github.com/taskforge/todo-api/testutil"
)

type testAPI struct {
	router http.Handler
	tokens *auth.TokenManager
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	st := testutil.NewTestStore(t)
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	users := service.NewUserService(st, tokens)
	todos := service.NewTodoService(st, users)

	h := handlers.New(users, todos)
	authn := middleware.NewAuthenticator(tokens, st)

	return &testAPI{router: handlers.NewRouter(h, authn), tokens: tokens}
}

func (a *testAPI) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func (a *testAPI) register(t *testing.T, username, email, password string) {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/register", "", models.RegisterRequest{
		Username: username, Email: email, Password: password,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func (a *testAPI) login(t *testing.T, email, password string) string {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/login", "", models.LoginRequest{Email: email, Password: password})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[map[string]json.RawMessage](t, rec)
	var token string
	require.NoError(t, json.Unmarshal(resp["token"], &token))
	return token
}

func TestHealthEndpoints(t *testing.T) {
	api := newTestAPI(t)

	for _, path := range []string{"/status", "/health"} {
		rec := api.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, map[string]string{"status": "ok"}, decode[map[string]string](t, rec))
	}
}

func TestRegisterAndLogin(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/register", "", models.RegisterRequest{
		Username: "alice", Email: "a@x.com", Password: "hunter2",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	user := decode[map[string]any](t, rec)
	assert.Equal(t, "a@x.com", user["email"])
	assert.Equal(t, true, user["isActive"])
	// The hash must never be echoed back under any key.
	assert.NotContains(t, rec.Body.String(), "hunter2")
	assert.NotContains(t, rec.Body.String(), "password")

	token := api.login(t, "a@x.com", "hunter2")
	subject, err := api.tokens.Subject(token)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", subject)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	api := newTestAPI(t)
	api.register(t, "alice", "a@x.com", "hunter2")

	rec := api.do(t, http.MethodPost, "/register", "", models.RegisterRequest{
		Username: "clone", Email: "a@x.com", Password: "other",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRegisterBadPayload(t *testing.T) {
	api := newTestAPI(t)

	req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginFailureIsGeneric(t *testing.T) {
	api := newTestAPI(t)
	api.register(t, "alice", "a@x.com", "hunter2")

	wrongPassword := api.do(t, http.MethodPost, "/login", "", models.LoginRequest{Email: "a@x.com", Password: "wrong"})
	unknownEmail := api.do(t, http.MethodPost, "/login", "", models.LoginRequest{Email: "nobody@x.com", Password: "hunter2"})

	assert.Equal(t, http.StatusBadRequest, wrongPassword.Code)
	assert.Equal(t, http.StatusBadRequest, unknownEmail.Code)
	// Same body for both: no user-enumeration signal.
	assert.JSONEq(t, `{"error": "Invalid email or password"}`, wrongPassword.Body.String())
	assert.Equal(t, wrongPassword.Body.String(), unknownEmail.Body.String())
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	api := newTestAPI(t)

	paths := []struct {
		method, path string
	}{
		{http.MethodGet, "/profile"},
		{http.MethodGet, "/todos"},
		{http.MethodPost, "/todos"},
		{http.MethodGet, "/todos/1"},
		{http.MethodGet, "/todos/statistics"},
	}
	for _, p := range paths {
		rec := api.do(t, p.method, p.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", p.method, p.path)
	}

	// A garbage token is the same as no token.
	rec := api.do(t, http.MethodGet, "/todos", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProfile(t *testing.T) {
	api := newTestAPI(t)
	api.register(t, "alice", "a@x.com", "hunter2")
	token := api.login(t, "a@x.com", "hunter2")

	rec := api.do(t, http.MethodGet, "/profile", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	user := decode[map[string]any](t, rec)
	assert.Equal(t, "alice", user["username"])
	assert.Equal(t, "a@x.com", user["email"])
}

func TestExpiredTokenRejected(t *testing.T) {
	api := newTestAPI(t)
	api.register(t, "alice", "a@x.com", "hunter2")

	expired := auth.NewTokenManager("test-secret", -time.Minute)
	token, err := expired.Issue("a@x.com")
	require.NoError(t, err)

	rec := api.do(t, http.MethodGet, "/todos", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestTodoLifecycle(t *testing.T) {
	api := newTestAPI(t)
	api.register(t, "alice", "a@x.com", "hunter2")
	token := api.login(t, "a@x.com", "hunter2")

	// Create: defaults NEW, not favorite, owner set.
	rec := api.do(t, http.MethodPost, "/todos", token, map[string]string{
		"title": "buy milk", "description": "two liters",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[models.Todo](t, rec)
	assert.Equal(t, models.StatusNew, created.Status)
	assert.False(t, created.IsFavorite)
	assert.Equal(t, "alice", created.Username)

	base := fmt.Sprintf("/todos/%d", created.ID)

	// Partial update leaves unset fields alone.
	rec = api.do(t, http.MethodPut, base, token, map[string]string{"description": "skimmed"})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode[models.Todo](t, rec)
	assert.Equal(t, "buy milk", updated.Title)
	assert.Equal(t, "skimmed", updated.Description)

	// Status transitions.
	rec = api.do(t, http.MethodPatch, base+"/start", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.StatusInProgress, decode[models.Todo](t, rec).Status)

	rec = api.do(t, http.MethodPatch, base+"/complete", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.StatusCompleted, decode[models.Todo](t, rec).Status)

	rec = api.do(t, http.MethodPatch, base+"/reopen", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.StatusNew, decode[models.Todo](t, rec).Status)

	rec = api.do(t, http.MethodPatch, base+"/status", token, models.StatusRequest{Status: "IN_PROGRESS"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.StatusInProgress, decode[models.Todo](t, rec).Status)

	rec = api.do(t, http.MethodPatch, base+"/status", token, models.StatusRequest{Status: "BOGUS"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Favorite toggle is an idempotent pair.
	rec = api.do(t, http.MethodPatch, base+"/favorite", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[models.Todo](t, rec).IsFavorite)

	rec = api.do(t, http.MethodPatch, base+"/favorite", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[models.Todo](t, rec).IsFavorite)

	// Delete, then the id is gone.
	rec = api.do(t, http.MethodDelete, base, token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = api.do(t, http.MethodGet, base, token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListFilterByStatus(t *testing.T) {
	api := newTestAPI(t)
	api.register(t, "alice", "a@x.com", "hunter2")
	token := api.login(t, "a@x.com", "hunter2")

	api.do(t, http.MethodPost, "/todos", token, map[string]string{"title": "one"})
	rec := api.do(t, http.MethodPost, "/todos", token, map[string]string{"title": "two"})
	created := decode[models.Todo](t, rec)
	api.do(t, http.MethodPatch, fmt.Sprintf("/todos/%d/complete", created.ID), token, nil)

	rec = api.do(t, http.MethodGet, "/todos?status=COMPLETED", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]models.Todo](t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, "two", list[0].Title)

	rec = api.do(t, http.MethodGet, "/todos?status=BOGUS", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCrossUserAccessDenied(t *testing.T) {
	api := newTestAPI(t)
	api.register(t, "alice", "a@x.com", "hunter2")
	api.register(t, "bob", "b@x.com", "hunter2")
	aliceToken := api.login(t, "a@x.com", "hunter2")
	bobToken := api.login(t, "b@x.com", "hunter2")

	rec := api.do(t, http.MethodPost, "/todos", aliceToken, map[string]string{"title": "alice's secret"})
	require.Equal(t, http.StatusCreated, rec.Code)
	todo := decode[models.Todo](t, rec)
	base := fmt.Sprintf("/todos/%d", todo.ID)

	attempts := []struct {
		method, path string
	}{
		{http.MethodGet, base},
		{http.MethodPut, base},
		{http.MethodDelete, base},
		{http.MethodPatch, base + "/favorite"},
		{http.MethodPatch, base + "/complete"},
	}
	for _, at := range attempts {
		rec := api.do(t, http.MethodGet, base, bobToken, nil)
		require.NotEqual(t, http.StatusOK, rec.Code)
		rec = api.do(t, at.method, at.path, bobToken, map[string]string{"title": "x"})
		assert.Equal(t, http.StatusForbidden, rec.Code, "%s %s", at.method, at.path)
	}

	// Bob's list stays empty.
	rec = api.do(t, http.MethodGet, "/todos", bobToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]models.Todo](t, rec))
}

func TestStatisticsScenario(t *testing.T) {
	api := newTestAPI(t)
	api.register(t, "alice", "a@x.com", "hunter2")
	token := api.login(t, "a@x.com", "hunter2")

	for _, title := range []string{"fresh", "ongoing", "finished"} {
		rec := api.do(t, http.MethodPost, "/todos", token, map[string]string{"title": title})
		require.Equal(t, http.StatusCreated, rec.Code)
	}
	rec := api.do(t, http.MethodGet, "/todos", token, nil)
	list := decode[[]models.Todo](t, rec)
	require.Len(t, list, 3)

	api.do(t, http.MethodPatch, fmt.Sprintf("/todos/%d/start", list[1].ID), token, nil)
	api.do(t, http.MethodPatch, fmt.Sprintf("/todos/%d/complete", list[2].ID), token, nil)

	rec = api.do(t, http.MethodGet, "/todos/statistics", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[models.Statistics](t, rec)
	assert.Equal(t, models.Statistics{New: 1, InProgress: 1, Completed: 1, Total: 3, Favorites: 0}, stats)
}

func TestFavoritesAndSearch(t *testing.T) {
	api := newTestAPI(t)
	api.register(t, "alice", "a@x.com", "hunter2")
	token := api.login(t, "a@x.com", "hunter2")

	rec := api.do(t, http.MethodPost, "/todos", token, map[string]string{"title": "Buy Milk"})
	starred := decode[models.Todo](t, rec)
	api.do(t, http.MethodPost, "/todos", token, map[string]string{"title": "walk the dog"})
	api.do(t, http.MethodPatch, fmt.Sprintf("/todos/%d/favorite", starred.ID), token, nil)

	rec = api.do(t, http.MethodGet, "/todos/favorites", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	favorites := decode[[]models.Todo](t, rec)
	require.Len(t, favorites, 1)
	assert.Equal(t, starred.ID, favorites[0].ID)

	rec = api.do(t, http.MethodGet, "/todos/search?keyword=milk", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	matches := decode[[]models.Todo](t, rec)
	require.Len(t, matches, 1)
	assert.Equal(t, "Buy Milk", matches[0].Title)

	rec = api.do(t, http.MethodGet, "/todos/search?keyword=zebra", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]models.Todo](t, rec))
}
