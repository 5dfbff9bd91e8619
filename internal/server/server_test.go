package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ByteBlast1/KanFlow/internal/config"
	"github.com/ByteBlast1/KanFlow/internal/domain"
	"github.com/ByteBlast1/KanFlow/internal/persistence"
	"github.com/ByteBlast1/KanFlow/internal/repository"
	"github.com/ByteBlast1/KanFlow/internal/seed"
	"github.com/ByteBlast1/KanFlow/internal/service"
)

type stubHealth map[string]string

func (h stubHealth) Health() map[string]string { return h }

func testConfig() *config.Config {
	return &config.Config{Port: 8080, Env: "test", SessionTTL: 7 * 24 * time.Hour}
}

func newTestHandler(t *testing.T, health HealthChecker) http.Handler {
	t.Helper()
	ctx := context.Background()
	l, _ := test.NewNullLogger()
	store := repository.NewMemoryStore()
	snaps := persistence.NewAdapter(store, l, time.Second)
	keys := persistence.Keys{BoardPrefix: "kanban_board_", Dashboard: "kanban_boards"}
	data := seed.MustLoad()

	dash := service.NewDashboardStore(snaps, keys.Dashboard, data)
	dash.Subscribe(service.NewDashboardPersister(snaps, keys.Dashboard))
	dash.Load(ctx)

	cfg := testConfig()
	auth := service.NewAuthService(repository.NewMemoryUserRepository(), service.NewSessionStore(cfg.SessionTTL), bcrypt.MinCost)
	require.NoError(t, service.SeedUsers(ctx, auth, data.Users()))

	if health == nil {
		health = NewStoreHealth(config.BackendMemory, store)
	}
	srv := NewServer(cfg, service.NewBoardService(snaps, keys, data), service.NewDashboardService(dash), auth, health)
	return srv.Handler
}

func do(t *testing.T, h http.Handler, method, path, body string, mutate ...func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	for _, m := range mutate {
		m(req)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func withClient(id string) func(*http.Request) {
	return func(r *http.Request) { r.Header.Set(clientIDHeader, id) }
}

func withCookie(c *http.Cookie) func(*http.Request) {
	return func(r *http.Request) { r.AddCookie(c) }
}

func TestHelloAndHealth(t *testing.T) {
	h := newTestHandler(t, nil)

	rec := do(t, h, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "KanFlow")

	rec = do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	stats := decode[map[string]string](t, rec)
	assert.Equal(t, "up", stats["status"])
	assert.Equal(t, "memory", stats["backend"])

	down := newTestHandler(t, stubHealth{"status": "down"})
	rec = do(t, down, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestHandler(t, nil)
	do(t, h, http.MethodGet, "/api/boards/1", "")

	rec := do(t, h, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "kanflow_http_requests_total")
	assert.Contains(t, rec.Body.String(), `path="/api/boards/{id}`)
}

func TestRequestDecoding(t *testing.T) {
	h := newTestHandler(t, nil)

	tests := []struct {
		name string
		body string
		want string
	}{
		{"empty body", "", "must not be empty"},
		{"bad json", `{"title":`, "badly-formed JSON"},
		{"unknown field", `{"title":"x","owner":"me"}`, "unknown field"},
		{"wrong type", `{"title":42}`, `invalid value for the "title" field`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/api/dashboard/boards", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, decode[map[string]string](t, rec)["error"], tt.want)
		})
	}

	rec := do(t, h, http.MethodPost, "/api/boards/1/tasks/task-1/move", `{"from":"col-1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, `Field "to" is required`, decode[map[string]string](t, rec)["error"])
}

func TestAuthFlow(t *testing.T) {
	h := newTestHandler(t, nil)

	rec := do(t, h, http.MethodPost, "/api/auth/register", `{"name":"Jane","email":"jane@example.com","password":"secret"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret")
	assert.NotContains(t, rec.Body.String(), "password")

	rec = do(t, h, http.MethodPost, "/api/auth/register", `{"name":"Jane","email":"jane@example.com","password":"other"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/auth/register", `{"name":"Jane","email":"jane2@example.com"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Name, email, and password are required", decode[map[string]string](t, rec)["error"])

	rec = do(t, h, http.MethodPost, "/api/auth/login", `{"email":"john@example.com","password":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Email and password are required", decode[map[string]string](t, rec)["error"])

	rec = do(t, h, http.MethodPost, "/api/auth/login", `{"email":"john@example.com","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/auth/login", `{"email":"john@example.com","password":"password123"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "John Doe", decode[domain.User](t, rec).Name)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	sess := cookies[0]
	assert.Equal(t, sessionCookie, sess.Name)
	assert.True(t, sess.HttpOnly)
	assert.False(t, sess.Secure)
	assert.Equal(t, 7*24*60*60, sess.MaxAge)

	rec = do(t, h, http.MethodGet, "/api/auth/session", "", withCookie(sess))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "john@example.com", decode[domain.User](t, rec).Email)

	rec = do(t, h, http.MethodPost, "/api/auth/logout", "", withCookie(sess))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode[map[string]bool](t, rec)["success"])
	cleared := rec.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.Negative(t, cleared[0].MaxAge)

	rec = do(t, h, http.MethodGet, "/api/auth/session", "", withCookie(sess))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/auth/session", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDashboardRoutes(t *testing.T) {
	h := newTestHandler(t, nil)

	rec := do(t, h, http.MethodGet, "/api/dashboard/boards", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]domain.BoardSummary](t, rec), 3)

	rec = do(t, h, http.MethodGet, "/api/dashboard/boards?q=redesign", "")
	found := decode[[]domain.BoardSummary](t, rec)
	require.Len(t, found, 1)
	assert.Equal(t, "3", found[0].ID)

	rec = do(t, h, http.MethodPost, "/api/dashboard/boards", `{"title":"  Hiring  ","description":"Q2"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[domain.BoardSummary](t, rec)
	assert.Equal(t, "Hiring", created.Title)
	assert.Equal(t, domain.StatusPlanning, created.Status)
	assert.Equal(t, domain.SummaryPriorityMedium, created.Priority)

	rec = do(t, h, http.MethodPost, "/api/dashboard/boards", `{"title":"   "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPut, "/api/dashboard/boards/"+created.ID, `{"title":"Hiring 2024","priority":"High"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.SummaryPriorityHigh, decode[domain.BoardSummary](t, rec).Priority)

	rec = do(t, h, http.MethodPut, "/api/dashboard/boards/404", `{"title":"Nope"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodDelete, "/api/dashboard/boards/"+created.ID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/dashboard/boards", "")
	assert.Len(t, decode[[]domain.BoardSummary](t, rec), 3)
}

func TestBoardRoutes(t *testing.T) {
	h := newTestHandler(t, nil)

	rec := do(t, h, http.MethodGet, "/api/boards/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	view := decode[service.BoardView](t, rec)
	assert.Equal(t, "Product Development", view.Title)
	assert.Len(t, view.Columns, 4)

	rec = do(t, h, http.MethodPost, "/api/boards/1/columns", `{"title":"Blocked"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	col := decode[domain.Column](t, rec)
	assert.True(t, strings.HasPrefix(col.ID, "col-"))

	rec = do(t, h, http.MethodPost, "/api/boards/1/columns/"+col.ID+"/tasks", `{"title":"Vendor reply","priority":"high","dueDate":"2024-03-01","assignee":"Kim"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	task := decode[domain.Task](t, rec)
	assert.Equal(t, domain.PriorityHigh, task.Priority)

	rec = do(t, h, http.MethodPost, "/api/boards/1/columns/"+col.ID+"/tasks", `{"title":"Bad date","dueDate":"soon"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/boards/1/columns/col-missing/tasks", `{"title":"Lost"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodPut, "/api/boards/1/tasks/"+task.ID, `{"title":"Vendor replied","priority":"low"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Vendor replied", decode[domain.Task](t, rec).Title)

	rec = do(t, h, http.MethodPut, "/api/boards/1/tasks/task-404", `{"title":"Ghost"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/boards/1/tasks/"+task.ID+"/move", `{"from":"`+col.ID+`","to":"col-4"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	view = decode[service.BoardView](t, rec)
	assert.Equal(t, task.ID, view.Columns[3].Tasks[len(view.Columns[3].Tasks)-1].ID)

	rec = do(t, h, http.MethodDelete, "/api/boards/1/columns/col-4/tasks/"+task.ID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, h, http.MethodDelete, "/api/boards/1/columns/"+col.ID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, h, http.MethodPatch, "/api/boards/1", `{"title":"Product","description":"Roadmap"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	view = decode[service.BoardView](t, rec)
	assert.Equal(t, "Product", view.Title)
	assert.Len(t, view.Columns, 4)

	rec = do(t, h, http.MethodPatch, "/api/boards/1", `{"title":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchAndDragArePerClient(t *testing.T) {
	h := newTestHandler(t, nil)

	rec := do(t, h, http.MethodPut, "/api/boards/1/search", `{"query":"homepage"}`, withClient("alice"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[service.BoardView](t, rec).Columns[0].Tasks)

	rec = do(t, h, http.MethodGet, "/api/boards/1", "", withClient("alice"))
	view := decode[service.BoardView](t, rec)
	assert.Equal(t, "homepage", view.Query)
	assert.Len(t, view.Columns[1].Tasks, 1)

	rec = do(t, h, http.MethodGet, "/api/boards/1", "", withClient("bob"))
	assert.Len(t, decode[service.BoardView](t, rec).Columns[0].Tasks, 2)

	rec = do(t, h, http.MethodGet, "/api/boards/1?q=", "", withClient("alice"))
	assert.Len(t, decode[service.BoardView](t, rec).Columns[0].Tasks, 2, "explicit q overrides the stored query")

	rec = do(t, h, http.MethodPost, "/api/boards/1/drag/start", `{"taskId":"task-1","columnId":"col-1"}`, withClient("alice"))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/boards/1/drag/drop", `{"columnId":"col-3"}`, withClient("bob"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[service.DropResult](t, rec).Moved)

	rec = do(t, h, http.MethodPost, "/api/boards/1/drag/drop", `{"columnId":"col-3"}`, withClient("alice"))
	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[service.DropResult](t, rec)
	assert.True(t, res.Moved)

	rec = do(t, h, http.MethodGet, "/api/boards/1?q=", "", withClient("alice"))
	view = decode[service.BoardView](t, rec)
	require.Len(t, view.Columns[2].Tasks, 1)
	assert.Equal(t, "task-1", view.Columns[2].Tasks[0].ID)

	rec = do(t, h, http.MethodPost, "/api/boards/1/drag/start", `{"taskId":"task-2"}`, withClient("alice"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestClientID(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Equal(t, anonymousClient, clientID(r))

	r.Header.Set(clientIDHeader, "tab-7")
	assert.Equal(t, "tab-7", clientID(r))

	r.AddCookie(&http.Cookie{Name: sessionCookie, Value: "sess-1"})
	assert.Equal(t, "sess-1", clientID(r))
}
