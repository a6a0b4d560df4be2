package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	nethttp "net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasktracker/internal/app"
	"tasktracker/internal/bootstrap"
	"tasktracker/internal/config"
	"tasktracker/internal/logging"
	"tasktracker/internal/model"
	"tasktracker/internal/repository"
	"tasktracker/internal/transport/http/response"
)

type envelope struct {
	Code    int              `json:"code"`
	Message string           `json:"message"`
	Data    json.RawMessage  `json:"data"`
	Errors  []app.FieldError `json:"errors"`
}

type authData struct {
	Token string            `json:"token"`
	User  model.UserSummary `json:"user"`
}

type testServer struct {
	t      *testing.T
	router *gin.Engine
	redis  *miniredis.Miniredis
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	mr := miniredis.RunT(t)

	cfg := config.Default()
	cfg.App.GinMode = gin.TestMode
	cfg.Store.Driver = config.StoreDriverMemory
	cfg.Redis.Enabled = true
	cfg.Redis.Addr = mr.Addr()

	a, err := bootstrap.NewWithConfig(context.Background(), cfg, logging.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	return &testServer{t: t, router: NewRouter(a), redis: mr}
}

func (s *testServer) do(method, path, token string, body any) (int, envelope) {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var env envelope
	require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec.Code, env
}

func (s *testServer) register(username, email string) authData {
	s.t.Helper()
	status, env := s.do(nethttp.MethodPost, "/api/v1/auth/register", "", gin.H{
		"username": username,
		"email":    email,
		"password": "secret123",
	})
	require.Equal(s.t, nethttp.StatusCreated, status, env.Message)
	var data authData
	require.NoError(s.t, json.Unmarshal(env.Data, &data))
	return data
}

func (s *testServer) createTask(token string, body gin.H) model.Task {
	s.t.Helper()
	status, env := s.do(nethttp.MethodPost, "/api/v1/tasks", token, body)
	require.Equal(s.t, nethttp.StatusCreated, status, env.Message)
	return decode[model.Task](s.t, env)
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

func TestRegister_TokenResolvesToNewUser(t *testing.T) {
	s := newTestServer(t)
	reg := s.register("alice", "Alice@Example.com")
	assert.NotEmpty(t, reg.Token)
	assert.Equal(t, "alice@example.com", reg.User.Email)

	status, env := s.do(nethttp.MethodGet, "/api/v1/auth/me", reg.Token, nil)
	require.Equal(t, nethttp.StatusOK, status)
	me := decode[model.UserSummary](t, env)
	assert.Equal(t, reg.User, me)
}

func TestRegister_ValidationAndConflicts(t *testing.T) {
	s := newTestServer(t)

	status, env := s.do(nethttp.MethodPost, "/api/v1/auth/register", "", gin.H{
		"username": "a!",
		"email":    "nope",
		"password": "123",
	})
	assert.Equal(t, nethttp.StatusBadRequest, status)
	assert.Equal(t, response.CodeValidationFailed, env.Code)
	assert.Equal(t, "Validation failed", env.Message)
	fields := make([]string, 0, len(env.Errors))
	for _, f := range env.Errors {
		fields = append(fields, f.Field)
	}
	assert.Equal(t, []string{"username", "email", "password"}, fields)

	s.register("alice", "alice@example.com")
	s.register("bob", "bob@example.com")

	status, env = s.do(nethttp.MethodPost, "/api/v1/auth/register", "", gin.H{
		"username": "alice", "email": "carol@example.com", "password": "secret123",
	})
	assert.Equal(t, nethttp.StatusBadRequest, status)
	assert.Equal(t, "Username already taken", env.Message)

	status, env = s.do(nethttp.MethodPost, "/api/v1/auth/register", "", gin.H{
		"username": "alice", "email": "bob@example.com", "password": "secret123",
	})
	assert.Equal(t, nethttp.StatusBadRequest, status)
	assert.Equal(t, response.CodeEmailExists, env.Code)
	assert.Equal(t, "Email already registered", env.Message)
}

func TestRegister_MalformedBody(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(nethttp.MethodPost, "/api/v1/auth/register", bytes.NewBufferString("{"))
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, nethttp.StatusBadRequest, rec.Code)
}

func TestLogin_IdenticalFailures(t *testing.T) {
	s := newTestServer(t)
	s.register("alice", "alice@example.com")

	wrongStatus, wrong := s.do(nethttp.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email": "alice@example.com", "password": "wrong-password",
	})
	missingStatus, missing := s.do(nethttp.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email": "nobody@example.com", "password": "secret123",
	})
	assert.Equal(t, nethttp.StatusUnauthorized, wrongStatus)
	assert.Equal(t, wrongStatus, missingStatus)
	assert.Equal(t, wrong, missing)
	assert.Equal(t, "Invalid email or password", wrong.Message)

	status, env := s.do(nethttp.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email": " ALICE@example.com ", "password": "secret123",
	})
	require.Equal(t, nethttp.StatusOK, status)
	assert.NotEmpty(t, decode[authData](t, env).Token)

	status, env = s.do(nethttp.MethodPost, "/api/v1/auth/login", "", gin.H{"email": "bad"})
	assert.Equal(t, nethttp.StatusBadRequest, status)
	assert.Len(t, env.Errors, 2)
}

func TestSessionGuard(t *testing.T) {
	s := newTestServer(t)

	cases := []struct {
		name   string
		header string
		msg    string
	}{
		{"missing header", "", "missing authorization header"},
		{"wrong scheme", "Basic abc", "invalid authorization scheme"},
		{"garbage token", "Bearer not-a-jwt", "invalid or expired token"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(nethttp.MethodGet, "/api/v1/tasks", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			s.router.ServeHTTP(rec, req)

			assert.Equal(t, nethttp.StatusUnauthorized, rec.Code)
			var env envelope
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
			assert.Equal(t, tc.msg, env.Message)
		})
	}
}

func TestUpdateProfile(t *testing.T) {
	s := newTestServer(t)
	alice := s.register("alice", "alice@example.com")
	s.register("bob", "bob@example.com")

	status, env := s.do(nethttp.MethodPut, "/api/v1/auth/profile", alice.Token, gin.H{"username": "alice_w"})
	require.Equal(t, nethttp.StatusOK, status)
	updated := decode[model.UserSummary](t, env)
	assert.Equal(t, "alice_w", updated.Username)
	assert.Equal(t, "alice@example.com", updated.Email)

	status, env = s.do(nethttp.MethodPut, "/api/v1/auth/profile", alice.Token, gin.H{"email": "bob@example.com"})
	assert.Equal(t, nethttp.StatusBadRequest, status)
	assert.Equal(t, "Email already registered", env.Message)
}

func TestLogout_RevokesToken(t *testing.T) {
	s := newTestServer(t)
	alice := s.register("alice", "alice@example.com")

	status, env := s.do(nethttp.MethodPost, "/api/v1/auth/logout", alice.Token, nil)
	require.Equal(t, nethttp.StatusOK, status, env.Message)

	status, _ = s.do(nethttp.MethodGet, "/api/v1/auth/me", alice.Token, nil)
	assert.Equal(t, nethttp.StatusUnauthorized, status)

	status, env = s.do(nethttp.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email": "alice@example.com", "password": "secret123",
	})
	require.Equal(t, nethttp.StatusOK, status)
	fresh := decode[authData](t, env)
	status, _ = s.do(nethttp.MethodGet, "/api/v1/auth/me", fresh.Token, nil)
	assert.Equal(t, nethttp.StatusOK, status)
}

func TestLogout_RedisDownFailsClosed(t *testing.T) {
	s := newTestServer(t)
	alice := s.register("alice", "alice@example.com")
	s.redis.Close()

	status, env := s.do(nethttp.MethodGet, "/api/v1/auth/me", alice.Token, nil)
	assert.Equal(t, nethttp.StatusInternalServerError, status)
	assert.Equal(t, response.CodeInternalServer, env.Code)
}

func TestTask_RoundTrip(t *testing.T) {
	s := newTestServer(t)
	alice := s.register("alice", "alice@example.com")

	status, env := s.do(nethttp.MethodPost, "/api/v1/tasks", alice.Token, gin.H{
		"title": "Buy milk", "description": "2%, one gallon",
	})
	require.Equal(t, nethttp.StatusCreated, status)
	assert.Equal(t, "Task created successfully", env.Message)
	created := decode[model.Task](t, env)
	assert.Equal(t, model.TaskStatusPending, created.Status)
	assert.Equal(t, alice.User.ID, created.OwnerID)

	status, env = s.do(nethttp.MethodGet, "/api/v1/tasks/"+created.ID, alice.Token, nil)
	require.Equal(t, nethttp.StatusOK, status)
	got := decode[model.Task](t, env)
	assert.Equal(t, "Buy milk", got.Title)
	assert.Equal(t, "2%, one gallon", got.Description)
	assert.Equal(t, model.TaskStatusPending, got.Status)
}

func TestTask_CreateValidation(t *testing.T) {
	s := newTestServer(t)
	alice := s.register("alice", "alice@example.com")

	status, env := s.do(nethttp.MethodPost, "/api/v1/tasks", alice.Token, gin.H{
		"title": "", "description": "x", "status": "done",
	})
	assert.Equal(t, nethttp.StatusBadRequest, status)
	require.Len(t, env.Errors, 2)
	assert.Equal(t, "title", env.Errors[0].Field)
	assert.Equal(t, "status", env.Errors[1].Field)
}

func TestTask_PartialUpdate(t *testing.T) {
	s := newTestServer(t)
	alice := s.register("alice", "alice@example.com")
	task := s.createTask(alice.Token, gin.H{"title": "Buy milk", "description": "2%, one gallon"})

	status, env := s.do(nethttp.MethodPut, "/api/v1/tasks/"+task.ID, alice.Token, gin.H{"status": "completed"})
	require.Equal(t, nethttp.StatusOK, status)
	updated := decode[model.Task](t, env)
	assert.Equal(t, model.TaskStatusCompleted, updated.Status)
	assert.Equal(t, "Buy milk", updated.Title)
	assert.Equal(t, "2%, one gallon", updated.Description)

	status, env = s.do(nethttp.MethodPut, "/api/v1/tasks/"+task.ID, alice.Token, gin.H{"description": ""})
	assert.Equal(t, nethttp.StatusBadRequest, status)
	assert.Equal(t, "Description cannot be empty", env.Errors[0].Message)
}

func TestTask_OwnerIsolation(t *testing.T) {
	s := newTestServer(t)
	alice := s.register("alice", "alice@example.com")
	bob := s.register("bob", "bob@example.com")
	task := s.createTask(alice.Token, gin.H{"title": "secret plan", "description": "alice only"})
	path := "/api/v1/tasks/" + task.ID

	status, env := s.do(nethttp.MethodGet, path, bob.Token, nil)
	assert.Equal(t, nethttp.StatusNotFound, status)
	assert.Equal(t, "Task not found", env.Message)
	assert.NotContains(t, string(env.Data), "secret plan")

	status, _ = s.do(nethttp.MethodPut, path, bob.Token, gin.H{"title": "pwned"})
	assert.Equal(t, nethttp.StatusNotFound, status)

	status, _ = s.do(nethttp.MethodDelete, path, bob.Token, nil)
	assert.Equal(t, nethttp.StatusNotFound, status)

	status, env = s.do(nethttp.MethodGet, "/api/v1/tasks", bob.Token, nil)
	require.Equal(t, nethttp.StatusOK, status)
	assert.Empty(t, decode[[]model.Task](t, env))

	status, env = s.do(nethttp.MethodGet, path, alice.Token, nil)
	require.Equal(t, nethttp.StatusOK, status)
	assert.Equal(t, "secret plan", decode[model.Task](t, env).Title)
}

func TestTask_MalformedID(t *testing.T) {
	s := newTestServer(t)
	alice := s.register("alice", "alice@example.com")

	for _, method := range []string{nethttp.MethodGet, nethttp.MethodPut, nethttp.MethodDelete} {
		status, env := s.do(method, "/api/v1/tasks/not-an-id", alice.Token, gin.H{"status": "completed"})
		assert.Equal(t, nethttp.StatusBadRequest, status, method)
		assert.Equal(t, response.CodeInvalidTaskID, env.Code, method)
		assert.Equal(t, "Invalid task ID", env.Message, method)
	}
}

func TestTask_UpdateChecksIDBeforeBody(t *testing.T) {
	s := newTestServer(t)
	alice := s.register("alice", "alice@example.com")

	status, env := s.do(nethttp.MethodPut, "/api/v1/tasks/not-an-id", alice.Token, "not an object")
	assert.Equal(t, nethttp.StatusBadRequest, status)
	assert.Equal(t, response.CodeInvalidTaskID, env.Code)

	task := s.createTask(alice.Token, gin.H{"title": "a", "description": "b"})
	status, env = s.do(nethttp.MethodPut, "/api/v1/tasks/"+task.ID, alice.Token, "not an object")
	assert.Equal(t, nethttp.StatusBadRequest, status)
	assert.Equal(t, "invalid request payload", env.Message)
}

func TestTask_UpdateEmptyBodyIsNoChange(t *testing.T) {
	s := newTestServer(t)
	alice := s.register("alice", "alice@example.com")
	task := s.createTask(alice.Token, gin.H{"title": "a", "description": "b", "status": "in-progress"})

	status, env := s.do(nethttp.MethodPut, "/api/v1/tasks/"+task.ID, alice.Token, nil)
	require.Equal(t, nethttp.StatusOK, status, env.Message)
	got := decode[model.Task](t, env)
	assert.Equal(t, "a", got.Title)
	assert.Equal(t, "b", got.Description)
	assert.Equal(t, model.TaskStatus("in-progress"), got.Status)
}

func TestTask_Delete(t *testing.T) {
	s := newTestServer(t)
	alice := s.register("alice", "alice@example.com")
	task := s.createTask(alice.Token, gin.H{"title": "a", "description": "b"})

	status, env := s.do(nethttp.MethodDelete, "/api/v1/tasks/"+task.ID, alice.Token, nil)
	require.Equal(t, nethttp.StatusOK, status)
	assert.Equal(t, "Task deleted successfully", env.Message)

	status, _ = s.do(nethttp.MethodGet, "/api/v1/tasks/"+task.ID, alice.Token, nil)
	assert.Equal(t, nethttp.StatusNotFound, status)
}

func TestTask_ListSearchAndStatus(t *testing.T) {
	s := newTestServer(t)
	alice := s.register("alice", "alice@example.com")
	report := s.createTask(alice.Token, gin.H{"title": "Write report", "description": "quarterly"})
	s.createTask(alice.Token, gin.H{"title": "Clean garage", "description": "weekend", "status": "in-progress"})

	status, env := s.do(nethttp.MethodGet, "/api/v1/tasks?search=REPORT", alice.Token, nil)
	require.Equal(t, nethttp.StatusOK, status)
	found := decode[[]model.Task](t, env)
	require.Len(t, found, 1)
	assert.Equal(t, report.ID, found[0].ID)

	status, env = s.do(nethttp.MethodGet, "/api/v1/tasks?status=in-progress", alice.Token, nil)
	require.Equal(t, nethttp.StatusOK, status)
	found = decode[[]model.Task](t, env)
	require.Len(t, found, 1)
	assert.Equal(t, "Clean garage", found[0].Title)

	status, env = s.do(nethttp.MethodGet, "/api/v1/tasks?status=archived", alice.Token, nil)
	assert.Equal(t, nethttp.StatusBadRequest, status)
	assert.Equal(t, "Invalid query parameters", env.Message)
	require.Len(t, env.Errors, 1)
	assert.Equal(t, "status", env.Errors[0].Field)
}

func TestTask_ListCap(t *testing.T) {
	s := newTestServer(t)
	alice := s.register("alice", "alice@example.com")
	total := repository.MaxTaskList + 1
	for i := 0; i < total; i++ {
		s.createTask(alice.Token, gin.H{"title": fmt.Sprintf("task %d", i), "description": "bulk"})
	}

	status, env := s.do(nethttp.MethodGet, "/api/v1/tasks", alice.Token, nil)
	require.Equal(t, nethttp.StatusOK, status)
	tasks := decode[[]model.Task](t, env)
	assert.Len(t, tasks, repository.MaxTaskList)
	assert.Equal(t, fmt.Sprintf("task %d", total-1), tasks[0].Title)
}

func TestActivityFeed(t *testing.T) {
	s := newTestServer(t)
	alice := s.register("alice", "alice@example.com")
	bob := s.register("bob", "bob@example.com")
	task := s.createTask(alice.Token, gin.H{"title": "a", "description": "b"})
	s.do(nethttp.MethodPut, "/api/v1/tasks/"+task.ID, alice.Token, gin.H{"status": "completed"})
	s.do(nethttp.MethodDelete, "/api/v1/tasks/"+task.ID, alice.Token, nil)

	status, env := s.do(nethttp.MethodGet, "/api/v1/activity?limit=2", alice.Token, nil)
	require.Equal(t, nethttp.StatusOK, status)
	entries := decode[[]model.Activity](t, env)
	require.Len(t, entries, 2)
	assert.Equal(t, model.ActivityTaskDeleted, entries[0].Action)
	assert.Equal(t, model.ActivityTaskUpdated, entries[1].Action)

	status, env = s.do(nethttp.MethodGet, "/api/v1/activity", bob.Token, nil)
	require.Equal(t, nethttp.StatusOK, status)
	assert.Empty(t, decode[[]model.Activity](t, env))

	for _, bad := range []string{"0", "abc", "101"} {
		status, _ = s.do(nethttp.MethodGet, "/api/v1/activity?limit="+bad, alice.Token, nil)
		assert.Equal(t, nethttp.StatusBadRequest, status, bad)
	}
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(nethttp.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	require.Equal(t, nethttp.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"redis":{"ok":true}`)

	addr := s.redis.Addr()
	s.redis.Close()
	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, nethttp.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"redis":{"ok":false,"message":"unreachable"}`)
	assert.NotContains(t, rec.Body.String(), addr)
}
