package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/biosecret/go-todo/auth"
	"github.com/biosecret/go-todo/database"
	"github.com/biosecret/go-todo/events"
	"github.com/biosecret/go-todo/middleware"
	"github.com/biosecret/go-todo/models"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type testEnv struct {
	app    *fiber.App
	store  database.Store
	codec  *auth.TokenCodec
	hub    *events.Hub
	todo   *TodoHandler
	stream *StreamHandler
	clock  *fakeClock
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWithStore(t, database.NewMemoryStore())
}

func newTestEnvWithStore(t *testing.T, store database.Store) *testEnv {
	t.Helper()
	log, _ := test.NewNullLogger()
	codec := auth.NewTokenCodec([]byte("test-secret"), time.Hour)
	hub := events.NewHub()
	clock := &fakeClock{t: time.Date(2024, 1, 15, 9, 30, 0, 0, time.Local)}

	profiles := NewProfileHandler(store, codec, log)
	todos := NewTodoHandler(store, hub, log)
	todos.now = clock.Now
	stream := NewStreamHandler(hub, log)
	stream.keepAlive = 50 * time.Millisecond
	gate := middleware.AuthGate(codec, log)

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler, DisableStartupMessage: true})
	app.Post("/CreateProfile", profiles.CreateProfile)
	app.Post("/UserLogin", profiles.UserLogin)
	app.Get("/SelectProfile", gate, profiles.SelectProfile)
	app.Post("/UpdateProfile", gate, profiles.UpdateProfile)
	app.Post("/CreateTodo", gate, todos.CreateTodo)
	app.Get("/SelectToDo", gate, todos.SelectToDo)
	app.Post("/UpdateToDo", gate, todos.UpdateToDo)
	app.Post("/UpdateToDoStatus", gate, todos.UpdateToDoStatus)
	app.Post("/RemoveToDo", gate, todos.RemoveToDo)
	app.Post("/FilterToDoByStatus", gate, todos.FilterToDoByStatus)
	app.Post("/FilterToDoByDate", gate, todos.FilterToDoByDate)
	app.Get("/TodoEvents", gate, stream.TodoEvents)
	app.Use(HandleNotFound)

	return &testEnv{app: app, store: store, codec: codec, hub: hub, todo: todos, stream: stream, clock: clock}
}

func (e *testEnv) token(t *testing.T, userName string) string {
	t.Helper()
	token, err := e.codec.Issue(userName)
	require.NoError(t, err)
	return token
}

// do sends a request and returns the status code and raw body.
func (e *testEnv) do(t *testing.T, method, path, token string, body any) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(middleware.TokenHeader, token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

func decodeJSON[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}

type envelope[T any] struct {
	Status  string `json:"status"`
	Token   string `json:"token"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

func (e *testEnv) createTodo(t *testing.T, token, subject string) models.Todo {
	t.Helper()
	code, raw := e.do(t, http.MethodPost, "/CreateTodo", token, models.CreateTodoRequest{Subject: subject, Description: subject + " desc"})
	require.Equal(t, fiber.StatusOK, code, string(raw))
	return decodeJSON[envelope[models.Todo]](t, raw).Data
}

var errStoreDown = errors.New("store is down")

// brokenStore fails every call.
type brokenStore struct{}

func (brokenStore) Close(context.Context) error { return nil }
func (brokenStore) CreateProfile(context.Context, *models.Profile) error {
	return errStoreDown
}
func (brokenStore) FindProfiles(context.Context, string) ([]models.Profile, error) {
	return nil, errStoreDown
}
func (brokenStore) FindProfile(context.Context, string) (*models.Profile, error) {
	return nil, errStoreDown
}
func (brokenStore) UpdateProfile(context.Context, string, models.ProfilePatch) (*models.Profile, error) {
	return nil, errStoreDown
}
func (brokenStore) CreateTodo(context.Context, *models.Todo) error { return errStoreDown }
func (brokenStore) FindTodos(context.Context, models.TodoFilter) ([]models.Todo, error) {
	return nil, errStoreDown
}
func (brokenStore) UpdateTodo(context.Context, string, models.TodoUpdate, bool) (models.UpdateResult, error) {
	return models.UpdateResult{}, errStoreDown
}
func (brokenStore) DeleteTodo(context.Context, string) (int64, error) { return 0, errStoreDown }
