package handlers

import (
	"bufio"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/biosecret/go-todo/events"
	"github.com/biosecret/go-todo/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatSSEMessage(t *testing.T) {
	ev := events.Event{
		Type:     events.TodoStatusChanged,
		UserName: "alice",
		TodoID:   "abc",
		Status:   "Done",
		At:       time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC),
	}

	msg, err := formatSSEMessage(string(ev.Type), ev)
	require.NoError(t, err)

	require.True(t, strings.HasSuffix(msg, "\n\n"))
	lines := strings.Split(strings.TrimSuffix(msg, "\n\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "event: status", lines[0])
	assert.Equal(t, "retry: 15000", lines[1])
	require.True(t, strings.HasPrefix(lines[2], "data: "))

	var payload struct {
		Data events.Event `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(lines[2], "data: ")), &payload))
	assert.Equal(t, ev.TodoID, payload.Data.TodoID)
	assert.Equal(t, ev.Status, payload.Data.Status)
	assert.True(t, ev.At.Equal(payload.Data.At))
}

func TestFormatSSEMessage_Unencodable(t *testing.T) {
	_, err := formatSSEMessage("bad", make(chan int))
	assert.Error(t, err)
}

// serve runs the app on a loopback listener and returns its base URL.
func serve(t *testing.T, app *fiber.App) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	go func() { _ = app.Listener(ln) }()
	t.Cleanup(func() { _ = app.ShutdownWithTimeout(time.Second) })

	return "http://" + ln.Addr().String()
}

// openStream connects to TodoEvents and consumes the opening comment.
func openStream(t *testing.T, baseURL, token string) (*http.Response, *bufio.Reader) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, baseURL+"/TodoEvents", nil)
	require.NoError(t, err)
	req.Header.Set(middleware.TokenHeader, token)

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	r := bufio.NewReader(resp.Body)
	assert.Equal(t, ":ok", readLine(t, r))
	return resp, r
}

func readLine(t *testing.T, r *bufio.Reader) string {
	t.Helper()
	line, err := r.ReadString('\n')
	require.NoError(t, err)
	return strings.TrimSuffix(line, "\n")
}

// nextEvent skips blank and comment lines and decodes the next event frame.
func nextEvent(t *testing.T, r *bufio.Reader) (string, events.Event) {
	t.Helper()
	line := readLine(t, r)
	for line == "" || strings.HasPrefix(line, ":") {
		line = readLine(t, r)
	}

	require.True(t, strings.HasPrefix(line, "event: "), line)
	kind := strings.TrimPrefix(line, "event: ")
	assert.Equal(t, "retry: 15000", readLine(t, r))

	data := readLine(t, r)
	require.True(t, strings.HasPrefix(data, "data: "), data)
	var payload struct {
		Data events.Event `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(data, "data: ")), &payload))
	return kind, payload.Data
}

func TestTodoEvents_StreamsOwnEvents(t *testing.T) {
	env := newTestEnv(t)
	// no keep-alive may arrive, so headers must come with the opening comment
	env.stream.keepAlive = time.Hour
	baseURL := serve(t, env.app)
	token := env.token(t, "alice")

	resp, r := openStream(t, baseURL, token)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	require.Equal(t, 1, env.hub.Sessions())

	require.NoError(t, env.hub.Publish(context.Background(), events.Event{
		Type:     events.TodoCreated,
		UserName: "bob",
		TodoID:   "bobs-todo",
	}))
	todo := env.createTodo(t, token, "buy milk")

	kind, ev := nextEvent(t, r)
	assert.Equal(t, string(events.TodoCreated), kind)
	assert.Equal(t, todo.ID, ev.TodoID)
	assert.Equal(t, "alice", ev.UserName)
}

func TestTodoEvents_KeepAlive(t *testing.T) {
	env := newTestEnv(t)
	baseURL := serve(t, env.app)

	_, r := openStream(t, baseURL, env.token(t, "alice"))
	assert.Equal(t, "", readLine(t, r))
	assert.Equal(t, ":keepalive", readLine(t, r))
}

func TestTodoEvents_ClosedClientLeavesHub(t *testing.T) {
	env := newTestEnv(t)
	baseURL := serve(t, env.app)

	resp, _ := openStream(t, baseURL, env.token(t, "alice"))
	require.Equal(t, 1, env.hub.Sessions())

	resp.Body.Close()
	require.Eventually(t, func() bool { return env.hub.Sessions() == 0 }, 2*time.Second, 20*time.Millisecond)
}

func TestTodoEvents_Unauthorized(t *testing.T) {
	env := newTestEnv(t)

	code, _ := env.do(t, http.MethodGet, "/TodoEvents", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, code)
	assert.Zero(t, env.hub.Sessions())
}
