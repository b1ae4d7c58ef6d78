package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"netlibrarium/internal/database"
	"netlibrarium/internal/engine"
	"netlibrarium/internal/engine/actors"
	"netlibrarium/internal/utils"
	"netlibrarium/internal/websocket"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
	ws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	*httptest.Server
	hub *websocket.Hub
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	metrics := utils.NewMetricsCollector()
	hub := websocket.NewHub()
	go hub.Run()
	t.Cleanup(hub.Stop)

	system := actor.NewActorSystem()
	t.Cleanup(system.Shutdown)

	eng := engine.NewEngine(database.NewMemoryStore(), metrics, hub)
	client := actors.Spawn(system, eng, 2*time.Second)

	server := NewServer(client, metrics, hub)
	server.RequestTimeout = 2 * time.Second

	ts := httptest.NewServer(server.Router())
	t.Cleanup(ts.Close)
	return &testServer{Server: ts, hub: hub}
}

func (ts *testServer) do(t *testing.T, method, path string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	status, raw := ts.doRaw(t, method, path, body)
	out := map[string]interface{}{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), "body: %s", raw)
	}
	return status, out
}

func (ts *testServer) doRaw(t *testing.T, method, path string, body interface{}) (int, []byte) {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		encoded, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequest(method, ts.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

func (ts *testServer) createUser(t *testing.T, username string) string {
	t.Helper()
	status, body := ts.do(t, http.MethodPost, "/api/users", map[string]string{
		"username": username,
		"email":    username + "@example.com",
	})
	require.Equal(t, http.StatusCreated, status, "body: %v", body)
	return body["_id"].(string)
}

func (ts *testServer) createThought(t *testing.T, username, text string) string {
	t.Helper()
	status, body := ts.do(t, http.MethodPost, "/api/thoughts", map[string]string{
		"thoughtText": text,
		"username":    username,
	})
	require.Equal(t, http.StatusCreated, status, "body: %v", body)
	return body["_id"].(string)
}

func TestScenario(t *testing.T) {
	ts := newTestServer(t)

	status, user := ts.do(t, http.MethodPost, "/api/users", map[string]string{"username": "bob", "email": "bob@x.com"})
	require.Equal(t, http.StatusCreated, status)
	bobID := user["_id"].(string)
	assert.Equal(t, float64(0), user["friendCount"])

	thoughtID := ts.createThought(t, "bob", "hello")

	status, profile := ts.do(t, http.MethodGet, "/api/users/"+bobID, nil)
	require.Equal(t, http.StatusOK, status)
	thoughts := profile["thoughts"].([]interface{})
	require.Len(t, thoughts, 1)
	assert.Equal(t, "hello", thoughts[0].(map[string]interface{})["thoughtText"])

	status, _ = ts.do(t, http.MethodPost, "/api/thoughts/"+thoughtID+"/reactions", map[string]string{
		"reactionBody": "nice!",
		"username":     "carol",
	})
	require.Equal(t, http.StatusOK, status)

	status, thought := ts.do(t, http.MethodGet, "/api/thoughts/"+thoughtID, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1), thought["reactionCount"])

	status, body := ts.do(t, http.MethodDelete, "/api/users/"+bobID, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "User successfully deleted", body["message"])

	status, raw := ts.doRaw(t, http.MethodGet, "/api/thoughts", nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, "[]", string(raw))
}

func TestListUsers(t *testing.T) {
	ts := newTestServer(t)
	ts.createUser(t, "alice")
	ts.createUser(t, "bob")

	status, body := ts.do(t, http.MethodGet, "/api/users", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(2), body["userCount"])
	assert.Len(t, body["users"], 2)
}

func TestFriends(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.createUser(t, "alice")
	bob := ts.createUser(t, "bob")

	status, body := ts.do(t, http.MethodPost, "/api/users/"+alice+"/friends/"+bob, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []interface{}{bob}, body["friends"])
	assert.Equal(t, float64(1), body["friendCount"])

	status, body = ts.do(t, http.MethodPost, "/api/users/"+alice+"/friends/"+bob, nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "Friend already added", body["message"])

	status, body = ts.do(t, http.MethodPost, "/api/users/"+alice+"/friends/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "User or friend not found", body["message"])

	status, body = ts.do(t, http.MethodDelete, "/api/users/"+alice+"/friends/"+bob, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Friend removed successfully", body["message"])
	user := body["user"].(map[string]interface{})
	assert.Empty(t, user["friends"])
}

func TestUpdateEndpoints(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.createUser(t, "alice")
	thoughtID := ts.createThought(t, "alice", "draft")

	status, body := ts.do(t, http.MethodPut, "/api/users/"+alice, map[string]string{"email": "NEW@example.com"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "new@example.com", body["email"])
	assert.Equal(t, "alice", body["username"])

	status, body = ts.do(t, http.MethodPut, "/api/thoughts/"+thoughtID, map[string]string{"thoughtText": "final"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "final", body["thoughtText"])

	status, _ = ts.do(t, http.MethodPut, "/api/users/"+uuid.NewString(), map[string]string{"email": "x@example.com"})
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = ts.do(t, http.MethodPut, "/api/thoughts/"+uuid.NewString(), map[string]string{"thoughtText": "x"})
	assert.Equal(t, http.StatusNotFound, status)
}

func TestReactions(t *testing.T) {
	ts := newTestServer(t)
	thoughtID := ts.createThought(t, "alice", "hi")

	status, body := ts.do(t, http.MethodPost, "/api/thoughts/"+thoughtID+"/reactions", map[string]string{
		"reactionBody": "wow",
		"username":     "bob",
	})
	require.Equal(t, http.StatusOK, status)
	reactions := body["reactions"].([]interface{})
	require.Len(t, reactions, 1)
	reaction := reactions[0].(map[string]interface{})
	assert.Equal(t, "wow", reaction["reactionBody"])
	reactionID := reaction["reactionId"].(string)

	status, body = ts.do(t, http.MethodDelete, "/api/thoughts/"+thoughtID+"/reactions/"+reactionID, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(0), body["reactionCount"])
	assert.Equal(t, thoughtID, body["_id"])

	status, body = ts.do(t, http.MethodDelete, "/api/thoughts/"+thoughtID+"/reactions/"+uuid.NewString(), nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(0), body["reactionCount"])
}

func TestDeleteThought(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.createUser(t, "alice")
	thoughtID := ts.createThought(t, "alice", "bye")

	status, body := ts.do(t, http.MethodDelete, "/api/thoughts/"+thoughtID, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Thought successfully deleted!", body["message"])

	_, profile := ts.do(t, http.MethodGet, "/api/users/"+alice, nil)
	assert.Empty(t, profile["thoughts"])

	status, _ = ts.do(t, http.MethodDelete, "/api/thoughts/"+thoughtID, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestErrorStatuses(t *testing.T) {
	ts := newTestServer(t)
	ts.createUser(t, "alice")

	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
		status int
	}{
		{"thought too long", http.MethodPost, "/api/thoughts", map[string]string{"thoughtText": strings.Repeat("x", 281), "username": "alice"}, http.StatusBadRequest},
		{"thought missing username", http.MethodPost, "/api/thoughts", map[string]string{"thoughtText": "x"}, http.StatusBadRequest},
		{"duplicate username", http.MethodPost, "/api/users", map[string]string{"username": "alice", "email": "other@example.com"}, http.StatusBadRequest},
		{"bad email", http.MethodPost, "/api/users", map[string]string{"username": "carol", "email": "nope"}, http.StatusBadRequest},
		{"malformed json", http.MethodPost, "/api/users", "{", http.StatusBadRequest},
		{"invalid user id", http.MethodGet, "/api/users/not-a-uuid", nil, http.StatusBadRequest},
		{"unknown user", http.MethodGet, "/api/users/" + uuid.NewString(), nil, http.StatusNotFound},
		{"unknown thought", http.MethodGet, "/api/thoughts/" + uuid.NewString(), nil, http.StatusNotFound},
		{"delete unknown user", http.MethodDelete, "/api/users/" + uuid.NewString(), nil, http.StatusNotFound},
		{"reaction on unknown thought", http.MethodPost, "/api/thoughts/" + uuid.NewString() + "/reactions", map[string]string{"reactionBody": "x", "username": "y"}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := ts.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, status)
			assert.NotEmpty(t, body["message"])
		})
	}
}

func TestUnmatchedRoute(t *testing.T) {
	ts := newTestServer(t)

	status, body := ts.do(t, http.MethodGet, "/nowhere", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Wrong route!", body["message"])

	status, body = ts.do(t, http.MethodGet, "/api/users/x/y/z", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Wrong route!", body["message"])
}

func TestHealthAndMetrics(t *testing.T) {
	ts := newTestServer(t)
	ts.createUser(t, "alice")

	status, body := ts.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, float64(1), body["userCount"])

	status, raw := ts.doRaw(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(raw), "netlibrarium_requests_total")
	assert.Contains(t, string(raw), `operation="create_user"`)
}

func TestActivityStream(t *testing.T) {
	ts := newTestServer(t)
	ts.createUser(t, "bob")

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/stream?username=bob"
	conn, _, err := ws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return ts.hub.ClientCount("bob") == 1 }, 2*time.Second, 10*time.Millisecond)

	ts.createThought(t, "alice", "not for bob")
	thoughtID := ts.createThought(t, "bob", "for bob")

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)

	var event map[string]interface{}
	require.NoError(t, json.Unmarshal(payload, &event))
	assert.Equal(t, "thought.created", event["type"])
	assert.Equal(t, "bob", event["username"])
	assert.Equal(t, thoughtID, event["thoughtId"])
}
