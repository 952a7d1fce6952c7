package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sap-docs/mcp-server/pkg/config"
	"github.com/sap-docs/mcp-server/pkg/tools"
)

func TestEventStoreMonotone(t *testing.T) {
	store := NewEventStore(10)
	stream := store.NewStreamID()

	e1 := store.StoreEvent(stream, []byte("a"))
	e2 := store.StoreEvent(stream, []byte("b"))
	assert.Equal(t, stream+"_1", e1)
	assert.Equal(t, stream+"_2", e2)
}

func TestEventStoreReplayAfter(t *testing.T) {
	store := NewEventStore(10)
	stream := store.NewStreamID()
	e1 := store.StoreEvent(stream, []byte("m1"))
	store.StoreEvent(stream, []byte("m2"))
	store.StoreEvent(stream, []byte("m3"))

	var got []string
	id, err := store.ReplayAfter(e1, func(id string, payload []byte) error {
		got = append(got, string(payload))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, stream, id)
	assert.Equal(t, []string{"m2", "m3"}, got)
}

func TestEventStoreUnknownLastEventID(t *testing.T) {
	store := NewEventStore(10)
	id, err := store.ReplayAfter("bogus_99", func(string, []byte) error {
		t.Fatal("nothing to replay")
		return nil
	})
	require.NoError(t, err)
	assert.NotEmpty(t, id, "unknown last event id yields a fresh stream")
}

func TestEventStoreRetentionBound(t *testing.T) {
	store := NewEventStore(100)
	stream := store.NewStreamID()
	var first string
	for i := 0; i < 150; i++ {
		id := store.StoreEvent(stream, []byte(fmt.Sprintf("m%d", i)))
		if i == 0 {
			first = id
		}
	}

	count := 0
	_, err := store.ReplayAfter(first, func(string, []byte) error {
		count++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 100, count, "only the bounded tail is retained")
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.ServerConfig{}
	cfg.SetDefaults()
	return NewServer(cfg, tools.NewRegistry(), "", 0, 0, map[string]string{"env": "test"})
}

func postRPC(t *testing.T, ts *httptest.Server, sessionID, body string) (*http.Response, JSONRPCResponse) {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, ts.URL+"/mcp", bytes.NewBufferString(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if sessionID != "" {
		req.Header.Set(sessionHeader, sessionID)
	}
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var rpc JSONRPCResponse
	if resp.StatusCode != http.StatusAccepted {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&rpc))
	}
	return resp, rpc
}

func TestSessionLifecycle(t *testing.T) {
	ts := httptest.NewServer(newTestServer(t).Router())
	defer ts.Close()

	// Initialize without a session header creates a session.
	resp, rpc := postRPC(t, ts, "", `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`)
	require.Nil(t, rpc.Error)
	sessionID := resp.Header.Get(sessionHeader)
	require.NotEmpty(t, sessionID)

	result := rpc.Result.(map[string]any)
	assert.Equal(t, ProtocolVersion, result["protocolVersion"])
	caps := result["capabilities"].(map[string]any)
	assert.Contains(t, caps, "tools")
	assert.Contains(t, caps, "prompts")
	assert.NotContains(t, caps, "resources")

	// A request carrying the session header succeeds.
	_, rpc = postRPC(t, ts, sessionID, `{"jsonrpc":"2.0","id":2,"method":"ping"}`)
	assert.Nil(t, rpc.Error)

	// DELETE terminates the session.
	req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/mcp", nil)
	req.Header.Set(sessionHeader, sessionID)
	delResp, err := ts.Client().Do(req)
	require.NoError(t, err)
	delResp.Body.Close()
	assert.Equal(t, http.StatusOK, delResp.StatusCode)

	// Any further POST with the same header is a session error.
	resp, rpc = postRPC(t, ts, sessionID, `{"jsonrpc":"2.0","id":3,"method":"ping"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.NotNil(t, rpc.Error)
	assert.Equal(t, SessionError, rpc.Error.Code)
}

func TestPostWithoutSessionRejected(t *testing.T) {
	ts := httptest.NewServer(newTestServer(t).Router())
	defer ts.Close()

	resp, rpc := postRPC(t, ts, "", `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.NotNil(t, rpc.Error)
	assert.Equal(t, SessionError, rpc.Error.Code)
}

func TestNotificationAccepted(t *testing.T) {
	ts := httptest.NewServer(newTestServer(t).Router())
	defer ts.Close()

	resp, _ := postRPC(t, ts, "", `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`)
	sessionID := resp.Header.Get(sessionHeader)

	resp, _ = postRPC(t, ts, sessionID, `{"jsonrpc":"2.0","method":"notifications/initialized"}`)
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
}

func TestMalformedEnvelope(t *testing.T) {
	ts := httptest.NewServer(newTestServer(t).Router())
	defer ts.Close()

	_, rpc := postRPC(t, ts, "", `{not json`)
	require.NotNil(t, rpc.Error)
	assert.Equal(t, ParseError, rpc.Error.Code)
}

func TestMethodNotFound(t *testing.T) {
	ts := httptest.NewServer(newTestServer(t).Router())
	defer ts.Close()

	resp, _ := postRPC(t, ts, "", `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`)
	sessionID := resp.Header.Get(sessionHeader)

	_, rpc := postRPC(t, ts, sessionID, `{"jsonrpc":"2.0","id":2,"method":"no/such"}`)
	require.NotNil(t, rpc.Error)
	assert.Equal(t, MethodNotFound, rpc.Error.Code)
}

func TestStreamResumption(t *testing.T) {
	srv := newTestServer(t)
	session := srv.sessions.Create(NewDispatcher(srv.registry))

	stream := session.Events.NewStreamID()
	e1 := session.Events.StoreEvent(stream, []byte(`{"n":1}`))
	session.Events.StoreEvent(stream, []byte(`{"n":2}`))
	session.Events.StoreEvent(stream, []byte(`{"n":3}`))

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/mcp", nil).WithContext(ctx)
	req.Header.Set(sessionHeader, session.ID)
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Last-Event-Id", e1)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	body := rec.Body.String()
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	i2 := strings.Index(body, `{"n":2}`)
	i3 := strings.Index(body, `{"n":3}`)
	assert.NotContains(t, body, `{"n":1}`, "events at or before Last-Event-Id are not replayed")
	require.GreaterOrEqual(t, i2, 0)
	require.Greater(t, i3, i2, "replay preserves original order")
	assert.Contains(t, body, "id: "+stream+"_2")
}

func TestHealthIndependentOfSessions(t *testing.T) {
	ts := httptest.NewServer(newTestServer(t).Router())
	defer ts.Close()

	resp, err := ts.Client().Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, ServerName, body["service"])
	assert.Equal(t, ProtocolVersion, body["protocol"])
	assert.NotEmpty(t, body["version"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestStatusCarriesTags(t *testing.T) {
	ts := httptest.NewServer(newTestServer(t).Router())
	defer ts.Close()

	resp, err := ts.Client().Get(ts.URL + "/status")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	tags := body["tags"].(map[string]any)
	assert.Equal(t, "test", tags["env"])
}

func TestCORSExposesSessionHeader(t *testing.T) {
	ts := httptest.NewServer(newTestServer(t).Router())
	defer ts.Close()

	req, _ := http.NewRequest(http.MethodOptions, ts.URL+"/mcp", nil)
	req.Header.Set("Origin", "https://example.test")
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, sessionHeader, resp.Header.Get("Access-Control-Expose-Headers"))
}

func TestSessionSweep(t *testing.T) {
	m := NewSessionManager(10*time.Millisecond, 10)
	s := m.Create(NewDispatcher(tools.NewRegistry()))
	require.Equal(t, 1, m.Count())

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, m.Sweep())
	assert.Equal(t, 0, m.Count())

	_, err := m.Get(s.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestPostSSEResponse(t *testing.T) {
	ts := httptest.NewServer(newTestServer(t).Router())
	defer ts.Close()

	resp, _ := postRPC(t, ts, "", `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`)
	sessionID := resp.Header.Get(sessionHeader)

	req, _ := http.NewRequest(http.MethodPost, ts.URL+"/mcp",
		bytes.NewBufferString(`{"jsonrpc":"2.0","id":2,"method":"ping"}`))
	req.Header.Set(sessionHeader, sessionID)
	req.Header.Set("Accept", "application/json, text/event-stream")
	sseResp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer sseResp.Body.Close()

	assert.Equal(t, "text/event-stream", sseResp.Header.Get("Content-Type"))
	buf := new(bytes.Buffer)
	_, _ = buf.ReadFrom(sseResp.Body)
	assert.Contains(t, buf.String(), "event: message")
	assert.Contains(t, buf.String(), `"jsonrpc":"2.0"`)
}
