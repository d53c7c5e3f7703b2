package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/ssmendon/sdnprobe/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSessionRepo struct {
	sessions []domain.ProbeResult
}

func (f *fakeSessionRepo) SaveSession(ctx context.Context, result domain.ProbeResult) error {
	f.sessions = append(f.sessions, result)
	return nil
}

func (f *fakeSessionRepo) ListSessions(ctx context.Context, limit int) ([]domain.ProbeResult, error) {
	return f.sessions, nil
}

func (f *fakeSessionRepo) Close() error { return nil }

type fakeExporter struct {
	lastPath string
}

func (f *fakeExporter) Export(ctx context.Context, sessions []domain.ProbeResult, path string) error {
	f.lastPath = path
	return nil
}

func TestServer_ListSessions(t *testing.T) {
	repo := &fakeSessionRepo{sessions: []domain.ProbeResult{{SessionID: "s1", HardTimeout: 30, IdleTimeout: 10}}}
	srv := NewServer(NewHub(), repo, &fakeExporter{})

	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/sessions")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_GenerateReport(t *testing.T) {
	repo := &fakeSessionRepo{sessions: []domain.ProbeResult{{SessionID: "s1"}}}
	exporter := &fakeExporter{}
	srv := NewServer(NewHub(), repo, exporter)

	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/reports/executive", "application/json",
		strings.NewReader(`{"out_path":"/tmp/out.pdf"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "/tmp/out.pdf", exporter.lastPath)
}

func TestHub_BroadcastToConnectedClient(t *testing.T) {
	hub := NewHub()
	ts := httptest.NewServer(http.HandlerFunc(hub.HandleWebSocket))
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	// Give HandleWebSocket a moment to register the connection before we
	// broadcast, since registration happens asynchronously relative to the
	// dialer's return.
	time.Sleep(10 * time.Millisecond)
	hub.Broadcast(ProgressEvent{Type: "status", Phase: "idle_probe", Message: "searching"})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var got ProgressEvent
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "status", got.Type)
	assert.Equal(t, "idle_probe", got.Phase)
	assert.Equal(t, "searching", got.Message)
}
