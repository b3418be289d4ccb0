package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/econlabs/nber-paper-crawler/internal/progress"
	"github.com/econlabs/nber-paper-crawler/internal/progress/sinks"
)

func newTestServer(t *testing.T) (*Server, *sinks.StatusSink) {
	t.Helper()
	status := sinks.NewStatusSink()
	reg := prometheus.NewRegistry()
	_, err := sinks.NewPrometheusSink(reg)
	require.NoError(t, err)
	return NewServer(":0", status, reg, nil), status
}

// TestHealthz verifies the liveness endpoint.
func TestHealthz(t *testing.T) {
	t.Parallel()

	server, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

// TestStatusReflectsScanProgress verifies /status serves the sink snapshot.
func TestStatusReflectsScanProgress(t *testing.T) {
	t.Parallel()

	server, status := newTestServer(t)
	runID := progress.UUIDToBytes(uuid.New())
	require.NoError(t, status.Consume(context.Background(), []progress.Event{
		{RunID: runID, TS: time.Now().UTC(), Stage: progress.StageScanStart},
		{RunID: runID, TS: time.Now().UTC(), Stage: progress.StagePaperAccepted,
			Paper: 33150, Title: "A Paper", Checked: 12, Accepted: 3},
	}))

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var snap sinks.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	require.True(t, snap.Running)
	require.Equal(t, int64(12), snap.Checked)
	require.Equal(t, int64(3), snap.Accepted)
	require.Equal(t, 33150, snap.LastPaper)
	require.Equal(t, "A Paper", snap.LastTitle)
}

// TestStatusDisabled verifies the endpoint degrades cleanly without a sink.
func TestStatusDisabled(t *testing.T) {
	t.Parallel()

	server := NewServer(":0", nil, prometheus.NewRegistry(), nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

// TestMetricsEndpoint verifies the Prometheus exposition endpoint serves the
// scan collectors.
func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()

	server, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "nberscan_papers_checked_total")
}
