package ops

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mave-full/konspektbot/internal/domain"
	"github.com/Mave-full/konspektbot/internal/jobs"
)

func newTestServer() *Server {
	bus := jobs.NewEventBus(10)
	bus.Publish(jobs.Event{Type: jobs.EventTypeState, JobID: "a"})
	bus.Publish(jobs.Event{Type: jobs.EventTypeError, JobID: "b", Message: "boom"})

	report := domain.DiagnosticReport{
		GeneratedAt: time.Now().UTC(),
		HasFailures: true,
		Items: []domain.DiagnosticItem{
			{ID: "tool_ffmpeg", Status: domain.DiagnosticStatusFail},
		},
	}
	return NewServer("127.0.0.1:0", bus, report, nil)
}

func TestHealthz(t *testing.T) {
	srv := newTestServer()
	rec := httptest.NewRecorder()

	srv.handleHealthz(rec, httptest.NewRequest("GET", "/healthz", nil))

	assert.Equal(t, 200, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestEventsSince(t *testing.T) {
	srv := newTestServer()
	rec := httptest.NewRecorder()

	srv.handleEvents(rec, httptest.NewRequest("GET", "/debug/events?since=1", nil))

	require.Equal(t, 200, rec.Code)
	var events []jobs.Event
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &events))
	require.Len(t, events, 1)
	assert.Equal(t, "b", events[0].JobID)
	assert.Equal(t, "boom", events[0].Message)
}

func TestEventsInvalidSince(t *testing.T) {
	srv := newTestServer()
	rec := httptest.NewRecorder()

	srv.handleEvents(rec, httptest.NewRequest("GET", "/debug/events?since=abc", nil))

	assert.Equal(t, 400, rec.Code)
}

func TestDiagnosticsReport(t *testing.T) {
	srv := newTestServer()
	rec := httptest.NewRecorder()

	srv.handleDiagnostics(rec, httptest.NewRequest("GET", "/debug/diagnostics", nil))

	require.Equal(t, 200, rec.Code)
	var report domain.DiagnosticReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.True(t, report.HasFailures)
	require.Len(t, report.Items, 1)
	assert.Equal(t, "tool_ffmpeg", report.Items[0].ID)
}
