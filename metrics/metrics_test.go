package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRecorders(t *testing.T) {
	m := New()

	m.Chat("ok")
	m.Chat("ok")
	m.ToolCall("query_database", false, 20*time.Millisecond)
	m.ToolCall("query_database", true, time.Second)
	m.Steps(2)

	require.Equal(t, 2.0, testutil.ToFloat64(m.chats.WithLabelValues("ok")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.toolCalls.WithLabelValues("query_database", "ok")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.toolCalls.WithLabelValues("query_database", "error")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "rio_tool_calls_total")
	require.Contains(t, rec.Body.String(), "rio_chat_steps_bucket")
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics

	require.NotPanics(t, func() {
		m.Chat("ok")
		m.Steps(1)
		m.ToolCall("render_chart", false, time.Millisecond)
	})

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}
