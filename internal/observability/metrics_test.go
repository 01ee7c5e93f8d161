package observability

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestMetricsRecordRequestAndEvent(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/api/workorders/:id", http.MethodGet, 200, 25*time.Millisecond)
	m.RecordRequest("/api/workorders/:id", http.MethodGet, 200, 5*time.Millisecond)
	m.RecordError("/api/workorders/:id", http.MethodGet, "NOT_FOUND")
	m.RecordEvent("work_order_created")

	assert.InDelta(t, 2, testutil.ToFloat64(m.requestsTotal.WithLabelValues(http.MethodGet, "/api/workorders/:id", "200")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.errorsTotal.WithLabelValues(http.MethodGet, "/api/workorders/:id", "NOT_FOUND")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.eventsTotal.WithLabelValues("work_order_created")), 0)
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/", http.MethodGet, 200, time.Millisecond)
	m.RecordError("/", http.MethodGet, "X")
	m.RecordEvent("x")
	m.RequestStarted()()
}

func TestMetricsHandlerExposesCollectors(t *testing.T) {
	m := NewMetrics()
	m.RecordEvent("work_order_deleted")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body := rec.Body.String()
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, body, `workorder_events_total{type="work_order_deleted"} 1`)
	assert.Contains(t, body, "http_in_flight_requests")
}

func TestRequestLoggerUsesRouteTemplate(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	m := NewMetrics()

	app := fiber.New()
	app.Use(RequestLogger(zap.New(core), m))
	app.Get("/api/workorders/:id", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/workorders/42", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "ok", strings.TrimSpace(string(body)))

	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "/api/workorders/:id", fields["route"])
	assert.Equal(t, "/api/workorders/42", fields["path"])
	assert.EqualValues(t, 200, fields["status"])

	assert.InDelta(t, 1, testutil.ToFloat64(m.requestsTotal.WithLabelValues(http.MethodGet, "/api/workorders/:id", "200")), 0)
}
