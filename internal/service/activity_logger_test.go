package service

import (
	"context"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/blackenaxe/icom/internal/events"
	"github.com/blackenaxe/icom/internal/observability"
)

func TestActivityLoggerRecordsEvents(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher(zap.NewNop())
	NewActivityLogger(dispatcher, zap.New(core), metrics).RegisterHandlers()

	dispatcher.Publish(context.Background(), events.Event{
		ID:          "e1",
		Type:        events.EventWorkOrderCreated,
		ActorID:     3,
		WorkOrderID: 1,
		WorkOrderNo: "WO0001",
	})

	entries := logs.FilterMessage("activity").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "work_order_created", fields["event_type"])
	assert.Equal(t, "WO0001", fields["work_order_no"])

	expected := `
# HELP workorder_events_total Domain events published after committed mutations.
# TYPE workorder_events_total counter
workorder_events_total{type="work_order_created"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(metrics.Registry(), strings.NewReader(expected), "workorder_events_total"))
}
