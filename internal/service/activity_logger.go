package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/blackenaxe/icom/internal/events"
	"github.com/blackenaxe/icom/internal/observability"
)

// ActivityLogger records every domain event in the log and the events counter.
type ActivityLogger struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// NewActivityLogger creates the logger. Call RegisterHandlers to subscribe.
func NewActivityLogger(dispatcher events.Dispatcher, logger *zap.Logger, metrics *observability.Metrics) *ActivityLogger {
	return &ActivityLogger{dispatcher: dispatcher, logger: logger, metrics: metrics}
}

// RegisterHandlers subscribes to events.
func (a *ActivityLogger) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	for _, eventType := range events.AllEventTypes {
		a.dispatcher.Subscribe(eventType, a.handle)
	}
}

func (a *ActivityLogger) handle(_ context.Context, event events.Event) error {
	a.metrics.RecordEvent(string(event.Type))

	fields := []zap.Field{
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)),
		zap.Int64("actor_id", event.ActorID),
	}
	if event.WorkOrderID != 0 {
		fields = append(fields, zap.Int64("work_order_id", event.WorkOrderID))
	}
	if event.WorkOrderNo != "" {
		fields = append(fields, zap.String("work_order_no", event.WorkOrderNo))
	}
	if event.Payload != nil {
		fields = append(fields, zap.Any("payload", event.Payload))
	}
	a.logger.Info("activity", fields...)
	return nil
}
