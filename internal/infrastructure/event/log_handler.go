package event

import (
	"context"

	"github.com/rentalcore/backend/internal/domain/shared"
	"github.com/rentalcore/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// LogHandler writes every event to the log at debug level with its full
// payload, and at info level for the event types listed as notable.
type LogHandler struct {
	log     *zap.Logger
	notable map[string]struct{}
}

// NewLogHandler creates a LogHandler
func NewLogHandler(log *zap.Logger, notable ...string) *LogHandler {
	set := make(map[string]struct{}, len(notable))
	for _, t := range notable {
		set[t] = struct{}{}
	}
	return &LogHandler{log: log.Named("events"), notable: set}
}

// EventTypes subscribes to every event
func (h *LogHandler) EventTypes() []string { return nil }

// Handle logs the event
func (h *LogHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	fields := append(logger.CorrelationFields(ctx),
		zap.String("event_type", event.EventType()),
		zap.String("event_id", event.EventID().String()),
		zap.String("aggregate_type", event.AggregateType()),
		zap.String("aggregate_id", event.AggregateID().String()),
		zap.String("actor", event.Actor()),
		zap.Time("occurred_at", event.OccurredAt()),
	)
	if _, ok := h.notable[event.EventType()]; ok {
		h.log.Info("domain event", fields...)
		return nil
	}
	if ce := h.log.Check(zap.DebugLevel, "domain event"); ce != nil {
		ce.Write(append(fields, zap.Any("payload", event))...)
	}
	return nil
}
