package audit

import (
	"context"
	"errors"

	"salesrep_portal/platform/logger"
)

// Sink accepts audit events. Durable storage and format are the sink's concern.
type Sink interface {
	Emit(ctx context.Context, event Event) error
}

// LogSink writes events to the structured log. It is the fallback when no
// broker is configured.
type LogSink struct {
	log *logger.Logger
}

// NewLogSink creates a sink writing through log.
func NewLogSink(log *logger.Logger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) Emit(ctx context.Context, event Event) error {
	args := []any{
		"audit_id", event.ID.String(),
		"action", string(event.Action),
		"entity_type", event.EntityType,
		"occurred_at", event.OccurredAt,
	}
	if event.EntityID != nil {
		args = append(args, "entity_id", event.EntityID.String())
	}
	if event.ActorID != nil {
		args = append(args, "actor_id", event.ActorID.String())
	}
	if len(event.Details) > 0 {
		args = append(args, "details", event.Details)
	}
	s.log.WithContext(ctx).Info("audit_event", args...)
	return nil
}

// MultiSink fans an event out to several sinks and joins their errors.
type MultiSink []Sink

func (m MultiSink) Emit(ctx context.Context, event Event) error {
	var errs []error
	for _, s := range m {
		if err := s.Emit(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var (
	_ Sink = (*LogSink)(nil)
	_ Sink = MultiSink(nil)
)
