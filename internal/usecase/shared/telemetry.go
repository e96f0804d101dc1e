package shared

import (
	"context"

	"github.com/runoshun/whatstask/internal/domain"
)

// Telemetry receives lifecycle spans and counters.
// infra/telemetry provides the OpenTelemetry implementation.
type Telemetry interface {
	// TrackOperation starts a span for a use case and returns the function
	// that ends it with the operation's error.
	TrackOperation(ctx context.Context, op, taskID string) (context.Context, func(error))

	// RecordTransition counts a committed status change.
	RecordTransition(ctx context.Context, from, to domain.Status)

	// RecordNotification counts a notification outcome.
	RecordNotification(ctx context.Context, update domain.UpdateType, sent bool)
}

// NopTelemetry discards everything.
type NopTelemetry struct{}

// TrackOperation returns ctx unchanged.
func (NopTelemetry) TrackOperation(ctx context.Context, _, _ string) (context.Context, func(error)) {
	return ctx, func(error) {}
}

// RecordTransition does nothing.
func (NopTelemetry) RecordTransition(context.Context, domain.Status, domain.Status) {}

// RecordNotification does nothing.
func (NopTelemetry) RecordNotification(context.Context, domain.UpdateType, bool) {}
