// Package telemetry exports use case spans and lifecycle counters through
// OpenTelemetry.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"github.com/runoshun/whatstask/internal/domain"
	"github.com/runoshun/whatstask/internal/infra/logging"
	"github.com/runoshun/whatstask/internal/usecase/shared"
)

const instrumentationName = "github.com/runoshun/whatstask"

// Provider implements shared.Telemetry.
// Fields are ordered to minimize memory padding.
type Provider struct {
	tracer        trace.Tracer
	operations    metric.Int64Counter
	errors        metric.Int64Counter
	duration      metric.Float64Histogram
	transitions   metric.Int64Counter
	notifications metric.Int64Counter
	log           zerolog.Logger
	shutdown      []func(context.Context) error
}

// New creates a Provider exporting over OTLP gRPC. When telemetry is
// disabled it returns shared.NopTelemetry and a no-op shutdown.
func New(ctx context.Context, cfg domain.TelemetryConfig) (shared.Telemetry, func(context.Context) error, error) {
	if !cfg.Enabled {
		return shared.NopTelemetry{}, func(context.Context) error { return nil }, nil
	}

	res, err := resource.Merge(resource.Default(), resource.NewSchemaless(
		attribute.String("service.name", cfg.ServiceName),
	))
	if err != nil {
		return nil, nil, fmt.Errorf("create resource: %w", err)
	}

	traceOpts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.Endpoint)}
	metricOpts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		traceOpts = append(traceOpts, otlptracegrpc.WithInsecure())
		metricOpts = append(metricOpts, otlpmetricgrpc.WithInsecure())
	}

	traceExp, err := otlptracegrpc.New(ctx, traceOpts...)
	if err != nil {
		return nil, nil, fmt.Errorf("create trace exporter: %w", err)
	}
	metricExp, err := otlpmetricgrpc.New(ctx, metricOpts...)
	if err != nil {
		_ = traceExp.Shutdown(ctx)
		return nil, nil, fmt.Errorf("create metric exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(traceExp, sdktrace.WithBatchTimeout(5*time.Second)),
	)
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExp, sdkmetric.WithInterval(15*time.Second))),
	)

	p, err := NewWithProviders(tp, mp)
	if err != nil {
		return nil, nil, errors.Join(err, tp.Shutdown(ctx), mp.Shutdown(ctx))
	}
	p.shutdown = []func(context.Context) error{tp.Shutdown, mp.Shutdown}
	p.log.Debug().Str("endpoint", cfg.Endpoint).Bool("insecure", cfg.Insecure).Msg("telemetry initialized")
	return p, p.Shutdown, nil
}

// NewWithProviders builds a Provider on existing tracer and meter providers.
func NewWithProviders(tp trace.TracerProvider, mp metric.MeterProvider) (*Provider, error) {
	meter := mp.Meter(instrumentationName)
	p := &Provider{
		tracer: tp.Tracer(instrumentationName),
		log:    logging.Component("telemetry"),
	}

	var err error
	if p.operations, err = meter.Int64Counter("whatstask.operations",
		metric.WithDescription("Use case executions"), metric.WithUnit("{operation}")); err != nil {
		return nil, err
	}
	if p.errors, err = meter.Int64Counter("whatstask.operation.errors",
		metric.WithDescription("Use case executions that returned an error"), metric.WithUnit("{error}")); err != nil {
		return nil, err
	}
	if p.duration, err = meter.Float64Histogram("whatstask.operation.duration",
		metric.WithDescription("Use case duration"), metric.WithUnit("s")); err != nil {
		return nil, err
	}
	if p.transitions, err = meter.Int64Counter("whatstask.status.transitions",
		metric.WithDescription("Committed status changes"), metric.WithUnit("{transition}")); err != nil {
		return nil, err
	}
	if p.notifications, err = meter.Int64Counter("whatstask.notifications",
		metric.WithDescription("Notification attempts by outcome"), metric.WithUnit("{notification}")); err != nil {
		return nil, err
	}
	return p, nil
}

// TrackOperation starts a span named after op.
func (p *Provider) TrackOperation(ctx context.Context, op, taskID string) (context.Context, func(error)) {
	start := time.Now()
	attrs := []attribute.KeyValue{attribute.String("operation", op)}
	ctx, span := p.tracer.Start(ctx, op, trace.WithAttributes(attrs...))
	if taskID != "" {
		span.SetAttributes(attribute.String("task.id", taskID))
	}

	return ctx, func(err error) {
		set := metric.WithAttributes(attrs...)
		p.operations.Add(ctx, 1, set)
		p.duration.Record(ctx, time.Since(start).Seconds(), set)
		if err != nil {
			p.errors.Add(ctx, 1, metric.WithAttributes(append(attrs,
				attribute.String("error.kind", string(domain.Classify(err))))...))
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
}

// RecordTransition counts a status change.
func (p *Provider) RecordTransition(ctx context.Context, from, to domain.Status) {
	p.transitions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("from", string(from)),
		attribute.String("to", string(to)),
	))
}

// RecordNotification counts a notification outcome.
func (p *Provider) RecordNotification(ctx context.Context, update domain.UpdateType, sent bool) {
	outcome := "failed"
	if sent {
		outcome = "sent"
	}
	p.notifications.Add(ctx, 1, metric.WithAttributes(
		attribute.String("update", string(update)),
		attribute.String("outcome", outcome),
	))
}

// Shutdown flushes and stops the exporters.
func (p *Provider) Shutdown(ctx context.Context) error {
	var errs []error
	for _, fn := range p.shutdown {
		errs = append(errs, fn(ctx))
	}
	return errors.Join(errs...)
}

var _ shared.Telemetry = (*Provider)(nil)
