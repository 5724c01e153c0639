package metrics

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ServiceName      string
}

// ShutdownFunc flushes and stops a meter provider.
type ShutdownFunc func(context.Context) error

// NewProvider configures and registers the global meter provider. When metrics
// are disabled a no-op provider is installed.
func NewProvider(cfg Config) (metric.MeterProvider, ShutdownFunc, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, func(context.Context) error { return nil }, nil
	}

	opts := []otlpmetrichttp.Option{}
	if cfg.ExporterEndpoint != "" {
		opts = append(opts, otlpmetrichttp.WithEndpoint(cfg.ExporterEndpoint))
	}
	exporter, err := otlpmetrichttp.New(context.Background(), opts...)
	if err != nil {
		return nil, nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(15*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)
	return provider, provider.Shutdown, nil
}

// Ledger exposes the ledger's instruments.
// A nil *Ledger is valid and records nothing.
type Ledger struct {
	entriesPosted    metric.Int64Counter
	entriesReversed  metric.Int64Counter
	postingsReplayed metric.Int64Counter
	postingsRejected metric.Int64Counter
	eventsProcessed  metric.Int64Counter
}

// New creates the ledger instruments on provider.
func New(serviceName string, provider metric.MeterProvider) (*Ledger, error) {
	name := strings.TrimSpace(serviceName)
	if name == "" {
		name = "tenant_ledger"
	}
	meter := provider.Meter(name)

	entriesPosted, err := meter.Int64Counter("ledger_entries_posted_total",
		metric.WithDescription("Journal entries posted"))
	if err != nil {
		return nil, err
	}
	entriesReversed, err := meter.Int64Counter("ledger_entries_reversed_total",
		metric.WithDescription("Journal entries reversed"))
	if err != nil {
		return nil, err
	}
	postingsReplayed, err := meter.Int64Counter("ledger_postings_replayed_total",
		metric.WithDescription("Postings answered from an earlier result for the same source event"))
	if err != nil {
		return nil, err
	}
	postingsRejected, err := meter.Int64Counter("ledger_postings_rejected_total",
		metric.WithDescription("Postings rejected by validation"))
	if err != nil {
		return nil, err
	}
	eventsProcessed, err := meter.Int64Counter("ledger_events_processed_total",
		metric.WithDescription("Upstream events processed by outcome"))
	if err != nil {
		return nil, err
	}

	return &Ledger{
		entriesPosted:    entriesPosted,
		entriesReversed:  entriesReversed,
		postingsReplayed: postingsReplayed,
		postingsRejected: postingsRejected,
		eventsProcessed:  eventsProcessed,
	}, nil
}

// NewNoop returns instruments backed by a no-op provider.
func NewNoop() *Ledger {
	l, _ := New("", noop.NewMeterProvider())
	return l
}

// RecordEntryPosted increments posted entry counts.
func (l *Ledger) RecordEntryPosted(ctx context.Context, sourceType string) {
	if l == nil {
		return
	}
	l.entriesPosted.Add(ctx, 1, metric.WithAttributes(attribute.String("source_type", strings.TrimSpace(sourceType))))
}

// RecordEntryReversed increments reversal counts.
func (l *Ledger) RecordEntryReversed(ctx context.Context) {
	if l == nil {
		return
	}
	l.entriesReversed.Add(ctx, 1)
}

// RecordReplay increments idempotent replay counts.
func (l *Ledger) RecordReplay(ctx context.Context, sourceType string) {
	if l == nil {
		return
	}
	l.postingsReplayed.Add(ctx, 1, metric.WithAttributes(attribute.String("source_type", strings.TrimSpace(sourceType))))
}

// RecordRejection increments rejected posting counts by error code.
func (l *Ledger) RecordRejection(ctx context.Context, code string) {
	if l == nil {
		return
	}
	l.postingsRejected.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", code)))
}

// RecordEvent increments processed event counts.
func (l *Ledger) RecordEvent(ctx context.Context, eventType, outcome string) {
	if l == nil {
		return
	}
	l.eventsProcessed.Add(ctx, 1, metric.WithAttributes(
		attribute.String("event_type", eventType),
		attribute.String("outcome", outcome),
	))
}
