package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "port-patrol"

// Metrics holds all OTEL metric instruments for port-patrol.
// All counters are cumulative (monotonic) and safe for concurrent use.
type Metrics struct {
	// Poll loop counters
	Cycles       metric.Int64Counter // partitioned by outcome: ok, skipped
	PanesScanned metric.Int64Counter
	Candidates   metric.Int64Counter

	// Probe counters (partitioned by outcome: open, closed)
	Probes metric.Int64Counter

	// Emitted events (partitioned by event type)
	Events metric.Int64Counter
}

// NewMetrics creates all metric instruments. Returns no-op instruments
// when no MeterProvider is registered (safe to call unconditionally).
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	m.Cycles, err = meter.Int64Counter("poll.cycles",
		metric.WithDescription("Total poll cycles partitioned by outcome (ok, skipped)"))
	if err != nil {
		return nil, err
	}

	m.PanesScanned, err = meter.Int64Counter("poll.panes_scanned",
		metric.WithDescription("Total panes captured and scanned for candidates"))
	if err != nil {
		return nil, err
	}

	m.Candidates, err = meter.Int64Counter("poll.candidates",
		metric.WithDescription("Total port candidates extracted from pane text"))
	if err != nil {
		return nil, err
	}

	m.Probes, err = meter.Int64Counter("probe.attempts",
		metric.WithDescription("Total TCP reachability probes partitioned by outcome (open, closed)"))
	if err != nil {
		return nil, err
	}

	m.Events, err = meter.Int64Counter("events.emitted",
		metric.WithDescription("Total events written to the sink partitioned by event type"))
	if err != nil {
		return nil, err
	}

	return m, nil
}

// RecordCycle records a completed poll cycle with the given outcome.
func (m *Metrics) RecordCycle(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.Cycles.Add(ctx, 1, metric.WithAttributes(
		attribute.String("cycle.outcome", outcome),
	))
}

// RecordPanes records the number of panes scanned in a cycle.
func (m *Metrics) RecordPanes(ctx context.Context, n int) {
	if m == nil || n == 0 {
		return
	}
	m.PanesScanned.Add(ctx, int64(n))
}

// RecordCandidates records the number of candidates extracted in a cycle.
func (m *Metrics) RecordCandidates(ctx context.Context, n int) {
	if m == nil || n == 0 {
		return
	}
	m.Candidates.Add(ctx, int64(n))
}

// RecordProbe records one reachability probe outcome.
func (m *Metrics) RecordProbe(ctx context.Context, open bool) {
	if m == nil {
		return
	}
	outcome := "closed"
	if open {
		outcome = "open"
	}
	m.Probes.Add(ctx, 1, metric.WithAttributes(
		attribute.String("probe.outcome", outcome),
	))
}

// RecordEvent records one emitted event by type.
func (m *Metrics) RecordEvent(ctx context.Context, eventType string) {
	if m == nil {
		return
	}
	m.Events.Add(ctx, 1, metric.WithAttributes(
		attribute.String("event.type", eventType),
	))
}
