// Package forwarder drives the fixed-interval poll loop that ties pane
// capture, signal extraction, reachability probing, and event emission
// together.
//
// The cardinal rule here is that the event stream must never silently die:
// multiplexer failures degrade to empty results, probe failures are just
// "closed", and anything unexpected inside a cycle (including panics) is
// logged to stderr and skipped. The only two ways out of the loop are
// context cancellation and a disconnected sink.
package forwarder

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/timvw/port-patrol/internal/events"
	"github.com/timvw/port-patrol/internal/extract"
	"github.com/timvw/port-patrol/internal/mux"
	ppotel "github.com/timvw/port-patrol/internal/otel"
	"github.com/timvw/port-patrol/internal/probe"
	"github.com/timvw/port-patrol/internal/tracker"
)

var tracer = otel.Tracer("port-patrol")

// DefaultInterval is the sleep between poll cycles. Fast polling keeps
// detection latency sub-second.
const DefaultInterval = 200 * time.Millisecond

// DefaultCaptureLines is how much scrollback to capture per pane.
const DefaultCaptureLines = 500

// Forwarder is the poll loop orchestrator.
type Forwarder struct {
	Mux     mux.Multiplexer
	Prober  probe.Prober
	Tracker *tracker.Tracker
	Sink    events.Sink

	// Session is the tmux session to monitor.
	Session string
	// Interval between cycles; zero means DefaultInterval.
	Interval time.Duration
	// CaptureLines per pane; zero means DefaultCaptureLines.
	CaptureLines int

	Metrics *ppotel.Metrics // nil-safe
	Verbose bool
}

// Run emits FORWARDER_STARTED and then polls until the context is
// cancelled or the sink disconnects. A cancelled context is a clean
// shutdown and returns nil; so is sink disconnect — the consumer controls
// this process's lifetime, its departure is not an error.
func (f *Forwarder) Run(ctx context.Context) error {
	if err := f.emit(ctx, events.ForwarderStarted(f.Session, os.Getpid())); err != nil {
		return nil
	}

	interval := f.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		if err := f.Cycle(ctx); err != nil {
			if errors.Is(err, events.ErrSinkClosed) {
				f.logf("sink disconnected, stopping")
				return nil
			}
			// Anything else is absorbed: log and keep polling.
			f.logf("cycle skipped: %v", err)
			f.Metrics.RecordCycle(ctx, "skipped")
			continue
		}
		f.Metrics.RecordCycle(ctx, "ok")
	}
}

// Cycle executes one poll cycle with panic recovery. A panicking cycle is
// reported as a skipped cycle, never as a crash of the stream.
func (f *Forwarder) Cycle(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in cycle: %v", r)
		}
	}()
	return f.cycle(ctx)
}

// cycle scans all non-broker panes for candidates, then sweeps every
// tracked port. Only a dead sink is returned as an error; everything else
// degrades locally.
func (f *Forwarder) cycle(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "cycle",
		trace.WithAttributes(attribute.String("session", f.Session)))
	defer span.End()

	panes, err := f.Mux.ListPanes(ctx, f.Session)
	if err != nil {
		// Session absent or tmux gone: degraded visibility, not fatal.
		// The sweep below still runs so tracked ports age out normally.
		if f.Verbose {
			f.logf("list panes: %v", err)
		}
		panes = nil
	}

	scanned := 0
	candidates := 0
	for _, pane := range panes {
		if f.Tracker.IsBrokerPane(pane.ID) {
			continue
		}

		lines := f.CaptureLines
		if lines <= 0 {
			lines = DefaultCaptureLines
		}
		text, err := f.Mux.CapturePane(ctx, pane.ID, lines)
		if err != nil {
			if f.Verbose {
				f.logf("capture %s: %v", pane.ID, err)
			}
			continue
		}
		scanned++

		res := extract.Extract(text)
		if res.Broker {
			if f.Tracker.MarkBroker(res.BrokerPort, pane.ID) {
				if err := f.emit(ctx, events.BrokerReady(res.BrokerPort)); err != nil {
					return err
				}
			}
			continue
		}

		candidates += len(res.Candidates)
		for _, c := range res.Candidates {
			if ev := f.Tracker.Observe(ctx, c, pane.ID, f.instrumentedProber()); ev != nil {
				if err := f.emit(ctx, *ev); err != nil {
					return err
				}
			}
		}
	}

	for _, ev := range f.Tracker.Sweep(ctx, f.instrumentedProber()) {
		if err := f.emit(ctx, ev); err != nil {
			return err
		}
	}

	f.Metrics.RecordPanes(ctx, scanned)
	f.Metrics.RecordCandidates(ctx, candidates)
	span.SetAttributes(
		attribute.Int("panes.scanned", scanned),
		attribute.Int("candidates", candidates),
		attribute.Int("ports.tracked", len(f.Tracker.Tracked())),
	)
	return nil
}

// emit writes one event and records it on the metrics counters.
func (f *Forwarder) emit(ctx context.Context, ev events.Event) error {
	if err := f.Sink.Emit(ev); err != nil {
		return err
	}
	f.Metrics.RecordEvent(ctx, ev.Type)
	return nil
}

// instrumentedProber wraps the prober so every probe lands on the metrics
// counters.
func (f *Forwarder) instrumentedProber() probe.Prober {
	return proberFunc(func(ctx context.Context, port int) bool {
		open := f.Prober.Probe(ctx, port)
		f.Metrics.RecordProbe(ctx, open)
		return open
	})
}

type proberFunc func(ctx context.Context, port int) bool

func (fn proberFunc) Probe(ctx context.Context, port int) bool {
	return fn(ctx, port)
}

// logf writes diagnostics to stderr. Stdout carries only the event stream.
func (f *Forwarder) logf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "port-patrol: "+format+"\n", args...)
}
