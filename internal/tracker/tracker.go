// Package tracker owns the per-port lifecycle state machine.
//
// A port moves through three states: untracked, tracked-inactive, and
// tracked-active. Admission is gated by the reachability probe, with an
// optimistic exception for the common dev-port band where frameworks
// announce their URL before the listener is bound. Closure is governed by
// a grace period measured from first detection, so a banner that scrolls
// out of the capture window doesn't kill a healthy port.
//
// All mutable registries (port records, broker ports, broker panes) live
// on a Tracker instance; tests construct a fresh Tracker per case.
package tracker

import (
	"context"
	"sort"
	"time"

	"github.com/timvw/port-patrol/internal/events"
	"github.com/timvw/port-patrol/internal/model"
	"github.com/timvw/port-patrol/internal/probe"
)

// Default grace periods before a continuously-unreachable port is declared
// closed. Ports in the optimistic band get longer because their servers
// routinely take tens of seconds between printing a URL and listening.
const (
	DefaultGraceOptimistic = 30 * time.Second
	DefaultGrace           = 10 * time.Second
)

// Config tunes a Tracker. Zero values select the defaults.
type Config struct {
	// GraceOptimistic applies to ports in [OptimisticMin, OptimisticMax].
	GraceOptimistic time.Duration
	// Grace applies to every other tracked port.
	Grace time.Duration
	// Now is the time source; nil means time.Now. Tests inject a fake.
	Now func() time.Time
}

// Tracker holds all tracked ports and broker state for one monitor run.
// It is owned by the single poll-loop goroutine and is not safe for
// concurrent use.
type Tracker struct {
	graceOptimistic time.Duration
	grace           time.Duration
	now             func() time.Time

	records     map[int]*model.PortRecord
	brokerPorts map[int]bool
	brokerPanes map[string]bool
}

// New creates an empty tracker.
func New(cfg Config) *Tracker {
	if cfg.GraceOptimistic <= 0 {
		cfg.GraceOptimistic = DefaultGraceOptimistic
	}
	if cfg.Grace <= 0 {
		cfg.Grace = DefaultGrace
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Tracker{
		graceOptimistic: cfg.GraceOptimistic,
		grace:           cfg.Grace,
		now:             cfg.Now,
		records:         make(map[int]*model.PortRecord),
		brokerPorts:     make(map[int]bool),
		brokerPanes:     make(map[string]bool),
	}
}

// Observe handles one candidate sighting. An already-tracked port is
// ignored — the per-cycle Sweep governs its fate. A new port is admitted
// only if it probes open or sits in the optimistic band; admission emits
// a PORT_REQUEST and the record starts active iff the probe succeeded.
// Returns nil when no event should be emitted.
func (t *Tracker) Observe(ctx context.Context, c model.Candidate, paneID string, prober probe.Prober) *events.Event {
	if _, tracked := t.records[c.Port]; tracked {
		return nil
	}

	active := prober.Probe(ctx, c.Port)
	if !active && !model.InOptimisticBand(c.Port) {
		return nil
	}

	t.records[c.Port] = &model.PortRecord{
		Port:       c.Port,
		PaneID:     paneID,
		Protocol:   c.Protocol,
		Path:       c.Path,
		DetectedAt: t.now(),
		WasActive:  active,
	}

	ev := events.PortRequest(c.Port, c.Protocol, c.Path)
	return &ev
}

// Sweep probes every tracked port, regardless of whether it appeared in
// this cycle's text. A port that newly probes open flips its was_active
// latch and re-announces itself (the optimistic announcement may have been
// premature). A port that keeps failing past its grace period is dropped
// with a PORT_CLOSED. Events are returned in ascending port order.
func (t *Tracker) Sweep(ctx context.Context, prober probe.Prober) []events.Event {
	ports := make([]int, 0, len(t.records))
	for port := range t.records {
		ports = append(ports, port)
	}
	sort.Ints(ports)

	var evs []events.Event
	for _, port := range ports {
		rec := t.records[port]
		active := prober.Probe(ctx, port)

		if active {
			if !rec.WasActive {
				rec.WasActive = true
				evs = append(evs, events.PortRequest(port, rec.Protocol, rec.Path))
			}
			continue
		}

		if t.now().Sub(rec.DetectedAt) > t.gracePeriod(port) {
			delete(t.records, port)
			evs = append(evs, events.PortClosed(port, rec.Protocol))
		}
	}
	return evs
}

// MarkBroker records the beacon sighting. The pane is always excluded from
// future scanning; the return value is true only the first time this port's
// beacon is seen, which is when BROKER_READY should be emitted.
func (t *Tracker) MarkBroker(port int, paneID string) bool {
	t.brokerPanes[paneID] = true
	if t.brokerPorts[port] {
		return false
	}
	t.brokerPorts[port] = true
	return true
}

// IsBrokerPane reports whether a pane has been marked as running the
// broker. Broker panes are never scanned for dev-server URLs.
func (t *Tracker) IsBrokerPane(paneID string) bool {
	return t.brokerPanes[paneID]
}

// Tracked returns a snapshot of all current port records in ascending
// port order.
func (t *Tracker) Tracked() []model.PortRecord {
	out := make([]model.PortRecord, 0, len(t.records))
	for _, rec := range t.records {
		out = append(out, *rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Port < out[j].Port })
	return out
}

func (t *Tracker) gracePeriod(port int) time.Duration {
	if model.InOptimisticBand(port) {
		return t.graceOptimistic
	}
	return t.grace
}
