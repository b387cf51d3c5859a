package tracker

import (
	"context"
	"testing"
	"time"

	"github.com/timvw/port-patrol/internal/events"
	"github.com/timvw/port-patrol/internal/model"
	"github.com/timvw/port-patrol/internal/probe"
)

// fakeClock is a manually-advanced time source.
type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) now() time.Time {
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.t = c.t.Add(d)
}

func newTestTracker(clock *fakeClock) *Tracker {
	return New(Config{Now: clock.now})
}

func closedProber() probe.Prober {
	return probe.Func(func(int) bool { return false })
}

func openProber() probe.Prober {
	return probe.Func(func(int) bool { return true })
}

func candidate(port int) model.Candidate {
	return model.Candidate{Port: port, Protocol: "http", Path: "/"}
}

func TestObserve_OptimisticBandAdmitsWithoutProbe(t *testing.T) {
	tr := newTestTracker(newFakeClock())

	ev := tr.Observe(context.Background(), candidate(3000), "%1", closedProber())
	if ev == nil {
		t.Fatal("expected PORT_REQUEST for optimistic-band port")
	}
	if ev.Type != events.TypePortRequest || ev.Port != 3000 || ev.Protocol != "http" || ev.Path != "/" {
		t.Errorf("unexpected event: %+v", ev)
	}

	recs := tr.Tracked()
	if len(recs) != 1 {
		t.Fatalf("expected one record, got %d", len(recs))
	}
	if recs[0].WasActive {
		t.Error("record should start inactive when the probe failed")
	}
	if recs[0].PaneID != "%1" {
		t.Errorf("pane id: got %q, want %q", recs[0].PaneID, "%1")
	}
}

func TestObserve_OutOfBandRequiresProbe(t *testing.T) {
	tr := newTestTracker(newFakeClock())

	if ev := tr.Observe(context.Background(), candidate(2000), "%1", closedProber()); ev != nil {
		t.Fatalf("port 2000 with failed probe must not be admitted, got %+v", ev)
	}
	if len(tr.Tracked()) != 0 {
		t.Fatal("no record should exist")
	}

	ev := tr.Observe(context.Background(), candidate(2000), "%1", openProber())
	if ev == nil {
		t.Fatal("expected PORT_REQUEST once the probe succeeds")
	}
	recs := tr.Tracked()
	if len(recs) != 1 || !recs[0].WasActive {
		t.Errorf("record should start active when admitted via probe: %+v", recs)
	}
}

func TestObserve_DuplicateSightingIgnored(t *testing.T) {
	tr := newTestTracker(newFakeClock())

	if ev := tr.Observe(context.Background(), candidate(3000), "%1", closedProber()); ev == nil {
		t.Fatal("first sighting should emit")
	}
	if ev := tr.Observe(context.Background(), candidate(3000), "%2", openProber()); ev != nil {
		t.Errorf("second sighting of a tracked port must be silent, got %+v", ev)
	}
	if len(tr.Tracked()) != 1 {
		t.Fatal("still exactly one record")
	}
}

func TestSweep_ActivationReemitsRequest(t *testing.T) {
	clock := newFakeClock()
	tr := newTestTracker(clock)
	ctx := context.Background()

	tr.Observe(ctx, candidate(3000), "%1", closedProber())

	evs := tr.Sweep(ctx, openProber())
	if len(evs) != 1 {
		t.Fatalf("expected one activation event, got %v", evs)
	}
	if evs[0].Type != events.TypePortRequest || evs[0].Port != 3000 {
		t.Errorf("unexpected event: %+v", evs[0])
	}
	if !tr.Tracked()[0].WasActive {
		t.Error("was_active should latch after activation")
	}

	// Still active: no further events.
	if evs := tr.Sweep(ctx, openProber()); len(evs) != 0 {
		t.Errorf("active port must not re-emit, got %v", evs)
	}
}

func TestSweep_WasActiveIsMonotonic(t *testing.T) {
	clock := newFakeClock()
	tr := newTestTracker(clock)
	ctx := context.Background()

	tr.Observe(ctx, candidate(3000), "%1", openProber())

	// Probe failures inside the grace period neither reset the latch nor
	// emit anything.
	clock.advance(5 * time.Second)
	if evs := tr.Sweep(ctx, closedProber()); len(evs) != 0 {
		t.Errorf("failing probe inside grace must be silent, got %v", evs)
	}
	if !tr.Tracked()[0].WasActive {
		t.Error("was_active must not revert on probe failure")
	}

	// Coming back does not re-emit either: the latch was never cleared.
	if evs := tr.Sweep(ctx, openProber()); len(evs) != 0 {
		t.Errorf("re-activation of a latched port must be silent, got %v", evs)
	}
}

func TestSweep_OptimisticGracePeriod(t *testing.T) {
	clock := newFakeClock()
	tr := newTestTracker(clock)
	ctx := context.Background()

	tr.Observe(ctx, candidate(3000), "%1", closedProber())

	// 30 time-units from detection: not yet expired (strictly greater).
	clock.advance(30 * time.Second)
	if evs := tr.Sweep(ctx, closedProber()); len(evs) != 0 {
		t.Fatalf("port must survive exactly the grace period, got %v", evs)
	}

	clock.advance(1 * time.Second)
	evs := tr.Sweep(ctx, closedProber())
	if len(evs) != 1 {
		t.Fatalf("expected PORT_CLOSED after grace expiry, got %v", evs)
	}
	if evs[0].Type != events.TypePortClosed || evs[0].Port != 3000 || evs[0].Protocol != "http" {
		t.Errorf("unexpected event: %+v", evs[0])
	}
	if len(tr.Tracked()) != 0 {
		t.Error("record must be deleted on closure")
	}
}

func TestSweep_StandardGracePeriod(t *testing.T) {
	clock := newFakeClock()
	tr := newTestTracker(clock)
	ctx := context.Background()

	// Out-of-band port admitted while briefly reachable.
	tr.Observe(ctx, candidate(2500), "%1", openProber())

	clock.advance(10 * time.Second)
	if evs := tr.Sweep(ctx, closedProber()); len(evs) != 0 {
		t.Fatalf("port must survive 10s, got %v", evs)
	}

	clock.advance(1 * time.Second)
	evs := tr.Sweep(ctx, closedProber())
	if len(evs) != 1 || evs[0].Type != events.TypePortClosed {
		t.Fatalf("expected PORT_CLOSED after 10s grace, got %v", evs)
	}
}

func TestSweep_GraceMeasuredFromDetection(t *testing.T) {
	clock := newFakeClock()
	tr := newTestTracker(clock)
	ctx := context.Background()

	tr.Observe(ctx, candidate(3000), "%1", closedProber())

	// Active for a long stretch; the grace window does not roll forward.
	for i := 0; i < 5; i++ {
		clock.advance(20 * time.Second)
		tr.Sweep(ctx, openProber())
	}

	// Detection was over 100s ago, so the first failing sweep closes it.
	evs := tr.Sweep(ctx, closedProber())
	if len(evs) != 1 || evs[0].Type != events.TypePortClosed {
		t.Fatalf("expected immediate closure past the fixed window, got %v", evs)
	}
}

func TestSweep_FullLifecycleScenario(t *testing.T) {
	clock := newFakeClock()
	tr := newTestTracker(clock)
	ctx := context.Background()

	// Fresh pane prints "Local: http://localhost:3000", probe fails:
	// optimistic PORT_REQUEST.
	ev := tr.Observe(ctx, candidate(3000), "%1", closedProber())
	if ev == nil || ev.Type != events.TypePortRequest {
		t.Fatalf("expected optimistic PORT_REQUEST, got %+v", ev)
	}

	// Next cycle the probe succeeds: second PORT_REQUEST, latch set.
	clock.advance(200 * time.Millisecond)
	evs := tr.Sweep(ctx, openProber())
	if len(evs) != 1 || evs[0].Type != events.TypePortRequest {
		t.Fatalf("expected activation PORT_REQUEST, got %v", evs)
	}

	// Probe then fails for 31 time-units past detection: PORT_CLOSED.
	clock.advance(31 * time.Second)
	evs = tr.Sweep(ctx, closedProber())
	if len(evs) != 1 || evs[0].Type != events.TypePortClosed {
		t.Fatalf("expected PORT_CLOSED, got %v", evs)
	}
	if evs[0].Port != 3000 || evs[0].Protocol != "http" {
		t.Errorf("unexpected closure payload: %+v", evs[0])
	}
	if len(tr.Tracked()) != 0 {
		t.Error("record must be removed")
	}
}

func TestSweep_EventsInPortOrder(t *testing.T) {
	clock := newFakeClock()
	tr := newTestTracker(clock)
	ctx := context.Background()

	tr.Observe(ctx, candidate(9000), "%1", closedProber())
	tr.Observe(ctx, candidate(3000), "%1", closedProber())
	tr.Observe(ctx, candidate(5000), "%1", closedProber())

	evs := tr.Sweep(ctx, openProber())
	if len(evs) != 3 {
		t.Fatalf("expected three activations, got %v", evs)
	}
	for i, want := range []int{3000, 5000, 9000} {
		if evs[i].Port != want {
			t.Errorf("event %d: got port %d, want %d", i, evs[i].Port, want)
		}
	}
}

func TestMarkBroker_OncePerPort(t *testing.T) {
	tr := newTestTracker(newFakeClock())

	if !tr.MarkBroker(9999, "%1") {
		t.Fatal("first beacon sighting should report true")
	}
	if tr.MarkBroker(9999, "%1") {
		t.Error("re-observed beacon must not report true again")
	}
	// Another pane printing the same beacon: still no duplicate event, but
	// the pane is excluded anyway.
	if tr.MarkBroker(9999, "%2") {
		t.Error("same port from another pane must not report true")
	}
	if !tr.IsBrokerPane("%1") || !tr.IsBrokerPane("%2") {
		t.Error("both panes should be marked as broker panes")
	}
	if tr.IsBrokerPane("%3") {
		t.Error("unrelated pane must not be marked")
	}
}
