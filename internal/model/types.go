package model

import "time"

// Pane represents a terminal multiplexer pane.
type Pane struct {
	// ID is the multiplexer's stable pane identifier (e.g., "%3" for tmux).
	// Treated as an opaque lookup key.
	ID string `json:"id"`
	// Command is the current command running in the pane (e.g., "node", "bash").
	Command string `json:"command,omitempty"`
}

// Candidate is a (port, protocol) pair extracted from pane text during a
// single scan. Candidates are ephemeral — they are rebuilt from scratch
// every cycle and never persisted.
type Candidate struct {
	// Port is the extracted port number, always within [1024, 65535].
	Port int `json:"port"`
	// Protocol is one of "http", "https", "ws", "wss".
	Protocol string `json:"protocol"`
	// Path is the forward path, currently always "/".
	Path string `json:"path"`
}

// PortRecord is the persistent tracking state for a single detected port.
// One record exists per port number at most; PaneID, Protocol, and Path are
// written once at creation and never change.
type PortRecord struct {
	// Port is the tracked port number.
	Port int `json:"port"`
	// PaneID is the pane that first produced this port's candidate.
	PaneID string `json:"pane_id"`
	// Protocol and Path are copied from the originating candidate.
	Protocol string `json:"protocol"`
	Path     string `json:"path"`
	// DetectedAt is when the port was first sighted. Grace periods are
	// measured from this timestamp, not from the last successful probe.
	DetectedAt time.Time `json:"detected_at"`
	// WasActive latches true on the first successful probe and never
	// resets while the record lives.
	WasActive bool `json:"was_active"`
}

// MinPort and MaxPort bound the ports the extractor will ever report.
// Anything below 1024 is a privileged port and never a dev server.
const (
	MinPort = 1024
	MaxPort = 65535
)

// OptimisticMin and OptimisticMax bound the dev-port band for which
// forwarding is requested before reachability is confirmed. Frameworks in
// this range (Vite, Next.js, CRA, Django, ...) print their URL before the
// listener is fully bound.
const (
	OptimisticMin = 3000
	OptimisticMax = 9999
)

// InOptimisticBand reports whether a port falls in the speculative
// forwarding range.
func InOptimisticBand(port int) bool {
	return port >= OptimisticMin && port <= OptimisticMax
}

// ValidPort reports whether a port is within the accepted range.
func ValidPort(port int) bool {
	return port >= MinPort && port <= MaxPort
}
