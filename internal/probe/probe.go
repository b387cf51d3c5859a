// Package probe answers a single question: is something accepting TCP
// connections on a local port right now?
package probe

import (
	"context"
	"net"
	"strconv"
	"time"
)

// DefaultTimeout bounds how long a single probe may block the poll loop.
const DefaultTimeout = 1 * time.Second

// Prober checks whether a local port has an active listener.
type Prober interface {
	// Probe returns true if localhost:port accepts a TCP connection.
	// Any failure (refused, timeout, unreachable) is false, never an error.
	Probe(ctx context.Context, port int) bool
}

// TCPProber dials localhost with a fixed short timeout.
type TCPProber struct {
	// Timeout for a single connection attempt. Zero means DefaultTimeout.
	Timeout time.Duration
}

// NewTCPProber creates a prober with the given timeout (0 for default).
func NewTCPProber(timeout time.Duration) *TCPProber {
	return &TCPProber{Timeout: timeout}
}

// Probe attempts a TCP connection to localhost:port.
func (p *TCPProber) Probe(ctx context.Context, port int) bool {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, "tcp", net.JoinHostPort("localhost", strconv.Itoa(port)))
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

// Func adapts a plain function to the Prober interface. Used by tests to
// script probe outcomes.
type Func func(port int) bool

func (f Func) Probe(_ context.Context, port int) bool {
	return f(port)
}
