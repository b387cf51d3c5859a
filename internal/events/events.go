// Package events defines the line-delimited JSON event stream consumed by
// the controlling client.
package events

// Event types. Each event is one complete JSON object on one line.
const (
	TypeForwarderStarted = "FORWARDER_STARTED"
	TypeBrokerReady      = "BROKER_READY"
	TypePortRequest      = "PORT_REQUEST"
	TypePortClosed       = "PORT_CLOSED"
)

// Event is a single lifecycle event. Unused fields are omitted from the
// wire format, so one struct covers all event types.
type Event struct {
	Type        string `json:"type"`
	TmuxSession string `json:"tmux_session,omitempty"`
	PID         int    `json:"pid,omitempty"`
	Port        int    `json:"port,omitempty"`
	Protocol    string `json:"protocol,omitempty"`
	Path        string `json:"path,omitempty"`
}

// ForwarderStarted is emitted exactly once at startup.
func ForwarderStarted(session string, pid int) Event {
	return Event{Type: TypeForwarderStarted, TmuxSession: session, PID: pid}
}

// BrokerReady is emitted at most once per broker port.
func BrokerReady(port int) Event {
	return Event{Type: TypeBrokerReady, Port: port}
}

// PortRequest announces a port as available for forwarding. The consumer
// must tolerate duplicates for the same port: an optimistic announcement
// may be followed by a second one when the port actually comes up.
func PortRequest(port int, protocol, path string) Event {
	return Event{Type: TypePortRequest, Port: port, Protocol: protocol, Path: path}
}

// PortClosed announces that a previously requested port is gone.
func PortClosed(port int, protocol string) Event {
	return Event{Type: TypePortClosed, Port: port, Protocol: protocol}
}
