// Package watch provides a small interactive view of the tracker state.
//
// It drives the same poll cycle as the monitor command but renders tracked
// ports in a terminal UI instead of writing events to stdout. A debugging
// surface: useful for checking what the pattern registry and prober see
// without wiring up a JSON consumer.
package watch

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/timvw/port-patrol/internal/events"
	"github.com/timvw/port-patrol/internal/forwarder"
	"github.com/timvw/port-patrol/internal/model"
	"github.com/timvw/port-patrol/internal/mux"
	"github.com/timvw/port-patrol/internal/probe"
	"github.com/timvw/port-patrol/internal/tracker"
)

// Styles
var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	activeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")) // green
	pendStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11")) // yellow
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9")) // red
)

const maxLogLines = 8

// Options configures the watch TUI.
type Options struct {
	Mux          mux.Multiplexer
	Prober       probe.Prober
	Session      string
	Interval     time.Duration
	CaptureLines int
}

// collector buffers events produced during a cycle so the model can show
// them instead of streaming them anywhere.
type collector struct {
	mu  sync.Mutex
	evs []events.Event
}

func (c *collector) Emit(ev events.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.evs = append(c.evs, ev)
	return nil
}

func (c *collector) drain() []events.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	evs := c.evs
	c.evs = nil
	return evs
}

// messages
type tickMsg struct{}

type cycleMsg struct {
	records []model.PortRecord
	evs     []events.Event
	err     error
}

type watchModel struct {
	fwd      *forwarder.Forwarder
	sink     *collector
	interval time.Duration

	spin    spinner.Model
	records []model.PortRecord
	log     []string
	cycles  int
	lastErr error
}

// Run starts the watch TUI and blocks until the user quits.
func Run(opts Options) error {
	if opts.Interval <= 0 {
		opts.Interval = forwarder.DefaultInterval
	}

	sink := &collector{}
	m := &watchModel{
		fwd: &forwarder.Forwarder{
			Mux:          opts.Mux,
			Prober:       opts.Prober,
			Tracker:      tracker.New(tracker.Config{}),
			Sink:         sink,
			Session:      opts.Session,
			CaptureLines: opts.CaptureLines,
		},
		sink:     sink,
		interval: opts.Interval,
		spin:     spinner.New(spinner.WithSpinner(spinner.Dot)),
	}

	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

func (m *watchModel) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.cycleCmd())
}

// cycleCmd runs one poll cycle off the Update goroutine and reports the
// resulting tracker snapshot and events.
func (m *watchModel) cycleCmd() tea.Cmd {
	return func() tea.Msg {
		err := m.fwd.Cycle(context.Background())
		return cycleMsg{
			records: m.fwd.Tracker.Tracked(),
			evs:     m.sink.drain(),
			err:     err,
		}
	}
}

// scheduleTick delays the next cycle by the poll interval.
func (m *watchModel) scheduleTick() tea.Cmd {
	return tea.Tick(m.interval, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

func (m *watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}

	case tickMsg:
		return m, m.cycleCmd()

	case cycleMsg:
		m.cycles++
		m.records = msg.records
		m.lastErr = msg.err
		for _, ev := range msg.evs {
			m.log = append(m.log, formatEvent(ev))
		}
		if len(m.log) > maxLogLines {
			m.log = m.log[len(m.log)-maxLogLines:]
		}
		return m, m.scheduleTick()

	default:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *watchModel) View() string {
	var b strings.Builder

	session := m.fwd.Session
	if session == "" {
		session = "(all sessions)"
	}
	b.WriteString(titleStyle.Render("port-patrol watch"))
	b.WriteString(dimStyle.Render(fmt.Sprintf("  %s %s · cycle %d", m.spin.View(), session, m.cycles)))
	b.WriteString("\n\n")

	if m.lastErr != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("last cycle: %v", m.lastErr)))
		b.WriteString("\n\n")
	}

	b.WriteString(headerStyle.Render(fmt.Sprintf("%-7s %-6s %-8s %-8s %s", "PORT", "PROTO", "STATE", "AGE", "PANE")))
	b.WriteString("\n")
	if len(m.records) == 0 {
		b.WriteString(dimStyle.Render("no tracked ports"))
		b.WriteString("\n")
	}
	for _, rec := range m.records {
		state := pendStyle.Render("pending")
		if rec.WasActive {
			state = activeStyle.Render("active ")
		}
		age := time.Since(rec.DetectedAt).Round(time.Second)
		b.WriteString(fmt.Sprintf("%-7d %-6s %s %-8s %s\n",
			rec.Port, rec.Protocol, state, age, rec.PaneID))
	}

	if len(m.log) > 0 {
		b.WriteString("\n")
		b.WriteString(headerStyle.Render("recent events"))
		b.WriteString("\n")
		for _, line := range m.log {
			b.WriteString(dimStyle.Render(line))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("q quit"))
	return b.String()
}

func formatEvent(ev events.Event) string {
	switch ev.Type {
	case events.TypePortRequest:
		return fmt.Sprintf("%s %d %s%s", ev.Type, ev.Port, ev.Protocol, ev.Path)
	case events.TypePortClosed:
		return fmt.Sprintf("%s %d %s", ev.Type, ev.Port, ev.Protocol)
	case events.TypeBrokerReady:
		return fmt.Sprintf("%s %d", ev.Type, ev.Port)
	default:
		return ev.Type
	}
}
