package mux

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/timvw/port-patrol/internal/model"
)

// Tmux implements the Multiplexer interface for tmux.
type Tmux struct{}

// NewTmux creates a new tmux multiplexer.
func NewTmux() *Tmux {
	return &Tmux{}
}

// Name returns "tmux".
func (t *Tmux) Name() string {
	return "tmux"
}

// ListPanes returns all panes in the named session (all windows via -s).
// An empty session lists panes across every session (-a).
func (t *Tmux) ListPanes(ctx context.Context, session string) ([]model.Pane, error) {
	format := "#{pane_id}\t#{pane_current_command}"
	var args []string
	if session == "" {
		args = []string{"list-panes", "-a", "-F", format}
	} else {
		args = []string{"list-panes", "-t", session, "-s", "-F", format}
	}
	out, err := t.run(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("tmux list-panes: %w", err)
	}

	var panes []model.Pane
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, "\t", 2)
		pane := model.Pane{ID: parts[0]}
		if len(parts) == 2 {
			pane.Command = parts[1]
		}
		panes = append(panes, pane)
	}

	return panes, nil
}

// CapturePane captures the last `lines` lines of a pane, including
// scrollback. Uses -p (stdout) and -S with a negative offset so banners
// that scrolled off-screen are still visible.
func (t *Tmux) CapturePane(ctx context.Context, paneID string, lines int) (string, error) {
	if lines <= 0 {
		lines = 500
	}
	out, err := t.run(ctx, "capture-pane", "-t", paneID, "-p", "-S", "-"+strconv.Itoa(lines))
	if err != nil {
		return "", fmt.Errorf("tmux capture-pane -t %s: %w", paneID, err)
	}
	return out, nil
}

// run executes a tmux command and returns its stdout.
func (t *Tmux) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "tmux", args...)
	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return "", fmt.Errorf("%w: %s", err, string(exitErr.Stderr))
		}
		return "", err
	}
	return string(out), nil
}
