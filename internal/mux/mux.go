// Package mux provides an abstraction over terminal multiplexers (tmux, zellij).
//
// This package is pure transport. It enumerates panes and captures their
// rendered scrollback without interpreting any of it. All judgment calls
// (which text means a server started) live in the extract package.
package mux

import (
	"context"

	"github.com/timvw/port-patrol/internal/model"
)

// Multiplexer abstracts terminal multiplexer operations.
// Implementations exist for tmux and (future) zellij.
type Multiplexer interface {
	// Name returns the multiplexer name (e.g., "tmux", "zellij").
	Name() string

	// ListPanes returns all panes in the named session.
	// An empty session name returns panes from all sessions.
	ListPanes(ctx context.Context, session string) ([]model.Pane, error)

	// CapturePane captures the last `lines` lines of a pane's rendered
	// output, including scrollback. The pane ID format depends on the
	// multiplexer (e.g., "%3" for tmux).
	CapturePane(ctx context.Context, paneID string, lines int) (string, error)
}
