package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/timvw/port-patrol/internal/mux"
)

// Version is injected at build time via -ldflags.
var Version = "dev"

var (
	// Global flags.
	flagMux     string
	flagSession string
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:   "port-patrol",
	Short: "Terminal pane monitor that detects dev servers and streams port events",
	Long: `port-patrol watches the scrollback of tmux panes for development server
signals (URLs, "listening on port N" banners, the broker ready-beacon),
correlates each signal with live TCP reachability, and streams port
lifecycle events as line-delimited JSON on stdout.

It is a best-effort heuristic signal generator: it announces availability,
it does not forward traffic or manage the servers it detects.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagMux, "mux", envOrDefault("PORT_PATROL_MUX", ""), "terminal multiplexer: tmux, zellij (default: auto-detect)")
	rootCmd.PersistentFlags().StringVar(&flagSession, "session", "", "tmux session to monitor (default: from config)")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "log degraded-visibility diagnostics to stderr")
}

// getMultiplexer returns the configured or auto-detected multiplexer.
func getMultiplexer() (mux.Multiplexer, error) {
	if flagMux != "" {
		return mux.FromName(flagMux)
	}
	return mux.Detect()
}

func envOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
