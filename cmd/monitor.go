package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/timvw/port-patrol/internal/config"
	"github.com/timvw/port-patrol/internal/events"
	"github.com/timvw/port-patrol/internal/forwarder"
	telem "github.com/timvw/port-patrol/internal/otel"
	"github.com/timvw/port-patrol/internal/probe"
	"github.com/timvw/port-patrol/internal/tracker"
)

var flagInterval string

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Continuously monitor panes and stream port lifecycle events",
	Long: `Poll every pane of the configured tmux session, extract dev-server
signals from the scrollback, probe detected ports for TCP reachability,
and write lifecycle events as line-delimited JSON on stdout:

  {"type":"FORWARDER_STARTED","tmux_session":"...","pid":...}
  {"type":"BROKER_READY","port":...}
  {"type":"PORT_REQUEST","port":...,"protocol":"...","path":"..."}
  {"type":"PORT_CLOSED","port":...,"protocol":"..."}

The loop stops cleanly on SIGINT/SIGTERM or when the stdout consumer
disconnects. Diagnostics go to stderr; stdout is the event stream only.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMonitor()
	},
}

func init() {
	monitorCmd.Flags().StringVar(&flagInterval, "interval", "", "poll interval, e.g. 200ms (default: from config)")
	rootCmd.AddCommand(monitorCmd)
}

func runMonitor() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration: defaults -> config file -> env vars.
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if cfg.ConfigFile != "" {
		fmt.Fprintf(os.Stderr, "config: loaded %s\n", cfg.ConfigFile)
	}

	// Flags override config.
	if flagSession != "" {
		cfg.Session = flagSession
	}
	if flagInterval != "" {
		cfg.Interval = flagInterval
		if cfg.IntervalDuration, err = parseInterval(flagInterval); err != nil {
			return err
		}
	}

	// Wire build version into OTEL service metadata.
	telem.Version = Version

	// Initialize OTEL (no-op if no endpoint configured).
	tel, err := telem.Init(ctx, telem.OTELConfig{
		Endpoint: cfg.OTELEndpoint,
		Headers:  cfg.OTELHeaders,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: otel init failed: %v\n", err)
	}
	if tel != nil {
		defer tel.Shutdown(ctx)
	}

	m, err := getMultiplexer()
	if err != nil {
		return fmt.Errorf("no supported terminal multiplexer found: %w", err)
	}

	var metrics *telem.Metrics
	if tel != nil {
		metrics = tel.Metrics
	}

	f := &forwarder.Forwarder{
		Mux:    m,
		Prober: probe.NewTCPProber(cfg.ProbeTimeoutDuration),
		Tracker: tracker.New(tracker.Config{
			Grace:           cfg.GraceDuration,
			GraceOptimistic: cfg.GraceOptimisticDuration,
		}),
		Sink:         events.NewEmitter(os.Stdout),
		Session:      cfg.Session,
		Interval:     cfg.IntervalDuration,
		CaptureLines: cfg.CaptureLines,
		Metrics:      metrics,
		Verbose:      flagVerbose,
	}

	return f.Run(ctx)
}

func parseInterval(s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid interval %q: %w", s, err)
	}
	return d, nil
}
