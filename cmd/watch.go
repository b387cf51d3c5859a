package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/timvw/port-patrol/internal/config"
	"github.com/timvw/port-patrol/internal/probe"
	"github.com/timvw/port-patrol/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Interactive view of tracked ports",
	Long: `Run the same detection loop as 'monitor', but render tracked ports
in a terminal UI instead of streaming JSON events. No consumer required;
useful for checking what the patterns and the prober see.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		if flagSession != "" {
			cfg.Session = flagSession
		}

		m, err := getMultiplexer()
		if err != nil {
			return fmt.Errorf("no supported terminal multiplexer found: %w", err)
		}

		return watch.Run(watch.Options{
			Mux:          m,
			Prober:       probe.NewTCPProber(cfg.ProbeTimeoutDuration),
			Session:      cfg.Session,
			Interval:     cfg.IntervalDuration,
			CaptureLines: cfg.CaptureLines,
		})
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
