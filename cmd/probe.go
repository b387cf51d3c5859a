package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/timvw/port-patrol/internal/probe"
)

var flagProbeTimeout time.Duration

var probeCmd = &cobra.Command{
	Use:   "probe <port>",
	Short: "Check whether a local port accepts TCP connections",
	Long: `Attempt one TCP connection to localhost:<port> with a short timeout
and print the result as JSON. This is the same reachability check the
monitor loop uses to gate and sweep tracked ports.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		port, err := strconv.Atoi(args[0])
		if err != nil || port < 1 || port > 65535 {
			return fmt.Errorf("invalid port %q", args[0])
		}

		p := probe.NewTCPProber(flagProbeTimeout)
		open := p.Probe(cmd.Context(), port)

		enc := json.NewEncoder(os.Stdout)
		return enc.Encode(map[string]any{"port": port, "open": open})
	},
}

func init() {
	probeCmd.Flags().DurationVar(&flagProbeTimeout, "timeout", probe.DefaultTimeout, "connection timeout")
	rootCmd.AddCommand(probeCmd)
}
