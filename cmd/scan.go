package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/timvw/port-patrol/internal/extract"
	"github.com/timvw/port-patrol/internal/forwarder"
	"github.com/timvw/port-patrol/internal/model"
)

// paneScan is one pane's extraction result in the scan output.
type paneScan struct {
	PaneID     string            `json:"pane_id"`
	Broker     bool              `json:"broker,omitempty"`
	BrokerPort int               `json:"broker_port,omitempty"`
	Candidates []model.Candidate `json:"candidates"`
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Extract port candidates from all panes once",
	Long: `Capture every pane in the session once, run the dev-server patterns
against the scrollback, and print the extracted candidates as JSON.

No ports are probed and no lifecycle state is kept — this is a one-shot
view of what the pattern registry sees, useful for debugging detection.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		m, err := getMultiplexer()
		if err != nil {
			return err
		}

		panes, err := m.ListPanes(ctx, flagSession)
		if err != nil {
			return fmt.Errorf("failed to list panes: %w", err)
		}

		results := make([]paneScan, 0, len(panes))
		for _, pane := range panes {
			text, err := m.CapturePane(ctx, pane.ID, forwarder.DefaultCaptureLines)
			if err != nil {
				fmt.Fprintf(os.Stderr, "warning: capture %s: %v\n", pane.ID, err)
				continue
			}
			res := extract.Extract(text)
			ps := paneScan{
				PaneID:     pane.ID,
				Broker:     res.Broker,
				BrokerPort: res.BrokerPort,
				Candidates: res.Candidates,
			}
			if ps.Candidates == nil {
				ps.Candidates = []model.Candidate{}
			}
			results = append(results, ps)
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)
}
