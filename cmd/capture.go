package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/timvw/port-patrol/internal/forwarder"
)

var flagCaptureLines int

var captureCmd = &cobra.Command{
	Use:   "capture <pane-id>",
	Short: "Capture the recent scrollback of a pane",
	Long: `Capture the last N lines of a pane's rendered output and print it
to stdout. This is pure transport — no interpretation of the content.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		paneID := args[0]

		m, err := getMultiplexer()
		if err != nil {
			return err
		}

		content, err := m.CapturePane(cmd.Context(), paneID, flagCaptureLines)
		if err != nil {
			return fmt.Errorf("failed to capture pane %q: %w", paneID, err)
		}

		fmt.Fprint(os.Stdout, content)
		return nil
	},
}

func init() {
	captureCmd.Flags().IntVar(&flagCaptureLines, "lines", forwarder.DefaultCaptureLines, "scrollback lines to capture")
	rootCmd.AddCommand(captureCmd)
}
