package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List pane IDs in the session",
	Long: `List all terminal multiplexer panes as IDs, one per line.

Each ID can be passed to other commands (capture). With no --session,
panes from all sessions are listed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := getMultiplexer()
		if err != nil {
			return err
		}

		panes, err := m.ListPanes(cmd.Context(), flagSession)
		if err != nil {
			return fmt.Errorf("failed to list panes: %w", err)
		}

		for _, p := range panes {
			fmt.Println(p.ID)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
