package cli

import (
	"github.com/spf13/cobra"

	"github.com/Shreyanshu20/HireSafe-sub000/internal/audit"
	"github.com/Shreyanshu20/HireSafe-sub000/internal/ui"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past calls recorded on this machine",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := audit.Load()
		if err != nil {
			return err
		}
		ui.RenderHistory(entries)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
}
