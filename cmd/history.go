package cmd

import (
	"github.com/josephlewis42/hsh/core/history"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Print the recorded command history.",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		configuration, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		store := history.NewStore(configuration.Fs(), configuration.HistoryFile)
		entries, err := store.Entries()
		if err != nil {
			return err
		}

		return history.Write(cmd.OutOrStdout(), entries)
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
}
