package cmd

import (
	"fmt"

	"github.com/josephlewis42/hsh/core/shell"
	"github.com/spf13/cobra"
)

var builtinsCmd = &cobra.Command{
	Use:   "builtins",
	Short: "Show the commands that run inside the shell.",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, name := range shell.DefaultBuiltins().Names() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		fmt.Fprintln(cmd.OutOrStdout(), shell.ExitCommand)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(builtinsCmd)
}
