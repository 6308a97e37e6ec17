package cmd

import (
	"fmt"

	"github.com/josephlewis42/vsh/commands"
	"github.com/spf13/cobra"
)

// builtinsCmd lists the shell builtins
var builtinsCmd = &cobra.Command{
	Use:   "builtins",
	Short: "Show the builtin commands of the shell.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, builtin := range commands.ListBuiltins() {
			fmt.Fprintln(cmd.OutOrStdout(), builtin)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(builtinsCmd)
}
