package cmd

import (
	"fmt"

	"github.com/killallgit/pharmai/pkg/prompt"
	"github.com/spf13/cobra"
)

var examplesCmd = &cobra.Command{
	Use:   "examples",
	Short: "List example questions",
	Run: func(cmd *cobra.Command, args []string) {
		for i, example := range prompt.Examples {
			fmt.Fprintf(cmd.OutOrStdout(), "%d. %s\n", i+1, example)
		}
	},
}

func init() {
	rootCmd.AddCommand(examplesCmd)
}
