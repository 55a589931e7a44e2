package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

const version = "0.3.0"

var versionCmd = &cobra.Command{
	Use:         "version",
	Short:       "Print the version number",
	Long:        `Display the current version of the traderdash CLI.`,
	Annotations: mark(standalone),
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "traderdash version %s\n", version)
		fmt.Fprintln(out, "Terminal dashboard for a trading automation backend")
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
