// Command deltawriter drives the delta metadata writer from the command
// line: emit one generation against a fixture change-set, or inspect a
// persisted baseline.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "deltawriter",
	Short: "Emit ECMA-335 Edit-and-Continue metadata deltas",
	Long:  "deltawriter turns a baseline, a module, and a change oracle into an EnC metadata delta.",
}

func main() {
	rootCmd.Version = versionString()

	rootCmd.AddCommand(emitCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("config", "", "path to a TOML config file (default: built-in defaults)")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable debug-level logging")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
