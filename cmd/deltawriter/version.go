package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is stamped by the release build (-ldflags -X); "dev" otherwise.
var version = "dev"

func versionString() string { return version }

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the deltawriter version",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintf(cmd.OutOrStdout(), "deltawriter %s\n", versionString())
		return nil
	},
}
