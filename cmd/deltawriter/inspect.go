package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"deltawriter/internal/baseline"
	"deltawriter/internal/tokens"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <baseline-dir>",
	Short: "Print a persisted baseline's table sizes and addition counts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := baseline.Load(args[0])
		if err != nil {
			return fmt.Errorf("inspect: load baseline: %w", err)
		}
		if b == nil {
			return fmt.Errorf("inspect: no baseline.json in %s", args[0])
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "generation %d\n", b.Ordinal)
		fmt.Fprintf(out, "encId:     %s\n", b.EncID)
		fmt.Fprintf(out, "encBaseId: %s\n", b.EncBaseID)

		fmt.Fprintf(out, "\ntable sizes:\n")
		for _, t := range sortedTables(b.TableSizes) {
			fmt.Fprintf(out, "  %-16s %d\n", t, b.TableSizes[t])
		}

		fmt.Fprintf(out, "\nadditions recorded:\n")
		addCounts := make(map[tokens.Table]int, len(b.Additions))
		for t, m := range b.Additions {
			addCounts[t] = len(m)
		}
		for _, t := range sortedTables(addCounts) {
			fmt.Fprintf(out, "  %-16s %d\n", t, addCounts[t])
		}

		fmt.Fprintf(out, "\nmethod debug entries: %d\n", len(b.AddedOrChangedMethods))
		return nil
	},
}

func sortedTables(m map[tokens.Table]int) []tokens.Table {
	out := make([]tokens.Table, 0, len(m))
	for t := range m {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
