// Package report renders plain-text summaries of a produced delta, the way
// the teacher's bundle.WriteDelta assembles a human-facing "what changed"
// index alongside the machine-facing zip payload. Nothing here is on the
// hot path: it exists so `cmd/deltawriter emit` has something to print.
package report

import (
	"fmt"
	"sort"
	"strings"

	"deltawriter/internal/diff"
	"deltawriter/internal/emit"
	"deltawriter/internal/enc"
	"deltawriter/internal/refs"
	"deltawriter/internal/sortutil"
	"deltawriter/internal/textutil"
	"deltawriter/internal/tokens"
)

// Summary renders res as a plain-text report: per-table delta sizes, EncLog
// row counts grouped by table, EncMap token count, and any diagnostics.
func Summary(res *emit.Result) string {
	var b strings.Builder

	fmt.Fprintf(&b, "generation %d\n", res.NextBaseline.Ordinal)

	fmt.Fprintf(&b, "\ntable deltas:\n")
	for _, t := range sortedTables(res.TableDeltaSizes) {
		if res.TableDeltaSizes[t] == 0 {
			continue
		}
		fmt.Fprintf(&b, "  %-16s +%d\n", t, res.TableDeltaSizes[t])
	}

	counts := encLogCounts(res.EncLog)
	fmt.Fprintf(&b, "\nEncLog: %d rows\n", len(res.EncLog))
	for _, t := range sortedTables(counts) {
		fmt.Fprintf(&b, "  %-16s %d\n", t, counts[t])
	}

	fmt.Fprintf(&b, "\nEncMap: %d tokens\n", len(res.EncMap))

	if len(res.ChangedMethods) > 0 {
		fmt.Fprintf(&b, "\nchanged methods (sequence points retained): %d\n", len(res.ChangedMethods))
	}

	if len(res.Diagnostics) > 0 {
		fmt.Fprintf(&b, "\ndiagnostics:\n")
		for _, d := range sortDiagnostics(res.Diagnostics) {
			fmt.Fprintf(&b, "  ReferenceToAddedMember: %s (in %s)\n", d.SimpleName, d.AssemblyDisplayName)
		}
	}

	return string(textutil.EnsureTrailingLF([]byte(b.String())))
}

func encLogCounts(rows []enc.LogRow) map[tokens.Table]int {
	out := make(map[tokens.Table]int)
	for _, r := range rows {
		out[r.Token.Table()]++
	}
	return out
}

// sortDiagnostics orders diagnostics by simple name for deterministic
// report output, reusing sortutil's stable string sort rather than a
// bespoke sort.Slice comparator.
func sortDiagnostics(diags []refs.Diagnostic) []refs.Diagnostic {
	byName := make(map[string][]refs.Diagnostic, len(diags))
	names := make([]string, 0, len(diags))
	for _, d := range diags {
		if _, seen := byName[d.SimpleName]; !seen {
			names = append(names, d.SimpleName)
		}
		byName[d.SimpleName] = append(byName[d.SimpleName], d)
	}
	out := make([]refs.Diagnostic, 0, len(diags))
	for _, name := range sortutil.StablePathSort(names) {
		out = append(out, byName[name]...)
	}
	return out
}

func sortedTables(m map[tokens.Table]int) []tokens.Table {
	out := make([]tokens.Table, 0, len(m))
	for t := range m {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// LocalSignatureDiff renders a unified diff between a method's rendered
// local-signature listing in the previous generation and this one, a
// debugging aid layered on top of the binary StandAloneSig blob (§4.4).
// oldListing/newListing are caller-supplied human-readable renderings (one
// local per line); the writer itself never needs to read them back.
func LocalSignatureDiff(methodLabel, oldListing, newListing string) string {
	body, _ := diff.Unified(methodLabel+" (old)", methodLabel+" (new)",
		textutil.NormalizeUTF8LF([]byte(oldListing)),
		textutil.NormalizeUTF8LF([]byte(newListing)),
		diff.Options{Context: 2})
	return body
}
