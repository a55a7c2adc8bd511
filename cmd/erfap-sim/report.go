package main

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/buildcore/erfap/erfap"
	"github.com/buildcore/erfap/erfap/internal/allowlist"
	"github.com/buildcore/erfap/erfap/internal/pathtable"
)

// printReport renders a Result to w, colorized the way mutagen-io/mutagen's
// CLI colorizes its own status output (SPEC_FULL.md §4.12): green for
// counts that are zero/benign, yellow for anything a build author should
// look at (denials, uncacheable matches).
func printReport(w io.Writer, table *pathtable.Table, result *erfap.Result, elapsed time.Duration, uncacheable []allowlist.UncacheableMatch) {
	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()

	fmt.Fprintf(w, "%s fed %s events in %s\n",
		bold("erfap-sim:"),
		humanize.Comma(int64(len(result.ExplicitlyReportedFileAccesses))),
		elapsed,
	)

	fmt.Fprintf(w, "  observations:        %s\n", colorCount(green, yellow, len(result.SortedObservationsByPath), 0))
	fmt.Fprintf(w, "  created directories: %s\n", colorCount(green, yellow, len(result.CreatedDirectories), 0))

	dynamicWrites := 0
	for _, paths := range result.DynamicWriteAccesses {
		dynamicWrites += len(paths)
	}

	fmt.Fprintf(w, "  dynamic writes:      %s\n", colorCount(green, yellow, dynamicWrites, 0))
	fmt.Fprintf(w, "  file-existence denials: %s\n", colorCount(green, yellow, len(result.FileExistenceDenials), 0))
	fmt.Fprintf(w, "  maybe-unresolved absent accesses: %s\n", colorCount(green, yellow, len(result.MaybeUnresolvedAbsentAccesses), 0))

	if len(uncacheable) > 0 {
		fmt.Fprintf(w, "  %s %d access(es) matched the allow-list (cacheable or not):\n", yellow("warning:"), len(uncacheable))

		for _, m := range uncacheable {
			fmt.Fprintf(w, "    - %s (%v)\n", m.Event.Path, m.Match)
		}
	}

	fmt.Fprintln(w, "\nobservations (sorted):")

	for _, id := range result.SortedObservationsByPath {
		state := result.AccessesByPath[id]
		fmt.Fprintf(w, "  %-60s flags=%03b events=%d\n", table.Expand(id), state.Flags(), len(state.Events()))
	}
}

func colorCount(green, yellow func(a ...any) string, n, warnAbove int) string {
	if n > warnAbove {
		return yellow(humanize.Comma(int64(n)))
	}

	return green(humanize.Comma(int64(n)))
}
