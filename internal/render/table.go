package render

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/rodaine/table"

	"github.com/intelligenceonchain/tornadoview/internal/report"
)

// Colors for the summary block and table header.
var (
	cyan   = color.New(color.FgCyan).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

// Table writes the report as an aligned terminal table preceded by a summary
// block. Column widths are computed by the table writer from header and data
// content, so alignment is independent of how many pools were selected.
func Table(w io.Writer, rep report.Report) error {
	renderSummary(w, rep)

	if len(rep.Summaries) == 0 {
		fmt.Fprintln(w, "No withdrawals found for the specified criteria.")
		return nil
	}

	headerFmt := color.New(color.FgCyan, color.Underline).SprintfFunc()
	tbl := table.New(toAny(columns(rep.Pools))...)
	tbl.WithWriter(w)
	tbl.WithHeaderFormatter(headerFmt)

	for _, summary := range rep.Summaries {
		tbl.AddRow(toAny(row(summary, rep.Pools, "-"))...)
	}
	tbl.AddRow(toAny(totalsRow(rep))...)

	tbl.Print()
	return nil
}

// renderSummary prints the header block: queried range, recipient count,
// per-pool withdrawal totals, grand total, and any flagged pool failures.
func renderSummary(w io.Writer, rep report.Report) {
	perPool, grand := totals(rep)

	fmt.Fprintln(w)
	fmt.Fprintln(w, bold("Tornado Cash Withdrawal Summary"))
	fmt.Fprintf(w, "  Date range: %s\n", cyan(rep.Range.String()))
	fmt.Fprintf(w, "  Unique recipients: %d\n", len(rep.Summaries))

	for _, pool := range rep.Pools {
		agg := perPool[pool.ID]
		fmt.Fprintf(w, "  %s pool: %d withdrawals (%s ETH)\n",
			pool.Name, agg.Count, agg.Total.StringFixed(amountPlaces))
	}
	fmt.Fprintf(w, "  Grand total: %s ETH\n", grand.StringFixed(amountPlaces))

	for _, failure := range rep.Failures {
		fmt.Fprintf(w, "  %s %s pool not included: %s\n", yellow("!"), failure.Pool.Name, failure.Reason)
	}

	fmt.Fprintln(w)
}

// totalsRow builds the trailing TOTAL row mirroring the dynamic column set.
func totalsRow(rep report.Report) []string {
	perPool, grand := totals(rep)

	values := make([]string, 0, 2+4*len(rep.Pools))
	values = append(values, "TOTAL")
	for _, pool := range rep.Pools {
		agg := perPool[pool.ID]
		values = append(values,
			fmt.Sprintf("%d", agg.Count),
			agg.Total.StringFixed(amountPlaces),
			"",
			"",
		)
	}
	return append(values, grand.StringFixed(amountPlaces))
}

// toAny converts string values to the variadic any form the table writer expects.
func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
