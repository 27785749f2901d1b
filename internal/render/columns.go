// Package render formats generated reports for humans (aligned terminal
// tables) and machines (CSV). Both renderers build their column set
// dynamically from the report's pools, in ascending denomination order: one
// address column, four columns per pool (count, total, first date, last
// date), and a single trailing grand total column.
package render

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/intelligenceonchain/tornadoview/internal/report"
	"github.com/intelligenceonchain/tornadoview/internal/withdrawal"
)

// amountPlaces is the fixed decimal precision for rendered ETH amounts.
const amountPlaces = 2

// dateLayout is the format for rendered first/last dates.
const dateLayout = "2006-01-02"

// columns builds the header row for the given pool set.
func columns(pools []withdrawal.Pool) []string {
	cols := make([]string, 0, 2+4*len(pools))

	cols = append(cols, "Recipient Address")
	for _, pool := range pools {
		cols = append(cols,
			pool.Name+" Withdrawals",
			"Total "+pool.Name,
			pool.Name+" First Date",
			pool.Name+" Last Date",
		)
	}
	return append(cols, "Grand Total ETH")
}

// row renders one recipient summary into column values. absent is the
// placeholder used for missing dates (a dash in tables, empty in CSV).
func row(summary withdrawal.RecipientSummary, pools []withdrawal.Pool, absent string) []string {
	values := make([]string, 0, 2+4*len(pools))

	values = append(values, summary.Recipient)
	for _, pool := range pools {
		stats := summary.Pools[pool.ID]
		values = append(values,
			strconv.Itoa(stats.Count),
			stats.Total.StringFixed(amountPlaces),
			formatDate(stats.First, absent),
			formatDate(stats.Last, absent),
		)
	}
	return append(values, summary.GrandTotal.StringFixed(amountPlaces))
}

// formatDate renders a date or the placeholder when the time is zero.
func formatDate(t time.Time, absent string) string {
	if t.IsZero() {
		return absent
	}
	return t.Format(dateLayout)
}

// poolTotals holds column totals for one pool across all recipients.
type poolTotals struct {
	Count int
	Total decimal.Decimal
}

// totals sums per-pool counts and amounts across all summaries in the report.
// The returned grand total spans every pool.
func totals(rep report.Report) (map[string]poolTotals, decimal.Decimal) {
	perPool := make(map[string]poolTotals, len(rep.Pools))
	grand := decimal.Zero

	for _, pool := range rep.Pools {
		perPool[pool.ID] = poolTotals{Total: decimal.Zero}
	}

	for _, summary := range rep.Summaries {
		for _, pool := range rep.Pools {
			stats := summary.Pools[pool.ID]

			agg := perPool[pool.ID]
			agg.Count += stats.Count
			agg.Total = agg.Total.Add(stats.Total)
			perPool[pool.ID] = agg
		}
		grand = grand.Add(summary.GrandTotal)
	}

	return perPool, grand
}
