package withdrawal

import (
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/intelligenceonchain/tornadoview/internal/pkg/types"
)

// PoolStats summarizes one recipient's withdrawals from a single pool.
// A zero PoolStats (count 0, total 0, zero dates) is the canonical entry for
// a recipient that never withdrew from that pool.
type PoolStats struct {
	Count int             // number of withdrawal events
	Total decimal.Decimal // sum of withdrawn ETH
	First time.Time       // earliest withdrawal, zero when Count == 0
	Last  time.Time       // latest withdrawal, zero when Count == 0
}

// RecipientSummary is the cross-pool aggregate for one recipient address.
// Pools always holds an entry for every selected pool, zero-filled when the
// recipient is absent from it.
type RecipientSummary struct {
	Recipient  string               // lowercase hex address
	Pools      map[string]PoolStats // keyed by Pool.ID
	GrandTotal decimal.Decimal      // sum of per-pool totals
	First      time.Time            // earliest withdrawal across pools, zero if none
	Last       time.Time            // latest withdrawal across pools, zero if none
}

// Aggregate folds raw per-pool event sequences into per-recipient summaries
// for the selected pools. It is a pure function of its input: no I/O, and the
// same input always yields the same output.
//
// Grouping is case-insensitive on the recipient address (canonical lowercase
// storage). Output ordering is total and stable: grand total descending, ties
// broken by ascending recipient address.
func Aggregate(eventsByPool map[string][]Event, selected []Pool) []RecipientSummary {
	perPool := make(map[string]map[string]PoolStats, len(selected))
	recipients := types.NewSet[string]()

	for _, pool := range selected {
		grouped := groupByRecipient(eventsByPool[pool.ID])
		perPool[pool.ID] = grouped

		for recipient := range grouped {
			recipients.Add(recipient)
		}
	}

	summaries := make([]RecipientSummary, 0, len(recipients))
	for recipient := range recipients.ToIter() {
		summary := RecipientSummary{
			Recipient:  recipient,
			Pools:      make(map[string]PoolStats, len(selected)),
			GrandTotal: decimal.Zero,
		}

		for _, pool := range selected {
			stats := perPool[pool.ID][recipient] // zero value when absent
			summary.Pools[pool.ID] = stats
			summary.GrandTotal = summary.GrandTotal.Add(stats.Total)

			if stats.Count > 0 {
				if summary.First.IsZero() || stats.First.Before(summary.First) {
					summary.First = stats.First
				}
				if stats.Last.After(summary.Last) {
					summary.Last = stats.Last
				}
			}
		}

		summaries = append(summaries, summary)
	}

	slices.SortStableFunc(summaries, func(a, b RecipientSummary) int {
		if c := b.GrandTotal.Cmp(a.GrandTotal); c != 0 {
			return c
		}
		return strings.Compare(a.Recipient, b.Recipient)
	})

	return summaries
}

// groupByRecipient computes count, total, and first/last timestamps per
// recipient for a single pool's events.
func groupByRecipient(events []Event) map[string]PoolStats {
	grouped := types.NewDefaultMap[string, PoolStats](func() PoolStats {
		return PoolStats{Total: decimal.Zero}
	})

	for _, event := range events {
		recipient := NormalizeAddress(event.Recipient)

		stats := grouped.Get(recipient)
		stats.Count++
		stats.Total = stats.Total.Add(event.Amount)

		if stats.First.IsZero() || event.Timestamp.Before(stats.First) {
			stats.First = event.Timestamp
		}
		if event.Timestamp.After(stats.Last) {
			stats.Last = event.Timestamp
		}

		grouped.Set(recipient, stats)
	}

	return grouped.ToMap()
}
