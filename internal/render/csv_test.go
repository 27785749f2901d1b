package render

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intelligenceonchain/tornadoview/internal/report"
	"github.com/intelligenceonchain/tornadoview/internal/withdrawal"
)

func fixtureReport(t *testing.T, selection string, eventsByPool map[string][]withdrawal.Event) report.Report {
	t.Helper()

	pools, err := withdrawal.ParseSelection(selection)
	require.NoError(t, err)

	return report.Report{
		RunID:     "test-run",
		Range:     report.AllTime(),
		Pools:     pools,
		Summaries: withdrawal.Aggregate(eventsByPool, pools),
	}
}

func TestCSV(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("two pools render ten columns", func(t *testing.T) {
		rep := fixtureReport(t, "10,100", map[string][]withdrawal.Event{
			"10_eth": {{PoolID: "10_eth", Recipient: "0xabc", Amount: decimal.NewFromInt(10), Timestamp: base}},
		})

		var buf bytes.Buffer
		require.NoError(t, CSV(&buf, rep))

		records, err := csv.NewReader(&buf).ReadAll()
		require.NoError(t, err)
		require.Len(t, records, 2, "header plus one recipient")
		assert.Len(t, records[0], 10, "address + 4 columns × 2 pools + grand total")
	})

	t.Run("three pools render fourteen columns", func(t *testing.T) {
		rep := fixtureReport(t, "1,10,100", map[string][]withdrawal.Event{
			"1_eth": {{PoolID: "1_eth", Recipient: "0xabc", Amount: decimal.NewFromInt(1), Timestamp: base}},
		})

		var buf bytes.Buffer
		require.NoError(t, CSV(&buf, rep))

		records, err := csv.NewReader(&buf).ReadAll()
		require.NoError(t, err)
		assert.Len(t, records[0], 14, "address + 4 columns × 3 pools + grand total")
	})

	t.Run("header names follow ascending denomination order", func(t *testing.T) {
		rep := fixtureReport(t, "100,1", nil)

		var buf bytes.Buffer
		require.NoError(t, CSV(&buf, rep))

		records, err := csv.NewReader(&buf).ReadAll()
		require.NoError(t, err)

		header := records[0]
		assert.Equal(t, "Recipient Address", header[0])
		assert.Equal(t, "1 ETH Withdrawals", header[1])
		assert.Equal(t, "100 ETH Withdrawals", header[5])
		assert.Equal(t, "Grand Total ETH", header[len(header)-1])
	})

	t.Run("round-trip recovers recipients, counts, and totals", func(t *testing.T) {
		rep := fixtureReport(t, "10,100", map[string][]withdrawal.Event{
			"10_eth": {
				{PoolID: "10_eth", Recipient: "0xaaa", Amount: decimal.NewFromInt(10), Timestamp: base},
				{PoolID: "10_eth", Recipient: "0xaaa", Amount: decimal.NewFromInt(10), Timestamp: base.Add(time.Hour)},
			},
			"100_eth": {
				{PoolID: "100_eth", Recipient: "0xbbb", Amount: decimal.NewFromInt(100), Timestamp: base},
			},
		})

		var buf bytes.Buffer
		require.NoError(t, CSV(&buf, rep))

		records, err := csv.NewReader(&buf).ReadAll()
		require.NoError(t, err)
		require.Len(t, records, 3)

		// Rows follow report order: grand total descending.
		assert.Equal(t, "0xbbb", records[1][0])
		assert.Equal(t, "0", records[1][1], "absent pool count is zero-filled")
		assert.Equal(t, "0.00", records[1][2])
		assert.Equal(t, "", records[1][3], "absent first date is empty")
		assert.Equal(t, "1", records[1][5])
		assert.Equal(t, "100.00", records[1][6])
		assert.Equal(t, "100.00", records[1][9])

		assert.Equal(t, "0xaaa", records[2][0])
		assert.Equal(t, "2", records[2][1])
		assert.Equal(t, "20.00", records[2][2])
		assert.Equal(t, "2024-03-01", records[2][3])
		assert.Equal(t, "20.00", records[2][9])
	})

	t.Run("fields containing separators stay unambiguous", func(t *testing.T) {
		pools, err := withdrawal.ParseSelection("1")
		require.NoError(t, err)

		rep := report.Report{
			Pools: pools,
			Summaries: []withdrawal.RecipientSummary{{
				Recipient:  `0xabc,"quoted"`,
				Pools:      map[string]withdrawal.PoolStats{"1_eth": {Count: 1, Total: decimal.NewFromInt(1), First: base, Last: base}},
				GrandTotal: decimal.NewFromInt(1),
			}},
		}

		var buf bytes.Buffer
		require.NoError(t, CSV(&buf, rep))

		records, err := csv.NewReader(&buf).ReadAll()
		require.NoError(t, err)
		assert.Equal(t, `0xabc,"quoted"`, records[1][0], "csv escaping must round-trip the raw field")
	})
}
