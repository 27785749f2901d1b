package cli

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	urfavecli "github.com/urfave/cli/v3"

	"github.com/intelligenceonchain/tornadoview/internal/pkg/logger"
	"github.com/intelligenceonchain/tornadoview/internal/report"
	reportmocks "github.com/intelligenceonchain/tornadoview/internal/report/mocks"
	"github.com/intelligenceonchain/tornadoview/internal/withdrawal"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	// The default ExitErrHandler calls os.Exit on cli.Exit errors, which
	// would kill the test binary; Run still returns the error either way.
	urfavecli.OsExiter = func(int) {}
	if err := logger.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// memoryKeyStore is an in-memory KeyStore double.
type memoryKeyStore struct {
	key     string
	deletes int
}

func (m *memoryKeyStore) Get() (string, error) {
	if m.key == "" {
		return "", errors.New("api key not found")
	}
	return m.key, nil
}

func (m *memoryKeyStore) Set(key string) error { m.key = key; return nil }

func (m *memoryKeyStore) Delete() error {
	m.key = ""
	m.deletes++
	return nil
}

func (m *memoryKeyStore) Path() string { return "/tmp/test-config.json" }

// testApp wires an app around the given doubles and captures its output.
func testApp(keys KeyStore, explorer report.Explorer, probe KeyProbe) (*bytes.Buffer, func(args ...string) error) {
	var out bytes.Buffer

	app := newApp(keys, func(string) report.Explorer { return explorer }, probe, &out)
	run := func(args ...string) error {
		return app.Run(context.Background(), append([]string{"tornadoview"}, args...))
	}
	return &out, run
}

func poolEvents(poolID, recipient string, eth int64) []withdrawal.Event {
	return []withdrawal.Event{{
		PoolID:    poolID,
		Recipient: recipient,
		Amount:    decimal.NewFromInt(eth),
		Timestamp: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		TxHash:    "0xhash",
	}}
}

func TestReportCommand(t *testing.T) {
	t.Run("default run queries all three pools and prints a table", func(t *testing.T) {
		explorer := new(reportmocks.Explorer)
		for _, pool := range withdrawal.Pools() {
			explorer.On("FetchWithdrawals", mock.Anything, pool, report.AllTime()).
				Return(poolEvents(pool.ID, "0xaaa", 1), nil).Once()
		}

		out, run := testApp(&memoryKeyStore{key: "stored-key"}, explorer, nil)

		require.NoError(t, run())
		explorer.AssertExpectations(t)

		assert.Contains(t, out.String(), "Tornado Cash Withdrawal Summary")
		assert.Contains(t, out.String(), "0xaaa")
	})

	t.Run("pools flag narrows the selection", func(t *testing.T) {
		pools, err := withdrawal.ParseSelection("10")
		require.NoError(t, err)

		explorer := new(reportmocks.Explorer)
		explorer.On("FetchWithdrawals", mock.Anything, pools[0], report.AllTime()).
			Return(poolEvents("10_eth", "0xaaa", 10), nil).Once()

		_, run := testApp(&memoryKeyStore{key: "stored-key"}, explorer, nil)

		require.NoError(t, run("--pools", "10"))
		explorer.AssertExpectations(t)
		explorer.AssertNumberOfCalls(t, "FetchWithdrawals", 1)
	})

	t.Run("unknown pool denomination is a usage error", func(t *testing.T) {
		_, run := testApp(&memoryKeyStore{key: "stored-key"}, new(reportmocks.Explorer), nil)

		err := run("--pools", "42")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "42")
	})

	t.Run("relative window flag bounds the range", func(t *testing.T) {
		explorer := new(reportmocks.Explorer)
		explorer.On("FetchWithdrawals", mock.Anything, mock.Anything, mock.MatchedBy(func(rng report.TimeRange) bool {
			return !rng.Start.IsZero() && !rng.End.IsZero() &&
				rng.End.Sub(rng.Start) == 7*24*time.Hour
		})).Return([]withdrawal.Event{}, nil).Times(3)

		_, run := testApp(&memoryKeyStore{key: "stored-key"}, explorer, nil)

		require.NoError(t, run("--last-7d"))
		explorer.AssertExpectations(t)
	})

	t.Run("conflicting range flags are rejected", func(t *testing.T) {
		_, run := testApp(&memoryKeyStore{key: "stored-key"}, new(reportmocks.Explorer), nil)

		err := run("--last-24h", "--start-date", "2024-01-01")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "mutually exclusive")
	})

	t.Run("end date without start date is rejected", func(t *testing.T) {
		_, run := testApp(&memoryKeyStore{key: "stored-key"}, new(reportmocks.Explorer), nil)

		err := run("--end-date", "2024-01-31")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "--end-date requires --start-date")
	})

	t.Run("missing key explains how to store one", func(t *testing.T) {
		_, run := testApp(&memoryKeyStore{}, new(reportmocks.Explorer), nil)

		err := run()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "tornadoview key set")
	})

	t.Run("reset-key discards the stored key first", func(t *testing.T) {
		keys := &memoryKeyStore{key: "stale-key"}
		_, run := testApp(keys, new(reportmocks.Explorer), nil)

		err := run("--reset-key")
		require.Error(t, err, "run cannot proceed without a key after the reset")
		assert.Equal(t, 1, keys.deletes)
		assert.Empty(t, keys.key)
	})

	t.Run("rejected key surfaces remediation instead of a raw error", func(t *testing.T) {
		explorer := new(reportmocks.Explorer)
		explorer.On("FetchWithdrawals", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, report.ErrAuth).Once()

		_, run := testApp(&memoryKeyStore{key: "bad-key"}, explorer, nil)

		err := run()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "rejected by the explorer")
	})

	t.Run("export writes CSV to the given file", func(t *testing.T) {
		explorer := new(reportmocks.Explorer)
		for _, pool := range withdrawal.Pools() {
			explorer.On("FetchWithdrawals", mock.Anything, pool, report.AllTime()).
				Return(poolEvents(pool.ID, "0xaaa", 1), nil).Once()
		}

		out, run := testApp(&memoryKeyStore{key: "stored-key"}, explorer, nil)

		path := filepath.Join(t.TempDir(), "report.csv")
		require.NoError(t, run("--export", path))

		f, err := os.Open(path)
		require.NoError(t, err)
		defer f.Close()

		records, err := csv.NewReader(f).ReadAll()
		require.NoError(t, err)
		require.Len(t, records, 2, "header plus one recipient")
		assert.Len(t, records[0], 14, "three pools render fourteen columns")

		assert.Contains(t, out.String(), "Report exported to "+path)
		assert.NotContains(t, out.String(), "Recipient Address", "no table when exporting")
	})
}

func TestKeyCommands(t *testing.T) {
	t.Run("set validates the key before storing it", func(t *testing.T) {
		keys := &memoryKeyStore{}
		probed := ""
		probe := func(ctx context.Context, apiKey string) error {
			probed = apiKey
			return nil
		}

		out, run := testApp(keys, new(reportmocks.Explorer), probe)

		require.NoError(t, run("key", "set", "--key", "FRESH-KEY"))
		assert.Equal(t, "FRESH-KEY", probed)
		assert.Equal(t, "FRESH-KEY", keys.key)
		assert.Contains(t, out.String(), "API key stored in "+keys.Path())
	})

	t.Run("set refuses a key the explorer rejects", func(t *testing.T) {
		keys := &memoryKeyStore{}
		probe := func(ctx context.Context, apiKey string) error { return report.ErrAuth }

		_, run := testApp(keys, new(reportmocks.Explorer), probe)

		err := run("key", "set", "--key", "BAD-KEY")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "rejected this API key")
		assert.Empty(t, keys.key, "rejected keys are not stored")
	})

	t.Run("show masks the stored key", func(t *testing.T) {
		keys := &memoryKeyStore{key: "ABCD1234WXYZ"}

		out, run := testApp(keys, new(reportmocks.Explorer), nil)

		require.NoError(t, run("key", "show"))
		assert.Contains(t, out.String(), "ABCD****WXYZ")
		assert.NotContains(t, out.String(), "ABCD1234WXYZ")
	})

	t.Run("show without a stored key explains how to set one", func(t *testing.T) {
		_, run := testApp(&memoryKeyStore{}, new(reportmocks.Explorer), nil)

		err := run("key", "show")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "tornadoview key set")
	})

	t.Run("delete removes the stored key", func(t *testing.T) {
		keys := &memoryKeyStore{key: "doomed"}

		out, run := testApp(keys, new(reportmocks.Explorer), nil)

		require.NoError(t, run("key", "delete"))
		assert.Empty(t, keys.key)
		assert.Contains(t, out.String(), "API key removed")
	})
}

func TestMaskKey(t *testing.T) {
	assert.Equal(t, "ABCD****WXYZ", maskKey("ABCD1234WXYZ"))
	assert.Equal(t, "********", maskKey("12345678"))
	assert.Equal(t, "***", maskKey("abc"))
	assert.Equal(t, "", maskKey(""))
}
