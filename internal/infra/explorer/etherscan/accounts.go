package etherscan

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/intelligenceonchain/tornadoview/internal/report"
	"github.com/intelligenceonchain/tornadoview/internal/withdrawal"
)

// transferActions are the account endpoints that list value movement for an
// address. Tornado Cash pools pay recipients through the relayer contract, so
// withdrawals surface as internal transactions; regular transactions are
// listed too so direct transfers are not missed.
var transferActions = []string{"txlist", "txlistinternal"}

// transferRecord is one row of an account transfer listing. Numeric fields
// arrive as decimal strings.
type transferRecord struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Value     string `json:"value"`
	TimeStamp string `json:"timeStamp"`
	Hash      string `json:"hash"`
	IsError   string `json:"isError"`
}

// FetchWithdrawals lists all withdrawals a pool paid out inside the given
// time range. The time window is first narrowed to a block range, then both
// transfer listings are paginated in ascending order; a transfer counts as a
// withdrawal when the pool contract is the sender and a positive amount of
// ETH moved.
func (c *Client) FetchWithdrawals(ctx context.Context, pool withdrawal.Pool, rng report.TimeRange) ([]withdrawal.Event, error) {
	startBlock, endBlock, err := c.resolveBlockRange(ctx, rng)
	if err != nil {
		return nil, err
	}

	var events []withdrawal.Event
	for _, action := range transferActions {
		actionEvents, err := c.listOutgoing(ctx, action, pool, startBlock, endBlock, rng)
		if err != nil {
			return nil, fmt.Errorf("listing %s transfers: %w", action, err)
		}
		events = append(events, actionEvents...)
	}

	return events, nil
}

// listOutgoing pages through one transfer listing and keeps the rows where
// the pool sent ETH out. Pagination stops on the first short page; because
// rows arrive in ascending block order, it also stops once a row falls past
// the end of the window.
func (c *Client) listOutgoing(ctx context.Context, action string, pool withdrawal.Pool, startBlock, endBlock uint64, rng report.TimeRange) ([]withdrawal.Event, error) {
	var events []withdrawal.Event

	for page := 1; ; page++ {
		raw, err := c.getWithRetry(ctx, url.Values{
			"module":     {"account"},
			"action":     {action},
			"address":    {pool.Address},
			"startblock": {strconv.FormatUint(startBlock, 10)},
			"endblock":   {strconv.FormatUint(endBlock, 10)},
			"page":       {strconv.Itoa(page)},
			"offset":     {strconv.Itoa(c.pageSize)},
			"sort":       {"asc"},
		})
		if err != nil {
			return nil, err
		}

		records, err := decodeTransfers(raw)
		if err != nil {
			return nil, err
		}
		if len(records) == 0 {
			break
		}

		pastWindow := false
		for _, rec := range records {
			event, ok := toEvent(rec, pool)
			if !ok {
				continue
			}
			if !rng.End.IsZero() && event.Timestamp.After(rng.End) {
				pastWindow = true
				break
			}
			if rng.Contains(event.Timestamp) {
				events = append(events, event)
			}
		}

		if pastWindow || len(records) < c.pageSize {
			break
		}
	}

	return events, nil
}

// decodeTransfers unwraps the result payload into transfer rows. An empty or
// non-array result decodes to no rows.
func decodeTransfers(raw json.RawMessage) ([]transferRecord, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var records []transferRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		var empty string
		if json.Unmarshal(raw, &empty) == nil {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: unexpected transfer payload: %v", report.ErrNetwork, err)
	}
	return records, nil
}

// toEvent converts a transfer row to a withdrawal event. Rows that are not
// outgoing value transfers from the pool, or that failed on chain, are
// dropped.
func toEvent(rec transferRecord, pool withdrawal.Pool) (withdrawal.Event, bool) {
	if withdrawal.NormalizeAddress(rec.From) != pool.Address {
		return withdrawal.Event{}, false
	}
	if rec.To == "" || rec.IsError == "1" {
		return withdrawal.Event{}, false
	}

	wei, ok := new(big.Int).SetString(rec.Value, 10)
	if !ok || wei.Sign() <= 0 {
		return withdrawal.Event{}, false
	}

	unix, err := strconv.ParseInt(rec.TimeStamp, 10, 64)
	if err != nil {
		return withdrawal.Event{}, false
	}

	return withdrawal.Event{
		PoolID:    pool.ID,
		Recipient: withdrawal.NormalizeAddress(rec.To),
		Amount:    decimal.NewFromBigInt(wei, -18),
		Timestamp: time.Unix(unix, 0).UTC(),
		TxHash:    rec.Hash,
	}, true
}
