package etherscan

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/intelligenceonchain/tornadoview/internal/report"
)

// maxBlockNumber is the open-ended upper bound the account endpoints accept.
const maxBlockNumber = 99999999

// resolveBlockRange maps the query time window onto a block number range.
// Open bounds map to the full chain range without extra API calls.
func (c *Client) resolveBlockRange(ctx context.Context, rng report.TimeRange) (startBlock, endBlock uint64, err error) {
	startBlock, endBlock = 0, maxBlockNumber

	if !rng.Start.IsZero() {
		startBlock, err = c.blockByTime(ctx, rng.Start, "after")
		if err != nil {
			return 0, 0, fmt.Errorf("resolving start block: %w", err)
		}
	}

	if !rng.End.IsZero() {
		endBlock, err = c.blockByTime(ctx, rng.End, "before")
		if err != nil {
			return 0, 0, fmt.Errorf("resolving end block: %w", err)
		}
	}

	return startBlock, endBlock, nil
}

// blockByTime asks the explorer for the block number closest to the given
// instant. closest is "before" or "after", matching the API parameter.
func (c *Client) blockByTime(ctx context.Context, t time.Time, closest string) (uint64, error) {
	raw, err := c.getWithRetry(ctx, url.Values{
		"module":    {"block"},
		"action":    {"getblocknobytime"},
		"timestamp": {strconv.FormatInt(t.Unix(), 10)},
		"closest":   {closest},
	})
	if err != nil {
		return 0, err
	}

	var blockStr string
	if err := json.Unmarshal(raw, &blockStr); err != nil {
		return 0, fmt.Errorf("%w: unexpected block number payload: %v", report.ErrNetwork, err)
	}

	block, err := strconv.ParseUint(blockStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: parsing block number %q: %v", report.ErrNetwork, blockStr, err)
	}
	return block, nil
}
