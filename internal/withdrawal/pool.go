// Package withdrawal contains the domain model for Tornado Cash ETH pool
// withdrawals: the fixed pool registry, withdrawal events, and the pure
// aggregation logic that folds events into per-recipient summaries.
package withdrawal

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/intelligenceonchain/tornadoview/internal/pkg/types"
)

// ErrUnknownPool is returned when a pool selection references a denomination
// that is not part of the registry.
var ErrUnknownPool = errors.New("unknown pool")

// ErrEmptySelection is returned when a pool selection resolves to no pools.
var ErrEmptySelection = errors.New("no pools selected")

// Pool describes a fixed-denomination Tornado Cash ETH pool contract on
// Ethereum mainnet. Pool values are static and defined at process start.
type Pool struct {
	ID           string          // stable identifier, e.g. "10_eth"
	Name         string          // human-readable name, e.g. "10 ETH"
	Address      string          // lowercase contract address
	Denomination decimal.Decimal // fixed ETH amount per withdrawal
}

// pools holds the registry of mainnet ETH pools, ascending by denomination.
var pools = []Pool{
	{
		ID:           "1_eth",
		Name:         "1 ETH",
		Address:      "0x47ce0c6ed5b0ce3d3a51fdb1c52dc66a7c3c2936",
		Denomination: decimal.NewFromInt(1),
	},
	{
		ID:           "10_eth",
		Name:         "10 ETH",
		Address:      "0x910cbd523d972eb0a6f4cae4618ad62622b39dbf",
		Denomination: decimal.NewFromInt(10),
	},
	{
		ID:           "100_eth",
		Name:         "100 ETH",
		Address:      "0xa160cdab225685da1d56aa342ad8841c3b53f291",
		Denomination: decimal.NewFromInt(100),
	},
}

// Pools returns the full pool registry, ordered ascending by denomination.
func Pools() []Pool {
	out := make([]Pool, len(pools))
	copy(out, pools)
	return out
}

// ParseSelection resolves a comma-separated denomination list (e.g. "1,10,100")
// into pools from the registry. Duplicates are collapsed and the result is
// always ordered ascending by denomination, regardless of input order.
//
// Returns ErrUnknownPool for entries that do not match a registered
// denomination and ErrEmptySelection when the input contains no entries.
func ParseSelection(selection string) ([]Pool, error) {
	wanted := types.NewSet[string]()

	for _, part := range strings.Split(selection, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		pool, ok := poolByDenomination(part)
		if !ok {
			return nil, fmt.Errorf("%w: %q (valid values: 1, 10, 100)", ErrUnknownPool, part)
		}

		wanted.Add(pool.ID)
	}

	if len(wanted) == 0 {
		return nil, ErrEmptySelection
	}

	selected := make([]Pool, 0, len(wanted))
	for _, pool := range pools {
		if wanted.Contains(pool.ID) {
			selected = append(selected, pool)
		}
	}

	sort.Slice(selected, func(i, j int) bool {
		return selected[i].Denomination.LessThan(selected[j].Denomination)
	})

	return selected, nil
}

// poolByDenomination finds a registered pool whose denomination matches the
// given decimal string ("1", "10", "100").
func poolByDenomination(s string) (Pool, bool) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Pool{}, false
	}

	for _, pool := range pools {
		if pool.Denomination.Equal(d) {
			return pool, true
		}
	}
	return Pool{}, false
}
