package withdrawal

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Event is a single withdrawal observed on-chain: an outgoing value transfer
// from a pool contract to a recipient address. Events are immutable once
// fetched; they exist only for the duration of one report run.
type Event struct {
	PoolID    string          // registry ID of the pool the funds left
	Recipient string          // destination address, lowercase hex
	Amount    decimal.Decimal // transferred value in ETH
	Timestamp time.Time       // block timestamp, UTC
	TxHash    string          // transaction hash
}

// NormalizeAddress canonicalizes a hex address for case-insensitive
// comparison. All recipient keys in aggregates use this form.
func NormalizeAddress(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}
