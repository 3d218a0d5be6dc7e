package core

import (
	"github.com/shopspring/decimal"
)

const (
	SECONDS_PER_YEAR = 31_536_000

	// amounts and shares are settled at this precision on the user boundary
	LEDGER_DECIMALS = 8

	MAX_BPS = 10_000
)

var (
	ONE = decimal.NewFromInt(1)

	ZERO_AMOUNT_THRESHOLD   = decimal.Zero
	EMPTY_BALANCE_THRESHOLD = decimal.NewFromFloat(0.00000001)

	BPS_SCALE = decimal.NewFromInt(MAX_BPS)
)

// FromBps converts a basis-point parameter into its decimal fraction.
func FromBps(bps uint32) decimal.Decimal {
	return decimal.NewFromInt(int64(bps)).Div(BPS_SCALE)
}
