package core

import (
	"github.com/shopspring/decimal"
)

type (
	// RateConfig describes a market's two-segment borrow rate curve. Below
	// Kink the annual borrow rate is BaseRate + u*Multiplier; above it the
	// excess utilization is charged at the steeper JumpMultiplier.
	RateConfig struct {
		BaseRate       decimal.Decimal `json:"baseRate"`
		Multiplier     decimal.Decimal `json:"multiplier"`
		JumpMultiplier decimal.Decimal `json:"jumpMultiplier"`
		Kink           decimal.Decimal `json:"kink"`

		ReserveFactor decimal.Decimal `json:"reserveFactor"`
	}
)

// Utilization is totalBorrows / (cash + totalBorrows), clamped to [0,1].
// An empty pool reports zero.
func Utilization(cash, totalBorrows decimal.Decimal) decimal.Decimal {
	denom := cash.Add(totalBorrows)
	if denom.IsZero() {
		return decimal.Zero
	}
	u := totalBorrows.Div(denom)
	if u.LessThan(decimal.Zero) {
		return decimal.Zero
	}
	if u.GreaterThan(ONE) {
		return ONE
	}
	return u
}

func (rc *RateConfig) BorrowRateAnnual(u decimal.Decimal) decimal.Decimal {
	if u.LessThanOrEqual(rc.Kink) {
		return rc.BaseRate.Add(u.Mul(rc.Multiplier))
	}
	atKink := rc.BaseRate.Add(rc.Kink.Mul(rc.Multiplier))
	return atKink.Add(u.Sub(rc.Kink).Mul(rc.JumpMultiplier))
}

// Rates returns the per-second borrow and supply rates for the given pool
// balances. Supply rate is the borrow rate scaled by utilization net of the
// reserve factor; reserves are withheld through that factor, not through the
// utilization denominator. An empty pool carries no rates at all.
func (rc *RateConfig) Rates(cash, totalBorrows, totalReserves decimal.Decimal) (decimal.Decimal, decimal.Decimal, error) {
	if cash.Add(totalBorrows).IsZero() {
		return decimal.Zero, decimal.Zero, nil
	}
	u := Utilization(cash, totalBorrows)

	borrowAnnual := rc.BorrowRateAnnual(u)
	supplyAnnual := borrowAnnual.Mul(u).Mul(ONE.Sub(rc.ReserveFactor))

	if borrowAnnual.LessThan(decimal.Zero) || supplyAnnual.LessThan(decimal.Zero) {
		return decimal.Zero, decimal.Zero, ErrNegativeRate
	}

	secondsPerYear := decimal.NewFromInt(SECONDS_PER_YEAR)
	return borrowAnnual.Div(secondsPerYear), supplyAnnual.Div(secondsPerYear), nil
}

func (rc *RateConfig) Validate() error {
	if rc.Kink.LessThanOrEqual(decimal.Zero) || rc.Kink.GreaterThanOrEqual(ONE) {
		return ErrInvalidConfig
	}
	if rc.BaseRate.LessThan(decimal.Zero) {
		return ErrInvalidConfig
	}
	if rc.Multiplier.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidConfig
	}
	if rc.JumpMultiplier.LessThan(rc.Multiplier) {
		return ErrInvalidConfig
	}
	if rc.ReserveFactor.LessThan(decimal.Zero) || rc.ReserveFactor.GreaterThanOrEqual(ONE) {
		return ErrInvalidConfig
	}
	return nil
}

func (rc *RateConfig) Update(other *RateConfig) {
	if !other.BaseRate.IsZero() {
		rc.BaseRate = other.BaseRate
	}
	if !other.Multiplier.IsZero() {
		rc.Multiplier = other.Multiplier
	}
	if !other.JumpMultiplier.IsZero() {
		rc.JumpMultiplier = other.JumpMultiplier
	}
	if !other.Kink.IsZero() {
		rc.Kink = other.Kink
	}
	if !other.ReserveFactor.IsZero() {
		rc.ReserveFactor = other.ReserveFactor
	}
}
