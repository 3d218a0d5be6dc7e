package core

import (
	"context"

	"github.com/facebookgo/clock"
	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

type (
	LiquidityPoolStore interface {
		GetLiquidityPool(ctx context.Context, marketId uuid.UUID) (*LiquidityPool, error)
		UpsertLiquidityPool(ctx context.Context, pool *LiquidityPool) error
	}

	// LiquidityPool is the interest-accruing debt ledger for one market.
	// BorrowIndex starts at one and never decreases; the owed amount of a
	// debt position is debtShares * BorrowIndex at read time. Only borrow is
	// locally pausable; repay must always be available.
	LiquidityPool struct {
		MarketId uuid.UUID `json:"marketId" gorm:"primaryKey"`

		Cash            decimal.Decimal `json:"cash"`
		TotalDebtShares decimal.Decimal `json:"totalDebtShares"`
		BorrowIndex     decimal.Decimal `json:"borrowIndex"`
		TotalReserves   decimal.Decimal `json:"totalReserves"`

		BorrowPaused bool `json:"borrowPaused"`

		LastAccrual int64 `json:"lastAccrual"`
	}
)

func NewLiquidityPool(clk clock.Clock, marketId uuid.UUID) *LiquidityPool {
	return &LiquidityPool{
		MarketId:        marketId,
		Cash:            decimal.Zero,
		TotalDebtShares: decimal.Zero,
		BorrowIndex:     ONE,
		TotalReserves:   decimal.Zero,
		LastAccrual:     clk.Now().Unix(),
	}
}

func (p *LiquidityPool) Clone() *LiquidityPool {
	clone := *p
	return &clone
}

func (p *LiquidityPool) TotalBorrows() decimal.Decimal {
	return p.TotalDebtShares.Mul(p.BorrowIndex)
}

func (p *LiquidityPool) DebtAmount(shares decimal.Decimal) decimal.Decimal {
	return shares.Mul(p.BorrowIndex)
}

func (p *LiquidityPool) DebtShares(amount decimal.Decimal) decimal.Decimal {
	return amount.Div(p.BorrowIndex)
}

// AccrueInterest advances the borrow index for the elapsed time and credits
// the reserve factor's share of new interest to reserves. Idempotent within
// a single timestamp.
func (p *LiquidityPool) AccrueInterest(rc *RateConfig, currentTimestamp int64) error {
	timeDelta := currentTimestamp - p.LastAccrual
	if timeDelta <= 0 {
		return nil
	}
	p.LastAccrual = currentTimestamp

	borrows := p.TotalBorrows()
	if borrows.IsZero() {
		return nil
	}

	borrowRate, _, err := rc.Rates(p.Cash, borrows, p.TotalReserves)
	if err != nil {
		return err
	}

	growth := borrowRate.Mul(decimal.NewFromInt(timeDelta))
	interest := borrows.Mul(growth)

	p.BorrowIndex = p.BorrowIndex.Mul(ONE.Add(growth))
	p.TotalReserves = p.TotalReserves.Add(interest.Mul(rc.ReserveFactor))

	return p.CheckSolvency()
}

// CheckSolvency holds cash + totalBorrows - totalReserves >= 0.
func (p *LiquidityPool) CheckSolvency() error {
	if p.Cash.Add(p.TotalBorrows()).Sub(p.TotalReserves).LessThan(decimal.Zero) {
		return ErrReserveDeficit
	}
	return nil
}

func (p *LiquidityPool) SetBorrowPaused(paused bool) error {
	if p.BorrowPaused == paused {
		return ErrSameValue
	}
	p.BorrowPaused = paused
	return nil
}

// SupplyLiquidity adds lendable cash to the pool.
func (p *LiquidityPool) SupplyLiquidity(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(ZERO_AMOUNT_THRESHOLD) {
		return ErrZeroAmount
	}
	p.Cash = p.Cash.Add(amount)
	return nil
}

// WithdrawReserves pays accumulated reserves out, never below zero and never
// more than on-hand cash.
func (p *LiquidityPool) WithdrawReserves(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(ZERO_AMOUNT_THRESHOLD) {
		return ErrZeroAmount
	}
	if amount.GreaterThan(p.TotalReserves) || amount.GreaterThan(p.Cash) {
		return ErrInsufficientLiquidity
	}
	p.TotalReserves = p.TotalReserves.Sub(amount)
	p.Cash = p.Cash.Sub(amount)
	return nil
}

// DebtVault couples a pool with one account's debt position and carries out
// debt operations on them. Callers operate on clones and commit afterwards.
type DebtVault struct {
	clk clock.Clock
	log Log

	Market   *Market
	Pool     *LiquidityPool
	Position *DebtPosition
}

func NewDebtVault(clk clock.Clock, log Log, market *Market, pool *LiquidityPool, position *DebtPosition) *DebtVault {
	return &DebtVault{
		clk:      clk,
		log:      log,
		Market:   market,
		Pool:     pool,
		Position: position,
	}
}

func (v *DebtVault) Owed() decimal.Decimal {
	return v.Pool.DebtAmount(v.Position.DebtShares)
}

// Borrow mints debt shares at the current index. Controller authorization
// happens before the commit, on the projected post-borrow state.
func (v *DebtVault) Borrow(ctx context.Context, amount decimal.Decimal) error {
	if amount.LessThanOrEqual(ZERO_AMOUNT_THRESHOLD) {
		return ErrZeroAmount
	}
	if v.Pool.BorrowPaused {
		return ErrPaused
	}
	if amount.GreaterThan(v.Pool.Cash) {
		return ErrInsufficientLiquidity
	}

	shares := v.Pool.DebtShares(amount)
	if err := v.Position.ChangeDebtShares(shares); err != nil {
		return err
	}
	v.Pool.TotalDebtShares = v.Pool.TotalDebtShares.Add(shares)
	v.Pool.Cash = v.Pool.Cash.Sub(amount)
	v.Position.LastUpdate = v.clk.Now().Unix()

	return v.Pool.CheckSolvency()
}

// Repay settles debt. Never pause-gated: exits must not be blocked. An
// amount above the outstanding debt is rejected rather than truncated so the
// ledger outcome stays auditable.
func (v *DebtVault) Repay(ctx context.Context, amount decimal.Decimal) error {
	if amount.LessThanOrEqual(ZERO_AMOUNT_THRESHOLD) {
		return ErrZeroAmount
	}

	owed := v.Owed()
	if amount.GreaterThan(owed) {
		return ErrExcessRepayment
	}

	shares := v.Pool.DebtShares(amount)
	if err := v.Position.ChangeDebtShares(shares.Neg()); err != nil {
		return err
	}
	v.Pool.TotalDebtShares = v.Pool.TotalDebtShares.Sub(shares)
	v.Pool.Cash = v.Pool.Cash.Add(amount)
	v.Position.LastUpdate = v.clk.Now().Unix()

	return v.Pool.CheckSolvency()
}

// RepayAll burns the position's full debt share balance and reports the
// amount due, rounded up so the pool is never underpaid.
func (v *DebtVault) RepayAll(ctx context.Context) (decimal.Decimal, error) {
	shares := v.Position.DebtShares
	owed := v.Pool.DebtAmount(shares)
	if !owed.GreaterThan(ZERO_AMOUNT_THRESHOLD) {
		return decimal.Zero, ErrPositionNotFound
	}

	settleAmount := owed.RoundCeil(LEDGER_DECIMALS)

	if err := v.Position.ChangeDebtShares(shares.Neg()); err != nil {
		return decimal.Zero, err
	}
	v.Pool.TotalDebtShares = v.Pool.TotalDebtShares.Sub(shares)
	v.Pool.Cash = v.Pool.Cash.Add(settleAmount)
	// the round-up sliver accrues to reserves
	v.Pool.TotalReserves = v.Pool.TotalReserves.Add(settleAmount.Sub(owed))

	if err := v.Position.Close(v.clk); err != nil {
		return decimal.Zero, err
	}
	return settleAmount, v.Pool.CheckSolvency()
}

// SeizeDebt has the same ledger effect as Repay but is invoked only by the
// controller during liquidation, with the repayment funded by the
// liquidator's collateral claim.
func (v *DebtVault) SeizeDebt(ctx context.Context, repayAmount decimal.Decimal) error {
	return v.Repay(ctx, repayAmount)
}
