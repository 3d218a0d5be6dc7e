package core

import (
	"context"

	"github.com/facebookgo/clock"
	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

type (
	CollateralPoolStore interface {
		GetCollateralPool(ctx context.Context, marketId uuid.UUID) (*CollateralPool, error)
		UpsertCollateralPool(ctx context.Context, pool *CollateralPool) error
	}

	// CollateralPool is the share vault backing one market's collateral.
	// Cash is held on hand; anything above Buffer is delegated to the bound
	// strategy. Only withdraw is locally pausable; deposits are throttled by
	// the controller's deposit limit instead.
	CollateralPool struct {
		MarketId uuid.UUID `json:"marketId" gorm:"primaryKey"`

		TotalShares    decimal.Decimal `json:"totalShares"`
		Cash           decimal.Decimal `json:"cash"`
		StrategyAssets decimal.Decimal `json:"strategyAssets"`
		Buffer         decimal.Decimal `json:"buffer"`

		WithdrawPaused bool `json:"withdrawPaused"`

		LastUpdate int64 `json:"lastUpdate"`
	}
)

func NewCollateralPool(clk clock.Clock, marketId uuid.UUID, buffer decimal.Decimal) *CollateralPool {
	return &CollateralPool{
		MarketId:       marketId,
		TotalShares:    decimal.Zero,
		Cash:           decimal.Zero,
		StrategyAssets: decimal.Zero,
		Buffer:         buffer,
		LastUpdate:     clk.Now().Unix(),
	}
}

func (p *CollateralPool) Clone() *CollateralPool {
	clone := *p
	return &clone
}

func (p *CollateralPool) TotalAssets() decimal.Decimal {
	return p.Cash.Add(p.StrategyAssets)
}

// ExchangeRate is assets per share, 1:1 at genesis.
func (p *CollateralPool) ExchangeRate() decimal.Decimal {
	if p.TotalShares.IsZero() {
		return ONE
	}
	return p.TotalAssets().Div(p.TotalShares)
}

// AssetAmount values shares at the current exchange rate without rounding;
// used for valuation, not for settlement.
func (p *CollateralPool) AssetAmount(shares decimal.Decimal) decimal.Decimal {
	return shares.Mul(p.ExchangeRate())
}

// SharesForDeposit rounds down: the depositor gets no more than their assets
// are worth.
func (p *CollateralPool) SharesForDeposit(amount decimal.Decimal) decimal.Decimal {
	return amount.Div(p.ExchangeRate()).Truncate(LEDGER_DECIMALS)
}

// AmountForMint rounds up: minting exact shares costs no less than they are
// worth.
func (p *CollateralPool) AmountForMint(shares decimal.Decimal) decimal.Decimal {
	return shares.Mul(p.ExchangeRate()).RoundCeil(LEDGER_DECIMALS)
}

// SharesForWithdraw rounds up the shares burned for a requested amount.
func (p *CollateralPool) SharesForWithdraw(amount decimal.Decimal) decimal.Decimal {
	return amount.Div(p.ExchangeRate()).RoundCeil(LEDGER_DECIMALS)
}

// AmountForRedeem rounds down the assets paid for exact shares.
func (p *CollateralPool) AmountForRedeem(shares decimal.Decimal) decimal.Decimal {
	return shares.Mul(p.ExchangeRate()).Truncate(LEDGER_DECIMALS)
}

func (p *CollateralPool) SetWithdrawPaused(paused bool) error {
	if p.WithdrawPaused == paused {
		return ErrSameValue
	}
	p.WithdrawPaused = paused
	return nil
}

// CollateralVault couples a pool with one account's position and the bound
// strategy, and carries out vault operations on them. Callers operate on
// clones and commit afterwards.
type CollateralVault struct {
	clk clock.Clock
	log Log

	Market   *Market
	Pool     *CollateralPool
	Position *CollateralPosition
	Strategy Strategy
}

func NewCollateralVault(clk clock.Clock, log Log, market *Market, pool *CollateralPool, position *CollateralPosition, strategy Strategy) *CollateralVault {
	return &CollateralVault{
		clk:      clk,
		log:      log,
		Market:   market,
		Pool:     pool,
		Position: position,
		Strategy: strategy,
	}
}

func (v *CollateralVault) Deposit(ctx context.Context, amount decimal.Decimal) (decimal.Decimal, error) {
	if amount.LessThanOrEqual(ZERO_AMOUNT_THRESHOLD) {
		return decimal.Zero, ErrZeroAmount
	}

	shares := v.Pool.SharesForDeposit(amount)
	if err := v.credit(ctx, shares, amount); err != nil {
		return decimal.Zero, err
	}
	return shares, nil
}

func (v *CollateralVault) Mint(ctx context.Context, shares decimal.Decimal) (decimal.Decimal, error) {
	if shares.LessThanOrEqual(ZERO_AMOUNT_THRESHOLD) {
		return decimal.Zero, ErrZeroShares
	}

	amount := v.Pool.AmountForMint(shares)
	if err := v.credit(ctx, shares, amount); err != nil {
		return decimal.Zero, err
	}
	return amount, nil
}

func (v *CollateralVault) credit(ctx context.Context, shares, amount decimal.Decimal) error {
	if err := v.Position.ChangeShares(shares); err != nil {
		return err
	}
	v.Pool.TotalShares = v.Pool.TotalShares.Add(shares)
	v.Pool.Cash = v.Pool.Cash.Add(amount)
	v.Position.LastUpdate = v.clk.Now().Unix()
	v.Pool.LastUpdate = v.clk.Now().Unix()

	return v.rebalance(ctx)
}

// rebalance forwards cash above the buffer to the strategy. The delegated
// amount is booked only after the strategy accepts it.
func (v *CollateralVault) rebalance(ctx context.Context) error {
	if v.Strategy == nil {
		return nil
	}
	excess := v.Pool.Cash.Sub(v.Pool.Buffer)
	if !excess.IsPositive() {
		return nil
	}
	if err := v.Strategy.Deposit(ctx, excess); err != nil {
		return err
	}
	v.Pool.Cash = v.Pool.Cash.Sub(excess)
	v.Pool.StrategyAssets = v.Pool.StrategyAssets.Add(excess)
	return nil
}

// ensureCash pulls from the strategy when on-hand cash cannot cover amount,
// reconciling with the amount actually returned.
func (v *CollateralVault) ensureCash(ctx context.Context, amount decimal.Decimal) error {
	if v.Pool.Cash.GreaterThanOrEqual(amount) {
		return nil
	}
	if v.Strategy == nil {
		return ErrInsufficientLiquidity
	}

	need := amount.Sub(v.Pool.Cash)
	actual, err := v.Strategy.Withdraw(ctx, need)
	if err != nil {
		return err
	}
	if actual.GreaterThan(decimal.Zero) {
		v.Pool.StrategyAssets = v.Pool.StrategyAssets.Sub(actual)
		v.Pool.Cash = v.Pool.Cash.Add(actual)
	}
	if actual.LessThan(need) {
		v.log.Warn().
			Str("market", v.Market.Name).
			Str("requested", need.String()).
			Str("actual", actual.String()).
			Msg("strategy returned less than requested")
	}
	if v.Pool.Cash.LessThan(amount) {
		return ErrInsufficientLiquidity
	}
	return nil
}

// PlanWithdraw reports the shares a Withdraw of amount would burn, applying
// the same guards without moving funds. A debit can pull real funds from the
// strategy, so authorization has to happen against the plan, before the
// debit runs.
func (v *CollateralVault) PlanWithdraw(amount decimal.Decimal) (decimal.Decimal, error) {
	if amount.LessThanOrEqual(ZERO_AMOUNT_THRESHOLD) {
		return decimal.Zero, ErrZeroAmount
	}
	if v.Pool.WithdrawPaused {
		return decimal.Zero, ErrPaused
	}
	shares := v.Pool.SharesForWithdraw(amount)
	if shares.GreaterThan(v.Position.Shares) {
		return decimal.Zero, ErrInsufficientCollateral
	}
	return shares, nil
}

// PlanRedeem mirrors PlanWithdraw for an exact-shares redemption.
func (v *CollateralVault) PlanRedeem(shares decimal.Decimal) (decimal.Decimal, error) {
	if shares.LessThanOrEqual(ZERO_AMOUNT_THRESHOLD) {
		return decimal.Zero, ErrZeroShares
	}
	if v.Pool.WithdrawPaused {
		return decimal.Zero, ErrPaused
	}
	if shares.GreaterThan(v.Position.Shares) {
		return decimal.Zero, ErrInsufficientCollateral
	}
	return shares, nil
}

// PlanWithdrawAll reports the position's full share balance.
func (v *CollateralVault) PlanWithdrawAll() (decimal.Decimal, error) {
	if v.Pool.WithdrawPaused {
		return decimal.Zero, ErrPaused
	}
	if v.Position.Shares.LessThan(EMPTY_BALANCE_THRESHOLD) {
		return decimal.Zero, ErrPositionNotFound
	}
	return v.Position.Shares, nil
}

func (v *CollateralVault) Withdraw(ctx context.Context, amount decimal.Decimal) (decimal.Decimal, error) {
	if amount.LessThanOrEqual(ZERO_AMOUNT_THRESHOLD) {
		return decimal.Zero, ErrZeroAmount
	}
	if v.Pool.WithdrawPaused {
		return decimal.Zero, ErrPaused
	}

	shares := v.Pool.SharesForWithdraw(amount)
	if err := v.debit(ctx, shares, amount); err != nil {
		return decimal.Zero, err
	}
	return shares, nil
}

func (v *CollateralVault) Redeem(ctx context.Context, shares decimal.Decimal) (decimal.Decimal, error) {
	if shares.LessThanOrEqual(ZERO_AMOUNT_THRESHOLD) {
		return decimal.Zero, ErrZeroShares
	}
	if v.Pool.WithdrawPaused {
		return decimal.Zero, ErrPaused
	}

	amount := v.Pool.AmountForRedeem(shares)
	if err := v.debit(ctx, shares, amount); err != nil {
		return decimal.Zero, err
	}
	return amount, nil
}

func (v *CollateralVault) WithdrawAll(ctx context.Context) (decimal.Decimal, error) {
	if v.Pool.WithdrawPaused {
		return decimal.Zero, ErrPaused
	}
	shares := v.Position.Shares
	if shares.LessThan(EMPTY_BALANCE_THRESHOLD) {
		return decimal.Zero, ErrPositionNotFound
	}

	amount := v.Pool.AmountForRedeem(shares)
	if err := v.debit(ctx, shares, amount); err != nil {
		return decimal.Zero, err
	}
	if err := v.Position.Close(v.clk); err != nil {
		return decimal.Zero, err
	}
	return amount, nil
}

func (v *CollateralVault) debit(ctx context.Context, shares, amount decimal.Decimal) error {
	if shares.GreaterThan(v.Position.Shares) {
		return ErrInsufficientCollateral
	}
	if err := v.ensureCash(ctx, amount); err != nil {
		return err
	}

	if err := v.Position.ChangeShares(shares.Neg()); err != nil {
		return err
	}
	v.Pool.TotalShares = v.Pool.TotalShares.Sub(shares)
	v.Pool.Cash = v.Pool.Cash.Sub(amount)
	v.Position.LastUpdate = v.clk.Now().Unix()
	v.Pool.LastUpdate = v.clk.Now().Unix()
	return nil
}

// SeizeTo moves shares from this vault's position to the liquidator's
// position in the same market. Invoked only on the controller's liquidation
// path; no assets move, only share ownership.
func (v *CollateralVault) SeizeTo(liquidator *CollateralPosition, shares decimal.Decimal) error {
	if shares.GreaterThan(v.Position.Shares) {
		return ErrExcessSeize
	}
	if err := v.Position.ChangeShares(shares.Neg()); err != nil {
		return err
	}
	if err := liquidator.ChangeShares(shares); err != nil {
		return err
	}
	now := v.clk.Now().Unix()
	v.Position.LastUpdate = now
	liquidator.LastUpdate = now
	return nil
}
