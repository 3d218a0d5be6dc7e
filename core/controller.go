package core

import (
	"context"

	"github.com/facebookgo/clock"
	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type (
	// Controller is the authority for cross-market decisions: it owns the
	// market registry, authorizes borrows and withdrawals against projected
	// account health, enforces deposit limits, and is the only mutator that
	// spans two pools (liquidation).
	//
	// Every operation is atomic: state is loaded, cloned, mutated and
	// validated, and reaches the stores only on full success.
	Controller struct {
		clk clock.Clock
		log Log

		svc    LedgerService
		oracle PriceSource

		strategies map[uuid.UUID]Strategy
	}

	// marketState is the cloned working copy of one market for the duration
	// of a single operation.
	marketState struct {
		Market     *Market
		Collateral *CollateralPool
		Liquidity  *LiquidityPool
	}

	// projectedMarket overrides stored state with an operation's not yet
	// committed view when computing health.
	projectedMarket struct {
		state      *marketState
		collateral *CollateralPosition
		debt       *DebtPosition
	}
)

func NewController(clk clock.Clock, log Log, svc LedgerService, oracle PriceSource) *Controller {
	return &Controller{
		clk:        clk,
		log:        log,
		svc:        svc,
		oracle:     oracle,
		strategies: make(map[uuid.UUID]Strategy),
	}
}

// BindStrategy attaches the external strategy collaborator for a market's
// collateral pool.
func (c *Controller) BindStrategy(marketId uuid.UUID, strategy Strategy) {
	c.strategies[marketId] = strategy
}

func (c *Controller) strategyFor(marketId uuid.UUID) Strategy {
	return c.strategies[marketId]
}

// ------------ registry

func (c *Controller) CreateMarket(ctx context.Context, assetId, name string, config MarketConfig, buffer decimal.Decimal) (*Market, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	market := NewMarket(c.clk, assetId, name, config)
	if err := c.svc.CreateMarket(ctx, market); err != nil {
		return nil, err
	}
	if err := c.svc.UpsertCollateralPool(ctx, NewCollateralPool(c.clk, market.Id, buffer)); err != nil {
		return nil, err
	}
	if err := c.svc.UpsertLiquidityPool(ctx, NewLiquidityPool(c.clk, market.Id)); err != nil {
		return nil, err
	}

	c.log.Info().Str("market", name).Str("asset", assetId).Msg("market created")
	return market, nil
}

func (c *Controller) ConfigureMarket(ctx context.Context, marketId uuid.UUID, config *MarketConfig) error {
	market, err := c.svc.GetMarketById(ctx, marketId)
	if err != nil {
		return ErrMarketNotFound
	}
	market = market.Clone()
	if err := market.Configure(config); err != nil {
		return err
	}
	market.LastUpdate = c.clk.Now().Unix()
	return c.svc.UpsertMarket(ctx, market)
}

func (c *Controller) SetDepositLimit(ctx context.Context, marketId uuid.UUID, limit decimal.Decimal) error {
	market, err := c.svc.GetMarketById(ctx, marketId)
	if err != nil {
		return ErrMarketNotFound
	}
	market = market.Clone()
	if err := market.SetDepositLimit(limit); err != nil {
		return err
	}
	market.LastUpdate = c.clk.Now().Unix()
	return c.svc.UpsertMarket(ctx, market)
}

func (c *Controller) SetMarketActive(ctx context.Context, marketId uuid.UUID, active bool) error {
	market, err := c.svc.GetMarketById(ctx, marketId)
	if err != nil {
		return ErrMarketNotFound
	}
	market = market.Clone()
	if err := market.SetActive(active); err != nil {
		return err
	}
	market.LastUpdate = c.clk.Now().Unix()
	return c.svc.UpsertMarket(ctx, market)
}

func (c *Controller) PauseWithdraw(ctx context.Context, marketId uuid.UUID, paused bool) error {
	pool, err := c.svc.GetCollateralPool(ctx, marketId)
	if err != nil {
		return ErrMarketNotFound
	}
	pool = pool.Clone()
	if err := pool.SetWithdrawPaused(paused); err != nil {
		return err
	}
	return c.svc.UpsertCollateralPool(ctx, pool)
}

func (c *Controller) PauseBorrow(ctx context.Context, marketId uuid.UUID, paused bool) error {
	pool, err := c.svc.GetLiquidityPool(ctx, marketId)
	if err != nil {
		return ErrMarketNotFound
	}
	pool = pool.Clone()
	if err := pool.SetBorrowPaused(paused); err != nil {
		return err
	}
	return c.svc.UpsertLiquidityPool(ctx, pool)
}

// ------------ state loading and commit

// loadMarketState clones the market and both pools and accrues interest on
// the liquidity pool, so every rate-sensitive read inside the operation sees
// the advanced index.
func (c *Controller) loadMarketState(ctx context.Context, marketId uuid.UUID, requireActive bool) (*marketState, error) {
	market, err := c.svc.GetMarketById(ctx, marketId)
	if err != nil {
		return nil, ErrMarketNotFound
	}
	if requireActive && !market.Active {
		return nil, ErrMarketInactive
	}
	market = market.Clone()

	collateral, err := c.svc.GetCollateralPool(ctx, marketId)
	if err != nil {
		return nil, err
	}
	liquidity, err := c.svc.GetLiquidityPool(ctx, marketId)
	if err != nil {
		return nil, err
	}

	st := &marketState{
		Market:     market,
		Collateral: collateral.Clone(),
		Liquidity:  liquidity.Clone(),
	}
	if err := st.Liquidity.AccrueInterest(&market.RateConfig, c.clk.Now().Unix()); err != nil {
		return nil, err
	}
	return st, nil
}

func (c *Controller) commitState(ctx context.Context, st *marketState) error {
	if err := c.svc.UpsertCollateralPool(ctx, st.Collateral); err != nil {
		return err
	}
	return c.svc.UpsertLiquidityPool(ctx, st.Liquidity)
}

// ------------ health

func (c *Controller) loadRiskEngine(ctx context.Context, accountId uuid.UUID, overrides map[uuid.UUID]*projectedMarket) (*RiskEngine, error) {
	byMarket := make(map[uuid.UUID]*MarketPosition)
	ordered := make([]*MarketPosition, 0, 4)

	load := func(marketId uuid.UUID) (*MarketPosition, error) {
		if mp, ok := byMarket[marketId]; ok {
			return mp, nil
		}
		var st *marketState
		if ov := overrides[marketId]; ov != nil && ov.state != nil {
			st = ov.state
		} else {
			loaded, err := c.loadMarketState(ctx, marketId, false)
			if err != nil {
				return nil, err
			}
			st = loaded
		}
		quote, err := c.oracle.Price(ctx, st.Market.AssetId, st.Market.OracleMaxAge)
		if err != nil {
			return nil, err
		}
		mp := &MarketPosition{
			Market:           st.Market,
			Collateral:       st.Collateral,
			Liquidity:        st.Liquidity,
			CollateralShares: decimal.Zero,
			DebtShares:       decimal.Zero,
			Quote:            quote,
		}
		byMarket[marketId] = mp
		ordered = append(ordered, mp)
		return mp, nil
	}

	collaterals, err := c.svc.ListCollateralPositions(ctx, accountId)
	if err != nil {
		return nil, err
	}
	for _, position := range collaterals {
		mp, err := load(position.MarketId)
		if err != nil {
			return nil, err
		}
		mp.CollateralShares = position.Shares
	}

	debts, err := c.svc.ListDebtPositions(ctx, accountId)
	if err != nil {
		return nil, err
	}
	for _, position := range debts {
		mp, err := load(position.MarketId)
		if err != nil {
			return nil, err
		}
		mp.DebtShares = position.DebtShares
	}

	for marketId, ov := range overrides {
		mp, err := load(marketId)
		if err != nil {
			return nil, err
		}
		if ov.collateral != nil {
			mp.CollateralShares = ov.collateral.Shares
		}
		if ov.debt != nil {
			mp.DebtShares = ov.debt.DebtShares
		}
	}

	return NewRiskEngine(accountId, ordered), nil
}

// AccountHealth reports the account's health factor under the borrowing
// (Initial) requirement. The second return is false when the account carries
// no debt, in which case it is solvent by definition.
func (c *Controller) AccountHealth(ctx context.Context, accountId uuid.UUID) (decimal.Decimal, bool, error) {
	if accountId == uuid.Nil {
		return decimal.Zero, false, ErrZeroAddress
	}
	re, err := c.loadRiskEngine(ctx, accountId, nil)
	if err != nil {
		return decimal.Zero, false, err
	}
	health, hasDebt := re.HealthFactor(Initial)
	return health, hasDebt, nil
}

// ------------ collateral operations

func (c *Controller) Deposit(ctx context.Context, accountId, marketId uuid.UUID, amount decimal.Decimal) (decimal.Decimal, error) {
	if accountId == uuid.Nil {
		return decimal.Zero, ErrZeroAddress
	}
	st, err := c.loadMarketState(ctx, marketId, true)
	if err != nil {
		return decimal.Zero, err
	}
	if err := c.checkDepositLimit(st, amount); err != nil {
		return decimal.Zero, err
	}

	position, err := FindOrCreateCollateralPosition(ctx, c.clk, c.svc, marketId, accountId)
	if err != nil {
		return decimal.Zero, err
	}
	position = position.Clone()

	vault := NewCollateralVault(c.clk, c.log, st.Market, st.Collateral, position, c.strategyFor(marketId))
	shares, err := vault.Deposit(ctx, amount)
	if err != nil {
		return decimal.Zero, err
	}

	if err := c.commitState(ctx, st); err != nil {
		return decimal.Zero, err
	}
	if err := c.svc.UpsertCollateralPosition(ctx, position); err != nil {
		return decimal.Zero, err
	}

	c.log.Info().Str("market", st.Market.Name).Str("amount", amount.String()).Str("shares", shares.String()).Msg("deposit")
	return shares, nil
}

func (c *Controller) Mint(ctx context.Context, accountId, marketId uuid.UUID, shares decimal.Decimal) (decimal.Decimal, error) {
	if accountId == uuid.Nil {
		return decimal.Zero, ErrZeroAddress
	}
	st, err := c.loadMarketState(ctx, marketId, true)
	if err != nil {
		return decimal.Zero, err
	}
	if err := c.checkDepositLimit(st, st.Collateral.AmountForMint(shares)); err != nil {
		return decimal.Zero, err
	}

	position, err := FindOrCreateCollateralPosition(ctx, c.clk, c.svc, marketId, accountId)
	if err != nil {
		return decimal.Zero, err
	}
	position = position.Clone()

	vault := NewCollateralVault(c.clk, c.log, st.Market, st.Collateral, position, c.strategyFor(marketId))
	amount, err := vault.Mint(ctx, shares)
	if err != nil {
		return decimal.Zero, err
	}

	if err := c.commitState(ctx, st); err != nil {
		return decimal.Zero, err
	}
	if err := c.svc.UpsertCollateralPosition(ctx, position); err != nil {
		return decimal.Zero, err
	}
	return amount, nil
}

// checkDepositLimit runs independently of any pause flag; setting the limit
// to the minimum unit halts deposits without touching the pool.
func (c *Controller) checkDepositLimit(st *marketState, amount decimal.Decimal) error {
	if !st.Market.IsDepositLimitActive() {
		return nil
	}
	if st.Collateral.TotalAssets().Add(amount).GreaterThan(st.Market.DepositLimit) {
		return ErrDepositLimitExceeded
	}
	return nil
}

func (c *Controller) Withdraw(ctx context.Context, accountId, marketId uuid.UUID, amount decimal.Decimal) (decimal.Decimal, error) {
	return c.WithdrawTo(ctx, accountId, accountId, marketId, amount)
}

// WithdrawTo burns the owner's shares and reports the amount payable to the
// recipient. The ledger validates and records the recipient; routing the
// payout is the caller's concern.
func (c *Controller) WithdrawTo(ctx context.Context, accountId, recipientId, marketId uuid.UUID, amount decimal.Decimal) (decimal.Decimal, error) {
	return c.withdraw(ctx, accountId, recipientId, marketId,
		func(vault *CollateralVault) (decimal.Decimal, error) {
			return vault.PlanWithdraw(amount)
		},
		func(vault *CollateralVault) (decimal.Decimal, error) {
			return vault.Withdraw(ctx, amount)
		},
	)
}

func (c *Controller) Redeem(ctx context.Context, accountId, marketId uuid.UUID, shares decimal.Decimal) (decimal.Decimal, error) {
	return c.RedeemTo(ctx, accountId, accountId, marketId, shares)
}

func (c *Controller) RedeemTo(ctx context.Context, accountId, recipientId, marketId uuid.UUID, shares decimal.Decimal) (decimal.Decimal, error) {
	return c.withdraw(ctx, accountId, recipientId, marketId,
		func(vault *CollateralVault) (decimal.Decimal, error) {
			return vault.PlanRedeem(shares)
		},
		func(vault *CollateralVault) (decimal.Decimal, error) {
			return vault.Redeem(ctx, shares)
		},
	)
}

func (c *Controller) WithdrawAll(ctx context.Context, accountId, marketId uuid.UUID) (decimal.Decimal, error) {
	return c.withdraw(ctx, accountId, accountId, marketId,
		func(vault *CollateralVault) (decimal.Decimal, error) {
			return vault.PlanWithdrawAll()
		},
		func(vault *CollateralVault) (decimal.Decimal, error) {
			return vault.WithdrawAll(ctx)
		},
	)
}

// withdraw authorizes the projected post-withdrawal health before the vault
// debit runs. The debit is what reaches the bound strategy, so a rejected
// withdrawal must never execute it: the strategy's real balance only moves
// for operations that go on to commit. Withdrawals stay available on
// inactive markets; only exposure-increasing operations are gated.
func (c *Controller) withdraw(ctx context.Context, accountId, recipientId, marketId uuid.UUID, plan, op func(*CollateralVault) (decimal.Decimal, error)) (decimal.Decimal, error) {
	if accountId == uuid.Nil || recipientId == uuid.Nil {
		return decimal.Zero, ErrZeroAddress
	}
	st, err := c.loadMarketState(ctx, marketId, false)
	if err != nil {
		return decimal.Zero, err
	}

	position, err := c.svc.FindCollateralPosition(ctx, marketId, accountId)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return decimal.Zero, ErrPositionNotFound
		}
		return decimal.Zero, err
	}
	position = position.Clone()

	vault := NewCollateralVault(c.clk, c.log, st.Market, st.Collateral, position, c.strategyFor(marketId))
	shares, err := plan(vault)
	if err != nil {
		return decimal.Zero, err
	}

	projected := position.Clone()
	if err := projected.ChangeShares(shares.Neg()); err != nil {
		return decimal.Zero, err
	}
	re, err := c.loadRiskEngine(ctx, accountId, map[uuid.UUID]*projectedMarket{
		marketId: {state: st, collateral: projected},
	})
	if err != nil {
		return decimal.Zero, err
	}
	if err := re.CheckHealth(Initial); err != nil {
		return decimal.Zero, err
	}

	out, err := op(vault)
	if err != nil {
		return decimal.Zero, err
	}

	if err := c.commitState(ctx, st); err != nil {
		return decimal.Zero, err
	}
	if err := c.svc.UpsertCollateralPosition(ctx, position); err != nil {
		return decimal.Zero, err
	}

	c.log.Info().Str("market", st.Market.Name).Str("recipient", recipientId.String()).Str("out", out.String()).Msg("withdraw")
	return out, nil
}

// ------------ debt operations

func (c *Controller) SupplyLiquidity(ctx context.Context, marketId uuid.UUID, amount decimal.Decimal) error {
	st, err := c.loadMarketState(ctx, marketId, true)
	if err != nil {
		return err
	}
	if err := st.Liquidity.SupplyLiquidity(amount); err != nil {
		return err
	}
	return c.commitState(ctx, st)
}

func (c *Controller) WithdrawReserves(ctx context.Context, marketId uuid.UUID, amount decimal.Decimal) error {
	st, err := c.loadMarketState(ctx, marketId, false)
	if err != nil {
		return err
	}
	if err := st.Liquidity.WithdrawReserves(amount); err != nil {
		return err
	}
	return c.commitState(ctx, st)
}

func (c *Controller) Borrow(ctx context.Context, accountId, marketId uuid.UUID, amount decimal.Decimal) error {
	if accountId == uuid.Nil {
		return ErrZeroAddress
	}
	st, err := c.loadMarketState(ctx, marketId, true)
	if err != nil {
		return err
	}

	position, err := FindOrCreateDebtPosition(ctx, c.clk, c.svc, marketId, accountId)
	if err != nil {
		return err
	}
	position = position.Clone()

	vault := NewDebtVault(c.clk, c.log, st.Market, st.Liquidity, position)
	if err := vault.Borrow(ctx, amount); err != nil {
		return err
	}

	re, err := c.loadRiskEngine(ctx, accountId, map[uuid.UUID]*projectedMarket{
		marketId: {state: st, debt: position},
	})
	if err != nil {
		return err
	}
	if err := re.CheckHealth(Initial); err != nil {
		return err
	}

	if err := c.commitState(ctx, st); err != nil {
		return err
	}
	if err := c.svc.UpsertDebtPosition(ctx, position); err != nil {
		return err
	}

	c.log.Info().Str("market", st.Market.Name).Str("amount", amount.String()).Msg("borrow")
	return nil
}

func (c *Controller) Repay(ctx context.Context, accountId, marketId uuid.UUID, amount decimal.Decimal) error {
	_, err := c.repay(ctx, accountId, marketId, func(vault *DebtVault) (decimal.Decimal, error) {
		return amount, vault.Repay(ctx, amount)
	})
	return err
}

func (c *Controller) RepayAll(ctx context.Context, accountId, marketId uuid.UUID) (decimal.Decimal, error) {
	return c.repay(ctx, accountId, marketId, func(vault *DebtVault) (decimal.Decimal, error) {
		return vault.RepayAll(ctx)
	})
}

// repay never checks pause flags or market activity: exits are never blocked.
func (c *Controller) repay(ctx context.Context, accountId, marketId uuid.UUID, op func(*DebtVault) (decimal.Decimal, error)) (decimal.Decimal, error) {
	if accountId == uuid.Nil {
		return decimal.Zero, ErrZeroAddress
	}
	st, err := c.loadMarketState(ctx, marketId, false)
	if err != nil {
		return decimal.Zero, err
	}

	position, err := c.svc.FindDebtPosition(ctx, marketId, accountId)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return decimal.Zero, ErrPositionNotFound
		}
		return decimal.Zero, err
	}
	position = position.Clone()

	vault := NewDebtVault(c.clk, c.log, st.Market, st.Liquidity, position)
	amount, err := op(vault)
	if err != nil {
		return decimal.Zero, err
	}

	if err := c.commitState(ctx, st); err != nil {
		return decimal.Zero, err
	}
	if err := c.svc.UpsertDebtPosition(ctx, position); err != nil {
		return decimal.Zero, err
	}
	return amount, nil
}

// ------------ liquidation

// Liquidate repays part of an unhealthy account's debt from the liquidator
// and moves the corresponding collateral shares, plus the liquidation bonus,
// to the liquidator. Both pools mutate inside this single operation; nothing
// is observable half-liquidated.
func (c *Controller) Liquidate(ctx context.Context, liquidatorId, accountId, debtMarketId uuid.UUID, repayAmount decimal.Decimal, collateralMarketId uuid.UUID) (*LiquidateResult, error) {
	if liquidatorId == uuid.Nil || accountId == uuid.Nil {
		return nil, ErrZeroAddress
	}
	if liquidatorId == accountId {
		return nil, ErrIllegalLiquidation
	}
	if repayAmount.LessThanOrEqual(ZERO_AMOUNT_THRESHOLD) {
		return nil, ErrZeroAmount
	}

	debtSt, err := c.loadMarketState(ctx, debtMarketId, false)
	if err != nil {
		return nil, err
	}
	collSt := debtSt
	if collateralMarketId != debtMarketId {
		collSt, err = c.loadMarketState(ctx, collateralMarketId, false)
		if err != nil {
			return nil, err
		}
	}

	debtPosition, err := c.svc.FindDebtPosition(ctx, debtMarketId, accountId)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrPositionNotFound
		}
		return nil, err
	}
	debtPosition = debtPosition.Clone()

	collateralPosition, err := c.svc.FindCollateralPosition(ctx, collateralMarketId, accountId)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrPositionNotFound
		}
		return nil, err
	}
	collateralPosition = collateralPosition.Clone()

	liquidatorPosition, err := FindOrCreateCollateralPosition(ctx, c.clk, c.svc, collateralMarketId, liquidatorId)
	if err != nil {
		return nil, err
	}
	liquidatorPosition = liquidatorPosition.Clone()

	overrides := map[uuid.UUID]*projectedMarket{
		debtMarketId: {state: debtSt, debt: debtPosition},
	}
	if ov, ok := overrides[collateralMarketId]; ok {
		ov.collateral = collateralPosition
	} else {
		overrides[collateralMarketId] = &projectedMarket{state: collSt, collateral: collateralPosition}
	}

	re, err := c.loadRiskEngine(ctx, accountId, overrides)
	if err != nil {
		return nil, err
	}
	preHealth, err := re.CheckLiquidatable()
	if err != nil {
		return nil, err
	}

	debtQuote, err := c.oracle.Price(ctx, debtSt.Market.AssetId, debtSt.Market.OracleMaxAge)
	if err != nil {
		return nil, err
	}
	collateralQuote, err := c.oracle.Price(ctx, collSt.Market.AssetId, collSt.Market.OracleMaxAge)
	if err != nil {
		return nil, err
	}

	owed := debtSt.Liquidity.DebtAmount(debtPosition.DebtShares)
	if repayAmount.GreaterThan(owed) {
		return nil, ErrExcessRepayment
	}

	seizedAmount := repayAmount.
		Mul(debtQuote.Price).
		Div(collateralQuote.Price).
		Mul(collSt.Market.LiquidationBonus())
	seizedShares := seizedAmount.Div(collSt.Collateral.ExchangeRate()).Truncate(LEDGER_DECIMALS)

	// no automatic clamping: the liquidator must request a smaller repayment
	if seizedShares.GreaterThan(collateralPosition.Shares) {
		return nil, ErrExcessSeize
	}

	preBalances := &LiquidationBalances{
		LiquidateeCollateral: collateralPosition.Clone(),
		LiquidateeDebt:       debtPosition.Clone(),
		LiquidatorCollateral: liquidatorPosition.Clone(),
	}

	debtVault := NewDebtVault(c.clk, c.log, debtSt.Market, debtSt.Liquidity, debtPosition)
	if err := debtVault.SeizeDebt(ctx, repayAmount); err != nil {
		return nil, err
	}

	collateralVault := NewCollateralVault(c.clk, c.log, collSt.Market, collSt.Collateral, collateralPosition, c.strategyFor(collateralMarketId))
	if err := collateralVault.SeizeTo(liquidatorPosition, seizedShares); err != nil {
		return nil, err
	}

	re, err = c.loadRiskEngine(ctx, accountId, overrides)
	if err != nil {
		return nil, err
	}
	postHealth, hasDebt := re.HealthFactor(Maintenance)
	if hasDebt && postHealth.LessThan(preHealth) {
		return nil, ErrIllegalLiquidation
	}

	result := &LiquidateResult{
		AccountId:          accountId,
		LiquidatorId:       liquidatorId,
		DebtMarketId:       debtMarketId,
		CollateralMarketId: collateralMarketId,
		RepayAmount:        repayAmount,
		SeizedShares:       seizedShares,
		PreHealth:          preHealth,
		PostHealth:         postHealth,
		PreBalances:        preBalances,
		PostBalances: &LiquidationBalances{
			LiquidateeCollateral: collateralPosition.Clone(),
			LiquidateeDebt:       debtPosition.Clone(),
			LiquidatorCollateral: liquidatorPosition.Clone(),
		},
		CreatedAt: c.clk.Now().Unix(),
	}

	if err := c.commitState(ctx, debtSt); err != nil {
		return nil, err
	}
	if collSt != debtSt {
		if err := c.commitState(ctx, collSt); err != nil {
			return nil, err
		}
	}
	if err := c.svc.UpsertDebtPosition(ctx, debtPosition); err != nil {
		return nil, err
	}
	if err := c.svc.UpsertCollateralPosition(ctx, collateralPosition); err != nil {
		return nil, err
	}
	if err := c.svc.UpsertCollateralPosition(ctx, liquidatorPosition); err != nil {
		return nil, err
	}
	if err := c.svc.StoreLiquidationResult(ctx, result); err != nil {
		return nil, err
	}

	c.log.Info().
		Str("account", accountId.String()).
		Str("repaid", repayAmount.String()).
		Str("seizedShares", seizedShares.String()).
		Str("preHealth", preHealth.String()).
		Str("postHealth", postHealth.String()).
		Msg("liquidation")
	return result, nil
}
