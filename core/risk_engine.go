package core

import (
	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

// RequirementType selects the collateral weight used for a health check:
// Initial applies the collateral factor and gates borrows and withdrawals;
// Maintenance applies the looser liquidation threshold and gates
// liquidations.
type RequirementType uint8

const (
	Initial RequirementType = iota
	Maintenance
)

type (
	// MarketPosition is one market's contribution to an account's health:
	// the market, both pool states, the account's share balances and the
	// price quote everything is valued at.
	MarketPosition struct {
		Market     *Market
		Collateral *CollateralPool
		Liquidity  *LiquidityPool

		CollateralShares decimal.Decimal
		DebtShares       decimal.Decimal

		Quote PriceQuote
	}

	// RiskEngine values an account across every market it participates in.
	// It works on a snapshot assembled by the controller, which may include
	// projected (not yet committed) state.
	RiskEngine struct {
		AccountId uuid.UUID
		Positions []*MarketPosition
	}
)

func NewRiskEngine(accountId uuid.UUID, positions []*MarketPosition) *RiskEngine {
	return &RiskEngine{AccountId: accountId, Positions: positions}
}

func (p *MarketPosition) weightedCollateralValue(requirementType RequirementType) decimal.Decimal {
	if p.CollateralShares.LessThan(EMPTY_BALANCE_THRESHOLD) {
		return decimal.Zero
	}
	amount := p.Collateral.AssetAmount(p.CollateralShares)
	weight := p.Market.CollateralWeight(requirementType)
	return amount.Mul(p.Quote.Price).Mul(weight)
}

func (p *MarketPosition) debtValue() decimal.Decimal {
	if p.DebtShares.LessThan(EMPTY_BALANCE_THRESHOLD) {
		return decimal.Zero
	}
	owed := p.Liquidity.DebtAmount(p.DebtShares)
	return owed.Mul(p.Quote.Price)
}

// HealthComponents returns the weighted collateral value and the debt value
// of the account.
func (r *RiskEngine) HealthComponents(requirementType RequirementType) (decimal.Decimal, decimal.Decimal) {
	totalCollateral := decimal.Zero
	totalDebt := decimal.Zero
	for _, p := range r.Positions {
		totalCollateral = totalCollateral.Add(p.weightedCollateralValue(requirementType))
		totalDebt = totalDebt.Add(p.debtValue())
	}
	return totalCollateral, totalDebt
}

// HealthFactor is weighted collateral over debt. With no debt the second
// return is false and the account is solvent by definition.
func (r *RiskEngine) HealthFactor(requirementType RequirementType) (decimal.Decimal, bool) {
	collateral, debt := r.HealthComponents(requirementType)
	if debt.IsZero() {
		return decimal.Zero, false
	}
	return collateral.Div(debt), true
}

// CheckHealth fails when the account's weighted collateral no longer covers
// its debt. Health exactly 1 is accepted.
func (r *RiskEngine) CheckHealth(requirementType RequirementType) error {
	collateral, debt := r.HealthComponents(requirementType)
	if debt.IsZero() {
		return nil
	}
	if collateral.LessThan(debt) {
		return ErrInsufficientCollateral
	}
	return nil
}

// CheckLiquidatable gates liquidation: it returns the maintenance health
// factor only when it is strictly below 1.
func (r *RiskEngine) CheckLiquidatable() (decimal.Decimal, error) {
	health, hasDebt := r.HealthFactor(Maintenance)
	if !hasDebt || health.GreaterThanOrEqual(ONE) {
		return decimal.Zero, ErrHealthyPosition
	}
	return health, nil
}
