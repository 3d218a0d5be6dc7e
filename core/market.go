package core

import (
	"context"
	"time"

	"github.com/facebookgo/clock"
	"github.com/gofrs/uuid"
	"github.com/openlend/core/utils"
	"github.com/shopspring/decimal"
)

type (
	MarketStore interface {
		CreateMarket(ctx context.Context, market *Market) error
		UpsertMarket(ctx context.Context, market *Market) error
		ListMarkets(ctx context.Context) ([]*Market, error)
		GetMarketById(ctx context.Context, marketId uuid.UUID) (*Market, error)
		GetMarketByAssetId(ctx context.Context, assetId string) (*Market, error)
	}

	// Market is a listed asset: one collateral vault plus one debt pool,
	// sharing the risk parameters configured here. The controller owns this
	// record; pools own their own state.
	Market struct {
		Id      uuid.UUID `json:"id" gorm:"primaryKey"`
		AssetId string    `json:"assetId" gorm:"index"`
		Name    string    `json:"name"`

		MarketConfig `json:"marketConfig" gorm:"embedded"`

		Active bool `json:"active"`

		CreatedAt  int64 `json:"createdAt"`
		LastUpdate int64 `json:"lastUpdate"`
	}

	MarketConfig struct {
		CollateralFactorBps     uint32 `json:"collateralFactorBps"`
		LiquidationThresholdBps uint32 `json:"liquidationThresholdBps"`
		LiquidationBonusBps     uint32 `json:"liquidationBonusBps"`

		// Zero means unlimited. The controller enforces the limit at deposit
		// time regardless of pause flags; the minimum representable unit is
		// the documented way to halt deposits.
		DepositLimit decimal.Decimal `json:"depositLimit"`

		RateConfig `json:"rateConfig" gorm:"embedded"`

		OracleMaxAge time.Duration `json:"oracleMaxAge"`
	}
)

func NewMarket(clk clock.Clock, assetId, name string, config MarketConfig) *Market {
	return &Market{
		Id:           uuid.Must(uuid.FromString(utils.GenUuidFromStrings(assetId, name))),
		AssetId:      assetId,
		Name:         name,
		MarketConfig: config,
		Active:       true,
		CreatedAt:    clk.Now().Unix(),
		LastUpdate:   clk.Now().Unix(),
	}
}

func (m *Market) Clone() *Market {
	clone := *m
	return &clone
}

// CollateralWeight converts the bps risk parameters into the decimal weight
// for the given requirement level. The maintenance threshold is looser than
// the borrowing limit, creating the buffer zone where a position may exist
// but not grow.
func (mc *MarketConfig) CollateralWeight(requirementType RequirementType) decimal.Decimal {
	switch requirementType {
	case Initial:
		return FromBps(mc.CollateralFactorBps)
	case Maintenance:
		return FromBps(mc.LiquidationThresholdBps)
	}
	return decimal.Zero
}

func (mc *MarketConfig) LiquidationBonus() decimal.Decimal {
	return ONE.Add(FromBps(mc.LiquidationBonusBps))
}

func (mc *MarketConfig) IsDepositLimitActive() bool {
	return mc.DepositLimit.IsPositive()
}

func (mc *MarketConfig) Validate() error {
	if mc.CollateralFactorBps > MAX_BPS {
		return &BoundsError{Field: "collateralFactorBps", Op: GreaterThan, Limit: BPS_SCALE}
	}
	if mc.LiquidationThresholdBps > MAX_BPS {
		return &BoundsError{Field: "liquidationThresholdBps", Op: GreaterThan, Limit: BPS_SCALE}
	}
	if mc.LiquidationThresholdBps < mc.CollateralFactorBps {
		return &BoundsError{Field: "liquidationThresholdBps", Op: LessThan, Limit: FromBps(mc.CollateralFactorBps).Mul(BPS_SCALE)}
	}
	if mc.LiquidationBonusBps > MAX_BPS {
		return &BoundsError{Field: "liquidationBonusBps", Op: GreaterThan, Limit: BPS_SCALE}
	}
	if mc.DepositLimit.LessThan(decimal.Zero) {
		return ErrInvalidConfig
	}
	if mc.OracleMaxAge <= 0 {
		return ErrInvalidConfig
	}
	return mc.RateConfig.Validate()
}

// Configure applies a partial update, ignoring zero-valued fields, then
// revalidates the whole config.
func (m *Market) Configure(config *MarketConfig) error {
	if config.CollateralFactorBps != 0 {
		m.CollateralFactorBps = config.CollateralFactorBps
	}
	if config.LiquidationThresholdBps != 0 {
		m.LiquidationThresholdBps = config.LiquidationThresholdBps
	}
	if config.LiquidationBonusBps != 0 {
		m.LiquidationBonusBps = config.LiquidationBonusBps
	}
	if !config.DepositLimit.IsZero() {
		m.DepositLimit = config.DepositLimit
	}
	if config.RateConfig != (RateConfig{}) {
		m.RateConfig.Update(&config.RateConfig)
	}
	if config.OracleMaxAge != 0 {
		m.OracleMaxAge = config.OracleMaxAge
	}

	return m.MarketConfig.Validate()
}

func (m *Market) SetDepositLimit(limit decimal.Decimal) error {
	if limit.LessThan(decimal.Zero) {
		return ErrInvalidConfig
	}
	if limit.Equal(m.DepositLimit) {
		return ErrSameValue
	}
	m.DepositLimit = limit
	return nil
}

func (m *Market) SetActive(active bool) error {
	if m.Active == active {
		return ErrSameValue
	}
	m.Active = active
	return nil
}
