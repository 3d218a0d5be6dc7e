package store

import (
	"context"
	"testing"
	"time"

	"github.com/facebookgo/clock"
	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/openlend/core/core"
)

func testMarket(clk clock.Clock) *core.Market {
	return core.NewMarket(clk, "btc", "BTC Market", core.MarketConfig{
		CollateralFactorBps:     7500,
		LiquidationThresholdBps: 8000,
		LiquidationBonusBps:     500,
		RateConfig: core.RateConfig{
			BaseRate:       decimal.NewFromFloat(0.02),
			Multiplier:     decimal.NewFromFloat(0.1),
			JumpMultiplier: decimal.NewFromFloat(1.0),
			Kink:           decimal.NewFromFloat(0.8),
			ReserveFactor:  decimal.NewFromFloat(0.1),
		},
		OracleMaxAge: time.Hour,
	})
}

func TestMemoryStoreMarkets(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewMock()
	s := NewMemoryStore()

	market := testMarket(clk)
	require.NoError(t, s.CreateMarket(ctx, market))
	assert.Error(t, s.CreateMarket(ctx, market), "duplicate create must fail")

	got, err := s.GetMarketById(ctx, market.Id)
	require.NoError(t, err)
	assert.Equal(t, market.Name, got.Name)

	got, err = s.GetMarketByAssetId(ctx, "btc")
	require.NoError(t, err)
	assert.Equal(t, market.Id, got.Id)

	_, err = s.GetMarketById(ctx, uuid.Nil)
	assert.Equal(t, gorm.ErrRecordNotFound, err)

	markets, err := s.ListMarkets(ctx)
	require.NoError(t, err)
	assert.Len(t, markets, 1)
}

func TestMemoryStoreCloneIsolation(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewMock()
	s := NewMemoryStore()

	pool := core.NewLiquidityPool(clk, uuid.Must(uuid.NewV4()))
	pool.Cash = decimal.NewFromInt(100)
	require.NoError(t, s.UpsertLiquidityPool(ctx, pool))

	// mutating a read copy must not leak into the store
	got, err := s.GetLiquidityPool(ctx, pool.MarketId)
	require.NoError(t, err)
	got.Cash = decimal.NewFromInt(0)

	again, err := s.GetLiquidityPool(ctx, pool.MarketId)
	require.NoError(t, err)
	assert.True(t, again.Cash.Equal(decimal.NewFromInt(100)))

	// mutating the written original must not either
	pool.Cash = decimal.NewFromInt(5)
	again, err = s.GetLiquidityPool(ctx, pool.MarketId)
	require.NoError(t, err)
	assert.True(t, again.Cash.Equal(decimal.NewFromInt(100)))
}

func TestMemoryStorePositions(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewMock()
	s := NewMemoryStore()

	account, _ := uuid.NewV4()
	marketA, _ := uuid.NewV4()
	marketB, _ := uuid.NewV4()

	_, err := s.FindCollateralPosition(ctx, marketA, account)
	assert.Equal(t, gorm.ErrRecordNotFound, err)

	posA := core.NewCollateralPosition(clk, account, marketA)
	posA.Shares = decimal.NewFromInt(10)
	require.NoError(t, s.UpsertCollateralPosition(ctx, posA))

	posB := core.NewCollateralPosition(clk, account, marketB)
	posB.Shares = decimal.NewFromInt(20)
	require.NoError(t, s.UpsertCollateralPosition(ctx, posB))

	positions, err := s.ListCollateralPositions(ctx, account)
	require.NoError(t, err)
	assert.Len(t, positions, 2)

	// closed positions drop out of listings
	posB.Active = false
	require.NoError(t, s.UpsertCollateralPosition(ctx, posB))
	positions, err = s.ListCollateralPositions(ctx, account)
	require.NoError(t, err)
	assert.Len(t, positions, 1)

	debt := core.NewDebtPosition(clk, account, marketA)
	debt.DebtShares = decimal.NewFromInt(7)
	require.NoError(t, s.UpsertDebtPosition(ctx, debt))

	gotDebt, err := s.FindDebtPosition(ctx, marketA, account)
	require.NoError(t, err)
	assert.True(t, gotDebt.DebtShares.Equal(decimal.NewFromInt(7)))
}

func TestMemoryStoreLiquidationHistoryIsolation(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	clk := clock.NewMock()

	account, _ := uuid.NewV4()
	liquidator, _ := uuid.NewV4()
	market, _ := uuid.NewV4()

	balances := func() *core.LiquidationBalances {
		return &core.LiquidationBalances{
			LiquidateeCollateral: core.NewCollateralPosition(clk, account, market),
			LiquidateeDebt:       core.NewDebtPosition(clk, account, market),
			LiquidatorCollateral: core.NewCollateralPosition(clk, liquidator, market),
		}
	}
	result := &core.LiquidateResult{
		AccountId:          account,
		LiquidatorId:       liquidator,
		DebtMarketId:       market,
		CollateralMarketId: market,
		RepayAmount:        decimal.NewFromInt(375),
		SeizedShares:       decimal.RequireFromString("437.5"),
		PreHealth:          decimal.RequireFromString("0.96"),
		PostHealth:         decimal.RequireFromString("1.08"),
		PreBalances:        balances(),
		PostBalances:       balances(),
	}
	require.NoError(t, s.StoreLiquidationResult(ctx, result))

	// mutating the caller's copy must not rewrite stored history
	result.RepayAmount = decimal.NewFromInt(9999)
	result.PreBalances.LiquidateeCollateral.Shares = decimal.NewFromInt(9999)

	stored := s.Liquidations()
	require.Len(t, stored, 1)
	assert.True(t, stored[0].RepayAmount.Equal(decimal.NewFromInt(375)))
	assert.True(t, stored[0].PreBalances.LiquidateeCollateral.Shares.IsZero())

	// nor must mutating a returned snapshot
	stored[0].SeizedShares = decimal.Zero
	stored[0].PostBalances.LiquidateeDebt.DebtShares = decimal.NewFromInt(1)

	again := s.Liquidations()
	assert.True(t, again[0].SeizedShares.Equal(decimal.RequireFromString("437.5")))
	assert.True(t, again[0].PostBalances.LiquidateeDebt.DebtShares.IsZero())
}
