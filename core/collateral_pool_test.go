package core

import (
	"context"
	"testing"
	"time"

	"github.com/facebookgo/clock"
	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMarket(clk clock.Clock) *Market {
	return NewMarket(clk, "btc", "BTC Market", MarketConfig{
		CollateralFactorBps:     7500,
		LiquidationThresholdBps: 8000,
		LiquidationBonusBps:     500,
		RateConfig:              testRateConfig(),
		OracleMaxAge:            time.Hour,
	})
}

func newTestVault(clk clock.Clock, strategy Strategy, buffer decimal.Decimal) *CollateralVault {
	market := testMarket(clk)
	pool := NewCollateralPool(clk, market.Id, buffer)
	account, _ := uuid.NewV4()
	position := NewCollateralPosition(clk, account, market.Id)
	return NewCollateralVault(clk, testLog(), market, pool, position, strategy)
}

func TestCollateralVaultDeposit(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewMock()

	t.Run("genesis mints one to one", func(t *testing.T) {
		vault := newTestVault(clk, nil, decimal.Zero)
		shares, err := vault.Deposit(ctx, decimal.NewFromInt(1000))
		require.NoError(t, err)

		assert.True(t, shares.Equal(decimal.NewFromInt(1000)))
		assert.True(t, vault.Pool.TotalShares.Equal(decimal.NewFromInt(1000)))
		assert.True(t, vault.Pool.TotalAssets().Equal(decimal.NewFromInt(1000)))
		assert.True(t, vault.Position.Shares.Equal(shares))
	})

	t.Run("zero amount rejected", func(t *testing.T) {
		vault := newTestVault(clk, nil, decimal.Zero)
		_, err := vault.Deposit(ctx, decimal.Zero)
		assert.Equal(t, ErrZeroAmount, err)
	})

	t.Run("round trip never pays out more than put in", func(t *testing.T) {
		vault := newTestVault(clk, nil, decimal.Zero)

		// donated assets skew the exchange rate off 1:1
		vault.Pool.Cash = decimal.NewFromInt(3)
		vault.Pool.TotalShares = decimal.NewFromInt(7)

		deposit := decimal.NewFromFloat(100.12345678)
		shares, err := vault.Deposit(ctx, deposit)
		require.NoError(t, err)

		paid := vault.Pool.AmountForRedeem(shares)
		assert.True(t, paid.LessThanOrEqual(deposit), "redeem value %s exceeds deposit %s", paid, deposit)
	})
}

func TestCollateralVaultMint(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewMock()
	vault := newTestVault(clk, nil, decimal.Zero)

	amount, err := vault.Mint(ctx, decimal.NewFromInt(500))
	require.NoError(t, err)
	assert.True(t, amount.Equal(decimal.NewFromInt(500)))
	assert.True(t, vault.Position.Shares.Equal(decimal.NewFromInt(500)))

	_, err = vault.Mint(ctx, decimal.Zero)
	assert.Equal(t, ErrZeroShares, err)
}

func TestCollateralVaultWithdraw(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewMock()

	t.Run("withdraw burns shares and pays cash", func(t *testing.T) {
		vault := newTestVault(clk, nil, decimal.Zero)
		_, err := vault.Deposit(ctx, decimal.NewFromInt(1000))
		require.NoError(t, err)

		shares, err := vault.Withdraw(ctx, decimal.NewFromInt(400))
		require.NoError(t, err)
		assert.True(t, shares.Equal(decimal.NewFromInt(400)))
		assert.True(t, vault.Position.Shares.Equal(decimal.NewFromInt(600)))
		assert.True(t, vault.Pool.Cash.Equal(decimal.NewFromInt(600)))
	})

	t.Run("withdrawing more than held", func(t *testing.T) {
		vault := newTestVault(clk, nil, decimal.Zero)
		_, err := vault.Deposit(ctx, decimal.NewFromInt(100))
		require.NoError(t, err)

		_, err = vault.Withdraw(ctx, decimal.NewFromInt(101))
		assert.Equal(t, ErrInsufficientCollateral, err)
	})

	t.Run("paused", func(t *testing.T) {
		vault := newTestVault(clk, nil, decimal.Zero)
		_, err := vault.Deposit(ctx, decimal.NewFromInt(100))
		require.NoError(t, err)
		require.NoError(t, vault.Pool.SetWithdrawPaused(true))

		_, err = vault.Withdraw(ctx, decimal.NewFromInt(10))
		assert.Equal(t, ErrPaused, err)
		_, err = vault.Redeem(ctx, decimal.NewFromInt(10))
		assert.Equal(t, ErrPaused, err)
		_, err = vault.WithdrawAll(ctx)
		assert.Equal(t, ErrPaused, err)
	})

	t.Run("withdraw all closes the position", func(t *testing.T) {
		vault := newTestVault(clk, nil, decimal.Zero)
		_, err := vault.Deposit(ctx, decimal.NewFromInt(250))
		require.NoError(t, err)

		amount, err := vault.WithdrawAll(ctx)
		require.NoError(t, err)
		assert.True(t, amount.Equal(decimal.NewFromInt(250)))
		assert.True(t, vault.Position.Shares.IsZero())
		assert.False(t, vault.Position.Active)

		_, err = vault.WithdrawAll(ctx)
		assert.Equal(t, ErrPositionNotFound, err)
	})
}

func TestCollateralVaultStrategy(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewMock()

	t.Run("excess above buffer is delegated", func(t *testing.T) {
		vault := newTestVault(clk, NewIdleStrategy(), decimal.NewFromInt(100))
		_, err := vault.Deposit(ctx, decimal.NewFromInt(500))
		require.NoError(t, err)

		assert.True(t, vault.Pool.Cash.Equal(decimal.NewFromInt(100)))
		assert.True(t, vault.Pool.StrategyAssets.Equal(decimal.NewFromInt(400)))
		assert.True(t, vault.Pool.TotalAssets().Equal(decimal.NewFromInt(500)))
	})

	t.Run("withdraw pulls from strategy", func(t *testing.T) {
		vault := newTestVault(clk, NewIdleStrategy(), decimal.NewFromInt(100))
		_, err := vault.Deposit(ctx, decimal.NewFromInt(500))
		require.NoError(t, err)

		_, err = vault.Withdraw(ctx, decimal.NewFromInt(300))
		require.NoError(t, err)
		assert.True(t, vault.Pool.TotalAssets().Equal(decimal.NewFromInt(200)))
		assert.True(t, vault.Position.Shares.Equal(decimal.NewFromInt(200)))
	})

	t.Run("strategy shortfall fails the withdrawal", func(t *testing.T) {
		vault := newTestVault(clk, &shortStrategy{}, decimal.Zero)
		_, err := vault.Deposit(ctx, decimal.NewFromInt(500))
		require.NoError(t, err)

		before := vault.Pool.TotalAssets()
		_, err = vault.Withdraw(ctx, decimal.NewFromInt(500))
		assert.Equal(t, ErrInsufficientLiquidity, err)
		// reconciliation books whatever the strategy actually returned
		assert.True(t, vault.Pool.TotalAssets().Equal(before))
	})
}

// shortStrategy accepts deposits but returns only half of any withdrawal.
type shortStrategy struct {
	held decimal.Decimal
}

func (s *shortStrategy) Deposit(ctx context.Context, amount decimal.Decimal) error {
	s.held = s.held.Add(amount)
	return nil
}

func (s *shortStrategy) Withdraw(ctx context.Context, amount decimal.Decimal) (decimal.Decimal, error) {
	actual := amount.Div(decimal.NewFromInt(2))
	s.held = s.held.Sub(actual)
	return actual, nil
}

func (s *shortStrategy) Balance(ctx context.Context) (decimal.Decimal, error) {
	return s.held, nil
}

func TestCollateralVaultSeizeTo(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewMock()
	vault := newTestVault(clk, nil, decimal.Zero)
	_, err := vault.Deposit(ctx, decimal.NewFromInt(1000))
	require.NoError(t, err)

	liquidator, _ := uuid.NewV4()
	liquidatorPosition := NewCollateralPosition(clk, liquidator, vault.Market.Id)

	err = vault.SeizeTo(liquidatorPosition, decimal.NewFromInt(1001))
	assert.Equal(t, ErrExcessSeize, err)

	require.NoError(t, vault.SeizeTo(liquidatorPosition, decimal.NewFromFloat(437.5)))
	assert.True(t, vault.Position.Shares.Equal(decimal.NewFromFloat(562.5)))
	assert.True(t, liquidatorPosition.Shares.Equal(decimal.NewFromFloat(437.5)))
	// share transfers leave the pool totals alone
	assert.True(t, vault.Pool.TotalShares.Equal(decimal.NewFromInt(1000)))
	assert.True(t, vault.Pool.TotalAssets().Equal(decimal.NewFromInt(1000)))
}
