package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
database:
  dsn: "file:lend.db"
logging:
  level: debug
  output: stdout
markets:
  - asset_id: btc
    name: BTC Market
    collateral_factor_bps: 7500
    liquidation_threshold_bps: 8000
    liquidation_bonus_bps: 500
    deposit_limit: "1000000"
    buffer: "100.5"
    base_rate: "0.02"
    multiplier: "0.1"
    jump_multiplier: "1.0"
    kink: "0.8"
    reserve_factor: "0.1"
    oracle_max_age: 1h
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "file:lend.db", cfg.Database.DSN)
	assert.Equal(t, "debug", cfg.Logging.Level)
	require.Len(t, cfg.Markets, 1)

	listing := cfg.Markets[0]
	assert.Equal(t, "btc", listing.AssetId)

	marketConfig, err := listing.MarketConfig()
	require.NoError(t, err)
	assert.Equal(t, time.Hour, marketConfig.OracleMaxAge)
	assert.Equal(t, uint32(7500), marketConfig.CollateralFactorBps)
	assert.True(t, marketConfig.DepositLimit.Equal(decimal.NewFromInt(1000000)))
	assert.True(t, marketConfig.Kink.Equal(decimal.NewFromFloat(0.8)))

	buffer, err := listing.StrategyBuffer()
	require.NoError(t, err)
	assert.True(t, buffer.Equal(decimal.NewFromFloat(100.5)))
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("DATABASE_DSN", "postgres://override")

	cfg, err := LoadConfig(writeConfig(t, sampleConfig))
	require.NoError(t, err)
	assert.Equal(t, "postgres://override", cfg.Database.DSN)
}

func TestLoadConfigRejectsBadMarkets(t *testing.T) {
	tests := []struct {
		name   string
		config string
	}{
		{
			name: "missing asset id",
			config: `
markets:
  - name: BTC Market
    collateral_factor_bps: 7500
    liquidation_threshold_bps: 8000
    multiplier: "0.1"
    jump_multiplier: "1.0"
    kink: "0.8"
    oracle_max_age: 1h
`,
		},
		{
			name: "threshold below factor",
			config: `
markets:
  - asset_id: btc
    name: BTC Market
    collateral_factor_bps: 8000
    liquidation_threshold_bps: 7500
    multiplier: "0.1"
    jump_multiplier: "1.0"
    kink: "0.8"
    oracle_max_age: 1h
`,
		},
		{
			name: "unparseable decimal",
			config: `
markets:
  - asset_id: btc
    name: BTC Market
    collateral_factor_bps: 7500
    liquidation_threshold_bps: 8000
    multiplier: "not a number"
    jump_multiplier: "1.0"
    kink: "0.8"
    oracle_max_age: 1h
`,
		},
		{
			name: "duplicate name",
			config: `
markets:
  - asset_id: btc
    name: BTC Market
    collateral_factor_bps: 7500
    liquidation_threshold_bps: 8000
    multiplier: "0.1"
    jump_multiplier: "1.0"
    kink: "0.8"
    oracle_max_age: 1h
  - asset_id: btc2
    name: BTC Market
    collateral_factor_bps: 7500
    liquidation_threshold_bps: 8000
    multiplier: "0.1"
    jump_multiplier: "1.0"
    kink: "0.8"
    oracle_max_age: 1h
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.config))
			assert.Error(t, err)
		})
	}
}
