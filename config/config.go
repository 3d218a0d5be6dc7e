package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/openlend/core/core"
)

type Config struct {
	Database DatabaseConfig  `yaml:"database"`
	Logging  LoggingConfig   `yaml:"logging"`
	Markets  []MarketListing `yaml:"markets"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Output string `yaml:"output"`
	MaxAge int    `yaml:"max_age"`
}

// MarketListing is the yaml shape of one market. Decimal-valued fields are
// strings so precision survives parsing.
type MarketListing struct {
	AssetId string `yaml:"asset_id"`
	Name    string `yaml:"name"`

	CollateralFactorBps     uint32 `yaml:"collateral_factor_bps"`
	LiquidationThresholdBps uint32 `yaml:"liquidation_threshold_bps"`
	LiquidationBonusBps     uint32 `yaml:"liquidation_bonus_bps"`

	DepositLimit string `yaml:"deposit_limit"`
	Buffer       string `yaml:"buffer"`

	BaseRate       string `yaml:"base_rate"`
	Multiplier     string `yaml:"multiplier"`
	JumpMultiplier string `yaml:"jump_multiplier"`
	Kink           string `yaml:"kink"`
	ReserveFactor  string `yaml:"reserve_factor"`

	// parsed with time.ParseDuration, e.g. "1h"
	OracleMaxAge string `yaml:"oracle_max_age"`
}

func LoadConfig(path string) (*Config, error) {
	// secrets may live in a .env next to the binary; missing is fine
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if v := os.Getenv("DATABASE_DSN"); v != "" {
		config.Database.DSN = strings.TrimSpace(v)
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		config.Logging.Level = strings.TrimSpace(v)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &config, nil
}

func validateConfig(cfg *Config) error {
	seen := make(map[string]bool, len(cfg.Markets))
	for i := range cfg.Markets {
		listing := &cfg.Markets[i]
		if listing.AssetId == "" {
			return fmt.Errorf("markets[%d]: asset_id is required", i)
		}
		if listing.Name == "" {
			return fmt.Errorf("markets[%d]: name is required", i)
		}
		if seen[listing.Name] {
			return fmt.Errorf("markets[%d]: duplicate market name %q", i, listing.Name)
		}
		seen[listing.Name] = true

		marketConfig, err := listing.MarketConfig()
		if err != nil {
			return fmt.Errorf("markets[%d]: %w", i, err)
		}
		if err := marketConfig.Validate(); err != nil {
			return fmt.Errorf("markets[%d]: %w", i, err)
		}
	}
	return nil
}

// MarketConfig converts the yaml listing into the core market configuration.
func (l *MarketListing) MarketConfig() (core.MarketConfig, error) {
	depositLimit, err := parseDecimal(l.DepositLimit, decimal.Zero)
	if err != nil {
		return core.MarketConfig{}, fmt.Errorf("deposit_limit: %w", err)
	}
	baseRate, err := parseDecimal(l.BaseRate, decimal.Zero)
	if err != nil {
		return core.MarketConfig{}, fmt.Errorf("base_rate: %w", err)
	}
	multiplier, err := parseDecimal(l.Multiplier, decimal.Zero)
	if err != nil {
		return core.MarketConfig{}, fmt.Errorf("multiplier: %w", err)
	}
	jumpMultiplier, err := parseDecimal(l.JumpMultiplier, decimal.Zero)
	if err != nil {
		return core.MarketConfig{}, fmt.Errorf("jump_multiplier: %w", err)
	}
	kink, err := parseDecimal(l.Kink, decimal.Zero)
	if err != nil {
		return core.MarketConfig{}, fmt.Errorf("kink: %w", err)
	}
	reserveFactor, err := parseDecimal(l.ReserveFactor, decimal.Zero)
	if err != nil {
		return core.MarketConfig{}, fmt.Errorf("reserve_factor: %w", err)
	}
	maxAge, err := time.ParseDuration(l.OracleMaxAge)
	if err != nil {
		return core.MarketConfig{}, fmt.Errorf("oracle_max_age: %w", err)
	}

	return core.MarketConfig{
		CollateralFactorBps:     l.CollateralFactorBps,
		LiquidationThresholdBps: l.LiquidationThresholdBps,
		LiquidationBonusBps:     l.LiquidationBonusBps,
		DepositLimit:            depositLimit,
		RateConfig: core.RateConfig{
			BaseRate:       baseRate,
			Multiplier:     multiplier,
			JumpMultiplier: jumpMultiplier,
			Kink:           kink,
			ReserveFactor:  reserveFactor,
		},
		OracleMaxAge: maxAge,
	}, nil
}

// StrategyBuffer returns the collateral cash buffer for the market, zero
// when unset.
func (l *MarketListing) StrategyBuffer() (decimal.Decimal, error) {
	buffer, err := parseDecimal(l.Buffer, decimal.Zero)
	if err != nil {
		return decimal.Zero, fmt.Errorf("buffer: %w", err)
	}
	return buffer, nil
}

func parseDecimal(s string, fallback decimal.Decimal) (decimal.Decimal, error) {
	if s == "" {
		return fallback, nil
	}
	return decimal.NewFromString(s)
}
