package core

import (
	"context"
	"testing"
	"time"

	"github.com/facebookgo/clock"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

type stubFeed struct {
	quote PriceQuote
	err   error
}

func (f *stubFeed) Quote(ctx context.Context, assetId string) (PriceQuote, error) {
	if f.err != nil {
		return PriceQuote{}, f.err
	}
	return f.quote, nil
}

func testLog() Log {
	log := zerolog.Nop()
	return &log
}

func TestOraclePrice(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewMock()
	clk.Add(1000 * time.Hour)
	now := clk.Now()

	t.Run("no feeds", func(t *testing.T) {
		oracle := NewOracle(clk, testLog())
		_, err := oracle.Price(ctx, "btc", 0)
		assert.Equal(t, ErrStalePrice, err)
	})

	t.Run("most recent fresh feed wins", func(t *testing.T) {
		oracle := NewOracle(clk, testLog())
		oracle.RegisterFeed("btc", time.Hour, &stubFeed{quote: PriceQuote{
			AssetId:   "btc",
			Price:     decimal.NewFromInt(100),
			UpdatedAt: now.Add(-30 * time.Minute),
		}})
		oracle.RegisterFeed("btc", time.Hour, &stubFeed{quote: PriceQuote{
			AssetId:   "btc",
			Price:     decimal.NewFromInt(101),
			UpdatedAt: now.Add(-5 * time.Minute),
		}})

		quote, err := oracle.Price(ctx, "btc", 0)
		assert.NoError(t, err)
		assert.True(t, quote.Price.Equal(decimal.NewFromInt(101)))
	})

	t.Run("stale feeds are skipped", func(t *testing.T) {
		oracle := NewOracle(clk, testLog())
		oracle.RegisterFeed("btc", time.Hour, &stubFeed{quote: PriceQuote{
			AssetId:   "btc",
			Price:     decimal.NewFromInt(100),
			UpdatedAt: now.Add(-2 * time.Hour),
		}})
		oracle.RegisterFeed("btc", time.Hour, &stubFeed{quote: PriceQuote{
			AssetId:   "btc",
			Price:     decimal.NewFromInt(90),
			UpdatedAt: now.Add(-10 * time.Minute),
		}})

		quote, err := oracle.Price(ctx, "btc", 0)
		assert.NoError(t, err)
		assert.True(t, quote.Price.Equal(decimal.NewFromInt(90)))
	})

	t.Run("all feeds stale", func(t *testing.T) {
		oracle := NewOracle(clk, testLog())
		oracle.RegisterFeed("btc", time.Hour, &stubFeed{quote: PriceQuote{
			AssetId:   "btc",
			Price:     decimal.NewFromInt(100),
			UpdatedAt: now.Add(-2 * time.Hour),
		}})

		_, err := oracle.Price(ctx, "btc", 0)
		assert.Equal(t, ErrStalePrice, err)
	})

	t.Run("errored feed is skipped", func(t *testing.T) {
		oracle := NewOracle(clk, testLog())
		oracle.RegisterFeed("btc", time.Hour, &stubFeed{err: assert.AnError})
		oracle.RegisterFeed("btc", time.Hour, &stubFeed{quote: PriceQuote{
			AssetId:   "btc",
			Price:     decimal.NewFromInt(100),
			UpdatedAt: now,
		}})

		quote, err := oracle.Price(ctx, "btc", 0)
		assert.NoError(t, err)
		assert.True(t, quote.Price.Equal(decimal.NewFromInt(100)))
	})

	t.Run("caller bound overrides registered default", func(t *testing.T) {
		oracle := NewOracle(clk, testLog())
		oracle.RegisterFeed("btc", time.Hour, &stubFeed{quote: PriceQuote{
			AssetId:   "btc",
			Price:     decimal.NewFromInt(100),
			UpdatedAt: now.Add(-30 * time.Minute),
		}})

		_, err := oracle.Price(ctx, "btc", 10*time.Minute)
		assert.Equal(t, ErrStalePrice, err)

		quote, err := oracle.Price(ctx, "btc", 2*time.Hour)
		assert.NoError(t, err)
		assert.True(t, quote.Price.Equal(decimal.NewFromInt(100)))
	})

	t.Run("non-positive price rejected", func(t *testing.T) {
		oracle := NewOracle(clk, testLog())
		oracle.RegisterFeed("btc", time.Hour, &stubFeed{quote: PriceQuote{
			AssetId:   "btc",
			Price:     decimal.Zero,
			UpdatedAt: now,
		}})

		_, err := oracle.Price(ctx, "btc", 0)
		assert.Equal(t, ErrInvalidPrice, err)
	})
}
