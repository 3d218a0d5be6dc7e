package core

import (
	"context"
	"time"

	"github.com/facebookgo/clock"
	"github.com/shopspring/decimal"
)

type (
	// PriceQuote is consumed within a single operation and never persisted.
	PriceQuote struct {
		AssetId   string          `json:"assetId"`
		Price     decimal.Decimal `json:"price"`
		UpdatedAt time.Time       `json:"updatedAt"`
		RoundId   uint64          `json:"roundId"`
	}

	// PriceFeed is one upstream source quoting an asset.
	PriceFeed interface {
		Quote(ctx context.Context, assetId string) (PriceQuote, error)
	}

	// PriceSource is the single current-price query the controller depends
	// on. The caller supplies the staleness bound, so each market's
	// configured max age governs its own risk checks.
	PriceSource interface {
		Price(ctx context.Context, assetId string, maxAge time.Duration) (PriceQuote, error)
	}

	// Oracle aggregates registered feeds per asset. When several feeds are
	// registered, the most recently updated one that passes the staleness
	// check wins; quotes are never averaged, which would amplify a single
	// manipulated feed.
	Oracle struct {
		clk clock.Clock
		log Log

		feeds  map[string][]PriceFeed
		maxAge map[string]time.Duration
	}
)

func NewOracle(clk clock.Clock, log Log) *Oracle {
	return &Oracle{
		clk:    clk,
		log:    log,
		feeds:  make(map[string][]PriceFeed),
		maxAge: make(map[string]time.Duration),
	}
}

// RegisterFeed adds a feed with a fallback staleness bound, used only when
// a Price caller passes no bound of its own.
func (o *Oracle) RegisterFeed(assetId string, maxAge time.Duration, feed PriceFeed) {
	o.feeds[assetId] = append(o.feeds[assetId], feed)
	o.maxAge[assetId] = maxAge
}

func (o *Oracle) Price(ctx context.Context, assetId string, maxAge time.Duration) (PriceQuote, error) {
	now := o.clk.Now()
	if maxAge <= 0 {
		maxAge = o.maxAge[assetId]
	}

	var best PriceQuote
	found := false
	for _, feed := range o.feeds[assetId] {
		quote, err := feed.Quote(ctx, assetId)
		if err != nil {
			o.log.Warn().Err(err).Str("asset", assetId).Msg("price feed failed")
			continue
		}
		if now.Sub(quote.UpdatedAt) > maxAge {
			continue
		}
		if !found || quote.UpdatedAt.After(best.UpdatedAt) {
			best = quote
			found = true
		}
	}

	if !found {
		return PriceQuote{}, ErrStalePrice
	}
	if best.Price.LessThanOrEqual(decimal.Zero) {
		return PriceQuote{}, ErrInvalidPrice
	}
	return best, nil
}
