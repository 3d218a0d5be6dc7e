package core

import (
	"context"

	"github.com/facebookgo/clock"
	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

// LedgerService bundles the durable ledger: market configuration, both pool
// states and the per-account positions. Implementations report a missing
// record as gorm.ErrRecordNotFound.
type LedgerService struct {
	MarketStore
	CollateralPoolStore
	LiquidityPoolStore
	CollateralPositionStore
	DebtPositionStore
	LiquidationStore
}

// FindOrCreateCollateralPosition returns the stored position or a fresh
// zero-share one. The fresh position is not persisted here; it reaches the
// store only when the surrounding operation commits.
func FindOrCreateCollateralPosition(ctx context.Context, clk clock.Clock, svc LedgerService, marketId, accountId uuid.UUID) (*CollateralPosition, error) {
	position, err := svc.FindCollateralPosition(ctx, marketId, accountId)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return NewCollateralPosition(clk, accountId, marketId), nil
		}
		return nil, err
	}
	return position, nil
}

func FindOrCreateDebtPosition(ctx context.Context, clk clock.Clock, svc LedgerService, marketId, accountId uuid.UUID) (*DebtPosition, error) {
	position, err := svc.FindDebtPosition(ctx, marketId, accountId)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return NewDebtPosition(clk, accountId, marketId), nil
		}
		return nil, err
	}
	return position, nil
}
