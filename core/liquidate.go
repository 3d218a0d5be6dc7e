package core

import (
	"context"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

type (
	LiquidationStore interface {
		StoreLiquidationResult(ctx context.Context, result *LiquidateResult) error
	}

	LiquidationBalances struct {
		LiquidateeCollateral *CollateralPosition `json:"liquidateeCollateral"`
		LiquidateeDebt       *DebtPosition       `json:"liquidateeDebt"`
		LiquidatorCollateral *CollateralPosition `json:"liquidatorCollateral"`
	}

	// LiquidateResult is the audit snapshot of one liquidation: who repaid
	// what, what was seized, and the account's health before and after.
	LiquidateResult struct {
		AccountId    uuid.UUID `json:"accountId"`
		LiquidatorId uuid.UUID `json:"liquidatorId"`

		DebtMarketId       uuid.UUID `json:"debtMarketId"`
		CollateralMarketId uuid.UUID `json:"collateralMarketId"`

		RepayAmount  decimal.Decimal `json:"repayAmount"`
		SeizedShares decimal.Decimal `json:"seizedShares"`

		PreHealth  decimal.Decimal `json:"preHealth"`
		PostHealth decimal.Decimal `json:"postHealth"`

		PreBalances  *LiquidationBalances `json:"preBalances"`
		PostBalances *LiquidationBalances `json:"postBalances"`

		CreatedAt int64 `json:"createdAt"`
	}
)

func (b *LiquidationBalances) Clone() *LiquidationBalances {
	if b == nil {
		return nil
	}
	return &LiquidationBalances{
		LiquidateeCollateral: b.LiquidateeCollateral.Clone(),
		LiquidateeDebt:       b.LiquidateeDebt.Clone(),
		LiquidatorCollateral: b.LiquidatorCollateral.Clone(),
	}
}

func (r *LiquidateResult) Clone() *LiquidateResult {
	clone := *r
	clone.PreBalances = r.PreBalances.Clone()
	clone.PostBalances = r.PostBalances.Clone()
	return &clone
}
