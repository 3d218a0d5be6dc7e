package core

import (
	"context"

	"github.com/facebookgo/clock"
	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

type (
	CollateralPositionStore interface {
		FindCollateralPosition(ctx context.Context, marketId, accountId uuid.UUID) (*CollateralPosition, error)
		UpsertCollateralPosition(ctx context.Context, position *CollateralPosition) error
		ListCollateralPositions(ctx context.Context, accountId uuid.UUID) ([]*CollateralPosition, error)
	}

	DebtPositionStore interface {
		FindDebtPosition(ctx context.Context, marketId, accountId uuid.UUID) (*DebtPosition, error)
		UpsertDebtPosition(ctx context.Context, position *DebtPosition) error
		ListDebtPositions(ctx context.Context, accountId uuid.UUID) ([]*DebtPosition, error)
	}

	// CollateralPosition is an account's share balance in one market's vault.
	// A zero-share position is a valid, stable state.
	CollateralPosition struct {
		AccountId uuid.UUID `json:"accountId" gorm:"primaryKey"`
		MarketId  uuid.UUID `json:"marketId" gorm:"primaryKey"`

		Shares decimal.Decimal `json:"shares"`
		Active bool            `json:"active"`

		LastUpdate int64 `json:"lastUpdate"`
	}

	// DebtPosition tracks principal scaled by the pool's borrow index; the
	// owed amount is DebtShares * borrowIndex at read time.
	DebtPosition struct {
		AccountId uuid.UUID `json:"accountId" gorm:"primaryKey"`
		MarketId  uuid.UUID `json:"marketId" gorm:"primaryKey"`

		DebtShares decimal.Decimal `json:"debtShares"`
		Active     bool            `json:"active"`

		LastUpdate int64 `json:"lastUpdate"`
	}
)

func NewCollateralPosition(clk clock.Clock, accountId, marketId uuid.UUID) *CollateralPosition {
	return &CollateralPosition{
		AccountId:  accountId,
		MarketId:   marketId,
		Shares:     decimal.Zero,
		Active:     true,
		LastUpdate: clk.Now().Unix(),
	}
}

func (p *CollateralPosition) Clone() *CollateralPosition {
	clone := *p
	return &clone
}

func (p *CollateralPosition) IsEmpty() bool {
	return p.Shares.LessThan(EMPTY_BALANCE_THRESHOLD)
}

func (p *CollateralPosition) ChangeShares(delta decimal.Decimal) error {
	shares := p.Shares.Add(delta)
	if shares.LessThan(decimal.Zero) {
		return ErrInsufficientCollateral
	}
	p.Shares = shares
	return nil
}

func (p *CollateralPosition) Close(clk clock.Clock) error {
	if !p.IsEmpty() {
		return ErrIllegalPositionState
	}
	p.Shares = decimal.Zero
	p.Active = false
	p.LastUpdate = clk.Now().Unix()
	return nil
}

func NewDebtPosition(clk clock.Clock, accountId, marketId uuid.UUID) *DebtPosition {
	return &DebtPosition{
		AccountId:  accountId,
		MarketId:   marketId,
		DebtShares: decimal.Zero,
		Active:     true,
		LastUpdate: clk.Now().Unix(),
	}
}

func (p *DebtPosition) Clone() *DebtPosition {
	clone := *p
	return &clone
}

func (p *DebtPosition) IsEmpty() bool {
	return p.DebtShares.LessThan(EMPTY_BALANCE_THRESHOLD)
}

func (p *DebtPosition) ChangeDebtShares(delta decimal.Decimal) error {
	shares := p.DebtShares.Add(delta)
	if shares.LessThan(decimal.Zero) {
		return ErrExcessRepayment
	}
	p.DebtShares = shares
	return nil
}

func (p *DebtPosition) Close(clk clock.Clock) error {
	if !p.IsEmpty() {
		return ErrIllegalPositionState
	}
	p.DebtShares = decimal.Zero
	p.Active = false
	p.LastUpdate = clk.Now().Unix()
	return nil
}
