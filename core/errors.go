package core

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

var (
	ErrZeroAmount  = errors.New("amount is zero")
	ErrZeroAddress = errors.New("account is the zero address")
	ErrZeroShares  = errors.New("shares are zero")
	ErrSameValue   = errors.New("value unchanged")

	ErrPaused                 = errors.New("operation paused for market")
	ErrInsufficientLiquidity  = errors.New("insufficient liquidity")
	ErrInsufficientCollateral = errors.New("insufficient collateral")
	ErrExcessRepayment        = errors.New("repayment exceeds outstanding debt")
	ErrExcessSeize            = errors.New("seizure exceeds available collateral")
	ErrHealthyPosition        = errors.New("position is healthy")
	ErrIllegalLiquidation     = errors.New("illegal liquidation")

	ErrStalePrice   = errors.New("stale price")
	ErrInvalidPrice = errors.New("invalid price")

	ErrMarketNotFound       = errors.New("market not found")
	ErrMarketInactive       = errors.New("market inactive")
	ErrPositionNotFound     = errors.New("position not found")
	ErrInvalidConfig        = errors.New("invalid market config")
	ErrDepositLimitExceeded = errors.New("deposit limit exceeded")

	ErrIllegalPositionState = errors.New("position not empty")
	ErrReserveDeficit       = errors.New("reserves exceed pool holdings")
	ErrNegativeRate         = errors.New("negative interest rate")
)

type BoundsOp string

const (
	GreaterThan BoundsOp = "greater than"
	LessThan    BoundsOp = "less than"
)

// BoundsError reports the field that violated a configured bound.
type BoundsError struct {
	Field string
	Op    BoundsOp
	Limit decimal.Decimal
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("%s must not be %s %s", e.Field, e.Op, e.Limit)
}
