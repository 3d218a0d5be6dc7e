package core

import (
	"context"

	"github.com/shopspring/decimal"
)

// Strategy idles a collateral pool's excess cash in an external venue. The
// contract is deliberately narrow: the pool reconciles its bookkeeping with
// the amounts a strategy actually reports moving, never with the amounts it
// requested, because a strategy may be under-funded at the moment of a
// withdrawal.
type Strategy interface {
	Deposit(ctx context.Context, amount decimal.Decimal) error
	Withdraw(ctx context.Context, amount decimal.Decimal) (decimal.Decimal, error)
	Balance(ctx context.Context) (decimal.Decimal, error)
}

// IdleStrategy keeps delegated funds fully liquid. It is the default binding
// for markets without an external venue.
type IdleStrategy struct {
	held decimal.Decimal
}

func NewIdleStrategy() *IdleStrategy {
	return &IdleStrategy{held: decimal.Zero}
}

func (s *IdleStrategy) Deposit(ctx context.Context, amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrZeroAmount
	}
	s.held = s.held.Add(amount)
	return nil
}

func (s *IdleStrategy) Withdraw(ctx context.Context, amount decimal.Decimal) (decimal.Decimal, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, ErrZeroAmount
	}
	actual := decimal.Min(amount, s.held)
	s.held = s.held.Sub(actual)
	return actual, nil
}

func (s *IdleStrategy) Balance(ctx context.Context) (decimal.Decimal, error) {
	return s.held, nil
}
