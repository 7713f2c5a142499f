// Package funds is the fund transfer primitive: wallets lock caller funds
// into transferable Values and release Values back to identities.
package funds

import (
	"fmt"

	"auction-escrow/internal/auctionerrors"

	"github.com/shopspring/decimal"
)

// Value is a locked, transferable amount. Values are only minted by Wallets
// and only move through Join and Split, so no other code path can create or
// destroy funds.
type Value struct {
	amount decimal.Decimal
}

// Amount returns the amount held by v
func (v Value) Amount() decimal.Decimal {
	return v.amount
}

// IsZero reports whether v holds nothing
func (v Value) IsZero() bool {
	return v.amount.IsZero()
}

// Join merges other into v
func (v *Value) Join(other Value) {
	v.amount = v.amount.Add(other.amount)
}

// Split removes amount from v and returns it as a separate Value
func (v *Value) Split(amount decimal.Decimal) (Value, error) {
	if amount.IsNegative() {
		return Value{}, fmt.Errorf("split %s: %w", amount, auctionerrors.ErrInvalidAmount)
	}
	if v.amount.LessThan(amount) {
		return Value{}, fmt.Errorf("split %s from %s: %w", amount, v.amount, auctionerrors.ErrInsufficientBalance)
	}
	v.amount = v.amount.Sub(amount)
	return Value{amount: amount}, nil
}
