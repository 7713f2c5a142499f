// Package escrow holds the pooled balance of one auction.
package escrow

import (
	"fmt"

	"auction-escrow/internal/auctionerrors"
	"auction-escrow/internal/funds"

	"github.com/shopspring/decimal"
)

// Ledger is a balance container scoped to one auction. It is not safe for
// concurrent use; the owning auction serializes access.
type Ledger struct {
	pool funds.Value
}

// Deposit adds a locked value to the ledger
func (l *Ledger) Deposit(v funds.Value) {
	l.pool.Join(v)
}

// Release removes amount from the ledger and yields it as a transferable value
func (l *Ledger) Release(amount decimal.Decimal) (funds.Value, error) {
	if !amount.IsPositive() {
		return funds.Value{}, fmt.Errorf("escrow release %s: %w", amount, auctionerrors.ErrInvalidAmount)
	}
	v, err := l.pool.Split(amount)
	if err != nil {
		return funds.Value{}, fmt.Errorf("escrow release: %w", err)
	}
	return v, nil
}

// Balance returns the amount currently held
func (l *Ledger) Balance() decimal.Decimal {
	return l.pool.Amount()
}
