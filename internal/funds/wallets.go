package funds

import (
	"fmt"
	"sync"

	"auction-escrow/internal/auctionerrors"
	"auction-escrow/internal/models"

	"github.com/shopspring/decimal"
)

// Wallets is a concurrency-safe in-memory balance book keyed by identity
type Wallets struct {
	mu       sync.Mutex
	balances map[models.Identity]decimal.Decimal
}

// NewWallets creates an empty wallet book
func NewWallets() *Wallets {
	return &Wallets{
		balances: make(map[models.Identity]decimal.Decimal),
	}
}

// Deposit credits amount to an identity from outside the system
func (w *Wallets) Deposit(to models.Identity, amount decimal.Decimal) (decimal.Decimal, error) {
	if to == "" {
		return decimal.Zero, fmt.Errorf("deposit: %w - empty identity", auctionerrors.ErrInvalidAmount)
	}
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("deposit %s to %s: %w", amount, to, auctionerrors.ErrInvalidAmount)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.balances[to] = w.balances[to].Add(amount)
	return w.balances[to], nil
}

// Lock debits amount from an identity and returns it as a Value.
// It fails with no effect when the wallet cannot cover the amount.
func (w *Wallets) Lock(from models.Identity, amount decimal.Decimal) (Value, error) {
	if !amount.IsPositive() {
		return Value{}, fmt.Errorf("lock %s from %s: %w", amount, from, auctionerrors.ErrInvalidAmount)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	balance := w.balances[from]
	if balance.LessThan(amount) {
		return Value{}, fmt.Errorf("lock %s from %s (balance %s): %w", amount, from, balance, auctionerrors.ErrInsufficientFunds)
	}
	w.balances[from] = balance.Sub(amount)
	return Value{amount: amount}, nil
}

// ReleaseTo credits a Value to an identity
func (w *Wallets) ReleaseTo(to models.Identity, v Value) {
	if v.IsZero() {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.balances[to] = w.balances[to].Add(v.amount)
}

// Balance returns the spendable balance of an identity
func (w *Wallets) Balance(id models.Identity) decimal.Decimal {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.balances[id]
}
