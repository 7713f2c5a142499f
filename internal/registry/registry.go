// Package registry is the auction-house bookkeeping collaborator: an
// append-only list of auction ids and the aggregate proceeds settled across
// the house.
package registry

import (
	"context"
	"fmt"
	"sync"

	"auction-escrow/internal/auctionerrors"

	"github.com/shopspring/decimal"
)

// AuctionHouse records auctions and settled proceeds
type AuctionHouse interface {
	Register(ctx context.Context, auctionID string) error
	RecordProceeds(ctx context.Context, amount decimal.Decimal) error
	AuctionIDs(ctx context.Context) ([]string, error)
	Balance(ctx context.Context) (decimal.Decimal, error)
}

// Memory is an in-process AuctionHouse
type Memory struct {
	mu      sync.RWMutex
	ids     []string
	balance decimal.Decimal
}

// NewMemory creates an empty in-process registry
func NewMemory() *Memory {
	return &Memory{balance: decimal.Zero}
}

// Register appends an auction id
func (m *Memory) Register(_ context.Context, auctionID string) error {
	if auctionID == "" {
		return fmt.Errorf("register: %w - empty auction ID", auctionerrors.ErrInvalidAuction)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.ids = append(m.ids, auctionID)
	return nil
}

// RecordProceeds adds a settled amount to the house balance
func (m *Memory) RecordProceeds(_ context.Context, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("record proceeds %s: %w", amount, auctionerrors.ErrInvalidAmount)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.balance = m.balance.Add(amount)
	return nil
}

// AuctionIDs returns registered ids in registration order
func (m *Memory) AuctionIDs(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.ids...), nil
}

// Balance returns the aggregate settled proceeds
func (m *Memory) Balance(_ context.Context) (decimal.Decimal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.balance, nil
}
