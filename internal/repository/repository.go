package repository

import (
	"fmt"
	"sync"

	"auction-escrow/internal/auction"
	"auction-escrow/internal/auctionerrors"
	model "auction-escrow/internal/models"
)

//go:generate mockgen -source=repository.go -destination=mock_repository.go -package=repository

// AuctionDB defines the auction record storage interface
type AuctionDB interface {
	CreateAuction(a *auction.Auction) error
	GetAuction(auctionID string) (*auction.Auction, error)
	RecordBidder(auctionID string, bidder model.Identity) error
	GetAuctionsByBidder(bidder model.Identity) ([]*auction.Auction, error)
}

// MemoryRepo is a concurrency-safe in-memory implementation of AuctionDB.
// The repo lock only guards the maps; each auction serializes its own
// operations, so work on different auctions never contends here for long.
type MemoryRepo struct {
	mu          sync.RWMutex
	auctions    map[string]*auction.Auction // key: auctionID -> value: auction record
	order       []string                    // auction ids in creation order
	bidderIndex map[model.Identity][]string // key: bidder -> value: auctionIDs the bidder has bid on
}

// NewMemoryRepo creates a new in-memory repository instance
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		auctions:    make(map[string]*auction.Auction),
		bidderIndex: make(map[model.Identity][]string),
	}
}

// CreateAuction stores a new auction record
func (r *MemoryRepo) CreateAuction(a *auction.Auction) error {
	if a == nil || a.ID() == "" {
		return fmt.Errorf("create auction: %w - missing auction", auctionerrors.ErrInvalidAuction)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.auctions[a.ID()]; ok {
		return fmt.Errorf("create auction %s: %w - duplicate id", a.ID(), auctionerrors.ErrInvalidAuction)
	}
	r.auctions[a.ID()] = a
	r.order = append(r.order, a.ID())
	return nil
}

// GetAuction returns the auction record with the given id
func (r *MemoryRepo) GetAuction(auctionID string) (*auction.Auction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.auctions[auctionID]
	if !ok {
		return nil, fmt.Errorf("get auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}
	return a, nil
}

// RecordBidder remembers that bidder has bid on an auction
func (r *MemoryRepo) RecordBidder(auctionID string, bidder model.Identity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.auctions[auctionID]; !ok {
		return fmt.Errorf("record bidder for auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}

	for _, id := range r.bidderIndex[bidder] {
		if id == auctionID {
			return nil
		}
	}
	r.bidderIndex[bidder] = append(r.bidderIndex[bidder], auctionID)

	return nil
}

// GetAuctionsByBidder returns all auctions a bidder has bid on
func (r *MemoryRepo) GetAuctionsByBidder(bidder model.Identity) ([]*auction.Auction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids, ok := r.bidderIndex[bidder]
	if !ok || len(ids) == 0 {
		return nil, fmt.Errorf("get auctions for bidder %s: %w", bidder, auctionerrors.ErrUserNoBids)
	}

	out := make([]*auction.Auction, 0, len(ids))
	for _, id := range ids {
		if a, exists := r.auctions[id]; exists {
			out = append(out, a)
		}
	}
	return out, nil
}

// count returns the number of stored auctions
func (r *MemoryRepo) count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
