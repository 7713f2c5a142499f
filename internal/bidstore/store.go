// Package bidstore keeps the bids placed against a single auction, keyed by
// bid id so that lookups stay stable while bids are claimed.
package bidstore

import (
	"fmt"

	"auction-escrow/internal/auctionerrors"
	model "auction-escrow/internal/models"

	"github.com/shopspring/decimal"
)

// Store is an append-only bid collection. It is not safe for concurrent use;
// the owning auction serializes access.
type Store struct {
	order []string              // bid ids in placement order
	bids  map[string]*model.Bid // key: bidID -> value: bid
}

// New creates an empty bid store
func New() *Store {
	return &Store{
		bids: make(map[string]*model.Bid),
	}
}

// Append records a new bid. Bid ids must be unique.
func (s *Store) Append(bid model.Bid) error {
	if bid.BidID == "" {
		return fmt.Errorf("append bid: %w - empty bid ID", auctionerrors.ErrInvalidBid)
	}
	if _, ok := s.bids[bid.BidID]; ok {
		return fmt.Errorf("append bid %s: %w", bid.BidID, auctionerrors.ErrDuplicateBid)
	}

	b := bid
	s.bids[bid.BidID] = &b
	s.order = append(s.order, bid.BidID)
	return nil
}

// Get returns a copy of the bid with the given id
func (s *Store) Get(bidID string) (model.Bid, error) {
	b, ok := s.bids[bidID]
	if !ok {
		return model.Bid{}, fmt.Errorf("get bid %s: %w", bidID, auctionerrors.ErrBidNotFound)
	}
	return *b, nil
}

// MarkClaimed flips the claimed flag of a bid. A claimed bid stays claimed.
func (s *Store) MarkClaimed(bidID string) error {
	b, ok := s.bids[bidID]
	if !ok {
		return fmt.Errorf("claim bid %s: %w", bidID, auctionerrors.ErrBidNotFound)
	}
	if b.Claimed {
		return fmt.Errorf("claim bid %s: %w", bidID, auctionerrors.ErrAlreadyClaimed)
	}
	b.Claimed = true
	return nil
}

// HighestUnclaimed returns the unclaimed bid with the greatest amount.
// Ties go to the earliest placed bid.
func (s *Store) HighestUnclaimed() (model.Bid, bool) {
	var best *model.Bid
	for _, id := range s.order {
		b := s.bids[id]
		if b.Claimed {
			continue
		}
		if best == nil || b.Amount.GreaterThan(best.Amount) {
			best = b
		}
	}
	if best == nil {
		return model.Bid{}, false
	}
	return *best, true
}

// UnclaimedTotal sums the amounts of all unclaimed bids
func (s *Store) UnclaimedTotal() decimal.Decimal {
	total := decimal.Zero
	for _, b := range s.bids {
		if !b.Claimed {
			total = total.Add(b.Amount)
		}
	}
	return total
}

// All returns copies of every bid in placement order
func (s *Store) All() []model.Bid {
	out := make([]model.Bid, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.bids[id])
	}
	return out
}

// Len returns the number of bids ever placed
func (s *Store) Len() int {
	return len(s.order)
}
