package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Identity names a participant: a seller, a bidder or an asset owner
type Identity string

// Asset represents the unique item being sold
type Asset struct {
	AssetID     string            `json:"asset_id"`
	Owner       Identity          `json:"owner"`
	Name        string            `json:"name"`
	Category    string            `json:"category"`
	Description string            `json:"description"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

// Bid represents one bidder's locked offer on an auction
type Bid struct {
	BidID     string          `json:"bid_id"`
	AuctionID string          `json:"auction_id"`
	Bidder    Identity        `json:"bidder"`
	Amount    decimal.Decimal `json:"amount"`
	Claimed   bool            `json:"claimed"`
	PlacedAt  int64           `json:"placed_at"` // clock milliseconds
}

// AuctionState is derived from the clock and the settlement marker
type AuctionState string

const (
	AuctionStateOpen    AuctionState = "open"
	AuctionStateExpired AuctionState = "expired"
	AuctionStateSettled AuctionState = "settled"
)

// AuctionSnapshot is a consistent, read-only copy of one auction record
type AuctionSnapshot struct {
	AuctionID       string          `json:"auction_id"`
	AssetID         string          `json:"asset_id"`
	Seller          Identity        `json:"seller"`
	StartingPrice   decimal.Decimal `json:"starting_price"`
	ReservePrice    decimal.Decimal `json:"reserve_price"`
	StartTime       int64           `json:"start_time"`
	EndTime         int64           `json:"end_time"`
	State           AuctionState    `json:"state"`
	WinningBidID    string          `json:"winning_bid_id,omitempty"`
	WinningBidder   Identity        `json:"winning_bidder,omitempty"`
	WinningAmount   decimal.Decimal `json:"winning_amount"`
	EscrowBalance   decimal.Decimal `json:"escrow_balance"`
	ProceedsBalance decimal.Decimal `json:"proceeds_balance"`
	BidCount        int             `json:"bid_count"`
	Settled         bool            `json:"settled"`
}

// Settlement is the outcome of a successful settle
type Settlement struct {
	AuctionID string          `json:"auction_id"`
	AssetID   string          `json:"asset_id"`
	BidID     string          `json:"bid_id"`
	Seller    Identity        `json:"seller"`
	Winner    Identity        `json:"winner"`
	Amount    decimal.Decimal `json:"amount"`
}

// Withdrawal is the outcome of a bid withdrawal or a proceeds sweep
type Withdrawal struct {
	AuctionID string          `json:"auction_id"`
	BidID     string          `json:"bid_id,omitempty"`
	Recipient Identity        `json:"recipient"`
	Amount    decimal.Decimal `json:"amount"`
}
