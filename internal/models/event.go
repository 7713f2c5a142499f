package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// EventKind names an auction lifecycle event
type EventKind string

const (
	EventAuctionOpened  EventKind = "AuctionOpened"
	EventBidPlaced      EventKind = "BidPlaced"
	EventAuctionSettled EventKind = "AuctionSettled"
	EventFundsWithdrawn EventKind = "FundsWithdrawn"
)

// Event is emitted to off-system observers after an operation commits
type Event struct {
	EventID    string          `json:"event_id"`
	Kind       EventKind       `json:"kind"`
	AuctionID  string          `json:"auction_id"`
	AssetID    string          `json:"asset_id"`
	BidID      string          `json:"bid_id,omitempty"`
	Identity   Identity        `json:"identity,omitempty"`
	Amount     decimal.Decimal `json:"amount"`
	OccurredAt time.Time       `json:"occurred_at"`
}
