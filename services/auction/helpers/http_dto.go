package helpers

import (
	"github.com/shopspring/decimal"
)

// Request/Response DTOs
// Amounts accept JSON numbers or strings and are always returned as strings.
type CreateAssetRequest struct {
	Name        string            `json:"name" binding:"required"`
	Category    string            `json:"category"`
	Description string            `json:"description"`
	Metadata    map[string]string `json:"metadata"`
}

type OpenAuctionRequest struct {
	AssetID       string          `json:"asset_id" binding:"required"`
	StartingPrice decimal.Decimal `json:"starting_price"`
	ReservePrice  decimal.Decimal `json:"reserve_price"` // defaults to the starting price
	DurationMs    int64           `json:"duration_ms" binding:"required,gt=0"`
}

type PlaceBidRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type AmountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type BidResponse struct {
	BidID     string          `json:"bid_id"`
	AuctionID string          `json:"auction_id"`
	Bidder    string          `json:"bidder"`
	Amount    decimal.Decimal `json:"amount"`
	Claimed   bool            `json:"claimed"`
	PlacedAt  string          `json:"placed_at"`
}

type WalletResponse struct {
	Identity string          `json:"identity"`
	Balance  decimal.Decimal `json:"balance"`
}
