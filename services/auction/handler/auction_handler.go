package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"auction-escrow/internal/auction"
	"auction-escrow/internal/auctionerrors"
	model "auction-escrow/internal/models"
	"auction-escrow/services/auction/helpers"
	"auction-escrow/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=auction_handler.go -destination=mock_auction_handler.go -package=handler

type AuctionServiceInterface interface {
	CreateAsset(ctx context.Context, owner model.Identity, name, category, description string, metadata map[string]string) (model.Asset, error)
	GetAsset(ctx context.Context, assetID string) (model.Asset, error)
	OpenAuction(ctx context.Context, caller model.Identity, assetID string, p auction.Params) (model.AuctionSnapshot, error)
	PlaceBid(ctx context.Context, caller model.Identity, auctionID string, amount decimal.Decimal) (model.Bid, error)
	Settle(ctx context.Context, caller model.Identity, auctionID string) (model.Settlement, error)
	WithdrawBid(ctx context.Context, caller model.Identity, auctionID, bidID string) (model.Withdrawal, error)
	WithdrawSellerFunds(ctx context.Context, caller model.Identity, auctionID string, amount decimal.Decimal) (model.Withdrawal, error)
	GetAuction(ctx context.Context, auctionID string) (model.AuctionSnapshot, error)
	GetBids(ctx context.Context, auctionID string) ([]model.Bid, error)
	GetAuctionsByBidder(ctx context.Context, bidder model.Identity) ([]model.AuctionSnapshot, error)
	RecentEvents(ctx context.Context, auctionID string, limit int64) ([]model.Event, error)
	FundWallet(ctx context.Context, to model.Identity, amount decimal.Decimal) (decimal.Decimal, error)
	WalletBalance(ctx context.Context, id model.Identity) decimal.Decimal
}

type AuctionHandler struct {
	service AuctionServiceInterface
}

func NewAuctionHandler(service AuctionServiceInterface) *AuctionHandler {
	return &AuctionHandler{service: service}
}

// CreateAssetHandler handles POST /assets
func (h *AuctionHandler) CreateAssetHandler(c *gin.Context) {
	caller, ok := helpers.RequireCaller(c, "CreateAssetHandler")
	if !ok {
		return
	}

	var req helpers.CreateAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "CreateAssetHandler", err)
		return
	}

	asset, err := h.service.CreateAsset(c.Request.Context(), caller, req.Name, req.Category, req.Description, req.Metadata)
	if err != nil {
		helpers.HandleServiceError(c, "CreateAssetHandler", err, map[string]any{"owner": string(caller)})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, asset, "asset created successfully")
	helpers.LogSuccess("CreateAssetHandler", "asset created successfully", map[string]any{
		"asset_id": asset.AssetID,
		"owner":    string(caller),
	})
}

// GetAssetHandler handles GET /assets/:asset_id
func (h *AuctionHandler) GetAssetHandler(c *gin.Context) {
	assetID := c.Param("asset_id")
	asset, err := h.service.GetAsset(c.Request.Context(), assetID)
	if err != nil {
		helpers.HandleServiceError(c, "GetAssetHandler", err, map[string]any{"asset_id": assetID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, asset, "asset retrieved successfully")
}

// OpenAuctionHandler handles POST /auctions
func (h *AuctionHandler) OpenAuctionHandler(c *gin.Context) {
	caller, ok := helpers.RequireCaller(c, "OpenAuctionHandler")
	if !ok {
		return
	}

	var req helpers.OpenAuctionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "OpenAuctionHandler", err)
		return
	}
	if !req.StartingPrice.IsPositive() {
		helpers.HandleBindError(c, "OpenAuctionHandler", fmt.Errorf("starting_price must be positive"))
		return
	}
	if req.ReservePrice.IsZero() {
		req.ReservePrice = req.StartingPrice
	}

	snap, err := h.service.OpenAuction(c.Request.Context(), caller, req.AssetID, auction.Params{
		StartingPrice: req.StartingPrice,
		ReservePrice:  req.ReservePrice,
		DurationMs:    req.DurationMs,
	})
	if err != nil {
		helpers.HandleServiceError(c, "OpenAuctionHandler", err, map[string]any{
			"asset_id": req.AssetID,
			"caller":   string(caller),
		})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, snap, "auction opened successfully")
	helpers.LogSuccess("OpenAuctionHandler", "auction opened successfully", map[string]any{
		"auction_id": snap.AuctionID,
		"asset_id":   snap.AssetID,
		"seller":     string(snap.Seller),
		"end_time":   snap.EndTime,
	})
}

// GetAuctionHandler handles GET /auctions/:auction_id
func (h *AuctionHandler) GetAuctionHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")
	snap, err := h.service.GetAuction(c.Request.Context(), auctionID)
	if err != nil {
		helpers.HandleServiceError(c, "GetAuctionHandler", err, map[string]any{"auction_id": auctionID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, snap, "auction retrieved successfully")
}

// GetBidsHandler handles GET /auctions/:auction_id/bids
func (h *AuctionHandler) GetBidsHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")
	bids, err := h.service.GetBids(c.Request.Context(), auctionID)
	if err != nil {
		helpers.HandleServiceError(c, "GetBidsHandler", err, map[string]any{"auction_id": auctionID})
		return
	}

	resp := make([]helpers.BidResponse, 0, len(bids))
	for _, b := range bids {
		resp = append(resp, helpers.ToBidResponse(b))
	}

	utils.JSONResponse(c, http.StatusOK, resp, "bids retrieved successfully")
	helpers.LogSuccess("GetBidsHandler", "bids retrieved successfully", map[string]any{
		"auction_id": auctionID,
		"count":      len(resp),
	})
}

// PlaceBidHandler handles POST /auctions/:auction_id/bids
func (h *AuctionHandler) PlaceBidHandler(c *gin.Context) {
	caller, ok := helpers.RequireCaller(c, "PlaceBidHandler")
	if !ok {
		return
	}

	var req helpers.PlaceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "PlaceBidHandler", err)
		return
	}
	if !req.Amount.IsPositive() {
		helpers.HandleBindError(c, "PlaceBidHandler", fmt.Errorf("amount must be positive"))
		return
	}

	auctionID := c.Param("auction_id")
	bid, err := h.service.PlaceBid(c.Request.Context(), caller, auctionID, req.Amount)
	if err != nil {
		helpers.HandleServiceError(c, "PlaceBidHandler", err, map[string]any{
			"auction_id": auctionID,
			"bidder":     string(caller),
			"amount":     req.Amount.String(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, helpers.ToBidResponse(bid), "bid recorded successfully")
	helpers.LogSuccess("PlaceBidHandler", "bid recorded successfully", map[string]any{
		"bid_id":     bid.BidID,
		"auction_id": auctionID,
		"bidder":     string(caller),
		"amount":     bid.Amount.String(),
	})
}

// SettleHandler handles POST /auctions/:auction_id/settle
func (h *AuctionHandler) SettleHandler(c *gin.Context) {
	caller, ok := helpers.RequireCaller(c, "SettleHandler")
	if !ok {
		return
	}

	auctionID := c.Param("auction_id")
	st, err := h.service.Settle(c.Request.Context(), caller, auctionID)
	if err != nil {
		helpers.HandleServiceError(c, "SettleHandler", err, map[string]any{
			"auction_id": auctionID,
			"caller":     string(caller),
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, st, "auction settled successfully")
	helpers.LogSuccess("SettleHandler", "auction settled successfully", map[string]any{
		"auction_id": auctionID,
		"winner":     string(st.Winner),
		"amount":     st.Amount.String(),
	})
}

// WithdrawBidHandler handles POST /auctions/:auction_id/bids/:bid_id/withdraw
func (h *AuctionHandler) WithdrawBidHandler(c *gin.Context) {
	caller, ok := helpers.RequireCaller(c, "WithdrawBidHandler")
	if !ok {
		return
	}

	auctionID, bidID := c.Param("auction_id"), c.Param("bid_id")
	w, err := h.service.WithdrawBid(c.Request.Context(), caller, auctionID, bidID)
	if err != nil {
		helpers.HandleServiceError(c, "WithdrawBidHandler", err, map[string]any{
			"auction_id": auctionID,
			"bid_id":     bidID,
			"caller":     string(caller),
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, w, "bid withdrawn successfully")
	helpers.LogSuccess("WithdrawBidHandler", "bid withdrawn successfully", map[string]any{
		"auction_id": auctionID,
		"bid_id":     bidID,
		"amount":     w.Amount.String(),
	})
}

// WithdrawProceedsHandler handles POST /auctions/:auction_id/proceeds/withdraw
func (h *AuctionHandler) WithdrawProceedsHandler(c *gin.Context) {
	caller, ok := helpers.RequireCaller(c, "WithdrawProceedsHandler")
	if !ok {
		return
	}

	var req helpers.AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "WithdrawProceedsHandler", err)
		return
	}
	if !req.Amount.IsPositive() {
		helpers.HandleBindError(c, "WithdrawProceedsHandler", fmt.Errorf("amount must be positive"))
		return
	}

	auctionID := c.Param("auction_id")
	w, err := h.service.WithdrawSellerFunds(c.Request.Context(), caller, auctionID, req.Amount)
	if err != nil {
		helpers.HandleServiceError(c, "WithdrawProceedsHandler", err, map[string]any{
			"auction_id": auctionID,
			"caller":     string(caller),
			"amount":     req.Amount.String(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, w, "proceeds withdrawn successfully")
	helpers.LogSuccess("WithdrawProceedsHandler", "proceeds withdrawn successfully", map[string]any{
		"auction_id": auctionID,
		"amount":     w.Amount.String(),
	})
}

// GetEventsHandler handles GET /auctions/:auction_id/events?limit=N
func (h *AuctionHandler) GetEventsHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")

	var limit int64
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n <= 0 {
			helpers.HandleBindError(c, "GetEventsHandler", fmt.Errorf("limit %q must be a positive integer", raw))
			return
		}
		limit = n
	}

	list, err := h.service.RecentEvents(c.Request.Context(), auctionID, limit)
	if err != nil {
		helpers.HandleServiceError(c, "GetEventsHandler", err, map[string]any{"auction_id": auctionID})
		return
	}
	if list == nil {
		list = []model.Event{}
	}

	utils.JSONResponse(c, http.StatusOK, list, "events retrieved successfully")
}

// GetMyAuctionsHandler handles GET /users/me/auctions
func (h *AuctionHandler) GetMyAuctionsHandler(c *gin.Context) {
	caller, ok := helpers.RequireCaller(c, "GetMyAuctionsHandler")
	if !ok {
		return
	}

	list, err := h.service.GetAuctionsByBidder(c.Request.Context(), caller)
	if err != nil && !errors.Is(err, auctionerrors.ErrUserNoBids) {
		helpers.HandleServiceError(c, "GetMyAuctionsHandler", err, map[string]any{"bidder": string(caller)})
		return
	}

	if list == nil {
		list = []model.AuctionSnapshot{}
	}

	utils.JSONResponse(c, http.StatusOK, list, "auctions retrieved successfully")
	helpers.LogSuccess("GetMyAuctionsHandler", "auctions retrieved successfully", map[string]any{
		"bidder":         string(caller),
		"auctions_count": len(list),
	})
}

// GetWalletHandler handles GET /wallet
func (h *AuctionHandler) GetWalletHandler(c *gin.Context) {
	caller, ok := helpers.RequireCaller(c, "GetWalletHandler")
	if !ok {
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.WalletResponse{
		Identity: string(caller),
		Balance:  h.service.WalletBalance(c.Request.Context(), caller),
	}, "wallet retrieved successfully")
}

// DepositHandler handles POST /wallet/deposit
func (h *AuctionHandler) DepositHandler(c *gin.Context) {
	caller, ok := helpers.RequireCaller(c, "DepositHandler")
	if !ok {
		return
	}

	var req helpers.AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "DepositHandler", err)
		return
	}

	balance, err := h.service.FundWallet(c.Request.Context(), caller, req.Amount)
	if err != nil {
		helpers.HandleServiceError(c, "DepositHandler", err, map[string]any{
			"identity": string(caller),
			"amount":   req.Amount.String(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.WalletResponse{Identity: string(caller), Balance: balance}, "wallet funded successfully")
	helpers.LogSuccess("DepositHandler", "wallet funded successfully", map[string]any{
		"identity": string(caller),
		"amount":   req.Amount.String(),
	})
}
