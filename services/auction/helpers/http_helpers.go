package helpers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"auction-escrow/internal/auctionerrors"
	model "auction-escrow/internal/models"
	"auction-escrow/utils"

	"github.com/gin-gonic/gin"
)

// CallerKey is the gin context key holding the authenticated caller identity
const CallerKey = "caller_identity"

var ErrUnauthenticated = errors.New("missing caller identity")

// SetCaller stores the authenticated caller on the request context
func SetCaller(c *gin.Context, id model.Identity) {
	c.Set(CallerKey, id)
}

// RequireCaller returns the authenticated caller or sends 401
func RequireCaller(c *gin.Context, handlerName string) (model.Identity, bool) {
	if v, ok := c.Get(CallerKey); ok {
		if id, ok := v.(model.Identity); ok && id != "" {
			return id, true
		}
	}
	utils.JSONError(c, http.StatusUnauthorized, ErrUnauthenticated, "authentication required")
	utils.Warn(handlerName+": unauthenticated request", map[string]any{"path": c.Request.URL.Path})
	return "", false
}

// HandleBindError sends a standardized JSON error for binding failures
func HandleBindError(c *gin.Context, handlerName string, err error) {
	wrappedErr := fmt.Errorf("invalid request payload: %w", err)
	utils.JSONError(c, http.StatusBadRequest, wrappedErr, "invalid request payload")
	utils.Warn(handlerName+": binding error", map[string]any{"error": err.Error()})
}

// HandleServiceError maps a service error to its HTTP response and logs it
func HandleServiceError(c *gin.Context, handlerName string, err error, fields map[string]any) {
	status, message := MapErrorToHTTP(err)
	utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)

	if fields == nil {
		fields = map[string]any{}
	}
	fields["handler"] = handlerName
	fields["error"] = err.Error()
	if status >= http.StatusInternalServerError {
		utils.Error(handlerName+": request failed", fields)
		return
	}
	utils.Warn(handlerName+": request rejected", fields)
}

// MapErrorToHTTP maps domain/service errors to HTTP status code and message
func MapErrorToHTTP(err error) (int, string) {
	switch {
	case errors.Is(err, auctionerrors.ErrAuctionNotFound):
		return http.StatusNotFound, "auction not found"
	case errors.Is(err, auctionerrors.ErrAssetNotFound):
		return http.StatusNotFound, "asset not found"
	case errors.Is(err, auctionerrors.ErrBidNotFound):
		return http.StatusNotFound, "bid not found"
	case errors.Is(err, auctionerrors.ErrInvalidAuction):
		return http.StatusBadRequest, "invalid auction details"
	case errors.Is(err, auctionerrors.ErrInvalidBid):
		return http.StatusBadRequest, "invalid bid details"
	case errors.Is(err, auctionerrors.ErrInvalidAmount):
		return http.StatusBadRequest, "invalid amount"
	case errors.Is(err, auctionerrors.ErrNotOwner):
		return http.StatusForbidden, "caller is not the owner"
	case errors.Is(err, auctionerrors.ErrNotBidder):
		return http.StatusForbidden, "caller is not the bidder"
	case errors.Is(err, auctionerrors.ErrBidTooLow):
		return http.StatusConflict, "bid amount too low"
	case errors.Is(err, auctionerrors.ErrAuctionClosed):
		return http.StatusConflict, "auction is closed"
	case errors.Is(err, auctionerrors.ErrAuctionNotExpired):
		return http.StatusConflict, "auction has not expired"
	case errors.Is(err, auctionerrors.ErrReserveNotMet):
		return http.StatusConflict, "reserve price not met"
	case errors.Is(err, auctionerrors.ErrNoBids):
		return http.StatusConflict, "no bids found for auction"
	case errors.Is(err, auctionerrors.ErrAlreadyClaimed):
		return http.StatusConflict, "bid already claimed"
	case errors.Is(err, auctionerrors.ErrAlreadySettled):
		return http.StatusConflict, "auction already settled"
	case errors.Is(err, auctionerrors.ErrAssetListed):
		return http.StatusConflict, "asset already listed in an auction"
	case errors.Is(err, auctionerrors.ErrDuplicateBid):
		return http.StatusConflict, "bid already recorded"
	case errors.Is(err, auctionerrors.ErrInsufficientBalance):
		return http.StatusUnprocessableEntity, "insufficient escrow balance"
	case errors.Is(err, auctionerrors.ErrInsufficientFunds):
		return http.StatusUnprocessableEntity, "insufficient wallet funds"
	case errors.Is(err, auctionerrors.ErrUserNoBids):
		return http.StatusOK, "no auctions found for user"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// ToBidResponse converts a bid to its wire form
func ToBidResponse(b model.Bid) BidResponse {
	return BidResponse{
		BidID:     b.BidID,
		AuctionID: b.AuctionID,
		Bidder:    string(b.Bidder),
		Amount:    b.Amount,
		Claimed:   b.Claimed,
		PlacedAt:  time.UnixMilli(b.PlacedAt).UTC().Format(time.RFC3339),
	}
}

// LogSuccess is a small helper to standardize logging of successful operations
func LogSuccess(handlerName, message string, ctx map[string]any) {
	utils.Info(handlerName+": "+message, ctx)
}
