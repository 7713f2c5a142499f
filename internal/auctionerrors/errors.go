package auctionerrors

import "errors"

// Lookup errors
var (
	ErrAuctionNotFound = errors.New("auction not found")
	ErrAssetNotFound   = errors.New("asset not found")
	ErrBidNotFound     = errors.New("bid not found")
	ErrDuplicateBid    = errors.New("bid already recorded")
	ErrUserNoBids      = errors.New("user has not placed any bids")
)

// Input validation errors
var (
	ErrInvalidAuction = errors.New("invalid auction parameters")
	ErrInvalidBid     = errors.New("invalid bid")
	ErrInvalidAmount  = errors.New("amount must be positive")
)

// Authorization errors
var (
	ErrNotOwner  = errors.New("caller is not the owner")
	ErrNotBidder = errors.New("caller is not the bidder")
)

// Lifecycle errors
var (
	ErrAuctionClosed     = errors.New("auction is closed")
	ErrAuctionNotExpired = errors.New("auction has not expired")
	ErrBidTooLow         = errors.New("bid amount too low")
	ErrReserveNotMet     = errors.New("reserve price not met")
	ErrNoBids            = errors.New("no bids found for auction")
	ErrAlreadyClaimed    = errors.New("bid already claimed")
	ErrAlreadySettled    = errors.New("auction already settled")
	ErrAssetListed       = errors.New("asset is already listed in an auction")
)

// Fund errors
var (
	ErrInsufficientBalance = errors.New("insufficient escrow balance")
	ErrInsufficientFunds   = errors.New("insufficient wallet funds")
)
