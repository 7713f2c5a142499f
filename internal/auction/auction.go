// Package auction implements the lifecycle of one escrowed auction.
//
// An Auction moves from open (now < end time) to expired (now >= end time)
// and finally to settled. Every operation takes the auction's lock for its
// whole read-modify-write, so operations on one auction are serializable
// while different auctions proceed in parallel. Each operation either
// commits all of its effects or returns an error and changes nothing.
//
// Outbid bidders are not refunded automatically: their funds stay in escrow
// until they call WithdrawBid.
package auction

import (
	"fmt"
	"math"
	"sync"

	"auction-escrow/internal/access"
	"auction-escrow/internal/auctionerrors"
	"auction-escrow/internal/bidstore"
	"auction-escrow/internal/escrow"
	"auction-escrow/internal/funds"
	model "auction-escrow/internal/models"

	"github.com/shopspring/decimal"
)

// Bank locks bidder funds and pays released funds out
type Bank interface {
	Lock(from model.Identity, amount decimal.Decimal) (funds.Value, error)
	ReleaseTo(to model.Identity, v funds.Value)
}

// OwnerLookup resolves the current owner of an asset
type OwnerLookup interface {
	OwnerOf(assetID string) (model.Identity, error)
}

// OwnershipTransfer moves an asset from one owner to another, failing with
// no effect when from is not the current owner
type OwnershipTransfer interface {
	Transfer(assetID string, from, to model.Identity) error
}

// Params are the seller-chosen terms of an auction
type Params struct {
	StartingPrice decimal.Decimal
	ReservePrice  decimal.Decimal
	DurationMs    int64
}

// Validate checks the auction terms
func (p Params) Validate() error {
	if !p.StartingPrice.IsPositive() {
		return fmt.Errorf("%w - starting price must be positive", auctionerrors.ErrInvalidAuction)
	}
	if p.ReservePrice.LessThan(p.StartingPrice) {
		return fmt.Errorf("%w - reserve price below starting price", auctionerrors.ErrInvalidAuction)
	}
	if p.DurationMs <= 0 {
		return fmt.Errorf("%w - duration must be positive", auctionerrors.ErrInvalidAuction)
	}
	return nil
}

// Auction is one auction record with its bids and escrowed funds
type Auction struct {
	mu sync.Mutex

	id            string
	assetID       string
	seller        model.Identity
	startingPrice decimal.Decimal
	reservePrice  decimal.Decimal
	startTime     int64
	endTime       int64

	bids       *bidstore.Store
	escrow     escrow.Ledger // funds of every unclaimed bid
	proceeds   escrow.Ledger // settled winning amount owed to the seller
	winningBid string        // empty until the first bid
	settled    bool
}

// New creates an open auction ending DurationMs after now
func New(id, assetID string, seller model.Identity, p Params, now int64) (*Auction, error) {
	if id == "" || assetID == "" || seller == "" {
		return nil, fmt.Errorf("new auction: %w - missing id, asset or seller", auctionerrors.ErrInvalidAuction)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("new auction: %w", err)
	}
	if p.DurationMs > math.MaxInt64-now {
		return nil, fmt.Errorf("new auction: %w - duration %dms overflows the end time", auctionerrors.ErrInvalidAuction, p.DurationMs)
	}

	return &Auction{
		id:            id,
		assetID:       assetID,
		seller:        seller,
		startingPrice: p.StartingPrice,
		reservePrice:  p.ReservePrice,
		startTime:     now,
		endTime:       now + p.DurationMs,
		bids:          bidstore.New(),
	}, nil
}

// ID returns the auction id
func (a *Auction) ID() string {
	return a.id
}

// AssetID returns the id of the asset being sold
func (a *Auction) AssetID() string {
	return a.assetID
}

// Seller returns the identity that opened the auction
func (a *Auction) Seller() model.Identity {
	return a.seller
}

// PlaceBid locks amount from bidder's funds and makes the bid the current winner
func (a *Auction) PlaceBid(now int64, bidID string, bidder model.Identity, amount decimal.Decimal, bank Bank) (model.Bid, error) {
	if bidder == "" {
		return model.Bid{}, fmt.Errorf("place bid: %w - empty bidder", auctionerrors.ErrInvalidBid)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.settled || now >= a.endTime {
		return model.Bid{}, fmt.Errorf("place bid on auction %s: %w", a.id, auctionerrors.ErrAuctionClosed)
	}
	if amount.LessThan(a.startingPrice) {
		return model.Bid{}, fmt.Errorf("place bid on auction %s: %w - starting price is %s", a.id, auctionerrors.ErrBidTooLow, a.startingPrice)
	}
	if current, ok := a.winner(); ok && amount.LessThanOrEqual(current.Amount) {
		return model.Bid{}, fmt.Errorf("place bid on auction %s: %w - current highest bid is %s", a.id, auctionerrors.ErrBidTooLow, current.Amount)
	}

	locked, err := bank.Lock(bidder, amount)
	if err != nil {
		return model.Bid{}, fmt.Errorf("place bid on auction %s: %w", a.id, err)
	}

	bid := model.Bid{
		BidID:     bidID,
		AuctionID: a.id,
		Bidder:    bidder,
		Amount:    amount,
		PlacedAt:  now,
	}
	if err := a.bids.Append(bid); err != nil {
		bank.ReleaseTo(bidder, locked)
		return model.Bid{}, fmt.Errorf("place bid on auction %s: %w", a.id, err)
	}

	a.escrow.Deposit(locked)
	a.winningBid = bid.BidID
	return bid, nil
}

// Settle pays the winning amount into the seller's proceeds and hands the
// asset to the winning bidder. Both effects happen or neither does.
func (a *Auction) Settle(now int64, caller model.Identity, owners OwnerLookup, transfer OwnershipTransfer) (model.Settlement, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.settled {
		return model.Settlement{}, fmt.Errorf("settle auction %s: %w", a.id, auctionerrors.ErrAlreadySettled)
	}

	owner, err := owners.OwnerOf(a.assetID)
	if err != nil {
		return model.Settlement{}, fmt.Errorf("settle auction %s: %w", a.id, err)
	}
	if err := access.Authorize(caller, access.OpSettle, access.Subject{AssetOwner: owner}); err != nil {
		return model.Settlement{}, fmt.Errorf("settle auction %s: %w", a.id, err)
	}

	if now < a.endTime {
		return model.Settlement{}, fmt.Errorf("settle auction %s: %w - ends at %d", a.id, auctionerrors.ErrAuctionNotExpired, a.endTime)
	}
	win, ok := a.winner()
	if !ok {
		return model.Settlement{}, fmt.Errorf("settle auction %s: %w", a.id, auctionerrors.ErrNoBids)
	}
	if win.Amount.LessThan(a.reservePrice) {
		return model.Settlement{}, fmt.Errorf("settle auction %s: %w - reserve is %s, highest bid is %s", a.id, auctionerrors.ErrReserveNotMet, a.reservePrice, win.Amount)
	}

	payout, err := a.escrow.Release(win.Amount)
	if err != nil {
		return model.Settlement{}, fmt.Errorf("settle auction %s: %w", a.id, err)
	}
	if err := transfer.Transfer(a.assetID, owner, win.Bidder); err != nil {
		a.escrow.Deposit(payout)
		return model.Settlement{}, fmt.Errorf("settle auction %s: %w", a.id, err)
	}

	// Cannot fail: the winner is present and unclaimed.
	_ = a.bids.MarkClaimed(win.BidID)
	a.proceeds.Deposit(payout)
	a.settled = true

	return model.Settlement{
		AuctionID: a.id,
		AssetID:   a.assetID,
		BidID:     win.BidID,
		Seller:    a.seller,
		Winner:    win.Bidder,
		Amount:    win.Amount,
	}, nil
}

// WithdrawBid returns an unclaimed bid's funds to its bidder. Withdrawal is
// not time-gated. Withdrawing the current winner promotes the highest
// remaining unclaimed bid, or clears the winner when none is left.
func (a *Auction) WithdrawBid(caller model.Identity, bidID string, bank Bank) (model.Withdrawal, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	bid, err := a.bids.Get(bidID)
	if err != nil {
		return model.Withdrawal{}, fmt.Errorf("withdraw bid on auction %s: %w", a.id, err)
	}
	if err := access.Authorize(caller, access.OpWithdrawBid, access.Subject{Bidder: bid.Bidder}); err != nil {
		return model.Withdrawal{}, fmt.Errorf("withdraw bid %s: %w", bidID, err)
	}
	if bid.Claimed {
		return model.Withdrawal{}, fmt.Errorf("withdraw bid %s: %w", bidID, auctionerrors.ErrAlreadyClaimed)
	}

	refund, err := a.escrow.Release(bid.Amount)
	if err != nil {
		return model.Withdrawal{}, fmt.Errorf("withdraw bid %s: %w", bidID, err)
	}
	// Cannot fail: the bid exists and is unclaimed.
	_ = a.bids.MarkClaimed(bidID)

	if a.winningBid == bidID {
		a.winningBid = ""
		if next, ok := a.bids.HighestUnclaimed(); ok {
			a.winningBid = next.BidID
		}
	}

	bank.ReleaseTo(bid.Bidder, refund)

	return model.Withdrawal{
		AuctionID: a.id,
		BidID:     bidID,
		Recipient: bid.Bidder,
		Amount:    bid.Amount,
	}, nil
}

// WithdrawSellerFunds pays part or all of the settled proceeds to the seller
func (a *Auction) WithdrawSellerFunds(caller model.Identity, amount decimal.Decimal, bank Bank) (model.Withdrawal, error) {
	if err := access.Authorize(caller, access.OpWithdrawSellerFunds, access.Subject{Seller: a.seller}); err != nil {
		return model.Withdrawal{}, fmt.Errorf("withdraw seller funds on auction %s: %w", a.id, err)
	}
	if !amount.IsPositive() {
		return model.Withdrawal{}, fmt.Errorf("withdraw seller funds on auction %s: %w", a.id, auctionerrors.ErrInvalidAmount)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	payout, err := a.proceeds.Release(amount)
	if err != nil {
		return model.Withdrawal{}, fmt.Errorf("withdraw seller funds on auction %s: %w", a.id, err)
	}
	bank.ReleaseTo(a.seller, payout)

	return model.Withdrawal{
		AuctionID: a.id,
		Recipient: a.seller,
		Amount:    amount,
	}, nil
}

// Snapshot returns a consistent copy of the auction as seen at now
func (a *Auction) Snapshot(now int64) model.AuctionSnapshot {
	a.mu.Lock()
	defer a.mu.Unlock()

	snap := model.AuctionSnapshot{
		AuctionID:       a.id,
		AssetID:         a.assetID,
		Seller:          a.seller,
		StartingPrice:   a.startingPrice,
		ReservePrice:    a.reservePrice,
		StartTime:       a.startTime,
		EndTime:         a.endTime,
		State:           a.state(now),
		WinningAmount:   decimal.Zero,
		EscrowBalance:   a.escrow.Balance(),
		ProceedsBalance: a.proceeds.Balance(),
		BidCount:        a.bids.Len(),
		Settled:         a.settled,
	}
	if win, ok := a.winner(); ok {
		snap.WinningBidID = win.BidID
		snap.WinningBidder = win.Bidder
		snap.WinningAmount = win.Amount
	}
	return snap
}

// Concluded reports whether the auction can no longer sell its asset: it is
// settled, or it has expired without a bid meeting the reserve. Expired
// auctions take no new bids and withdrawals only lower the winner, so a
// concluded auction stays concluded.
func (a *Auction) Concluded(now int64) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.settled {
		return true
	}
	if now < a.endTime {
		return false
	}
	win, ok := a.winner()
	return !ok || win.Amount.LessThan(a.reservePrice)
}

// Bids returns every bid in placement order
func (a *Auction) Bids() []model.Bid {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.bids.All()
}

// CheckInvariants verifies the escrow and winner bookkeeping
func (a *Auction) CheckInvariants() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if unclaimed := a.bids.UnclaimedTotal(); !a.escrow.Balance().Equal(unclaimed) {
		return fmt.Errorf("auction %s: escrow %s != unclaimed bids %s", a.id, a.escrow.Balance(), unclaimed)
	}
	if a.escrow.Balance().IsNegative() || a.proceeds.Balance().IsNegative() {
		return fmt.Errorf("auction %s: negative balance", a.id)
	}

	if a.winningBid == "" {
		if _, ok := a.bids.HighestUnclaimed(); ok && !a.settled {
			return fmt.Errorf("auction %s: unclaimed bids but no winner", a.id)
		}
		return nil
	}

	win, err := a.bids.Get(a.winningBid)
	if err != nil {
		return fmt.Errorf("auction %s: winner: %w", a.id, err)
	}
	if !win.Amount.IsPositive() || win.Bidder == "" {
		return fmt.Errorf("auction %s: winner %s has no amount or bidder", a.id, win.BidID)
	}
	if win.Claimed && !a.settled {
		return fmt.Errorf("auction %s: winner %s claimed before settlement", a.id, win.BidID)
	}
	for _, b := range a.bids.All() {
		if !b.Claimed && b.BidID != win.BidID && b.Amount.GreaterThan(win.Amount) {
			return fmt.Errorf("auction %s: bid %s outranks winner %s", a.id, b.BidID, win.BidID)
		}
	}
	return nil
}

func (a *Auction) winner() (model.Bid, bool) {
	if a.winningBid == "" {
		return model.Bid{}, false
	}
	b, err := a.bids.Get(a.winningBid)
	if err != nil {
		return model.Bid{}, false
	}
	return b, true
}

func (a *Auction) state(now int64) model.AuctionState {
	switch {
	case a.settled:
		return model.AuctionStateSettled
	case now >= a.endTime:
		return model.AuctionStateExpired
	default:
		return model.AuctionStateOpen
	}
}
