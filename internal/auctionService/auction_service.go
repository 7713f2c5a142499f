package auctions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"auction-escrow/internal/access"
	"auction-escrow/internal/assets"
	"auction-escrow/internal/auction"
	"auction-escrow/internal/auctionerrors"
	"auction-escrow/internal/clock"
	"auction-escrow/internal/events"
	"auction-escrow/internal/funds"
	"auction-escrow/internal/journal"
	model "auction-escrow/internal/models"
	"auction-escrow/internal/registry"
	"auction-escrow/internal/repository"
	"auction-escrow/utils"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// AuctionService defines the business logic around escrowed auctions
type AuctionService struct {
	repo     repository.AuctionDB
	assets   *assets.Registry
	transfer *assets.Transferor
	wallets  *funds.Wallets
	clock    clock.Clock
	house    registry.AuctionHouse
	notifier events.Notifier
	history  events.History
	journal  journal.Journal
}

// Option customizes an AuctionService
type Option func(*AuctionService)

// WithClock replaces the system clock
func WithClock(c clock.Clock) Option {
	return func(s *AuctionService) { s.clock = c }
}

// WithAuctionHouse replaces the in-memory registry
func WithAuctionHouse(h registry.AuctionHouse) Option {
	return func(s *AuctionService) { s.house = h }
}

// WithNotifier replaces the log-only event sink
func WithNotifier(n events.Notifier) Option {
	return func(s *AuctionService) { s.notifier = n }
}

// WithEventHistory reads recent events from h instead of an in-process log.
// h must be fed by the configured notifier.
func WithEventHistory(h events.History) Option {
	return func(s *AuctionService) { s.history = h }
}

// WithJournal enables the fund movement journal
func WithJournal(j journal.Journal) Option {
	return func(s *AuctionService) { s.journal = j }
}

// NewAuctionService creates a new AuctionService instance
func NewAuctionService(repo repository.AuctionDB, opts ...Option) *AuctionService {
	reg, transfer := assets.NewRegistry()
	s := &AuctionService{
		repo:     repo,
		assets:   reg,
		transfer: transfer,
		wallets:  funds.NewWallets(),
		clock:    clock.System{},
		house:    registry.NewMemory(),
		notifier: events.LogNotifier{},
		journal:  journal.Nop{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.history == nil {
		mem := events.NewMemoryLog(events.DefaultRecentLimit)
		s.history = mem
		s.notifier = events.Fanout{s.notifier, mem}
	}
	return s
}

// CreateAsset lists a new asset owned by owner
func (s *AuctionService) CreateAsset(_ context.Context, owner model.Identity, name, category, description string, metadata map[string]string) (model.Asset, error) {
	asset, err := s.assets.Create(owner, name, category, description, metadata)
	if err != nil {
		return model.Asset{}, fmt.Errorf("service: failed to create asset for %s: %w", owner, err)
	}
	return asset, nil
}

// GetAsset returns an asset with its current owner
func (s *AuctionService) GetAsset(_ context.Context, assetID string) (model.Asset, error) {
	asset, err := s.assets.Get(assetID)
	if err != nil {
		return model.Asset{}, fmt.Errorf("service: failed to get asset %s: %w", assetID, err)
	}
	return asset, nil
}

// OpenAuction starts an auction of an asset the caller currently owns. The
// asset must not be held by another auction that can still sell it.
func (s *AuctionService) OpenAuction(ctx context.Context, caller model.Identity, assetID string, p auction.Params) (model.AuctionSnapshot, error) {
	if caller == "" || assetID == "" {
		return model.AuctionSnapshot{}, fmt.Errorf("service: %w - missing caller or assetID", auctionerrors.ErrInvalidAuction)
	}

	owner, err := s.assets.OwnerOf(assetID)
	if err != nil {
		return model.AuctionSnapshot{}, fmt.Errorf("service: failed to open auction for asset %s: %w", assetID, err)
	}
	if err := access.Authorize(caller, access.OpOpen, access.Subject{AssetOwner: owner}); err != nil {
		return model.AuctionSnapshot{}, fmt.Errorf("service: failed to open auction for asset %s: %w", assetID, err)
	}

	now := s.clock.NowMillis()
	a, err := auction.New(utils.GenerateID(), assetID, caller, p, now)
	if err != nil {
		return model.AuctionSnapshot{}, fmt.Errorf("service: failed to open auction for asset %s: %w", assetID, err)
	}

	prev, listed := s.assets.ListedIn(assetID)
	if listed && !s.listingConcluded(prev, now) {
		return model.AuctionSnapshot{}, fmt.Errorf("service: failed to open auction for asset %s: %w - held by auction %s", assetID, auctionerrors.ErrAssetListed, prev)
	}
	if err := s.assets.List(assetID, caller, prev, a.ID()); err != nil {
		return model.AuctionSnapshot{}, fmt.Errorf("service: failed to open auction for asset %s: %w", assetID, err)
	}
	if err := s.repo.CreateAuction(a); err != nil {
		s.assets.Unlist(assetID, a.ID())
		return model.AuctionSnapshot{}, fmt.Errorf("service: failed to store auction %s: %w", a.ID(), err)
	}

	if err := s.house.Register(ctx, a.ID()); err != nil {
		utils.Warn("service: failed to register auction with the house", map[string]any{
			"auction_id": a.ID(),
			"error":      err.Error(),
		})
	}

	s.emit(ctx, model.Event{
		Kind:      model.EventAuctionOpened,
		AuctionID: a.ID(),
		AssetID:   assetID,
		Identity:  caller,
		Amount:    p.StartingPrice,
	})

	return a.Snapshot(now), nil
}

// listingConcluded reports whether the auction holding an asset can no
// longer sell it
func (s *AuctionService) listingConcluded(auctionID string, now int64) bool {
	a, err := s.repo.GetAuction(auctionID)
	if err != nil {
		// a listing without a stored auction cannot sell
		return errors.Is(err, auctionerrors.ErrAuctionNotFound)
	}
	return a.Concluded(now)
}

// PlaceBid locks amount from the caller's wallet as a new bid
func (s *AuctionService) PlaceBid(ctx context.Context, caller model.Identity, auctionID string, amount decimal.Decimal) (model.Bid, error) {
	if caller == "" || auctionID == "" {
		return model.Bid{}, fmt.Errorf("service: %w - missing auctionID or bidder", auctionerrors.ErrInvalidBid)
	}
	if !amount.IsPositive() {
		return model.Bid{}, fmt.Errorf("service: %w - non-positive bid amount", auctionerrors.ErrInvalidBid)
	}

	a, err := s.repo.GetAuction(auctionID)
	if err != nil {
		return model.Bid{}, fmt.Errorf("service: failed to get auction %s: %w", auctionID, err)
	}

	bid, err := a.PlaceBid(s.clock.NowMillis(), utils.GenerateID(), caller, amount, s.wallets)
	if err != nil {
		return model.Bid{}, fmt.Errorf("service: failed to place bid on auction %s by %s: %w", auctionID, caller, err)
	}

	if err := s.repo.RecordBidder(auctionID, caller); err != nil {
		utils.Warn("service: failed to index bidder", map[string]any{
			"auction_id": auctionID,
			"bidder":     string(caller),
			"error":      err.Error(),
		})
	}

	s.record(ctx, journal.Entry{
		AuctionID: auctionID,
		BidID:     bid.BidID,
		Identity:  caller,
		Kind:      journal.KindBidDeposit,
		Amount:    amount,
	})
	s.emit(ctx, model.Event{
		Kind:      model.EventBidPlaced,
		AuctionID: auctionID,
		AssetID:   a.AssetID(),
		BidID:     bid.BidID,
		Identity:  caller,
		Amount:    amount,
	})

	return bid, nil
}

// Settle hands the asset to the winner and credits the winning amount to the
// seller's proceeds
func (s *AuctionService) Settle(ctx context.Context, caller model.Identity, auctionID string) (model.Settlement, error) {
	a, err := s.repo.GetAuction(auctionID)
	if err != nil {
		return model.Settlement{}, fmt.Errorf("service: failed to get auction %s: %w", auctionID, err)
	}

	st, err := a.Settle(s.clock.NowMillis(), caller, s.assets, s.transfer)
	if err != nil {
		return model.Settlement{}, fmt.Errorf("service: failed to settle auction %s: %w", auctionID, err)
	}

	if err := s.house.RecordProceeds(ctx, st.Amount); err != nil {
		utils.Warn("service: failed to record house proceeds", map[string]any{
			"auction_id": auctionID,
			"amount":     st.Amount.String(),
			"error":      err.Error(),
		})
	}

	s.record(ctx, journal.Entry{
		AuctionID: auctionID,
		BidID:     st.BidID,
		Identity:  st.Seller,
		Kind:      journal.KindSettlement,
		Amount:    st.Amount,
		Metadata:  datatypes.JSONMap{"asset_id": st.AssetID, "winner": string(st.Winner)},
	})
	s.emit(ctx, model.Event{
		Kind:      model.EventAuctionSettled,
		AuctionID: auctionID,
		AssetID:   st.AssetID,
		BidID:     st.BidID,
		Identity:  st.Winner,
		Amount:    st.Amount,
	})

	return st, nil
}

// WithdrawBid returns the funds of one of the caller's unclaimed bids
func (s *AuctionService) WithdrawBid(ctx context.Context, caller model.Identity, auctionID, bidID string) (model.Withdrawal, error) {
	if bidID == "" {
		return model.Withdrawal{}, fmt.Errorf("service: %w - empty bid ID", auctionerrors.ErrInvalidBid)
	}

	a, err := s.repo.GetAuction(auctionID)
	if err != nil {
		return model.Withdrawal{}, fmt.Errorf("service: failed to get auction %s: %w", auctionID, err)
	}

	w, err := a.WithdrawBid(caller, bidID, s.wallets)
	if err != nil {
		return model.Withdrawal{}, fmt.Errorf("service: failed to withdraw bid %s on auction %s: %w", bidID, auctionID, err)
	}

	s.record(ctx, journal.Entry{
		AuctionID: auctionID,
		BidID:     bidID,
		Identity:  w.Recipient,
		Kind:      journal.KindBidRefund,
		Amount:    w.Amount,
	})
	s.emit(ctx, model.Event{
		Kind:      model.EventFundsWithdrawn,
		AuctionID: auctionID,
		AssetID:   a.AssetID(),
		BidID:     bidID,
		Identity:  w.Recipient,
		Amount:    w.Amount,
	})

	return w, nil
}

// WithdrawSellerFunds pays amount of the settled proceeds to the seller
func (s *AuctionService) WithdrawSellerFunds(ctx context.Context, caller model.Identity, auctionID string, amount decimal.Decimal) (model.Withdrawal, error) {
	a, err := s.repo.GetAuction(auctionID)
	if err != nil {
		return model.Withdrawal{}, fmt.Errorf("service: failed to get auction %s: %w", auctionID, err)
	}

	w, err := a.WithdrawSellerFunds(caller, amount, s.wallets)
	if err != nil {
		return model.Withdrawal{}, fmt.Errorf("service: failed to withdraw proceeds of auction %s: %w", auctionID, err)
	}

	s.record(ctx, journal.Entry{
		AuctionID: auctionID,
		Identity:  w.Recipient,
		Kind:      journal.KindSellerWithdrawal,
		Amount:    w.Amount,
	})
	s.emit(ctx, model.Event{
		Kind:      model.EventFundsWithdrawn,
		AuctionID: auctionID,
		AssetID:   a.AssetID(),
		Identity:  w.Recipient,
		Amount:    w.Amount,
	})

	return w, nil
}

// GetAuction returns a snapshot of one auction
func (s *AuctionService) GetAuction(_ context.Context, auctionID string) (model.AuctionSnapshot, error) {
	a, err := s.repo.GetAuction(auctionID)
	if err != nil {
		return model.AuctionSnapshot{}, fmt.Errorf("service: failed to get auction %s: %w", auctionID, err)
	}
	return a.Snapshot(s.clock.NowMillis()), nil
}

// GetBids returns all bids of an auction in placement order
func (s *AuctionService) GetBids(_ context.Context, auctionID string) ([]model.Bid, error) {
	a, err := s.repo.GetAuction(auctionID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get bids for auction %s: %w", auctionID, err)
	}
	return a.Bids(), nil
}

// GetAuctionsByBidder returns every auction the bidder has bid on
func (s *AuctionService) GetAuctionsByBidder(_ context.Context, bidder model.Identity) ([]model.AuctionSnapshot, error) {
	if bidder == "" {
		return nil, fmt.Errorf("service: %w - empty bidder", auctionerrors.ErrInvalidBid)
	}

	list, err := s.repo.GetAuctionsByBidder(bidder)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get auctions for bidder %s: %w", bidder, err)
	}

	now := s.clock.NowMillis()
	out := make([]model.AuctionSnapshot, 0, len(list))
	for _, a := range list {
		out = append(out, a.Snapshot(now))
	}
	return out, nil
}

// RecentEvents returns up to limit of an auction's latest events, newest first
func (s *AuctionService) RecentEvents(ctx context.Context, auctionID string, limit int64) ([]model.Event, error) {
	if _, err := s.repo.GetAuction(auctionID); err != nil {
		return nil, fmt.Errorf("service: failed to get events for auction %s: %w", auctionID, err)
	}

	list, err := s.history.Recent(ctx, auctionID, limit)
	if err != nil {
		return nil, fmt.Errorf("service: failed to read events for auction %s: %w", auctionID, err)
	}
	return list, nil
}

// FundWallet credits amount to an identity's wallet
func (s *AuctionService) FundWallet(ctx context.Context, to model.Identity, amount decimal.Decimal) (decimal.Decimal, error) {
	balance, err := s.wallets.Deposit(to, amount)
	if err != nil {
		return decimal.Zero, fmt.Errorf("service: failed to fund wallet of %s: %w", to, err)
	}

	s.record(ctx, journal.Entry{
		Identity: to,
		Kind:     journal.KindFaucet,
		Amount:   amount,
	})
	return balance, nil
}

// WalletBalance returns an identity's spendable balance
func (s *AuctionService) WalletBalance(_ context.Context, id model.Identity) decimal.Decimal {
	return s.wallets.Balance(id)
}

// emit delivers an event; delivery failures are logged only
func (s *AuctionService) emit(ctx context.Context, e model.Event) {
	e.EventID = utils.GenerateID()
	e.OccurredAt = time.UnixMilli(s.clock.NowMillis()).UTC()

	if err := s.notifier.Notify(ctx, e); err != nil {
		utils.Warn("service: failed to deliver event", map[string]any{
			"event_id":   e.EventID,
			"kind":       string(e.Kind),
			"auction_id": e.AuctionID,
			"error":      err.Error(),
		})
		return
	}
	utils.Debug("service: event delivered", map[string]any{
		"event_id":   e.EventID,
		"kind":       string(e.Kind),
		"auction_id": e.AuctionID,
	})
}

// record journals a committed fund movement; failures are logged only
func (s *AuctionService) record(ctx context.Context, e journal.Entry) {
	if err := s.journal.Record(ctx, e); err != nil {
		utils.Error("service: failed to journal fund movement", map[string]any{
			"auction_id": e.AuctionID,
			"bid_id":     e.BidID,
			"kind":       string(e.Kind),
			"amount":     e.Amount.String(),
			"error":      err.Error(),
		})
	}
}
