package auctions

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"auction-escrow/internal/auction"
	"auction-escrow/internal/auctionerrors"
	"auction-escrow/internal/clock"
	"auction-escrow/internal/journal"
	model "auction-escrow/internal/models"
	"auction-escrow/internal/registry"
	"auction-escrow/internal/repository"

	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const start = int64(1_000_000)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

type recordingNotifier struct {
	mu     sync.Mutex
	events []model.Event
}

func (r *recordingNotifier) Notify(_ context.Context, e model.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recordingNotifier) kinds() []model.EventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.EventKind, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Kind)
	}
	return out
}

type failingNotifier struct{}

func (failingNotifier) Notify(context.Context, model.Event) error { return errors.New("sink down") }

type failingJournal struct{}

func (failingJournal) Record(context.Context, ...journal.Entry) error { return errors.New("db down") }

type fixture struct {
	svc      *AuctionService
	clock    *clock.Manual
	house    *registry.Memory
	notifier *recordingNotifier
	journal  *journal.Store
	ctx      context.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := journal.Open(journal.DriverSQLite, ":memory:")
	require.NoError(t, err)
	require.NoError(t, journal.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	f := &fixture{
		clock:    clock.NewManual(start),
		house:    registry.NewMemory(),
		notifier: &recordingNotifier{},
		journal:  journal.NewStore(db),
		ctx:      context.Background(),
	}
	f.svc = NewAuctionService(repository.NewMemoryRepo(),
		WithClock(f.clock),
		WithAuctionHouse(f.house),
		WithNotifier(f.notifier),
		WithJournal(f.journal),
	)
	return f
}

// open lists an asset for seller and opens an auction on it
func (f *fixture) open(t *testing.T, seller model.Identity, starting, reserve, duration int64) model.AuctionSnapshot {
	t.Helper()
	asset, err := f.svc.CreateAsset(f.ctx, seller, "painting", "art", "oil on canvas", nil)
	require.NoError(t, err)

	snap, err := f.svc.OpenAuction(f.ctx, seller, asset.AssetID, auction.Params{
		StartingPrice: d(starting),
		ReservePrice:  d(reserve),
		DurationMs:    duration,
	})
	require.NoError(t, err)
	return snap
}

func (f *fixture) fund(t *testing.T, id model.Identity, amount int64) {
	t.Helper()
	_, err := f.svc.FundWallet(f.ctx, id, d(amount))
	require.NoError(t, err)
}

// Tests OpenAuction
func TestAuctionService_OpenAuction(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	asset, err := f.svc.CreateAsset(f.ctx, "seller", "vase", "ceramics", "", map[string]string{"era": "ming"})
	require.NoError(t, err)

	valid := auction.Params{StartingPrice: d(100), ReservePrice: d(200), DurationMs: 1000}

	tests := []struct {
		name          string
		caller        model.Identity
		assetID       string
		params        auction.Params
		expectedError error
	}{
		{name: "valid_auction", caller: "seller", assetID: asset.AssetID, params: valid},
		{name: "not_owner", caller: "mallory", assetID: asset.AssetID, params: valid, expectedError: auctionerrors.ErrNotOwner},
		{name: "unknown_asset", caller: "seller", assetID: "assetX", params: valid, expectedError: auctionerrors.ErrAssetNotFound},
		{name: "empty_caller", caller: "", assetID: asset.AssetID, params: valid, expectedError: auctionerrors.ErrInvalidAuction},
		{
			name: "reserve_below_starting", caller: "seller", assetID: asset.AssetID,
			params:        auction.Params{StartingPrice: d(100), ReservePrice: d(50), DurationMs: 1000},
			expectedError: auctionerrors.ErrInvalidAuction,
		},
		{
			name: "zero_duration", caller: "seller", assetID: asset.AssetID,
			params:        auction.Params{StartingPrice: d(100), ReservePrice: d(100)},
			expectedError: auctionerrors.ErrInvalidAuction,
		},
		{name: "asset_already_listed", caller: "seller", assetID: asset.AssetID, params: valid, expectedError: auctionerrors.ErrAssetListed},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			snap, err := f.svc.OpenAuction(f.ctx, tc.caller, tc.assetID, tc.params)
			if tc.expectedError != nil {
				require.ErrorIs(t, err, tc.expectedError)
				return
			}
			require.NoError(t, err)
			require.NotEmpty(t, snap.AuctionID)
			require.Equal(t, model.AuctionStateOpen, snap.State)
			require.Equal(t, start+1000, snap.EndTime)
			require.True(t, snap.EscrowBalance.IsZero())
			require.Empty(t, snap.WinningBidID)
		})
	}

	ids, err := f.house.AuctionIDs(f.ctx)
	require.NoError(t, err)
	require.Len(t, ids, 1)
	require.Equal(t, []model.EventKind{model.EventAuctionOpened}, f.notifier.kinds())
}

// Tests PlaceBid input and lookup failures against a mocked repository
func TestAuctionService_PlaceBid_Mocked(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := repository.NewMockAuctionDB(ctrl)
	service := NewAuctionService(mockRepo, WithClock(clock.NewManual(start)))

	tests := []struct {
		name          string
		auctionID     string
		bidder        model.Identity
		amount        decimal.Decimal
		mockSetup     func()
		expectedError error
	}{
		{name: "empty_auctionID", auctionID: "", bidder: "user1", amount: d(50), mockSetup: func() {}, expectedError: auctionerrors.ErrInvalidBid},
		{name: "empty_bidder", auctionID: "auction1", bidder: "", amount: d(50), mockSetup: func() {}, expectedError: auctionerrors.ErrInvalidBid},
		{name: "zero_amount", auctionID: "auction1", bidder: "user1", amount: d(0), mockSetup: func() {}, expectedError: auctionerrors.ErrInvalidBid},
		{name: "negative_amount", auctionID: "auction1", bidder: "user1", amount: d(-5), mockSetup: func() {}, expectedError: auctionerrors.ErrInvalidBid},
		{
			name: "auction_not_found", auctionID: "auctionX", bidder: "user1", amount: d(50),
			mockSetup: func() {
				mockRepo.EXPECT().GetAuction("auctionX").Return(nil, auctionerrors.ErrAuctionNotFound)
			},
			expectedError: auctionerrors.ErrAuctionNotFound,
		},
		{
			name: "insufficient_funds", auctionID: "auction1", bidder: "user1", amount: d(150),
			mockSetup: func() {
				a, err := auction.New("auction1", "asset1", "seller", auction.Params{
					StartingPrice: d(100), ReservePrice: d(100), DurationMs: 1000,
				}, start)
				require.NoError(t, err)
				mockRepo.EXPECT().GetAuction("auction1").Return(a, nil)
			},
			expectedError: auctionerrors.ErrInsufficientFunds,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.mockSetup()
			_, err := service.PlaceBid(context.Background(), tc.bidder, tc.auctionID, tc.amount)
			require.ErrorIs(t, err, tc.expectedError)
		})
	}
}

// Tests that a failing repository keeps OpenAuction from succeeding
func TestAuctionService_OpenAuction_StoreFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := repository.NewMockAuctionDB(ctrl)
	house := registry.NewMemory()
	service := NewAuctionService(mockRepo, WithAuctionHouse(house))
	ctx := context.Background()

	asset, err := service.CreateAsset(ctx, "seller", "lamp", "", "", nil)
	require.NoError(t, err)
	params := auction.Params{StartingPrice: d(1), ReservePrice: d(1), DurationMs: 10}

	storeErr := errors.New("store unavailable")
	mockRepo.EXPECT().CreateAuction(gomock.Any()).Return(storeErr)

	_, err = service.OpenAuction(ctx, "seller", asset.AssetID, params)
	require.ErrorIs(t, err, storeErr)

	ids, err := house.AuctionIDs(ctx)
	require.NoError(t, err)
	require.Empty(t, ids)

	// the failed open released the asset
	mockRepo.EXPECT().CreateAuction(gomock.Any()).Return(nil)
	snap, err := service.OpenAuction(ctx, "seller", asset.AssetID, params)
	require.NoError(t, err)

	ids, err = house.AuctionIDs(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{snap.AuctionID}, ids)
}

// An asset sells once: a second auction cannot be opened while the first can
// still settle, and the buyer of the asset cannot settle a stale auction
func TestAuctionService_OpenAuction_AssetHeldByOneAuction(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	x := f.open(t, "seller", 100, 100, 1000)
	params := auction.Params{StartingPrice: d(100), ReservePrice: d(100), DurationMs: 1000}

	_, err := f.svc.OpenAuction(f.ctx, "seller", x.AssetID, params)
	require.ErrorIs(t, err, auctionerrors.ErrAssetListed)

	f.fund(t, "w1", 500)
	_, err = f.svc.PlaceBid(f.ctx, "w1", x.AuctionID, d(200))
	require.NoError(t, err)

	// expired with a winning bid: the asset is still spoken for
	f.clock.Set(x.EndTime)
	_, err = f.svc.OpenAuction(f.ctx, "seller", x.AssetID, params)
	require.ErrorIs(t, err, auctionerrors.ErrAssetListed)

	_, err = f.svc.Settle(f.ctx, "seller", x.AuctionID)
	require.NoError(t, err)

	_, err = f.svc.OpenAuction(f.ctx, "seller", x.AssetID, params)
	require.ErrorIs(t, err, auctionerrors.ErrNotOwner)

	// the buyer may resell it
	y, err := f.svc.OpenAuction(f.ctx, "w1", x.AssetID, params)
	require.NoError(t, err)
	require.Equal(t, model.Identity("w1"), y.Seller)

	asset, err := f.svc.GetAsset(f.ctx, x.AssetID)
	require.NoError(t, err)
	require.Equal(t, model.Identity("w1"), asset.Owner)

	got, err := f.svc.GetAuction(f.ctx, x.AuctionID)
	require.NoError(t, err)
	require.True(t, got.ProceedsBalance.Equal(d(200)))
}

func TestAuctionService_OpenAuction_RelistAfterUnsoldAuction(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		bid     int64 // 0 for none
		wantErr error
	}{
		{name: "expired_without_bids"},
		{name: "expired_below_reserve", bid: 150},
		{name: "expired_meeting_reserve", bid: 250, wantErr: auctionerrors.ErrAssetListed},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t)
			first := f.open(t, "seller", 100, 200, 1000)
			if tc.bid > 0 {
				f.fund(t, "bidder1", tc.bid)
				_, err := f.svc.PlaceBid(f.ctx, "bidder1", first.AuctionID, d(tc.bid))
				require.NoError(t, err)
			}

			f.clock.Set(first.EndTime)
			second, err := f.svc.OpenAuction(f.ctx, "seller", first.AssetID, auction.Params{
				StartingPrice: d(100), ReservePrice: d(100), DurationMs: 1000,
			})
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)

			// the stale auction can no longer sell the asset
			_, err = f.svc.Settle(f.ctx, "seller", first.AuctionID)
			require.Error(t, err)
			require.NotEqual(t, first.AuctionID, second.AuctionID)
		})
	}
}

func TestAuctionService_OpenAuction_ConcurrentListingsOnlyOneWins(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	asset, err := f.svc.CreateAsset(f.ctx, "seller", "relic", "", "", nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	var mu sync.Mutex
	opened := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.OpenAuction(f.ctx, "seller", asset.AssetID, auction.Params{
				StartingPrice: d(1), ReservePrice: d(1), DurationMs: 1000,
			})
			if err == nil {
				mu.Lock()
				opened++
				mu.Unlock()
				return
			}
			require.ErrorIs(t, err, auctionerrors.ErrAssetListed)
		}()
	}
	wg.Wait()

	require.Equal(t, 1, opened)
}

func TestAuctionService_RecentEvents(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	snap := f.open(t, "seller", 100, 100, 1000)
	f.fund(t, "bidder1", 500)
	for _, amount := range []int64{100, 150} {
		_, err := f.svc.PlaceBid(f.ctx, "bidder1", snap.AuctionID, d(amount))
		require.NoError(t, err)
	}

	got, err := f.svc.RecentEvents(f.ctx, snap.AuctionID, 0)
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.Equal(t, model.EventBidPlaced, got[0].Kind)
	require.True(t, got[0].Amount.Equal(d(150)))
	require.Equal(t, model.EventAuctionOpened, got[2].Kind)

	got, err = f.svc.RecentEvents(f.ctx, snap.AuctionID, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)

	_, err = f.svc.RecentEvents(f.ctx, "auctionX", 0)
	require.ErrorIs(t, err, auctionerrors.ErrAuctionNotFound)

	// recorded events are also delivered to the configured notifier
	require.Len(t, f.notifier.kinds(), 3)
}

func TestAuctionService_SettleAboveReserve(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	snap := f.open(t, "seller", 100, 200, 1000)
	f.fund(t, "bidder1", 500)
	f.fund(t, "bidder2", 500)
	f.fund(t, "bidder3", 500)

	b1, err := f.svc.PlaceBid(f.ctx, "bidder1", snap.AuctionID, d(150))
	require.NoError(t, err)

	_, err = f.svc.PlaceBid(f.ctx, "bidder3", snap.AuctionID, d(120))
	require.ErrorIs(t, err, auctionerrors.ErrBidTooLow)
	require.True(t, f.svc.WalletBalance(f.ctx, "bidder3").Equal(d(500)))

	b2, err := f.svc.PlaceBid(f.ctx, "bidder2", snap.AuctionID, d(250))
	require.NoError(t, err)

	got, err := f.svc.GetAuction(f.ctx, snap.AuctionID)
	require.NoError(t, err)
	require.Equal(t, b2.BidID, got.WinningBidID)
	require.True(t, got.EscrowBalance.Equal(d(400)))

	_, err = f.svc.Settle(f.ctx, "seller", snap.AuctionID)
	require.ErrorIs(t, err, auctionerrors.ErrAuctionNotExpired)

	f.clock.Set(got.EndTime + 1)
	_, err = f.svc.Settle(f.ctx, "bidder1", snap.AuctionID)
	require.ErrorIs(t, err, auctionerrors.ErrNotOwner)

	st, err := f.svc.Settle(f.ctx, "seller", snap.AuctionID)
	require.NoError(t, err)
	require.Equal(t, model.Identity("bidder2"), st.Winner)
	require.True(t, st.Amount.Equal(d(250)))

	asset, err := f.svc.GetAsset(f.ctx, snap.AssetID)
	require.NoError(t, err)
	require.Equal(t, model.Identity("bidder2"), asset.Owner)

	got, err = f.svc.GetAuction(f.ctx, snap.AuctionID)
	require.NoError(t, err)
	require.Equal(t, model.AuctionStateSettled, got.State)
	require.True(t, got.EscrowBalance.Equal(d(150)))
	require.True(t, got.ProceedsBalance.Equal(d(250)))

	_, err = f.svc.Settle(f.ctx, "seller", snap.AuctionID)
	require.ErrorIs(t, err, auctionerrors.ErrAlreadySettled)
	_, err = f.svc.PlaceBid(f.ctx, "bidder3", snap.AuctionID, d(400))
	require.ErrorIs(t, err, auctionerrors.ErrAuctionClosed)

	// outbid funds stay in escrow until withdrawn
	require.True(t, f.svc.WalletBalance(f.ctx, "bidder1").Equal(d(350)))
	w, err := f.svc.WithdrawBid(f.ctx, "bidder1", snap.AuctionID, b1.BidID)
	require.NoError(t, err)
	require.True(t, w.Amount.Equal(d(150)))
	require.True(t, f.svc.WalletBalance(f.ctx, "bidder1").Equal(d(500)))

	_, err = f.svc.WithdrawBid(f.ctx, "bidder1", snap.AuctionID, b1.BidID)
	require.ErrorIs(t, err, auctionerrors.ErrAlreadyClaimed)
	_, err = f.svc.WithdrawBid(f.ctx, "bidder2", snap.AuctionID, b2.BidID)
	require.ErrorIs(t, err, auctionerrors.ErrAlreadyClaimed)

	_, err = f.svc.WithdrawSellerFunds(f.ctx, "bidder2", snap.AuctionID, d(100))
	require.ErrorIs(t, err, auctionerrors.ErrNotOwner)
	_, err = f.svc.WithdrawSellerFunds(f.ctx, "seller", snap.AuctionID, d(300))
	require.ErrorIs(t, err, auctionerrors.ErrInsufficientBalance)
	_, err = f.svc.WithdrawSellerFunds(f.ctx, "seller", snap.AuctionID, d(100))
	require.NoError(t, err)
	_, err = f.svc.WithdrawSellerFunds(f.ctx, "seller", snap.AuctionID, d(150))
	require.NoError(t, err)
	require.True(t, f.svc.WalletBalance(f.ctx, "seller").Equal(d(250)))

	house, err := f.house.Balance(f.ctx)
	require.NoError(t, err)
	require.True(t, house.Equal(d(250)))

	trail, err := f.journal.ForAuction(f.ctx, snap.AuctionID)
	require.NoError(t, err)
	kinds := make([]journal.Kind, 0, len(trail))
	for _, e := range trail {
		kinds = append(kinds, e.Kind)
	}
	require.Equal(t, []journal.Kind{
		journal.KindBidDeposit,
		journal.KindBidDeposit,
		journal.KindSettlement,
		journal.KindBidRefund,
		journal.KindSellerWithdrawal,
		journal.KindSellerWithdrawal,
	}, kinds)
	require.Equal(t, "bidder2", trail[2].Metadata["winner"])

	require.Equal(t, []model.EventKind{
		model.EventAuctionOpened,
		model.EventBidPlaced,
		model.EventBidPlaced,
		model.EventAuctionSettled,
		model.EventFundsWithdrawn,
		model.EventFundsWithdrawn,
		model.EventFundsWithdrawn,
	}, f.notifier.kinds())
}

func TestAuctionService_ReserveNotMet(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	snap := f.open(t, "seller", 100, 200, 1000)
	f.fund(t, "bidder1", 150)

	b1, err := f.svc.PlaceBid(f.ctx, "bidder1", snap.AuctionID, d(150))
	require.NoError(t, err)
	require.True(t, f.svc.WalletBalance(f.ctx, "bidder1").IsZero())

	f.clock.Set(snap.EndTime + 1)
	_, err = f.svc.Settle(f.ctx, "seller", snap.AuctionID)
	require.ErrorIs(t, err, auctionerrors.ErrReserveNotMet)

	_, err = f.svc.WithdrawBid(f.ctx, "seller", snap.AuctionID, b1.BidID)
	require.ErrorIs(t, err, auctionerrors.ErrNotBidder)

	_, err = f.svc.WithdrawBid(f.ctx, "bidder1", snap.AuctionID, b1.BidID)
	require.NoError(t, err)
	require.True(t, f.svc.WalletBalance(f.ctx, "bidder1").Equal(d(150)))

	asset, err := f.svc.GetAsset(f.ctx, snap.AssetID)
	require.NoError(t, err)
	require.Equal(t, model.Identity("seller"), asset.Owner)
}

func TestAuctionService_WinnerWithdrawsBeforeEnd(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	snap := f.open(t, "seller", 100, 100, 1000)
	f.fund(t, "bidder1", 150)

	b1, err := f.svc.PlaceBid(f.ctx, "bidder1", snap.AuctionID, d(150))
	require.NoError(t, err)

	_, err = f.svc.WithdrawBid(f.ctx, "bidder1", snap.AuctionID, b1.BidID)
	require.NoError(t, err)

	got, err := f.svc.GetAuction(f.ctx, snap.AuctionID)
	require.NoError(t, err)
	require.True(t, got.EscrowBalance.IsZero())
	require.Empty(t, got.WinningBidID)

	f.clock.Set(snap.EndTime)
	_, err = f.svc.Settle(f.ctx, "seller", snap.AuctionID)
	require.ErrorIs(t, err, auctionerrors.ErrNoBids)
}

func TestAuctionService_BidderIndex(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	a1 := f.open(t, "seller", 10, 10, 1000)
	a2 := f.open(t, "seller", 10, 10, 1000)
	f.fund(t, "bidder1", 100)

	_, err := f.svc.GetAuctionsByBidder(f.ctx, "bidder1")
	require.ErrorIs(t, err, auctionerrors.ErrUserNoBids)

	for _, bid := range []struct {
		auctionID string
		amount    int64
	}{
		{a1.AuctionID, 10},
		{a2.AuctionID, 10},
		{a1.AuctionID, 20},
	} {
		_, err := f.svc.PlaceBid(f.ctx, "bidder1", bid.auctionID, d(bid.amount))
		require.NoError(t, err)
	}

	got, err := f.svc.GetAuctionsByBidder(f.ctx, "bidder1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.ElementsMatch(t, []string{a1.AuctionID, a2.AuctionID}, []string{got[0].AuctionID, got[1].AuctionID})

	bids, err := f.svc.GetBids(f.ctx, a1.AuctionID)
	require.NoError(t, err)
	require.Len(t, bids, 2)
	require.True(t, bids[1].Amount.GreaterThan(bids[0].Amount))

	_, err = f.svc.GetAuctionsByBidder(f.ctx, "")
	require.ErrorIs(t, err, auctionerrors.ErrInvalidBid)
	_, err = f.svc.GetBids(f.ctx, "auctionX")
	require.ErrorIs(t, err, auctionerrors.ErrAuctionNotFound)
}

func TestAuctionService_CollaboratorFailuresDoNotFailOperations(t *testing.T) {
	t.Parallel()

	c := clock.NewManual(start)
	svc := NewAuctionService(repository.NewMemoryRepo(),
		WithClock(c),
		WithNotifier(failingNotifier{}),
		WithJournal(failingJournal{}),
	)
	ctx := context.Background()

	asset, err := svc.CreateAsset(ctx, "seller", "clock", "", "", nil)
	require.NoError(t, err)
	snap, err := svc.OpenAuction(ctx, "seller", asset.AssetID, auction.Params{
		StartingPrice: d(5), ReservePrice: d(5), DurationMs: 10,
	})
	require.NoError(t, err)

	_, err = svc.FundWallet(ctx, "bidder1", d(5))
	require.NoError(t, err)
	_, err = svc.PlaceBid(ctx, "bidder1", snap.AuctionID, d(5))
	require.NoError(t, err)

	c.Advance(10)
	st, err := svc.Settle(ctx, "seller", snap.AuctionID)
	require.NoError(t, err)
	require.True(t, st.Amount.Equal(d(5)))
}

func TestAuctionService_FundWallet(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	tests := []struct {
		name          string
		to            model.Identity
		amount        decimal.Decimal
		want          decimal.Decimal
		expectedError error
	}{
		{name: "first_deposit", to: "alice", amount: d(100), want: d(100)},
		{name: "second_deposit", to: "alice", amount: decimal.RequireFromString("0.5"), want: decimal.RequireFromString("100.5")},
		{name: "zero_amount", to: "alice", amount: d(0), expectedError: auctionerrors.ErrInvalidAmount},
		{name: "empty_identity", to: "", amount: d(1), expectedError: auctionerrors.ErrInvalidAmount},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got, err := f.svc.FundWallet(f.ctx, tc.to, tc.amount)
			if tc.expectedError != nil {
				require.ErrorIs(t, err, tc.expectedError)
				return
			}
			require.NoError(t, err)
			require.True(t, got.Equal(tc.want), "balance %s", got)
		})
	}

	entries, err := f.journal.ForIdentity(f.ctx, "alice")
	require.NoError(t, err)
	require.Len(t, entries, 2)
}

func TestAuctionService_ConcurrentBids(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	snap := f.open(t, "seller", 1, 1, 1000)

	const bidders = 20
	for i := 0; i < bidders; i++ {
		f.fund(t, model.Identity(fmt.Sprintf("bidder%d", i)), 1000)
	}

	var wg sync.WaitGroup
	for i := 0; i < bidders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = f.svc.PlaceBid(f.ctx, model.Identity(fmt.Sprintf("bidder%d", i)), snap.AuctionID, d(int64(10+i)))
		}(i)
	}
	wg.Wait()

	bids, err := f.svc.GetBids(f.ctx, snap.AuctionID)
	require.NoError(t, err)
	require.NotEmpty(t, bids)
	for i := 1; i < len(bids); i++ {
		require.True(t, bids[i].Amount.GreaterThan(bids[i-1].Amount))
	}

	got, err := f.svc.GetAuction(f.ctx, snap.AuctionID)
	require.NoError(t, err)
	total := decimal.Zero
	for _, b := range bids {
		total = total.Add(b.Amount)
	}
	require.True(t, got.EscrowBalance.Equal(total))
	require.Equal(t, bids[len(bids)-1].BidID, got.WinningBidID)
}
