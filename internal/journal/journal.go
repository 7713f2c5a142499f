// Package journal keeps an append-only audit trail of every fund movement
// the auction house performs.
package journal

import (
	"context"
	"fmt"
	"time"

	model "auction-escrow/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Kind classifies a fund movement
type Kind string

const (
	KindFaucet           Kind = "faucet"
	KindBidDeposit       Kind = "bid_deposit"
	KindBidRefund        Kind = "bid_refund"
	KindSettlement       Kind = "settlement"
	KindSellerWithdrawal Kind = "seller_withdrawal"
)

// Entry is one journaled fund movement
type Entry struct {
	Seq       uint              `gorm:"primaryKey;autoIncrement" json:"-"`
	EntryID   string            `gorm:"column:entry_id;type:varchar(36);uniqueIndex;not null" json:"entry_id"`
	AuctionID string            `gorm:"column:auction_id;type:varchar(64);index" json:"auction_id,omitempty"`
	BidID     string            `gorm:"column:bid_id;type:varchar(64)" json:"bid_id,omitempty"`
	Identity  model.Identity    `gorm:"column:participant;type:varchar(128);index;not null" json:"identity"`
	Kind      Kind              `gorm:"column:kind;type:varchar(30);not null" json:"kind"`
	Amount    decimal.Decimal   `gorm:"column:amount;type:numeric;not null" json:"amount"`
	Metadata  datatypes.JSONMap `gorm:"column:metadata" json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

func (Entry) TableName() string {
	return "journal_entries"
}

func (e *Entry) BeforeCreate(tx *gorm.DB) error {
	if e.EntryID == "" {
		e.EntryID = uuid.NewString()
	}
	return nil
}

// Journal records fund movements
type Journal interface {
	Record(ctx context.Context, entries ...Entry) error
}

// Nop discards every entry
type Nop struct{}

func (Nop) Record(context.Context, ...Entry) error { return nil }

// Store is a Journal persisted through gorm
type Store struct {
	db *gorm.DB
}

// NewStore wraps an opened database
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Record appends entries in a single transaction
func (s *Store) Record(ctx context.Context, entries ...Entry) error {
	if len(entries) == 0 {
		return nil
	}
	for i := range entries {
		if entries[i].Identity == "" || entries[i].Kind == "" {
			return fmt.Errorf("journal: entry %d missing identity or kind", i)
		}
	}
	if err := s.db.WithContext(ctx).Create(&entries).Error; err != nil {
		return fmt.Errorf("journal: record %d entries: %w", len(entries), err)
	}
	return nil
}

// ForAuction returns an auction's entries in the order they were recorded
func (s *Store) ForAuction(ctx context.Context, auctionID string) ([]Entry, error) {
	var out []Entry
	err := s.db.WithContext(ctx).
		Where("auction_id = ?", auctionID).
		Order("seq ASC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("journal: entries for auction %s: %w", auctionID, err)
	}
	return out, nil
}

// ForIdentity returns every entry touching one participant, oldest first
func (s *Store) ForIdentity(ctx context.Context, id model.Identity) ([]Entry, error) {
	var out []Entry
	err := s.db.WithContext(ctx).
		Where("participant = ?", id).
		Order("seq ASC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("journal: entries for %s: %w", id, err)
	}
	return out, nil
}
