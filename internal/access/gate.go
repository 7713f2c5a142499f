// Package access decides whether a caller may perform a privileged operation.
package access

import (
	"fmt"

	"auction-escrow/internal/auctionerrors"
	"auction-escrow/internal/models"
)

// Operation is a privileged auction operation
type Operation int

const (
	OpOpen Operation = iota + 1
	OpSettle
	OpWithdrawBid
	OpWithdrawSellerFunds
)

func (op Operation) String() string {
	switch op {
	case OpOpen:
		return "open"
	case OpSettle:
		return "settle"
	case OpWithdrawBid:
		return "withdraw_bid"
	case OpWithdrawSellerFunds:
		return "withdraw_seller_funds"
	default:
		return fmt.Sprintf("operation(%d)", int(op))
	}
}

// Subject carries the identities an operation is checked against
type Subject struct {
	AssetOwner models.Identity
	Seller     models.Identity
	Bidder     models.Identity
}

// Authorize returns nil when caller may perform op on subject.
// Asset owners open and settle, sellers sweep proceeds, bidders withdraw
// their own bids. No role can be delegated.
func Authorize(caller models.Identity, op Operation, s Subject) error {
	if caller == "" {
		return deny(op, caller)
	}

	switch op {
	case OpOpen, OpSettle:
		if s.AssetOwner != "" && caller == s.AssetOwner {
			return nil
		}
	case OpWithdrawSellerFunds:
		if s.Seller != "" && caller == s.Seller {
			return nil
		}
	case OpWithdrawBid:
		if s.Bidder != "" && caller == s.Bidder {
			return nil
		}
	}
	return deny(op, caller)
}

func deny(op Operation, caller models.Identity) error {
	if op == OpWithdrawBid {
		return fmt.Errorf("%s by %q: %w", op, caller, auctionerrors.ErrNotBidder)
	}
	return fmt.Errorf("%s by %q: %w", op, caller, auctionerrors.ErrNotOwner)
}
