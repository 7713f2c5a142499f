// Package events delivers auction lifecycle events to off-system observers.
// Delivery is best-effort: a failing sink never affects the committed
// operation that produced the event.
package events

import (
	"context"
	"errors"

	model "auction-escrow/internal/models"
	"auction-escrow/utils"
)

// Notifier publishes committed auction events
type Notifier interface {
	Notify(ctx context.Context, event model.Event) error
}

// LogNotifier writes every event to the structured log
type LogNotifier struct{}

// Notify logs the event at info level
func (LogNotifier) Notify(_ context.Context, event model.Event) error {
	utils.Info("auction event", map[string]any{
		"event_id":   event.EventID,
		"kind":       string(event.Kind),
		"auction_id": event.AuctionID,
		"asset_id":   event.AssetID,
		"bid_id":     event.BidID,
		"identity":   string(event.Identity),
		"amount":     event.Amount.String(),
	})
	return nil
}

// Fanout delivers each event to every sink and joins their errors
type Fanout []Notifier

// Notify delivers to all sinks even when one fails
func (f Fanout) Notify(ctx context.Context, event model.Event) error {
	var errs []error
	for _, n := range f {
		if err := n.Notify(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
