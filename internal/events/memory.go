package events

import (
	"context"
	"sync"

	model "auction-escrow/internal/models"
)

// History reads an auction's latest events, newest first
type History interface {
	Recent(ctx context.Context, auctionID string, limit int64) ([]model.Event, error)
}

// MemoryLog keeps the latest events of every auction in process
type MemoryLog struct {
	mu     sync.RWMutex
	limit  int64
	events map[string][]model.Event // key: auctionID -> value: events, newest first
}

// NewMemoryLog creates a log keeping up to limit events per auction
func NewMemoryLog(limit int64) *MemoryLog {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	return &MemoryLog{
		limit:  limit,
		events: make(map[string][]model.Event),
	}
}

// Notify records the event
func (m *MemoryLog) Notify(_ context.Context, event model.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	list := append([]model.Event{event}, m.events[event.AuctionID]...)
	if int64(len(list)) > m.limit {
		list = list[:m.limit]
	}
	m.events[event.AuctionID] = list
	return nil
}

// Recent returns up to limit of an auction's latest events, newest first
func (m *MemoryLog) Recent(_ context.Context, auctionID string, limit int64) ([]model.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := m.events[auctionID]
	if limit <= 0 || limit > int64(len(list)) {
		limit = int64(len(list))
	}
	out := make([]model.Event, limit)
	copy(out, list[:limit])
	return out, nil
}
