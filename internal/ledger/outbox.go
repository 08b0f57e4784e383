package ledger

import (
	"context"
	"sync"

	"github.com/carbontrack/internal/models"
)

// Outbox holds locally-saved entries until the server accepts them.
// storage.OutboxRepository is the Postgres implementation.
type Outbox interface {
	Enqueue(ctx context.Context, userID string, entry models.EmissionEntry) error
	Pending(ctx context.Context, userID string) ([]models.EmissionEntry, error)
	Remove(ctx context.Context, localID string) error
	MarkFailed(ctx context.Context, localID string, reason string) error
}

type outboxItem struct {
	userID    string
	entry     models.EmissionEntry
	attempts  int
	lastError string
}

// MemoryOutbox is an Outbox that lives as long as the process
type MemoryOutbox struct {
	mu    sync.Mutex
	items []*outboxItem
}

// NewMemoryOutbox creates an empty outbox
func NewMemoryOutbox() *MemoryOutbox {
	return &MemoryOutbox{}
}

// Enqueue implements Outbox. Enqueueing the same id twice is a no-op.
func (o *MemoryOutbox) Enqueue(_ context.Context, userID string, entry models.EmissionEntry) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, it := range o.items {
		if it.entry.ID == entry.ID {
			return nil
		}
	}
	entry.LocalOnly = true
	o.items = append(o.items, &outboxItem{userID: userID, entry: entry})
	return nil
}

// Pending implements Outbox; oldest first
func (o *MemoryOutbox) Pending(_ context.Context, userID string) ([]models.EmissionEntry, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := []models.EmissionEntry{}
	for _, it := range o.items {
		if it.userID == userID {
			out = append(out, it.entry)
		}
	}
	return out, nil
}

// Remove implements Outbox
func (o *MemoryOutbox) Remove(_ context.Context, localID string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	for i, it := range o.items {
		if it.entry.ID == localID {
			o.items = append(o.items[:i], o.items[i+1:]...)
			return nil
		}
	}
	return nil
}

// MarkFailed implements Outbox
func (o *MemoryOutbox) MarkFailed(_ context.Context, localID string, reason string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, it := range o.items {
		if it.entry.ID == localID {
			it.attempts++
			it.lastError = reason
		}
	}
	return nil
}

// Attempts returns how many sync attempts failed for localID
func (o *MemoryOutbox) Attempts(localID string) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, it := range o.items {
		if it.entry.ID == localID {
			return it.attempts
		}
	}
	return 0
}
