// Package notify keeps the transient notifications shown to the user.
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/carbontrack/internal/types"
)

// Default lifetimes
const (
	DefaultSuccessTTL = 10 * time.Second
	DefaultTTL        = 5 * time.Second
)

// Notification is one toast
type Notification struct {
	ID        string                 `json:"id"`
	Message   string                 `json:"message"`
	Type      types.NotificationType `json:"type"`
	CreatedAt time.Time              `json:"created_at"`
	ExpiresAt time.Time              `json:"expires_at"`
}

// EventKind tells subscribers what happened
type EventKind string

const (
	EventPushed    EventKind = "pushed"
	EventDismissed EventKind = "dismissed"
)

// Event is delivered to subscribers after the change is applied
type Event struct {
	Kind         EventKind
	Notification Notification
}

// Center holds active notifications and expires them
type Center struct {
	successTTL time.Duration
	defaultTTL time.Duration

	mu     sync.Mutex
	items  []Notification
	timers map[string]*time.Timer
	subs   map[int]func(Event)
	nextID int
	closed bool
}

// NewCenter creates a center. Non-positive TTLs fall back to the defaults.
func NewCenter(successTTL, defaultTTL time.Duration) *Center {
	if successTTL <= 0 {
		successTTL = DefaultSuccessTTL
	}
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}
	return &Center{
		successTTL: successTTL,
		defaultTTL: defaultTTL,
		timers:     make(map[string]*time.Timer),
		subs:       make(map[int]func(Event)),
	}
}

// Push adds a notification and schedules its expiry
func (c *Center) Push(message string, typ types.NotificationType) Notification {
	ttl := c.defaultTTL
	if typ == types.NotificationSuccess {
		ttl = c.successTTL
	}
	now := time.Now()
	n := Notification{
		ID:        uuid.NewString(),
		Message:   message,
		Type:      typ,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return n
	}
	c.items = append(c.items, n)
	id := n.ID
	c.timers[id] = time.AfterFunc(ttl, func() { c.Dismiss(id) })
	subs := c.subscribers()
	c.mu.Unlock()

	publish(subs, Event{Kind: EventPushed, Notification: n})
	return n
}

// Dismiss removes a notification before it expires
func (c *Center) Dismiss(id string) bool {
	c.mu.Lock()
	var (
		removed Notification
		found   bool
	)
	for i, n := range c.items {
		if n.ID == id {
			removed, found = n, true
			c.items = append(c.items[:i:i], c.items[i+1:]...)
			break
		}
	}
	if t, ok := c.timers[id]; ok {
		t.Stop()
		delete(c.timers, id)
	}
	subs := c.subscribers()
	c.mu.Unlock()

	if found {
		publish(subs, Event{Kind: EventDismissed, Notification: removed})
	}
	return found
}

// Clear drops every notification
func (c *Center) Clear() {
	c.mu.Lock()
	dropped := c.items
	c.items = nil
	c.stopTimers()
	subs := c.subscribers()
	c.mu.Unlock()

	for _, n := range dropped {
		publish(subs, Event{Kind: EventDismissed, Notification: n})
	}
}

// Active returns the notifications not yet expired, oldest first
func (c *Center) Active() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Notification{}, c.items...)
}

// Subscribe registers fn for every change; the returned func unregisters it.
// fn runs on the goroutine that made the change and must not block.
func (c *Center) Subscribe(fn func(Event)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextID
	c.nextID++
	c.subs[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subs, id)
	}
}

// Close stops every pending expiry; later pushes are dropped
func (c *Center) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.stopTimers()
}

func (c *Center) stopTimers() {
	for id, t := range c.timers {
		t.Stop()
		delete(c.timers, id)
	}
}

func (c *Center) subscribers() []func(Event) {
	out := make([]func(Event), 0, len(c.subs))
	for _, fn := range c.subs {
		out = append(out, fn)
	}
	return out
}

func publish(subs []func(Event), ev Event) {
	for _, fn := range subs {
		fn(ev)
	}
}
