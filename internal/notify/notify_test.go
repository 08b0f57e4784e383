package notify

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/carbontrack/internal/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestPushAndExpire(t *testing.T) {
	c := NewCenter(80*time.Millisecond, 20*time.Millisecond)
	defer c.Close()

	ok := c.Push("Emission added successfully!", types.NotificationSuccess)
	errN := c.Push("Failed to load recommendations", types.NotificationError)
	assert.True(t, ok.ExpiresAt.Sub(ok.CreatedAt) > errN.ExpiresAt.Sub(errN.CreatedAt))
	assert.Len(t, c.Active(), 2)

	require.Eventually(t, func() bool { return len(c.Active()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, ok.ID, c.Active()[0].ID, "errors expire before successes")

	require.Eventually(t, func() bool { return len(c.Active()) == 0 }, time.Second, 5*time.Millisecond)
}

func TestDismissAndClear(t *testing.T) {
	c := NewCenter(time.Hour, time.Hour)
	defer c.Close()

	a := c.Push("a", types.NotificationInfo)
	c.Push("b", types.NotificationInfo)
	c.Push("c", types.NotificationInfo)

	assert.True(t, c.Dismiss(a.ID))
	assert.False(t, c.Dismiss(a.ID))
	assert.Len(t, c.Active(), 2)

	c.Clear()
	assert.Empty(t, c.Active())
}

func TestSubscribers(t *testing.T) {
	c := NewCenter(time.Hour, 10*time.Millisecond)
	defer c.Close()

	var (
		mu     sync.Mutex
		events []Event
	)
	unsubscribe := c.Subscribe(func(ev Event) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, ev)
	})

	n := c.Push("Logged out successfully", types.NotificationInfo)
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(events) == 2
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	assert.Equal(t, EventPushed, events[0].Kind)
	assert.Equal(t, EventDismissed, events[1].Kind)
	assert.Equal(t, n.ID, events[1].Notification.ID)
	mu.Unlock()

	unsubscribe()
	c.Push("ignored", types.NotificationSuccess)
	mu.Lock()
	assert.Len(t, events, 2)
	mu.Unlock()
}

func TestCloseStopsTimers(t *testing.T) {
	c := NewCenter(time.Hour, time.Hour)
	c.Push("pending", types.NotificationSuccess)
	c.Close()

	c.Push("after close", types.NotificationSuccess)
	assert.Len(t, c.Active(), 1)
}
