package ledger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carbontrack/internal/apiclient"
	"github.com/carbontrack/internal/logging"
	"github.com/carbontrack/internal/models"
)

func TestSingleUpdatesFollowMonthRollover(t *testing.T) {
	ctx := context.Background()
	api := &fakeEmissions{list: []models.EmissionEntry{{ID: "srv-0", Amount: 69, Date: "2025-09-20"}}}
	l := newTestLedger(api, nil)

	_, err := l.Load(ctx, realSession())
	require.NoError(t, err)
	require.Equal(t, "2025-09", l.Aggregates().Month)
	assert.InDelta(t, 69, l.Aggregates().Monthly, 1e-9)

	october := time.Date(2025, 10, 1, 8, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return october }

	_, err = l.Add(ctx, realSession(), EmissionForm{Category: "food", Amount: "30", Date: "2025-10-01"})
	require.NoError(t, err)

	want := Compute(l.Entries(), "2025-10", DefaultMonthlyTargetKg)
	got := l.Aggregates()
	assert.Equal(t, want.Month, got.Month)
	assert.InDelta(t, want.Total, got.Total, 1e-9)
	assert.InDelta(t, 99, got.Monthly, 1e-9)
	assert.Equal(t, want.GoalProgress, got.GoalProgress)

	november := time.Date(2025, 11, 2, 8, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return november }

	_, err = l.Delete(ctx, "srv-0")
	require.NoError(t, err)

	want = Compute(l.Entries(), "2025-11", DefaultMonthlyTargetKg)
	got = l.Aggregates()
	assert.Equal(t, "2025-11", got.Month)
	assert.InDelta(t, want.Total, got.Total, 1e-9)
	assert.InDelta(t, 0, got.Monthly, 1e-9)
}

// acceptingBackend answers every create with 201 but no entry
type acceptingBackend struct {
	posts int32
	lists int32
	list  string
}

func (b *acceptingBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/carbon-emissions/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	switch r.Method {
	case http.MethodPost:
		atomic.AddInt32(&b.posts, 1)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"message":"ok"}`))
	case http.MethodGet:
		atomic.AddInt32(&b.lists, 1)
		if b.list == "" {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(b.list))
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newAcceptingLedger(t *testing.T, backend *acceptingBackend, outbox Outbox) *Ledger {
	t.Helper()
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)
	client := apiclient.New(apiclient.Options{
		BaseURL:        srv.URL,
		Timeout:        2 * time.Second,
		RetryAttempts:  1,
		RetryBaseDelay: time.Millisecond,
		Logger:         logging.NewNop(),
	})
	return newTestLedger(client, outbox)
}

func TestAddAcceptedWithoutEntryIsNotQueued(t *testing.T) {
	ctx := context.Background()
	outbox := NewMemoryOutbox()
	backend := &acceptingBackend{
		list: `[{"id":"srv-9","category":"food","activity":"food","amount":2,"unit":"kg","date":"2025-09-26","co2_equivalent":6.6}]`,
	}
	l := newAcceptingLedger(t, backend, outbox)

	res, err := l.Add(ctx, realSession(), EmissionForm{Category: "food", Amount: "2", Unit: "kg"})
	require.NoError(t, err)
	assert.False(t, res.SavedLocally)
	assert.Error(t, res.Cause)

	pending, err := outbox.Pending(ctx, "u-1")
	require.NoError(t, err)
	assert.Empty(t, pending)

	entries := l.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "srv-9", entries[0].ID)
	assert.InDelta(t, 6.6, l.Aggregates().Total, 1e-9)

	report, err := l.Sync(ctx, realSession())
	require.NoError(t, err)
	assert.Equal(t, SyncReport{}, report)
	assert.Equal(t, int32(1), atomic.LoadInt32(&backend.posts))
}

func TestAddAcceptedKeepsPlaceholderWhenRefreshFails(t *testing.T) {
	ctx := context.Background()
	outbox := NewMemoryOutbox()
	backend := &acceptingBackend{}
	l := newAcceptingLedger(t, backend, outbox)

	res, err := l.Add(ctx, realSession(), EmissionForm{Category: "food", Activity: "beef", Amount: "0.5"})
	require.NoError(t, err)
	assert.False(t, res.SavedLocally)

	entries := l.Entries()
	require.Len(t, entries, 1)
	assert.False(t, entries[0].LocalOnly)

	pending, _ := outbox.Pending(ctx, "u-1")
	assert.Empty(t, pending)
	assert.Equal(t, int32(1), atomic.LoadInt32(&backend.posts))
}

func TestSyncAcceptedReplayLeavesOutbox(t *testing.T) {
	ctx := context.Background()
	outbox := NewMemoryOutbox()
	local := models.EmissionEntry{ID: "local-1", Category: "food", Activity: "beef", Amount: 1, Unit: "kg", Date: "2025-09-20", LocalOnly: true}
	require.NoError(t, outbox.Enqueue(ctx, "u-1", local))

	backend := &acceptingBackend{}
	l := newAcceptingLedger(t, backend, outbox)
	l.Replace([]models.EmissionEntry{local})

	report, err := l.Sync(ctx, realSession())
	require.NoError(t, err)
	assert.Equal(t, SyncReport{Synced: 1}, report)

	pending, _ := outbox.Pending(ctx, "u-1")
	assert.Empty(t, pending)
	entries := l.Entries()
	require.Len(t, entries, 1)
	assert.False(t, entries[0].LocalOnly)

	report, err = l.Sync(ctx, realSession())
	require.NoError(t, err)
	assert.Equal(t, SyncReport{}, report)
	assert.Equal(t, int32(1), atomic.LoadInt32(&backend.posts))
}
