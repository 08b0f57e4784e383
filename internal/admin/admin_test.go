package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carbontrack/internal/apiclient"
	"github.com/carbontrack/internal/errors"
	"github.com/carbontrack/internal/logging"
	"github.com/carbontrack/internal/models"
	"github.com/carbontrack/internal/session"
	"github.com/carbontrack/internal/types"
)

type recorder struct {
	mu       sync.Mutex
	messages []string
}

func (r *recorder) notify(message string, _ types.NotificationType) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, message)
}

func (r *recorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.messages...)
}

func adminSession() *session.Session {
	return &session.Session{Token: "jwt-admin", Profile: &models.UserProfile{UserID: "a-1", Role: types.RoleAdmin}}
}

// fakeBackend serves the admin endpoints from an in-memory pending list
type fakeBackend struct {
	mu        sync.Mutex
	pending   []models.PendingUser
	failStats bool
	approves  int32
	// approveBody is written on a successful approve; an empty body is ambiguous
	approveBody string
}

func (b *fakeBackend) router() http.Handler {
	r := mux.NewRouter()
	write := func(w http.ResponseWriter, status int, v interface{}) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}
	r.HandleFunc("/admin/pending-users", func(w http.ResponseWriter, _ *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		write(w, http.StatusOK, b.pending)
	}).Methods(http.MethodGet)
	r.HandleFunc("/admin/users", func(w http.ResponseWriter, _ *http.Request) {
		write(w, http.StatusOK, []models.ManagedUser{{ID: "user_9", Name: "Real Person", Status: types.StatusActive, Role: types.RoleUser}})
	}).Methods(http.MethodGet)
	r.HandleFunc("/admin/stats", func(w http.ResponseWriter, _ *http.Request) {
		if b.failStats {
			write(w, http.StatusInternalServerError, map[string]string{"detail": "boom"})
			return
		}
		write(w, http.StatusOK, models.AdminStats{TotalUsers: 10})
	}).Methods(http.MethodGet)
	r.HandleFunc("/admin/users/{id}/approve", func(w http.ResponseWriter, req *http.Request) {
		atomic.AddInt32(&b.approves, 1)
		id := mux.Vars(req)["id"]
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, u := range b.pending {
			if u.ID == id {
				b.pending = append(b.pending[:i], b.pending[i+1:]...)
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write([]byte(b.approveBody))
				return
			}
		}
		write(w, http.StatusNotFound, map[string]string{"detail": "User not found"})
	}).Methods(http.MethodPost)
	r.HandleFunc("/admin/users/{id}", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}).Methods(http.MethodDelete)
	return r
}

func newTestPanel(t *testing.T, backend *fakeBackend) (*Panel, *recorder) {
	t.Helper()
	srv := httptest.NewServer(backend.router())
	t.Cleanup(srv.Close)
	client := apiclient.New(apiclient.Options{
		BaseURL:        srv.URL,
		Timeout:        2 * time.Second,
		RetryAttempts:  1,
		RetryBaseDelay: time.Millisecond,
		Logger:         logging.NewNop(),
	})
	rec := &recorder{}
	return New(client, rec.notify, logging.NewNop()), rec
}

func TestReloadIndependentFailures(t *testing.T) {
	backend := &fakeBackend{
		pending:   []models.PendingUser{{ID: "p1", FirstName: "A"}},
		failStats: true,
	}
	p, rec := newTestPanel(t, backend)

	require.NoError(t, p.Reload(context.Background(), adminSession()))
	assert.Len(t, p.Pending(), 1)
	assert.Len(t, p.Users(), 1)
	assert.Nil(t, p.Stats())
	assert.Equal(t, []string{"Failed to load admin stats"}, rec.all())
}

func TestApproveUnknownUserLeavesListUnchanged(t *testing.T) {
	backend := &fakeBackend{pending: []models.PendingUser{{ID: "p1"}, {ID: "p2"}}}
	p, rec := newTestPanel(t, backend)
	ctx := context.Background()
	require.NoError(t, p.Reload(ctx, adminSession()))

	res, err := p.Approve(ctx, adminSession(), "does-not-exist")
	require.NoError(t, err)
	assert.False(t, res.OK)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	assert.Len(t, p.Pending(), 2)
	require.Len(t, rec.all(), 1)
	assert.Contains(t, rec.all()[0], "Failed to approve user")
}

func TestApproveTreatsAny2xxAsSuccess(t *testing.T) {
	for name, body := range map[string]string{
		"explicit success": `{"success": true, "message": "approved"}`,
		"success false":    `{"success": false}`,
		"empty body":       ``,
	} {
		t.Run(name, func(t *testing.T) {
			backend := &fakeBackend{pending: []models.PendingUser{{ID: "p1"}, {ID: "p2"}}, approveBody: body}
			p, rec := newTestPanel(t, backend)
			ctx := context.Background()
			require.NoError(t, p.Reload(ctx, adminSession()))

			res, err := p.Approve(ctx, adminSession(), "p1")
			require.NoError(t, err)
			assert.True(t, res.OK)
			assert.Equal(t, name != "explicit success", res.Ambiguous)
			assert.Equal(t, []string{"User approved successfully!"}, rec.all())
			require.Len(t, p.Pending(), 1, "lists are reloaded after success")
			assert.Equal(t, "p2", p.Pending()[0].ID)
		})
	}
}

func TestRejectForbiddenIsAuthorization(t *testing.T) {
	p, rec := newTestPanel(t, &fakeBackend{})
	_, err := p.Reject(context.Background(), adminSession(), "p1")
	require.Error(t, err)
	assert.True(t, errors.IsAuthorization(err))
	assert.Empty(t, rec.all())
}

func TestNonAdminIsRejectedLocally(t *testing.T) {
	backend := &fakeBackend{}
	p, _ := newTestPanel(t, backend)
	user := &session.Session{Token: "jwt", Profile: &models.UserProfile{UserID: "u", Role: types.RoleUser}}

	err := p.Reload(context.Background(), user)
	assert.ErrorIs(t, err, ErrAdminRequired)
	assert.False(t, errors.IsAuthorization(err), "a non-admin keeps the session")

	_, err = p.Approve(context.Background(), user, "p1")
	assert.ErrorIs(t, err, ErrAdminRequired)
	assert.Zero(t, atomic.LoadInt32(&backend.approves))
}

func TestDemoAdminWorksOffline(t *testing.T) {
	rec := &recorder{}
	p := New(nil, rec.notify, logging.NewNop())
	sess := &session.Session{Token: session.DemoAdminToken, Profile: session.DemoAdminProfile("ops@example.org")}
	ctx := context.Background()

	require.NoError(t, p.Reload(ctx, sess))
	assert.Len(t, p.Pending(), 3)
	assert.Len(t, p.Users(), 3)
	assert.Equal(t, 156, p.Stats().TotalUsers)

	_, err := p.Approve(ctx, sess, "pending_1")
	require.NoError(t, err)
	assert.Len(t, p.Pending(), 2, "reload keeps local demo changes")
	assert.Len(t, p.Users(), 4)
	assert.Equal(t, 157, p.Stats().TotalUsers)

	res, err := p.Reject(ctx, sess, "missing")
	require.NoError(t, err)
	assert.False(t, res.OK)
	assert.Len(t, p.Pending(), 2)

	u, err := p.ToggleStatus(sess, "user_3")
	require.NoError(t, err)
	assert.Equal(t, types.StatusActive, u.Status)

	assert.Equal(t, []string{
		"User approved successfully!",
		"Failed to reject user: pending user not found: missing",
		"User activated successfully",
	}, rec.all())
}

func TestFilterUsers(t *testing.T) {
	p := New(nil, nil, logging.NewNop())
	sess := &session.Session{Token: session.DemoAdminToken, Profile: session.DemoAdminProfile("ops@example.org")}
	require.NoError(t, p.Reload(context.Background(), sess))

	tests := []struct {
		filter types.UserFilter
		search string
		want   []string
	}{
		{types.FilterAll, "", []string{"user_1", "user_2", "user_3"}},
		{types.FilterActive, "", []string{"user_1", "user_2"}},
		{types.FilterInactive, "", []string{"user_3"}},
		{types.FilterAdmins, "", []string{"user_1"}},
		{types.FilterAll, "ECOFIRM", []string{"user_3"}},
		{types.FilterActive, "alex", []string{"user_2"}},
		{types.FilterInactive, "alex", nil},
	}
	for _, tt := range tests {
		t.Run(string(tt.filter)+"/"+tt.search, func(t *testing.T) {
			var got []string
			for _, u := range p.FilterUsers(tt.filter, tt.search) {
				got = append(got, u.ID)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}
