// Package admin implements the user-approval panel available to admins.
package admin

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/carbontrack/internal/apiclient"
	"github.com/carbontrack/internal/errors"
	"github.com/carbontrack/internal/logging"
	"github.com/carbontrack/internal/models"
	"github.com/carbontrack/internal/session"
	"github.com/carbontrack/internal/types"
)

// API is the admin part of the backend
type API interface {
	PendingUsers(ctx context.Context, token string) ([]models.PendingUser, error)
	Users(ctx context.Context, token string) ([]models.ManagedUser, error)
	AdminStats(ctx context.Context, token string) (*models.AdminStats, error)
	ApproveUser(ctx context.Context, token, userID string) apiclient.ActionResult
	RejectUser(ctx context.Context, token, userID string) apiclient.ActionResult
}

// NotifyFunc shows a message to the user
type NotifyFunc func(message string, typ types.NotificationType)

// ErrAdminRequired is returned when a non-admin session calls an admin operation.
// It is not an authorization error: the session stays valid.
var ErrAdminRequired = &errors.CategorizedError{
	Category:   errors.CategoryValidation,
	StatusCode: http.StatusForbidden,
	Code:       "ADMIN_REQUIRED",
	Message:    "Admin access required",
}

// Panel holds the admin lists
type Panel struct {
	api    API
	notify NotifyFunc
	logger *logging.Logger

	mu      sync.RWMutex
	pending []models.PendingUser
	users   []models.ManagedUser
	stats   *models.AdminStats
	// demo is set once the demo fixtures are loaded; later reloads keep local changes
	demo bool
}

// New creates an empty admin panel
func New(api API, notify NotifyFunc, logger *logging.Logger) *Panel {
	if notify == nil {
		notify = func(string, types.NotificationType) {}
	}
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	return &Panel{api: api, notify: notify, logger: logger.WithField("component", "admin")}
}

func requireAdmin(sess *session.Session) error {
	if !sess.Authenticated() {
		return errors.NewUnauthorizedError("login required")
	}
	if !sess.Profile.IsAdmin() {
		return ErrAdminRequired
	}
	return nil
}

func usesFixtures(sess *session.Session) bool {
	return sess.IsDemo() || session.IsDemoIdentity(sess.Profile)
}

// Reset empties every list
func (p *Panel) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pending, p.users, p.stats, p.demo = nil, nil, nil, false
}

// Reload fetches pending users, users and stats concurrently.
// Each failure is announced on its own and does not block the others.
func (p *Panel) Reload(ctx context.Context, sess *session.Session) error {
	if err := requireAdmin(sess); err != nil {
		return err
	}
	if usesFixtures(sess) {
		p.mu.Lock()
		if !p.demo {
			p.pending, p.users, p.stats = demoPending(), demoUsers(), demoStats()
			p.demo = true
		}
		p.mu.Unlock()
		return nil
	}

	var g errgroup.Group
	g.Go(func() error {
		pending, err := p.api.PendingUsers(ctx, sess.Token)
		if err != nil {
			return p.reloadFailed(err, "Failed to load pending users")
		}
		p.mu.Lock()
		p.pending = pending
		p.mu.Unlock()
		return nil
	})
	g.Go(func() error {
		users, err := p.api.Users(ctx, sess.Token)
		if err != nil {
			return p.reloadFailed(err, "Failed to load users")
		}
		p.mu.Lock()
		p.users = users
		p.mu.Unlock()
		return nil
	})
	g.Go(func() error {
		stats, err := p.api.AdminStats(ctx, sess.Token)
		if err != nil {
			return p.reloadFailed(err, "Failed to load admin stats")
		}
		p.mu.Lock()
		p.stats = stats
		p.mu.Unlock()
		return nil
	})
	return g.Wait()
}

func (p *Panel) reloadFailed(err error, message string) error {
	if errors.IsAuthorization(err) {
		return err
	}
	p.logger.WithError(err).Warn(message)
	p.notify(message, types.NotificationError)
	return nil
}

// Approve approves a pending registration and reloads the lists on success
func (p *Panel) Approve(ctx context.Context, sess *session.Session, userID string) (apiclient.ActionResult, error) {
	return p.act(ctx, sess, userID, "approve", "User approved successfully!", "Failed to approve user")
}

// Reject deletes a pending registration and reloads the lists on success
func (p *Panel) Reject(ctx context.Context, sess *session.Session, userID string) (apiclient.ActionResult, error) {
	return p.act(ctx, sess, userID, "reject", "User registration rejected", "Failed to reject user")
}

func (p *Panel) act(ctx context.Context, sess *session.Session, userID, action, okMsg, failMsg string) (apiclient.ActionResult, error) {
	if err := requireAdmin(sess); err != nil {
		return apiclient.ActionResult{Err: err}, err
	}

	var result apiclient.ActionResult
	switch {
	case usesFixtures(sess) && action == "approve":
		result = p.approveLocally(userID)
	case usesFixtures(sess):
		result = p.rejectLocally(userID)
	case action == "approve":
		result = p.api.ApproveUser(ctx, sess.Token, userID)
	default:
		result = p.api.RejectUser(ctx, sess.Token, userID)
	}

	log := p.logger.WithFields(map[string]interface{}{
		"action":  action,
		"user_id": userID,
		"status":  result.StatusCode,
	})
	if !result.OK {
		if errors.IsAuthorization(result.Err) {
			return result, result.Err
		}
		log.WithError(result.Err).Warn("Admin action failed")
		msg := failMsg
		if result.Message != "" {
			msg = fmt.Sprintf("%s: %s", failMsg, result.Message)
		}
		p.notify(msg, types.NotificationError)
		return result, nil
	}

	if result.Ambiguous {
		log.Debug("Admin action succeeded without a success flag")
	}
	p.notify(okMsg, types.NotificationSuccess)
	return result, p.Reload(ctx, sess)
}

func (p *Panel) approveLocally(userID string) apiclient.ActionResult {
	p.mu.Lock()
	defer p.mu.Unlock()
	idx := p.pendingIndex(userID)
	if idx < 0 {
		return notFound(userID)
	}
	u := p.pending[idx]
	p.pending = append(p.pending[:idx:idx], p.pending[idx+1:]...)
	p.users = append(p.users, models.ManagedUser{
		ID:         "approved_" + u.ID,
		Name:       strings.TrimSpace(u.FirstName + " " + u.LastName),
		Email:      u.Email,
		Status:     types.StatusActive,
		Role:       types.RoleUser,
		LastActive: u.RegisteredAt,
	})
	if p.stats != nil {
		p.stats.PendingRegistrations--
		p.stats.TotalUsers++
	}
	return apiclient.ActionResult{OK: true, StatusCode: http.StatusOK}
}

func (p *Panel) rejectLocally(userID string) apiclient.ActionResult {
	p.mu.Lock()
	defer p.mu.Unlock()
	idx := p.pendingIndex(userID)
	if idx < 0 {
		return notFound(userID)
	}
	p.pending = append(p.pending[:idx:idx], p.pending[idx+1:]...)
	if p.stats != nil {
		p.stats.PendingRegistrations--
	}
	return apiclient.ActionResult{OK: true, StatusCode: http.StatusOK}
}

func (p *Panel) pendingIndex(id string) int {
	for i, u := range p.pending {
		if u.ID == id {
			return i
		}
	}
	return -1
}

func notFound(id string) apiclient.ActionResult {
	err := errors.NewNotFoundError("pending user", id)
	return apiclient.ActionResult{StatusCode: http.StatusNotFound, Message: err.Message, Err: err}
}

// ToggleStatus flips a user between active and inactive. The change is local.
func (p *Panel) ToggleStatus(sess *session.Session, userID string) (models.ManagedUser, error) {
	if err := requireAdmin(sess); err != nil {
		return models.ManagedUser{}, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := range p.users {
		if p.users[i].ID != userID {
			continue
		}
		p.users[i].Status = p.users[i].Status.Toggle()
		verb := "deactivated"
		if p.users[i].Status == types.StatusActive {
			verb = "activated"
		}
		p.notify(fmt.Sprintf("User %s successfully", verb), types.NotificationSuccess)
		return p.users[i], nil
	}
	return models.ManagedUser{}, errors.NewNotFoundError("user", userID)
}

// Pending returns the pending registrations
func (p *Panel) Pending() []models.PendingUser {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]models.PendingUser(nil), p.pending...)
}

// Users returns every managed user
func (p *Panel) Users() []models.ManagedUser {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]models.ManagedUser(nil), p.users...)
}

// Stats returns the installation stats, nil before a successful load
func (p *Panel) Stats() *models.AdminStats {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stats == nil {
		return nil
	}
	s := *p.stats
	return &s
}

// FilterUsers applies the status/role filter and a case-insensitive search over name and email
func (p *Panel) FilterUsers(filter types.UserFilter, search string) []models.ManagedUser {
	search = strings.ToLower(strings.TrimSpace(search))
	out := []models.ManagedUser{}
	for _, u := range p.Users() {
		switch filter {
		case types.FilterAdmins:
			if u.Role != types.RoleAdmin {
				continue
			}
		case types.FilterActive, types.FilterInactive:
			if string(u.Status) != string(filter) {
				continue
			}
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(u.Name), search) &&
			!strings.Contains(strings.ToLower(u.Email), search) {
			continue
		}
		out = append(out, u)
	}
	return out
}
