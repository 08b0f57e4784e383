package app

import (
	"time"

	"github.com/carbontrack/internal/chart"
	"github.com/carbontrack/internal/ledger"
	"github.com/carbontrack/internal/models"
	"github.com/carbontrack/internal/notify"
	"github.com/carbontrack/internal/session"
	"github.com/carbontrack/internal/types"
)

// Snapshot is a read-only copy of the UI state
type Snapshot struct {
	View           types.View                   `json:"view"`
	AuthState      types.AuthState              `json:"auth_state"`
	Profile        models.UserProfile           `json:"profile"`
	Demo           bool                         `json:"demo"`
	TokenExpiresAt *time.Time                   `json:"token_expires_at,omitempty"`
	Entries        []models.EmissionEntry       `json:"entries"`
	Aggregates     ledger.Aggregates            `json:"aggregates"`
	MonthlyTarget  float64                      `json:"monthly_target_kg"`
	Source         ledger.Source                `json:"source"`
	Chart          chart.Series                 `json:"chart"`
	ChartText      string                       `json:"-"`
	ChartRenders   int                          `json:"chart_renders"`
	EmissionForm   ledger.EmissionForm          `json:"emission_form"`
	Notifications  []notify.Notification        `json:"notifications"`
	Recommendation []models.Recommendation      `json:"recommendations"`
	RecStats       *models.RecommendationStats  `json:"recommendation_stats,omitempty"`
	Gamification   *models.GamificationOverview `json:"gamification,omitempty"`
	Achievements   []models.Achievement         `json:"achievements"`
	Leaderboards   []models.Leaderboard         `json:"leaderboards"`
	PendingUsers   []models.PendingUser         `json:"pending_users,omitempty"`
	ManagedUsers   []models.ManagedUser         `json:"users,omitempty"`
	AdminStats     *models.AdminStats           `json:"admin_stats,omitempty"`
}

// Snapshot returns the current state
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	s := Snapshot{
		View:           c.view,
		AuthState:      c.auth,
		Demo:           c.sess.IsDemo(),
		Entries:        c.ledger.Entries(),
		Aggregates:     c.ledger.Aggregates(),
		MonthlyTarget:  c.ledger.Target(),
		Source:         c.ledger.Source(),
		Chart:          c.series,
		ChartText:      c.chartText,
		ChartRenders:   c.renders,
		EmissionForm:   c.emissionForm,
		Notifications:  c.notes.Active(),
		Recommendation: c.panels.Recommendations(),
		RecStats:       c.panels.Stats(),
		Gamification:   c.panels.Overview(),
		Achievements:   c.panels.Achievements(),
		Leaderboards:   c.panels.Leaderboards(),
	}
	if c.sess.Profile != nil {
		s.Profile = *c.sess.Profile
	}
	if exp, ok := session.TokenExpiry(c.sess.Token); ok {
		s.TokenExpiresAt = &exp
	}
	if c.auth == types.AuthAdmin {
		s.PendingUsers = c.admin.Pending()
		s.ManagedUsers = c.admin.Users()
		s.AdminStats = c.admin.Stats()
	}
	return s
}
