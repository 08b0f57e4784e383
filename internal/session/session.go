package session

import (
	"strings"

	"github.com/carbontrack/internal/models"
	"github.com/carbontrack/internal/types"
)

// Demo credentials and sentinel tokens
const (
	DemoEmail    = "demo@carbontrack.dev"
	DemoPassword = "password123"

	DemoUserToken  = "demo-token-123"
	DemoAdminToken = "admin-token-123"

	DemoUserID  = "demo-user"
	DemoAdminID = "admin-user"

	// DemoCarbonBudget is the budget of demo profiles and of the signed-out placeholder
	DemoCarbonBudget = 500
)

var demoTokenPrefixes = []string{"demo-token-", "admin-token-"}

// Session is the token plus the profile it belongs to
type Session struct {
	Token   string              `json:"token,omitempty"`
	Profile *models.UserProfile `json:"profile,omitempty"`
}

// Authenticated reports whether a token is held
func (s *Session) Authenticated() bool {
	return s != nil && s.Token != ""
}

// IsDemo reports whether the session runs on a demo token
func (s *Session) IsDemo() bool {
	return s != nil && IsDemoToken(s.Token)
}

// AuthState maps the session onto the UI state machine
func (s *Session) AuthState() types.AuthState {
	switch {
	case !s.Authenticated():
		return types.AuthAnonymous
	case s.Profile.IsAdmin():
		return types.AuthAdmin
	default:
		return types.AuthUser
	}
}

// IsDemoToken reports whether token short-circuits server-side validation
func IsDemoToken(token string) bool {
	for _, p := range demoTokenPrefixes {
		if strings.HasPrefix(token, p) {
			return true
		}
	}
	return false
}

// IsDemoIdentity reports whether the profile belongs to a demo account.
// Demo identities are served from fixtures and never see load-failure notifications.
func IsDemoIdentity(p *models.UserProfile) bool {
	return p != nil && (p.UserID == DemoUserID || p.UserID == DemoAdminID)
}

// EmptyProfile is the placeholder profile shown while signed out
func EmptyProfile() *models.UserProfile {
	return &models.UserProfile{CarbonBudget: DemoCarbonBudget}
}

// DemoUserProfile is the profile of the built-in demo account
func DemoUserProfile(email string) *models.UserProfile {
	if email == "" {
		email = DemoEmail
	}
	return &models.UserProfile{
		UserID:       DemoUserID,
		Email:        email,
		FullName:     "Demo User",
		CarbonBudget: DemoCarbonBudget,
		Role:         types.RoleUser,
	}
}

// DemoAdminProfile is the profile of the configured demo admin account
func DemoAdminProfile(email string) *models.UserProfile {
	return &models.UserProfile{
		UserID:       DemoAdminID,
		Email:        email,
		FullName:     "Demo Admin",
		CarbonBudget: DemoCarbonBudget,
		Role:         types.RoleAdmin,
	}
}
