package session

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/carbontrack/internal/apiclient"
	"github.com/carbontrack/internal/config"
	"github.com/carbontrack/internal/errors"
	"github.com/carbontrack/internal/logging"
	"github.com/carbontrack/internal/models"
)

// AuthAPI is the part of the backend the session manager talks to
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*apiclient.LoginResult, error)
	Me(ctx context.Context, token string) (*models.UserProfile, error)
	Register(ctx context.Context, req models.RegistrationRequest) error
}

// RestoreOutcome tells how a persisted session was resolved at startup
type RestoreOutcome string

const (
	// RestoreAnonymous: no token was persisted
	RestoreAnonymous RestoreOutcome = "anonymous"
	// RestoreDemo: a demo token was trusted without a round trip
	RestoreDemo RestoreOutcome = "demo"
	// RestoreValidated: the backend confirmed the token
	RestoreValidated RestoreOutcome = "validated"
	// RestoreOptimistic: the backend could not be asked; the cached session is kept
	RestoreOptimistic RestoreOutcome = "optimistic"
	// RestoreRevoked: the backend rejected the token and the session was cleared
	RestoreRevoked RestoreOutcome = "revoked"
)

// Manager establishes, restores and tears down sessions
type Manager struct {
	store  Store
	api    AuthAPI
	demo   config.DemoConfig
	logger *logging.Logger
}

// NewManager creates a session manager
func NewManager(store Store, api AuthAPI, demo config.DemoConfig, logger *logging.Logger) *Manager {
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	return &Manager{
		store:  store,
		api:    api,
		demo:   demo,
		logger: logger.WithField("component", "session"),
	}
}

// Restore resolves the persisted session.
// Only an authorization failure clears it; any other failure keeps the cached profile.
func (m *Manager) Restore(ctx context.Context) (*Session, RestoreOutcome, error) {
	token, ok, err := m.store.Get(ctx, TokenKey)
	if err != nil {
		return &Session{Profile: EmptyProfile()}, RestoreAnonymous, errors.NewStorageError("read session", err)
	}
	if !ok || token == "" {
		return &Session{Profile: EmptyProfile()}, RestoreAnonymous, nil
	}

	cached := m.cachedProfile(ctx)

	if IsDemoToken(token) {
		if cached == nil {
			cached = DemoUserProfile("")
			if strings.HasPrefix(token, "admin-token-") {
				cached = DemoAdminProfile(m.demo.AdminEmail)
			}
			m.saveProfile(ctx, cached)
		}
		return &Session{Token: token, Profile: cached}, RestoreDemo, nil
	}

	if exp, ok := TokenExpiry(token); ok {
		m.logger.WithField("expires_at", exp.Format(time.RFC3339)).Debug("Validating persisted token")
	}

	profile, err := m.api.Me(ctx, token)
	switch {
	case err == nil:
		m.saveProfile(ctx, profile)
		return &Session{Token: token, Profile: profile}, RestoreValidated, nil
	case errors.IsAuthorization(err):
		m.logger.Info("Persisted token rejected; clearing session")
		if clearErr := m.clear(ctx); clearErr != nil {
			m.logger.WithError(clearErr).Warn("Failed to clear rejected session")
		}
		return &Session{Profile: EmptyProfile()}, RestoreRevoked, err
	default:
		m.logger.WithError(err).Warn("Could not validate session; keeping it")
		if cached == nil {
			cached = &models.UserProfile{}
			cached.Normalize()
		}
		return &Session{Token: token, Profile: cached}, RestoreOptimistic, nil
	}
}

// Login tries the backend first and falls back to demo accounts when demo mode allows it
func (m *Manager) Login(ctx context.Context, email, password string) (*Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, errors.NewValidationError("credentials", "Please enter email and password")
	}

	sess, err := m.loginRemote(ctx, email, password)
	if err == nil {
		m.persist(ctx, sess)
		m.logger.WithField("user_id", sess.Profile.UserID).Info("Logged in")
		return sess, nil
	}

	if demo := m.demoLogin(email, password); demo != nil {
		m.logger.WithError(err).WithField("user_id", demo.Profile.UserID).Info("Backend login failed; using demo account")
		m.persist(ctx, demo)
		return demo, nil
	}
	return nil, err
}

func (m *Manager) loginRemote(ctx context.Context, email, password string) (*Session, error) {
	res, err := m.api.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	profile, err := m.api.Me(ctx, res.Token)
	if err != nil {
		if res.Profile == nil || errors.IsAuthorization(err) {
			return nil, err
		}
		m.logger.WithError(err).Warn("Profile fetch failed after login; using embedded profile")
		profile = res.Profile
	}
	if profile.Email == "" {
		profile.Email = email
	}
	return &Session{Token: res.Token, Profile: profile}, nil
}

func (m *Manager) demoLogin(email, password string) *Session {
	if !m.demo.Enabled {
		return nil
	}
	if strings.EqualFold(email, DemoEmail) && password == DemoPassword {
		return &Session{Token: DemoUserToken, Profile: DemoUserProfile(email)}
	}
	if m.demo.DemoAdminConfigured() && strings.EqualFold(email, m.demo.AdminEmail) && password == m.demo.AdminPassword {
		return &Session{Token: DemoAdminToken, Profile: DemoAdminProfile(email)}
	}
	return nil
}

// Register validates the form and submits it. A 409 becomes a conflict telling the user to log in.
func (m *Manager) Register(ctx context.Context, form RegistrationForm) error {
	if err := form.Validate(); err != nil {
		return err
	}
	err := m.api.Register(ctx, form.Request())
	if errors.IsConflict(err) {
		return errors.NewConflictError("An account with this email already exists. Please log in instead.")
	}
	return err
}

// Logout clears the persisted session. The returned session is always anonymous.
func (m *Manager) Logout(ctx context.Context) (*Session, error) {
	err := m.clear(ctx)
	if err != nil {
		m.logger.WithError(err).Warn("Failed to clear persisted session")
		err = errors.NewStorageError("clear session", err)
	}
	return &Session{Profile: EmptyProfile()}, err
}

func (m *Manager) clear(ctx context.Context) error {
	return m.store.Delete(ctx, TokenKey, ProfileKey)
}

func (m *Manager) persist(ctx context.Context, sess *Session) {
	if err := m.store.Set(ctx, TokenKey, sess.Token); err != nil {
		m.logger.WithError(err).Warn("Failed to persist token")
	}
	m.saveProfile(ctx, sess.Profile)
}

func (m *Manager) saveProfile(ctx context.Context, profile *models.UserProfile) {
	data, err := json.Marshal(profile)
	if err != nil {
		return
	}
	if err := m.store.Set(ctx, ProfileKey, string(data)); err != nil {
		m.logger.WithError(err).Warn("Failed to persist profile")
	}
}

func (m *Manager) cachedProfile(ctx context.Context) *models.UserProfile {
	raw, ok, err := m.store.Get(ctx, ProfileKey)
	if err != nil || !ok || raw == "" {
		return nil
	}
	var profile models.UserProfile
	if err := json.Unmarshal([]byte(raw), &profile); err != nil {
		m.logger.WithError(err).Debug("Ignoring unreadable cached profile")
		return nil
	}
	return &profile
}

// TokenExpiry reads the exp claim of a JWT without verifying its signature.
// Demo tokens and opaque tokens report false.
func TokenExpiry(token string) (time.Time, bool) {
	if token == "" || IsDemoToken(token) {
		return time.Time{}, false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
