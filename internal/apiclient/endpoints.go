package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/carbontrack/internal/errors"
	"github.com/carbontrack/internal/models"
)

// LoginResult is the outcome of POST /auth/login
type LoginResult struct {
	Token   string
	Profile *models.UserProfile // set only when the backend embeds the user
}

type loginBody struct {
	AccessToken string              `json:"access_token"`
	Token       string              `json:"token"`
	User        *models.UserProfile `json:"user"`
}

// Login exchanges credentials for a bearer token.
// Both {access_token, user} and the {success, data:{token, user}} envelope are accepted.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	resp, err := c.call(ctx, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, err
	}

	var body loginBody
	if err := decode(resp.body, &body); err != nil {
		return nil, err
	}
	token := body.AccessToken
	if token == "" {
		token = body.Token
	}
	if token == "" {
		return nil, errors.NewInternalError("login response carried no token", nil)
	}
	if body.User != nil {
		body.User.Normalize()
	}
	return &LoginResult{Token: token, Profile: body.User}, nil
}

// Me fetches the profile behind token
func (c *Client) Me(ctx context.Context, token string) (*models.UserProfile, error) {
	resp, err := c.call(ctx, http.MethodGet, "/auth/me", token, nil)
	if err != nil {
		return nil, err
	}

	data, err := unwrap(resp.body)
	if err != nil {
		return nil, err
	}

	var wrapped struct {
		User *models.UserProfile `json:"user"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil && wrapped.User != nil {
		wrapped.User.Normalize()
		return wrapped.User, nil
	}

	var flat models.UserProfile
	if err := json.Unmarshal(data, &flat); err != nil {
		return nil, errors.NewInternalError("decode profile", err)
	}
	flat.Normalize()
	return &flat, nil
}

// Register submits a registration request
func (c *Client) Register(ctx context.Context, req models.RegistrationRequest) error {
	_, err := c.call(ctx, http.MethodPost, "/auth/register", "", req)
	return err
}

// ListEmissions returns every entry of the user
func (c *Client) ListEmissions(ctx context.Context, token string) ([]models.EmissionEntry, error) {
	var entries []models.EmissionEntry
	if err := c.get(ctx, "/carbon-emissions/", token, &entries); err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []models.EmissionEntry{}
	}
	return entries, nil
}

// CreateEmission stores a new entry and returns the server copy
func (c *Client) CreateEmission(ctx context.Context, token string, in models.EmissionCreate) (*models.EmissionEntry, error) {
	resp, err := c.call(ctx, http.MethodPost, "/carbon-emissions/", token, in)
	if err != nil {
		return nil, err
	}
	var entry models.EmissionEntry
	if err := decode(resp.body, &entry); err != nil {
		return nil, errors.NewUnreadableResponseError(resp.status, "created entry could not be decoded", err)
	}
	if entry.ID == "" {
		return nil, errors.NewUnreadableResponseError(resp.status, "created entry has no id", nil)
	}
	return &entry, nil
}

// Recommendations returns up to limit recommendations
func (c *Client) Recommendations(ctx context.Context, token string, limit int) ([]models.Recommendation, error) {
	var data struct {
		Recommendations []models.Recommendation `json:"recommendations"`
	}
	path := fmt.Sprintf("/recommendations/?limit=%d", limit)
	if err := c.get(ctx, path, token, &data); err != nil {
		return nil, err
	}
	return data.Recommendations, nil
}

// RecommendationStats returns aggregate recommendation figures
func (c *Client) RecommendationStats(ctx context.Context, token string) (*models.RecommendationStats, error) {
	var stats models.RecommendationStats
	if err := c.get(ctx, "/recommendations/stats", token, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// GamificationProfile returns the points profile, recent achievements and challenges
func (c *Client) GamificationProfile(ctx context.Context, token string) (*models.GamificationOverview, error) {
	var overview models.GamificationOverview
	if err := c.get(ctx, "/gamification/profile", token, &overview); err != nil {
		return nil, err
	}
	return &overview, nil
}

// Achievements returns earned achievements followed by those in progress
func (c *Client) Achievements(ctx context.Context, token string) ([]models.Achievement, error) {
	var data struct {
		Earned   []models.Achievement `json:"earned_achievements"`
		Progress []models.Achievement `json:"achievements_progress"`
	}
	if err := c.get(ctx, "/gamification/achievements", token, &data); err != nil {
		return nil, err
	}
	return append(data.Earned, data.Progress...), nil
}

// Leaderboards returns every leaderboard, limit entries each
func (c *Client) Leaderboards(ctx context.Context, token string, limit int) ([]models.Leaderboard, error) {
	var data struct {
		Leaderboards []models.Leaderboard `json:"leaderboards"`
	}
	path := fmt.Sprintf("/gamification/leaderboards?limit=%d", limit)
	if err := c.get(ctx, path, token, &data); err != nil {
		return nil, err
	}
	return data.Leaderboards, nil
}

// CompleteChallenge marks a challenge as done
func (c *Client) CompleteChallenge(ctx context.Context, token, challengeID string) (*models.ChallengeCompletion, error) {
	path := "/gamification/challenges/" + url.PathEscape(challengeID) + "/complete"
	resp, err := c.call(ctx, http.MethodPost, path, token, struct{}{})
	if err != nil {
		return nil, err
	}
	var data struct {
		Completion      models.ChallengeCompletion `json:"challenge_completion"`
		NewAchievements []models.Achievement       `json:"new_achievements"`
	}
	if err := decode(resp.body, &data); err != nil {
		return nil, err
	}
	out := data.Completion
	if len(out.NewAchievements) == 0 {
		out.NewAchievements = data.NewAchievements
	}
	return &out, nil
}

// PendingUsers lists registrations awaiting approval
func (c *Client) PendingUsers(ctx context.Context, token string) ([]models.PendingUser, error) {
	var users []models.PendingUser
	if err := c.get(ctx, "/admin/pending-users", token, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Users lists approved accounts
func (c *Client) Users(ctx context.Context, token string) ([]models.ManagedUser, error) {
	var users []models.ManagedUser
	if err := c.get(ctx, "/admin/users", token, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// AdminStats returns installation totals
func (c *Client) AdminStats(ctx context.Context, token string) (*models.AdminStats, error) {
	var stats models.AdminStats
	if err := c.get(ctx, "/admin/stats", token, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// ApproveUser approves a pending registration
func (c *Client) ApproveUser(ctx context.Context, token, userID string) ActionResult {
	resp, err := c.call(ctx, http.MethodPost, "/admin/users/"+url.PathEscape(userID)+"/approve", token, struct{}{})
	return classifyAction(resp, err)
}

// RejectUser deletes a pending registration
func (c *Client) RejectUser(ctx context.Context, token, userID string) ActionResult {
	resp, err := c.call(ctx, http.MethodDelete, "/admin/users/"+url.PathEscape(userID), token, nil)
	return classifyAction(resp, err)
}
