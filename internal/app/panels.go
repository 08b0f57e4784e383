package app

import (
	"context"

	"github.com/carbontrack/internal/admin"
	"github.com/carbontrack/internal/apiclient"
	"github.com/carbontrack/internal/models"
	"github.com/carbontrack/internal/types"
)

// ReloadPanels refreshes recommendations and gamification
func (c *Controller) ReloadPanels(ctx context.Context) error {
	return c.run(ctx, "reload_panels", func() error {
		if err := c.requireSessionLocked(); err != nil {
			return err
		}
		return c.panels.LoadAll(ctx, c.sess)
	})
}

// Recommendations returns recommendations in category; "" or "all" returns every one
func (c *Controller) Recommendations(category string) []models.Recommendation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.panels.FilterRecommendations(category)
}

// Leaderboards returns the boards for one period
func (c *Controller) Leaderboards(period types.LeaderboardPeriod) []models.Leaderboard {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.panels.FilterLeaderboards(period)
}

// CompleteChallenge completes a challenge and refreshes the profile
func (c *Controller) CompleteChallenge(ctx context.Context, challengeID string) (*models.ChallengeCompletion, error) {
	var result *models.ChallengeCompletion
	err := c.run(ctx, "complete_challenge", func() error {
		if err := c.requireSessionLocked(); err != nil {
			return err
		}
		var err error
		result, err = c.panels.CompleteChallenge(ctx, c.sess, challengeID)
		return err
	})
	return result, err
}

// ReloadAdmin refreshes the admin lists
func (c *Controller) ReloadAdmin(ctx context.Context) error {
	return c.run(ctx, "reload_admin", func() error {
		if err := c.requireSessionLocked(); err != nil {
			return err
		}
		return c.admin.Reload(ctx, c.sess)
	})
}

// ApproveUser approves a pending registration
func (c *Controller) ApproveUser(ctx context.Context, userID string) (apiclient.ActionResult, error) {
	var result apiclient.ActionResult
	err := c.run(ctx, "approve_user", func() error {
		if err := c.requireSessionLocked(); err != nil {
			return err
		}
		var err error
		result, err = c.admin.Approve(ctx, c.sess, userID)
		return err
	})
	return result, err
}

// RejectUser rejects a pending registration
func (c *Controller) RejectUser(ctx context.Context, userID string) (apiclient.ActionResult, error) {
	var result apiclient.ActionResult
	err := c.run(ctx, "reject_user", func() error {
		if err := c.requireSessionLocked(); err != nil {
			return err
		}
		var err error
		result, err = c.admin.Reject(ctx, c.sess, userID)
		return err
	})
	return result, err
}

// ToggleUserStatus flips a managed user between active and inactive
func (c *Controller) ToggleUserStatus(ctx context.Context, userID string) (models.ManagedUser, error) {
	var user models.ManagedUser
	err := c.run(ctx, "toggle_user_status", func() error {
		if err := c.requireSessionLocked(); err != nil {
			return err
		}
		var err error
		user, err = c.admin.ToggleStatus(c.sess, userID)
		return err
	})
	return user, err
}

// Users returns the managed users matching filter and search
func (c *Controller) Users(filter types.UserFilter, search string) ([]models.ManagedUser, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.auth != types.AuthAdmin {
		return nil, admin.ErrAdminRequired
	}
	return c.admin.FilterUsers(filter, search), nil
}
