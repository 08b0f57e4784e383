// Package panels serves the recommendations and gamification views.
package panels

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/carbontrack/internal/errors"
	"github.com/carbontrack/internal/logging"
	"github.com/carbontrack/internal/models"
	"github.com/carbontrack/internal/session"
	"github.com/carbontrack/internal/types"
)

const (
	recommendationLimit = 20
	leaderboardLimit    = 10
)

// API is the part of the backend the panels read from
type API interface {
	Recommendations(ctx context.Context, token string, limit int) ([]models.Recommendation, error)
	RecommendationStats(ctx context.Context, token string) (*models.RecommendationStats, error)
	GamificationProfile(ctx context.Context, token string) (*models.GamificationOverview, error)
	Achievements(ctx context.Context, token string) ([]models.Achievement, error)
	Leaderboards(ctx context.Context, token string, limit int) ([]models.Leaderboard, error)
	CompleteChallenge(ctx context.Context, token, challengeID string) (*models.ChallengeCompletion, error)
}

// NotifyFunc shows a message to the user
type NotifyFunc func(message string, typ types.NotificationType)

// Panels holds the recommendation and gamification data of the signed-in user.
// Operations report their own failures through the notify func and only
// return errors the caller must act on (authorization).
type Panels struct {
	api    API
	notify NotifyFunc
	logger *logging.Logger

	mu              sync.RWMutex
	recommendations []models.Recommendation
	stats           *models.RecommendationStats
	overview        *models.GamificationOverview
	achievements    []models.Achievement
	leaderboards    []models.Leaderboard
}

// New creates empty panels
func New(api API, notify NotifyFunc, logger *logging.Logger) *Panels {
	if notify == nil {
		notify = func(string, types.NotificationType) {}
	}
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	return &Panels{api: api, notify: notify, logger: logger.WithField("component", "panels")}
}

// Reset empties every list
func (p *Panels) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.recommendations = nil
	p.stats = nil
	p.overview = nil
	p.achievements = nil
	p.leaderboards = nil
}

func usesFixtures(sess *session.Session) bool {
	return sess.IsDemo() || session.IsDemoIdentity(sess.Profile)
}

// LoadAll loads recommendations and gamification data concurrently
func (p *Panels) LoadAll(ctx context.Context, sess *session.Session) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return p.LoadRecommendations(ctx, sess) })
	g.Go(func() error { return p.LoadGamification(ctx, sess) })
	return g.Wait()
}

// LoadRecommendations fills the recommendation list and stats
func (p *Panels) LoadRecommendations(ctx context.Context, sess *session.Session) error {
	if !sess.Authenticated() {
		return nil
	}
	if usesFixtures(sess) {
		p.mu.Lock()
		p.recommendations = demoRecommendations()
		p.stats = demoRecommendationStats()
		p.mu.Unlock()
		return nil
	}

	recs, err := p.api.Recommendations(ctx, sess.Token, recommendationLimit)
	if err == nil {
		var stats *models.RecommendationStats
		stats, err = p.api.RecommendationStats(ctx, sess.Token)
		p.mu.Lock()
		p.recommendations = recs
		p.stats = stats
		p.mu.Unlock()
	}
	if err != nil {
		return p.loadFailed(sess, err, "Failed to load recommendations")
	}
	return nil
}

// LoadGamification fills the profile, achievements and leaderboards.
// Only a profile failure is reported to the user.
func (p *Panels) LoadGamification(ctx context.Context, sess *session.Session) error {
	if !sess.Authenticated() {
		return nil
	}
	if usesFixtures(sess) {
		p.mu.Lock()
		p.overview = demoOverview(sess.Profile.UserID)
		p.achievements = demoAchievements()
		p.leaderboards = demoLeaderboards()
		p.mu.Unlock()
		return nil
	}

	overview, err := p.api.GamificationProfile(ctx, sess.Token)
	if err != nil {
		return p.loadFailed(sess, err, "Failed to load achievements data")
	}
	p.mu.Lock()
	p.overview = overview
	p.mu.Unlock()

	achievements, err := p.api.Achievements(ctx, sess.Token)
	if errors.IsAuthorization(err) {
		return err
	} else if err != nil {
		p.logger.WithError(err).Warn("Failed to load achievements")
	} else {
		p.mu.Lock()
		p.achievements = achievements
		p.mu.Unlock()
	}

	boards, err := p.api.Leaderboards(ctx, sess.Token, leaderboardLimit)
	if errors.IsAuthorization(err) {
		return err
	} else if err != nil {
		p.logger.WithError(err).Warn("Failed to load leaderboards")
	} else {
		p.mu.Lock()
		p.leaderboards = boards
		p.mu.Unlock()
	}
	return nil
}

func (p *Panels) loadFailed(sess *session.Session, err error, message string) error {
	if errors.IsAuthorization(err) {
		return err
	}
	p.logger.WithError(err).Warn(message)
	if !session.IsDemoIdentity(sess.Profile) {
		p.notify(message, types.NotificationError)
	}
	return nil
}

// Recommendations returns the loaded recommendations
func (p *Panels) Recommendations() []models.Recommendation {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]models.Recommendation(nil), p.recommendations...)
}

// Stats returns the recommendation stats, nil before a successful load
func (p *Panels) Stats() *models.RecommendationStats {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.stats
}

// Overview returns the gamification profile, nil before a successful load
func (p *Panels) Overview() *models.GamificationOverview {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.overview == nil {
		return nil
	}
	o := *p.overview
	o.RecentAchievements = append([]models.Achievement(nil), o.RecentAchievements...)
	o.ActiveChallenges = append([]models.Challenge(nil), o.ActiveChallenges...)
	return &o
}

// Achievements returns earned achievements followed by those in progress
func (p *Panels) Achievements() []models.Achievement {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]models.Achievement(nil), p.achievements...)
}

// Leaderboards returns every loaded leaderboard
func (p *Panels) Leaderboards() []models.Leaderboard {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]models.Leaderboard(nil), p.leaderboards...)
}

// FilterRecommendations keeps the recommendations of category; "" and "all" keep everything
func (p *Panels) FilterRecommendations(category string) []models.Recommendation {
	all := p.Recommendations()
	category = strings.ToLower(strings.TrimSpace(category))
	if category == "" || category == "all" {
		return all
	}
	out := []models.Recommendation{}
	for _, r := range all {
		if string(r.Category) == category {
			out = append(out, r)
		}
	}
	return out
}

// FilterLeaderboards keeps the leaderboards of period
func (p *Panels) FilterLeaderboards(period types.LeaderboardPeriod) []models.Leaderboard {
	out := []models.Leaderboard{}
	for _, b := range p.Leaderboards() {
		if b.Period == period {
			out = append(out, b)
		}
	}
	return out
}

// CompleteChallenge marks a challenge as done, announces the reward and
// reloads the profile. Demo identities complete challenges locally.
func (p *Panels) CompleteChallenge(ctx context.Context, sess *session.Session, challengeID string) (*models.ChallengeCompletion, error) {
	if !sess.Authenticated() {
		return nil, errors.NewUnauthorizedError("login required")
	}

	var (
		result *models.ChallengeCompletion
		err    error
	)
	if usesFixtures(sess) {
		result, err = p.completeLocally(challengeID)
	} else {
		result, err = p.api.CompleteChallenge(ctx, sess.Token, challengeID)
	}
	if err != nil {
		if errors.IsAuthorization(err) {
			return nil, err
		}
		p.logger.WithError(err).WithField("challenge_id", challengeID).Warn("Failed to complete challenge")
		p.notify("Failed to complete challenge", types.NotificationError)
		return nil, nil
	}

	p.notify(fmt.Sprintf("Challenge completed! +%d points", result.PointsEarned), types.NotificationSuccess)
	for _, a := range result.NewAchievements {
		p.notify(fmt.Sprintf("Achievement Unlocked: %s!", a.Name), types.NotificationSuccess)
	}

	if !usesFixtures(sess) {
		if err := p.LoadGamification(ctx, sess); err != nil {
			return result, err
		}
	}
	return result, nil
}

func (p *Panels) completeLocally(challengeID string) (*models.ChallengeCompletion, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.overview == nil {
		return nil, errors.NewNotFoundError("challenge", challengeID)
	}
	for i, ch := range p.overview.ActiveChallenges {
		if ch.ID != challengeID {
			continue
		}
		p.overview.ActiveChallenges = append(p.overview.ActiveChallenges[:i:i], p.overview.ActiveChallenges[i+1:]...)
		p.overview.Profile.TotalPoints += ch.RewardPoints
		p.overview.Statistics.ChallengesCompleted++
		return &models.ChallengeCompletion{PointsEarned: ch.RewardPoints}, nil
	}
	return nil, errors.NewNotFoundError("challenge", challengeID)
}
