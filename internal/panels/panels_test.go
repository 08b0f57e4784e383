package panels

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carbontrack/internal/errors"
	"github.com/carbontrack/internal/logging"
	"github.com/carbontrack/internal/models"
	"github.com/carbontrack/internal/session"
	"github.com/carbontrack/internal/types"
)

type fakeAPI struct {
	mu       sync.Mutex
	err      error
	calls    int
	complete *models.ChallengeCompletion
}

func (f *fakeAPI) hit() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.err
}

func (f *fakeAPI) Recommendations(context.Context, string, int) ([]models.Recommendation, error) {
	if err := f.hit(); err != nil {
		return nil, err
	}
	return []models.Recommendation{{ID: "r1", Category: types.CategoryFood}}, nil
}

func (f *fakeAPI) RecommendationStats(context.Context, string) (*models.RecommendationStats, error) {
	if err := f.hit(); err != nil {
		return nil, err
	}
	return &models.RecommendationStats{TotalRecommendations: 1}, nil
}

func (f *fakeAPI) GamificationProfile(context.Context, string) (*models.GamificationOverview, error) {
	if err := f.hit(); err != nil {
		return nil, err
	}
	return &models.GamificationOverview{Profile: models.GamificationProfile{TotalPoints: 10}}, nil
}

func (f *fakeAPI) Achievements(context.Context, string) ([]models.Achievement, error) {
	if err := f.hit(); err != nil {
		return nil, err
	}
	return []models.Achievement{{ID: "a1"}}, nil
}

func (f *fakeAPI) Leaderboards(context.Context, string, int) ([]models.Leaderboard, error) {
	if err := f.hit(); err != nil {
		return nil, err
	}
	return []models.Leaderboard{{Period: types.PeriodWeekly}}, nil
}

func (f *fakeAPI) CompleteChallenge(context.Context, string, string) (*models.ChallengeCompletion, error) {
	if err := f.hit(); err != nil {
		return nil, err
	}
	return f.complete, nil
}

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

func realSession() *session.Session {
	return &session.Session{Token: "jwt", Profile: &models.UserProfile{UserID: "u-1", Role: types.RoleUser}}
}

func TestDemoIdentityUsesFixtures(t *testing.T) {
	api := &fakeAPI{err: errors.NewNetworkError("GET", nil)}
	rec := &recorder{}
	p := New(api, rec.notify, logging.NewNop())

	sess := &session.Session{Token: session.DemoUserToken, Profile: session.DemoUserProfile("")}
	require.NoError(t, p.LoadAll(context.Background(), sess))

	assert.Zero(t, api.calls)
	assert.Empty(t, rec.all())
	assert.Len(t, p.Recommendations(), 5)
	assert.Equal(t, 174.2, p.Stats().PotentialMonthlySavings)
	assert.Equal(t, "Eco Warrior", p.Overview().Profile.LevelName)
	assert.Len(t, p.Achievements(), 2)
	assert.Len(t, p.FilterRecommendations("energy"), 2)
	assert.Len(t, p.FilterRecommendations("all"), 5)
	assert.Len(t, p.FilterLeaderboards(types.PeriodMonthly), 1)
}

func TestLoadFailureNotificationsOnlyForRealUsers(t *testing.T) {
	tests := []struct {
		name         string
		sess         *session.Session
		wantMessages []string
	}{
		{
			name:         "real user",
			sess:         realSession(),
			wantMessages: []string{"Failed to load recommendations", "Failed to load achievements data"},
		},
		{
			name: "demo identity on a real token",
			sess: &session.Session{Token: "jwt", Profile: session.DemoUserProfile("")},
		},
		{
			name: "admin demo identity",
			sess: &session.Session{Token: session.DemoAdminToken, Profile: session.DemoAdminProfile("ops@example.org")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			p := New(&fakeAPI{err: errors.FromResponse(500, nil)}, rec.notify, logging.NewNop())

			require.NoError(t, p.LoadAll(context.Background(), tt.sess))
			assert.ElementsMatch(t, tt.wantMessages, rec.all())
		})
	}
}

func TestLoadFailureLeavesListsEmpty(t *testing.T) {
	p := New(&fakeAPI{err: errors.NewNetworkError("GET", nil)}, nil, logging.NewNop())
	require.NoError(t, p.LoadAll(context.Background(), realSession()))
	assert.Empty(t, p.Recommendations())
	assert.Nil(t, p.Overview())
	assert.Empty(t, p.Leaderboards())
}

func TestLoadReturnsAuthorization(t *testing.T) {
	rec := &recorder{}
	p := New(&fakeAPI{err: errors.FromResponse(401, nil)}, rec.notify, logging.NewNop())
	err := p.LoadAll(context.Background(), realSession())
	require.Error(t, err)
	assert.True(t, errors.IsAuthorization(err))
	assert.Empty(t, rec.all())
}

func TestLoadRealUser(t *testing.T) {
	api := &fakeAPI{}
	p := New(api, nil, logging.NewNop())
	require.NoError(t, p.LoadAll(context.Background(), realSession()))
	assert.Equal(t, 5, api.calls)
	assert.Len(t, p.Recommendations(), 1)
	assert.Equal(t, 10, p.Overview().Profile.TotalPoints)
	assert.Len(t, p.FilterLeaderboards(types.PeriodWeekly), 1)
	assert.Empty(t, p.FilterLeaderboards(types.PeriodAllTime))
}

func TestCompleteChallenge(t *testing.T) {
	t.Run("server", func(t *testing.T) {
		api := &fakeAPI{complete: &models.ChallengeCompletion{
			PointsEarned:    200,
			NewAchievements: []models.Achievement{{Name: "Diet Master"}},
		}}
		rec := &recorder{}
		p := New(api, rec.notify, logging.NewNop())

		res, err := p.CompleteChallenge(context.Background(), realSession(), "ch_001")
		require.NoError(t, err)
		assert.Equal(t, 200, res.PointsEarned)
		assert.Equal(t, []string{"Challenge completed! +200 points", "Achievement Unlocked: Diet Master!"}, rec.all())
		assert.NotNil(t, p.Overview(), "profile is reloaded")
	})

	t.Run("failure", func(t *testing.T) {
		rec := &recorder{}
		p := New(&fakeAPI{err: errors.FromResponse(404, nil)}, rec.notify, logging.NewNop())

		res, err := p.CompleteChallenge(context.Background(), realSession(), "nope")
		require.NoError(t, err)
		assert.Nil(t, res)
		assert.Equal(t, []string{"Failed to complete challenge"}, rec.all())
	})

	t.Run("demo", func(t *testing.T) {
		rec := &recorder{}
		api := &fakeAPI{}
		p := New(api, rec.notify, logging.NewNop())
		sess := &session.Session{Token: session.DemoUserToken, Profile: session.DemoUserProfile("")}
		require.NoError(t, p.LoadAll(context.Background(), sess))

		res, err := p.CompleteChallenge(context.Background(), sess, "ch_001")
		require.NoError(t, err)
		assert.Equal(t, 200, res.PointsEarned)
		assert.Equal(t, 1450, p.Overview().Profile.TotalPoints)
		assert.Empty(t, p.Overview().ActiveChallenges)
		assert.Zero(t, api.calls)
	})
}
