package models

import (
	"github.com/carbontrack/internal/types"
)

// Recommendation is an advisory item; never persisted by the client
type Recommendation struct {
	ID                  string         `json:"id"`
	Title               string         `json:"title"`
	Description         string         `json:"description"`
	Category            types.Category `json:"category"`
	ImpactLevel         string         `json:"impact_level"`
	EffortLevel         string         `json:"effort_level"`
	PotentialSavingsKg  float64        `json:"potential_savings_kg"`
	ImplementationTips  []string       `json:"implementation_tips,omitempty"`
	EstimatedCostImpact string         `json:"estimated_cost_impact,omitempty"`
	Timeframe           string         `json:"timeframe,omitempty"`
}

// RecommendationStats is the payload of /recommendations/stats
type RecommendationStats struct {
	TotalRecommendations    int            `json:"total_recommendations"`
	ImplementedCount        int            `json:"implemented_count"`
	PotentialMonthlySavings float64        `json:"potential_monthly_savings"`
	Categories              map[string]int `json:"categories,omitempty"`
}

// GamificationProfile is the points and level summary of a user
type GamificationProfile struct {
	UserID               string  `json:"user_id"`
	TotalPoints          int     `json:"total_points"`
	Level                int     `json:"level"`
	LevelName            string  `json:"level_name"`
	NextLevelThreshold   int     `json:"next_level_threshold"`
	AchievementsUnlocked int     `json:"achievements_unlocked"`
	CarbonSavedTotalKg   float64 `json:"carbon_saved_total_kg"`
	StreakDays           int     `json:"streak_days"`
	Rank                 int     `json:"rank"`
}

// GamificationStats holds point totals over recent windows
type GamificationStats struct {
	WeeklyPoints          int `json:"weekly_points"`
	MonthlyPoints         int `json:"monthly_points"`
	AchievementsThisMonth int `json:"achievements_this_month"`
	ChallengesCompleted   int `json:"challenges_completed"`
}

// Achievement is an unlocked or in-progress badge
type Achievement struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	Icon         string  `json:"icon,omitempty"`
	Points       int     `json:"points"`
	UnlockedDate string  `json:"unlocked_date,omitempty"`
	Progress     float64 `json:"progress,omitempty"`
}

// Challenge is a time-boxed goal that awards points
type Challenge struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Progress     int    `json:"progress"`
	Target       int    `json:"target"`
	RewardPoints int    `json:"reward_points"`
	EndDate      string `json:"end_date,omitempty"`
}

// LeaderboardEntry is one ranked user
type LeaderboardEntry struct {
	Rank     int    `json:"rank"`
	UserName string `json:"user_name"`
	Points   int    `json:"points"`
}

// Leaderboard is a ranking over one period
type Leaderboard struct {
	Period  types.LeaderboardPeriod `json:"period"`
	Title   string                  `json:"title,omitempty"`
	Entries []LeaderboardEntry      `json:"entries"`
}

// GamificationOverview is the data block of /gamification/profile
type GamificationOverview struct {
	Profile            GamificationProfile `json:"user_profile"`
	RecentAchievements []Achievement       `json:"recent_achievements"`
	ActiveChallenges   []Challenge         `json:"active_challenges"`
	Statistics         GamificationStats   `json:"statistics"`
}

// ChallengeCompletion is the data block of a completed challenge
type ChallengeCompletion struct {
	PointsEarned    int           `json:"points_earned"`
	NewAchievements []Achievement `json:"new_achievements"`
}
