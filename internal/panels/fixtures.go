package panels

import (
	"github.com/carbontrack/internal/models"
	"github.com/carbontrack/internal/types"
)

func demoRecommendations() []models.Recommendation {
	return []models.Recommendation{
		{
			ID:                  "rec_001",
			Title:               "Switch to Public Transportation",
			Description:         "Using public transport for your daily commute could reduce your carbon footprint by 65%",
			Category:            types.CategoryTransportation,
			ImpactLevel:         "high",
			EffortLevel:         "medium",
			PotentialSavingsKg:  45.2,
			ImplementationTips:  []string{"Check local bus and train schedules", "Consider monthly passes for savings", "Combine with walking or cycling"},
			EstimatedCostImpact: "save",
			Timeframe:           "immediate",
		},
		{
			ID:                  "rec_002",
			Title:               "Reduce Meat Consumption",
			Description:         "Replacing 2 meat meals per week with plant-based alternatives can significantly lower food-related emissions",
			Category:            types.CategoryFood,
			ImpactLevel:         "high",
			EffortLevel:         "easy",
			PotentialSavingsKg:  28.7,
			ImplementationTips:  []string{"Try Meatless Monday", "Explore plant-based protein sources", "Start with familiar vegetables"},
			EstimatedCostImpact: "save",
			Timeframe:           "immediate",
		},
		{
			ID:                  "rec_003",
			Title:               "Optimize Home Heating",
			Description:         "Lowering thermostat by 2°C and improving insulation can reduce heating emissions by 30%",
			Category:            types.CategoryEnergy,
			ImpactLevel:         "medium",
			EffortLevel:         "medium",
			PotentialSavingsKg:  35.8,
			ImplementationTips:  []string{"Seal windows and doors", "Use programmable thermostat", "Wear warmer clothes indoors"},
			EstimatedCostImpact: "save",
			Timeframe:           "short_term",
		},
		{
			ID:                  "rec_004",
			Title:               "LED Light Conversion",
			Description:         "Replace remaining incandescent bulbs with LED alternatives for immediate energy savings",
			Category:            types.CategoryEnergy,
			ImpactLevel:         "low",
			EffortLevel:         "easy",
			PotentialSavingsKg:  12.4,
			ImplementationTips:  []string{"Start with most-used rooms", "Check for utility rebates", "Choose warm white for comfort"},
			EstimatedCostImpact: "save",
			Timeframe:           "immediate",
		},
		{
			ID:                  "rec_005",
			Title:               "Work From Home Strategy",
			Description:         "Negotiate remote work 2-3 days per week to reduce commuting emissions",
			Category:            types.CategoryTransportation,
			ImpactLevel:         "high",
			EffortLevel:         "medium",
			PotentialSavingsKg:  52.1,
			ImplementationTips:  []string{"Propose trial period", "Show productivity metrics", "Set up efficient home office"},
			EstimatedCostImpact: "save",
			Timeframe:           "short_term",
		},
	}
}

func demoRecommendationStats() *models.RecommendationStats {
	return &models.RecommendationStats{
		TotalRecommendations:    5,
		ImplementedCount:        2,
		PotentialMonthlySavings: 174.2,
		Categories: map[string]int{
			string(types.CategoryTransportation): 2,
			string(types.CategoryEnergy):         2,
			string(types.CategoryFood):           1,
		},
	}
}

func demoOverview(userID string) *models.GamificationOverview {
	return &models.GamificationOverview{
		Profile: models.GamificationProfile{
			UserID:               userID,
			TotalPoints:          1250,
			Level:                8,
			LevelName:            "Eco Warrior",
			NextLevelThreshold:   1500,
			AchievementsUnlocked: 12,
			CarbonSavedTotalKg:   187.5,
			StreakDays:           23,
			Rank:                 15,
		},
		RecentAchievements: demoAchievements(),
		ActiveChallenges: []models.Challenge{
			{
				ID:           "ch_001",
				Name:         "Carbon Diet Challenge",
				Description:  "Reduce food-related emissions by 20% this month",
				Progress:     65,
				Target:       100,
				RewardPoints: 200,
				EndDate:      "2025-10-31T23:59:59Z",
			},
		},
		Statistics: models.GamificationStats{
			WeeklyPoints:          180,
			MonthlyPoints:         720,
			AchievementsThisMonth: 3,
			ChallengesCompleted:   2,
		},
	}
}

func demoAchievements() []models.Achievement {
	return []models.Achievement{
		{
			ID:           "ach_001",
			Name:         "First Steps",
			Description:  "Logged your first carbon entry",
			Icon:         "🌱",
			Points:       50,
			UnlockedDate: "2025-09-28T10:30:00Z",
		},
		{
			ID:           "ach_002",
			Name:         "Week Warrior",
			Description:  "Tracked emissions for 7 consecutive days",
			Icon:         "📅",
			Points:       100,
			UnlockedDate: "2025-09-25T14:20:00Z",
		},
	}
}

func demoLeaderboards() []models.Leaderboard {
	return []models.Leaderboard{
		{
			Period: types.PeriodWeekly,
			Title:  "This Week",
			Entries: []models.LeaderboardEntry{
				{Rank: 1, UserName: "Green Commuter", Points: 240},
				{Rank: 2, UserName: "Demo User", Points: 180},
				{Rank: 3, UserName: "Solar Sam", Points: 150},
			},
		},
		{
			Period: types.PeriodMonthly,
			Title:  "This Month",
			Entries: []models.LeaderboardEntry{
				{Rank: 1, UserName: "Solar Sam", Points: 910},
				{Rank: 2, UserName: "Demo User", Points: 720},
				{Rank: 3, UserName: "Green Commuter", Points: 640},
			},
		},
		{
			Period: types.PeriodAllTime,
			Title:  "All Time",
			Entries: []models.LeaderboardEntry{
				{Rank: 1, UserName: "Solar Sam", Points: 4820},
				{Rank: 2, UserName: "Green Commuter", Points: 3150},
				{Rank: 15, UserName: "Demo User", Points: 1250},
			},
		},
	}
}
