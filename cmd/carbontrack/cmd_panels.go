package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/carbontrack/internal/types"
)

var (
	recCategory       string
	leaderboardPeriod string
)

var recommendationsCmd = &cobra.Command{
	Use:     "recommendations",
	Aliases: []string{"recs"},
	Short:   "Show ways to reduce emissions",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		t := newTable("Recommendations", "TITLE", "CATEGORY", "IMPACT", "EFFORT", "SAVES KG")
		for _, r := range client.Controller.Recommendations(recCategory) {
			t.add(r.Title, string(r.Category), r.ImpactLevel, r.EffortLevel, fmt.Sprintf("%.1f", r.PotentialSavingsKg))
		}
		t.render(w)

		if stats := client.Controller.Snapshot().RecStats; stats != nil {
			fmt.Fprintf(w, "\n%d recommendations, %d implemented, up to %.1f kg CO₂ saved per month\n",
				stats.TotalRecommendations, stats.ImplementedCount, stats.PotentialMonthlySavings)
		}
		return nil
	},
}

var gamificationCmd = &cobra.Command{
	Use:     "gamification",
	Aliases: []string{"game"},
	Short:   "Show points, achievements and challenges",
	RunE: func(cmd *cobra.Command, args []string) error {
		snap := client.Controller.Snapshot()
		w := cmd.OutOrStdout()
		if snap.Gamification == nil {
			fmt.Fprintln(w, mutedStyle.Render("No gamification data yet"))
			return nil
		}
		p := snap.Gamification.Profile
		fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Level %d · %s", p.Level, p.LevelName)))
		fmt.Fprintf(w, "  points:  %d / %d\n", p.TotalPoints, p.NextLevelThreshold)
		fmt.Fprintf(w, "  streak:  %d days\n", p.StreakDays)
		fmt.Fprintf(w, "  saved:   %.1f kg CO₂\n\n", p.CarbonSavedTotalKg)

		ach := newTable("Achievements", "NAME", "POINTS", "UNLOCKED")
		for _, a := range snap.Achievements {
			ach.add(a.Name, fmt.Sprint(a.Points), a.UnlockedDate)
		}
		ach.render(w)
		fmt.Fprintln(w)

		ch := newTable("Active challenges", "ID", "NAME", "PROGRESS", "REWARD")
		for _, c := range snap.Gamification.ActiveChallenges {
			ch.add(c.ID, c.Name, fmt.Sprintf("%d/%d", c.Progress, c.Target), fmt.Sprint(c.RewardPoints))
		}
		ch.render(w)
		return nil
	},
}

var completeChallengeCmd = &cobra.Command{
	Use:   "complete <challenge-id>",
	Short: "Mark a challenge as completed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := opContext(cmd)
		defer cancel()
		result, err := client.Controller.CompleteChallenge(ctx, args[0])
		if err != nil {
			return err
		}
		if result == nil {
			return fmt.Errorf("challenge %s was not completed", args[0])
		}
		fmt.Fprintf(cmd.OutOrStdout(), "+%d points\n", result.PointsEarned)
		for _, a := range result.NewAchievements {
			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("unlocked: "+a.Name))
		}
		return nil
	},
}

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Show the leaderboard for a period",
	RunE: func(cmd *cobra.Command, args []string) error {
		period := types.LeaderboardPeriod(leaderboardPeriod)
		switch period {
		case types.PeriodWeekly, types.PeriodMonthly, types.PeriodAllTime:
		default:
			return fmt.Errorf("unknown period %q (weekly, monthly or all_time)", leaderboardPeriod)
		}
		boards := client.Controller.Leaderboards(period)
		if len(boards) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render("No leaderboard for "+leaderboardPeriod))
			return nil
		}
		for _, b := range boards {
			title := b.Title
			if title == "" {
				title = string(b.Period)
			}
			t := newTable(title, "RANK", "USER", "POINTS")
			for _, e := range b.Entries {
				t.add(fmt.Sprint(e.Rank), e.UserName, fmt.Sprint(e.Points))
			}
			t.render(cmd.OutOrStdout())
		}
		return nil
	},
}

func init() {
	recommendationsCmd.Flags().StringVarP(&recCategory, "category", "c", "all", "Only show one category")
	leaderboardCmd.Flags().StringVarP(&leaderboardPeriod, "period", "p", string(types.PeriodWeekly), "weekly, monthly or all_time")
	gamificationCmd.AddCommand(completeChallengeCmd)
}
