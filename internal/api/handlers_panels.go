package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/carbontrack/internal/models"
	"github.com/carbontrack/internal/notify"
	"github.com/carbontrack/internal/types"
)

// GamificationResponse is the gamification panel
type GamificationResponse struct {
	Overview     *models.GamificationOverview `json:"overview"`
	Achievements []models.Achievement         `json:"achievements"`
}

// handleRecommendations handles GET /api/recommendations?category=
func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	recs := s.ctrl.Recommendations(r.URL.Query().Get("category"))
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"recommendations": recs,
		"stats":           s.ctrl.Snapshot().RecStats,
	})
}

// handleGamification handles GET /api/gamification
func (s *Server) handleGamification(w http.ResponseWriter, r *http.Request) {
	snap := s.ctrl.Snapshot()
	achievements := snap.Achievements
	if achievements == nil {
		achievements = []models.Achievement{}
	}
	respondJSON(w, http.StatusOK, GamificationResponse{
		Overview:     snap.Gamification,
		Achievements: achievements,
	})
}

// handleLeaderboards handles GET /api/leaderboards?period=
func (s *Server) handleLeaderboards(w http.ResponseWriter, r *http.Request) {
	period := r.URL.Query().Get("period")
	if period == "" {
		boards := s.ctrl.Snapshot().Leaderboards
		if boards == nil {
			boards = []models.Leaderboard{}
		}
		respondJSON(w, http.StatusOK, boards)
		return
	}

	switch p := types.LeaderboardPeriod(period); p {
	case types.PeriodWeekly, types.PeriodMonthly, types.PeriodAllTime:
		respondJSON(w, http.StatusOK, s.ctrl.Leaderboards(p))
	default:
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Invalid period (must be 'weekly', 'monthly' or 'all_time')", nil)
	}
}

// handleCompleteChallenge handles POST /api/challenges/{id}/complete
func (s *Server) handleCompleteChallenge(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	result, err := s.ctrl.CompleteChallenge(r.Context(), id)
	if err != nil {
		s.respondFailure(w, err)
		return
	}
	if result == nil {
		respondJSON(w, http.StatusBadGateway, ErrorResponse{
			Error:         ErrorBody{Code: ErrCodeServiceUnavailable, Message: "Failed to complete challenge"},
			Notifications: s.ctrl.Snapshot().Notifications,
		})
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// handleNotifications handles GET /api/notifications
func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	notes := s.ctrl.Snapshot().Notifications
	if notes == nil {
		notes = []notify.Notification{}
	}
	respondJSON(w, http.StatusOK, notes)
}

// handleDismissNotification handles DELETE /api/notifications/{id}
func (s *Server) handleDismissNotification(w http.ResponseWriter, r *http.Request) {
	if err := s.ctrl.DismissNotification(r.Context(), mux.Vars(r)["id"]); err != nil {
		s.respondFailure(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
