package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/carbontrack/internal/chart"
	"github.com/carbontrack/internal/ledger"
	"github.com/carbontrack/internal/models"
)

// EmissionsResponse is the emission list with its aggregates
type EmissionsResponse struct {
	Entries       []models.EmissionEntry `json:"entries"`
	Aggregates    ledger.Aggregates      `json:"aggregates"`
	MonthlyTarget float64                `json:"monthly_target_kg"`
	Source        ledger.Source          `json:"source"`
}

// handleListEmissions handles GET /api/emissions
func (s *Server) handleListEmissions(w http.ResponseWriter, r *http.Request) {
	snap := s.ctrl.Snapshot()
	if snap.Entries == nil {
		snap.Entries = []models.EmissionEntry{}
	}
	respondJSON(w, http.StatusOK, EmissionsResponse{
		Entries:       snap.Entries,
		Aggregates:    snap.Aggregates,
		MonthlyTarget: snap.MonthlyTarget,
		Source:        snap.Source,
	})
}

// handleAddEmission handles POST /api/emissions
func (s *Server) handleAddEmission(w http.ResponseWriter, r *http.Request) {
	var form ledger.EmissionForm
	if err := parseJSONBody(r, &form); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	if err := s.ctrl.AddEmission(r.Context(), form); err != nil {
		s.respondFailure(w, err)
		return
	}
	s.respondState(w, http.StatusCreated)
}

// handleDeleteEmission handles DELETE /api/emissions/{id}
func (s *Server) handleDeleteEmission(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.ctrl.DeleteEmission(r.Context(), id); err != nil {
		s.respondFailure(w, err)
		return
	}
	s.respondState(w, http.StatusOK)
}

// handleSampleData handles POST /api/emissions/sample
func (s *Server) handleSampleData(w http.ResponseWriter, r *http.Request) {
	if err := s.ctrl.CreateSampleData(r.Context()); err != nil {
		s.respondFailure(w, err)
		return
	}
	s.respondState(w, http.StatusCreated)
}

// handleSync handles POST /api/emissions/sync
func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	report, err := s.ctrl.SyncOutbox(r.Context())
	if err != nil {
		s.respondFailure(w, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

// handleChart handles GET /api/chart?mode=daily|monthly
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	if mode := r.URL.Query().Get("mode"); mode != "" {
		if err := s.ctrl.SetChartMode(r.Context(), chart.Mode(mode)); err != nil {
			s.respondFailure(w, err)
			return
		}
	}
	respondJSON(w, http.StatusOK, s.ctrl.Snapshot().Chart)
}
