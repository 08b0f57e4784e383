package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/carbontrack/internal/apiclient"
	"github.com/carbontrack/internal/models"
	"github.com/carbontrack/internal/types"
)

// AdminResponse is the admin panel
type AdminResponse struct {
	Pending []models.PendingUser `json:"pending_users"`
	Users   []models.ManagedUser `json:"users"`
	Stats   *models.AdminStats   `json:"stats"`
}

// ActionResponse reports the outcome of an approve or reject
type ActionResponse struct {
	OK         bool   `json:"ok"`
	StatusCode int    `json:"status_code"`
	Message    string `json:"message,omitempty"`
	Ambiguous  bool   `json:"ambiguous,omitempty"`
}

// handleAdmin handles GET /api/admin
func (s *Server) handleAdmin(w http.ResponseWriter, r *http.Request) {
	if err := s.ctrl.ReloadAdmin(r.Context()); err != nil {
		s.respondFailure(w, err)
		return
	}
	snap := s.ctrl.Snapshot()
	resp := AdminResponse{Pending: snap.PendingUsers, Users: snap.ManagedUsers, Stats: snap.AdminStats}
	if resp.Pending == nil {
		resp.Pending = []models.PendingUser{}
	}
	if resp.Users == nil {
		resp.Users = []models.ManagedUser{}
	}
	respondJSON(w, http.StatusOK, resp)
}

// handleAdminUsers handles GET /api/admin/users?filter=&search=
func (s *Server) handleAdminUsers(w http.ResponseWriter, r *http.Request) {
	filter := types.UserFilter(r.URL.Query().Get("filter"))
	switch filter {
	case "":
		filter = types.FilterAll
	case types.FilterAll, types.FilterActive, types.FilterInactive, types.FilterAdmins:
	default:
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Invalid filter (must be 'all', 'active', 'inactive' or 'admins')", nil)
		return
	}

	users, err := s.ctrl.Users(filter, r.URL.Query().Get("search"))
	if err != nil {
		s.respondFailure(w, err)
		return
	}
	respondJSON(w, http.StatusOK, users)
}

// handleApprove handles POST /api/admin/users/{id}/approve
func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request) {
	result, err := s.ctrl.ApproveUser(r.Context(), mux.Vars(r)["id"])
	s.respondAction(w, result, err)
}

// handleReject handles DELETE /api/admin/users/{id}
func (s *Server) handleReject(w http.ResponseWriter, r *http.Request) {
	result, err := s.ctrl.RejectUser(r.Context(), mux.Vars(r)["id"])
	s.respondAction(w, result, err)
}

func (s *Server) respondAction(w http.ResponseWriter, result apiclient.ActionResult, err error) {
	if err != nil {
		s.respondFailure(w, err)
		return
	}
	status := http.StatusOK
	if !result.OK {
		status = result.StatusCode
		if status < 400 {
			status = http.StatusBadGateway
		}
	}
	respondJSON(w, status, ActionResponse{
		OK:         result.OK,
		StatusCode: result.StatusCode,
		Message:    result.Message,
		Ambiguous:  result.Ambiguous,
	})
}

// handleToggleStatus handles POST /api/admin/users/{id}/toggle-status
func (s *Server) handleToggleStatus(w http.ResponseWriter, r *http.Request) {
	user, err := s.ctrl.ToggleUserStatus(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.respondFailure(w, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}
