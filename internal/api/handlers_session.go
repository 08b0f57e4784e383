package api

import (
	"net/http"

	"github.com/carbontrack/internal/session"
	"github.com/carbontrack/internal/types"
)

// respondFailure maps err and attaches the notifications the controller raised
func (s *Server) respondFailure(w http.ResponseWriter, err error) {
	status, code, message := mapServiceError(err)
	respondJSON(w, status, ErrorResponse{
		Error:         ErrorBody{Code: code, Message: message},
		Notifications: s.ctrl.Snapshot().Notifications,
	})
}

// respondState sends the current snapshot
func (s *Server) respondState(w http.ResponseWriter, status int) {
	respondJSON(w, status, s.ctrl.Snapshot())
}

// handleState handles GET /api/state
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.respondState(w, http.StatusOK)
}

// handleLogin handles POST /api/login
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	if err := s.ctrl.Login(r.Context(), req.Email, req.Password); err != nil {
		s.respondFailure(w, err)
		return
	}
	s.respondState(w, http.StatusOK)
}

// handleLogout handles POST /api/logout
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.ctrl.Logout(r.Context()); err != nil {
		s.respondFailure(w, err)
		return
	}
	s.respondState(w, http.StatusOK)
}

// handleRegister handles POST /api/register
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var form session.RegistrationForm
	if err := parseJSONBody(r, &form); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	if err := s.ctrl.Register(r.Context(), form); err != nil {
		s.respondFailure(w, err)
		return
	}
	s.respondState(w, http.StatusCreated)
}

// handleSwitchView handles PUT /api/view
func (s *Server) handleSwitchView(w http.ResponseWriter, r *http.Request) {
	var req struct {
		View string `json:"view"`
	}
	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}
	view, err := types.ParseView(req.View)
	if err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, err.Error(), nil)
		return
	}

	if err := s.ctrl.SwitchView(r.Context(), view); err != nil {
		s.respondFailure(w, err)
		return
	}
	s.respondState(w, http.StatusOK)
}
