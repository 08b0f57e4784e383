// Package api provides the local dashboard HTTP server.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/carbontrack/internal/apiclient"
	"github.com/carbontrack/internal/app"
	"github.com/carbontrack/internal/chart"
	"github.com/carbontrack/internal/config"
	"github.com/carbontrack/internal/ledger"
	"github.com/carbontrack/internal/logging"
	"github.com/carbontrack/internal/models"
	"github.com/carbontrack/internal/session"
	"github.com/carbontrack/internal/types"
)

// Controller is the part of the application controller the dashboard drives.
// *app.Controller implements it.
type Controller interface {
	Snapshot() app.Snapshot
	Login(ctx context.Context, email, password string) error
	Logout(ctx context.Context) error
	Register(ctx context.Context, form session.RegistrationForm) error
	SwitchView(ctx context.Context, view types.View) error

	AddEmission(ctx context.Context, form ledger.EmissionForm) error
	DeleteEmission(ctx context.Context, id string) error
	CreateSampleData(ctx context.Context) error
	SyncOutbox(ctx context.Context) (ledger.SyncReport, error)
	SetChartMode(ctx context.Context, mode chart.Mode) error

	Recommendations(category string) []models.Recommendation
	Leaderboards(period types.LeaderboardPeriod) []models.Leaderboard
	CompleteChallenge(ctx context.Context, challengeID string) (*models.ChallengeCompletion, error)
	DismissNotification(ctx context.Context, id string) error

	ReloadAdmin(ctx context.Context) error
	ApproveUser(ctx context.Context, userID string) (apiclient.ActionResult, error)
	RejectUser(ctx context.Context, userID string) (apiclient.ActionResult, error)
	ToggleUserStatus(ctx context.Context, userID string) (models.ManagedUser, error)
	Users(filter types.UserFilter, search string) ([]models.ManagedUser, error)
}

// Server represents the dashboard HTTP server.
type Server struct {
	router     *mux.Router
	httpServer *http.Server
	ctrl       Controller
	config     *ServerConfig
	logger     *logging.Logger
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	RequestsPerSec  int
	AllowedOrigins  []string
}

// ServerConfigFrom builds a ServerConfig from the dashboard settings
func ServerConfigFrom(cfg config.DashboardConfig) *ServerConfig {
	return &ServerConfig{
		Host:            cfg.Host,
		Port:            cfg.Port,
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    30 * time.Second,
		IdleTimeout:     60 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		RequestsPerSec:  cfg.RequestsPerSec,
		AllowedOrigins:  cfg.AllowedOrigins,
	}
}

// NewServer creates a new dashboard server instance.
func NewServer(config *ServerConfig, ctrl Controller, logger *logging.Logger) *Server {
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	s := &Server{
		router: mux.NewRouter(),
		ctrl:   ctrl,
		config: config,
		logger: logger.WithField("component", "dashboard"),
	}

	s.setupRouter()

	return s
}

// setupRouter configures the router with middleware and routes
func (s *Server) setupRouter() {
	rateLimiter := NewRateLimiter(s.config.RequestsPerSec)

	// Order matters: recovery must wrap everything below logging.
	s.router.Use(LoggingMiddleware(s.logger))
	s.router.Use(RecoveryMiddleware(s.logger))
	s.router.Use(CORSMiddleware(s.config.AllowedOrigins))
	s.router.Use(RateLimitMiddleware(rateLimiter))
	s.router.Use(CompressionMiddleware)

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%s", s.config.Host, s.config.Port),
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}
}

// setupRoutes configures all dashboard routes.
func (s *Server) setupRoutes() {
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")

	api := s.router.PathPrefix("/api").Subrouter()

	// Session
	api.HandleFunc("/state", s.handleState).Methods("GET")
	api.HandleFunc("/login", s.handleLogin).Methods("POST")
	api.HandleFunc("/logout", s.handleLogout).Methods("POST")
	api.HandleFunc("/register", s.handleRegister).Methods("POST")
	api.HandleFunc("/view", s.handleSwitchView).Methods("PUT")

	// Emissions
	api.HandleFunc("/emissions", s.handleListEmissions).Methods("GET")
	api.HandleFunc("/emissions", s.handleAddEmission).Methods("POST")
	api.HandleFunc("/emissions/sample", s.handleSampleData).Methods("POST")
	api.HandleFunc("/emissions/sync", s.handleSync).Methods("POST")
	api.HandleFunc("/emissions/{id}", s.handleDeleteEmission).Methods("DELETE")
	api.HandleFunc("/chart", s.handleChart).Methods("GET")

	// Panels
	api.HandleFunc("/recommendations", s.handleRecommendations).Methods("GET")
	api.HandleFunc("/gamification", s.handleGamification).Methods("GET")
	api.HandleFunc("/leaderboards", s.handleLeaderboards).Methods("GET")
	api.HandleFunc("/challenges/{id}/complete", s.handleCompleteChallenge).Methods("POST")
	api.HandleFunc("/notifications", s.handleNotifications).Methods("GET")
	api.HandleFunc("/notifications/{id}", s.handleDismissNotification).Methods("DELETE")

	// Admin
	api.HandleFunc("/admin", s.handleAdmin).Methods("GET")
	api.HandleFunc("/admin/users", s.handleAdminUsers).Methods("GET")
	api.HandleFunc("/admin/users/{id}/approve", s.handleApprove).Methods("POST")
	api.HandleFunc("/admin/users/{id}", s.handleReject).Methods("DELETE")
	api.HandleFunc("/admin/users/{id}/toggle-status", s.handleToggleStatus).Methods("POST")

	// Preflight; CORSMiddleware answers it
	s.router.PathPrefix("/").Methods("OPTIONS").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

// Handler returns the root handler with all middleware applied
func (s *Server) Handler() http.Handler {
	return s.router
}

// handleHealth handles health check requests.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "carbontrack-dashboard",
	})
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Infof("Starting dashboard on %s", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down dashboard...")
	return s.httpServer.Shutdown(ctx)
}

// ShutdownTimeout is how long Shutdown callers should wait for in-flight requests
func (s *Server) ShutdownTimeout() time.Duration {
	if s.config.ShutdownTimeout <= 0 {
		return 10 * time.Second
	}
	return s.config.ShutdownTimeout
}
