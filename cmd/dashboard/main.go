// Package main provides the local dashboard server for CarbonTrack.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/carbontrack/internal/api"
	"github.com/carbontrack/internal/app"
	"github.com/carbontrack/internal/chart"
	"github.com/carbontrack/internal/config"
	"github.com/carbontrack/internal/logging"
)

func main() {
	fmt.Println("CarbonTrack Dashboard")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize structured logging
	logging.InitGlobalLogger(logging.ParseLogLevel(cfg.Logging.Level), logging.ParseLogFormat(cfg.Logging.Format))
	logger := logging.GetGlobalLogger()
	defer logger.Sync() //nolint:errcheck

	logger.WithFields(map[string]interface{}{
		"api_base":      cfg.API.BaseURL,
		"session_store": cfg.Session.Store,
		"outbox_store":  cfg.Outbox.Store,
		"demo_mode":     cfg.Demo.Enabled,
	}).Info("Configuration loaded")

	rt, err := app.NewRuntime(cfg, chart.NewTextRenderer(), logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialise the client")
	}
	defer rt.Close()

	startCtx, cancelStart := context.WithTimeout(context.Background(), cfg.API.RequestTimeout)
	if err := rt.Controller.Start(startCtx); err != nil {
		logger.WithError(err).Warn("Session restore failed; starting logged out")
	}
	cancelStart()

	server := api.NewServer(api.ServerConfigFrom(cfg.Dashboard), rt.Controller, logger)

	// Start server in a goroutine
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server failed to start")
		}
	}()

	logger.WithFields(map[string]interface{}{
		"host": cfg.Dashboard.Host,
		"port": cfg.Dashboard.Port,
	}).Info("Dashboard started successfully")

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), server.ShutdownTimeout())
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Dashboard forced to shutdown")
	}

	logger.Info("Dashboard exited")
}
