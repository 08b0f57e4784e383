package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/carbontrack/internal/api"
	"github.com/carbontrack/internal/logging"
)

var (
	serveHost string
	servePort string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard JSON API for this session",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := logging.GetGlobalLogger()
		dash := cfg.Dashboard
		if cmd.Flags().Changed("host") {
			dash.Host = serveHost
		}
		if cmd.Flags().Changed("port") {
			dash.Port = servePort
		}
		server := api.NewServer(api.ServerConfigFrom(dash), client.Controller, logger)

		errCh := make(chan error, 1)
		go func() {
			if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()
		logger.WithFields(map[string]interface{}{
			"host": dash.Host,
			"port": dash.Port,
		}).Info("Dashboard listening")

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), server.ShutdownTimeout())
		defer cancel()
		return server.Shutdown(shutdownCtx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "127.0.0.1", "Listen address")
	serveCmd.Flags().StringVar(&servePort, "port", "8080", "Listen port")
}
