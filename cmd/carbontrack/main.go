// Package main is the CarbonTrack command line client.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/carbontrack/internal/app"
	"github.com/carbontrack/internal/chart"
	"github.com/carbontrack/internal/config"
	"github.com/carbontrack/internal/logging"
	"github.com/carbontrack/internal/notify"
)

var (
	verbose bool
	timeout time.Duration

	cfg    *config.Config
	client *app.Runtime
)

var rootCmd = &cobra.Command{
	Use:   "carbontrack",
	Short: "Track personal carbon emissions against the CarbonTrack service",
	Long: `carbontrack logs in to a CarbonTrack backend, records emissions and shows
aggregates, recommendations, achievements and the admin panel.

Entries added while the backend is unreachable are kept locally and can be
replayed with 'carbontrack emissions sync'.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadConfig()
		if err != nil {
			return fmt.Errorf("load configuration: %w", err)
		}

		level := logging.ParseLogLevel("warn")
		if verbose {
			level = logging.ParseLogLevel("debug")
		}
		logging.InitGlobalLogger(level, logging.ParseLogFormat("text"))
		logger := logging.GetGlobalLogger()

		client, err = app.NewRuntime(cfg, chart.NewTextRenderer(), logger)
		if err != nil {
			return err
		}
		client.Controller.Notifications().Subscribe(func(ev notify.Event) {
			if ev.Kind == notify.EventPushed {
				printNotification(cmd.ErrOrStderr(), ev.Notification)
			}
		})

		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()
		if err := client.Controller.Start(ctx); err != nil {
			logger.WithError(err).Debug("Session restore failed")
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if client != nil {
			client.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Overall operation timeout")

	rootCmd.AddCommand(loginCmd, logoutCmd, registerCmd, statusCmd)
	rootCmd.AddCommand(emissionsCmd, statsCmd, chartCmd)
	rootCmd.AddCommand(recommendationsCmd, gamificationCmd, leaderboardCmd)
	rootCmd.AddCommand(adminCmd, serveCmd)
}

// opContext bounds one command by --timeout
func opContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), timeout)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
