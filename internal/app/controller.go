// Package app owns the UI state of CarbonTrack and drives every operation the
// front ends (CLI and dashboard) expose.
package app

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/carbontrack/internal/admin"
	"github.com/carbontrack/internal/chart"
	"github.com/carbontrack/internal/config"
	"github.com/carbontrack/internal/errors"
	"github.com/carbontrack/internal/ledger"
	"github.com/carbontrack/internal/logging"
	"github.com/carbontrack/internal/notify"
	"github.com/carbontrack/internal/panels"
	"github.com/carbontrack/internal/session"
	"github.com/carbontrack/internal/types"
)

// Backend is everything the controller needs from the CarbonTrack API.
// *apiclient.Client implements it.
type Backend interface {
	session.AuthAPI
	ledger.EmissionsAPI
	panels.API
	admin.API
}

// Options configures a Controller
type Options struct {
	Config   *config.Config
	Backend  Backend
	Store    session.Store
	Outbox   ledger.Outbox
	Renderer chart.Renderer
	Logger   *logging.Logger
}

// Controller is the single owner of UI state. Every public operation runs
// under one mutex, turns failures into notifications and never panics.
type Controller struct {
	sessions *session.Manager
	ledger   *ledger.Ledger
	panels   *panels.Panels
	admin    *admin.Panel
	notes    *notify.Center
	renderer chart.Renderer
	logger   *logging.Logger
	days     int

	mu           sync.Mutex
	sess         *session.Session
	auth         types.AuthState
	view         types.View
	emissionForm ledger.EmissionForm
	registerForm session.RegistrationForm
	chartMode    chart.Mode
	series       chart.Series
	chartText    string
	renders      int

	subMu  sync.Mutex
	subs   map[int]func(Snapshot)
	nextID int
}

// New wires a controller
func New(opts Options) *Controller {
	cfg := opts.Config
	logger := opts.Logger
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	logger = logger.WithField("component", "app")

	notes := notify.NewCenter(cfg.Notify.SuccessTTL, cfg.Notify.DefaultTTL)
	push := func(message string, typ types.NotificationType) { notes.Push(message, typ) }

	c := &Controller{
		sessions:  session.NewManager(opts.Store, opts.Backend, cfg.Demo, logger),
		ledger:    ledger.New(opts.Backend, opts.Outbox, cfg.Ledger.MonthlyTargetKg, logger),
		panels:    panels.New(opts.Backend, push, logger),
		admin:     admin.New(opts.Backend, push, logger),
		notes:     notes,
		renderer:  chart.OrNoop(opts.Renderer, logger),
		logger:    logger,
		days:      cfg.Ledger.ChartDays,
		sess:      &session.Session{Profile: session.EmptyProfile()},
		auth:      types.AuthAnonymous,
		view:      types.ViewWelcome,
		chartMode: chart.ModeDaily,
		subs:      make(map[int]func(Snapshot)),
	}
	c.emissionForm = c.blankEmissionForm()
	return c
}

// Notifications exposes the notification center
func (c *Controller) Notifications() *notify.Center {
	return c.notes
}

// Close stops pending notification timers
func (c *Controller) Close() {
	c.notes.Close()
}

// Subscribe registers fn to receive a snapshot after every state change
func (c *Controller) Subscribe(fn func(Snapshot)) func() {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	id := c.nextID
	c.nextID++
	c.subs[id] = fn
	return func() {
		c.subMu.Lock()
		defer c.subMu.Unlock()
		delete(c.subs, id)
	}
}

// announced marks an error whose notification was already shown
type announced struct {
	err error
}

func (a *announced) Error() string { return a.err.Error() }
func (a *announced) Unwrap() error { return a.err }

// fail shows message and returns err marked as announced
func (c *Controller) fail(err error, message string) error {
	c.notes.Push(message, types.NotificationError)
	return &announced{err: err}
}

// run executes fn under the controller mutex, recovers panics, converts
// errors into notifications and publishes a snapshot.
func (c *Controller) run(ctx context.Context, op string, fn func() error) (err error) {
	c.mu.Lock()
	func() {
		defer func() {
			if r := recover(); r != nil {
				c.logger.WithFields(map[string]interface{}{
					"op":    op,
					"panic": fmt.Sprint(r),
					"stack": string(debug.Stack()),
				}).Error("Recovered from panic")
				c.notes.Push("Something went wrong. Please try again.", types.NotificationError)
				err = errors.NewInternalError(op+" panicked", fmt.Errorf("%v", r))
			}
		}()
		err = c.handle(ctx, fn())
	}()
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.publish(snap)
	return err
}

func (c *Controller) handle(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	var a *announced
	if stderrors.As(err, &a) {
		return a.err
	}
	if errors.IsAuthorization(err) {
		c.logger.WithError(err).Info("Authorization failed; logging out")
		c.resetLocked(ctx)
		c.view = types.ViewLogin
		c.notes.Push("Session expired. Please log in again.", types.NotificationError)
		return err
	}
	c.notes.Push(errors.UserMessage(err), types.NotificationError)
	return err
}

func (c *Controller) publish(snap Snapshot) {
	c.subMu.Lock()
	subs := make([]func(Snapshot), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	c.subMu.Unlock()
	for _, fn := range subs {
		fn(snap)
	}
}

// rerenderLocked rebuilds the chart series and draws it
func (c *Controller) rerenderLocked() {
	c.series = chart.Build(c.chartMode, c.ledger.Entries(), c.days)
	var buf bytes.Buffer
	if err := c.renderer.Render(&buf, c.series); err != nil {
		c.logger.WithError(err).Warn("Chart rendering failed")
	}
	c.chartText = buf.String()
	c.renders++
}

// SetChartMode switches between daily and monthly grouping
func (c *Controller) SetChartMode(ctx context.Context, mode chart.Mode) error {
	return c.run(ctx, "set_chart_mode", func() error {
		switch mode {
		case chart.ModeDaily, chart.ModeMonthly:
		default:
			return errors.NewValidationError("mode", fmt.Sprintf("unknown chart mode %q", mode))
		}
		c.chartMode = mode
		c.rerenderLocked()
		return nil
	})
}

// SwitchView changes the visible view. Returning to the dashboard re-renders the chart.
func (c *Controller) SwitchView(ctx context.Context, view types.View) error {
	return c.run(ctx, "switch_view", func() error {
		if view.RequiresAuth() && !c.sess.Authenticated() {
			c.view = types.ViewLogin
			return c.fail(errors.NewUnauthorizedError("login required"), "Please log in first")
		}
		if view == types.ViewAdmin && c.auth != types.AuthAdmin {
			return admin.ErrAdminRequired
		}
		prev := c.view
		c.view = view
		if view == types.ViewDashboard && prev != types.ViewDashboard {
			c.rerenderLocked()
		}
		return nil
	})
}

// DismissNotification removes a notification
func (c *Controller) DismissNotification(ctx context.Context, id string) error {
	return c.run(ctx, "dismiss_notification", func() error {
		if !c.notes.Dismiss(id) {
			return &announced{err: errors.NewNotFoundError("notification", id)}
		}
		return nil
	})
}
