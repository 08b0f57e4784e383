package app

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/carbontrack/internal/errors"
	"github.com/carbontrack/internal/session"
	"github.com/carbontrack/internal/types"
)

// Start restores the persisted session and, when one survives, loads the
// dashboard data.
func (c *Controller) Start(ctx context.Context) error {
	return c.run(ctx, "start", func() error {
		sess, outcome, err := c.sessions.Restore(ctx)
		c.logger.WithField("outcome", string(outcome)).Info("Session restored")
		c.sess = sess
		c.auth = sess.AuthState()
		if err != nil {
			c.view = types.ViewLogin
			if errors.IsAuthorization(err) {
				return &announced{err: err}
			}
			return err
		}
		if !sess.Authenticated() {
			c.view = types.ViewWelcome
			return nil
		}
		c.view = types.ViewDashboard
		return c.loadLocked(ctx)
	})
}

// Login authenticates and loads the dashboard data
func (c *Controller) Login(ctx context.Context, email, password string) error {
	return c.run(ctx, "login", func() error {
		c.auth = types.AuthAuthenticating
		sess, err := c.sessions.Login(ctx, email, password)
		if err != nil {
			// a failed attempt leaves an active session in place
			c.auth = c.sess.AuthState()
			if !c.sess.Authenticated() {
				c.view = types.ViewLogin
			}
			switch {
			case errors.IsValidation(err):
				return c.fail(err, errors.UserMessage(err))
			case errors.IsAuthorization(err):
				return c.fail(err, "Invalid email or password")
			}
			return c.fail(err, "Login failed: "+errors.UserMessage(err))
		}

		c.sess = sess
		c.auth = sess.AuthState()
		c.view = types.ViewDashboard
		c.notes.Push("Login successful!", types.NotificationSuccess)
		return c.loadLocked(ctx)
	})
}

// loadLocked fans out the post-login loads. Each panel reports its own
// failures; only an authorization error comes back.
func (c *Controller) loadLocked(ctx context.Context) error {
	sess := c.sess
	g, gctx := errgroup.WithContext(ctx)
	g.Go(guard("ledger", func() error {
		_, err := c.ledger.Load(gctx, sess)
		return err
	}))
	g.Go(guard("panels", func() error {
		return c.panels.LoadAll(gctx, sess)
	}))
	if c.auth == types.AuthAdmin {
		g.Go(guard("admin", func() error {
			return c.admin.Reload(gctx, sess)
		}))
	}
	err := g.Wait()
	c.rerenderLocked()
	return err
}

// guard turns a panic in a worker goroutine into an error
func guard(name string, fn func() error) func() error {
	return func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = errors.NewInternalError(name+" load panicked", fmt.Errorf("%v", r))
			}
		}()
		return fn()
	}
}

// Logout clears the session and every user-specific panel
func (c *Controller) Logout(ctx context.Context) error {
	return c.run(ctx, "logout", func() error {
		err := c.resetLocked(ctx)
		c.view = types.ViewLogin
		c.notes.Push("Logged out successfully", types.NotificationInfo)
		if err != nil {
			c.logger.WithError(err).Warn("Failed to clear persisted session")
		}
		return nil
	})
}

// resetLocked forces the anonymous state
func (c *Controller) resetLocked(ctx context.Context) error {
	sess, err := c.sessions.Logout(ctx)
	c.sess = sess
	c.auth = types.AuthAnonymous
	c.ledger.Reset()
	c.panels.Reset()
	c.admin.Reset()
	c.emissionForm = c.blankEmissionForm()
	c.registerForm = session.RegistrationForm{}
	c.rerenderLocked()
	return err
}

// Register submits a registration request. The account stays pending until
// an admin approves it.
func (c *Controller) Register(ctx context.Context, form session.RegistrationForm) error {
	return c.run(ctx, "register", func() error {
		c.registerForm = form
		c.registerForm.Password, c.registerForm.ConfirmPassword = "", ""

		err := c.sessions.Register(ctx, form)
		switch {
		case err == nil:
		case errors.IsValidation(err):
			return c.fail(err, "Please fill in all required fields correctly: "+errors.UserMessage(err))
		case errors.IsConflict(err):
			return c.fail(err, errors.UserMessage(err))
		default:
			return c.fail(err, "Registration failed: "+errors.UserMessage(err))
		}

		c.registerForm = session.RegistrationForm{}
		c.view = types.ViewLogin
		c.notes.Push("Registration Successful! Your account request has been submitted for admin approval. "+
			"You will be able to login once approved.", types.NotificationSuccess)
		return nil
	})
}

// RegisterForm returns the last registration form without passwords
func (c *Controller) RegisterForm() session.RegistrationForm {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.registerForm
}
