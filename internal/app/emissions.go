package app

import (
	"context"
	"fmt"

	"github.com/carbontrack/internal/errors"
	"github.com/carbontrack/internal/ledger"
	"github.com/carbontrack/internal/models"
	"github.com/carbontrack/internal/types"
)

func (c *Controller) blankEmissionForm() ledger.EmissionForm {
	return ledger.EmissionForm{
		Category: string(types.CategoryTransportation),
		Unit:     ledger.DefaultUnit(types.CategoryTransportation, ""),
	}
}

// requireSessionLocked fails with a login prompt when nobody is logged in
func (c *Controller) requireSessionLocked() error {
	if c.sess.Authenticated() {
		return nil
	}
	c.view = types.ViewLogin
	return c.fail(errors.NewUnauthorizedError("login required"), "Please log in first")
}

// AddEmission validates and stores a new entry. On success the dashboard is
// shown with the entry on top and the form is reset.
func (c *Controller) AddEmission(ctx context.Context, form ledger.EmissionForm) error {
	return c.run(ctx, "add_emission", func() error {
		if err := c.requireSessionLocked(); err != nil {
			return err
		}
		c.emissionForm = form

		result, err := c.ledger.Add(ctx, c.sess, form)
		if err != nil {
			if errors.IsValidation(err) {
				return c.fail(err, validationMessage(err))
			}
			return err
		}

		switch {
		case c.sess.IsDemo():
			c.notes.Push("Demo emission added successfully! (Login to save permanently)", types.NotificationSuccess)
		case result.SavedLocally:
			c.notes.Push("Server unavailable. Emission saved locally and will sync later.", types.NotificationInfo)
		default:
			c.notes.Push("Emission added successfully!", types.NotificationSuccess)
		}
		c.emissionForm = c.blankEmissionForm()
		c.view = types.ViewDashboard
		c.rerenderLocked()
		return nil
	})
}

// validationMessage keeps local form messages as they are and prefixes
// those the server returned
func validationMessage(err error) string {
	catErr := errors.Categorize(err)
	if catErr == nil {
		return err.Error()
	}
	if _, local := catErr.Details["field"]; local {
		return catErr.Message
	}
	return "Validation error: " + catErr.Message
}

// DeleteEmission removes an entry from the list
func (c *Controller) DeleteEmission(ctx context.Context, id string) error {
	return c.run(ctx, "delete_emission", func() error {
		if err := c.requireSessionLocked(); err != nil {
			return err
		}
		if _, err := c.ledger.Delete(ctx, id); err != nil {
			return err
		}
		c.notes.Push("Emission deleted successfully", types.NotificationSuccess)
		c.rerenderLocked()
		return nil
	})
}

// CreateSampleData prepends the sample dataset
func (c *Controller) CreateSampleData(ctx context.Context) error {
	return c.run(ctx, "create_sample_data", func() error {
		if err := c.requireSessionLocked(); err != nil {
			return err
		}
		n := c.ledger.CreateSampleData()
		c.notes.Push(fmt.Sprintf("Realistic sample data created! %d emissions added with scientific calculations.", n),
			types.NotificationSuccess)
		c.rerenderLocked()
		return nil
	})
}

// ReloadEmissions fetches the list again
func (c *Controller) ReloadEmissions(ctx context.Context) error {
	return c.run(ctx, "reload_emissions", func() error {
		if err := c.requireSessionLocked(); err != nil {
			return err
		}
		src, err := c.ledger.Load(ctx, c.sess)
		if err != nil {
			return err
		}
		if src == ledger.SourceFallback {
			c.notes.Push("Failed to load emissions", types.NotificationError)
		}
		c.rerenderLocked()
		return nil
	})
}

// SyncOutbox sends locally saved entries to the server
func (c *Controller) SyncOutbox(ctx context.Context) (ledger.SyncReport, error) {
	var report ledger.SyncReport
	err := c.run(ctx, "sync_outbox", func() error {
		if err := c.requireSessionLocked(); err != nil {
			return err
		}
		var err error
		report, err = c.ledger.Sync(ctx, c.sess)
		if err != nil {
			return err
		}
		switch {
		case report.Synced > 0 && report.Failed == 0:
			c.notes.Push(fmt.Sprintf("Synced %d emissions", report.Synced), types.NotificationSuccess)
		case report.Failed > 0:
			c.notes.Push(fmt.Sprintf("Synced %d emissions, %d still waiting", report.Synced, report.Failed),
				types.NotificationError)
		}
		c.rerenderLocked()
		return nil
	})
	return report, err
}

// EmissionForm returns the add-emission form as last entered
func (c *Controller) EmissionForm() ledger.EmissionForm {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.emissionForm
}

// SetEmissionCategory changes the form category and resets activity and
// unit to match it
func (c *Controller) SetEmissionCategory(ctx context.Context, category string) error {
	return c.run(ctx, "set_emission_category", func() error {
		cat, err := types.ParseCategory(category)
		if err != nil {
			return errors.NewValidationError("category", err.Error())
		}
		c.emissionForm.Category = string(cat)
		c.emissionForm.Activity = ""
		c.emissionForm.Unit = ledger.DefaultUnit(cat, "")
		return nil
	})
}

// ActivityOptions lists the activities offered for a category
func ActivityOptions(category types.Category) []ledger.Activity {
	return append([]ledger.Activity(nil), ledger.ActivityOptions[category]...)
}

// Entries returns the current list
func (c *Controller) Entries() []models.EmissionEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ledger.Entries()
}
