package ledger

import (
	"context"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/carbontrack/internal/errors"
	"github.com/carbontrack/internal/logging"
	"github.com/carbontrack/internal/models"
	"github.com/carbontrack/internal/session"
	"github.com/carbontrack/internal/types"
)

// LocalIDPrefix marks ids synthesised on the client
const LocalIDPrefix = "local-"

// EmissionsAPI is the part of the backend the ledger talks to
type EmissionsAPI interface {
	ListEmissions(ctx context.Context, token string) ([]models.EmissionEntry, error)
	CreateEmission(ctx context.Context, token string, in models.EmissionCreate) (*models.EmissionEntry, error)
}

// Source tells where the current list came from
type Source string

const (
	SourceNone     Source = "none"
	SourceServer   Source = "server"
	SourceDemo     Source = "demo"
	SourceFallback Source = "fallback"
)

// EmissionForm is the add-emission form as entered
type EmissionForm struct {
	Category    string `json:"category"`
	Activity    string `json:"activity"`
	Amount      string `json:"amount"`
	Unit        string `json:"unit"`
	Date        string `json:"date"`
	Description string `json:"description"`
}

// AddResult describes where a new entry was stored
type AddResult struct {
	Entry        models.EmissionEntry
	SavedLocally bool
	// Cause is the server failure that forced a local save, if any
	Cause error
}

// SyncReport summarises an outbox replay
type SyncReport struct {
	Synced  int `json:"synced"`
	Failed  int `json:"failed"`
	Pending int `json:"pending"`
}

// Ledger is the emission list of one user plus its aggregates
type Ledger struct {
	api    EmissionsAPI
	outbox Outbox
	target float64
	logger *logging.Logger
	now    func() time.Time

	mu      sync.RWMutex
	entries []models.EmissionEntry
	agg     Aggregates
	source  Source
}

// New creates an empty ledger. A nil outbox keeps local entries in memory only.
func New(api EmissionsAPI, outbox Outbox, target float64, logger *logging.Logger) *Ledger {
	if outbox == nil {
		outbox = NewMemoryOutbox()
	}
	if target <= 0 {
		target = DefaultMonthlyTargetKg
	}
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	l := &Ledger{
		api:    api,
		outbox: outbox,
		target: target,
		logger: logger.WithField("component", "ledger"),
		now:    time.Now,
		source: SourceNone,
	}
	l.replace(nil, SourceNone)
	return l
}

// Entries returns a copy of the list, newest first
func (l *Ledger) Entries() []models.EmissionEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]models.EmissionEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Aggregates returns the current aggregates
func (l *Ledger) Aggregates() Aggregates {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.agg
}

// Source returns where the current list came from
func (l *Ledger) Source() Source {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.source
}

// Target returns the monthly goal in kg
func (l *Ledger) Target() float64 {
	return l.target
}

// Replace swaps the whole list and recomputes from scratch
func (l *Ledger) Replace(entries []models.EmissionEntry) {
	l.replace(entries, SourceServer)
}

func (l *Ledger) replace(entries []models.EmissionEntry, src Source) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append([]models.EmissionEntry{}, entries...)
	l.source = src
	l.agg = Compute(l.entries, MonthOf(l.now()), l.target)
}

// Recompute rebuilds the aggregates, e.g. after the calendar month changed
func (l *Ledger) Recompute() Aggregates {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.agg = Compute(l.entries, MonthOf(l.now()), l.target)
	return l.agg
}

// Reset empties the list
func (l *Ledger) Reset() {
	l.replace(nil, SourceNone)
}

// Load fetches the list of sess.
// Demo identities get the demo dataset; a real user whose fetch fails gets an
// empty list. Only an authorization failure is returned.
func (l *Ledger) Load(ctx context.Context, sess *session.Session) (Source, error) {
	switch {
	case !sess.Authenticated():
		l.replace(nil, SourceNone)
		return SourceNone, nil
	case sess.IsDemo() || session.IsDemoIdentity(sess.Profile):
		l.replace(DemoEntries(), SourceDemo)
		return SourceDemo, nil
	}

	entries, err := l.api.ListEmissions(ctx, sess.Token)
	if err != nil {
		l.replace(nil, SourceFallback)
		if errors.IsAuthorization(err) {
			return SourceFallback, err
		}
		l.logger.WithError(err).Warn("Failed to load emissions; starting with an empty list")
		return SourceFallback, nil
	}

	pending := l.replaceWithPending(ctx, sess, entries)
	l.logger.WithFields(map[string]interface{}{
		"entries": len(entries),
		"pending": pending,
	}).Debug("Emissions loaded")
	return SourceServer, nil
}

// replaceWithPending installs the server list with the queued local entries
// of sess in front, newest first, and returns how many were queued
func (l *Ledger) replaceWithPending(ctx context.Context, sess *session.Session, entries []models.EmissionEntry) int {
	pending, err := l.outbox.Pending(ctx, sess.Profile.UserID)
	if err != nil {
		l.logger.WithError(err).Warn("Failed to read outbox")
	}
	merged := make([]models.EmissionEntry, 0, len(entries)+len(pending))
	for i := len(pending) - 1; i >= 0; i-- {
		merged = append(merged, pending[i])
	}
	merged = append(merged, entries...)
	l.replace(merged, SourceServer)
	return len(pending)
}

// ParseForm validates the form and converts it into the API payload
func ParseForm(form EmissionForm, today time.Time) (models.EmissionCreate, error) {
	if strings.TrimSpace(form.Category) == "" || strings.TrimSpace(form.Amount) == "" {
		return models.EmissionCreate{}, errors.NewValidationError("form", "Please fill in all required fields")
	}
	category, err := types.ParseCategory(form.Category)
	if err != nil {
		return models.EmissionCreate{}, errors.NewValidationError("category", err.Error())
	}
	amount, err := strconv.ParseFloat(strings.TrimSpace(form.Amount), 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return models.EmissionCreate{}, errors.NewValidationError("amount", "Amount must be a number")
	}

	activity := strings.TrimSpace(form.Activity)
	if activity == "" {
		activity = string(category)
	}
	unit := strings.TrimSpace(form.Unit)
	if unit == "" {
		unit = DefaultUnit(category, activity)
	}
	date := strings.TrimSpace(form.Date)
	if date == "" {
		date = today.Format(models.DateLayout)
	} else if _, err := time.Parse(models.DateLayout, date); err != nil {
		return models.EmissionCreate{}, errors.NewValidationError("date", "Date must look like 2006-01-02")
	}

	in := models.EmissionCreate{
		Date:     date,
		Category: category,
		Activity: activity,
		Amount:   amount,
		Unit:     unit,
	}
	if d := strings.TrimSpace(form.Description); d != "" {
		in.Description = &d
	}
	return in, nil
}

// Add validates the form and stores the entry.
// Validation and authorization failures change nothing. Any other server
// failure keeps the entry locally and queues it for Sync. Demo identities
// always save locally.
func (l *Ledger) Add(ctx context.Context, sess *session.Session, form EmissionForm) (*AddResult, error) {
	in, err := ParseForm(form, l.now())
	if err != nil {
		return nil, err
	}
	if !sess.Authenticated() {
		return nil, errors.NewUnauthorizedError("login required")
	}

	if sess.IsDemo() {
		entry := l.synthesize(in)
		l.prepend(entry)
		return &AddResult{Entry: entry, SavedLocally: true}, nil
	}

	created, err := l.api.CreateEmission(ctx, sess.Token, in)
	if err == nil {
		l.prepend(*created)
		return &AddResult{Entry: *created}, nil
	}
	if errors.IsValidation(err) || errors.IsAuthorization(err) {
		return nil, err
	}
	if errors.IsAccepted(err) {
		return &AddResult{Entry: l.confirmUnread(ctx, sess, in, err), Cause: err}, nil
	}

	entry := l.synthesize(in)
	if qErr := l.outbox.Enqueue(ctx, sess.Profile.UserID, entry); qErr != nil {
		l.logger.WithError(qErr).Warn("Failed to queue local entry")
	}
	l.prepend(entry)
	l.logger.WithError(err).WithField("local_id", entry.ID).Info("Emission saved locally")
	return &AddResult{Entry: entry, SavedLocally: true, Cause: err}, nil
}

// confirmUnread handles a create the server accepted without returning a
// usable entry. The entry is stored server-side, so it is never queued for
// replay. The list is refetched to pick up the stored copy; when that fails a
// confirmed placeholder built from the form is shown until the next Load.
func (l *Ledger) confirmUnread(ctx context.Context, sess *session.Session, in models.EmissionCreate, cause error) models.EmissionEntry {
	entry := l.synthesize(in)
	entry.LocalOnly = false

	log := l.logger.WithField("status", errors.Categorize(cause).StatusCode)
	entries, err := l.api.ListEmissions(ctx, sess.Token)
	if err != nil {
		log.WithError(err).Warn("Server accepted the emission but the list could not be refreshed")
		l.prepend(entry)
		return entry
	}
	l.replaceWithPending(ctx, sess, entries)
	log.Info("Server accepted the emission without returning it; list refreshed")
	return entry
}

func (l *Ledger) synthesize(in models.EmissionCreate) models.EmissionEntry {
	now := l.now().UTC()
	entry := models.EmissionEntry{
		ID:            LocalIDPrefix + uuid.NewString(),
		Category:      in.Category,
		Activity:      in.Activity,
		Amount:        in.Amount,
		Unit:          in.Unit,
		Date:          in.Date,
		CO2Equivalent: models.Float(EstimateCO2(in.Category, in.Activity, in.Amount)),
		CreatedAt:     &now,
		LocalOnly:     true,
	}
	if in.Description != nil {
		entry.Description = *in.Description
	}
	return entry
}

func (l *Ledger) prepend(e models.EmissionEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append([]models.EmissionEntry{e}, l.entries...)
	l.adjustLocked(e, 1)
}

// adjustLocked applies a single add (sign 1) or removal (sign -1). When the
// calendar month moved on since the last computation the aggregates are
// rebuilt instead, so the monthly window is always the current month.
func (l *Ledger) adjustLocked(e models.EmissionEntry, sign float64) {
	month := MonthOf(l.now())
	if month != l.agg.Month {
		l.agg = Compute(l.entries, month, l.target)
		return
	}
	l.agg = l.agg.add(e, sign, l.target)
}

// Delete removes an entry from the list. The server is not contacted.
func (l *Ledger) Delete(ctx context.Context, id string) (models.EmissionEntry, error) {
	l.mu.Lock()
	idx := -1
	for i, e := range l.entries {
		if e.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		l.mu.Unlock()
		return models.EmissionEntry{}, errors.NewNotFoundError("emission", id)
	}
	removed := l.entries[idx]
	l.entries = append(l.entries[:idx:idx], l.entries[idx+1:]...)
	l.adjustLocked(removed, -1)
	l.mu.Unlock()

	if removed.LocalOnly {
		if err := l.outbox.Remove(ctx, removed.ID); err != nil {
			l.logger.WithError(err).Warn("Failed to drop deleted entry from outbox")
		}
	}
	return removed, nil
}

// CreateSampleData prepends the sample dataset and returns how many entries were added
func (l *Ledger) CreateSampleData() int {
	samples := SampleEntries("sample-" + uuid.NewString()[:8] + "-")
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(samples, l.entries...)
	l.agg = Compute(l.entries, MonthOf(l.now()), l.target)
	return len(samples)
}

// Sync replays queued local entries. Each accepted entry replaces its local
// copy in place. An authorization failure stops the replay.
func (l *Ledger) Sync(ctx context.Context, sess *session.Session) (SyncReport, error) {
	var report SyncReport
	if !sess.Authenticated() || sess.IsDemo() {
		return report, nil
	}

	pending, err := l.outbox.Pending(ctx, sess.Profile.UserID)
	if err != nil {
		return report, errors.NewStorageError("read outbox", err)
	}

	for i, entry := range pending {
		if err := ctx.Err(); err != nil {
			report.Pending = len(pending) - i
			return report, err
		}

		in := models.EmissionCreate{
			Date:     entry.Date,
			Category: entry.Category,
			Activity: entry.Activity,
			Amount:   entry.Amount,
			Unit:     entry.Unit,
		}
		if entry.Description != "" {
			d := entry.Description
			in.Description = &d
		}

		created, err := l.api.CreateEmission(ctx, sess.Token, in)
		if errors.IsAccepted(err) {
			l.logger.WithError(err).WithField("local_id", entry.ID).Warn("Replay accepted without a usable entry")
			confirmed := entry
			confirmed.LocalOnly = false
			created, err = &confirmed, nil
		}
		if err != nil {
			if errors.IsAuthorization(err) {
				report.Pending = len(pending) - i
				return report, err
			}
			report.Failed++
			if mErr := l.outbox.MarkFailed(ctx, entry.ID, err.Error()); mErr != nil {
				l.logger.WithError(mErr).Warn("Failed to record sync failure")
			}
			continue
		}

		if err := l.outbox.Remove(ctx, entry.ID); err != nil {
			l.logger.WithError(err).Warn("Failed to drop synced entry from outbox")
		}
		l.swap(entry.ID, *created)
		report.Synced++
	}
	report.Pending = report.Failed
	l.logger.WithFields(map[string]interface{}{
		"synced": report.Synced,
		"failed": report.Failed,
	}).Info("Outbox sync finished")
	return report, nil
}

// swap replaces the local entry localID with the server copy, keeping its position
func (l *Ledger) swap(localID string, server models.EmissionEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, e := range l.entries {
		if e.ID == localID {
			l.entries[i] = server
			l.agg = Compute(l.entries, MonthOf(l.now()), l.target)
			return
		}
	}
	l.entries = append([]models.EmissionEntry{server}, l.entries...)
	l.adjustLocked(server, 1)
}
