// Package tracker owns per-user sessions over the record store. A session
// caches the user's owner-filtered collections, recomputes derived views from
// them and is the single writer of lifecycle transitions.
package tracker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/hatchlog/internal/dates"
	"github.com/mamadbah2/hatchlog/internal/domain/models"
	"github.com/mamadbah2/hatchlog/internal/engine"
	"github.com/mamadbah2/hatchlog/internal/notify"
	"github.com/mamadbah2/hatchlog/internal/repository/store"
)

// Notification texts.
const (
	msgAutoCompleted     = "Incubation %q completed automatically after 21 days!"
	msgCompleted         = "Incubation %q marked as completed!"
	msgIncubationAdded   = "Incubation %q added successfully!"
	msgIncubationDeleted = "Incubation deleted"
	msgMedicationAdded   = "Medication %q added successfully!"
	msgMedicationDeleted = "Medication record deleted"
	msgFeedingAdded      = "Feeding record added successfully!"
	msgFeedingDeleted    = "Feeding record deleted"

	errLoading          = "Error loading data. Please try refreshing the page."
	errAddIncubation    = "Error adding incubation. Please try again."
	errDeleteIncubation = "Error deleting incubation. Please try again."
	errComplete         = "Error marking incubation as complete. Please try again."
	errAddMedication    = "Error adding medication. Please try again."
	errDeleteMedication = "Error deleting medication. Please try again."
	errAddFeeding       = "Error adding feeding record. Please try again."
	errDeleteFeeding    = "Error deleting feeding record. Please try again."
)

// Options tune a Tracker.
type Options struct {
	// Location is the timezone calendar days are evaluated in.
	Location *time.Location
	// Renotify repeats the auto-completion notification every time a
	// recomputation still sees the batch as due.
	Renotify bool
}

// Tracker hands out sessions and runs store mutations on behalf of users.
type Tracker struct {
	store    store.Store
	notifier notify.Notifier
	loc      *time.Location
	renotify bool
	now      func() time.Time
	logger   *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	sessions map[string]*Session
	alerted  map[string]string
}

// New builds a tracker. A nil notifier discards notifications.
func New(st store.Store, notifier notify.Notifier, opts Options, logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifier == nil {
		notifier = notify.NotifierFunc(func(context.Context, models.Notification) error { return nil })
	}
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Tracker{
		store:    st,
		notifier: notifier,
		loc:      loc,
		renotify: opts.Renotify,
		now:      time.Now,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
		sessions: make(map[string]*Session),
		alerted:  make(map[string]string),
	}
}

// Now is the reference instant in the tracker's timezone.
func (t *Tracker) Now() time.Time {
	return t.now().In(t.loc)
}

// Location is the timezone calendar days are evaluated in.
func (t *Tracker) Location() *time.Location {
	return t.loc
}

// Close ends every session.
func (t *Tracker) Close() {
	t.cancel()
}

// Session returns the user's live session, opening it on first use.
func (t *Tracker) Session(ctx context.Context, userID string) (*Session, error) {
	t.mu.Lock()
	if s, ok := t.sessions[userID]; ok {
		t.mu.Unlock()
		return s, nil
	}
	t.mu.Unlock()

	s, err := openSession(ctx, t, userID)
	if err != nil {
		t.notify(ctx, userID, models.NotificationError, errLoading)
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if existing, ok := t.sessions[userID]; ok {
		s.cancel()
		return existing, nil
	}
	t.sessions[userID] = s
	return s, nil
}

func (t *Tracker) session(userID string) (*Session, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.sessions[userID]
	return s, ok
}

func (t *Tracker) dropSession(s *Session) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.sessions[s.userID] == s {
		delete(t.sessions, s.userID)
	}
}

// Load reads a user's records straight from the store.
func (t *Tracker) Load(ctx context.Context, userID string) (*engine.Snapshot, error) {
	owner := store.ByOwner(userID)
	incs, err := t.store.Incubations().List(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("load incubations: %w", err)
	}
	meds, err := t.store.Medications().List(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("load medications: %w", err)
	}
	feeds, err := t.store.Feedings().List(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("load feedings: %w", err)
	}
	return &engine.Snapshot{Incubations: incs, Medications: meds, Feedings: feeds}, nil
}

// Snapshot returns the session view when one is open, else a fresh load.
func (t *Tracker) Snapshot(ctx context.Context, userID string) (*engine.Snapshot, error) {
	if s, ok := t.session(userID); ok {
		return s.Snapshot(), nil
	}
	return t.Load(ctx, userID)
}

// persistCompletions writes each transitioned batch once and announces it.
func (t *Tracker) persistCompletions(ctx context.Context, userID string, completed []models.Incubation) {
	for _, inc := range completed {
		if _, err := t.store.Incubations().Update(ctx, inc.ID, store.Patch{"status": models.StatusCompleted}); err != nil {
			t.logger.Error("auto-complete failed", zap.String("incubation_id", inc.ID), zap.Error(err))
			t.notify(ctx, userID, models.NotificationError, errComplete)
			continue
		}
		t.logger.Info("incubation auto-completed", zap.String("user_id", userID), zap.String("incubation_id", inc.ID))
		t.notify(ctx, userID, models.NotificationAlert, fmt.Sprintf(msgAutoCompleted, inc.BatchName))
	}
}

// Sweep runs the lifecycle transition for every user, then raises the
// due-today alerts not yet sent for the current day.
func (t *Tracker) Sweep(ctx context.Context) error {
	users, err := t.store.Users().List(ctx, nil)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}

	now := t.Now()
	day := now.Format(dates.DateLayout)
	t.pruneAlerts(day)

	for _, u := range users {
		if s, ok := t.session(u.ID); ok {
			s.refresh(ctx)
		} else if err := t.sweepStored(ctx, u.ID, now); err != nil {
			t.logger.Warn("lifecycle sweep failed", zap.String("user_id", u.ID), zap.Error(err))
		}

		snap, err := t.Snapshot(ctx, u.ID)
		if err != nil {
			t.logger.Warn("due check failed", zap.String("user_id", u.ID), zap.Error(err))
			continue
		}
		alerts, err := engine.DueToday(snap, now)
		if err != nil {
			return err
		}
		for _, a := range alerts {
			if t.markAlerted(u.ID+"|"+a.Key, day) {
				t.notify(ctx, u.ID, models.NotificationAlert, a.Message)
			}
		}
	}
	return nil
}

func (t *Tracker) sweepStored(ctx context.Context, userID string, now time.Time) error {
	incs, err := t.store.Incubations().List(ctx, store.ByOwner(userID))
	if err != nil {
		return err
	}
	tr, err := engine.CompleteDue(incs, now)
	if err != nil {
		return err
	}
	t.persistCompletions(ctx, userID, tr.Completed)
	return nil
}

func (t *Tracker) markAlerted(key, day string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, seen := t.alerted[key]; seen {
		return false
	}
	t.alerted[key] = day
	return true
}

func (t *Tracker) pruneAlerts(day string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for key, d := range t.alerted {
		if d != day {
			delete(t.alerted, key)
		}
	}
}

func (t *Tracker) notify(ctx context.Context, userID string, kind models.NotificationKind, message string) {
	n := models.Notification{UserID: userID, Kind: kind, Message: message}
	if err := t.notifier.Notify(ctx, n); err != nil {
		t.logger.Warn("notification delivery failed", zap.String("user_id", userID), zap.Error(err))
	}
}
