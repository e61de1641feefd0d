package tracker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/hatchlog/internal/domain/models"
	"github.com/mamadbah2/hatchlog/internal/engine"
	"github.com/mamadbah2/hatchlog/internal/repository/store"
)

// Session is one user's live view over the record store.
type Session struct {
	t      *Tracker
	userID string
	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	snap      engine.Snapshot
	notified  map[string]struct{}
	listeners map[int]chan struct{}
	nextID    int
}

func openSession(ctx context.Context, t *Tracker, userID string) (*Session, error) {
	sctx, cancel := context.WithCancel(t.ctx)
	s := &Session{
		t:         t,
		userID:    userID,
		ctx:       sctx,
		cancel:    cancel,
		notified:  make(map[string]struct{}),
		listeners: make(map[int]chan struct{}),
	}

	owner := store.ByOwner(userID)
	incs, err := t.store.Incubations().Subscribe(sctx, owner)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("subscribe incubations: %w", err)
	}
	meds, err := t.store.Medications().Subscribe(sctx, owner)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("subscribe medications: %w", err)
	}
	feeds, err := t.store.Feedings().Subscribe(sctx, owner)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("subscribe feedings: %w", err)
	}

	if err := s.prime(ctx, incs, meds, feeds); err != nil {
		cancel()
		return nil, err
	}
	s.refresh(sctx)

	go s.run(incs, meds, feeds)
	return s, nil
}

// prime waits for the first full set of every collection.
func (s *Session) prime(ctx context.Context, incs <-chan []models.Incubation, meds <-chan []models.Medication, feeds <-chan []models.Feeding) error {
	var err error
	if s.snap.Incubations, err = first(ctx, incs); err != nil {
		return fmt.Errorf("initial incubations: %w", err)
	}
	if s.snap.Medications, err = first(ctx, meds); err != nil {
		return fmt.Errorf("initial medications: %w", err)
	}
	if s.snap.Feedings, err = first(ctx, feeds); err != nil {
		return fmt.Errorf("initial feedings: %w", err)
	}
	return nil
}

func first[T any](ctx context.Context, ch <-chan []T) ([]T, error) {
	select {
	case set, ok := <-ch:
		if !ok {
			return nil, context.Canceled
		}
		return set, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *Session) run(incs <-chan []models.Incubation, meds <-chan []models.Medication, feeds <-chan []models.Feeding) {
	defer s.close()
	for {
		select {
		case set, ok := <-incs:
			if !ok {
				return
			}
			s.replace(func(snap *engine.Snapshot) { snap.Incubations = set })
		case set, ok := <-meds:
			if !ok {
				return
			}
			s.replace(func(snap *engine.Snapshot) { snap.Medications = set })
		case set, ok := <-feeds:
			if !ok {
				return
			}
			s.replace(func(snap *engine.Snapshot) { snap.Feedings = set })
		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Session) replace(apply func(*engine.Snapshot)) {
	s.mu.Lock()
	apply(&s.snap)
	s.mu.Unlock()
	s.refresh(s.ctx)
}

// refresh runs the lifecycle transition over the cached set, persists what
// flipped and tells listeners to re-render.
func (s *Session) refresh(ctx context.Context) {
	s.mu.Lock()
	fresh := s.transition(s.t.Now())
	s.mu.Unlock()

	s.t.persistCompletions(ctx, s.userID, fresh)
	s.broadcast()
}

// transition finds the batches that must flip and have not been announced.
// The cache keeps the store's view; reads apply the transition themselves.
// Callers hold mu.
func (s *Session) transition(now time.Time) []models.Incubation {
	tr, err := engine.CompleteDue(s.snap.Incubations, now)
	if err != nil {
		s.t.logger.Error("lifecycle transition failed", zap.String("user_id", s.userID), zap.Error(err))
		return nil
	}

	var fresh []models.Incubation
	for _, inc := range tr.Completed {
		if !s.t.renotify {
			if _, seen := s.notified[inc.ID]; seen {
				continue
			}
			s.notified[inc.ID] = struct{}{}
		}
		fresh = append(fresh, inc)
	}
	return fresh
}

func (s *Session) markNotified(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notified[id] = struct{}{}
}

func (s *Session) broadcast() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.listeners {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func (s *Session) close() {
	s.cancel()
	s.t.dropSession(s)

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, ch := range s.listeners {
		delete(s.listeners, id)
		close(ch)
	}
}

// Changes signals after every recomputation until ctx or the session ends.
// Signals coalesce; a reader should re-render from the current snapshot.
func (s *Session) Changes(ctx context.Context) <-chan struct{} {
	ch := make(chan struct{}, 1)

	s.mu.Lock()
	if s.ctx.Err() != nil {
		s.mu.Unlock()
		close(ch)
		return ch
	}
	id := s.nextID
	s.nextID++
	s.listeners[id] = ch
	s.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
		case <-s.ctx.Done():
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.listeners[id]; ok {
			delete(s.listeners, id)
			close(ch)
		}
	}()
	return ch
}

// UserID is the session owner.
func (s *Session) UserID() string {
	return s.userID
}

// Snapshot returns a copy of the cached collections with every due batch
// already shown as completed.
func (s *Session) Snapshot() *engine.Snapshot {
	s.mu.Lock()
	snap := s.snap.Clone()
	s.mu.Unlock()

	if tr, err := engine.CompleteDue(snap.Incubations, s.t.Now()); err == nil {
		snap.Incubations = tr.Incubations
	}
	return snap
}

// Dashboard renders the landing summary.
func (s *Session) Dashboard() (engine.Dashboard, error) {
	return engine.BuildDashboard(s.Snapshot(), s.t.Now())
}

// TodayTasks renders the day's to-do list.
func (s *Session) TodayTasks() ([]engine.Task, error) {
	return engine.TodayTasks(s.Snapshot(), s.t.Now())
}

// FeedSummary renders the feed windows.
func (s *Session) FeedSummary() (engine.FeedTotals, error) {
	return engine.FeedSummary(s.Snapshot(), s.t.Now())
}

// Incubations renders incubation cards.
func (s *Session) Incubations() (engine.IncubationBoard, error) {
	return engine.IncubationCards(s.Snapshot(), s.t.Now())
}

// Medications renders the medication list with urgency.
func (s *Session) Medications() ([]engine.MedicationView, error) {
	return engine.MedicationList(s.Snapshot(), s.t.Now())
}

// Feedings renders the feeding log, newest first.
func (s *Session) Feedings() ([]engine.FeedingView, error) {
	return engine.FeedingList(s.Snapshot(), s.t.Now())
}

// Month renders a calendar grid.
func (s *Session) Month(year int, month time.Month) (engine.Month, error) {
	return engine.MonthGrid(s.Snapshot(), year, month, s.t.Now())
}

// Day lists events on a calendar day given in the tracker's timezone.
func (s *Session) Day(year int, month time.Month, day int) ([]string, error) {
	return engine.DayEvents(s.Snapshot(), time.Date(year, month, day, 0, 0, 0, 0, s.t.loc))
}
