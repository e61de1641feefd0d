package notify

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/hatchlog/internal/domain/models"
)

// Feed keeps each user's unexpired notifications in memory and pushes new ones
// to live listeners.
type Feed struct {
	ttl    time.Duration
	now    func() time.Time
	logger *zap.Logger

	mu        sync.Mutex
	items     map[string][]models.Notification
	listeners map[string]map[int]chan models.Notification
	nextID    int
}

// NewFeed builds a feed whose notifications expire after models.NotificationTTL.
func NewFeed(logger *zap.Logger) *Feed {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Feed{
		ttl:       models.NotificationTTL,
		now:       time.Now,
		logger:    logger,
		items:     make(map[string][]models.Notification),
		listeners: make(map[string]map[int]chan models.Notification),
	}
}

// Notify stamps the notification and publishes it.
func (f *Feed) Notify(_ context.Context, n models.Notification) error {
	now := f.now()
	if n.CreatedAt.IsZero() {
		n.CreatedAt = now
	}
	if n.ExpiresAt.IsZero() {
		n.ExpiresAt = n.CreatedAt.Add(f.ttl)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.items[n.UserID] = append(f.prune(n.UserID, now), n)
	for _, ch := range f.listeners[n.UserID] {
		select {
		case ch <- n:
		default:
			f.logger.Debug("listener full, notification dropped", zap.String("user_id", n.UserID))
		}
	}
	return nil
}

// Recent returns the user's unexpired notifications, oldest first.
func (f *Feed) Recent(userID string) []models.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()

	live := f.prune(userID, f.now())
	f.items[userID] = live
	return append([]models.Notification{}, live...)
}

// Listen streams notifications for userID until ctx is done.
func (f *Feed) Listen(ctx context.Context, userID string) <-chan models.Notification {
	ch := make(chan models.Notification, 16)

	f.mu.Lock()
	key := f.nextID
	f.nextID++
	if f.listeners[userID] == nil {
		f.listeners[userID] = make(map[int]chan models.Notification)
	}
	f.listeners[userID][key] = ch
	f.mu.Unlock()

	go func() {
		<-ctx.Done()
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.listeners[userID], key)
		if len(f.listeners[userID]) == 0 {
			delete(f.listeners, userID)
		}
		close(ch)
	}()

	return ch
}

// prune drops expired entries. Callers hold mu.
func (f *Feed) prune(userID string, now time.Time) []models.Notification {
	items := f.items[userID]
	live := items[:0]
	for _, n := range items {
		if now.Before(n.ExpiresAt) {
			live = append(live, n)
		}
	}
	if len(live) == 0 {
		delete(f.items, userID)
		return nil
	}
	return live
}
