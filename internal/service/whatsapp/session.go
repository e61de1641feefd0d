package whatsapp

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/mamadbah2/hatchlog/internal/domain/models"
	"github.com/mamadbah2/hatchlog/internal/service/commands"
)

// DefaultSenderTTL is how long a resolved sender stays cached.
const DefaultSenderTTL = 10 * time.Minute

type senderEntry struct {
	user    models.User
	expires time.Time
}

// SenderCache remembers which account a WhatsApp number belongs to, so a
// burst of commands does not scan the user collection every time.
// Lookups that fail are not cached.
type SenderCache struct {
	users commands.UserLookup
	ttl   time.Duration
	now   func() time.Time

	mu      sync.RWMutex
	senders map[string]senderEntry
}

// NewSenderCache wraps users with a TTL cache.
func NewSenderCache(users commands.UserLookup, ttl time.Duration) *SenderCache {
	if ttl <= 0 {
		ttl = DefaultSenderTTL
	}
	return &SenderCache{
		users:   users,
		ttl:     ttl,
		now:     time.Now,
		senders: make(map[string]senderEntry),
	}
}

// UserByPhone implements commands.UserLookup.
func (c *SenderCache) UserByPhone(ctx context.Context, phone string) (models.User, error) {
	key := strings.TrimPrefix(strings.TrimSpace(phone), "+")
	now := c.now()

	c.mu.RLock()
	entry, ok := c.senders[key]
	c.mu.RUnlock()
	if ok && now.Before(entry.expires) {
		return entry.user, nil
	}

	user, err := c.users.UserByPhone(ctx, key)
	if err != nil {
		return models.User{}, err
	}

	c.mu.Lock()
	c.senders[key] = senderEntry{user: user, expires: now.Add(c.ttl)}
	c.mu.Unlock()
	return user, nil
}
