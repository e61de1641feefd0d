package memory

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/mamadbah2/hatchlog/internal/repository/store"
)

// Collection keeps documents in their stored form so filters and patches
// behave exactly as they would against MongoDB.
type Collection[T any] struct {
	kind string

	mu     sync.Mutex
	order  []string
	docs   map[string]bson.M
	subs   map[int]*subscriber[T]
	nextID int
}

type subscriber[T any] struct {
	filter bson.M
	ch     chan []T
}

var _ store.Collection[struct{}] = (*Collection[struct{}])(nil)

// NewCollection returns an empty collection for kind.
func NewCollection[T any](kind string) *Collection[T] {
	return &Collection[T]{
		kind: kind,
		docs: make(map[string]bson.M),
		subs: make(map[int]*subscriber[T]),
	}
}

func (c *Collection[T]) List(_ context.Context, filter store.Filter) ([]T, error) {
	f, err := filter.Document()
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", c.kind, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.list(f)
}

func (c *Collection[T]) Get(_ context.Context, id string) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	doc, ok := c.docs[id]
	if !ok {
		return zero, fmt.Errorf("get %s %s: %w", c.kind, id, store.ErrNotFound)
	}
	return store.Decode[T](doc)
}

func (c *Collection[T]) Create(_ context.Context, record T) (T, error) {
	var zero T
	doc, id, err := store.NewDocument(record)
	if err != nil {
		return zero, fmt.Errorf("create %s: %w", c.kind, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.docs[id]; exists {
		return zero, fmt.Errorf("create %s: duplicate id %s", c.kind, id)
	}
	c.docs[id] = doc
	c.order = append(c.order, id)
	c.publish()
	return store.Decode[T](doc)
}

func (c *Collection[T]) Update(_ context.Context, id string, patch store.Patch) (T, error) {
	var zero T
	set, err := patch.Document()
	if err != nil {
		return zero, fmt.Errorf("update %s %s: %w", c.kind, id, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	doc, ok := c.docs[id]
	if !ok {
		return zero, fmt.Errorf("update %s %s: %w", c.kind, id, store.ErrNotFound)
	}
	for k, v := range set {
		doc[k] = v
	}
	c.publish()
	return store.Decode[T](doc)
}

func (c *Collection[T]) Delete(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.docs[id]; !ok {
		return fmt.Errorf("delete %s %s: %w", c.kind, id, store.ErrNotFound)
	}
	delete(c.docs, id)
	for i, existing := range c.order {
		if existing == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	c.publish()
	return nil
}

func (c *Collection[T]) Subscribe(ctx context.Context, filter store.Filter) (<-chan []T, error) {
	f, err := filter.Document()
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", c.kind, err)
	}

	c.mu.Lock()
	initial, err := c.list(f)
	if err != nil {
		c.mu.Unlock()
		return nil, fmt.Errorf("subscribe %s: %w", c.kind, err)
	}
	sub := &subscriber[T]{filter: f, ch: make(chan []T, 1)}
	sub.ch <- initial
	key := c.nextID
	c.nextID++
	c.subs[key] = sub
	c.mu.Unlock()

	go func() {
		<-ctx.Done()
		c.mu.Lock()
		defer c.mu.Unlock()
		if s, ok := c.subs[key]; ok {
			delete(c.subs, key)
			close(s.ch)
		}
	}()

	return sub.ch, nil
}

func (c *Collection[T]) list(filter bson.M) ([]T, error) {
	out := make([]T, 0)
	for _, id := range c.order {
		doc := c.docs[id]
		if !matches(doc, filter) {
			continue
		}
		rec, err := store.Decode[T](doc)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// publish pushes the current filtered set to every subscriber. Callers hold mu.
func (c *Collection[T]) publish() {
	for _, sub := range c.subs {
		set, err := c.list(sub.filter)
		if err != nil {
			continue
		}
		select {
		case <-sub.ch:
		default:
		}
		sub.ch <- set
	}
}

func (c *Collection[T]) closeAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, sub := range c.subs {
		delete(c.subs, key)
		close(sub.ch)
	}
}

func matches(doc, filter bson.M) bool {
	for k, want := range filter {
		if !reflect.DeepEqual(doc[k], want) {
			return false
		}
	}
	return true
}
