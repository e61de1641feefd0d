package mongodb

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/mamadbah2/hatchlog/internal/repository/store"
)

type collection[T any] struct {
	coll   *mongo.Collection
	kind   string
	logger *zap.Logger
}

func newCollection[T any](db *mongo.Database, kind string, logger *zap.Logger) *collection[T] {
	return &collection[T]{
		coll:   db.Collection(kind),
		kind:   kind,
		logger: logger.With(zap.String("collection", kind)),
	}
}

func (c *collection[T]) List(ctx context.Context, filter store.Filter) ([]T, error) {
	f, err := filter.Document()
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", c.kind, err)
	}

	cursor, err := c.coll.Find(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", c.kind, err)
	}
	defer cursor.Close(ctx)

	out := make([]T, 0)
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", c.kind, err)
	}
	return out, nil
}

func (c *collection[T]) Get(ctx context.Context, id string) (T, error) {
	var out T
	err := c.coll.FindOne(ctx, bson.M{store.IDField: id}).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return out, fmt.Errorf("get %s %s: %w", c.kind, id, store.ErrNotFound)
	}
	if err != nil {
		return out, fmt.Errorf("get %s %s: %w", c.kind, id, err)
	}
	return out, nil
}

func (c *collection[T]) Create(ctx context.Context, record T) (T, error) {
	var zero T
	doc, _, err := store.NewDocument(record)
	if err != nil {
		return zero, fmt.Errorf("create %s: %w", c.kind, err)
	}
	if _, err := c.coll.InsertOne(ctx, doc); err != nil {
		return zero, fmt.Errorf("failed to insert %s: %w", c.kind, err)
	}
	return store.Decode[T](doc)
}

func (c *collection[T]) Update(ctx context.Context, id string, patch store.Patch) (T, error) {
	var out T
	set, err := patch.Document()
	if err != nil {
		return out, fmt.Errorf("update %s %s: %w", c.kind, id, err)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err = c.coll.FindOneAndUpdate(ctx, bson.M{store.IDField: id}, bson.M{"$set": set}, opts).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return out, fmt.Errorf("update %s %s: %w", c.kind, id, store.ErrNotFound)
	}
	if err != nil {
		return out, fmt.Errorf("update %s %s: %w", c.kind, id, err)
	}
	return out, nil
}

func (c *collection[T]) Delete(ctx context.Context, id string) error {
	res, err := c.coll.DeleteOne(ctx, bson.M{store.IDField: id})
	if err != nil {
		return fmt.Errorf("delete %s %s: %w", c.kind, id, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("delete %s %s: %w", c.kind, id, store.ErrNotFound)
	}
	return nil
}

// Subscribe opens a change stream on the collection and re-reads the filtered
// set after every matching event. Change streams need a replica set or Atlas cluster.
func (c *collection[T]) Subscribe(ctx context.Context, filter store.Filter) (<-chan []T, error) {
	pipeline, err := changePipeline(filter)
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", c.kind, err)
	}
	opts := options.ChangeStream().SetFullDocument(options.UpdateLookup)
	stream, err := c.coll.Watch(ctx, pipeline, opts)
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", c.kind, err)
	}

	initial, err := c.List(ctx, filter)
	if err != nil {
		_ = stream.Close(context.Background())
		return nil, err
	}

	ch := make(chan []T, 1)
	ch <- initial

	go func() {
		defer close(ch)
		defer stream.Close(context.Background())

		for stream.Next(ctx) {
			set, err := c.List(ctx, filter)
			if err != nil {
				c.logger.Warn("reload after change failed", zap.Error(err))
				continue
			}
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- set:
			case <-ctx.Done():
				return
			}
		}
		if err := stream.Err(); err != nil && ctx.Err() == nil {
			c.logger.Error("change stream stopped", zap.Error(err))
		}
	}()

	return ch, nil
}

// changePipeline keeps the change events whose document matches filter.
// Deletes carry no document, so they always pass.
func changePipeline(filter store.Filter) (mongo.Pipeline, error) {
	doc, err := filter.Document()
	if err != nil {
		return nil, err
	}
	if len(doc) == 0 {
		return mongo.Pipeline{}, nil
	}

	match := bson.D{}
	for _, k := range sortedKeys(doc) {
		match = append(match, bson.E{Key: "fullDocument." + k, Value: doc[k]})
	}
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "$or", Value: bson.A{
			bson.D{{Key: "operationType", Value: bson.D{{Key: "$in", Value: bson.A{"delete", "drop", "rename", "invalidate"}}}}},
			match,
		}}}}},
	}, nil
}

func sortedKeys(doc bson.M) []string {
	keys := make([]string, 0, len(doc))
	for k := range doc {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
