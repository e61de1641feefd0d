package store

import (
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
)

// IDField is the stored primary key.
const IDField = "_id"

// Document returns the filter in stored form. An empty filter matches all.
func (f Filter) Document() (bson.M, error) {
	if len(f) == 0 {
		return bson.M{}, nil
	}
	return Encode(map[string]any(f))
}

// Document returns the patch in stored form without the id field.
func (p Patch) Document() (bson.M, error) {
	if len(p) == 0 {
		return bson.M{}, nil
	}
	doc, err := Encode(map[string]any(p))
	if err != nil {
		return nil, err
	}
	delete(doc, IDField)
	return doc, nil
}

// Encode converts a record or a map into its stored document form.
func Encode(v any) (bson.M, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	doc := bson.M{}
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("normalize document: %w", err)
	}
	return doc, nil
}

// Decode converts a stored document back into a record.
func Decode[T any](doc bson.M) (T, error) {
	var out T
	raw, err := bson.Marshal(doc)
	if err != nil {
		return out, fmt.Errorf("encode document: %w", err)
	}
	if err := bson.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("decode document: %w", err)
	}
	return out, nil
}

// EnsureID sets a fresh UUID as the document id when none is present and
// returns the id in use.
func EnsureID(doc bson.M) string {
	if id, ok := doc[IDField].(string); ok && id != "" {
		return id
	}
	id := uuid.NewString()
	doc[IDField] = id
	return id
}

// NewDocument encodes record and assigns it an id.
func NewDocument(record any) (bson.M, string, error) {
	doc, err := Encode(record)
	if err != nil {
		return nil, "", err
	}
	return doc, EnsureID(doc), nil
}
