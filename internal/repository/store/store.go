// Package store defines the record store contract shared by the MongoDB and
// in-memory backends. Every record kind is exposed as a typed Collection whose
// filters and patches follow MongoDB equality and $set semantics.
package store

import (
	"context"
	"errors"

	"github.com/mamadbah2/hatchlog/internal/domain/models"
)

// Collection names.
const (
	KindIncubations     = "incubations"
	KindMedications     = "medications"
	KindFeedings        = "feedings"
	KindUsers           = "users"
	KindDevices         = "devices"
	KindActivityLogs    = "activityLogs"
	KindActivationCodes = "activationCodes"
)

// ErrNotFound is returned when a record id does not exist.
var ErrNotFound = errors.New("store: record not found")

// Filter selects records by field equality, keyed by stored field name.
type Filter map[string]any

// Patch lists stored field names and the values to set on them.
type Patch map[string]any

// ByOwner selects the records belonging to one user.
func ByOwner(userID string) Filter {
	return Filter{"userId": userID}
}

// Collection is the CRUD and change-stream surface of one record kind.
type Collection[T any] interface {
	List(ctx context.Context, filter Filter) ([]T, error)
	Get(ctx context.Context, id string) (T, error)
	// Create assigns an id when the record has none and returns the stored record.
	Create(ctx context.Context, record T) (T, error)
	Update(ctx context.Context, id string, patch Patch) (T, error)
	Delete(ctx context.Context, id string) error
	// Subscribe emits the full filtered set immediately and again after every
	// change. Slow readers only see the latest set. The channel is closed when
	// ctx is done.
	Subscribe(ctx context.Context, filter Filter) (<-chan []T, error)
}

// Store groups the collections of every record kind.
type Store interface {
	Incubations() Collection[models.Incubation]
	Medications() Collection[models.Medication]
	Feedings() Collection[models.Feeding]
	Users() Collection[models.User]
	Devices() Collection[models.Device]
	ActivityLogs() Collection[models.ActivityLog]
	ActivationCodes() Collection[models.ActivationCode]
	Close(ctx context.Context) error
}
