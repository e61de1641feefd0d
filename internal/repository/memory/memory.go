// Package memory is an in-process record store with the same filter, patch and
// subscription semantics as the MongoDB backend. It backs tests and
// single-node deployments without a database.
package memory

import (
	"context"

	"github.com/mamadbah2/hatchlog/internal/domain/models"
	"github.com/mamadbah2/hatchlog/internal/repository/store"
)

// Store holds one collection per record kind.
type Store struct {
	incubations     *Collection[models.Incubation]
	medications     *Collection[models.Medication]
	feedings        *Collection[models.Feeding]
	users           *Collection[models.User]
	devices         *Collection[models.Device]
	activityLogs    *Collection[models.ActivityLog]
	activationCodes *Collection[models.ActivationCode]
}

var _ store.Store = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{
		incubations:     NewCollection[models.Incubation](store.KindIncubations),
		medications:     NewCollection[models.Medication](store.KindMedications),
		feedings:        NewCollection[models.Feeding](store.KindFeedings),
		users:           NewCollection[models.User](store.KindUsers),
		devices:         NewCollection[models.Device](store.KindDevices),
		activityLogs:    NewCollection[models.ActivityLog](store.KindActivityLogs),
		activationCodes: NewCollection[models.ActivationCode](store.KindActivationCodes),
	}
}

func (s *Store) Incubations() store.Collection[models.Incubation] { return s.incubations }
func (s *Store) Medications() store.Collection[models.Medication] { return s.medications }
func (s *Store) Feedings() store.Collection[models.Feeding]       { return s.feedings }
func (s *Store) Users() store.Collection[models.User]             { return s.users }
func (s *Store) Devices() store.Collection[models.Device]         { return s.devices }

func (s *Store) ActivityLogs() store.Collection[models.ActivityLog] {
	return s.activityLogs
}

func (s *Store) ActivationCodes() store.Collection[models.ActivationCode] {
	return s.activationCodes
}

// Close closes every open subscription.
func (s *Store) Close(context.Context) error {
	s.incubations.closeAll()
	s.medications.closeAll()
	s.feedings.closeAll()
	s.users.closeAll()
	s.devices.closeAll()
	s.activityLogs.closeAll()
	s.activationCodes.closeAll()
	return nil
}
