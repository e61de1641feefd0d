package tracker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mamadbah2/hatchlog/internal/dates"
	"github.com/mamadbah2/hatchlog/internal/domain/models"
	"github.com/mamadbah2/hatchlog/internal/engine"
	"github.com/mamadbah2/hatchlog/internal/repository/store"
)

// AddIncubation starts a batch; its hatch date is fixed at start + 21 days.
func (t *Tracker) AddIncubation(ctx context.Context, userID, batchName string, start time.Time, eggCount int, breed string) (models.Incubation, error) {
	inc := models.NewIncubation(userID, strings.TrimSpace(batchName), start, eggCount, strings.TrimSpace(breed))
	created, err := t.store.Incubations().Create(ctx, inc)
	if err != nil {
		t.notify(ctx, userID, models.NotificationError, errAddIncubation)
		return models.Incubation{}, fmt.Errorf("add incubation: %w", err)
	}
	t.notify(ctx, userID, models.NotificationInfo, fmt.Sprintf(msgIncubationAdded, created.BatchName))
	return created, nil
}

// CompleteIncubation marks a batch completed on the user's request.
func (t *Tracker) CompleteIncubation(ctx context.Context, userID, id string) (models.Incubation, error) {
	inc, err := owned(ctx, t.store.Incubations(), userID, id, func(i models.Incubation) string { return i.UserID })
	if err != nil {
		return models.Incubation{}, err
	}
	if !inc.IsActive() {
		return inc, nil
	}

	inc = engine.Complete(inc)
	updated, err := t.store.Incubations().Update(ctx, id, store.Patch{"status": inc.Status})
	if err != nil {
		t.notify(ctx, userID, models.NotificationError, errComplete)
		return models.Incubation{}, fmt.Errorf("complete incubation: %w", err)
	}
	if s, ok := t.session(userID); ok {
		s.markNotified(id)
	}
	t.notify(ctx, userID, models.NotificationInfo, fmt.Sprintf(msgCompleted, updated.BatchName))
	return updated, nil
}

// DeleteIncubation removes a batch at any status.
func (t *Tracker) DeleteIncubation(ctx context.Context, userID, id string) error {
	if _, err := owned(ctx, t.store.Incubations(), userID, id, func(i models.Incubation) string { return i.UserID }); err != nil {
		return err
	}
	if err := t.store.Incubations().Delete(ctx, id); err != nil {
		t.notify(ctx, userID, models.NotificationError, errDeleteIncubation)
		return fmt.Errorf("delete incubation: %w", err)
	}
	t.notify(ctx, userID, models.NotificationInfo, msgIncubationDeleted)
	return nil
}

// AddMedication records a treatment.
func (t *Tracker) AddMedication(ctx context.Context, userID string, med models.Medication) (models.Medication, error) {
	med.ID = ""
	med.UserID = userID
	med.Name = strings.TrimSpace(med.Name)
	if med.DateGiven.IsZero() {
		med.DateGiven = dates.At(t.Now())
	}
	created, err := t.store.Medications().Create(ctx, med)
	if err != nil {
		t.notify(ctx, userID, models.NotificationError, errAddMedication)
		return models.Medication{}, fmt.Errorf("add medication: %w", err)
	}
	t.notify(ctx, userID, models.NotificationInfo, fmt.Sprintf(msgMedicationAdded, created.Name))
	return created, nil
}

// DeleteMedication removes a treatment record.
func (t *Tracker) DeleteMedication(ctx context.Context, userID, id string) error {
	if _, err := owned(ctx, t.store.Medications(), userID, id, func(m models.Medication) string { return m.UserID }); err != nil {
		return err
	}
	if err := t.store.Medications().Delete(ctx, id); err != nil {
		t.notify(ctx, userID, models.NotificationError, errDeleteMedication)
		return fmt.Errorf("delete medication: %w", err)
	}
	t.notify(ctx, userID, models.NotificationInfo, msgMedicationDeleted)
	return nil
}

// AddFeeding logs a ration.
func (t *Tracker) AddFeeding(ctx context.Context, userID string, feeding models.Feeding) (models.Feeding, error) {
	feeding.ID = ""
	feeding.UserID = userID
	if feeding.Date.IsZero() {
		feeding.Date = dates.At(t.Now())
	}
	created, err := t.store.Feedings().Create(ctx, feeding)
	if err != nil {
		t.notify(ctx, userID, models.NotificationError, errAddFeeding)
		return models.Feeding{}, fmt.Errorf("add feeding: %w", err)
	}
	t.notify(ctx, userID, models.NotificationInfo, msgFeedingAdded)
	return created, nil
}

// DeleteFeeding removes a ration.
func (t *Tracker) DeleteFeeding(ctx context.Context, userID, id string) error {
	if _, err := owned(ctx, t.store.Feedings(), userID, id, func(f models.Feeding) string { return f.UserID }); err != nil {
		return err
	}
	if err := t.store.Feedings().Delete(ctx, id); err != nil {
		t.notify(ctx, userID, models.NotificationError, errDeleteFeeding)
		return fmt.Errorf("delete feeding: %w", err)
	}
	t.notify(ctx, userID, models.NotificationInfo, msgFeedingDeleted)
	return nil
}

// owned fetches a record and hides records of other users behind ErrNotFound.
func owned[T any](ctx context.Context, coll store.Collection[T], userID, id string, ownerOf func(T) string) (T, error) {
	rec, err := coll.Get(ctx, id)
	if err != nil {
		return rec, err
	}
	if ownerOf(rec) != userID {
		var zero T
		return zero, fmt.Errorf("record %s: %w", id, store.ErrNotFound)
	}
	return rec, nil
}
