// Package engine holds the temporal rules that turn stored incubation,
// medication and feeding records into derived views. Every entry point is a
// pure function of a Snapshot and a reference instant; calendar days are
// evaluated in the location carried by that instant.
package engine

import (
	"errors"
	"time"

	"github.com/mamadbah2/hatchlog/internal/domain/models"
)

var (
	// ErrNilSnapshot is returned when a derivation is asked to run without data.
	ErrNilSnapshot = errors.New("engine: nil snapshot")
	// ErrZeroReference is returned when the reference instant is unset.
	ErrZeroReference = errors.New("engine: zero reference instant")
	// ErrInvalidMonth is returned for month numbers outside 1..12.
	ErrInvalidMonth = errors.New("engine: month out of range")
)

// Snapshot is one user's owner-filtered record collections at a single point.
type Snapshot struct {
	Incubations []models.Incubation `json:"incubations"`
	Medications []models.Medication `json:"medications"`
	Feedings    []models.Feeding    `json:"feedings"`
}

// Clone returns a snapshot that shares no slices with s.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	return &Snapshot{
		Incubations: append([]models.Incubation(nil), s.Incubations...),
		Medications: append([]models.Medication(nil), s.Medications...),
		Feedings:    append([]models.Feeding(nil), s.Feedings...),
	}
}

func check(s *Snapshot, now time.Time) error {
	if s == nil {
		return ErrNilSnapshot
	}
	if now.IsZero() {
		return ErrZeroReference
	}
	return nil
}
