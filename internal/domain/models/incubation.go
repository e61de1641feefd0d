package models

import (
	"time"

	"github.com/mamadbah2/hatchlog/internal/dates"
)

const (
	// IncubationDays is the number of calendar days from setting eggs to hatch day.
	IncubationDays = 21
	// TurningDays bounds the egg-turning window: days 0..17 get the reminder.
	TurningDays = 18
)

// IncubationStatus is the one-way lifecycle of a batch.
type IncubationStatus string

const (
	StatusActive    IncubationStatus = "active"
	StatusCompleted IncubationStatus = "completed"
)

// Incubation tracks one batch of eggs from setting to hatch.
type Incubation struct {
	ID        string           `bson:"_id,omitempty" json:"id"`
	UserID    string           `bson:"userId" json:"userId"`
	BatchName string           `bson:"batchName" json:"batchName"`
	StartDate dates.Instant    `bson:"startDate" json:"startDate"`
	HatchDate dates.Instant    `bson:"hatchDate" json:"hatchDate"`
	EggCount  int              `bson:"eggCount" json:"eggCount"`
	Breed     string           `bson:"breed" json:"breed"`
	Status    IncubationStatus `bson:"status" json:"status"`
}

// NewIncubation builds an active batch whose hatch date is fixed at start + 21
// calendar days in start's location.
func NewIncubation(userID, batchName string, start time.Time, eggCount int, breed string) Incubation {
	return Incubation{
		UserID:    userID,
		BatchName: batchName,
		StartDate: dates.At(start),
		HatchDate: dates.At(dates.AddDays(start, IncubationDays)),
		EggCount:  eggCount,
		Breed:     breed,
		Status:    StatusActive,
	}
}

// IsActive reports whether the batch is still incubating.
func (i Incubation) IsActive() bool {
	return i.Status == StatusActive
}

// Medication records a treatment and optionally when the next dose is due.
type Medication struct {
	ID           string         `bson:"_id,omitempty" json:"id"`
	UserID       string         `bson:"userId" json:"userId"`
	Name         string         `bson:"name" json:"name"`
	DateGiven    dates.Instant  `bson:"dateGiven" json:"dateGiven"`
	Notes        string         `bson:"notes" json:"notes"`
	NextSchedule *dates.Instant `bson:"nextSchedule" json:"nextSchedule"`
}

// NextDue returns the next scheduled dose, if any.
func (m Medication) NextDue() (time.Time, bool) {
	if m.NextSchedule == nil || m.NextSchedule.IsZero() {
		return time.Time{}, false
	}
	return m.NextSchedule.Time, true
}

// Feeding is one logged feed ration in kilograms.
type Feeding struct {
	ID       string        `bson:"_id,omitempty" json:"id"`
	UserID   string        `bson:"userId" json:"userId"`
	Date     dates.Instant `bson:"date" json:"date"`
	FeedType string        `bson:"feedType" json:"feedType"`
	Amount   float64       `bson:"amount" json:"amount"`
	Notes    string        `bson:"notes" json:"notes"`
}
