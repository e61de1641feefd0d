package engine

import (
	"fmt"
	"sort"
	"time"

	"github.com/mamadbah2/hatchlog/internal/dates"
	"github.com/mamadbah2/hatchlog/internal/domain/models"
)

// soonWithinDays flags a dose as coming up soon.
const soonWithinDays = 3

// upcomingWindow is the dashboard look-ahead for scheduled doses.
const upcomingWindow = 7 * 24 * time.Hour

// MedicationUrgency describes how close the next dose is.
type MedicationUrgency struct {
	Schedule  string `json:"schedule"`
	Label     string `json:"label"`
	DaysUntil *int   `json:"daysUntil,omitempty"`
	Soon      bool   `json:"soon"`
	Overdue   bool   `json:"overdue"`
}

// MedicationView is a medication record with its urgency.
type MedicationView struct {
	models.Medication
	DateGivenText string            `json:"dateGivenText"`
	Urgency       MedicationUrgency `json:"urgency"`
}

// Urgency classifies a medication's next dose relative to now.
func Urgency(med models.Medication, now time.Time) MedicationUrgency {
	next, ok := med.NextDue()
	if !ok {
		return MedicationUrgency{Schedule: "Not scheduled"}
	}

	days := dates.DaysCeil(now, next)
	u := MedicationUrgency{
		Schedule:  dates.FormatDay(next.In(now.Location())),
		DaysUntil: &days,
	}
	if days < 0 {
		u.Label = "Overdue"
		u.Overdue = true
		return u
	}
	u.Label = fmt.Sprintf("In %d days", days)
	u.Soon = days <= soonWithinDays
	return u
}

// MedicationList returns medications ordered by next dose, unscheduled last.
func MedicationList(s *Snapshot, now time.Time) ([]MedicationView, error) {
	if err := check(s, now); err != nil {
		return nil, err
	}

	meds := append([]models.Medication(nil), s.Medications...)
	sort.SliceStable(meds, func(i, j int) bool {
		a, aok := meds[i].NextDue()
		b, bok := meds[j].NextDue()
		switch {
		case !aok:
			return false
		case !bok:
			return true
		default:
			return a.Before(b)
		}
	})

	views := make([]MedicationView, 0, len(meds))
	for _, med := range meds {
		views = append(views, MedicationView{
			Medication:    med,
			DateGivenText: dates.FormatDay(med.DateGiven.In(now.Location())),
			Urgency:       Urgency(med, now),
		})
	}
	return views, nil
}

// UpcomingMedications counts doses scheduled between now and seven days ahead.
func UpcomingMedications(meds []models.Medication, now time.Time) int {
	limit := now.Add(upcomingWindow)
	count := 0
	for _, med := range meds {
		next, ok := med.NextDue()
		if ok && !next.Before(now) && !next.After(limit) {
			count++
		}
	}
	return count
}
