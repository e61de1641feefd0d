package engine

import (
	"fmt"
	"time"

	"github.com/mamadbah2/hatchlog/internal/dates"
	"github.com/mamadbah2/hatchlog/internal/domain/models"
)

// TaskCategory groups tasks by the record kind that produced them.
type TaskCategory string

const (
	CategoryIncubation TaskCategory = "incubation"
	CategoryMedication TaskCategory = "medication"
	CategoryFeeding    TaskCategory = "feeding"
)

// Priority orders tasks for display.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
)

// Task is one item on the day's to-do list.
type Task struct {
	Category TaskCategory `json:"category"`
	Message  string       `json:"message"`
	Priority Priority     `json:"priority"`
}

// Alert is a one-shot due-today notification. Key is stable for a record on a
// given calendar day so callers can deduplicate repeated checks.
type Alert struct {
	Key      string       `json:"key"`
	RecordID string       `json:"recordId"`
	Category TaskCategory `json:"category"`
	Message  string       `json:"message"`
}

// TodayTasks lists the day's tasks: incubation tasks in input order, then
// medications due, then a feeding reminder when nothing was logged yesterday.
func TodayTasks(s *Snapshot, now time.Time) ([]Task, error) {
	if err := check(s, now); err != nil {
		return nil, err
	}
	today := dates.Truncate(now)

	tasks := make([]Task, 0)
	for _, inc := range s.Incubations {
		if !inc.IsActive() {
			continue
		}
		if hatchesOn(inc, today) {
			tasks = append(tasks, Task{
				Category: CategoryIncubation,
				Message:  fmt.Sprintf("Hatching day for %q!", inc.BatchName),
				Priority: PriorityHigh,
			})
		}
		if !inc.StartDate.IsZero() && dates.DaysFloor(inc.StartDate.Time, today) < models.TurningDays {
			tasks = append(tasks, Task{
				Category: CategoryIncubation,
				Message:  fmt.Sprintf("Turn eggs for %q (3x today)", inc.BatchName),
				Priority: PriorityMedium,
			})
		}
	}

	for _, med := range s.Medications {
		if dueOn(med, today) {
			tasks = append(tasks, Task{
				Category: CategoryMedication,
				Message:  fmt.Sprintf("Give %q medication today", med.Name),
				Priority: PriorityHigh,
			})
		}
	}

	if !fedOn(s.Feedings, dates.AddDays(today, -1)) {
		tasks = append(tasks, Task{
			Category: CategoryFeeding,
			Message:  "Record today's feeding",
			Priority: PriorityMedium,
		})
	}

	return tasks, nil
}

// DueToday returns the alerts for batches hatching today and medications due
// today. Turning and feeding reminders are display-only and never alerted.
func DueToday(s *Snapshot, now time.Time) ([]Alert, error) {
	if err := check(s, now); err != nil {
		return nil, err
	}
	today := dates.Truncate(now)
	stamp := today.Format(dates.DateLayout)

	var alerts []Alert
	for _, inc := range s.Incubations {
		if inc.IsActive() && hatchesOn(inc, today) {
			alerts = append(alerts, Alert{
				Key:      "incubation:" + inc.ID + ":" + stamp,
				RecordID: inc.ID,
				Category: CategoryIncubation,
				Message:  fmt.Sprintf("Hatching day for %q!", inc.BatchName),
			})
		}
	}
	for _, med := range s.Medications {
		if dueOn(med, today) {
			alerts = append(alerts, Alert{
				Key:      "medication:" + med.ID + ":" + stamp,
				RecordID: med.ID,
				Category: CategoryMedication,
				Message:  fmt.Sprintf("Medication due today: %q", med.Name),
			})
		}
	}
	return alerts, nil
}

func hatchesOn(inc models.Incubation, day time.Time) bool {
	return !inc.HatchDate.IsZero() && dates.SameDay(inc.HatchDate.Time, day)
}

func startsOn(inc models.Incubation, day time.Time) bool {
	return !inc.StartDate.IsZero() && dates.SameDay(inc.StartDate.Time, day)
}

func dueOn(med models.Medication, day time.Time) bool {
	next, ok := med.NextDue()
	return ok && dates.SameDay(next, day)
}

func fedOn(feedings []models.Feeding, day time.Time) bool {
	for _, f := range feedings {
		if !f.Date.IsZero() && dates.SameDay(f.Date.Time, day) {
			return true
		}
	}
	return false
}
