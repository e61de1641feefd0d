package engine

import (
	"fmt"
	"math"
	"time"

	"github.com/mamadbah2/hatchlog/internal/dates"
	"github.com/mamadbah2/hatchlog/internal/domain/models"
)

// Transition is the result of CompleteDue.
type Transition struct {
	// Incubations is the full input set with due batches rewritten.
	Incubations []models.Incubation
	// Completed lists the batches that flipped during this call.
	Completed []models.Incubation
}

// CompleteDue marks every active incubation whose hatch instant is at or
// before now as completed. Applying it to its own output is a no-op.
func CompleteDue(incubations []models.Incubation, now time.Time) (Transition, error) {
	if now.IsZero() {
		return Transition{}, ErrZeroReference
	}

	out := make([]models.Incubation, len(incubations))
	var completed []models.Incubation
	for i, inc := range incubations {
		if IsDue(inc, now) {
			inc = Complete(inc)
			completed = append(completed, inc)
		}
		out[i] = inc
	}
	return Transition{Incubations: out, Completed: completed}, nil
}

// IsDue reports whether inc should auto-complete at now.
func IsDue(inc models.Incubation, now time.Time) bool {
	if !inc.IsActive() || inc.HatchDate.IsZero() {
		return false
	}
	return !now.Before(inc.HatchDate.Time)
}

// Complete is the only place an incubation's status becomes completed.
// Completed batches are returned unchanged.
func Complete(inc models.Incubation) models.Incubation {
	if inc.Status == models.StatusCompleted {
		return inc
	}
	inc.Status = models.StatusCompleted
	return inc
}

// DaysPassed is the number of whole days since the batch was set.
func DaysPassed(inc models.Incubation, now time.Time) int {
	return dates.DaysFloor(inc.StartDate.Time, now)
}

// DaysLeft is 21 minus DaysPassed; it goes negative past hatch day.
func DaysLeft(inc models.Incubation, now time.Time) int {
	return models.IncubationDays - DaysPassed(inc, now)
}

// DaysLeftLabel renders DaysLeft, switching to "Ready to hatch!" at zero.
func DaysLeftLabel(inc models.Incubation, now time.Time) string {
	if inc.Status == models.StatusCompleted {
		return "Completed"
	}
	if left := DaysLeft(inc, now); left > 0 {
		return fmt.Sprintf("%d days left", left)
	}
	return "Ready to hatch!"
}

// Progress is the share of the incubation period elapsed, clamped to [0, 100].
func Progress(inc models.Incubation, now time.Time) float64 {
	if inc.Status == models.StatusCompleted {
		return 100
	}
	p := float64(DaysPassed(inc, now)) / models.IncubationDays * 100
	return math.Min(math.Max(p, 0), 100)
}

// ProgressPercent is Progress rounded for display.
func ProgressPercent(inc models.Incubation, now time.Time) int {
	return int(math.Round(Progress(inc, now)))
}
