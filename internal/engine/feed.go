package engine

import (
	"fmt"
	"time"

	"github.com/mamadbah2/hatchlog/internal/dates"
)

// FeedTotals holds feed consumption sums in kilograms.
type FeedTotals struct {
	Daily   float64 `json:"daily"`
	Weekly  float64 `json:"weekly"`
	Monthly float64 `json:"monthly"`
}

// FormatKg renders an amount with two decimals, e.g. "3.50 kg".
func FormatKg(v float64) string {
	return fmt.Sprintf("%.2f kg", v)
}

// Labels returns the display strings for each window.
func (t FeedTotals) Labels() map[string]string {
	return map[string]string{
		"daily":   FormatKg(t.Daily),
		"weekly":  FormatKg(t.Weekly),
		"monthly": FormatKg(t.Monthly),
	}
}

// FeedSummary sums feed amounts for today, the week starting Sunday and the
// current month. The week and month windows have no upper bound, so
// future-dated feedings are included. Amounts are summed as stored.
func FeedSummary(s *Snapshot, now time.Time) (FeedTotals, error) {
	if err := check(s, now); err != nil {
		return FeedTotals{}, err
	}
	today := dates.Truncate(now)
	weekStart := dates.StartOfWeek(today)
	monthStart := dates.StartOfMonth(today)

	var totals FeedTotals
	for _, f := range s.Feedings {
		day := dates.DayIn(f.Date.Time, now.Location())
		if day.Equal(today) {
			totals.Daily += f.Amount
		}
		if !day.Before(weekStart) {
			totals.Weekly += f.Amount
		}
		if !day.Before(monthStart) {
			totals.Monthly += f.Amount
		}
	}
	return totals, nil
}
