package engine

import (
	"fmt"
	"strconv"
	"time"

	"github.com/mamadbah2/hatchlog/internal/dates"
	"github.com/mamadbah2/hatchlog/internal/domain/models"
)

// GridCells is the fixed size of a month view: six weeks of seven days.
const GridCells = 42

// MarkerCategory identifies the kind of event shown on a calendar day.
type MarkerCategory string

const (
	MarkerStart      MarkerCategory = "start"
	MarkerHatch      MarkerCategory = "hatch"
	MarkerMedication MarkerCategory = "medication"
)

var markerColors = map[MarkerCategory]string{
	MarkerStart:      "#4a7c59",
	MarkerHatch:      "#e63946",
	MarkerMedication: "#457b9d",
}

// Marker is a single event dot on a calendar day.
type Marker struct {
	Category MarkerCategory `json:"category"`
	Color    string         `json:"color"`
	RecordID string         `json:"recordId"`
}

// CalendarCell is one day of the month grid.
type CalendarCell struct {
	Date       time.Time `json:"date"`
	Key        string    `json:"key"`
	Day        int       `json:"day"`
	OutOfMonth bool      `json:"outOfMonth"`
	IsToday    bool      `json:"isToday"`
	Markers    []Marker  `json:"markers"`
}

// Month is a 6x7 calendar grid starting on a Sunday.
type Month struct {
	Year  int            `json:"year"`
	Month time.Month     `json:"month"`
	Title string         `json:"title"`
	Cells []CalendarCell `json:"cells"`
}

// MonthGrid builds the 42-cell grid for year/month. Days are laid out in now's
// location and IsToday is evaluated against now on every call.
func MonthGrid(s *Snapshot, year int, month time.Month, now time.Time) (Month, error) {
	if err := check(s, now); err != nil {
		return Month{}, err
	}
	if month < time.January || month > time.December {
		return Month{}, fmt.Errorf("%w: %d", ErrInvalidMonth, month)
	}

	first := time.Date(year, month, 1, 0, 0, 0, 0, now.Location())
	start := dates.AddDays(first, -int(first.Weekday()))
	today := dates.Truncate(now)

	cells := make([]CalendarCell, 0, GridCells)
	for i := 0; i < GridCells; i++ {
		day := dates.AddDays(start, i)
		cells = append(cells, CalendarCell{
			Date:       day,
			Key:        day.Format(dates.DateLayout),
			Day:        day.Day(),
			OutOfMonth: day.Month() != month || day.Year() != year,
			IsToday:    day.Equal(today),
			Markers:    markersOn(s, day),
		})
	}

	return Month{
		Year:  year,
		Month: month,
		Title: first.Format(dates.MonthLayout),
		Cells: cells,
	}, nil
}

func markersOn(s *Snapshot, day time.Time) []Marker {
	markers := make([]Marker, 0)
	for _, inc := range s.Incubations {
		if startsOn(inc, day) {
			markers = append(markers, newMarker(MarkerStart, inc.ID))
		}
		if hatchesOn(inc, day) {
			markers = append(markers, newMarker(MarkerHatch, inc.ID))
		}
	}
	for _, med := range s.Medications {
		if dueOn(med, day) {
			markers = append(markers, newMarker(MarkerMedication, med.ID))
		}
	}
	return markers
}

func newMarker(category MarkerCategory, id string) Marker {
	return Marker{Category: category, Color: markerColors[category], RecordID: id}
}

// DayEvents lists human-readable events for a selected date. The turning
// reminder is evaluated relative to that date and only for active batches.
func DayEvents(s *Snapshot, date time.Time) ([]string, error) {
	if err := check(s, date); err != nil {
		return nil, err
	}
	day := dates.Truncate(date)

	events := make([]string, 0)
	for _, inc := range s.Incubations {
		if startsOn(inc, day) {
			events = append(events, fmt.Sprintf("Start incubation: %q", inc.BatchName))
		}
		if hatchesOn(inc, day) {
			events = append(events, fmt.Sprintf("Hatching day: %q", inc.BatchName))
		}
		if inc.IsActive() && !inc.StartDate.IsZero() {
			passed := dates.DaysFloor(inc.StartDate.Time, day)
			if passed >= 0 && passed < models.TurningDays {
				events = append(events, fmt.Sprintf("Turn eggs for %q", inc.BatchName))
			}
		}
	}

	for _, med := range s.Medications {
		if dueOn(med, day) {
			events = append(events, fmt.Sprintf("Give medication: %q", med.Name))
		}
	}

	for _, f := range s.Feedings {
		if !f.Date.IsZero() && dates.SameDay(f.Date.Time, day) {
			events = append(events, fmt.Sprintf("Feeding: %s (%skg)", f.FeedType, strconv.FormatFloat(f.Amount, 'f', -1, 64)))
		}
	}

	return events, nil
}
