package engine

import (
	"sort"
	"time"

	"github.com/mamadbah2/hatchlog/internal/dates"
	"github.com/mamadbah2/hatchlog/internal/domain/models"
)

const unspecifiedBreed = "Not specified"

// IncubationCard is the display model for one batch.
type IncubationCard struct {
	ID            string                  `json:"id"`
	BatchName     string                  `json:"batchName"`
	Breed         string                  `json:"breed"`
	EggCount      int                     `json:"eggCount"`
	Status        models.IncubationStatus `json:"status"`
	StartDateText string                  `json:"startDateText"`
	HatchDateText string                  `json:"hatchDateText"`
	DaysLeft      int                     `json:"daysLeft"`
	DaysLeftLabel string                  `json:"daysLeftLabel"`
	Progress      int                     `json:"progress"`
}

// IncubationBoard splits batches into the running ones and the history.
type IncubationBoard struct {
	Active  []IncubationCard `json:"active"`
	History []IncubationCard `json:"history"`
}

// IncubationCards renders every incubation in input order, split by status.
func IncubationCards(s *Snapshot, now time.Time) (IncubationBoard, error) {
	if err := check(s, now); err != nil {
		return IncubationBoard{}, err
	}

	board := IncubationBoard{
		Active:  make([]IncubationCard, 0),
		History: make([]IncubationCard, 0),
	}
	for _, inc := range s.Incubations {
		card := newCard(inc, now)
		if inc.IsActive() {
			board.Active = append(board.Active, card)
		} else {
			board.History = append(board.History, card)
		}
	}
	return board, nil
}

func newCard(inc models.Incubation, now time.Time) IncubationCard {
	breed := inc.Breed
	if breed == "" {
		breed = unspecifiedBreed
	}
	return IncubationCard{
		ID:            inc.ID,
		BatchName:     inc.BatchName,
		Breed:         breed,
		EggCount:      inc.EggCount,
		Status:        inc.Status,
		StartDateText: dates.FormatDay(localDay(inc.StartDate, now)),
		HatchDateText: dates.FormatDay(localDay(inc.HatchDate, now)),
		DaysLeft:      DaysLeft(inc, now),
		DaysLeftLabel: DaysLeftLabel(inc, now),
		Progress:      ProgressPercent(inc, now),
	}
}

func localDay(in dates.Instant, now time.Time) time.Time {
	if in.IsZero() {
		return time.Time{}
	}
	return in.In(now.Location())
}

// FeedingView is a feeding with its display date.
type FeedingView struct {
	models.Feeding
	DateText   string `json:"dateText"`
	AmountText string `json:"amountText"`
}

// FeedingList returns feedings newest first.
func FeedingList(s *Snapshot, now time.Time) ([]FeedingView, error) {
	if err := check(s, now); err != nil {
		return nil, err
	}

	feedings := append([]models.Feeding(nil), s.Feedings...)
	sort.SliceStable(feedings, func(i, j int) bool {
		return feedings[i].Date.After(feedings[j].Date.Time)
	})

	views := make([]FeedingView, 0, len(feedings))
	for _, f := range feedings {
		views = append(views, FeedingView{
			Feeding:    f,
			DateText:   dates.FormatDay(localDay(f.Date, now)),
			AmountText: FormatKg(f.Amount),
		})
	}
	return views, nil
}

// Dashboard is the landing summary.
type Dashboard struct {
	ActiveIncubations    int               `json:"activeIncubations"`
	CompletedIncubations int               `json:"completedIncubations"`
	UpcomingMedications  int               `json:"upcomingMedications"`
	Tasks                []Task            `json:"tasks"`
	Feed                 FeedTotals        `json:"feed"`
	FeedText             map[string]string `json:"feedText"`
}

// BuildDashboard aggregates counts, today's tasks and the feed windows.
func BuildDashboard(s *Snapshot, now time.Time) (Dashboard, error) {
	tasks, err := TodayTasks(s, now)
	if err != nil {
		return Dashboard{}, err
	}
	feed, err := FeedSummary(s, now)
	if err != nil {
		return Dashboard{}, err
	}

	d := Dashboard{
		UpcomingMedications: UpcomingMedications(s.Medications, now),
		Tasks:               tasks,
		Feed:                feed,
		FeedText:            feed.Labels(),
	}
	for _, inc := range s.Incubations {
		switch inc.Status {
		case models.StatusActive:
			d.ActiveIncubations++
		case models.StatusCompleted:
			d.CompletedIncubations++
		}
	}
	return d, nil
}
