package reporting

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mamadbah2/hatchlog/internal/engine"
)

// Views is the read side of a tracker session used to build summaries.
type Views interface {
	TodayTasks() ([]engine.Task, error)
	FeedSummary() (engine.FeedTotals, error)
	Incubations() (engine.IncubationBoard, error)
	Medications() ([]engine.MedicationView, error)
}

// HelpText lists the supported commands.
const HelpText = "Hatchlog commands:\n" +
	"/tasks - today's tasks\n" +
	"/feed - feed used today, this week and this month\n" +
	"/hatch - active incubations and days left\n" +
	"/meds - medication schedule"

// Service renders engine views as short plain-text summaries for WhatsApp.
type Service struct {
	logger *zap.Logger
}

// NewService wires a new reporting service instance.
func NewService(logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{logger: logger}
}

// TasksSummary lists today's tasks, high priority first.
func (s *Service) TasksSummary(v Views) (string, error) {
	tasks, err := v.TodayTasks()
	if err != nil {
		return "", fmt.Errorf("today tasks: %w", err)
	}
	if len(tasks) == 0 {
		return "Today's tasks: nothing to do today.", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Today's tasks (%d):", len(tasks))
	for _, priority := range []engine.Priority{engine.PriorityHigh, engine.PriorityMedium} {
		for _, task := range tasks {
			if task.Priority != priority {
				continue
			}
			marker := "-"
			if priority == engine.PriorityHigh {
				marker = "!"
			}
			fmt.Fprintf(&b, "\n%s %s", marker, task.Message)
		}
	}
	return b.String(), nil
}

// FeedReport prints the daily, weekly and monthly feed totals.
func (s *Service) FeedReport(v Views) (string, error) {
	totals, err := v.FeedSummary()
	if err != nil {
		return "", fmt.Errorf("feed summary: %w", err)
	}
	return fmt.Sprintf("Feed used:\nToday: %s\nThis week: %s\nThis month: %s",
		engine.FormatKg(totals.Daily), engine.FormatKg(totals.Weekly), engine.FormatKg(totals.Monthly)), nil
}

// HatchReport lists active incubations with progress and days left.
func (s *Service) HatchReport(v Views) (string, error) {
	board, err := v.Incubations()
	if err != nil {
		return "", fmt.Errorf("incubations: %w", err)
	}
	if len(board.Active) == 0 {
		return fmt.Sprintf("No active incubations. %d completed.", len(board.History)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active incubations (%d):", len(board.Active))
	for _, card := range board.Active {
		fmt.Fprintf(&b, "\n- %s (%d eggs, %s): %s, %d%%, hatch %s",
			card.BatchName, card.EggCount, card.Breed, card.DaysLeftLabel, card.Progress, card.HatchDateText)
	}
	return b.String(), nil
}

// MedsReport lists medications in schedule order with their urgency.
func (s *Service) MedsReport(v Views) (string, error) {
	meds, err := v.Medications()
	if err != nil {
		return "", fmt.Errorf("medications: %w", err)
	}
	if len(meds) == 0 {
		return "No medications recorded.", nil
	}

	var b strings.Builder
	b.WriteString("Medications:")
	for _, m := range meds {
		fmt.Fprintf(&b, "\n- %s, next: %s", m.Name, m.Urgency.Schedule)
		if m.Urgency.Label != "" {
			fmt.Fprintf(&b, " (%s)", m.Urgency.Label)
		}
	}
	return b.String(), nil
}
