package reporting

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/hatchlog/internal/domain/models"
	"github.com/mamadbah2/hatchlog/internal/engine"
)

type fakeViews struct {
	tasks []engine.Task
	feed  engine.FeedTotals
	board engine.IncubationBoard
	meds  []engine.MedicationView
	err   error
}

func (f fakeViews) TodayTasks() ([]engine.Task, error) { return f.tasks, f.err }
func (f fakeViews) FeedSummary() (engine.FeedTotals, error) { return f.feed, f.err }
func (f fakeViews) Incubations() (engine.IncubationBoard, error) { return f.board, f.err }
func (f fakeViews) Medications() ([]engine.MedicationView, error) {
	return f.meds, f.err
}

func TestTasksSummary(t *testing.T) {
	svc := NewService(nil)

	t.Run("high priority first", func(t *testing.T) {
		got, err := svc.TasksSummary(fakeViews{tasks: []engine.Task{
			{Message: `Turn eggs for "A" (3x today)`, Priority: engine.PriorityMedium},
			{Message: `Hatching day for "B"!`, Priority: engine.PriorityHigh},
		}})
		require.NoError(t, err)
		assert.Equal(t, "Today's tasks (2):\n! Hatching day for \"B\"!\n- Turn eggs for \"A\" (3x today)", got)
	})

	t.Run("empty", func(t *testing.T) {
		got, err := svc.TasksSummary(fakeViews{})
		require.NoError(t, err)
		assert.Contains(t, got, "nothing to do")
	})

	t.Run("error wrapped", func(t *testing.T) {
		boom := errors.New("boom")
		_, err := svc.TasksSummary(fakeViews{err: boom})
		assert.ErrorIs(t, err, boom)
	})
}

func TestFeedReport(t *testing.T) {
	got, err := NewService(nil).FeedReport(fakeViews{feed: engine.FeedTotals{Daily: 2.5, Weekly: 10, Monthly: 31.25}})
	require.NoError(t, err)
	assert.Equal(t, "Feed used:\nToday: 2.50 kg\nThis week: 10.00 kg\nThis month: 31.25 kg", got)
}

func TestHatchReport(t *testing.T) {
	svc := NewService(nil)

	t.Run("active cards", func(t *testing.T) {
		got, err := svc.HatchReport(fakeViews{board: engine.IncubationBoard{Active: []engine.IncubationCard{{
			BatchName:     "Spring",
			EggCount:      24,
			Breed:         "Sussex",
			DaysLeftLabel: "2 days left",
			Progress:      90,
			HatchDateText: "Jan 22, 2024",
		}}}})
		require.NoError(t, err)
		assert.Equal(t, "Active incubations (1):\n- Spring (24 eggs, Sussex): 2 days left, 90%, hatch Jan 22, 2024", got)
	})

	t.Run("none active", func(t *testing.T) {
		got, err := svc.HatchReport(fakeViews{board: engine.IncubationBoard{History: make([]engine.IncubationCard, 2)}})
		require.NoError(t, err)
		assert.Equal(t, "No active incubations. 2 completed.", got)
	})
}

func TestMedsReport(t *testing.T) {
	svc := NewService(nil)

	got, err := svc.MedsReport(fakeViews{meds: []engine.MedicationView{
		{Medication: models.Medication{Name: "Vitamins"}, Urgency: engine.MedicationUrgency{Schedule: "Jan 25, 2024", Label: "In 3 days"}},
		{Medication: models.Medication{Name: "Dewormer"}, Urgency: engine.MedicationUrgency{Schedule: "Not scheduled"}},
	}})
	require.NoError(t, err)
	assert.Equal(t, "Medications:\n- Vitamins, next: Jan 25, 2024 (In 3 days)\n- Dewormer, next: Not scheduled", got)

	empty, err := svc.MedsReport(fakeViews{})
	require.NoError(t, err)
	assert.Equal(t, "No medications recorded.", empty)
}
