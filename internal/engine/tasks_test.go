package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/hatchlog/internal/domain/models"
)

func TestTodayTasksTurningWindow(t *testing.T) {
	start := day(2024, 1, 1)
	inc := incubation("a", "Batch A", start)
	turn := `Turn eggs for "Batch A" (3x today)`

	for passed := 0; passed <= 25; passed++ {
		now := start.AddDate(0, 0, passed).Add(9 * time.Hour)
		s := &Snapshot{
			Incubations: []models.Incubation{inc},
			Feedings:    []models.Feeding{feeding("f", now.AddDate(0, 0, -1), 1)},
		}
		tasks, err := TodayTasks(s, now)
		require.NoError(t, err)
		if passed < models.TurningDays {
			assert.Contains(t, messages(tasks), turn, "day %d", passed)
		} else {
			assert.NotContains(t, messages(tasks), turn, "day %d", passed)
		}
	}
}

func TestTodayTasksSkipsCompleted(t *testing.T) {
	inc := Complete(incubation("a", "A", day(2024, 1, 1)))
	now := day(2024, 1, 22).Add(8 * time.Hour)
	s := &Snapshot{
		Incubations: []models.Incubation{inc},
		Feedings:    []models.Feeding{feeding("f", day(2024, 1, 21), 1)},
	}
	tasks, err := TodayTasks(s, now)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestTodayTasksFeedingReminder(t *testing.T) {
	now := day(2024, 3, 11).Add(10 * time.Hour)
	s := &Snapshot{Feedings: []models.Feeding{feeding("old", day(2024, 3, 9), 2.5)}}

	tasks, err := TodayTasks(s, now)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, Task{Category: CategoryFeeding, Message: "Record today's feeding", Priority: PriorityMedium}, tasks[0])

	s.Feedings = append(s.Feedings, feeding("yesterday", day(2024, 3, 10).Add(18*time.Hour), 2.5))
	tasks, err = TodayTasks(s, now)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestTodayTasksMedicationIgnoresTimeOfDay(t *testing.T) {
	due := day(2024, 5, 4).Add(23*time.Hour + 59*time.Minute)
	now := day(2024, 5, 4).Add(time.Minute)
	s := &Snapshot{
		Medications: []models.Medication{medication("m", "Vitamin B", &due)},
		Feedings:    []models.Feeding{feeding("f", day(2024, 5, 3), 1)},
	}
	tasks, err := TodayTasks(s, now)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, `Give "Vitamin B" medication today`, tasks[0].Message)
	assert.Equal(t, PriorityHigh, tasks[0].Priority)
}

func TestTodayTasksOrdering(t *testing.T) {
	now := day(2024, 1, 22).Add(7 * time.Hour)
	due := day(2024, 1, 22).Add(12 * time.Hour)
	s := &Snapshot{
		Incubations: []models.Incubation{
			incubation("a", "Hatching", day(2024, 1, 1)),
			incubation("b", "Fresh", day(2024, 1, 20)),
		},
		Medications: []models.Medication{medication("m", "Coccidiostat", &due)},
	}

	tasks, err := TodayTasks(s, now)
	require.NoError(t, err)
	assert.Equal(t, []string{
		`Hatching day for "Hatching"!`,
		`Turn eggs for "Fresh" (3x today)`,
		`Give "Coccidiostat" medication today`,
		"Record today's feeding",
	}, messages(tasks))
	assert.Equal(t, PriorityHigh, tasks[0].Priority)
}

func TestTodayTasksRejectsBadInput(t *testing.T) {
	_, err := TodayTasks(nil, time.Now())
	assert.ErrorIs(t, err, ErrNilSnapshot)

	_, err = TodayTasks(&Snapshot{}, time.Time{})
	assert.ErrorIs(t, err, ErrZeroReference)
}

func TestDueToday(t *testing.T) {
	now := day(2024, 1, 22).Add(7 * time.Hour)
	due := day(2024, 1, 22).Add(20 * time.Hour)
	later := day(2024, 1, 23)
	s := &Snapshot{
		Incubations: []models.Incubation{
			incubation("a", "Hatching", day(2024, 1, 1)),
			incubation("b", "Turning", day(2024, 1, 15)),
			Complete(incubation("c", "Done", day(2024, 1, 1))),
		},
		Medications: []models.Medication{
			medication("m1", "Vitamin B", &due),
			medication("m2", "Later", &later),
			medication("m3", "Unscheduled", nil),
		},
	}

	alerts, err := DueToday(s, now)
	require.NoError(t, err)
	require.Len(t, alerts, 2)

	assert.Equal(t, "incubation:a:2024-01-22", alerts[0].Key)
	assert.Equal(t, `Hatching day for "Hatching"!`, alerts[0].Message)
	assert.Equal(t, "medication:m1:2024-01-22", alerts[1].Key)
	assert.Equal(t, `Medication due today: "Vitamin B"`, alerts[1].Message)
}

func TestDueTodayUsesReferenceLocation(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*3600)
	due := time.Date(2024, 5, 4, 22, 0, 0, 0, time.UTC)
	s := &Snapshot{Medications: []models.Medication{medication("m", "Late dose", &due)}}

	alerts, err := DueToday(s, time.Date(2024, 5, 5, 9, 0, 0, 0, loc))
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "medication:m:2024-05-05", alerts[0].Key)

	alerts, err = DueToday(s, time.Date(2024, 5, 4, 9, 0, 0, 0, loc))
	require.NoError(t, err)
	assert.Empty(t, alerts)
}
