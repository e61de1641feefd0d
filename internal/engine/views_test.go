package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/hatchlog/internal/domain/models"
)

func TestIncubationCards(t *testing.T) {
	running := incubation("a", "Spring", day(2024, 1, 1))
	running.Breed = "Sussex"
	done := Complete(incubation("b", "Winter", day(2023, 12, 1)))

	board, err := IncubationCards(&Snapshot{Incubations: []models.Incubation{running, done}}, day(2024, 1, 20))
	require.NoError(t, err)
	require.Len(t, board.Active, 1)
	require.Len(t, board.History, 1)

	card := board.Active[0]
	assert.Equal(t, "Sussex", card.Breed)
	assert.Equal(t, "Jan 1, 2024", card.StartDateText)
	assert.Equal(t, "Jan 22, 2024", card.HatchDateText)
	assert.Equal(t, "2 days left", card.DaysLeftLabel)
	assert.Equal(t, 90, card.Progress)

	old := board.History[0]
	assert.Equal(t, "Not specified", old.Breed)
	assert.Equal(t, "Completed", old.DaysLeftLabel)
	assert.Equal(t, 100, old.Progress)
}

func TestFeedingListNewestFirst(t *testing.T) {
	s := &Snapshot{Feedings: []models.Feeding{
		feeding("mid", day(2024, 3, 5), 1),
		feeding("new", day(2024, 3, 9), 2),
		feeding("old", day(2024, 3, 1), 3),
	}}
	views, err := FeedingList(s, day(2024, 3, 10))
	require.NoError(t, err)
	require.Len(t, views, 3)
	assert.Equal(t, "new", views[0].ID)
	assert.Equal(t, "mid", views[1].ID)
	assert.Equal(t, "old", views[2].ID)
	assert.Equal(t, "2.00 kg", views[0].AmountText)
	assert.Equal(t, "Mar 9, 2024", views[0].DateText)
}

func TestBuildDashboard(t *testing.T) {
	now := day(2024, 1, 20).Add(9 * time.Hour)
	next := now.Add(48 * time.Hour)
	s := &Snapshot{
		Incubations: []models.Incubation{
			incubation("a", "Spring", day(2024, 1, 1)),
			incubation("b", "Late", day(2024, 1, 10)),
			Complete(incubation("c", "Done", day(2023, 12, 1))),
		},
		Medications: []models.Medication{medication("m", "Vitamin B", &next)},
		Feedings:    []models.Feeding{feeding("f", day(2024, 1, 20).Add(7*time.Hour), 1.25)},
	}

	d, err := BuildDashboard(s, now)
	require.NoError(t, err)
	assert.Equal(t, 2, d.ActiveIncubations)
	assert.Equal(t, 1, d.CompletedIncubations)
	assert.Equal(t, 1, d.UpcomingMedications)
	assert.InDelta(t, 1.25, d.Feed.Daily, 1e-9)
	assert.Equal(t, "1.25 kg", d.FeedText["daily"])
	assert.Contains(t, messages(d.Tasks), `Turn eggs for "Late" (3x today)`)
	assert.Contains(t, messages(d.Tasks), "Record today's feeding")

	_, err = BuildDashboard(nil, now)
	assert.ErrorIs(t, err, ErrNilSnapshot)
}
