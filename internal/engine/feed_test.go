package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/hatchlog/internal/domain/models"
)

func TestFeedSummary(t *testing.T) {
	now := day(2024, 3, 13).Add(15 * time.Hour)

	t.Run("windows", func(t *testing.T) {
		s := &Snapshot{Feedings: []models.Feeding{
			feeding("today", day(2024, 3, 13).Add(7*time.Hour), 2.0),
			feeding("week", day(2024, 3, 10), 1.5),
			feeding("lastMonth", day(2024, 2, 28), 5.0),
		}}
		got, err := FeedSummary(s, now)
		require.NoError(t, err)
		assert.InDelta(t, 2.0, got.Daily, 1e-9)
		assert.InDelta(t, 3.5, got.Weekly, 1e-9)
		assert.InDelta(t, 3.5, got.Monthly, 1e-9)
	})

	t.Run("month start before week start", func(t *testing.T) {
		s := &Snapshot{Feedings: []models.Feeding{feeding("early", day(2024, 3, 2), 4)}}
		got, err := FeedSummary(s, now)
		require.NoError(t, err)
		assert.Zero(t, got.Weekly)
		assert.InDelta(t, 4.0, got.Monthly, 1e-9)
	})

	t.Run("future dated counts", func(t *testing.T) {
		s := &Snapshot{Feedings: []models.Feeding{feeding("future", day(2024, 3, 20), 1)}}
		got, err := FeedSummary(s, now)
		require.NoError(t, err)
		assert.Zero(t, got.Daily)
		assert.InDelta(t, 1.0, got.Weekly, 1e-9)
		assert.InDelta(t, 1.0, got.Monthly, 1e-9)
	})

	t.Run("empty", func(t *testing.T) {
		got, err := FeedSummary(&Snapshot{}, now)
		require.NoError(t, err)
		assert.Equal(t, FeedTotals{}, got)
		assert.Equal(t, "0.00 kg", got.Labels()["daily"])
	})
}

func TestFormatKg(t *testing.T) {
	assert.Equal(t, "3.50 kg", FormatKg(3.5))
	assert.Equal(t, "0.33 kg", FormatKg(1.0/3))
}
