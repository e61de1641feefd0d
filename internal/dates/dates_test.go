package dates

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{"store form", "2024-01-01T10:30:00.000Z", time.Date(2024, 1, 1, 10, 30, 0, 0, time.UTC)},
		{"rfc3339 offset", "2024-01-01T10:30:00+02:00", time.Date(2024, 1, 1, 8, 30, 0, 0, time.UTC)},
		{"date only", "2024-03-10", time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)},
		{"local datetime", "2024-03-10T07:15", time.Date(2024, 3, 10, 7, 15, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got.Time), "got %s", got.Time)
		})
	}

	t.Run("garbage", func(t *testing.T) {
		_, err := Parse("next tuesday")
		assert.Error(t, err)
	})
	t.Run("empty", func(t *testing.T) {
		_, err := Parse("  ")
		assert.Error(t, err)
	})
}

func TestParseInUsesLocationForDateOnly(t *testing.T) {
	loc := time.FixedZone("GMT-3", -3*3600)
	got, err := ParseIn("2024-03-10", loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 10, 3, 0, 0, 0, time.UTC), got.UTC())
}

func TestInstantString(t *testing.T) {
	in := At(time.Date(2024, 1, 22, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "2024-01-22T00:00:00.000Z", in.String())
	assert.Equal(t, "", Instant{}.String())
}

type doc struct {
	Start Instant  `bson:"startDate" json:"startDate"`
	Next  *Instant `bson:"nextSchedule" json:"nextSchedule"`
}

func TestInstantBSON(t *testing.T) {
	start := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)

	t.Run("stored as iso string", func(t *testing.T) {
		raw, err := bson.Marshal(doc{Start: At(start)})
		require.NoError(t, err)

		var m bson.M
		require.NoError(t, bson.Unmarshal(raw, &m))
		assert.Equal(t, "2024-01-01T08:00:00.000Z", m["startDate"])
		assert.Nil(t, m["nextSchedule"])
	})

	t.Run("round trip", func(t *testing.T) {
		raw, err := bson.Marshal(doc{Start: At(start), Next: Ptr(start.Add(48 * time.Hour))})
		require.NoError(t, err)

		var out doc
		require.NoError(t, bson.Unmarshal(raw, &out))
		assert.True(t, start.Equal(out.Start.Time))
		require.NotNil(t, out.Next)
		assert.True(t, start.Add(48*time.Hour).Equal(out.Next.Time))
	})

	t.Run("malformed decodes as absent", func(t *testing.T) {
		raw, err := bson.Marshal(bson.M{"startDate": "not a date", "nextSchedule": nil})
		require.NoError(t, err)

		var out doc
		require.NoError(t, bson.Unmarshal(raw, &out))
		assert.True(t, out.Start.IsZero())
		assert.Nil(t, out.Next)
	})

	t.Run("native datetime accepted", func(t *testing.T) {
		raw, err := bson.Marshal(bson.M{"startDate": start})
		require.NoError(t, err)

		var out doc
		require.NoError(t, bson.Unmarshal(raw, &out))
		assert.True(t, start.Equal(out.Start.Time))
	})
}

func TestInstantJSON(t *testing.T) {
	body, err := json.Marshal(doc{Start: At(time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC))})
	require.NoError(t, err)
	assert.JSONEq(t, `{"startDate":"2024-03-10T00:00:00.000Z","nextSchedule":null}`, string(body))

	var out doc
	require.NoError(t, json.Unmarshal([]byte(`{"startDate":"2024-03-10","nextSchedule":"bogus"}`), &out))
	assert.Equal(t, 10, out.Start.Day())
	require.NotNil(t, out.Next)
	assert.True(t, out.Next.IsZero())
}

func TestSameDayIgnoresTimeOfDay(t *testing.T) {
	due := time.Date(2024, 5, 4, 23, 59, 0, 0, time.UTC)
	now := time.Date(2024, 5, 4, 0, 1, 0, 0, time.UTC)
	assert.True(t, SameDay(due, now))
	assert.False(t, SameDay(due.Add(2*time.Minute), now))
}

func TestSameDayUsesReferenceLocation(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*3600)
	stored := time.Date(2024, 5, 4, 22, 0, 0, 0, time.UTC) // 01:00 on the 5th at UTC+3
	ref := time.Date(2024, 5, 5, 9, 0, 0, 0, loc)
	assert.True(t, SameDay(stored, ref))
}

func TestWeekAndMonthStarts(t *testing.T) {
	wed := time.Date(2024, 3, 13, 15, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), StartOfWeek(wed))
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), StartOfMonth(wed))

	sunday := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), StartOfWeek(sunday))
}

func TestDaysFloorAndCeil(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		to        time.Time
		floor     int
		ceil      int
		describer string
	}{
		{base, 0, 0, "same instant"},
		{base.Add(36 * time.Hour), 1, 2, "a day and a half"},
		{base.Add(48 * time.Hour), 2, 2, "exact days"},
		{base.Add(-10 * time.Hour), -1, 0, "ten hours before"},
		{base.Add(-48 * time.Hour), -2, -2, "two days before"},
	}
	for _, tt := range tests {
		t.Run(tt.describer, func(t *testing.T) {
			assert.Equal(t, tt.floor, DaysFloor(base, tt.to))
			assert.Equal(t, tt.ceil, DaysCeil(base, tt.to))
		})
	}
}

func TestFormatDay(t *testing.T) {
	assert.Equal(t, "Jan 22, 2024", FormatDay(time.Date(2024, 1, 22, 5, 0, 0, 0, time.UTC)))
	assert.Equal(t, "", FormatDay(time.Time{}))
}
