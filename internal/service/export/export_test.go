package export

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/hatchlog/internal/dates"
	"github.com/mamadbah2/hatchlog/internal/domain/models"
	"github.com/mamadbah2/hatchlog/internal/engine"
)

type mockState int

const (
	stateSuccess mockState = iota
	stateReplaceError
	stateAppendError
)

var errSheets = errors.New("sheets unavailable")

type sheetRepoMock struct {
	state    mockState
	replaced map[string][][]interface{}
	appended [][]interface{}
}

func (m *sheetRepoMock) AppendRow(_ context.Context, _ string, values []interface{}) error {
	if m.state == stateAppendError {
		return errSheets
	}
	m.appended = append(m.appended, values)
	return nil
}

func (m *sheetRepoMock) ReplaceRange(_ context.Context, sheetRange string, rows [][]interface{}) error {
	if m.state == stateReplaceError {
		return errSheets
	}
	if m.replaced == nil {
		m.replaced = make(map[string][][]interface{})
	}
	m.replaced[sheetRange] = rows
	return nil
}

type usersStub []models.User

func (u usersStub) Users(context.Context) ([]models.User, error) { return u, nil }

type snapshotsStub struct {
	now   time.Time
	snaps map[string]*engine.Snapshot
}

func (s snapshotsStub) Now() time.Time { return s.now }

func (s snapshotsStub) Snapshot(_ context.Context, userID string) (*engine.Snapshot, error) {
	snap, ok := s.snaps[userID]
	if !ok {
		return nil, errors.New("store down")
	}
	return snap, nil
}

var (
	exportNow = time.Date(2024, 1, 20, 9, 0, 0, 0, time.UTC)
	start     = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
)

func fixture() (usersStub, snapshotsStub) {
	users := usersStub{
		{ID: "u1", Name: "Awa", Email: "awa@example.com"},
		{ID: "u2", Name: "Bala", Email: "bala@example.com"},
	}
	inc := models.NewIncubation("u1", "Spring", start, 24, "Sussex")
	inc.ID = "i1"
	snaps := snapshotsStub{now: exportNow, snaps: map[string]*engine.Snapshot{
		"u1": {
			Incubations: []models.Incubation{inc},
			Medications: []models.Medication{{ID: "m1", UserID: "u1", Name: "Vitamins", DateGiven: dates.At(start), NextSchedule: dates.Ptr(start.AddDate(0, 0, 7))}},
		},
		"u2": {
			Feedings: []models.Feeding{{ID: "f1", UserID: "u2", Date: dates.At(start), FeedType: "Starter", Amount: 2.5}},
		},
	}}
	return users, snaps
}

func TestRun(t *testing.T) {
	ctx := context.Background()

	t.Run("writes every sheet and logs the run", func(t *testing.T) {
		users, snaps := fixture()
		sheets := &sheetRepoMock{}

		res, err := NewService(sheets, users, snaps, nil).Run(ctx)
		require.NoError(t, err)
		assert.Equal(t, Result{Users: 2, Incubations: 1, Medications: 1, Feedings: 1}, res)

		incs := sheets.replaced[IncubationsRange]
		require.Len(t, incs, 2)
		assert.Equal(t, incubationHeader, incs[0])
		assert.Equal(t, []interface{}{"i1", "Awa", "awa@example.com", "Spring", "Sussex", 24, "2024-01-01", "2024-01-22", "active", 2}, incs[1])

		meds := sheets.replaced[MedicationsRange]
		require.Len(t, meds, 2)
		assert.Equal(t, "2024-01-08", meds[1][5])

		feeds := sheets.replaced[FeedingsRange]
		require.Len(t, feeds, 2)
		assert.Equal(t, "Bala", feeds[1][1])
		assert.Equal(t, 2.5, feeds[1][5])

		require.Len(t, sheets.appended, 1)
		assert.Equal(t, []interface{}{"2024-01-20T09:00:00Z", 2, 1, 1, 1, 0}, sheets.appended[0])
	})

	t.Run("unreadable user is skipped and reported", func(t *testing.T) {
		users, snaps := fixture()
		users = append(users, models.User{ID: "ghost"})
		sheets := &sheetRepoMock{}

		res, err := NewService(sheets, users, snaps, nil).Run(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "user ghost")
		assert.Equal(t, 2, res.Users)
		require.Len(t, sheets.appended, 1)
		assert.Equal(t, 1, sheets.appended[0][5])
	})

	t.Run("sheet failure aborts", func(t *testing.T) {
		users, snaps := fixture()
		sheets := &sheetRepoMock{state: stateReplaceError}

		_, err := NewService(sheets, users, snaps, nil).Run(ctx)
		assert.ErrorIs(t, err, errSheets)
		assert.Empty(t, sheets.appended)
	})

	t.Run("log failure is returned", func(t *testing.T) {
		users, snaps := fixture()
		sheets := &sheetRepoMock{state: stateAppendError}

		_, err := NewService(sheets, users, snaps, nil).Run(ctx)
		assert.ErrorIs(t, err, errSheets)
		assert.Len(t, sheets.replaced, 3)
	})
}
