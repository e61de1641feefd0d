package commands_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/hatchlog/internal/domain/models"
	"github.com/mamadbah2/hatchlog/internal/engine"
	"github.com/mamadbah2/hatchlog/internal/repository/store"
	"github.com/mamadbah2/hatchlog/internal/service/commands"
	"github.com/mamadbah2/hatchlog/internal/service/reporting"
)

type mockState int

const (
	stateSuccess mockState = iota
	stateUnknownPhone
	stateStoreError
)

var errStore = errors.New("db error")

type usersMock struct {
	state mockState
	asked []string
}

func (m *usersMock) UserByPhone(_ context.Context, phone string) (models.User, error) {
	m.asked = append(m.asked, phone)
	switch m.state {
	case stateUnknownPhone:
		return models.User{}, store.ErrNotFound
	case stateStoreError:
		return models.User{}, errStore
	default:
		return models.User{ID: "u1", Phone: phone}, nil
	}
}

type viewsStub struct{}

func (viewsStub) TodayTasks() ([]engine.Task, error) {
	return []engine.Task{{Message: "Record today's feeding", Priority: engine.PriorityMedium}}, nil
}
func (viewsStub) FeedSummary() (engine.FeedTotals, error) {
	return engine.FeedTotals{Daily: 1, Weekly: 2, Monthly: 3}, nil
}
func (viewsStub) Incubations() (engine.IncubationBoard, error) {
	return engine.IncubationBoard{}, nil
}
func (viewsStub) Medications() ([]engine.MedicationView, error) {
	return nil, nil
}

func newDispatcher(users commands.UserLookup, opened *[]string) *commands.Service {
	source := func(_ context.Context, userID string) (reporting.Views, error) {
		*opened = append(*opened, userID)
		return viewsStub{}, nil
	}
	return commands.NewService(users, source, reporting.NewService(nil), nil)
}

func TestHandleCommand(t *testing.T) {
	ctx := context.Background()

	t.Run("tasks for a known sender", func(t *testing.T) {
		var opened []string
		users := &usersMock{state: stateSuccess}
		reply, err := newDispatcher(users, &opened).HandleCommand(ctx, models.ParseCommand("/tasks"), "22500001")
		require.NoError(t, err)
		assert.Equal(t, "Today's tasks (1):\n- Record today's feeding", reply)
		assert.Equal(t, []string{"22500001"}, users.asked)
		assert.Equal(t, []string{"u1"}, opened)
	})

	t.Run("feed", func(t *testing.T) {
		var opened []string
		reply, err := newDispatcher(&usersMock{}, &opened).HandleCommand(ctx, models.ParseCommand("feed"), "1")
		require.NoError(t, err)
		assert.Contains(t, reply, "This month: 3.00 kg")
	})

	t.Run("hatch and meds", func(t *testing.T) {
		var opened []string
		d := newDispatcher(&usersMock{}, &opened)

		reply, err := d.HandleCommand(ctx, models.ParseCommand("/hatch"), "1")
		require.NoError(t, err)
		assert.Equal(t, "No active incubations. 0 completed.", reply)

		reply, err = d.HandleCommand(ctx, models.ParseCommand("/meds"), "1")
		require.NoError(t, err)
		assert.Equal(t, "No medications recorded.", reply)
	})

	t.Run("help needs no account", func(t *testing.T) {
		var opened []string
		users := &usersMock{state: stateUnknownPhone}
		reply, err := newDispatcher(users, &opened).HandleCommand(ctx, models.ParseCommand("/help"), "1")
		require.NoError(t, err)
		assert.Equal(t, reporting.HelpText, reply)
		assert.Empty(t, users.asked)
	})

	t.Run("unknown command falls back to help", func(t *testing.T) {
		var opened []string
		reply, err := newDispatcher(&usersMock{}, &opened).HandleCommand(ctx, models.ParseCommand("/eggs 12"), "1")
		require.NoError(t, err)
		assert.Contains(t, reply, "Unknown command.")
		assert.Contains(t, reply, "/meds")
	})

	t.Run("unsupported type", func(t *testing.T) {
		var opened []string
		_, err := newDispatcher(&usersMock{}, &opened).HandleCommand(ctx, models.Command{Type: "sales"}, "1")
		assert.ErrorIs(t, err, commands.ErrUnsupportedCommand)
	})

	t.Run("unknown sender", func(t *testing.T) {
		var opened []string
		_, err := newDispatcher(&usersMock{state: stateUnknownPhone}, &opened).HandleCommand(ctx, models.ParseCommand("/tasks"), "1")
		assert.ErrorIs(t, err, commands.ErrUnknownSender)
		assert.Empty(t, opened)
	})

	t.Run("store error", func(t *testing.T) {
		var opened []string
		_, err := newDispatcher(&usersMock{state: stateStoreError}, &opened).HandleCommand(ctx, models.ParseCommand("/tasks"), "1")
		assert.ErrorIs(t, err, errStore)
		assert.NotErrorIs(t, err, commands.ErrUnknownSender)
	})
}
