package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/hatchlog/internal/domain/models"
	client "github.com/mamadbah2/hatchlog/pkg/clients/whatsapp"
)

type mockState int

const (
	stateOK mockState = iota
	stateFail
)

type recorderMock struct {
	state   mockState
	actions []string
}

func (m *recorderMock) LogActivity(_ context.Context, userID, action, deviceInfo string) error {
	if m.state == stateFail {
		return errors.New("store down")
	}
	m.actions = append(m.actions, userID+":"+action)
	return nil
}

type clientMock struct {
	state mockState
	sent  []client.SendTextMessageRequest
}

func (m *clientMock) SendTextMessage(_ context.Context, req client.SendTextMessageRequest) (*client.SendTextMessageResponse, error) {
	if m.state == stateFail {
		return nil, errors.New("meta unavailable")
	}
	m.sent = append(m.sent, req)
	return &client.SendTextMessageResponse{}, nil
}

type directoryMock map[string]models.User

func (m directoryMock) User(_ context.Context, id string) (models.User, error) {
	u, ok := m[id]
	if !ok {
		return models.User{}, errors.New("not found")
	}
	return u, nil
}

func TestFeedExpiry(t *testing.T) {
	feed := NewFeed(nil)
	clock := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	feed.now = func() time.Time { return clock }

	require.NoError(t, feed.Notify(context.Background(), models.Notification{UserID: "u1", Message: "first"}))
	clock = clock.Add(3 * time.Second)
	require.NoError(t, feed.Notify(context.Background(), models.Notification{UserID: "u1", Message: "second"}))

	recent := feed.Recent("u1")
	require.Len(t, recent, 2)
	assert.Equal(t, recent[0].CreatedAt.Add(models.NotificationTTL), recent[0].ExpiresAt)

	clock = clock.Add(3 * time.Second)
	recent = feed.Recent("u1")
	require.Len(t, recent, 1)
	assert.Equal(t, "second", recent[0].Message)

	assert.Empty(t, feed.Recent("u2"))
}

func TestFeedListen(t *testing.T) {
	feed := NewFeed(nil)
	ctx, cancel := context.WithCancel(context.Background())
	ch := feed.Listen(ctx, "u1")

	require.NoError(t, feed.Notify(ctx, models.Notification{UserID: "u2", Message: "other user"}))
	require.NoError(t, feed.Notify(ctx, models.Notification{UserID: "u1", Message: "mine"}))

	select {
	case n := <-ch:
		assert.Equal(t, "mine", n.Message)
	case <-time.After(time.Second):
		t.Fatal("notification not delivered")
	}

	cancel()
	require.Eventually(t, func() bool {
		_, ok := <-ch
		return !ok
	}, time.Second, 10*time.Millisecond)
}

func TestMulti(t *testing.T) {
	ok := &recorderMock{}
	failing := &recorderMock{state: stateFail}
	m := Multi{Audit{Recorder: ok}, nil, Audit{Recorder: failing}}

	err := m.Notify(context.Background(), models.Notification{UserID: "u1", Message: "Feeding record added successfully!"})
	assert.Error(t, err)
	assert.Equal(t, []string{"u1:Feeding record added successfully!"}, ok.actions)
}

func TestAuditSkipsAnonymous(t *testing.T) {
	rec := &recorderMock{}
	require.NoError(t, Audit{Recorder: rec}.Notify(context.Background(), models.Notification{Message: "x"}))
	assert.Empty(t, rec.actions)
}

func TestWhatsApp(t *testing.T) {
	users := directoryMock{
		"u1": {ID: "u1", Phone: "+224620000000"},
		"u2": {ID: "u2"},
	}
	ctx := context.Background()

	t.Run("alerts are sent", func(t *testing.T) {
		c := &clientMock{}
		w := NewWhatsApp(c, users, nil)
		require.NoError(t, w.Notify(ctx, models.Notification{UserID: "u1", Kind: models.NotificationAlert, Message: `Hatching day for "Spring"!`}))
		require.Len(t, c.sent, 1)
		assert.Equal(t, "224620000000", c.sent[0].To)
	})

	t.Run("info stays in app", func(t *testing.T) {
		c := &clientMock{}
		w := NewWhatsApp(c, users, nil)
		require.NoError(t, w.Notify(ctx, models.Notification{UserID: "u1", Kind: models.NotificationInfo, Message: "saved"}))
		assert.Empty(t, c.sent)
	})

	t.Run("no phone", func(t *testing.T) {
		c := &clientMock{}
		w := NewWhatsApp(c, users, nil)
		require.NoError(t, w.Notify(ctx, models.Notification{UserID: "u2", Kind: models.NotificationAlert, Message: "x"}))
		assert.Empty(t, c.sent)
	})

	t.Run("send failure", func(t *testing.T) {
		w := NewWhatsApp(&clientMock{state: stateFail}, users, nil)
		assert.Error(t, w.Notify(ctx, models.Notification{UserID: "u1", Kind: models.NotificationAlert, Message: "x"}))
	})

	t.Run("unknown user", func(t *testing.T) {
		w := NewWhatsApp(&clientMock{}, users, nil)
		assert.Error(t, w.Notify(ctx, models.Notification{UserID: "ghost", Kind: models.NotificationAlert, Message: "x"}))
	})
}

func TestNotifierFunc(t *testing.T) {
	var got string
	f := NotifierFunc(func(_ context.Context, n models.Notification) error {
		got = n.Message
		return nil
	})
	require.NoError(t, f.Notify(context.Background(), models.Notification{Message: "hello"}))
	assert.Equal(t, "hello", got)
}
