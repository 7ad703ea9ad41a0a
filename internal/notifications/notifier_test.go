package notifications

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"eventscape/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestNotifier(t *testing.T) (*Notifier, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewNotifier(rdb), rdb
}

func TestNotifier_NilRedisIsNoop(t *testing.T) {
	n := NewNotifier(nil)
	assert.NoError(t, n.PublishUser(context.Background(), 1, "test payload"))
	assert.NoError(t, n.Publish(context.Background(), &models.Notification{UserID: 1}))
	assert.NoError(t, n.StartPatternSubscriber(context.Background(), func(string, string) {}))
}

func TestNotifier_PublishReachesUserChannel(t *testing.T) {
	n, rdb := newTestNotifier(t)
	ctx := context.Background()

	sub := rdb.Subscribe(ctx, "notifications:user:7")
	defer func() { _ = sub.Close() }()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	eventID := uint(3)
	require.NoError(t, n.Publish(ctx, &models.Notification{
		ID: 11, UserID: 7, EventID: &eventID, Title: "Registration confirmed", Message: "See you there",
	}))

	select {
	case msg := <-sub.Channel():
		var got models.Notification
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))
		assert.Equal(t, uint(11), got.ID)
		assert.Equal(t, "Registration confirmed", got.Title)
		require.NotNil(t, got.EventID)
		assert.Equal(t, eventID, *got.EventID)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for notification")
	}
}

func TestNotifier_PatternSubscriberStopsOnCancel(t *testing.T) {
	n, _ := newTestNotifier(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	type delivery struct{ channel, payload string }
	got := make(chan delivery, 2)
	require.NoError(t, n.StartPatternSubscriber(ctx, func(channel, payload string) {
		got <- delivery{channel, payload}
	}))

	require.NoError(t, n.PublishUser(ctx, 42, "hello"))
	select {
	case d := <-got:
		assert.Equal(t, "notifications:user:42", d.channel)
		assert.Equal(t, "hello", d.payload)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for pattern delivery")
	}

	cancel()
	time.Sleep(50 * time.Millisecond)
	_ = n.PublishUser(context.Background(), 42, "after cancel")

	select {
	case d := <-got:
		t.Fatalf("unexpected delivery after cancel: %+v", d)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestNotifier_SubscriberRecoversFromPanic(t *testing.T) {
	n, _ := newTestNotifier(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	calls := make(chan string, 2)
	require.NoError(t, n.StartPatternSubscriber(ctx, func(_ string, payload string) {
		calls <- payload
		if payload == "boom" {
			panic("handler failure")
		}
	}))

	require.NoError(t, n.PublishUser(ctx, 1, "boom"))
	require.NoError(t, n.PublishUser(ctx, 1, "still alive"))

	for _, want := range []string{"boom", "still alive"} {
		select {
		case got := <-calls:
			assert.Equal(t, want, got)
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for %q", want)
		}
	}
}
