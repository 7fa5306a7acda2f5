package notify

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoChannelDelivers(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pub, ps := NewGoChannel(nil)
	defer pub.Close()

	msgs, err := ps.Subscribe(ctx, TopicQuiz)
	require.NoError(t, err)

	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	err = pub.Notify(ctx, Event{
		Topic:     TopicQuiz,
		StudentID: "s1",
		ModuleID:  "intro_to_ai",
		At:        at,
		Decision:  map[string]any{"outcome": "pass"},
	})
	require.NoError(t, err)

	select {
	case msg := <-msgs:
		msg.Ack()
		assert.Equal(t, "s1", msg.Metadata.Get("student_id"))
		assert.Equal(t, "intro_to_ai", msg.Metadata.Get("module_id"))

		ev, err := Decode(msg)
		require.NoError(t, err)
		assert.NotEmpty(t, ev.ID)
		assert.Equal(t, msg.UUID, ev.ID)
		assert.True(t, ev.At.Equal(at))
		assert.Equal(t, "pass", ev.Decision.(map[string]any)["outcome"])
	case <-ctx.Done():
		t.Fatal("timed out waiting for event")
	}
}

func TestDiscard(t *testing.T) {
	var n Notifier = Discard{}
	assert.NoError(t, n.Notify(context.Background(), Event{Topic: TopicModule}))
	assert.NoError(t, n.Close())
}

func TestHubFansOutPerStudent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pub, ps := NewGoChannel(nil)
	defer pub.Close()

	hub := NewHub(nil)
	require.NoError(t, hub.Start(ctx, ps))

	mine := hub.Subscribe("s1")
	other := hub.Subscribe("s2")
	require.NotNil(t, mine)

	require.NoError(t, pub.Notify(ctx, Event{Topic: TopicModule, StudentID: "s1", ModuleID: "python_basics", At: time.Now()}))

	select {
	case ev := <-mine.Events():
		assert.Equal(t, TopicModule, ev.Topic)
		assert.Equal(t, "python_basics", ev.ModuleID)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")
	}

	select {
	case ev := <-other.Events():
		t.Fatalf("s2 received an event for %s", ev.StudentID)
	case <-time.After(50 * time.Millisecond):
	}

	hub.Unsubscribe(other)
	hub.Unsubscribe(other)
	_, open := <-other.Events()
	assert.False(t, open)

	cancel()
	select {
	case _, open := <-mine.Events():
		assert.False(t, open)
	case <-time.After(5 * time.Second):
		t.Fatal("hub did not stop")
	}
	assert.Nil(t, hub.Subscribe("s1"))
}

func TestHubBroadcastDropsWhenFull(t *testing.T) {
	hub := NewHub(nil)
	c := hub.Subscribe("s1")
	for i := 0; i < clientBuffer+5; i++ {
		hub.Broadcast(Event{Topic: TopicQuiz, StudentID: "s1"})
	}
	assert.Len(t, c.Events(), clientBuffer)
}
