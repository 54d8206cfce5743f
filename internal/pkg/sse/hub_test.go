package sse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_PublishReachesOnlyTargetUser(t *testing.T) {
	hub := NewHub[string](4)

	alice, cleanupAlice := hub.Subscribe("alice")
	defer cleanupAlice()
	bob, cleanupBob := hub.Subscribe("bob")
	defer cleanupBob()

	delivered := hub.Publish("alice", Event[string]{UserID: "alice", Event: "notification", Data: "hello"})
	assert.Equal(t, 1, delivered)

	select {
	case ev := <-alice:
		assert.Equal(t, "hello", ev.Data)
		assert.Equal(t, "notification", ev.Event)
	default:
		t.Fatal("expected event for alice")
	}

	select {
	case <-bob:
		t.Fatal("bob should not receive alice's event")
	default:
	}
}

func TestHub_FullBufferDropsEvent(t *testing.T) {
	hub := NewHub[int](1)
	ch, cleanup := hub.Subscribe("u1")
	defer cleanup()

	assert.Equal(t, 1, hub.Publish("u1", Event[int]{Data: 1}))
	assert.Equal(t, 0, hub.Publish("u1", Event[int]{Data: 2}))

	ev := <-ch
	assert.Equal(t, 1, ev.Data)
}

func TestHub_CleanupIsIdempotent(t *testing.T) {
	hub := NewHub[int](0)
	ch, cleanup := hub.Subscribe("u1")
	_, cleanupOther := hub.Subscribe("u1")
	require.Equal(t, 2, hub.SubscriberCount("u1"))

	cleanup()
	cleanup()

	_, ok := <-ch
	assert.False(t, ok)
	assert.Equal(t, 1, hub.SubscriberCount("u1"))

	cleanupOther()
	assert.Equal(t, 0, hub.TotalSubscribers())
}

func TestHub_Close(t *testing.T) {
	hub := NewHub[int](2)
	ch, cleanup := hub.Subscribe("u1")

	hub.Close()
	_, ok := <-ch
	assert.False(t, ok)
	assert.Equal(t, 0, hub.TotalSubscribers())

	// cleanup after close must not panic on a closed channel
	assert.NotPanics(t, cleanup)

	late, lateCleanup := hub.Subscribe("u2")
	_, ok = <-late
	assert.False(t, ok)
	assert.NotPanics(t, lateCleanup)
	assert.Equal(t, 0, hub.Publish("u2", Event[int]{Data: 1}))
}
