package sse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_PublishReachesOnlySession(t *testing.T) {
	hub := NewHub(4)

	mine, cleanupMine := hub.Subscribe("emp-1")
	defer cleanupMine()
	other, cleanupOther := hub.Subscribe("emp-2")
	defer cleanupOther()

	hub.Publish("emp-1", Event{Event: "attendance.updated", Data: "x"})

	require.Len(t, mine, 1)
	got := <-mine
	assert.Equal(t, "emp-1", got.SessionID)
	assert.Equal(t, "attendance.updated", got.Event)
	assert.Len(t, other, 0)
}

func TestHub_FullChannelDoesNotBlock(t *testing.T) {
	hub := NewHub(1)
	ch, cleanup := hub.Subscribe("emp-1")
	defer cleanup()

	hub.Publish("emp-1", Event{Event: "a"})
	hub.Publish("emp-1", Event{Event: "b"})

	assert.Len(t, ch, 1)
	assert.Equal(t, "a", (<-ch).Event)
}

func TestHub_CleanupRemovesSubscriber(t *testing.T) {
	hub := NewHub(0)
	ch, cleanup := hub.Subscribe("emp-1")
	assert.Equal(t, 1, hub.SubscriberCount("emp-1"))

	cleanup()
	cleanup()

	assert.Equal(t, 0, hub.SubscriberCount("emp-1"))
	_, open := <-ch
	assert.False(t, open)
}
