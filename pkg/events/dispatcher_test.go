package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherDeliversToSubscriber(t *testing.T) {
	d := NewDispatcher("notes_events")
	defer d.Close()

	events, unsubscribe, err := d.Subscribe(context.Background())
	require.NoError(t, err)
	defer unsubscribe()

	d.Publish(NewNoteEvent(TypeNoteCreated, "note-1", "user-1"))

	select {
	case evt := <-events:
		assert.Equal(t, TypeNoteCreated, evt.EventType())
		assert.Equal(t, "note-1", evt.Payload()["note_id"])
		assert.Equal(t, "user-1", evt.Payload()["user_id"])
	case <-time.After(2 * time.Second):
		t.Fatal("expected event was not delivered")
	}
}

func TestDispatcherFansOutToAllSubscribers(t *testing.T) {
	d := NewDispatcher("notes_events")
	defer d.Close()

	first, stopFirst, err := d.Subscribe(context.Background())
	require.NoError(t, err)
	defer stopFirst()

	second, stopSecond, err := d.Subscribe(context.Background())
	require.NoError(t, err)
	defer stopSecond()

	d.Publish(NewNoteEvent(TypeNoteDeleted, "note-9", "user-1"))

	for _, ch := range []<-chan BaseEvent{first, second} {
		select {
		case evt := <-ch:
			assert.Equal(t, TypeNoteDeleted, evt.EventType())
		case <-time.After(2 * time.Second):
			t.Fatal("subscriber did not receive the event")
		}
	}
}

func TestDispatcherUnsubscribeClosesChannel(t *testing.T) {
	d := NewDispatcher("notes_events")
	defer d.Close()

	events, unsubscribe, err := d.Subscribe(context.Background())
	require.NoError(t, err)

	unsubscribe()

	select {
	case _, open := <-events:
		assert.False(t, open)
	case <-time.After(2 * time.Second):
		t.Fatal("channel was not closed after unsubscribe")
	}
}
