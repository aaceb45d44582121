package nats

import (
	"encoding/json"
	"testing"
	"time"

	"notable-be/pkg/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubjectNaming(t *testing.T) {
	assert.Equal(t, "notes.created", subjectFor(events.TypeNoteCreated))
	assert.Equal(t, "notes.updated", subjectFor(events.TypeNoteUpdated))
	assert.Equal(t, "notes.deleted", subjectFor(events.TypeNoteDeleted))

	// Every subject lands under the stream's subject filter.
	for _, typ := range []string{events.TypeNoteCreated, events.TypeNoteUpdated, events.TypeNoteDeleted} {
		assert.Contains(t, subjectFor(typ), subjectPrefix+".")
	}
}

func TestWireEventCarriesOwnerAndTimestamp(t *testing.T) {
	evt := events.NewNoteEvent(events.TypeNoteUpdated, "note-1", "user-1")

	raw, err := json.Marshal(wireEvent{
		Type:       evt.EventType(),
		Data:       evt.Payload(),
		OccurredAt: evt.Timestamp(),
	})
	require.NoError(t, err)

	var decoded struct {
		Type       string            `json:"type"`
		Data       map[string]string `json:"data"`
		OccurredAt time.Time         `json:"occurred_at"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Equal(t, events.TypeNoteUpdated, decoded.Type)
	assert.Equal(t, "note-1", decoded.Data["note_id"])
	assert.Equal(t, "user-1", decoded.Data["user_id"])
	assert.WithinDuration(t, time.Now(), decoded.OccurredAt, time.Minute)
}
