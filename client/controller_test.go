package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedUpdate struct {
	ID    string
	Patch Patch
}

// fakeAPI scripts server behavior: gates block requests mid-flight and fail
// flags turn them into errors.
type fakeAPI struct {
	mu      sync.Mutex
	nextID  int
	notes   []Note
	updates []recordedUpdate
	deletes []string

	failCreate bool
	failUpdate bool
	failDelete bool

	createGate chan struct{}
	updateGate chan struct{}
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{}
}

func (f *fakeAPI) ListNotes(ctx context.Context) ([]Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Note(nil), f.notes...), nil
}

func (f *fakeAPI) CreateNote(ctx context.Context, input CreateInput) (Note, error) {
	if f.createGate != nil {
		<-f.createGate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreate {
		return Note{}, errors.New("create rejected")
	}
	f.nextID++
	now := time.Now()
	note := Note{
		ID:        fmt.Sprintf("srv-%d", f.nextID),
		Title:     input.Title,
		Content:   input.Content,
		Tags:      input.Tags,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if note.Content == nil {
		note.Content = json.RawMessage(`[]`)
	}
	if note.Tags == nil {
		note.Tags = []string{}
	}
	return note, nil
}

func (f *fakeAPI) UpdateNote(ctx context.Context, id string, patch Patch) (Note, error) {
	if f.updateGate != nil {
		<-f.updateGate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUpdate {
		return Note{}, errors.New("update rejected")
	}
	f.updates = append(f.updates, recordedUpdate{ID: id, Patch: patch})
	note := Note{ID: id, UpdatedAt: time.Now(), Tags: []string{}, Content: json.RawMessage(`[]`)}
	if patch.Title != nil {
		note.Title = *patch.Title
	}
	if patch.Content != nil {
		note.Content = patch.Content
	}
	if patch.Tags != nil {
		note.Tags = *patch.Tags
	}
	return note, nil
}

func (f *fakeAPI) DeleteNote(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failDelete {
		return errors.New("delete rejected")
	}
	f.deletes = append(f.deletes, id)
	return nil
}

func (f *fakeAPI) updateCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.updates)
}

func (f *fakeAPI) deletedIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deletes...)
}

func newTestController(api API) *Controller {
	return NewController(api,
		WithDebounceWindow(20*time.Millisecond),
		WithStatusReverts(50*time.Millisecond, 50*time.Millisecond),
	)
}

func strPtr(s string) *string { return &s }

func TestCreateNoteIsSynchronouslyVisible(t *testing.T) {
	api := newFakeAPI()
	api.createGate = make(chan struct{})
	c := newTestController(api)

	created := c.CreateNote(CreateInput{Title: "Groceries", Tags: []string{"errand"}})

	// The entry is in the list before the server has answered.
	notes := c.Notes()
	require.Len(t, notes, 1)
	assert.Equal(t, created.ID, notes[0].ID)
	assert.Equal(t, "Groceries", notes[0].Title)
	assert.Equal(t, []string{"errand"}, notes[0].Tags)
	assert.JSONEq(t, `[]`, string(notes[0].Content))

	close(api.createGate)
	assert.Eventually(t, func() bool {
		return c.Notes()[0].ID == "srv-1"
	}, 2*time.Second, 10*time.Millisecond, "placeholder id should be replaced by the server id")
}

func TestCreateNotePreservesListPosition(t *testing.T) {
	api := newFakeAPI()
	c := newTestController(api)

	first := c.CreateNote(CreateInput{Title: "first"})
	second := c.CreateNote(CreateInput{Title: "second"})

	notes := c.Notes()
	require.Len(t, notes, 2)
	assert.Equal(t, second.ID, notes[0].ID)
	assert.Equal(t, first.ID, notes[1].ID)

	assert.Eventually(t, func() bool {
		notes := c.Notes()
		return notes[0].Title == "second" && notes[1].Title == "first" &&
			notes[0].ID != second.ID && notes[1].ID != first.ID
	}, 2*time.Second, 10*time.Millisecond, "confirmation must not reorder the list")
}

func TestFailedCreateRemovesPlaceholder(t *testing.T) {
	api := newFakeAPI()
	api.failCreate = true
	c := newTestController(api)

	created := c.CreateNote(CreateInput{Title: "doomed"})
	c.SelectNote(created.ID)

	assert.Eventually(t, func() bool {
		return len(c.Notes()) == 0
	}, 2*time.Second, 10*time.Millisecond)

	_, selected := c.SelectedNote()
	assert.False(t, selected, "selection should be cleared with the purged placeholder")
}

func TestFailedCreateClearsSelectionInsteadOfMovingIt(t *testing.T) {
	api := newFakeAPI()
	c := newTestController(api)

	c.CreateNote(CreateInput{Title: "survivor"})
	assert.Eventually(t, func() bool {
		return c.Notes()[0].ID == "srv-1"
	}, 2*time.Second, 10*time.Millisecond)

	api.mu.Lock()
	api.failCreate = true
	api.mu.Unlock()

	doomed := c.CreateNote(CreateInput{Title: "doomed"})
	c.SelectNote(doomed.ID)

	assert.Eventually(t, func() bool {
		return len(c.Notes()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	// The other note is still there, but the focus must not jump to it.
	assert.Equal(t, "survivor", c.Notes()[0].Title)
	_, selected := c.SelectedNote()
	assert.False(t, selected, "selection is cleared, not moved to an unrelated note")
}

func TestCreateNoteSelectsTheNewNote(t *testing.T) {
	api := newFakeAPI()
	api.createGate = make(chan struct{})
	c := newTestController(api)

	created := c.CreateNote(CreateInput{Title: "fresh"})

	selected, ok := c.SelectedNote()
	require.True(t, ok, "a new note is selected immediately")
	assert.Equal(t, created.ID, selected.ID)

	close(api.createGate)
	assert.Eventually(t, func() bool {
		selected, ok := c.SelectedNote()
		return ok && selected.ID == "srv-1"
	}, 2*time.Second, 10*time.Millisecond, "selection follows the note across confirmation")
}

func TestRapidUpdatesCoalesceIntoOneRequest(t *testing.T) {
	api := newFakeAPI()
	c := newTestController(api)

	created := c.CreateNote(CreateInput{Title: "draft"})
	assert.Eventually(t, func() bool {
		return c.Notes()[0].ID == "srv-1"
	}, 2*time.Second, 10*time.Millisecond)

	c.UpdateNote(created.ID, Patch{Title: strPtr("draft v2")})
	c.UpdateNote(created.ID, Patch{Content: json.RawMessage(`[{"type":"paragraph"}]`)})

	assert.Eventually(t, func() bool {
		return api.updateCount() == 1
	}, 2*time.Second, 10*time.Millisecond)

	// Quiet period: no second request appears.
	time.Sleep(100 * time.Millisecond)
	require.Equal(t, 1, api.updateCount())

	api.mu.Lock()
	sent := api.updates[0]
	api.mu.Unlock()
	require.NotNil(t, sent.Patch.Title)
	assert.Equal(t, "draft v2", *sent.Patch.Title)
	assert.JSONEq(t, `[{"type":"paragraph"}]`, string(sent.Patch.Content))
}

func TestUpdatesToDifferentNotesDebounceIndependently(t *testing.T) {
	api := newFakeAPI()
	c := newTestController(api)

	a := c.CreateNote(CreateInput{Title: "a"})
	b := c.CreateNote(CreateInput{Title: "b"})
	assert.Eventually(t, func() bool {
		notes := c.Notes()
		return notes[0].ID != b.ID && notes[1].ID != a.ID
	}, 2*time.Second, 10*time.Millisecond)

	c.UpdateNote(a.ID, Patch{Title: strPtr("a2")})
	c.UpdateNote(b.ID, Patch{Title: strPtr("b2")})

	assert.Eventually(t, func() bool {
		return api.updateCount() == 2
	}, 2*time.Second, 10*time.Millisecond, "each note flushes its own debounce window")
}

func TestUpdateFailureKeepsLocalEdit(t *testing.T) {
	api := newFakeAPI()
	c := newTestController(api)

	created := c.CreateNote(CreateInput{Title: "keep me"})
	assert.Eventually(t, func() bool {
		return c.Notes()[0].ID == "srv-1"
	}, 2*time.Second, 10*time.Millisecond)

	api.mu.Lock()
	api.failUpdate = true
	api.mu.Unlock()

	c.UpdateNote(created.ID, Patch{Title: strPtr("typed text")})

	assert.Eventually(t, func() bool {
		return c.SaveStatus() == StatusError
	}, 2*time.Second, 10*time.Millisecond)

	// The user's text survives the failed save.
	assert.Equal(t, "typed text", c.Notes()[0].Title)

	assert.Eventually(t, func() bool {
		return c.SaveStatus() == StatusIdle
	}, 2*time.Second, 10*time.Millisecond, "error status auto-reverts to idle")
}

func TestSaveStatusTransitions(t *testing.T) {
	api := newFakeAPI()
	api.updateGate = make(chan struct{})
	c := newTestController(api)

	created := c.CreateNote(CreateInput{Title: "status"})
	assert.Eventually(t, func() bool {
		return c.Notes()[0].ID == "srv-1"
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, StatusIdle, c.SaveStatus())

	c.UpdateNote(created.ID, Patch{Title: strPtr("status v2")})
	assert.Eventually(t, func() bool {
		return c.SaveStatus() == StatusSaving
	}, 2*time.Second, 10*time.Millisecond)

	close(api.updateGate)
	assert.Eventually(t, func() bool {
		return c.SaveStatus() == StatusSaved
	}, 2*time.Second, 10*time.Millisecond)

	assert.Eventually(t, func() bool {
		return c.SaveStatus() == StatusIdle
	}, 2*time.Second, 10*time.Millisecond)
}

func TestDeleteNoteIsOptimisticAndRollsBackOnFailure(t *testing.T) {
	api := newFakeAPI()
	c := newTestController(api)

	a := c.CreateNote(CreateInput{Title: "a"})
	c.CreateNote(CreateInput{Title: "b"})
	assert.Eventually(t, func() bool {
		notes := c.Notes()
		return notes[0].ID == "srv-2" && notes[1].ID == "srv-1"
	}, 2*time.Second, 10*time.Millisecond)
	_ = a

	before := c.Notes()[1]

	api.mu.Lock()
	api.failDelete = true
	api.mu.Unlock()

	c.DeleteNote("srv-1")
	assert.Len(t, c.Notes(), 1, "removal is visible before the server answers")

	assert.Eventually(t, func() bool {
		return len(c.Notes()) == 2
	}, 2*time.Second, 10*time.Millisecond, "failed delete restores the note")

	restored := c.Notes()[1]
	assert.Equal(t, before.ID, restored.ID)
	assert.Equal(t, before.Title, restored.Title)
	assert.Equal(t, before.UpdatedAt, restored.UpdatedAt)
}

func TestDeleteMovesSelection(t *testing.T) {
	api := newFakeAPI()
	c := newTestController(api)

	c.CreateNote(CreateInput{Title: "stays"})
	doomed := c.CreateNote(CreateInput{Title: "goes"})
	assert.Eventually(t, func() bool {
		return c.Notes()[0].ID == "srv-2"
	}, 2*time.Second, 10*time.Millisecond)

	c.SelectNote(doomed.ID)
	c.DeleteNote(doomed.ID)

	selected, ok := c.SelectedNote()
	require.True(t, ok, "selection moves to a remaining note")
	assert.Equal(t, "stays", selected.Title)
}

func TestDeleteBeforeCreateConfirmsDeletesServerCopy(t *testing.T) {
	api := newFakeAPI()
	api.createGate = make(chan struct{})
	c := newTestController(api)

	created := c.CreateNote(CreateInput{Title: "ephemeral"})
	c.DeleteNote(created.ID)
	assert.Empty(t, c.Notes())

	close(api.createGate)

	assert.Eventually(t, func() bool {
		return len(api.deletedIDs()) == 1 && api.deletedIDs()[0] == "srv-1"
	}, 2*time.Second, 10*time.Millisecond, "the confirmed server copy must be deleted")
	assert.Empty(t, c.Notes())
}

func TestStaleUpdateResponseAfterDeleteIsDiscarded(t *testing.T) {
	api := newFakeAPI()
	c := newTestController(api)

	created := c.CreateNote(CreateInput{Title: "racy"})
	assert.Eventually(t, func() bool {
		return c.Notes()[0].ID == "srv-1"
	}, 2*time.Second, 10*time.Millisecond)

	api.updateGate = make(chan struct{})
	c.UpdateNote(created.ID, Patch{Title: strPtr("slow save")})

	// Wait until the update request is in flight, then delete the note.
	time.Sleep(60 * time.Millisecond)
	c.DeleteNote("srv-1")
	assert.Empty(t, c.Notes())

	close(api.updateGate)

	// The late reconciliation must not resurrect the deleted note.
	time.Sleep(100 * time.Millisecond)
	assert.Empty(t, c.Notes())
}

func TestLoadReplacesState(t *testing.T) {
	api := newFakeAPI()
	now := time.Now()
	api.notes = []Note{
		{ID: "srv-10", Title: "newest", Tags: []string{}, Content: json.RawMessage(`[]`), CreatedAt: now, UpdatedAt: now},
		{ID: "srv-11", Title: "older", Tags: []string{}, Content: json.RawMessage(`[]`), CreatedAt: now, UpdatedAt: now.Add(-time.Hour)},
	}
	c := newTestController(api)

	require.NoError(t, c.Load(context.Background()))

	notes := c.Notes()
	require.Len(t, notes, 2)
	assert.Equal(t, "srv-10", notes[0].ID)
	assert.Equal(t, "srv-11", notes[1].ID)

	c.SelectNote("srv-11")
	selected, ok := c.SelectedNote()
	require.True(t, ok)
	assert.Equal(t, "older", selected.Title)
}
