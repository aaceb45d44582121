package client

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	defaultDebounceWindow = 500 * time.Millisecond
	defaultSavedRevert    = 2 * time.Second
	defaultErrorRevert    = 3 * time.Second
	requestTimeout        = 30 * time.Second
)

var emptyContent = json.RawMessage(`[]`)

// entry is one arena slot. The slot is keyed by localID forever; confirming
// a creation rewrites note.ID in place instead of moving the slot, so
// concurrent readers never observe a half-replaced list.
type entry struct {
	localID   string
	note      Note
	seq       uint64 // bumped on every local mutation; guards stale reconciliation
	confirmed bool   // server id assigned
	deleted   bool   // removed locally while its create was still in flight
	debounce  debounceState
}

// Controller owns the in-memory note list. All mutations are optimistic:
// the list changes before the network round-trip, and failed requests roll
// back creations and deletions (never edits, which only surface as an error
// save status).
type Controller struct {
	mu         sync.Mutex
	api        API
	entries    map[string]*entry
	byServerID map[string]string
	order      []string // localIDs, display order
	selected   string

	status         *statusMachine
	debounceWindow time.Duration
}

type Option func(*Controller)

// WithDebounceWindow overrides the quiet window before an edit is sent.
func WithDebounceWindow(window time.Duration) Option {
	return func(c *Controller) { c.debounceWindow = window }
}

// WithStatusReverts overrides how long saved/error stay visible.
func WithStatusReverts(saved, errored time.Duration) Option {
	return func(c *Controller) { c.status = newStatusMachine(saved, errored) }
}

func NewController(api API, opts ...Option) *Controller {
	c := &Controller{
		api:            api,
		entries:        make(map[string]*entry),
		byServerID:     make(map[string]string),
		status:         newStatusMachine(defaultSavedRevert, defaultErrorRevert),
		debounceWindow: defaultDebounceWindow,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load replaces local state with the server's list. Existing optimistic
// state is discarded; call this on startup, not mid-session.
func (c *Controller) Load(ctx context.Context) error {
	notes, err := c.api.ListNotes(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*entry, len(notes))
	c.byServerID = make(map[string]string, len(notes))
	c.order = make([]string, 0, len(notes))
	for _, note := range notes {
		localID := newLocalID()
		c.entries[localID] = &entry{localID: localID, note: note, confirmed: true}
		c.byServerID[note.ID] = localID
		c.order = append(c.order, localID)
	}
	if c.selected != "" {
		if _, ok := c.entries[c.selected]; !ok {
			c.selected = ""
		}
	}
	return nil
}

func newLocalID() string {
	return "local-" + uuid.NewString()
}

// Notes returns the visible list in display order. The slice and its tag
// slices are copies; callers cannot mutate controller state through them.
func (c *Controller) Notes() []Note {
	c.mu.Lock()
	defer c.mu.Unlock()

	notes := make([]Note, 0, len(c.order))
	for _, localID := range c.order {
		notes = append(notes, copyNote(c.entries[localID].note))
	}
	return notes
}

func copyNote(n Note) Note {
	tags := make([]string, len(n.Tags))
	copy(tags, n.Tags)
	n.Tags = tags
	return n
}

func (c *Controller) SaveStatus() SaveStatus {
	return c.status.Status()
}

// SelectNote selects by either the local or the server id. Selecting an
// unknown id clears the selection.
func (c *Controller) SelectNote(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e := c.resolveLocked(id); e != nil {
		c.selected = e.localID
	} else {
		c.selected = ""
	}
}

func (c *Controller) SelectedNote() (Note, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.selected == "" {
		return Note{}, false
	}
	e, ok := c.entries[c.selected]
	if !ok {
		return Note{}, false
	}
	return copyNote(e.note), true
}

func (c *Controller) resolveLocked(id string) *entry {
	if e, ok := c.entries[id]; ok && !e.deleted {
		return e
	}
	if localID, ok := c.byServerID[id]; ok {
		if e, ok := c.entries[localID]; ok && !e.deleted {
			return e
		}
	}
	return nil
}

// CreateNote fabricates an optimistic note, selects it, and returns it
// before any network traffic. The placeholder id stays usable for updates,
// deletion, and selection; the slot is rewritten in place once the server
// confirms, so the selection follows the note across confirmation.
func (c *Controller) CreateNote(input CreateInput) Note {
	localID := newLocalID()
	now := time.Now()

	content := input.Content
	if content == nil {
		content = emptyContent
	}
	tags := input.Tags
	if tags == nil {
		tags = []string{}
	}

	e := &entry{
		localID: localID,
		note: Note{
			ID:        localID,
			Title:     input.Title,
			Content:   content,
			Tags:      tags,
			CreatedAt: now,
			UpdatedAt: now,
		},
	}

	c.mu.Lock()
	c.entries[localID] = e
	c.order = append([]string{localID}, c.order...)
	c.selected = localID
	created := copyNote(e.note)
	c.mu.Unlock()

	go c.confirmCreate(localID, input)
	return created
}

func (c *Controller) confirmCreate(localID string, input CreateInput) {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	created, err := c.api.CreateNote(ctx, input)

	c.mu.Lock()
	e, ok := c.entries[localID]
	if !ok {
		c.mu.Unlock()
		return
	}

	if err != nil {
		// Failed creation purges the placeholder; the list ends up exactly
		// as it was before the call. Selection is cleared, not moved: the
		// focus must not jump to an unrelated note.
		c.removeLocked(localID)
		c.clearSelectionLocked(localID)
		c.mu.Unlock()
		return
	}

	if e.deleted {
		// Deleted locally before the server confirmed. The note now exists
		// server-side under its real id; finish the delete there.
		delete(c.entries, localID)
		c.mu.Unlock()
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
			defer cancel()
			_ = c.api.DeleteNote(ctx, created.ID)
		}()
		return
	}

	e.note.ID = created.ID
	e.note.CreatedAt = created.CreatedAt
	if e.seq == 0 {
		// No local edits since creation; the server copy is authoritative.
		e.note.Title = created.Title
		e.note.Content = created.Content
		e.note.Tags = created.Tags
	}
	if created.UpdatedAt.After(e.note.UpdatedAt) {
		e.note.UpdatedAt = created.UpdatedAt
	}
	e.confirmed = true
	c.byServerID[created.ID] = localID
	c.mu.Unlock()
}

// UpdateNote applies patch locally right away and schedules the network
// update behind the per-note debounce window. A transient save failure
// never rolls the local edit back; it only surfaces as an error status.
func (c *Controller) UpdateNote(id string, patch Patch) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.resolveLocked(id)
	if e == nil {
		return
	}

	if patch.Title != nil {
		e.note.Title = *patch.Title
	}
	if patch.Content != nil {
		e.note.Content = patch.Content
	}
	if patch.Tags != nil {
		tags := make([]string, len(*patch.Tags))
		copy(tags, *patch.Tags)
		e.note.Tags = tags
	}
	e.note.UpdatedAt = time.Now()
	e.seq++

	localID := e.localID
	e.debounce.push(patch, c.debounceWindow, func() {
		c.flushUpdate(localID)
	})
}

func (c *Controller) flushUpdate(localID string) {
	c.mu.Lock()
	e, ok := c.entries[localID]
	if !ok || e.deleted {
		c.mu.Unlock()
		return
	}
	if !e.confirmed {
		// Create still in flight; hold the patch until the server id exists.
		e.debounce.timer = time.AfterFunc(c.debounceWindow, func() {
			c.flushUpdate(localID)
		})
		c.mu.Unlock()
		return
	}

	patch, ok := e.debounce.take()
	if !ok {
		c.mu.Unlock()
		return
	}
	serverID := e.note.ID
	seqAtSend := e.seq
	c.mu.Unlock()

	c.status.Saving()

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	updated, err := c.api.UpdateNote(ctx, serverID, patch)
	if err != nil {
		c.status.Failed()
		return
	}
	c.status.Saved()

	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok = c.entries[localID]
	if !ok || e.deleted {
		// The note was deleted while this response was in flight; a stale
		// reconciliation must not resurrect it.
		return
	}
	if e.seq == seqAtSend {
		e.note.Title = updated.Title
		e.note.Content = updated.Content
		e.note.Tags = updated.Tags
	}
	if updated.UpdatedAt.After(e.note.UpdatedAt) {
		e.note.UpdatedAt = updated.UpdatedAt
	}
}

// DeleteNote removes the note from the list immediately and issues the
// server delete in the background; on failure the note is restored to its
// original position.
func (c *Controller) DeleteNote(id string) {
	c.mu.Lock()

	e := c.resolveLocked(id)
	if e == nil {
		c.mu.Unlock()
		return
	}
	localID := e.localID
	position := c.orderIndexLocked(localID)
	e.debounce.cancel()

	if !e.confirmed {
		// No server row yet. Hide the entry and let confirmCreate finish
		// the delete once (if) the creation lands.
		e.deleted = true
		c.dropFromOrderLocked(localID)
		c.fixSelectionLocked(localID)
		c.mu.Unlock()
		return
	}

	removed := *e
	c.removeLocked(localID)
	c.fixSelectionLocked(localID)
	c.mu.Unlock()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		if err := c.api.DeleteNote(ctx, removed.note.ID); err == nil {
			return
		}

		// Rollback: the exact note object returns at (or adjacent to) its
		// old position.
		c.mu.Lock()
		defer c.mu.Unlock()
		restored := removed
		restored.debounce = debounceState{}
		c.entries[localID] = &restored
		c.byServerID[restored.note.ID] = localID
		if position > len(c.order) {
			position = len(c.order)
		}
		c.order = append(c.order[:position], append([]string{localID}, c.order[position:]...)...)
	}()
}

func (c *Controller) orderIndexLocked(localID string) int {
	for i, id := range c.order {
		if id == localID {
			return i
		}
	}
	return len(c.order)
}

func (c *Controller) dropFromOrderLocked(localID string) {
	for i, id := range c.order {
		if id == localID {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}

// fixSelectionLocked moves the selection off a deleted note: to the first
// remaining note, or to empty when the list is empty.
func (c *Controller) fixSelectionLocked(localID string) {
	if c.selected != localID {
		return
	}
	if len(c.order) > 0 {
		c.selected = c.order[0]
	} else {
		c.selected = ""
	}
}

// clearSelectionLocked empties the selection if it pointed at the removed
// note. Used when the note vanished through no action of the user (a
// rolled-back creation), where moving focus elsewhere would be surprising.
func (c *Controller) clearSelectionLocked(localID string) {
	if c.selected == localID {
		c.selected = ""
	}
}

// removeLocked drops the entry from the arena and the display order.
// Callers decide what happens to the selection.
func (c *Controller) removeLocked(localID string) {
	e, ok := c.entries[localID]
	if !ok {
		return
	}
	e.debounce.cancel()
	if e.confirmed {
		delete(c.byServerID, e.note.ID)
	}
	delete(c.entries, localID)
	c.dropFromOrderLocked(localID)
}
