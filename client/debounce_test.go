package client

import (
	"encoding/json"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebouncePushMergesPatches(t *testing.T) {
	var d debounceState
	var fired atomic.Int32
	fire := func() { fired.Add(1) }

	d.push(Patch{Title: strPtr("one")}, 20*time.Millisecond, fire)
	d.push(Patch{Content: json.RawMessage(`[1]`)}, 20*time.Millisecond, fire)
	d.push(Patch{Title: strPtr("two")}, 20*time.Millisecond, fire)

	patch, ok := d.take()
	require.True(t, ok)
	require.NotNil(t, patch.Title)
	assert.Equal(t, "two", *patch.Title, "later title wins")
	assert.JSONEq(t, `[1]`, string(patch.Content), "earlier content is kept")

	// Drained state has nothing left.
	_, ok = d.take()
	assert.False(t, ok)
}

func TestDebounceEachPushResetsTimer(t *testing.T) {
	var d debounceState
	var fired atomic.Int32
	fire := func() { fired.Add(1) }

	d.push(Patch{Title: strPtr("a")}, 50*time.Millisecond, fire)
	time.Sleep(30 * time.Millisecond)
	d.push(Patch{Title: strPtr("b")}, 50*time.Millisecond, fire)
	time.Sleep(30 * time.Millisecond)

	// The first window was superseded before it elapsed.
	assert.Equal(t, int32(0), fired.Load())

	assert.Eventually(t, func() bool {
		return fired.Load() == 1
	}, 2*time.Second, 5*time.Millisecond)

	// Only the reset timer fires; the replaced one stays cancelled.
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), fired.Load())
}

func TestDebounceCancelDropsPendingPatch(t *testing.T) {
	var d debounceState
	var fired atomic.Int32

	d.push(Patch{Title: strPtr("a")}, 20*time.Millisecond, func() { fired.Add(1) })
	d.cancel()

	_, ok := d.take()
	assert.False(t, ok)

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load())
}
