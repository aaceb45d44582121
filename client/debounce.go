package client

import "time"

// debounceState is the per-note coalescing machine: either no update is
// pending, or a merged patch is waiting behind a running timer. Every new
// edit merges into the pending patch and restarts the timer, so a burst of
// edits produces exactly one request carrying their cumulative effect.
type debounceState struct {
	pending  Patch
	hasPatch bool
	timer    *time.Timer
}

// push merges patch into the pending state and (re)arms the timer. fire
// runs on the timer goroutine once the quiet window elapses.
func (d *debounceState) push(patch Patch, window time.Duration, fire func()) {
	if d.hasPatch {
		d.pending = d.pending.merge(patch)
	} else {
		d.pending = patch
		d.hasPatch = true
	}

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(window, fire)
}

// take drains the pending patch, returning false when nothing is queued.
func (d *debounceState) take() (Patch, bool) {
	if !d.hasPatch {
		return Patch{}, false
	}
	patch := d.pending
	d.pending = Patch{}
	d.hasPatch = false
	d.timer = nil
	return patch, true
}

// cancel discards any pending patch and stops the timer.
func (d *debounceState) cancel() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.pending = Patch{}
	d.hasPatch = false
}
