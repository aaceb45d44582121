package client

import (
	"sync"
	"time"
)

// SaveStatus is the per-editing-session indicator surfaced to the UI.
type SaveStatus string

const (
	StatusIdle   SaveStatus = "idle"
	StatusSaving SaveStatus = "saving"
	StatusSaved  SaveStatus = "saved"
	StatusError  SaveStatus = "error"
)

// statusMachine runs idle -> saving -> (saved | error) -> idle. The saved
// and error states revert to idle on their own after a timeout; a new save
// starting mid-revert cancels the pending revert.
type statusMachine struct {
	mu          sync.Mutex
	current     SaveStatus
	revertTimer *time.Timer
	savedRevert time.Duration
	errorRevert time.Duration
}

func newStatusMachine(savedRevert, errorRevert time.Duration) *statusMachine {
	return &statusMachine{
		current:     StatusIdle,
		savedRevert: savedRevert,
		errorRevert: errorRevert,
	}
}

func (m *statusMachine) Status() SaveStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

func (m *statusMachine) Saving() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancelRevert()
	m.current = StatusSaving
}

func (m *statusMachine) Saved() {
	m.transitionWithRevert(StatusSaved, m.savedRevert)
}

func (m *statusMachine) Failed() {
	m.transitionWithRevert(StatusError, m.errorRevert)
}

func (m *statusMachine) transitionWithRevert(next SaveStatus, after time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancelRevert()
	m.current = next
	m.revertTimer = time.AfterFunc(after, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		// Only revert if nothing else transitioned in the meantime.
		if m.current == next {
			m.current = StatusIdle
		}
	})
}

func (m *statusMachine) cancelRevert() {
	if m.revertTimer != nil {
		m.revertTimer.Stop()
		m.revertTimer = nil
	}
}
