// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package localmodel

import "sync"

// =============================================================================
// READINESS STATE MACHINE
// =============================================================================

// State describes how far along the runtime is with loading the model.
type State int

const (
	// StateNotStarted means no load has been requested.
	StateNotStarted State = iota
	// StateLoading means model weights are being fetched or mapped.
	StateLoading
	// StateReady means the model can serve replies.
	StateReady
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not-started"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	default:
		return "unknown"
	}
}

// Tracker holds the readiness state. Transitions only move forward
// (NotStarted, Loading, Ready); the single way back is ClearCache,
// which discards the loaded model entirely.
type Tracker struct {
	mu       sync.Mutex
	state    State
	progress int
}

// NewTracker starts in NotStarted.
func NewTracker() *Tracker {
	return &Tracker{}
}

// State returns the current state.
func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Progress returns the load progress, 0 to 100.
func (t *Tracker) Progress() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.progress
}

// StartLoading moves NotStarted to Loading. A no-op in any other
// state.
func (t *Tracker) StartLoading() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == StateNotStarted {
		t.state = StateLoading
	}
}

// SetProgress records load progress. Progress is monotonic: a report
// lower than what we already showed is dropped, so the gauge never
// moves backwards. Only meaningful while Loading.
func (t *Tracker) SetProgress(p int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != StateLoading {
		return
	}
	if p < 0 {
		p = 0
	}
	if p > 100 {
		p = 100
	}
	if p > t.progress {
		t.progress = p
	}
}

// MarkReady moves Loading to Ready and pins progress at 100. A no-op
// unless Loading.
func (t *Tracker) MarkReady() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == StateLoading {
		t.state = StateReady
		t.progress = 100
	}
}

// IsReady reports whether the model can serve replies.
func (t *Tracker) IsReady() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state == StateReady
}

// ClearCache resets the machine to NotStarted with zero progress.
// Valid from any state.
func (t *Tracker) ClearCache() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = StateNotStarted
	t.progress = 0
}
