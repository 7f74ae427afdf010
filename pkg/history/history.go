// Package history implements a linear undo/redo stack of StyleState
// snapshots. Pushing while positioned before the end discards the redo branch.
package history

import "github.com/xob0t/posterkit/pkg/poster"

// Store holds the snapshot sequence and the current position. Index -1 means
// empty. Snapshots are stored by value and never modified after Push.
//
// A Store is not safe for concurrent use; the owning session serialises access.
type Store struct {
	states []poster.StyleState
	index  int
}

// New returns an empty store.
func New() *Store {
	return &Store{index: -1}
}

// Push truncates everything after the current index, appends st and makes
// it current.
func (h *Store) Push(st poster.StyleState) {
	h.states = append(h.states[:h.index+1], st)
	h.index = len(h.states) - 1
}

// Update merges patch onto the current snapshot and pushes the result.
// It is a no-op returning false when the store is empty.
func (h *Store) Update(patch poster.StylePatch) (poster.StyleState, bool) {
	cur, ok := h.Current()
	if !ok {
		return poster.StyleState{}, false
	}
	next := cur.Apply(patch)
	h.Push(next)
	return next, true
}

// Undo steps back one snapshot. It reports whether the index moved.
func (h *Store) Undo() bool {
	if h.index <= 0 {
		return false
	}
	h.index--
	return true
}

// Redo steps forward one snapshot. It reports whether the index moved.
func (h *Store) Redo() bool {
	if h.index >= len(h.states)-1 {
		return false
	}
	h.index++
	return true
}

// Current returns the snapshot at the current index, or false when empty.
func (h *Store) Current() (poster.StyleState, bool) {
	if h.index < 0 {
		return poster.StyleState{}, false
	}
	return h.states[h.index], true
}

// Reset clears all snapshots.
func (h *Store) Reset() {
	clear(h.states)
	h.states = h.states[:0]
	h.index = -1
}

// Len is the number of stored snapshots, including redo entries.
func (h *Store) Len() int { return len(h.states) }

// Index is the current position, -1 when empty.
func (h *Store) Index() int { return h.index }

// CanUndo reports whether Undo would move.
func (h *Store) CanUndo() bool { return h.index > 0 }

// CanRedo reports whether Redo would move.
func (h *Store) CanRedo() bool { return h.index < len(h.states)-1 }

// Snapshot returns a copy of every stored state.
func (h *Store) Snapshot() []poster.StyleState {
	out := make([]poster.StyleState, len(h.states))
	copy(out, h.states)
	return out
}
