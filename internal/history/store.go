// Package history provides the in-memory calculation history with
// undo/redo support, plus the Archive interface for long-term storage.
package history

import (
	"errors"
	"iter"
	"sync"

	"github.com/artpar/tally/internal/calc"
)

// Common errors
var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// DefaultMaxSize is used when a store is created with a non-positive
// capacity. Normal construction goes through config validation, which
// rejects those values before they reach here.
const DefaultMaxSize = 100

// Store is a bounded, ordered sequence of calculations with snapshot
// based undo/redo. All methods are safe for concurrent use; the
// entries and both stacks are only ever observed under one lock.
type Store struct {
	mu      sync.Mutex
	entries []calc.Calculation
	maxSize int
	undo    [][]calc.Calculation
	redo    [][]calc.Calculation
}

// New creates a Store holding at most maxSize entries.
func New(maxSize int) *Store {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &Store{maxSize: maxSize}
}

// Record appends a calculation, saving the prior state for undo and
// invalidating any redo branch. The oldest entry is evicted once the
// store is over capacity.
func (s *Store) Record(c calc.Calculation) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pushUndoLocked()
	s.entries = append(s.entries, c)
	if len(s.entries) > s.maxSize {
		s.entries = s.entries[1:]
	}
}

// Undo restores the state before the most recent mutation and returns
// the restored entry count. The replaced state becomes redoable.
func (s *Store) Undo() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.undo) == 0 {
		return 0, ErrNothingToUndo
	}

	snapshot := s.undo[len(s.undo)-1]
	s.undo = s.undo[:len(s.undo)-1]
	s.redo = append(s.redo, snapshotOf(s.entries))
	s.entries = snapshot

	return len(s.entries), nil
}

// Redo reverses the most recent Undo and returns the restored entry
// count.
func (s *Store) Redo() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.redo) == 0 {
		return 0, ErrNothingToRedo
	}

	snapshot := s.redo[len(s.redo)-1]
	s.redo = s.redo[:len(s.redo)-1]
	s.undo = append(s.undo, snapshotOf(s.entries))
	s.entries = snapshot

	return len(s.entries), nil
}

// Clear empties the history. Like any other mutation it saves the
// prior state for undo and invalidates the redo branch, so a clear
// can itself be undone.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pushUndoLocked()
	s.entries = nil
}

// Replace swaps in entries loaded from persistent storage, keeping
// only the newest maxSize of them. The undo/redo stacks are left
// untouched; hydration is not an undoable user action.
func (s *Store) Replace(entries []calc.Calculation) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(entries) > s.maxSize {
		entries = entries[len(entries)-s.maxSize:]
	}
	s.entries = snapshotOf(entries)

	return len(s.entries)
}

// List returns a copy of the current entries, oldest first.
func (s *Store) List() []calc.Calculation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshotOf(s.entries)
}

// All returns a restartable iterator over the current entries, oldest
// first. The iteration runs over a snapshot, so mutating the store
// while iterating is safe.
func (s *Store) All() iter.Seq[calc.Calculation] {
	return func(yield func(calc.Calculation) bool) {
		for _, c := range s.List() {
			if !yield(c) {
				return
			}
		}
	}
}

// Len returns the current number of entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// MaxSize returns the configured capacity.
func (s *Store) MaxSize() int {
	return s.maxSize
}

// CanUndo reports whether an Undo would succeed.
func (s *Store) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.undo) > 0
}

// CanRedo reports whether a Redo would succeed.
func (s *Store) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.redo) > 0
}

// pushUndoLocked saves the current entries on the undo stack and
// clears the redo stack. Caller must hold s.mu.
func (s *Store) pushUndoLocked() {
	s.undo = append(s.undo, snapshotOf(s.entries))
	s.redo = nil
}

// snapshotOf copies a slice of calculations. Calculations themselves
// are immutable values, so a shallow copy is a full snapshot.
func snapshotOf(entries []calc.Calculation) []calc.Calculation {
	if entries == nil {
		return nil
	}
	out := make([]calc.Calculation, len(entries))
	copy(out, entries)
	return out
}
