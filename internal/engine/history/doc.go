// Package history provides the undo/redo list for a buffer.
//
// The history stores reversible buffer.Actions. It never edits text itself:
// undo and redo hand the top entry to a Target, which replays each action
// and returns its inverse, and the inverses become the entry on the opposite
// stack.
//
// # Entries
//
// Each entry is one user-visible undo step holding one or more actions in
// the order they were recorded. Replaying an entry applies its actions last
// to first.
//
// # History Stack
//
//	h := history.New(1000) // Max 1000 undo entries
//
//	// Record the inverse of an edit before making it
//	h.Append(contents.RecordInsert(at, text))
//	contents.InsertAt(at, text)
//
//	// Undo/redo
//	h.Undo(target)
//	h.Redo(target)
//
// Appending a new action clears the redo stack.
//
// # Grouping
//
// Multiple actions can be grouped as a single undo step:
//
//	h.BeginGroup("Replace All")
//	// ... multiple edits ...
//	h.EndGroup()
//
// While a group is open, Undo and Redo work on the group's own actions
// only, so undoing inside a group never reaches the steps recorded before
// it.
//
// Atomic does the same around a function and reverses the function's
// actions when it fails, leaving no trace in the history:
//
//	err := h.Atomic("Reformat", target, func() error { ... })
//
// # Locking
//
// History has its own lock. It is never held while the Target replays an
// action, so a Target may take its own locks (and even append to the
// history) without deadlocking.
package history
