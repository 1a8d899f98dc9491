package history

import (
	"errors"
	"sync"

	"github.com/dshills/textcore/internal/engine/buffer"
)

// Common errors for history operations.
var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// DefaultMaxEntries is used when New is given a non-positive limit.
const DefaultMaxEntries = 1000

// History manages undo/redo state for a buffer.
type History struct {
	mu sync.Mutex

	undoStack []*entry
	redoStack []*entry

	// Grouping state
	grouping     bool
	groupName    string
	groupActions []buffer.Action
	groupRedo    int // redo entries made by undo inside the open group
	groupFloor   int // undo inside the group stops at this many actions

	// Configuration
	maxEntries int
}

// New creates an empty history keeping at most maxEntries undo steps.
func New(maxEntries int) *History {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &History{
		maxEntries: maxEntries,
	}
}

// IsEmpty reports whether there is nothing to undo, nothing to redo and no
// open group holding actions.
func (h *History) IsEmpty() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undoStack) == 0 && len(h.redoStack) == 0 && len(h.groupActions) == 0
}

// Append records an action as a new undo step, or adds it to the open group.
// The redo stack is cleared. Nil actions are ignored.
func (h *History) Append(a buffer.Action) {
	if a == nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.grouping {
		h.dropGroupRedoLocked()
		h.groupActions = append(h.groupActions, a)
		return
	}

	h.pushLocked(newEntry("", a))
}

// pushLocked adds an entry without acquiring the lock.
func (h *History) pushLocked(e *entry) {
	h.undoStack = append(h.undoStack, e)

	// Clear redo stack
	h.redoStack = nil

	h.trimLocked()
}

// dropGroupRedoLocked discards the redo entries made inside the open group.
func (h *History) dropGroupRedoLocked() {
	if h.groupRedo == 0 {
		return
	}
	n := len(h.redoStack) - h.groupRedo
	clear(h.redoStack[n:])
	h.redoStack = h.redoStack[:n]
	h.groupRedo = 0
}

func (h *History) trimLocked() {
	if len(h.undoStack) > h.maxEntries {
		excess := len(h.undoStack) - h.maxEntries
		clear(h.undoStack[:excess])
		h.undoStack = h.undoStack[excess:]
	}
}

// Undo replays the top undo step against t and moves its inverse to the
// redo stack. While a group is open only the group's own actions can be
// undone, one at a time.
// The lock is released while t replays the step.
func (h *History) Undo(t Target) error {
	h.mu.Lock()
	if h.grouping {
		return h.undoInGroup(t)
	}
	if len(h.undoStack) == 0 {
		h.mu.Unlock()
		return ErrNothingToUndo
	}

	e := h.undoStack[len(h.undoStack)-1]
	h.undoStack = h.undoStack[:len(h.undoStack)-1]
	h.mu.Unlock()

	inv := e.replay(t)

	h.mu.Lock()
	h.redoStack = append(h.redoStack, inv)
	h.mu.Unlock()
	return nil
}

// Redo replays the top redo step against t and moves its inverse back to
// the undo stack. While a group is open only steps undone inside the group
// can be redone, and they rejoin the group.
// The lock is released while t replays the step.
func (h *History) Redo(t Target) error {
	h.mu.Lock()
	if h.grouping {
		return h.redoInGroup(t)
	}
	if len(h.redoStack) == 0 {
		h.mu.Unlock()
		return ErrNothingToRedo
	}

	e := h.redoStack[len(h.redoStack)-1]
	h.redoStack = h.redoStack[:len(h.redoStack)-1]
	h.mu.Unlock()

	inv := e.replay(t)

	h.mu.Lock()
	h.undoStack = append(h.undoStack, inv)
	h.trimLocked()
	h.mu.Unlock()
	return nil
}

// undoInGroup is called with the lock held and releases it.
func (h *History) undoInGroup(t Target) error {
	n := len(h.groupActions)
	if n <= h.groupFloor {
		h.mu.Unlock()
		return ErrNothingToUndo
	}

	a := h.groupActions[n-1]
	h.groupActions[n-1] = nil
	h.groupActions = h.groupActions[:n-1]
	h.mu.Unlock()

	inv := newEntry("", a).replay(t)

	h.mu.Lock()
	defer h.mu.Unlock()
	h.redoStack = append(h.redoStack, inv)
	if h.grouping {
		h.groupRedo++
	}
	return nil
}

// redoInGroup is called with the lock held and releases it.
func (h *History) redoInGroup(t Target) error {
	if h.groupRedo == 0 {
		h.mu.Unlock()
		return ErrNothingToRedo
	}

	e := h.redoStack[len(h.redoStack)-1]
	h.redoStack = h.redoStack[:len(h.redoStack)-1]
	h.groupRedo--
	h.mu.Unlock()

	inv := e.replay(t)

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.grouping {
		h.groupActions = append(h.groupActions, inv.actions...)
		return nil
	}
	if len(inv.actions) > 0 {
		h.undoStack = append(h.undoStack, inv)
		h.trimLocked()
	}
	return nil
}

// CanUndo returns true if undo is available.
func (h *History) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undoStack) > 0
}

// CanRedo returns true if redo is available.
func (h *History) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redoStack) > 0
}

// UndoCount returns the number of undo steps available.
func (h *History) UndoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undoStack)
}

// RedoCount returns the number of redo steps available.
func (h *History) RedoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redoStack)
}

// BeginGroup starts an action group.
// Actions appended while grouping are combined into a single undo step.
func (h *History) BeginGroup(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.grouping {
		// Already grouping, ignore nested calls
		return
	}
	h.beginGroupLocked(name)
}

func (h *History) beginGroupLocked(name string) {
	h.grouping = true
	h.groupName = name
	h.groupActions = nil
	h.groupRedo = 0
	h.groupFloor = 0
}

// EndGroup finishes an action group, pushing the collected actions as one
// undo step. An empty group pushes nothing.
func (h *History) EndGroup() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.grouping {
		return
	}
	h.endGroupLocked()
}

func (h *History) endGroupLocked() {
	actions := h.groupActions
	h.closeGroupLocked()
	if len(actions) > 0 {
		h.pushLocked(newEntry(h.groupName, actions...))
	}
}

// closeGroupLocked leaves grouping mode. Redo entries made inside the
// group stay on the redo stack.
func (h *History) closeGroupLocked() {
	h.grouping = false
	h.groupActions = nil
	h.groupRedo = 0
	h.groupFloor = 0
}

// CancelGroup ends a group without adding it to history.
// Note: Edits already made still affect the buffer!
func (h *History) CancelGroup() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closeGroupLocked()
}

// IsGrouping returns true if currently in an action group.
func (h *History) IsGrouping() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.grouping
}

// Clear removes all undo/redo history.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.undoStack = nil
	h.redoStack = nil
	h.closeGroupLocked()
}

// UndoInfo returns info about available undo steps, oldest first.
func (h *History) UndoInfo() []EntryInfo {
	h.mu.Lock()
	defer h.mu.Unlock()
	return infos(h.undoStack)
}

// RedoInfo returns info about available redo steps, oldest first.
func (h *History) RedoInfo() []EntryInfo {
	h.mu.Lock()
	defer h.mu.Unlock()
	return infos(h.redoStack)
}

func infos(stack []*entry) []EntryInfo {
	result := make([]EntryInfo, len(stack))
	for i, e := range stack {
		result[i] = e.info()
	}
	return result
}

// PeekUndo returns info about the next undo step without removing it.
func (h *History) PeekUndo() (EntryInfo, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.undoStack) == 0 {
		return EntryInfo{}, false
	}
	return h.undoStack[len(h.undoStack)-1].info(), true
}

// PeekRedo returns info about the next redo step without removing it.
func (h *History) PeekRedo() (EntryInfo, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.redoStack) == 0 {
		return EntryInfo{}, false
	}
	return h.redoStack[len(h.redoStack)-1].info(), true
}

// SetMaxEntries changes the maximum number of undo steps.
// If the current stack is larger, oldest entries are removed.
func (h *History) SetMaxEntries(max int) {
	if max <= 0 {
		max = DefaultMaxEntries
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.maxEntries = max
	h.trimLocked()
}

// MaxEntries returns the maximum number of undo steps.
func (h *History) MaxEntries() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.maxEntries
}
