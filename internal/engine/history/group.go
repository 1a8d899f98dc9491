package history

import (
	"slices"

	"github.com/dshills/textcore/internal/engine/buffer"
)

// Checkpoint marks an undo depth that UndoToCheckpoint can return to.
type Checkpoint struct {
	undoDepth int
}

// CreateCheckpoint records the current undo depth.
func (h *History) CreateCheckpoint() Checkpoint {
	h.mu.Lock()
	defer h.mu.Unlock()
	return Checkpoint{undoDepth: len(h.undoStack)}
}

// UndoToCheckpoint undoes steps until the undo depth is back at cp.
// A checkpoint evicted by the entry limit rewinds as far as the stack goes.
func (h *History) UndoToCheckpoint(cp Checkpoint, t Target) error {
	for h.UndoCount() > cp.undoDepth {
		if err := h.Undo(t); err != nil {
			return err
		}
	}
	return nil
}

// Atomic runs fn with its appends grouped into one step named name. When
// fn fails the actions it appended are replayed against t in reverse, so
// the target and the history are left as they were, and fn's error is
// returned. Inside an open group Atomic adds to that group, and undo within
// fn cannot reach the actions recorded before it.
func (h *History) Atomic(name string, t Target, fn func() error) error {
	h.mu.Lock()
	nested := h.grouping
	if !nested {
		h.beginGroupLocked(name)
	}
	base, floor := len(h.groupActions), h.groupFloor
	h.groupFloor = base
	h.mu.Unlock()

	err := fn()

	h.mu.Lock()
	if !h.grouping {
		// fn closed the group itself.
		h.mu.Unlock()
		return err
	}
	h.groupFloor = floor
	if err == nil {
		if !nested {
			h.endGroupLocked()
		}
		h.mu.Unlock()
		return nil
	}

	var actions []buffer.Action
	if base < len(h.groupActions) {
		actions = slices.Clone(h.groupActions[base:])
		clear(h.groupActions[base:])
		h.groupActions = h.groupActions[:base]
	}
	h.dropGroupRedoLocked()
	if !nested {
		h.closeGroupLocked()
	}
	h.mu.Unlock()

	if len(actions) > 0 {
		newEntry("", actions...).replay(t)
	}
	return err
}
