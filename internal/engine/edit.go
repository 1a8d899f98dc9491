package engine

import (
	"io"

	"github.com/dshills/textcore/internal/engine/buffer"
	"github.com/dshills/textcore/internal/engine/history"
)

// ============================================================================
// Read Operations
// ============================================================================

// Len returns the content length in bytes.
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.contents.Len()
}

// Cap returns the allocated capacity in bytes.
func (b *Buffer) Cap() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.contents.Cap()
}

// Text returns the full content.
func (b *Buffer) Text() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.contents.String()
}

// TextRange returns the content in [start, end), clamped to the content.
func (b *Buffer) TextRange(start, end int) string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return string(b.contents.Slice(start, end))
}

// Bytes returns a copy of the content.
func (b *Buffer) Bytes() []byte {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.contents.Bytes()
}

// ReadAt returns the byte at offset, or 0 outside [0, Len).
func (b *Buffer) ReadAt(offset int) byte {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.contents.ReadAt(offset)
}

// WriteTo writes the content verbatim to w.
func (b *Buffer) WriteTo(w io.Writer) (int64, error) {
	n, _, err := b.writeSnapshot(w)
	return n, err
}

// ============================================================================
// Write Operations
// ============================================================================

// edit runs one recorded mutation under the contents lock. record returns
// the inverse action before anything changes; apply performs the change and
// reports how many bytes it touched. Nothing is recorded when apply touches
// nothing.
func (b *Buffer) edit(record func(c *buffer.Contents) buffer.Action, apply func(c *buffer.Contents) int) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.mode == ReadOnly {
		return 0, ErrReadOnly
	}

	c := b.contents
	inv := record(c)
	capBefore := c.Cap()

	n := apply(c)
	if n == 0 {
		return 0, nil
	}

	b.history.Append(inv)
	b.touchLocked()

	if c.Cap() != capBefore {
		b.log.Debug("resized %d -> %d", capBefore, c.Cap())
	}
	return n, nil
}

func (b *Buffer) touchLocked() {
	b.modified = true
	b.revision++
}

// Insert inserts text at the point, leaving the point after it.
// Returns the number of bytes inserted.
func (b *Buffer) Insert(text []byte) (int, error) {
	return b.edit(
		func(c *buffer.Contents) buffer.Action { return c.RecordInsert(c.Point(), text) },
		func(c *buffer.Contents) int { return c.Insert(text) },
	)
}

// InsertString inserts s at the point.
func (b *Buffer) InsertString(s string) (int, error) {
	return b.Insert([]byte(s))
}

// InsertAt inserts text at offset, clamped to the content.
func (b *Buffer) InsertAt(offset int, text []byte) (int, error) {
	return b.edit(
		func(c *buffer.Contents) buffer.Action { return c.RecordInsert(offset, text) },
		func(c *buffer.Contents) int { return c.InsertAt(offset, text) },
	)
}

// Delete removes up to n bytes starting at the point.
// Returns the number of bytes removed.
func (b *Buffer) Delete(n int) (int, error) {
	return b.edit(
		func(c *buffer.Contents) buffer.Action { return c.RecordDelete(c.Point(), n) },
		func(c *buffer.Contents) int { return c.Delete(n) },
	)
}

// DeleteAt removes up to n bytes starting at offset.
func (b *Buffer) DeleteAt(offset, n int) (int, error) {
	return b.edit(
		func(c *buffer.Contents) buffer.Action { return c.RecordDelete(offset, n) },
		func(c *buffer.Contents) int { return c.DeleteAt(offset, n) },
	)
}

// DeleteRange removes the bytes between start and end, in either order.
func (b *Buffer) DeleteRange(start, end int) (int, error) {
	r := buffer.NewRange(start, end)
	return b.DeleteAt(r.Start, r.Len())
}

// DeleteRegion removes the bytes between the point and the selection mark.
// With no selection it removes nothing.
func (b *Buffer) DeleteRegion() (int, error) {
	return b.edit(
		func(c *buffer.Contents) buffer.Action {
			r := c.Region()
			return c.RecordDelete(r.Start, r.Len())
		},
		func(c *buffer.Contents) int {
			r := c.Region()
			return c.DeleteAt(r.Start, r.Len())
		},
	)
}

// WriteByteAt overwrites the byte at offset. Offsets outside [0, Len) are
// ignored and report false. The overwrite is one undo step.
func (b *Buffer) WriteByteAt(offset int, ch byte) (bool, error) {
	n, err := b.edit(
		func(c *buffer.Contents) buffer.Action { return c.RecordReplace(offset, ch) },
		func(c *buffer.Contents) int {
			if _, ok := c.WriteByteAt(offset, ch); ok {
				return 1
			}
			return 0
		},
	)
	return n > 0, err
}

// ============================================================================
// Undo/Redo
// ============================================================================

// ApplyAction replays a against the contents and returns its inverse.
// It implements history.Target and ignores the buffer mode.
func (b *Buffer) ApplyAction(a buffer.Action) buffer.Action {
	b.mu.Lock()
	defer b.mu.Unlock()

	inv := b.contents.Apply(a)
	if inv != nil {
		b.touchLocked()
	}
	return inv
}

var _ history.Target = (*Buffer)(nil)

// Undo reverts the most recent undo step.
func (b *Buffer) Undo() error {
	if b.Mode() == ReadOnly {
		return ErrReadOnly
	}
	return b.history.Undo(b)
}

// Redo re-applies the most recently undone step.
func (b *Buffer) Redo() error {
	if b.Mode() == ReadOnly {
		return ErrReadOnly
	}
	return b.history.Redo(b)
}

// CanUndo returns true if undo is available.
func (b *Buffer) CanUndo() bool {
	return b.history.CanUndo()
}

// CanRedo returns true if redo is available.
func (b *Buffer) CanRedo() bool {
	return b.history.CanRedo()
}

// BeginGroup starts collecting edits into a single undo step.
func (b *Buffer) BeginGroup(name string) {
	b.history.BeginGroup(name)
}

// EndGroup closes the group opened by BeginGroup.
func (b *Buffer) EndGroup() {
	b.history.EndGroup()
}

// Transaction runs fn with its edits grouped into one undo step. If fn
// fails, the edits it made are undone, the modified flag goes back to what
// it was unless fn saved or loaded, and the error is returned.
func (b *Buffer) Transaction(name string, fn func() error) error {
	b.mu.RLock()
	modified, cleans := b.modified, b.cleans
	b.mu.RUnlock()

	err := b.history.Atomic(name, b, fn)
	if err == nil {
		return nil
	}

	b.mu.Lock()
	if b.cleans == cleans {
		b.modified = modified
	}
	b.mu.Unlock()

	b.log.WithError(err).Debug("transaction %q rolled back", name)
	return err
}

// UndoInfo returns descriptions of the available undo steps, oldest first.
func (b *Buffer) UndoInfo() []history.EntryInfo {
	return b.history.UndoInfo()
}
