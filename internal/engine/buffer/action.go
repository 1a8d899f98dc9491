package buffer

import (
	"fmt"

	"github.com/dshills/textcore/internal/engine/mark"
)

// Action is a reversible edit that can be replayed against Contents.
// Apply performs the edit, moving the point as a side effect, and returns
// the action that undoes it.
type Action interface {
	Apply(c *Contents) Action

	// Len returns the number of bytes the action touches.
	Len() int

	String() string
}

// InsertAction re-inserts captured bytes at Offset.
type InsertAction struct {
	Offset int
	Bytes  []byte // owned copy, never a view into live storage
}

// Apply inserts the captured bytes at Offset.
func (a InsertAction) Apply(c *Contents) Action {
	c.MoveTo(a.Offset)
	at := c.Point()
	n := c.Insert(a.Bytes)
	return DeleteAction{Offset: at, Length: n}
}

// Len returns the number of captured bytes.
func (a InsertAction) Len() int {
	return len(a.Bytes)
}

// String returns a human-readable representation of the action.
func (a InsertAction) String() string {
	return fmt.Sprintf("Insert(%d, %q)", a.Offset, a.Bytes)
}

// DeleteAction removes Length bytes at Offset.
type DeleteAction struct {
	Offset int
	Length int
}

// Apply deletes the range, returning an InsertAction holding the removed
// bytes.
func (a DeleteAction) Apply(c *Contents) Action {
	inv := c.RecordDelete(a.Offset, a.Length)
	c.MoveTo(a.Offset)
	c.Delete(a.Length)
	return inv
}

// Len returns the number of bytes to delete.
func (a DeleteAction) Len() int {
	return a.Length
}

// String returns a human-readable representation of the action.
func (a DeleteAction) String() string {
	return fmt.Sprintf("Delete[%d:%d)", a.Offset, a.Offset+a.Length)
}

// ReplaceAction overwrites the single byte at Offset with New. Old is the
// byte the action expects to find there.
type ReplaceAction struct {
	Offset int
	Old    byte
	New    byte
}

// Apply overwrites the byte and returns the swap back to whatever byte was
// actually there.
func (a ReplaceAction) Apply(c *Contents) Action {
	c.MoveTo(a.Offset)
	old, ok := c.WriteByteAt(a.Offset, a.New)
	if !ok {
		old = a.Old
	}
	return ReplaceAction{Offset: a.Offset, Old: a.New, New: old}
}

// Len returns 1.
func (a ReplaceAction) Len() int {
	return 1
}

// String returns a human-readable representation of the action.
func (a ReplaceAction) String() string {
	return fmt.Sprintf("Replace(%d, %q -> %q)", a.Offset, a.Old, a.New)
}

// Apply replays a against the contents and returns its inverse.
// A nil action is a no-op and yields nil.
func (c *Contents) Apply(a Action) Action {
	c.mustLive()
	if a == nil {
		return nil
	}
	return a.Apply(c)
}

// RecordInsert returns the action that undoes inserting text at offset.
// Call it before the insertion.
func (c *Contents) RecordInsert(offset int, text []byte) Action {
	c.mustLive()
	return DeleteAction{
		Offset: mark.Clamp(offset, c.size),
		Length: len(text),
	}
}

// RecordDelete returns the action that undoes deleting n bytes at offset,
// with the bytes about to be removed copied out. Call it before the
// deletion.
func (c *Contents) RecordDelete(offset, n int) Action {
	c.mustLive()
	at := mark.Clamp(offset, c.size)
	if n < 0 {
		n = 0
	}
	if n > c.size-at {
		n = c.size - at
	}
	return InsertAction{
		Offset: at,
		Bytes:  c.Slice(at, at+n),
	}
}

// RecordReplace returns the action that undoes overwriting the byte at
// offset with b. Call it before the overwrite.
func (c *Contents) RecordReplace(offset int, b byte) Action {
	c.mustLive()
	return ReplaceAction{
		Offset: offset,
		Old:    b,
		New:    c.ReadAt(offset),
	}
}
