package buffer

import "github.com/dshills/textcore/internal/engine/mark"

// Insert inserts text at the point and returns the number of bytes inserted.
// The point moves past the inserted text.
func (c *Contents) Insert(text []byte) int {
	c.mustLive()
	return c.InsertAt(c.marks.Get(mark.Point), text)
}

// InsertString is like Insert for a string.
func (c *Contents) InsertString(s string) int {
	return c.Insert([]byte(s))
}

// InsertAt inserts text at offset, clamped to the content bounds, and
// returns the number of bytes inserted. Marks are shifted by the mark shift
// rule.
func (c *Contents) InsertAt(offset int, text []byte) int {
	c.mustLive()

	n := len(text)
	if n == 0 {
		return 0
	}
	at := mark.Clamp(offset, c.size)

	if c.size+n >= c.Cap() {
		c.Resize(c.size + n + c.slack)
	}

	// copy has memmove semantics for overlapping ranges.
	copy(c.data[at+n:c.size+n], c.data[at:c.size])
	copy(c.data[at:at+n], text)
	c.size += n
	c.data[c.size] = 0

	c.marks.Shift(at, n)
	c.checkInvariants()
	return n
}

// Delete removes n bytes starting at the point and returns the number of
// bytes removed.
func (c *Contents) Delete(n int) int {
	c.mustLive()
	return c.DeleteAt(c.marks.Get(mark.Point), n)
}

// DeleteAt removes up to n bytes starting at offset and returns the number
// of bytes removed. A range running past the end is truncated.
func (c *Contents) DeleteAt(offset, n int) int {
	c.mustLive()

	if n <= 0 {
		return 0
	}
	at := mark.Clamp(offset, c.size)
	if n > c.size-at {
		n = c.size - at
	}
	if n == 0 {
		return 0
	}

	// Moves the sentinel down with the suffix.
	copy(c.data[at:], c.data[at+n:c.size+1])
	c.size -= n
	c.data[c.size] = 0

	c.marks.Shift(at, -n)
	c.checkInvariants()
	return n
}

// DeleteRange removes the bytes in [start, end). The bounds may be given in
// either order.
func (c *Contents) DeleteRange(start, end int) int {
	if end < start {
		start, end = end, start
	}
	return c.DeleteAt(start, end-start)
}

// WriteByteAt overwrites the byte at offset with b and returns the byte it
// replaced. Offsets outside [0, Len()) are left alone and report ok=false.
// Marks do not move.
func (c *Contents) WriteByteAt(offset int, b byte) (old byte, ok bool) {
	c.mustLive()
	if offset < 0 || offset >= c.size {
		return 0, false
	}
	old = c.data[offset]
	c.data[offset] = b
	return old, true
}
