package buffer

import (
	"bytes"

	"github.com/dshills/textcore/internal/engine/mark"
	"github.com/dshills/textcore/internal/engine/pattern"
	"github.com/dshills/textcore/internal/engine/scan"
)

// Marks

// Point returns the cursor offset.
func (c *Contents) Point() int {
	c.mustLive()
	return c.marks.Get(mark.Point)
}

// MoveTo places the point at i clamped to [0, Len()].
func (c *Contents) MoveTo(i int) {
	c.mustLive()
	c.marks.Set(mark.Point, i, c.size)
}

// Mark returns the offset of the mark; an absent mark resolves to the point.
func (c *Contents) Mark(id mark.ID) int {
	c.mustLive()
	return c.marks.Get(id)
}

// LookupMark returns the offset of the mark and whether it is set.
func (c *Contents) LookupMark(id mark.ID) (int, bool) {
	c.mustLive()
	return c.marks.Lookup(id)
}

// SetMark places the mark at offset clamped to [0, Len()].
func (c *Contents) SetMark(id mark.ID, offset int) {
	c.mustLive()
	c.marks.Set(id, offset, c.size)
}

// UnsetMark removes the mark. The point cannot be removed.
func (c *Contents) UnsetMark(id mark.ID) {
	c.mustLive()
	c.marks.Unset(id)
}

// Region returns the range between the point and the selection mark.
func (c *Contents) Region() Range {
	c.mustLive()
	start, end := c.marks.Region()
	return Range{Start: start, End: end}
}

// Reading

// ReadAt returns the byte at offset, or 0 when offset is outside
// [0, Len()).
func (c *Contents) ReadAt(offset int) byte {
	c.mustLive()
	if offset < 0 || offset >= c.size {
		return 0
	}
	return c.data[offset]
}

// AtStartOfBuffer reports whether the point is at offset 0.
func (c *Contents) AtStartOfBuffer() bool {
	return c.Point() == 0
}

// AtEndOfBuffer reports whether the point is at the end of the content.
func (c *Contents) AtEndOfBuffer() bool {
	return c.Point() == c.size
}

// AtStartOfLine reports whether the point is at offset 0 or directly after
// a line separator.
func (c *Contents) AtStartOfLine() bool {
	p := c.Point()
	return p == 0 || c.ReadAt(p-1) == scan.Separator
}

// AtEndOfLine reports whether the point is at the end of the content or on
// a line separator.
func (c *Contents) AtEndOfLine() bool {
	p := c.Point()
	return p == c.size || c.ReadAt(p) == scan.Separator
}

// Lines

// MoveToStartOfLine moves the point to the first byte of its line.
func (c *Contents) MoveToStartOfLine() {
	c.MoveTo(scan.LineStart(c.raw(), c.Point()))
}

// MoveToEndOfLine moves the point to the separator ending its line, or the
// end of the content on the last line.
func (c *Contents) MoveToEndOfLine() {
	c.MoveTo(scan.LineEnd(c.raw(), c.Point(), c.size))
}

// LineOfPoint returns the 0-indexed line number of the point.
func (c *Contents) LineOfPoint() int {
	return scan.CountLineSeparators(c.raw(), 0, c.Point())
}

// LineCount returns the number of lines. Empty contents have one line.
func (c *Contents) LineCount() int {
	c.mustLive()
	return scan.CountLineSeparators(c.data, 0, c.size) + 1
}

// GotoLine moves the point to the start of the 1-indexed line n and returns
// the line it landed on. Past the last line the point goes to the end of the
// content; below line 1 it goes to offset 0.
func (c *Contents) GotoLine(n int) int {
	c.mustLive()
	c.MoveTo(scan.FindLineStart(c.raw(), 0, c.size, n-1))
	return c.LineOfPoint() + 1
}

// GotoLineFrom moves the point to the start of the line delta lines away
// from the current one and returns the 1-indexed line it landed on.
func (c *Contents) GotoLineFrom(delta int) int {
	p := c.Point()
	c.MoveTo(p + scan.FindLineStart(c.raw(), p, c.size, delta))
	return c.LineOfPoint() + 1
}

// Position returns the 0-indexed line and column of offset. Every byte,
// tab included, is one column.
func (c *Contents) Position(offset int) Position {
	c.mustLive()
	offset = mark.Clamp(offset, c.size)
	raw := c.raw()
	return Position{
		Line:   scan.CountLineSeparators(raw, 0, offset),
		Column: offset - scan.LineStart(raw, offset),
	}
}

// Search

// SearchForward returns the offset of the first occurrence of needle at or
// after the point.
func (c *Contents) SearchForward(needle []byte) (int, bool) {
	p := c.Point()
	i := bytes.Index(c.data[p:c.size], needle)
	if i < 0 {
		return 0, false
	}
	return p + i, true
}

// SearchBackward returns the offset of the last occurrence of needle that
// starts before the point.
func (c *Contents) SearchBackward(needle []byte) (int, bool) {
	p := c.Point()
	end := p - 1 + len(needle)
	if end > c.size {
		end = c.size
	}
	if end < 0 {
		return 0, false
	}
	i := bytes.LastIndex(c.data[:end], needle)
	if i < 0 {
		return 0, false
	}
	return i, true
}

// SearchRegex returns the first match of re at or after the point, in
// absolute offsets.
func (c *Contents) SearchRegex(re *pattern.Regex) (pattern.Match, bool) {
	p := c.Point()
	return re.FirstMatch(c.data[:c.size], p)
}
