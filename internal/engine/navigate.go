package engine

import (
	"github.com/dshills/textcore/internal/engine/buffer"
	"github.com/dshills/textcore/internal/engine/mark"
	"github.com/dshills/textcore/internal/engine/pattern"
)

// Re-export commonly used types for convenience.
type (
	// Range is an ordered byte range.
	Range = buffer.Range

	// Position is a 0-indexed line/column pair.
	Position = buffer.Position

	// Match is a regular expression match.
	Match = pattern.Match

	// MarkID identifies a mark.
	MarkID = mark.ID
)

// Re-export mark ids.
const (
	PointMark     = mark.Point
	SelectionMark = mark.Selection
)

// ============================================================================
// Point and Marks
// ============================================================================

// Point returns the cursor offset.
func (b *Buffer) Point() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.contents.Point()
}

// SetPoint moves the point to offset, clamped to the content.
func (b *Buffer) SetPoint(offset int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.contents.MoveTo(offset)
}

// Mark returns the offset of mark id. An unset mark resolves to the point.
func (b *Buffer) Mark(id MarkID) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.contents.Mark(id)
}

// LookupMark returns the offset of mark id and whether it is set.
func (b *Buffer) LookupMark(id MarkID) (int, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.contents.LookupMark(id)
}

// SetMark places mark id at offset, clamped to the content.
func (b *Buffer) SetMark(id MarkID, offset int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.contents.SetMark(id, offset)
}

// UnsetMark removes mark id. The point cannot be unset.
func (b *Buffer) UnsetMark(id MarkID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.contents.UnsetMark(id)
}

// Region returns the range between the point and the selection mark.
func (b *Buffer) Region() Range {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.contents.Region()
}

// HasSelection reports whether the selection mark is set.
func (b *Buffer) HasSelection() bool {
	_, ok := b.LookupMark(SelectionMark)
	return ok
}

// ============================================================================
// Line Navigation
// ============================================================================

// MoveToStartOfLine moves the point to the start of its line.
func (b *Buffer) MoveToStartOfLine() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.contents.MoveToStartOfLine()
}

// MoveToEndOfLine moves the point to the end of its line.
func (b *Buffer) MoveToEndOfLine() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.contents.MoveToEndOfLine()
}

// GotoLine moves the point to the start of 1-indexed line n and returns
// the line actually reached.
func (b *Buffer) GotoLine(n int) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.contents.GotoLine(n)
}

// GotoLineFrom moves the point delta lines up or down and returns the
// 1-indexed line reached.
func (b *Buffer) GotoLineFrom(delta int) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.contents.GotoLineFrom(delta)
}

// LineOfPoint returns the 0-indexed line holding the point.
func (b *Buffer) LineOfPoint() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.contents.LineOfPoint()
}

// LineCount returns the number of lines.
func (b *Buffer) LineCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.contents.LineCount()
}

// Position converts offset to a line/column pair.
func (b *Buffer) Position(offset int) Position {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.contents.Position(offset)
}

// AtStartOfBuffer reports whether the point is at offset 0.
func (b *Buffer) AtStartOfBuffer() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.contents.AtStartOfBuffer()
}

// AtEndOfBuffer reports whether the point is at the end of the content.
func (b *Buffer) AtEndOfBuffer() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.contents.AtEndOfBuffer()
}

// AtStartOfLine reports whether the point starts a line.
func (b *Buffer) AtStartOfLine() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.contents.AtStartOfLine()
}

// AtEndOfLine reports whether the point ends a line.
func (b *Buffer) AtEndOfLine() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.contents.AtEndOfLine()
}

// ============================================================================
// Search
// ============================================================================

// SearchForward returns the offset of the first occurrence of needle at or
// after the point. The point does not move.
func (b *Buffer) SearchForward(needle string) (int, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.contents.SearchForward([]byte(needle))
}

// SearchBackward returns the offset of the last occurrence of needle that
// starts before the point.
func (b *Buffer) SearchBackward(needle string) (int, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.contents.SearchBackward([]byte(needle))
}

// SearchRegex returns the first match of expr at or after the point.
// Compiled expressions are cached per buffer. An invalid expression is an
// error wrapping pattern.ErrInvalidPattern.
func (b *Buffer) SearchRegex(expr string) (Match, bool, error) {
	re, err := b.patterns.Compile(expr)
	if err != nil {
		return Match{}, false, err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	m, ok := b.contents.SearchRegex(re)
	return m, ok, nil
}
