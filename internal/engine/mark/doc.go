// Package mark tracks positions in a byte buffer that must follow the text
// around them as it is edited.
//
// A Table holds a small, fixed number of marks indexed by ID. Two ids are
// defined:
//
//   - Point (0): the cursor. Always present. An insertion exactly at the
//     point pushes it forward.
//   - Selection (1): the other end of the selection. Optional. An insertion
//     exactly at the selection mark leaves it in place (it is left-bound).
//
// When the Selection mark is absent it resolves to the point, so "no
// selection" reads as a zero-width selection at the cursor.
//
// Shift Rule:
//
// After an edit at offset from that changes the buffer length by delta,
// every mark at offset p moves as follows:
//
//	p < from                  unchanged
//	p == from, left-bound     unchanged
//	p == from, otherwise      max(from, p+delta)
//	p > from                  max(from, p+delta)
//
// Marks therefore never cross below the edit point, and a zero-length edit
// never moves anything.
//
// Tables are not safe for concurrent use; the owning buffer serializes
// access.
package mark
