// Package buffer provides the contiguous byte storage behind a document.
//
// Contents owns a single resizable byte region together with the mark table
// that tracks the point (cursor) and the selection mark. It provides:
//
//   - Raw storage with slack capacity so runs of small edits do not
//     reallocate
//   - Insert and delete primitives that keep every mark consistent
//   - Reversible actions for undo/redo replay
//   - Line navigation and forward search over the raw bytes
//
// Basic usage:
//
//	c := buffer.NewFromString("hello world")
//
//	c.MoveTo(5)
//	c.Insert([]byte(","))  // "hello, world", point at 6
//
//	off, ok := c.SearchForward([]byte("world"))  // 7, true
//
//	inv := c.RecordDelete(0, 7)
//	c.DeleteAt(0, 7)       // "world"
//	c.Apply(inv)           // "hello, world" again
//
// Storage Layout:
//
// The region always has one byte more than its capacity. The byte directly
// after the logical end is kept at zero after every mutation, so the content
// can be handed to scanners that stop at a NUL.
//
// Every edit is O(n) in the length of the suffix it shifts. Editing
// workloads are dominated by small edits near the cursor, so this keeps
// search and file I/O on a single contiguous slice at a bounded cost.
//
// Thread Safety:
//
// Contents is not safe for concurrent use. The engine package wraps it in a
// per-document lock.
//
// Release:
//
// Release drops the region. Any further use of the Contents panics with
// ErrReleased; that is a programming error, not a runtime condition.
package buffer
