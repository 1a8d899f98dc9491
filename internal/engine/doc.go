// Package engine provides the buffer handle that editor commands work with.
//
// A Buffer pairs raw contents (package buffer) with an undo history
// (package history), an identity, and an optional file association. It is
// the thread-safe face of the text core: every operation takes the
// buffer's own locks, so any number of goroutines may share one handle.
//
// # Architecture
//
// The engine is built on several sub-packages:
//
//   - buffer: contiguous byte storage with slack, a sentinel byte, marks,
//     edits and reversible actions
//   - mark: the fixed-size table holding the point and the selection
//   - scan: line separator scans over raw bytes
//   - pattern: compiled regular expressions for search
//   - history: undo/redo stacks and grouping
//
// # Locking
//
// Contents are guarded by a sync.RWMutex, the history by its own mutex, and
// the file association by a third. When two are needed the contents lock is
// taken first. Recording the undo action and applying the edit happen in
// one contents critical section, so no other edit can slip in between.
// The history never holds its lock while replaying into the buffer.
//
// # Basic Usage
//
//	b := engine.New("scratch", "Hello, World!")
//	b.SetPoint(7)
//	b.DeleteAt(7, 5)
//	b.Insert([]byte("Go"))  // "Hello, Go!"
//	b.Undo()                // "Hello, !"
//
// # Files
//
//	b, err := engine.Open("notes.txt")
//	...
//	b.Insert([]byte("TODO\n"))
//	err = b.Save() // atomic: temporary file, then rename
//
// File content is taken verbatim: no newline translation and no encoding
// interpretation. One byte is one column.
package engine
