package engine

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/exp/mmap"

	"github.com/dshills/textcore/internal/engine/buffer"
	"github.com/dshills/textcore/internal/engine/history"
	"github.com/dshills/textcore/internal/engine/pattern"
	"github.com/dshills/textcore/internal/logging"
)

// Mode controls whether a buffer accepts edits.
type Mode int

const (
	// ReadWrite buffers accept edits.
	ReadWrite Mode = iota
	// ReadOnly buffers reject edits with ErrReadOnly.
	ReadOnly
)

// String returns the string representation of the mode.
func (m Mode) String() string {
	switch m {
	case ReadWrite:
		return "read-write"
	case ReadOnly:
		return "read-only"
	default:
		return "unknown"
	}
}

// Buffer is a named, identifiable document with undo history and an
// optional file association.
//
// All operations are thread-safe.
type Buffer struct {
	key uuid.UUID

	// mu guards contents, name, mode and modified.
	mu       sync.RWMutex
	contents *buffer.Contents
	name     string
	mode     Mode
	modified bool
	revision uint64 // bumped by every edit
	cleans   uint64 // bumped whenever a save or load clears modified

	history  *history.History
	patterns *pattern.Cache

	fileMu sync.Mutex
	file   string

	settings settings
	log      *logging.Logger
}

// New creates a buffer named name holding content.
func New(name, content string, opts ...Option) *Buffer {
	s := newSettings(opts)
	return newBuffer(name, buffer.NewFromString(content, buffer.WithSlack(s.slack)), s)
}

// Open creates a buffer from the file at path. The buffer is named after
// the file's base name and associated with path.
func Open(path string, opts ...Option) (*Buffer, error) {
	s := newSettings(opts)

	c, err := readFile(path, s.slack)
	if err != nil {
		return nil, err
	}

	b := newBuffer(filepath.Base(path), c, s)
	b.file = path
	b.log.Debug("opened %s (%d bytes)", path, c.Len())
	return b, nil
}

func newBuffer(name string, c *buffer.Contents, s settings) *Buffer {
	b := &Buffer{
		key:      uuid.New(),
		contents: c,
		name:     name,
		history:  history.New(s.maxUndoEntries),
		patterns: pattern.NewCache(pattern.DefaultCacheSize),
		settings: s,
	}
	if s.readOnly {
		b.mode = ReadOnly
	}
	b.log = s.log.WithComponent("buffer").WithField("name", name)
	return b
}

// readFile loads path through a memory map. The byte count must match the
// size reported by the file system.
func readFile(path string, slack int) (*buffer.Contents, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s: is a directory", path)
	}
	if info.Size() == 0 {
		return buffer.New(nil, buffer.WithSlack(slack)), nil
	}

	r, err := mmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("mapping %s: %w", path, err)
	}
	defer r.Close()

	c, err := buffer.NewFromReaderAt(r, info.Size(), buffer.WithSlack(slack))
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return c, nil
}

// Key returns the buffer's process-unique identity.
func (b *Buffer) Key() uuid.UUID {
	return b.key
}

// Equal reports whether b and other are the same buffer.
func (b *Buffer) Equal(other *Buffer) bool {
	return other != nil && b.key == other.key
}

// Name returns the buffer name.
func (b *Buffer) Name() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.name
}

// SetName renames the buffer.
func (b *Buffer) SetName(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.name = name
}

// File returns the associated file path, or "" if there is none.
func (b *Buffer) File() string {
	b.fileMu.Lock()
	defer b.fileMu.Unlock()
	return b.file
}

// SetFile associates the buffer with path without reading or writing it.
func (b *Buffer) SetFile(path string) {
	b.fileMu.Lock()
	defer b.fileMu.Unlock()
	b.file = path
}

// Mode returns the buffer mode.
func (b *Buffer) Mode() Mode {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.mode
}

// SetMode sets the buffer mode.
func (b *Buffer) SetMode(m Mode) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.mode = m
}

// Modified reports whether the buffer changed since it was created,
// loaded or saved.
func (b *Buffer) Modified() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.modified
}

// Load replaces the contents with the file at path and associates the
// buffer with it. Undo history is cleared and the point moves to 0. On
// error the buffer is unchanged.
func (b *Buffer) Load(path string) error {
	// I/O happens before the contents lock is taken.
	c, err := readFile(path, b.settings.slack)
	if err != nil {
		return err
	}

	b.swapContents(c)
	b.SetFile(path)
	b.log.Debug("loaded %s (%d bytes)", path, c.Len())
	return nil
}

func (b *Buffer) swapContents(c *buffer.Contents) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.contents.Released() {
		panic(ErrReleased)
	}
	b.contents.Release()
	b.contents = c
	b.modified = false
	b.cleans++
	b.history.Clear()
}

// Save writes the contents to the associated file.
func (b *Buffer) Save() error {
	path := b.File()
	if path == "" {
		return ErrNoFile
	}
	return b.writeFile(path)
}

// SaveAs writes the contents to path and associates the buffer with it.
func (b *Buffer) SaveAs(path string) error {
	if err := b.writeFile(path); err != nil {
		return err
	}
	b.SetFile(path)
	return nil
}

// writeFile writes [0, Len) verbatim. The data goes to a temporary file in
// the target directory which is then renamed over path.
func (b *Buffer) writeFile(path string) (err error) {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}

	perm := os.FileMode(0o644)
	if info, statErr := os.Stat(path); statErr == nil {
		perm = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(dir, "."+base+".*.tmp")
	if err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	n, rev, err := b.writeSnapshot(tmp)
	if err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}

	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	if err = tmp.Chmod(perm); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}

	b.mu.Lock()
	if b.revision == rev {
		b.modified = false
	}
	b.cleans++
	b.mu.Unlock()

	b.log.Debug("saved %s (%d bytes)", path, n)
	return nil
}

func (b *Buffer) writeSnapshot(w io.Writer) (int64, uint64, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	n, err := b.contents.WriteTo(w)
	return n, b.revision, err
}

// Release frees the contents and clears the history. Any later operation
// that touches the contents panics with ErrReleased. Calling Release again
// is a no-op.
func (b *Buffer) Release() {
	b.mu.Lock()
	released := b.contents.Released()
	b.contents.Release()
	b.mu.Unlock()

	if released {
		return
	}
	b.history.Clear()
	b.log.Debug("released")
}
