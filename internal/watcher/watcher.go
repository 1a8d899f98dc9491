// Package watcher notifies when a buffer's associated file changes on disk.
//
// A Watcher follows a single file. It watches the file's directory rather
// than the file itself so that atomic saves (write to a temporary file, then
// rename over the original) keep being reported. Rapid changes are coalesced
// into one event per debounce window.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dshills/textcore/internal/logging"
)

// ErrPathNotExist is returned when the watched file's directory is missing.
var ErrPathNotExist = errors.New("path does not exist")

// DefaultDebounce is the coalescing window used when none is configured.
const DefaultDebounce = 100 * time.Millisecond

// Op represents the type of file system operation.
type Op uint32

const (
	// OpCreate indicates the file was created.
	OpCreate Op = 1 << iota
	// OpWrite indicates the file was written to.
	OpWrite
	// OpRemove indicates the file was removed.
	OpRemove
	// OpRename indicates the file was renamed away.
	OpRename
	// OpChmod indicates file permissions were changed.
	OpChmod
)

// String returns a human-readable representation of the operation.
// Combined operations are joined with "|".
func (op Op) String() string {
	if op == 0 {
		return "NONE"
	}
	var names []string
	for _, o := range []Op{OpCreate, OpWrite, OpRemove, OpRename, OpChmod} {
		if op.Has(o) {
			names = append(names, opNames[o])
		}
	}
	return strings.Join(names, "|")
}

var opNames = map[Op]string{
	OpCreate: "CREATE",
	OpWrite:  "WRITE",
	OpRemove: "REMOVE",
	OpRename: "RENAME",
	OpChmod:  "CHMOD",
}

// Has returns true if the operation includes the given op.
func (op Op) Has(o Op) bool {
	return op&o == o
}

// Event represents a change to the watched file.
type Event struct {
	// Path is the absolute path of the file.
	Path string

	// Op is every operation seen during the debounce window.
	Op Op

	// Timestamp is when the last coalesced operation occurred.
	Timestamp time.Time
}

// Stats provides watcher status information.
type Stats struct {
	TotalEvents int64
	Errors      int64
	StartTime   time.Time
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the coalescing window. Non-positive values disable
// debouncing.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// WithBufferSize sets the size of the event channel.
func WithBufferSize(size int) Option {
	return func(w *Watcher) {
		if size > 0 {
			w.bufSize = size
		}
	}
}

// WithLogger sets the logger used for watcher errors.
func WithLogger(l *logging.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.log = l
		}
	}
}

// Watcher reports changes to one file.
type Watcher struct {
	path     string
	debounce time.Duration
	bufSize  int
	log      *logging.Logger

	fsw    *fsnotify.Watcher
	events chan Event

	startTime   time.Time
	totalEvents atomic.Int64
	totalErrors atomic.Int64

	closeOnce sync.Once
	closeCh   chan struct{}
	done      chan struct{}
}

// New starts watching path. The file's directory must exist; the file
// itself may not exist yet.
func New(path string, opts ...Option) (*Watcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		path:     absPath,
		debounce: DefaultDebounce,
		bufSize:  16,
		log:      logging.Nop(),
		closeCh:  make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.log = w.log.WithComponent("watcher").WithField("path", absPath)

	dir := filepath.Dir(absPath)
	if _, err := os.Stat(dir); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", dir, ErrPathNotExist)
		}
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, err
	}

	w.fsw = fsw
	w.events = make(chan Event, w.bufSize)
	w.startTime = time.Now()

	go w.processLoop()

	return w, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// Events returns the event channel. It is closed when the watcher closes.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Close stops the watcher. Pending coalesced events are discarded.
// Safe to call more than once.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.closeCh)
		<-w.done
		err = w.fsw.Close()
	})
	return err
}

// Stats returns watcher statistics.
func (w *Watcher) Stats() Stats {
	return Stats{
		TotalEvents: w.totalEvents.Load(),
		Errors:      w.totalErrors.Load(),
		StartTime:   w.startTime,
	}
}

// processLoop filters fsnotify events down to the watched file and
// coalesces them.
func (w *Watcher) processLoop() {
	defer close(w.done)
	defer close(w.events)

	var (
		pending *Event
		timer   *time.Timer
		fire    <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-w.closeCh:
			return

		case fsEvent, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(fsEvent.Name) != w.path {
				continue
			}
			op := convertOp(fsEvent.Op)
			if op == 0 {
				continue
			}

			now := time.Now()
			if pending == nil {
				pending = &Event{Path: w.path}
			}
			pending.Op |= op
			pending.Timestamp = now

			if w.debounce <= 0 {
				w.send(*pending)
				pending = nil
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			if pending != nil {
				w.send(*pending)
				pending = nil
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.totalErrors.Add(1)
			w.log.WithError(err).Warn("watch error")
		}
	}
}

// send delivers an event, dropping it if the consumer has fallen behind.
func (w *Watcher) send(e Event) {
	select {
	case w.events <- e:
		w.totalEvents.Add(1)
	case <-w.closeCh:
	default:
		w.totalErrors.Add(1)
		w.log.Warn("event channel full, dropping %s event", e.Op)
	}
}

// convertOp converts fsnotify.Op to watcher.Op.
func convertOp(fsOp fsnotify.Op) Op {
	var op Op
	if fsOp.Has(fsnotify.Create) {
		op |= OpCreate
	}
	if fsOp.Has(fsnotify.Write) {
		op |= OpWrite
	}
	if fsOp.Has(fsnotify.Remove) {
		op |= OpRemove
	}
	if fsOp.Has(fsnotify.Rename) {
		op |= OpRename
	}
	if fsOp.Has(fsnotify.Chmod) {
		op |= OpChmod
	}
	return op
}

// Watch follows path until ctx is done, returning the event channel. The
// channel is closed once the watcher has shut down.
func Watch(ctx context.Context, path string, opts ...Option) (<-chan Event, error) {
	w, err := New(path, opts...)
	if err != nil {
		return nil, err
	}

	go func() {
		<-ctx.Done()
		_ = w.Close()
	}()

	return w.Events(), nil
}
