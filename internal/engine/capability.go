package engine

import (
	"context"

	"github.com/dshills/textcore/internal/watcher"
)

// Capability is the set of buffer operations editor commands rely on.
// *Buffer implements it; command layers should accept a Capability rather
// than a concrete buffer.
type Capability interface {
	Name() string
	SetName(name string)
	File() string
	SetFile(path string)
	Mode() Mode
	SetMode(m Mode)

	Load(path string) error
	Modified() bool
	Save() error
	SaveAs(path string) error

	Len() int
	Point() int
	SetPoint(offset int)
	TextRange(start, end int) string
	ReadAt(offset int) byte

	Insert(text []byte) (int, error)
	DeleteRange(start, end int) (int, error)
	Undo() error
	Redo() error

	MoveToStartOfLine()
	MoveToEndOfLine()
	GotoLine(n int) int
	GotoLineFrom(delta int) int
	LineOfPoint() int
	AtStartOfBuffer() bool
	AtEndOfBuffer() bool
	AtStartOfLine() bool
	AtEndOfLine() bool
	SearchForward(needle string) (int, bool)
	SearchBackward(needle string) (int, bool)
	SearchRegex(expr string) (Match, bool, error)

	Mark(id MarkID) int
	LookupMark(id MarkID) (int, bool)
	SetMark(id MarkID, offset int)
	UnsetMark(id MarkID)
}

var _ Capability = (*Buffer)(nil)

// Watch reports changes to the associated file until ctx is done. The
// buffer's own saves are reported too. The channel is closed when watching
// stops.
func (b *Buffer) Watch(ctx context.Context) (<-chan watcher.Event, error) {
	path := b.File()
	if path == "" {
		return nil, ErrNoFile
	}
	return watcher.Watch(ctx, path,
		watcher.WithDebounce(b.settings.watchDebounce),
		watcher.WithLogger(b.log),
	)
}
