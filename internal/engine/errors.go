package engine

import (
	"errors"

	"github.com/dshills/textcore/internal/engine/buffer"
	"github.com/dshills/textcore/internal/engine/history"
)

// Errors returned by buffer handle operations.
var (
	// ErrReadOnly indicates an edit was attempted on a read-only buffer.
	ErrReadOnly = errors.New("buffer is read-only")

	// ErrNoFile indicates a file operation on a buffer with no file.
	ErrNoFile = errors.New("buffer has no associated file")

	// ErrShortRead indicates a file yielded fewer bytes than its size.
	ErrShortRead = buffer.ErrShortRead

	// ErrReleased is the panic value for use after Release.
	ErrReleased = buffer.ErrReleased

	// ErrNothingToUndo indicates the undo stack is empty.
	ErrNothingToUndo = history.ErrNothingToUndo

	// ErrNothingToRedo indicates the redo stack is empty.
	ErrNothingToRedo = history.ErrNothingToRedo
)
