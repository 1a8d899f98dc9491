package history

import (
	"fmt"
	"time"

	"github.com/dshills/textcore/internal/engine/buffer"
)

// Target replays actions. ApplyAction performs a and returns the action
// that reverses it, or nil if there is nothing to reverse.
type Target interface {
	ApplyAction(a buffer.Action) buffer.Action
}

// entry is one undo step.
type entry struct {
	name      string
	actions   []buffer.Action
	timestamp time.Time
}

func newEntry(name string, actions ...buffer.Action) *entry {
	return &entry{
		name:      name,
		actions:   actions,
		timestamp: time.Now(),
	}
}

// replay applies the actions last to first and returns the entry that
// reverses them.
func (e *entry) replay(t Target) *entry {
	inv := make([]buffer.Action, 0, len(e.actions))
	for i := len(e.actions) - 1; i >= 0; i-- {
		if r := t.ApplyAction(e.actions[i]); r != nil {
			inv = append(inv, r)
		}
	}
	return newEntry(e.name, inv...)
}

func (e *entry) description() string {
	switch {
	case e.name != "":
		return e.name
	case len(e.actions) == 1:
		return e.actions[0].String()
	default:
		return fmt.Sprintf("%d edits", len(e.actions))
	}
}

func (e *entry) info() EntryInfo {
	bytes := 0
	for _, a := range e.actions {
		bytes += a.Len()
	}
	return EntryInfo{
		Description: e.description(),
		Timestamp:   e.timestamp,
		Actions:     len(e.actions),
		Bytes:       bytes,
	}
}

// EntryInfo provides read-only info about an undo step.
// Used for displaying undo/redo history to users.
type EntryInfo struct {
	Description string    // Human-readable description
	Timestamp   time.Time // When the step was recorded or last replayed
	Actions     int       // Number of actions in the step
	Bytes       int       // Total bytes the actions touch
}
