package script

import (
	"errors"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/textcore/internal/engine"
)

// BufferModule implements the buf table.
//
// Offsets are 0-indexed byte offsets, as in the engine. Line numbers are
// 1-indexed.
type BufferModule struct {
	buf engine.Capability
}

// NewBufferModule creates a buffer module over b.
func NewBufferModule(b engine.Capability) *BufferModule {
	return &BufferModule{buf: b}
}

// Name returns the module name.
func (m *BufferModule) Name() string {
	return "buf"
}

// Register installs the module as a global table.
func (m *BufferModule) Register(L *lua.LState) {
	mod := L.NewTable()

	funcs := map[string]lua.LGFunction{
		"name":          m.name,
		"file":          m.file,
		"modified":      m.modified,
		"read_only":     m.readOnly,
		"len":           m.bufLen,
		"text":          m.text,
		"byte":          m.byteAt,
		"point":         m.point,
		"set_point":     m.setPoint,
		"insert":        m.insert,
		"delete":        m.delete,
		"undo":          m.undo,
		"redo":          m.redo,
		"save":          m.save,
		"line":          m.line,
		"goto_line":     m.gotoLine,
		"move_lines":    m.moveLines,
		"line_start":    m.lineStart,
		"line_end":      m.lineEnd,
		"at_start":      m.atStart,
		"at_end":        m.atEnd,
		"at_line_start": m.atLineStart,
		"at_line_end":   m.atLineEnd,
		"search":        m.search,
		"search_back":   m.searchBack,
		"search_regex":  m.searchRegex,
		"mark":          m.mark,
		"set_mark":      m.setMark,
		"unset_mark":    m.unsetMark,
	}
	for name, fn := range funcs {
		L.SetField(mod, name, L.NewFunction(fn))
	}

	L.SetGlobal(m.Name(), mod)
}

// Bind registers the buf table for b in s.
func (s *State) Bind(b engine.Capability) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStateClosed
	}
	NewBufferModule(b).Register(s.L)
	return nil
}

// ============================================================================
// Properties
// ============================================================================

// name() -> string
func (m *BufferModule) name(L *lua.LState) int {
	L.Push(lua.LString(m.buf.Name()))
	return 1
}

// file() -> string or nil
func (m *BufferModule) file(L *lua.LState) int {
	path := m.buf.File()
	if path == "" {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(lua.LString(path))
	return 1
}

// modified() -> bool
func (m *BufferModule) modified(L *lua.LState) int {
	L.Push(lua.LBool(m.buf.Modified()))
	return 1
}

// read_only() -> bool
func (m *BufferModule) readOnly(L *lua.LState) int {
	L.Push(lua.LBool(m.buf.Mode() == engine.ReadOnly))
	return 1
}

// len() -> number
func (m *BufferModule) bufLen(L *lua.LState) int {
	L.Push(lua.LNumber(m.buf.Len()))
	return 1
}

// text([start, end]) -> string
// With no arguments returns the whole content.
func (m *BufferModule) text(L *lua.LState) int {
	start := L.OptInt(1, 0)
	end := L.OptInt(2, m.buf.Len())
	L.Push(lua.LString(m.buf.TextRange(start, end)))
	return 1
}

// byte(offset) -> number
// Returns 0 outside the content.
func (m *BufferModule) byteAt(L *lua.LState) int {
	L.Push(lua.LNumber(m.buf.ReadAt(L.CheckInt(1))))
	return 1
}

// ============================================================================
// Editing
// ============================================================================

// point() -> number
func (m *BufferModule) point(L *lua.LState) int {
	L.Push(lua.LNumber(m.buf.Point()))
	return 1
}

// set_point(offset)
func (m *BufferModule) setPoint(L *lua.LState) int {
	m.buf.SetPoint(L.CheckInt(1))
	return 0
}

// insert(text) -> number
// Inserts at the point and returns the number of bytes inserted.
func (m *BufferModule) insert(L *lua.LState) int {
	text := L.CheckString(1)
	n, err := m.buf.Insert([]byte(text))
	if err != nil {
		L.RaiseError("insert: %v", err)
		return 0
	}
	L.Push(lua.LNumber(n))
	return 1
}

// delete(start, end) -> number
func (m *BufferModule) delete(L *lua.LState) int {
	start := L.CheckInt(1)
	end := L.CheckInt(2)
	n, err := m.buf.DeleteRange(start, end)
	if err != nil {
		L.RaiseError("delete: %v", err)
		return 0
	}
	L.Push(lua.LNumber(n))
	return 1
}

// undo() -> bool
// Returns false when there is nothing to undo.
func (m *BufferModule) undo(L *lua.LState) int {
	return m.replay(L, "undo", m.buf.Undo, engine.ErrNothingToUndo)
}

// redo() -> bool
func (m *BufferModule) redo(L *lua.LState) int {
	return m.replay(L, "redo", m.buf.Redo, engine.ErrNothingToRedo)
}

func (m *BufferModule) replay(L *lua.LState, op string, fn func() error, empty error) int {
	err := fn()
	if errors.Is(err, empty) {
		L.Push(lua.LFalse)
		return 1
	}
	if err != nil {
		L.RaiseError("%s: %v", op, err)
		return 0
	}
	L.Push(lua.LTrue)
	return 1
}

// save([path])
func (m *BufferModule) save(L *lua.LState) int {
	var err error
	if path := L.OptString(1, ""); path != "" {
		err = m.buf.SaveAs(path)
	} else {
		err = m.buf.Save()
	}
	if err != nil {
		L.RaiseError("save: %v", err)
	}
	return 0
}

// ============================================================================
// Lines
// ============================================================================

// line() -> number
func (m *BufferModule) line(L *lua.LState) int {
	L.Push(lua.LNumber(m.buf.LineOfPoint() + 1))
	return 1
}

// goto_line(n) -> number
func (m *BufferModule) gotoLine(L *lua.LState) int {
	L.Push(lua.LNumber(m.buf.GotoLine(L.CheckInt(1))))
	return 1
}

// move_lines(delta) -> number
func (m *BufferModule) moveLines(L *lua.LState) int {
	L.Push(lua.LNumber(m.buf.GotoLineFrom(L.CheckInt(1))))
	return 1
}

// line_start()
func (m *BufferModule) lineStart(L *lua.LState) int {
	m.buf.MoveToStartOfLine()
	return 0
}

// line_end()
func (m *BufferModule) lineEnd(L *lua.LState) int {
	m.buf.MoveToEndOfLine()
	return 0
}

func (m *BufferModule) atStart(L *lua.LState) int {
	L.Push(lua.LBool(m.buf.AtStartOfBuffer()))
	return 1
}

func (m *BufferModule) atEnd(L *lua.LState) int {
	L.Push(lua.LBool(m.buf.AtEndOfBuffer()))
	return 1
}

func (m *BufferModule) atLineStart(L *lua.LState) int {
	L.Push(lua.LBool(m.buf.AtStartOfLine()))
	return 1
}

func (m *BufferModule) atLineEnd(L *lua.LState) int {
	L.Push(lua.LBool(m.buf.AtEndOfLine()))
	return 1
}

// ============================================================================
// Search
// ============================================================================

// search(needle) -> offset or nil
func (m *BufferModule) search(L *lua.LState) int {
	offset, ok := m.buf.SearchForward(L.CheckString(1))
	return pushOffset(L, offset, ok)
}

// search_back(needle) -> offset or nil
func (m *BufferModule) searchBack(L *lua.LState) int {
	offset, ok := m.buf.SearchBackward(L.CheckString(1))
	return pushOffset(L, offset, ok)
}

// search_regex(expr) -> start, end or nil
func (m *BufferModule) searchRegex(L *lua.LState) int {
	match, ok, err := m.buf.SearchRegex(L.CheckString(1))
	if err != nil {
		L.RaiseError("search_regex: %v", err)
		return 0
	}
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(lua.LNumber(match.Start))
	L.Push(lua.LNumber(match.End))
	return 2
}

func pushOffset(L *lua.LState, offset int, ok bool) int {
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(lua.LNumber(offset))
	return 1
}

// ============================================================================
// Marks
// ============================================================================

var markNames = map[string]engine.MarkID{
	"point":     engine.PointMark,
	"selection": engine.SelectionMark,
}

func checkMark(L *lua.LState, n int) engine.MarkID {
	name := L.CheckString(n)
	id, ok := markNames[name]
	if !ok {
		L.ArgError(n, "unknown mark "+name)
	}
	return id
}

// mark(name) -> offset or nil
func (m *BufferModule) mark(L *lua.LState) int {
	offset, ok := m.buf.LookupMark(checkMark(L, 1))
	return pushOffset(L, offset, ok)
}

// set_mark(name, [offset])
// Defaults to the point.
func (m *BufferModule) setMark(L *lua.LState) int {
	id := checkMark(L, 1)
	m.buf.SetMark(id, L.OptInt(2, m.buf.Point()))
	return 0
}

// unset_mark(name)
func (m *BufferModule) unsetMark(L *lua.LState) int {
	m.buf.UnsetMark(checkMark(L, 1))
	return 0
}
