package engine

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dshills/textcore/internal/config"
	"github.com/dshills/textcore/internal/engine/pattern"
	"github.com/dshills/textcore/internal/watcher"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// ============================================================================
// Creation and Identity
// ============================================================================

func TestNew(t *testing.T) {
	b := New("scratch", "Hello, World!")

	if b.Name() != "scratch" {
		t.Errorf("expected name scratch, got %q", b.Name())
	}
	if b.Text() != "Hello, World!" {
		t.Errorf("expected %q, got %q", "Hello, World!", b.Text())
	}
	if b.Len() != 13 {
		t.Errorf("expected len 13, got %d", b.Len())
	}
	if b.Point() != 0 {
		t.Errorf("expected point 0, got %d", b.Point())
	}
	if b.File() != "" {
		t.Errorf("expected no file, got %q", b.File())
	}
	if b.Modified() {
		t.Error("new buffer should not be modified")
	}
	if b.Mode() != ReadWrite {
		t.Errorf("expected read-write, got %v", b.Mode())
	}
}

func TestKeyAndEqual(t *testing.T) {
	a := New("same", "x")
	b := New("same", "x")

	if a.Key() == b.Key() {
		t.Error("keys must be unique")
	}
	if a.Equal(b) {
		t.Error("distinct buffers with equal names must not be equal")
	}
	if !a.Equal(a) {
		t.Error("buffer should equal itself")
	}
	if a.Equal(nil) {
		t.Error("buffer should not equal nil")
	}
}

func TestSetNameAndFile(t *testing.T) {
	b := New("a", "")
	b.SetName("b")
	b.SetFile("/tmp/b.txt")

	if b.Name() != "b" {
		t.Errorf("expected name b, got %q", b.Name())
	}
	if b.File() != "/tmp/b.txt" {
		t.Errorf("expected file /tmp/b.txt, got %q", b.File())
	}
}

func TestWithConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Buffer.Slack = 0
	cfg.Buffer.ReadOnly = true

	b := New("cfg", "abc", WithConfig(cfg))

	if b.Cap() != 3 {
		t.Errorf("expected capacity 3 with zero slack, got %d", b.Cap())
	}
	if b.Mode() != ReadOnly {
		t.Error("expected read-only from config")
	}
}

// ============================================================================
// Files
// ============================================================================

func TestOpenSaveRoundTrip(t *testing.T) {
	content := "line one\r\nline two\x00\xff\n"
	path := writeFile(t, "data.bin", content)

	b, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if b.Name() != "data.bin" {
		t.Errorf("expected name data.bin, got %q", b.Name())
	}
	if b.File() != path {
		t.Errorf("expected file %s, got %s", path, b.File())
	}
	if b.Text() != content {
		t.Fatalf("content not loaded verbatim: %q", b.Text())
	}

	out := filepath.Join(t.TempDir(), "copy.bin")
	if err := b.SaveAs(out); err != nil {
		t.Fatalf("SaveAs failed: %v", err)
	}
	if b.File() != out {
		t.Errorf("SaveAs should associate the new path, got %s", b.File())
	}

	c, err := Open(out)
	if err != nil {
		t.Fatalf("Open copy failed: %v", err)
	}
	if !bytes.Equal(c.Bytes(), b.Bytes()) || c.Len() != b.Len() {
		t.Errorf("round trip mismatch: %q vs %q", c.Text(), b.Text())
	}
}

func TestOpenEmptyFile(t *testing.T) {
	path := writeFile(t, "empty.txt", "")

	b, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if b.Len() != 0 {
		t.Errorf("expected empty buffer, got len %d", b.Len())
	}
}

func TestOpenMissing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "absent.txt"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func TestOpenDirectory(t *testing.T) {
	if _, err := Open(t.TempDir()); err == nil {
		t.Error("expected error opening a directory")
	}
}

func TestSaveEditsAndModified(t *testing.T) {
	path := writeFile(t, "notes.txt", "hello")

	b, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	b.SetPoint(b.Len())
	b.InsertString(" world")

	if !b.Modified() {
		t.Error("edit should mark buffer modified")
	}
	if err := b.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if b.Modified() {
		t.Error("save should clear modified")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "hello world" {
		t.Errorf("expected %q on disk, got %q", "hello world", data)
	}

	// No temporary files left behind.
	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("expected only the saved file, found %d entries", len(entries))
	}
}

func TestSavePreservesPermissions(t *testing.T) {
	path := writeFile(t, "script.sh", "#!/bin/sh\n")
	if err := os.Chmod(path, 0o755); err != nil {
		t.Fatal(err)
	}

	b, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := b.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o755 {
		t.Errorf("expected mode 0755, got %v", info.Mode().Perm())
	}
}

func TestSaveWithoutFile(t *testing.T) {
	b := New("scratch", "x")
	if err := b.Save(); !errors.Is(err, ErrNoFile) {
		t.Errorf("expected ErrNoFile, got %v", err)
	}
}

func TestLoadReplacesContents(t *testing.T) {
	path := writeFile(t, "other.txt", "fresh")

	b := New("scratch", "stale content")
	b.SetPoint(5)
	b.InsertString("!")

	if err := b.Load(path); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if b.Text() != "fresh" {
		t.Errorf("expected %q, got %q", "fresh", b.Text())
	}
	if b.Point() != 0 {
		t.Errorf("expected point 0 after load, got %d", b.Point())
	}
	if b.CanUndo() {
		t.Error("load should clear history")
	}
	if b.Modified() {
		t.Error("load should clear modified")
	}
	if b.File() != path {
		t.Errorf("expected file %s, got %s", path, b.File())
	}
}

func TestLoadFailureKeepsContents(t *testing.T) {
	b := New("scratch", "keep me")
	if err := b.Load(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Fatal("expected error")
	}
	if b.Text() != "keep me" {
		t.Errorf("failed load changed contents: %q", b.Text())
	}
}

// ============================================================================
// Edits
// ============================================================================

func TestInsertAndDelete(t *testing.T) {
	b := New("t", "Hello World")

	b.SetPoint(5)
	n, err := b.Insert([]byte(","))
	if err != nil || n != 1 {
		t.Fatalf("Insert = (%d, %v)", n, err)
	}
	if b.Text() != "Hello, World" {
		t.Errorf("got %q", b.Text())
	}
	if b.Point() != 6 {
		t.Errorf("expected point 6, got %d", b.Point())
	}

	n, _ = b.DeleteRange(12, 7)
	if n != 5 || b.Text() != "Hello, " {
		t.Errorf("DeleteRange: n=%d text=%q", n, b.Text())
	}

	n, _ = b.DeleteAt(100, 3)
	if n != 0 {
		t.Errorf("delete past end should remove nothing, got %d", n)
	}
}

func TestInsertAtClamps(t *testing.T) {
	b := New("t", "abc")
	b.InsertAt(-5, []byte(">"))
	b.InsertAt(99, []byte("<"))

	if b.Text() != ">abc<" {
		t.Errorf("got %q", b.Text())
	}
}

func TestEmptyEditRecordsNothing(t *testing.T) {
	b := New("t", "abc")
	b.Insert(nil)
	b.Delete(0)

	if b.CanUndo() || b.Modified() {
		t.Error("no-op edits must not be recorded")
	}
}

func TestDeleteRegion(t *testing.T) {
	b := New("t", "0123456789")
	b.SetPoint(7)
	b.SetMark(SelectionMark, 2)

	if !b.HasSelection() {
		t.Fatal("expected selection")
	}
	n, err := b.DeleteRegion()
	if err != nil || n != 5 {
		t.Fatalf("DeleteRegion = (%d, %v)", n, err)
	}
	if b.Text() != "01789" {
		t.Errorf("got %q", b.Text())
	}
	if b.Point() != 2 || b.Mark(SelectionMark) != 2 {
		t.Errorf("marks should collapse to 2, got point %d selection %d", b.Point(), b.Mark(SelectionMark))
	}

	b.Undo()
	if b.Text() != "0123456789" {
		t.Errorf("undo: got %q", b.Text())
	}
}

func TestDeleteRegionWithoutSelection(t *testing.T) {
	b := New("t", "abc")
	b.SetPoint(1)
	if n, _ := b.DeleteRegion(); n != 0 {
		t.Errorf("expected nothing removed, got %d", n)
	}
}

func TestWriteByteAtSingleUndo(t *testing.T) {
	b := New("t", "cat")

	ok, err := b.WriteByteAt(0, 'b')
	if !ok || err != nil {
		t.Fatalf("WriteByteAt = (%v, %v)", ok, err)
	}
	if b.Text() != "bat" {
		t.Errorf("got %q", b.Text())
	}

	if err := b.Undo(); err != nil {
		t.Fatal(err)
	}
	if b.Text() != "cat" {
		t.Errorf("one undo must restore the byte, got %q", b.Text())
	}
	if b.CanUndo() {
		t.Error("overwrite should be a single undo step")
	}

	ok, _ = b.WriteByteAt(3, 'x')
	if ok {
		t.Error("write at Len should be ignored")
	}
}

func TestReadAtSentinel(t *testing.T) {
	b := New("t", "ab")

	if b.ReadAt(0) != 'a' {
		t.Errorf("expected 'a', got %q", b.ReadAt(0))
	}
	if b.ReadAt(b.Len()) != 0 || b.ReadAt(-1) != 0 {
		t.Error("out of range reads should return 0")
	}
}

func TestTextRange(t *testing.T) {
	b := New("t", "hello world")

	if got := b.TextRange(6, 11); got != "world" {
		t.Errorf("expected world, got %q", got)
	}
	if got := b.TextRange(6, 99); got != "world" {
		t.Errorf("expected clamped world, got %q", got)
	}
	if got := b.TextRange(5, 2); got != "" {
		t.Errorf("expected empty, got %q", got)
	}
}

func TestReadOnly(t *testing.T) {
	b := New("t", "abc", WithReadOnly())

	if _, err := b.Insert([]byte("x")); !errors.Is(err, ErrReadOnly) {
		t.Errorf("Insert: expected ErrReadOnly, got %v", err)
	}
	if _, err := b.DeleteAt(0, 1); !errors.Is(err, ErrReadOnly) {
		t.Errorf("DeleteAt: expected ErrReadOnly, got %v", err)
	}
	if _, err := b.WriteByteAt(0, 'x'); !errors.Is(err, ErrReadOnly) {
		t.Errorf("WriteByteAt: expected ErrReadOnly, got %v", err)
	}
	if err := b.Undo(); !errors.Is(err, ErrReadOnly) {
		t.Errorf("Undo: expected ErrReadOnly, got %v", err)
	}
	if b.Text() != "abc" {
		t.Errorf("read-only buffer changed: %q", b.Text())
	}

	// Navigation still works.
	b.SetPoint(2)
	if b.Point() != 2 {
		t.Errorf("expected point 2, got %d", b.Point())
	}

	b.SetMode(ReadWrite)
	if _, err := b.Insert([]byte("x")); err != nil {
		t.Errorf("Insert after SetMode: %v", err)
	}
}

func TestModeString(t *testing.T) {
	if ReadOnly.String() != "read-only" || ReadWrite.String() != "read-write" {
		t.Error("unexpected mode strings")
	}
}

// ============================================================================
// Undo/Redo
// ============================================================================

func TestUndoRedo(t *testing.T) {
	b := New("t", "hello")
	b.SetPoint(5)
	b.InsertString(" world")
	b.DeleteAt(0, 1)

	steps := []string{"hello world", "hello"}
	for _, want := range steps {
		if err := b.Undo(); err != nil {
			t.Fatalf("Undo: %v", err)
		}
		if b.Text() != want {
			t.Errorf("after undo: expected %q, got %q", want, b.Text())
		}
	}

	if err := b.Undo(); !errors.Is(err, ErrNothingToUndo) {
		t.Errorf("expected ErrNothingToUndo, got %v", err)
	}

	for _, want := range []string{"hello world", "ello world"} {
		if err := b.Redo(); err != nil {
			t.Fatalf("Redo: %v", err)
		}
		if b.Text() != want {
			t.Errorf("after redo: expected %q, got %q", want, b.Text())
		}
	}

	if err := b.Redo(); !errors.Is(err, ErrNothingToRedo) {
		t.Errorf("expected ErrNothingToRedo, got %v", err)
	}
}

func TestUndoGroup(t *testing.T) {
	b := New("t", "")

	b.BeginGroup("type word")
	for _, ch := range "word" {
		b.Insert([]byte{byte(ch)})
	}
	b.EndGroup()

	if info := b.UndoInfo(); len(info) != 1 || info[0].Description != "type word" {
		t.Errorf("expected one named step, got %+v", info)
	}

	b.Undo()
	if b.Text() != "" {
		t.Errorf("group undo: got %q", b.Text())
	}
}

func TestTransactionRollback(t *testing.T) {
	b := New("t", "keep")
	b.SetPoint(4)

	boom := errors.New("boom")
	err := b.Transaction("fail", func() error {
		b.InsertString(" partial")
		return boom
	})

	if !errors.Is(err, boom) {
		t.Errorf("expected boom, got %v", err)
	}
	if b.Text() != "keep" {
		t.Errorf("failed transaction should roll back, got %q", b.Text())
	}

	err = b.Transaction("ok", func() error {
		_, err := b.InsertString("!")
		return err
	})
	if err != nil || b.Text() != "keep!" {
		t.Errorf("transaction: err=%v text=%q", err, b.Text())
	}
}

func TestTransactionRollbackAtUndoLimit(t *testing.T) {
	b := New("t", "", WithMaxUndoEntries(2))
	b.InsertString("a")
	b.InsertString("b")

	boom := errors.New("boom")
	err := b.Transaction("fail", func() error {
		b.InsertString("XYZ")
		return boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("expected boom, got %v", err)
	}
	if b.Text() != "ab" {
		t.Errorf("expected %q, got %q", "ab", b.Text())
	}
}

func TestUndoInsideTransaction(t *testing.T) {
	b := New("t", "base")
	b.SetPoint(4)
	b.InsertString("1")

	err := b.Transaction("edit", func() error {
		b.InsertString("X")
		return b.Undo()
	})
	if err != nil {
		t.Fatalf("Transaction failed: %v", err)
	}
	if b.Text() != "base1" {
		t.Errorf("expected %q, got %q", "base1", b.Text())
	}

	if err := b.Undo(); err != nil {
		t.Fatalf("Undo failed: %v", err)
	}
	if b.Text() != "base" {
		t.Errorf("after undo: expected %q, got %q", "base", b.Text())
	}
}

func TestTransactionRollbackRestoresModified(t *testing.T) {
	b := New("t", "keep")

	b.Transaction("fail", func() error {
		b.InsertString("x")
		return errors.New("boom")
	})
	if b.Modified() {
		t.Error("rolled back transaction should leave the buffer unmodified")
	}

	b.InsertString("y")
	b.Transaction("fail", func() error {
		b.InsertString("x")
		return errors.New("boom")
	})
	if !b.Modified() {
		t.Error("rolled back transaction should keep an earlier modification")
	}
}

func TestTransactionRollbackAfterSave(t *testing.T) {
	path := writeFile(t, "t.txt", "keep")
	b, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	b.Transaction("fail", func() error {
		b.InsertString("x")
		if err := b.Save(); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		return errors.New("boom")
	})
	if b.Text() != "keep" {
		t.Errorf("expected %q, got %q", "keep", b.Text())
	}
	if !b.Modified() {
		t.Error("buffer differs from the saved file and should be modified")
	}
}

func TestUndoMaxEntries(t *testing.T) {
	b := New("t", "", WithMaxUndoEntries(2))
	for i := 0; i < 5; i++ {
		b.InsertString("x")
	}

	undone := 0
	for b.Undo() == nil {
		undone++
	}
	if undone != 2 || b.Text() != "xxx" {
		t.Errorf("undone %d steps, text %q", undone, b.Text())
	}
}

// ============================================================================
// Navigation and Search
// ============================================================================

func TestGotoLine(t *testing.T) {
	b := New("t", "ab\ncd\nef")

	if line := b.GotoLine(2); line != 2 || b.Point() != 3 {
		t.Errorf("GotoLine(2): line %d point %d", line, b.Point())
	}
	if line := b.GotoLine(10); line != 3 || b.Point() != 8 {
		t.Errorf("GotoLine(10): line %d point %d", line, b.Point())
	}
	if line := b.GotoLineFrom(-1); line != 2 {
		t.Errorf("GotoLineFrom(-1): line %d", line)
	}
	if b.LineOfPoint() != 1 || b.LineCount() != 3 {
		t.Errorf("LineOfPoint %d LineCount %d", b.LineOfPoint(), b.LineCount())
	}
}

func TestLineEdges(t *testing.T) {
	b := New("t", "first\nsecond")
	b.SetPoint(8)

	b.MoveToStartOfLine()
	if b.Point() != 6 || !b.AtStartOfLine() {
		t.Errorf("start of line: point %d", b.Point())
	}
	b.MoveToEndOfLine()
	if b.Point() != 12 || !b.AtEndOfLine() || !b.AtEndOfBuffer() {
		t.Errorf("end of line: point %d", b.Point())
	}
	if b.AtStartOfBuffer() {
		t.Error("not at start of buffer")
	}
	if p := b.Position(8); p.Line != 1 || p.Column != 2 {
		t.Errorf("Position(8) = %v", p)
	}
}

func TestSearch(t *testing.T) {
	b := New("t", "hello world")

	if off, ok := b.SearchForward("world"); !ok || off != 6 {
		t.Errorf("SearchForward(world) = (%d, %v)", off, ok)
	}
	if _, ok := b.SearchForward("xyz"); ok {
		t.Error("expected not found")
	}

	b.SetPoint(b.Len())
	if off, ok := b.SearchBackward("o"); !ok || off != 7 {
		t.Errorf("SearchBackward(o) = (%d, %v)", off, ok)
	}
}

func TestSearchRegex(t *testing.T) {
	b := New("t", "id=42; id=7")
	b.SetPoint(1)

	m, ok, err := b.SearchRegex(`id=\d+`)
	if err != nil || !ok {
		t.Fatalf("SearchRegex = (%v, %v, %v)", m, ok, err)
	}
	if m.Start != 7 || m.End != 11 {
		t.Errorf("expected [7:11), got %v", m)
	}

	if _, _, err := b.SearchRegex(`(`); !errors.Is(err, pattern.ErrInvalidPattern) {
		t.Errorf("expected ErrInvalidPattern, got %v", err)
	}
}

func TestMarksFollowEdits(t *testing.T) {
	b := New("t", "abcdef")
	b.SetMark(SelectionMark, 3)
	b.SetPoint(3)

	b.InsertAt(3, []byte("XY"))

	// The point advances past the insertion, the selection stays left.
	if b.Point() != 5 {
		t.Errorf("expected point 5, got %d", b.Point())
	}
	if b.Mark(SelectionMark) != 3 {
		t.Errorf("expected selection 3, got %d", b.Mark(SelectionMark))
	}

	b.UnsetMark(SelectionMark)
	if b.HasSelection() {
		t.Error("selection should be unset")
	}
}

// ============================================================================
// Lifecycle and Concurrency
// ============================================================================

func TestReleasePanics(t *testing.T) {
	b := New("t", "abc")
	b.Release()
	b.Release() // no-op

	defer func() {
		r := recover()
		if err, ok := r.(error); !ok || !errors.Is(err, ErrReleased) {
			t.Errorf("expected ErrReleased panic, got %v", r)
		}
	}()
	_ = b.Len()
}

func TestConcurrentEdits(t *testing.T) {
	b := New("t", "")
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				b.InsertAt(0, []byte("x"))
				_ = b.Text()
				b.SearchForward("xx")
			}
		}()
	}
	wg.Wait()

	if b.Len() != 800 {
		t.Errorf("expected 800 bytes, got %d", b.Len())
	}
	if b.Text() != strings.Repeat("x", 800) {
		t.Error("unexpected content")
	}
}

func TestConcurrentUndoAndEdits(t *testing.T) {
	b := New("t", "")
	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			b.InsertAt(b.Len(), []byte("ab"))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			_ = b.Undo()
		}
	}()
	wg.Wait()

	// Offsets recorded before a concurrent edit may be stale, but edits
	// land on pair boundaries so the content stays well formed.
	for b.Undo() == nil {
	}
	if b.Len()%2 != 0 || b.Text() != strings.Repeat("ab", b.Len()/2) {
		t.Errorf("content corrupted: %q", b.Text())
	}
}

func TestWatch(t *testing.T) {
	b := New("t", "x")
	if _, err := b.Watch(context.Background()); !errors.Is(err, ErrNoFile) {
		t.Errorf("expected ErrNoFile, got %v", err)
	}

	path := writeFile(t, "watched.txt", "one")
	b, err := Open(path, WithWatchDebounce(10*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := b.Watch(ctx)
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}

	if err := os.WriteFile(path, []byte("two"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case e := <-events:
		if e.Op == 0 || !strings.HasSuffix(e.Path, "watched.txt") {
			t.Errorf("unexpected event %+v", e)
		}
		if !e.Op.Has(watcher.OpWrite) && !e.Op.Has(watcher.OpCreate) {
			t.Errorf("expected write or create, got %v", e.Op)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no event for external write")
	}
}
