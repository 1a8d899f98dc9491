package mark

import "fmt"

// ID identifies a mark in a Table.
type ID int

const (
	// Point is the cursor mark.
	Point ID = 0
	// Selection is the non-point end of the selection.
	Selection ID = 1
)

// MaxMarks is the number of mark slots in a Table. Ids above Selection are
// reserved and behave like Selection (optional, left-bound).
const MaxMarks = 4

// String returns a human-readable name for the id.
func (id ID) String() string {
	switch id {
	case Point:
		return "point"
	case Selection:
		return "selection"
	default:
		return fmt.Sprintf("mark(%d)", int(id))
	}
}

// Valid reports whether id indexes a slot in a Table.
func (id ID) Valid() bool {
	return id >= 0 && id < MaxMarks
}

// LeftBound reports whether an insertion exactly at a mark with this id
// leaves the mark in place.
func (id ID) LeftBound() bool {
	return id != Point
}

// Clamp limits i to [0, end].
func Clamp(i, end int) int {
	if i > end {
		i = end
	}
	if i < 0 {
		i = 0
	}
	return i
}

type slot struct {
	offset    int
	leftBound bool
	present   bool
}

// Table is a fixed-size mark table. The zero value holds a point at offset 0
// and no other marks.
type Table struct {
	slots [MaxMarks]slot
}

// NewTable returns a table with the point at offset 0.
func NewTable() Table {
	var t Table
	t.slots[Point] = slot{present: true}
	return t
}

// Get returns the offset of the mark. An absent mark resolves to the point.
func (t *Table) Get(id ID) int {
	if off, ok := t.Lookup(id); ok {
		return off
	}
	return t.slots[Point].offset
}

// Lookup returns the offset of the mark and whether it is present.
// The point is always present.
func (t *Table) Lookup(id ID) (int, bool) {
	if id == Point {
		return t.slots[Point].offset, true
	}
	if !id.Valid() || !t.slots[id].present {
		return 0, false
	}
	return t.slots[id].offset, true
}

// Set places the mark at offset clamped to [0, end].
// Invalid ids are ignored.
func (t *Table) Set(id ID, offset, end int) {
	if !id.Valid() {
		return
	}
	t.slots[id] = slot{
		offset:    Clamp(offset, end),
		leftBound: id.LeftBound(),
		present:   true,
	}
}

// Unset removes the mark. The point cannot be removed.
func (t *Table) Unset(id ID) {
	if id == Point || !id.Valid() {
		return
	}
	t.slots[id] = slot{}
}

// Has reports whether the mark is present.
func (t *Table) Has(id ID) bool {
	_, ok := t.Lookup(id)
	return ok
}

// Region returns the point and the selection mark ordered so start <= end.
// Without a selection mark the region is empty at the point.
func (t *Table) Region() (start, end int) {
	p := t.Get(Point)
	s := t.Get(Selection)
	if s < p {
		return s, p
	}
	return p, s
}

// Shift moves every present mark after an edit at from that changed the
// buffer length by delta.
func (t *Table) Shift(from, delta int) {
	if delta == 0 {
		return
	}
	for i := range t.slots {
		if !t.present(ID(i)) {
			continue
		}
		s := &t.slots[i]
		s.offset = ShiftOffset(s.offset, from, delta, s.leftBound)
	}
}

// ClampAll limits every present mark to [0, end].
func (t *Table) ClampAll(end int) {
	for i := range t.slots {
		if t.present(ID(i)) {
			t.slots[i].offset = Clamp(t.slots[i].offset, end)
		}
	}
}

// Reset clears every mark and returns the point to offset 0.
func (t *Table) Reset() {
	*t = NewTable()
}

// Check returns an error if any present mark lies outside [0, end].
func (t *Table) Check(end int) error {
	for i, s := range t.slots {
		if !t.present(ID(i)) {
			continue
		}
		if s.offset < 0 || s.offset > end {
			return fmt.Errorf("%s at %d outside [0, %d]", ID(i), s.offset, end)
		}
	}
	return nil
}

func (t *Table) present(id ID) bool {
	return id == Point || t.slots[id].present
}

// ShiftOffset applies the shift rule to a single offset p.
func ShiftOffset(p, from, delta int, leftBound bool) int {
	if p < from {
		return p
	}
	if p == from && leftBound {
		return p
	}
	p += delta
	if p < from {
		p = from
	}
	return p
}
