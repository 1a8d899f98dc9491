package buffer

import (
	"errors"
	"fmt"
	"io"

	"github.com/dshills/textcore/internal/engine/mark"
)

// Errors returned by buffer operations.
var (
	ErrShortRead = errors.New("short read")
	ErrReleased  = errors.New("buffer used after release")
)

// DefaultSlack is the extra capacity allocated past the immediate need.
const DefaultSlack = 2048

// Contents is the raw storage of a document plus its marks.
type Contents struct {
	data  []byte // len(data) == capacity+1; data[size] == 0
	size  int
	slack int
	marks mark.Table
}

// New creates contents holding a copy of text.
func New(text []byte, opts ...Option) *Contents {
	c := newEmpty(len(text), opts)
	copy(c.data, text)
	c.size = len(text)
	c.data[c.size] = 0
	return c
}

// NewFromString creates contents holding s.
func NewFromString(s string, opts ...Option) *Contents {
	c := newEmpty(len(s), opts)
	copy(c.data, s)
	c.size = len(s)
	c.data[c.size] = 0
	return c
}

// NewFromReaderAt reads exactly size bytes from r into a freshly allocated
// region. If fewer bytes arrive, no contents are returned and the error
// wraps ErrShortRead.
func NewFromReaderAt(r io.ReaderAt, size int64, opts ...Option) (*Contents, error) {
	if size < 0 {
		return nil, fmt.Errorf("negative size %d", size)
	}
	c := newEmpty(int(size), opts)
	if size == 0 {
		return c, nil
	}

	n, err := r.ReadAt(c.data[:size], 0)
	if int64(n) != size {
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: read %d of %d bytes: %v", ErrShortRead, n, size, err)
		}
		return nil, fmt.Errorf("%w: read %d of %d bytes", ErrShortRead, n, size)
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	c.size = int(size)
	c.data[c.size] = 0
	return c, nil
}

func newEmpty(n int, opts []Option) *Contents {
	c := &Contents{
		slack: DefaultSlack,
		marks: mark.NewTable(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.data = make([]byte, n+c.slack+1)
	return c
}

// Len returns the logical content length in bytes.
func (c *Contents) Len() int {
	c.mustLive()
	return c.size
}

// Cap returns the allocated capacity, excluding the sentinel byte.
func (c *Contents) Cap() int {
	c.mustLive()
	return len(c.data) - 1
}

// Slack returns the growth slack used when the region is enlarged.
func (c *Contents) Slack() int {
	return c.slack
}

// Resize reallocates the region to hold capacity bytes, preserving the
// content, and returns the new capacity. Capacity below the content length
// is raised to the content length.
func (c *Contents) Resize(capacity int) int {
	c.mustLive()
	if capacity < c.size {
		capacity = c.size
	}
	data := make([]byte, capacity+1)
	copy(data, c.data[:c.size+1])
	c.data = data
	return capacity
}

// Release drops the region. Calling it again is a no-op; calling anything
// else afterwards panics.
func (c *Contents) Release() {
	c.data = nil
	c.size = 0
}

// Released reports whether Release has been called.
func (c *Contents) Released() bool {
	return c.data == nil
}

func (c *Contents) mustLive() {
	if c.data == nil {
		panic(ErrReleased)
	}
}

// Bytes returns a copy of the content.
func (c *Contents) Bytes() []byte {
	c.mustLive()
	out := make([]byte, c.size)
	copy(out, c.data[:c.size])
	return out
}

// String returns the content as a string.
func (c *Contents) String() string {
	c.mustLive()
	return string(c.data[:c.size])
}

// Slice returns a copy of the content in [start, end), clamped to the
// content bounds.
func (c *Contents) Slice(start, end int) []byte {
	c.mustLive()
	start = mark.Clamp(start, c.size)
	end = mark.Clamp(end, c.size)
	if end <= start {
		return []byte{}
	}
	out := make([]byte, end-start)
	copy(out, c.data[start:end])
	return out
}

// WriteTo writes the content verbatim to w.
func (c *Contents) WriteTo(w io.Writer) (int64, error) {
	c.mustLive()
	n, err := w.Write(c.data[:c.size])
	return int64(n), err
}

// raw returns the content plus its sentinel. The slice must not be retained
// across mutations.
func (c *Contents) raw() []byte {
	c.mustLive()
	return c.data[:c.size+1]
}

// CheckInvariants verifies the storage and mark invariants.
func (c *Contents) CheckInvariants() error {
	if c.data == nil {
		return ErrReleased
	}
	if c.size < 0 || c.size > len(c.data)-1 {
		return fmt.Errorf("content length %d outside capacity %d", c.size, len(c.data)-1)
	}
	if c.data[c.size] != 0 {
		return fmt.Errorf("missing sentinel at %d", c.size)
	}
	return c.marks.Check(c.size)
}

func (c *Contents) checkInvariants() {
	if !debugInvariants {
		return
	}
	if err := c.CheckInvariants(); err != nil {
		panic(fmt.Sprintf("buffer invariant violated: %v", err))
	}
}
