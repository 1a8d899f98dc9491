// Package pattern wraps regular expression matching for buffer searches.
//
// Matching is delegated to the standard library's RE2 engine. Expressions
// are compiled in multi-line mode: ^ and $ match at line boundaries, \A and
// \z at the ends of the text. A search that starts mid-text still sees the
// bytes before its start, so anchors and \b behave as they would over the
// whole text.
package pattern

import (
	"errors"
	"fmt"
	"regexp"
	"sync"
)

// ErrInvalidPattern is returned when an expression fails to compile.
var ErrInvalidPattern = errors.New("invalid pattern")

// Match is a half-open byte range [Start, End) in the searched slice.
type Match struct {
	Start int
	End   int
}

// Len returns the length of the match in bytes.
func (m Match) Len() int {
	return m.End - m.Start
}

// String returns a human-readable representation of the match.
func (m Match) String() string {
	return fmt.Sprintf("[%d:%d)", m.Start, m.End)
}

// Regex is a compiled pattern.
type Regex struct {
	expr string
	re   *regexp.Regexp
	// tail matches expr as group 1 at or after the second byte of its
	// input. The first byte supplies the context for assertions.
	tail *regexp.Regexp
}

// Compile parses expr into a Regex.
func Compile(expr string) (*Regex, error) {
	re, err := regexp.Compile("(?m)" + expr)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidPattern, expr, err)
	}
	tail, err := regexp.Compile(`\A(?s:.)(?s:.*?)((?m)` + expr + `)`)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidPattern, expr, err)
	}
	return &Regex{expr: expr, re: re, tail: tail}, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(expr string) *Regex {
	r, err := Compile(expr)
	if err != nil {
		panic(err)
	}
	return r
}

// String returns the source expression.
func (r *Regex) String() string {
	return r.expr
}

// FirstMatch returns the leftmost match in b starting at or after from,
// with offsets relative to the start of b. The byte before from is context:
// ^ and \b at from hold only if they hold in b as a whole.
func (r *Regex) FirstMatch(b []byte, from int) (Match, bool) {
	if from < 0 {
		from = 0
	}
	if from > len(b) {
		return Match{}, false
	}

	if from == 0 {
		loc := r.re.FindIndex(b)
		if loc == nil {
			return Match{}, false
		}
		return Match{Start: loc[0], End: loc[1]}, true
	}

	base := from - 1
	loc := r.tail.FindSubmatchIndex(b[base:])
	if loc == nil {
		return Match{}, false
	}
	return Match{Start: base + loc[2], End: base + loc[3]}, true
}

// Cache memoizes compiled expressions. It is safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*Regex
	max     int
}

// DefaultCacheSize is the number of expressions a zero-sized cache keeps.
const DefaultCacheSize = 64

// NewCache creates a cache holding at most max expressions.
func NewCache(max int) *Cache {
	if max <= 0 {
		max = DefaultCacheSize
	}
	return &Cache{
		entries: make(map[string]*Regex),
		max:     max,
	}
}

// Compile returns the cached Regex for expr, compiling it on first use.
// Failed compilations are not cached.
func (c *Cache) Compile(expr string) (*Regex, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if r, ok := c.entries[expr]; ok {
		return r, nil
	}

	r, err := Compile(expr)
	if err != nil {
		return nil, err
	}

	if len(c.entries) >= c.max {
		clear(c.entries)
	}
	c.entries[expr] = r
	return r, nil
}

// Len returns the number of cached expressions.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
