// Package scan provides line-boundary scans over raw byte slices.
//
// The functions here are the hot paths behind line navigation. They sit on
// bytes.Count, bytes.IndexByte and bytes.LastIndexByte, which the runtime
// implements in assembly, and never allocate. '\n' is the only line
// separator.
package scan

import "bytes"

// Separator is the line separator byte.
const Separator = '\n'

// CountLineSeparators returns the number of separators in b[from:to].
// Bounds are clamped to the slice.
func CountLineSeparators(b []byte, from, to int) int {
	from, to = bounds(b, from, to)
	if from >= to {
		return 0
	}
	return bytes.Count(b[from:to], []byte{Separator})
}

// LineStart returns the offset of the first byte of the line containing at.
func LineStart(b []byte, at int) int {
	_, at = bounds(b, 0, at)
	return bytes.LastIndexByte(b[:at], Separator) + 1
}

// LineEnd returns the offset of the separator ending the line containing at,
// or end if the line is the last one.
func LineEnd(b []byte, at, end int) int {
	at, end = bounds(b, at, end)
	if i := bytes.IndexByte(b[at:end], Separator); i >= 0 {
		return at + i
	}
	return end
}

// FindLineStart returns the offset delta from from to the start of the line
// delta lines away from the line containing from. Positive deltas move down,
// negative deltas move up, zero finds the start of the current line. The
// scan is confined to b[:end]; moving past the last line yields end, moving
// above the first line yields 0.
func FindLineStart(b []byte, from, end, delta int) int {
	from, end = bounds(b, from, end)

	target := LineStart(b, from)
	switch {
	case delta > 0:
		for ; delta > 0; delta-- {
			i := bytes.IndexByte(b[target:end], Separator)
			if i < 0 {
				return end - from
			}
			target += i + 1
		}
	case delta < 0:
		for ; delta < 0; delta++ {
			if target == 0 {
				break
			}
			target = LineStart(b, target-1)
		}
	}
	return target - from
}

func bounds(b []byte, from, to int) (int, int) {
	if to > len(b) {
		to = len(b)
	}
	if to < 0 {
		to = 0
	}
	if from < 0 {
		from = 0
	}
	if from > to {
		from = to
	}
	return from, to
}
