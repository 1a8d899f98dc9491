package scan

import "testing"

func TestCountLineSeparators(t *testing.T) {
	b := []byte("ab\ncd\nef")

	tests := []struct {
		from, to, want int
	}{
		{0, 8, 2},
		{0, 2, 0},
		{0, 3, 1},
		{3, 8, 1},
		{-4, 100, 2},
		{6, 2, 0},
	}

	for _, tt := range tests {
		if got := CountLineSeparators(b, tt.from, tt.to); got != tt.want {
			t.Errorf("CountLineSeparators(%d, %d) = %d, want %d", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestLineStartEnd(t *testing.T) {
	b := []byte("ab\ncd\nef")

	tests := []struct {
		at, start, end int
	}{
		{0, 0, 2},
		{1, 0, 2},
		{2, 0, 2},
		{3, 3, 5},
		{5, 3, 5},
		{6, 6, 8},
		{8, 6, 8},
	}

	for _, tt := range tests {
		if got := LineStart(b, tt.at); got != tt.start {
			t.Errorf("LineStart(%d) = %d, want %d", tt.at, got, tt.start)
		}
		if got := LineEnd(b, tt.at, len(b)); got != tt.end {
			t.Errorf("LineEnd(%d) = %d, want %d", tt.at, got, tt.end)
		}
	}
}

func TestLineEndRespectsBound(t *testing.T) {
	// Bytes past the logical end must never be scanned.
	b := []byte("abc\x00\n")
	if got := LineEnd(b, 0, 3); got != 3 {
		t.Errorf("expected 3, got %d", got)
	}
}

func TestFindLineStart(t *testing.T) {
	b := []byte("ab\ncd\nef")
	end := len(b)

	tests := []struct {
		name  string
		from  int
		delta int
		want  int // absolute offset
	}{
		{"same line from middle", 4, 0, 3},
		{"down one", 0, 1, 3},
		{"down two", 1, 2, 6},
		{"down past last", 0, 5, 8},
		{"up one", 7, -1, 3},
		{"up past first", 4, -9, 0},
		{"down from last", 6, 1, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.from + FindLineStart(b, tt.from, end, tt.delta)
			if got != tt.want {
				t.Errorf("FindLineStart(%d, %d) landed at %d, want %d", tt.from, tt.delta, got, tt.want)
			}
		})
	}
}

func TestFindLineStartTrailingNewline(t *testing.T) {
	b := []byte("ab\n")
	if got := FindLineStart(b, 0, len(b), 1); got != 3 {
		t.Errorf("expected delta 3, got %d", got)
	}
}

func BenchmarkCountLineSeparators(b *testing.B) {
	data := make([]byte, 1<<20)
	for i := range data {
		if i%80 == 79 {
			data[i] = '\n'
		} else {
			data[i] = 'x'
		}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		CountLineSeparators(data, 0, len(data))
	}
}
