package chunker

import (
	"strings"
	"testing"
	"unicode/utf8"
)

// FuzzSplit verifies the splitter's invariants hold for arbitrary input:
// it never panics, never emits an empty, untrimmed, or invalid-UTF-8 chunk,
// never exceeds the window size in runes, and is deterministic.
func FuzzSplit(f *testing.F) {
	f.Add("", 800, 100)
	f.Add("hello world", 800, 100)
	f.Add(strings.Repeat("x", 900), 800, 100)
	f.Add(strings.Repeat("知", 900), 800, 100) // multibyte, no spaces
	f.Add("a b c d e f g", 4, 2)
	f.Add(strings.Repeat("word ", 500), 50, 60) // overlap > size
	f.Add("\t\n  \r", 10, 2)

	f.Fuzz(func(t *testing.T, text string, size, overlap int) {
		chunks := Split(text, WithSize(size), WithOverlap(overlap))

		effSize := size
		if effSize <= 0 {
			effSize = DefaultSize
		}

		for i, c := range chunks {
			if strings.TrimSpace(c) == "" {
				t.Errorf("chunk %d is blank", i)
			}
			if c != strings.TrimSpace(c) {
				t.Errorf("chunk %d not trimmed: %q", i, c)
			}
			if !utf8.ValidString(c) {
				t.Errorf("chunk %d is not valid UTF-8 (len %d)", i, len(c))
			}
			if n := utf8.RuneCountInString(c); n > effSize {
				t.Errorf("chunk %d rune count %d exceeds size %d", i, n, effSize)
			}
		}

		if CollapseWhitespace(text) == "" && chunks != nil {
			t.Errorf("blank input produced chunks: %v", chunks)
		}

		again := Split(text, WithSize(size), WithOverlap(overlap))
		if len(again) != len(chunks) {
			t.Errorf("non-deterministic chunk count: %d vs %d", len(chunks), len(again))
		}
	})
}
