// Package chunker splits extracted document text into overlapping
// fixed-size windows suitable for embedding.
//
// Splitting is pure and deterministic: the same input always produces the
// same chunks, which keeps ingestion reproducible and testable.
package chunker

import "strings"

// Default window parameters, chosen so a chunk comfortably fits within the
// embedding provider's input ceiling while retaining enough context.
const (
	DefaultSize    = 800
	DefaultOverlap = 100
)

// Option configures Split using the functional options pattern.
type Option func(*splitConfig)

type splitConfig struct {
	size    int
	overlap int
}

// WithSize sets the window size in characters. Values below 1 fall back to
// the default.
func WithSize(n int) Option {
	return func(c *splitConfig) {
		if n > 0 {
			c.size = n
		}
	}
}

// WithOverlap sets the overlap between consecutive windows. Negative values
// fall back to the default.
func WithOverlap(n int) Option {
	return func(c *splitConfig) {
		if n >= 0 {
			c.overlap = n
		}
	}
}

// CollapseWhitespace collapses every whitespace run to a single space and
// trims the result.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Split divides text into overlapping windows of up to size characters.
// Sizes count runes, not bytes, so multibyte text is never cut
// mid-character.
//
// The text is whitespace-collapsed first; an empty result yields nil, which
// is the ingestion-level signal for "no content". When a window's right
// edge does not land on the end of the text, it backs off to the nearest
// preceding space so words are not split. The next window starts
// overlap characters before the previous window's end. The walk stops once
// the start would no longer advance, which guards against infinite loops
// when overlap >= size or no space exists.
//
// Every returned chunk is non-empty after trimming. Concatenating the
// chunks with overlaps removed reconstructs the collapsed text.
func Split(text string, opts ...Option) []string {
	cfg := &splitConfig{size: DefaultSize, overlap: DefaultOverlap}
	for _, opt := range opts {
		opt(cfg)
	}

	runes := []rune(CollapseWhitespace(text))
	if len(runes) == 0 {
		return nil
	}

	var chunks []string
	start := 0
	for {
		end := start + cfg.size
		if end > len(runes) {
			end = len(runes)
		} else if end < len(runes) {
			// Back off to a word boundary unless the window has none.
			if idx := lastSpace(runes[start:end]); idx > 0 {
				end = start + idx
			}
		}

		if chunk := strings.TrimSpace(string(runes[start:end])); chunk != "" {
			chunks = append(chunks, chunk)
		}

		if end >= len(runes) {
			break
		}
		next := end - cfg.overlap
		if next <= start {
			break
		}
		start = next
	}

	return chunks
}

// lastSpace returns the index of the rightmost space in the window, or -1.
// Collapsing leaves single ASCII spaces as the only whitespace.
func lastSpace(window []rune) int {
	for i := len(window) - 1; i >= 0; i-- {
		if window[i] == ' ' {
			return i
		}
	}
	return -1
}
