package chunker

import (
	"strings"
	"unicode/utf8"
)

// DefaultMaxSize is the chunk budget used when the caller passes a
// non-positive size.
const DefaultMaxSize = 8000

// Chunk is a bounded contiguous slice of extracted text. Index defines
// reassembly order; indices are contiguous from 0.
type Chunk struct {
	Index   int
	Content string
}

// boundaryMarkers, in preference order. A marker is only accepted when it
// falls in the second half of the window, so chunks never degenerate below
// half the budget.
var boundaryMarkers = []string{"\n\n", "\n", ". ", " "}

// Split breaks text into chunks of at most maxSize characters, cutting at
// the right-most qualifying boundary marker within each window. The
// function is pure and deterministic: the same input always yields the same
// chunks. Text that already fits returns a single chunk holding the trimmed
// input — including the empty-input case, which callers are expected to
// reject upstream as an extraction failure.
func Split(text string, maxSize int) []Chunk {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}

	if len(text) <= maxSize {
		return []Chunk{{Index: 0, Content: strings.TrimSpace(text)}}
	}

	var parts []string
	rest := text
	for len(rest) > maxSize {
		cut := boundaryCut(rest, maxSize)
		parts = append(parts, rest[:cut])
		rest = rest[cut:]
	}
	parts = append(parts, rest)

	chunks := make([]Chunk, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		chunks = append(chunks, Chunk{Index: len(chunks), Content: p})
	}
	return chunks
}

// boundaryCut returns the split position for text known to exceed maxSize:
// just after the right-most qualifying marker inside the leading window, or
// a hard cut at maxSize (backed up to a rune start) when no marker
// qualifies.
func boundaryCut(text string, maxSize int) int {
	window := text[:maxSize]
	minPos := maxSize / 2
	for _, marker := range boundaryMarkers {
		idx := strings.LastIndex(window, marker)
		if idx >= minPos {
			return idx + len(marker)
		}
	}

	cut := maxSize
	for cut > minPos && !isRuneBoundary(text, cut) {
		cut--
	}
	return cut
}

// isRuneBoundary reports whether s can be split at position i without
// breaking a UTF-8 sequence.
func isRuneBoundary(s string, i int) bool {
	return i >= len(s) || utf8.RuneStart(s[i])
}
