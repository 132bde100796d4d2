package chunker

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSplitShortInput(t *testing.T) {
	chunks := Split("hello world", 8000)
	if len(chunks) != 1 {
		t.Fatalf("len(chunks) = %d, want 1", len(chunks))
	}
	if chunks[0].Content != "hello world" {
		t.Errorf("chunks[0].Content = %q, want %q", chunks[0].Content, "hello world")
	}
	if chunks[0].Index != 0 {
		t.Errorf("chunks[0].Index = %d, want 0", chunks[0].Index)
	}
}

func TestSplitShortInputIsTrimmed(t *testing.T) {
	chunks := Split("  hello  \n", 100)
	if len(chunks) != 1 {
		t.Fatalf("len(chunks) = %d, want 1", len(chunks))
	}
	if chunks[0].Content != "hello" {
		t.Errorf("chunks[0].Content = %q, want %q", chunks[0].Content, "hello")
	}
}

func TestSplitEmptyInput(t *testing.T) {
	chunks := Split("", 8000)
	if len(chunks) != 1 {
		t.Fatalf("len(chunks) = %d, want 1", len(chunks))
	}
	if chunks[0].Content != "" {
		t.Errorf("chunks[0].Content = %q, want empty", chunks[0].Content)
	}
}

func TestSplitExactBoundary(t *testing.T) {
	text := strings.Repeat("a", 8000)
	chunks := Split(text, 8000)
	if len(chunks) != 1 {
		t.Fatalf("len(chunks) = %d, want 1 for input exactly at the limit", len(chunks))
	}
}

func TestSplitTwoChunks(t *testing.T) {
	// 9000 chars of sentences over an 8000 budget must produce exactly two
	// chunks, both within the budget.
	sentence := "The quick brown fox jumps over the lazy dog. "
	var b strings.Builder
	for b.Len() < 9000 {
		b.WriteString(sentence)
	}
	text := b.String()[:9000]

	chunks := Split(text, 8000)
	if len(chunks) != 2 {
		t.Fatalf("len(chunks) = %d, want 2", len(chunks))
	}
	for _, c := range chunks {
		if len(c.Content) > 8000 {
			t.Errorf("chunk %d length %d exceeds budget", c.Index, len(c.Content))
		}
	}
}

func TestSplitSizeBound(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		maxSize int
	}{
		{"paragraphs", strings.Repeat("Some paragraph content here.\n\n", 400), 500},
		{"lines", strings.Repeat("a line of text without a blank\n", 400), 300},
		{"sentences", strings.Repeat("One sentence. Another one. ", 500), 250},
		{"words", strings.Repeat("word ", 2000), 128},
		{"unbroken", strings.Repeat("x", 5000), 512},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := Split(tt.text, tt.maxSize)
			for _, c := range chunks {
				if len(c.Content) > tt.maxSize {
					t.Errorf("chunk %d length %d exceeds maxSize %d", c.Index, len(c.Content), tt.maxSize)
				}
				if c.Content == "" {
					t.Errorf("chunk %d is empty", c.Index)
				}
			}
			for i, c := range chunks {
				if c.Index != i {
					t.Errorf("chunks[%d].Index = %d, want %d", i, c.Index, i)
				}
			}
		})
	}
}

func TestSplitPrefersParagraphBoundary(t *testing.T) {
	// A paragraph break in the second half of the window must win over the
	// later sentence and word boundaries.
	text := strings.Repeat("a", 300) + "\n\n" + strings.Repeat("b", 100) + ". " + strings.Repeat("c", 200)
	chunks := Split(text, 400)

	if len(chunks) < 2 {
		t.Fatalf("len(chunks) = %d, want >= 2", len(chunks))
	}
	if got := chunks[0].Content; got != strings.Repeat("a", 300) {
		t.Errorf("first chunk = %q..., want the text before the paragraph break", got[:min(len(got), 20)])
	}
}

func TestSplitIgnoresEarlyBoundary(t *testing.T) {
	// The only marker sits in the first half of the window, so it must be
	// ignored in favor of a hard cut.
	text := strings.Repeat("a", 10) + " " + strings.Repeat("b", 500)
	chunks := Split(text, 100)

	if len(chunks[0].Content) < 50 {
		t.Errorf("first chunk length = %d, degenerated below half the budget", len(chunks[0].Content))
	}
}

func TestSplitWordCoverage(t *testing.T) {
	// Every word of the input must survive chunking.
	var words []string
	for i := 0; i < 3000; i++ {
		words = append(words, "w"+strings.Repeat("x", i%7))
	}
	text := strings.Join(words, " ")

	chunks := Split(text, 256)

	var rejoined []string
	for _, c := range chunks {
		rejoined = append(rejoined, strings.Fields(c.Content)...)
	}
	if len(rejoined) != len(words) {
		t.Fatalf("word count after split = %d, want %d", len(rejoined), len(words))
	}
	for i := range words {
		if rejoined[i] != words[i] {
			t.Fatalf("word %d = %q, want %q", i, rejoined[i], words[i])
		}
	}
}

func TestSplitDeterministic(t *testing.T) {
	text := strings.Repeat("Some text to split. More text follows here. ", 300)
	a := Split(text, 500)
	b := Split(text, 500)

	if len(a) != len(b) {
		t.Fatalf("len mismatch: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("chunk %d differs between runs", i)
		}
	}
}

func TestSplitHardCutKeepsRunesIntact(t *testing.T) {
	// Multibyte text with no boundary markers forces hard cuts; every chunk
	// must still be valid UTF-8.
	text := strings.Repeat("日本語", 2000)
	chunks := Split(text, 1000)

	for _, c := range chunks {
		if !utf8.ValidString(c.Content) {
			t.Errorf("chunk %d contains a broken UTF-8 sequence", c.Index)
		}
	}
}

func TestSplitDefaultMaxSize(t *testing.T) {
	text := strings.Repeat("sentence here. ", 1200) // ~18000 chars
	chunks := Split(text, 0)

	if len(chunks) < 2 {
		t.Fatalf("len(chunks) = %d, want >= 2 with the default budget", len(chunks))
	}
	for _, c := range chunks {
		if len(c.Content) > DefaultMaxSize {
			t.Errorf("chunk %d length %d exceeds DefaultMaxSize", c.Index, len(c.Content))
		}
	}
}
