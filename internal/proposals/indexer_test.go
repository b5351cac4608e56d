package proposals

import (
	"strings"
	"testing"
)

func TestChunkText(t *testing.T) {
	text := strings.Repeat("가나다라마바사아자차", 50) // 500 runes

	chunks := ChunkText(text, 200, 20)
	if len(chunks) != 3 {
		t.Fatalf("got %d chunks, want 3", len(chunks))
	}
	for i, c := range chunks {
		if n := len([]rune(c)); n > 200 {
			t.Errorf("chunk %d has %d runes", i, n)
		}
	}
	// Overlap: the head of chunk 2 repeats the tail of chunk 1.
	tail := []rune(chunks[0])[180:]
	if !strings.HasPrefix(chunks[1], string(tail)) {
		t.Error("chunks do not overlap")
	}
}

func TestChunkTextShortInput(t *testing.T) {
	chunks := ChunkText("짧은 텍스트", 2000, 200)
	if len(chunks) != 1 || chunks[0] != "짧은 텍스트" {
		t.Errorf("chunks = %v", chunks)
	}
	if got := ChunkText("   ", 2000, 200); got != nil {
		t.Errorf("whitespace input produced %v", got)
	}
}

func TestExtractPDFTextRejectsGarbage(t *testing.T) {
	if _, err := ExtractPDFText([]byte("not a pdf")); err == nil {
		t.Error("want error for non-PDF input")
	}
}
