package chunker

import (
	"strings"
	"testing"

	"github.com/svenkata/TabChatAPI/internal/domain/tabModel"
)

// repeatedWords builds a text of n copies of a fixed-length word so window
// character lengths are predictable.
func repeatedWords(n int, word string) string {
	words := make([]string, n)
	for i := range words {
		words[i] = word
	}
	return strings.Join(words, " ")
}

func TestSplit_WindowCoverageAndOverlap(t *testing.T) {
	// 300 ten-char words, size 120, overlap 20 => starts at 0, 100, 200
	text := repeatedWords(300, "abcdefghij")

	chunks, err := Split(text, Options{ChunkSizeWords: 120, OverlapWords: 20})
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}

	wantPositions := []tabModel.ChunkPosition{
		{Start: 0, End: 119},
		{Start: 100, End: 219},
		{Start: 200, End: 299},
	}
	if len(chunks) != len(wantPositions) {
		t.Fatalf("chunk count got %d, want %d", len(chunks), len(wantPositions))
	}
	for i, want := range wantPositions {
		if chunks[i].Position != want {
			t.Errorf("chunk %d position got %+v, want %+v", i, chunks[i].Position, want)
		}
		if words := chunks[i].Counts.Words; words != want.End-want.Start+1 {
			t.Errorf("chunk %d word count got %d, want %d", i, words, want.End-want.Start+1)
		}
	}

	// consecutive chunks overlap by exactly 20 words
	for i := 1; i < len(chunks); i++ {
		overlap := chunks[i-1].Position.End - chunks[i].Position.Start + 1
		if overlap != 20 {
			t.Errorf("overlap between chunk %d and %d got %d, want 20", i-1, i, overlap)
		}
	}
}

func TestSplit_FiltersShortWindows(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		wantChunks int
	}{
		{
			name:       "Empty text",
			text:       "",
			wantChunks: 0,
		},
		{
			name:       "Whitespace only",
			text:       "   \n\t  ",
			wantChunks: 0,
		},
		{
			name: "Single short window dropped",
			// 5 words, joined length well under the 100 char floor
			text:       "tiny words only here now",
			wantChunks: 0,
		},
		{
			name: "Exactly 100 chars dropped",
			// filter keeps only strictly longer windows
			text:       strings.Repeat("x", 100),
			wantChunks: 0,
		},
		{
			name:       "Just over 100 chars kept",
			text:       repeatedWords(10, strings.Repeat("x", 10)),
			wantChunks: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks, err := Split(tt.text, Options{})
			if err != nil {
				t.Fatalf("Split failed: %v", err)
			}
			if len(chunks) != tt.wantChunks {
				t.Errorf("chunk count got %d, want %d", len(chunks), tt.wantChunks)
			}
		})
	}
}

func TestSplit_FilterCountsCharactersNotBytes(t *testing.T) {
	// ten-rune word, twenty bytes in UTF-8
	word := strings.Repeat("é", 10)

	// 9 words: 98 runes joined (188 bytes) stays under the 100 char floor
	chunks, err := Split(repeatedWords(9, word), Options{})
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	if len(chunks) != 0 {
		t.Errorf("multibyte window under the floor survived: %d chunks", len(chunks))
	}

	// 10 words: 109 runes joined crosses the floor
	chunks, err = Split(repeatedWords(10, word), Options{})
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("chunk count got %d, want 1", len(chunks))
	}
	if chunks[0].Counts.Characters != 109 {
		t.Errorf("character count got %d, want 109", chunks[0].Counts.Characters)
	}
}

func TestSplit_TrailingSliverDropped(t *testing.T) {
	// 105 ten-char words: second window is the 5-word tail starting at 100,
	// joined length 54 chars, which must be filtered out
	text := repeatedWords(105, "abcdefghij")

	chunks, err := Split(text, Options{ChunkSizeWords: 100, OverlapWords: 0})
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("chunk count got %d, want 1", len(chunks))
	}
	if chunks[0].Position.End != 99 {
		t.Errorf("surviving chunk end got %d, want 99", chunks[0].Position.End)
	}
}

func TestSplit_InvalidOverlap(t *testing.T) {
	_, err := Split("some text", Options{ChunkSizeWords: 20, OverlapWords: 20})
	if err != ErrInvalidOverlap {
		t.Fatalf("expected ErrInvalidOverlap, got %v", err)
	}
}

func TestSplit_MetadataCarriedVerbatim(t *testing.T) {
	meta := map[string]string{"url": "https://example.com", "name": "Example"}
	chunks, err := Split(repeatedWords(150, "abcdefghij"), Options{Metadata: meta})
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	if len(chunks) == 0 {
		t.Fatal("expected at least one chunk")
	}
	for i, c := range chunks {
		if c.Metadata["url"] != meta["url"] || c.Metadata["name"] != meta["name"] {
			t.Errorf("chunk %d metadata got %v, want %v", i, c.Metadata, meta)
		}
	}
}
