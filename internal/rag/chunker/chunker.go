package chunker

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/svenkata/TabChatAPI/internal/config"
	"github.com/svenkata/TabChatAPI/internal/domain/tabModel"
)

// Options controls the word-window splitter. Zero values fall back to the
// configured defaults.
type Options struct {
	ChunkSizeWords int
	OverlapWords   int
	Metadata       map[string]string
}

var ErrInvalidOverlap = errors.New("chunker: overlap must be smaller than chunk size")

func defaultedOptions(opts Options) Options {
	if opts.ChunkSizeWords == 0 {
		opts.ChunkSizeWords = config.ChunkSizeWords
	}
	if opts.OverlapWords == 0 {
		opts.OverlapWords = config.ChunkOverlapWords
	}
	return opts
}

// Split cuts text into overlapping, size-bounded word windows. Consecutive
// windows share OverlapWords words; windows whose joined text is at or under
// config.MinChunkChars characters are dropped, so trailing slivers never make
// it into the index. The result is fully materialized because ingestion needs
// the total count before embedding.
//
// Empty or all-whitespace input yields an empty slice, as does input where
// every window fails the length filter. Callers decide whether that is fatal.
func Split(text string, opts Options) ([]tabModel.Chunk, error) {
	opts = defaultedOptions(opts)
	if opts.OverlapWords >= opts.ChunkSizeWords {
		return nil, ErrInvalidOverlap
	}

	words := strings.Fields(text)
	stride := opts.ChunkSizeWords - opts.OverlapWords

	var chunks []tabModel.Chunk
	for i := 0; i < len(words); i += stride {
		end := i + opts.ChunkSizeWords
		if end > len(words) {
			end = len(words)
		}
		slice := words[i:end]
		chunkText := strings.Join(slice, " ")

		// character counts, not bytes, so multibyte text filters the same
		chars := utf8.RuneCountInString(chunkText)
		if chars <= config.MinChunkChars {
			continue
		}

		chunks = append(chunks, tabModel.Chunk{
			Text: chunkText,
			Counts: tabModel.ChunkCounts{
				Words:      len(slice),
				Characters: chars,
			},
			Position: tabModel.ChunkPosition{
				Start: i,
				End:   end - 1, // inclusive, word-index space
			},
			Metadata: opts.Metadata,
		})
	}
	return chunks, nil
}
