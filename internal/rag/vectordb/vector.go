package vectordb

import (
	"context"
	"errors"

	"github.com/svenkata/TabChatAPI/internal/domain/tabModel"
)

// ScoredID is one vector-search hit: a chunk id with its similarity score,
// higher meaning more relevant.
type ScoredID struct {
	ChunkId string
	Score   float32
}

var ErrDimensionMismatch = errors.New("vectordb: embedding dimension does not match index configuration")

// Index persists chunks with their embeddings and answers filtered
// nearest-neighbor queries.
//
// Search restricts hits to chunks whose tab id is in tabIds; an empty
// allow-list yields zero results, never an unfiltered scan. Results come
// back in descending score order, deterministic for identical inputs.
//
// Fetch resolves ids to full chunk records, silently skipping ids that no
// longer exist. It makes no ordering promise; callers joining scores to
// records must preserve the rank order from Search themselves.
type Index interface {
	EnsureCollection(ctx context.Context) error
	Upsert(ctx context.Context, chunk tabModel.Chunk) error
	DeleteByTab(ctx context.Context, tabId string) error
	Search(ctx context.Context, vector []float32, tabIds []string, limit uint64) ([]ScoredID, error)
	Fetch(ctx context.Context, ids []string) ([]tabModel.Chunk, error)
}
