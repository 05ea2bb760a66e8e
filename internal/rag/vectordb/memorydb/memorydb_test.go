package memorydb

import (
	"context"
	"testing"

	"github.com/svenkata/TabChatAPI/internal/domain/tabModel"
	"github.com/svenkata/TabChatAPI/internal/rag/vectordb"
)

func seedIndex(t *testing.T) *Index {
	t.Helper()
	idx := InitInMemoryIndexWithDimension(3)
	ctx := context.Background()

	chunks := []tabModel.Chunk{
		{Id: "c1", TabId: "tabA", Text: "alpha", Embedding: []float32{1, 0, 0}},
		{Id: "c2", TabId: "tabA", Text: "beta", Embedding: []float32{0.9, 0.1, 0}},
		{Id: "c3", TabId: "tabB", Text: "gamma", Embedding: []float32{0, 1, 0}},
		{Id: "c4", TabId: "tabC", Text: "delta", Embedding: []float32{0, 0, 1}},
	}
	for _, c := range chunks {
		if err := idx.Upsert(ctx, c); err != nil {
			t.Fatalf("Upsert(%s) failed: %v", c.Id, err)
		}
	}
	return idx
}

func TestSearch_RespectsAllowList(t *testing.T) {
	idx := seedIndex(t)
	ctx := context.Background()

	hits, err := idx.Search(ctx, []float32{1, 0, 0}, []string{"tabA"}, 10)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("hit count got %d, want 2", len(hits))
	}
	for _, h := range hits {
		if h.ChunkId != "c1" && h.ChunkId != "c2" {
			t.Errorf("hit %s belongs to a tab outside the allow-list", h.ChunkId)
		}
	}
	// descending score order
	if hits[0].ChunkId != "c1" {
		t.Errorf("top hit got %s, want c1", hits[0].ChunkId)
	}
	if hits[0].Score < hits[1].Score {
		t.Errorf("scores not descending: %v then %v", hits[0].Score, hits[1].Score)
	}
}

func TestSearch_EmptyAllowListYieldsNoResults(t *testing.T) {
	idx := seedIndex(t)

	hits, err := idx.Search(context.Background(), []float32{1, 0, 0}, nil, 10)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(hits) != 0 {
		t.Fatalf("empty allow-list returned %d hits, want 0", len(hits))
	}
}

func TestSearch_LimitBoundsResults(t *testing.T) {
	idx := seedIndex(t)

	hits, err := idx.Search(context.Background(), []float32{1, 0, 0}, []string{"tabA", "tabB", "tabC"}, 2)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("hit count got %d, want 2", len(hits))
	}
}

func TestDeleteByTab_RemovesAllChunksOfThatTab(t *testing.T) {
	idx := seedIndex(t)
	ctx := context.Background()

	if err := idx.DeleteByTab(ctx, "tabA"); err != nil {
		t.Fatalf("DeleteByTab failed: %v", err)
	}

	hits, err := idx.Search(ctx, []float32{1, 0, 0}, []string{"tabA", "tabB"}, 10)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	for _, h := range hits {
		if h.ChunkId == "c1" || h.ChunkId == "c2" {
			t.Errorf("chunk %s survived DeleteByTab", h.ChunkId)
		}
	}

	// idempotent: deleting again is safe
	if err := idx.DeleteByTab(ctx, "tabA"); err != nil {
		t.Fatalf("second DeleteByTab failed: %v", err)
	}
}

func TestFetch_SkipsUnresolvedIds(t *testing.T) {
	idx := seedIndex(t)
	ctx := context.Background()

	chunks, err := idx.Fetch(ctx, []string{"c3", "ghost", "c1"})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("fetched %d chunks, want 2", len(chunks))
	}
}

func TestUpsert_RejectsWrongDimension(t *testing.T) {
	idx := InitInMemoryIndexWithDimension(3)

	err := idx.Upsert(context.Background(), tabModel.Chunk{
		Id: "bad", TabId: "tabA", Embedding: []float32{1, 0},
	})
	if err != vectordb.ErrDimensionMismatch {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
}
