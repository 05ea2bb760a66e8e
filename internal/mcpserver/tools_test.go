package mcpserver

import (
	"context"
	"testing"

	"github.com/svenkata/TabChatAPI/internal/data/store"
	"github.com/svenkata/TabChatAPI/internal/domain/tabModel"
	"github.com/svenkata/TabChatAPI/internal/rag/retrieval"
	"github.com/svenkata/TabChatAPI/internal/rag/vectordb/memorydb"
)

type fixedEmbedder struct{}

func (fixedEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return []float32{1, 0, 0}, nil
}

func (fixedEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i := range vectors {
		vectors[i] = []float32{1, 0, 0}
	}
	return vectors, nil
}

func newTestServer(t *testing.T) (*Server, *store.InMemoryTabStore, *memorydb.Index) {
	t.Helper()
	tabs := store.InitInMemoryTabStore()
	index := memorydb.InitInMemoryIndexWithDimension(3)
	searcher := retrieval.NewSearcher(fixedEmbedder{}, index)

	s, err := NewServer(searcher, tabs, "local")
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	return s, tabs, index
}

func TestHandleSearch_DefaultsToProcessedTabs(t *testing.T) {
	ctx := context.Background()
	s, tabs, index := newTestServer(t)

	if err := tabs.Save(ctx, tabModel.Tab{Id: "tab-1", UserId: "local", URL: "https://go.dev", Name: "Go Blog", Status: tabModel.StatusProcessed}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := tabs.Save(ctx, tabModel.Tab{Id: "tab-2", UserId: "local", URL: "https://broken.dev", Status: tabModel.StatusFailed}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	for _, chunk := range []tabModel.Chunk{
		{Id: "c1", TabId: "tab-1", Text: "goroutines", Embedding: []float32{1, 0, 0},
			Metadata: map[string]string{"url": "https://go.dev", "name": "Go Blog"}},
		{Id: "c2", TabId: "tab-2", Text: "stale", Embedding: []float32{1, 0, 0}},
	} {
		if err := index.Upsert(ctx, chunk); err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}
	}

	_, output, err := s.handleSearch(ctx, nil, SearchInput{Query: "goroutines"})
	if err != nil {
		t.Fatalf("handleSearch failed: %v", err)
	}

	if output.Count != 1 {
		t.Fatalf("count = %d, want 1", output.Count)
	}
	if output.Results[0].TabId != "tab-1" {
		t.Errorf("hit from wrong tab: %s", output.Results[0].TabId)
	}
	if output.Results[0].TabURL != "https://go.dev" {
		t.Errorf("metadata missing: %+v", output.Results[0])
	}
}

func TestHandleSearch_NoProcessedTabs(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestServer(t)

	_, output, err := s.handleSearch(ctx, nil, SearchInput{Query: "anything"})
	if err != nil {
		t.Fatalf("handleSearch failed: %v", err)
	}
	if output.Count != 0 {
		t.Errorf("count = %d, want 0", output.Count)
	}
}

func TestHandleListTabs(t *testing.T) {
	ctx := context.Background()
	s, tabs, _ := newTestServer(t)

	if err := tabs.Save(ctx, tabModel.Tab{Id: "tab-1", UserId: "local", URL: "https://go.dev", Status: tabModel.StatusPending}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	_, output, err := s.handleListTabs(ctx, nil, struct{}{})
	if err != nil {
		t.Fatalf("handleListTabs failed: %v", err)
	}
	if output.Count != 1 || output.Tabs[0].Status != "pending" {
		t.Errorf("unexpected output: %+v", output)
	}
}
