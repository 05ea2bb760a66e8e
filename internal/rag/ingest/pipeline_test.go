package ingest

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/svenkata/TabChatAPI/internal/data/store"
	"github.com/svenkata/TabChatAPI/internal/domain/tabModel"
	"github.com/svenkata/TabChatAPI/internal/rag/vectordb/memorydb"
)

type mockEmbedder struct {
	queryFunc func(ctx context.Context, text string) ([]float32, error)
	batchFunc func(ctx context.Context, texts []string) ([][]float32, error)
}

func (m *mockEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if m.queryFunc != nil {
		return m.queryFunc(ctx, text)
	}
	return []float32{1, 0, 0}, nil
}

func (m *mockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if m.batchFunc != nil {
		return m.batchFunc(ctx, texts)
	}
	vectors := make([][]float32, len(texts))
	for i := range vectors {
		vectors[i] = []float32{1, 0, 0}
	}
	return vectors, nil
}

func seedTab(t *testing.T, tabs tabModel.TabStore, status tabModel.TabStatus) tabModel.Tab {
	t.Helper()
	tab := tabModel.Tab{
		Id:     "tab-1",
		UserId: "user-1",
		URL:    "https://example.com/go",
		Name:   "Go Notes",
		Status: status,
	}
	if err := tabs.Save(context.Background(), tab); err != nil {
		t.Fatalf("seeding tab failed: %v", err)
	}
	return tab
}

func TestProcess_HappyPath(t *testing.T) {
	ctx := context.Background()
	tabs := store.InitInMemoryTabStore()
	index := memorydb.InitInMemoryIndexWithDimension(3)
	seedTab(t, tabs, tabModel.StatusTextExtracted)

	text := strings.TrimSpace(strings.Repeat("golang concurrency patterns ", 60))
	pipeline := NewPipeline(tabs, &mockEmbedder{}, index)

	if err := pipeline.Process(ctx, "tab-1", text); err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	tab, _ := tabs.Get(ctx, "tab-1")
	if tab.Status != tabModel.StatusProcessed {
		t.Errorf("status = %s, want processed", tab.Status)
	}
	if tab.Content != text {
		t.Error("tab content not stored")
	}
	if tab.LastIngestedAt.IsZero() {
		t.Error("LastIngestedAt not set")
	}

	hits, err := index.Search(ctx, []float32{1, 0, 0}, []string{"tab-1"}, 10)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(hits) == 0 {
		t.Fatal("no chunks indexed for tab")
	}

	chunks, err := index.Fetch(ctx, []string{hits[0].ChunkId})
	if err != nil || len(chunks) != 1 {
		t.Fatalf("Fetch failed: %v", err)
	}
	if chunks[0].Metadata["url"] != "https://example.com/go" {
		t.Errorf("chunk metadata missing url: %+v", chunks[0].Metadata)
	}
	if chunks[0].Metadata["name"] != "Go Notes" {
		t.Errorf("chunk metadata missing name: %+v", chunks[0].Metadata)
	}
}

func TestProcess_RefusesConcurrentRun(t *testing.T) {
	ctx := context.Background()
	tabs := store.InitInMemoryTabStore()
	index := memorydb.InitInMemoryIndexWithDimension(3)

	for _, status := range []tabModel.TabStatus{tabModel.StatusChunking, tabModel.StatusEmbedding} {
		seedTab(t, tabs, status)
		pipeline := NewPipeline(tabs, &mockEmbedder{}, index)
		err := pipeline.Process(ctx, "tab-1", "some text")
		if !errors.Is(err, ErrIngestInProgress) {
			t.Errorf("status %s: got %v, want ErrIngestInProgress", status, err)
		}
	}
}

func TestProcess_NoChunksFails(t *testing.T) {
	ctx := context.Background()
	tabs := store.InitInMemoryTabStore()
	index := memorydb.InitInMemoryIndexWithDimension(3)
	seedTab(t, tabs, tabModel.StatusTextExtracted)

	pipeline := NewPipeline(tabs, &mockEmbedder{}, index)
	err := pipeline.Process(ctx, "tab-1", "too short")
	if !errors.Is(err, ErrNoChunks) {
		t.Fatalf("got %v, want ErrNoChunks", err)
	}

	tab, _ := tabs.Get(ctx, "tab-1")
	if tab.Status != tabModel.StatusFailed {
		t.Errorf("status = %s, want failed", tab.Status)
	}
	if tab.Error != ErrNoChunks.Error() {
		t.Errorf("tab error = %q", tab.Error)
	}
}

func TestProcess_EmbedderFailureMarksTabFailed(t *testing.T) {
	ctx := context.Background()
	tabs := store.InitInMemoryTabStore()
	index := memorydb.InitInMemoryIndexWithDimension(3)
	seedTab(t, tabs, tabModel.StatusTextExtracted)

	embedder := &mockEmbedder{
		batchFunc: func(ctx context.Context, texts []string) ([][]float32, error) {
			return nil, errors.New("quota exceeded")
		},
	}
	pipeline := NewPipeline(tabs, embedder, index)

	text := strings.TrimSpace(strings.Repeat("golang concurrency patterns ", 60))
	if err := pipeline.Process(ctx, "tab-1", text); err == nil {
		t.Fatal("expected error from failing embedder")
	}

	tab, _ := tabs.Get(ctx, "tab-1")
	if tab.Status != tabModel.StatusFailed {
		t.Errorf("status = %s, want failed", tab.Status)
	}
	if !strings.Contains(tab.Error, "quota exceeded") {
		t.Errorf("tab error lost the cause: %q", tab.Error)
	}
}

// flakyTabStore fails status writes to the given target status, once.
type flakyTabStore struct {
	tabModel.TabStore
	failOn tabModel.TabStatus
	failed bool
}

func (s *flakyTabStore) UpdateStatus(ctx context.Context, tabId string, status tabModel.TabStatus, errMsg string) error {
	if status == s.failOn && !s.failed {
		s.failed = true
		return errors.New("store write timed out")
	}
	return s.TabStore.UpdateStatus(ctx, tabId, status, errMsg)
}

func TestProcess_StatusWriteFailureMarksTabFailed(t *testing.T) {
	ctx := context.Background()
	text := strings.TrimSpace(strings.Repeat("golang concurrency patterns ", 60))

	for _, failOn := range []tabModel.TabStatus{tabModel.StatusChunking, tabModel.StatusEmbedding} {
		tabs := &flakyTabStore{TabStore: store.InitInMemoryTabStore(), failOn: failOn}
		index := memorydb.InitInMemoryIndexWithDimension(3)
		seedTab(t, tabs, tabModel.StatusTextExtracted)

		pipeline := NewPipeline(tabs, &mockEmbedder{}, index)
		if err := pipeline.Process(ctx, "tab-1", text); err == nil {
			t.Fatalf("failOn %s: expected error from failing status write", failOn)
		}

		tab, _ := tabs.Get(ctx, "tab-1")
		if tab.Status != tabModel.StatusFailed {
			t.Errorf("failOn %s: status = %s, want failed", failOn, tab.Status)
		}
		if !strings.Contains(tab.Error, "store write timed out") {
			t.Errorf("failOn %s: tab error lost the cause: %q", failOn, tab.Error)
		}

		// the tab must not stay guarded; a later run starts from scratch
		if err := pipeline.Process(ctx, "tab-1", text); err != nil {
			t.Errorf("failOn %s: re-run after failure refused: %v", failOn, err)
		}
	}
}

func TestProcess_FinalSaveFailureMarksTabFailed(t *testing.T) {
	ctx := context.Background()
	tabs := &failingSaveTabStore{TabStore: store.InitInMemoryTabStore()}
	index := memorydb.InitInMemoryIndexWithDimension(3)
	seedTab(t, tabs, tabModel.StatusTextExtracted)
	tabs.arm = true

	pipeline := NewPipeline(tabs, &mockEmbedder{}, index)
	text := strings.TrimSpace(strings.Repeat("golang concurrency patterns ", 60))
	if err := pipeline.Process(ctx, "tab-1", text); err == nil {
		t.Fatal("expected error from failing save")
	}

	tab, _ := tabs.Get(ctx, "tab-1")
	if tab.Status != tabModel.StatusFailed {
		t.Errorf("status = %s, want failed", tab.Status)
	}
}

type failingSaveTabStore struct {
	tabModel.TabStore
	arm bool
}

func (s *failingSaveTabStore) Save(ctx context.Context, tab tabModel.Tab) error {
	if s.arm {
		return errors.New("save rejected")
	}
	return s.TabStore.Save(ctx, tab)
}

func TestProcess_VectorCountMismatchFails(t *testing.T) {
	ctx := context.Background()
	tabs := store.InitInMemoryTabStore()
	index := memorydb.InitInMemoryIndexWithDimension(3)
	seedTab(t, tabs, tabModel.StatusTextExtracted)

	embedder := &mockEmbedder{
		batchFunc: func(ctx context.Context, texts []string) ([][]float32, error) {
			return [][]float32{}, nil
		},
	}
	pipeline := NewPipeline(tabs, embedder, index)

	text := strings.TrimSpace(strings.Repeat("golang concurrency patterns ", 60))
	if err := pipeline.Process(ctx, "tab-1", text); err == nil {
		t.Fatal("expected error on vector count mismatch")
	}

	tab, _ := tabs.Get(ctx, "tab-1")
	if tab.Status != tabModel.StatusFailed {
		t.Errorf("status = %s, want failed", tab.Status)
	}
}

func TestProcess_ReingestReplacesOldChunks(t *testing.T) {
	ctx := context.Background()
	tabs := store.InitInMemoryTabStore()
	index := memorydb.InitInMemoryIndexWithDimension(3)
	seedTab(t, tabs, tabModel.StatusProcessed)

	stale := tabModel.Chunk{
		Id:        "stale-chunk",
		TabId:     "tab-1",
		Text:      "old content",
		Embedding: []float32{0, 1, 0},
	}
	if err := index.Upsert(ctx, stale); err != nil {
		t.Fatalf("seeding stale chunk failed: %v", err)
	}

	pipeline := NewPipeline(tabs, &mockEmbedder{}, index)
	text := strings.TrimSpace(strings.Repeat("golang concurrency patterns ", 60))
	if err := pipeline.Process(ctx, "tab-1", text); err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	chunks, err := index.Fetch(ctx, []string{"stale-chunk"})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(chunks) != 0 {
		t.Error("stale chunk survived re-ingest")
	}
}
