package memorydb

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/svenkata/TabChatAPI/internal/config"
	"github.com/svenkata/TabChatAPI/internal/domain/tabModel"
	"github.com/svenkata/TabChatAPI/internal/rag/vectordb"
	"github.com/svenkata/TabChatAPI/pkg/logx"
)

var inMemLogger = logx.NewLogger("InMem ChunkIndex")

// Index is a brute-force cosine-similarity chunk index. It backs the service
// when Qdrant is offline and doubles as the test fixture for the search path.
type Index struct {
	mu        sync.RWMutex
	dimension int
	chunks    map[string]tabModel.Chunk
}

func InitInMemoryIndex() *Index {
	return &Index{
		dimension: config.EmbeddingDimension,
		chunks:    make(map[string]tabModel.Chunk),
	}
}

// InitInMemoryIndexWithDimension exists for tests that use small vectors.
func InitInMemoryIndexWithDimension(dim int) *Index {
	return &Index{
		dimension: dim,
		chunks:    make(map[string]tabModel.Chunk),
	}
}

func (idx *Index) EnsureCollection(ctx context.Context) error {
	return nil
}

func (idx *Index) Upsert(ctx context.Context, chunk tabModel.Chunk) error {
	if len(chunk.Embedding) != idx.dimension {
		return vectordb.ErrDimensionMismatch
	}
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.chunks[chunk.Id] = chunk
	return nil
}

func (idx *Index) DeleteByTab(ctx context.Context, tabId string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	for id, c := range idx.chunks {
		if c.TabId == tabId {
			delete(idx.chunks, id)
		}
	}
	inMemLogger.Debug("Deleted chunks for tab", "tabId", tabId)
	return nil
}

func (idx *Index) Search(ctx context.Context, vector []float32, tabIds []string, limit uint64) ([]vectordb.ScoredID, error) {
	if len(tabIds) == 0 {
		return []vectordb.ScoredID{}, nil
	}
	if limit == 0 {
		limit = config.SearchResultLimit
	}
	if limit > config.SearchResultMaxLimit {
		limit = config.SearchResultMaxLimit
	}

	allowed := make(map[string]bool, len(tabIds))
	for _, id := range tabIds {
		allowed[id] = true
	}

	idx.mu.RLock()
	hits := make([]vectordb.ScoredID, 0, len(idx.chunks))
	for id, c := range idx.chunks {
		if !allowed[c.TabId] {
			continue
		}
		hits = append(hits, vectordb.ScoredID{ChunkId: id, Score: cosine(vector, c.Embedding)})
	}
	idx.mu.RUnlock()

	// descending score; ties broken by id so identical inputs rank identically
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ChunkId < hits[j].ChunkId
	})

	if uint64(len(hits)) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

func (idx *Index) Fetch(ctx context.Context, ids []string) ([]tabModel.Chunk, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	results := make([]tabModel.Chunk, 0, len(ids))
	for _, id := range ids {
		chunk, ok := idx.chunks[id]
		if !ok {
			continue //already deleted, benign
		}
		results = append(results, chunk)
	}
	return results, nil
}

func cosine(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
