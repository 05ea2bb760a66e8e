package retrieval

import (
	"context"
	"fmt"
	"time"

	"github.com/svenkata/TabChatAPI/internal/config"
	"github.com/svenkata/TabChatAPI/internal/metrics"
	"github.com/svenkata/TabChatAPI/internal/rag/embedding"
	"github.com/svenkata/TabChatAPI/internal/rag/vectordb"
	"github.com/svenkata/TabChatAPI/pkg/logx"
)

// Snippet is one retrieved chunk with enough metadata for the model to
// cite its source tab.
type Snippet struct {
	Text   string  `json:"text"`
	Score  float32 `json:"score"`
	TabId  string  `json:"tab_id"`
	TabURL string  `json:"tab_url,omitempty"`
	Name   string  `json:"tab_name,omitempty"`
}

type Searcher struct {
	embedder embedding.Embedder
	index    vectordb.Index
	logger   *logx.Logger
}

func NewSearcher(embedder embedding.Embedder, index vectordb.Index) *Searcher {
	return &Searcher{
		embedder: embedder,
		index:    index,
		logger:   logx.NewLogger("Tab Search"),
	}
}

// Search embeds the query and returns the best-scoring chunks restricted
// to the given tabs, best first. An empty allow-list means the caller has
// no tabs to search, so the result is empty rather than a scan of
// everything.
func (s *Searcher) Search(ctx context.Context, query string, tabIds []string, limit uint64) ([]Snippet, error) {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))
	if len(tabIds) == 0 {
		log.Debug("Empty tab allow-list, skipping search")
		return []Snippet{}, nil
	}
	if limit == 0 {
		limit = config.SearchResultLimit
	}
	if limit > config.SearchResultMaxLimit {
		limit = config.SearchResultMaxLimit
	}

	start := time.Now()
	vector, err := s.embedder.EmbedQuery(ctx, query)
	metrics.CaptureExecutionMetrics("embedding_query", time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	hits, err := s.index.Search(ctx, vector, tabIds, limit)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	if len(hits) == 0 {
		return []Snippet{}, nil
	}

	ids := make([]string, len(hits))
	for i, hit := range hits {
		ids[i] = hit.ChunkId
	}

	chunks, err := s.index.Fetch(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("fetching chunks: %w", err)
	}

	byId := make(map[string]int, len(chunks))
	for i, chunk := range chunks {
		byId[chunk.Id] = i
	}

	// keep the hit order; a chunk deleted between search and fetch is
	// silently skipped
	snippets := make([]Snippet, 0, len(hits))
	for _, hit := range hits {
		i, found := byId[hit.ChunkId]
		if !found {
			continue
		}
		snippets = append(snippets, Snippet{
			Text:   chunks[i].Text,
			Score:  hit.Score,
			TabId:  chunks[i].TabId,
			TabURL: chunks[i].Metadata["url"],
			Name:   chunks[i].Metadata["name"],
		})
	}
	log.Debug("Search complete", "hits", len(snippets))
	return snippets, nil
}
