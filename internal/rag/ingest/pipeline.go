package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/svenkata/TabChatAPI/internal/config"
	"github.com/svenkata/TabChatAPI/internal/domain/tabModel"
	"github.com/svenkata/TabChatAPI/internal/metrics"
	"github.com/svenkata/TabChatAPI/internal/rag/chunker"
	"github.com/svenkata/TabChatAPI/internal/rag/embedding"
	"github.com/svenkata/TabChatAPI/internal/rag/vectordb"
	"github.com/svenkata/TabChatAPI/pkg/logx"
)

var (
	ErrTabNotFound = errors.New("tab not found")
	// ErrIngestInProgress means another run already moved the tab into
	// chunking or embedding. The caller should not start a second run.
	ErrIngestInProgress = errors.New("ingestion already in progress for tab")
	ErrNoChunks         = errors.New("no valid chunks created from text")
)

type Pipeline struct {
	tabs     tabModel.TabStore
	embedder embedding.Embedder
	index    vectordb.Index
	logger   *logx.Logger
}

func NewPipeline(tabs tabModel.TabStore, embedder embedding.Embedder, index vectordb.Index) *Pipeline {
	return &Pipeline{
		tabs:     tabs,
		embedder: embedder,
		index:    index,
		logger:   logx.NewLogger("Tab Ingestion"),
	}
}

// Process runs the full chunk-embed-index pass for one tab. Old chunks are
// removed before any state change so a re-ingest never mixes stale vectors
// with fresh ones. After any failure the tab lands in failed with the
// message preserved; a later Process call runs from scratch.
func (p *Pipeline) Process(ctx context.Context, tabId string, text string) error {
	log := p.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "tabId", tabId)

	tab, found := p.tabs.Get(ctx, tabId)
	if !found {
		return ErrTabNotFound
	}

	if tab.Status == tabModel.StatusChunking || tab.Status == tabModel.StatusEmbedding {
		log.Warn("Refusing to ingest, run already in flight", "status", tab.Status)
		return ErrIngestInProgress
	}

	if err := p.index.DeleteByTab(ctx, tabId); err != nil {
		return p.fail(ctx, log, tabId, fmt.Errorf("deleting existing chunks: %w", err))
	}

	if err := p.tabs.UpdateStatus(ctx, tabId, tabModel.StatusChunking, ""); err != nil {
		return p.fail(ctx, log, tabId, fmt.Errorf("marking tab as chunking: %w", err))
	}

	chunks, err := chunker.Split(text, chunker.Options{
		ChunkSizeWords: config.ChunkSizeWords,
		OverlapWords:   config.ChunkOverlapWords,
		Metadata: map[string]string{
			"url":  tab.URL,
			"name": tab.Name,
		},
	})
	if err != nil {
		return p.fail(ctx, log, tabId, err)
	}
	if len(chunks) == 0 {
		return p.fail(ctx, log, tabId, ErrNoChunks)
	}
	log.Debug("Chunked tab text", "chunks", len(chunks))

	if err = p.tabs.UpdateStatus(ctx, tabId, tabModel.StatusEmbedding, ""); err != nil {
		return p.fail(ctx, log, tabId, fmt.Errorf("marking tab as embedding: %w", err))
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	start := time.Now()
	vectors, err := p.embedder.EmbedBatch(ctx, texts)
	metrics.CaptureExecutionMetrics("embedding_batch", time.Since(start))
	if err != nil {
		return p.fail(ctx, log, tabId, fmt.Errorf("embedding batch failed: %w", err))
	}
	if len(vectors) != len(chunks) {
		return p.fail(ctx, log, tabId, fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks)))
	}

	for i := range chunks {
		chunks[i].Id = uuid.NewString()
		chunks[i].TabId = tabId
		chunks[i].Embedding = vectors[i]
		if err = p.index.Upsert(ctx, chunks[i]); err != nil {
			return p.fail(ctx, log, tabId, fmt.Errorf("upserting chunk %d: %w", i, err))
		}
	}
	metrics.CountChunksIngested(len(chunks))

	tab, found = p.tabs.Get(ctx, tabId)
	if !found {
		return ErrTabNotFound
	}
	tab.Content = text
	tab.Status = tabModel.StatusProcessed
	tab.Error = ""
	tab.LastIngestedAt = time.Now().UTC()
	if err = p.tabs.Save(ctx, tab); err != nil {
		return p.fail(ctx, log, tabId, fmt.Errorf("saving processed tab: %w", err))
	}

	log.Info("Tab ingested", "chunks", len(chunks))
	return nil
}

func (p *Pipeline) fail(ctx context.Context, log *logx.Logger, tabId string, cause error) error {
	log.Error("Ingestion failed", "error", cause)
	if err := p.tabs.UpdateStatus(ctx, tabId, tabModel.StatusFailed, cause.Error()); err != nil {
		log.Error("Error recording failed status", "error", err)
	}
	return cause
}
