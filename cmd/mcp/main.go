package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/svenkata/TabChatAPI/internal/config"
	"github.com/svenkata/TabChatAPI/internal/data/store"
	"github.com/svenkata/TabChatAPI/internal/domain/tabModel"
	"github.com/svenkata/TabChatAPI/internal/mcpserver"
	"github.com/svenkata/TabChatAPI/internal/rag/embedding"
	"github.com/svenkata/TabChatAPI/internal/rag/embedding/googleEmbedding"
	"github.com/svenkata/TabChatAPI/internal/rag/embedding/openaiEmbedding"
	"github.com/svenkata/TabChatAPI/internal/rag/retrieval"
	"github.com/svenkata/TabChatAPI/internal/rag/vectordb"
	"github.com/svenkata/TabChatAPI/internal/rag/vectordb/memorydb"
	"github.com/svenkata/TabChatAPI/internal/rag/vectordb/qdrantdb"
	"github.com/svenkata/TabChatAPI/pkg/logx"
)

// Exposes the tab search index over MCP stdio so editor and desktop
// assistants can query the same chunk store the API serves.
func main() {

	_ = godotenv.Load()

	logx.Init()
	var logger = logx.NewLogger("mcp")

	serviceContext, closeExternalServices := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer closeExternalServices()

	var tabStore tabModel.TabStore
	if rs := store.GetRedisTabStore(serviceContext); rs != nil {
		tabStore = rs
	} else {
		if !config.FALLBACK_REDIS_TO_INTERNALSTORE {
			logger.Error("Redis tab store is offline")
			os.Exit(1)
		}
		logger.Error("Redis tab store is offline, using in-memory store")
		tabStore = store.InitInMemoryTabStore()
	}

	var chunkIndex vectordb.Index
	if qi := qdrantdb.GetQdrantIndex(serviceContext); qi != nil {
		chunkIndex = qi
	} else {
		logger.Error("Qdrant is offline, using in-memory chunk index")
		chunkIndex = memorydb.InitInMemoryIndex()
	}

	var embedder embedding.Embedder
	if config.EmbeddingProviderName == "google" {
		embedder = googleEmbedding.GetGoogleEmbeddingClient(serviceContext, config.GoogleEmbeddingModel, config.GoogleAPIKey())
	} else {
		embedder = openaiEmbedding.GetOpenAIEmbeddingClient(serviceContext, config.OpenAIEmbeddingModel, config.OpenAIAPIKey())
	}
	if embedder == nil {
		logger.Error("Embedding service failed to initialize. Shutting down.")
		os.Exit(1)
	}

	if err := chunkIndex.EnsureCollection(serviceContext); err != nil {
		logger.Error("Chunk collection unavailable. Shutting down.", "error", err)
		os.Exit(1)
	}

	searcher := retrieval.NewSearcher(embedder, chunkIndex)

	mcpServer, err := mcpserver.NewServer(searcher, tabStore, config.DefaultUserId)
	if err != nil {
		logger.Error("Could not create MCP server", "error", err)
		os.Exit(1)
	}

	logger.Info("MCP server listening on stdio")
	if err := mcpServer.Run(serviceContext); err != nil && serviceContext.Err() == nil {
		logger.Error("MCP server stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("MCP server stopped")
}
