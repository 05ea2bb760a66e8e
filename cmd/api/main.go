// @title           Tab Chat API
// @version         1.0
// @description     This API ingests saved browser tabs and answers chat questions grounded in them
// @termsOfService  http://swagger.io/terms/

// @contact.name    me lol
// @contact.url
// @contact.email

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:3000
// @BasePath  /
// @schemes   http https
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/svenkata/TabChatAPI/internal/config"
	"github.com/svenkata/TabChatAPI/internal/data/store"
	"github.com/svenkata/TabChatAPI/internal/domain/chatModel"
	"github.com/svenkata/TabChatAPI/internal/domain/tabModel"
	"github.com/svenkata/TabChatAPI/internal/domain/taskModel"
	"github.com/svenkata/TabChatAPI/internal/handlers"
	"github.com/svenkata/TabChatAPI/internal/rag"
	"github.com/svenkata/TabChatAPI/internal/rag/chat"
	"github.com/svenkata/TabChatAPI/internal/rag/embedding"
	"github.com/svenkata/TabChatAPI/internal/rag/embedding/googleEmbedding"
	"github.com/svenkata/TabChatAPI/internal/rag/embedding/openaiEmbedding"
	"github.com/svenkata/TabChatAPI/internal/rag/ingest"
	"github.com/svenkata/TabChatAPI/internal/rag/llm"
	"github.com/svenkata/TabChatAPI/internal/rag/llm/gemini"
	"github.com/svenkata/TabChatAPI/internal/rag/llm/openaillm"
	"github.com/svenkata/TabChatAPI/internal/rag/retrieval"
	"github.com/svenkata/TabChatAPI/internal/rag/vectordb"
	"github.com/svenkata/TabChatAPI/internal/rag/vectordb/memorydb"
	"github.com/svenkata/TabChatAPI/internal/rag/vectordb/qdrantdb"
	"github.com/svenkata/TabChatAPI/internal/server"
	"github.com/svenkata/TabChatAPI/internal/task"
	"github.com/svenkata/TabChatAPI/internal/worker"
	"github.com/svenkata/TabChatAPI/pkg/logx"
)

var (
	listenAddr        string
	requestCount      int64
	stopWorkerChannel chan bool
	workerWaitGroup   sync.WaitGroup
)

func main() {

	_ = godotenv.Load()

	logx.Init()
	var logger = logx.NewLogger("main")

	//config
	flag.StringVar(&listenAddr, "listen-addr", config.ServerListenAddr, "server listen address")
	flag.Parse()

	//init buffered task channel
	taskChannel := make(chan taskModel.Task, config.BufferLimit)
	dispatcherChannel := make(chan bool, 1)
	stopWorkerChannel = make(chan bool, 1)

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	//init data stores, falling back to in-memory when redis is offline
	var taskStore taskModel.TaskStore
	var tabStore tabModel.TabStore
	var chatStore chatModel.Store

	if rs := store.GetRedisTaskStore(serviceContext); rs != nil {
		taskStore = rs
	}
	if rs := store.GetRedisTabStore(serviceContext); rs != nil {
		tabStore = rs
	}
	if rs := store.GetRedisChatStore(serviceContext); rs != nil {
		chatStore = rs
	}

	if taskStore == nil || tabStore == nil || chatStore == nil {
		if !config.FALLBACK_REDIS_TO_INTERNALSTORE {
			logger.Error("Redis stores are offline")
			return
		}
		logger.Error("Redis stores are offline, using in-memory stores")
		taskStore = store.InitInMemoryTaskStore()
		tabStore = store.InitInMemoryTabStore()
		chatStore = store.InitInMemoryChatStore()
	}

	//init task service
	serviceConfig := task.ServiceConfig{
		TaskChannel:       taskChannel,
		RequestCount:      requestCount,
		DispatcherChannel: dispatcherChannel,
		TaskStore:         taskStore,
	}
	logger.Info("Starting task service")
	taskService := task.InitTaskService(serviceConfig)

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

	var llmProvider llm.Provider
	if config.LLMProviderName == "gemini" {
		llmProvider = gemini.GetGeminiClient(serviceContext, config.GeminiChatModel, config.GoogleAPIKey())
	} else {
		llmProvider = openaillm.GetOpenAIClient(serviceContext, config.OpenAIChatModel, config.OpenAIAPIKey())
	}

	if chunkIndex == nil || embedder == nil || llmProvider == nil {
		logger.Error("One or more external services failed to initialize. Shutting down.")
		logger.Debug("Available services : ", "ChunkIndex", chunkIndex != nil, "Embedder", embedder != nil, "LLMProvider", llmProvider != nil)
		return
	}

	if err := chunkIndex.EnsureCollection(serviceContext); err != nil {
		logger.Error("Chunk collection unavailable. Shutting down.", "error", err)
		return
	}

	pipeline := ingest.NewPipeline(tabStore, embedder, chunkIndex)
	searcher := retrieval.NewSearcher(embedder, chunkIndex)
	completer := chat.NewCompleter(chatStore, tabStore, searcher, llmProvider)
	ragService := rag.NewService(pipeline, completer, tabStore)

	handlers.InitTaskHandler(taskService, tabStore, chatStore, chunkIndex)

	//init worker pool
	worker.InitServices(taskService, ragService)
	worker.InitWorkerPool(stopWorkerChannel, &workerWaitGroup)

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		WorkerStop:       stopWorkerChannel,
		Group:            &workerWaitGroup,
		CloseServices:    closeExternalServices,
	}
	go server.ShutDownHandler(shutdownParams)
	go server.CreateServer(listenAddr)

	<-stopExecution
	logger.Info("Server stopped")
}
