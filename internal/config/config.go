package config

import (
	"log/slog"
	"os"
	"time"
)

type contextKey string

const (
	IS_PROD        = false
	LOG_LEVEL_PROD = slog.LevelInfo

	FALLBACK_REDIS_TO_INTERNALSTORE = true //if redis init fails, fall back to in-memory stores
	TRACE_ID_KEY                    = contextKey("traceId")

	RATE_LIMIT_PER_SECOND       = 2
	BURST_RATE_LIMIT_PER_SECOND = 5

	// single local user until a real session layer exists
	DefaultUserId = "local"

	//chunking
	ChunkSizeWords    = 120
	ChunkOverlapWords = 20
	MinChunkChars     = 100 //windows at or under this joined length are dropped

	//embeddings
	EmbeddingDimension    = 1536
	OpenAIEmbeddingModel  = "text-embedding-3-small"
	GoogleEmbeddingModel  = "gemini-embedding-001"
	EmbeddingProviderName = "openai" //or "google"

	//llm
	OpenAIChatModel  = "gpt-4o-mini"
	GeminiChatModel  = "gemini-2.5-flash-lite-preview-09-2025"
	LLMProviderName  = "openai" //or "gemini"
	ModelTemperature = 0.0

	//chat completion loop
	MaxToolSteps          = 10 //bounds search-tool round trips per generation
	SearchingStatusText   = "🔍 Searching tabs..."
	PendingMessageContent = "..."

	//retrieval
	SearchResultLimit    = 5
	SearchResultMaxLimit = 20

	//vectorDB
	ChunkCollectionName     = "tab-chunks"
	QdrantConnectionTimeout = 30 * time.Second
	QdrantHost              = ""
	QdrantGrpcPort          = 6334
	QdrantUseTLS            = false
	QdrantPoolSize          = 1

	//workers
	RequestsPerNewWorkerCount int64 = 10
	MaxWorkerCount            int64 = 10
	MinWorkerCount            int64 = 1
	IdleWorkerTimeout               = 1 * time.Minute
	TaskExecutionTimeout            = 120 * time.Second

	//outbound http connection pool
	MaxIdleConns        = 50
	MaxIdleConnsPerHost = 25
	IdleConnTimeout     = 60 * time.Second

	//serverTimeouts
	ReadTimeout            = 5 * time.Second
	WriteTimeout           = 30 * time.Second
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second

	ServerListenAddr = ":3000"

	//task requests buffer limit
	BufferLimit = 100

	//redis has 16 DBs we can use
	RedisTaskStore = 0
	RedisTabStore  = 1
	RedisChatStore = 2

	redisHost = "127.0.0.1"
	redisPort = "6379"
	RedisAddr = redisHost + ":" + redisPort

	RedisTaskStoreTTL = 24 * time.Hour

	NoAuthBypass = true //local development only
)

func OpenAIAPIKey() string {
	return os.Getenv("OPENAI_API_KEY")
}

func GoogleAPIKey() string {
	return os.Getenv("GOOGLE_API_KEY")
}

func AuthToken() string {
	return os.Getenv("API_AUTH_TOKEN")
}

func RedisPassword() string {
	return os.Getenv("REDIS_PASSWORD")
}
