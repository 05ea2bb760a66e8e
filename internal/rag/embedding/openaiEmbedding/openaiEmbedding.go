package openaiEmbedding

import (
	"context"
	"fmt"
	"sync"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/svenkata/TabChatAPI/internal/config"
	"github.com/svenkata/TabChatAPI/internal/httpclient"
	"github.com/svenkata/TabChatAPI/internal/rag/embedding"
	"github.com/svenkata/TabChatAPI/pkg/logx"
)

var logger *logx.Logger
var once sync.Once
var embeddingClient *client

type client struct {
	api   openai.Client
	model string
}

// GetOpenAIEmbeddingClient returns the shared embeddings client, creating it
// on first use. Returns nil when the API key is missing.
func GetOpenAIEmbeddingClient(ctx context.Context, modelName string, apikey string) embedding.Embedder {
	once.Do(func() {
		logger = logx.NewLogger("openai_embedding")
		newOpenAIEmbedder(modelName, apikey)
	})

	if embeddingClient == nil {
		return nil
	}
	return embeddingClient
}

func newOpenAIEmbedder(modelName string, apikey string) {
	if apikey == "" {
		logger.Error("OpenAI API key is not set")
		return
	}
	embeddingClient = &client{
		api:   openai.NewClient(option.WithAPIKey(apikey), option.WithHTTPClient(httpclient.Pooled())),
		model: modelName,
	}
	logger.Info("OpenAI embedding client created", "model", modelName)
}

func (c *client) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	vectors, err := c.EmbedBatch(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch issues one batched call. Output index i corresponds to input
// index i; a count mismatch from the provider is an error, never silently
// truncated.
func (c *client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	log := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))
	if len(texts) == 0 {
		return nil, fmt.Errorf("embedding batch is empty")
	}

	res, err := c.api.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input:      openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
		Model:      c.model,
		Dimensions: openai.Int(int64(config.EmbeddingDimension)),
	})
	if err != nil {
		log.Error("OpenAI embeddings call failed", "error", err)
		return nil, fmt.Errorf("openai embeddings: %w", err)
	}
	if len(res.Data) != len(texts) {
		log.Error("Embedding count mismatch", "want", len(texts), "got", len(res.Data))
		return nil, fmt.Errorf("openai embeddings: got %d vectors for %d inputs", len(res.Data), len(texts))
	}

	vectors := make([][]float32, len(res.Data))
	for i, d := range res.Data {
		vec := make([]float32, len(d.Embedding))
		for j, v := range d.Embedding {
			vec[j] = float32(v)
		}
		vectors[i] = vec
	}
	return vectors, nil
}
