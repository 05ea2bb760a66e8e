package googleEmbedding

import (
	"context"
	"fmt"
	"sync"

	"github.com/svenkata/TabChatAPI/internal/config"
	"github.com/svenkata/TabChatAPI/internal/httpclient"
	"github.com/svenkata/TabChatAPI/internal/rag/embedding"
	"github.com/svenkata/TabChatAPI/pkg/logx"
	"google.golang.org/genai"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var logger *logx.Logger
var once sync.Once
var embeddingClient *client
var dimension int32 = config.EmbeddingDimension

type client struct {
	genAi *genai.Client
	model string
}

// GetGoogleEmbeddingClient is the genai-backed alternative to the OpenAI
// embedder. Same contract: batched, order-aligned, no local retries.
func GetGoogleEmbeddingClient(ctx context.Context, modelName string, apikey string) embedding.Embedder {
	once.Do(func() {
		logger = logx.NewLogger("google_embedding")
		newGoogleEmbedder(ctx, modelName, apikey)
	})

	if embeddingClient == nil {
		return nil
	}
	return embeddingClient
}

func newGoogleEmbedder(ctx context.Context, modelName string, apikey string) {
	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apikey, HTTPClient: httpclient.Pooled()})
	if err != nil {
		logger.Error("Error creating Google embedding client", "error", err)
		return
	}
	embeddingClient = &client{
		genAi: c,
		model: modelName,
	}
	logger.Info("Google embedding client created", "model", modelName)
}

func (c *client) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	vectors, err := c.embed(ctx, []string{query}, "RETRIEVAL_QUERY")
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (c *client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("embedding batch is empty")
	}
	return c.embed(ctx, texts, "RETRIEVAL_DOCUMENT")
}

func (c *client) embed(ctx context.Context, texts []string, taskType string) ([][]float32, error) {
	log := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	contents := make([]*genai.Content, 0, len(texts))
	for _, t := range texts {
		contents = append(contents, &genai.Content{
			Parts: []*genai.Part{{Text: t}},
		})
	}

	res, err := c.genAi.Models.EmbedContent(ctx, c.model, contents, &genai.EmbedContentConfig{
		OutputDimensionality: &dimension,
		TaskType:             taskType,
	})
	if err != nil {
		if s, ok := status.FromError(err); ok && s.Code() == codes.ResourceExhausted {
			log.Error("Google embedding rate limit hit", "error", err)
			return nil, fmt.Errorf("google embeddings rate limited: %w", err)
		}
		log.Error("Google embedding call failed", "error", err)
		return nil, fmt.Errorf("google embeddings: %w", err)
	}
	if len(res.Embeddings) != len(texts) {
		return nil, fmt.Errorf("google embeddings: got %d vectors for %d inputs", len(res.Embeddings), len(texts))
	}

	vectors := make([][]float32, len(res.Embeddings))
	for i, e := range res.Embeddings {
		vectors[i] = e.Values
	}
	return vectors, nil
}
