package embedding

import "context"

// Embedder turns text into fixed-dimension vectors. EmbedBatch output is
// order-aligned with its input; callers zip results positionally. No caching
// or local retries happen here: a provider error is fatal for the call.
type Embedder interface {
	EmbedQuery(ctx context.Context, query string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}
