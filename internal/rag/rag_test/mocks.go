package rag_test

import (
	"context"

	"github.com/svenkata/TabChatAPI/internal/domain/chatModel"
	"github.com/svenkata/TabChatAPI/internal/rag/llm"
)

// MockEmbedder implements embedding.Embedder
type MockEmbedder struct {
	OnEmbedQuery func(ctx context.Context, text string) ([]float32, error)
	OnEmbedBatch func(ctx context.Context, texts []string) ([][]float32, error)
}

func (m *MockEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if m.OnEmbedQuery != nil {
		return m.OnEmbedQuery(ctx, text)
	}
	return []float32{1, 0, 0}, nil
}

func (m *MockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if m.OnEmbedBatch != nil {
		return m.OnEmbedBatch(ctx, texts)
	}
	vectors := make([][]float32, len(texts))
	for i := range vectors {
		vectors[i] = []float32{1, 0, 0}
	}
	return vectors, nil
}

// MockProvider implements llm.Provider
type MockProvider struct {
	OnStreamChat func(ctx context.Context, system string, history []chatModel.Message, tools []llm.Tool, onDelta func(string) error) (string, error)
}

func (m *MockProvider) StreamChat(ctx context.Context, system string, history []chatModel.Message, tools []llm.Tool, onDelta func(string) error) (string, error) {
	if m.OnStreamChat != nil {
		return m.OnStreamChat(ctx, system, history, tools, onDelta)
	}
	if err := onDelta("mocked llm response"); err != nil {
		return "", err
	}
	return "mocked llm response", nil
}
