package rag_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/svenkata/TabChatAPI/internal/config"
	"github.com/svenkata/TabChatAPI/internal/data/store"
	"github.com/svenkata/TabChatAPI/internal/domain/chatModel"
	"github.com/svenkata/TabChatAPI/internal/domain/tabModel"
	"github.com/svenkata/TabChatAPI/internal/domain/taskModel"
	"github.com/svenkata/TabChatAPI/internal/rag"
	"github.com/svenkata/TabChatAPI/internal/rag/chat"
	"github.com/svenkata/TabChatAPI/internal/rag/ingest"
	"github.com/svenkata/TabChatAPI/internal/rag/llm"
	"github.com/svenkata/TabChatAPI/internal/rag/retrieval"
	"github.com/svenkata/TabChatAPI/internal/rag/vectordb/memorydb"
)

type harness struct {
	tabs    *store.InMemoryTabStore
	chats   *store.InMemoryChatStore
	index   *memorydb.Index
	service rag.Service
}

func newHarness(t *testing.T, embedder *MockEmbedder, provider llm.Provider) *harness {
	t.Helper()
	if embedder == nil {
		embedder = &MockEmbedder{}
	}

	h := &harness{
		tabs:  store.InitInMemoryTabStore(),
		chats: store.InitInMemoryChatStore(),
		index: memorydb.InitInMemoryIndexWithDimension(3),
	}

	pipeline := ingest.NewPipeline(h.tabs, embedder, h.index)
	searcher := retrieval.NewSearcher(embedder, h.index)
	completer := chat.NewCompleter(h.chats, h.tabs, searcher, provider)
	h.service = rag.NewService(pipeline, completer, h.tabs)
	return h
}

func ingestTask(tabId string) taskModel.Task {
	return taskModel.Task{
		Id:     "task-1",
		Type:   taskModel.TaskTypeIngest,
		Status: taskModel.TaskStatusRunning,
		Payload: taskModel.TaskPayload{
			TabId: tabId,
		},
	}
}

func TestIngestTab_Success(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, nil, &MockProvider{})

	text := strings.TrimSpace(strings.Repeat("structured logging with slog ", 50))
	tab := tabModel.Tab{Id: "tab-1", UserId: "user-1", URL: "https://go.dev/blog/slog", Name: "slog", Status: tabModel.StatusPending, Content: text}
	if err := h.tabs.Save(ctx, tab); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	result := h.service.IngestTab(ctx, ingestTask("tab-1"))

	if result.Status != taskModel.TaskStatusComplete {
		t.Fatalf("task status = %s, error = %+v", result.Status, result.Error)
	}
	if result.CurrentStep != taskModel.Complete {
		t.Errorf("current step = %s", result.CurrentStep)
	}
	if result.EndTime.IsZero() {
		t.Error("end time not set")
	}

	updated, _ := h.tabs.Get(ctx, "tab-1")
	if updated.Status != tabModel.StatusProcessed {
		t.Errorf("tab status = %s, want processed", updated.Status)
	}
}

func TestIngestTab_MissingTab(t *testing.T) {
	h := newHarness(t, nil, &MockProvider{})

	result := h.service.IngestTab(context.Background(), ingestTask("ghost"))

	if result.Status != taskModel.TaskStatusError {
		t.Fatalf("task status = %s, want error", result.Status)
	}
	if result.Error.Code != http.StatusNotFound {
		t.Errorf("error code = %d, want 404", result.Error.Code)
	}
	if result.Error.Retry {
		t.Error("missing tab must not be retryable")
	}
}

func TestIngestTab_AlreadyRunning(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, nil, &MockProvider{})

	tab := tabModel.Tab{Id: "tab-1", UserId: "user-1", Status: tabModel.StatusEmbedding, Content: "irrelevant"}
	if err := h.tabs.Save(ctx, tab); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	result := h.service.IngestTab(ctx, ingestTask("tab-1"))

	if result.Status != taskModel.TaskStatusError {
		t.Fatalf("task status = %s, want error", result.Status)
	}
	if result.Error.Code != http.StatusConflict {
		t.Errorf("error code = %d, want 409", result.Error.Code)
	}
	if result.Error.Retry {
		t.Error("in-flight conflict must not be retryable")
	}
}

func TestIngestTab_EmbedderFailureIsRetryable(t *testing.T) {
	ctx := context.Background()
	embedder := &MockEmbedder{
		OnEmbedBatch: func(ctx context.Context, texts []string) ([][]float32, error) {
			return nil, errors.New("upstream 429")
		},
	}
	h := newHarness(t, embedder, &MockProvider{})

	text := strings.TrimSpace(strings.Repeat("structured logging with slog ", 50))
	if err := h.tabs.Save(ctx, tabModel.Tab{Id: "tab-1", UserId: "user-1", Status: tabModel.StatusPending, Content: text}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	result := h.service.IngestTab(ctx, ingestTask("tab-1"))

	if result.Status != taskModel.TaskStatusError {
		t.Fatalf("task status = %s, want error", result.Status)
	}
	if !result.Error.Retry {
		t.Error("embedder failure should be retryable")
	}
}

func TestCompleteChat_Success(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, nil, &MockProvider{})

	if err := h.chats.CreateChat(ctx, chatModel.Chat{Id: "chat-1", UserId: "user-1"}); err != nil {
		t.Fatalf("CreateChat failed: %v", err)
	}
	if _, err := h.chats.AppendMessage(ctx, "chat-1", chatModel.RoleUser, "hello"); err != nil {
		t.Fatalf("AppendMessage failed: %v", err)
	}
	placeholder, err := h.chats.AppendMessage(ctx, "chat-1", chatModel.RoleAssistant, config.PendingMessageContent)
	if err != nil {
		t.Fatalf("AppendMessage failed: %v", err)
	}

	task := taskModel.Task{
		Id:   "task-1",
		Type: taskModel.TaskTypeCompletion,
		Payload: taskModel.TaskPayload{
			ChatId:               "chat-1",
			PlaceholderMessageId: placeholder.Id,
		},
	}

	result := h.service.CompleteChat(ctx, task)

	if result.Status != taskModel.TaskStatusComplete {
		t.Fatalf("task status = %s, error = %+v", result.Status, result.Error)
	}

	msg, _ := h.chats.GetMessage(ctx, placeholder.Id)
	if msg.Content != "mocked llm response" {
		t.Errorf("placeholder content = %q", msg.Content)
	}
}

func TestCompleteChat_MissingChat(t *testing.T) {
	h := newHarness(t, nil, &MockProvider{})

	task := taskModel.Task{
		Id:   "task-1",
		Type: taskModel.TaskTypeCompletion,
		Payload: taskModel.TaskPayload{
			ChatId:               "ghost",
			PlaceholderMessageId: "also-ghost",
		},
	}

	result := h.service.CompleteChat(context.Background(), task)

	if result.Status != taskModel.TaskStatusError {
		t.Fatalf("task status = %s, want error", result.Status)
	}
	if result.Error.Code != http.StatusNotFound {
		t.Errorf("error code = %d, want 404", result.Error.Code)
	}
}

func TestCompleteChat_ProviderFailureIsRetryable(t *testing.T) {
	ctx := context.Background()
	provider := &MockProvider{
		OnStreamChat: func(ctx context.Context, system string, history []chatModel.Message, tools []llm.Tool, onDelta func(string) error) (string, error) {
			return "", errors.New("stream reset")
		},
	}
	h := newHarness(t, nil, provider)

	if err := h.chats.CreateChat(ctx, chatModel.Chat{Id: "chat-1", UserId: "user-1"}); err != nil {
		t.Fatalf("CreateChat failed: %v", err)
	}
	placeholder, err := h.chats.AppendMessage(ctx, "chat-1", chatModel.RoleAssistant, config.PendingMessageContent)
	if err != nil {
		t.Fatalf("AppendMessage failed: %v", err)
	}

	task := taskModel.Task{
		Id:   "task-1",
		Type: taskModel.TaskTypeCompletion,
		Payload: taskModel.TaskPayload{
			ChatId:               "chat-1",
			PlaceholderMessageId: placeholder.Id,
		},
	}

	result := h.service.CompleteChat(ctx, task)

	if result.Status != taskModel.TaskStatusError {
		t.Fatalf("task status = %s, want error", result.Status)
	}
	if !result.Error.Retry {
		t.Error("provider failure should be retryable")
	}
}
