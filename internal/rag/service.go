package rag

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/svenkata/TabChatAPI/internal/config"
	"github.com/svenkata/TabChatAPI/internal/domain/tabModel"
	"github.com/svenkata/TabChatAPI/internal/domain/taskModel"
	"github.com/svenkata/TabChatAPI/internal/metrics"
	"github.com/svenkata/TabChatAPI/internal/rag/chat"
	"github.com/svenkata/TabChatAPI/internal/rag/ingest"
	"github.com/svenkata/TabChatAPI/pkg/logx"
)

// Service is what the worker calls. It hides the pipeline, the retriever
// and the LLM provider behind two task-shaped operations so the worker
// stays decoupled from RAG internals.
type Service interface {
	IngestTab(ctx context.Context, task taskModel.Task) taskModel.Task
	CompleteChat(ctx context.Context, task taskModel.Task) taskModel.Task
}

type service struct {
	pipeline  *ingest.Pipeline
	completer *chat.Completer
	tabs      tabModel.TabStore
	logger    *logx.Logger
}

func NewService(pipeline *ingest.Pipeline, completer *chat.Completer, tabs tabModel.TabStore) Service {
	return &service{
		pipeline:  pipeline,
		completer: completer,
		tabs:      tabs,
		logger:    logx.NewLogger("RAG Service"),
	}
}

func (s *service) IngestTab(ctx context.Context, task taskModel.Task) taskModel.Task {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "taskId", task.Id)
	start := time.Now()
	defer func() { metrics.CaptureTaskMetrics("tab_ingestion", time.Since(start)) }()

	task.CurrentStep = taskModel.IngestProcessing

	tab, found := s.tabs.Get(ctx, task.Payload.TabId)
	if !found {
		return s.taskError(task, ingest.ErrTabNotFound, http.StatusNotFound, false)
	}

	if err := s.pipeline.Process(ctx, tab.Id, tab.Content); err != nil {
		if errors.Is(err, ingest.ErrIngestInProgress) {
			return s.taskError(task, err, http.StatusConflict, false)
		}
		return s.taskError(task, err, http.StatusInternalServerError, true)
	}

	log.Info("Ingest task complete")
	return s.complete(task)
}

func (s *service) CompleteChat(ctx context.Context, task taskModel.Task) taskModel.Task {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "taskId", task.Id)
	start := time.Now()
	defer func() { metrics.CaptureTaskMetrics("chat_completion", time.Since(start)) }()

	task.CurrentStep = taskModel.LLMStreamCall

	err := s.completer.Complete(ctx, task.Payload.ChatId, task.Payload.PlaceholderMessageId)
	if err != nil {
		if errors.Is(err, chat.ErrChatNotFound) || errors.Is(err, chat.ErrPlaceholderNotFound) {
			return s.taskError(task, err, http.StatusNotFound, false)
		}
		return s.taskError(task, err, http.StatusInternalServerError, true)
	}

	log.Info("Completion task complete")
	return s.complete(task)
}

func (s *service) complete(task taskModel.Task) taskModel.Task {
	task.Status = taskModel.TaskStatusComplete
	task.CurrentStep = taskModel.Complete
	task.EndTime = time.Now().UTC()
	return task
}

func (s *service) taskError(task taskModel.Task, err error, code int, canRetry bool) taskModel.Task {
	s.logger.Error("Task failed", "taskId", task.Id, "error", err)

	task.Error = taskModel.TaskError{
		Code:    code,
		Message: err.Error(),
		Retry:   canRetry,
	}
	task.Status = taskModel.TaskStatusError
	task.CurrentStep = taskModel.Error
	task.EndTime = time.Now().UTC()
	return task
}
