package worker

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/svenkata/TabChatAPI/internal/config"
	"github.com/svenkata/TabChatAPI/internal/domain/taskModel"
	"github.com/svenkata/TabChatAPI/internal/metrics"
)

func executeTask(currentTask taskModel.Task) {
	start := time.Now()
	defer func() {
		metrics.CaptureTaskMetrics(string(currentTask.Status), time.Since(start))
	}()
	ctxTrace := context.WithValue(context.Background(), config.TRACE_ID_KEY, currentTask.TraceId)
	ctx, cancel := context.WithTimeout(ctxTrace, config.TaskExecutionTimeout)
	defer cancel()
	logger.Debug("Processing task:", "taskId", currentTask.Id, "traceId", currentTask.TraceId)

	saveTaskState(ctx, currentTask, taskModel.TaskStatusRunning)

	switch currentTask.Type {
	case taskModel.TaskTypeIngest:
		currentTask = _ragService.IngestTab(ctx, currentTask)
	case taskModel.TaskTypeCompletion:
		currentTask = _ragService.CompleteChat(ctx, currentTask)
	default:
		logger.Error("Unknown task type", "taskId", currentTask.Id, "type", currentTask.Type)
		return
	}

	currentTask.EndTime = time.Now().UTC()
	saveTaskState(ctx, currentTask, currentTask.Status)
}

func removeWorker(reason string) {
	workerWaitGroup.Done()
	atomic.AddInt64(&currentWorkerCount, -1)
	logger.Info("Removed worker ", "reason", reason, "workerCount", currentWorkerCount)
	metrics.DecrementActiveWorkerCount()
}

func saveTaskState(ctx context.Context, currentTask taskModel.Task, status taskModel.TaskStatus) {
	currentTask.Status = status
	if err := _taskService.TaskStore.SaveTask(ctx, currentTask); err != nil {
		logger.Error("Failed to update task status", "err", err)
	}
}
