package handlers

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/svenkata/TabChatAPI/internal/adapter/utils"
	"github.com/svenkata/TabChatAPI/internal/config"
	"github.com/svenkata/TabChatAPI/internal/domain/chatModel"
	"github.com/svenkata/TabChatAPI/internal/domain/tabModel"
	"github.com/svenkata/TabChatAPI/internal/domain/taskModel"
	"github.com/svenkata/TabChatAPI/internal/metrics"
	"github.com/svenkata/TabChatAPI/internal/rag/vectordb"
	"github.com/svenkata/TabChatAPI/internal/task"
	"github.com/svenkata/TabChatAPI/pkg/logx"
)

var (
	handlerInstance *TaskHandler //private singleton
	once            sync.Once
	logTH           *logx.Logger
	logRH           *logx.Logger
)

type TaskHandler struct {
	service *task.Service
	tabs    tabModel.TabStore
	chats   chatModel.Store
	index   vectordb.Index
}

func InitTaskHandler(taskService *task.Service, tabs tabModel.TabStore, chats chatModel.Store, index vectordb.Index) {
	once.Do(func() {
		handlerInstance = &TaskHandler{
			service: taskService,
			tabs:    tabs,
			chats:   chats,
			index:   index,
		}

		logTH = logx.NewLogger("TaskHandler")
		logRH = logx.NewLogger("RequestHandler")
		logTH.Info("Starting task handler")
	})
}

func GetTaskStatus(id string, traceId string) (result taskModel.Task, isFound bool) {
	ctxC := context.WithValue(context.Background(), config.TRACE_ID_KEY, traceId)
	if handlerInstance != nil {
		return handlerInstance.service.TaskStore.GetTask(ctxC, id)
	}
	return result, false
}

// QueueIngestTask queues a background ingestion run for a tab.
func QueueIngestTask(tabId string, traceId string) taskModel.Task {
	newTask := taskModel.Task{
		Id:          utils.GetNewUUID(),
		TraceId:     traceId,
		Type:        taskModel.TaskTypeIngest,
		Status:      taskModel.TaskStatusQueued,
		CurrentStep: taskModel.IngestInit,
		CreatedTime: time.Now().UTC(),
		Payload: taskModel.TaskPayload{
			TabId: tabId,
		},
	}
	// ingestion is batch-heavy, always offer the dispatcher a new worker
	handlerInstance.pushToTaskChannel(newTask, true)
	return newTask
}

// QueueCompletionTask queues a streaming completion into the placeholder.
func QueueCompletionTask(chatId string, placeholderMessageId string, traceId string) taskModel.Task {
	newTask := taskModel.Task{
		Id:          utils.GetNewUUID(),
		TraceId:     traceId,
		Type:        taskModel.TaskTypeCompletion,
		Status:      taskModel.TaskStatusQueued,
		CurrentStep: taskModel.CompletionInit,
		CreatedTime: time.Now().UTC(),
		Payload: taskModel.TaskPayload{
			ChatId:               chatId,
			PlaceholderMessageId: placeholderMessageId,
		},
	}
	handlerInstance.pushToTaskChannel(newTask, false)
	return newTask
}

// private methods
func (h *TaskHandler) pushToTaskChannel(newTask taskModel.Task, wantsWorker bool) {
	logTH.Info("To create new task", "taskId", newTask.Id, "type", newTask.Type)

	//metrics
	metrics.IncrementTasksInQueue()

	h.service.TaskChannel <- newTask //blocking send to prevent the system from being overwhelmed
	logTH.Info("Created new task")

	//a new worker every N requests, or eagerly for heavy work;
	//idle workers retire on their own so the pool shrinks back
	accurateCount := atomic.AddInt64(&h.service.RequestCount, 1)
	if accurateCount%config.RequestsPerNewWorkerCount == 0 || wantsWorker {
		metrics.StartDispatcherSignalCount() //metrics
		logTH.Debug("Worker count ", accurateCount)
		h.service.DispatcherChannel <- true
	}
}
