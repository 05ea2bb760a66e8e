package taskModel

import (
	"context"
	"time"
)

type TaskStatus string
type InternalStatus string
type TaskType string

const (
	TaskStatusQueued   TaskStatus = "QUEUED"
	TaskStatusRunning  TaskStatus = "RUNNING"
	TaskStatusComplete TaskStatus = "COMPLETE"
	TaskStatusError    TaskStatus = "Error"

	CompletionInit   InternalStatus = "Init"
	RetrievalCall    InternalStatus = "Retrieval"
	LLMStreamCall    InternalStatus = "LLMStream"
	EmbeddingAPICall InternalStatus = "EmbeddingAPI"

	IngestInit       InternalStatus = "IngestInit"
	IngestProcessing InternalStatus = "IngestProcessing"
	Error            InternalStatus = "Error"
	Complete         InternalStatus = "Complete"

	TaskTypeCompletion TaskType = "Completion"
	TaskTypeIngest     TaskType = "Ingest"
)

// Task is one fire-and-forget unit of background work: either ingesting a
// tab's text or streaming a chat completion into a placeholder message.
type Task struct {
	Id          string         `json:"id"`
	TraceId     string         `json:"trace_id"`
	Type        TaskType       `json:"task_type"`
	Payload     TaskPayload    `json:"payload"`
	Error       TaskError      `json:"error,omitempty"`
	CreatedTime time.Time      `json:"created_time"`
	EndTime     time.Time      `json:"end_time,omitempty"`
	Status      TaskStatus     `json:"status"`
	CurrentStep InternalStatus `json:"current_step"`
}

type TaskError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Retry   bool   `json:"retry"`
}

type TaskPayload struct {
	//ingest
	TabId string `json:"tab_id,omitempty"`

	//completion
	ChatId               string `json:"chat_id,omitempty"`
	PlaceholderMessageId string `json:"placeholder_message_id,omitempty"`
}

type TaskStore interface {
	GetTask(ctx context.Context, taskId string) (Task, bool)
	SaveTask(ctx context.Context, task Task) error
	DeleteTask(ctx context.Context, taskId string)
}
