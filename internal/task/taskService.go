package task

import (
	"github.com/svenkata/TabChatAPI/internal/domain/taskModel"
)

// Service bundles the queue channels and the task store so handlers and the
// worker pool share one wiring point.
type Service struct {
	TaskChannel       chan taskModel.Task
	RequestCount      int64
	DispatcherChannel chan bool
	TaskStore         taskModel.TaskStore
}

type ServiceConfig struct {
	TaskChannel       chan taskModel.Task
	RequestCount      int64
	DispatcherChannel chan bool
	TaskStore         taskModel.TaskStore
}

func InitTaskService(cfg ServiceConfig) *Service {
	return &Service{
		TaskChannel:       cfg.TaskChannel,
		RequestCount:      cfg.RequestCount,
		DispatcherChannel: cfg.DispatcherChannel,
		TaskStore:         cfg.TaskStore,
	}
}
