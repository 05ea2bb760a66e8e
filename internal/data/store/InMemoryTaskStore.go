package store

import (
	"context"
	"sync"

	"github.com/svenkata/TabChatAPI/internal/domain/taskModel"
	"github.com/svenkata/TabChatAPI/pkg/logx"
)

var inMemTaskLogger = logx.NewLogger("InMem TaskStore")

type InMemoryTaskStore struct {
	taskMutex *sync.RWMutex
	taskMap   map[string]taskModel.Task
}

func InitInMemoryTaskStore() *InMemoryTaskStore {
	return &InMemoryTaskStore{
		taskMutex: new(sync.RWMutex),
		taskMap:   make(map[string]taskModel.Task),
	}
}

func (store *InMemoryTaskStore) SaveTask(ctx context.Context, task taskModel.Task) error {
	store.taskMutex.Lock()
	defer store.taskMutex.Unlock()
	store.taskMap[task.Id] = task
	inMemTaskLogger.Debug("Saved task to store", "taskId", task.Id)
	return nil
}

func (store *InMemoryTaskStore) GetTask(ctx context.Context, taskId string) (taskModel.Task, bool) {
	store.taskMutex.RLock()
	defer store.taskMutex.RUnlock()
	result, found := store.taskMap[taskId]
	return result, found
}

func (store *InMemoryTaskStore) DeleteTask(ctx context.Context, taskId string) {
	store.taskMutex.Lock()
	defer store.taskMutex.Unlock()
	delete(store.taskMap, taskId)
}
