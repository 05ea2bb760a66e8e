package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/svenkata/TabChatAPI/internal/domain/taskModel"
	"github.com/svenkata/TabChatAPI/internal/task"
)

// MockRagService tracks how tasks get routed
type MockRagService struct {
	IngestCount     int32
	CompletionCount int32
}

func (m *MockRagService) IngestTab(ctx context.Context, t taskModel.Task) taskModel.Task {
	atomic.AddInt32(&m.IngestCount, 1)
	t.Status = taskModel.TaskStatusComplete
	return t
}

func (m *MockRagService) CompleteChat(ctx context.Context, t taskModel.Task) taskModel.Task {
	atomic.AddInt32(&m.CompletionCount, 1)
	t.Status = taskModel.TaskStatusComplete
	return t
}

type MockTaskStore struct {
	mu    sync.Mutex
	saved []taskModel.Task
}

func (m *MockTaskStore) SaveTask(ctx context.Context, t taskModel.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = append(m.saved, t)
	return nil
}

func (m *MockTaskStore) GetTask(ctx context.Context, taskId string) (taskModel.Task, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.saved) - 1; i >= 0; i-- {
		if m.saved[i].Id == taskId {
			return m.saved[i], true
		}
	}
	return taskModel.Task{}, false
}

func (m *MockTaskStore) DeleteTask(ctx context.Context, taskId string) {}

func TestWorkerPool_Flow(t *testing.T) {
	taskStore := &MockTaskStore{}
	taskSvc := &task.Service{
		TaskChannel:       make(chan taskModel.Task, 10),
		DispatcherChannel: make(chan bool, 10),
		TaskStore:         taskStore,
	}
	mockRag := &MockRagService{}
	stopChan := make(chan bool)
	wg := &sync.WaitGroup{}

	InitServices(taskSvc, mockRag)
	InitWorkerPool(stopChan, wg)

	// Reset global state for test
	atomic.StoreInt64(&currentWorkerCount, 0)

	t.Run("Dispatcher creates worker on signal", func(t *testing.T) {
		taskSvc.DispatcherChannel <- true

		time.Sleep(50 * time.Millisecond)

		count := atomic.LoadInt64(&currentWorkerCount)
		if count < 1 {
			t.Errorf("Expected at least 1 worker, got %d", count)
		}
	})

	t.Run("Worker routes ingest tasks", func(t *testing.T) {
		taskSvc.TaskChannel <- taskModel.Task{Id: "ingest-1", Type: taskModel.TaskTypeIngest}

		time.Sleep(50 * time.Millisecond)

		if processed := atomic.LoadInt32(&mockRag.IngestCount); processed != 1 {
			t.Errorf("Expected 1 ingest task processed, got %d", processed)
		}
	})

	t.Run("Worker routes completion tasks", func(t *testing.T) {
		taskSvc.TaskChannel <- taskModel.Task{Id: "completion-1", Type: taskModel.TaskTypeCompletion}

		time.Sleep(50 * time.Millisecond)

		if processed := atomic.LoadInt32(&mockRag.CompletionCount); processed != 1 {
			t.Errorf("Expected 1 completion task processed, got %d", processed)
		}
	})

	t.Run("Final task state is persisted", func(t *testing.T) {
		saved, found := taskStore.GetTask(context.Background(), "ingest-1")
		if !found {
			t.Fatal("task never saved to store")
		}
		if saved.Status != taskModel.TaskStatusComplete {
			t.Errorf("final state = %s, want complete", saved.Status)
		}
	})

	t.Run("Stop signal retires workers", func(t *testing.T) {
		close(stopChan)

		done := make(chan struct{})
		go func() {
			wg.Wait()
			close(done)
		}()

		select {
		case <-done:
			// Success
		case <-time.After(2 * time.Second):
			t.Error("Workers did not stop within timeout")
		}
	})
}
