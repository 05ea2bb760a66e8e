package store

import (
	"context"
	"encoding/json"

	"github.com/svenkata/TabChatAPI/internal/config"
	"github.com/svenkata/TabChatAPI/internal/data/redisStore"
	"github.com/svenkata/TabChatAPI/internal/domain/taskModel"
	"github.com/svenkata/TabChatAPI/pkg/logx"
)

type RedisTaskStore struct {
	store  *redisStore.Store
	logger *logx.Logger
}

func GetRedisTaskStore(ctx context.Context) *RedisTaskStore {
	backing := redisStore.GetRedisStore(ctx, config.RedisTaskStore)
	if backing == nil {
		return nil
	}
	return &RedisTaskStore{
		store:  backing,
		logger: logx.NewLogger("TaskStore"),
	}
}

func (s *RedisTaskStore) SaveTask(ctx context.Context, task taskModel.Task) error {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "taskId", task.Id)
	log.Debug("saving task")
	data, err := json.Marshal(task)
	if err != nil {
		return err
	}

	err = s.store.Set(ctx, task.Id, data, config.RedisTaskStoreTTL)
	if err == nil {
		log.Debug("Saved task to Redis")
	}
	return err
}

func (s *RedisTaskStore) GetTask(ctx context.Context, taskId string) (taskModel.Task, bool) {
	var task taskModel.Task
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "taskId", taskId)
	val, err := s.store.Get(ctx, taskId)
	if s.store.IsNil(err) {
		return task, false
	} else if err != nil {
		log.Error("Error reading task from Redis", "error", err)
		return task, false
	}

	if err = json.Unmarshal([]byte(val), &task); err != nil {
		log.Error("Error unmarshalling task", "error", err)
		return task, false
	}
	return task, true
}

func (s *RedisTaskStore) DeleteTask(ctx context.Context, taskId string) {
	if err := s.store.Del(ctx, taskId); err != nil {
		s.logger.Error("Error deleting task from Redis", "taskId", taskId, "error", err)
		return
	}
	s.logger.Debug("Task deleted from Redis", "taskId", taskId)
}

func TestTaskStore(store *redisStore.Store) *RedisTaskStore {
	return &RedisTaskStore{
		store:  store,
		logger: logx.NewLogger("test task store"),
	}
}
