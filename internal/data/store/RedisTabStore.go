package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/svenkata/TabChatAPI/internal/config"
	"github.com/svenkata/TabChatAPI/internal/data/redisStore"
	"github.com/svenkata/TabChatAPI/internal/domain/tabModel"
	"github.com/svenkata/TabChatAPI/pkg/logx"
)

var ErrTabNotFound = errors.New("tab not found")

// RedisTabStore keeps tabs under tab:{id}, a per-user id set under
// tabs:{userId} and a url lookup under taburl:{userId}:{url}.
type RedisTabStore struct {
	store  *redisStore.Store
	logger *logx.Logger
}

func GetRedisTabStore(ctx context.Context) *RedisTabStore {
	backing := redisStore.GetRedisStore(ctx, config.RedisTabStore)
	if backing == nil {
		return nil
	}
	return &RedisTabStore{
		store:  backing,
		logger: logx.NewLogger("TabStore"),
	}
}

func tabKey(tabId string) string {
	return "tab:" + tabId
}

func tabsOfUserKey(userId string) string {
	return "tabs:" + userId
}

func tabURLKey(userId string, url string) string {
	return "taburl:" + userId + ":" + url
}

func (s *RedisTabStore) Save(ctx context.Context, tab tabModel.Tab) error {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "tabId", tab.Id)
	data, err := json.Marshal(tab)
	if err != nil {
		return err
	}

	if err = s.store.Set(ctx, tabKey(tab.Id), data, 0); err != nil {
		return err
	}
	if err = s.store.Set(ctx, tabURLKey(tab.UserId, tab.URL), tab.Id, 0); err != nil {
		return err
	}
	if err = s.store.SetAdd(ctx, tabsOfUserKey(tab.UserId), tab.Id); err != nil {
		return err
	}
	log.Debug("Saved tab to Redis")
	return nil
}

func (s *RedisTabStore) Get(ctx context.Context, tabId string) (tabModel.Tab, bool) {
	var tab tabModel.Tab
	val, err := s.store.Get(ctx, tabKey(tabId))
	if s.store.IsNil(err) {
		return tab, false
	} else if err != nil {
		s.logger.Error("Error reading tab from Redis", "tabId", tabId, "error", err)
		return tab, false
	}

	if err = json.Unmarshal([]byte(val), &tab); err != nil {
		s.logger.Error("Error unmarshalling tab", "tabId", tabId, "error", err)
		return tab, false
	}
	return tab, true
}

func (s *RedisTabStore) GetByURL(ctx context.Context, userId string, url string) (tabModel.Tab, bool) {
	tabId, err := s.store.Get(ctx, tabURLKey(userId, url))
	if s.store.IsNil(err) || err != nil {
		return tabModel.Tab{}, false
	}
	return s.Get(ctx, tabId)
}

func (s *RedisTabStore) List(ctx context.Context, userId string) ([]tabModel.Tab, error) {
	ids, err := s.store.SetMembers(ctx, tabsOfUserKey(userId))
	if err != nil {
		return nil, err
	}

	tabs := make([]tabModel.Tab, 0, len(ids))
	for _, id := range ids {
		if tab, found := s.Get(ctx, id); found {
			tabs = append(tabs, tab)
		}
	}
	return tabs, nil
}

func (s *RedisTabStore) Delete(ctx context.Context, tabId string) error {
	tab, found := s.Get(ctx, tabId)
	if !found {
		return ErrTabNotFound
	}

	if err := s.store.Del(ctx, tabKey(tabId), tabURLKey(tab.UserId, tab.URL)); err != nil {
		return err
	}
	if err := s.store.SetRemove(ctx, tabsOfUserKey(tab.UserId), tabId); err != nil {
		return err
	}
	s.logger.Debug("Tab deleted from Redis", "tabId", tabId)
	return nil
}

func (s *RedisTabStore) UpdateStatus(ctx context.Context, tabId string, status tabModel.TabStatus, errMsg string) error {
	tab, found := s.Get(ctx, tabId)
	if !found {
		return ErrTabNotFound
	}

	tab.Status = status
	tab.Error = errMsg
	data, err := json.Marshal(tab)
	if err != nil {
		return err
	}
	return s.store.Set(ctx, tabKey(tabId), data, 0)
}

func TestTabStore(store *redisStore.Store) *RedisTabStore {
	return &RedisTabStore{
		store:  store,
		logger: logx.NewLogger("test tab store"),
	}
}
