package store

import (
	"context"
	"sync"

	"github.com/svenkata/TabChatAPI/internal/domain/tabModel"
)

type InMemoryTabStore struct {
	tabMutex *sync.RWMutex
	tabMap   map[string]tabModel.Tab
	// userId:url -> tabId
	urlIndex map[string]string
}

func InitInMemoryTabStore() *InMemoryTabStore {
	return &InMemoryTabStore{
		tabMutex: new(sync.RWMutex),
		tabMap:   make(map[string]tabModel.Tab),
		urlIndex: make(map[string]string),
	}
}

func (store *InMemoryTabStore) Save(ctx context.Context, tab tabModel.Tab) error {
	store.tabMutex.Lock()
	defer store.tabMutex.Unlock()
	store.tabMap[tab.Id] = tab
	store.urlIndex[tab.UserId+":"+tab.URL] = tab.Id
	return nil
}

func (store *InMemoryTabStore) Get(ctx context.Context, tabId string) (tabModel.Tab, bool) {
	store.tabMutex.RLock()
	defer store.tabMutex.RUnlock()
	result, found := store.tabMap[tabId]
	return result, found
}

func (store *InMemoryTabStore) GetByURL(ctx context.Context, userId string, url string) (tabModel.Tab, bool) {
	store.tabMutex.RLock()
	defer store.tabMutex.RUnlock()
	tabId, found := store.urlIndex[userId+":"+url]
	if !found {
		return tabModel.Tab{}, false
	}
	result, found := store.tabMap[tabId]
	return result, found
}

func (store *InMemoryTabStore) List(ctx context.Context, userId string) ([]tabModel.Tab, error) {
	store.tabMutex.RLock()
	defer store.tabMutex.RUnlock()
	tabs := make([]tabModel.Tab, 0)
	for _, tab := range store.tabMap {
		if tab.UserId == userId {
			tabs = append(tabs, tab)
		}
	}
	return tabs, nil
}

func (store *InMemoryTabStore) Delete(ctx context.Context, tabId string) error {
	store.tabMutex.Lock()
	defer store.tabMutex.Unlock()
	tab, found := store.tabMap[tabId]
	if !found {
		return ErrTabNotFound
	}
	delete(store.tabMap, tabId)
	delete(store.urlIndex, tab.UserId+":"+tab.URL)
	return nil
}

func (store *InMemoryTabStore) UpdateStatus(ctx context.Context, tabId string, status tabModel.TabStatus, errMsg string) error {
	store.tabMutex.Lock()
	defer store.tabMutex.Unlock()
	tab, found := store.tabMap[tabId]
	if !found {
		return ErrTabNotFound
	}
	tab.Status = status
	tab.Error = errMsg
	store.tabMap[tabId] = tab
	return nil
}
